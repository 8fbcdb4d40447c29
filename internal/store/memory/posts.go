package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"quillpress/internal/apperr"
	"quillpress/internal/models"
)

type postRecord struct {
	post models.Post
	seq  uint64
}

// PostStore is an in-memory store.Posts.
type PostStore struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]*postRecord
	ids   sequence
}

// NewPostStore creates an empty in-memory post store.
func NewPostStore() *PostStore {
	return &PostStore{posts: make(map[uuid.UUID]*postRecord)}
}

// sorted returns records matching keep, newest first. Caller holds mu.
func (s *PostStore) sorted(keep func(*models.Post) bool) []*postRecord {
	out := make([]*postRecord, 0, len(s.posts))
	for _, r := range s.posts {
		if keep(&r.post) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
			return a.post.CreatedAt.After(b.post.CreatedAt)
		}
		return a.seq > b.seq
	})
	return out
}

// List returns one page of posts newest first and the filtered total.
func (s *PostStore) List(_ context.Context, f models.PostFilter) ([]models.Post, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.sorted(func(p *models.Post) bool {
		return f.CategoryID == nil || p.CategoryID == *f.CategoryID
	})
	total := len(matched)

	page := []models.Post{}
	if f.Offset < 0 || f.Offset >= total {
		return page, total, nil
	}
	end := total
	if f.Limit < end-f.Offset {
		end = f.Offset + f.Limit
	}
	for i := f.Offset; i < end; i++ {
		page = append(page, *matched[i].post.Clone())
	}
	return page, total, nil
}

// FindByID returns the post with id, or nil.
func (s *PostStore) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	return r.post.Clone(), nil
}

// FindBySlug returns the post with slug, or nil.
func (s *PostStore) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.posts {
		if r.post.Slug == slug {
			return r.post.Clone(), nil
		}
	}
	return nil, nil
}

// Search matches query as a case-insensitive substring of title, content
// or any tag.
func (s *PostStore) Search(_ context.Context, query string, limit int) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	contains := func(v string) bool { return strings.Contains(strings.ToLower(v), q) }
	matched := s.sorted(func(p *models.Post) bool {
		if contains(p.Title) || contains(p.Content) {
			return true
		}
		for _, tag := range p.Tags {
			if contains(tag) {
				return true
			}
		}
		return false
	})

	out := []models.Post{}
	for i := 0; i < len(matched) && i < limit; i++ {
		out = append(out, *matched[i].post.Clone())
	}
	return out, nil
}

// slugTaken reports whether another post owns slug. Caller holds mu.
func (s *PostStore) slugTaken(slug string, except uuid.UUID) bool {
	for id, r := range s.posts {
		if id != except && r.post.Slug == slug {
			return true
		}
	}
	return false
}

// Create stores a new post.
func (s *PostStore) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slugTaken(p.Slug, uuid.Nil) {
		return nil, apperr.Conflict("A post with this slug already exists")
	}
	stored := p.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	s.posts[stored.ID] = &postRecord{post: *stored, seq: s.ids.next()}
	return stored.Clone(), nil
}

// Update replaces a stored post. Returns nil if it does not exist.
func (s *PostStore) Update(_ context.Context, p *models.Post) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.posts[p.ID]
	if !ok {
		return nil, nil
	}
	if s.slugTaken(p.Slug, p.ID) {
		return nil, apperr.Conflict("A post with this slug already exists")
	}
	stored := p.Clone()
	stored.AuthorID = r.post.AuthorID
	stored.CreatedAt = r.post.CreatedAt
	r.post = *stored
	return stored.Clone(), nil
}

// SetViewCount stores n as the post's view count.
func (s *PostStore) SetViewCount(_ context.Context, id uuid.UUID, n int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.posts[id]; ok {
		r.post.ViewCount = n
	}
	return nil
}

// Delete removes a post. Missing ids are ignored.
func (s *PostStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.posts, id)
	return nil
}
