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

// CategoryStore is an in-memory store.Categories.
type CategoryStore struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]models.Category
}

// NewCategoryStore creates an empty in-memory category store.
func NewCategoryStore() *CategoryStore {
	return &CategoryStore{categories: make(map[uuid.UUID]models.Category)}
}

// List returns all categories ordered by name.
func (s *CategoryStore) List(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *CategoryStore) find(match func(models.Category) bool) *models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if match(c) {
			return &c
		}
	}
	return nil
}

// FindByID returns the category with id, or nil.
func (s *CategoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	return s.find(func(c models.Category) bool { return c.ID == id }), nil
}

// FindByName returns the category whose name equals name ignoring case, or nil.
func (s *CategoryStore) FindByName(_ context.Context, name string) (*models.Category, error) {
	return s.find(func(c models.Category) bool { return strings.EqualFold(c.Name, name) }), nil
}

// FindBySlug returns the category with slug, or nil.
func (s *CategoryStore) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	return s.find(func(c models.Category) bool { return c.Slug == slug }), nil
}

// clash reports whether c collides with another category. Caller holds mu.
func (s *CategoryStore) clash(c *models.Category) bool {
	for id, other := range s.categories {
		if id == c.ID {
			continue
		}
		if strings.EqualFold(other.Name, c.Name) || other.Slug == c.Slug {
			return true
		}
	}
	return false
}

// Create stores a new category.
func (s *CategoryStore) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *c
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if s.clash(&stored) {
		return nil, apperr.Conflict("Category already exists")
	}
	s.categories[stored.ID] = stored
	return &stored, nil
}

// Update replaces a stored category. Returns nil if it does not exist.
func (s *CategoryStore) Update(_ context.Context, c *models.Category) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.categories[c.ID]
	if !ok {
		return nil, nil
	}
	if s.clash(c) {
		return nil, apperr.Conflict("A category with this name already exists")
	}
	stored := *c
	stored.AuthorID = old.AuthorID
	stored.CreatedAt = old.CreatedAt
	s.categories[stored.ID] = stored
	return &stored, nil
}

// Delete removes a category. Posts referencing it are not touched.
func (s *CategoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.categories, id)
	return nil
}
