// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"quillpress/internal/apperr"
	"quillpress/internal/authz"
	"quillpress/internal/metrics"
	"quillpress/internal/models"
	"quillpress/internal/slug"
	"quillpress/internal/store"
)

const (
	// DefaultPageSize is used when a listing asks for no explicit limit.
	DefaultPageSize = 10
	// MaxPageSize caps the limit of a listing.
	MaxPageSize = 100
	// SearchLimit caps the number of search results.
	SearchLimit = 10
)

// ListQuery selects one page of posts. Category is an optional category id.
type ListQuery struct {
	Page     int
	Limit    int
	Category string
}

// PostInput carries the writable post fields. Nil fields are left
// unchanged on update; a nil Tags slice means tags were not supplied.
type PostInput struct {
	Title            *string  `json:"title"`
	Content          *string  `json:"content"`
	CategoryID       *string  `json:"categoryId"`
	Slug             *string  `json:"slug"`
	Tags             []string `json:"tags"`
	FeaturedImageRef *string  `json:"featuredImageRef"`
}

// Posts manages posts and their comments.
type Posts struct {
	posts      store.Posts
	categories store.Categories
	now        clock
}

// NewPosts creates a post service.
func NewPosts(posts store.Posts, categories store.Categories) *Posts {
	return &Posts{posts: posts, categories: categories, now: systemClock}
}

// List returns one page of post summaries, newest first.
func (s *Posts) List(ctx context.Context, q ListQuery) (*models.PostPage, error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	// A page whose offset does not fit an int is past the end; a negative
	// offset asks the store for the total only.
	offset := -1
	if page-1 <= math.MaxInt/limit {
		offset = (page - 1) * limit
	}
	filter := models.PostFilter{Offset: offset, Limit: limit}
	if c := strings.TrimSpace(q.Category); c != "" {
		id, err := uuid.Parse(c)
		if err != nil {
			return nil, apperr.Validation("Invalid category filter",
				apperr.FieldError{Field: "category", Msg: "Category must be a valid id"})
		}
		filter.CategoryID = &id
	}

	posts, total, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	items := make([]models.PostSummary, 0, len(posts))
	for i := range posts {
		items = append(items, posts[i].Summary())
	}
	return &models.PostPage{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	}, nil
}

// find resolves idOrSlug by id when it parses as one, otherwise by slug.
func (s *Posts) find(ctx context.Context, idOrSlug string) (*models.Post, error) {
	if id, err := uuid.Parse(idOrSlug); err == nil {
		return s.byID(ctx, id)
	}
	p, err := s.posts.FindBySlug(ctx, idOrSlug)
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	if p == nil {
		return nil, apperr.NotFound("Post not found")
	}
	return p, nil
}

// byID fetches a post for mutation.
func (s *Posts) byID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	if p == nil {
		return nil, apperr.NotFound("Post not found")
	}
	return p, nil
}

// Get returns a single post and counts the view. The increment is a
// read-then-write without locking, so concurrent reads may lose counts.
// A failure to persist it is logged and does not fail the read.
func (s *Posts) Get(ctx context.Context, idOrSlug string) (*models.Post, error) {
	p, err := s.find(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}

	p.ViewCount++
	if err := s.posts.SetViewCount(ctx, p.ID, p.ViewCount); err != nil {
		metrics.ViewCountSaveFailures.Inc()
		slog.Warn("view count not saved", "post_id", p.ID, "error", err)
	}
	metrics.PostViews.Inc()
	return p, nil
}

// validate checks the supplied fields. On create, title, content and
// category are required.
func (in *PostInput) validate(create bool) (categoryID uuid.UUID, err error) {
	var fields apperr.Fields

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
		if n := runeLen(title); n < 3 || n > 100 {
			fields.Add("title", "Title must be between 3 and 100 characters")
		}
	} else if create {
		fields.Add("title", "Title is required")
	}

	if in.Content != nil {
		if runeLen(strings.TrimSpace(*in.Content)) < 10 {
			fields.Add("content", "Content must be at least 10 characters")
		}
	} else if create {
		fields.Add("content", "Content is required")
	}

	if in.CategoryID != nil {
		id, perr := uuid.Parse(strings.TrimSpace(*in.CategoryID))
		if perr != nil {
			fields.Add("categoryId", "Category must be a valid id")
		}
		categoryID = id
	} else if create {
		fields.Add("categoryId", "Category is required")
	}

	if in.Slug != nil && strings.TrimSpace(*in.Slug) != "" && slug.Generate(*in.Slug) == "" {
		fields.Add("slug", "Slug must contain at least one letter or digit")
	}

	if in.Tags != nil {
		in.Tags = normalizeTags(in.Tags)
	}

	return categoryID, fields.Err("Invalid post")
}

// requireCategory fails with a validation error when id names no category.
func (s *Posts) requireCategory(ctx context.Context, id uuid.UUID) error {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if c == nil {
		return apperr.Validation("Invalid post",
			apperr.FieldError{Field: "categoryId", Msg: "Category not found"})
	}
	return nil
}

// ensureSlugFree fails with Conflict when another post owns value.
func (s *Posts) ensureSlugFree(ctx context.Context, self uuid.UUID, value string) error {
	other, err := s.posts.FindBySlug(ctx, value)
	if err != nil {
		return fmt.Errorf("check post slug: %w", err)
	}
	if other != nil && other.ID != self {
		return apperr.Conflict("A post with this slug already exists")
	}
	return nil
}

// Create publishes a new post authored by p. imageRef, when set, is the
// asset store reference of an already uploaded featured image.
func (s *Posts) Create(ctx context.Context, p *models.Principal, in PostInput) (*models.Post, error) {
	if err := authz.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	categoryID, err := in.validate(true)
	if err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	postSlug := slug.Generate(*in.Title)
	if in.Slug != nil && strings.TrimSpace(*in.Slug) != "" {
		postSlug = slug.Generate(*in.Slug)
	}
	if postSlug == "" {
		return nil, apperr.Validation("Invalid post",
			apperr.FieldError{Field: "title", Msg: "Title must contain at least one letter or digit"})
	}
	if err := s.ensureSlugFree(ctx, uuid.Nil, postSlug); err != nil {
		return nil, err
	}

	now := s.now()
	post := &models.Post{
		ID:               uuid.New(),
		Title:            *in.Title,
		Slug:             postSlug,
		Content:          *in.Content,
		CategoryID:       categoryID,
		AuthorID:         p.ID,
		Tags:             in.Tags,
		FeaturedImageRef: in.FeaturedImageRef,
		Comments:         []models.Comment{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	created, err := s.posts.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	metrics.PostsWritten.WithLabelValues("create").Inc()
	return created, nil
}

// Update applies the supplied fields. The slug is only derived again when
// the post has none; an explicit slug field replaces it.
func (s *Posts) Update(ctx context.Context, p *models.Principal, id uuid.UUID, in PostInput) (*models.Post, error) {
	if err := authz.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	categoryID, err := in.validate(false)
	if err != nil {
		return nil, err
	}

	post, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnerOrRole(p, post.AuthorID, models.RoleAdmin); err != nil {
		return nil, err
	}

	if in.CategoryID != nil {
		if err := s.requireCategory(ctx, categoryID); err != nil {
			return nil, err
		}
		post.CategoryID = categoryID
	}
	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.Tags != nil {
		post.Tags = in.Tags
	}
	if in.FeaturedImageRef != nil {
		post.FeaturedImageRef = in.FeaturedImageRef
	}

	switch {
	case in.Slug != nil && strings.TrimSpace(*in.Slug) != "":
		post.Slug = slug.Generate(*in.Slug)
	case post.Slug == "":
		post.Slug = slug.Generate(post.Title)
	}
	if post.Slug == "" {
		return nil, apperr.Validation("Invalid post",
			apperr.FieldError{Field: "title", Msg: "Title must contain at least one letter or digit"})
	}
	if err := s.ensureSlugFree(ctx, post.ID, post.Slug); err != nil {
		return nil, err
	}

	post.UpdatedAt = s.now()
	updated, err := s.posts.Update(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("Post not found")
	}
	metrics.PostsWritten.WithLabelValues("update").Inc()
	return updated, nil
}

// Delete removes a post together with its comments.
func (s *Posts) Delete(ctx context.Context, p *models.Principal, id uuid.UUID) error {
	if err := authz.RequireAuthenticated(p); err != nil {
		return err
	}
	post, err := s.byID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwnerOrRole(p, post.AuthorID, models.RoleAdmin); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	metrics.PostsWritten.WithLabelValues("delete").Inc()
	return nil
}

// AddComment appends a comment by p to the post. The post document is
// read, extended and written back whole, so two concurrent comments on
// the same post can overwrite each other.
func (s *Posts) AddComment(ctx context.Context, p *models.Principal, postID uuid.UUID, content string) (*models.Post, error) {
	if err := authz.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if n := runeLen(content); n < 1 || n > 1000 {
		return nil, apperr.Validation("Invalid comment",
			apperr.FieldError{Field: "content", Msg: "Comment must be between 1 and 1000 characters"})
	}

	post, err := s.byID(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.Comments = append(post.Comments, models.Comment{
		ID:        uuid.New(),
		AuthorID:  p.ID,
		Content:   content,
		CreatedAt: s.now(),
	})

	updated, err := s.posts.Update(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("Post not found")
	}
	metrics.CommentsAdded.Inc()
	return updated, nil
}

// Search returns up to SearchLimit posts whose title, content or tags
// contain query, ignoring case.
func (s *Posts) Search(ctx context.Context, query string) ([]models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("Please provide a search term",
			apperr.FieldError{Field: "q", Msg: "Search term is required"})
	}
	posts, err := s.posts.Search(ctx, query, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return posts, nil
}
