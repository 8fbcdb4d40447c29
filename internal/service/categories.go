// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"quillpress/internal/apperr"
	"quillpress/internal/authz"
	"quillpress/internal/models"
	"quillpress/internal/slug"
	"quillpress/internal/store"
)

// CategoryInput carries the writable category fields. Nil fields are
// left unchanged on update; Name is required on create.
type CategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Categories manages categories.
type Categories struct {
	store store.Categories
	now   clock
}

// NewCategories creates a category service.
func NewCategories(s store.Categories) *Categories {
	return &Categories{store: s, now: systemClock}
}

// List returns every category sorted by name.
func (s *Categories) List(ctx context.Context) ([]models.Category, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return items, nil
}

// Get returns the category with id.
func (s *Categories) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if c == nil {
		return nil, apperr.NotFound("Category not found")
	}
	return c, nil
}

// validate checks the supplied fields and returns the derived slug when a
// name is present.
func (in *CategoryInput) validate(requireName bool) (string, error) {
	var fields apperr.Fields
	var derived string

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
		if n := runeLen(name); n < 2 || n > 50 {
			fields.Add("name", "Name must be between 2 and 50 characters")
		} else if derived = slug.Generate(name); derived == "" {
			fields.Add("name", "Name must contain at least one letter or digit")
		}
	} else if requireName {
		fields.Add("name", "Name is required")
	}

	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		in.Description = &desc
		if runeLen(desc) > 200 {
			fields.Add("description", "Description cannot be more than 200 characters")
		}
	}

	return derived, fields.Err("Invalid category")
}

// ensureUnique rejects a name or slug already used by another category.
func (s *Categories) ensureUnique(ctx context.Context, self uuid.UUID, name, slugValue string) error {
	byName, err := s.store.FindByName(ctx, name)
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if byName != nil && byName.ID != self {
		return apperr.Conflict("Category already exists")
	}
	bySlug, err := s.store.FindBySlug(ctx, slugValue)
	if err != nil {
		return fmt.Errorf("check category slug: %w", err)
	}
	if bySlug != nil && bySlug.ID != self {
		return apperr.Conflict("Category already exists")
	}
	return nil
}

// Create adds a category owned by p.
func (s *Categories) Create(ctx context.Context, p *models.Principal, in CategoryInput) (*models.Category, error) {
	if err := authz.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	derived, err := in.validate(true)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, uuid.Nil, *in.Name, derived); err != nil {
		return nil, err
	}

	now := s.now()
	c := &models.Category{
		ID:        uuid.New(),
		Name:      *in.Name,
		Slug:      derived,
		AuthorID:  p.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Description != nil {
		c.Description = *in.Description
	}

	created, err := s.store.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// Update changes the supplied fields. Renaming regenerates the slug.
func (s *Categories) Update(ctx context.Context, p *models.Principal, id uuid.UUID, in CategoryInput) (*models.Category, error) {
	if err := authz.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	derived, err := in.validate(false)
	if err != nil {
		return nil, err
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnerOrRole(p, c.AuthorID, models.RoleAdmin); err != nil {
		return nil, err
	}

	if in.Name != nil {
		if err := s.ensureUnique(ctx, c.ID, *in.Name, derived); err != nil {
			return nil, err
		}
		c.Name = *in.Name
		c.Slug = derived
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	c.UpdatedAt = s.now()

	updated, err := s.store.Update(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("Category not found")
	}
	return updated, nil
}

// Delete removes a category. Posts that reference it keep their
// category id.
func (s *Categories) Delete(ctx context.Context, p *models.Principal, id uuid.UUID) error {
	if err := authz.RequireAuthenticated(p); err != nil {
		return err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwnerOrRole(p, c.AuthorID, models.RoleAdmin); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
