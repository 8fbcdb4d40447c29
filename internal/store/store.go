// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all QuillPress
// entities. Each store struct wraps a *sql.DB and exposes typed query
// methods. The interfaces below are what the domain services depend on;
// the memory subpackage provides a process-local implementation of them.
//
// Lookups return (nil, nil) when the entity does not exist. Unique index
// violations are reported as apperr Conflict errors.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"quillpress/internal/apperr"
	"quillpress/internal/models"
)

// Users persists accounts.
type Users interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, u *models.User) (*models.User, error)
	Update(ctx context.Context, u *models.User) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Categories persists categories.
type Categories interface {
	// List returns all categories ordered by name ascending.
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	// FindByName matches case-insensitively.
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Posts persists posts together with their embedded comments.
type Posts interface {
	// List returns the requested window, newest first, and the total
	// number of posts matching the filter.
	List(ctx context.Context, f models.PostFilter) ([]models.Post, int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	// Search matches query case-insensitively as a substring of the
	// title, the content or any tag. Newest first, at most limit posts.
	Search(ctx context.Context, query string, limit int) ([]models.Post, error)
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	// Update writes the whole post document, comments and view count
	// included. Concurrent writers follow last-write-wins.
	Update(ctx context.Context, p *models.Post) (*models.Post, error)
	// SetViewCount stores n as the post's view count.
	SetViewCount(ctx context.Context, id uuid.UUID, n int64) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface{ Scan(...any) error }

// writeErr wraps a write failure, translating unique violations into a
// Conflict carrying msg.
func writeErr(op string, err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Conflict(msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}
