// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"quillpress/internal/models"
)

// PostStore handles CRUD operations for posts. Tags are stored as a
// TEXT[] column and comments as a JSONB array on the post row.
type PostStore struct {
	db    *sql.DB
	types *pgtype.Map
}

// NewPostStore creates a new PostStore.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db, types: pgtype.NewMap()}
}

const postColumns = `id, title, slug, content, category_id, author_id, tags,
	featured_image_ref, comments, view_count, created_at, updated_at`

// scanPost scans a row into a Post struct.
func (s *PostStore) scanPost(scanner rowScanner) (*models.Post, error) {
	var (
		p        models.Post
		tags     []string
		comments []byte
	)
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.CategoryID, &p.AuthorID,
		s.types.SQLScanner(&tags), &p.FeaturedImageRef, &comments,
		&p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	p.Tags = tags
	p.Comments = []models.Comment{}
	if len(comments) > 0 {
		if err := json.Unmarshal(comments, &p.Comments); err != nil {
			return nil, fmt.Errorf("decode comments: %w", err)
		}
	}
	return &p, nil
}

func (s *PostStore) queryPosts(ctx context.Context, op, query string, args ...any) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := s.scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// List returns one page of posts newest first and the filtered total.
func (s *PostStore) List(ctx context.Context, f models.PostFilter) ([]models.Post, int, error) {
	where := ""
	var args []any
	if f.CategoryID != nil {
		where = ` WHERE category_id = $1`
		args = append(args, *f.CategoryID)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}
	if f.Offset < 0 || f.Offset >= total {
		return []models.Post{}, total, nil
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM posts%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, postColumns, where, n+1, n+2)
	args = append(args, f.Limit, f.Offset)

	posts, err := s.queryPosts(ctx, "list posts", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// FindByID retrieves a post by ID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := s.scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a post by slug. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	p, err := s.scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// Search finds posts whose title, content or any tag contains query.
func (s *PostStore) Search(ctx context.Context, query string, limit int) ([]models.Post, error) {
	pattern := "%" + escapeLike(query) + "%"
	return s.queryPosts(ctx, "search posts", `
		SELECT `+postColumns+` FROM posts
		WHERE title ILIKE $1
		   OR content ILIKE $1
		   OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, pattern, limit)
}

// Create inserts a new post and returns it.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	comments, err := encodeComments(p.Comments)
	if err != nil {
		return nil, err
	}
	created, err := s.scanPost(s.db.QueryRowContext(ctx, `
		INSERT INTO posts (id, title, slug, content, category_id, author_id, tags,
		                   featured_image_ref, comments, view_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+postColumns,
		id, p.Title, p.Slug, p.Content, p.CategoryID, p.AuthorID, nonNilTags(p.Tags),
		p.FeaturedImageRef, comments, p.ViewCount, p.CreatedAt, p.UpdatedAt,
	))
	if err != nil {
		return nil, writeErr("create post", err, "A post with this slug already exists")
	}
	return created, nil
}

// Update overwrites the post document. Returns nil if it no longer exists.
func (s *PostStore) Update(ctx context.Context, p *models.Post) (*models.Post, error) {
	comments, err := encodeComments(p.Comments)
	if err != nil {
		return nil, err
	}
	updated, err := s.scanPost(s.db.QueryRowContext(ctx, `
		UPDATE posts SET
			title = $1, slug = $2, content = $3, category_id = $4, tags = $5,
			featured_image_ref = $6, comments = $7, view_count = $8, updated_at = $9
		WHERE id = $10
		RETURNING `+postColumns,
		p.Title, p.Slug, p.Content, p.CategoryID, nonNilTags(p.Tags),
		p.FeaturedImageRef, comments, p.ViewCount, p.UpdatedAt, p.ID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, writeErr("update post", err, "A post with this slug already exists")
	}
	return updated, nil
}

// SetViewCount stores n as the view count without touching updated_at.
func (s *PostStore) SetViewCount(ctx context.Context, id uuid.UUID, n int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE posts SET view_count = $1 WHERE id = $2`, n, id)
	if err != nil {
		return fmt.Errorf("set view count: %w", err)
	}
	return nil
}

// Delete removes a post by ID.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func encodeComments(comments []models.Comment) (string, error) {
	if comments == nil {
		comments = []models.Comment{}
	}
	b, err := json.Marshal(comments)
	if err != nil {
		return "", fmt.Errorf("encode comments: %w", err)
	}
	return string(b), nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// escapeLike escapes the ILIKE wildcards so query matches literally.
func escapeLike(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(query)
}
