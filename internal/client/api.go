// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"quillpress/internal/httpx"
	"quillpress/internal/models"
	"quillpress/internal/service"
)

// PostDetail is a single post as returned by GetPost.
type PostDetail struct {
	models.Post
	HTML string `json:"html"`
}

// ListOptions selects a page of posts. Zero values use the server defaults.
type ListOptions struct {
	Page     int
	Limit    int
	Category uuid.UUID
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Category != uuid.Nil {
		q.Set("category", o.Category.String())
	}
	return q
}

// Register creates an account and returns its session.
func (c *Client) Register(ctx context.Context, in service.RegisterInput) (*service.Session, error) {
	var sess service.Session
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, in, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Login exchanges credentials for a session. Use WithToken with the
// returned token to make authenticated calls.
func (c *Client) Login(ctx context.Context, in service.LoginInput) (*service.Session, error) {
	var sess service.Session
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, in, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Logout revokes the token of c.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	return err
}

// Me returns the account behind the token of c.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var u models.User
	if _, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListPosts returns one page of post summaries, newest first.
func (c *Client) ListPosts(ctx context.Context, opts ListOptions) ([]models.PostSummary, httpx.Pagination, error) {
	var items []models.PostSummary
	p, err := c.do(ctx, http.MethodGet, "/api/posts", opts.values(), nil, &items)
	if err != nil {
		return nil, httpx.Pagination{}, err
	}
	if p == nil {
		return nil, httpx.Pagination{}, malformed("post listing without pagination")
	}
	return items, *p, nil
}

// GetPost fetches a post by id or slug. The server counts the view.
func (c *Client) GetPost(ctx context.Context, idOrSlug string) (*PostDetail, error) {
	var p PostDetail
	if _, err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(idOrSlug), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchPosts returns up to ten posts matching query.
func (c *Client) SearchPosts(ctx context.Context, query string) ([]models.Post, error) {
	var posts []models.Post
	if _, err := c.do(ctx, http.MethodGet, "/api/posts/search", url.Values{"q": {query}}, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, in service.PostInput) (*models.Post, error) {
	var p models.Post
	if _, err := c.do(ctx, http.MethodPost, "/api/posts", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdatePost(ctx context.Context, id uuid.UUID, in service.PostInput) (*models.Post, error) {
	var p models.Post
	if _, err := c.do(ctx, http.MethodPut, "/api/posts/"+id.String(), nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeletePost(ctx context.Context, id uuid.UUID) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/posts/"+id.String(), nil, nil, nil)
	return err
}

// AddComment appends a comment to a post and returns the updated post.
func (c *Client) AddComment(ctx context.Context, postID uuid.UUID, content string) (*models.Post, error) {
	var p models.Post
	body := map[string]string{"content": content}
	if _, err := c.do(ctx, http.MethodPost, "/api/posts/"+postID.String()+"/comments", nil, body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListCategories returns every category sorted by name.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var items []models.Category
	if _, err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreateCategory(ctx context.Context, in service.CategoryInput) (*models.Category, error) {
	var cat models.Category
	if _, err := c.do(ctx, http.MethodPost, "/api/categories", nil, in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id uuid.UUID, in service.CategoryInput) (*models.Category, error) {
	var cat models.Category
	if _, err := c.do(ctx, http.MethodPut, "/api/categories/"+id.String(), nil, in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/categories/"+id.String(), nil, nil, nil)
	return err
}

// ListUsers returns every account. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if _, err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}
