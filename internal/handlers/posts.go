// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"quillpress/internal/apperr"
	"quillpress/internal/httpx"
	"quillpress/internal/markdown"
	"quillpress/internal/middleware"
	"quillpress/internal/models"
	"quillpress/internal/service"
	"quillpress/internal/storage"
)

// imageField is the multipart field carrying a featured image.
const imageField = "featuredImage"

// formOverhead is the allowance for non-file form fields in a multipart body.
const formOverhead = 1 << 20

// Posts groups the post and comment handlers.
type Posts struct {
	posts    *service.Posts
	uploader *storage.Uploader
}

// NewPosts creates the post handlers. uploader may be nil, in which case
// featured image uploads are rejected.
func NewPosts(posts *service.Posts, uploader *storage.Uploader) *Posts {
	return &Posts{posts: posts, uploader: uploader}
}

// postView is a single post together with its rendered content.
type postView struct {
	*models.Post
	HTML string `json:"html"`
}

// List handles GET /posts?page&limit&category.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.List(r.Context(), service.ListQuery{
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WritePage(w, r, page.Items, httpx.Pagination{
		Page:  page.Page,
		Limit: page.Limit,
		Total: page.Total,
		Pages: page.Pages,
	})
}

// Get handles GET /posts/{id}, where id may also be a slug. Each
// successful read counts a view.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	html, err := markdown.ToHTML(post.Content)
	if err != nil {
		slog.Warn("post content not rendered", "post_id", post.ID, "error", err)
	}
	httpx.WriteSuccess(w, r, http.StatusOK, postView{Post: post, HTML: html})
}

// Search handles GET /posts/search?q=.
func (h *Posts) Search(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	httpx.WriteSuccess(w, r, http.StatusOK, posts)
}

// Create handles POST /posts with a JSON or multipart body.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	in, uploaded, err := h.decodeInput(w, r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	post, err := h.posts.Create(r.Context(), p, in)
	if err != nil {
		h.discard(uploaded)
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusCreated, post)
}

// Update handles PUT /posts/{id} with a JSON or multipart body.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	id, err := idParam(r, "id", "Post not found")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	in, uploaded, err := h.decodeInput(w, r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	post, err := h.posts.Update(r.Context(), p, id, in)
	if err != nil {
		h.discard(uploaded)
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusOK, post)
}

// Delete handles DELETE /posts/{id}.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "Post not found")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.posts.Delete(r.Context(), middleware.PrincipalFromCtx(r.Context()), id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusOK, nil)
}

type commentRequest struct {
	Content string `json:"content"`
}

// AddComment handles POST /posts/{id}/comments.
func (h *Posts) AddComment(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	id, err := idParam(r, "id", "Post not found")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var req commentRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	post, err := h.posts.AddComment(r.Context(), p, id, req.Content)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusCreated, post)
}

// decodeInput reads a post payload. Multipart bodies may carry a featured
// image, which is stored before the post is written; its reference is
// returned so a failed write can discard it.
func (h *Posts) decodeInput(w http.ResponseWriter, r *http.Request) (service.PostInput, string, error) {
	var in service.PostInput

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		err := httpx.Decode(r, &in)
		return in, "", err
	}

	var limit int64 = formOverhead
	if h.uploader != nil {
		limit += h.uploader.MaxBytes()
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, "", apperr.Validation("Invalid image",
				apperr.FieldError{Field: imageField, Msg: "Image is too large"})
		}
		return in, "", apperr.Validation("Invalid form body")
	}

	form := r.MultipartForm.Value
	field := func(name string) *string {
		if v, ok := form[name]; ok && len(v) > 0 {
			return &v[0]
		}
		return nil
	}
	in.Title = field("title")
	in.Content = field("content")
	in.CategoryID = field("categoryId")
	in.Slug = field("slug")
	if tags := field("tags"); tags != nil {
		in.Tags = strings.Split(*tags, ",")
	}

	file, _, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return in, "", nil
	}
	if err != nil {
		return in, "", apperr.Validation("Invalid form body")
	}
	defer file.Close()

	if h.uploader == nil {
		return in, "", apperr.Validation("Invalid image",
			apperr.FieldError{Field: imageField, Msg: "Image uploads are not available"})
	}
	ref, err := h.uploader.Upload(r.Context(), imageField, file)
	if err != nil {
		return in, "", err
	}
	in.FeaturedImageRef = &ref
	return in, ref, nil
}

// discard removes an uploaded image whose post was not written.
func (h *Posts) discard(ref string) {
	if ref == "" || h.uploader == nil {
		return
	}
	if err := h.uploader.Discard(context.Background(), ref); err != nil {
		slog.Warn("orphaned upload not removed", "ref", ref, "error", err)
	}
}
