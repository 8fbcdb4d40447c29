// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"quillpress/internal/httpx"
	"quillpress/internal/middleware"
	"quillpress/internal/models"
	"quillpress/internal/service"
)

// Categories groups the category handlers.
type Categories struct {
	categories *service.Categories
}

// NewCategories creates the category handlers.
func NewCategories(categories *service.Categories) *Categories {
	return &Categories{categories: categories}
}

// List handles GET /categories.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.categories.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	httpx.WriteSuccess(w, r, http.StatusOK, items)
}

// Get handles GET /categories/{id}.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "Category not found")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	c, err := h.categories.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusOK, c)
}

// Create handles POST /categories.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	c, err := h.categories.Create(r.Context(), middleware.PrincipalFromCtx(r.Context()), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusCreated, c)
}

// Update handles PUT /categories/{id}.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "Category not found")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in service.CategoryInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	c, err := h.categories.Update(r.Context(), middleware.PrincipalFromCtx(r.Context()), id, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusOK, c)
}

// Delete handles DELETE /categories/{id}. Posts in the category are kept.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "Category not found")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.categories.Delete(r.Context(), middleware.PrincipalFromCtx(r.Context()), id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusOK, nil)
}
