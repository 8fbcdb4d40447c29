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

// Users groups the account administration handlers. Every route is
// admin-only; the service enforces the role.
type Users struct {
	users *service.Users
}

// NewUsers creates the account administration handlers.
func NewUsers(users *service.Users) *Users {
	return &Users{users: users}
}

func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.users.List(r.Context(), middleware.PrincipalFromCtx(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if items == nil {
		items = []models.User{}
	}
	httpx.WriteSuccess(w, r, http.StatusOK, items)
}

func (h *Users) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "User not found")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u, err := h.users.Get(r.Context(), middleware.PrincipalFromCtx(r.Context()), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusOK, u)
}

func (h *Users) Create(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u, err := h.users.Create(r.Context(), middleware.PrincipalFromCtx(r.Context()), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusCreated, u)
}

func (h *Users) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "User not found")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in service.UserInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u, err := h.users.Update(r.Context(), middleware.PrincipalFromCtx(r.Context()), id, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusOK, u)
}

func (h *Users) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "User not found")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.users.Delete(r.Context(), middleware.PrincipalFromCtx(r.Context()), id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusOK, nil)
}
