// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"quillpress/internal/httpx"
	"quillpress/internal/middleware"
	"quillpress/internal/service"
)

// Auth groups the credential handlers: registration, login, logout,
// the caller's own profile and two-factor enrolment.
type Auth struct {
	accounts *service.Accounts
}

// NewAuth creates the credential handlers.
func NewAuth(accounts *service.Accounts) *Auth {
	return &Auth{accounts: accounts}
}

// Register handles POST /auth/register.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	sess, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusCreated, sess)
}

// Login handles POST /auth/login. Accounts with two-factor enabled must
// also send the current code.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	sess, err := h.accounts.Login(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusOK, sess)
}

// Logout handles POST /auth/logout by revoking the presented token.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Logout(r.Context(), middleware.ClaimsFromCtx(r.Context())); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusOK, nil)
}

// Me handles GET /auth/me.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.accounts.Me(r.Context(), middleware.PrincipalFromCtx(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusOK, u)
}

// UpdateMe handles PUT /auth/me. The role cannot be changed here.
func (h *Auth) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u, err := h.accounts.UpdateMe(r.Context(), middleware.PrincipalFromCtx(r.Context()), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusOK, u)
}

// SetupTOTP handles POST /auth/2fa/setup. The response carries the secret,
// the otpauth URL and a base64 PNG QR code of it.
func (h *Auth) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	enr, err := h.accounts.SetupTOTP(r.Context(), middleware.PrincipalFromCtx(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusOK, enr)
}

type codeRequest struct {
	Code string `json:"code"`
}

// VerifyTOTP handles POST /auth/2fa/verify and enables two-factor login.
func (h *Auth) VerifyTOTP(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u, err := h.accounts.EnableTOTP(r.Context(), middleware.PrincipalFromCtx(r.Context()), req.Code)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, r, http.StatusOK, u)
}
