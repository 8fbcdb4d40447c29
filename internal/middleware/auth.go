// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"quillpress/internal/auth"
	"quillpress/internal/authz"
	"quillpress/internal/httpx"
	"quillpress/internal/models"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	principalKey contextKey = "principal"
	claimsKey    contextKey = "claims"
)

// Authenticator resolves a bearer token into the caller's principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Principal, *auth.Claims, error)
}

// Authenticate resolves the Authorization header into a principal on the
// request context. Requests without the header continue anonymously; a
// malformed, expired or revoked token is rejected with 401.
func Authenticate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				httpx.WriteFailure(w, r, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}

			p, claims, err := a.Authenticate(r.Context(), strings.TrimSpace(token))
			if err != nil {
				httpx.WriteError(w, r, err)
				return
			}

			ctx := WithPrincipal(r.Context(), p)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
// Must be applied after Authenticate in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := authz.RequireAuthenticated(PrincipalFromCtx(r.Context())); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := authz.RequireRole(PrincipalFromCtx(r.Context()), models.RoleAdmin); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromCtx extracts the caller's principal from the context.
// Returns nil for anonymous requests.
func PrincipalFromCtx(ctx context.Context) *models.Principal {
	p, _ := ctx.Value(principalKey).(*models.Principal)
	return p
}

// ClaimsFromCtx returns the verified token claims of the request, or nil.
func ClaimsFromCtx(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}
