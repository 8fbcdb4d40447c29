// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"quillpress/internal/apperr"
	"quillpress/internal/auth"
	"quillpress/internal/authz"
	"quillpress/internal/metrics"
	"quillpress/internal/models"
	"quillpress/internal/store"
)

// Session is returned by register and login.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterInput is a self-service sign-up.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput is a credential check. Code is the TOTP code for accounts
// with two-factor enabled.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

// Accounts is the credential service: it turns credentials into tokens
// and tokens back into principals.
type Accounts struct {
	users   store.Users
	tokens  *auth.TokenManager
	revoker auth.Revoker
	issuer  string
	now     clock
}

// NewAccounts creates the credential service. issuer names the service in
// authenticator apps.
func NewAccounts(users store.Users, tokens *auth.TokenManager, revoker auth.Revoker, issuer string) *Accounts {
	return &Accounts{users: users, tokens: tokens, revoker: revoker, issuer: issuer, now: systemClock}
}

func (a *Accounts) session(u *models.User) (*Session, error) {
	tok, _, err := a.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, User: u}, nil
}

// Register creates a user-role account and signs it in.
func (a *Accounts) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	ui := UserInput{Name: &in.Name, Email: &in.Email, Password: &in.Password}
	if err := ui.validate(true); err != nil {
		return nil, err
	}
	if n := runeLen(*ui.Name); n < 2 {
		return nil, apperr.Validation("Invalid user",
			apperr.FieldError{Field: "name", Msg: "Name must be between 2 and 50 characters"})
	}
	if err := emailFree(ctx, a.users, uuid.Nil, *ui.Email); err != nil {
		return nil, err
	}

	now := a.now()
	u := &models.User{ID: uuid.New(), Role: models.RoleUser, CreatedAt: now, UpdatedAt: now}
	if err := ui.apply(u); err != nil {
		return nil, err
	}
	created, err := a.users.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return a.session(created)
}

// Login verifies credentials and, when enabled, the TOTP code.
func (a *Accounts) Login(ctx context.Context, in LoginInput) (*Session, error) {
	var fields apperr.Fields
	email := normalizeEmail(in.Email)
	if !validEmail(email) {
		fields.Add("email", "Please include a valid email")
	}
	if in.Password == "" {
		fields.Add("password", "Password is required")
	}
	if err := fields.Err("Invalid credentials"); err != nil {
		return nil, err
	}

	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, in.Password) {
		metrics.AuthFailures.WithLabelValues("credentials").Inc()
		return nil, apperr.Unauthenticated("Invalid credentials")
	}

	if u.TOTPEnabled && u.TOTPSecret != nil {
		code := strings.TrimSpace(in.Code)
		if code == "" {
			metrics.AuthFailures.WithLabelValues("totp_missing").Inc()
			return nil, apperr.Unauthenticated("Two-factor code required")
		}
		if !auth.ValidateTOTP(code, *u.TOTPSecret) {
			metrics.AuthFailures.WithLabelValues("totp").Inc()
			return nil, apperr.Unauthenticated("Invalid two-factor code")
		}
	}
	return a.session(u)
}

// Authenticate resolves a bearer token into a principal. The role comes
// from the stored account so demotions apply to existing tokens.
func (a *Accounts) Authenticate(ctx context.Context, token string) (*models.Principal, *auth.Claims, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		metrics.AuthFailures.WithLabelValues("token").Inc()
		return nil, nil, apperr.Unauthenticated("Not authorized to access this route")
	}
	revoked, err := a.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("authenticate: %w", err)
	}
	if revoked {
		metrics.AuthFailures.WithLabelValues("revoked").Inc()
		return nil, nil, apperr.Unauthenticated("Token has been revoked")
	}

	u, err := a.users.FindByID(ctx, claims.Principal().ID)
	if err != nil {
		return nil, nil, fmt.Errorf("authenticate: %w", err)
	}
	if u == nil {
		return nil, nil, apperr.Unauthenticated("Not authorized to access this route")
	}
	return u.Principal(), claims, nil
}

// Logout revokes the token described by claims until it expires.
func (a *Accounts) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return apperr.Unauthenticated("Not authorized to access this route")
	}
	if err := a.revoker.Revoke(ctx, claims.ID, claims.Remaining(a.now())); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (a *Accounts) current(ctx context.Context, p *models.Principal) (*models.User, error) {
	if err := authz.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	u, err := a.users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}

// Me returns the account behind p.
func (a *Accounts) Me(ctx context.Context, p *models.Principal) (*models.User, error) {
	return a.current(ctx, p)
}

// UpdateMe changes the caller's own non-role fields.
func (a *Accounts) UpdateMe(ctx context.Context, p *models.Principal, in UserInput) (*models.User, error) {
	if err := authz.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	if in.Role != nil {
		return nil, apperr.Forbidden("Not authorized to change role")
	}
	if err := in.validate(false); err != nil {
		return nil, err
	}
	u, err := a.current(ctx, p)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		if err := emailFree(ctx, a.users, u.ID, *in.Email); err != nil {
			return nil, err
		}
	}
	if err := in.apply(u); err != nil {
		return nil, err
	}
	u.UpdatedAt = a.now()

	updated, err := a.users.Update(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("User not found")
	}
	return updated, nil
}

// SetupTOTP generates and stores a new TOTP secret for the caller. It
// takes effect once confirmed with EnableTOTP.
func (a *Accounts) SetupTOTP(ctx context.Context, p *models.Principal) (*auth.TOTPEnrollment, error) {
	u, err := a.current(ctx, p)
	if err != nil {
		return nil, err
	}
	if u.TOTPEnabled {
		return nil, apperr.Conflict("Two-factor authentication is already enabled")
	}
	enr, err := auth.NewTOTP(a.issuer, u.Email)
	if err != nil {
		return nil, err
	}
	u.TOTPSecret = &enr.Secret
	u.UpdatedAt = a.now()
	if _, err := a.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("save totp secret: %w", err)
	}
	return enr, nil
}

// ErrNoTOTPSecret is returned by EnableTOTP before SetupTOTP was called.
var ErrNoTOTPSecret = errors.New("totp not set up")

// EnableTOTP confirms the pending secret with a current code.
func (a *Accounts) EnableTOTP(ctx context.Context, p *models.Principal, code string) (*models.User, error) {
	u, err := a.current(ctx, p)
	if err != nil {
		return nil, err
	}
	if u.TOTPSecret == nil {
		return nil, &apperr.Error{Kind: apperr.KindValidation, Message: "Set up two-factor authentication first", Err: ErrNoTOTPSecret}
	}
	if !auth.ValidateTOTP(strings.TrimSpace(code), *u.TOTPSecret) {
		return nil, apperr.Validation("Invalid code",
			apperr.FieldError{Field: "code", Msg: "Code is invalid or expired"})
	}
	u.TOTPEnabled = true
	u.UpdatedAt = a.now()
	updated, err := a.users.Update(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("enable totp: %w", err)
	}
	return updated, nil
}
