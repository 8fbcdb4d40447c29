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
	"quillpress/internal/auth"
	"quillpress/internal/authz"
	"quillpress/internal/models"
	"quillpress/internal/store"
)

// UserInput carries the writable account fields. Nil fields are left
// unchanged on update. An empty password on update keeps the old hash.
type UserInput struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Role      *string `json:"role"`
	AvatarRef *string `json:"avatarRef"`
}

// validate normalizes and checks the supplied fields. On create, name,
// email and password are required.
func (in *UserInput) validate(create bool) error {
	var fields apperr.Fields

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
		if name == "" {
			fields.Add("name", "Name is required")
		} else if runeLen(name) > 50 {
			fields.Add("name", "Name cannot be more than 50 characters")
		}
	} else if create {
		fields.Add("name", "Name is required")
	}

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
		if !validEmail(email) {
			fields.Add("email", "Please include a valid email")
		}
	} else if create {
		fields.Add("email", "Please include a valid email")
	}

	switch {
	case in.Password != nil && *in.Password != "":
		if runeLen(*in.Password) < 6 {
			fields.Add("password", "Password must be at least 6 characters")
		}
	case create:
		fields.Add("password", "Password must be at least 6 characters")
	}

	if in.Role != nil && !models.Role(*in.Role).Valid() {
		fields.Add("role", "Role must be user or admin")
	}

	return fields.Err("Invalid user")
}

// apply copies the validated fields onto u, hashing a new password.
func (in *UserInput) apply(u *models.User) error {
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}
	if in.Role != nil {
		u.Role = models.Role(*in.Role)
	}
	if in.AvatarRef != nil {
		u.AvatarRef = in.AvatarRef
	}
	return nil
}

// emailFree fails with Conflict when another account uses email.
func emailFree(ctx context.Context, users store.Users, self uuid.UUID, email string) error {
	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if existing != nil && existing.ID != self {
		return apperr.Conflict("User already exists")
	}
	return nil
}

// Users is the administrative account surface. Every operation requires
// the admin role.
type Users struct {
	store store.Users
	now   clock
}

// NewUsers creates a user administration service.
func NewUsers(s store.Users) *Users {
	return &Users{store: s, now: systemClock}
}

// List returns every account.
func (s *Users) List(ctx context.Context, p *models.Principal) ([]models.User, error) {
	if err := authz.RequireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns one account.
func (s *Users) Get(ctx context.Context, p *models.Principal, id uuid.UUID) (*models.User, error) {
	if err := authz.RequireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.byID(ctx, id)
}

func (s *Users) byID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}

// Create adds an account. The role defaults to user.
func (s *Users) Create(ctx context.Context, p *models.Principal, in UserInput) (*models.User, error) {
	if err := authz.RequireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := in.validate(true); err != nil {
		return nil, err
	}
	if err := emailFree(ctx, s.store, uuid.Nil, *in.Email); err != nil {
		return nil, err
	}

	now := s.now()
	u := &models.User{ID: uuid.New(), Role: models.RoleUser, CreatedAt: now, UpdatedAt: now}
	if err := in.apply(u); err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// Update changes the supplied fields of an account.
func (s *Users) Update(ctx context.Context, p *models.Principal, id uuid.UUID, in UserInput) (*models.User, error) {
	if err := authz.RequireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := in.validate(false); err != nil {
		return nil, err
	}
	u, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		if err := emailFree(ctx, s.store, u.ID, *in.Email); err != nil {
			return nil, err
		}
	}
	if err := in.apply(u); err != nil {
		return nil, err
	}
	u.UpdatedAt = s.now()

	updated, err := s.store.Update(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("User not found")
	}
	return updated, nil
}

// Delete removes an account. Content it authored is kept.
func (s *Users) Delete(ctx context.Context, p *models.Principal, id uuid.UUID) error {
	if err := authz.RequireRole(p, models.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.byID(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
