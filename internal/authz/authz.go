// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package authz holds the capability checks every mutation path runs.
// The checks are pure predicates over an already-resolved principal and,
// for ownership, an already-fetched entity.
package authz

import (
	"github.com/google/uuid"

	"quillpress/internal/apperr"
	"quillpress/internal/models"
)

// RequireAuthenticated fails with Unauthenticated when p is nil.
func RequireAuthenticated(p *models.Principal) error {
	if p == nil {
		return apperr.Unauthenticated("Not authorized to access this route")
	}
	return nil
}

// RequireRole fails with Unauthenticated when p is nil and with Forbidden
// when p does not hold role.
func RequireRole(p *models.Principal, role models.Role) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if p.Role != role {
		return apperr.Forbidden("User role " + string(p.Role) + " is not authorized to access this route")
	}
	return nil
}

// RequireOwnerOrRole succeeds when p owns the entity or holds role.
func RequireOwnerOrRole(p *models.Principal, ownerID uuid.UUID, role models.Role) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if p.ID == ownerID || p.Role == role {
		return nil
	}
	return apperr.Forbidden("Not authorized to modify this resource")
}
