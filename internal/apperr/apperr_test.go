// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad"), KindValidation},
		{"unauthenticated", Unauthenticated("who"), KindUnauthenticated},
		{"forbidden", Forbidden("no"), KindForbidden},
		{"not found", NotFound("gone"), KindNotFound},
		{"conflict", Conflict("dup"), KindConflict},
		{"server", Server(errors.New("boom")), KindServer},
		{"plain error", errors.New("boom"), KindServer},
		{"wrapped", fmt.Errorf("create post: %w", Conflict("dup")), KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	if Is(nil, KindServer) {
		t.Error("nil error must not match any kind")
	}
	if !Is(NotFound("x"), KindNotFound) {
		t.Error("expected NotFound to match")
	}
	if Is(NotFound("x"), KindForbidden) {
		t.Error("NotFound must not match Forbidden")
	}
}

func TestFields(t *testing.T) {
	var f Fields
	if err := f.Err("invalid"); err != nil {
		t.Fatalf("empty fields should produce nil error, got %v", err)
	}

	f.Add("title", "must be between 3 and 100 characters")
	f.Add("content", "must be at least 10 characters")

	err := f.Err("Invalid post")
	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if appErr.Kind != KindValidation {
		t.Errorf("kind: got %v, want %v", appErr.Kind, KindValidation)
	}
	if len(appErr.Fields) != 2 {
		t.Fatalf("fields: got %d, want 2", len(appErr.Fields))
	}
	want := "Invalid post: title must be between 3 and 100 characters; content must be at least 10 characters"
	if appErr.Error() != want {
		t.Errorf("message: got %q, want %q", appErr.Error(), want)
	}
}

func TestServerHidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Server(cause)
	if err.Message != "Server Error" {
		t.Errorf("message: got %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("expected Server error to unwrap to its cause")
	}
	if KindServer.String() != "ServerError" {
		t.Errorf("String: got %q", KindServer.String())
	}
}
