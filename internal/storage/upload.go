// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"quillpress/internal/apperr"
)

// Uploader validates featured images and stores them.
type Uploader struct {
	store    AssetStore
	maxBytes int64
}

// NewUploader creates an Uploader accepting files up to maxBytes.
func NewUploader(store AssetStore, maxBytes int64) *Uploader {
	return &Uploader{store: store, maxBytes: maxBytes}
}

// MaxBytes is the largest accepted upload.
func (u *Uploader) MaxBytes() int64 { return u.maxBytes }

// Upload stores the image read from r and returns its reference.
// Oversized or non-image files fail with a validation error on field.
func (u *Uploader) Upload(ctx context.Context, field string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > u.maxBytes {
		return "", apperr.Validation("Invalid image",
			apperr.FieldError{Field: field, Msg: fmt.Sprintf("Image must be at most %d bytes", u.maxBytes)})
	}

	contentType, ext, err := DetectImage(data)
	if err != nil {
		return "", apperr.Validation("Invalid image",
			apperr.FieldError{Field: field, Msg: "Images only (jpeg, jpg, png, webp)"})
	}

	key := "posts/post-" + uuid.NewString() + ext
	ref, err := u.store.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return ref, nil
}

// Discard deletes a previously stored reference.
func (u *Uploader) Discard(ctx context.Context, ref string) error {
	return u.store.Delete(ctx, ref)
}
