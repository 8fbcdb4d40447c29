// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps assets under a local directory that the HTTP server
// exposes at urlPrefix.
type DiskStore struct {
	dir       string
	urlPrefix string
}

// NewDiskStore creates the directory if needed.
func NewDiskStore(dir, urlPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("disk store: %w", err)
	}
	return &DiskStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Dir returns the root directory of the store.
func (d *DiskStore) Dir() string { return d.dir }

// path resolves key inside the root, rejecting escapes.
func (d *DiskStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("disk store: empty key")
	}
	return filepath.Join(d.dir, filepath.FromSlash(clean)), nil
}

// Put writes body to dir/key and returns urlPrefix/key.
func (d *DiskStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	p, err := d.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("disk store mkdir: %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("disk store create: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(p)
		return "", fmt.Errorf("disk store write: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("disk store close: %w", err)
	}
	return d.urlPrefix + "/" + strings.TrimPrefix(filepath.ToSlash(key), "/"), nil
}

// Delete removes the file behind ref. Unknown references are ignored.
func (d *DiskStore) Delete(_ context.Context, ref string) error {
	prefix := d.urlPrefix + "/"
	if !strings.HasPrefix(ref, prefix) {
		return nil
	}
	p, err := d.path(ref[len(prefix):])
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("disk store delete: %w", err)
	}
	return nil
}
