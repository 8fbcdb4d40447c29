// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quillpress/internal/apperr"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8)), nil); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	return buf.Bytes()
}

func encodeGIF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gif.Encode(&buf, image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White}), nil); err != nil {
		t.Fatalf("gif encode: %v", err)
	}
	return buf.Bytes()
}

func TestDetectImage(t *testing.T) {
	pngData := encodePNG(t)
	tests := []struct {
		name     string
		data     []byte
		wantType string
		wantExt  string
		wantErr  bool
	}{
		{"png", pngData, "image/png", ".png", false},
		{"jpeg", encodeJPEG(t), "image/jpeg", ".jpg", false},
		{"gif rejected", encodeGIF(t), "", "", true},
		{"text rejected", []byte("hello, world"), "", "", true},
		{"truncated png", pngData[:12], "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, ext, err := DetectImage(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", ct)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectImage: %v", err)
			}
			if ct != tt.wantType || ext != tt.wantExt {
				t.Errorf("got (%s, %s), want (%s, %s)", ct, ext, tt.wantType, tt.wantExt)
			}
		})
	}
}

func TestDiskStorePutDelete(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDiskStore(dir, "/uploads/")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	ctx := context.Background()

	ref, err := d.Put(ctx, "posts/a.png", "image/png", strings.NewReader("data"), 4)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ref != "/uploads/posts/a.png" {
		t.Errorf("ref: got %q", ref)
	}
	if b, err := os.ReadFile(filepath.Join(dir, "posts", "a.png")); err != nil || string(b) != "data" {
		t.Fatalf("file content: %q %v", b, err)
	}

	// Keys cannot escape the root.
	if _, err := d.Put(ctx, "../../escape.png", "image/png", strings.NewReader("x"), 1); err != nil {
		t.Fatalf("Put escape: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.png")); err != nil {
		t.Errorf("expected escaped key to be rooted inside dir: %v", err)
	}

	if err := d.Delete(ctx, ref); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "posts", "a.png")); !os.IsNotExist(err) {
		t.Error("expected file to be removed")
	}
	if err := d.Delete(ctx, "https://elsewhere/x.png"); err != nil {
		t.Errorf("foreign ref should be ignored: %v", err)
	}
}

func TestUploader(t *testing.T) {
	d, err := NewDiskStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	u := NewUploader(d, 1<<20)
	ctx := context.Background()

	ref, err := u.Upload(ctx, "featuredImage", bytes.NewReader(encodePNG(t)))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(ref, "/uploads/posts/post-") || !strings.HasSuffix(ref, ".png") {
		t.Errorf("ref: got %q", ref)
	}

	_, err = u.Upload(ctx, "featuredImage", strings.NewReader("not an image at all"))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("non-image: got %v, want validation error", err)
	}

	small := NewUploader(d, 16)
	_, err = small.Upload(ctx, "featuredImage", bytes.NewReader(encodePNG(t)))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("oversized: got %v, want validation error", err)
	}

	if err := u.Discard(ctx, ref); err != nil {
		t.Errorf("Discard: %v", err)
	}
}

func TestUploaderKeysAreUnique(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDiskStore(dir, "/uploads")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	u := NewUploader(d, 1<<20)
	ctx := context.Background()
	img := encodePNG(t)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		ref, err := u.Upload(ctx, "featuredImage", bytes.NewReader(img))
		if err != nil {
			t.Fatalf("Upload %d: %v", i, err)
		}
		if seen[ref] {
			t.Fatalf("duplicate ref %q", ref)
		}
		seen[ref] = true
	}

	files, err := filepath.Glob(filepath.Join(dir, "posts", "post-*.png"))
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(files) != len(seen) {
		t.Errorf("files on disk: got %d, want %d", len(files), len(seen))
	}
}

func TestS3StoreDisabledWithoutCredentials(t *testing.T) {
	s, err := NewS3Store("", "us-east-1", "", "", "media", "")
	if err != nil || s != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", s, err)
	}
}

func TestS3StoreURLs(t *testing.T) {
	s, err := NewS3Store("https://s3.example.com/", "eu-central", "ak", "sk", "media", "")
	if err != nil || s == nil {
		t.Fatalf("NewS3Store: %v", err)
	}
	url := s.FileURL("posts/post-1.png")
	if url != "https://s3.example.com/media/posts/post-1.png" {
		t.Errorf("FileURL: got %q", url)
	}
	if key, ok := s.ExtractKey(url); !ok || key != "posts/post-1.png" {
		t.Errorf("ExtractKey: got %q %v", key, ok)
	}
	if _, ok := s.ExtractKey("https://cdn.other.com/x.png"); ok {
		t.Error("foreign URL must not match")
	}

	cdn, _ := NewS3Store("https://s3.example.com", "eu-central", "ak", "sk", "media", "https://cdn.example.com/")
	if got := cdn.FileURL("a.png"); got != "https://cdn.example.com/a.png" {
		t.Errorf("CDN FileURL: got %q", got)
	}
}
