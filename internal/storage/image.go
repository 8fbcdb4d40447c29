// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned for files that are not a decodable
// jpeg, png or webp image.
var ErrUnsupportedImage = errors.New("images only: jpeg, jpg, png or webp")

// imageExt maps the accepted content types to file extensions.
var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// DetectImage sniffs data and verifies that it decodes as an accepted
// image format. It returns the content type and file extension.
func DetectImage(data []byte) (contentType, ext string, err error) {
	contentType = http.DetectContentType(data)
	ext, ok := imageExt[contentType]
	if !ok {
		return "", "", ErrUnsupportedImage
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return "", "", ErrUnsupportedImage
	}
	if "image/"+format != contentType {
		return "", "", ErrUnsupportedImage
	}
	return contentType, ext, nil
}
