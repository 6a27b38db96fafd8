// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging validates uploaded listing photos and produces the
// JPEG thumbnails shown in gallery grids.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// ThumbWidth is the width of gallery thumbnails in pixels.
	ThumbWidth = 480

	// thumbQuality is the JPEG quality for generated thumbnails.
	thumbQuality = 80

	// maxPixels caps decoded image size (about 400 MB as RGBA).
	maxPixels = 100_000_000
)

// ErrNotImage is returned for uploads whose content is not an accepted
// image type.
var ErrNotImage = errors.New("imaging: unsupported image type")

// accepted maps sniffed MIME types to the extension used in object keys.
var accepted = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Sniff detects the content type of data and returns it with its file
// extension. Anything other than JPEG, PNG, GIF or WebP yields ErrNotImage.
func Sniff(data []byte) (contentType, ext string, err error) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	contentType = http.DetectContentType(head)
	ext, ok := accepted[contentType]
	if !ok {
		return contentType, "", fmt.Errorf("%w: %s", ErrNotImage, contentType)
	}
	return contentType, ext, nil
}

// Thumbnail scales the image down to maxWidth, keeping the aspect ratio,
// and encodes it as JPEG. It returns nil when the image is already narrow
// enough. GIFs are thumbnailed from their first frame.
func Thumbnail(data []byte, maxWidth int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Width <= maxWidth {
		return nil, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
