// Package storage persists uploaded images and hands back an opaque
// reference the rest of the system stores verbatim.
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"foodgram/internal/apperr"

	"github.com/google/uuid"
)

// ImageStore is the blob store behind recipe images and avatars.
type ImageStore interface {
	// Put stores data under key and returns its public reference.
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	// Delete removes the object behind ref. Unknown refs are ignored.
	Delete(ctx context.Context, ref string) error
}

// Image is a decoded upload.
type Image struct {
	ContentType string
	Ext         string
	Data        []byte
}

// IsDataURI reports whether s carries an inline upload rather than an
// existing reference.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// DecodeDataURI parses "data:image/png;base64,...." into an Image.
func DecodeDataURI(s string, maxBytes int) (*Image, error) {
	if !IsDataURI(s) {
		return nil, apperr.ErrInvalidImage.WithMessage("image must be a base64 data URI")
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, apperr.ErrInvalidImage
	}

	contentType, encoding, _ := strings.Cut(header, ";")
	if encoding != "base64" {
		return nil, apperr.ErrInvalidImage.WithMessage("image must be base64 encoded")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperr.ErrInvalidImage.WithMessage("unsupported content type %q", contentType)
	}

	if maxBytes > 0 && base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+2 {
		return nil, apperr.ErrInvalidImage.WithMessage("image exceeds %d bytes", maxBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperr.ErrInvalidImage.WithCause(err)
	}
	if len(data) == 0 {
		return nil, apperr.ErrInvalidImage.WithMessage("image is empty")
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return nil, apperr.ErrInvalidImage.WithMessage("image exceeds %d bytes", maxBytes)
	}

	return &Image{ContentType: contentType, Ext: extension(contentType), Data: data}, nil
}

func extension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// Uploader turns user-supplied image fields into stored references.
type Uploader struct {
	store    ImageStore
	maxBytes int
}

func NewUploader(store ImageStore, maxBytes int) *Uploader {
	return &Uploader{store: store, maxBytes: maxBytes}
}

// Save stores a data URI under prefix and returns the new reference.
// current is the reference the owning row already holds; passing it back
// keeps the image. Any other reference is rejected, so a row only ever
// points at an object it uploaded itself.
func (u *Uploader) Save(ctx context.Context, prefix, value, current string) (string, error) {
	if !IsDataURI(value) {
		if value != "" && value == current {
			return current, nil
		}
		return "", apperr.ErrInvalidImage.WithMessage("image must be a base64 data URI")
	}
	img, err := DecodeDataURI(value, u.maxBytes)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%s%s", strings.Trim(prefix, "/"), uuid.New().String(), img.Ext)
	ref, err := u.store.Put(ctx, key, img.ContentType, img.Data)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return ref, nil
}

// Delete removes a previously saved reference.
func (u *Uploader) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	return u.store.Delete(ctx, ref)
}
