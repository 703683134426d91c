// Package storage stores testimonial images.
//
// LocalStorage writes to disk and is served by the API under /files/ in
// development. R2Storage writes to Cloudflare R2 through the S3 API.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Storage is the object store behind testimonial images.
type Storage interface {
	// Put stores data at key, replacing any existing object.
	// Returns ErrTooLarge if data exceeds opts.MaxSize.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Delete removes the object at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL of the object at key.
	URL(key string) (string, error)
}

// PutOptions configures how an object is stored.
type PutOptions struct {
	ContentType string

	// MaxSize in bytes; 0 means no limit.
	MaxSize int64

	// CacheControl is sent with the object when the backend supports it.
	CacheControl string
}

// ImmutableCacheControl suits keys that are never rewritten.
const ImmutableCacheControl = "public, max-age=31536000, immutable"

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory where files are stored.
	// Example: "./storage" or "/var/lib/vouch/files"
	BasePath string

	// BaseURL is the public URL prefix for accessing files.
	// Example: "http://localhost:8080/files"
	BaseURL string
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// PublicURL is the bucket's public domain, e.g. "https://media.vouch.app".
	// When empty the r2.dev development URL for the bucket is used.
	PublicURL string

	// Endpoint overrides the account endpoint, for S3-compatible test servers.
	Endpoint string
}

// TestimonialImageKey generates a storage key for a testimonial image.
// Images are always re-encoded as JPEG before storage.
//
//	testimonials/{testimonialID}/images/{uuid}.jpg
func TestimonialImageKey(testimonialID uuid.UUID) string {
	return fmt.Sprintf("testimonials/%s/images/%s.jpg", testimonialID, uuid.New())
}

// validateKey rejects empty keys and any that try to climb out of the root.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return ErrInvalidKey
		}
	}
	return nil
}

// readLimited reads data fully, failing with ErrTooLarge past max bytes.
func readLimited(data io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(data)
	}
	buf, err := io.ReadAll(io.LimitReader(data, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(buf)) > max {
		return nil, ErrTooLarge
	}
	return buf, nil
}
