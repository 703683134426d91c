// Package service contains the business logic layer.
//
// This file implements best-effort image attachment for testimonials.
package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/DukeRupert/vouch/internal/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// ImageUploader stores a testimonial image and returns its public URL.
type ImageUploader interface {
	// Upload validates, normalizes and stores file. Any error means nothing
	// usable was stored.
	Upload(ctx context.Context, testimonialID uuid.UUID, file *domain.ImageFile) (string, error)

	// Remove deletes an image previously returned by Upload. URLs this
	// uploader did not produce are ignored.
	Remove(ctx context.Context, url string) error
}

// ImageProcessor normalizes uploaded images before storage.
type ImageProcessor interface {
	// Normalize decodes data, bounds its longer edge to maxDimension while
	// preserving aspect ratio, and re-encodes it as JPEG.
	Normalize(data []byte, maxDimension int) ([]byte, error)
}

// =============================================================================
// Implementation
// =============================================================================

// imagingProcessor implements ImageProcessor using the imaging library.
type imagingProcessor struct{}

// NewImagingProcessor creates a new image processor using the imaging library.
func NewImagingProcessor() ImageProcessor {
	return &imagingProcessor{}
}

func (p *imagingProcessor) Normalize(data []byte, maxDimension int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(domain.ImageJPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// imageKeyPrefix is the leading segment of every key storage.TestimonialImageKey builds.
const imageKeyPrefix = "testimonials/"

// imageUploader implements ImageUploader over a storage backend.
type imageUploader struct {
	storage   storage.Storage
	processor ImageProcessor
	logger    *slog.Logger
}

// NewImageUploader creates a new ImageUploader.
func NewImageUploader(store storage.Storage, processor ImageProcessor, logger *slog.Logger) ImageUploader {
	return &imageUploader{
		storage:   store,
		processor: processor,
		logger:    logger,
	}
}

func (u *imageUploader) Upload(ctx context.Context, testimonialID uuid.UUID, file *domain.ImageFile) (string, error) {
	const op = "image.upload"

	if err := domain.ValidateImageSize(int64(len(file.Data))); err != nil {
		return "", err
	}

	contentType := storage.DetectContentType(file.ContentType, file.Data)
	if !domain.IsValidImageContentType(contentType) {
		return "", domain.Invalid(op, fmt.Sprintf("Unsupported image type: %s", contentType))
	}

	normalized, err := u.processor.Normalize(file.Data, domain.MaxImageDimension)
	if err != nil {
		return "", domain.Wrap(err, domain.EINVALID, op, "Image could not be processed")
	}

	key := storage.TestimonialImageKey(testimonialID)
	if err := u.storage.Put(ctx, key, bytes.NewReader(normalized), storage.PutOptions{
		ContentType:  "image/jpeg",
		MaxSize:      domain.MaxImageSize,
		CacheControl: storage.ImmutableCacheControl,
	}); err != nil {
		return "", domain.Internal(err, op, "failed to store image")
	}

	url, err := u.storage.URL(key)
	if err != nil {
		return "", domain.Internal(err, op, "failed to resolve image URL")
	}

	u.logger.Info("testimonial image stored",
		"testimonial_id", testimonialID,
		"key", key,
		"original_size", len(file.Data),
		"stored_size", len(normalized),
	)

	return url, nil
}

func (u *imageUploader) Remove(ctx context.Context, url string) error {
	const op = "image.remove"

	i := strings.Index(url, imageKeyPrefix)
	if i < 0 {
		return nil
	}
	key := url[i:]
	if own, err := u.storage.URL(key); err != nil || own != url {
		return nil
	}

	if err := u.storage.Delete(ctx, key); err != nil {
		return domain.Internal(err, op, "failed to delete image")
	}
	u.logger.Info("testimonial image removed", "key", key)
	return nil
}
