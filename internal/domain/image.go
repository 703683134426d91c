// Package domain contains core business types and interfaces.
//
// This file defines limits and validation for testimonial image uploads.
package domain

// SupportedImageTypes maps accepted upload MIME types to their human-readable names.
var SupportedImageTypes = map[string]string{
	"image/jpeg": "JPEG",
	"image/png":  "PNG",
	"image/gif":  "GIF",
}

const (
	// MaxImageSize is the maximum accepted size for an uploaded image (10MB).
	MaxImageSize = 10 * 1024 * 1024

	// MaxImageDimension bounds the longer edge of a stored image.
	MaxImageDimension = 1600

	// ImageJPEGQuality is the quality used when re-encoding stored images.
	ImageJPEGQuality = 85
)

// IsValidImageContentType checks if the content type is supported.
func IsValidImageContentType(contentType string) bool {
	_, ok := SupportedImageTypes[contentType]
	return ok
}

// ValidateImageSize checks if the file size is within limits.
func ValidateImageSize(size int64) error {
	if size > MaxImageSize {
		return Errorf(ETOOLARGE, "image.validate", "Image size %d bytes exceeds maximum of %d bytes (%.1fMB)", size, MaxImageSize, float64(MaxImageSize)/(1024*1024))
	}
	if size == 0 {
		return Invalid("image.validate", "Image file is empty")
	}
	return nil
}
