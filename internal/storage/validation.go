package storage

import (
	"fmt"
	"strings"
)

// allowedContentTypes lists the media types accepted as alert evidence.
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,

	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
}

// ValidateContentType checks the media type, ignoring parameters like charset.
func (s *MinIOStore) ValidateContentType(contentType string) error {
	normalized := strings.Split(contentType, ";")[0]
	normalized = strings.TrimSpace(strings.ToLower(normalized))

	if !allowedContentTypes[normalized] {
		return fmt.Errorf("content type %q is not allowed for evidence", contentType)
	}
	return nil
}

// ValidateFileSize rejects empty and oversized uploads.
func (s *MinIOStore) ValidateFileSize(sizeBytes int64) error {
	if sizeBytes <= 0 {
		return fmt.Errorf("file size must be greater than 0")
	}
	if sizeBytes > s.maxFileSize {
		return fmt.Errorf("file size %d bytes exceeds the %d byte limit", sizeBytes, s.maxFileSize)
	}
	return nil
}

// AllowedContentTypes returns the accepted media types, for client validation.
func AllowedContentTypes() []string {
	types := make([]string, 0, len(allowedContentTypes))
	for ct := range allowedContentTypes {
		types = append(types, ct)
	}
	return types
}

// IsImageContentType reports whether the media type is an image.
func IsImageContentType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}
