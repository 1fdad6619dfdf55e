// Package storage provides S3-compatible object storage for alert evidence
// files. The interface is media-focused: photos and short videos captured by
// citizens when reporting an incident.
package storage

import (
	"context"
	"io"
	"time"
)

// SignedURL carries a time-limited URL for direct browser access to an object.
type SignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ObjectStore is the storage surface the alert module depends on.
type ObjectStore interface {
	// Upload stores an evidence file under the given alert folder and
	// returns the generated file key.
	Upload(ctx context.Context, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)

	// Download streams an object. The caller closes the returned reader.
	Download(ctx context.Context, fileKey string) (io.ReadCloser, error)

	// SignedDownloadURL creates a presigned GET URL for an object.
	SignedDownloadURL(ctx context.Context, fileKey string) (*SignedURL, error)

	// Delete removes an object.
	Delete(ctx context.Context, fileKey string) error

	// ValidateContentType rejects media types evidence may not use.
	ValidateContentType(contentType string) error

	// ValidateFileSize rejects empty and oversized uploads.
	ValidateFileSize(sizeBytes int64) error

	// MaxFileSize returns the upload size limit in bytes.
	MaxFileSize() int64
}
