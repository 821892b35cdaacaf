package storage

import (
	"context"
	"io"
	"time"
)

// ServiceConfig holds the settings for the avatar object store.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// StorageService is the collaborator interface for avatar objects.
// Profile rows store object keys; message enrichment and the profile
// API resolve them to short-lived download URLs through this interface.
type StorageService interface {
	// Upload stores an object server-side and returns its key.
	Upload(ctx context.Context, key string, mimeType string, body io.Reader) error

	// PresignDownload generates a time-limited URL for reading a key.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error
}

// NewStorageService returns the S3-compatible implementation.
func NewStorageService(cfg ServiceConfig) (StorageService, error) {
	return newS3Client(cfg)
}
