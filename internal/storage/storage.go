// Package storage stores uploaded files on the local disk or in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
)

// Disk is implemented by every storage driver.
type Disk interface {
	// Upload writes data under key and returns the public URL of the stored object.
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
}

// Config selects and configures a driver.
type Config struct {
	Driver    string // "local" or "s3"
	LocalRoot string
	URLPrefix string

	S3Bucket   string
	S3Region   string
	S3Key      string
	S3Secret   string
	S3Endpoint string // leave empty for AWS
	S3URL      string // public base URL, defaults to the bucket's virtual-host URL
}

// New returns the driver named by cfg.Driver.
func New(ctx context.Context, cfg Config) (Disk, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalDisk(cfg.LocalRoot, cfg.URLPrefix)
	case "s3":
		return NewS3Disk(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
