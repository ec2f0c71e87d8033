package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalDisk stores files in a directory that the server exposes as static files.
type LocalDisk struct {
	root      string
	urlPrefix string
}

// NewLocalDisk creates root if needed. Stored files are addressed as urlPrefix/key.
func NewLocalDisk(root, urlPrefix string) (*LocalDisk, error) {
	if root == "" {
		root = "uploads"
	}
	if urlPrefix == "" {
		urlPrefix = "/uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage/local: mkdir %s: %w", root, err)
	}
	return &LocalDisk{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Root is the directory files are written to.
func (d *LocalDisk) Root() string { return d.root }

func (d *LocalDisk) abs(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("storage/local: empty key")
	}
	return filepath.Join(d.root, filepath.FromSlash(clean)), nil
}

// Upload writes data to root/key.
func (d *LocalDisk) Upload(_ context.Context, key, _ string, data []byte) (string, error) {
	full, err := d.abs(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage/local: mkdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("storage/local: write %s: %w", key, err)
	}
	return d.urlPrefix + path.Clean("/"+key), nil
}

// Delete removes root/key. Missing files are not an error.
func (d *LocalDisk) Delete(_ context.Context, key string) error {
	full, err := d.abs(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage/local: delete %s: %w", key, err)
	}
	return nil
}
