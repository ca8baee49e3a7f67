package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore persists uploaded course material files under a base directory
// and resolves public URLs for stored objects.
type BlobStore struct {
	baseDir       string
	publicBaseURL string
}

// NewBlobStore ensures the base directory exists and returns a handle.
func NewBlobStore(baseDir, publicBaseURL string) (*BlobStore, error) {
	if baseDir == "" {
		baseDir = "./course-materials"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &BlobStore{
		baseDir:       baseDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Upload writes the given bytes to the provided object path and returns the
// path under which the object was stored.
func (s *BlobStore) Upload(objectPath string, data []byte) (string, error) {
	path, err := s.resolve(objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return objectPath, nil
}

// UploadStream copies from reader into the target object path.
func (s *BlobStore) UploadStream(objectPath string, r io.Reader) (string, error) {
	path, err := s.resolve(objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare object directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write object stream: %w", err)
	}
	return objectPath, nil
}

// PublicURL resolves the public reference for a stored object.
func (s *BlobStore) PublicURL(objectPath string) string {
	return s.publicBaseURL + "/" + strings.TrimLeft(filepath.ToSlash(objectPath), "/")
}

// Open returns a read-only handle for the stored object.
func (s *BlobStore) Open(objectPath string) (*os.File, error) {
	path, err := s.resolve(objectPath)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	return file, nil
}

// Delete removes a stored object if present.
func (s *BlobStore) Delete(objectPath string) error {
	path, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *BlobStore) resolve(objectPath string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(objectPath))
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("invalid object path %q", objectPath)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}
