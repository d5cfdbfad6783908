// Package storage persists uploaded files on local disk under a configured
// root, mirroring the public/storage layout the frontend links against.
package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"campushub/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Local stores files under a root directory on the local filesystem.
type Local struct {
	root string
}

// NewLocal returns a Local store rooted at the given directory.
func NewLocal(root string) *Local {
	if root == "" {
		root = "storage"
	}
	return &Local{root: root}
}

// Root returns the storage root directory.
func (l *Local) Root() string {
	return l.root
}

// SaveUpload writes the multipart upload into dir under the storage root,
// using a random filename with the original extension. It returns the path
// relative to the root, with forward slashes, for storing in the database.
func (l *Local) SaveUpload(c *fiber.Ctx, fh *multipart.FileHeader, dir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := fmt.Sprintf("%s%s", uuid.NewString(), ext)
	rel := filepath.ToSlash(filepath.Join(dir, name))
	abs := filepath.Join(l.root, dir, name)

	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := c.SaveFile(fh, abs); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}

	observability.RecordUpload(dir, fh.Size)
	return rel, nil
}

// Abs resolves a stored relative path to an absolute filesystem path.
// Returns an error when the path escapes the storage root.
func (l *Local) Abs(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage path %q", rel)
	}
	return filepath.Join(l.root, clean), nil
}

// Exists reports whether the stored file is present on disk.
func (l *Local) Exists(rel string) bool {
	abs, err := l.Abs(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

// Remove deletes the stored file, best effort. A missing file is not an error.
func (l *Local) Remove(rel string) {
	if rel == "" {
		return
	}
	abs, err := l.Abs(rel)
	if err != nil {
		return
	}
	_ = os.Remove(abs)
}
