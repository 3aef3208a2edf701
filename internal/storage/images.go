// Package storage persists uploaded image files under generated unique names.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ImageStore writes and removes image files under a single base directory.
// Paths it hands out are relative, forward-slashed, and prefixed with the
// directory name so clients can use them directly against the static route.
type ImageStore struct {
	baseDir string
}

// NewImageStore creates an ImageStore rooted at baseDir.
func NewImageStore(baseDir string) *ImageStore {
	return &ImageStore{baseDir: filepath.Clean(baseDir)}
}

// Dir returns the base directory holding the stored files.
func (s *ImageStore) Dir() string {
	return s.baseDir
}

// Save stores the stream under a generated unique name, keeping the original
// extension, and returns the relative path to hand back to the client.
func (s *ImageStore) Save(src io.Reader, originalName string) (string, error) {
	name := uuid.New().String() + strings.ToLower(filepath.Ext(originalName))
	dst, err := os.Create(filepath.Join(s.baseDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return filepath.ToSlash(filepath.Join(filepath.Base(s.baseDir), name)), nil
}

// Remove deletes a previously stored file. Failures are logged, never
// propagated; image cleanup is best-effort everywhere it is used.
func (s *ImageStore) Remove(path string) {
	name, ok := s.fileName(path)
	if !ok {
		log.Warn().Str("path", path).Msg("Refusing to remove path outside the image store")
		return
	}
	if err := os.Remove(filepath.Join(s.baseDir, name)); err != nil && !os.IsNotExist(err) {
		log.Error().Err(err).Str("path", path).Msg("Failed to remove image file")
	}
}

// fileName maps a client-visible path back to a bare file name inside the
// store, rejecting anything that would escape the base directory.
func (s *ImageStore) fileName(path string) (string, bool) {
	name := filepath.Base(filepath.FromSlash(path))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", false
	}
	return name, true
}
