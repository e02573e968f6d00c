// Package storage keeps uploaded profile pictures on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrTooLarge is returned when an upload exceeds the store's size cap.
	ErrTooLarge = errors.New("file too large")
	// ErrUnsupportedType is returned for content that is not a jpeg, png or webp image.
	ErrUnsupportedType = errors.New("unsupported image type")
)

var imageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ImageStore writes images under a single directory, named {user_id}_{random}.{ext}.
type ImageStore struct {
	dir      string
	maxBytes int64
}

func NewImageStore(dir string, maxBytes int64) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &ImageStore{dir: dir, maxBytes: maxBytes}, nil
}

// MaxBytes is the size cap for a single image.
func (s *ImageStore) MaxBytes() int64 {
	return s.maxBytes
}

// Save validates and stores the image read from r, returning the new file name.
// filename is the client-side name and only its extension is inspected.
func (s *ImageStore) Save(userID uint, filename string, r io.Reader) (string, error) {
	if !imageExtensions[strings.ToLower(filepath.Ext(filename))] {
		return "", ErrUnsupportedType
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}
	ext, ok := imageTypes[http.DetectContentType(data)]
	if !ok {
		return "", ErrUnsupportedType
	}

	name := fmt.Sprintf("%d_%s.%s", userID, strings.ReplaceAll(uuid.NewString(), "-", ""), ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

// Path returns the absolute location of a stored image. Names containing path separators are
// rejected so callers cannot escape the store directory.
func (s *ImageStore) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", os.ErrNotExist
	}
	return filepath.Join(s.dir, name), nil
}

// Remove deletes a stored image. Removing a missing file is not an error.
func (s *ImageStore) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// StoredFile is a file in the store directory.
type StoredFile struct {
	Name    string
	ModTime time.Time
}

// List returns all stored files. Files removed while listing are skipped.
func (s *ImageStore) List() ([]StoredFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}
	files := make([]StoredFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		files = append(files, StoredFile{Name: entry.Name(), ModTime: info.ModTime()})
	}
	return files, nil
}
