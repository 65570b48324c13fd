package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const maxImageSize = 5 << 20 // 5 MiB

var allowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// InvalidImageError marks an upload rejected by the allow-list or size cap.
// The message is safe to show to the caller.
type InvalidImageError struct {
	msg string
}

func (e *InvalidImageError) Error() string { return e.msg }

// Store saves uploaded vehicle images under a local directory and hands
// back relative paths for persistence on the vehicle record.
type Store struct {
	dir string
}

// New creates the upload directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save validates the file against the extension allow-list and size cap,
// writes it under a fresh uuid filename and returns the relative URL path.
func (s *Store) Save(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))

	allowed := false
	for _, a := range allowedExtensions {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", &InvalidImageError{msg: fmt.Sprintf(
			"file type %q is not allowed, allowed: %s", ext, strings.Join(allowedExtensions, ", "))}
	}

	if file.Size > maxImageSize {
		return "", &InvalidImageError{msg: "file size exceeds the 5 MB limit"}
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer dst.Close()

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return "/uploads/" + name, nil
}

// Delete removes a previously saved image. Best effort: a missing file or
// an empty path is not an error.
func (s *Store) Delete(imagePath string) {
	if imagePath == "" {
		return
	}
	name := filepath.Base(imagePath)
	_ = os.Remove(filepath.Join(s.dir, name))
}
