package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"sharesphere-backend/internal/errors"
)

// extByType maps accepted MIME types to the extension stored on disk.
var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageStore keeps uploaded proof images on the local filesystem. Files are
// renamed to opaque UUIDs; the returned keys are what gets persisted on
// transactions and served back over the uploads endpoint.
type ImageStore struct {
	dir      string
	maxBytes int64
	allowed  map[string]string
}

func NewImageStore(dir string, maxFileSizeMB int64, allowedTypes []string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	allowed := make(map[string]string, len(allowedTypes))
	for _, t := range allowedTypes {
		if ext, ok := extByType[t]; ok {
			allowed[t] = ext
		}
	}
	if len(allowed) == 0 {
		allowed = map[string]string{"image/jpeg": ".jpg", "image/png": ".png"}
	}
	return &ImageStore{
		dir:      dir,
		maxBytes: maxFileSizeMB * 1024 * 1024,
		allowed:  allowed,
	}, nil
}

// SaveMultipart stores one uploaded file and returns its key.
func (s *ImageStore) SaveMultipart(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxBytes {
		return "", errors.Validation("image %q exceeds the %d MB limit", fh.Filename, s.maxBytes/(1024*1024))
	}
	contentType := fh.Header.Get("Content-Type")
	ext, ok := s.allowed[contentType]
	if !ok {
		return "", errors.Validation("unsupported image type %q", contentType)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	key := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1)); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return key, nil
}

// SaveAll stores every file of a multipart set, cleaning up on first
// failure.
func (s *ImageStore) SaveAll(fhs []*multipart.FileHeader) ([]string, error) {
	keys := make([]string, 0, len(fhs))
	for _, fh := range fhs {
		key, err := s.SaveMultipart(fh)
		if err != nil {
			for _, k := range keys {
				s.Delete(k)
			}
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Open returns a reader for a stored image plus its content type. Keys with
// path separators are rejected so clients cannot escape the upload dir.
func (s *ImageStore) Open(key string) (io.ReadCloser, string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return nil, "", errors.NotFound("image not found")
	}
	f, err := os.Open(filepath.Join(s.dir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errors.NotFound("image not found")
		}
		return nil, "", err
	}
	return f, contentTypeFor(key), nil
}

func (s *ImageStore) Delete(key string) error {
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func contentTypeFor(key string) string {
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return "application/octet-stream"
}
