package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidImage    = errors.New("image must be a base64 data URI")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// extByMime maps accepted image MIME types to file extensions.
var extByMime = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store saves decoded recipe images to local disk and hands back opaque
// URL references. Callers never look inside the reference.
type Store struct {
	baseDir    string
	staticBase string
}

func NewStore(baseDir, staticBase string) *Store {
	if baseDir == "" {
		baseDir = "./media"
	}
	if staticBase == "" {
		staticBase = "/media"
	}
	return &Store{baseDir: baseDir, staticBase: staticBase}
}

// SaveDataURI decodes a "data:image/...;base64,..." payload, writes it
// under baseDir and returns the URL path to serve it from.
func (s *Store) SaveDataURI(dataURI string) (string, error) {
	mimeType, payload, ok := splitDataURI(dataURI)
	if !ok {
		return "", ErrInvalidImage
	}
	ext, ok := extByMime[mimeType]
	if !ok {
		return "", ErrUnsupportedType
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrInvalidImage
	}

	dir := filepath.Join(s.baseDir, "recipes")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}

	name := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return s.staticBase + "/recipes/" + name, nil
}

// BaseDir is the directory gin serves as static files.
func (s *Store) BaseDir() string { return s.baseDir }

// StaticBase is the URL prefix the references start with.
func (s *Store) StaticBase() string { return s.staticBase }

func splitDataURI(uri string) (mimeType, payload string, ok bool) {
	if !strings.HasPrefix(uri, "data:") {
		return "", "", false
	}
	meta, payload, found := strings.Cut(uri[len("data:"):], ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return "", "", false
	}
	return strings.TrimSuffix(meta, ";base64"), payload, true
}
