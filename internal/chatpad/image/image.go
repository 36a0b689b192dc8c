// Package image keeps the records of generated images.
package image

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Size labels accepted by Store.Generate.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"

	DefaultSize = SizeMedium

	// DefaultFileName is used by Save when no path is given.
	DefaultFileName = "generated_image.png"
)

var sizes = map[string]string{
	SizeSmall:  "264x264",
	SizeMedium: "512x512",
	SizeLarge:  "1024x1024",
}

var (
	// ErrUnknownSize is returned for a size label other than small, medium or large.
	ErrUnknownSize = errors.New("unknown image size")
	// ErrNotFound is returned when no image has the requested ID.
	ErrNotFound = errors.New("image not found")
)

// GeneratedImage is one stored image.
type GeneratedImage struct {
	ID        int64     `json:"id"`
	Prompt    string    `json:"prompt"`
	Size      string    `json:"size"`
	Base64    string    `json:"base64"`
	CreatedAt time.Time `json:"created_at"`
}

// SizeFor maps a size label to pixel dimensions. An empty label selects DefaultSize.
func SizeFor(label string) (string, error) {
	if label == "" {
		label = DefaultSize
	}
	size, ok := sizes[label]
	if !ok {
		return "", fmt.Errorf("%w: %q (use small, medium or large)", ErrUnknownSize, label)
	}
	return size, nil
}

// Decode returns the raw image bytes.
func (img *GeneratedImage) Decode() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(img.Base64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %d: %w", img.ID, err)
	}
	return data, nil
}

// Save writes the decoded image to path, or to DefaultFileName when path is empty.
// If path is a directory the file is created inside it. It returns the path written.
func (img *GeneratedImage) Save(path string) (string, error) {
	if path == "" {
		path = DefaultFileName
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}

	data, err := img.Decode()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}
