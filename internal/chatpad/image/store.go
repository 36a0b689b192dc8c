package image

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Generator produces a base64 encoded image for a prompt at a pixel size.
type Generator interface {
	Generate(ctx context.Context, prompt, size string) (string, error)
}

// Store is the in-memory list of generated images backed by a Repository.
type Store struct {
	mu        sync.Mutex
	repo      Repository
	generator Generator
	logger    *zap.Logger
	images    []*GeneratedImage
}

// Open loads every stored record.
func Open(ctx context.Context, repo Repository, generator Generator, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	images, err := repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}
	return &Store{
		repo:      repo,
		generator: generator,
		logger:    logger,
		images:    images,
	}, nil
}

// Generate requests one image and records it. A failure to persist the record
// is logged; the image is still returned, with ID 0, and is not listed.
func (s *Store) Generate(ctx context.Context, prompt, sizeLabel string) (*GeneratedImage, error) {
	if prompt == "" {
		return nil, errors.New("prompt is empty")
	}
	size, err := SizeFor(sizeLabel)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("generating image", zap.String("size", size))
	b64, err := s.generator.Generate(ctx, prompt, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}

	img := &GeneratedImage{
		Prompt:    prompt,
		Size:      size,
		Base64:    b64,
		CreatedAt: time.Now(),
	}

	id, err := s.repo.Add(context.WithoutCancel(ctx), img)
	if err != nil {
		s.logger.Error("failed to save image", zap.Error(err))
		return img, nil
	}
	img.ID = id

	s.mu.Lock()
	s.images = append(s.images, img)
	s.mu.Unlock()

	c := *img
	return &c, nil
}

// Delete removes the image from the repository and from the list.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, img := range s.images {
		if img.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	s.images = append(s.images[:idx], s.images[idx+1:]...)
	return nil
}

// ListAll returns every image, oldest first.
func (s *Store) ListAll() []*GeneratedImage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*GeneratedImage, 0, len(s.images))
	for _, img := range s.images {
		c := *img
		out = append(out, &c)
	}
	return out
}

// Get returns the image with id.
func (s *Store) Get(id int64) (*GeneratedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, img := range s.images {
		if img.ID == id {
			c := *img
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
}
