package image

import (
	"context"
	"sync"
)

// Repository persists image records. Add assigns the ID.
type Repository interface {
	Add(ctx context.Context, img *GeneratedImage) (int64, error)
	Delete(ctx context.Context, id int64) error
	All(ctx context.Context) ([]*GeneratedImage, error)
}

// MemoryRepository keeps records in process memory.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	images []*GeneratedImage
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

func (r *MemoryRepository) Add(ctx context.Context, img *GeneratedImage) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *img
	stored.ID = r.nextID
	r.nextID++
	r.images = append(r.images, &stored)
	return stored.ID, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, img := range r.images {
		if img.ID == id {
			r.images = append(r.images[:i], r.images[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) All(ctx context.Context) ([]*GeneratedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*GeneratedImage, 0, len(r.images))
	for _, img := range r.images {
		c := *img
		out = append(out, &c)
	}
	return out, nil
}
