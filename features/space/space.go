package space

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var (
	ErrNotFound = errors.New("space not found")
	ErrNotOwner = errors.New("user not authorized")
)

// Space is a user-owned named collection of content items. Its name and
// description double as the topical descriptor for chat fallback mode.
type Space struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Repository interface {
	Save(ctx context.Context, sp *Space) error
	Get(ctx context.Context, id string) (*Space, error)
	ListByUser(ctx context.Context, userID string) ([]Space, error)
	Update(ctx context.Context, sp *Space) error
	Delete(ctx context.Context, id string) error
}

// ChunkStore is the vector-index surface the space feature needs: deleting a
// space removes its vectors so the index holds no orphans.
type ChunkStore interface {
	DeleteChunksBySpaceID(ctx context.Context, spaceID string) error
}

type Service struct {
	repo       Repository
	chunkStore ChunkStore
}

func NewService(repo Repository, chunkStore ChunkStore) *Service {
	return &Service{repo: repo, chunkStore: chunkStore}
}

func (s *Service) Create(ctx context.Context, sp *Space) error {
	return s.repo.Save(ctx, sp)
}

func (s *Service) List(ctx context.Context, userID string) ([]Space, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetOwned loads a space and enforces ownership. ErrNotFound when the id is
// unknown, ErrNotOwner when it belongs to someone else.
func (s *Service) GetOwned(ctx context.Context, id, userID string) (*Space, error) {
	sp, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp.UserID != userID {
		return nil, ErrNotOwner
	}
	return sp, nil
}

func (s *Service) Update(ctx context.Context, id, userID, name, description string) (*Space, error) {
	sp, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		sp.Name = name
	}
	sp.Description = description

	if err := s.repo.Update(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

// Delete removes the space, its content items (datastore cascade) and its
// indexed vectors.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.GetOwned(ctx, id, userID); err != nil {
		return err
	}

	if err := s.chunkStore.DeleteChunksBySpaceID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "space deleted", "space_id", id)
	return nil
}
