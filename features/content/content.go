package content

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"klarity/features/space"
	"klarity/internal/config"
	"klarity/internal/middleware"
	"klarity/internal/worker"
)

var (
	ErrNotFound = errors.New("content not found")
	ErrNotOwner = errors.New("user not authorized")
)

const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

// Content is one ingested source. Title, Text and Summary are filled in by
// the pipeline; Status walks pending -> processed|failed exactly once.
type Content struct {
	ID            string    `json:"id"`
	UserID        string    `json:"-"`
	SpaceID       string    `json:"space_id"`
	URL           string    `json:"url"`
	Title         string    `json:"title,omitempty"`
	Text          string    `json:"text,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Repository interface {
	Save(ctx context.Context, c *Content) error
	Get(ctx context.Context, id string) (*Content, error)
	ListByUser(ctx context.Context, userID string) ([]Content, error)
	ListBySpace(ctx context.Context, spaceID string) ([]Content, error)
	Delete(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

// SpaceVerifier enforces that the target space exists and belongs to the
// requester before any background work is queued.
type SpaceVerifier interface {
	GetOwned(ctx context.Context, id, userID string) (*space.Space, error)
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type ChunkStore interface {
	DeleteChunksByContentID(ctx context.Context, contentID string) error
}

type Service struct {
	repo       Repository
	spaces     SpaceVerifier
	pub        EventPublisher
	chunkStore ChunkStore
}

func NewService(repo Repository, spaces SpaceVerifier, pub EventPublisher, chunkStore ChunkStore) *Service {
	return &Service{repo: repo, spaces: spaces, pub: pub, chunkStore: chunkStore}
}

// Create stores a pending item and queues its ingestion. The caller gets the
// pending record back immediately; processing happens in the background.
func (s *Service) Create(ctx context.Context, userID, spaceID, url string, tags []string) (*Content, error) {
	if _, err := s.spaces.GetOwned(ctx, spaceID, userID); err != nil {
		return nil, err
	}

	c := &Content{
		UserID:  userID,
		SpaceID: spaceID,
		URL:     url,
		Tags:    tags,
		Status:  StatusPending,
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.enqueue(ctx, c, "")
	return c, nil
}

// Upload is Create for an uploaded file: the item's url carries the original
// filename, the queued task carries the server-side temp path.
func (s *Service) Upload(ctx context.Context, userID, spaceID, originalName, tempPath string) (*Content, error) {
	if _, err := s.spaces.GetOwned(ctx, spaceID, userID); err != nil {
		return nil, err
	}

	c := &Content{
		UserID:  userID,
		SpaceID: spaceID,
		URL:     originalName,
		Status:  StatusPending,
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.enqueue(ctx, c, tempPath)
	return c, nil
}

func (s *Service) enqueue(ctx context.Context, c *Content, filePath string) {
	payload, _ := json.Marshal(worker.IngestTask{
		ContentID:     c.ID,
		FilePath:      filePath,
		CorrelationID: middleware.GetCorrelationID(ctx),
	})

	if err := s.pub.Publish(config.TopicContentIngest, payload); err != nil {
		// The item would sit in pending forever; fail it so the outcome is
		// visible to the owner.
		slog.ErrorContext(ctx, "failed to publish ingest task", "error", err, "content_id", c.ID)
		if markErr := s.repo.MarkFailed(ctx, c.ID, "failed to queue ingestion"); markErr != nil {
			slog.ErrorContext(ctx, "failed to mark content as failed", "error", markErr, "content_id", c.ID)
		}
		c.Status = StatusFailed
		c.FailureReason = "failed to queue ingestion"
		return
	}

	slog.InfoContext(ctx, "published ingest task", "content_id", c.ID, "url", c.URL)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Content, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListBySpace(ctx context.Context, spaceID, userID string) ([]Content, error) {
	if _, err := s.spaces.GetOwned(ctx, spaceID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListBySpace(ctx, spaceID)
}

// Delete removes the item's vectors first, then the row. Leaving orphaned
// vectors behind would let deleted material keep surfacing in chat.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return ErrNotOwner
	}

	if err := s.chunkStore.DeleteChunksByContentID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
