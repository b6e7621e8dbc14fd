package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nsqio/go-nsq"

	"klarity/internal/middleware"
)

type Pipeline interface {
	Process(ctx context.Context, contentID, filePath string)
}

// IngestConsumer feeds queued ingestion tasks into the pipeline. It always
// acks: an item gets exactly one processing attempt, and its outcome lives in
// the content row's status, never in broker redelivery.
type IngestConsumer struct {
	pipeline Pipeline
}

func NewIngestConsumer(p Pipeline) *IngestConsumer {
	return &IngestConsumer{pipeline: p}
}

func (h *IngestConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var task IngestTask
	if err := json.Unmarshal(m.Body, &task); err != nil {
		// Poison pill: invalid JSON, don't retry
		slog.Error("poison pill: invalid ingest task", "error", err)
		return nil
	}

	ctx := context.Background()
	if task.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, task.CorrelationID)
	}

	if task.ContentID == "" {
		slog.ErrorContext(ctx, "ingest task missing content_id, dropping")
		return nil
	}

	h.pipeline.Process(ctx, task.ContentID, task.FilePath)
	return nil
}
