package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"klarity/internal/extract"
	"klarity/internal/text"
	"klarity/internal/vector"
)

// Item is the slice of a content record the pipeline reads.
type Item struct {
	ID      string
	UserID  string
	SpaceID string
	URL     string
}

// ContentStore is the primary-datastore surface the orchestrator needs.
type ContentStore interface {
	GetForProcessing(ctx context.Context, id string) (Item, error)
	SaveProcessed(ctx context.Context, id, title, body, summary string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

type Extractor interface {
	Extract(ctx context.Context, in extract.Input) (extract.Result, error)
}

type Normalizer interface {
	Normalize(ctx context.Context, body string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, body string) (string, error)
}

type Embedder interface {
	Embed(ctx context.Context, body string) ([]float32, error)
}

type ChunkStore interface {
	UpsertChunk(ctx context.Context, chunk vector.Chunk) error
	DeleteChunksByContentID(ctx context.Context, contentID string) error
}

type Config struct {
	ChunkWords      int
	IndexMinChars   int
	SummaryEnabled  bool
	SummaryMinChars int

	ExtractTimeout   time.Duration
	TranslateTimeout time.Duration
	SummaryTimeout   time.Duration
	EmbedTimeout     time.Duration
}

// Processor runs the ingestion pipeline for one content item: extract,
// normalize, optionally summarize, persist, then chunk/embed/index. Stages
// run strictly in sequence; there is no fan-out within one item.
type Processor struct {
	contents   ContentStore
	extractor  Extractor
	normalizer Normalizer
	summarizer Summarizer
	embedder   Embedder
	store      ChunkStore
	cfg        Config
}

func NewProcessor(contents ContentStore, ex Extractor, n Normalizer, s Summarizer, e Embedder, store ChunkStore, cfg Config) *Processor {
	return &Processor{
		contents:   contents,
		extractor:  ex,
		normalizer: n,
		summarizer: s,
		embedder:   e,
		store:      store,
		cfg:        cfg,
	}
}

// Process is the orchestrator's top-level entry point. It never returns an
// error and never panics past itself: every failure terminates the item in
// status=failed with a reason, and ingestion stays fire-and-forget for the
// caller. filePath is non-empty only for uploads and is removed on every
// exit path.
func (p *Processor) Process(ctx context.Context, contentID, filePath string) {
	if filePath != "" {
		defer func() {
			if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
				slog.WarnContext(ctx, "failed to remove temp upload", "path", filePath, "error", err)
			}
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "pipeline panic", "content_id", contentID, "panic", r)
			p.fail(ctx, contentID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	slog.InfoContext(ctx, "starting content processing", "content_id", contentID)

	if err := p.run(ctx, contentID, filePath); err != nil {
		slog.ErrorContext(ctx, "content processing failed", "content_id", contentID, "error", err)
		p.fail(ctx, contentID, err.Error())
		return
	}

	slog.InfoContext(ctx, "content processed", "content_id", contentID)
}

func (p *Processor) run(ctx context.Context, contentID, filePath string) error {
	item, err := p.contents.GetForProcessing(ctx, contentID)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}

	extractCtx, cancel := context.WithTimeout(ctx, p.cfg.ExtractTimeout)
	res, err := p.extractor.Extract(extractCtx, extract.Input{URL: item.URL, FilePath: filePath})
	cancel()
	if err != nil {
		return err
	}

	normCtx, cancel := context.WithTimeout(ctx, p.cfg.TranslateTimeout)
	body, err := p.normalizer.Normalize(normCtx, res.Text)
	cancel()
	if err != nil {
		return err
	}

	summary := ""
	if p.cfg.SummaryEnabled && p.summarizer != nil && len(body) > p.cfg.SummaryMinChars {
		sumCtx, cancel := context.WithTimeout(ctx, p.cfg.SummaryTimeout)
		summary, err = p.summarizer.Summarize(sumCtx, body)
		cancel()
		if err != nil {
			return err
		}
	} else {
		slog.DebugContext(ctx, "summarization skipped", "content_id", contentID, "enabled", p.cfg.SummaryEnabled, "length", len(body))
	}

	// Persist before indexing: the textual result is valuable even when
	// indexing later fails. Note that an indexing failure below still flips
	// the item to failed afterwards.
	if err := p.contents.SaveProcessed(ctx, contentID, res.Title, body, summary); err != nil {
		return fmt.Errorf("save processed content: %w", err)
	}

	if len(body) > p.cfg.IndexMinChars {
		if err := p.index(ctx, item, body); err != nil {
			return err
		}
	}

	return nil
}

func (p *Processor) index(ctx context.Context, item Item, body string) error {
	// Old chunks go first so re-processing is idempotent.
	if err := p.store.DeleteChunksByContentID(ctx, item.ID); err != nil {
		return fmt.Errorf("delete old chunks: %w", err)
	}

	chunks := text.ChunkWords(body, p.cfg.ChunkWords)
	for i, chunk := range chunks {
		embedCtx, cancel := context.WithTimeout(ctx, p.cfg.EmbedTimeout)
		vec, err := p.embedder.Embed(embedCtx, chunk)
		cancel()
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}

		err = p.store.UpsertChunk(ctx, vector.Chunk{
			Key:        text.ChunkKey(item.ID, i),
			Text:       chunk,
			Vector:     vec,
			ChunkIndex: i,
			ContentID:  item.ID,
			SpaceID:    item.SpaceID,
			UserID:     item.UserID,
		})
		if err != nil {
			return fmt.Errorf("upsert chunk %d: %w", i, err)
		}
	}

	slog.InfoContext(ctx, "indexed chunks", "content_id", item.ID, "count", len(chunks))
	return nil
}

func (p *Processor) fail(ctx context.Context, contentID, reason string) {
	if err := p.contents.MarkFailed(ctx, contentID, reason); err != nil {
		slog.ErrorContext(ctx, "failed to mark content as failed", "content_id", contentID, "error", err)
	}
}
