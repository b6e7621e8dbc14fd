package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Embedder maps text to a fixed-length vector. The underlying client is
// created lazily on first use and shared by every caller for the lifetime of
// the process: ingestion and chat must embed with the same model instance.
type Embedder struct {
	apiKey     string
	model      string
	clientOpts []option.ClientOption

	mu     sync.Mutex
	client *genai.Client
}

func NewEmbedder(apiKey string, opts ...option.ClientOption) *Embedder {
	return &Embedder{
		apiKey:     apiKey,
		model:      "gemini-embedding-001",
		clientOpts: opts,
	}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	client, err := e.getClient(ctx)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "embedding content", "model", e.model, "length", len(text))
	em := client.EmbeddingModel(e.model)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding received")
	}
	return res.Embedding.Values, nil
}

// getClient performs the at-most-once lazy initialization. Concurrent first
// calls race on the lock, not on the client.
func (e *Embedder) getClient(ctx context.Context) (*genai.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client != nil {
		return e.client, nil
	}

	if e.apiKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}

	opts := append(e.clientOpts, option.WithAPIKey(e.apiKey))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	e.client = client
	return client, nil
}

func (e *Embedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}
