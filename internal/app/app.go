package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"klarity/features/content"
	"klarity/features/space"
	"klarity/internal/adapter/assemblyai"
	"klarity/internal/adapter/gemini"
	"klarity/internal/adapter/groq"
	"klarity/internal/adapter/translate"
	"klarity/internal/adapter/youtube"
	"klarity/internal/config"
	"klarity/internal/extract"
	"klarity/internal/language"
	"klarity/internal/middleware"
	"klarity/internal/pipeline"
	"klarity/internal/retrieval"
	"klarity/internal/summarize"
	"klarity/internal/vector"
	"klarity/internal/worker"
)

// Database is satisfied by *sql.DB. The interface keeps app.New mockable with
// sqlmock while the repositories still get the concrete handle.
type Database interface {
	PingContext(ctx context.Context) error
}

type VectorStore interface {
	EnsureSchema(ctx context.Context) error
	UpsertChunk(ctx context.Context, chunk vector.Chunk) error
	Query(ctx context.Context, vec []float32, limit int, spaceID string) ([]vector.Match, error)
	DeleteChunksByContentID(ctx context.Context, contentID string) error
	DeleteChunksBySpaceID(ctx context.Context, spaceID string) error
}

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

type App struct {
	Handler        http.Handler
	ContentService *content.Service
	IngestConsumer *worker.IngestConsumer

	port     int
	embedder *gemini.Embedder
}

func New(
	cfg *config.Config,
	db Database,
	vecStore VectorStore,
	taskPub TaskPublisher,
	logger *slog.Logger,
) (*App, error) {

	// Repositories need the concrete handle; the interface in the signature
	// exists for wiring tests.
	sqlDB := db.(*sql.DB)

	// Feature: Space
	spaceRepo := space.NewPostgresRepo(sqlDB)
	spaceService := space.NewService(spaceRepo, vecStore)

	// Feature: Content
	contentRepo := content.NewPostgresRepo(sqlDB)
	contentService := content.NewService(contentRepo, spaceService, taskPub, vecStore)
	contentHandler := content.NewHandler(contentService, cfg.UploadDir, cfg.MaxUploadSizeMB)

	// Adapters
	embedder := gemini.NewEmbedder(cfg.GeminiAPIKey)
	llm := groq.NewClient(cfg.GroqAPIKey, cfg.GroqModel)

	extractor := extract.New(
		youtube.NewCaptionsClient(cfg.CaptionsURL),
		assemblyai.NewClient(cfg.AssemblyAIAPIKey),
		youtube.NewOEmbedClient(),
		extract.NewArticleExtractor(time.Duration(cfg.ExtractTimeoutSeconds)*time.Second),
		extract.NewDocumentExtractor(),
	)

	normalizer := language.NewNormalizer(translate.NewClient(cfg.TranslateURL))

	var summarizer pipeline.Summarizer
	if cfg.EnableSummarizer {
		switch cfg.SummaryProvider {
		case "poll":
			summarizer = summarize.NewPollProvider(
				cfg.SummaryPollURL,
				cfg.SummaryMaxChars,
				time.Duration(cfg.SummaryPollSeconds)*time.Second,
				cfg.SummaryPollAttempts,
			)
		default:
			summarizer = summarize.NewGroqProvider(llm, cfg.SummaryMaxChars)
		}
	}

	// Pipeline & worker
	processor := pipeline.NewProcessor(contentRepo, extractor, normalizer, summarizer, embedder, vecStore, pipeline.Config{
		ChunkWords:      cfg.ChunkWords,
		IndexMinChars:   cfg.IndexMinChars,
		SummaryEnabled:  cfg.EnableSummarizer,
		SummaryMinChars: cfg.SummaryMinChars,

		// The extract stage ceiling is the transcribe timeout: a video item's
		// Tier 2 speech-to-text runs inside this stage.
		ExtractTimeout:   time.Duration(cfg.TranscribeTimeoutSeconds) * time.Second,
		TranslateTimeout: time.Duration(cfg.TranslateTimeoutSeconds) * time.Second,
		SummaryTimeout:   time.Duration(cfg.SummaryTimeoutSeconds) * time.Second,
		EmbedTimeout:     time.Duration(cfg.EmbedTimeoutSeconds) * time.Second,
	})
	ingestConsumer := worker.NewIngestConsumer(processor)

	// Chat & search
	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}

	responder := retrieval.NewResponder(embedder, vecStore, llm, retrieval.Options{
		TopK:           cfg.ChatTopK,
		ScoreThreshold: cfg.ChatScoreThreshold,
		StrictTopic:    cfg.ChatStrictTopic,
		Timeout:        time.Duration(cfg.ChatTimeoutSeconds) * time.Second,
	}, queryLogger)

	spaceHandler := space.NewHandler(spaceService, responder)

	// Middleware: CORS
	enableCORS := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID, X-Correlation-ID")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	// Every route except /health requires a resolved user.
	route := func(h http.HandlerFunc) http.Handler {
		return middleware.CorrelationID(enableCORS(middleware.RequireUser(h)))
	}

	mux := http.NewServeMux()

	mux.Handle("POST /spaces", route(spaceHandler.Create))
	mux.Handle("GET /spaces", route(spaceHandler.List))
	mux.Handle("PUT /spaces/{id}", route(spaceHandler.Update))
	mux.Handle("DELETE /spaces/{id}", route(spaceHandler.Delete))
	mux.Handle("POST /spaces/{id}/chat", route(spaceHandler.Chat))
	mux.Handle("POST /spaces/{id}/search", route(spaceHandler.Search))
	mux.Handle("GET /spaces/{id}/content", route(contentHandler.ListBySpace))

	mux.Handle("POST /content", route(contentHandler.Create))
	mux.Handle("POST /content/upload", route(contentHandler.Upload))
	mux.Handle("GET /content", route(contentHandler.List))
	mux.Handle("DELETE /content/{id}", route(contentHandler.Delete))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{
		Handler:        mux,
		ContentService: contentService,
		IngestConsumer: ingestConsumer,
		port:           cfg.ServerPort,
		embedder:       embedder,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.port),
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
		if err := a.embedder.Close(); err != nil {
			slog.Warn("failed to close embedder", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
