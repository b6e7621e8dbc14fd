package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"klarity"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"klarity"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	NSQLookupd string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost   string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP   string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	GeminiAPIKey     string `envconfig:"GEMINI_API_KEY"`
	GroqAPIKey       string `envconfig:"GROQ_API_KEY"`
	GroqModel        string `envconfig:"GROQ_MODEL" default:"llama3-8b-8192"`
	AssemblyAIAPIKey string `envconfig:"ASSEMBLYAI_API_KEY"`

	// CaptionsURL points at the caption-transcript sidecar service.
	// TranslateURL points at the translation service.
	CaptionsURL  string `envconfig:"CAPTIONS_URL" default:"http://captions:8000"`
	TranslateURL string `envconfig:"TRANSLATE_URL" default:"http://translate:5000"`

	// Pipeline tuning
	ChunkWords       int  `envconfig:"CHUNK_WORDS" default:"150"`
	IndexMinChars    int  `envconfig:"INDEX_MIN_CHARS" default:"100"`
	EnableSummarizer bool `envconfig:"ENABLE_SUMMARIZER" default:"false"`
	SummaryProvider  string `envconfig:"SUMMARY_PROVIDER" default:"groq"` // "groq" (sync) or "poll" (submit+poll)
	SummaryMinChars  int    `envconfig:"SUMMARY_MIN_CHARS" default:"200"`
	SummaryMaxChars  int    `envconfig:"SUMMARY_MAX_CHARS" default:"4000"`
	SummaryPollSeconds  int `envconfig:"SUMMARY_POLL_SECONDS" default:"2"`
	SummaryPollAttempts int `envconfig:"SUMMARY_POLL_ATTEMPTS" default:"60"`
	SummaryPollURL      string `envconfig:"SUMMARY_POLL_URL" default:"http://summarizer:8000"`

	// Per-call ceilings for external dependencies. A stalled dependency must
	// never block other items' ingestion indefinitely.
	ExtractTimeoutSeconds    int `envconfig:"EXTRACT_TIMEOUT_SECONDS" default:"30"`
	TranscribeTimeoutSeconds int `envconfig:"TRANSCRIBE_TIMEOUT_SECONDS" default:"600"`
	TranslateTimeoutSeconds  int `envconfig:"TRANSLATE_TIMEOUT_SECONDS" default:"120"`
	SummaryTimeoutSeconds    int `envconfig:"SUMMARY_TIMEOUT_SECONDS" default:"180"`
	EmbedTimeoutSeconds      int `envconfig:"EMBED_TIMEOUT_SECONDS" default:"60"`
	ChatTimeoutSeconds       int `envconfig:"CHAT_TIMEOUT_SECONDS" default:"60"`

	// Chat responder
	ChatTopK           int     `envconfig:"CHAT_TOP_K" default:"5"`
	ChatScoreThreshold float64 `envconfig:"CHAT_SCORE_THRESHOLD" default:"0.35"`
	ChatStrictTopic    bool    `envconfig:"CHAT_STRICT_TOPIC" default:"false"`

	IngestionConcurrency int    `envconfig:"INGESTION_CONCURRENCY" default:"4"`
	MigrationPath        string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Server
	ServerPort      int    `envconfig:"SERVER_PORT" default:"8081"`
	QueryLogPath    string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`
	MaxUploadSizeMB int64  `envconfig:"MAX_UPLOAD_SIZE_MB" default:"25"`
	UploadDir       string `envconfig:"KLARITY_UPLOAD_DIR" default:"./uploads"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Env vars may be set in the shell, so a missing .env is not an error.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	_ = godotenv.Load(filepath.Join(cwd, "../.env"))

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.ChunkWords <= 0 {
		return fmt.Errorf("%w: CHUNK_WORDS must be positive", ErrMissingRequired)
	}
	if c.SummaryProvider != "groq" && c.SummaryProvider != "poll" {
		return fmt.Errorf("%w: SUMMARY_PROVIDER must be groq or poll", ErrMissingRequired)
	}
	return nil
}
