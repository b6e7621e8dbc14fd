package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 150, cfg.ChunkWords)
	assert.Equal(t, 100, cfg.IndexMinChars)
	assert.Equal(t, 200, cfg.SummaryMinChars)
	assert.Equal(t, 4000, cfg.SummaryMaxChars)
	assert.Equal(t, 5, cfg.ChatTopK)
	assert.Equal(t, 0.35, cfg.ChatScoreThreshold)
	assert.False(t, cfg.ChatStrictTopic)
	assert.Equal(t, "groq", cfg.SummaryProvider)
	assert.Equal(t, 8081, cfg.ServerPort)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CHUNK_WORDS", "200")
	t.Setenv("CHAT_SCORE_THRESHOLD", "0.5")
	t.Setenv("ENABLE_SUMMARIZER", "true")
	t.Setenv("SUMMARY_PROVIDER", "poll")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.ChunkWords)
	assert.Equal(t, 0.5, cfg.ChatScoreThreshold)
	assert.True(t, cfg.EnableSummarizer)
	assert.Equal(t, "poll", cfg.SummaryProvider)
}

func TestValidate(t *testing.T) {
	t.Run("Missing db host", func(t *testing.T) {
		cfg := &Config{DBUser: "u", DBName: "n", ChunkWords: 150, SummaryProvider: "groq"}
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrMissingRequired)
		assert.Contains(t, err.Error(), "DB_HOST")
	})

	t.Run("Non-positive chunk words", func(t *testing.T) {
		cfg := &Config{DBHost: "h", DBUser: "u", DBName: "n", SummaryProvider: "groq"}
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrMissingRequired)
		assert.Contains(t, err.Error(), "CHUNK_WORDS")
	})

	t.Run("Unknown summary provider", func(t *testing.T) {
		cfg := &Config{DBHost: "h", DBUser: "u", DBName: "n", ChunkWords: 150, SummaryProvider: "other"}
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrMissingRequired)
		assert.Contains(t, err.Error(), "SUMMARY_PROVIDER")
	})

	t.Run("Valid", func(t *testing.T) {
		cfg := &Config{DBHost: "h", DBUser: "u", DBName: "n", ChunkWords: 150, SummaryProvider: "poll"}
		assert.NoError(t, cfg.Validate())
	})
}
