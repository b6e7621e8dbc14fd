package extract

import (
	"context"
	"fmt"
	"log/slog"

	"klarity/internal/adapter/youtube"
)

// minTranscriptChars is the Tier 1 cutoff: a caption transcript shorter than
// this is treated as missing and the item falls through to speech-to-text.
const minTranscriptChars = 20

// Result is the extractor's output contract: a title and the raw text that
// the rest of the pipeline normalizes, summarizes and indexes. Empty text is
// a valid result; downstream stages tolerate it.
type Result struct {
	Title string
	Text  string
}

// Input identifies one source to extract. FilePath is set only for uploads,
// in which case URL carries the original filename.
type Input struct {
	URL      string
	FilePath string
}

type CaptionFetcher interface {
	FetchTranscript(ctx context.Context, videoURL string) ([]youtube.Segment, error)
}

type Transcriber interface {
	TranscribeURL(ctx context.Context, audioURL string) (string, error)
}

type TitleResolver interface {
	Title(ctx context.Context, videoURL string) string
}

type ArticleSource interface {
	Extract(ctx context.Context, url string) (Result, error)
}

type DocumentSource interface {
	Extract(path, originalName string) (Result, error)
}

// Extractor dispatches a content item to the right extraction strategy.
// Failures return as errors; nothing here panics past the orchestrator.
type Extractor struct {
	captions    CaptionFetcher
	transcriber Transcriber
	titles      TitleResolver
	articles    ArticleSource
	documents   DocumentSource
}

func New(captions CaptionFetcher, transcriber Transcriber, titles TitleResolver, articles ArticleSource, documents DocumentSource) *Extractor {
	return &Extractor{
		captions:    captions,
		transcriber: transcriber,
		titles:      titles,
		articles:    articles,
		documents:   documents,
	}
}

func (e *Extractor) Extract(ctx context.Context, in Input) (Result, error) {
	if in.FilePath != "" {
		return e.documents.Extract(in.FilePath, in.URL)
	}

	if youtube.IsVideoURL(in.URL) {
		return e.extractVideo(ctx, in.URL)
	}

	return e.articles.Extract(ctx, in.URL)
}

// extractVideo tries the caption transcript first (Tier 1) and falls back to
// speech-to-text (Tier 2). A Tier 2 failure is terminal for the item.
func (e *Extractor) extractVideo(ctx context.Context, videoURL string) (Result, error) {
	transcript, err := e.fetchCaptions(ctx, videoURL)
	if err != nil {
		slog.InfoContext(ctx, "caption transcript unavailable, falling back to speech-to-text", "url", videoURL, "reason", err)

		transcript, err = e.transcriber.TranscribeURL(ctx, videoURL)
		if err != nil {
			return Result{}, fmt.Errorf("transcribe video: %w", err)
		}
	}

	return Result{
		Title: e.titles.Title(ctx, videoURL),
		Text:  transcript,
	}, nil
}

func (e *Extractor) fetchCaptions(ctx context.Context, videoURL string) (string, error) {
	segments, err := e.captions.FetchTranscript(ctx, videoURL)
	if err != nil {
		return "", err
	}

	transcript := youtube.JoinSegments(segments)
	if len(transcript) < minTranscriptChars {
		return "", fmt.Errorf("fetched transcript was empty")
	}
	return transcript, nil
}
