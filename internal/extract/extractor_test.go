package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"klarity/internal/adapter/youtube"
)

// --- Mocks ---

type MockCaptions struct {
	mock.Mock
}

func (m *MockCaptions) FetchTranscript(ctx context.Context, videoURL string) ([]youtube.Segment, error) {
	args := m.Called(ctx, videoURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]youtube.Segment), args.Error(1)
}

type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) TranscribeURL(ctx context.Context, audioURL string) (string, error) {
	args := m.Called(ctx, audioURL)
	return args.String(0), args.Error(1)
}

type MockTitles struct {
	mock.Mock
}

func (m *MockTitles) Title(ctx context.Context, videoURL string) string {
	return m.Called(ctx, videoURL).String(0)
}

type MockArticles struct {
	mock.Mock
}

func (m *MockArticles) Extract(ctx context.Context, url string) (Result, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(Result), args.Error(1)
}

type MockDocuments struct {
	mock.Mock
}

func (m *MockDocuments) Extract(path, originalName string) (Result, error) {
	args := m.Called(path, originalName)
	return args.Get(0).(Result), args.Error(1)
}

// --- Tests ---

const videoURL = "https://www.youtube.com/watch?v=abc123"

func TestExtractor_VideoTier1(t *testing.T) {
	captions := new(MockCaptions)
	titles := new(MockTitles)
	ex := New(captions, nil, titles, nil, nil)

	captions.On("FetchTranscript", mock.Anything, videoURL).
		Return([]youtube.Segment{{Text: "hello there"}, {Text: "general transcript"}}, nil)
	titles.On("Title", mock.Anything, videoURL).Return("A Video")

	res, err := ex.Extract(context.Background(), Input{URL: videoURL})
	assert.NoError(t, err)
	assert.Equal(t, "A Video", res.Title)
	assert.Equal(t, "hello there general transcript", res.Text)
}

func TestExtractor_VideoTier2Fallback(t *testing.T) {
	t.Run("Caption fetch error falls back", func(t *testing.T) {
		captions := new(MockCaptions)
		transcriber := new(MockTranscriber)
		titles := new(MockTitles)
		ex := New(captions, transcriber, titles, nil, nil)

		captions.On("FetchTranscript", mock.Anything, videoURL).Return(nil, errors.New("no captions"))
		transcriber.On("TranscribeURL", mock.Anything, videoURL).Return("speech to text transcript", nil)
		titles.On("Title", mock.Anything, videoURL).Return("A Video")

		res, err := ex.Extract(context.Background(), Input{URL: videoURL})
		assert.NoError(t, err)
		assert.Equal(t, "speech to text transcript", res.Text)
		transcriber.AssertExpectations(t)
	})

	t.Run("Too-short transcript falls back", func(t *testing.T) {
		captions := new(MockCaptions)
		transcriber := new(MockTranscriber)
		titles := new(MockTitles)
		ex := New(captions, transcriber, titles, nil, nil)

		// Under the cutoff, treated as missing.
		captions.On("FetchTranscript", mock.Anything, videoURL).
			Return([]youtube.Segment{{Text: "hi"}}, nil)
		transcriber.On("TranscribeURL", mock.Anything, videoURL).Return("full speech to text result", nil)
		titles.On("Title", mock.Anything, videoURL).Return("A Video")

		res, err := ex.Extract(context.Background(), Input{URL: videoURL})
		assert.NoError(t, err)
		assert.Equal(t, "full speech to text result", res.Text)
	})

	t.Run("Tier 2 failure is terminal", func(t *testing.T) {
		captions := new(MockCaptions)
		transcriber := new(MockTranscriber)
		ex := New(captions, transcriber, nil, nil, nil)

		captions.On("FetchTranscript", mock.Anything, videoURL).Return(nil, errors.New("no captions"))
		transcriber.On("TranscribeURL", mock.Anything, videoURL).Return("", errors.New("service down"))

		_, err := ex.Extract(context.Background(), Input{URL: videoURL})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "transcribe video")
	})
}

func TestExtractor_Dispatch(t *testing.T) {
	t.Run("File path routes to documents", func(t *testing.T) {
		documents := new(MockDocuments)
		ex := New(nil, nil, nil, nil, documents)

		documents.On("Extract", "/tmp/u.pdf", "report.pdf").
			Return(Result{Title: "report", Text: "pdf text"}, nil)

		res, err := ex.Extract(context.Background(), Input{URL: "report.pdf", FilePath: "/tmp/u.pdf"})
		assert.NoError(t, err)
		assert.Equal(t, "pdf text", res.Text)
	})

	t.Run("Non-video URL routes to articles", func(t *testing.T) {
		articles := new(MockArticles)
		ex := New(nil, nil, nil, articles, nil)

		articles.On("Extract", mock.Anything, "https://blog.example.com/post").
			Return(Result{Title: "Post", Text: "article body"}, nil)

		res, err := ex.Extract(context.Background(), Input{URL: "https://blog.example.com/post"})
		assert.NoError(t, err)
		assert.Equal(t, "article body", res.Text)
	})
}
