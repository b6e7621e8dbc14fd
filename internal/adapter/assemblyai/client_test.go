package assemblyai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_TranscribeURL(t *testing.T) {
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST" && r.URL.Path == "/transcript":
			assert.Equal(t, "test-key", r.Header.Get("Authorization"))
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "https://youtu.be/x", body["audio_url"])
			json.NewEncoder(w).Encode(map[string]string{"id": "t-1"})

		case r.Method == "GET" && r.URL.Path == "/transcript/t-1":
			n := atomic.AddInt32(&polls, 1)
			if n < 3 {
				json.NewEncoder(w).Encode(map[string]string{"status": "processing"})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"status": "completed", "text": "the transcript"})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient("test-key")
	c.SetBaseURL(srv.URL)
	c.SetPollInterval(time.Millisecond)

	text, err := c.TranscribeURL(context.Background(), "https://youtu.be/x")
	require.NoError(t, err)
	assert.Equal(t, "the transcript", text)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(3))
}

func TestClient_TranscribeURL_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			json.NewEncoder(w).Encode(map[string]string{"id": "t-1"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": "download failed"})
	}))
	defer srv.Close()

	c := NewClient("k")
	c.SetBaseURL(srv.URL)
	c.SetPollInterval(time.Millisecond)

	_, err := c.TranscribeURL(context.Background(), "https://youtu.be/x")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "download failed")
}

func TestClient_TranscribeURL_SubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad-key")
	c.SetBaseURL(srv.URL)

	_, err := c.TranscribeURL(context.Background(), "https://youtu.be/x")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_TranscribeURL_ContextExpiry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			json.NewEncoder(w).Encode(map[string]string{"id": "t-1"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
	}))
	defer srv.Close()

	c := NewClient("k")
	c.SetBaseURL(srv.URL)
	c.SetPollInterval(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := c.TranscribeURL(ctx, "https://youtu.be/x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
