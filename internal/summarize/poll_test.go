package summarize

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

// pollServer fakes the summary job service: one submit endpoint and a status
// endpoint whose answers are scripted per call.
func pollServer(t *testing.T, statuses []map[string]string) (*httptest.Server, *int32) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"id": "job-1"})
			return
		}

		n := atomic.AddInt32(&calls, 1)
		idx := int(n) - 1
		if idx >= len(statuses) {
			idx = len(statuses) - 1
		}
		json.NewEncoder(w).Encode(statuses[idx])
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestPollProvider_Completed(t *testing.T) {
	srv, _ := pollServer(t, []map[string]string{
		{"status": "queued"},
		{"status": "processing"},
		{"status": "completed", "summary": "done summary"},
	})

	p := NewPollProvider(srv.URL, 4000, time.Millisecond, 10)
	summary, err := p.Summarize(context.Background(), "long text")
	require.NoError(t, err)
	assert.Equal(t, "done summary", summary)
}

func TestPollProvider_FailedJob(t *testing.T) {
	srv, _ := pollServer(t, []map[string]string{
		{"status": "failed"},
	})

	p := NewPollProvider(srv.URL, 4000, time.Millisecond, 10)
	_, err := p.Summarize(context.Background(), "text")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
}

func TestPollProvider_CanceledJob(t *testing.T) {
	srv, _ := pollServer(t, []map[string]string{
		{"status": "canceled"},
	})

	p := NewPollProvider(srv.URL, 4000, time.Millisecond, 10)
	_, err := p.Summarize(context.Background(), "text")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "canceled")
}

func TestPollProvider_CeilingExhausted(t *testing.T) {
	srv, calls := pollServer(t, []map[string]string{
		{"status": "processing"},
	})

	p := NewPollProvider(srv.URL, 4000, time.Millisecond, 3)
	_, err := p.Summarize(context.Background(), "text")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ceiling exhausted")
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestPollProvider_ContextCanceled(t *testing.T) {
	srv, _ := pollServer(t, []map[string]string{
		{"status": "processing"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPollProvider(srv.URL, 4000, time.Hour, 10)
	_, err := p.Summarize(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollProvider_SubmitWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	p := NewPollProvider(srv.URL, 4000, time.Millisecond, 3)
	_, err := p.Summarize(context.Background(), "text")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no job id")
}
