package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Complete(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "the answer"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", "llama3-8b-8192")
	c.SetBaseURL(srv.URL)

	out, err := c.Complete(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, "the answer", out)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "llama3-8b-8192", gotBody["model"])

	messages := gotBody["messages"].([]interface{})
	assert.Len(t, messages, 2)
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "system", first["role"])
}

func TestClient_Complete_SystemOnly(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("k", "m")
	c.SetBaseURL(srv.URL)

	_, err := c.Complete(context.Background(), "only system", "")
	require.NoError(t, err)
	assert.Len(t, gotBody["messages"].([]interface{}), 1)
}

func TestClient_Complete_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limit"}`))
	}))
	defer srv.Close()

	c := NewClient("k", "m")
	c.SetBaseURL(srv.URL)

	_, err := c.Complete(context.Background(), "s", "u")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClient_Complete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()

	c := NewClient("k", "m")
	c.SetBaseURL(srv.URL)

	_, err := c.Complete(context.Background(), "s", "u")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
