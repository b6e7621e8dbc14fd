package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

const defaultBaseURL = "https://api.assemblyai.com/v2"

// Client wraps AssemblyAI's submit-then-poll transcription API.
type Client struct {
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	client       *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:       apiKey,
		pollInterval: 3 * time.Second,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

func (c *Client) SetPollInterval(d time.Duration) {
	c.pollInterval = d
}

func (c *Client) base() string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return defaultBaseURL
}

// TranscribeURL submits a remote audio/video URL and blocks until the
// transcript reaches a terminal status or ctx expires. An "error" status from
// the service is a hard failure.
func (c *Client) TranscribeURL(ctx context.Context, audioURL string) (string, error) {
	id, err := c.submit(ctx, audioURL)
	if err != nil {
		return "", err
	}
	return c.poll(ctx, id)
}

// TranscribeFile uploads a local audio file first, then transcribes the
// returned upload URL. The caller owns the file's lifecycle.
func (c *Client) TranscribeFile(ctx context.Context, path string) (string, error) {
	uploadURL, err := c.upload(ctx, path)
	if err != nil {
		return "", err
	}
	return c.TranscribeURL(ctx, uploadURL)
}

func (c *Client) submit(ctx context.Context, audioURL string) (string, error) {
	reqBody, _ := json.Marshal(map[string]string{"audio_url": audioURL})

	req, err := http.NewRequestWithContext(ctx, "POST", c.base()+"/transcript", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("assemblyai submit error: %d", resp.StatusCode)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("assemblyai submit returned no transcript id")
	}
	return result.ID, nil
}

func (c *Client) poll(ctx context.Context, id string) (string, error) {
	for {
		req, err := http.NewRequestWithContext(ctx, "GET", c.base()+"/transcript/"+id, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("Authorization", c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return "", err
		}

		var result struct {
			Status string `json:"status"` // queued | processing | completed | error
			Text   string `json:"text"`
			Error  string `json:"error"`
		}
		decodeErr := json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if decodeErr != nil {
			return "", decodeErr
		}

		switch result.Status {
		case "completed":
			return result.Text, nil
		case "error":
			return "", fmt.Errorf("assemblyai failed: %s", result.Error)
		}

		slog.DebugContext(ctx, "transcript not ready", "id", id, "status", result.Status)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- path is a server-generated upload location
	if err != nil {
		return "", err
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", c.base()+"/upload", f)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("assemblyai upload error: %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		UploadURL string `json:"upload_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.UploadURL, nil
}
