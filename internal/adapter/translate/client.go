package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the translation sidecar: POST {q, target} -> {text}.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Client) Translate(ctx context.Context, text, target string) (string, error) {
	reqBody, _ := json.Marshal(map[string]string{
		"q":      text,
		"target": target,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/translate", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("translate api error: %d", resp.StatusCode)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Text == "" {
		return "", fmt.Errorf("translate api returned empty text")
	}
	return result.Text, nil
}
