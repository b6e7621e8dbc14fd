package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.groq.com/openai/v1/chat/completions"

// Client issues chat completions against Groq's OpenAI-compatible endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// Complete sends one {system, user} exchange and returns the generated text.
// Each call is independent; no conversation state is kept here.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	url := defaultBaseURL
	if c.baseURL != "" {
		url = c.baseURL
	}

	messages := []map[string]string{
		{"role": "system", "content": systemPrompt},
	}
	if userPrompt != "" {
		messages = append(messages, map[string]string{"role": "user", "content": userPrompt})
	}

	reqBody := map[string]interface{}{
		"messages": messages,
		"model":    c.model,
	}

	jsonBody, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("groq api error: %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("groq api returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}
