package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PollProvider is the asynchronous shape: submit the text as a job, then poll
// at a fixed interval until it completes, fails, or the attempt ceiling is
// exhausted. Exhausting the ceiling is a hard failure for the item.
type PollProvider struct {
	baseURL  string
	maxChars int
	interval time.Duration
	attempts int
	client   *http.Client
}

func NewPollProvider(baseURL string, maxChars int, interval time.Duration, attempts int) *PollProvider {
	return &PollProvider{
		baseURL:  baseURL,
		maxChars: maxChars,
		interval: interval,
		attempts: attempts,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *PollProvider) Summarize(ctx context.Context, text string) (string, error) {
	id, err := p.submit(ctx, Truncate(text, p.maxChars))
	if err != nil {
		return "", err
	}

	for i := 0; i < p.attempts; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.interval):
		}

		status, summary, err := p.check(ctx, id)
		if err != nil {
			return "", err
		}

		switch status {
		case "completed":
			return summary, nil
		case "failed", "canceled":
			return "", fmt.Errorf("summary job %s: %s", id, status)
		}
	}

	return "", fmt.Errorf("summary job %s: polling ceiling exhausted after %d attempts", id, p.attempts)
}

func (p *PollProvider) submit(ctx context.Context, text string) (string, error) {
	reqBody, _ := json.Marshal(map[string]string{"text": text})

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/summaries", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 && resp.StatusCode != 201 {
		return "", fmt.Errorf("summary submit error: %d", resp.StatusCode)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("summary submit returned no job id")
	}
	return result.ID, nil
}

func (p *PollProvider) check(ctx context.Context, id string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"/summaries/"+id, nil)
	if err != nil {
		return "", "", err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", "", fmt.Errorf("summary poll error: %d", resp.StatusCode)
	}

	var result struct {
		Status  string `json:"status"` // queued | processing | completed | failed | canceled
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", err
	}
	return result.Status, result.Summary, nil
}
