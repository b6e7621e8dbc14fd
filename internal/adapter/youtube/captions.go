package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Segment is one caption line as returned by the captions service.
type Segment struct {
	Text string `json:"text"`
}

// CaptionsClient fetches existing caption transcripts through the captions
// sidecar: GET /transcript?url=... -> {segments: [{text}]}.
type CaptionsClient struct {
	baseURL string
	client  *http.Client
}

func NewCaptionsClient(baseURL string) *CaptionsClient {
	return &CaptionsClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *CaptionsClient) FetchTranscript(ctx context.Context, videoURL string) ([]Segment, error) {
	endpoint := fmt.Sprintf("%s/transcript?url=%s", c.baseURL, url.QueryEscape(videoURL))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("captions api error: %d", resp.StatusCode)
	}

	var result struct {
		Segments []Segment `json:"segments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Segments, nil
}

// JoinSegments concatenates caption line texts with single spaces and trims.
func JoinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.Text)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// IsVideoURL reports whether the URL points at a YouTube video.
func IsVideoURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	return host == "youtube.com" || host == "youtu.be" || strings.HasSuffix(host, ".youtube.com")
}
