package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultOEmbedURL = "https://www.youtube.com/oembed"

// DefaultTitle is used when the oEmbed lookup fails for any reason.
const DefaultTitle = "YouTube Video"

// OEmbedClient resolves a video title through YouTube's oEmbed endpoint.
type OEmbedClient struct {
	baseURL string
	client  *http.Client
}

func NewOEmbedClient() *OEmbedClient {
	return &OEmbedClient{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *OEmbedClient) SetBaseURL(url string) {
	c.baseURL = url
}

// Title returns the video title, or DefaultTitle on any error. A missing
// title is never worth failing an item over.
func (c *OEmbedClient) Title(ctx context.Context, videoURL string) string {
	base := defaultOEmbedURL
	if c.baseURL != "" {
		base = c.baseURL
	}
	endpoint := fmt.Sprintf("%s?url=%s&format=json", base, url.QueryEscape(videoURL))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return DefaultTitle
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return DefaultTitle
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return DefaultTitle
	}

	var result struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.Title == "" {
		return DefaultTitle
	}
	return result.Title
}
