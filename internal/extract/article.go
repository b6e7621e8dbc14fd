package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"klarity/internal/text"
)

// bodySelectors is the priority list for locating the article body. The first
// selector with non-empty text wins; <body> is the catch-all.
var bodySelectors = []string{"article", "main", "#content", ".post-content", "body"}

// strippedSelectors are removed from the selected container before the text
// is read out.
const strippedSelectors = "script, style, noscript, header, footer, nav, aside"

type ArticleExtractor struct {
	client *http.Client
}

func NewArticleExtractor(timeout time.Duration) *ArticleExtractor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ArticleExtractor{
		client: &http.Client{Timeout: timeout},
	}
}

func (a *ArticleExtractor) Extract(ctx context.Context, url string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build article request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return Result{}, fmt.Errorf("fetch article: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("parse article html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	var body *goquery.Selection
	for _, sel := range bodySelectors {
		candidate := doc.Find(sel).First()
		if candidate.Length() > 0 && strings.TrimSpace(candidate.Text()) != "" {
			body = candidate
			break
		}
	}
	if body == nil {
		return Result{Title: title}, nil
	}

	body.Find(strippedSelectors).Remove()

	return Result{
		Title: title,
		Text:  text.CollapseWhitespace(body.Text()),
	}, nil
}
