package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"

	"klarity/internal/text"
)

// DocumentExtractor pulls text out of uploaded files (PDF). Upload size and
// file-type limits are enforced upstream at the HTTP boundary.
type DocumentExtractor struct{}

func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{}
}

// Extract reads the file at path. The title is derived from the original
// filename, which is what the content item's url field carries for uploads.
func (d *DocumentExtractor) Extract(path, originalName string) (Result, error) {
	f, err := os.Open(path) // #nosec G304 -- path is a server-generated upload location
	if err != nil {
		return Result{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	res, err := docconv.Convert(f, "application/pdf", true)
	if err != nil {
		return Result{}, fmt.Errorf("extract document text: %w", err)
	}

	title := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))

	return Result{
		Title: title,
		Text:  text.CollapseWhitespace(res.Body),
	}, nil
}
