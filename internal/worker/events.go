package worker

// IngestTask is the payload published on content.ingest when a content item
// is created. FilePath is set only for uploads and points at the server-side
// temp copy; the item's url field keeps the original filename.
type IngestTask struct {
	ContentID     string `json:"content_id"`
	FilePath      string `json:"file_path,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}
