package config

const (
	// TopicContentIngest is the NSQ topic for content ingestion tasks.
	// One message per content item; the pipeline consumer picks it up.
	TopicContentIngest = "content.ingest"
)
