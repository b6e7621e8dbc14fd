package vector

// Chunk is one embedded slice of a content item as stored in the index.
// Metadata is denormalized so retrieval can filter and reconstruct grounding
// context without touching the primary datastore.
type Chunk struct {
	Key        string // {contentId}_chunk_{i}
	Text       string
	Vector     []float32
	ChunkIndex int
	ContentID  string
	SpaceID    string
	UserID     string
}

// Match is one ranked retrieval hit.
type Match struct {
	Text      string
	Score     float64
	ChunkKey  string
	ContentID string
	SpaceID   string
	UserID    string
}
