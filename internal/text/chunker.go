package text

import (
	"fmt"
	"strings"
)

// ChunkKey is the stable identity of one chunk inside the vector index.
// Re-processing the same content yields the same keys, which is what makes
// upserts idempotent.
func ChunkKey(contentID string, ordinal int) string {
	return fmt.Sprintf("%s_chunk_%d", contentID, ordinal)
}

// ChunkWords splits text into consecutive word-count-bounded chunks. The last
// chunk may be shorter; empty or whitespace-only text yields zero chunks.
// Splitting is deterministic: identical input always produces identical
// boundaries.
func ChunkWords(text string, size int) []string {
	if size <= 0 {
		return nil
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+size-1)/size)
	for i := 0; i < len(words); i += size {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// CollapseWhitespace folds runs of whitespace into single spaces and trims.
// Extracted article bodies arrive full of layout whitespace.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
