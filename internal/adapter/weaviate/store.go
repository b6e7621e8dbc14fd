package weaviate

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"klarity/internal/vector"
)

// chunkNamespace seeds the deterministic object ids: the same chunk key
// always maps to the same Weaviate UUID, so re-indexing overwrites instead of
// duplicating.
var chunkNamespace = uuid.MustParse("8a9e27b4-3f31-4c25-9f0e-2b8f6f9d1c55")

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	return vector.EnsureSchema(ctx, vector.NewWeaviateClientAdapter(s.client))
}

func (s *Store) UpsertChunk(ctx context.Context, chunk vector.Chunk) error {
	id := uuid.NewSHA1(chunkNamespace, []byte(chunk.Key))

	_, err := s.client.Data().Creator().
		WithClassName(vector.ClassName).
		WithID(id.String()).
		WithProperties(map[string]interface{}{
			"text":       chunk.Text,
			"chunkKey":   chunk.Key,
			"chunkIndex": chunk.ChunkIndex,
			"contentId":  chunk.ContentID,
			"spaceId":    chunk.SpaceID,
			"userId":     chunk.UserID,
		}).
		WithVector(chunk.Vector).
		Do(ctx)
	return err
}

// Query runs a nearVector search restricted to one space. Matches carry the
// certainty score in 0..1.
func (s *Store) Query(ctx context.Context, vec []float32, limit int, spaceID string) ([]vector.Match, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vec)

	where := filters.Where().
		WithPath([]string{"spaceId"}).
		WithOperator(filters.Equal).
		WithValueString(spaceID)

	fields := []graphql.Field{
		{Name: "text"},
		{Name: "chunkKey"},
		{Name: "contentId"},
		{Name: "spaceId"},
		{Name: "userId"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithNearVector(nearVector).
		WithWhere(where).
		WithLimit(limit).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var matches []vector.Match
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return matches, nil
	}
	chunks, ok := data[vector.ClassName].([]interface{})
	if !ok {
		return matches, nil
	}

	for _, c := range chunks {
		props, ok := c.(map[string]interface{})
		if !ok {
			continue
		}

		var m vector.Match
		if text, ok := props["text"].(string); ok {
			m.Text = text
		}
		if key, ok := props["chunkKey"].(string); ok {
			m.ChunkKey = key
		}
		if contentID, ok := props["contentId"].(string); ok {
			m.ContentID = contentID
		}
		if sID, ok := props["spaceId"].(string); ok {
			m.SpaceID = sID
		}
		if userID, ok := props["userId"].(string); ok {
			m.UserID = userID
		}

		// The go client has returned certainty both as float64 and as a
		// formatted string across versions.
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			switch v := additional["certainty"].(type) {
			case float64:
				m.Score = v
			case string:
				if parsed, err := strconv.ParseFloat(v, 64); err == nil {
					m.Score = parsed
				}
			}
		}

		matches = append(matches, m)
	}

	return matches, nil
}

// DeleteChunksByContentID removes every chunk of one content item. Runs
// before re-indexing and when the item is deleted.
func (s *Store) DeleteChunksByContentID(ctx context.Context, contentID string) error {
	return s.deleteWhere(ctx, filters.Where().
		WithPath([]string{"contentId"}).
		WithOperator(filters.Equal).
		WithValueString(contentID))
}

// DeleteChunksBySpaceID removes every chunk of a space when the space is
// deleted, so the index holds no orphaned vectors.
func (s *Store) DeleteChunksBySpaceID(ctx context.Context, spaceID string) error {
	return s.deleteWhere(ctx, filters.Where().
		WithPath([]string{"spaceId"}).
		WithOperator(filters.Equal).
		WithValueString(spaceID))
}

func (s *Store) deleteWhere(ctx context.Context, where *filters.WhereBuilder) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(vector.ClassName).
		WithOutput("minimal").
		WithWhere(where).
		Do(ctx)
	return err
}
