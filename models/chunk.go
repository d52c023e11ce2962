package models

import "fmt"

// Chunk is one bounded text segment of a source record plus its embedding.
// A separate document per chunk keeps namespace collections flat for
// vector filtering (mirrors the denormalized chunk-index layout).
type Chunk struct {
	ChunkID   string                 `json:"chunk_id" bson:"chunk_id"`
	SourceID  string                 `json:"source_id" bson:"source_id"`
	Namespace Namespace              `json:"namespace" bson:"namespace"`
	Index     int                    `json:"index" bson:"index"`
	Text      string                 `json:"text" bson:"text"`
	Keywords  []string               `json:"keywords,omitempty" bson:"keywords,omitempty"`
	Embedding []float32              `json:"embedding,omitempty" bson:"vector,omitempty"`
	Metadata  Metadata               `json:"metadata" bson:"metadata"`
	Fields    map[string]interface{} `json:"-" bson:"fields,omitempty"`
}

// ChunkID derives the deterministic chunk identifier from its source and
// position. Re-ingesting the same record therefore overwrites instead of
// duplicating.
func ChunkID(sourceID string, index int) string {
	return fmt.Sprintf("%s_%d", sourceID, index)
}
