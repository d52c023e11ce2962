// Package index provides the per-namespace vector index: idempotent chunk
// upserts, whole-source replacement, and nearest-neighbor queries with
// metadata filtering. Distances are cosine distances, so 1-d is a [0,1]
// relevance for unit-normalized embeddings.
package index

import (
	"context"
	"math"

	"axiona-learning-core/models"
)

// Hit is one nearest-neighbor match, distance ascending means closer first.
type Hit struct {
	Chunk    models.Chunk
	Distance float64
}

// Range is an inclusive numeric constraint; nil bounds are open.
type Range struct {
	Min *float64
	Max *float64
}

// Filter constrains queries over the flattened metadata fields. Values are
// scalars for exact match or Range for numeric windows. No full-text here.
type Filter map[string]interface{}

// VectorIndex is the storage boundary for chunk vectors. Query never returns
// chunks from a different namespace than the one asked for.
type VectorIndex interface {
	// Upsert writes chunks idempotently; each chunk write is atomic.
	Upsert(ctx context.Context, ns models.Namespace, chunks []models.Chunk) error

	// ReplaceSource atomically supersedes every chunk of sourceID with the
	// given set: no orphans survive, and replacements of the same source
	// are serialized.
	ReplaceSource(ctx context.Context, ns models.Namespace, sourceID string, chunks []models.Chunk) error

	// DeleteBySource removes all chunks belonging to sourceID.
	DeleteBySource(ctx context.Context, ns models.Namespace, sourceID string) error

	// Query returns up to topK hits sorted ascending by distance,
	// optionally constrained by a metadata filter.
	Query(ctx context.Context, ns models.Namespace, vector []float32, topK int, filter Filter) ([]Hit, error)
}

// CosineDistance returns 1 - cos(a, b). Zero vectors are treated as
// maximally distant.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// MatchesFilter checks a chunk's flattened fields against a filter. Used by
// the in-memory index directly and by the Mongo index for the candidate set
// it re-scores in process.
func MatchesFilter(fields map[string]interface{}, filter Filter) bool {
	for key, want := range filter {
		have, ok := fields[key]
		if !ok {
			return false
		}
		if r, isRange := want.(Range); isRange {
			n, ok := toFloat(have)
			if !ok {
				return false
			}
			if r.Min != nil && n < *r.Min {
				return false
			}
			if r.Max != nil && n > *r.Max {
				return false
			}
			continue
		}
		if !scalarEqual(have, want) {
			return false
		}
	}
	return true
}

func scalarEqual(have, want interface{}) bool {
	if hn, ok := toFloat(have); ok {
		if wn, ok := toFloat(want); ok {
			return hn == wn
		}
	}
	hs, hok := have.(string)
	ws, wok := want.(string)
	if hok && wok {
		return hs == ws
	}
	return have == want
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
