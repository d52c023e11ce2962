package ai

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// StaticEmbedder hashes tokens into a fixed number of buckets and normalizes
// the result. It is fully deterministic and texts sharing vocabulary land
// close together, which is enough for offline mode and for exercising the
// retrieval pipeline in tests without a live model.
type StaticEmbedder struct {
	Dim int
}

func NewStaticEmbedder(dim int) *StaticEmbedder {
	if dim <= 0 {
		dim = 64
	}
	return &StaticEmbedder{Dim: dim}
}

func (e *StaticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, e.Dim)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%uint32(e.Dim)]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := 1 / math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) * inv)
		}
	} else {
		// Empty input still needs a valid unit vector.
		vec[0] = 1
	}
	return vec, nil
}

func (e *StaticEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}

// StaticGenerator renders the narrative context as plain deterministic text,
// so the rest of the pipeline is testable without a live generator.
type StaticGenerator struct{}

func (StaticGenerator) Generate(ctx context.Context, nc NarrativeContext) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Learning plan for %s (%s): %d phases, %d days total.",
		nc.Profile.Domain, nc.Profile.CurrentLevel,
		len(nc.Roadmap.Phases), nc.Roadmap.TotalDurationDays)
	for _, p := range nc.Roadmap.Phases {
		fmt.Fprintf(&b, " Phase %d: %s (%d days).", p.Index+1, p.Title, p.DurationDays)
	}
	return b.String(), nil
}
