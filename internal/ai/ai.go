// Package ai holds the embedding and narrative-generation capabilities.
// Both are injected interfaces so the pipeline never touches a process-wide
// model instance and tests can swap in the deterministic implementations.
package ai

import (
	"context"
	"fmt"
	"time"

	"axiona-learning-core/models"
)

// Embedder maps text to a fixed-dimension vector. Implementations must be
// deterministic for identical input so re-ingestion is reproducible.
type Embedder interface {
	// Embed returns the embedding vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds several texts. Batching is an optimization only:
	// the values must equal what per-item Embed calls would produce.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// NarrativeContext is the structured context handed to the external
// narrative generator: structured context in, prose out.
type NarrativeContext struct {
	Profile  models.LearnerProfile `json:"profile"`
	Roadmap  models.Roadmap        `json:"roadmap"`
	Snippets []string              `json:"snippets"`
}

// Generator turns retrieved context into prose. The contract stops there;
// what the generator does internally is not this service's concern.
type Generator interface {
	Generate(ctx context.Context, nc NarrativeContext) (string, error)
}

// EmbedWithRetry retries transient embedding failures with doubling backoff.
// After the attempts are spent the error is classified as ErrEmbeddingFailure
// so the owning record's ingestion can be marked failed.
func EmbedWithRetry(ctx context.Context, e Embedder, text string, attempts int) ([]float32, error) {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	delay := 200 * time.Millisecond
	for i := 0; i < attempts; i++ {
		var vec []float32
		vec, err = e.Embed(ctx, text)
		if err == nil {
			return vec, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if i < attempts-1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", models.ErrEmbeddingFailure, attempts, err)
}
