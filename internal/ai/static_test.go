package ai

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"axiona-learning-core/models"
)

func TestStaticEmbedderDeterministic(t *testing.T) {
	e := NewStaticEmbedder(64)
	ctx := context.Background()

	a, err := e.Embed(ctx, "goroutines and channels")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "goroutines and channels")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStaticEmbedderUnitNorm(t *testing.T) {
	e := NewStaticEmbedder(32)

	for _, text := range []string{"hello world", "", "a", "longer text with many distinct tokens in it"} {
		vec, err := e.Embed(context.Background(), text)
		require.NoError(t, err)
		require.Len(t, vec, 32)

		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5, "text %q", text)
	}
}

func TestStaticEmbedderSharedVocabularyIsCloser(t *testing.T) {
	e := NewStaticEmbedder(64)
	ctx := context.Background()

	query, _ := e.Embed(ctx, "sorting algorithms explained")
	related, _ := e.Embed(ctx, "a lesson on sorting algorithms")
	unrelated, _ := e.Embed(ctx, "french cooking techniques")

	dot := func(a, b []float32) float64 {
		var d float64
		for i := range a {
			d += float64(a[i]) * float64(b[i])
		}
		return d
	}
	assert.Greater(t, dot(query, related), dot(query, unrelated))
}

func TestStaticEmbedderDefaultDim(t *testing.T) {
	e := NewStaticEmbedder(0)
	vec, err := e.Embed(context.Background(), "x y")
	require.NoError(t, err)
	assert.Len(t, vec, 64)
}

func TestEmbedBatchMatchesEmbed(t *testing.T) {
	e := NewStaticEmbedder(16)
	ctx := context.Background()

	texts := []string{"first", "second", "third"}
	batch, err := e.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	for i, text := range texts {
		single, err := e.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i])
	}
}

type flakyEmbedder struct {
	failures int
	calls    int
}

func (f *flakyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient")
	}
	return []float32{1}, nil
}

func (f *flakyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vec, err := f.Embed(ctx, texts[0])
	if err != nil {
		return nil, err
	}
	return [][]float32{vec}, nil
}

func TestEmbedWithRetryRecovers(t *testing.T) {
	e := &flakyEmbedder{failures: 2}
	vec, err := EmbedWithRetry(context.Background(), e, "text", 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vec)
	assert.Equal(t, 3, e.calls)
}

func TestEmbedWithRetryExhaustion(t *testing.T) {
	e := &flakyEmbedder{failures: 10}
	_, err := EmbedWithRetry(context.Background(), e, "text", 2)
	assert.ErrorIs(t, err, models.ErrEmbeddingFailure)
}

func TestEmbedWithRetryHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := &flakyEmbedder{failures: 10}
	_, err := EmbedWithRetry(ctx, e, "text", 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStaticGeneratorNarrative(t *testing.T) {
	nc := NarrativeContext{
		Profile: models.LearnerProfile{Domain: "go", CurrentLevel: models.LevelBeginner},
		Roadmap: models.Roadmap{
			TotalDurationDays: 28,
			Phases: []models.RoadmapPhase{
				{Index: 0, Title: "Foundations of go", DurationDays: 14},
				{Index: 1, Title: "Core Skills in go", DurationDays: 14},
			},
		},
	}

	out, err := StaticGenerator{}.Generate(context.Background(), nc)
	require.NoError(t, err)
	assert.Contains(t, out, "Foundations of go")
	assert.Contains(t, out, "28 days total")
}
