package ai

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests against the live API. They only run when GEMINI_API_KEY
// is set.
func liveClient(t *testing.T) *GeminiClient {
	t.Helper()
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set, skipping live API test")
	}
	client, err := NewGeminiClient(apiKey, "text-embedding-004", "gemini-2.0-flash", 60)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient("", "text-embedding-004", "gemini-2.0-flash", 60)
	assert.Error(t, err)
}

func TestGeminiEmbedLive(t *testing.T) {
	client := liveClient(t)

	vec, err := client.Embed(context.Background(), "binary search trees")
	require.NoError(t, err)
	assert.NotEmpty(t, vec)
}

func TestGeminiEmbedBatchLive(t *testing.T) {
	client := liveClient(t)

	texts := []string{"sorting algorithms", "graph traversal"}
	vecs, err := client.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vecs, len(texts))
	assert.Equal(t, len(vecs[0]), len(vecs[1]))
}
