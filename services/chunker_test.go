package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChunkerRejectsBadConfig(t *testing.T) {
	_, err := NewChunker(0, 0)
	assert.Error(t, err)

	_, err = NewChunker(100, 100)
	assert.Error(t, err)

	_, err = NewChunker(100, -1)
	assert.Error(t, err)

	_, err = NewChunker(100, 99)
	assert.NoError(t, err)
}

func TestSplitShortTextIsSingleChunk(t *testing.T) {
	c, err := NewChunker(100, 20)
	require.NoError(t, err)

	chunks := c.Split("short text")
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestSplitExactWindowIsSingleChunk(t *testing.T) {
	c, err := NewChunker(10, 3)
	require.NoError(t, err)

	text := strings.Repeat("a", 10)
	chunks := c.Split(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitChunkCount(t *testing.T) {
	// count = max(1, ceil((L-overlap)/(size-overlap)))
	cases := []struct {
		size, overlap, length, want int
	}{
		{10, 0, 25, 3},
		{10, 2, 26, 3},
		{10, 2, 27, 4},
		{10, 9, 12, 3},
		{1000, 200, 100, 1},
		{1000, 200, 1000, 1},
		{1000, 200, 1001, 2},
	}
	for _, tc := range cases {
		c, err := NewChunker(tc.size, tc.overlap)
		require.NoError(t, err)

		chunks := c.Split(strings.Repeat("x", tc.length))
		assert.Len(t, chunks, tc.want, "size=%d overlap=%d length=%d", tc.size, tc.overlap, tc.length)
	}
}

func TestSplitOverlapAndBounds(t *testing.T) {
	c, err := NewChunker(10, 4)
	require.NoError(t, err)

	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := c.Split(text)
	require.True(t, len(chunks) > 1)

	for i, ch := range chunks {
		assert.LessOrEqual(t, len([]rune(ch)), 10)
		if i > 0 {
			// Each chunk begins with the last 4 runes of its predecessor.
			prev := []rune(chunks[i-1])
			assert.True(t, strings.HasPrefix(ch, string(prev[len(prev)-4:])))
		}
	}

	// Concatenating with the overlap removed reproduces the input.
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for _, ch := range chunks[1:] {
		rebuilt.WriteString(string([]rune(ch)[4:]))
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestSplitHandlesMultibyteRunes(t *testing.T) {
	c, err := NewChunker(5, 1)
	require.NoError(t, err)

	text := "日本語のテキストを分割する"
	chunks := c.Split(text)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len([]rune(ch)), 5)
	}
	// No rune is dropped.
	assert.Contains(t, strings.Join(chunks, ""), "分割")
}

func TestExtractKeywords(t *testing.T) {
	text := "Goroutines and channels. Goroutines communicate through channels, and channels synchronize goroutines."
	keywords := ExtractKeywords(text, 5)

	assert.Contains(t, keywords, "goroutines")
	assert.Contains(t, keywords, "channels")
	assert.NotContains(t, keywords, "and")
	assert.LessOrEqual(t, len(keywords), 5)
}

func TestExtractKeywordsIgnoresRareWords(t *testing.T) {
	keywords := ExtractKeywords("every word appears exactly once here", 5)
	assert.Empty(t, keywords)
}
