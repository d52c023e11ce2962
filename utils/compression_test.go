package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("chunk text with plenty of repetition ", 50))

	for _, algo := range []CompressionAlgorithm{CompressionNone, CompressionGzip, CompressionZlib} {
		compressed, err := CompressData(data, algo)
		require.NoError(t, err, algo)

		out, err := DecompressData(compressed, algo)
		require.NoError(t, err, algo)
		assert.Equal(t, data, out, algo)
	}
}

func TestCompressGzipShrinksRepetitiveData(t *testing.T) {
	data := []byte(strings.Repeat("abcdef ", 200))
	compressed, err := CompressData(data, CompressionGzip)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(data))
}

func TestCompressUnknownAlgorithm(t *testing.T) {
	_, err := CompressData([]byte("x"), CompressionAlgorithm("zstd"))
	assert.Error(t, err)
	_, err = DecompressData([]byte("x"), CompressionAlgorithm("zstd"))
	assert.Error(t, err)
}

func TestCompressEmptyInput(t *testing.T) {
	out, err := CompressData(nil, CompressionGzip)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGetBestCompression(t *testing.T) {
	assert.Equal(t, CompressionNone, GetBestCompression([]byte("tiny")))
	assert.Equal(t, CompressionGzip, GetBestCompression([]byte(strings.Repeat("x", 600))))
}
