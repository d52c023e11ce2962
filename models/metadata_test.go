package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataFromMapVideo(t *testing.T) {
	md := MetadataFromMap(KindVideo, "Sorting Explained", map[string]interface{}{
		"duration": "12:00",
		"channel":  "CS Basics",
		"views":    10234,
	})

	require.NotNil(t, md.Video)
	assert.Equal(t, "12:00", md.Video.Duration)
	assert.Equal(t, "CS Basics", md.Video.Channel)
	assert.Nil(t, md.Material)
	assert.Nil(t, md.Book)

	// Unrecognized keys survive in Extra.
	assert.Equal(t, 10234, md.Extra["views"])
}

func TestMetadataFromMapBookPages(t *testing.T) {
	md := MetadataFromMap(KindBook, "CLRS", map[string]interface{}{
		"author": "Cormen",
		"pages":  float64(1312), // JSON numbers decode as float64
	})
	require.NotNil(t, md.Book)
	assert.Equal(t, 1312, md.Book.Pages)
}

func TestMetadataFields(t *testing.T) {
	md := MetadataFromMap(KindMaterial, "Graphs", map[string]interface{}{
		"subject": "algorithms",
		"level":   "advanced",
		"year":    2024,
	})

	fields := md.Fields()
	assert.Equal(t, "Graphs", fields["title"])
	assert.Equal(t, "algorithms", fields["subject"])
	assert.Equal(t, "advanced", fields["level"])
	assert.Equal(t, 2024, fields["year"])
	_, hasFormat := fields["format"]
	assert.False(t, hasFormat, "empty typed fields stay out of the flat view")
}

func TestNamespaceForKind(t *testing.T) {
	ns, err := NamespaceForKind(KindVideo)
	require.NoError(t, err)
	assert.Equal(t, NamespaceVideos, ns)

	_, err = NamespaceForKind(Kind("podcast"))
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestParseNamespace(t *testing.T) {
	ns, err := ParseNamespace("books")
	require.NoError(t, err)
	assert.Equal(t, NamespaceBooks, ns)

	_, err = ParseNamespace("podcasts")
	assert.ErrorIs(t, err, ErrNamespaceNotFound)
}

func TestClampTopK(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, 10},
		{-3, 1},
		{1, 1},
		{25, 25},
		{50, 50},
		{500, 50},
	}
	for _, tc := range cases {
		req := SearchRequest{TopK: tc.in}
		assert.Equal(t, tc.want, req.ClampTopK(), "topk %d", tc.in)
	}
}

func TestChunkID(t *testing.T) {
	assert.Equal(t, "src_0", ChunkID("src", 0))
	assert.Equal(t, "src_12", ChunkID("src", 12))
}
