package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"axiona-learning-core/models"
)

func TestNormalizeRecordMaterial(t *testing.T) {
	rec := models.SourceRecord{
		ID:    "mat-1",
		Kind:  models.KindMaterial,
		Title: "Intro to Graphs",
		TextFields: map[string]string{
			"content": "A graph is a set of vertices and edges.",
		},
		Metadata: map[string]interface{}{"subject": "algorithms", "level": "beginner"},
	}

	norm, err := NormalizeRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, models.NamespaceMaterials, norm.Namespace)
	assert.Equal(t, "Intro to Graphs\n\nA graph is a set of vertices and edges.", norm.Text)
	require.NotNil(t, norm.Metadata.Material)
	assert.Equal(t, "algorithms", norm.Metadata.Material.Subject)
}

func TestNormalizeRecordTextFieldFallback(t *testing.T) {
	norm, err := NormalizeRecord(models.SourceRecord{
		ID:   "vid-1",
		Kind: models.KindVideo,
		TextFields: map[string]string{
			"transcript":  "   ",
			"description": "Walkthrough of binary search.",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.NamespaceVideos, norm.Namespace)
	assert.Equal(t, "Walkthrough of binary search.", norm.Text)
}

func TestNormalizeRecordUnsupportedKind(t *testing.T) {
	_, err := NormalizeRecord(models.SourceRecord{
		ID:         "x",
		Kind:       models.Kind("podcast"),
		TextFields: map[string]string{"content": "hi"},
	})
	assert.ErrorIs(t, err, models.ErrUnsupportedKind)
}

func TestNormalizeRecordEmptyContent(t *testing.T) {
	_, err := NormalizeRecord(models.SourceRecord{
		ID:         "book-1",
		Kind:       models.KindBook,
		Title:      "Untitled",
		TextFields: map[string]string{"summary": "", "isbn": "123"},
	})
	assert.ErrorIs(t, err, models.ErrEmptyContent)
}

func TestNormalizeRecordNoTitle(t *testing.T) {
	norm, err := NormalizeRecord(models.SourceRecord{
		ID:         "mat-2",
		Kind:       models.KindMaterial,
		TextFields: map[string]string{"text": "body only"},
	})
	require.NoError(t, err)
	assert.Equal(t, "body only", norm.Text)
}
