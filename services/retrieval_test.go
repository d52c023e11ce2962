package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"axiona-learning-core/internal/ai"
	"axiona-learning-core/internal/index"
	"axiona-learning-core/models"
)

// failingEmbedder errors on every call.
type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("model unavailable")
}

func (failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("model unavailable")
}

// faultyIndex delegates to a MemoryIndex but fails queries against the
// configured namespaces.
type faultyIndex struct {
	*index.MemoryIndex
	failing map[models.Namespace]bool
}

func (f *faultyIndex) Query(ctx context.Context, ns models.Namespace, vector []float32, topK int, filter index.Filter) ([]index.Hit, error) {
	if f.failing[ns] {
		return nil, errors.New("namespace down")
	}
	return f.MemoryIndex.Query(ctx, ns, vector, topK, filter)
}

// slowIndex blocks until the context expires.
type slowIndex struct {
	*index.MemoryIndex
	slow map[models.Namespace]bool
}

func (s *slowIndex) Query(ctx context.Context, ns models.Namespace, vector []float32, topK int, filter index.Filter) ([]index.Hit, error) {
	if s.slow[ns] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.MemoryIndex.Query(ctx, ns, vector, topK, filter)
}

func seedIndex(t *testing.T, idx index.VectorIndex) {
	t.Helper()
	svc := NewIngestionService(idx, ai.NewStaticEmbedder(32), mustChunker(t), 2, 2)
	records := []models.SourceRecord{
		{
			ID: "mat-sort", Kind: models.KindMaterial, Title: "Sorting Algorithms",
			TextFields: map[string]string{"content": "Quicksort and mergesort are sorting algorithms."},
			Metadata:   map[string]interface{}{"subject": "algorithms", "level": "beginner"},
		},
		{
			ID: "mat-graph", Kind: models.KindMaterial, Title: "Graph Theory",
			TextFields: map[string]string{"content": "Graphs model relationships between entities."},
			Metadata:   map[string]interface{}{"subject": "algorithms", "level": "advanced"},
		},
		{
			ID: "vid-sort", Kind: models.KindVideo, Title: "Sorting Explained",
			TextFields: map[string]string{"transcript": "This video explains sorting algorithms step by step."},
			Metadata:   map[string]interface{}{"duration": "12:00", "channel": "CS Basics"},
		},
		{
			ID: "book-algo", Kind: models.KindBook, Title: "Introduction to Algorithms",
			TextFields: map[string]string{"summary": "The classic textbook on algorithms and sorting."},
			Metadata:   map[string]interface{}{"author": "Cormen", "pages": 1312},
		},
	}
	summary := svc.IngestBatch(context.Background(), records)
	require.Equal(t, len(records), summary.Succeeded)
}

func mustChunker(t *testing.T) *Chunker {
	t.Helper()
	c, err := NewChunker(500, 50)
	require.NoError(t, err)
	return c
}

func TestRelevanceBounds(t *testing.T) {
	assert.Equal(t, 1.0, Relevance(0))
	assert.Equal(t, 0.0, Relevance(1))
	assert.Equal(t, 0.0, Relevance(1.7))
	assert.Equal(t, 1.0, Relevance(-0.2))
	assert.InDelta(t, 0.5, Relevance(0.5), 1e-9)
}

func TestSortByRelevanceDeterministic(t *testing.T) {
	results := []models.SearchResult{
		{Relevance: 0.5, Metadata: models.Metadata{Title: "b"}},
		{Relevance: 0.9, Metadata: models.Metadata{Title: "z"}},
		{Relevance: 0.5, Metadata: models.Metadata{Title: "a"}},
	}
	SortByRelevance(results)
	assert.Equal(t, "z", results[0].Metadata.Title)
	assert.Equal(t, "a", results[1].Metadata.Title)
	assert.Equal(t, "b", results[2].Metadata.Title)
}

func TestParseFilters(t *testing.T) {
	filter, err := ParseFilters(map[string]interface{}{
		"subject": "algorithms",
		"pages":   map[string]interface{}{"min": 100.0, "max": 2000.0},
	})
	require.NoError(t, err)
	assert.Equal(t, "algorithms", filter["subject"])

	r, ok := filter["pages"].(index.Range)
	require.True(t, ok)
	assert.Equal(t, 100.0, *r.Min)
	assert.Equal(t, 2000.0, *r.Max)
}

func TestParseFiltersRejectsBadRange(t *testing.T) {
	_, err := ParseFilters(map[string]interface{}{
		"pages": map[string]interface{}{"min": "cheap"},
	})
	assert.Error(t, err)

	_, err = ParseFilters(map[string]interface{}{
		"pages": map[string]interface{}{"lowest": 1.0},
	})
	assert.Error(t, err)
}

func TestSearchMergesNamespaces(t *testing.T) {
	idx := index.NewMemoryIndex()
	seedIndex(t, idx)
	svc := NewRetrievalService(idx, ai.NewStaticEmbedder(32), nil, time.Second)

	resp, err := svc.Search(context.Background(), models.SearchRequest{Query: "sorting algorithms"})
	require.NoError(t, err)
	assert.False(t, resp.Partial)
	require.NotEmpty(t, resp.Results)

	seen := map[models.Namespace]bool{}
	for _, r := range resp.Results {
		seen[r.Namespace] = true
	}
	assert.True(t, seen[models.NamespaceMaterials])
	assert.True(t, seen[models.NamespaceVideos])
	assert.True(t, seen[models.NamespaceBooks])

	for i := 1; i < len(resp.Results); i++ {
		assert.GreaterOrEqual(t, resp.Results[i-1].Relevance, resp.Results[i].Relevance)
	}
}

func TestSearchUnknownNamespace(t *testing.T) {
	idx := index.NewMemoryIndex()
	svc := NewRetrievalService(idx, ai.NewStaticEmbedder(32), nil, time.Second)

	_, err := svc.Search(context.Background(), models.SearchRequest{
		Query:      "anything",
		Namespaces: []string{"podcasts"},
	})
	assert.ErrorIs(t, err, models.ErrNamespaceNotFound)
}

func TestSearchPartialOnNamespaceFailure(t *testing.T) {
	mem := index.NewMemoryIndex()
	seedIndex(t, mem)
	idx := &faultyIndex{MemoryIndex: mem, failing: map[models.Namespace]bool{models.NamespaceVideos: true}}
	svc := NewRetrievalService(idx, ai.NewStaticEmbedder(32), nil, time.Second)

	resp, err := svc.Search(context.Background(), models.SearchRequest{Query: "sorting"})
	require.NoError(t, err)
	assert.True(t, resp.Partial)
	for _, r := range resp.Results {
		assert.NotEqual(t, models.NamespaceVideos, r.Namespace)
	}
}

func TestSearchAllNamespacesFailing(t *testing.T) {
	mem := index.NewMemoryIndex()
	idx := &faultyIndex{MemoryIndex: mem, failing: map[models.Namespace]bool{
		models.NamespaceMaterials: true,
		models.NamespaceVideos:    true,
		models.NamespaceBooks:     true,
	}}
	svc := NewRetrievalService(idx, ai.NewStaticEmbedder(32), nil, time.Second)

	_, err := svc.Search(context.Background(), models.SearchRequest{Query: "sorting"})
	assert.ErrorIs(t, err, models.ErrIndexUnavailable)
}

func TestSearchDeadlineDropsSlowNamespace(t *testing.T) {
	mem := index.NewMemoryIndex()
	seedIndex(t, mem)
	idx := &slowIndex{MemoryIndex: mem, slow: map[models.Namespace]bool{models.NamespaceBooks: true}}
	svc := NewRetrievalService(idx, ai.NewStaticEmbedder(32), nil, time.Second)

	start := time.Now()
	resp, err := svc.Search(context.Background(), models.SearchRequest{
		Query:      "sorting",
		DeadlineMs: 50,
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.True(t, resp.Partial)
	for _, r := range resp.Results {
		assert.NotEqual(t, models.NamespaceBooks, r.Namespace)
	}
}

func TestSearchEmbeddingFailure(t *testing.T) {
	idx := index.NewMemoryIndex()
	svc := NewRetrievalService(idx, failingEmbedder{}, nil, time.Second)

	_, err := svc.Search(context.Background(), models.SearchRequest{Query: "sorting"})
	assert.Error(t, err)
}

func TestSearchOneResultPerSource(t *testing.T) {
	idx := index.NewMemoryIndex()
	svc := NewIngestionService(idx, ai.NewStaticEmbedder(32), mustChunkerSmall(t), 2, 2)

	// Long text chunks into several pieces of the same source.
	body := strings.Repeat("distributed consensus protocols and leader election ", 20)
	count, err := svc.IngestRecord(context.Background(), models.SourceRecord{
		ID: "mat-raft", Kind: models.KindMaterial, Title: "Consensus",
		TextFields: map[string]string{"content": body},
	})
	require.NoError(t, err)
	require.Greater(t, count, 1)

	retrieval := NewRetrievalService(idx, ai.NewStaticEmbedder(32), nil, time.Second)
	results, err := retrieval.SearchNamespace(context.Background(), models.NamespaceMaterials, "consensus protocols", 10, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "mat-raft", results[0].SourceID)
}

func mustChunkerSmall(t *testing.T) *Chunker {
	t.Helper()
	c, err := NewChunker(120, 20)
	require.NoError(t, err)
	return c
}

func TestSearchNamespaceFilter(t *testing.T) {
	idx := index.NewMemoryIndex()
	seedIndex(t, idx)
	svc := NewRetrievalService(idx, ai.NewStaticEmbedder(32), nil, time.Second)

	results, err := svc.SearchNamespace(context.Background(), models.NamespaceMaterials,
		"algorithms", 10, index.Filter{"level": "beginner"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "mat-sort", results[0].SourceID)
}

func TestSnippetTruncation(t *testing.T) {
	long := strings.Repeat("x", 500)
	s := snippet(long)
	assert.Equal(t, snippetRunes+1, len([]rune(s)))
	assert.True(t, strings.HasSuffix(s, "…"))

	short := "short text"
	assert.Equal(t, short, snippet(short))
}

func TestSearchVideosGrouping(t *testing.T) {
	idx := index.NewMemoryIndex()
	svc := NewIngestionService(idx, ai.NewStaticEmbedder(32), mustChunker(t), 2, 2)

	records := []models.SourceRecord{
		{
			ID: "v1", Kind: models.KindVideo, Title: "Python Basics for Beginners",
			TextFields: map[string]string{"transcript": "learn python variables and loops"},
			Metadata:   map[string]interface{}{"duration": "10:00"},
		},
		{
			ID: "v2", Kind: models.KindVideo, Title: "Advanced Python Internals",
			TextFields: map[string]string{"transcript": "python bytecode and the interpreter loop"},
			Metadata:   map[string]interface{}{"duration": "1h 20m"},
		},
		{
			ID: "v3", Kind: models.KindVideo, Title: "Python Web Services",
			TextFields: map[string]string{"transcript": "building python web services"},
			Metadata:   map[string]interface{}{"duration": "45 min"},
		},
	}
	summary := svc.IngestBatch(context.Background(), records)
	require.Equal(t, 3, summary.Succeeded)

	retrieval := NewRetrievalService(idx, ai.NewStaticEmbedder(32), nil, time.Second)
	resp, err := retrieval.SearchVideos(context.Background(), models.SearchRequest{Query: "python"})
	require.NoError(t, err)

	require.Len(t, resp.Beginner, 1)
	assert.Equal(t, "v1", resp.Beginner[0].SourceID)
	assert.Equal(t, 600, resp.Beginner[0].DurationSeconds)

	require.Len(t, resp.Advanced, 1)
	assert.Equal(t, "v2", resp.Advanced[0].SourceID)
	assert.Equal(t, 4800, resp.Advanced[0].DurationSeconds)

	require.Len(t, resp.Intermediate, 1)
	assert.Equal(t, "v3", resp.Intermediate[0].SourceID)
	assert.Equal(t, 2700, resp.Intermediate[0].DurationSeconds)
}

func TestSearchBooksClassification(t *testing.T) {
	idx := index.NewMemoryIndex()
	svc := NewIngestionService(idx, ai.NewStaticEmbedder(32), mustChunker(t), 2, 2)

	summary := svc.IngestBatch(context.Background(), []models.SourceRecord{
		{
			ID: "b1", Kind: models.KindBook, Title: "Introduction to Databases",
			TextFields: map[string]string{"summary": "database systems from first principles"},
			Metadata:   map[string]interface{}{"author": "Someone", "pages": 600},
		},
	})
	require.Equal(t, 1, summary.Succeeded)

	retrieval := NewRetrievalService(idx, ai.NewStaticEmbedder(32), nil, time.Second)
	resp, err := retrieval.SearchBooks(context.Background(), models.SearchRequest{Query: "database systems"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, UseCaseTextbook, resp.Results[0].UseCase)
	assert.Equal(t, models.LevelBeginner, resp.Results[0].Difficulty)
}
