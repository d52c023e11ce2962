package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"axiona-learning-core/internal/ai"
	"axiona-learning-core/internal/index"
	"axiona-learning-core/models"
)

const snippetRunes = 200

// RetrievalService wraps the vector index with query embedding, scoring,
// filtering and multi-namespace fan-out.
type RetrievalService struct {
	index          index.VectorIndex
	embedder       ai.Embedder
	cache          *SnippetCache
	defaultTimeout time.Duration
	difficulty     *DifficultyClassifier
	useCase        *UseCaseClassifier
}

func NewRetrievalService(idx index.VectorIndex, embedder ai.Embedder, cache *SnippetCache, defaultTimeout time.Duration) *RetrievalService {
	if defaultTimeout <= 0 {
		defaultTimeout = 5 * time.Second
	}
	return &RetrievalService{
		index:          idx,
		embedder:       embedder,
		cache:          cache,
		defaultTimeout: defaultTimeout,
		difficulty:     NewDifficultyClassifier(),
		useCase:        NewUseCaseClassifier(),
	}
}

// ParseFilters converts request filter values into index predicates. A
// {"min","max"} object becomes a range; anything else is exact match.
func ParseFilters(raw map[string]interface{}) (index.Filter, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	filter := make(index.Filter, len(raw))
	for key, val := range raw {
		if obj, ok := val.(map[string]interface{}); ok {
			r := index.Range{}
			for k, v := range obj {
				n, ok := toFloat64(v)
				if !ok {
					return nil, fmt.Errorf("filter %q: bound %q is not numeric", key, k)
				}
				switch k {
				case "min":
					r.Min = &n
				case "max":
					r.Max = &n
				default:
					return nil, fmt.Errorf("filter %q: unknown range key %q", key, k)
				}
			}
			filter[key] = r
			continue
		}
		filter[key] = val
	}
	return filter, nil
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// Relevance converts a cosine distance into the [0,1] score callers rank by.
func Relevance(distance float64) float64 {
	r := 1 - distance
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// SearchNamespace runs a single-namespace query: embed, look up, score,
// sort by relevance descending with title as the deterministic tie-break.
func (s *RetrievalService) SearchNamespace(ctx context.Context, ns models.Namespace, query string, topK int, filter index.Filter) ([]models.SearchResult, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}
	return s.searchVector(ctx, ns, vector, topK, filter)
}

func (s *RetrievalService) searchVector(ctx context.Context, ns models.Namespace, vector []float32, topK int, filter index.Filter) ([]models.SearchResult, error) {
	hits, err := s.index.Query(ctx, ns, vector, topK*4, filter)
	if err != nil {
		return nil, err
	}

	// One result per source: a record chunked five ways is still one
	// resource, so only its closest chunk represents it.
	best := make(map[string]models.SearchResult)
	for _, hit := range hits {
		res := models.SearchResult{
			SourceID:  hit.Chunk.SourceID,
			Namespace: ns,
			Relevance: Relevance(hit.Distance),
			Metadata:  hit.Chunk.Metadata,
			Snippet:   snippet(hit.Chunk.Text),
		}
		if prev, ok := best[res.SourceID]; !ok || res.Relevance > prev.Relevance {
			best[res.SourceID] = res
		}
	}

	results := make([]models.SearchResult, 0, len(best))
	for _, r := range best {
		results = append(results, r)
	}
	SortByRelevance(results)
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// SortByRelevance orders results by relevance descending; equal scores fall
// back to title order so responses are deterministic.
func SortByRelevance(results []models.SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Relevance != results[j].Relevance {
			return results[i].Relevance > results[j].Relevance
		}
		return results[i].Metadata.Title < results[j].Metadata.Title
	})
}

// Search fans the query out to the requested namespaces concurrently under a
// shared deadline and merges the ranked results. A namespace missing the
// deadline is omitted and the response is flagged partial instead of failing
// the whole request; only all namespaces failing escalates to an error.
func (s *RetrievalService) Search(ctx context.Context, req models.SearchRequest) (models.SearchResponse, error) {
	tracer := otel.Tracer("retrieval")
	ctx, span := tracer.Start(ctx, "retrieval.search")
	defer span.End()

	topK := req.ClampTopK()

	namespaces := make([]models.Namespace, 0, 3)
	if len(req.Namespaces) == 0 {
		namespaces = models.AllNamespaces()
	} else {
		for _, raw := range req.Namespaces {
			ns, err := models.ParseNamespace(raw)
			if err != nil {
				return models.SearchResponse{}, err
			}
			namespaces = append(namespaces, ns)
		}
	}

	filter, err := ParseFilters(req.Filters)
	if err != nil {
		return models.SearchResponse{}, err
	}

	if s.cache != nil {
		if resp, ok := s.cache.Get(ctx, req); ok {
			span.SetAttributes(attribute.Bool("retrieval.cache_hit", true))
			return resp, nil
		}
	}

	// The query is embedded once and the vector shared across namespaces,
	// outside the fan-out deadline so a slow index cannot starve it.
	vector, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return models.SearchResponse{}, fmt.Errorf("query embedding: %w", err)
	}

	timeout := s.defaultTimeout
	if req.DeadlineMs > 0 {
		timeout = time.Duration(req.DeadlineMs) * time.Millisecond
	}
	fanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type nsOutcome struct {
		results []models.SearchResult
		err     error
	}
	outcomes := make([]nsOutcome, len(namespaces))

	var wg sync.WaitGroup
	for i, ns := range namespaces {
		wg.Add(1)
		go func(i int, ns models.Namespace) {
			defer wg.Done()
			results, err := s.searchVector(fanCtx, ns, vector, topK, filter)
			outcomes[i] = nsOutcome{results: results, err: err}
		}(i, ns)
	}
	wg.Wait()

	var merged []models.SearchResult
	failed := 0
	for i, out := range outcomes {
		if out.err != nil {
			failed++
			log.Printf("Search: namespace %s omitted: %v", namespaces[i], out.err)
			continue
		}
		merged = append(merged, out.results...)
	}
	if failed == len(namespaces) {
		return models.SearchResponse{}, fmt.Errorf("%w: all %d namespaces failed", models.ErrIndexUnavailable, failed)
	}

	SortByRelevance(merged)
	resp := models.SearchResponse{Results: merged, Partial: failed > 0}
	if resp.Results == nil {
		resp.Results = []models.SearchResult{}
	}

	span.SetAttributes(
		attribute.Int("retrieval.results", len(resp.Results)),
		attribute.Bool("retrieval.partial", resp.Partial),
	)

	if s.cache != nil && !resp.Partial {
		s.cache.Set(ctx, req, resp)
	}
	return resp, nil
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetRunes {
		return text
	}
	return string(runes[:snippetRunes]) + "…"
}
