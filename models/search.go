package models

const (
	TopKMin     = 1
	TopKMax     = 50
	TopKDefault = 10
)

// SearchRequest is the generic retrieval request. Namespaces defaults to all
// three; filter values are scalars (exact match) or {"min","max"} ranges.
type SearchRequest struct {
	Query      string                 `json:"query" binding:"required"`
	Namespaces []string               `json:"namespaces,omitempty"`
	Filters    map[string]interface{} `json:"filters,omitempty"`
	TopK       int                    `json:"top_k,omitempty"`
	DeadlineMs int                    `json:"deadline_ms,omitempty"`
}

// ClampTopK normalizes TopK into the allowed 1..50 window, defaulting to 10.
func (r *SearchRequest) ClampTopK() int {
	switch {
	case r.TopK == 0:
		return TopKDefault
	case r.TopK < TopKMin:
		return TopKMin
	case r.TopK > TopKMax:
		return TopKMax
	}
	return r.TopK
}

// SearchResult is one ranked hit. Relevance is in [0,1], higher is closer.
type SearchResult struct {
	SourceID  string    `json:"source_id"`
	Namespace Namespace `json:"namespace"`
	Relevance float64   `json:"relevance"`
	Metadata  Metadata  `json:"metadata"`
	Snippet   string    `json:"snippet"`
}

// SearchResponse carries merged results. Partial is set when one or more
// namespaces were dropped at the deadline instead of failing the request.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Partial bool           `json:"partial"`
}

// BookResult augments a book hit with the heuristic classifications.
type BookResult struct {
	SearchResult
	Difficulty string `json:"difficulty"`
	UseCase    string `json:"use_case"`
}

// VideoResult augments a video hit with difficulty and parsed duration.
type VideoResult struct {
	SearchResult
	Difficulty      string `json:"difficulty"`
	DurationSeconds int    `json:"duration_seconds"`
}

// VideoSearchResponse groups videos into a beginner-first watch order.
type VideoSearchResponse struct {
	Beginner     []VideoResult `json:"beginner"`
	Intermediate []VideoResult `json:"intermediate"`
	Advanced     []VideoResult `json:"advanced"`
	Partial      bool          `json:"partial"`
}

// BookSearchResponse is the classified book view.
type BookSearchResponse struct {
	Results []BookResult `json:"results"`
	Partial bool         `json:"partial"`
}
