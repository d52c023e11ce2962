package services

import (
	"fmt"
	"strings"
)

// Chunker slices normalized text into bounded, overlapping windows. The
// window slides by size-overlap, so for text length L the chunk count is
// max(1, ceil((L-overlap)/(size-overlap))).
type Chunker struct {
	size    int
	overlap int
}

// NewChunker validates the configuration once at startup; overlap >= size is
// a configuration error, not a per-call one.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got overlap=%d size=%d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split returns the ordered chunk texts. Text at most one window long comes
// back as a single chunk; the last window may be shorter than size.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) <= c.size {
		return []string{text}
	}

	advance := c.size - c.overlap
	var chunks []string
	for i := 0; i < len(runes); i += advance {
		end := i + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// ExtractKeywords pulls the most frequent non-stopword terms out of a chunk.
// They ride along in the chunk metadata for exact-match filtering.
func ExtractKeywords(text string, limit int) []string {
	stopWords := map[string]bool{
		"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
		"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
		"with": true, "is": true, "are": true, "was": true, "were": true,
	}

	wordFreq := make(map[string]int)
	var order []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?()[]{}\"")
		if len(word) > 2 && !stopWords[word] {
			if wordFreq[word] == 0 {
				order = append(order, word)
			}
			wordFreq[word]++
		}
	}

	keywords := make([]string, 0, limit)
	for _, word := range order {
		if wordFreq[word] >= 2 && len(keywords) < limit {
			keywords = append(keywords, word)
		}
	}
	return keywords
}
