package services

import (
	"context"
	"sort"

	"axiona-learning-core/models"
)

// SearchMaterials is the PDF/material view: a materials-only query whose
// hits already carry the subject/level metadata stored at ingestion.
func (s *RetrievalService) SearchMaterials(ctx context.Context, req models.SearchRequest) (models.SearchResponse, error) {
	req.Namespaces = []string{string(models.NamespaceMaterials)}
	return s.Search(ctx, req)
}

// SearchBooks queries the books namespace and annotates every hit with the
// difficulty and use-case classifications.
func (s *RetrievalService) SearchBooks(ctx context.Context, req models.SearchRequest) (models.BookSearchResponse, error) {
	req.Namespaces = []string{string(models.NamespaceBooks)}
	resp, err := s.Search(ctx, req)
	if err != nil {
		return models.BookSearchResponse{}, err
	}

	books := make([]models.BookResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		author := ""
		if r.Metadata.Book != nil {
			author = r.Metadata.Book.Author
		}
		books = append(books, models.BookResult{
			SearchResult: r,
			Difficulty:   s.difficulty.Classify(r.Metadata.Title, r.Snippet),
			UseCase:      s.useCase.Classify(r.Metadata.Title, author, r.Snippet),
		})
	}
	return models.BookSearchResponse{Results: books, Partial: resp.Partial}, nil
}

// SearchVideos queries the videos namespace, classifies each hit's
// difficulty from title/description keywords, parses the human-readable
// duration, and groups the results into a beginner -> intermediate ->
// advanced watch sequence. Within a group, relevance ranks first and shorter
// runtime breaks ties.
func (s *RetrievalService) SearchVideos(ctx context.Context, req models.SearchRequest) (models.VideoSearchResponse, error) {
	req.Namespaces = []string{string(models.NamespaceVideos)}
	resp, err := s.Search(ctx, req)
	if err != nil {
		return models.VideoSearchResponse{}, err
	}

	out := models.VideoSearchResponse{
		Beginner:     []models.VideoResult{},
		Intermediate: []models.VideoResult{},
		Advanced:     []models.VideoResult{},
		Partial:      resp.Partial,
	}
	for _, r := range resp.Results {
		duration := 0
		if r.Metadata.Video != nil {
			if secs, ok := ParseDurationSeconds(r.Metadata.Video.Duration); ok {
				duration = secs
			}
		}
		v := models.VideoResult{
			SearchResult:    r,
			Difficulty:      s.difficulty.Classify(r.Metadata.Title, r.Snippet),
			DurationSeconds: duration,
		}
		switch v.Difficulty {
		case models.LevelBeginner:
			out.Beginner = append(out.Beginner, v)
		case models.LevelAdvanced:
			out.Advanced = append(out.Advanced, v)
		default:
			out.Intermediate = append(out.Intermediate, v)
		}
	}

	sortVideoGroup(out.Beginner)
	sortVideoGroup(out.Intermediate)
	sortVideoGroup(out.Advanced)
	return out, nil
}

func sortVideoGroup(group []models.VideoResult) {
	sort.Slice(group, func(i, j int) bool {
		if group[i].Relevance != group[j].Relevance {
			return group[i].Relevance > group[j].Relevance
		}
		if group[i].DurationSeconds != group[j].DurationSeconds {
			return group[i].DurationSeconds < group[j].DurationSeconds
		}
		return group[i].Metadata.Title < group[j].Metadata.Title
	})
}
