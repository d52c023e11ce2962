package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"axiona-learning-core/internal/ai"
	"axiona-learning-core/internal/index"
	"axiona-learning-core/models"
	"axiona-learning-core/utils"
)

// Record statuses reported in a batch summary.
const (
	StatusSucceeded = "succeeded"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// RecordReport is the per-record outcome of a batch ingestion.
type RecordReport struct {
	SourceID   string `json:"source_id"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchSummary aggregates a batch: skip and fail are per-record and never
// abort the rest of the batch.
type BatchSummary struct {
	Succeeded int            `json:"succeeded"`
	Skipped   int            `json:"skipped"`
	Failed    int            `json:"failed"`
	Reports   []RecordReport `json:"reports"`
}

// IngestionService runs the normalize -> chunk -> embed -> index pipeline.
type IngestionService struct {
	index            index.VectorIndex
	embedder         ai.Embedder
	chunker          *Chunker
	workers          int
	embedConcurrency int
	embedAttempts    int
}

func NewIngestionService(idx index.VectorIndex, embedder ai.Embedder, chunker *Chunker, workers, embedConcurrency int) *IngestionService {
	if workers <= 0 {
		workers = 4
	}
	if embedConcurrency <= 0 {
		embedConcurrency = 4
	}
	return &IngestionService{
		index:            idx,
		embedder:         embedder,
		chunker:          chunker,
		workers:          workers,
		embedConcurrency: embedConcurrency,
		embedAttempts:    3,
	}
}

// IngestBatch processes records on a bounded worker pool and reports the
// batch outcome. Reports come back in input order.
func (s *IngestionService) IngestBatch(ctx context.Context, records []models.SourceRecord) BatchSummary {
	reports := make([]RecordReport, len(records))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)
	for i, rec := range records {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, rec models.SourceRecord) {
			defer wg.Done()
			defer func() { <-sem }()
			reports[i] = s.ingestOne(ctx, rec)
		}(i, rec)
	}
	wg.Wait()

	summary := BatchSummary{Reports: reports}
	for _, r := range reports {
		switch r.Status {
		case StatusSucceeded:
			summary.Succeeded++
		case StatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	return summary
}

func (s *IngestionService) ingestOne(ctx context.Context, rec models.SourceRecord) RecordReport {
	count, err := s.IngestRecord(ctx, rec)
	if err == nil {
		return RecordReport{SourceID: rec.ID, Status: StatusSucceeded, ChunkCount: count}
	}
	if errors.Is(err, models.ErrUnsupportedKind) || errors.Is(err, models.ErrEmptyContent) {
		log.Printf("Ingestion skipped record %s: %v", rec.ID, err)
		return RecordReport{SourceID: rec.ID, Status: StatusSkipped, Error: err.Error()}
	}
	log.Printf("Ingestion failed record %s: %v", rec.ID, err)
	return RecordReport{SourceID: rec.ID, Status: StatusFailed, Error: err.Error()}
}

// IngestRecord runs one record through the pipeline and atomically replaces
// its chunk set in the namespace. Returns the number of chunks written.
func (s *IngestionService) IngestRecord(ctx context.Context, rec models.SourceRecord) (int, error) {
	norm, err := NormalizeRecord(rec)
	if err != nil {
		return 0, err
	}

	texts := s.chunker.Split(norm.Text)
	chunks := make([]models.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = models.Chunk{
			ChunkID:   models.ChunkID(norm.ID, i),
			SourceID:  norm.ID,
			Namespace: norm.Namespace,
			Index:     i,
			Text:      text,
			Keywords:  ExtractKeywords(text, 5),
			Metadata:  norm.Metadata,
		}
		chunks[i].Fields = norm.Metadata.Fields()
	}

	// Chunk embeddings may run concurrently; index writes for the source
	// stay a single serialized ReplaceSource below.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.embedConcurrency)
	for i := range chunks {
		g.Go(func() error {
			vec, err := ai.EmbedWithRetry(gctx, s.embedder, chunks[i].Text, s.embedAttempts)
			if err != nil {
				return err
			}
			chunks[i].Embedding = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Chunking output for this record is discarded; the old chunk
		// set in the index stays intact.
		return 0, err
	}

	if err := s.index.ReplaceSource(ctx, norm.Namespace, norm.ID, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// DeleteSource removes every chunk of a deleted record from its namespace.
func (s *IngestionService) DeleteSource(ctx context.Context, kind models.Kind, sourceID string) error {
	ns, err := models.NamespaceForKind(kind)
	if err != nil {
		return err
	}

	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()
	return s.index.DeleteBySource(ctx, ns, sourceID)
}
