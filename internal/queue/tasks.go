// Package queue defines the asynq tasks that defer record ingestion to the
// background worker.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"axiona-learning-core/models"
	"axiona-learning-core/services"
)

const (
	TaskIngestRecord = "record:ingest"
	TaskDeleteSource = "record:delete"
)

// IngestRecordPayload carries the full record: the provider pushes state,
// the worker never calls back into it.
type IngestRecordPayload struct {
	BatchID string              `json:"batch_id"`
	Record  models.SourceRecord `json:"record"`
}

type DeleteSourcePayload struct {
	Kind     models.Kind `json:"kind"`
	SourceID string      `json:"source_id"`
}

func NewIngestRecordTask(batchID string, record models.SourceRecord) (*asynq.Task, error) {
	payload, err := json.Marshal(IngestRecordPayload{BatchID: batchID, Record: record})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		TaskIngestRecord,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
		asynq.Queue("default"),
	), nil
}

func NewDeleteSourceTask(kind models.Kind, sourceID string) (*asynq.Task, error) {
	payload, err := json.Marshal(DeleteSourcePayload{Kind: kind, SourceID: sourceID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		TaskDeleteSource,
		payload,
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
		asynq.Queue("low"),
	), nil
}

// TaskProcessor executes queued ingestion work against the live pipeline.
type TaskProcessor struct {
	ingestion *services.IngestionService
}

func NewTaskProcessor(ingestion *services.IngestionService) *TaskProcessor {
	return &TaskProcessor{ingestion: ingestion}
}

func (p *TaskProcessor) ProcessIngestRecord(ctx context.Context, t *asynq.Task) error {
	var payload IngestRecordPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	count, err := p.ingestion.IngestRecord(ctx, payload.Record)
	if err != nil {
		// Rejections are final; retrying the same malformed record just
		// burns queue slots.
		if errors.Is(err, models.ErrUnsupportedKind) || errors.Is(err, models.ErrEmptyContent) {
			log.Printf("Ingest task skipped record %s (batch %s): %v", payload.Record.ID, payload.BatchID, err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err // transient; asynq retries
	}

	log.Printf("Ingested record %s (batch %s): %d chunks", payload.Record.ID, payload.BatchID, count)
	return nil
}

func (p *TaskProcessor) ProcessDeleteSource(ctx context.Context, t *asynq.Task) error {
	var payload DeleteSourcePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}
	if err := p.ingestion.DeleteSource(ctx, payload.Kind, payload.SourceID); err != nil {
		if errors.Is(err, models.ErrUnsupportedKind) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	log.Printf("Deleted source %s from %s namespace", payload.SourceID, payload.Kind)
	return nil
}
