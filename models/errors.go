package models

import "errors"

// Ingestion errors are per-record: a record hitting one of the skip errors is
// counted and the rest of the batch continues.
var (
	// ErrUnsupportedKind means the record's kind is not one of material,
	// video or book. Skip-and-continue at ingestion.
	ErrUnsupportedKind = errors.New("unsupported record kind")

	// ErrEmptyContent means the record is missing its required text field.
	// Skip-and-continue at ingestion.
	ErrEmptyContent = errors.New("record has no indexable content")

	// ErrEmbeddingFailure means the embedder kept failing after retries.
	// The owning record's ingestion is marked failed.
	ErrEmbeddingFailure = errors.New("embedding generation failed")

	// ErrDimensionMismatch means an embedder produced a vector whose length
	// does not match the namespace's pinned dimension. Hard ingestion error
	// for that record.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNamespaceNotFound is surfaced immediately to the caller.
	ErrNamespaceNotFound = errors.New("namespace not found")

	// ErrIndexUnavailable means the vector index could not be reached after
	// retries with backoff.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)
