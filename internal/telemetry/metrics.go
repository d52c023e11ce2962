package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter    metric.Int64Counter
	RequestDuration   metric.Float64Histogram
	RecordsIngested   metric.Int64Counter
	IngestDuration    metric.Float64Histogram
	SearchRequests    metric.Int64Counter
	PartialResponses  metric.Int64Counter
	RoadmapsGenerated metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("axiona-learning-core")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	recordsIngested, err := meter.Int64Counter(
		"ingest.records.total",
		metric.WithDescription("Records processed by the ingestion pipeline, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	ingestDuration, err := meter.Float64Histogram(
		"ingest.record.duration",
		metric.WithDescription("Per-record ingestion duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	searchRequests, err := meter.Int64Counter(
		"search.requests.total",
		metric.WithDescription("Retrieval requests, by namespace set"),
	)
	if err != nil {
		return nil, err
	}

	partialResponses, err := meter.Int64Counter(
		"search.partial.total",
		metric.WithDescription("Responses that omitted at least one namespace at the deadline"),
	)
	if err != nil {
		return nil, err
	}

	roadmapsGenerated, err := meter.Int64Counter(
		"roadmap.generated.total",
		metric.WithDescription("Roadmaps synthesized"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:    requestCounter,
		RequestDuration:   requestDuration,
		RecordsIngested:   recordsIngested,
		IngestDuration:    ingestDuration,
		SearchRequests:    searchRequests,
		PartialResponses:  partialResponses,
		RoadmapsGenerated: roadmapsGenerated,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordIngest records one record's ingestion outcome
func (m *Metrics) RecordIngest(status string, duration float64) {
	attrs := []attribute.KeyValue{attribute.String("ingest.status", status)}

	m.RecordsIngested.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.IngestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordSearch records a retrieval request
func (m *Metrics) RecordSearch(namespaces string, partial bool) {
	attrs := []attribute.KeyValue{attribute.String("search.namespaces", namespaces)}

	m.SearchRequests.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	if partial {
		m.PartialResponses.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	}
}

// RecordRoadmap records a synthesized roadmap
func (m *Metrics) RecordRoadmap(level string) {
	m.RoadmapsGenerated.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("roadmap.level", level)))
}
