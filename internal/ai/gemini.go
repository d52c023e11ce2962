package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

// GeminiClient implements Embedder and Generator on the Google Generative AI
// API. All calls go through a circuit breaker and a rate limiter so one
// unhealthy upstream does not stall every ingestion worker.
type GeminiClient struct {
	client        *genai.Client
	breaker       *gobreaker.CircuitBreaker
	rateLimiter   *rate.Limiter
	embedModel    string
	generateModel string
}

func NewGeminiClient(apiKey, embedModel, generateModel string, rpm int) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing Gemini API key")
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	if rpm <= 0 {
		rpm = 60
	}
	// 90% of the advertised RPM leaves headroom for bursts
	rateLimiter := rate.NewLimiter(rate.Limit(float64(rpm)*0.9/60.0), max(rpm/10, 1))

	return &GeminiClient{
		client:        client,
		breaker:       breaker,
		rateLimiter:   rateLimiter,
		embedModel:    embedModel,
		generateModel: generateModel,
	}, nil
}

func (gc *GeminiClient) Close() error { return gc.client.Close() }

func (gc *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.embed")
	defer span.End()
	span.SetAttributes(
		attribute.String("gemini.model", gc.embedModel),
		attribute.Int("gemini.text_len", len(text)),
	)

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return nil, err
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.EmbeddingModel(gc.embedModel)
		resp, err := model.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, err
		}
		if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
			return nil, errors.New("no embedding returned")
		}
		return resp.Embedding.Values, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
		}
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return nil, err
	}
	return result.([]float32), nil
}

// EmbedBatch runs one API batch call when possible. Values are identical to
// per-item Embed calls; only the round-trips change.
func (gc *GeminiClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := gc.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.EmbeddingModel(gc.embedModel)
		batch := model.NewBatch()
		for _, t := range texts {
			batch.AddContent(genai.Text(t))
		}
		resp, err := model.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, err
		}
		if len(resp.Embeddings) != len(texts) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
		}
		vectors := make([][]float32, len(resp.Embeddings))
		for i, emb := range resp.Embeddings {
			vectors[i] = emb.Values
		}
		return vectors, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([][]float32), nil
}

func (gc *GeminiClient) Generate(ctx context.Context, nc NarrativeContext) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.generate_narrative")
	defer span.End()
	span.SetAttributes(
		attribute.String("gemini.model", gc.generateModel),
		attribute.Int("gemini.snippets", len(nc.Snippets)),
	)

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel(gc.generateModel)
		model.SetTemperature(0.7)
		model.SetMaxOutputTokens(2048)

		resp, err := model.GenerateContent(ctx, genai.Text(buildNarrativePrompt(nc)))
		if err != nil {
			return nil, err
		}
		return collectText(resp), nil
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return "", err
	}
	return result.(string), nil
}

func buildNarrativePrompt(nc NarrativeContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write an encouraging study-plan narrative for a %s learner in %q.\n",
		nc.Profile.CurrentLevel, nc.Profile.Domain)
	if len(nc.Profile.Goals) > 0 {
		fmt.Fprintf(&b, "Goals: %s.\n", strings.Join(nc.Profile.Goals, ", "))
	}
	fmt.Fprintf(&b, "The plan has %d phases over %d days:\n",
		len(nc.Roadmap.Phases), nc.Roadmap.TotalDurationDays)
	for _, p := range nc.Roadmap.Phases {
		fmt.Fprintf(&b, "- Phase %d: %s (%d days)\n", p.Index+1, p.Title, p.DurationDays)
	}
	if len(nc.Snippets) > 0 {
		b.WriteString("\nRelevant excerpts from the assigned resources:\n")
		for _, s := range nc.Snippets {
			fmt.Fprintf(&b, "> %s\n", s)
		}
	}
	return b.String()
}

func collectText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return b.String()
}
