package main

import (
	"context"
	"log"
	"strings"
	"time"

	"axiona-learning-core/internal/ai"
	"axiona-learning-core/internal/config"
	"axiona-learning-core/internal/index"
	"axiona-learning-core/internal/logger"
	"axiona-learning-core/internal/queue"
	"axiona-learning-core/services"

	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()

	// Embeddings client
	var embedder ai.Embedder
	if cfg.EmbeddingsProvider == "static" {
		embedder = ai.NewStaticEmbedder(cfg.StaticEmbedderDim)
	} else {
		client, err := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GoogleEmbeddingsModel, cfg.GenerationModel, cfg.GeminiRPM)
		if err != nil {
			log.Fatal("Failed to initialize Gemini client:", err)
		}
		defer client.Close()
		embedder = client
	}

	// Ingestion pipeline
	vectorIndex := index.NewMongoIndex(mongoClient.Database(cfg.DBName), cfg.VectorDimensions)
	chunker, err := services.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatal("Invalid chunking config:", err)
	}
	ingestion := services.NewIngestionService(vectorIndex, embedder, chunker, cfg.IngestWorkers, cfg.EmbedConcurrency)

	// Redis options for Asynq
	addr := strings.TrimPrefix(cfg.RedisURL, "redis://")
	if i := strings.Index(addr, "/"); i >= 0 {
		addr = addr[:i]
	}
	redisOpt := asynq.RedisClientOpt{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Create Asynq server
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 20,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("Task failed: %s, error: %v", task.Type(), err)
			}),
		},
	)

	// Create task processor
	processor := queue.NewTaskProcessor(ingestion)

	// Create mux and register handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIngestRecord, processor.ProcessIngestRecord)
	mux.HandleFunc(queue.TaskDeleteSource, processor.ProcessDeleteSource)

	log.Println("Starting Asynq worker...")
	log.Printf("   Queues: critical(6), default(3), low(1)")
	log.Printf("   Redis: %s", redisOpt.Addr)

	// Start the server
	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
