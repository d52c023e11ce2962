package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"axiona-learning-core/internal/ai"
	"axiona-learning-core/internal/config"
	"axiona-learning-core/internal/index"
	"axiona-learning-core/internal/logger"
	"axiona-learning-core/internal/telemetry"
	"axiona-learning-core/middleware"
	"axiona-learning-core/routes"
	"axiona-learning-core/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
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

	// Connect to Redis
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	// Tracing and metrics
	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("axiona-learning-core", cfg.OTLPEndpoint)
		if err != nil {
			log.Fatal("Failed to init tracer:", err)
		}
		defer shutdown()
	}
	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
	}

	// Embeddings and generation
	embedder, generator, err := buildAIClients(cfg)
	if err != nil {
		log.Fatal("Failed to init embeddings client:", err)
	}

	// Vector index over the three chunk collections
	vectorIndex := index.NewMongoIndex(mongoClient.Database(cfg.DBName), cfg.VectorDimensions)

	// Services
	chunker, err := services.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatal("Invalid chunking config:", err)
	}
	ingestion := services.NewIngestionService(vectorIndex, embedder, chunker, cfg.IngestWorkers, cfg.EmbedConcurrency)
	cache := services.NewSnippetCache(rdb, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	retrieval := services.NewRetrievalService(vectorIndex, embedder, cache, time.Duration(cfg.SearchTimeoutMs)*time.Millisecond)
	roadmaps := services.NewRoadmapService(retrieval, generator, cfg.RoadmapTopN)

	// Task queue client for async ingestion
	queueClient := asynq.NewClient(asynqRedisOpt(cfg))
	defer queueClient.Close()

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	if cfg.TracingEnabled {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
	}
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Ingestion
	ingest := router.Group("/ingest")
	{
		ingest.POST("/records", routes.HandleIngestBatch(ingestion))
		ingest.POST("/records/async", routes.HandleIngestBatchAsync(queueClient))
		ingest.POST("/materials/pdf", routes.HandleIngestPDF(ingestion, cfg.MaxFileSize))
		ingest.DELETE("/records/:kind/:id", routes.HandleDeleteSource(ingestion, queueClient))
	}

	// Retrieval
	search := router.Group("/search")
	{
		search.POST("", routes.HandleSearch(retrieval, metrics))
		search.POST("/materials", routes.HandleSearchMaterials(retrieval, metrics))
		search.POST("/books", routes.HandleSearchBooks(retrieval, metrics))
		search.POST("/videos", routes.HandleSearchVideos(retrieval, metrics))
	}

	// Roadmap synthesis
	router.POST("/roadmap", routes.HandleRoadmap(roadmaps, metrics))

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// buildAIClients picks the embeddings provider. The static provider keeps
// local development and CI off the network.
func buildAIClients(cfg *config.Config) (ai.Embedder, ai.Generator, error) {
	switch cfg.EmbeddingsProvider {
	case "static":
		return ai.NewStaticEmbedder(cfg.StaticEmbedderDim), ai.StaticGenerator{}, nil
	default:
		client, err := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GoogleEmbeddingsModel, cfg.GenerationModel, cfg.GeminiRPM)
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	}
}

func asynqRedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	addr := strings.TrimPrefix(cfg.RedisURL, "redis://")
	if i := strings.Index(addr, "/"); i >= 0 {
		addr = addr[:i]
	}
	return asynq.RedisClientOpt{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}
