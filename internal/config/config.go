package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI    string
	DBName      string
	Port        string
	GinMode     string
	CORSOrigins []string
	MaxFileSize int64

	// Redis Configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Ingestion concurrency
	IngestWorkers    int
	EmbedConcurrency int

	// Embeddings / generation
	EmbeddingsProvider    string // "google" (default), "static"
	GeminiAPIKey          string
	GoogleEmbeddingsModel string
	GenerationModel       string
	GeminiRPM             int
	VectorDimensions      int
	StaticEmbedderDim     int

	// Retrieval
	SearchTimeoutMs int
	CacheTTLSeconds int
	RoadmapTopN     int

	// Rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// Tracing
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017/axiona"),
		DBName:      getEnv("DB_NAME", "axiona"),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),
		MaxFileSize: int64(getEnvInt("MAX_FILE_SIZE", 50<<20)),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),

		IngestWorkers:    getEnvInt("INGEST_WORKERS", 4),
		EmbedConcurrency: getEnvInt("EMBED_CONCURRENCY", 4),

		EmbeddingsProvider:    getEnv("EMBEDDINGS_PROVIDER", "google"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		GenerationModel:       getEnv("GENERATION_MODEL", "gemini-2.0-flash"),
		GeminiRPM:             getEnvInt("GEMINI_RPM", 60),
		VectorDimensions:      getEnvInt("VECTOR_DIM", 768),
		StaticEmbedderDim:     getEnvInt("STATIC_EMBEDDER_DIM", 64),

		SearchTimeoutMs: getEnvInt("SEARCH_TIMEOUT_MS", 5000),
		CacheTTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 300),
		RoadmapTopN:     getEnvInt("ROADMAP_TOP_N", 3),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	// Chunking misconfiguration is a startup error, never a per-call one.
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", cfg.ChunkOverlap)
	}

	if cfg.EmbeddingsProvider == "google" && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required when EMBEDDINGS_PROVIDER=google - set it in .env file")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
