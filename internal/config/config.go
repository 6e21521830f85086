package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Retrieval RetrievalConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	IngestTopic        string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
}

type AIConfig struct {
	EmbeddingProvider   string // "gemini" or "ollama"
	OllamaBaseURL       string
	OllamaEmbedModel    string
	LLMProvider         string // "ollama" or "gemini"
	LLMModel            string // e.g. "llama3", "gemini-1.5-flash"
	FallbackProvider    string // secondary backend for the gateway, empty disables fallback
	FallbackModel       string
	RetryMaxAttempts    int
	RetryInitialDelayMs int
}

type RetrievalConfig struct {
	ChunkSize    int
	OverlapWords int
	MinTailChars int
	// Similarity floor used when deciding whether any indexed context exists.
	ContextThreshold float64
	DefaultMode      string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			IngestTopic:        getEnv("INGEST_DOCUMENT_TOPIC_NAME", "INGEST_DOCUMENT"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:    getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:         getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:            getEnv("LLM_MODEL", "llama3"),
			FallbackProvider:    getEnv("LLM_FALLBACK_PROVIDER", ""),
			FallbackModel:       getEnv("LLM_FALLBACK_MODEL", ""),
			RetryMaxAttempts:    getEnvAsInt("LLM_RETRY_MAX_ATTEMPTS", 3),
			RetryInitialDelayMs: getEnvAsInt("LLM_RETRY_INITIAL_DELAY_MS", 500),
		},
		Retrieval: RetrievalConfig{
			ChunkSize:        getEnvAsInt("CHUNK_SIZE", 1500),
			OverlapWords:     getEnvAsInt("CHUNK_OVERLAP_WORDS", 30),
			MinTailChars:     getEnvAsInt("CHUNK_MIN_TAIL_CHARS", 50),
			ContextThreshold: getEnvAsFloat("CONTEXT_SIMILARITY_THRESHOLD", 0.30),
			DefaultMode:      getEnv("DEFAULT_CHAT_MODE", "balanced"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
