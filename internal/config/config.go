package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Vector   VectorConfig
	Keys     APIKeys
	Ai       AIConfig
	Web      WebConfig
	Session  SessionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type VectorConfig struct {
	Backend      string // "qdrant" or "pgvector"
	QdrantURL    string
	QdrantAPIKey string
	Collections  []string
	NamedVectors map[string]string // collection -> named vector to query
	Dimension    int
}

type APIKeys struct {
	OpenAI       string
	GoogleGemini string
	HuggingFace  string
	Jina         string
	Brave        string
}

type AIConfig struct {
	EmbeddingProvider string // "openai", "ollama", "jina" or "gemini"
	EmbeddingModel    string
	OllamaBaseURL     string
	OllamaModel       string // Ollama embedding model
	LLMProvider       string // "openai", "ollama" or "huggingface"
	LLMModel          string
	SummaryTopic      string // Queue topic for document summary refinement
}

type WebConfig struct {
	MaxResults int
	Timeout    time.Duration
}

type SessionConfig struct {
	Backend string // "memory" or "redis"
}

// The knowledge base ships with these Qdrant collections. The first one is
// indexed with a named dense vector, hence the default map below.
var defaultCollections = []string{
	"TAX-RAG-1",
	"tax_documents",
	"ca_knowledge_base",
	"test_project_indexing",
	"hugging_face_docs",
	"transformers_docs",
}

const defaultNamedVectors = "TAX-RAG-1:text-dense"

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Vector: VectorConfig{
			Backend:      getEnv("VECTOR_BACKEND", "qdrant"),
			QdrantURL:    getEnv("QDRANT_URL", "http://localhost:6333"),
			QdrantAPIKey: getEnv("QDRANT_API_KEY", ""),
			Collections:  getEnvAsSlice("KNOWLEDGE_COLLECTIONS", defaultCollections),
			NamedVectors: getEnvAsMap("QDRANT_NAMED_VECTORS", defaultNamedVectors),
			Dimension:    getEnvAsInt("EMBEDDING_DIMENSION", 1536),
		},
		Keys: APIKeys{
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			Brave:        getEnv("BRAVE_SEARCH_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
			SummaryTopic:      getEnv("REFINE_SUMMARY_TOPIC_NAME", "REFINE_DOCUMENT_SUMMARY"),
		},
		Web: WebConfig{
			MaxResults: getEnvAsInt("WEB_SEARCH_MAX_RESULTS", 10),
			Timeout:    time.Duration(getEnvAsInt("WEB_SEARCH_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Session: SessionConfig{
			Backend: getEnv("SESSION_BACKEND", "memory"),
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

// getEnvAsSlice reads a comma-separated list, e.g. "a,b,c".
func getEnvAsSlice(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	parts := strings.Split(strValue, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}

// getEnvAsMap reads comma-separated key:value pairs, e.g. "coll:vector,other:dense".
func getEnvAsMap(key, fallback string) map[string]string {
	strValue := getEnv(key, fallback)
	values := make(map[string]string)
	for _, pair := range strings.Split(strValue, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(pair), ":")
		if found && k != "" && v != "" {
			values[k] = v
		}
	}
	return values
}
