package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ChatRateLimit      int // requests per minute per user, 0 disables
	CareTeamEmail      string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JwtSecret      string
	TokenTTLHours  int
	CookieSecure   bool
	CookieSameSite string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	Groq         string
	OpenAI       string
	HuggingFace  string
	GoogleGemini string
	Jina         string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama", "openai", "gemini" or "jina"
	EmbeddingModel    string
	EmbeddingBaseURL  string
	OllamaBaseURL     string
	LLMProvider       string // "groq", "openai", "ollama", "huggingface"
	LLMModel          string
	LLMBaseURL        string
	LLMTemperature    float64
	LLMMaxTokens      int
	LLMRequestsPerSec float64
	EmotionProvider   string // "huggingface" or "lexicon"
	EmotionModel      string
}

type RagConfig struct {
	KnowledgePath string // optional, one sentence per line
	IndexBackend  string // "memory" or "pgvector"
	TopK          int
	HistoryWindow int
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	SampleRatio float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm_rag.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8501"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			ChatRateLimit:      getEnvAsInt("CHAT_RATE_LIMIT", 20),
			CareTeamEmail:      getEnv("CARE_TEAM_EMAIL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret:      getEnv("JWT_SECRET", "supersecretkey"),
			TokenTTLHours:  getEnvAsInt("TOKEN_TTL_HOURS", 24),
			CookieSecure:   getEnvAsBool("SESSION_COOKIE_SECURE", false),
			CookieSameSite: getEnv("SESSION_COOKIE_SAMESITE", "Lax"),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "MindCare AI"),
		},
		Keys: APIKeys{
			Groq:         getEnv("GROQ_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "all-minilm"),
			EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:       getEnv("LLM_PROVIDER", "groq"),
			LLMModel:          getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMTemperature:    getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			LLMMaxTokens:      getEnvAsInt("LLM_MAX_TOKENS", 500),
			LLMRequestsPerSec: getEnvAsFloat("LLM_REQUESTS_PER_SECOND", 2),
			EmotionProvider:   getEnv("EMOTION_PROVIDER", "huggingface"),
			EmotionModel:      getEnv("EMOTION_MODEL", "j-hartmann/emotion-english-distilroberta-base"),
		},
		Rag: RagConfig{
			KnowledgePath: getEnv("KNOWLEDGE_PATH", ""),
			IndexBackend:  getEnv("KNOWLEDGE_INDEX", "memory"),
			TopK:          getEnvAsInt("RAG_TOP_K", 2),
			HistoryWindow: getEnvAsInt("HISTORY_WINDOW", 6),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
		},
	}
}

// EmbeddingAPIKey picks the key matching the configured embedding provider.
func (c *Config) EmbeddingAPIKey() string {
	switch c.Ai.EmbeddingProvider {
	case "openai":
		return c.Keys.OpenAI
	case "gemini":
		return c.Keys.GoogleGemini
	case "jina":
		return c.Keys.Jina
	default:
		return ""
	}
}

// EmbeddingBaseURL falls back to the Ollama URL for the default provider.
func (c *Config) EmbeddingBaseURL() string {
	if c.Ai.EmbeddingBaseURL != "" {
		return c.Ai.EmbeddingBaseURL
	}
	if c.Ai.EmbeddingProvider == "" || c.Ai.EmbeddingProvider == "ollama" {
		return c.Ai.OllamaBaseURL
	}
	return ""
}

// LLMAPIKey picks the key matching the configured LLM provider.
func (c *Config) LLMAPIKey() string {
	switch c.Ai.LLMProvider {
	case "openai":
		return c.Keys.OpenAI
	case "huggingface":
		return c.Keys.HuggingFace
	default:
		return c.Keys.Groq
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
