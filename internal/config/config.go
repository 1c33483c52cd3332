// Package config assembles runtime configuration from the process
// environment. Every recognized key and its effect is documented in
// spec.md §6.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"analytics-assistant-be/internal/apperrors"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Artifact  ArtifactConfig
	LLM       LLMConfig
	Embedding EmbeddingConfig
	Voice     VoiceConfig
	Cluster   ClusterConfig
	Redis     RedisConfig
	Events    EventsConfig
}

type AppConfig struct {
	Port           string
	Environment    string
	FrontendOrigin string
	LogFilePath    string
}

type DatabaseConfig struct {
	URL string
}

type ArtifactConfig struct {
	Dir                string
	SummaryPreviewRows int
	LLMInputBudgetChars int
}

type LLMConfig struct {
	APIKey        string
	Provider      string // "gemini" | "ollama"
	Model         string
	BaseURL       string
	CallTimeout   time.Duration
	RetryBackoff  time.Duration
	RetryBackoffMax time.Duration
}

type EmbeddingConfig struct {
	Provider  string // "gemini" | "ollama"
	Model     string
	BaseURL   string
	APIKey    string
	Dimension int
}

type VoiceConfig struct {
	APIKey  string
	BaseURL string
	Enabled bool
}

type ClusterConfig struct {
	LoadTimeout time.Duration
}

type RedisConfig struct {
	URL string
}

type EventsConfig struct {
	NatsURL string
	Subject string
}

// Load reads and validates configuration. It returns a *apperrors.Error of
// kind ConfigError on any fatal misconfiguration (per spec.md §6, absence of
// LLM_API_KEY is fatal at startup).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using process environment")
	}

	llmKey := getEnv("LLM_API_KEY", "")
	if llmKey == "" {
		return nil, apperrors.New(apperrors.ConfigError, "LLM_API_KEY is required")
	}

	embedDim := getEnvAsInt("EMBEDDING_DIMENSION", 384)

	cfg := &Config{
		App: AppConfig{
			Port:           getEnv("APP_PORT", "8080"),
			Environment:    getEnv("GO_ENV", "development"),
			FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
			LogFilePath:    getEnv("LOG_FILE_PATH", "logs/app.log"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Artifact: ArtifactConfig{
			Dir:                 getEnv("ARTIFACT_DIR", "./data"),
			SummaryPreviewRows:  getEnvAsInt("SUMMARY_PREVIEW_ROWS", 50),
			LLMInputBudgetChars: getEnvAsInt("LLM_INPUT_BUDGET_CHARS", 24000),
		},
		LLM: LLMConfig{
			APIKey:          llmKey,
			Provider:        getEnv("LLM_PROVIDER", "gemini"),
			Model:           getEnv("LLM_MODEL", "gemini-2.5-flash"),
			BaseURL:         getEnv("LLM_BASE_URL", ""),
			CallTimeout:     time.Duration(getEnvAsInt("LLM_CALL_TIMEOUT_SECONDS", 30)) * time.Second,
			RetryBackoff:    time.Duration(getEnvAsInt("LLM_RETRY_BACKOFF_MS", 500)) * time.Millisecond,
			RetryBackoffMax: time.Duration(getEnvAsInt("LLM_RETRY_BACKOFF_MAX_MS", 2000)) * time.Millisecond,
		},
		Embedding: EmbeddingConfig{
			Provider:  getEnv("EMBEDDING_PROVIDER", "gemini"),
			Model:     getEnv("EMBEDDING_MODEL", "text-embedding-004"),
			BaseURL:   getEnv("EMBEDDING_BASE_URL", ""),
			APIKey:    getEnv("EMBEDDING_API_KEY", llmKey),
			Dimension: embedDim,
		},
		Voice: VoiceConfig{
			APIKey:  getEnv("VOICE_API_KEY", ""),
			BaseURL: getEnv("VOICE_BASE_URL", ""),
			Enabled: getEnv("VOICE_API_KEY", "") != "",
		},
		Cluster: ClusterConfig{
			LoadTimeout: time.Duration(getEnvAsInt("EI_LOAD_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Events: EventsConfig{
			NatsURL: getEnv("NATS_URL", ""),
			Subject: getEnv("SESSION_EVENTS_SUBJECT", "session.events"),
		},
	}

	if cfg.Embedding.Dimension <= 0 {
		return nil, apperrors.New(apperrors.ConfigError, "EMBEDDING_DIMENSION must be positive")
	}

	return cfg, nil
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
