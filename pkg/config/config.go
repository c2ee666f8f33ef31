package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	LLMProvider string

	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OpenAIModel    string
	OpenAIAppTitle string
	OpenAIReferer  string

	OllamaURL   string
	OllamaModel string

	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	MaxInFlight int64

	LogLevel  string
	LogFormat string
}

// Load reads environment variables, optionally from a .env file if present.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	cfg := Config{
		Port:           getEnv("PORT", "8000"),
		LLMProvider:    getEnv("LLM_PROVIDER", "openai"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIAppTitle: os.Getenv("OPENAI_APP_TITLE"),
		OpenAIReferer:  os.Getenv("OPENAI_REFERER"),
		OllamaURL:      getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:    getEnv("OLLAMA_MODEL", "llama3"),
		MaxTokens:      getEnvInt("ANALYZE_MAX_TOKENS", 300),
		Temperature:    getEnvFloat("ANALYZE_TEMPERATURE", 0.7),
		Timeout:        time.Duration(getEnvInt("ANALYZE_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxInFlight:    int64(getEnvInt("ANALYZE_MAX_IN_FLIGHT", 32)),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
	}
	return def
}
