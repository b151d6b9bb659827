package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the alt-text pipeline service
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	Port string

	// LLM provider selection: "ollama", "openai" or "stub"
	LLMProvider string

	// Ollama configuration
	OllamaURL string

	// OpenAI configuration
	OpenAIAPIKey string
	OpenAIModel  string

	// Generation configuration
	AltTextPrompt  string
	RequestTimeout time.Duration

	// Thumbnail configuration
	ResizerBackend   string
	ThumbnailMaxSize int
	ThumbnailQuality int

	// RabbitMQ configuration (optional result publisher)
	AMQPURL              string
	AMQPExchange         string
	AMQPResultRoutingKey string

	// Query defaults
	DefaultResultLimit int
}

// Load loads configuration from environment variables
func Load() *Config {
	config := &Config{
		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret_app"),
		DBName:     getEnv("DB_NAME", "alttext"),

		// Server defaults
		Port: getEnv("PORT", "8080"),

		// LLM defaults
		LLMProvider: getEnv("LLM_PROVIDER", "ollama"),

		// Ollama defaults
		OllamaURL: getEnv("OLLAMA_URL", "http://localhost:11434"),

		// OpenAI defaults
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o"),

		// Generation defaults
		AltTextPrompt:  getEnv("ALT_TEXT_PROMPT", "Generate SEO-optimized alt text for this image. Be descriptive but concise. Maximum 125 characters. Return only the alt text, no quotes or explanation."),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", 2*time.Minute),

		// Thumbnail defaults
		ResizerBackend:   getEnv("RESIZER_BACKEND", "inprocess"),
		ThumbnailMaxSize: getIntEnv("THUMBNAIL_MAX_SIZE", 200),
		ThumbnailQuality: getIntEnv("THUMBNAIL_QUALITY", 80),

		// RabbitMQ defaults (empty URL disables the publisher)
		AMQPURL:              getEnv("AMQP_URL", ""),
		AMQPExchange:         getEnv("AMQP_EXCHANGE", "alttext"),
		AMQPResultRoutingKey: getEnv("AMQP_RESULT_ROUTING_KEY", "alttext.result"),

		// Query defaults
		DefaultResultLimit: getIntEnv("DEFAULT_RESULT_LIMIT", 50),
	}

	return config
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
