package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Store backend names accepted by STORE_BACKEND.
const (
	StoreBackendFile   = "file"
	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
	}

	// JWT configuration
	JWT struct {
		Secret string
		Expiry time.Duration
	}

	// Persistence configuration
	Store struct {
		Backend     string // file, memory or redis
		FilePath    string
		RedisAddr   string
		RedisPrefix string
	}

	// Response generation backend
	LLM struct {
		APIKey       string
		BaseURL      string
		Model        string
		MaxTokens    int
		Temperature  float64
		TopP         float64
		SystemPrompt string
		Timeout      time.Duration
		// Simulate forces the canned local client even when an API key
		// is present. The simulated client is also the fallback when no
		// key is configured.
		Simulate         bool
		SimulatedLatency time.Duration
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
		AllowedOrigins []string
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables
// Uses singleton pattern to ensure only one instance exists
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = &Config{}

		// Server config
		instance.Server.Port = getEnvString("PORT", "8081")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)

		// JWT config
		instance.JWT.Secret = getEnvString("JWT_SECRET", "default-jwt-secret-do-not-use-in-production")
		instance.JWT.Expiry = getEnvDuration("JWT_EXPIRY", 24*time.Hour)

		// Persistence config
		instance.Store.Backend = getEnvString("STORE_BACKEND", StoreBackendFile)
		instance.Store.FilePath = getEnvString("STORE_FILE_PATH", "data/chat-store.json")
		instance.Store.RedisAddr = getEnvString("REDIS_ADDR", "localhost:6379")
		instance.Store.RedisPrefix = getEnvString("REDIS_PREFIX", "xenarc-chat")

		// LLM config
		instance.LLM.APIKey = getEnvString("LLM_API_KEY", "")
		instance.LLM.BaseURL = getEnvString("LLM_BASE_URL", "https://api.openai.com/v1/chat/completions")
		instance.LLM.Model = getEnvString("LLM_MODEL", "gpt-4o")
		instance.LLM.MaxTokens = getEnvInt("LLM_MAX_TOKENS", 1000)
		instance.LLM.Temperature = getEnvFloat("LLM_TEMPERATURE", 0.7)
		instance.LLM.TopP = getEnvFloat("LLM_TOP_P", 0.9)
		instance.LLM.SystemPrompt = getEnvString("LLM_SYSTEM_PROMPT", "")
		instance.LLM.Timeout = getEnvDuration("LLM_TIMEOUT", 30*time.Second)
		instance.LLM.Simulate = getEnvBool("LLM_SIMULATE", false)
		instance.LLM.SimulatedLatency = getEnvDuration("LLM_SIMULATED_LATENCY", 0)

		// Security config
		instance.Security.RateLimit = float64(getEnvInt("RATE_LIMIT", 5))
		instance.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)
		instance.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})

		// Logging config
		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
