package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted by LLM_PROVIDER and VISION_PROVIDER.
const (
	ProviderOpenAI      = "openai"
	ProviderGemini      = "gemini"
	ProviderRekognition = "rekognition"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration. DatabaseURL wins over the individual fields.
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Redis configuration. RedisURL wins over the individual fields.
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Model providers
	LLMProvider    string
	VisionProvider string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	GeminiAPIKey   string
	ChatModel      string
	VisionModel    string
	EmbeddingModel string
	GeminiModel    string
	Temperature    float64

	// Conversation and retrieval
	RecipeTopN         int
	ThreadHistoryLimit int
	ThreadTTL          time.Duration

	// Uploads
	UploadDir    string
	S3BucketName string
	AWSRegion    string

	// HTTP surface
	AnalyzeRateLimit   int
	CORSAllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For. Empty means the peer address
	// is always the client IP.
	TrustedProxies []string

	LogLevel string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8000"),
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  readSecret("DB_PASSWORD"),
		DBName:      getEnv("DB_NAME", "snapcook"),
		DBSSLMode:   getEnv("DB_SSL_MODE", "disable"),

		RedisURL:      readSecret("REDIS_URL"),
		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: readSecret("REDIS_PASSWORD"),

		LLMProvider:    strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		VisionProvider: strings.ToLower(getEnv("VISION_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:   readSecret("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		GeminiAPIKey:   readSecret("GEMINI_API_KEY"),
		ChatModel:      getEnv("CHAT_MODEL", "gpt-4o-mini"),
		VisionModel:    getEnv("VISION_MODEL", "gpt-4o-mini"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		UploadDir:    getEnv("UPLOAD_DIR", "static/uploads"),
		S3BucketName: os.Getenv("S3_BUCKET_NAME"),
		AWSRegion:    os.Getenv("AWS_REGION"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		TrustedProxies:     splitList(os.Getenv("TRUSTED_PROXIES")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	var errs []string
	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.Temperature, err = getEnvFloat("CHAT_TEMPERATURE", 0.7); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.RecipeTopN, err = getEnvInt("RECIPE_TOP_N", 5); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.ThreadHistoryLimit, err = getEnvInt("THREAD_HISTORY_LIMIT", 50); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.ThreadTTL, err = getEnvDuration("THREAD_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.AnalyzeRateLimit, err = getEnvInt("ANALYZE_RATE_LIMIT", 30); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to parse configuration:\n%s", strings.Join(errs, "\n"))
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN returns the connection string for PostgreSQL, or "" when no
// database is configured.
func (c *Config) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.DBHost == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// HasRedis reports whether a Redis server is configured.
func (c *Config) HasRedis() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// readSecret resolves a sensitive value from the environment, then from the
// file named by <NAME>_FILE, then from the Docker secrets directory.
func readSecret(name string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	if path := os.Getenv(name + "_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, strings.ToLower(name))
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %q", key, v)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %q", key, v)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %q", key, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, entry := range strings.Split(s, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
