package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	APIPort            string
	WorkerEnabled      bool
	BackendAPIKey      string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Object storage (uploads of finished renders; empty URL disables upload)
	StorageURL    string
	StorageKey    string
	StorageBucket string

	// FFmpeg
	FFmpegPath    string
	FFprobePath   string
	FFmpegTimeout time.Duration

	// Directories
	TempDir   string
	OutputDir string

	// Registry overrides (optional YAML file with extra platforms/presets)
	RegistryOverridesPath string

	// Worker
	MaxConcurrentRenders int
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:               getEnv("API_PORT", "8080"),
		WorkerEnabled:         getEnvBool("WORKER_ENABLED", true),
		BackendAPIKey:         getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins:    getEnv("CORS_ALLOWED_ORIGINS", ""),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", "redis://localhost:6379"),
		StorageURL:            getEnv("STORAGE_URL", ""),
		StorageKey:            getEnv("STORAGE_SERVICE_KEY", ""),
		StorageBucket:         getEnv("STORAGE_BUCKET", "rendered-videos"),
		FFmpegPath:            getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:           getEnv("FFPROBE_PATH", "ffprobe"),
		FFmpegTimeout:         time.Duration(getEnvInt("FFMPEG_TIMEOUT_MINUTES", 15)) * time.Minute,
		TempDir:               getEnv("TEMP_DIR", "/tmp/renderpipe"),
		OutputDir:             getEnv("OUTPUT_DIR", "output"),
		RegistryOverridesPath: getEnv("REGISTRY_OVERRIDES_PATH", ""),
		MaxConcurrentRenders:  getEnvInt("MAX_CONCURRENT_RENDERS", 2),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.StorageURL != "" && cfg.StorageKey == "" {
		return nil, fmt.Errorf("STORAGE_SERVICE_KEY is required when STORAGE_URL is set")
	}

	if cfg.FFmpegTimeout <= 0 {
		return nil, fmt.Errorf("FFMPEG_TIMEOUT_MINUTES must be positive")
	}

	if cfg.MaxConcurrentRenders <= 0 {
		return nil, fmt.Errorf("MAX_CONCURRENT_RENDERS must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
