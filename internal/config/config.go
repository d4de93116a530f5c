package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vibehub/backend/internal/observability"
)

// Storage backends understood by StorageBackend.
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// Config holds all environment configuration values for the application.
// These values are loaded from a .env file at startup.
type Config struct {
	// ServerPort is the port the HTTP server listens on
	ServerPort string

	// CorsOrigins are the browser origins allowed to call the API
	CorsOrigins []string

	// StorageBackend selects the document store: "memory" or "mongo"
	StorageBackend string
	MongoURI       string
	MongoDatabase  string

	// DirectorySeed is a JSON file of users and posts loaded into the memory
	// backend's directory
	DirectorySeed string

	// RedisURL enables the Redis verification-code store and cross-instance
	// fan-out. Empty means in-process only.
	RedisURL string

	// JWTSecret verifies bearer tokens issued by the auth service
	JWTSecret string

	// WSAllowAnonymous accepts socket connections without a token
	WSAllowAnonymous bool

	// SupabaseURL is the URL of the Supabase project hosting the media bucket
	SupabaseURL string

	// SupabaseKey is the service role key for backend operations
	// This key has elevated privileges and should never be exposed to clients
	SupabaseKey    string
	SupabaseBucket string

	RequestTimeout     time.Duration
	UploadTimeout      time.Duration
	StorySweepInterval time.Duration
	CodeTTL            time.Duration

	LogLevel string
}

// Load reads environment variables and returns a populated Config struct.
// It will load from a .env file if present, then read from environment variables.
// Falls back to sensible defaults if values are not set.
func Load() *Config {
	log := observability.Logger()

	// Not an error if missing; production uses real environment variables
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using environment variables")
	}

	config := &Config{
		ServerPort:         getEnv("PORT", "8080"),
		CorsOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		StorageBackend:     getEnv("STORAGE_BACKEND", BackendMemory),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:      getEnv("MONGO_DATABASE", "vibehub"),
		DirectorySeed:      getEnv("DIRECTORY_SEED", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		WSAllowAnonymous:   getBool("WS_ALLOW_ANONYMOUS", false),
		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseKey:        getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseBucket:     getEnv("SUPABASE_BUCKET", "media"),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 10*time.Second),
		UploadTimeout:      getDuration("UPLOAD_TIMEOUT", 5*time.Minute),
		StorySweepInterval: getDuration("STORY_SWEEP_INTERVAL", time.Minute),
		CodeTTL:            getDuration("CODE_TTL", 10*time.Minute),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	// Validate required configuration
	if config.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set, authenticated routes will reject every request")
	}
	if config.SupabaseURL == "" {
		log.Warn("SUPABASE_URL is not set, media uploads are disabled")
	}
	if config.SupabaseKey == "" {
		log.Warn("SUPABASE_SERVICE_ROLE_KEY is not set")
	}
	if config.StorageBackend != BackendMemory && config.StorageBackend != BackendMongo {
		log.Warn("unknown STORAGE_BACKEND, falling back to memory", "value", config.StorageBackend)
		config.StorageBackend = BackendMemory
	}
	if config.StorageBackend == BackendMemory && config.DirectorySeed == "" {
		log.Warn("DIRECTORY_SEED is not set, users and posts cannot be resolved in memory mode")
	}

	return config
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		observability.Logger().Warn("invalid boolean, using default", "key", key, "value", raw)
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		observability.Logger().Warn("invalid duration, using default", "key", key, "value", raw)
		return defaultValue
	}
	return d
}

// splitList splits a comma-separated value and trims whitespace
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
