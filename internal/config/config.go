package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	ListenAddr       string
	CachePath        string
	SurrealURL       string
	SurrealNamespace string
	SurrealDatabase  string
	SurrealUser      string
	SurrealPass      string
	AdminSecret      string
	AdminSecretHash  string
	SessionTTL       time.Duration
}

// LoadConfig loads configuration from a .env file when present, then from
// environment variables or defaults. An empty SURREAL_URL means the app runs
// on the local cache alone.
func LoadConfig() *Config {
	_ = godotenv.Load()
	return &Config{
		ListenAddr:       getEnv("LISTEN_ADDR", ":8080"),
		CachePath:        getEnv("CACHE_PATH", "data/guestbook.db"),
		SurrealURL:       getEnv("SURREAL_URL", ""),
		SurrealNamespace: getEnv("SURREAL_NS", "wedding"),
		SurrealDatabase:  getEnv("SURREAL_DB", "guestbook"),
		SurrealUser:      getEnv("SURREAL_USER", "root"),
		SurrealPass:      getEnv("SURREAL_PASS", "root"),
		AdminSecret:      getEnv("ADMIN_SECRET", ""),
		AdminSecretHash:  getEnv("ADMIN_SECRET_HASH", ""),
		SessionTTL:       getDuration("SESSION_TTL", 12*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
