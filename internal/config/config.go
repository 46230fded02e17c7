// Package config loads runtime settings for both programs from the
// environment. A .env file in the working directory is read first when present.
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting either program reads
type Config struct {
	// client side
	APIURL      string
	Mode        string
	WSURL       string
	PrefsFile   string
	PrefsDomain string
	PrefsPath   string
	HTTPTimeout time.Duration

	// API side
	DatabaseURL string
	RedisURL    string
	RESTPort    string
	WSPort      string
}

// Load reads the environment. Missing or malformed values fall back to defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIURL:      getEnv("GRIDIRON_API_URL", "http://127.0.0.1:5001/api"),
		Mode:        strings.ToLower(getEnv("GRIDIRON_MODE", "client")),
		WSURL:       getEnv("GRIDIRON_WS_URL", "ws://127.0.0.1:5002/ws/games"),
		PrefsFile:   getEnv("GRIDIRON_PREFS_FILE", defaultPrefsFile()),
		PrefsDomain: getEnv("GRIDIRON_PREFS_DOMAIN", "localhost"),
		PrefsPath:   getEnv("GRIDIRON_PREFS_PATH", "/"),
		HTTPTimeout: getDuration("HTTP_TIMEOUT", 10*time.Second),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		RESTPort:    getEnv("REST_PORT", "5001"),
		WSPort:      getEnv("WS_PORT", "5002"),
	}
}

func defaultPrefsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".gridiron-prefs.json"
	}
	return dir + string(os.PathSeparator) + "gridiron" + string(os.PathSeparator) + "prefs.json"
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
	if err != nil || d <= 0 {
		log.Printf("⚠️  invalid %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return d
}
