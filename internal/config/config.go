package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by BLACKSWAN_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("BLACKSWAN_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// APIKey is the static bearer token for /v1. Empty disables auth.
func APIKey() string {
	return os.Getenv("API_KEY")
}

// StoreDriver returns the durable log backend: sqlite, postgres or badger.
// Defaults to "sqlite" if not set.
func StoreDriver() string {
	return getString("STORE_DRIVER", "sqlite")
}

func SQLitePath() string {
	return getString("SQLITE_PATH", "data/learning_system.db")
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func BadgerPath() string {
	return getString("BADGER_PATH", "data/badger")
}

// VocabularyPath points at a YAML vocabulary file. Empty uses the built-in one.
func VocabularyPath() string {
	return os.Getenv("VOCABULARY_PATH")
}

// DecayInterval returns how often the decay tick runs.
// Defaults to 24h if not set.
func DecayInterval() time.Duration {
	return getDuration("DECAY_INTERVAL", 24*time.Hour)
}

func DecayFactor() float64 {
	f := getFloat("DECAY_FACTOR", 0.995)
	if f > 1 {
		return 0.995
	}
	return f
}

func MinConfidence() float64 {
	f, err := strconv.ParseFloat(os.Getenv("MIN_CONFIDENCE"), 64)
	if err != nil || f < 0 || f > 1 {
		return 0.1
	}
	return f
}

func HistoryCapacity() int {
	return getInt("HISTORY_CAPACITY", 1000)
}

func MaxRecentSources() int {
	return getInt("MAX_RECENT_SOURCES", 20)
}

// ReplayOnStart controls whether the graph is rebuilt from the durable log at startup.
// Defaults to true if not set.
func ReplayOnStart() bool {
	v, err := strconv.ParseBool(os.Getenv("REPLAY_ON_START"))
	if err != nil {
		return true
	}
	return v
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	return getFloat("RATE_LIMIT_RPS", 100)
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	return getInt("RATE_LIMIT_BURST", 20)
}

func BreakerMaxFailures() uint32 {
	return uint32(getInt("BREAKER_MAX_FAILURES", 5))
}

func BreakerTimeout() time.Duration {
	return getDuration("BREAKER_TIMEOUT", 30*time.Second)
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	return getString("LOG_LEVEL", "info")
}

func getString(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

func getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
