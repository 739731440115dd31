// Package config reads service settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	DefaultSportsDataBase = "http://archive.sportsdata.io"
	DefaultNBAFeedPath    = "/playerseasonstats/2024reg/2023-12-08-23-47.json"
	DefaultNCAAFeedPath   = "/playerseasonstats/2024reg/2024-03-17-16-00.json"
)

// Config holds everything the prospect service needs at startup
type Config struct {
	RedisURL     string
	RedisEnabled bool
	RESTPort     string
	WSPort       string
	CORSOrigins  []string

	SportsDataBase string
	NBAAPIKey      string
	NCAAAPIKey     string
	NBAFeedPath    string
	NCAAFeedPath   string

	RefreshInterval time.Duration
	CacheTTL        time.Duration
	FetchTimeout    time.Duration

	LogLevel           string
	PublishEvaluations bool
}

// Load reads the environment, picking up a local .env file when present
func Load() Config {
	// Missing .env is normal outside local development
	_ = godotenv.Load()

	return Config{
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
		RedisEnabled: getBool("REDIS_ENABLED", true),
		RESTPort:     getEnv("REST_PORT", "8080"),
		WSPort:       getEnv("WS_PORT", "8081"),
		CORSOrigins:  getList("CORS_ORIGINS", []string{"*"}),

		SportsDataBase: strings.TrimRight(getEnv("SPORTSDATA_BASE_URL", DefaultSportsDataBase), "/"),
		NBAAPIKey:      getEnv("NBA_API_KEY", ""),
		NCAAAPIKey:     getEnv("NCAA_API_KEY", ""),
		NBAFeedPath:    getEnv("NBA_FEED_PATH", DefaultNBAFeedPath),
		NCAAFeedPath:   getEnv("NCAA_FEED_PATH", DefaultNCAAFeedPath),

		RefreshInterval: getDuration("ROSTER_REFRESH_INTERVAL", 6*time.Hour),
		CacheTTL:        getDuration("ROSTER_CACHE_TTL", 12*time.Hour),
		FetchTimeout:    getDuration("FETCH_TIMEOUT", 30*time.Second),

		LogLevel:           getEnv("LOG_LEVEL", "info"),
		PublishEvaluations: getBool("PUBLISH_EVALUATIONS", false),
	}
}

// ApplyLogLevel sets the global logger level, keeping info on bad input
func (c Config) ApplyLogLevel() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warn("Unknown log level, using info", "level", c.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

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
		log.Warn("Invalid boolean in environment, using default", "key", key, "value", raw, "default", defaultValue)
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
		log.Warn("Invalid duration in environment, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return d
}

// getList splits a comma-separated value, dropping empty entries
func getList(key string, defaultValue []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
