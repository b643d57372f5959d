// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port        string
	DBPath      string // empty selects the in-memory store
	JWTSecret   string
	JWTTTL      time.Duration
	Environment string
	LogLevel    slog.Level
	Cors        cors.Options
}

// Load reads configuration from the environment. A .env file in the working
// directory (or the path in ENV_FILE) is loaded first when present; real
// environment variables win over the file.
func Load() Config {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err == nil {
		slog.Info("loaded environment file", slog.String("file", envFile))
	}

	return Config{
		Port:        getEnv("PORT", "8080"),
		DBPath:      getEnv("DB_PATH", "cannalog.db"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTTTL:      getDuration("JWT_TTL", 24*time.Hour),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getLogLevel("LOG_LEVEL", slog.LevelInfo),
		Cors:        corsOptions(),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default",
			slog.String("key", key),
			slog.String("value", raw),
		)
		return fallback
	}
	return d
}

func getLogLevel(key string, fallback slog.Level) slog.Level {
	switch strings.ToLower(getEnv(key, "")) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}

func corsOptions() cors.Options {
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}
}
