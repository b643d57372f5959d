package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DBPath != "cannalog.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("JWTTTL = %v, want 24h", cfg.JWTTTL)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("PORT", "9999")
	t.Setenv("DB_PATH", "")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://beta.example.com")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.DBPath != "" {
		t.Errorf("DBPath = %q, want empty (memory store)", cfg.DBPath)
	}
	if cfg.JWTTTL != 30*time.Minute {
		t.Errorf("JWTTTL = %v, want 30m", cfg.JWTTTL)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	want := []string{"https://app.example.com", "https://beta.example.com"}
	if len(cfg.Cors.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %v", cfg.Cors.AllowedOrigins)
	}
	for i, origin := range want {
		if cfg.Cors.AllowedOrigins[i] != origin {
			t.Errorf("AllowedOrigins[%d] = %q, want %q", i, cfg.Cors.AllowedOrigins[i], origin)
		}
	}
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("JWT_TTL", "soon")

	cfg := Load()
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("JWTTTL = %v, want fallback 24h", cfg.JWTTTL)
	}
}
