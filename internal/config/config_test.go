package config

import (
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/banebok/internal/platform/logging"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STADIUM_ID", "25786")
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "false")
	t.Setenv("CACHE_BACKEND", "")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.StadiumID != 25786 {
		t.Fatalf("unexpected StadiumID: %d", cfg.StadiumID)
	}
	if !cfg.CacheEnabled || cfg.CacheDeleteFirst {
		t.Fatalf("expected cache enabled without delete-first, got enabled=%v deleteFirst=%v", cfg.CacheEnabled, cfg.CacheDeleteFirst)
	}
	if cfg.CacheLifetime != time.Hour {
		t.Fatalf("unexpected CacheLifetime: %s", cfg.CacheLifetime)
	}
	if cfg.CacheBackend != CacheBackendFile {
		t.Fatalf("unexpected CacheBackend: %q", cfg.CacheBackend)
	}
	if cfg.Location == nil || cfg.Location.String() != "Europe/Oslo" {
		t.Fatalf("unexpected Location: %v", cfg.Location)
	}
	if cfg.FotballTimeout != 20*time.Second || cfg.FotballMaxRetries != 0 {
		t.Fatalf("unexpected fotball client defaults: timeout=%s retries=%d", cfg.FotballTimeout, cfg.FotballMaxRetries)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "https://localhost:5173" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel)
	}
}

func TestLoad_AppEnvValidation(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_StadiumIDRequired(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STADIUM_ID", "")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error without STADIUM_ID")
	}
	if !strings.Contains(err.Error(), "STADIUM_ID") {
		t.Fatalf("expected error to name STADIUM_ID, got %v", err)
	}
}

func TestLoad_CacheLifetimeAcceptsSecondsAndDurations(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{raw: "3600", want: time.Hour},
		{raw: "90", want: 90 * time.Second},
		{raw: "15m", want: 15 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv("CACHE_LIFETIME", tt.raw)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("load config: %v", err)
			}
			if cfg.CacheLifetime != tt.want {
				t.Fatalf("CacheLifetime=%s want=%s", cfg.CacheLifetime, tt.want)
			}
		})
	}
}

func TestLoad_CacheLifetimeMustBePositive(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CACHE_LIFETIME", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for CACHE_LIFETIME=0")
	}
}

func TestLoad_RedisBackendRequiresAddr(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "REDIS_ADDR") {
		t.Fatalf("expected REDIS_ADDR error, got %v", err)
	}

	t.Setenv("REDIS_ADDR", "localhost:6379")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.CacheBackend != CacheBackendRedis {
		t.Fatalf("unexpected CacheBackend: %q", cfg.CacheBackend)
	}
}

func TestLoad_UnknownCacheBackend(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CACHE_BACKEND", "memcached")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown CACHE_BACKEND")
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_TIMEZONE", "Mars/Olympus_Mons")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown APP_TIMEZONE")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_InvalidBool(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CACHE_ENABLED", "sometimes")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "CACHE_ENABLED") {
		t.Fatalf("expected CACHE_ENABLED parse error, got %v", err)
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" https://a.example , ,https://b.example,")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected split result: %v", got)
	}
}
