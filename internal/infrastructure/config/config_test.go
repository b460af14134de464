package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("PORT", "")
	t.Setenv("HTTP_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.StorageBackend != StorageMemory {
		t.Errorf("expected memory backend by default, got %s", cfg.StorageBackend)
	}
	if cfg.Port != 8080 || cfg.HTTPPort != 3000 {
		t.Errorf("unexpected ports: %d/%d", cfg.Port, cfg.HTTPPort)
	}
	if cfg.DatabaseTimeout != 5*time.Second {
		t.Errorf("unexpected database timeout %v", cfg.DatabaseTimeout)
	}
	if !cfg.IsDevelopment() {
		t.Errorf("expected development environment, got %s", cfg.Environment)
	}
}

func TestLogFormatFollowsEnvironment(t *testing.T) {
	tests := []struct {
		env, format, want string
	}{
		{"development", "", "console"},
		{"dev", "", "console"},
		{"production", "", "json"},
		{"development", "json", "json"},
		{"production", "console", "console"},
	}

	for _, tt := range tests {
		t.Setenv("ENVIRONMENT", tt.env)
		t.Setenv("LOG_FORMAT", tt.format)
		if tt.env == "production" {
			t.Setenv("JWT_SECRET", "prod-secret")
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("%s/%q: Load returned error: %v", tt.env, tt.format, err)
		}
		if cfg.LogFormat != tt.want {
			t.Errorf("%s/%q: log format %q, want %q", tt.env, tt.format, cfg.LogFormat, tt.want)
		}
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/todos.db")
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TIMEOUT", "2s")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("ENABLE_METRICS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	db := cfg.GetDatabaseConfig()
	if db.Backend != StorageSQLite || db.URL != "/tmp/todos.db" || db.Timeout != 2*time.Second {
		t.Errorf("unexpected database config: %+v", db)
	}
	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.GetObservabilityConfig().EnableMetrics {
		t.Error("expected metrics to be disabled")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Environment:    "development",
			Port:           8080,
			HTTPPort:       3000,
			StorageBackend: StorageMemory,
			MaxOpenConns:   10,
			MaxIdleConns:   5,
			LogLevel:       "info",
			LogFormat:      "json",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown backend", func(c *Config) { c.StorageBackend = "redis" }, "invalid storage backend"},
		{"postgres without url", func(c *Config) { c.StorageBackend = StoragePostgres }, "DATABASE_URL"},
		{"sqlite without path", func(c *Config) { c.StorageBackend = StorageSQLite }, "SQLITE_PATH"},
		{"production without secret", func(c *Config) { c.Environment = "production" }, "JWT_SECRET"},
		{"bad port", func(c *Config) { c.Port = 0 }, "invalid port"},
		{"same ports", func(c *Config) { c.HTTPPort = c.Port }, "must differ"},
		{"pool sizes", func(c *Config) { c.MaxIdleConns = 20 }, "max_open_conns"},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log level"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "invalid log format"},
		{"tls without files", func(c *Config) { c.TLSEnabled = true; c.TLSCertFile = "" }, "TLS_CERT_FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestServerConfigReflection(t *testing.T) {
	cfg := &Config{Environment: "production"}
	if cfg.GetServerConfig().EnableReflection {
		t.Error("reflection should be off in production unless enabled")
	}
	cfg.EnableReflection = true
	if !cfg.GetServerConfig().EnableReflection {
		t.Error("explicit flag should enable reflection")
	}
}
