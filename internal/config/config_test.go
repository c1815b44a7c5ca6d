package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
server:
  port: "9090"
webhook:
  secret: file-secret
redis:
  addr: localhost:6379
  db: 2
postgres:
  url: postgres://localhost/trivia
trivia:
  cooldown: 2s
  maxRetries: 5
jobs:
  resetCheckInterval: 1h
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Webhook.Secret != "file-secret" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Fatalf("redis section wrong: %+v", cfg.Redis)
	}
	if cfg.Trivia.MaxRetries != 5 {
		t.Fatalf("trivia section wrong: %+v", cfg.Trivia)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET", "env-secret")
	t.Setenv("POSTGRES_URL", "postgres://prod/trivia")

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Webhook.Secret != "env-secret" {
		t.Fatalf("WEBHOOK_SECRET not applied: %q", cfg.Webhook.Secret)
	}
	if cfg.Postgres.URL != "postgres://prod/trivia" {
		t.Fatalf("POSTGRES_URL not applied: %q", cfg.Postgres.URL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDuration(t *testing.T) {
	if d := Duration("90s", time.Minute); d != 90*time.Second {
		t.Fatalf("expected 90s, got %s", d)
	}
	if d := Duration("", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback, got %s", d)
	}
	if d := Duration("not-a-duration", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback on junk, got %s", d)
	}
}
