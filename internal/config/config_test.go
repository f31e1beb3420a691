// File: internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalYAML = `
database:
  url: postgres://localhost:5432/travel
redis:
  url: localhost:6379
ai:
  openai_key: sk-test
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalYAML), false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log defaults: %+v", cfg.Log)
	}
	if cfg.Generation.StatusTTL != 40*time.Minute {
		t.Errorf("status ttl %s", cfg.Generation.StatusTTL)
	}
	if cfg.Generation.ResultTTL != 30*time.Minute {
		t.Errorf("result ttl %s", cfg.Generation.ResultTTL)
	}
	if cfg.ResponseCache.SweepInterval != 6*time.Hour {
		t.Errorf("sweep interval %s", cfg.ResponseCache.SweepInterval)
	}
	if cfg.ResponseCache.SweepStartDelay != 10*time.Minute {
		t.Errorf("sweep start delay %s", cfg.ResponseCache.SweepStartDelay)
	}
	if cfg.RateLimit.Limit != 10 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("rate limit defaults: %+v", cfg.RateLimit)
	}
	if len(cfg.AI.ProviderOrder) != 2 || cfg.AI.ProviderOrder[0] != "openai" {
		t.Errorf("provider order: %v", cfg.AI.ProviderOrder)
	}
	if cfg.Runtime.Dev {
		t.Error("dev flag set without being requested")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	yaml := minimalYAML + `
server:
  port: 9090
generation:
  status_ttl: 1h
response_cache:
  ttl: 12h
  sweep_interval: 30m
ai_extra: ignored
`
	cfg, err := LoadConfig(writeConfig(t, yaml), true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port %d", cfg.Server.Port)
	}
	if cfg.Generation.StatusTTL != time.Hour {
		t.Errorf("status ttl %s", cfg.Generation.StatusTTL)
	}
	if cfg.ResponseCache.TTL != 12*time.Hour {
		t.Errorf("cache ttl %s", cfg.ResponseCache.TTL)
	}
	if cfg.ResponseCache.SweepInterval != 30*time.Minute {
		t.Errorf("sweep interval %s", cfg.ResponseCache.SweepInterval)
	}
	if !cfg.Runtime.Dev {
		t.Error("dev flag lost")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing database", "redis:\n  url: localhost:6379\nai:\n  openai_key: k\n"},
		{"missing redis", "database:\n  url: postgres://x\nai:\n  openai_key: k\n"},
		{"no ai keys", "database:\n  url: postgres://x\nredis:\n  url: localhost:6379\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, c.yaml), false); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false); err == nil {
		t.Fatal("expected error for missing file")
	}
}
