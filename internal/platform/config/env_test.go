package config

import (
	"testing"
	"time"
)

type sample struct {
	Addr    string        `env:"CONFIG_TEST_ADDR" envDefault:":8080"`
	TTL     time.Duration `env:"CONFIG_TEST_TTL" envDefault:"30s"`
	Enabled bool          `env:"CONFIG_TEST_ENABLED"`
}

func TestParseEnv(t *testing.T) {
	t.Setenv("CONFIG_TEST_TTL", "5m")
	t.Setenv("CONFIG_TEST_ENABLED", "true")

	var cfg sample
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("ParseEnv: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("Addr: got=%q", cfg.Addr)
	}
	if cfg.TTL != 5*time.Minute {
		t.Fatalf("TTL: got=%v", cfg.TTL)
	}
	if !cfg.Enabled {
		t.Fatalf("Enabled: expected true")
	}
}

func TestParseEnvInvalid(t *testing.T) {
	t.Setenv("CONFIG_TEST_TTL", "forever")
	var cfg sample
	if err := ParseEnv(&cfg); err == nil {
		t.Fatalf("expected parse error")
	}
}
