package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port     int    `env:"TEST_PORT" envDefault:"123"`
	RulesRef string `env:"TEST_RULES_PATH"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("port = %d, want 123", cfg.Port)
	}
}

func TestParseEnvAppliesPrefix(t *testing.T) {
	t.Setenv("D100_TEST_PORT", "9000")
	t.Setenv("TEST_PORT", "1")
	t.Setenv("D100_TEST_RULES_PATH", "rules.yaml")

	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("port = %d, want 9000", cfg.Port)
	}
	if cfg.RulesRef != "rules.yaml" {
		t.Fatalf("rules path = %q, want rules.yaml", cfg.RulesRef)
	}
}

func TestParseEnvWithPrefixCustom(t *testing.T) {
	t.Setenv("OTHER_TEST_PORT", "42")

	var cfg envTestConfig
	if err := ParseEnvWithPrefix(&cfg, "OTHER_"); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 42 {
		t.Fatalf("port = %d, want 42", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("D100_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvRejectsNilTarget(t *testing.T) {
	if err := ParseEnv(nil); err == nil {
		t.Fatal("expected nil target error")
	}
}
