package progression

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("progression", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8090 {
		t.Fatalf("expected default port 8090, got %d", cfg.Port)
	}
	if cfg.HTTPAddr != ":8091" {
		t.Fatalf("expected default http addr :8091, got %q", cfg.HTTPAddr)
	}
	if cfg.DBPath != "data/progression.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if got := cfg.ServerConfig().GRPCAddr; got != ":8090" {
		t.Fatalf("expected grpc addr :8090, got %q", got)
	}
}

func TestParseConfigEnv(t *testing.T) {
	t.Setenv("D100_PROGRESSION_PORT", "9100")
	t.Setenv("D100_RULES_PATH", "house.yaml")

	fs := flag.NewFlagSet("progression", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9100 {
		t.Fatalf("expected env port 9100, got %d", cfg.Port)
	}
	if cfg.RulesPath != "house.yaml" {
		t.Fatalf("expected env rules path, got %q", cfg.RulesPath)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	fs := flag.NewFlagSet("progression", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{
		"-addr", "127.0.0.1:9999",
		"-http-addr", "",
		"-db", "/tmp/chars.db",
		"-rules", "rules.json",
	})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	serverCfg := cfg.ServerConfig()
	if serverCfg.GRPCAddr != "127.0.0.1:9999" {
		t.Fatalf("expected addr override, got %q", serverCfg.GRPCAddr)
	}
	if serverCfg.HTTPAddr != "" {
		t.Fatalf("expected http disabled, got %q", serverCfg.HTTPAddr)
	}
	if serverCfg.DBPath != "/tmp/chars.db" || serverCfg.RulesPath != "rules.json" {
		t.Fatalf("unexpected server config %+v", serverCfg)
	}
}
