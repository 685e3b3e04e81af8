// Package progression parses progression service flags and launches the
// service.
package progression

import (
	"context"
	"flag"
	"fmt"
	"strings"

	entrypoint "github.com/louisbranch/d100/internal/platform/cmd"
	server "github.com/louisbranch/d100/internal/services/progression/app"
)

// Config holds progression command configuration.
type Config struct {
	Port      int    `env:"PROGRESSION_PORT" envDefault:"8090"`
	Addr      string `env:"PROGRESSION_ADDR"`
	HTTPAddr  string `env:"PROGRESSION_HTTP_ADDR" envDefault:":8091"`
	DBPath    string `env:"PROGRESSION_DB_PATH" envDefault:"data/progression.db"`
	RulesPath string `env:"RULES_PATH"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The progression gRPC server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The progression gRPC listen address (overrides -port)")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The rules HTTP endpoint address (empty disables it)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The SQLite character database path")
	fs.StringVar(&cfg.RulesPath, "rules", cfg.RulesPath, "A JSON or YAML rules file replacing the embedded rules")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ServerConfig resolves listen addresses for the server runtime.
func (c Config) ServerConfig() server.Config {
	addr := strings.TrimSpace(c.Addr)
	if addr == "" {
		addr = fmt.Sprintf(":%d", c.Port)
	}
	return server.Config{
		GRPCAddr:  addr,
		HTTPAddr:  strings.TrimSpace(c.HTTPAddr),
		DBPath:    c.DBPath,
		RulesPath: c.RulesPath,
	}
}

// Run starts the progression gRPC API and rules endpoint.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceProgression, func(ctx context.Context) error {
		return server.Run(ctx, cfg.ServerConfig())
	})
}
