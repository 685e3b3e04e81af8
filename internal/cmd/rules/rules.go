// Package rules implements the rules command: print the active rules,
// validate a rules file, or quote an attribute increase.
package rules

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/d100/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/d100/internal/platform/grpc"
	progressionservice "github.com/louisbranch/d100/internal/services/progression/api/grpc/progression"
	"github.com/louisbranch/d100/internal/services/progression/domain/engine"
	progressionrules "github.com/louisbranch/d100/internal/services/progression/domain/rules"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Supported subcommands.
const (
	CommandPrint    = "print"
	CommandValidate = "validate"
	CommandQuote    = "quote"
)

const defaultDialTimeout = 5 * time.Second

// Config holds rules command configuration.
type Config struct {
	Command   string
	RulesPath string `env:"RULES_PATH"`
	Format    string
	Key       string
	From      int
	To        int
	Addr      string        `env:"RULES_PROGRESSION_ADDR"`
	Timeout   time.Duration `env:"RULES_DIAL_TIMEOUT" envDefault:"5s"`
}

// ParseConfig parses the subcommand, environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	if len(args) == 0 {
		return Config{}, errors.New("a command is required: print, validate or quote")
	}
	cfg := Config{Command: strings.TrimSpace(args[0])}
	switch cfg.Command {
	case CommandPrint, CommandValidate, CommandQuote:
	default:
		return Config{}, fmt.Errorf("unknown command %q", cfg.Command)
	}
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.RulesPath, "rules", cfg.RulesPath, "A JSON or YAML rules file (default: embedded rules)")
	fs.StringVar(&cfg.Format, "format", "json", "Output format for print: json or yaml")
	fs.StringVar(&cfg.Key, "key", "", "Attribute name to quote, e.g. SIZ")
	fs.IntVar(&cfg.From, "from", 0, "Current attribute value")
	fs.IntVar(&cfg.To, "to", 0, "Target attribute value")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Quote against a running progression server instead of local rules")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Dial and health check timeout for -addr")
	if err := entrypoint.ParseArgs(fs, args[1:]); err != nil {
		return Config{}, err
	}

	if cfg.Command == CommandValidate && strings.TrimSpace(cfg.RulesPath) == "" {
		if fs.NArg() > 0 {
			cfg.RulesPath = fs.Arg(0)
		} else {
			return Config{}, errors.New("validate requires -rules or a file argument")
		}
	}
	if cfg.Command == CommandQuote && strings.TrimSpace(cfg.Key) == "" {
		return Config{}, errors.New("quote requires -key")
	}
	if cfg.Command == CommandPrint {
		switch progressionrules.Format(cfg.Format) {
		case progressionrules.FormatJSON, progressionrules.FormatYAML:
		default:
			return Config{}, fmt.Errorf("unsupported format %q", cfg.Format)
		}
	}
	return cfg, nil
}

// Run executes the configured subcommand and writes its result to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		return errors.New("output writer is required")
	}
	switch cfg.Command {
	case CommandPrint:
		return runPrint(cfg, out)
	case CommandValidate:
		return runValidate(cfg, out)
	case CommandQuote:
		if strings.TrimSpace(cfg.Addr) != "" {
			return runRemoteQuote(ctx, cfg, out)
		}
		return runLocalQuote(cfg, out)
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
}

func runPrint(cfg Config, out io.Writer) error {
	repo, err := progressionrules.LoadOrDefault(cfg.RulesPath)
	if err != nil {
		return err
	}
	data, err := progressionrules.Encode(repo.Get(), progressionrules.Format(cfg.Format))
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err = io.WriteString(out, "\n")
	}
	return err
}

func runValidate(cfg Config, out io.Writer) error {
	repo, err := progressionrules.Load(cfg.RulesPath)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s: ok (%s)\n", cfg.RulesPath, repo.Version())
	return err
}

func runLocalQuote(cfg Config, out io.Writer) error {
	repo, err := progressionrules.LoadOrDefault(cfg.RulesPath)
	if err != nil {
		return err
	}
	base, err := repo.LookupBaseByName(cfg.Key)
	if err != nil {
		return err
	}
	perPoint, err := repo.LookupCostByName(cfg.Key)
	if err != nil {
		return err
	}
	cost, err := engine.New(repo).Quote(cfg.Key, cfg.From, cfg.To)
	if err != nil {
		return err
	}
	if err := writeQuote(out, cfg.Key, cfg.From, cfg.To, cost); err != nil {
		return err
	}
	_, err = message.NewPrinter(language.English).Fprintf(out, "  base %d, %d XP per point (%s)\n", base, perPoint, repo.Version())
	return err
}

func runRemoteQuote(ctx context.Context, cfg Config, out io.Writer) error {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	conn, err := platformgrpc.DialWithHealth(ctx, cfg.Addr, progressionservice.ServiceName, timeout, log.Printf)
	if err != nil {
		return err
	}
	defer conn.Close()

	req, err := progressionservice.EncodeStruct(progressionservice.QuoteRequest{
		Key:  cfg.Key,
		From: cfg.From,
		To:   cfg.To,
	})
	if err != nil {
		return err
	}
	resp, err := progressionservice.NewClient(conn).QuoteCost(ctx, req)
	if err != nil {
		return fmt.Errorf("quote cost: %w", err)
	}
	var quote progressionservice.QuoteResponse
	if err := progressionservice.DecodeStruct(resp, &quote); err != nil {
		return err
	}
	return writeQuote(out, quote.Key, quote.From, quote.To, quote.Cost)
}

func writeQuote(out io.Writer, key string, from, to, cost int) error {
	p := message.NewPrinter(language.English)
	_, err := p.Fprintf(out, "%s %d -> %d: %d XP\n", strings.TrimSpace(key), from, to, cost)
	return err
}
