// Package main provides a CLI for printing, validating and quoting d100 rules.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	rulescmd "github.com/louisbranch/d100/internal/cmd/rules"
	entrypoint "github.com/louisbranch/d100/internal/platform/cmd"
	"github.com/louisbranch/d100/internal/platform/config"
)

func main() {
	fs := flag.NewFlagSet("rules", flag.ExitOnError)
	cfg, err := rulescmd.ParseConfig(fs, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceRules))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rulescmd.Run(ctx, cfg, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
