package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/Adithya-Monish-Kumar-K/varys/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/logger"
)

// Globals are the flags shared by every subcommand.
type Globals struct {
	Config    string `name:"config" short:"c" help:"Path to a YAML config file." type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error). Overrides the config file."`
	LogFormat string `name:"log-format" help:"Log format (text, json). Overrides the config file."`
}

// CLI is the varys command line.
type CLI struct {
	Globals

	Index IndexCmd `cmd:"" help:"Build an inverted index from NDJSON HTTP records and log every term."`
	Serve ServeCmd `cmd:"" help:"Build an inverted index and serve it over HTTP."`
	Load  LoadCmd  `cmd:"" help:"Push NDJSON HTTP records into a Kafka, Redis or PostgreSQL source."`
}

// setup loads the configuration, applies the global flag overrides and
// installs the default logger.
func (g *Globals) setup() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Logging.Format = g.LogFormat
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("varys"),
		kong.Description("Inverted index builder for observed HTTP transactions."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	if err := kctx.Run(&cli.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "varys: %v\n", err)
		stop()
		os.Exit(1)
	}
}
