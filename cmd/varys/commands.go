package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Adithya-Monish-Kumar-K/varys/internal/display"
	"github.com/Adithya-Monish-Kumar-K/varys/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/varys/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/varys/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/varys/internal/ingestion/loader"
	"github.com/Adithya-Monish-Kumar-K/varys/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/metrics"
)

// BuildFlags select the record source and reduction mode for a build.
type BuildFlags struct {
	InFile  string `name:"in-file" short:"i" help:"NDJSON input file; '-' reads stdin. Implies --source=file."`
	Source  string `name:"source" help:"Record source (file, kafka, redis, postgres)."`
	Workers int    `name:"workers" short:"w" help:"Parallel reduction workers; 1 folds sequentially." default:"0"`
}

// apply overlays the flags on cfg and revalidates it.
func (f BuildFlags) apply(cfg *config.Config) error {
	if f.InFile != "" {
		cfg.Source.Kind = config.SourceFile
		cfg.Source.Path = f.InFile
	}
	if f.Source != "" {
		cfg.Source.Kind = f.Source
	}
	if f.Workers > 0 {
		cfg.Indexer.Workers = f.Workers
	}
	return cfg.Validate()
}

// build opens the configured source and runs one engine build over it.
func build(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*indexer.Engine, error) {
	src, err := source.Open(ctx, cfg.Source)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	engine := indexer.NewEngine(cfg.Indexer, m)
	if _, err := engine.Build(ctx, cfg.Source.Kind, src, ingestion.DecodeDocument); err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}
	return engine, nil
}

type IndexCmd struct {
	BuildFlags

	Print bool `name:"print" help:"Write the index to stdout as one JSON term entry per line."`
}

func (c *IndexCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.setup()
	if err != nil {
		return err
	}
	if err := c.apply(cfg); err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			shutdown(shutdownCtx)
		}()
	}

	engine, err := build(ctx, cfg, m)
	if err != nil {
		return err
	}
	entries := engine.Entries()
	for _, e := range entries {
		slog.Debug("term", "term", e.Term, "postings", e.Postings)
	}
	if c.Print {
		return writeEntries(os.Stdout, entries)
	}
	return nil
}

type ServeCmd struct {
	BuildFlags

	Port int `name:"port" short:"p" help:"Listen port. Overrides the config file." default:"0"`
}

func (c *ServeCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.setup()
	if err != nil {
		return err
	}
	if err := c.apply(cfg); err != nil {
		return err
	}
	if c.Port > 0 {
		cfg.Server.Port = c.Port
	}

	m := metrics.New()
	engine, err := build(ctx, cfg, m)
	if err != nil {
		return err
	}

	h := display.New(engine)
	checker := display.NewChecker(engine)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      display.NewRouter(h, checker, m, cfg.Server.RequestTimeout),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	stats := engine.Stats()
	slog.Info("display server listening",
		"addr", server.Addr,
		"documents", stats.Documents,
		"terms", stats.Terms,
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}
	slog.Info("display server stopped")
	return nil
}

type LoadCmd struct {
	InFile    string        `name:"in-file" short:"i" required:"" help:"NDJSON input file; '-' reads stdin."`
	Sink      string        `name:"sink" required:"" help:"Destination (kafka, redis, postgres)." enum:"kafka,redis,postgres"`
	BatchSize int           `name:"batch-size" help:"Records per write." default:"500"`
	Timeout   time.Duration `name:"timeout" help:"Abort the load after this long; 0 disables." default:"0s"`
}

func (c *LoadCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.setup()
	if err != nil {
		return err
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	src, err := source.OpenFile(c.InFile)
	if err != nil {
		return err
	}
	defer src.Close()

	sink, err := loader.OpenSink(ctx, c.Sink, cfg.Source)
	if err != nil {
		return err
	}
	defer sink.Close()

	res, err := loader.New(sink, c.BatchSize).Load(ctx, src)
	if err != nil {
		return fmt.Errorf("loading records: %w", err)
	}
	slog.Info("records loaded", "sink", c.Sink, "records", res.Records, "batches", res.Batches)
	return nil
}

// writeEntries writes one JSON TermEntry per line in term order.
func writeEntries(w io.Writer, entries []index.TermEntry) error {
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("writing index: %w", err)
		}
	}
	return nil
}
