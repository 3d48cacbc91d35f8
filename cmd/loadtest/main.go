// Command loadtest drives term lookups against a running varys display
// server and reports latency percentiles.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/varys/internal/display"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/logger"
)

type CLI struct {
	URL         string        `name:"url" help:"Base URL of the display server." default:"http://localhost:8080"`
	Concurrency int           `name:"concurrency" short:"n" help:"Concurrent workers." default:"10"`
	Duration    time.Duration `name:"duration" short:"d" help:"How long to run." default:"30s"`
	Terms       int           `name:"terms" help:"Number of terms sampled from the listing." default:"1000"`
	LogLevel    string        `name:"log-level" help:"Log level." default:"info"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("loadtest"),
		kong.Description("Load generator for the varys display server."),
		kong.UsageOnError(),
	)
	logger.Setup(cli.LogLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cli); err != nil {
		slog.Error("load test failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cli CLI) error {
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cli.Concurrency * 2,
			MaxIdleConnsPerHost: cli.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	terms, err := sampleTerms(ctx, client, cli.URL, cli.Terms)
	if err != nil {
		return err
	}
	if len(terms) == 0 {
		return fmt.Errorf("index at %s has no terms", cli.URL)
	}
	slog.Info("load test starting",
		"url", cli.URL,
		"concurrency", cli.Concurrency,
		"duration", cli.Duration,
		"terms", len(terms),
	)

	rec := newRecorder()
	runCtx, cancel := context.WithTimeout(ctx, cli.Duration)
	defer cancel()
	start := time.Now()

	g, gctx := errgroup.WithContext(runCtx)
	for w := range cli.Concurrency {
		g.Go(func() error {
			for i := w; gctx.Err() == nil; i++ {
				target := cli.URL + "/api/v1/terms?term=" + url.QueryEscape(terms[i%len(terms)])
				t0 := time.Now()
				status, err := get(gctx, client, target)
				if gctx.Err() != nil {
					return nil
				}
				rec.observe(time.Since(t0), status, err)
			}
			return nil
		})
	}
	g.Wait()

	s := rec.summary()
	s.print(os.Stdout, time.Since(start))
	if s.Requests == 0 {
		return fmt.Errorf("no requests completed against %s", cli.URL)
	}
	return nil
}

// sampleTerms reads the first n terms from the listing endpoint.
func sampleTerms(ctx context.Context, client *http.Client, base string, n int) ([]string, error) {
	target := fmt.Sprintf("%s/api/v1/terms?limit=%d", base, n)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing terms: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing terms: unexpected status %d", resp.StatusCode)
	}
	var list display.TermList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decoding term list: %w", err)
	}
	terms := make([]string, len(list.Terms))
	for i, t := range list.Terms {
		terms[i] = t.Term
	}
	return terms, nil
}

func get(ctx context.Context, client *http.Client, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode, nil
}
