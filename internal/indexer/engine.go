// Package indexer drives index construction over a document stream. The
// Engine folds each document's single-document index into a running
// aggregate, either sequentially or through an ordered parallel reduction.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/varys/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/resilience"
)

// LineReader yields raw record lines and io.EOF once drained.
type LineReader interface {
	Next(ctx context.Context) ([]byte, error)
}

// DecodeFunc maps one record line to the document it describes.
type DecodeFunc func(line []byte) (index.Document, error)

// Stats describes the engine's aggregate index.
type Stats struct {
	Documents int64 `json:"documents"`
	Terms     int   `json:"terms"`
	Postings  int   `json:"postings"`
}

// BuildResult summarises one Build call.
type BuildResult struct {
	RunID     string
	Documents int
	Skipped   int
	Duration  time.Duration
}

type Engine struct {
	mu       sync.RWMutex
	idx      index.InvertedIndex
	docCount int64
	built    bool
	cfg      config.IndexerConfig
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewEngine returns an Engine with an empty index. m may be nil.
func NewEngine(cfg config.IndexerConfig, m *metrics.Metrics) *Engine {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Engine{
		idx:     index.New(),
		cfg:     cfg,
		metrics: m,
		logger:  logger.WithComponent("indexer"),
	}
}

// Add folds a single document into the aggregate index.
func (e *Engine) Add(doc index.Document) {
	partial := index.Index(doc)
	terms := len(partial)

	e.mu.Lock()
	e.idx = index.Merge(e.idx, partial)
	e.docCount++
	e.mu.Unlock()

	e.logger.Debug("document indexed",
		"doc_id", doc.ID,
		"term_count", terms,
	)
	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.Inc()
		e.metrics.MergesTotal.Inc()
	}
	e.observeSize()
}

// Build drains r, decoding each non-blank line with decode, and merges the
// resulting documents into the aggregate in stream order. kind labels the
// source in logs and metrics. The first line that fails to decode aborts the
// build and leaves the aggregate unchanged.
func (e *Engine) Build(ctx context.Context, kind string, r LineReader, decode DecodeFunc) (BuildResult, error) {
	result := BuildResult{RunID: logger.NewRunID()}
	log := e.logger.With("run_id", result.RunID, "source", kind)
	mode := "fold"
	if e.cfg.Workers > 1 {
		mode = "reduce"
	}
	log.Info("index build starting", "mode", mode, "workers", e.cfg.Workers)
	start := time.Now()

	var (
		built   index.InvertedIndex
		read    int
		skipped int
	)
	err := resilience.WithTimeout(ctx, e.cfg.BuildTimeout, "index build", func(ctx context.Context) error {
		if mode == "reduce" {
			var docs []index.Document
			n, blank, err := e.readDocuments(ctx, kind, r, decode, log, func(doc index.Document) {
				docs = append(docs, doc)
			})
			if err != nil {
				return err
			}
			acc, err := Reduce(ctx, docs, e.cfg.Workers)
			if err != nil {
				return err
			}
			built, read, skipped = acc, n, blank
			return nil
		}
		acc := index.New()
		n, blank, err := e.readDocuments(ctx, kind, r, decode, log, func(doc index.Document) {
			acc = index.Merge(acc, index.Index(doc))
		})
		if err != nil {
			return err
		}
		built, read, skipped = acc, n, blank
		return nil
	})
	result.Duration = time.Since(start)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		e.recordBuild("failed", mode, result.Duration)
		log.Error("index build failed", "error", err)
		return result, err
	}
	result.Documents = read
	result.Skipped = skipped

	e.mu.Lock()
	e.idx = index.Merge(e.idx, built)
	e.docCount += int64(result.Documents)
	e.built = true
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.Add(float64(result.Documents))
		e.metrics.MergesTotal.Add(float64(result.Documents))
	}
	e.observeSize()
	e.recordBuild("ok", mode, result.Duration)
	stats := e.Stats()
	log.Info("index build complete",
		"documents", result.Documents,
		"blank_lines", result.Skipped,
		"terms", stats.Terms,
		"postings", stats.Postings,
		"duration", result.Duration,
	)
	return result, nil
}

// readDocuments decodes every non-blank line of r and hands the documents to
// emit in stream order. It returns the document and blank-line counts.
func (e *Engine) readDocuments(ctx context.Context, kind string, r LineReader, decode DecodeFunc, log *slog.Logger, emit func(index.Document)) (int, int, error) {
	docs, skipped := 0, 0
	for lineNo := 1; ; lineNo++ {
		line, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			return docs, skipped, nil
		}
		if err != nil {
			return docs, skipped, fmt.Errorf("reading line %d: %w", lineNo, err)
		}
		if isBlank(line) {
			skipped++
			e.countLine(kind, "blank")
			continue
		}
		doc, err := decode(line)
		if err != nil {
			e.countLine(kind, "invalid")
			return docs, skipped, fmt.Errorf("line %d: %w", lineNo, err)
		}
		e.countLine(kind, "ok")
		log.Debug("record decoded", "line", lineNo, "doc_id", doc.ID, "text_size", len(doc.Text))
		emit(doc)
		docs++
	}
}

// Index returns a copy of the aggregate index.
func (e *Engine) Index() index.InvertedIndex {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.Clone()
}

// Lookup returns a copy of the postings recorded for term.
func (e *Engine) Lookup(term string) (index.Postings, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	postings, ok := e.idx.Lookup(term)
	if !ok {
		return nil, false
	}
	out := make(index.Postings, len(postings))
	copy(out, postings)
	return out, true
}

// Entries returns the aggregate as TermEntries sorted by term.
func (e *Engine) Entries() []index.TermEntry {
	return e.Index().Entries()
}

// Stats returns document, term, and posting counts.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s := e.idx.Stats()
	return Stats{
		Documents: e.docCount,
		Terms:     s.Terms,
		Postings:  s.Postings,
	}
}

// DocCount returns the number of documents folded in so far.
func (e *Engine) DocCount() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.docCount
}

// Ready reports whether at least one Build has completed.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.built
}

func (e *Engine) observeSize() {
	if e.metrics == nil {
		return
	}
	s := e.Stats()
	e.metrics.IndexTerms.Set(float64(s.Terms))
	e.metrics.IndexPostings.Set(float64(s.Postings))
}

func (e *Engine) countLine(kind, result string) {
	if e.metrics != nil {
		e.metrics.SourceLinesTotal.WithLabelValues(kind, result).Inc()
	}
}

func (e *Engine) recordBuild(status, mode string, d time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.BuildsTotal.WithLabelValues(status).Inc()
	e.metrics.BuildDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func isBlank(line []byte) bool {
	for _, b := range line {
		if b != ' ' && b != '\t' && b != '\r' && b != '\n' {
			return false
		}
	}
	return true
}
