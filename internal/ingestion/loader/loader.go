// Package loader seeds the Kafka, Redis and PostgreSQL record sources from
// NDJSON input. Every line is validated before it is written so that a later
// index build over the same backend cannot fail on a malformed record.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/varys/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/logger"
)

const DefaultBatchSize = 500

// Item is one validated record line on its way to a sink.
type Item struct {
	Key     string
	Payload []byte
}

// Sink stores batches of record lines in input order.
type Sink interface {
	Write(ctx context.Context, batch []Item) error
	Close() error
}

// LineReader yields raw record lines and io.EOF once drained.
type LineReader interface {
	Next(ctx context.Context) ([]byte, error)
}

// Result summarises one Load call.
type Result struct {
	Records int
	Blank   int
	Batches int
}

type Loader struct {
	sink      Sink
	batchSize int
	logger    *slog.Logger
}

// New returns a Loader writing batches of up to batchSize lines to sink.
func New(sink Sink, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{
		sink:      sink,
		batchSize: batchSize,
		logger:    logger.WithComponent("loader"),
	}
}

// Load copies every non-blank line of r to the sink. A line that fails to
// decode aborts the load; batches already written stay written.
func (l *Loader) Load(ctx context.Context, r LineReader) (Result, error) {
	var res Result
	start := time.Now()
	batch := make([]Item, 0, l.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := l.sink.Write(ctx, batch); err != nil {
			return fmt.Errorf("writing batch %d: %w", res.Batches+1, err)
		}
		res.Batches++
		l.logger.Debug("batch written", "records", len(batch))
		batch = make([]Item, 0, l.batchSize)
		return nil
	}

	for lineNo := 1; ; lineNo++ {
		line, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("reading line %d: %w", lineNo, err)
		}
		if isBlank(line) {
			res.Blank++
			continue
		}
		rec, err := ingestion.DecodeRecord(line)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", lineNo, err)
		}
		payload := make([]byte, len(line))
		copy(payload, line)
		batch = append(batch, Item{Key: rec.URL(), Payload: payload})
		res.Records++
		if len(batch) >= l.batchSize {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}
	if err := flush(); err != nil {
		return res, err
	}
	l.logger.Info("load complete",
		"records", res.Records,
		"blank_lines", res.Blank,
		"batches", res.Batches,
		"duration", time.Since(start),
	)
	return res, nil
}

func isBlank(line []byte) bool {
	for _, b := range line {
		if b != ' ' && b != '\t' && b != '\r' && b != '\n' {
			return false
		}
	}
	return true
}
