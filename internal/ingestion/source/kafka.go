package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/varys/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/resilience"
)

// fetcher is the subset of kafka.Consumer used by KafkaSource.
type fetcher interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSource drains a topic. A message is committed once the following
// Next call shows its line was consumed. The topic counts as drained after
// idleTimeout passes without a new message.
type KafkaSource struct {
	consumer    fetcher
	idleTimeout time.Duration
	retry       resilience.RetryConfig
	pending     *kafka.Message
	logger      *slog.Logger
}

// NewKafkaSource wraps consumer.
func NewKafkaSource(consumer fetcher, idleTimeout time.Duration) *KafkaSource {
	if idleTimeout <= 0 {
		idleTimeout = 10 * time.Second
	}
	return &KafkaSource{
		consumer:    consumer,
		idleTimeout: idleTimeout,
		retry:       resilience.RetryConfig{MaxAttempts: 5},
		logger:      slog.Default().With("component", "kafka-source"),
	}
}

func (s *KafkaSource) Next(ctx context.Context) ([]byte, error) {
	if err := s.commitPending(ctx); err != nil {
		return nil, err
	}
	var msg kafka.Message
	idle := false
	err := resilience.Retry(ctx, "kafka fetch", s.retry, func() error {
		fetchCtx, cancel := context.WithTimeout(ctx, s.idleTimeout)
		defer cancel()
		m, err := s.consumer.Fetch(fetchCtx)
		if err != nil {
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				idle = true
				return nil
			}
			return err
		}
		msg = m
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSourceUnavailable, err)
	}
	if idle {
		s.logger.Info("topic idle, treating as drained", "idle_timeout", s.idleTimeout)
		return nil, io.EOF
	}
	s.pending = &msg
	return msg.Value, nil
}

func (s *KafkaSource) commitPending(ctx context.Context) error {
	if s.pending == nil {
		return nil
	}
	if err := s.consumer.Commit(ctx, *s.pending); err != nil {
		return err
	}
	s.pending = nil
	return nil
}

// Close commits the last delivered message and closes the consumer.
func (s *KafkaSource) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	commitErr := s.commitPending(ctx)
	if err := s.consumer.Close(); err != nil {
		return err
	}
	return commitErr
}
