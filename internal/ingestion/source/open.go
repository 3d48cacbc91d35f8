package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/varys/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/varys/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/varys/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/resilience"
)

var connectRetry = resilience.RetryConfig{MaxAttempts: 4}

// Open returns the Source selected by cfg.Kind. Network backends are
// connected with retries.
func Open(ctx context.Context, cfg config.SourceConfig) (Source, error) {
	logger := slog.Default().With("component", "source", "kind", cfg.Kind)
	switch cfg.Kind {
	case config.SourceFile, "":
		src, err := OpenFile(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("reading records", "path", displayPath(cfg.Path))
		return src, nil
	case config.SourceKafka:
		consumer := kafka.NewConsumer(cfg.Kafka)
		logger.Info("reading records",
			"topic", cfg.Kafka.Topic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		return NewKafkaSource(consumer, cfg.Kafka.IdleTimeout), nil
	case config.SourceRedis:
		client, err := ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		logger.Info("reading records", "addr", cfg.Redis.Addr, "list", cfg.Redis.List)
		return NewRedisSource(client, cfg.Redis.List), nil
	case config.SourcePostgres:
		client, err := ConnectPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		src, err := NewPostgresSource(ctx, client)
		if err != nil {
			client.Close()
			return nil, err
		}
		logger.Info("reading records", "host", cfg.Postgres.Host, "table", cfg.Postgres.Table)
		return src, nil
	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", apperrors.ErrInvalidInput, cfg.Kind)
	}
}

// ConnectRedis dials Redis, retrying transient failures.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*pkgredis.Client, error) {
	var client *pkgredis.Client
	err := resilience.Retry(ctx, "redis connect", connectRetry, func() error {
		c, err := pkgredis.NewClient(cfg)
		if err != nil {
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSourceUnavailable, err)
	}
	return client, nil
}

// ConnectPostgres opens the PostgreSQL pool, retrying transient failures.
func ConnectPostgres(ctx context.Context, cfg config.PostgresConfig) (*postgres.Client, error) {
	var client *postgres.Client
	err := resilience.Retry(ctx, "postgres connect", connectRetry, func() error {
		c, err := postgres.New(cfg)
		if err != nil {
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSourceUnavailable, err)
	}
	return client, nil
}

func displayPath(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}
