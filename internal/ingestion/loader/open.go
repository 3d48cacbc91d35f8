package loader

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/varys/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/varys/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/kafka"
)

// OpenSink returns the sink feeding the source of the same kind, using the
// backend settings in cfg.
func OpenSink(ctx context.Context, kind string, cfg config.SourceConfig) (Sink, error) {
	switch kind {
	case config.SourceKafka:
		return NewKafkaSink(kafka.NewProducer(cfg.Kafka)), nil
	case config.SourceRedis:
		client, err := source.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisSink(client, cfg.Redis.List), nil
	case config.SourcePostgres:
		client, err := source.ConnectPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		sink, err := NewPostgresSink(ctx, client)
		if err != nil {
			client.Close()
			return nil, err
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("%w: unknown sink kind %q", apperrors.ErrInvalidInput, kind)
	}
}
