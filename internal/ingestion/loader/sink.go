package loader

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/varys/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/resilience"
)

type publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
	Close() error
}

// KafkaSink publishes each batch keyed by record URL.
type KafkaSink struct {
	producer publisher
}

func NewKafkaSink(producer publisher) *KafkaSink {
	return &KafkaSink{producer: producer}
}

func (s *KafkaSink) Write(ctx context.Context, batch []Item) error {
	events := make([]kafka.Event, len(batch))
	for i, item := range batch {
		events[i] = kafka.Event{Key: item.Key, Value: item.Payload}
	}
	return s.producer.PublishBatch(ctx, events)
}

func (s *KafkaSink) Close() error {
	return s.producer.Close()
}

type pusher interface {
	RPush(ctx context.Context, key string, values ...[]byte) error
	Close() error
}

// RedisSink appends batches to the tail of a list so LPOP replays input
// order.
type RedisSink struct {
	client pusher
	list   string
	retry  resilience.RetryConfig
}

func NewRedisSink(client pusher, list string) *RedisSink {
	return &RedisSink{client: client, list: list, retry: resilience.RetryConfig{MaxAttempts: 3}}
}

func (s *RedisSink) Write(ctx context.Context, batch []Item) error {
	values := make([][]byte, len(batch))
	for i, item := range batch {
		values[i] = item.Payload
	}
	return resilience.Retry(ctx, "redis rpush", s.retry, func() error {
		return s.client.RPush(ctx, s.list, values...)
	})
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}

// PostgresSink inserts each batch into the record table in one transaction.
type PostgresSink struct {
	client *postgres.Client
}

// NewPostgresSink creates the record table when it does not exist yet.
func NewPostgresSink(ctx context.Context, client *postgres.Client) (*PostgresSink, error) {
	if _, err := client.DB.ExecContext(ctx, createTableSQL(client.Table())); err != nil {
		return nil, fmt.Errorf("creating record table: %w", err)
	}
	return &PostgresSink{client: client}, nil
}

func (s *PostgresSink) Write(ctx context.Context, batch []Item) error {
	return s.client.InTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertSQL(s.client.Table()))
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()
		for _, item := range batch {
			if _, err := stmt.ExecContext(ctx, string(item.Payload)); err != nil {
				return fmt.Errorf("inserting record %s: %w", item.Key, err)
			}
		}
		return nil
	})
}

func (s *PostgresSink) Close() error {
	return s.client.Close()
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	payload TEXT NOT NULL
)`, table)
}

func insertSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (payload) VALUES ($1)`, table)
}
