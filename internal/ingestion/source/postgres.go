package source

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/Adithya-Monish-Kumar-K/varys/pkg/postgres"
)

// PostgresSource streams the payload column of the record table in id
// order. It requires a table shaped like:
//
//	CREATE TABLE http_transactions (
//	    id      BIGSERIAL PRIMARY KEY,
//	    payload TEXT NOT NULL
//	);
//
// The postgres loader sink creates it on first use.
type PostgresSource struct {
	client *postgres.Client
	rows   *sql.Rows
}

// NewPostgresSource starts the streaming query.
func NewPostgresSource(ctx context.Context, client *postgres.Client) (*PostgresSource, error) {
	rows, err := client.DB.QueryContext(ctx,
		fmt.Sprintf(`SELECT payload FROM %s ORDER BY id`, client.Table()),
	)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	return &PostgresSource{client: client, rows: rows}, nil
}

func (s *PostgresSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, fmt.Errorf("iterating records: %w", err)
		}
		return nil, io.EOF
	}
	var payload []byte
	if err := s.rows.Scan(&payload); err != nil {
		return nil, fmt.Errorf("scanning record row: %w", err)
	}
	return payload, nil
}

func (s *PostgresSource) Close() error {
	rowsErr := s.rows.Close()
	if err := s.client.Close(); err != nil {
		return err
	}
	return rowsErr
}
