package source

import (
	"context"
	"fmt"
	"io"

	apperrors "github.com/Adithya-Monish-Kumar-K/varys/pkg/errors"
	pkgredis "github.com/Adithya-Monish-Kumar-K/varys/pkg/redis"
)

// lister is the subset of the Redis client used by RedisSource.
type lister interface {
	LPop(ctx context.Context, key string) ([]byte, error)
	Close() error
}

// RedisSource pops lines from the head of a Redis list until it is empty.
// Popped lines are removed from the list.
type RedisSource struct {
	client lister
	list   string
}

// NewRedisSource drains list through client.
func NewRedisSource(client lister, list string) *RedisSource {
	return &RedisSource{client: client, list: list}
}

func (s *RedisSource) Next(ctx context.Context) ([]byte, error) {
	line, err := s.client.LPop(ctx, s.list)
	if err != nil {
		if pkgredis.IsNilError(err) {
			return nil, io.EOF
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: popping %s: %v", apperrors.ErrSourceUnavailable, s.list, err)
	}
	return line, nil
}

func (s *RedisSource) Close() error {
	return s.client.Close()
}
