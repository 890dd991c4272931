package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pending-transaction:"

// RedisStore keeps pending transactions in Redis under a TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a Redis-backed pending transaction store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get fetches the pending transaction by correlation id.
func (s *RedisStore) Get(ctx context.Context, id string) (Transaction, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return Transaction{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("load pending transaction %s: %w", id, err)
	}

	var tx Transaction
	if err := json.Unmarshal([]byte(raw), &tx); err != nil {
		return Transaction{}, fmt.Errorf("decode pending transaction %s: %w", id, err)
	}
	return tx, nil
}

// Put stores the pending transaction under the given TTL.
func (s *RedisStore) Put(ctx context.Context, tx Transaction, ttl time.Duration) error {
	body, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("encode pending transaction %s: %w", tx.ID, err)
	}
	if err := s.client.Set(ctx, keyPrefix+tx.ID, body, ttl).Err(); err != nil {
		return fmt.Errorf("store pending transaction %s: %w", tx.ID, err)
	}
	return nil
}
