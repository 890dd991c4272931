package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "wallet-binding:"

// RedisBindingStore keeps wallet bindings in Redis. Bindings do not expire;
// they are removed only when the wallet hub unlinks the card.
type RedisBindingStore struct {
	client *redis.Client
}

// NewRedisBindingStore builds a Redis-backed binding store.
func NewRedisBindingStore(client *redis.Client) *RedisBindingStore {
	return &RedisBindingStore{client: client}
}

// Get fetches the binding for a phone number.
func (s *RedisBindingStore) Get(ctx context.Context, phone string) (Binding, error) {
	raw, err := s.client.Get(ctx, keyPrefix+phone).Result()
	if errors.Is(err, redis.Nil) {
		return Binding{}, fmt.Errorf("%w: %s", ErrNotFound, phone)
	}
	if err != nil {
		return Binding{}, fmt.Errorf("load wallet binding %s: %w", phone, err)
	}

	var b Binding
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return Binding{}, fmt.Errorf("decode wallet binding %s: %w", phone, err)
	}
	return b, nil
}

// Put stores the binding.
func (s *RedisBindingStore) Put(ctx context.Context, b Binding) error {
	body, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode wallet binding %s: %w", b.Phone, err)
	}
	if err := s.client.Set(ctx, keyPrefix+b.Phone, body, 0).Err(); err != nil {
		return fmt.Errorf("store wallet binding %s: %w", b.Phone, err)
	}
	return nil
}
