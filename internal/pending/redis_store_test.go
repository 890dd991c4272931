package pending

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func setupStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	tx := Transaction{
		ID:         "corr1",
		State:      StateRequested,
		Amount:     decimal.NewFromInt(25),
		AccountID:  "a1",
		Expiration: time.Now().Add(time.Minute).Truncate(time.Second),
	}
	if err := store.Put(ctx, tx, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "corr1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != tx.ID || got.State != tx.State || got.AccountID != tx.AccountID {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if !got.Amount.Equal(tx.Amount) {
		t.Fatalf("expected amount %s got %s", tx.Amount, got.Amount)
	}
}

func TestRedisStoreMissingKey(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.Get(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	tx := Transaction{ID: "corr1", State: StateRequested, Amount: decimal.NewFromInt(25), AccountID: "a1"}
	if err := store.Put(ctx, tx, 30*time.Second); err != nil {
		t.Fatalf("put: %v", err)
	}

	mr.FastForward(31 * time.Second)

	_, err := store.Get(ctx, "corr1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired record to be absent, got %v", err)
	}
}

func TestTransactionExpired(t *testing.T) {
	now := time.Now()

	active := Transaction{State: StateRequested, Expiration: now.Add(time.Minute)}
	if active.Expired(now) {
		t.Fatal("transaction with future expiration is not expired")
	}

	past := Transaction{State: StateRequested, Expiration: now.Add(-time.Second)}
	if !past.Expired(now) {
		t.Fatal("transaction past its expiration is expired")
	}

	flagged := Transaction{State: StateExpired, Expiration: now.Add(time.Minute)}
	if !flagged.Expired(now) {
		t.Fatal("explicitly expired state wins regardless of timestamp")
	}
}
