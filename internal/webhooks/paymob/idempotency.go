package paymobwebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omarhegazy/modelbay-backend/pkg/redis"
)

// IdempotencyGuard remembers gateway transaction ids that were already
// handled so duplicate webhook deliveries become no-ops.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// CheckAndMark marks the transaction as seen. It reports true when the
// transaction was already marked by an earlier delivery.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, transactionID string) (bool, error) {
	if transactionID == "" {
		return false, errors.New("transaction id is required")
	}
	key := g.store.IdempotencyKey(g.scope, transactionID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Delete releases the mark so the gateway's retry can be processed after a
// handling failure.
func (g *IdempotencyGuard) Delete(ctx context.Context, transactionID string) error {
	if transactionID == "" {
		return errors.New("transaction id is required")
	}
	key := g.store.IdempotencyKey(g.scope, transactionID)
	return g.store.Del(ctx, key)
}
