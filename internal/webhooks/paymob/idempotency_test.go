package paymobwebhook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIdempotencyStore struct {
	keys    map[string]string
	setErr  error
	delErr  error
	deleted []string
}

func newStubStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{keys: map[string]string{}}
}

func (s *stubIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	return s.keys[key], nil
}

func (s *stubIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if s.setErr != nil {
		return false, s.setErr
	}
	if _, exists := s.keys[key]; exists {
		return false, nil
	}
	s.keys[key] = "1"
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "mb:idempotency:" + scope + ":" + id
}

func (s *stubIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	if s.delErr != nil {
		return s.delErr
	}
	for _, key := range keys {
		delete(s.keys, key)
		s.deleted = append(s.deleted, key)
	}
	return nil
}

func TestNewIdempotencyGuardValidatesInputs(t *testing.T) {
	_, err := NewIdempotencyGuard(nil, time.Hour, "paymob-webhook")
	assert.Error(t, err)

	_, err = NewIdempotencyGuard(newStubStore(), -time.Second, "paymob-webhook")
	assert.Error(t, err)

	_, err = NewIdempotencyGuard(newStubStore(), time.Hour, "")
	assert.Error(t, err)
}

func TestCheckAndMarkFirstDeliveryIsNotDuplicate(t *testing.T) {
	guard, err := NewIdempotencyGuard(newStubStore(), time.Hour, "paymob-webhook")
	require.NoError(t, err)

	duplicate, err := guard.CheckAndMark(context.Background(), "9821034")
	require.NoError(t, err)
	assert.False(t, duplicate)
}

func TestCheckAndMarkSecondDeliveryIsDuplicate(t *testing.T) {
	guard, err := NewIdempotencyGuard(newStubStore(), time.Hour, "paymob-webhook")
	require.NoError(t, err)

	_, err = guard.CheckAndMark(context.Background(), "9821034")
	require.NoError(t, err)

	duplicate, err := guard.CheckAndMark(context.Background(), "9821034")
	require.NoError(t, err)
	assert.True(t, duplicate)
}

func TestCheckAndMarkDistinctTransactionsDoNotCollide(t *testing.T) {
	guard, err := NewIdempotencyGuard(newStubStore(), time.Hour, "paymob-webhook")
	require.NoError(t, err)

	_, err = guard.CheckAndMark(context.Background(), "9821034")
	require.NoError(t, err)

	duplicate, err := guard.CheckAndMark(context.Background(), "9821035")
	require.NoError(t, err)
	assert.False(t, duplicate)
}

func TestCheckAndMarkRequiresTransactionID(t *testing.T) {
	guard, err := NewIdempotencyGuard(newStubStore(), time.Hour, "paymob-webhook")
	require.NoError(t, err)

	_, err = guard.CheckAndMark(context.Background(), "")
	assert.Error(t, err)
}

func TestCheckAndMarkSurfacesStoreErrors(t *testing.T) {
	store := newStubStore()
	store.setErr = errors.New("redis down")
	guard, err := NewIdempotencyGuard(store, time.Hour, "paymob-webhook")
	require.NoError(t, err)

	_, err = guard.CheckAndMark(context.Background(), "9821034")
	assert.Error(t, err)
}

func TestDeleteReleasesTheMark(t *testing.T) {
	store := newStubStore()
	guard, err := NewIdempotencyGuard(store, time.Hour, "paymob-webhook")
	require.NoError(t, err)

	_, err = guard.CheckAndMark(context.Background(), "9821034")
	require.NoError(t, err)

	require.NoError(t, guard.Delete(context.Background(), "9821034"))

	duplicate, err := guard.CheckAndMark(context.Background(), "9821034")
	require.NoError(t, err)
	assert.False(t, duplicate)
}
