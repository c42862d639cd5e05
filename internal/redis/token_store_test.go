package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskmaster/taskmaster/internal/redis"
)

func newTokenStore(t *testing.T) (*redis.TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { client.Close() })
	return redis.NewTokenStore(client), mini
}

func TestTokenStore_StoreAndLookup(t *testing.T) {
	store, _ := newTokenStore(t)
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, store.Store(ctx, "token-abc", userID, time.Hour))

	got, err := store.Lookup(ctx, "token-abc")
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenStore_LookupMissing(t *testing.T) {
	store, _ := newTokenStore(t)

	_, err := store.Lookup(context.Background(), "never-stored")
	assert.ErrorIs(t, err, redis.ErrTokenNotFound)
}

func TestTokenStore_TTLExpiry(t *testing.T) {
	store, mini := newTokenStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "short-lived", uuid.New(), time.Minute))

	mini.FastForward(2 * time.Minute)

	_, err := store.Lookup(ctx, "short-lived")
	assert.ErrorIs(t, err, redis.ErrTokenNotFound)
}

func TestTokenStore_RevokeIsIdempotent(t *testing.T) {
	store, _ := newTokenStore(t)
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, store.Store(ctx, "token-xyz", userID, time.Hour))

	require.NoError(t, store.Revoke(ctx, "token-xyz"))

	_, err := store.Lookup(ctx, "token-xyz")
	assert.ErrorIs(t, err, redis.ErrTokenNotFound)

	// Revoking again is not an error
	assert.NoError(t, store.Revoke(ctx, "token-xyz"))
}
