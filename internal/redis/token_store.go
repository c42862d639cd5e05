package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// ErrTokenNotFound is returned when no active-session record exists for a
// token, either because it was revoked or because its TTL ran out.
var ErrTokenNotFound = errors.New("token not found")

// TokenStore keeps the active-session records that make a signed token
// actually usable. The record's presence is the source of truth for "is this
// session still valid": deleting it revokes the token regardless of how long
// the signature itself remains cryptographically valid.
type TokenStore struct {
	client *goredis.Client
}

func NewTokenStore(client *goredis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// Store records token -> userID with the given TTL. The TTL must match the
// token's embedded expiry so both invalidate together.
func (s *TokenStore) Store(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return s.client.Set(ctx, token, userID.String(), ttl).Err()
}

// Lookup returns the user ID the token maps to, or ErrTokenNotFound if the
// record is gone.
func (s *TokenStore) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, token).Result()
	if errors.Is(err, goredis.Nil) {
		return uuid.Nil, ErrTokenNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, ErrTokenNotFound
	}
	return id, nil
}

// Revoke deletes the active-session record. Revoking an already-absent token
// is not an error.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, token).Err()
}
