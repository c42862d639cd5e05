package redis

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const otpKeyPrefix = "reset:"

// OTPStore manages the one-time password-reset codes. Codes share the redis
// keyspace with session records but live under their own key prefix, and
// there is at most one live code per email: issuing a new code overwrites the
// previous one.
type OTPStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewOTPStore(client *goredis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{client: client, ttl: ttl}
}

// Issue generates a random 12-digit numeric code and stores it keyed by
// email. The code is returned for delivery by mail and must never be logged
// or placed in an API response.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, otpKeyPrefix+email, code, s.ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify reports whether code matches the live code for email. It does not
// consume the code; deletion is a separate step taken only after the
// password update itself succeeds.
func (s *OTPStore) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, err := s.client.Get(ctx, otpKeyPrefix+email).Result()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == code, nil
}

// Consume deletes the live code for email. Idempotent if already absent.
func (s *OTPStore) Consume(ctx context.Context, email string) error {
	return s.client.Del(ctx, otpKeyPrefix+email).Err()
}

func generateCode() (string, error) {
	// 12 decimal digits, leading zeros preserved
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%012d", n), nil
}
