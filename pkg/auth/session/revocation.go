package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

const revokedMarker = "1"

type revocationStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type revocationKeyer interface {
	RevokedTokenKey(jti string) string
}

// RedisStore is the redis client surface the revocation list needs.
type RedisStore interface {
	revocationStore
	revocationKeyer
}

// RevocationChecker exposes the read-only surface needed by middleware.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Revocations tracks revoked access token ids until they would have expired anyway.
type Revocations struct {
	store revocationStore
	keyer revocationKeyer
	ttl   time.Duration
}

// NewRevocations builds a revocation list. ttl should cover the access token lifetime.
func NewRevocations(client RedisStore, ttl time.Duration) (*Revocations, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("revocation ttl must be positive")
	}
	return &Revocations{store: client, keyer: client, ttl: ttl}, nil
}

// Revoke marks the token id as revoked.
func (r *Revocations) Revoke(ctx context.Context, jti string) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return fmt.Errorf("token id is required")
	}
	return r.store.Set(ctx, r.keyer.RevokedTokenKey(jti), revokedMarker, r.ttl)
}

// Restore lifts a revocation.
func (r *Revocations) Restore(ctx context.Context, jti string) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return fmt.Errorf("token id is required")
	}
	return r.store.Del(ctx, r.keyer.RevokedTokenKey(jti))
}

// IsRevoked reports whether the token id has been revoked.
func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, fmt.Errorf("token id is required")
	}
	if _, err := r.store.Get(ctx, r.keyer.RevokedTokenKey(jti)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
