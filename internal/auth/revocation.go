package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevoker invalidates issued session tokens before their natural
// expiry. Sessions are otherwise stateless JWTs.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

const revocationKeyPrefix = "session:revoked:"

type redisRevoker struct {
	client *redis.Client
}

// NewRedisRevoker stores revoked token IDs in Redis, keyed by jti with a
// TTL matching the token's remaining lifetime.
func NewRedisRevoker(client *redis.Client) TokenRevoker {
	return &redisRevoker{client: client}
}

func (r *redisRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revocationKeyPrefix+tokenID, "1", ttl).Err()
}

func (r *redisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := r.client.Get(ctx, revocationKeyPrefix+tokenID).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
