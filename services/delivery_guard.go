package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	deliveryKeyPrefix = "wompi:event:"
	deliveryKeyTTL    = 24 * time.Hour
)

// DeliveryGuard remembers which gateway deliveries were already taken so a
// retried delivery is short-circuited before touching the store.
type DeliveryGuard interface {
	// Claim returns false when the key was already claimed.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets a claim so the gateway's next retry is processed.
	Release(ctx context.Context, key string) error
}

type RedisDeliveryGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeliveryGuard(client *redis.Client) *RedisDeliveryGuard {
	return &RedisDeliveryGuard{client: client, ttl: deliveryKeyTTL}
}

func (g *RedisDeliveryGuard) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, deliveryKeyPrefix+key, 1, g.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (g *RedisDeliveryGuard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, deliveryKeyPrefix+key).Err()
}
