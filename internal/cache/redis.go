package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/travelmarket/booking-backend/internal/config"
)

// RedisLocker provides the two locks the booking lifecycle needs: a short
// per-offer lock narrowing the hold race window, and a single sweep lock
// keeping multiple replicas from sweeping concurrently. Both are plain SetNX
// keys with a TTL so a crashed holder never wedges the system.
type RedisLocker struct {
	client *redis.Client
}

// NewRedisLocker creates a locker backed by the configured redis instance.
func NewRedisLocker(cfg config.RedisConfig) *RedisLocker {
	return &RedisLocker{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// AcquireOfferLock takes the per-offer hold lock. Returns false when another
// hold on the same offer is in flight.
func (l *RedisLocker) AcquireOfferLock(ctx context.Context, offerID string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, offerLockKey(offerID), "locked", ttl).Result()
}

// ReleaseOfferLock drops the per-offer hold lock.
func (l *RedisLocker) ReleaseOfferLock(ctx context.Context, offerID string) error {
	return l.client.Del(ctx, offerLockKey(offerID)).Err()
}

// AcquireSweepLock takes the cross-replica sweep lock.
func (l *RedisLocker) AcquireSweepLock(ctx context.Context, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, sweepLockKey(), "locked", ttl).Result()
}

// ReleaseSweepLock drops the sweep lock.
func (l *RedisLocker) ReleaseSweepLock(ctx context.Context) error {
	return l.client.Del(ctx, sweepLockKey()).Err()
}

// Ping verifies the redis connection.
func (l *RedisLocker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

func offerLockKey(offerID string) string {
	return fmt.Sprintf("lock:offer:%s", offerID)
}

func sweepLockKey() string {
	return "lock:booking-sweep"
}
