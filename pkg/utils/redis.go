package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"hireloop/internal/logging"
)

// sweepLeaseKey guards the scheduler sweep across process replicas
const sweepLeaseKey = "hireloop:scheduler:sweep-lease"

// releaseLeaseScript deletes the lease only if this holder still owns it
var releaseLeaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisClient wraps the Redis client for scheduler sweep coordination
type RedisClient struct {
	client *redis.Client
	logger logging.Logger
}

// NewRedisClient creates a new Redis client instance from a redis:// URL
func NewRedisClient(url, password string, db int) (*RedisClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if password != "" {
		opts.Password = password
	}
	if db != 0 {
		opts.DB = db
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	return &RedisClient{
		client: redis.NewClient(opts),
		logger: logging.GetGlobalLogger(),
	}, nil
}

// Ping tests the Redis connection
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// AcquireSweepLease attempts to take the cross-replica sweep lease. The holder
// value must be unique per process so a replica cannot release a lease it lost.
func (r *RedisClient) AcquireSweepLease(ctx context.Context, holder string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, sweepLeaseKey, holder, ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// ReleaseSweepLease releases the sweep lease if this holder still owns it
func (r *RedisClient) ReleaseSweepLease(ctx context.Context, holder string) {
	if err := releaseLeaseScript.Run(ctx, r.client, []string{sweepLeaseKey}, holder).Err(); err != nil && err != redis.Nil {
		r.logger.Warn("Failed to release scheduler sweep lease", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
