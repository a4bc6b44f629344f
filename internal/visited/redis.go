package visited

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every set this package creates in Redis.
const KeyPrefix = "spacecomm:visited:"

// Redis is a Set stored as a Redis set. SADD both inserts and reports
// whether the member was new, which gives Add its atomicity.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis connects to the server at url (redis://host:port/db) and uses the
// set named KeyPrefix+runID.
func NewRedis(ctx context.Context, url, runID string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Redis{client: client, key: KeyPrefix + runID}, nil
}

// Key returns the Redis key holding the set.
func (r *Redis) Key() string {
	return r.key
}

// Add implements Set.
func (r *Redis) Add(ctx context.Context, id int) (bool, error) {
	n, err := r.client.SAdd(ctx, r.key, strconv.Itoa(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to add %d to visited set: %w", id, err)
	}
	return n == 1, nil
}

// Contains implements Set.
func (r *Redis) Contains(ctx context.Context, id int) (bool, error) {
	ok, err := r.client.SIsMember(ctx, r.key, strconv.Itoa(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to query visited set: %w", err)
	}
	return ok, nil
}

// Len implements Set.
func (r *Redis) Len(ctx context.Context) (int, error) {
	n, err := r.client.SCard(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count visited set: %w", err)
	}
	return int(n), nil
}

// Clear deletes the set.
func (r *Redis) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
