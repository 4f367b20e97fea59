// Package cache stores solved responses in Redis keyed by a digest of the
// request, so identical requests within the TTL skip the search entirely.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hooplab/rosteropt/internal/types"
)

// DefaultTTL is how long a cached solution stays valid.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "solve:"

// ErrMiss reports that no cached solution exists for the key.
var ErrMiss = errors.New("solution not in cache")

// Cache is a Redis-backed solution cache.
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
	ttl    time.Duration
}

// New connects to Redis at the given URL and verifies the connection.
func New(redisURL string, log *logrus.Logger) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Cache{client: client, logger: log, ttl: DefaultTTL}, nil
}

// RequestKey derives the deterministic cache key for a solve request.
func RequestKey(req *types.SolveRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request for cache key: %w", err)
	}
	return fmt.Sprintf("%x", md5.Sum(data)), nil
}

// Get retrieves a cached solution. Returns ErrMiss when the key is absent.
func (c *Cache) Get(ctx context.Context, key string) (*types.Solution, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("get cached solution: %w", err)
	}

	var sol types.Solution
	if err := json.Unmarshal([]byte(data), &sol); err != nil {
		return nil, fmt.Errorf("unmarshal cached solution: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key": key,
		"status":    sol.Status,
	}).Debug("Cache hit for solve request")
	return &sol, nil
}

// Set stores a solution under the key with the cache TTL.
func (c *Cache) Set(ctx context.Context, key string, sol *types.Solution) error {
	data, err := json.Marshal(sol)
	if err != nil {
		return fmt.Errorf("marshal solution for cache: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached solution: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key": key,
		"ttl":       c.ttl,
	}).Debug("Cached solve response")
	return nil
}

// Ping verifies the Redis connection is still alive.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
