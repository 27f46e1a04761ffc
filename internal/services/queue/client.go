package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultNamespace prefixes every queue key when ClientConfig leaves it empty.
const DefaultNamespace = "brotato"

// ClientConfig selects the Redis server and the key namespace. Several
// deployments can share one Redis by using different namespaces.
type ClientConfig struct {
	RedisURL  string
	Namespace string
}

// Client owns the Redis connection shared by the generation queue, the
// broadcaster and the worker's session locks.
type Client struct {
	rdb       *redis.Client
	namespace string
	logger    *slog.Logger
}

// NewClient connects and pings Redis. A bare host:port is accepted as well
// as a redis:// URL.
func NewClient(ctx context.Context, cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	opt := &redis.Options{Addr: cfg.RedisURL}
	if strings.Contains(cfg.RedisURL, "://") {
		var err error
		if opt, err = redis.ParseURL(cfg.RedisURL); err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opt.Addr, err)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	logger.Info("Connected to Redis for generation queue", "addr", opt.Addr, "namespace", namespace)

	return &Client{
		rdb:       rdb,
		namespace: namespace,
		logger:    logger.With("namespace", namespace),
	}, nil
}

// Key returns name inside the client's namespace.
func (c *Client) Key(name string) string {
	return c.namespace + ":" + name
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetRedisClient returns the underlying Redis client for pub/sub and locks.
func (c *Client) GetRedisClient() *redis.Client {
	return c.rdb
}
