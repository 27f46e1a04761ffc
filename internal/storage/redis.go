package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/brotato-world/pkg/options"
	"github.com/jwebster45206/brotato-world/pkg/storage"
	"github.com/jwebster45206/brotato-world/pkg/world"
)

const defaultSessionTTL = 24 * time.Hour

// RedisStorage implements the Storage interface using Redis for generated
// sessions and the filesystem for player files
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
	ttl     time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance. redisURL may be a
// redis:// URL or a bare host:port.
func NewRedisStorage(redisURL, dataDir string, ttl time.Duration, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redisOptions(redisURL)
	if err != nil {
		return nil, err
	}
	if dataDir == "" {
		dataDir = "./data"
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	return &RedisStorage{
		client:  redis.NewClient(opt),
		logger:  logger,
		dataDir: dataDir,
		ttl:     ttl,
	}, nil
}

func redisOptions(redisURL string) (*redis.Options, error) {
	if !strings.Contains(redisURL, "://") {
		return &redis.Options{Addr: redisURL}, nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return opt, nil
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := range maxRetries {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Session operations (Redis-backed)

func sessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}

func (r *RedisStorage) SaveSession(ctx context.Context, rec *world.Record) error {
	if rec == nil {
		return errors.New("session record cannot be nil")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error("Failed to marshal session", "uuid", rec.ID, "error", err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(rec.ID), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save session", "uuid", rec.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadSession(ctx context.Context, id uuid.UUID) (*world.Record, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Session not found", "uuid", id)
			return nil, nil
		}
		r.logger.Error("Failed to load session", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var rec world.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.Error("Failed to unmarshal session", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &rec, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete session", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Player file operations (filesystem-backed)

func (r *RedisStorage) playersDir() string {
	return filepath.Join(r.dataDir, "players")
}

func isYAML(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}

func (r *RedisStorage) ListPlayerFiles(ctx context.Context) (map[string]string, error) {
	players := make(map[string]string)

	err := filepath.WalkDir(r.playersDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || !isYAML(path) {
			return nil
		}

		pf, err := options.Load(path)
		if err != nil {
			r.logger.Warn("Skipping invalid player file", "path", path, "error", err)
			return nil
		}
		players[pf.Name] = filepath.Base(path)
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to walk players directory", "error", err)
		return nil, fmt.Errorf("failed to list player files: %w", err)
	}

	return players, nil
}

func (r *RedisStorage) GetPlayerFile(ctx context.Context, filename string) (*options.PlayerFile, error) {
	if filename != filepath.Base(filename) || !isYAML(filename) {
		return nil, fmt.Errorf("invalid player file name: %q", filename)
	}

	path := filepath.Join(r.playersDir(), filename)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("player file not found: %s", filename)
		}
		return nil, fmt.Errorf("failed to stat player file: %w", err)
	}

	return options.Load(path)
}
