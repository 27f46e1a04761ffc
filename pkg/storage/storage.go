package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/brotato-world/pkg/options"
	"github.com/jwebster45206/brotato-world/pkg/world"
)

// Storage defines a unified interface for all storage operations
// This interface combines generated session persistence (Redis) with player
// file loading (filesystem)
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session operations (Redis-backed)
	SaveSession(ctx context.Context, rec *world.Record) error
	LoadSession(ctx context.Context, id uuid.UUID) (*world.Record, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// Player file operations (filesystem-backed)
	// ListPlayerFiles maps each player name to its file name
	ListPlayerFiles(ctx context.Context) (map[string]string, error)
	GetPlayerFile(ctx context.Context, filename string) (*options.PlayerFile, error)
}
