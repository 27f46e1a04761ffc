package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/brotato-world/pkg/options"
	"github.com/jwebster45206/brotato-world/pkg/world"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu          sync.RWMutex
	sessions    map[uuid.UUID]*world.Record
	playerFiles map[string]*options.PlayerFile
	pingError   error
	saveError   error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions:    make(map[uuid.UUID]*world.Record),
		playerFiles: make(map[string]*options.PlayerFile),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on SaveSession
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// AddPlayerFile registers a player file under filename
func (m *MockStorage) AddPlayerFile(filename string, pf *options.PlayerFile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playerFiles[filename] = pf
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSession(ctx context.Context, rec *world.Record) error {
	if rec == nil {
		return errors.New("session record cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.sessions[rec.ID] = rec
	return nil
}

func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (*world.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return rec, nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// SessionCount returns the number of stored sessions
func (m *MockStorage) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MockStorage) ListPlayerFiles(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.playerFiles))
	for filename, pf := range m.playerFiles {
		out[pf.Name] = filename
	}
	return out, nil
}

func (m *MockStorage) GetPlayerFile(ctx context.Context, filename string) (*options.PlayerFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pf, ok := m.playerFiles[filename]
	if !ok {
		return nil, fmt.Errorf("player file not found: %s", filename)
	}
	return pf, nil
}
