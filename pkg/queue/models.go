package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/brotato-world/pkg/options"
)

// GenerationRequest asks a worker to generate one world and store it under
// SessionID.
type GenerationRequest struct {
	RequestID  string    `json:"request_id"`
	SessionID  uuid.UUID `json:"session_id"`
	PlayerName string    `json:"player_name"`
	Seed       uint64    `json:"seed"`

	// Options is nil when the worker should load the player's file from the
	// data directory instead.
	Options    *options.Options `json:"options,omitempty"`
	PlayerFile string           `json:"player_file,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewGenerationRequest stamps a request with fresh ids.
func NewGenerationRequest(playerName string, seed uint64, opts *options.Options) *GenerationRequest {
	return &GenerationRequest{
		RequestID:  uuid.NewString(),
		SessionID:  uuid.New(),
		PlayerName: playerName,
		Seed:       seed,
		Options:    opts,
		EnqueuedAt: time.Now().UTC(),
	}
}

// ToJSON converts the request to JSON bytes for Redis
func (r *GenerationRequest) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*GenerationRequest, error) {
	var req GenerationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
