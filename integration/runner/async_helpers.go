package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/brotato-world/pkg/world"
)

const (
	// PollInterval is how often to check for a stored session
	PollInterval = 250 * time.Millisecond
	// GenerationTimeout is max time to wait for a queued generation
	GenerationTimeout = 30 * time.Second
)

// AsyncGenerateResponse is the response from the queued generate endpoint
type AsyncGenerateResponse struct {
	SessionID string `json:"session_id"`
	RequestID string `json:"request_id"`
	Seed      uint64 `json:"seed"`
	Status    string `json:"status"`
}

// postGenerate sends body to /v1/generate and returns the status and raw
// response body.
func postGenerate(ctx context.Context, client *http.Client, baseURL string, body any, wait bool) (int, []byte, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/generate", baseURL)
	if wait {
		url += "?wait=true"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send generate request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read generate response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// GetSession retrieves a stored session. It returns nil, nil while the
// session does not exist yet.
func GetSession(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID) (*world.Record, error) {
	url := fmt.Sprintf("%s/v1/sessions/%s", baseURL, id.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create session request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("session endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var rec world.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &rec, nil
}

// WaitForSession polls until the worker has stored the session or timeout
// passes.
func WaitForSession(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID, timeout time.Duration) (*world.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		rec, err := GetSession(ctx, client, baseURL, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timeout waiting for session %s: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}
