package runner

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TestCase defines one generation against a running API and what the stored
// session must look like afterwards.
// Can either be a regular case, or a suite that references other Cases
type TestCase struct {
	Name       string          `json:"name"`
	PlayerName string          `json:"player_name,omitempty"`
	Seed       *uint64         `json:"seed,omitempty"`
	Options    json.RawMessage `json:"options,omitempty"`
	PlayerFile string          `json:"player_file,omitempty"`
	Async      bool            `json:"async,omitempty"` // Queue the request and poll the session
	Expect     Expectations    `json:"expect"`
	Cases      []string        `json:"cases,omitempty"` // Used for suite files (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (tc *TestCase) IsSequence() bool {
	return len(tc.Cases) > 0
}

// Expectations defines what to check after a generation
type Expectations struct {
	Status int `json:"status,omitempty"` // HTTP status of POST /v1/generate; defaults to 201 or 202

	LocationCount      *int     `json:"location_count,omitempty"`
	StartingCharacters *int     `json:"starting_characters,omitempty"` // Count only
	Completion         *string  `json:"completion,omitempty"`
	PoolContains       []string `json:"pool_contains,omitempty"`
	PoolNotContains    []string `json:"pool_not_contains,omitempty"`
	WavesWithChecks    []int    `json:"waves_with_checks,omitempty"`

	ErrorContains string `json:"error_contains,omitempty"`
}

// TestJob represents a test case to be executed
type TestJob struct {
	Name     string
	Case     TestCase
	CaseFile string
}

// TestRunResult contains the results of running one case
type TestRunResult struct {
	Job       TestJob
	Error     error
	Duration  time.Duration
	SessionID uuid.UUID // Session created for this case, if any
}
