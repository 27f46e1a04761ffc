package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/brotato-world/pkg/world"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration cases against a running brotato-world API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           GenerationTimeout,
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestCase loads a test case from a JSON file
func LoadTestCase(filename string) (TestCase, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestCase{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var tc TestCase
	if err := json.Unmarshal(content, &tc); err != nil {
		return TestCase{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return tc, nil
}

// LoadTestCaseWithExpansion loads a case and expands it if it's a sequence
func LoadTestCaseWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	tc, err := LoadTestCase(filename)
	if err != nil {
		return nil, err
	}

	if !tc.IsSequence() {
		return []TestJob{{
			Name:     tc.Name,
			Case:     tc,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range tc.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestCaseWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, tc.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// generateBody is what the runner posts; it mirrors the API's request.
type generateBody struct {
	PlayerName string          `json:"player_name,omitempty"`
	Seed       *uint64         `json:"seed,omitempty"`
	Options    json.RawMessage `json:"options,omitempty"`
	PlayerFile string          `json:"player_file,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// RunCase generates one world and checks the stored session.
func (r *Runner) RunCase(ctx context.Context, tc TestCase) TestRunResult {
	start := time.Now()
	result := TestRunResult{Job: TestJob{Name: tc.Name, Case: tc}}

	rec, err := r.generate(ctx, tc)
	if err == nil && rec != nil {
		result.SessionID = rec.ID
		err = r.checkExpectations(tc.Expect, rec)
	}

	result.Error = err
	result.Duration = time.Since(start)
	r.logf("%s: %v (%v)", tc.Name, statusText(err), result.Duration)
	return result
}

// generate posts the case and returns the stored record. It returns nil, nil
// when the case expects an error response and got it.
func (r *Runner) generate(ctx context.Context, tc TestCase) (*world.Record, error) {
	body := generateBody{
		PlayerName: tc.PlayerName,
		Seed:       tc.Seed,
		Options:    tc.Options,
		PlayerFile: tc.PlayerFile,
	}

	status, data, err := postGenerate(ctx, r.Client, r.BaseURL, body, !tc.Async)
	if err != nil {
		return nil, err
	}

	want := tc.Expect.Status
	if want == 0 {
		want = http.StatusCreated
		if tc.Async {
			want = http.StatusAccepted
		}
	}
	if status != want {
		return nil, fmt.Errorf("expected status %d, got %d: %s", want, status, string(data))
	}

	if status >= http.StatusBadRequest {
		var eb errorBody
		if err := json.Unmarshal(data, &eb); err != nil {
			return nil, fmt.Errorf("failed to parse error response: %w", err)
		}
		if !strings.Contains(eb.Error, tc.Expect.ErrorContains) {
			return nil, fmt.Errorf("expected error containing %q, got %q", tc.Expect.ErrorContains, eb.Error)
		}
		return nil, nil
	}

	if !tc.Async {
		var rec world.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse record: %w", err)
		}
		return &rec, nil
	}

	var accepted AsyncGenerateResponse
	if err := json.Unmarshal(data, &accepted); err != nil {
		return nil, fmt.Errorf("failed to parse generate response: %w", err)
	}
	id, err := uuid.Parse(accepted.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", accepted.SessionID, err)
	}
	return WaitForSession(ctx, r.Client, r.BaseURL, id, r.Timeout)
}

// checkExpectations validates the stored record against the case
func (r *Runner) checkExpectations(exp Expectations, rec *world.Record) error {
	if exp.LocationCount != nil && rec.LocationCount != *exp.LocationCount {
		return fmt.Errorf("expected %d locations, got %d", *exp.LocationCount, rec.LocationCount)
	}

	if len(rec.ItemPool) != rec.LocationCount {
		return fmt.Errorf("item pool has %d items for %d locations", len(rec.ItemPool), rec.LocationCount)
	}

	if exp.StartingCharacters != nil && len(rec.StartingCharacters) != *exp.StartingCharacters {
		return fmt.Errorf("expected %d starting characters, got %v", *exp.StartingCharacters, rec.StartingCharacters)
	}

	if exp.Completion != nil && rec.Completion != *exp.Completion {
		return fmt.Errorf("expected completion %q, got %q", *exp.Completion, rec.Completion)
	}

	for _, item := range exp.PoolContains {
		if !slices.Contains(rec.ItemPool, item) {
			return fmt.Errorf("expected item pool to contain '%s', but it's missing", item)
		}
	}
	for _, item := range exp.PoolNotContains {
		if slices.Contains(rec.ItemPool, item) {
			return fmt.Errorf("item pool contains unexpected item '%s'", item)
		}
	}

	if exp.WavesWithChecks != nil && !slices.Equal(exp.WavesWithChecks, rec.SlotData.WavesWithChecks) {
		return fmt.Errorf("expected waves_with_checks %v, got %v", exp.WavesWithChecks, rec.SlotData.WavesWithChecks)
	}

	return nil
}

func (r *Runner) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger(format, args...)
	}
}

func statusText(err error) string {
	if err != nil {
		return "FAILED: " + err.Error()
	}
	return "ok"
}
