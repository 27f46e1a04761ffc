package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"github.com/jwebster45206/brotato-world/pkg/world"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// decodeResponse reads body into out when the status matches, or turns the
// API's error payload into an error.
func decodeResponse(resp *http.Response, want int, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("request failed: %s", errorResp.Error)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// listPlayers returns player names in order plus the name->file map.
func listPlayers(client *http.Client, baseURL string) ([]string, map[string]string, error) {
	resp, err := client.Get(baseURL + "/v1/players")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var playerMap map[string]string
	if err := decodeResponse(resp, http.StatusOK, &playerMap); err != nil {
		return nil, nil, err
	}

	names := make([]string, 0, len(playerMap))
	for name := range playerMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, playerMap, nil
}

type generateRequest struct {
	PlayerFile string `json:"player_file"`
}

// generateSession asks the API to generate synchronously from a player file.
func generateSession(client *http.Client, baseURL, playerFile string) (*world.Record, error) {
	jsonData, err := json.Marshal(generateRequest{PlayerFile: playerFile})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/generate?wait=true", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var rec world.Record
	if err := decodeResponse(resp, http.StatusCreated, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// rebuildWorld regenerates the world for rec locally. Generation is
// deterministic in the options and seed, so the result matches the server's.
func rebuildWorld(rec *world.Record) (*world.World, error) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := world.Generate(context.Background(), rec.Player, rec.Options, rec.Seed, quiet)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild world: %w", err)
	}

	local := w.Record(rec.ID, rec.PlayerName, rec.Seed)
	if len(local.ItemPool) != len(rec.ItemPool) {
		return nil, fmt.Errorf("rebuilt world has %d items, session has %d", len(local.ItemPool), len(rec.ItemPool))
	}
	for i := range local.ItemPool {
		if local.ItemPool[i] != rec.ItemPool[i] {
			return nil, fmt.Errorf("rebuilt world differs from session at item %d", i)
		}
	}
	return w, nil
}
