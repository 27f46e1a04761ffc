package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/brotato-world/pkg/catalog"
	"github.com/jwebster45206/brotato-world/pkg/options"
	"github.com/jwebster45206/brotato-world/pkg/world"
)

func testWorld(t *testing.T) (*world.World, *world.Record) {
	t.Helper()
	w, err := world.Generate(context.Background(), 1, options.Defaults(), 5, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return w, w.Record(uuid.New(), "Potato", 5)
}

func TestWriteRegions(t *testing.T) {
	w, _ := testWorld(t)

	all := writeRegions(w, 80, false)
	assert.Contains(t, all, world.MenuRegion)
	assert.Contains(t, all, world.LootCratesRegion)
	for _, c := range catalog.Characters {
		assert.Contains(t, all, world.CharacterRegion(c))
	}
	assert.Contains(t, all, "Run Won (Mage) (event)")

	reachable := writeRegions(w, 80, true)
	for _, c := range catalog.DefaultCharacters {
		assert.Contains(t, reachable, world.CharacterRegion(c))
	}
	for _, c := range catalog.UnlockableCharacters {
		assert.NotContains(t, reachable, world.CharacterRegion(c)+"\n")
	}
	assert.Less(t, len(reachable), len(all))
}

func TestWriteMetadata(t *testing.T) {
	_, rec := testWorld(t)

	out := writeMetadata(rec, 40)
	assert.Contains(t, out, rec.ID.String()[:8])
	assert.Contains(t, out, "Potato")
	assert.Contains(t, out, "10 run wins")
	assert.Contains(t, out, "Mage")
}

func TestSlotDataJSON(t *testing.T) {
	_, rec := testWorld(t)

	data, err := slotDataJSON(rec)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(data, "{"))
	assert.Contains(t, data, "num_wins_needed")
}

func TestPlayerModalFlow(t *testing.T) {
	ui := NewConsoleUI(&ConsoleConfig{APIBaseURL: "http://localhost:8080"}, nil)

	model, _ := ui.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	ui = model.(ConsoleUI)
	assert.Contains(t, ui.View(), "Loading Players")

	model, _ = ui.Update(playersLoadedMsg{
		players:   []string{"Potato", "Tater"},
		playerMap: map[string]string{"Potato": "potato.yaml", "Tater": "tater.yaml"},
	})
	ui = model.(ConsoleUI)
	assert.Contains(t, ui.View(), "Select a Player")

	model, _ = ui.Update(tea.KeyMsg{Type: tea.KeyDown})
	ui = model.(ConsoleUI)
	assert.Equal(t, 1, ui.selectedPlayer)

	model, cmd := ui.Update(tea.KeyMsg{Type: tea.KeyEnter})
	ui = model.(ConsoleUI)
	assert.True(t, ui.generating)
	assert.NotNil(t, cmd)

	w, rec := testWorld(t)
	model, _ = ui.Update(sessionGeneratedMsg{record: rec, world: w})
	ui = model.(ConsoleUI)
	assert.False(t, ui.showPlayerModal)
	assert.True(t, ui.ready)
	assert.Contains(t, ui.View(), "REGIONS")

	model, _ = ui.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	ui = model.(ConsoleUI)
	assert.True(t, ui.onlyReachable)

	model, _ = ui.Update(tea.KeyMsg{Type: tea.KeyEsc})
	ui = model.(ConsoleUI)
	assert.Contains(t, ui.View(), "Quit?")

	model, _ = ui.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	ui = model.(ConsoleUI)
	assert.False(t, ui.showQuitModal)
	assert.False(t, ui.showPlayerModal)
}

func TestPlayerModalError(t *testing.T) {
	ui := NewConsoleUI(&ConsoleConfig{}, nil)
	model, _ := ui.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	model, _ = model.Update(playersLoadedMsg{err: errors.New("connection refused")})
	ui = model.(ConsoleUI)

	assert.Contains(t, ui.View(), "connection refused")

	// Navigation is ignored while an error is shown.
	model, cmd := ui.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, model.(ConsoleUI).generating)
}
