// Package world wires the Brotato catalogs, options and rules into one
// player's generation run, following the host lifecycle:
// GenerateEarly, CreateRegions, CreateItems, SetRules, FillSlotData.
package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/jwebster45206/brotato-world/pkg/catalog"
	"github.com/jwebster45206/brotato-world/pkg/options"
	"github.com/jwebster45206/brotato-world/pkg/rules"
)

// Game is the name the host registers this world under.
const Game = "Brotato"

// ErrItemPoolOverflow means the options ask for more explicit items than
// there are locations to hold them.
var ErrItemPoolOverflow = errors.New("item pool larger than location count")

// SlotData is sent to the game client when it connects.
type SlotData struct {
	WavesWithChecks         []int `json:"waves_with_checks"`
	NumWinsNeeded           int   `json:"num_wins_needed"`
	NumConsumables          int   `json:"num_consumables"`
	NumStartingShopSlots    int   `json:"num_starting_shop_slots"`
	NumLegendaryConsumables int   `json:"num_legendary_consumables"`
}

// World is one player's Brotato world for one generation run.
type World struct {
	Player  int
	Options options.Options

	rng     *rand.Rand
	logger  *slog.Logger
	session *Session

	wavesWithChecks    []int
	startingCharacters []string
}

// New creates a world. The seed drives every random choice in the run.
func New(player int, opts options.Options, seed uint64, logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.Default()
	}
	return &World{
		Player:  player,
		Options: opts,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
		logger:  logger.With("game", Game, "player", player),
		session: NewSession(player),
	}
}

func (w *World) Session() *Session {
	return w.session
}

// WavesWithChecks is available after GenerateEarly.
func (w *World) WavesWithChecks() []int {
	return w.wavesWithChecks
}

// StartingCharacters is available after GenerateEarly.
func (w *World) StartingCharacters() []string {
	return w.startingCharacters
}

// CreateItem builds a player item from the catalog.
func (w *World) CreateItem(name string) (Item, error) {
	def, err := catalog.ItemByName(name)
	if err != nil {
		return Item{}, err
	}
	return Item{Name: def.Name, Classification: def.Classification, Code: def.Code, Player: w.Player}, nil
}

// FillerItemName picks a filler item uniformly at random.
func (w *World) FillerItemName() string {
	filler := catalog.Items().Filler()
	return filler[w.rng.IntN(len(filler))]
}

// GenerateEarly derives the wave checks and the starting roster.
func (w *World) GenerateEarly() error {
	w.wavesWithChecks = w.Options.WavesWithChecks()

	switch w.Options.StartingCharacters {
	case options.StartingCharactersDefault:
		w.startingCharacters = slices.Clone(catalog.DefaultCharacters)
	case options.StartingCharactersRandom:
		k := w.Options.NumStartingCharacters
		if k < 1 || k > catalog.NumCharacters {
			return fmt.Errorf("num_starting_characters %d outside 1..%d", k, catalog.NumCharacters)
		}
		picked := w.rng.Perm(catalog.NumCharacters)[:k]
		slices.Sort(picked)
		w.startingCharacters = make([]string, 0, k)
		for _, i := range picked {
			w.startingCharacters = append(w.startingCharacters, catalog.Characters[i])
		}
	default:
		return fmt.Errorf("%w: starting_characters %d", options.ErrUnknownChoice, w.Options.StartingCharacters)
	}

	w.logger.Debug("Generated early settings",
		"waves_with_checks", w.wavesWithChecks,
		"starting_characters", w.startingCharacters)
	return nil
}

// CreateRegions builds the region graph for this player.
func (w *World) CreateRegions() error {
	err := BuildRegions(w.session, RegionConfig{
		NumCommonCrateDrops:    w.Options.NumCommonCrateDrops,
		NumLegendaryCrateDrops: w.Options.NumLegendaryCrateDrops,
		WavesWithChecks:        w.wavesWithChecks,
		Characters:             catalog.Characters,
	})
	if err != nil {
		return fmt.Errorf("failed to create regions: %w", err)
	}
	w.logger.Debug("Created regions",
		"regions", len(w.session.Regions()),
		"locations", len(w.session.Locations()))
	return nil
}

// TotalLocations is the number of addressable locations the options produce.
func (w *World) TotalLocations() int {
	return w.Options.NumCommonCrateDrops +
		w.Options.NumLegendaryCrateDrops +
		len(w.wavesWithChecks)*catalog.NumCharacters
}

// CreateItems precollects the starting characters, builds an item pool sized
// exactly to the location count and locks a Run Won item into every run-won
// location.
func (w *World) CreateItems() error {
	starting := make(map[string]bool, len(w.startingCharacters))
	for _, c := range w.startingCharacters {
		item, err := w.CreateItem(c)
		if err != nil {
			return err
		}
		w.session.PushPrecollected(item)
		starting[c] = true
	}

	var names []string
	for _, c := range catalog.Characters {
		if !starting[c] {
			names = append(names, c)
		}
	}

	// TODO: crate drops can roll any rarity in game; pick a ratio instead of always Common.
	names = appendN(names, catalog.ItemCommonItem, w.Options.NumCommonCrateDrops)
	names = appendN(names, catalog.ItemLegendaryItem, w.Options.NumLegendaryCrateDrops)

	names = appendN(names, catalog.ItemCommonUpgrade, w.Options.NumCommonUpgrades)
	names = appendN(names, catalog.ItemUncommonUpgrade, w.Options.NumUncommonUpgrades)
	names = appendN(names, catalog.ItemRareUpgrade, w.Options.NumRareUpgrades)
	names = appendN(names, catalog.ItemLegendaryUpgrade, w.Options.NumLegendaryUpgrades)

	names = appendN(names, catalog.ItemShopSlot, max(catalog.MaxShopSlots-w.Options.NumStartingShopSlots, 0))

	total := w.TotalLocations()
	if placeable := len(w.session.PlaceableLocations()); placeable != total {
		return fmt.Errorf("region graph has %d locations, options call for %d", placeable, total)
	}

	deficit := total - len(names)
	if deficit < 0 {
		return fmt.Errorf("%w: %d items for %d locations", ErrItemPoolOverflow, len(names), total)
	}
	for range deficit {
		names = append(names, w.FillerItemName())
	}

	pool := make([]Item, 0, len(names))
	for _, n := range names {
		item, err := w.CreateItem(n)
		if err != nil {
			return err
		}
		pool = append(pool, item)
	}
	w.session.ItemPool = pool

	for _, c := range catalog.Characters {
		loc, err := w.session.Location(catalog.RunCompleteLocation(c))
		if err != nil {
			return err
		}
		runWon, err := w.CreateItem(catalog.ItemRunComplete)
		if err != nil {
			return err
		}
		if err := loc.PlaceLockedItem(runWon); err != nil {
			return err
		}
	}

	w.logger.Debug("Created items",
		"pool", len(pool),
		"filler", deficit,
		"precollected", len(w.session.Precollected))
	return nil
}

// SetRules installs the completion condition.
func (w *World) SetRules() {
	w.session.Completion = rules.RequiresRunWins(w.Options.NumVictories)
}

// FillSlotData returns the settings the client needs.
func (w *World) FillSlotData() SlotData {
	return SlotData{
		WavesWithChecks:         slices.Clone(w.wavesWithChecks),
		NumWinsNeeded:           w.Options.NumVictories,
		NumConsumables:          w.Options.NumCommonCrateDrops,
		NumStartingShopSlots:    w.Options.NumStartingShopSlots,
		NumLegendaryConsumables: w.Options.NumLegendaryCrateDrops,
	}
}

// Generate validates opts and runs the lifecycle hooks in host order.
func Generate(ctx context.Context, player int, opts options.Options, seed uint64, logger *slog.Logger) (*World, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	w := New(player, opts, seed, logger)
	steps := []struct {
		name string
		run  func() error
	}{
		{"generate_early", w.GenerateEarly},
		{"create_regions", w.CreateRegions},
		{"create_items", w.CreateItems},
		{"set_rules", func() error { w.SetRules(); return nil }},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := step.run(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.name, err)
		}
	}

	w.logger.Info("Generated world",
		"seed", seed,
		"locations", w.TotalLocations(),
		"starting_characters", len(w.startingCharacters))
	return w, nil
}

func appendN(names []string, name string, n int) []string {
	for range n {
		names = append(names, name)
	}
	return names
}
