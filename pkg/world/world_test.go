package world

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/brotato-world/pkg/catalog"
	"github.com/jwebster45206/brotato-world/pkg/options"
	"github.com/jwebster45206/brotato-world/pkg/state"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func generate(t *testing.T, opts options.Options, seed uint64) *World {
	t.Helper()
	w, err := Generate(context.Background(), 1, opts, seed, testLogger())
	require.NoError(t, err)
	return w
}

func poolNames(w *World) []string {
	var names []string
	for _, it := range w.Session().ItemPool {
		names = append(names, it.Name)
	}
	return names
}

func TestGenerate_DefaultStartingCharacters(t *testing.T) {
	w := generate(t, options.Defaults(), 1)

	var precollected []string
	for _, it := range w.Session().Precollected {
		precollected = append(precollected, it.Name)
	}
	assert.ElementsMatch(t, catalog.DefaultCharacters, precollected)

	pool := poolNames(w)
	for _, c := range catalog.DefaultCharacters {
		assert.NotContains(t, pool, c)
	}
	for _, c := range catalog.UnlockableCharacters {
		assert.Contains(t, pool, c)
	}
}

func TestGenerate_RandomStartingCharacters(t *testing.T) {
	for _, k := range []int{1, 5, 15, catalog.NumCharacters} {
		opts := options.Defaults()
		opts.StartingCharacters = options.StartingCharactersRandom
		opts.NumStartingCharacters = k
		opts.NumCommonUpgrades = 0
		opts.NumUncommonUpgrades = 0

		w := generate(t, opts, uint64(k))

		starting := w.StartingCharacters()
		assert.Len(t, starting, k)
		assert.Len(t, w.Session().Precollected, k)

		distinct := make(map[string]bool)
		for _, c := range starting {
			assert.True(t, catalog.IsCharacter(c), c)
			distinct[c] = true
		}
		assert.Len(t, distinct, k)

		inPool := 0
		for _, name := range poolNames(w) {
			if catalog.IsCharacter(name) {
				assert.False(t, distinct[name], "starting character %s in pool", name)
				inPool++
			}
		}
		assert.Equal(t, catalog.NumCharacters-k, inPool)
	}
}

func TestGenerate_SameSeedSameResult(t *testing.T) {
	opts := options.Defaults()
	opts.StartingCharacters = options.StartingCharactersRandom

	a := generate(t, opts, 42)
	b := generate(t, opts, 42)
	assert.Equal(t, a.StartingCharacters(), b.StartingCharacters())
	assert.Equal(t, poolNames(a), poolNames(b))
}

func TestGenerate_PoolMatchesLocations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*options.Options)
	}{
		{name: "defaults", mutate: func(*options.Options) {}},
		{name: "frequent checks", mutate: func(o *options.Options) { o.WavesPerDrop = 2 }},
		{name: "no crates", mutate: func(o *options.Options) {
			o.NumCommonCrateDrops = 0
			o.NumLegendaryCrateDrops = 0
		}},
		{name: "missing shop slots", mutate: func(o *options.Options) { o.NumStartingShopSlots = 0 }},
		{name: "odd interval", mutate: func(o *options.Options) { o.WavesPerDrop = 7 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options.Defaults()
			tt.mutate(&opts)
			w := generate(t, opts, 7)

			expected := opts.NumCommonCrateDrops + opts.NumLegendaryCrateDrops +
				len(opts.WavesWithChecks())*catalog.NumCharacters
			assert.Len(t, w.Session().ItemPool, expected)
			assert.Len(t, w.Session().PlaceableLocations(), expected)
		})
	}
}

func TestGenerate_ShopSlotItems(t *testing.T) {
	opts := options.Defaults()
	opts.NumStartingShopSlots = 1
	w := generate(t, opts, 3)

	count := 0
	for _, n := range poolNames(w) {
		if n == catalog.ItemShopSlot {
			count++
		}
	}
	assert.Equal(t, catalog.MaxShopSlots-1, count)
}

func TestGenerate_RunWonIsLocked(t *testing.T) {
	w := generate(t, options.Defaults(), 9)

	for _, c := range catalog.Characters {
		loc, err := w.Session().Location(catalog.RunCompleteLocation(c))
		require.NoError(t, err)
		assert.True(t, loc.IsEvent())
		assert.True(t, loc.Locked)
		require.NotNil(t, loc.Item)
		assert.Equal(t, catalog.ItemRunComplete, loc.Item.Name)
	}
	assert.NotContains(t, poolNames(w), catalog.ItemRunComplete)
}

func TestGenerate_PoolOverflow(t *testing.T) {
	opts := options.Defaults()
	opts.WavesPerDrop = 20
	opts.NumCommonCrateDrops = 0
	opts.NumLegendaryCrateDrops = 0
	opts.NumCommonUpgrades = 50
	opts.NumUncommonUpgrades = 50

	_, err := Generate(context.Background(), 1, opts, 1, testLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrItemPoolOverflow))
	assert.Contains(t, err.Error(), "create_items")
}

func TestGenerate_RejectsInvalidOptions(t *testing.T) {
	opts := options.Defaults()
	opts.WavesPerDrop = 1

	_, err := Generate(context.Background(), 1, opts, 1, testLogger())
	assert.True(t, errors.Is(err, options.ErrOutOfRange))
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, 1, options.Defaults(), 1, testLogger())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFillerIsFromFillerSet(t *testing.T) {
	w := generate(t, options.Defaults(), 11)
	filler := catalog.Items().Filler()
	for _, it := range w.Session().ItemPool {
		if it.Classification == catalog.ClassificationFiller {
			assert.True(t, slices.Contains(filler, it.Name), it.Name)
		}
	}
}

func TestCreateItem(t *testing.T) {
	w := New(3, options.Defaults(), 1, testLogger())
	it, err := w.CreateItem("Knight")
	require.NoError(t, err)
	assert.Equal(t, 3, it.Player)
	assert.True(t, it.IsProgression())

	_, err = w.CreateItem("Knight Item")
	assert.True(t, errors.Is(err, catalog.ErrUnknownItem))
}

func TestSetRulesAndCompletion(t *testing.T) {
	opts := options.Defaults()
	opts.NumVictories = 3
	w := generate(t, opts, 5)

	cs := state.NewCollectionState()
	for n := 0; n < 3; n++ {
		assert.False(t, w.Session().IsBeatableWith(cs))
		cs.Collect(catalog.ItemRunComplete)
	}
	assert.True(t, w.Session().IsBeatableWith(cs))

	// Five starting characters each hold a locked Run Won.
	assert.True(t, w.Session().IsBeatable())

	opts.NumVictories = 6
	w = generate(t, opts, 5)
	assert.False(t, w.Session().IsBeatable())
}

func TestFillSlotData(t *testing.T) {
	w := generate(t, options.Defaults(), 1)
	assert.Equal(t, SlotData{
		WavesWithChecks:         []int{10, 20},
		NumWinsNeeded:           10,
		NumConsumables:          25,
		NumStartingShopSlots:    4,
		NumLegendaryConsumables: 5,
	}, w.FillSlotData())
}

func TestEndToEndDefaultScenario(t *testing.T) {
	opts := options.Defaults()
	opts.NumCommonCrateDrops = 25
	opts.NumLegendaryCrateDrops = 5
	opts.WavesPerDrop = 10
	w := generate(t, opts, 2024)
	s := w.Session()

	crates, err := s.Region(LootCratesRegion)
	require.NoError(t, err)
	assert.Len(t, crates.Locations, 30)

	for _, c := range catalog.UnlockableCharacters {
		r, err := s.Region(CharacterRegion(c))
		require.NoError(t, err)
		assert.Len(t, r.Locations, 3, c)

		waves := 0
		for _, loc := range r.Locations {
			if !loc.IsEvent() {
				waves++
			}
		}
		assert.Equal(t, 2, waves, c)
	}

	expected := 25 + 5 + 2*catalog.NumCharacters
	assert.Len(t, s.PlaceableLocations(), expected)
	assert.Len(t, s.ItemPool, expected)
}

func TestRecord(t *testing.T) {
	w := generate(t, options.Defaults(), 77)
	id := uuid.New()
	rec := w.Record(id, "Potato", 77)

	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "Potato", rec.PlayerName)
	assert.Equal(t, uint64(77), rec.Seed)
	assert.Len(t, rec.LockedPlacements, catalog.NumCharacters)
	assert.Equal(t, catalog.ItemRunComplete, rec.LockedPlacements[catalog.RunCompleteLocation("Mage")])
	assert.Len(t, rec.ItemPool, rec.LocationCount)
	assert.Equal(t, "10 run wins", rec.Completion)
}

func TestDataPackage(t *testing.T) {
	dp := NewDataPackage()
	assert.Equal(t, Game, dp.Game)
	assert.Equal(t, catalog.BaseID+20, dp.ItemNameToID[catalog.ItemRunComplete])
	assert.NotContains(t, dp.LocationNameToID, catalog.RunCompleteLocation("Mage"))
	assert.Contains(t, dp.ItemNameGroups, catalog.GroupCharacters)
	assert.Contains(t, dp.LocationNameGroups, catalog.GroupRunWin)
}
