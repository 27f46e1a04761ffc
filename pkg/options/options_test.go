package options

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	o := Defaults()
	assert.Equal(t, Options{
		NumVictories:           10,
		StartingCharacters:     StartingCharactersDefault,
		NumStartingCharacters:  5,
		WavesPerDrop:           10,
		NumCommonCrateDrops:    25,
		NumLegendaryCrateDrops: 5,
		NumCommonUpgrades:      15,
		NumUncommonUpgrades:    10,
		NumRareUpgrades:        5,
		NumLegendaryUpgrades:   5,
		NumStartingShopSlots:   4,
	}, o)
	assert.NoError(t, o.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr error
		keys    []string
	}{
		{name: "defaults", mutate: func(*Options) {}},
		{name: "upper bounds", mutate: func(o *Options) {
			o.NumVictories = 44
			o.WavesPerDrop = 20
			o.NumCommonCrateDrops = 50
			o.NumStartingShopSlots = 0
		}},
		{name: "zero victories", mutate: func(o *Options) { o.NumVictories = 0 }, wantErr: ErrOutOfRange, keys: []string{"num_victories"}},
		{name: "waves per drop of one", mutate: func(o *Options) { o.WavesPerDrop = 1 }, wantErr: ErrOutOfRange, keys: []string{"waves_per_drop"}},
		{name: "too many shop slots", mutate: func(o *Options) { o.NumStartingShopSlots = 5 }, wantErr: ErrOutOfRange, keys: []string{"num_starting_shop_slots"}},
		{name: "bad choice", mutate: func(o *Options) { o.StartingCharacters = 7 }, wantErr: ErrUnknownChoice, keys: []string{"starting_characters"}},
		{name: "several violations", mutate: func(o *Options) {
			o.NumCommonCrateDrops = -1
			o.NumLegendaryUpgrades = 51
		}, wantErr: ErrOutOfRange, keys: []string{"num_common_crate_drops", "num_legendary_upgrades"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Defaults()
			tt.mutate(&o)
			err := o.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			for _, k := range tt.keys {
				assert.Contains(t, err.Error(), k)
			}
		})
	}
}

func TestWavesWithChecks(t *testing.T) {
	tests := []struct {
		perDrop int
		want    []int
	}{
		{2, []int{2, 4, 6, 8, 10, 12, 14, 16, 18, 20}},
		{7, []int{7, 14}},
		{10, []int{10, 20}},
		{20, []int{20}},
		{0, nil},
	}
	for _, tt := range tests {
		o := Defaults()
		o.WavesPerDrop = tt.perDrop
		assert.Equal(t, tt.want, o.WavesWithChecks(), "waves_per_drop=%d", tt.perDrop)
	}
}

func TestValue(t *testing.T) {
	o := Defaults()
	v, ok := o.Value("num_common_crate_drops")
	assert.True(t, ok)
	assert.Equal(t, 25, v)

	_, ok = o.Value("num_shop_items")
	assert.False(t, ok)
}

func TestParseStartingCharacters(t *testing.T) {
	tests := []struct {
		in      string
		want    StartingCharacters
		wantErr bool
	}{
		{in: "default_characters", want: StartingCharactersDefault},
		{in: "Random_Characters", want: StartingCharactersRandom},
		{in: "RANDOM_CHARACTERS", want: StartingCharactersRandom},
		{in: "1", want: StartingCharactersRandom},
		{in: "shuffle", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStartingCharacters(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnknownChoice))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStartingCharactersJSON(t *testing.T) {
	var o Options
	require.NoError(t, json.Unmarshal([]byte(`{"starting_characters":"random_characters"}`), &o))
	assert.Equal(t, StartingCharactersRandom, o.StartingCharacters)

	require.NoError(t, json.Unmarshal([]byte(`{"starting_characters":0}`), &o))
	assert.Equal(t, StartingCharactersDefault, o.StartingCharacters)

	assert.Error(t, json.Unmarshal([]byte(`{"starting_characters":true}`), &o))
}

func TestLoadFromReader(t *testing.T) {
	const doc = `
name: Potato
game: Brotato
Brotato:
  num_victories: 3
  starting_characters: random_characters
  num_starting_characters: 2
  waves_per_drop: 5
`
	pf, err := LoadFromReader(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "Potato", pf.Name)
	assert.Equal(t, 3, pf.Options.NumVictories)
	assert.Equal(t, StartingCharactersRandom, pf.Options.StartingCharacters)
	assert.Equal(t, 2, pf.Options.NumStartingCharacters)
	assert.Equal(t, 5, pf.Options.WavesPerDrop)
	// Unset options keep their defaults.
	assert.Equal(t, 25, pf.Options.NumCommonCrateDrops)
	assert.Equal(t, 4, pf.Options.NumStartingShopSlots)
}

func TestLoadFromReaderErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "unknown option", doc: "name: A\ngame: Brotato\nBrotato:\n  num_shop_items: 3\n", want: "num_shop_items"},
		{name: "out of range", doc: "name: A\ngame: Brotato\nBrotato:\n  waves_per_drop: 1\n", want: "waves_per_drop"},
		{name: "wrong game", doc: "name: A\ngame: Factorio\n", want: "Factorio"},
		{name: "missing name", doc: "game: Brotato\n", want: "name is required"},
		{name: "bad choice", doc: "name: A\ngame: Brotato\nBrotato:\n  starting_characters: everyone\n", want: "everyone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromReader(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPlayerFileMarshalRoundTrip(t *testing.T) {
	pf := &PlayerFile{Name: "Potato", Game: GameName, Options: Defaults()}
	pf.Options.StartingCharacters = StartingCharactersRandom

	data, err := pf.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "starting_characters: random_characters")

	back, err := LoadFromReader(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, pf.Options, back.Options)
}

func TestDefinitionsMatchDefaults(t *testing.T) {
	o := Defaults()
	for _, d := range Definitions() {
		v, ok := o.Value(d.Key)
		require.True(t, ok, d.Key)
		assert.Equal(t, d.Default, v, d.Key)
		assert.LessOrEqual(t, d.Min, d.Default, d.Key)
		assert.GreaterOrEqual(t, d.Max, d.Default, d.Key)
	}
}

func TestDecodeJSON(t *testing.T) {
	o, err := DecodeJSON([]byte(`{"num_victories": 3, "starting_characters": "random_characters"}`))
	require.NoError(t, err)
	assert.Equal(t, 3, o.NumVictories)
	assert.Equal(t, StartingCharactersRandom, o.StartingCharacters)
	assert.Equal(t, Defaults().WavesPerDrop, o.WavesPerDrop)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "misspelled key", body: `{"num_victory": 3}`, wantErr: "num_victory"},
		{name: "second misspelled key", body: `{"num_victories": 3, "waves_per_drops": 2}`, wantErr: "waves_per_drops"},
		{name: "out of range", body: `{"waves_per_drop": 1}`, wantErr: "out of range"},
		{name: "not an object", body: `[1]`, wantErr: "decode json"},
		{name: "trailing data", body: `{} {}`, wantErr: "trailing data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON([]byte(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
