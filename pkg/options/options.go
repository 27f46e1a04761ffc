// Package options declares the player-facing settings of the Brotato world:
// their bounds, defaults and the YAML player file they are read from.
package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/brotato-world/pkg/catalog"
)

var (
	ErrOutOfRange    = errors.New("option value out of range")
	ErrUnknownChoice = errors.New("unknown option choice")
)

// StartingCharacters selects how the starting roster is picked.
type StartingCharacters int

const (
	StartingCharactersDefault StartingCharacters = 0
	StartingCharactersRandom  StartingCharacters = 1
)

var startingCharacterChoices = []string{"default_characters", "random_characters"}

func (s StartingCharacters) String() string {
	if int(s) >= 0 && int(s) < len(startingCharacterChoices) {
		return startingCharacterChoices[s]
	}
	return strconv.Itoa(int(s))
}

// ParseStartingCharacters accepts a choice name (any case) or its number.
func ParseStartingCharacters(s string) (StartingCharacters, error) {
	fold := cases.Fold()
	want := fold.String(s)
	for i, name := range startingCharacterChoices {
		if fold.String(name) == want {
			return StartingCharacters(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return StartingCharacters(n), nil
	}
	return 0, fmt.Errorf("%w: starting_characters %q; valid values: %v", ErrUnknownChoice, s, startingCharacterChoices)
}

func (s StartingCharacters) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func (s *StartingCharacters) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseStartingCharacters(node.Value)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// UnmarshalJSON accepts either the numeric value or the choice name.
func (s *StartingCharacters) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = StartingCharacters(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("starting_characters must be a number or a string: %w", err)
	}
	v, err := ParseStartingCharacters(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Options is the full set of per-player settings. Read-only once generation starts.
type Options struct {
	NumVictories           int                `yaml:"num_victories" json:"num_victories"`
	StartingCharacters     StartingCharacters `yaml:"starting_characters" json:"starting_characters"`
	NumStartingCharacters  int                `yaml:"num_starting_characters" json:"num_starting_characters"`
	WavesPerDrop           int                `yaml:"waves_per_drop" json:"waves_per_drop"`
	NumCommonCrateDrops    int                `yaml:"num_common_crate_drops" json:"num_common_crate_drops"`
	NumLegendaryCrateDrops int                `yaml:"num_legendary_crate_drops" json:"num_legendary_crate_drops"`
	NumCommonUpgrades      int                `yaml:"num_common_upgrades" json:"num_common_upgrades"`
	NumUncommonUpgrades    int                `yaml:"num_uncommon_upgrades" json:"num_uncommon_upgrades"`
	NumRareUpgrades        int                `yaml:"num_rare_upgrades" json:"num_rare_upgrades"`
	NumLegendaryUpgrades   int                `yaml:"num_legendary_upgrades" json:"num_legendary_upgrades"`
	NumStartingShopSlots   int                `yaml:"num_starting_shop_slots" json:"num_starting_shop_slots"`
}

// Definition describes one option: its key, bounds and default.
// Choice options list their names in Choices; the value is the index.
type Definition struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"display_name"`
	Doc         string   `json:"doc"`
	Min         int      `json:"min"`
	Max         int      `json:"max"`
	Default     int      `json:"default"`
	Choices     []string `json:"choices,omitempty"`

	value func(*Options) *int
}

// Definitions lists every option in declaration order.
func Definitions() []Definition {
	return []Definition{
		{
			Key: "num_victories", DisplayName: "Number of runs required",
			Doc: "The number of characters you must complete runs with to win.",
			Min: 1, Max: catalog.NumCharacters, Default: 10,
			value: func(o *Options) *int { return &o.NumVictories },
		},
		{
			Key: "starting_characters", DisplayName: "Starting characters",
			Doc: "Start with Well Rounded, Brawler, Crazy, Ranger and Mage, or with a random selection of characters.",
			Min: 0, Max: len(startingCharacterChoices) - 1, Default: int(StartingCharactersDefault),
			Choices: startingCharacterChoices,
			value:   func(o *Options) *int { return (*int)(&o.StartingCharacters) },
		},
		{
			Key: "num_starting_characters", DisplayName: "Number of starting characters",
			Doc: "The number of random characters to start with. Ignored if starting characters is set to default.",
			Min: 1, Max: catalog.NumCharacters, Default: 5,
			value: func(o *Options) *int { return &o.NumStartingCharacters },
		},
		{
			// 1 would be allowed by the game, but releasing that many items at once
			// overflows the client's websocket buffer.
			Key: "waves_per_drop", DisplayName: "Waves per check",
			Doc: "How many waves to win to receive a check. Smaller values mean more frequent checks.",
			Min: 2, Max: catalog.NumWaves, Default: 10,
			value: func(o *Options) *int { return &o.WavesPerDrop },
		},
		{
			Key: "num_common_crate_drops", DisplayName: "Number of normal crate drop locations",
			Doc: "The first <count> normal crate drops will be locations.",
			Min: 0, Max: catalog.MaxNormalCrateDrops, Default: 25,
			value: func(o *Options) *int { return &o.NumCommonCrateDrops },
		},
		{
			Key: "num_legendary_crate_drops", DisplayName: "Number of legendary crate drop locations",
			Doc: "The first <count> legendary crate drops will be locations.",
			Min: 0, Max: catalog.MaxLegendaryCrateDrops, Default: 5,
			value: func(o *Options) *int { return &o.NumLegendaryCrateDrops },
		},
		{
			Key: "num_common_upgrades", DisplayName: "Number of level 1 upgrades",
			Doc: "The number of level 1 upgrades to include in the item pool.",
			Min: 0, Max: catalog.MaxCommonUpgrades, Default: 15,
			value: func(o *Options) *int { return &o.NumCommonUpgrades },
		},
		{
			Key: "num_uncommon_upgrades", DisplayName: "Number of level 2 upgrades",
			Doc: "The number of level 2 upgrades to include in the item pool.",
			Min: 0, Max: catalog.MaxUncommonUpgrades, Default: 10,
			value: func(o *Options) *int { return &o.NumUncommonUpgrades },
		},
		{
			Key: "num_rare_upgrades", DisplayName: "Number of level 3 upgrades",
			Doc: "The number of level 3 upgrades to include in the item pool.",
			Min: 0, Max: catalog.MaxRareUpgrades, Default: 5,
			value: func(o *Options) *int { return &o.NumRareUpgrades },
		},
		{
			Key: "num_legendary_upgrades", DisplayName: "Number of level 4 upgrades",
			Doc: "The number of level 4 upgrades to include in the item pool.",
			Min: 0, Max: catalog.MaxLegendaryUpgrades, Default: 5,
			value: func(o *Options) *int { return &o.NumLegendaryUpgrades },
		},
		{
			Key: "num_starting_shop_slots", DisplayName: "Starting shop slots",
			Doc: "How many slots the shop begins with. Missing slots are added as items.",
			Min: 0, Max: catalog.MaxShopSlots, Default: 4,
			value: func(o *Options) *int { return &o.NumStartingShopSlots },
		},
	}
}

// Defaults returns Options with every field at its declared default.
func Defaults() Options {
	var o Options
	for _, d := range Definitions() {
		*d.value(&o) = d.Default
	}
	return o
}

// Value returns the current value of the option with the given key.
func (o *Options) Value(key string) (int, bool) {
	for _, d := range Definitions() {
		if d.Key == key {
			return *d.value(o), true
		}
	}
	return 0, false
}

// Validate checks every option against its declared bounds and returns all
// violations joined. Cross-field consistency is not checked.
func (o *Options) Validate() error {
	var errs []error
	for _, d := range Definitions() {
		v := *d.value(o)
		if v >= d.Min && v <= d.Max {
			continue
		}
		if len(d.Choices) > 0 {
			errs = append(errs, fmt.Errorf("%w: %s = %d; valid values: %v", ErrUnknownChoice, d.Key, v, d.Choices))
			continue
		}
		errs = append(errs, fmt.Errorf("%w: %s = %d; must be between %d and %d", ErrOutOfRange, d.Key, v, d.Min, d.Max))
	}
	return errors.Join(errs...)
}

// WavesWithChecks returns the waves whose completion is a location:
// every WavesPerDrop-th wave up to the last.
func (o *Options) WavesWithChecks() []int {
	if o.WavesPerDrop <= 0 {
		return nil
	}
	var waves []int
	for w := o.WavesPerDrop; w <= catalog.NumWaves; w += o.WavesPerDrop {
		waves = append(waves, w)
	}
	return waves
}
