package catalog

import "fmt"

// BaseID is the first numeric code handed out to both items and locations.
const BaseID int64 = 0x7A700000

const (
	NumWaves      = 20
	MaxDifficulty = 5
)

// Rarity is the in-game tier shared by items, upgrades and shop slots.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityUncommon  Rarity = "Uncommon"
	RarityRare      Rarity = "Rare"
	RarityLegendary Rarity = "Legendary"
)

// Rarities lists every tier in ascending order.
var Rarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityLegendary}

// Characters is the playable roster. Order matters: it drives item and location codes.
var Characters = []string{
	"Well Rounded",
	"Brawler",
	"Crazy",
	"Ranger",
	"Mage",
	"Chunky",
	"Old",
	"Lucky",
	"Mutant",
	"Generalist",
	"Loud",
	"Multitasker",
	"Wildling",
	"Pacifist",
	"Gladiator",
	"Saver",
	"Sick",
	"Farmer",
	"Ghost",
	"Speedy",
	"Entrepreneur",
	"Engineer",
	"Explorer",
	"Doctor",
	"Hunter",
	"Artificer",
	"Arms Dealer",
	"Streamer",
	"Cyborg",
	"Glutton",
	"Jack",
	"Lich",
	"Apprentice",
	"Cryptid",
	"Fisherman",
	"Golem",
	"King",
	"Renegade",
	"One Armed",
	"Bull",
	"Soldier",
	"Masochist",
	"Knight",
	"Demon",
}

// DefaultCharacters are unlocked in a fresh save of the base game.
var DefaultCharacters = []string{"Well Rounded", "Brawler", "Crazy", "Ranger", "Mage"}

// UnlockableCharacters is Characters minus DefaultCharacters, in declaration order.
var UnlockableCharacters = func() []string {
	var out []string
	for _, c := range Characters {
		if !IsDefaultCharacter(c) {
			out = append(out, c)
		}
	}
	return out
}()

var (
	NumCharacters           = len(Characters)
	NumDefaultCharacters    = len(DefaultCharacters)
	NumUnlockableCharacters = len(Characters) - len(DefaultCharacters)

	characterSet        = toSet(Characters)
	defaultCharacterSet = toSet(DefaultCharacters)
)

const (
	MaxRequiredRunWins = 50

	MaxNormalCrateDrops    = 50
	MaxLegendaryCrateDrops = 50

	MaxCommonUpgrades    = 50
	MaxUncommonUpgrades  = 50
	MaxRareUpgrades      = 50
	MaxLegendaryUpgrades = 50

	// MaxShopSlots is the base game's shop size; it cannot be raised.
	MaxShopSlots = 4
)

// MaxShopLocationsPerTier caps how many shop purchases per tier can be checks.
var MaxShopLocationsPerTier = map[Rarity]int{
	RarityCommon:    20,
	RarityUncommon:  10,
	RarityRare:      10,
	RarityLegendary: 10,
}

// IsCharacter reports whether name is on the roster.
func IsCharacter(name string) bool {
	_, ok := characterSet[name]
	return ok
}

// IsDefaultCharacter reports whether name is one of the base game's starting characters.
func IsDefaultCharacter(name string) bool {
	_, ok := defaultCharacterSet[name]
	return ok
}

// Location name templates. These strings are part of the save format and must not change.

func CrateDropLocation(n int) string {
	return fmt.Sprintf("Loot Crate %d", n)
}

func LegendaryCrateDropLocation(n int) string {
	return fmt.Sprintf("Legendary Loot Crate %d", n)
}

func WaveCompleteLocation(wave int, character string) string {
	return fmt.Sprintf("Wave %d Completed (%s)", wave, character)
}

func RunCompleteLocation(character string) string {
	return fmt.Sprintf("Run Won (%s)", character)
}

func ShopItemLocation(tier Rarity, n int) string {
	return fmt.Sprintf("%s Shop Item %d", tier, n)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
