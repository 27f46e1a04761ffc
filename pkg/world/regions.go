package world

import (
	"fmt"

	"github.com/jwebster45206/brotato-world/pkg/catalog"
	"github.com/jwebster45206/brotato-world/pkg/rules"
)

const (
	MenuRegion       = "Menu"
	LootCratesRegion = "Loot Crates"
)

// CharacterRegion names the in-game region of a character.
func CharacterRegion(character string) string {
	return fmt.Sprintf("In-Game (%s)", character)
}

// RegionConfig is what the graph builder needs from the player's options.
type RegionConfig struct {
	NumCommonCrateDrops    int
	NumLegendaryCrateDrops int
	WavesWithChecks        []int
	Characters             []string
}

// BuildRegions creates the region graph and registers it on the session.
//
// Menu reaches Loot Crates freely and each character's region only with that
// character. Character regions lead back to Loot Crates, and the way from Loot
// Crates into a character region carries the same character rule so the crate
// region is not a shortcut into characters the player has not unlocked.
func BuildRegions(s *Session, cfg RegionConfig) error {
	menu := NewRegion(MenuRegion)
	crates := NewRegion(LootCratesRegion)

	for i := 1; i <= cfg.NumCommonCrateDrops; i++ {
		def, err := catalog.LocationByName(catalog.CrateDropLocation(i))
		if err != nil {
			return err
		}
		crates.AddLocation(def, s.Player)
	}

	// Legendary crates would ideally be excluded locations; keeping progression
	// out of them gets most of the effect without starving the fill.
	for i := 1; i <= cfg.NumLegendaryCrateDrops; i++ {
		def, err := catalog.LocationByName(catalog.LegendaryCrateDropLocation(i))
		if err != nil {
			return err
		}
		crates.AddLocation(def, s.Player).ForbidProgression = true
	}

	menu.Connect(crates, "Drop Loot Crates", rules.Always())

	if err := s.AddRegions(menu, crates); err != nil {
		return err
	}

	characterRegions := make([]*Region, 0, len(cfg.Characters))
	for _, character := range cfg.Characters {
		region := NewRegion(CharacterRegion(character))
		hasCharacter := rules.RequiresCharacter(character)

		runWon, err := catalog.LocationByName(catalog.RunCompleteLocation(character))
		if err != nil {
			return err
		}
		region.AddLocation(runWon, s.Player)

		for _, wave := range cfg.WavesWithChecks {
			def, err := catalog.LocationByName(catalog.WaveCompleteLocation(wave, character))
			if err != nil {
				return err
			}
			region.AddLocation(def, s.Player)
		}

		menu.Connect(region, fmt.Sprintf("Start Game (%s)", character), hasCharacter)
		region.Connect(crates, fmt.Sprintf("Drop crates for %s", character), rules.Always())
		crates.Connect(region, fmt.Sprintf("Exit drop crates for %s", character), hasCharacter)

		characterRegions = append(characterRegions, region)
	}

	return s.AddRegions(characterRegions...)
}
