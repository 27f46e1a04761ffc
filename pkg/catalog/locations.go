package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownLocation is returned for location names that are not in the catalog.
var ErrUnknownLocation = errors.New("unknown location")

// Location group names
const (
	GroupWaveComplete      = "Wave Complete Specific Character"
	GroupRunWin            = "Run Win Specific Character"
	GroupNormalCrateDrops  = "Normal Crate Drops"
	GroupLegendaryCrates   = "Legendary Crate Drops"
	GroupShopItemLocations = "Shop Items"
)

// LocationDef is the template for a location. Code is nil for event locations,
// which exist only to hold a logically placed item. Each LocationDef handed
// out by the catalog owns its Code; changing it never reaches the catalog.
type LocationDef struct {
	Name  string `json:"name"`
	Code  *int64 `json:"code"`
	Group string `json:"group"`
}

// IsEvent reports whether the location has no address.
func (l LocationDef) IsEvent() bool {
	return l.Code == nil
}

type locationSpec struct {
	name  string
	group string
	event bool
}

func locationSpecs() []locationSpec {
	var specs []locationSpec
	for _, char := range Characters {
		for wave := 1; wave <= NumWaves; wave++ {
			specs = append(specs, locationSpec{name: WaveCompleteLocation(wave, char), group: GroupWaveComplete})
		}
	}
	for _, char := range Characters {
		specs = append(specs, locationSpec{name: RunCompleteLocation(char), group: GroupRunWin, event: true})
	}
	for _, tier := range Rarities {
		for i := 1; i <= MaxShopLocationsPerTier[tier]; i++ {
			specs = append(specs, locationSpec{name: ShopItemLocation(tier, i), group: GroupShopItemLocations})
		}
	}
	for i := 1; i <= MaxNormalCrateDrops; i++ {
		specs = append(specs, locationSpec{name: CrateDropLocation(i), group: GroupNormalCrateDrops})
	}
	for i := 1; i <= MaxLegendaryCrateDrops; i++ {
		specs = append(specs, locationSpec{name: LegendaryCrateDropLocation(i), group: GroupLegendaryCrates})
	}
	return specs
}

// locationEntry is the catalog's own pointer-free copy of a definition.
type locationEntry struct {
	name  string
	group string
	code  int64
	event bool
}

func (e locationEntry) def() LocationDef {
	def := LocationDef{Name: e.name, Group: e.group}
	if !e.event {
		code := e.code
		def.Code = &code
	}
	return def
}

// LocationCatalog is an immutable, ordered set of location definitions.
type LocationCatalog struct {
	locations []locationEntry
	byName    map[string]int
}

// buildLocations assigns codes in one pass: BaseID plus the index among
// non-event locations.
func buildLocations(specs []locationSpec) (*LocationCatalog, error) {
	c := &LocationCatalog{
		locations: make([]locationEntry, 0, len(specs)),
		byName:    make(map[string]int, len(specs)),
	}
	var next int64
	for _, s := range specs {
		if _, dup := c.byName[s.name]; dup {
			return nil, fmt.Errorf("duplicate location name %q", s.name)
		}
		e := locationEntry{name: s.name, group: s.group, event: s.event}
		if !s.event {
			e.code = BaseID + next
			next++
		}
		c.byName[e.name] = len(c.locations)
		c.locations = append(c.locations, e)
	}
	return c, nil
}

var locations = mustBuild(buildLocations(locationSpecs()))

// Locations returns the process-wide location catalog.
func Locations() *LocationCatalog {
	return locations
}

// All returns every location definition in declaration order.
func (c *LocationCatalog) All() []LocationDef {
	out := make([]LocationDef, len(c.locations))
	for i, e := range c.locations {
		out[i] = e.def()
	}
	return out
}

func (c *LocationCatalog) Len() int {
	return len(c.locations)
}

// ByName looks up a location definition by name.
func (c *LocationCatalog) ByName(name string) (LocationDef, error) {
	i, ok := c.byName[name]
	if !ok {
		return LocationDef{}, fmt.Errorf("%w: %q", ErrUnknownLocation, name)
	}
	return c.locations[i].def(), nil
}

// NameToCode returns the name->code map of addressable locations. Events are left out.
func (c *LocationCatalog) NameToCode() map[string]int64 {
	out := make(map[string]int64, len(c.locations))
	for _, e := range c.locations {
		if !e.event {
			out[e.name] = e.code
		}
	}
	return out
}

// Groups returns location names grouped by category, in declaration order.
func (c *LocationCatalog) Groups() map[string][]string {
	out := make(map[string][]string)
	for _, e := range c.locations {
		out[e.group] = append(out[e.group], e.name)
	}
	return out
}

// LocationByName is shorthand for Locations().ByName.
func LocationByName(name string) (LocationDef, error) {
	return locations.ByName(name)
}
