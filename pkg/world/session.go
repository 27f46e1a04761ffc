package world

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/brotato-world/pkg/catalog"
	"github.com/jwebster45206/brotato-world/pkg/rules"
	"github.com/jwebster45206/brotato-world/pkg/state"
)

var (
	ErrUnknownRegion   = errors.New("unknown region")
	ErrLocationFilled  = errors.New("location already holds an item")
	ErrItemNotAllowed  = errors.New("item not allowed at location")
	ErrDuplicateRegion = errors.New("duplicate region")
)

// Item is a catalog item handed to one player.
type Item struct {
	Name           string                 `json:"name"`
	Classification catalog.Classification `json:"classification"`
	Code           int64                  `json:"code"`
	Player         int                    `json:"player"`
}

func (i Item) IsProgression() bool {
	return i.Classification == catalog.ClassificationProgression
}

// Location is a slot in one player's world that can hold exactly one item.
type Location struct {
	Name   string `json:"name"`
	Code   *int64 `json:"code"`
	Player int    `json:"player"`
	Region string `json:"region"`

	Item   *Item `json:"item,omitempty"`
	Locked bool  `json:"locked,omitempty"`

	// ForbidProgression keeps logic-relevant items out of this location.
	ForbidProgression bool `json:"forbid_progression,omitempty"`
}

func (l *Location) IsEvent() bool {
	return l.Code == nil
}

// CanHold reports whether item may be placed here.
func (l *Location) CanHold(item Item) bool {
	return !(l.ForbidProgression && item.IsProgression())
}

// PlaceLockedItem puts item here and marks it as pre-assigned.
func (l *Location) PlaceLockedItem(item Item) error {
	if l.Item != nil {
		return fmt.Errorf("%w: %s holds %s", ErrLocationFilled, l.Name, l.Item.Name)
	}
	if !l.CanHold(item) {
		return fmt.Errorf("%w: %s at %s", ErrItemNotAllowed, item.Name, l.Name)
	}
	l.Item = &item
	l.Locked = true
	return nil
}

// Entrance is a one-way edge between regions guarded by a rule.
type Entrance struct {
	Name string     `json:"name"`
	From string     `json:"from"`
	To   string     `json:"to"`
	Rule rules.Rule `json:"rule"`
}

// Region is a node of the reachability graph.
type Region struct {
	Name      string      `json:"name"`
	Locations []*Location `json:"locations"`
	Exits     []*Entrance `json:"exits"`
}

func NewRegion(name string) *Region {
	return &Region{Name: name}
}

// AddLocation creates a location from its catalog definition and attaches it.
func (r *Region) AddLocation(def catalog.LocationDef, player int) *Location {
	loc := &Location{Name: def.Name, Player: player, Region: r.Name}
	if def.Code != nil {
		code := *def.Code
		loc.Code = &code
	}
	r.Locations = append(r.Locations, loc)
	return loc
}

// Connect adds an exit from r to target.
func (r *Region) Connect(target *Region, name string, rule rules.Rule) *Entrance {
	e := &Entrance{Name: name, From: r.Name, To: target.Name, Rule: rule}
	r.Exits = append(r.Exits, e)
	return e
}

// Session owns everything generated for one player in one run.
type Session struct {
	Player int

	regions    []*Region
	byName     map[string]*Region
	locByName  map[string]*Location
	entryPoint string

	ItemPool     []Item
	Precollected []Item
	Completion   rules.Rule
}

func NewSession(player int) *Session {
	return &Session{
		Player:     player,
		byName:     make(map[string]*Region),
		locByName:  make(map[string]*Location),
		entryPoint: MenuRegion,
		Completion: rules.Always(),
	}
}

// AddRegions registers regions and indexes their locations.
func (s *Session) AddRegions(regions ...*Region) error {
	for _, r := range regions {
		if _, dup := s.byName[r.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateRegion, r.Name)
		}
		for _, loc := range r.Locations {
			if _, dup := s.locByName[loc.Name]; dup {
				return fmt.Errorf("location %s registered twice", loc.Name)
			}
			s.locByName[loc.Name] = loc
		}
		s.byName[r.Name] = r
		s.regions = append(s.regions, r)
	}
	return nil
}

// Regions returns regions in registration order.
func (s *Session) Regions() []*Region {
	return s.regions
}

func (s *Session) Region(name string) (*Region, error) {
	r, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegion, name)
	}
	return r, nil
}

func (s *Session) Location(name string) (*Location, error) {
	loc, ok := s.locByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrUnknownLocation, name)
	}
	return loc, nil
}

// Locations returns every location, region by region.
func (s *Session) Locations() []*Location {
	var out []*Location
	for _, r := range s.regions {
		out = append(out, r.Locations...)
	}
	return out
}

// PlaceableLocations returns the locations that have an address.
func (s *Session) PlaceableLocations() []*Location {
	var out []*Location
	for _, loc := range s.Locations() {
		if !loc.IsEvent() {
			out = append(out, loc)
		}
	}
	return out
}

func (s *Session) PushPrecollected(item Item) {
	s.Precollected = append(s.Precollected, item)
}

// InitialState returns a collection state holding the precollected items.
func (s *Session) InitialState() *state.CollectionState {
	cs := state.NewCollectionState()
	for _, it := range s.Precollected {
		cs.Collect(it.Name)
	}
	return cs
}

// ReachableRegions walks the graph breadth-first from the entry region,
// following only entrances whose rule passes against view.
func (s *Session) ReachableRegions(view rules.StateView) map[string]bool {
	visited := make(map[string]bool)
	start, ok := s.byName[s.entryPoint]
	if !ok {
		return visited
	}
	queue := []*Region{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current.Name] {
			continue
		}
		visited[current.Name] = true
		for _, exit := range current.Exits {
			if visited[exit.To] || !rules.Evaluate(exit.Rule, view) {
				continue
			}
			if next, ok := s.byName[exit.To]; ok {
				queue = append(queue, next)
			}
		}
	}
	return visited
}

func (s *Session) CanReachRegion(name string, view rules.StateView) bool {
	return s.ReachableRegions(view)[name]
}

func (s *Session) CanReachLocation(name string, view rules.StateView) (bool, error) {
	loc, err := s.Location(name)
	if err != nil {
		return false, err
	}
	return s.CanReachRegion(loc.Region, view), nil
}

// Sweep collects every placed item that is reachable from cs, repeating until
// nothing new opens up. It returns the number of locations collected.
func (s *Session) Sweep(cs *state.CollectionState) int {
	collected := make(map[string]bool)
	for {
		reachable := s.ReachableRegions(cs)
		progress := false
		for _, r := range s.regions {
			if !reachable[r.Name] {
				continue
			}
			for _, loc := range r.Locations {
				if loc.Item == nil || collected[loc.Name] {
					continue
				}
				collected[loc.Name] = true
				cs.Collect(loc.Item.Name)
				progress = true
			}
		}
		if !progress {
			return len(collected)
		}
	}
}

// IsBeatable reports whether the completion rule holds after sweeping from
// the precollected items.
func (s *Session) IsBeatable() bool {
	return s.IsBeatableWith(s.InitialState())
}

// IsBeatableWith is IsBeatable starting from cs instead of the precollected
// items. cs is not modified.
func (s *Session) IsBeatableWith(cs *state.CollectionState) bool {
	swept := cs.Clone()
	s.Sweep(swept)
	return rules.Evaluate(s.Completion, swept)
}
