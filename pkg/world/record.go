package world

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/brotato-world/pkg/catalog"
	"github.com/jwebster45206/brotato-world/pkg/options"
)

// Record is the persisted outcome of one generation run.
type Record struct {
	ID                 uuid.UUID         `json:"id"`
	PlayerName         string            `json:"player_name"`
	Player             int               `json:"player"`
	Seed               uint64            `json:"seed"`
	Options            options.Options   `json:"options"`
	SlotData           SlotData          `json:"slot_data"`
	StartingCharacters []string          `json:"starting_characters"`
	ItemPool           []string          `json:"item_pool"`
	LockedPlacements   map[string]string `json:"locked_placements"`
	LocationCount      int               `json:"location_count"`
	Completion         string            `json:"completion"`
	CreatedAt          time.Time         `json:"created_at"`
}

// Record summarizes the generated world for storage and the API.
func (w *World) Record(id uuid.UUID, playerName string, seed uint64) *Record {
	pool := make([]string, 0, len(w.session.ItemPool))
	for _, it := range w.session.ItemPool {
		pool = append(pool, it.Name)
	}

	locked := make(map[string]string)
	for _, loc := range w.session.Locations() {
		if loc.Locked && loc.Item != nil {
			locked[loc.Name] = loc.Item.Name
		}
	}

	return &Record{
		ID:                 id,
		PlayerName:         playerName,
		Player:             w.Player,
		Seed:               seed,
		Options:            w.Options,
		SlotData:           w.FillSlotData(),
		StartingCharacters: append([]string(nil), w.startingCharacters...),
		ItemPool:           pool,
		LockedPlacements:   locked,
		LocationCount:      len(w.session.PlaceableLocations()),
		Completion:         w.session.Completion.String(),
		CreatedAt:          time.Now().UTC(),
	}
}

// DataPackage is the static part of the world the host shares with every
// client: name/code maps and the filter groups.
type DataPackage struct {
	Game               string              `json:"game"`
	ItemNameToID       map[string]int64    `json:"item_name_to_id"`
	LocationNameToID   map[string]int64    `json:"location_name_to_id"`
	ItemNameGroups     map[string][]string `json:"item_name_groups"`
	LocationNameGroups map[string][]string `json:"location_name_groups"`
}

func NewDataPackage() DataPackage {
	return DataPackage{
		Game:               Game,
		ItemNameToID:       catalog.Items().NameToCode(),
		LocationNameToID:   catalog.Locations().NameToCode(),
		ItemNameGroups:     catalog.Items().Groups(),
		LocationNameGroups: catalog.Locations().Groups(),
	}
}
