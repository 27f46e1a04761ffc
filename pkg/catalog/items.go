package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownItem is returned for item names or codes that are not in the catalog.
var ErrUnknownItem = errors.New("unknown item")

// Classification tells the host how an item may affect logic.
type Classification string

const (
	ClassificationFiller      Classification = "filler"
	ClassificationUseful      Classification = "useful"
	ClassificationProgression Classification = "progression"
)

// Item names
const (
	ItemCommonItem       = "Common Item"
	ItemUncommonItem     = "Uncommon Item"
	ItemRareItem         = "Rare Item"
	ItemLegendaryItem    = "Legendary Item"
	ItemCommonUpgrade    = "Common Upgrade"
	ItemUncommonUpgrade  = "Uncommon Upgrade"
	ItemRareUpgrade      = "Rare Upgrade"
	ItemLegendaryUpgrade = "Legendary Upgrade"
	ItemShopSlot         = "Progressive Shop Slot"
	ItemXP5              = "XP (5)"
	ItemXP10             = "XP (10)"
	ItemXP25             = "XP (25)"
	ItemXP50             = "XP (50)"
	ItemXP100            = "XP (100)"
	ItemXP150            = "XP (150)"
	ItemGold10           = "Gold (10)"
	ItemGold25           = "Gold (25)"
	ItemGold50           = "Gold (50)"
	ItemGold100          = "Gold (100)"
	ItemGold200          = "Gold (200)"
	ItemRunComplete      = "Run Won"
)

// Item group names
const (
	GroupItemDrops  = "Item Drops"
	GroupUpgrades   = "Upgrades"
	GroupShop       = "Shop"
	GroupGoldAndXP  = "Gold and XP"
	GroupCharacters = "Characters"
)

// ItemDef is the template for an item before it is handed to a player.
type ItemDef struct {
	Name           string         `json:"name"`
	Classification Classification `json:"classification"`
	Code           int64          `json:"code"`
}

type itemSpec struct {
	name           string
	classification Classification
}

// itemSpecs is the declaration order of the item catalog. Appending is safe,
// reordering or inserting changes every code after the edit.
func itemSpecs() []itemSpec {
	specs := []itemSpec{
		{ItemCommonItem, ClassificationUseful},
		{ItemUncommonItem, ClassificationUseful},
		{ItemRareItem, ClassificationUseful},
		{ItemLegendaryItem, ClassificationUseful},
		{ItemCommonUpgrade, ClassificationUseful},
		{ItemUncommonUpgrade, ClassificationUseful},
		{ItemRareUpgrade, ClassificationUseful},
		{ItemLegendaryUpgrade, ClassificationUseful},
		{ItemShopSlot, ClassificationUseful},
		{ItemXP5, ClassificationFiller},
		{ItemXP10, ClassificationFiller},
		{ItemXP25, ClassificationFiller},
		{ItemXP50, ClassificationFiller},
		{ItemXP100, ClassificationFiller},
		{ItemXP150, ClassificationFiller},
		{ItemGold10, ClassificationFiller},
		{ItemGold25, ClassificationFiller},
		{ItemGold50, ClassificationFiller},
		{ItemGold100, ClassificationFiller},
		{ItemGold200, ClassificationFiller},
		{ItemRunComplete, ClassificationProgression},
	}
	for _, c := range Characters {
		specs = append(specs, itemSpec{c, ClassificationProgression})
	}
	return specs
}

// ItemCatalog is an immutable, ordered set of item definitions.
type ItemCatalog struct {
	items  []ItemDef
	byName map[string]int
	byCode map[int64]int
}

func buildItems(specs []itemSpec) (*ItemCatalog, error) {
	c := &ItemCatalog{
		items:  make([]ItemDef, 0, len(specs)),
		byName: make(map[string]int, len(specs)),
		byCode: make(map[int64]int, len(specs)),
	}
	for i, s := range specs {
		if _, dup := c.byName[s.name]; dup {
			return nil, fmt.Errorf("duplicate item name %q", s.name)
		}
		def := ItemDef{Name: s.name, Classification: s.classification, Code: BaseID + int64(i)}
		c.byName[def.Name] = len(c.items)
		c.byCode[def.Code] = len(c.items)
		c.items = append(c.items, def)
	}
	return c, nil
}

var items = mustBuild(buildItems(itemSpecs()))

// Items returns the process-wide item catalog.
func Items() *ItemCatalog {
	return items
}

// All returns every item definition in declaration order.
func (c *ItemCatalog) All() []ItemDef {
	out := make([]ItemDef, len(c.items))
	copy(out, c.items)
	return out
}

func (c *ItemCatalog) Len() int {
	return len(c.items)
}

// ByName looks up an item definition by its display name.
func (c *ItemCatalog) ByName(name string) (ItemDef, error) {
	i, ok := c.byName[name]
	if !ok {
		return ItemDef{}, fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
	return c.items[i], nil
}

// ByCode looks up an item definition by its numeric code.
func (c *ItemCatalog) ByCode(code int64) (ItemDef, error) {
	i, ok := c.byCode[code]
	if !ok {
		return ItemDef{}, fmt.Errorf("%w: code %d", ErrUnknownItem, code)
	}
	return c.items[i], nil
}

// NameToCode returns a fresh name->code map for the data package.
func (c *ItemCatalog) NameToCode() map[string]int64 {
	out := make(map[string]int64, len(c.items))
	for _, it := range c.items {
		out[it.Name] = it.Code
	}
	return out
}

// Filler returns the names of all filler items in declaration order.
func (c *ItemCatalog) Filler() []string {
	var out []string
	for _, it := range c.items {
		if it.Classification == ClassificationFiller {
			out = append(out, it.Name)
		}
	}
	return out
}

// Groups returns the named item groups offered to the host.
func (c *ItemCatalog) Groups() map[string][]string {
	chars := make([]string, len(Characters))
	copy(chars, Characters)
	return map[string][]string{
		GroupItemDrops: {ItemCommonItem, ItemUncommonItem, ItemRareItem, ItemLegendaryItem},
		GroupUpgrades:  {ItemCommonUpgrade, ItemUncommonUpgrade, ItemRareUpgrade, ItemLegendaryUpgrade},
		GroupShop:      {ItemShopSlot},
		GroupGoldAndXP: {
			ItemXP5, ItemXP10, ItemXP25, ItemXP50, ItemXP100, ItemXP150,
			ItemGold10, ItemGold25, ItemGold50, ItemGold100, ItemGold200,
		},
		GroupCharacters: chars,
	}
}

// ItemByName is shorthand for Items().ByName.
func ItemByName(name string) (ItemDef, error) {
	return items.ByName(name)
}

// ItemByCode is shorthand for Items().ByCode.
func ItemByCode(code int64) (ItemDef, error) {
	return items.ByCode(code)
}

// MustItem returns the named item and panics if it does not exist.
// Only use it with the Item* constants or roster names.
func MustItem(name string) ItemDef {
	def, err := items.ByName(name)
	if err != nil {
		panic(err)
	}
	return def
}

func mustBuild[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return v
}
