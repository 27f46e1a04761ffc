package state

import (
	"maps"
	"slices"

	"github.com/jwebster45206/brotato-world/pkg/rules"
)

// CollectionState tracks how many of each item a player holds.
// It is the stand-in for the host's collected state and is not safe for
// concurrent mutation.
type CollectionState struct {
	counts map[string]int
}

var _ rules.StateView = (*CollectionState)(nil)

// NewCollectionState returns a state holding the given items, one unit per entry.
func NewCollectionState(items ...string) *CollectionState {
	cs := &CollectionState{counts: make(map[string]int)}
	for _, it := range items {
		cs.Collect(it)
	}
	return cs
}

// Collect adds one unit of item.
func (cs *CollectionState) Collect(item string) {
	cs.CollectN(item, 1)
}

// CollectN adds n units of item. Non-positive n is ignored.
func (cs *CollectionState) CollectN(item string, n int) {
	if n <= 0 {
		return
	}
	cs.counts[item] += n
}

// Remove drops one unit of item and reports whether there was one to drop.
func (cs *CollectionState) Remove(item string) bool {
	if cs.counts[item] == 0 {
		return false
	}
	cs.counts[item]--
	if cs.counts[item] == 0 {
		delete(cs.counts, item)
	}
	return true
}

func (cs *CollectionState) Count(item string) int {
	return cs.counts[item]
}

// Has reports whether at least count units of item are held.
func (cs *CollectionState) Has(item string, count int) bool {
	return cs.counts[item] >= count
}

// Items returns held item names, sorted.
func (cs *CollectionState) Items() []string {
	return slices.Sorted(maps.Keys(cs.counts))
}

// Total returns the number of item units held.
func (cs *CollectionState) Total() int {
	total := 0
	for _, n := range cs.counts {
		total += n
	}
	return total
}

func (cs *CollectionState) Clone() *CollectionState {
	return &CollectionState{counts: maps.Clone(cs.counts)}
}
