// Package rules holds the access predicates attached to region entrances and the
// completion condition. Rules are plain values so they can be stored, logged and
// compared; Evaluate is the only place that interprets them.
package rules

import (
	"fmt"

	"github.com/jwebster45206/brotato-world/pkg/catalog"
)

// StateView is the read-only collected-items view a rule is evaluated against.
type StateView interface {
	Has(item string, count int) bool
}

// Kind identifies what a Rule checks.
type Kind string

const (
	KindAlways       Kind = "always"
	KindHasCharacter Kind = "has_character"
	KindRunWins      Kind = "run_wins"
)

// Rule is a tagged predicate. Only the fields relevant to Kind are set.
type Rule struct {
	Kind      Kind   `json:"kind"`
	Character string `json:"character,omitempty"`
	Count     int    `json:"count,omitempty"`
}

// Always returns a rule that is satisfied by every state.
func Always() Rule {
	return Rule{Kind: KindAlways}
}

// RequiresCharacter is satisfied once the character's unlock item is held.
func RequiresCharacter(character string) Rule {
	return Rule{Kind: KindHasCharacter, Character: character}
}

// RequiresRunWins is satisfied once at least n Run Won items are held.
func RequiresRunWins(n int) Rule {
	return Rule{Kind: KindRunWins, Count: n}
}

func (r Rule) String() string {
	switch r.Kind {
	case KindHasCharacter:
		return fmt.Sprintf("has %s", r.Character)
	case KindRunWins:
		return fmt.Sprintf("%d run wins", r.Count)
	default:
		return "always"
	}
}

// Evaluate checks a rule against the collected state.
// The zero Rule behaves like Always.
func Evaluate(r Rule, state StateView) bool {
	switch r.Kind {
	case KindAlways, "":
		return true
	case KindHasCharacter:
		return HasCharacter(state, r.Character)
	case KindRunWins:
		return HasRunWins(state, r.Count)
	default:
		return false
	}
}

// HasCharacter reports whether the state holds the character's unlock item.
func HasCharacter(state StateView, character string) bool {
	return state.Has(character, 1)
}

// HasRunWins reports whether the state holds at least count Run Won items.
func HasRunWins(state StateView, count int) bool {
	if count <= 0 {
		return true
	}
	return state.Has(catalog.ItemRunComplete, count)
}
