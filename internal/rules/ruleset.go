// Package rules defines the capability set a game implements to plug into
// the engine, the registry rulesets are looked up from, and the built-in
// games.
package rules

import (
	"example.com/pennyfarthing/internal/cards"
	"example.com/pennyfarthing/internal/zone"
)

// Ruleset is the required part of a game: a name, a grid layout and a deal.
//
// RequestDeal must draw randomness only from piles made by the Dealer it is
// given, so a seed reproduces the deal exactly.
type Ruleset interface {
	Name() string
	RequestLayout() Layout
	RequestDeal(d *cards.Dealer, zones zone.Map) error
}

// DragAllower is implemented by rulesets that restrict which selections may
// be dragged. Without it every drag is allowed.
type DragAllower interface {
	AllowDragEvent(dragged Dragged) bool
}

// DropHandler is implemented by rulesets that react to completed drags.
// Without it a drop does nothing.
type DropHandler interface {
	DropEvent(t Table, dragged Dragged, dropped Dropped) error
}

// SetupHook is implemented by rulesets that need to act once the first deal
// of a game is in place.
type SetupHook interface {
	Setup(t Table) error
}

// Closer is implemented by rulesets that hold resources. The registry closes
// a ruleset once a later registration replaces it.
type Closer interface {
	Close()
}

// Worder is implemented by rulesets that describe their rules.
type Worder interface {
	RequestRulesWording() string
}

// Dragged is the selection a drag starts from: the cards from Index to the
// top of the addressed pile. Pile is 0 for stack zones.
type Dragged struct {
	Zone  string        `json:"zone"`
	Pile  int           `json:"pile"`
	Index int           `json:"index"`
	Cards []*cards.Card `json:"cards"`
}

// Top returns the last dragged card, or nil.
func (d Dragged) Top() *cards.Card {
	if len(d.Cards) == 0 {
		return nil
	}
	return d.Cards[len(d.Cards)-1]
}

// Bottom returns the first dragged card, or nil.
func (d Dragged) Bottom() *cards.Card {
	if len(d.Cards) == 0 {
		return nil
	}
	return d.Cards[0]
}

// Dropped is where a drag ended. Card is the card under the pointer, if any.
type Dropped struct {
	Zone string      `json:"zone"`
	Pile int         `json:"pile"`
	Card *cards.Card `json:"card,omitempty"`
}

// Table is the set of move primitives the controller offers to rulesets.
// Stack zones are addressed by name alone; the *From, *On and *At variants
// address one pile of a ladder.
type Table interface {
	Take(zone string, n int) (*cards.Pile, error)
	TakeFrom(zone string, pile, n int) (*cards.Pile, error)
	Place(p *cards.Pile, zone string) error
	PlaceOn(p *cards.Pile, zone string, pile int) error
	PeekByPile(zone string) (*cards.Card, error)
	PeekAt(zone string, pile int) (*cards.Card, error)
	Flip(zone string, pile int, up bool) error
	Count(zone string, pile int) (int, error)
	Won()
}

// AllowDrag applies r's drag predicate, defaulting to allow.
func AllowDrag(r Ruleset, dragged Dragged) bool {
	if a, ok := r.(DragAllower); ok {
		return a.AllowDragEvent(dragged)
	}
	return true
}

// Drop applies r's drop handler, defaulting to a no-op.
func Drop(r Ruleset, t Table, dragged Dragged, dropped Dropped) error {
	if h, ok := r.(DropHandler); ok {
		return h.DropEvent(t, dragged, dropped)
	}
	return nil
}

// Setup runs r's setup hook if it has one.
func Setup(r Ruleset, t Table) error {
	if h, ok := r.(SetupHook); ok {
		return h.Setup(t)
	}
	return nil
}

// Wording returns r's rules text and whether it has any.
func Wording(r Ruleset) (string, bool) {
	if w, ok := r.(Worder); ok {
		return w.RequestRulesWording(), true
	}
	return "", false
}
