// Package game holds the controller that owns one running game: the seeded
// stream, the active ruleset and the zones, plus the move primitives and
// input dispatch rulesets act through.
package game

import (
	"example.com/pennyfarthing/internal/rules"
	"example.com/pennyfarthing/internal/zone"
)

// Status is the controller's position in the game lifecycle.
type Status int

const (
	StatusUninitialized Status = iota
	StatusDealt
	StatusInputPending
	StatusWon
)

func (s Status) String() string {
	switch s {
	case StatusDealt:
		return "dealt"
	case StatusInputPending:
		return "input_pending"
	case StatusWon:
		return "won"
	default:
		return "uninitialized"
	}
}

// MarshalText writes the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is one dealt game. It is replaced wholesale on every deal or load.
type State struct {
	Seed    uint32
	Zones   zone.Map
	Ruleset rules.Ruleset
}

// EventKind names a state change notification.
type EventKind string

const (
	EventDealt      EventKind = "dealt"
	EventChanged    EventKind = "changed"
	EventWon        EventKind = "won"
	EventAnimations EventKind = "animations"
)

// Event is delivered to subscribers after a mutating operation.
type Event struct {
	Kind    EventKind
	Ruleset string
	Seed    uint32
}

// Snapshot is the plain view of the current game handed to the renderer.
type Snapshot struct {
	Ruleset    string        `json:"ruleset"`
	Seed       uint32        `json:"seed"`
	Status     Status        `json:"status"`
	Layout     *rules.Layout `json:"layout,omitempty"`
	Zones      zone.Data     `json:"zones"`
	Animations bool          `json:"animations"`
	Won        bool          `json:"won"`
}
