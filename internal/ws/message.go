package ws

import (
	"encoding/json"

	"example.com/pennyfarthing/internal/game"
	"example.com/pennyfarthing/internal/rules"
)

// Msg is the envelope for every frame in both directions.
type Msg struct {
	T string          `json:"t"`           // type
	M json.RawMessage `json:"m,omitempty"` // payload
}

// client -> server
const (
	TypeNewGame    = "new_game"
	TypeReplay     = "replay"
	TypeDrag       = "drag"
	TypeDrop       = "drop"
	TypeCancelDrag = "cancel_drag"
	TypeAnimations = "animations"
	TypeLoad       = "load"
)

// server -> client
const (
	TypeState = "state"
	TypeError = "error"
	TypeGames = "games"
)

// Codes for envelope problems; game errors carry their own codes.
const (
	CodeBadMessage     = "BAD_MESSAGE"
	CodeUnknownMessage = "UNKNOWN_MESSAGE"
	CodeInternal       = "INTERNAL"
)

type NewGameMsg struct {
	Ruleset string `json:"ruleset,omitempty"`
}

type ReplayMsg struct {
	Seed    uint32 `json:"seed"`
	Ruleset string `json:"ruleset,omitempty"`
}

// DragMsg selects the cards from Index to the top of one pile. A negative
// Index counts from the top.
type DragMsg struct {
	Zone  string `json:"zone"`
	Pile  int    `json:"pile"`
	Index int    `json:"index"`
}

// DropMsg ends a drag. An empty Zone is a drop off the board.
type DropMsg struct {
	Zone string `json:"zone"`
	Pile int    `json:"pile"`
}

type AnimationsMsg struct {
	Enabled bool `json:"enabled"`
}

// LoadMsg restores a serialized game. Without Ruleset the active one is
// kept; without Seed the current seed is.
type LoadMsg struct {
	State   json.RawMessage `json:"state"`
	Ruleset string          `json:"ruleset,omitempty"`
	Seed    *uint32         `json:"seed,omitempty"`
}

type DragReply struct {
	Allowed bool `json:"allowed"`
}

type ErrorReply struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type GamesReply struct {
	Games []rules.MenuEntry `json:"games"`
}

// StateReply is the full redraw sent after every change.
type StateReply = game.Snapshot

func encode(t string, payload any) ([]byte, error) {
	var m json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		m = b
	}
	return json.Marshal(Msg{T: t, M: m})
}
