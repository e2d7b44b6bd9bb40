// Package cards holds the card and pile model: card identity, ordered piles
// with stack discipline, and the Dealer factory that builds them.
package cards

import (
	"strconv"
	"strings"

	apperrors "example.com/pennyfarthing/internal/errors"
)

// Suit identifies a card suit.
type Suit string

const (
	Clubs    Suit = "C"
	Hearts   Suit = "H"
	Spades   Suit = "S"
	Diamonds Suit = "D"
	Joker    Suit = "JOKER"
)

// Suits is the canonical fill order.
var Suits = []Suit{Clubs, Hearts, Spades, Diamonds}

const (
	MinValue = 1
	MaxValue = 13

	// Joker art variants. A plain joker has value 0.
	MinJokerVariant = 101
	MaxJokerVariant = 103
)

// ParseSuit accepts the single letter form ("H"), the literal "JOKER" and the
// long names ("hearts", "joker"), case-insensitively. Scripts use it; stored
// zone data goes through SuitOf.
func ParseSuit(s string) (Suit, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "C", "CLUBS":
		return Clubs, true
	case "H", "HEARTS":
		return Hearts, true
	case "S", "SPADES":
		return Spades, true
	case "D", "DIAMONDS":
		return Diamonds, true
	case "JOKER":
		return Joker, true
	}
	return "", false
}

// SuitOf accepts only the stored form of a suit: one of the letters C, H, S,
// D or the literal JOKER, upper case.
func SuitOf(code string) (Suit, bool) {
	switch s := Suit(code); s {
	case Clubs, Hearts, Spades, Diamonds, Joker:
		return s, true
	}
	return "", false
}

// Red reports whether the suit is hearts or diamonds.
func (s Suit) Red() bool {
	return s == Hearts || s == Diamonds
}

// Card is a single playing card. Identity is Value+Suit; Up is the only
// mutable attribute.
type Card struct {
	Value int  `json:"value"`
	Suit  Suit `json:"suit"`
	Up    bool `json:"up"`
}

// Name returns the display name, e.g. "7H", "12S", "103JOKER" or "JOKER".
func (c *Card) Name() string {
	if c.Suit == Joker && c.Value == 0 {
		return string(Joker)
	}
	return strconv.Itoa(c.Value) + string(c.Suit)
}

// IsJoker reports whether the card is any joker variant.
func (c *Card) IsJoker() bool {
	return c.Suit == Joker
}

// String implements fmt.Stringer.
func (c *Card) String() string {
	return c.Name()
}

// Validate checks that value and suit form a supported card.
func Validate(value int, suit Suit) error {
	switch suit {
	case Clubs, Hearts, Spades, Diamonds:
		if value >= MinValue && value <= MaxValue {
			return nil
		}
	case Joker:
		if value == 0 || (value >= MinJokerVariant && value <= MaxJokerVariant) {
			return nil
		}
	default:
		return apperrors.Configuration(apperrors.CodeInvalidCard,
			"unknown suit: "+string(suit),
			map[string]string{"suit": string(suit)})
	}
	return apperrors.Configuration(apperrors.CodeInvalidCard,
		"invalid card value "+strconv.Itoa(value)+" for suit "+string(suit),
		map[string]string{"suit": string(suit), "value": strconv.Itoa(value)})
}
