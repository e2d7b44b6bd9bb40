package zone

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"example.com/pennyfarthing/internal/cards"
	apperrors "example.com/pennyfarthing/internal/errors"
)

// CardData is the serialized form of one card.
type CardData struct {
	Value int    `json:"value"`
	Suit  string `json:"suit"`
	Up    bool   `json:"up"`
}

// StackData is the serialized form of one pile. Cards are listed top first.
type StackData struct {
	IsStack bool       `json:"isStack"`
	Cards   []CardData `json:"cards"`
}

// Entry is a serialized zone: exactly one of Stack or Ladder is set.
type Entry struct {
	Stack  *StackData
	Ladder []StackData
}

// MarshalJSON writes a stack as an object and a ladder as an array.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Stack != nil {
		return json.Marshal(e.Stack)
	}
	if e.Ladder == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e.Ladder)
}

// UnmarshalJSON accepts either form.
func (e *Entry) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("empty zone entry")
	}
	switch b[0] {
	case '{':
		var s StackData
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*e = Entry{Stack: &s}
	case '[':
		var l []StackData
		if err := json.Unmarshal(b, &l); err != nil {
			return err
		}
		if l == nil {
			l = []StackData{}
		}
		*e = Entry{Ladder: l}
	default:
		return fmt.Errorf("zone entry must be an object or an array")
	}
	return nil
}

// Data is the serialized form of a zone map.
type Data map[string]Entry

// Serialize converts zones into their plain form.
func Serialize(zones Map) Data {
	out := make(Data, len(zones))
	for name, z := range zones {
		if z.Kind() == KindStack {
			s := stackData(z.Pile())
			out[name] = Entry{Stack: &s}
			continue
		}
		l := make([]StackData, 0, len(z.piles))
		for _, p := range z.piles {
			l = append(l, stackData(p))
		}
		out[name] = Entry{Ladder: l}
	}
	return out
}

func stackData(p *cards.Pile) StackData {
	s := StackData{IsStack: true, Cards: make([]CardData, 0, p.Len())}
	for i := p.Len() - 1; i >= 0; i-- {
		c := p.Get(i)
		s.Cards = append(s.Cards, CardData{Value: c.Value, Suit: string(c.Suit), Up: c.Up})
	}
	return s
}

// Decode parses JSON into Data, reporting malformed input as a data format
// error.
func Decode(b []byte) (Data, error) {
	var data Data
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, apperrors.DataFormat("decode zone data", err)
	}
	return data, nil
}

// Load rebuilds a zone map from data and normalizes it against names. Stack
// entries are hydrated card by card; ladder entries apply the same rule to
// each element. Any malformed entry fails the whole load.
func Load(d *cards.Dealer, data Data, names []string) (Map, error) {
	zones := make(Map, len(data))
	for name, e := range data {
		switch {
		case e.Stack != nil:
			p, err := hydrate(d, *e.Stack)
			if err != nil {
				return nil, withZone(err, name)
			}
			zones[name] = Stack(p)
		default:
			piles := make([]*cards.Pile, 0, len(e.Ladder))
			for i, s := range e.Ladder {
				p, err := hydrate(d, s)
				if err != nil {
					return nil, withZone(err, name+"["+strconv.Itoa(i)+"]")
				}
				piles = append(piles, p)
			}
			zones[name] = Ladder(piles...)
		}
	}
	Normalize(d, zones, names)
	return zones, nil
}

func hydrate(d *cards.Dealer, s StackData) (*cards.Pile, error) {
	if !s.IsStack {
		return nil, apperrors.DataFormat("stack entry is missing isStack", nil)
	}
	p := d.NewPile()
	for i := len(s.Cards) - 1; i >= 0; i-- {
		cd := s.Cards[i]
		suit, ok := cards.SuitOf(cd.Suit)
		if !ok {
			return nil, apperrors.DataFormat("unknown suit "+strconv.Quote(cd.Suit), nil)
		}
		c, err := d.Card(cd.Value, suit)
		if err != nil {
			return nil, apperrors.DataFormat("invalid card: "+err.Error(), nil)
		}
		c.Up = cd.Up
		p.Push(c)
	}
	return p, nil
}

func withZone(err error, zone string) error {
	if e, ok := err.(*apperrors.Error); ok {
		e.Message = "zone " + zone + ": " + e.Message
		return e
	}
	return fmt.Errorf("zone %s: %w", zone, err)
}
