// Package zone names the slots of a board and classifies each one as a single
// pile (stack) or an ordered row of piles (ladder).
package zone

import (
	"sort"

	"example.com/pennyfarthing/internal/cards"
)

// Kind classifies a zone.
type Kind uint8

const (
	// KindNone is only reported for a ladder with zero piles.
	KindNone Kind = iota
	KindStack
	KindLadder
)

func (k Kind) String() string {
	switch k {
	case KindStack:
		return "stack"
	case KindLadder:
		return "ladder"
	default:
		return "none"
	}
}

// Zone is either one pile or a sequence of piles. The shape is fixed by the
// constructor used.
type Zone struct {
	ladder bool
	piles  []*cards.Pile
}

// Stack returns a zone holding a single pile.
func Stack(p *cards.Pile) Zone {
	return Zone{piles: []*cards.Pile{p}}
}

// Ladder returns a zone holding piles in order.
func Ladder(piles ...*cards.Pile) Zone {
	out := make([]*cards.Pile, len(piles))
	copy(out, piles)
	return Zone{ladder: true, piles: out}
}

// Kind reports the classification of z.
func (z Zone) Kind() Kind {
	switch {
	case !z.ladder && len(z.piles) == 1:
		return KindStack
	case z.ladder && len(z.piles) > 0:
		return KindLadder
	default:
		return KindNone
	}
}

// IsStack reports whether z is a single pile.
func (z Zone) IsStack() bool { return z.Kind() == KindStack }

// IsLadder reports whether z is a non-empty sequence of piles.
func (z Zone) IsLadder() bool { return z.Kind() == KindLadder }

// Pile returns the pile of a stack zone, or nil for ladders.
func (z Zone) Pile() *cards.Pile {
	if z.ladder || len(z.piles) != 1 {
		return nil
	}
	return z.piles[0]
}

// Piles returns the piles of the zone; a stack yields a single element.
func (z Zone) Piles() []*cards.Pile {
	out := make([]*cards.Pile, len(z.piles))
	copy(out, z.piles)
	return out
}

// At returns pile i of a ladder, or nil when out of range.
func (z Zone) At(i int) *cards.Pile {
	if i < 0 || i >= len(z.piles) {
		return nil
	}
	return z.piles[i]
}

// Width returns the number of piles.
func (z Zone) Width() int {
	return len(z.piles)
}

// Count returns the total number of cards in the zone.
func (z Zone) Count() int {
	n := 0
	for _, p := range z.piles {
		n += p.Len()
	}
	return n
}

// Clone returns a zone of the same shape holding copies of the piles.
func (z Zone) Clone() Zone {
	out := Zone{ladder: z.ladder, piles: make([]*cards.Pile, len(z.piles))}
	for i, p := range z.piles {
		out.piles[i] = p.Clone()
	}
	return out
}

// Map maps zone names to their contents.
type Map map[string]Zone

// Clone returns a deep copy of m. Mutating the copy never touches m.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for name, z := range m {
		out[name] = z.Clone()
	}
	return out
}

// Stack stores p under name.
func (m Map) Stack(name string, p *cards.Pile) {
	m[name] = Stack(p)
}

// Ladder stores piles under name.
func (m Map) Ladder(name string, piles ...*cards.Pile) {
	m[name] = Ladder(piles...)
}

// Names returns the zone names in sorted order.
func (m Map) Names() []string {
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of cards across every zone.
func (m Map) Count() int {
	n := 0
	for _, z := range m {
		n += z.Count()
	}
	return n
}
