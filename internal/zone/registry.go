package zone

import (
	"fmt"

	"example.com/pennyfarthing/internal/cards"
)

// DealFunc populates a fresh zone map. It may leave requested zones unset.
type DealFunc func(d *cards.Dealer, zones Map) error

// Deal runs fn against an empty map and normalizes the result. On error the
// partially built map is discarded.
func Deal(d *cards.Dealer, fn DealFunc, names []string) (Map, error) {
	zones := Map{}
	if fn != nil {
		if err := fn(d, zones); err != nil {
			return nil, fmt.Errorf("deal: %w", err)
		}
	}
	Normalize(d, zones, names)
	return zones, nil
}

// Normalize inserts an empty stack for every requested name missing from
// zones and replaces nil piles with empty ones, so every zone is a valid
// stack or ladder afterwards.
func Normalize(d *cards.Dealer, zones Map, names []string) {
	for _, name := range names {
		if _, ok := zones[name]; !ok {
			zones[name] = Stack(d.NewPile())
		}
	}
	for name, z := range zones {
		if z.ladder {
			for i, p := range z.piles {
				if p == nil {
					z.piles[i] = d.NewPile()
				}
			}
			continue
		}
		switch {
		case len(z.piles) == 0:
			zones[name] = Stack(d.NewPile())
		case z.piles[0] == nil:
			z.piles[0] = d.NewPile()
		}
	}
}
