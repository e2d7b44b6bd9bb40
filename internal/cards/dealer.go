package cards

// Dealer is the card and pile factory handed to rulesets during a deal.
// Piles it creates shuffle with the dealer's Source.
type Dealer struct {
	src Source
}

// NewDealer returns a dealer whose piles draw from src.
func NewDealer(src Source) *Dealer {
	return &Dealer{src: src}
}

// NewPile returns an empty pile bound to the dealer's Source.
func (d *Dealer) NewPile() *Pile {
	return &Pile{src: d.src}
}

// PileOf returns a pile holding cards, bottom to top.
func (d *Dealer) PileOf(cards ...*Card) *Pile {
	p := d.NewPile()
	p.Push(cards...)
	return p
}

// Card builds a face-down card. It fails with a configuration error for
// values or suits outside the supported range.
func (d *Dealer) Card(value int, suit Suit) (*Card, error) {
	if err := Validate(value, suit); err != nil {
		return nil, err
	}
	return &Card{Value: value, Suit: suit}, nil
}
