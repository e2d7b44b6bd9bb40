package cards

// Source supplies the uniform draws used by Shuffle.
type Source interface {
	Float64() float64
}

// Pile is an ordered stack of cards. Index 0 is the bottom, the last index
// is the top. Every operation is total: empty piles yield empty results or
// nil cards, never errors.
type Pile struct {
	cards []*Card
	src   Source
}

// Len returns the number of cards in the pile.
func (p *Pile) Len() int {
	if p == nil {
		return 0
	}
	return len(p.cards)
}

// Empty reports whether the pile holds no cards.
func (p *Pile) Empty() bool {
	return p.Len() == 0
}

// Cards returns a copy of the card slice, bottom to top. The cards themselves
// are shared.
func (p *Pile) Cards() []*Card {
	if p == nil {
		return nil
	}
	out := make([]*Card, len(p.cards))
	copy(out, p.cards)
	return out
}

// Get returns the card at index, or nil when out of range. Negative indexes
// count from the top: -1 is the top card.
func (p *Pile) Get(index int) *Card {
	n := p.Len()
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return nil
	}
	return p.cards[index]
}

// Top returns the top card, or nil if the pile is empty.
func (p *Pile) Top() *Card {
	return p.Get(-1)
}

// Fill appends a standard 52-card set face down, suit-major in the order
// clubs, hearts, spades, diamonds, each from 1 to 13.
func (p *Pile) Fill() {
	for _, s := range Suits {
		for v := MinValue; v <= MaxValue; v++ {
			p.cards = append(p.cards, &Card{Value: v, Suit: s})
		}
	}
}

// Shuffle permutes the pile in place: for i from the last index down to 0 it
// swaps i with floor(draw * (i+1)), so a pile of n cards consumes n draws. A
// pile without a Source is left as is.
func (p *Pile) Shuffle() {
	if p == nil || p.src == nil {
		return
	}
	for i := len(p.cards) - 1; i >= 0; i-- {
		j := int(p.src.Float64() * float64(i+1))
		p.cards[i], p.cards[j] = p.cards[j], p.cards[i]
	}
}

// Take removes up to n cards from the top and returns them as a new pile in
// their original relative order. Asking for more than the pile holds takes
// everything; n <= 0 takes nothing.
func (p *Pile) Take(n int) *Pile {
	out := &Pile{}
	if p == nil {
		return out
	}
	out.src = p.src
	if n <= 0 || len(p.cards) == 0 {
		return out
	}
	if n > len(p.cards) {
		n = len(p.cards)
	}
	cut := len(p.cards) - n
	out.cards = make([]*Card, n)
	copy(out.cards, p.cards[cut:])
	p.cards = p.cards[:cut]
	return out
}

// Add moves every card of other onto the top of p, keeping their order, and
// leaves other empty. Adding a pile to itself is a no-op.
func (p *Pile) Add(other *Pile) {
	if other == nil || other == p || len(other.cards) == 0 {
		return
	}
	p.cards = append(p.cards, other.cards...)
	other.cards = nil
}

// Push puts cards on top in argument order. Nil cards are skipped.
func (p *Pile) Push(cards ...*Card) {
	for _, c := range cards {
		if c != nil {
			p.cards = append(p.cards, c)
		}
	}
}

// Clone returns a copy of p with copies of its cards, sharing p's Source.
func (p *Pile) Clone() *Pile {
	if p == nil {
		return nil
	}
	out := &Pile{src: p.src, cards: make([]*Card, len(p.cards))}
	for i, c := range p.cards {
		cc := *c
		out.cards[i] = &cc
	}
	return out
}

// SetUp sets the face-up flag on every card in the pile.
func (p *Pile) SetUp(up bool) {
	for _, c := range p.cards {
		c.Up = up
	}
}
