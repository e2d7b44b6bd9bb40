package rules

import (
	"example.com/pennyfarthing/internal/cards"
	"example.com/pennyfarthing/internal/zone"
)

// Template is the example game for ruleset authors. Six columns of face-up
// cards hide one joker; taking a tableau card into the hand discards the old
// hand, and taking the joker wins.
type Template struct{}

func (Template) Name() string { return TemplateName }

func (Template) RequestLayout() Layout {
	return Layout{
		Columns: 6,
		Rows:    4,
		Zones: map[string]Rect{
			"tableau": {Col: 1, Row: 2, Width: 6, Height: 3},
			"reserve": {Col: 1, Row: 1, Width: 1, Height: 1},
			"discard": {Col: 2, Row: 1, Width: 1, Height: 1},
			"hand":    {Col: 6, Row: 1, Width: 1, Height: 1},
		},
		Victory: &Victory{Text: "Winner!", Color: "cyan", Card: "12H"},
	}
}

func (Template) RequestRulesWording() string {
	return `<p>This is a template game you can use to build your own card games.</p>` +
		`<p>The rules are simple:</p><ul>` +
		`<li>Pick any top card to replace your current hand, which will be discarded</li>` +
		`<li>If you pick up the joker you win the game.</li></ul>`
}

// RequestDeal leaves reserve and discard unset; they are defaulted to empty
// piles.
func (Template) RequestDeal(d *cards.Dealer, zones zone.Map) error {
	deck := d.NewPile()
	deck.Fill()
	deck.Shuffle()

	hand := deck.Take(1)
	hand.SetUp(true)
	zones.Stack("hand", hand)

	joker, err := d.Card(103, cards.Joker)
	if err != nil {
		return err
	}
	deck.Push(joker)
	deck.Shuffle()
	deck.SetUp(true)

	tableau := make([]*cards.Pile, 6)
	for i := range tableau {
		tableau[i] = deck.Take(9)
	}
	zones.Ladder("tableau", tableau...)
	return nil
}

func (Template) DropEvent(t Table, dragged Dragged, dropped Dropped) error {
	hand, err := t.PeekByPile("hand")
	if err != nil {
		return err
	}
	// the joker is already in hand: game over
	if hand != nil && hand.IsJoker() {
		return nil
	}
	if dragged.Zone != "tableau" || dropped.Zone != "hand" || len(dragged.Cards) != 1 {
		return nil
	}

	old, err := t.Take("hand", 1)
	if err != nil {
		return err
	}
	if err := t.Place(old, "discard"); err != nil {
		return err
	}
	picked, err := t.TakeFrom("tableau", dragged.Pile, 1)
	if err != nil {
		return err
	}
	if err := t.Place(picked, "hand"); err != nil {
		return err
	}
	if dragged.Cards[0].IsJoker() {
		t.Won()
	}
	return nil
}
