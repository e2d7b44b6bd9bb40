package rules

import (
	"example.com/pennyfarthing/internal/cards"
	"example.com/pennyfarthing/internal/zone"
)

const (
	klondikeColumns     = 7
	klondikeFoundations = 4
)

// Klondike is classic draw-one solitaire.
type Klondike struct{}

func (Klondike) Name() string { return "klondike" }

func (Klondike) RequestLayout() Layout {
	return Layout{
		Columns: 7,
		Rows:    4,
		Zones: map[string]Rect{
			"stock":       {Col: 1, Row: 1, Width: 1, Height: 1},
			"waste":       {Col: 2, Row: 1, Width: 1, Height: 1},
			"foundations": {Col: 4, Row: 1, Width: 4, Height: 1},
			"tableau":     {Col: 1, Row: 2, Width: 7, Height: 3},
		},
		Victory: &Victory{Text: "Solved!", Color: "gold", Card: "13S"},
	}
}

func (Klondike) RequestRulesWording() string {
	return `<p>Build the four foundations up by suit from ace to king.</p><ul>` +
		`<li>Tableau columns build down in alternating colours; only a king fills an empty column.</li>` +
		`<li>Click the stock to turn one card onto the waste; an empty stock turns the waste back over.</li>` +
		`<li>Face-up runs move together.</li></ul>`
}

func (Klondike) RequestDeal(d *cards.Dealer, zones zone.Map) error {
	deck := d.NewPile()
	deck.Fill()
	deck.Shuffle()

	tableau := make([]*cards.Pile, klondikeColumns)
	for i := range tableau {
		tableau[i] = deck.Take(i + 1)
		tableau[i].Top().Up = true
	}
	zones.Ladder("tableau", tableau...)

	foundations := make([]*cards.Pile, klondikeFoundations)
	for i := range foundations {
		foundations[i] = d.NewPile()
	}
	zones.Ladder("foundations", foundations...)

	zones.Stack("stock", deck)
	return nil
}

func (Klondike) AllowDragEvent(dragged Dragged) bool {
	switch dragged.Zone {
	case "stock":
		return true
	case "waste", "foundations":
		return len(dragged.Cards) == 1
	case "tableau":
		if len(dragged.Cards) == 0 {
			return false
		}
		for _, c := range dragged.Cards {
			if !c.Up {
				return false
			}
		}
		return true
	}
	return false
}

func (k Klondike) DropEvent(t Table, dragged Dragged, dropped Dropped) error {
	if dragged.Zone == "stock" {
		return k.draw(t)
	}
	if dragged.Zone == dropped.Zone && dragged.Pile == dropped.Pile {
		return nil
	}
	bottom := dragged.Bottom()
	if bottom == nil {
		return nil
	}

	var ok bool
	switch dropped.Zone {
	case "foundations":
		top, err := t.PeekAt("foundations", dropped.Pile)
		if err != nil {
			return err
		}
		ok = len(dragged.Cards) == 1 && foundationAccepts(top, bottom)
	case "tableau":
		top, err := t.PeekAt("tableau", dropped.Pile)
		if err != nil {
			return err
		}
		ok = tableauAccepts(top, bottom)
	}
	if !ok {
		return nil
	}

	moved, err := t.TakeFrom(dragged.Zone, dragged.Pile, len(dragged.Cards))
	if err != nil {
		return err
	}
	if err := t.PlaceOn(moved, dropped.Zone, dropped.Pile); err != nil {
		return err
	}

	if dragged.Zone == "tableau" {
		exposed, err := t.PeekAt("tableau", dragged.Pile)
		if err != nil {
			return err
		}
		if exposed != nil && !exposed.Up {
			if err := t.Flip("tableau", dragged.Pile, true); err != nil {
				return err
			}
		}
	}

	return k.checkWon(t)
}

// draw turns the stock top onto the waste, or turns the whole waste back
// over when the stock is empty.
func (Klondike) draw(t Table) error {
	n, err := t.Count("stock", 0)
	if err != nil {
		return err
	}
	if n > 0 {
		c, err := t.Take("stock", 1)
		if err != nil {
			return err
		}
		if err := t.Place(c, "waste"); err != nil {
			return err
		}
		return t.Flip("waste", 0, true)
	}

	w, err := t.Count("waste", 0)
	if err != nil {
		return err
	}
	for i := 0; i < w; i++ {
		if err := t.Flip("waste", 0, false); err != nil {
			return err
		}
		c, err := t.Take("waste", 1)
		if err != nil {
			return err
		}
		if err := t.Place(c, "stock"); err != nil {
			return err
		}
	}
	return nil
}

func (Klondike) checkWon(t Table) error {
	total := 0
	for i := 0; i < klondikeFoundations; i++ {
		n, err := t.Count("foundations", i)
		if err != nil {
			return err
		}
		total += n
	}
	if total == 52 {
		t.Won()
	}
	return nil
}

func foundationAccepts(top, c *cards.Card) bool {
	if top == nil {
		return c.Value == 1
	}
	return top.Suit == c.Suit && c.Value == top.Value+1
}

func tableauAccepts(top, c *cards.Card) bool {
	if top == nil {
		return c.Value == cards.MaxValue
	}
	return top.Up && top.Suit.Red() != c.Suit.Red() && c.Value == top.Value-1
}
