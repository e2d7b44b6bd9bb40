package game

import (
	"fmt"
	"strconv"

	apperrors "example.com/pennyfarthing/internal/errors"
	"example.com/pennyfarthing/internal/rules"

	"go.uber.org/zap"
)

// BeginDrag asks the active ruleset whether the cards from index to the top
// of pile of zone name may be dragged. A negative index counts from the top
// and clamps at the bottom, so -1 on an empty pile selects nothing.
// When allowed the controller waits for Drop or CancelDrag. Input after the
// game is won is ignored.
func (c *Controller) BeginDrag(name string, pile, index int) (bool, error) {
	if c.state == nil {
		return false, errNoGame()
	}
	if c.status == StatusWon {
		return false, nil
	}
	p, err := c.pile(name, pile, false)
	if err != nil {
		return false, err
	}

	all := p.Cards()
	if index < 0 {
		index = max(index+len(all), 0)
	}
	if index > len(all) {
		return false, apperrors.Configuration(apperrors.CodeBadSelection,
			"selection index "+strconv.Itoa(index)+" out of range for "+name,
			map[string]string{"zone": name, "index": strconv.Itoa(index)})
	}

	sel := rules.Dragged{Zone: name, Pile: pile, Index: index, Cards: all[index:]}
	allowed := rules.AllowDrag(c.state.Ruleset, sel)
	c.log.Debug("drag",
		zap.String("zone", name),
		zap.Int("pile", pile),
		zap.Int("cards", len(sel.Cards)),
		zap.Bool("allowed", allowed),
	)
	if !allowed {
		return false, nil
	}
	c.drag = &sel
	c.status = StatusInputPending
	return true, nil
}

// Drop completes the pending drag on pile of zone name and hands both ends to
// the ruleset. The dropped card is the top card of the target pile. An empty
// name is an off-board drop and reaches the ruleset with no zone. Without a
// pending drag, Drop does nothing. When the ruleset fails, the zones, the
// stream and the status are put back as they were before the drop.
func (c *Controller) Drop(name string, pile int) error {
	if c.status != StatusInputPending || c.drag == nil {
		return nil
	}
	sel := *c.drag
	c.drag = nil
	c.status = StatusDealt

	dropped := rules.Dropped{Zone: name, Pile: pile}
	if name != "" {
		p, err := c.pile(name, pile, false)
		if err != nil {
			return err
		}
		dropped.Card = p.Top()
	}

	c.log.Debug("drop",
		zap.String("from", sel.Zone),
		zap.String("to", name),
		zap.Int("pile", pile),
	)
	backup, stream := c.state.Zones.Clone(), *c.stream
	if err := rules.Drop(c.state.Ruleset, c, sel, dropped); err != nil {
		c.state.Zones = backup
		*c.stream = stream
		c.status = StatusDealt
		c.emit(EventChanged)
		return fmt.Errorf("ruleset %s drop: %w", c.state.Ruleset.Name(), err)
	}
	return nil
}

// CancelDrag drops the pending drag without consulting the ruleset.
func (c *Controller) CancelDrag() {
	if c.status == StatusInputPending {
		c.status = StatusDealt
	}
	c.drag = nil
}

// Click is a drag and drop on the same spot, the way the view reports a
// plain click on a card.
func (c *Controller) Click(name string, pile, index int) error {
	ok, err := c.BeginDrag(name, pile, index)
	if err != nil || !ok {
		return err
	}
	return c.Drop(name, pile)
}

// Pending returns the selection being dragged, if any.
func (c *Controller) Pending() (rules.Dragged, bool) {
	if c.drag == nil {
		return rules.Dragged{}, false
	}
	return *c.drag, true
}
