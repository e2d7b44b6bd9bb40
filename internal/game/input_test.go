package game

import (
	"testing"

	apperrors "example.com/pennyfarthing/internal/errors"
	"example.com/pennyfarthing/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_DragTableauCardIntoHand(t *testing.T) {
	c := newController(t)
	_, err := c.Replay("template", 11)
	require.NoError(t, err)

	oldHand, err := c.PeekByPile("hand")
	require.NoError(t, err)
	picked, err := c.PeekAt("tableau", 0)
	require.NoError(t, err)

	ok, err := c.BeginDrag("tableau", 0, -1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusInputPending, c.Status())

	require.NoError(t, c.Drop("hand", 0))
	assert.Equal(t, StatusDealt, c.Status())

	hand, err := c.PeekByPile("hand")
	require.NoError(t, err)
	assert.Same(t, picked, hand)
	discard, err := c.PeekByPile("discard")
	require.NoError(t, err)
	assert.Same(t, oldHand, discard)
	assert.Equal(t, 53, c.Zones().Count())
}

func TestTemplate_JokerWins(t *testing.T) {
	c := newController(t)
	_, err := c.Replay("template", 12)
	require.NoError(t, err)

	// dig the joker out to the top of its column
	col, depth := -1, 0
	for i, p := range c.Zones()["tableau"].Piles() {
		for j, card := range p.Cards() {
			if card.IsJoker() {
				col, depth = i, p.Len()-1-j
			}
		}
	}
	require.GreaterOrEqual(t, col, 0)
	above, err := c.TakeFrom("tableau", col, depth)
	require.NoError(t, err)
	require.NoError(t, c.Place(above, "reserve"))

	var won int
	c.Subscribe(func(ev Event) {
		if ev.Kind == EventWon {
			won++
		}
	})
	require.NoError(t, c.Click("tableau", col, -1))

	assert.Equal(t, StatusDealt, c.Status(), "click drops on the same zone, not the hand")
	ok, err := c.BeginDrag("tableau", col, -1)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, c.Drop("hand", 0))

	assert.Equal(t, StatusWon, c.Status())
	assert.Equal(t, 1, won)
	hand, err := c.PeekByPile("hand")
	require.NoError(t, err)
	assert.True(t, hand.IsJoker())
}

func TestDrag_RedealDiscardsPending(t *testing.T) {
	c := newController(t)
	_, err := c.Replay("template", 3)
	require.NoError(t, err)

	ok, err := c.BeginDrag("tableau", 1, -1)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.Deal())
	_, pending := c.Pending()
	assert.False(t, pending)

	before := c.Snapshot()
	require.NoError(t, c.Drop("hand", 0))
	assert.Equal(t, before, c.Snapshot())
}

func TestDrag_Selection(t *testing.T) {
	c := newController(t)
	_, err := c.Replay("template", 4)
	require.NoError(t, err)

	ok, err := c.BeginDrag("tableau", 2, 5)
	require.NoError(t, err)
	require.True(t, ok)
	sel, pending := c.Pending()
	require.True(t, pending)
	assert.Equal(t, 4, len(sel.Cards))
	assert.Equal(t, 5, sel.Index)

	c.CancelDrag()
	assert.Equal(t, StatusDealt, c.Status())

	_, err = c.BeginDrag("tableau", 2, 10)
	assert.ErrorIs(t, err, &apperrors.Error{Code: apperrors.CodeBadSelection})
	_, err = c.BeginDrag("nowhere", 0, 0)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestDrop_OffBoardReachesRuleset(t *testing.T) {
	c := newController(t)
	_, err := c.Replay("template", 5)
	require.NoError(t, err)
	before := c.Snapshot()

	ok, err := c.BeginDrag("tableau", 0, -1)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, c.Drop("", 0))

	assert.Equal(t, before.Zones, c.Snapshot().Zones)
	assert.Equal(t, StatusDealt, c.Status())
}

func TestBeginDrag_NoGame(t *testing.T) {
	c := newController(t)
	_, err := c.BeginDrag("hand", 0, 0)
	assert.ErrorIs(t, err, &apperrors.Error{Code: apperrors.CodeNoActiveGame})
}

// spillingGame moves cards around on a drop and then fails.
type spillingGame struct{ reserveGame }

func (*spillingGame) Name() string { return "spilling" }

func (*spillingGame) DropEvent(t rules.Table, _ rules.Dragged, _ rules.Dropped) error {
	p, err := t.Take("reserve", 3)
	if err != nil {
		return err
	}
	p.Shuffle()
	if err := t.Flip("main", 0, true); err != nil {
		return err
	}
	t.Won()
	return t.Place(p, "nowhere")
}

func TestDrop_FailingRulesetLeavesBoardUnchanged(t *testing.T) {
	c := newController(t, &spillingGame{})
	_, err := c.Replay("spilling", 42)
	require.NoError(t, err)
	before := c.Snapshot()
	stream := *c.stream

	var events []EventKind
	c.Subscribe(func(ev Event) { events = append(events, ev.Kind) })

	ok, err := c.BeginDrag("main", 0, -1)
	require.NoError(t, err)
	require.True(t, ok)

	err = c.Drop("waste", 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnknownZone, apperrors.CodeOf(err))

	after := c.Snapshot()
	assert.Equal(t, before.Zones, after.Zones)
	assert.Equal(t, 52, c.Zones().Count())
	assert.Equal(t, StatusDealt, c.Status())
	assert.False(t, after.Won)
	assert.Equal(t, stream, *c.stream)
	assert.Equal(t, EventChanged, events[len(events)-1])

	// the restored board is live: a later move still works
	p, err := c.Take("reserve", 1)
	require.NoError(t, err)
	require.NoError(t, c.Place(p, "waste"))
	assert.Equal(t, 4, c.Zones()["reserve"].Count())
}
