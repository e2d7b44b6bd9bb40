package game

import (
	"fmt"
	"sort"
	"strconv"

	"example.com/pennyfarthing/internal/cards"
	apperrors "example.com/pennyfarthing/internal/errors"
	"example.com/pennyfarthing/internal/random"
	"example.com/pennyfarthing/internal/rules"
	"example.com/pennyfarthing/internal/zone"

	"go.uber.org/zap"
)

// Controller mediates between the active ruleset and its zones. It is
// single-threaded: one input event or deal runs to completion before the
// next starts, and the caller must not use it from several goroutines.
type Controller struct {
	registry *rules.Registry
	log      *zap.Logger

	stream *random.Stream
	state  *State
	status Status
	drag   *rules.Dragged

	animations bool

	listeners map[int]func(Event)
	nextID    int
}

var _ rules.Table = (*Controller)(nil)

// New returns an uninitialized controller that looks rulesets up in registry.
func New(registry *rules.Registry, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		registry:  registry,
		log:       logger,
		listeners: map[int]func(Event){},
	}
}

// Status returns the lifecycle state.
func (c *Controller) Status() Status { return c.status }

// Seed returns the seed of the current game, or 0 before the first deal.
func (c *Controller) Seed() uint32 {
	if c.state == nil {
		return 0
	}
	return c.state.Seed
}

// Ruleset returns the active ruleset, or nil.
func (c *Controller) Ruleset() rules.Ruleset {
	if c.state == nil {
		return nil
	}
	return c.state.Ruleset
}

// Zones returns the live zone map. Callers outside rulesets must treat it as
// read-only.
func (c *Controller) Zones() zone.Map {
	if c.state == nil {
		return nil
	}
	return c.state.Zones
}

// Animations reports the last animation hint.
func (c *Controller) Animations() bool { return c.animations }

// Subscribe registers fn for state change events and returns a function that
// removes it.
func (c *Controller) Subscribe(fn func(Event)) (cancel func()) {
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() { delete(c.listeners, id) }
}

func (c *Controller) emit(kind EventKind) {
	ev := Event{Kind: kind, Seed: c.Seed()}
	if r := c.Ruleset(); r != nil {
		ev.Ruleset = r.Name()
	}
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := c.listeners[id]; ok {
			fn(ev)
		}
	}
}

// NewGame deals name with a freshly rolled seed. An empty name restarts the
// active ruleset.
func (c *Controller) NewGame(name string) (uint32, error) {
	return c.Initialize(name, nil)
}

// Replay deals name with seed. An empty name replays on the active ruleset.
func (c *Controller) Replay(name string, seed uint32) (uint32, error) {
	return c.Initialize(name, &seed)
}

// Initialize seeds the stream (rolling a seed when seed is nil), resolves the
// ruleset (the active one when name is empty), deals a fresh zone map and runs
// the ruleset's setup hook. On any error the previous game is left untouched.
// It returns the seed in use.
func (c *Controller) Initialize(name string, seed *uint32) (uint32, error) {
	r, err := c.resolveRuleset(name)
	if err != nil {
		return 0, err
	}

	var s uint32
	if seed != nil {
		s = *seed
	} else if s, err = random.NewSeed(); err != nil {
		return 0, err
	}

	stream := random.New(s)
	zones, err := zone.Deal(cards.NewDealer(stream), r.RequestDeal, r.RequestLayout().ZoneNames())
	if err != nil {
		return 0, fmt.Errorf("ruleset %s: %w", r.Name(), err)
	}

	prevStream, prevState, prevStatus, prevDrag := c.stream, c.state, c.status, c.drag
	c.stream = stream
	c.state = &State{Seed: s, Zones: zones, Ruleset: r}
	c.status = StatusDealt
	c.drag = nil

	if err := rules.Setup(r, c); err != nil {
		c.stream, c.state, c.status, c.drag = prevStream, prevState, prevStatus, prevDrag
		return 0, fmt.Errorf("ruleset %s setup: %w", r.Name(), err)
	}

	c.log.Info("game dealt",
		zap.String("ruleset", r.Name()),
		zap.Uint32("seed", s),
		zap.Int("cards", zones.Count()),
	)
	c.emit(EventDealt)
	return s, nil
}

// Deal re-deals the active ruleset with the current seed.
func (c *Controller) Deal() error {
	if c.state == nil {
		return errNoGame()
	}
	seed := c.state.Seed
	_, err := c.Initialize("", &seed)
	return err
}

// Load replaces the zones of the active game with data.
func (c *Controller) Load(data zone.Data) error {
	if c.state == nil {
		return errNoGame()
	}
	return c.Restore(c.state.Ruleset.Name(), c.state.Seed, data)
}

// Restore installs a game of ruleset name with the given seed and zones. The
// setup hook is not run. On error the previous game is left untouched.
func (c *Controller) Restore(name string, seed uint32, data zone.Data) error {
	r, err := c.resolveRuleset(name)
	if err != nil {
		return err
	}
	stream := random.New(seed)
	zones, err := zone.Load(cards.NewDealer(stream), data, r.RequestLayout().ZoneNames())
	if err != nil {
		return err
	}

	c.stream = stream
	c.state = &State{Seed: seed, Zones: zones, Ruleset: r}
	c.status = StatusDealt
	c.drag = nil

	c.log.Info("game restored", zap.String("ruleset", r.Name()), zap.Uint32("seed", seed))
	c.emit(EventDealt)
	return nil
}

// resolveRuleset looks name up in the registry. An empty name means the
// active ruleset, looked up again so a re-deal picks up a reloaded one.
func (c *Controller) resolveRuleset(name string) (rules.Ruleset, error) {
	if name == "" {
		if c.state == nil {
			return nil, errNoGame()
		}
		if r, err := c.registry.Lookup(c.state.Ruleset.Name()); err == nil {
			return r, nil
		}
		return c.state.Ruleset, nil
	}
	return c.registry.Lookup(name)
}

// Snapshot returns the plain form of the current game.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{Status: c.status, Animations: c.animations, Won: c.status == StatusWon}
	if c.state == nil {
		return s
	}
	layout := c.state.Ruleset.RequestLayout()
	s.Ruleset = c.state.Ruleset.Name()
	s.Seed = c.state.Seed
	s.Layout = &layout
	s.Zones = zone.Serialize(c.state.Zones)
	return s
}

// ToggleAnimations records a presentation hint for the renderer. It does not
// touch the game.
func (c *Controller) ToggleAnimations(enabled bool) {
	c.animations = enabled
	c.emit(EventAnimations)
}

// Won marks the game as won. Calling it again has no effect.
func (c *Controller) Won() {
	if c.state == nil || c.status == StatusWon {
		return
	}
	c.status = StatusWon
	c.drag = nil
	c.log.Info("game won", zap.String("ruleset", c.state.Ruleset.Name()), zap.Uint32("seed", c.state.Seed))
	c.emit(EventWon)
}

func errNoGame() error {
	return apperrors.Configuration(apperrors.CodeNoActiveGame, "no active game", nil)
}

// pile resolves zone name and pile index. With stackOnly set, ladder zones
// are rejected.
func (c *Controller) pile(name string, index int, stackOnly bool) (*cards.Pile, error) {
	if c.state == nil {
		return nil, errNoGame()
	}
	z, ok := c.state.Zones[name]
	if !ok {
		return nil, apperrors.Configuration(apperrors.CodeUnknownZone,
			"unknown zone: "+name, map[string]string{"zone": name})
	}
	if stackOnly && !z.IsStack() {
		return nil, apperrors.Configuration(apperrors.CodeUnknownPile,
			"zone "+name+" is a ladder; address one of its piles",
			map[string]string{"zone": name})
	}
	p := z.At(index)
	if p == nil {
		return nil, apperrors.Configuration(apperrors.CodeUnknownPile,
			"zone "+name+" has no pile "+strconv.Itoa(index),
			map[string]string{"zone": name, "pile": strconv.Itoa(index)})
	}
	return p, nil
}

// Take removes up to n cards from the top of stack zone name.
func (c *Controller) Take(name string, n int) (*cards.Pile, error) {
	p, err := c.pile(name, 0, true)
	if err != nil {
		return nil, err
	}
	return c.take(p, n), nil
}

// TakeFrom removes up to n cards from the top of pile index of zone name.
func (c *Controller) TakeFrom(name string, index, n int) (*cards.Pile, error) {
	p, err := c.pile(name, index, false)
	if err != nil {
		return nil, err
	}
	return c.take(p, n), nil
}

func (c *Controller) take(p *cards.Pile, n int) *cards.Pile {
	out := p.Take(n)
	if !out.Empty() {
		c.emit(EventChanged)
	}
	return out
}

// Place moves every card of p onto stack zone name, emptying p.
func (c *Controller) Place(p *cards.Pile, name string) error {
	dst, err := c.pile(name, 0, true)
	if err != nil {
		return err
	}
	c.place(p, dst)
	return nil
}

// PlaceOn moves every card of p onto pile index of zone name.
func (c *Controller) PlaceOn(p *cards.Pile, name string, index int) error {
	dst, err := c.pile(name, index, false)
	if err != nil {
		return err
	}
	c.place(p, dst)
	return nil
}

func (c *Controller) place(p, dst *cards.Pile) {
	if p.Empty() {
		return
	}
	dst.Add(p)
	c.emit(EventChanged)
}

// PeekByPile returns the top card of stack zone name, or nil when the pile
// is empty.
func (c *Controller) PeekByPile(name string) (*cards.Card, error) {
	p, err := c.pile(name, 0, true)
	if err != nil {
		return nil, err
	}
	return p.Top(), nil
}

// PeekAt returns the top card of pile index of zone name, or nil.
func (c *Controller) PeekAt(name string, index int) (*cards.Card, error) {
	p, err := c.pile(name, index, false)
	if err != nil {
		return nil, err
	}
	return p.Top(), nil
}

// Flip sets the face of the top card of pile index of zone name. An empty
// pile is left alone.
func (c *Controller) Flip(name string, index int, up bool) error {
	p, err := c.pile(name, index, false)
	if err != nil {
		return err
	}
	top := p.Top()
	if top == nil || top.Up == up {
		return nil
	}
	top.Up = up
	c.emit(EventChanged)
	return nil
}

// Count returns the number of cards in pile index of zone name.
func (c *Controller) Count(name string, index int) (int, error) {
	p, err := c.pile(name, index, false)
	if err != nil {
		return 0, err
	}
	return p.Len(), nil
}
