package cards

import (
	"errors"
	"testing"

	apperrors "example.com/pennyfarthing/internal/errors"
	"example.com/pennyfarthing/internal/random"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(p *Pile) []string {
	out := make([]string, 0, p.Len())
	for _, c := range p.Cards() {
		out = append(out, c.Name())
	}
	return out
}

func filled(seed uint32) *Pile {
	p := NewDealer(random.New(seed)).NewPile()
	p.Fill()
	return p
}

func TestFill_CanonicalOrder(t *testing.T) {
	p := filled(1)

	require.Equal(t, 52, p.Len())
	assert.Equal(t, "1C", p.Get(0).Name())
	assert.Equal(t, "13C", p.Get(12).Name())
	assert.Equal(t, "1H", p.Get(13).Name())
	assert.Equal(t, "13D", p.Top().Name())
	for _, c := range p.Cards() {
		assert.False(t, c.Up)
	}
}

func TestTake_PreservesOrder(t *testing.T) {
	p := filled(1)

	top := p.Take(3)

	assert.Equal(t, []string{"11D", "12D", "13D"}, names(top))
	assert.Equal(t, 49, p.Len())
	assert.Equal(t, "10D", p.Top().Name())
}

func TestTakeAdd_Inverse(t *testing.T) {
	for n := 0; n <= 52; n++ {
		p := filled(5)
		p.Shuffle()
		before := names(p)

		taken := p.Take(n)
		require.Equal(t, n, taken.Len())
		p.Add(taken)

		require.Equal(t, before, names(p), "n=%d", n)
		require.True(t, taken.Empty())
	}
}

func TestTake_Saturates(t *testing.T) {
	p := filled(1)
	p.Take(45)

	got := p.Take(10)

	assert.Equal(t, 7, got.Len())
	assert.True(t, p.Empty())
	assert.True(t, p.Take(1).Empty())
	assert.True(t, p.Take(-2).Empty())
}

func TestGet_EmptyAndOutOfRange(t *testing.T) {
	p := NewDealer(nil).NewPile()

	assert.Nil(t, p.Top())
	assert.Nil(t, p.Get(0))

	p.Push(&Card{Value: 7, Suit: Hearts})
	assert.Nil(t, p.Get(1))
	assert.Nil(t, p.Get(-2))
	assert.Equal(t, "7H", p.Get(-1).Name())
}

func TestAdd_SelfAndNil(t *testing.T) {
	p := filled(1)

	p.Add(p)
	p.Add(nil)

	assert.Equal(t, 52, p.Len())
}

func TestShuffle_PermutationAndDeterminism(t *testing.T) {
	a := filled(42)
	b := filled(42)
	a.Shuffle()
	b.Shuffle()

	assert.Equal(t, names(a), names(b))
	assert.ElementsMatch(t, names(filled(0)), names(a))
	assert.NotEqual(t, names(filled(0)), names(a))
}

func TestShuffle_WithoutSourceIsNoop(t *testing.T) {
	p := &Pile{}
	p.Fill()
	before := names(p)

	p.Shuffle()

	assert.Equal(t, before, names(p))
}

func TestDealerCard_Validation(t *testing.T) {
	d := NewDealer(nil)

	c, err := d.Card(7, Hearts)
	require.NoError(t, err)
	assert.Equal(t, "7H", c.Name())
	assert.False(t, c.Up)

	j, err := d.Card(103, Joker)
	require.NoError(t, err)
	assert.Equal(t, "103JOKER", j.Name())
	assert.True(t, j.IsJoker())

	plain, err := d.Card(0, Joker)
	require.NoError(t, err)
	assert.Equal(t, "JOKER", plain.Name())

	for _, tc := range []struct {
		value int
		suit  Suit
	}{
		{0, Hearts}, {14, Spades}, {104, Joker}, {5, Joker}, {3, Suit("X")},
	} {
		_, err := d.Card(tc.value, tc.suit)
		require.Error(t, err, "%d%s", tc.value, tc.suit)
		assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
	}
}

func TestParseSuit(t *testing.T) {
	for in, want := range map[string]Suit{
		"H": Hearts, "hearts": Hearts, "c": Clubs, "SPADES": Spades, "d": Diamonds,
		"joker": Joker, "JOKER": Joker,
	} {
		got, ok := ParseSuit(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseSuit("Z")
	assert.False(t, ok)
}

func TestSuitOf_OnlyStoredForms(t *testing.T) {
	for _, s := range append(Suits, Joker) {
		got, ok := SuitOf(string(s))
		require.True(t, ok, s)
		assert.Equal(t, s, got)
	}
	for _, in := range []string{"hearts", "h", "Joker", " H", ""} {
		_, ok := SuitOf(in)
		assert.False(t, ok, in)
	}
}

// countingSource hands out a fixed draw and counts how often it was asked.
type countingSource struct{ draws int }

func (s *countingSource) Float64() float64 {
	s.draws++
	return 0.5
}

func TestShuffle_DrawsOncePerCard(t *testing.T) {
	src := &countingSource{}
	p := NewDealer(src).NewPile()
	p.Fill()
	p.Shuffle()
	assert.Equal(t, 52, src.draws)

	one := NewDealer(src).NewPile()
	one.Push(&Card{Value: 1, Suit: Hearts})
	one.Shuffle()
	assert.Equal(t, 53, src.draws)
	assert.Equal(t, "1H", one.Top().Name())
}

func TestClone_IsIndependent(t *testing.T) {
	p := filled(3).Take(3)
	c := p.Clone()
	require.Equal(t, names(p), names(c))

	c.Top().Up = true
	c.Take(1)
	assert.Equal(t, 3, p.Len())
	assert.False(t, p.Top().Up)
}

func TestSetUp(t *testing.T) {
	p := filled(1).Take(4)
	p.SetUp(true)
	for _, c := range p.Cards() {
		assert.True(t, c.Up)
	}
}
