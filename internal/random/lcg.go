// Package random provides the deterministic number stream that drives every
// shuffle in a game.
//
// # Determinism
//
// Stream is a linear congruential generator using the Numerical Recipes
// constants (m = 2^32, a = 1664525, c = 1013904223). All arithmetic is done in
// uint32, so the sequence produced for a given seed is identical on every
// platform; the only floating point operation is the final division in Float64.
package random

const (
	modulus    = 1 << 32
	multiplier = 1664525
	increment  = 1013904223
)

// Stream is a seeded pseudo-random sequence. The zero value is seeded with 0.
// A Stream is not safe for concurrent use.
type Stream struct {
	seed uint32
	z    uint32
}

// New returns a stream seeded with seed.
func New(seed uint32) *Stream {
	s := &Stream{}
	s.SetSeed(seed)
	return s
}

// NewRandom returns a stream seeded from crypto/rand. The rolled seed is
// available through Seed so the game can be replayed.
func NewRandom() (*Stream, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return New(seed), nil
}

// SetSeed resets the stream so the next draw is the first draw for seed.
func (s *Stream) SetSeed(seed uint32) {
	s.seed = seed
	s.z = seed
}

// Seed returns the value the stream was last seeded with.
func (s *Stream) Seed() uint32 {
	return s.seed
}

// Next advances the recurrence and returns the new state.
func (s *Stream) Next() uint32 {
	// uint32 overflow is the mod 2^32.
	s.z = multiplier*s.z + increment
	return s.z
}

// Float64 returns a value in [0, 1).
func (s *Stream) Float64() float64 {
	return float64(s.Next()) / modulus
}

// Intn returns a value in [0, n) as floor(Float64() * n). It returns 0 when
// n <= 0.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Float64() * float64(n))
}
