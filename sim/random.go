package sim

import (
	"fmt"
	"math/rand"
)

// DefaultSeed is the seed used when none is configured.
const DefaultSeed int64 = 9999

// A RandomSource draws uniform values in [0, 1).
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a deterministic RandomSource seeded with seed.
func NewRandomSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// CheckRandomSource draws 1000 values from r and fails if their mean falls
// outside [0.25, 0.75]. The draws are consumed.
func CheckRandomSource(r RandomSource) error {
	sum := 0.0
	for i := 0; i < 1000; i++ {
		sum += r.Float64()
	}

	avg := sum / 1000.0
	if avg < 0.25 || avg > 0.75 {
		return fmt.Errorf(
			"random source looks broken: mean of 1000 draws is %.4f", avg)
	}

	return nil
}

// A SequenceSource replays a fixed list of values, cycling when it runs out.
type SequenceSource struct {
	values []float64
	next   int
}

// NewSequenceSource creates a SequenceSource over values.
func NewSequenceSource(values ...float64) *SequenceSource {
	if len(values) == 0 {
		panic("sequence source needs at least one value")
	}

	return &SequenceSource{values: values}
}

// Float64 returns the next value.
func (s *SequenceSource) Float64() float64 {
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)

	return v
}

// Drawn returns how many values have been drawn since the last wrap.
func (s *SequenceSource) Drawn() int {
	return s.next
}
