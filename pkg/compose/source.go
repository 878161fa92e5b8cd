// Package compose stitches beats from a corpus database into new pieces.
//
// A composition is a rejection sampler. Each attempt draws an opening beat,
// follows the lexicon from beat to beat until the chain can stop on a tonic,
// renders the chain into notes and checks the result as a whole. Any failure
// discards the attempt and the engine starts again from a new opening, up to
// Config.MaxAttempts times. All randomness comes from one Source, so a seed
// and a database determine the piece.
package compose

import "math/rand/v2"

// Source is the random source every choice in a composition is drawn from.
// *rand.Rand satisfies it.
type Source interface {
	// IntN returns a uniform integer in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// NewSource returns a PCG generator seeded from seed. Two sources made from
// the same seed produce the same sequence.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Choose returns a uniformly random element of items, which must not be
// empty.
func Choose[T any](src Source, items []T) T {
	return items[src.IntN(len(items))]
}
