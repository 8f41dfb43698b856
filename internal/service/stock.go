package service

import "math/rand/v2"

// maxSynthesizedStock is the exclusive upper bound of synthesized stock levels.
const maxSynthesizedStock = 100

// RandSource yields uniform integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultRand returns a RandSource backed by the math/rand/v2 global generator.
func DefaultRand() RandSource {
	return globalRand{}
}

// StockSynthesizer invents stock levels for products the external catalog does not track stock for.
type StockSynthesizer struct {
	rnd RandSource
}

// NewStockSynthesizer creates a StockSynthesizer. A nil source uses DefaultRand.
func NewStockSynthesizer(rnd RandSource) *StockSynthesizer {
	if rnd == nil {
		rnd = DefaultRand()
	}
	return &StockSynthesizer{rnd: rnd}
}

// Synthesize returns a stock level in [0, 99].
func (s *StockSynthesizer) Synthesize() int {
	return s.rnd.IntN(maxSynthesizedStock)
}
