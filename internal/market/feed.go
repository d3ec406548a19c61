package market

import (
	"math"
	"math/rand"

	"github.com/womenwealthwave/wealthwave/pkg/utils"
)

// Feed produces the next price from the previous one. RandomWalk is the
// simulated implementation; a live data source can satisfy the same
// interface.
type Feed interface {
	Next(prev float64) float64
}

// RandomWalk moves the price by a uniform delta in (-Amplitude/2,
// +Amplitude/2), rounds to paise and never drops below Floor.
type RandomWalk struct {
	Amplitude float64
	Floor     float64

	// Rand returns a value in [0, 1). Nil uses math/rand/v2.
	Rand func() float64
}

// Next implements Feed.
func (w RandomWalk) Next(prev float64) float64 {
	sample := rand.Float64
	if w.Rand != nil {
		sample = w.Rand
	}
	delta := (sample() - 0.5) * w.Amplitude
	return math.Max(w.Floor, utils.RoundTo(prev+delta, 2))
}

// FeedFunc adapts a plain function to Feed.
type FeedFunc func(prev float64) float64

// Next implements Feed.
func (f FeedFunc) Next(prev float64) float64 { return f(prev) }
