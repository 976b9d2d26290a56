package timing

import (
	"log"
	"math"
)

// Freq is a clock frequency in Hz.
type Freq float64

// Frequency units.
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two clock edges. A zero frequency panics.
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return VTimeInSec(1.0 / f)
}

// Cycle returns the number of clock edges between time 0 and the given time.
func (f Freq) Cycle(t VTimeInSec) uint64 {
	return uint64(math.Round(t * float64(f)))
}

// ThisTick returns the first clock edge at or after now.
func (f Freq) ThisTick(now VTimeInSec) VTimeInSec {
	return math.Ceil(f.edges(now)) / float64(f)
}

// NextTick returns the first clock edge strictly after now, when now is on
// an edge, or the edge that follows the current period otherwise.
func (f Freq) NextTick(now VTimeInSec) VTimeInSec {
	return (math.Floor(f.edges(now)) + 1) / float64(f)
}

// edges converts a time to a number of periods, rounded to a tenth of a
// period so that floating point noise does not move a time across an edge.
func (f Freq) edges(t VTimeInSec) float64 {
	if math.IsNaN(t) {
		log.Panic("invalid time")
	}

	return math.Round(t*10*float64(f)) / 10
}
