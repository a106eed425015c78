package sched

import "github.com/sarchlab/akita/v4/sim"

// Time is simulated time in picoseconds.
type Time uint64

const (
	Picosecond Time = 1
	Nanosecond      = 1000 * Picosecond
)

func (t Time) seconds() sim.VTimeInSec {
	return sim.VTimeInSec(float64(t) * 1e-12)
}
