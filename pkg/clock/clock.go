// Package clock provides the monotonic simulation clock driving the ticks.
package clock

import "time"

// Sim is a simulation clock advanced explicitly once per tick. It never reads
// the wall clock, so timed behaviors only fire inside a tick and replay
// identically in tests.
type Sim struct {
	now   time.Duration
	delta time.Duration
	ticks uint64
}

// NewSim returns a clock at time zero.
func NewSim() *Sim {
	return &Sim{}
}

// Advance moves the clock forward by dt and makes dt the current tick length.
// Negative durations are ignored to keep the clock monotonic.
func (c *Sim) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	c.now += dt
	c.delta = dt
	c.ticks++
}

// Now is the elapsed simulation time in seconds.
func (c *Sim) Now() float64 {
	return c.now.Seconds()
}

// Delta is the length of the current tick in seconds.
func (c *Sim) Delta() float64 {
	return c.delta.Seconds()
}

// Elapsed is the elapsed simulation time.
func (c *Sim) Elapsed() time.Duration {
	return c.now
}

// Ticks is the number of Advance calls so far.
func (c *Sim) Ticks() uint64 {
	return c.ticks
}

// FrameDuration converts a tick rate to the duration of one tick.
func FrameDuration(tps int) time.Duration {
	if tps <= 0 {
		return 0
	}
	return time.Second / time.Duration(tps)
}
