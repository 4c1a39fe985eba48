// Package random provides the seeded jitter source used by the simulation.
package random

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Source draws uniform values from a PCG generator. Two sources built with
// the same seed produce the same sequence, which keeps tests reproducible.
// A Source is not safe for concurrent use.
type Source struct {
	rng *rand.Rand
}

// New returns a source seeded with seed.
func New(seed uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float64 returns a value in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Range returns a uniform value in [min, max). Swapped bounds are accepted.
func (s *Source) Range(min, max float64) float64 {
	return min + s.rng.Float64()*(max-min)
}

// Angle returns a uniform angle in [0, 2*Pi).
func (s *Source) Angle() float64 {
	return s.rng.Float64() * 2 * math.Pi
}

// InAnnulus returns a point uniformly distributed over the area of the ring
// between minRadius and maxRadius.
func (s *Source) InAnnulus(maxRadius, minRadius float64) geometry.Vector2D {
	if maxRadius < minRadius {
		maxRadius, minRadius = minRadius, maxRadius
	}
	if maxRadius <= 0 {
		return geometry.Zero
	}
	minRadius = math.Max(minRadius, 0)
	r := math.Sqrt(s.Range(minRadius*minRadius, maxRadius*maxRadius))
	return geometry.NewVectorPolar(r, s.Angle())
}
