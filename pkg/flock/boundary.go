package flock

import (
	"image/color"
	"math"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/spatial"
)

// Clock gives the simulation time, in seconds, and the duration of the
// current tick. It must be monotonic.
type Clock interface {
	Now() float64
	Delta() float64
}

// Tick is the clock reading used for one manager update.
type Tick struct {
	Now   float64
	Delta float64
}

// TickOf reads c once.
func TickOf(c Clock) Tick {
	return Tick{Now: c.Now(), Delta: c.Delta()}
}

// Random is the source of jitter.
type Random interface {
	// Range returns a uniform value in [min, max).
	Range(min, max float64) float64
	// InAnnulus returns a point uniformly distributed in the ring between
	// minRadius and maxRadius around the origin.
	InAnnulus(maxRadius, minRadius float64) geometry.Vector2D
}

// Target is something agents can follow or measure distance to, like the
// player. Agents never own a target: they check Alive on every read and
// drop it once it reports false.
type Target interface {
	Position() geometry.Vector2D
	Velocity() geometry.Vector2D
	Alive() bool
}

// Animation is an opaque handle on the frames of a sprite. The simulation
// only checks that it has frames and forwards it to the Renderer.
type Animation interface {
	FrameCount() int
}

// NamedAnimation is a minimal Animation for headless runs.
type NamedAnimation struct {
	Name   string
	Frames int
}

// FrameCount implements Animation.
func (a NamedAnimation) FrameCount() int { return a.Frames }

// Sprite is what an agent asks the renderer to draw.
type Sprite struct {
	Animation Animation
	Kind      Kind
	Position  geometry.Vector2D
	Size      geometry.Vector2D
	Color     color.RGBA
	// Angle is the heading derived from the velocity, in radians.
	Angle float64
	// Time is the animation clock of this agent: simulation time plus a
	// per-agent offset so flocks don't flap in sync.
	Time float64
}

// Frame returns the animation frame to show when playing at fps frames per second.
func (s Sprite) Frame(fps float64) int {
	if s.Animation == nil {
		return 0
	}
	n := s.Animation.FrameCount()
	if n <= 0 {
		return 0
	}
	f := int(math.Floor(s.Time*fps)) % n
	if f < 0 {
		f += n
	}
	return f
}

// Renderer draws agents. It is write-only: the simulation never reads back.
type Renderer interface {
	DrawSprite(s Sprite)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(s Sprite)

// DrawSprite implements Renderer.
func (f RendererFunc) DrawSprite(s Sprite) { f(s) }

// GridCell describes one cell of the spatial grid for debug overlays.
type GridCell struct {
	Key       spatial.CellKey
	Origin    geometry.Vector2D
	Size      float64
	Occupants int
}

// GridRenderer draws the spatial grid overlay.
type GridRenderer interface {
	DrawGridCell(c GridCell)
}

// Readiness is polled once per tick; the manager skips the tick while it
// reports false.
type Readiness interface {
	Ready() bool
}

// ReadyFunc adapts a function to Readiness.
type ReadyFunc func() bool

// Ready implements Readiness.
func (f ReadyFunc) Ready() bool { return f() }
