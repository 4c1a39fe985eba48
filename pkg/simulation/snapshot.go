package simulation

import (
	"slices"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Snapshot is a copy of what the front-ends draw for one tick. It owns its
// slices, so it can cross goroutines.
type Snapshot struct {
	Tick uint64
	Time float64

	// Ready is false while the background is still being generated.
	Ready  bool
	Paused bool

	Player   PlayerState
	Sprites  []flock.Sprite
	Cells    []flock.GridCell
	ShowGrid bool

	Weights   flock.Weights
	Flyers    int
	Hoverers  int
	PoolSize  int
	GridCells int
	Drones    int
	// WaveSpawned is the number of drones the wave added this tick.
	WaveSpawned int
}

// PlayerState is the player part of a snapshot.
type PlayerState struct {
	Position geometry.Vector2D
	Velocity geometry.Vector2D
	Alive    bool
}

// Active is the total number of live agents.
func (s *Snapshot) Active() int {
	return s.Flyers + s.Hoverers
}

// Recorder collects the draw calls of a tick. It implements flock.Renderer
// and flock.GridRenderer and reuses its buffers between ticks.
type Recorder struct {
	sprites []flock.Sprite
	cells   []flock.GridCell
}

var (
	_ flock.Renderer     = (*Recorder)(nil)
	_ flock.GridRenderer = (*Recorder)(nil)
)

// DrawSprite implements flock.Renderer.
func (r *Recorder) DrawSprite(s flock.Sprite) {
	r.sprites = append(r.sprites, s)
}

// DrawGridCell implements flock.GridRenderer.
func (r *Recorder) DrawGridCell(c flock.GridCell) {
	r.cells = append(r.cells, c)
}

// Reset forgets the recorded calls, keeping the capacity.
func (r *Recorder) Reset() {
	clear(r.sprites)
	r.sprites = r.sprites[:0]
	r.cells = r.cells[:0]
}

// Sprites returns a copy of the recorded sprites.
func (r *Recorder) Sprites() []flock.Sprite {
	return slices.Clone(r.sprites)
}

// Cells returns a copy of the recorded grid cells.
func (r *Recorder) Cells() []flock.GridCell {
	return slices.Clone(r.cells)
}
