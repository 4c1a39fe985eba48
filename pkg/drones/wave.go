// Package drones implements the enemy wave policy: drones are spawned in
// small batches on an arc ahead of the player and culled once they fall too
// far behind. It only talks to the flock manager through its spawn and
// remove calls.
package drones

import (
	"math"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/tochemey/goakt/v3/log"
)

// Spawner is the part of flock.Manager a wave needs.
type Spawner interface {
	SpawnBoid(opts flock.Options) (*flock.Boid, error)
	RemoveBoid(b *flock.Boid) bool
	IsActive(b *flock.Boid) bool
}

// Settings tune the wave.
type Settings struct {
	Kind          flock.Kind
	SpawnInterval time.Duration
	BatchSize     int
	MaxDrones     int
	// drones appear between SpawnDistance and SpawnDistance+SpawnJitter
	// from the predicted target position
	SpawnDistance float64
	SpawnJitter   float64
	// SpawnArc is the angular width, in radians, centred on the target heading.
	SpawnArc          float64
	Lookahead         time.Duration
	MaxActiveDistance float64
	Size              geometry.Vector2D
}

// DefaultSettings returns the classic wave: two drones every two seconds, at
// most fifty, culled fifty units away from the player.
func DefaultSettings() Settings {
	return Settings{
		Kind:              flock.KindHoverer,
		SpawnInterval:     2 * time.Second,
		BatchSize:         2,
		MaxDrones:         50,
		SpawnDistance:     30,
		SpawnJitter:       5,
		SpawnArc:          math.Pi / 2,
		Lookahead:         time.Second,
		MaxActiveDistance: 50,
		Size:              geometry.Vector2D{X: 2, Y: 2},
	}
}

// minHeadingSpeed is the target speed under which its heading is meaningless
// and each drone picks a random direction.
const minHeadingSpeed = 0.1

// WaveController spawns and culls drones around a target.
// Like the manager, it must be driven from the tick goroutine.
type WaveController struct {
	settings Settings
	spawner  Spawner
	target   flock.Target
	clock    flock.Clock
	rnd      flock.Random
	logger   log.Logger

	drones    []*flock.Boid
	lastSpawn float64

	// SpawnHook, when set, is called after every batch with its size.
	SpawnHook func(n int)
}

// Option configures a WaveController.
type Option func(*WaveController)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l log.Logger) Option {
	return func(w *WaveController) { w.logger = l }
}

// NewWaveController creates a controller following target.
func NewWaveController(settings Settings, spawner Spawner, target flock.Target, clock flock.Clock, rnd flock.Random, opts ...Option) *WaveController {
	w := &WaveController{
		settings: settings,
		spawner:  spawner,
		target:   target,
		clock:    clock,
		rnd:      rnd,
		logger:   log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SetTarget changes the followed target, nil pauses spawning and culling.
func (w *WaveController) SetTarget(t flock.Target) {
	w.target = t
}

// Update runs the wave policy once: spawn a batch when due, then cull.
// The first error aborts the batch; drones already spawned stay tracked.
func (w *WaveController) Update() error {
	if w.target == nil || !w.target.Alive() {
		return nil
	}
	err := w.trySpawn()
	w.cull()
	return err
}

func (w *WaveController) trySpawn() error {
	now := w.clock.Now()
	if now-w.lastSpawn < w.settings.SpawnInterval.Seconds() || len(w.drones) >= w.settings.MaxDrones {
		return nil
	}

	n := min(w.settings.BatchSize, w.settings.MaxDrones-len(w.drones))
	spawned := 0
	for _, pos := range w.spawnPositions(n) {
		p := pos
		d, err := w.spawner.SpawnBoid(flock.Options{
			Kind:     w.settings.Kind,
			SpawnPos: &p,
			Size:     w.settings.Size,
		})
		if err != nil {
			return err
		}
		w.drones = append(w.drones, d)
		spawned++
	}
	w.lastSpawn = now
	w.logger.Debugf("wave: spawned %d drones, %d active", spawned, len(w.drones))
	if w.SpawnHook != nil && spawned > 0 {
		w.SpawnHook(spawned)
	}
	return nil
}

// spawnPositions places n points on the arc ahead of where the target will
// be after the lookahead.
func (w *WaveController) spawnPositions(n int) []geometry.Vector2D {
	vel := w.target.Velocity()
	center := w.target.Position().Add(vel.Mul(w.settings.Lookahead.Seconds()))
	half := w.settings.SpawnArc / 2

	positions := make([]geometry.Vector2D, 0, n)
	for i := 0; i < n; i++ {
		heading := vel.Angle()
		if vel.Len() <= minHeadingSpeed {
			heading = w.rnd.Range(0, 2*math.Pi)
		}
		angle := heading + w.rnd.Range(-half, half)
		dist := w.settings.SpawnDistance + w.rnd.Range(0, w.settings.SpawnJitter)
		positions = append(positions, center.Add(geometry.NewVectorPolar(dist, angle)))
	}
	return positions
}

// cull forgets drones removed elsewhere and removes the ones left too far
// behind the target.
func (w *WaveController) cull() {
	targetPos := w.target.Position()
	maxSq := w.settings.MaxActiveDistance * w.settings.MaxActiveDistance

	kept := w.drones[:0]
	culled := 0
	for _, d := range w.drones {
		if !w.spawner.IsActive(d) {
			continue
		}
		if d.Position().DistanceSquaredTo(targetPos) > maxSq {
			w.spawner.RemoveBoid(d)
			culled++
			continue
		}
		kept = append(kept, d)
	}
	clear(w.drones[len(kept):])
	w.drones = kept
	if culled > 0 {
		w.logger.Debugf("wave: culled %d drones", culled)
	}
}

// DroneCount is the number of drones currently tracked.
func (w *WaveController) DroneCount() int {
	return len(w.drones)
}

// Reset removes every tracked drone and restarts the spawn interval.
func (w *WaveController) Reset() {
	for _, d := range w.drones {
		w.spawner.RemoveBoid(d)
	}
	clear(w.drones)
	w.drones = w.drones[:0]
	w.lastSpawn = w.clock.Now()
}
