// Package flock implements the flocking simulation: agents (boids) steered by
// cohesion, alignment, separation and attraction to a leader, pooled per kind
// and indexed by a spatial grid rebuilt every tick.
package flock

import (
	"errors"
	"image/color"
	"math"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

var (
	// ErrNoAnimation is returned when an agent is initialized without frames.
	ErrNoAnimation = errors.New("boid must have a valid sprite animation")
	// ErrNoSpawnPosition is returned when an agent is initialized without a position.
	ErrNoSpawnPosition = errors.New("boid must have a valid spawn position")
	// ErrNoSpawnAnchor is returned when a spawn has neither a position nor a leader.
	ErrNoSpawnAnchor = errors.New("a boid needs a spawn position or a leader")
	// ErrUnknownKind is returned for a kind the manager has no pool for.
	ErrUnknownKind = errors.New("unknown boid kind")
)

const (
	// SeparationRadius is the distance under which neighbours push each other away.
	SeparationRadius = 10.0
	// minSeparation excludes the agent itself (and exact overlaps) from separation.
	minSeparation = 0.001

	defaultMaxSpeed = 12.0
	defaultMinSpeed = 7.0
	defaultMaxForce = 2.0

	sizeJitterMin = 0.8
	sizeJitterMax = 1.2

	// default wobble amplitude of the seek target when no offset is set
	defaultSeekWobble = 0.5
)

// Options configure an agent when it is spawned.
type Options struct {
	Kind Kind
	// SpawnPos is required by Init. Manager.SpawnBoid also accepts a Leader
	// instead and jitters around whichever is given.
	SpawnPos *geometry.Vector2D
	// Leader is followed when set. The agent does not own it.
	Leader Target
	// SeekTargetOffset is the per-agent amplitude of the seek wobble.
	SeekTargetOffset *geometry.Vector2D
	// SeekOuterRadius is used by Seek when called without a radius.
	SeekOuterRadius float64
	Animation       Animation
	// Size is the base sprite size, jittered on every spawn. Zero means 1x1.
	Size geometry.Vector2D
}

// At is a helper to fill Options.SpawnPos and Options.SeekTargetOffset.
func At(x, y float64) *geometry.Vector2D {
	v := geometry.NewVector(x, y)
	return &v
}

// Boid is a pooled agent. It is constructed once per pool slot, initialized
// on every spawn and deactivated when removed.
type Boid struct {
	position     geometry.Vector2D
	velocity     geometry.Vector2D
	acceleration geometry.Vector2D

	MaxSpeed float64
	MinSpeed float64
	MaxForce float64

	kind      Kind
	idle      IdleBehavior
	color     color.RGBA
	size      geometry.Vector2D
	animation Animation

	leader           Target
	seekTargetOffset geometry.Vector2D
	seekOuterRadius  float64

	// visual desynchronisation only, not used by physics
	animationTimeOffset float64
	// persistent state of the idle behaviors
	wanderAngle float64

	active        bool
	forcesApplied bool

	rnd Random
}

// NewBoid allocates an inactive agent of the given kind.
// rnd seeds the per-agent offsets and feeds the idle behaviors; it may be nil.
func NewBoid(kind Kind, rnd Random) *Boid {
	b := &Boid{
		MaxSpeed: defaultMaxSpeed,
		MinSpeed: defaultMinSpeed,
		MaxForce: defaultMaxForce,
		kind:     kind,
		idle:     kind.Idle(),
		color:    kind.Color(),
		size:     geometry.Vector2D{X: 1, Y: 1},
		rnd:      rnd,
	}
	if rnd != nil {
		b.animationTimeOffset = rnd.Range(0, 10)
		b.wanderAngle = rnd.Range(0, 2*math.Pi)
	}
	return b
}

// Activate is the pool hook called when the agent is handed out.
func (b *Boid) Activate() {
	b.active = true
}

// Deactivate is the pool hook called when the agent is returned.
// Kinematic state and spawn options are reset so nothing leaks into the next spawn.
func (b *Boid) Deactivate() {
	b.active = false
	b.position = geometry.Zero
	b.velocity = geometry.Zero
	b.acceleration = geometry.Zero
	b.forcesApplied = false
	b.leader = nil
	b.animation = nil
	b.seekTargetOffset = geometry.Zero
	b.seekOuterRadius = 0
	b.size = geometry.Vector2D{X: 1, Y: 1}
}

// Init prepares an active agent for a new life.
// A missing animation or spawn position is a configuration error.
func (b *Boid) Init(opts Options) error {
	if opts.Animation == nil || opts.Animation.FrameCount() == 0 {
		return ErrNoAnimation
	}
	if opts.SpawnPos == nil {
		return ErrNoSpawnPosition
	}

	b.position = *opts.SpawnPos
	b.velocity = geometry.Zero
	b.acceleration = geometry.Zero
	b.forcesApplied = false
	b.animation = opts.Animation
	b.leader = opts.Leader
	b.seekOuterRadius = opts.SeekOuterRadius
	b.seekTargetOffset = geometry.Zero
	if opts.SeekTargetOffset != nil {
		b.seekTargetOffset = *opts.SeekTargetOffset
	}

	if opts.Kind != b.kind && opts.Kind.Valid() {
		b.kind = opts.Kind
		b.idle = opts.Kind.Idle()
	}
	b.color = b.kind.Color()

	base := opts.Size
	if base.IsZero() {
		base = geometry.Vector2D{X: 1, Y: 1}
	}
	jitter := 1.0
	if b.rnd != nil {
		jitter = b.rnd.Range(sizeJitterMin, sizeJitterMax)
	}
	b.size = base.Mul(jitter)
	return nil
}

// Position implements spatial.Locatable.
func (b *Boid) Position() geometry.Vector2D { return b.position }

// Velocity returns the current velocity in units per second.
func (b *Boid) Velocity() geometry.Vector2D { return b.velocity }

// Acceleration returns the force accumulated so far this tick.
func (b *Boid) Acceleration() geometry.Vector2D { return b.acceleration }

// Kind returns the agent kind.
func (b *Boid) Kind() Kind { return b.kind }

// Active reports whether the agent is owned by a manager's active set.
func (b *Boid) Active() bool { return b.active }

// Size returns the jittered sprite size.
func (b *Boid) Size() geometry.Vector2D { return b.size }

// Color returns the tint of the agent.
func (b *Boid) Color() color.RGBA { return b.color }

// Animation returns the sprite frames of the agent.
func (b *Boid) Animation() Animation { return b.animation }

// SeekOuterRadius returns the radius used by Seek when none is given.
func (b *Boid) SeekOuterRadius() float64 { return b.seekOuterRadius }

// Leader returns the followed target, or nil when there is none or it died.
func (b *Boid) Leader() Target {
	if b.leader != nil && !b.leader.Alive() {
		b.leader = nil
	}
	return b.leader
}

// Place moves the agent without going through the physics, for tests and
// scripted scenes.
func (b *Boid) Place(position, velocity geometry.Vector2D) {
	b.position = position
	b.velocity = velocity
}

// ApplyForce adds force to this tick's acceleration. Any non-zero force
// counts as "forces applied" and suppresses the idle behavior.
func (b *Boid) ApplyForce(force geometry.Vector2D) {
	if force.LenSqr() > 0 {
		b.forcesApplied = true
	}
	b.acceleration = b.acceleration.Add(force)
}

// Cohesion steers toward the centre of mass of neighbors (the agent itself
// included when the grid returned it). A larger coefficient pulls gentler.
func (b *Boid) Cohesion(neighbors []*Boid, coefficient float64) geometry.Vector2D {
	if len(neighbors) == 0 {
		return geometry.Zero
	}
	var center geometry.Vector2D
	for _, other := range neighbors {
		center = center.Add(other.position)
	}
	center = center.Quo(float64(len(neighbors)))
	return center.Sub(b.position).Quo(coefficient)
}

// Alignment steers toward the average velocity of neighbors.
// A larger coefficient aligns gentler.
func (b *Boid) Alignment(neighbors []*Boid, coefficient float64) geometry.Vector2D {
	if len(neighbors) == 0 {
		return geometry.Zero
	}
	var avg geometry.Vector2D
	for _, other := range neighbors {
		avg = avg.Add(other.velocity)
	}
	avg = avg.Quo(float64(len(neighbors)))
	return avg.Sub(b.velocity).Quo(coefficient)
}

// Separation pushes away from neighbors closer than SeparationRadius,
// each weighted by the inverse squared distance, averaged over the
// contributing neighbors and scaled by coefficient.
func (b *Boid) Separation(neighbors []*Boid, coefficient float64) geometry.Vector2D {
	var force geometry.Vector2D
	total := 0

	for _, other := range neighbors {
		diff := b.position.Sub(other.position)
		distSq := diff.LenSqr()
		if distSq >= SeparationRadius*SeparationRadius || distSq <= minSeparation*minSeparation {
			continue
		}
		force = force.Add(diff.Quo(distSq))
		total++
	}

	if total > 0 {
		force = force.Quo(float64(total))
	}
	return force.Mul(coefficient)
}

// Seek steers toward target with a small time-varying wobble.
// The steering strength depends on the distance to the target: 0.2 to 0.5
// inside 40% of outerRadius, 0.5 to 1 up to outerRadius, 1 beyond.
// A non-positive outerRadius uses the agent's own seek radius.
func (b *Boid) Seek(target geometry.Vector2D, outerRadius, coefficient float64, t Tick) geometry.Vector2D {
	if outerRadius <= 0 {
		outerRadius = b.seekOuterRadius
	}

	wobbleX, wobbleY := b.seekTargetOffset.X, b.seekTargetOffset.Y
	if wobbleX == 0 {
		wobbleX = defaultSeekWobble
	}
	if wobbleY == 0 {
		wobbleY = defaultSeekWobble
	}
	goal := target.Add(geometry.Vector2D{
		X: math.Sin(t.Now) * wobbleX,
		Y: math.Cos(t.Now) * wobbleY,
	})

	strength := seekStrength(b.position.DistanceTo(goal), outerRadius)

	desired := goal.Sub(b.position).Normalize().Mul(b.MaxSpeed)
	return desired.Sub(b.velocity).
		ClampLength(b.MaxForce).
		Mul(strength * coefficient)
}

func seekStrength(distance, outerRadius float64) float64 {
	if outerRadius <= 0 {
		return 1
	}
	innerRadius := outerRadius * 0.4
	switch {
	case distance < innerRadius:
		return 0.2 + (distance/innerRadius)*0.3
	case distance > outerRadius:
		return 1
	default:
		return 0.5 + ((distance-innerRadius)/(outerRadius-innerRadius))*0.5
	}
}

// LeaderRadius is the seek radius used around a leader for a neighbourhood
// of the given size: it grows slowly with the group, capped at 15.
func LeaderRadius(neighborCount int) float64 {
	return math.Min(15, 5+float64(neighborCount-1)*0.05)
}

// Flock accumulates cohesion, alignment, separation and, when the agent has
// a live leader, attraction toward it.
func (b *Boid) Flock(neighbors []*Boid, w *Weights, t Tick) {
	cohesion := b.Cohesion(neighbors, w.Cohesion)
	alignment := b.Alignment(neighbors, w.Alignment)
	separation := b.Separation(neighbors, w.Separation)

	var attraction geometry.Vector2D
	if leader := b.Leader(); leader != nil {
		attraction = b.Seek(leader.Position(), LeaderRadius(len(neighbors)), w.Attraction, t)
	}

	b.ApplyForce(cohesion)
	b.ApplyForce(alignment)
	b.ApplyForce(separation)
	b.ApplyForce(attraction)
}

// Update integrates one tick: falls back to the idle behavior when no force
// was applied, clamps the speed, moves, and resets the accumulator.
// Call it exactly once per tick, after Flock.
func (b *Boid) Update(t Tick) {
	if !b.forcesApplied && b.idle != nil {
		b.ApplyForce(b.idle.Idle(b, t))
	}

	b.velocity = b.velocity.Add(b.acceleration).ClampLength(b.MaxSpeed)
	b.position = b.position.Add(b.velocity.Mul(t.Delta))
	b.acceleration = geometry.Zero
	b.forcesApplied = false
}

// Sprite describes how the agent should be drawn at t.
func (b *Boid) Sprite(t Tick) Sprite {
	return Sprite{
		Animation: b.animation,
		Kind:      b.kind,
		Position:  b.position,
		Size:      b.size,
		Color:     b.color,
		Angle:     b.velocity.Angle(),
		Time:      t.Now + b.animationTimeOffset,
	}
}

// Render hands the agent's sprite to r. Inactive agents are never drawn.
func (b *Boid) Render(r Renderer, t Tick) {
	if !b.active || r == nil {
		return
	}
	r.DrawSprite(b.Sprite(t))
}
