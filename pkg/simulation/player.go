package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Player is the leader the flock follows. It thrusts toward the steering
// direction, or keeps cruising along its velocity when there is none.
type Player struct {
	pos   geometry.Vector2D
	vel   geometry.Vector2D
	steer geometry.Vector2D
	alive bool

	thrust  float64
	damping float64
}

var _ flock.Target = (*Player)(nil)

// NewPlayer creates a live player at pos.
func NewPlayer(pos geometry.Vector2D, cfg PlayerConfig) *Player {
	return &Player{
		pos:     pos,
		alive:   true,
		thrust:  cfg.Thrust,
		damping: cfg.Damping,
	}
}

// Position implements flock.Target.
func (p *Player) Position() geometry.Vector2D { return p.pos }

// Velocity implements flock.Target.
func (p *Player) Velocity() geometry.Vector2D { return p.vel }

// Alive implements flock.Target.
func (p *Player) Alive() bool { return p.alive }

// Destroy kills the player. Agents following it let go on their next read.
func (p *Player) Destroy() { p.alive = false }

// Steer sets the thrust direction until the next call; zero means cruise.
func (p *Player) Steer(dir geometry.Vector2D) { p.steer = dir }

// SteerTo points the thrust at a world position.
func (p *Player) SteerTo(target geometry.Vector2D) {
	p.steer = target.Sub(p.pos)
}

// Update integrates one tick of dt seconds. Damping is given per 1/60 s so
// the motion does not depend on the tick rate.
func (p *Player) Update(dt float64) {
	if !p.alive || dt <= 0 {
		return
	}
	dir := p.steer
	if dir.IsZero() {
		dir = p.vel
	}
	p.vel = p.vel.Add(dir.Normalize().Mul(p.thrust * dt))
	p.pos = p.pos.Add(p.vel.Mul(dt))
	p.vel = p.vel.Mul(math.Pow(p.damping, dt*60))
}

// TerminalSpeed is the speed reached under constant thrust at the given tick rate.
func (p *Player) TerminalSpeed(tps int) float64 {
	if tps <= 0 || p.damping >= 1 {
		return math.Inf(1)
	}
	dt := 1 / float64(tps)
	d := math.Pow(p.damping, dt*60)
	return p.thrust * dt * d / (1 - d)
}
