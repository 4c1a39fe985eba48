package flock

import (
	"math"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// IdleBehavior produces the force applied to an agent on ticks where no
// other force moved it, so lone agents keep wandering.
// Implementations may update the agent's wander angle.
type IdleBehavior interface {
	Idle(b *Boid, t Tick) geometry.Vector2D
}

// FlyerIdle makes birds glide along a slowly turning circle.
type FlyerIdle struct{}

const (
	flyerCircleRadius = 2.0
	flyerCircleSpeed  = 1.0
)

// Idle implements IdleBehavior.
func (FlyerIdle) Idle(b *Boid, t Tick) geometry.Vector2D {
	b.wanderAngle += math.Sin(t.Now*0.5+b.animationTimeOffset) * 0.1
	return geometry.NewVectorPolar(flyerCircleRadius, b.wanderAngle*flyerCircleSpeed)
}

// HoverIdle makes drones bob on a small sine pattern with a random drift.
type HoverIdle struct{}

// Idle implements IdleBehavior.
func (HoverIdle) Idle(b *Boid, t Tick) geometry.Vector2D {
	// 2% of the minimum speed keeps the hover subtle
	idleSpeed := b.MinSpeed * 0.02

	hover := geometry.Vector2D{
		X: math.Sin(t.Now*0.2+b.animationTimeOffset) * idleSpeed,
		Y: math.Cos(t.Now*0.15+b.animationTimeOffset) * idleSpeed * 0.5,
	}

	if b.rnd != nil {
		b.wanderAngle += b.rnd.Range(-0.5, 0.5) * 0.01
	}
	drift := geometry.NewVectorPolar(idleSpeed*0.25, b.wanderAngle)
	return hover.Add(drift)
}
