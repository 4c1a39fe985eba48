package flock

import "time"

// Settings controls a Manager. Passing a different Settings value to a new
// Manager changes the rules without touching the simulation code.
type Settings struct {
	// CellSize is the side of a spatial grid cell, in world units.
	CellSize float64
	// InitialPoolSize is the number of agents pre-allocated per kind.
	InitialPoolSize int
	// GrowthFactor is the pool growth factor (minimum 1.1).
	GrowthFactor float64

	// SpawnMinRadius and SpawnMaxRadius bound the jitter ring around a spawn centre.
	SpawnMinRadius float64
	SpawnMaxRadius float64

	// BaseSeekRadius and SeekRadiusVariation give each agent its own seek radius:
	// base + U(1-variation, 1+variation).
	BaseSeekRadius      float64
	SeekRadiusVariation float64

	// BatchCooldown debounces SpawnBoids.
	BatchCooldown time.Duration

	MaxSpeed float64
	MinSpeed float64
	MaxForce float64

	Weights Weights
}

// DefaultSettings returns the tuned defaults: 10 unit cells, pools of 1000.
func DefaultSettings() Settings {
	return Settings{
		CellSize:            10,
		InitialPoolSize:     1000,
		GrowthFactor:        1.5,
		SpawnMinRadius:      0.1,
		SpawnMaxRadius:      5,
		BaseSeekRadius:      5,
		SeekRadiusVariation: 0.15,
		BatchCooldown:       250 * time.Millisecond,
		MaxSpeed:            defaultMaxSpeed,
		MinSpeed:            defaultMinSpeed,
		MaxForce:            defaultMaxForce,
		Weights:             DefaultWeights(),
	}
}
