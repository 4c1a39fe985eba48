package simulation

import (
	"fmt"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/clock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/drones"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/random"
	"github.com/tochemey/goakt/v3/log"
)

// Default animations of each kind. Front-ends map them to their own frames.
var (
	BirdAnimation  = flock.NamedAnimation{Name: "bird", Frames: 2}
	DroneAnimation = flock.NamedAnimation{Name: "drone", Frames: 2}
)

// World is the whole simulation state: player, flock, drone wave and the
// clock driving them. It is not safe for concurrent use; the WorldActor
// serialises access to it.
type World struct {
	cfg       *Config
	clock     *clock.Sim
	rnd       *random.Source
	manager   *flock.Manager
	wave      *drones.WaveController
	player    *Player
	recorder  *Recorder
	readiness flock.Readiness
	logger    log.Logger

	showGrid    bool
	paused      bool
	waveSpawned int
}

// WorldOption configures a World.
type WorldOption func(*World)

// WithWorldLogger sets the logger shared by the world, the flock and the wave.
func WithWorldLogger(l log.Logger) WorldOption {
	return func(w *World) { w.logger = l }
}

// WithWorldReadiness makes the world wait for r before simulating.
func WithWorldReadiness(r flock.Readiness) WorldOption {
	return func(w *World) { w.readiness = r }
}

// NewWorld builds an empty world; Populate adds the starting flock.
func NewWorld(cfg *Config, opts ...WorldOption) *World {
	w := &World{
		cfg:      cfg,
		clock:    clock.NewSim(),
		recorder: &Recorder{},
		logger:   log.DiscardLogger,
		showGrid: cfg.ShowGrid,
	}
	for _, opt := range opts {
		opt(w)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	w.rnd = random.New(seed)
	w.player = NewPlayer(geometry.Zero, cfg.Player)

	managerOpts := []flock.Option{
		flock.WithRenderer(w.recorder),
		flock.WithLogger(w.logger),
		flock.WithAnimation(flock.KindFlyer, BirdAnimation),
		flock.WithAnimation(flock.KindHoverer, DroneAnimation),
	}
	if w.readiness != nil {
		managerOpts = append(managerOpts, flock.WithReadiness(w.readiness))
	}
	w.manager = flock.NewManager(cfg.Settings(), w.clock, w.rnd, managerOpts...)

	w.wave = drones.NewWaveController(cfg.WaveSettings(), w.manager, w.player, w.clock, w.rnd,
		drones.WithLogger(w.logger))
	w.wave.SpawnHook = func(n int) { w.waveSpawned += n }
	return w
}

// Manager exposes the flock, for read-only use by tools and tests.
func (w *World) Manager() *flock.Manager { return w.manager }

// Player returns the current leader.
func (w *World) Player() *Player { return w.player }

// Wave returns the drone wave controller.
func (w *World) Wave() *drones.WaveController { return w.wave }

// Clock returns the simulation clock.
func (w *World) Clock() *clock.Sim { return w.clock }

func (w *World) ready() bool {
	return w.readiness == nil || w.readiness.Ready()
}

// Populate spawns the starting flyers around the player. It bypasses the
// batch cooldown so a reset can repopulate at once.
func (w *World) Populate() error {
	for i := 0; i < w.cfg.InitialFlyers; i++ {
		if _, err := w.manager.SpawnBoid(flock.Options{Kind: flock.KindFlyer, Leader: w.player}); err != nil {
			return fmt.Errorf("populating world: %w", err)
		}
	}
	w.logger.Infof("world populated with %d flyers", w.cfg.InitialFlyers)
	return nil
}

// Step advances the simulation by dt and returns what to draw.
// A paused world redraws the same state without moving the clock.
func (w *World) Step(dt time.Duration) *Snapshot {
	w.recorder.Reset()
	w.waveSpawned = 0

	if w.paused {
		w.manager.Render()
	} else {
		w.clock.Advance(dt)
		if w.ready() {
			w.player.Update(w.clock.Delta())
			if w.cfg.Drones.Enabled {
				if err := w.wave.Update(); err != nil {
					w.logger.Errorf("drone wave: %v", err)
				}
			}
		}
		w.manager.Update()
	}
	if w.showGrid {
		w.manager.RenderPost(w.recorder)
	}
	return w.snapshot()
}

func (w *World) snapshot() *Snapshot {
	return &Snapshot{
		Tick:   w.clock.Ticks(),
		Time:   w.clock.Now(),
		Ready:  w.ready(),
		Paused: w.paused,
		Player: PlayerState{
			Position: w.player.Position(),
			Velocity: w.player.Velocity(),
			Alive:    w.player.Alive(),
		},
		Sprites:     w.recorder.Sprites(),
		Cells:       w.recorder.Cells(),
		ShowGrid:    w.showGrid,
		Weights:     w.manager.Weights(),
		Flyers:      w.manager.ActiveCountOf(flock.KindFlyer),
		Hoverers:    w.manager.ActiveCountOf(flock.KindHoverer),
		PoolSize:    w.manager.TotalPoolSize(),
		GridCells:   w.manager.GridCellCount(),
		Drones:      w.wave.DroneCount(),
		WaveSpawned: w.waveSpawned,
	}
}

// Apply executes a command between two ticks.
func (w *World) Apply(cmd Command) error {
	switch cmd.Name {
	case CmdSteer:
		w.player.Steer(cmd.Vector)
	case CmdSteerTo:
		w.player.SteerTo(cmd.Vector)
	case CmdSetWeight:
		if !w.manager.SetWeight(cmd.Weight, cmd.Value) {
			return fmt.Errorf("%w: unknown weight %q", ErrBadCommand, cmd.Weight)
		}
	case CmdResetWeights:
		w.manager.ResetWeights()
		w.logger.Info("weights reset")
	case CmdSpawn:
		n, err := w.manager.SpawnBoids(cmd.Count, flock.Options{Kind: flock.KindFlyer, Leader: w.player})
		if err != nil {
			return fmt.Errorf("spawn command: %w", err)
		}
		if n == 0 {
			w.logger.Debugf("spawn of %d ignored, batch cooling down", cmd.Count)
		}
	case CmdShowGrid:
		w.showGrid = cmd.Flag
	case CmdPause:
		w.paused = cmd.Flag
	case CmdReset:
		return w.Reset()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}
	return nil
}

// Reset removes every agent, replaces the player and repopulates.
func (w *World) Reset() error {
	w.wave.Reset()
	w.manager.ForEachActive(func(b *flock.Boid) {
		w.manager.RemoveBoid(b)
	})
	w.player.Destroy()
	w.player = NewPlayer(geometry.Zero, w.cfg.Player)
	w.wave.SetTarget(w.player)
	w.logger.Info("world reset")
	return w.Populate()
}
