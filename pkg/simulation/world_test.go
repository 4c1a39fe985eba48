package simulation

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

const tick = time.Second / 60

type switchReadiness struct{ ready bool }

func (s *switchReadiness) Ready() bool { return s.ready }

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.InitialFlyers = 10
	cfg.Flock.InitialPoolSize = 16
	cfg.Drones.Enabled = false
	return cfg
}

func newTestWorld(t *testing.T, cfg *Config, opts ...WorldOption) *World {
	t.Helper()
	w := NewWorld(cfg, opts...)
	if err := w.Populate(); err != nil {
		t.Fatalf("Populate() error = %v", err)
	}
	return w
}

func TestWorld_Step(t *testing.T) {
	w := newTestWorld(t, testConfig())

	var snap *Snapshot
	for i := 0; i < 3; i++ {
		snap = w.Step(tick)
	}

	if snap.Tick != 3 {
		t.Errorf("Expected tick 3, got %d", snap.Tick)
	}
	if math.Abs(snap.Time-3.0/60) > 1e-9 {
		t.Errorf("Expected time 0.05, got %v", snap.Time)
	}
	if !snap.Ready || snap.Paused {
		t.Errorf("Expected a ready running world, got ready=%v paused=%v", snap.Ready, snap.Paused)
	}
	if snap.Flyers != 10 || snap.Hoverers != 0 || snap.Active() != 10 {
		t.Errorf("Expected 10 flyers, got %d flyers and %d hoverers", snap.Flyers, snap.Hoverers)
	}
	if len(snap.Sprites) != 10 {
		t.Errorf("Expected 10 sprites, got %d", len(snap.Sprites))
	}
	if snap.PoolSize != 32 {
		t.Errorf("Expected two pools of 16, got %d", snap.PoolSize)
	}
	if len(snap.Cells) != 0 {
		t.Errorf("Expected no grid cells without the overlay, got %d", len(snap.Cells))
	}
	if snap.GridCells == 0 {
		t.Error("Expected the grid to track the flock")
	}
}

func TestWorld_SnapshotsDoNotShareBuffers(t *testing.T) {
	w := newTestWorld(t, testConfig())
	first := w.Step(tick)
	pos := first.Sprites[0].Position
	w.Step(tick)

	if first.Sprites[0].Position != pos {
		t.Error("Expected an earlier snapshot to keep its sprites")
	}
}

func TestWorld_WaitsForReadiness(t *testing.T) {
	ready := &switchReadiness{}
	w := newTestWorld(t, testConfig(), WithWorldReadiness(ready))
	w.Player().Steer(geometry.Vector2D{X: 1})

	snap := w.Step(tick)
	if snap.Ready {
		t.Error("Expected snapshot to report not ready")
	}
	if len(snap.Sprites) != 0 {
		t.Errorf("Expected nothing simulated before ready, got %d sprites", len(snap.Sprites))
	}
	if snap.Player.Position != geometry.Zero {
		t.Errorf("Expected the player to wait, got %v", snap.Player.Position)
	}

	ready.ready = true
	snap = w.Step(tick)
	if !snap.Ready || len(snap.Sprites) != 10 {
		t.Errorf("Expected 10 sprites once ready, got %d (ready=%v)", len(snap.Sprites), snap.Ready)
	}
	if snap.Player.Position.X <= 0 {
		t.Errorf("Expected the player to move once ready, got %v", snap.Player.Position)
	}
}

func TestWorld_Apply(t *testing.T) {
	w := newTestWorld(t, testConfig())

	// 1. weights
	if err := w.Apply(SetWeight(flock.WeightCohesion, 3)); err != nil {
		t.Fatalf("SetWeight error = %v", err)
	}
	if got := w.Step(tick).Weights.Cohesion; got != 3 {
		t.Errorf("Expected cohesion 3, got %v", got)
	}
	if err := w.Apply(SetWeight("gravity", 3)); !errors.Is(err, ErrBadCommand) {
		t.Errorf("Expected ErrBadCommand for an unknown weight, got %v", err)
	}
	if err := w.Apply(Command{Name: CmdResetWeights}); err != nil {
		t.Fatal(err)
	}
	if got := w.Step(tick).Weights; got != flock.NeutralWeights() {
		t.Errorf("Expected neutral weights, got %+v", got)
	}

	// 2. spawn with cooldown
	if err := w.Apply(Spawn(5)); err != nil {
		t.Fatal(err)
	}
	if err := w.Apply(Spawn(5)); err != nil {
		t.Fatal(err)
	}
	if got := w.Step(tick).Flyers; got != 15 {
		t.Errorf("Expected 15 flyers after a debounced double spawn, got %d", got)
	}

	// 3. grid overlay
	if err := w.Apply(Command{Name: CmdShowGrid, Flag: true}); err != nil {
		t.Fatal(err)
	}
	snap := w.Step(tick)
	if !snap.ShowGrid || len(snap.Cells) != snap.GridCells {
		t.Errorf("Expected %d drawn cells, got %d", snap.GridCells, len(snap.Cells))
	}
	occupants := 0
	for _, c := range snap.Cells {
		occupants += c.Occupants
	}
	// cells are filled before the move and pruned after it
	if occupants == 0 || occupants > 15 {
		t.Errorf("Expected up to 15 occupants over all cells, got %d", occupants)
	}

	// 4. unknown
	if err := w.Apply(Command{Name: "fly"}); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
}

func TestWorld_Steering(t *testing.T) {
	w := newTestWorld(t, testConfig())

	if err := w.Apply(Steer(geometry.Vector2D{Y: -1})); err != nil {
		t.Fatal(err)
	}
	w.Step(tick)
	if p := w.Player().Position(); p.Y >= 0 || p.X != 0 {
		t.Errorf("Expected the player to head -y, got %v", p)
	}

	if err := w.Apply(SteerTo(geometry.Vector2D{X: 100, Y: w.Player().Position().Y})); err != nil {
		t.Fatal(err)
	}
	before := w.Player().Velocity().X
	w.Step(tick)
	if after := w.Player().Velocity().X; after <= before {
		t.Errorf("Expected thrust toward +x, vx went from %v to %v", before, after)
	}
}

func TestWorld_Pause(t *testing.T) {
	w := newTestWorld(t, testConfig())
	w.Step(tick)

	if err := w.Apply(Command{Name: CmdPause, Flag: true}); err != nil {
		t.Fatal(err)
	}
	frozen := w.Step(tick)
	again := w.Step(tick)

	if !again.Paused || again.Tick != 1 || again.Time != frozen.Time {
		t.Errorf("Expected a frozen clock at tick 1, got tick %d paused=%v", again.Tick, again.Paused)
	}
	if len(again.Sprites) != 10 {
		t.Errorf("Expected a paused world to keep drawing, got %d sprites", len(again.Sprites))
	}
	for i := range again.Sprites {
		if again.Sprites[i].Position != frozen.Sprites[i].Position {
			t.Fatalf("Sprite %d moved while paused", i)
		}
	}

	if err := w.Apply(Command{Name: CmdPause}); err != nil {
		t.Fatal(err)
	}
	if got := w.Step(tick).Tick; got != 2 {
		t.Errorf("Expected tick 2 after resuming, got %d", got)
	}
}

func TestWorld_Reset(t *testing.T) {
	cfg := testConfig()
	w := newTestWorld(t, cfg)
	if err := w.Apply(Spawn(5)); err != nil {
		t.Fatal(err)
	}
	w.Apply(Steer(geometry.Vector2D{X: 1}))
	for i := 0; i < 30; i++ {
		w.Step(tick)
	}
	old := w.Player()

	if err := w.Apply(Command{Name: CmdReset}); err != nil {
		t.Fatalf("Reset error = %v", err)
	}

	if old.Alive() {
		t.Error("Expected the old player to be destroyed")
	}
	if w.Player() == old || !w.Player().Alive() || w.Player().Position() != geometry.Zero {
		t.Error("Expected a fresh player at the origin")
	}
	if got := w.Manager().ActiveCount(); got != cfg.InitialFlyers {
		t.Errorf("Expected %d flyers after reset, got %d", cfg.InitialFlyers, got)
	}
	w.Manager().ForEachActive(func(b *flock.Boid) {
		if b.Leader() != w.Player() {
			t.Errorf("Expected every agent to follow the new player, got %v", b.Leader())
		}
	})
}

func TestWorld_DroneWave(t *testing.T) {
	cfg := testConfig()
	cfg.Drones.Enabled = true
	cfg.Drones.IntervalMs = 100
	cfg.Drones.BatchSize = 2
	cfg.Drones.MaxDrones = 6
	w := newTestWorld(t, cfg)
	w.Apply(Steer(geometry.Vector2D{X: 1}))

	spawned := 0
	var snap *Snapshot
	for i := 0; i < 120; i++ {
		snap = w.Step(tick)
		spawned += snap.WaveSpawned
		if snap.Drones > cfg.Drones.MaxDrones {
			t.Fatalf("Tick %d: %d drones over the cap of %d", i, snap.Drones, cfg.Drones.MaxDrones)
		}
		if snap.Hoverers != snap.Drones {
			t.Fatalf("Tick %d: %d hoverers but %d tracked drones", i, snap.Hoverers, snap.Drones)
		}
	}
	if spawned == 0 || snap.Drones == 0 {
		t.Errorf("Expected the wave to spawn drones, got %d spawned and %d alive", spawned, snap.Drones)
	}
	if snap.Flyers != cfg.InitialFlyers {
		t.Errorf("Expected the wave not to touch flyers, got %d", snap.Flyers)
	}
}

func TestWorld_DronesDisabled(t *testing.T) {
	w := newTestWorld(t, testConfig())
	for i := 0; i < 300; i++ {
		if snap := w.Step(tick); snap.Drones != 0 || snap.WaveSpawned != 0 {
			t.Fatalf("Expected no drones when disabled, got %d", snap.Drones)
		}
	}
}

func BenchmarkWorld_Step(b *testing.B) {
	cfg := DefaultConfig()
	cfg.Seed = 1
	cfg.InitialFlyers = 500
	w := NewWorld(cfg)
	if err := w.Populate(); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Step(tick)
	}
}
