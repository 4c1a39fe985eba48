package main

import (
	"flag"
	"math"
	"os"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
	golog "github.com/tochemey/goakt/v3/log"
)

func main() {
	configFile := flag.String("config", "", "JSON or TOML configuration file")
	seed := flag.Uint64("seed", 1, "random seed")
	ticks := flag.Int("ticks", 3600, "number of ticks to simulate")
	flyers := flag.Int("flyers", -1, "starting flyers, overrides the configuration")
	circle := flag.Bool("circle", true, "steer the player around a circle instead of a straight line")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	level := golog.InfoLevel
	if *debug {
		level = golog.DebugLevel
	}
	logger := golog.New(level, os.Stdout)

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configFile); err != nil {
			logger.Fatalf("loading %s: %v", *configFile, err)
		}
	}
	cfg.Seed = *seed
	if *flyers >= 0 {
		cfg.InitialFlyers = *flyers
	}

	world := simulation.NewWorld(cfg, simulation.WithWorldLogger(logger))
	if err := world.Populate(); err != nil {
		logger.Fatal(err)
	}

	dt := cfg.FrameDuration()
	var (
		slowest     time.Duration
		waveSpawned int
		last        *simulation.Snapshot
	)
	start := time.Now()
	window := start
	for i := 0; i < *ticks; i++ {
		if *circle {
			// one lap every 20 simulated seconds
			a := float64(i) * dt.Seconds() * 2 * math.Pi / 20
			world.Player().Steer(geometry.NewVectorPolar(1, a))
		} else {
			world.Player().Steer(geometry.Vector2D{X: 1})
		}

		t0 := time.Now()
		last = world.Step(dt)
		slowest = max(slowest, time.Since(t0))
		waveSpawned += last.WaveSpawned

		if time.Since(window) >= time.Second {
			logger.Infof("📊 tick %d | agents %d | drones %d | pool %d | cells %d",
				last.Tick, last.Active(), last.Drones, last.PoolSize, last.GridCells)
			window = time.Now()
		}
	}
	elapsed := time.Since(start)

	if last == nil {
		logger.Info("nothing simulated")
		return
	}
	logger.Infof("simulated %d ticks (%.1fs) in %v: %.3fms/tick, slowest %.3fms",
		*ticks, last.Time, elapsed,
		float64(elapsed.Microseconds())/1000/float64(*ticks),
		float64(slowest.Microseconds())/1000)
	logger.Infof("final: %d flyers, %d drones alive, %d drones spawned, pool %d, grid cells %d, player at %v",
		last.Flyers, last.Drones, waveSpawned, last.PoolSize, last.GridCells, last.Player.Position)
}
