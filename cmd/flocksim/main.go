package main

import (
	"context"
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
	golog "github.com/tochemey/goakt/v3/log"
)

func main() {
	configFile := flag.String("config", "", "JSON or TOML configuration file")
	seed := flag.Uint64("seed", 0, "random seed, overrides the configuration")
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
	if *seed != 0 {
		cfg.Seed = *seed
	}

	ctx := context.Background()
	system, err := simulation.StartSystem(ctx, "FlockWorld", logger)
	if err != nil {
		logger.Fatal(err)
	}

	game, err := simulation.NewGame(ctx, cfg, system, logger)
	if err != nil {
		_ = system.Stop(ctx)
		logger.Fatal(err)
	}
	defer game.System.Stop(ctx)

	ebiten.SetWindowSize(cfg.ScreenWidth, cfg.ScreenHeight)
	ebiten.SetWindowTitle("Flock: follow the leader")
	ebiten.SetTPS(cfg.TPS)
	if err := ebiten.RunGame(game); err != nil {
		logger.Error(err)
	}
}
