package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-flock-simulation/internal/termview"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
)

const (
	backgroundTexels = 256
	backgroundUnit   = 0.5
	columnWidth      = 0.75 // world units per terminal column
)

type app struct {
	ctx      context.Context
	screen   tcell.Screen
	view     *termview.View
	controls *termview.Controls
	chirper  *termview.Chirper
	logger   golog.Logger

	pid        *actor.PID
	snapshotCh <-chan *simulation.Snapshot
	last       *simulation.Snapshot
	frame      time.Duration
}

func main() {
	configFile := flag.String("config", "", "JSON or TOML configuration file")
	seed := flag.Uint64("seed", 0, "random seed, overrides the configuration")
	logFile := flag.String("log", "", "write logs to this file, the terminal is busy drawing")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	var logger golog.Logger = golog.DiscardLogger
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		level := golog.InfoLevel
		if *debug {
			level = golog.DebugLevel
		}
		logger = golog.New(level, f)
	}

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	if err := run(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *simulation.Config, logger golog.Logger) error {
	ctx := context.Background()

	background := simulation.NewBackground(backgroundTexels, backgroundTexels, backgroundUnit, int64(cfg.Seed))
	go background.Generate()

	system, err := simulation.StartSystem(ctx, "FlockTerm", logger)
	if err != nil {
		return err
	}
	defer system.Stop(ctx)

	world := simulation.NewWorld(cfg, simulation.WithWorldLogger(logger), simulation.WithWorldReadiness(background))
	pid, snapshotCh, err := simulation.SpawnWorld(ctx, system, world, 10)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	chirper := &termview.Chirper{}
	if err := chirper.Init(); err != nil {
		// the simulation runs fine without sound
		logger.Warnf("Audio initialization failed: %v", err)
	}
	defer chirper.Close()

	a := &app{
		ctx:        ctx,
		screen:     screen,
		view:       termview.New(screen, background, columnWidth),
		controls:   termview.NewControls(cfg.SpawnBatch, cfg.ShowGrid),
		chirper:    chirper,
		logger:     logger,
		pid:        pid,
		snapshotCh: snapshotCh,
		last:       &simulation.Snapshot{Weights: cfg.Flock.Weights},
		frame:      cfg.FrameDuration(),
	}
	a.loop()
	return nil
}

func (a *app) loop() {
	ticker := time.NewTicker(a.frame)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if _, ok := ev.(*tcell.EventResize); ok {
				a.screen.Sync()
				continue
			}
			if !a.handle(ev) {
				return
			}

		case <-ticker.C:
			if err := simulation.SendTick(a.ctx, a.pid, a.frame); err != nil {
				a.logger.Errorf("tick: %v", err)
				return
			}
			a.drain()
			status := ""
			if a.chirper.Muted() {
				status = "[muted]"
			}
			a.view.Draw(a.last, fmt.Sprintf("| %s %s", a.controls.Selected(), status))
		}
	}
}

// drain keeps the newest snapshot and chirps for the drones spawned since
// the previous frame.
func (a *app) drain() {
	spawned := 0
	for {
		select {
		case snap := <-a.snapshotCh:
			a.last = snap
			spawned += snap.WaveSpawned
		default:
			a.chirper.Chirp(spawned, time.Now())
			return
		}
	}
}

func (a *app) handle(ev tcell.Event) bool {
	action := a.controls.HandleEvent(ev, a.view, a.last)
	if action.Quit {
		return false
	}
	if action.ToggleMute {
		a.chirper.ToggleMute()
	}
	if action.Zoom != 0 {
		a.view.Zoom(action.Zoom)
	}
	for _, cmd := range action.Commands {
		if err := simulation.SendCommand(a.ctx, a.pid, cmd); err != nil {
			a.logger.Errorf("sending %s: %v", cmd.Name, err)
		}
	}
	return true
}
