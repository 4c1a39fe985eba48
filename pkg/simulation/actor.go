package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
)

// WorldActor owns the World. Ticks and commands reach it as messages, so
// the simulation only ever runs on the actor's goroutine.
type WorldActor struct {
	world      *World
	snapshotCh chan<- *Snapshot

	// benchmark stats
	ticks       int
	commands    int
	dropped     int
	lastLogTime time.Time
}

var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor wraps world. Snapshots are pushed to snapshotCh without
// blocking; a busy reader just misses frames.
func NewWorldActor(world *World, snapshotCh chan<- *Snapshot) *WorldActor {
	return &WorldActor{
		world:       world,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("World is starting...")
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Info("World started. Spawning flock...")
		if err := w.world.Populate(); err != nil {
			ctx.Logger().Errorf("populate: %v", err)
		}

	case *durationpb.Duration:
		w.ticks++
		w.logBenchmarks(ctx)
		w.pushSnapshot(w.world.Step(msg.AsDuration()))

	case *structpb.Struct:
		w.commands++
		cmd, err := DecodeCommand(msg)
		if err != nil {
			ctx.Logger().Warnf("dropping command: %v", err)
			return
		}
		if err := w.world.Apply(cmd); err != nil {
			ctx.Logger().Errorf("command %s: %v", cmd.Name, err)
		}

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) < time.Second {
		return
	}
	m := w.world.Manager()
	ctx.Logger().Infof("📊 TICKS: %d/sec | Commands: %d | Agents: %d | Pool: %d | Drones: %d | Dropped frames: %d",
		w.ticks, w.commands, m.ActiveCount(), m.TotalPoolSize(), w.world.Wave().DroneCount(), w.dropped)
	w.ticks = 0
	w.commands = 0
	w.dropped = 0
	w.lastLogTime = time.Now()
}

func (w *WorldActor) pushSnapshot(s *Snapshot) {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- s:
	default:
		w.dropped++
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("World is shutdown...")
	return nil
}

// StartSystem creates and starts the actor system hosting the world.
func StartSystem(ctx context.Context, name string, logger log.Logger) (actor.ActorSystem, error) {
	system, err := actor.NewActorSystem(name,
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}
	return system, nil
}

// SpawnWorld starts a WorldActor for world under a unique name, so one system
// can host several worlds. Snapshots arrive on the returned channel, which
// holds up to buffer frames.
func SpawnWorld(ctx context.Context, system actor.ActorSystem, world *World, buffer int) (*actor.PID, <-chan *Snapshot, error) {
	ch := make(chan *Snapshot, buffer)
	pid, err := system.Spawn(ctx, "world-"+uuid.NewString(), NewWorldActor(world, ch))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to spawn world: %w", err)
	}
	return pid, ch, nil
}

// SendTick asks the world to advance by dt.
func SendTick(ctx context.Context, pid *actor.PID, dt time.Duration) error {
	return actor.Tell(ctx, pid, NewTick(dt))
}

// SendCommand encodes cmd and sends it to the world.
func SendCommand(ctx context.Context, pid *actor.PID, cmd Command) error {
	msg, err := cmd.Encode()
	if err != nil {
		return err
	}
	return actor.Tell(ctx, pid, msg)
}
