package simulation

import (
	"errors"
	"fmt"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
)

// The world actor speaks protobuf well-known types: a durationpb.Duration is
// a tick of that length, a structpb.Struct is a command whose "cmd" field
// names it.

// CommandName identifies a command sent to the world.
type CommandName string

const (
	// CmdSteer sets the player thrust direction (x, y); zero means cruise.
	CmdSteer CommandName = "steer"
	// CmdSteerTo points the player at a world position (x, y).
	CmdSteerTo CommandName = "steerTo"
	// CmdSetWeight sets one flocking coefficient (name, value).
	CmdSetWeight CommandName = "setWeight"
	// CmdResetWeights sets every coefficient to 1.
	CmdResetWeights CommandName = "resetWeights"
	// CmdSpawn adds count flyers around the player.
	CmdSpawn CommandName = "spawn"
	// CmdShowGrid turns the grid overlay on or off (flag).
	CmdShowGrid CommandName = "showGrid"
	// CmdPause freezes the simulation clock (flag).
	CmdPause CommandName = "pause"
	// CmdReset replaces the player and the whole population.
	CmdReset CommandName = "reset"
)

var (
	// ErrUnknownCommand is returned for a command name the world does not know.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrBadCommand is returned for a command with missing or invalid fields.
	ErrBadCommand = errors.New("malformed command")
)

// Command is the decoded form of a world command.
type Command struct {
	Name   CommandName
	Vector geometry.Vector2D
	Weight flock.WeightName
	Value  float64
	Count  int
	Flag   bool
}

// NewTick encodes a tick of length dt.
func NewTick(dt time.Duration) *durationpb.Duration {
	return durationpb.New(dt)
}

// Steer builds a CmdSteer command.
func Steer(dir geometry.Vector2D) Command { return Command{Name: CmdSteer, Vector: dir} }

// SteerTo builds a CmdSteerTo command.
func SteerTo(target geometry.Vector2D) Command { return Command{Name: CmdSteerTo, Vector: target} }

// SetWeight builds a CmdSetWeight command.
func SetWeight(name flock.WeightName, v float64) Command {
	return Command{Name: CmdSetWeight, Weight: name, Value: v}
}

// Spawn builds a CmdSpawn command.
func Spawn(count int) Command { return Command{Name: CmdSpawn, Count: count} }

// Encode converts the command to its wire form.
func (c Command) Encode() (*structpb.Struct, error) {
	fields := map[string]interface{}{"cmd": string(c.Name)}
	switch c.Name {
	case CmdSteer, CmdSteerTo:
		fields["x"] = c.Vector.X
		fields["y"] = c.Vector.Y
	case CmdSetWeight:
		fields["name"] = string(c.Weight)
		fields["value"] = c.Value
	case CmdSpawn:
		fields["count"] = c.Count
	case CmdShowGrid, CmdPause:
		fields["flag"] = c.Flag
	case CmdResetWeights, CmdReset:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, c.Name)
	}
	return structpb.NewStruct(fields)
}

// DecodeCommand parses the wire form of a command.
func DecodeCommand(s *structpb.Struct) (Command, error) {
	fields := s.GetFields()
	c := Command{Name: CommandName(fields["cmd"].GetStringValue())}

	number := func(key string) (float64, error) {
		v, ok := fields[key]
		if !ok {
			return 0, fmt.Errorf("%w: %s needs %q", ErrBadCommand, c.Name, key)
		}
		if _, isNum := v.GetKind().(*structpb.Value_NumberValue); !isNum {
			return 0, fmt.Errorf("%w: %s.%s is not a number", ErrBadCommand, c.Name, key)
		}
		return v.GetNumberValue(), nil
	}

	var err error
	switch c.Name {
	case CmdSteer, CmdSteerTo:
		if c.Vector.X, err = number("x"); err != nil {
			return c, err
		}
		if c.Vector.Y, err = number("y"); err != nil {
			return c, err
		}
	case CmdSetWeight:
		c.Weight = flock.WeightName(fields["name"].GetStringValue())
		if _, known := (&flock.Weights{}).Get(c.Weight); !known {
			return c, fmt.Errorf("%w: unknown weight %q", ErrBadCommand, c.Weight)
		}
		if c.Value, err = number("value"); err != nil {
			return c, err
		}
	case CmdSpawn:
		n, err := number("count")
		if err != nil {
			return c, err
		}
		if n < 0 {
			return c, fmt.Errorf("%w: negative count %v", ErrBadCommand, n)
		}
		c.Count = int(n)
	case CmdShowGrid, CmdPause:
		c.Flag = fields["flag"].GetBoolValue()
	case CmdResetWeights, CmdReset:
	default:
		return c, fmt.Errorf("%w: %q", ErrUnknownCommand, c.Name)
	}
	return c, nil
}
