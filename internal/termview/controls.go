package termview

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
)

const (
	weightStep = 1.25
	minWeight  = 0.05
	maxWeight  = 10
	zoomStep   = 1.25
)

// Action is what the loop must do after an input event.
type Action struct {
	Commands   []simulation.Command
	Quit       bool
	ToggleMute bool
	// Zoom multiplies the view scale when non-zero.
	Zoom float64
}

// Controls turns terminal input into world commands. Terminals report no key
// release, so an arrow keeps steering until another arrow or '.' is pressed.
type Controls struct {
	selected   int
	showGrid   bool
	paused     bool
	spawnBatch int
}

// NewControls creates the input state.
func NewControls(spawnBatch int, showGrid bool) *Controls {
	return &Controls{spawnBatch: spawnBatch, showGrid: showGrid}
}

// Selected is the weight changed by '+' and '-'.
func (c *Controls) Selected() flock.WeightName {
	return flock.WeightNames[c.selected]
}

// HandleEvent dispatches a tcell event.
func (c *Controls) HandleEvent(ev tcell.Event, view *View, snap *simulation.Snapshot) Action {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return c.Key(ev.Key(), ev.Rune(), snap.Weights)
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return Action{}
		}
		x, y := ev.Position()
		return c.Click(view.ScreenToWorld(x, y, snap.Player.Position))
	}
	return Action{}
}

// Click aims the player at a world position.
func (c *Controls) Click(target geometry.Vector2D) Action {
	return Action{Commands: []simulation.Command{simulation.SteerTo(target)}}
}

// Key handles one key press. weights are the current coefficients.
func (c *Controls) Key(key tcell.Key, r rune, weights flock.Weights) Action {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return Action{Quit: true}
	case tcell.KeyUp:
		return steer(0, 1)
	case tcell.KeyDown:
		return steer(0, -1)
	case tcell.KeyLeft:
		return steer(-1, 0)
	case tcell.KeyRight:
		return steer(1, 0)
	case tcell.KeyRune:
	default:
		return Action{}
	}

	switch r {
	case 'q':
		return Action{Quit: true}
	case '.':
		return steer(0, 0)
	case ' ':
		return command(simulation.Spawn(c.spawnBatch))
	case 'g':
		c.showGrid = !c.showGrid
		return command(simulation.Command{Name: simulation.CmdShowGrid, Flag: c.showGrid})
	case 'p':
		c.paused = !c.paused
		return command(simulation.Command{Name: simulation.CmdPause, Flag: c.paused})
	case 'r':
		return command(simulation.Command{Name: simulation.CmdResetWeights})
	case 'n':
		return command(simulation.Command{Name: simulation.CmdReset})
	case 'm':
		return Action{ToggleMute: true}
	case 'z':
		return Action{Zoom: 1 / zoomStep}
	case 'x':
		return Action{Zoom: zoomStep}
	case '1', '2', '3', '4':
		if i := int(r - '1'); i < len(flock.WeightNames) {
			c.selected = i
		}
		return Action{}
	case '+', '=':
		return c.adjust(weights, weightStep)
	case '-':
		return c.adjust(weights, 1/weightStep)
	}
	return Action{}
}

func (c *Controls) adjust(weights flock.Weights, f float64) Action {
	name := c.Selected()
	v, _ := weights.Get(name)
	v = min(max(v*f, minWeight), maxWeight)
	return command(simulation.SetWeight(name, v))
}

func steer(x, y float64) Action {
	return command(simulation.Steer(geometry.Vector2D{X: x, Y: y}))
}

func command(cmd simulation.Command) Action {
	return Action{Commands: []simulation.Command{cmd}}
}
