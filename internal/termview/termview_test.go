package termview

import (
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(w, h)
	return screen
}

func runeAt(screen tcell.Screen, x, y int) rune {
	r, _, _, _ := screen.GetContent(x, y)
	return r
}

func TestHeadingGlyph(t *testing.T) {
	tests := []struct {
		angle float64
		want  rune
	}{
		{0, '→'},
		{math.Pi / 4, '↗'},
		{math.Pi / 2, '↑'},
		{math.Pi, '←'},
		{-math.Pi, '←'},
		{-math.Pi / 2, '↓'},
		{-math.Pi / 4, '↘'},
		{0.3, '→'},
		{2 * math.Pi, '→'},
	}
	for _, tt := range tests {
		if got := HeadingGlyph(tt.angle); got != tt.want {
			t.Errorf("HeadingGlyph(%v) = %q, want %q", tt.angle, got, tt.want)
		}
	}
}

func TestView_ScreenMapping(t *testing.T) {
	screen := newScreen(t, 40, 20)
	v := New(screen, nil, 0.5)
	cam := geometry.Vector2D{X: 100, Y: -50}

	tests := []struct {
		p    geometry.Vector2D
		x, y int
	}{
		{cam, 20, 10},
		{geometry.Vector2D{X: 105, Y: -50}, 30, 10},
		{geometry.Vector2D{X: 100, Y: -48}, 20, 8},
		{geometry.Vector2D{X: 99, Y: -51}, 18, 11},
	}
	for _, tt := range tests {
		x, y := v.WorldToScreen(tt.p, cam)
		if x != tt.x || y != tt.y {
			t.Errorf("WorldToScreen(%v) = (%d,%d), want (%d,%d)", tt.p, x, y, tt.x, tt.y)
		}
		// the cell centre maps back into the same cell
		bx, by := v.WorldToScreen(v.ScreenToWorld(x, y, cam), cam)
		if bx != x || by != y {
			t.Errorf("ScreenToWorld(%d,%d) lands in (%d,%d)", x, y, bx, by)
		}
	}

	v.Zoom(2)
	if v.Scale() != 1 {
		t.Errorf("Expected scale 1 after zoom, got %v", v.Scale())
	}
	v.Zoom(-1)
	if v.Scale() != 1 {
		t.Errorf("Expected a negative zoom to be ignored, got %v", v.Scale())
	}
}

func TestView_Draw(t *testing.T) {
	screen := newScreen(t, 40, 20)
	v := New(screen, nil, 1)

	snap := &simulation.Snapshot{
		Ready:  true,
		Player: simulation.PlayerState{Alive: true},
		Sprites: []flock.Sprite{
			{Kind: flock.KindFlyer, Position: geometry.Vector2D{X: 5}, Angle: math.Pi / 2, Color: color.RGBA{R: 200, A: 255}},
			{Kind: flock.KindHoverer, Position: geometry.Vector2D{X: -5}, Animation: flock.NamedAnimation{Name: "drone", Frames: 2}},
			{Kind: flock.KindFlyer, Position: geometry.Vector2D{X: 500}},
		},
		ShowGrid: true,
		Cells: []flock.GridCell{
			{Origin: geometry.Vector2D{X: -10, Y: -6}, Size: 10, Occupants: 3},
		},
		Flyers: 2,
	}
	v.Draw(snap, "")

	if got := runeAt(screen, 20, 10); got != '@' {
		t.Errorf("Expected the player at the centre, got %q", got)
	}
	if got := runeAt(screen, 25, 10); got != '↑' {
		t.Errorf("Expected a flyer heading up at (25,10), got %q", got)
	}
	if got := runeAt(screen, 15, 10); got != '◆' {
		t.Errorf("Expected a drone at (15,10), got %q", got)
	}
	// cell top-left corner is (-10, 4) in world units
	if got := runeAt(screen, 10, 8); got != '┼' {
		t.Errorf("Expected a grid corner at (10,8), got %q", got)
	}
	if got := runeAt(screen, 11, 8); got != '3' {
		t.Errorf("Expected the occupant count next to the corner, got %q", got)
	}
	if got := runeAt(screen, 0, 0); got != ' ' {
		t.Errorf("Expected the HUD to start with a space, got %q", got)
	}
	if got := runeAt(screen, 1, 0); got != 'f' {
		t.Errorf("Expected the HUD on the top line, got %q", got)
	}
}

func TestView_DrawWithBackground(t *testing.T) {
	screen := newScreen(t, 20, 10)
	bg := simulation.NewBackground(16, 16, 1, 3)
	bg.Generate()
	v := New(screen, bg, 1)

	v.Draw(&simulation.Snapshot{Ready: true, Player: simulation.PlayerState{Alive: true}}, "")

	_, _, style, _ := screen.GetContent(10, 5)
	_, bgColor, _ := style.Decompose()
	if bgColor == tcell.ColorDefault {
		t.Error("Expected the player cell to keep the background colour")
	}
}

func TestControls_Key(t *testing.T) {
	weights := flock.DefaultWeights()

	tests := []struct {
		name string
		key  tcell.Key
		r    rune
		want simulation.Command
	}{
		{"up", tcell.KeyUp, 0, simulation.Steer(geometry.Vector2D{Y: 1})},
		{"left", tcell.KeyLeft, 0, simulation.Steer(geometry.Vector2D{X: -1})},
		{"cruise", tcell.KeyRune, '.', simulation.Steer(geometry.Zero)},
		{"spawn", tcell.KeyRune, ' ', simulation.Spawn(25)},
		{"grid on", tcell.KeyRune, 'g', simulation.Command{Name: simulation.CmdShowGrid, Flag: true}},
		{"grid off", tcell.KeyRune, 'g', simulation.Command{Name: simulation.CmdShowGrid, Flag: false}},
		{"pause", tcell.KeyRune, 'p', simulation.Command{Name: simulation.CmdPause, Flag: true}},
		{"reset weights", tcell.KeyRune, 'r', simulation.Command{Name: simulation.CmdResetWeights}},
		{"new world", tcell.KeyRune, 'n', simulation.Command{Name: simulation.CmdReset}},
		{"more alignment", tcell.KeyRune, '+', simulation.SetWeight(flock.WeightAlignment, 1.25)},
		{"less alignment", tcell.KeyRune, '-', simulation.SetWeight(flock.WeightAlignment, 0.8)},
	}

	c := NewControls(25, false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := c.Key(tt.key, tt.r, weights)
			if len(a.Commands) != 1 {
				t.Fatalf("Expected one command, got %+v", a)
			}
			got := a.Commands[0]
			if got.Name != tt.want.Name || got.Flag != tt.want.Flag || got.Count != tt.want.Count ||
				got.Vector != tt.want.Vector || got.Weight != tt.want.Weight || math.Abs(got.Value-tt.want.Value) > 1e-9 {
				t.Errorf("Key() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestControls_WeightSelection(t *testing.T) {
	c := NewControls(10, false)
	weights := flock.Weights{Alignment: 1, Cohesion: 1, Separation: 9, Attraction: 0.06}

	c.Key(tcell.KeyRune, '3', weights)
	if c.Selected() != flock.WeightSeparation {
		t.Fatalf("Expected separation selected, got %s", c.Selected())
	}
	if got := c.Key(tcell.KeyRune, '+', weights).Commands[0].Value; got != maxWeight {
		t.Errorf("Expected the weight clamped to %v, got %v", maxWeight, got)
	}

	c.Key(tcell.KeyRune, '4', weights)
	if got := c.Key(tcell.KeyRune, '-', weights).Commands[0].Value; got != minWeight {
		t.Errorf("Expected the weight clamped to %v, got %v", minWeight, got)
	}

	c.Key(tcell.KeyRune, '9', weights)
	if c.Selected() != flock.WeightAttraction {
		t.Errorf("Expected an out of range digit to be ignored, got %s", c.Selected())
	}
}

func TestControls_Actions(t *testing.T) {
	c := NewControls(10, false)
	w := flock.DefaultWeights()

	if !c.Key(tcell.KeyEscape, 0, w).Quit || !c.Key(tcell.KeyRune, 'q', w).Quit {
		t.Error("Expected Esc and q to quit")
	}
	if !c.Key(tcell.KeyRune, 'm', w).ToggleMute {
		t.Error("Expected m to toggle mute")
	}
	if z := c.Key(tcell.KeyRune, 'x', w).Zoom; z != zoomStep {
		t.Errorf("Expected zoom %v, got %v", zoomStep, z)
	}
	if a := c.Key(tcell.KeyF1, 0, w); a.Quit || len(a.Commands) != 0 {
		t.Errorf("Expected an unbound key to do nothing, got %+v", a)
	}

	target := geometry.Vector2D{X: 3, Y: 4}
	a := c.Click(target)
	if len(a.Commands) != 1 || a.Commands[0] != simulation.SteerTo(target) {
		t.Errorf("Expected a SteerTo command, got %+v", a)
	}
}

func TestChirper(t *testing.T) {
	// never initialised: no audio device is touched
	var c Chirper
	now := time.Now()

	if c.Chirp(0, now) {
		t.Error("Expected no chirp without spawns")
	}
	if !c.Chirp(2, now) {
		t.Error("Expected a chirp for a new wave")
	}
	if c.Chirp(2, now.Add(chirpCooldown/2)) {
		t.Error("Expected waves within the cooldown to share a chirp")
	}
	if !c.ToggleMute() || !c.Muted() {
		t.Fatal("Expected mute on")
	}
	if c.Chirp(2, now.Add(time.Second)) {
		t.Error("Expected silence while muted")
	}
	c.ToggleMute()
	if !c.Chirp(2, now.Add(2*time.Second)) {
		t.Error("Expected a chirp after unmuting")
	}
}
