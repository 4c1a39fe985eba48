// Package termview draws world snapshots on a terminal with tcell.
package termview

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
)

// terminal cells are about twice as tall as wide
const cellAspect = 2.0

// animation frames per second of the agent glyphs
const glyphFPS = 4

var headingGlyphs = []rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}

// View renders snapshots centred on the player.
type View struct {
	screen     tcell.Screen
	background *simulation.Background
	// world units per column
	scale float64
}

// New creates a view on screen. background may be nil.
func New(screen tcell.Screen, background *simulation.Background, scale float64) *View {
	if scale <= 0 {
		scale = 1
	}
	return &View{screen: screen, background: background, scale: scale}
}

// Scale is the width of a column in world units.
func (v *View) Scale() float64 { return v.scale }

// Zoom multiplies the scale by f.
func (v *View) Zoom(f float64) {
	if f > 0 {
		v.scale *= f
	}
}

// WorldToScreen maps p to a cell, the camera sitting in the middle of the screen.
func (v *View) WorldToScreen(p, camera geometry.Vector2D) (int, int) {
	w, h := v.screen.Size()
	x := float64(w)/2 + (p.X-camera.X)/v.scale
	y := float64(h)/2 - (p.Y-camera.Y)/(v.scale*cellAspect)
	return int(math.Floor(x)), int(math.Floor(y))
}

// ScreenToWorld returns the world position at the centre of cell (x, y).
func (v *View) ScreenToWorld(x, y int, camera geometry.Vector2D) geometry.Vector2D {
	w, h := v.screen.Size()
	return geometry.Vector2D{
		X: camera.X + (float64(x)+0.5-float64(w)/2)*v.scale,
		Y: camera.Y - (float64(y)+0.5-float64(h)/2)*v.scale*cellAspect,
	}
}

// HeadingGlyph picks the arrow closest to angle, in radians counter-clockwise.
func HeadingGlyph(angle float64) rune {
	n := len(headingGlyphs)
	i := int(math.Round(angle/(2*math.Pi/float64(n)))) % n
	if i < 0 {
		i += n
	}
	return headingGlyphs[i]
}

func glyphFor(s flock.Sprite) rune {
	if s.Kind == flock.KindHoverer {
		if s.Frame(glyphFPS)%2 == 0 {
			return '◆'
		}
		return '◇'
	}
	return HeadingGlyph(s.Angle)
}

func rgb(r, g, b uint8) tcell.Color {
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Draw renders snap. status is shown at the end of the top line.
func (v *View) Draw(snap *simulation.Snapshot, status string) {
	v.screen.Clear()
	w, h := v.screen.Size()
	cam := snap.Player.Position

	bgReady := v.background != nil && v.background.Ready()
	if bgReady {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				p := v.ScreenToWorld(x, y, cam)
				s := v.background.At(p.X, p.Y)
				v.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault.Background(rgb(s/8, s/6, 30+s/4)))
			}
		}
	}

	if snap.ShowGrid {
		style := tcell.StyleDefault.Foreground(tcell.ColorOlive)
		for _, c := range snap.Cells {
			x, y := v.WorldToScreen(geometry.Vector2D{X: c.Origin.X, Y: c.Origin.Y + c.Size}, cam)
			v.put(x, y, '┼', style, bgReady)
			v.puts(x+1, y, fmt.Sprintf("%d", c.Occupants), style, bgReady)
		}
	}

	for _, s := range snap.Sprites {
		x, y := v.WorldToScreen(s.Position, cam)
		style := tcell.StyleDefault.Foreground(rgb(s.Color.R, s.Color.G, s.Color.B))
		v.put(x, y, glyphFor(s), style, bgReady)
	}

	if snap.Player.Alive {
		x, y := v.WorldToScreen(cam, cam)
		v.put(x, y, '@', tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true), bgReady)
	}

	hud := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	wt := snap.Weights
	top := fmt.Sprintf(" flyers %d  drones %d  pool %d  cells %d | align %.2f coh %.2f sep %.2f attr %.2f %s",
		snap.Flyers, snap.Drones, snap.PoolSize, snap.GridCells,
		wt.Alignment, wt.Cohesion, wt.Separation, wt.Attraction, status)
	v.puts(0, 0, top, hud, false)
	if !snap.Ready {
		v.puts(0, 1, " generating background...", hud, false)
	} else if snap.Paused {
		v.puts(0, 1, " PAUSED", hud, false)
	}
	v.puts(0, h-1, " arrows steer  . cruise  click aim  space spawn  1-4 weight  +/- adjust  r reset  g grid  p pause  m mute  z/x zoom  n new  q quit", hud, false)
	v.screen.Show()
}

// put writes one glyph, keeping the background colour underneath when there is one.
func (v *View) put(x, y int, r rune, style tcell.Style, keepBG bool) {
	w, h := v.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	if keepBG {
		_, _, under, _ := v.screen.GetContent(x, y)
		_, bg, _ := under.Decompose()
		style = style.Background(bg)
	}
	v.screen.SetContent(x, y, r, nil, style)
}

func (v *View) puts(x, y int, s string, style tcell.Style, keepBG bool) {
	for _, r := range s {
		v.put(x, y, r, style, keepBG)
		x++
	}
}
