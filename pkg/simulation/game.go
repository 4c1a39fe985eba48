package simulation

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/ui"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
)

const (
	backgroundTexels = 256
	backgroundUnit   = 0.5
	// animation frames per second of the agent sprites
	spriteFPS = 8
)

// Game is the ebiten front-end: it samples input, sends ticks and commands
// to the world actor and draws the latest snapshot it received.
type Game struct {
	ctx        context.Context
	System     actor.ActorSystem
	worldPID   *actor.PID
	snapshotCh <-chan *Snapshot
	lastState  *Snapshot
	logger     log.Logger

	cfg        *Config
	background *Background
	bgImage    *ebiten.Image
	frames     map[flock.Kind][]*ebiten.Image

	panel         *ui.Panel
	weightSliders map[flock.WeightName]*ui.Slider
	gridCheckbox  *ui.Checkbox
	pauseCheckbox *ui.Checkbox

	steer      geometry.Vector2D
	lastCursor ui.Pointer

	// Timing instrumentation
	updateAvg float64 // rolling average in ms
	drawAvg   float64
}

// NewGame starts the world actor in system and builds the UI around it.
// The background texture is generated in its own goroutine; the world does
// not move until it is ready.
func NewGame(ctx context.Context, cfg *Config, system actor.ActorSystem, logger log.Logger) (*Game, error) {
	background := NewBackground(backgroundTexels, backgroundTexels, backgroundUnit, int64(cfg.Seed))
	go background.Generate()

	world := NewWorld(cfg, WithWorldLogger(logger), WithWorldReadiness(background))
	pid, snapshotCh, err := SpawnWorld(ctx, system, world, 10)
	if err != nil {
		return nil, err
	}

	g := &Game{
		ctx:           ctx,
		System:        system,
		worldPID:      pid,
		snapshotCh:    snapshotCh,
		lastState:     &Snapshot{Weights: cfg.Flock.Weights},
		logger:        logger,
		cfg:           cfg,
		background:    background,
		frames:        spriteFrames(),
		weightSliders: make(map[flock.WeightName]*ui.Slider, len(flock.WeightNames)),
	}
	g.buildPanel()
	return g, nil
}

func (g *Game) buildPanel() {
	g.panel = ui.NewPanel(10, 10, 220, float64(g.cfg.ScreenHeight)-20, "Flock")

	g.panel.AddSection("Weights")
	for _, name := range flock.WeightNames {
		v, _ := g.cfg.Flock.Weights.Get(name)
		s := g.panel.AddSlider(string(name), 0.05, 10, v)
		s.OnChange = func(v float64) { g.send(SetWeight(name, v)) }
		g.weightSliders[name] = s
	}
	g.panel.AddButton("Reset weights [R]", g.resetWeights)
	g.panel.EndSection()

	g.panel.AddSection("Population")
	g.panel.AddButton(fmt.Sprintf("Spawn %d flyers [Space]", g.cfg.SpawnBatch), func() {
		g.send(Spawn(g.cfg.SpawnBatch))
	})
	g.panel.AddButton("Reset world", func() { g.send(Command{Name: CmdReset}) })
	g.panel.EndSection()

	g.panel.AddSection("Debug")
	g.gridCheckbox = g.panel.AddCheckbox("Show grid [G]", g.cfg.ShowGrid)
	g.gridCheckbox.OnToggle = func(v bool) { g.send(Command{Name: CmdShowGrid, Flag: v}) }
	g.pauseCheckbox = g.panel.AddCheckbox("Pause [P]", false)
	g.pauseCheckbox.OnToggle = func(v bool) { g.send(Command{Name: CmdPause, Flag: v}) }
	g.panel.EndSection()
}

func (g *Game) send(cmd Command) {
	if err := SendCommand(g.ctx, g.worldPID, cmd); err != nil {
		g.logger.Errorf("sending %s: %v", cmd.Name, err)
	}
}

func (g *Game) resetWeights() {
	neutral := flock.NeutralWeights()
	for name, s := range g.weightSliders {
		s.Value, _ = neutral.Get(name)
	}
	g.send(Command{Name: CmdResetWeights})
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	ptr := ui.CurrentPointer()
	if _, dy := ebiten.Wheel(); dy != 0 {
		g.panel.Scroll(dy)
	}
	g.panel.Update(ptr)
	g.handleKeys()
	g.handleSteering(ptr)

	select {
	case snap := <-g.snapshotCh:
		g.lastState = snap
	default:
		// keep the previous state
	}

	if err := SendTick(g.ctx, g.worldPID, g.cfg.FrameDuration()); err != nil {
		return fmt.Errorf("tick: %w", err)
	}
	return nil
}

func (g *Game) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		g.gridCheckbox.Value = !g.gridCheckbox.Value
		g.send(Command{Name: CmdShowGrid, Flag: g.gridCheckbox.Value})
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.pauseCheckbox.Value = !g.pauseCheckbox.Value
		g.send(Command{Name: CmdPause, Flag: g.pauseCheckbox.Value})
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.send(Spawn(g.cfg.SpawnBatch))
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.resetWeights()
	}
}

// handleSteering turns arrows/WASD into a thrust direction. Without keys,
// moving the mouse outside the panel steers toward the cursor.
func (g *Game) handleSteering(ptr ui.Pointer) {
	var dir geometry.Vector2D
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA) {
		dir.X = -1
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD) {
		dir.X = 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW) {
		dir.Y = 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyS) {
		dir.Y = -1
	}

	moved := ptr.X != g.lastCursor.X || ptr.Y != g.lastCursor.Y
	g.lastCursor = ptr
	if dir.IsZero() && moved && !g.panel.Contains(ptr) {
		g.send(SteerTo(g.screenToWorld(ptr.X, ptr.Y)))
		g.steer = geometry.Zero
		return
	}
	if dir != g.steer {
		g.steer = dir
		g.send(Steer(dir))
	}
}

func (g *Game) camera() geometry.Vector2D {
	return g.lastState.Player.Position
}

func (g *Game) worldToScreen(p geometry.Vector2D) (float64, float64) {
	cam := g.camera()
	cx, cy := float64(g.cfg.ScreenWidth)/2, float64(g.cfg.ScreenHeight)/2
	return cx + (p.X-cam.X)*g.cfg.Zoom, cy - (p.Y-cam.Y)*g.cfg.Zoom
}

func (g *Game) screenToWorld(x, y float64) geometry.Vector2D {
	cam := g.camera()
	cx, cy := float64(g.cfg.ScreenWidth)/2, float64(g.cfg.ScreenHeight)/2
	return geometry.Vector2D{X: cam.X + (x-cx)/g.cfg.Zoom, Y: cam.Y - (y-cy)/g.cfg.Zoom}
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(color.RGBA{R: 10, G: 10, B: 30, A: 255})
	g.drawBackground(screen)

	if g.lastState.ShowGrid {
		g.drawGrid(screen)
	}
	for _, s := range g.lastState.Sprites {
		g.drawSprite(screen, s)
	}
	if g.lastState.Player.Alive {
		g.drawSprite(screen, flock.Sprite{
			Animation: BirdAnimation,
			Kind:      flock.KindFlyer,
			Position:  g.lastState.Player.Position,
			Size:      geometry.Vector2D{X: 2, Y: 2},
			Color:     color.RGBA{R: 20, G: 180, B: 150, A: 255},
			Angle:     g.lastState.Player.Velocity.Angle(),
			Time:      g.lastState.Time,
		})
	}

	g.panel.Draw(screen)
	g.drawStats(screen)
}

func (g *Game) drawBackground(screen *ebiten.Image) {
	if g.bgImage == nil {
		if !g.background.Ready() {
			return
		}
		g.bgImage = backgroundImage(g.background)
	}
	tile := float64(backgroundTexels) * backgroundUnit
	scale := backgroundUnit * g.cfg.Zoom
	topLeft := g.screenToWorld(0, 0)
	bottomRight := g.screenToWorld(float64(g.cfg.ScreenWidth), float64(g.cfg.ScreenHeight))

	for i := math.Floor(topLeft.X / tile); i*tile < bottomRight.X; i++ {
		for j := math.Floor(bottomRight.Y / tile); j*tile < topLeft.Y; j++ {
			x, y := g.worldToScreen(geometry.Vector2D{X: i * tile, Y: (j + 1) * tile})
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(scale, scale)
			op.GeoM.Translate(x, y)
			screen.DrawImage(g.bgImage, op)
		}
	}
}

func backgroundImage(b *Background) *ebiten.Image {
	w, h := b.Size()
	pix := make([]byte, 4*w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s := b.Texel(x, y)
			i := 4 * (y*w + x)
			pix[i] = s / 8
			pix[i+1] = s / 6
			pix[i+2] = 30 + s/4
			pix[i+3] = 255
		}
	}
	img := ebiten.NewImage(w, h)
	img.WritePixels(pix)
	return img
}

func (g *Game) drawGrid(screen *ebiten.Image) {
	for _, c := range g.lastState.Cells {
		x, y := g.worldToScreen(geometry.Vector2D{X: c.Origin.X, Y: c.Origin.Y + c.Size})
		side := float32(c.Size * g.cfg.Zoom)
		alpha := uint8(min(40+c.Occupants*20, 255))
		vector.StrokeRect(screen, float32(x), float32(y), side, side, 1, color.RGBA{R: 200, G: 200, B: 80, A: alpha}, false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d", c.Occupants), int(x)+2, int(y)+2)
	}
}

func (g *Game) drawSprite(screen *ebiten.Image, s flock.Sprite) {
	frames := g.frames[s.Kind]
	if len(frames) == 0 {
		return
	}
	img := frames[s.Frame(spriteFPS)%len(frames)]
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(w)/2, -float64(h)/2)
	op.GeoM.Scale(s.Size.X*g.cfg.Zoom/float64(w), s.Size.Y*g.cfg.Zoom/float64(h))
	// sprites face up; world angles are counter-clockwise with y up
	op.GeoM.Rotate(-s.Angle + math.Pi/2)
	x, y := g.worldToScreen(s.Position)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(s.Color)
	screen.DrawImage(img, op)
}

func (g *Game) drawStats(screen *ebiten.Image) {
	st := g.lastState
	status := ""
	switch {
	case !g.background.Ready():
		status = "\nGenerating background..."
	case st.Paused:
		status = "\nPAUSED"
	}
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nUpdate: %.2fms\nDraw:   %.2fms\n\nFlyers: %d\nDrones: %d\nPool:   %d\nCells:  %d%s",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.drawAvg,
		st.Flyers,
		st.Drones,
		st.PoolSize,
		st.GridCells,
		status)
	ebitenutil.DebugPrintAt(screen, msg, g.cfg.ScreenWidth-150, 10)
}

func (g *Game) Layout(w, h int) (int, int) { return g.cfg.ScreenWidth, g.cfg.ScreenHeight }

// spriteFrames draws the two-frame animations of each kind in white, so
// they can be tinted with the agent colour.
func spriteFrames() map[flock.Kind][]*ebiten.Image {
	palette := map[rune]color.RGBA{
		'W': {R: 255, G: 255, B: 255, A: 255},
		'G': {R: 170, G: 170, B: 170, A: 255},
		'D': {R: 90, G: 90, B: 90, A: 255},
	}
	birdUp := []string{
		"W.......W",
		".W.....W.",
		"..W.G.W..",
		"...WGW...",
		"....G....",
		"....D....",
	}
	birdDown := []string{
		"....G....",
		"...WGW...",
		"..W.G.W..",
		".W..G..W.",
		"W...D...W",
		".........",
	}
	droneA := []string{
		"WW.....WW",
		".W.GGG.W.",
		"..GDDDG..",
		"..GDWDG..",
		"..GDDDG..",
		".W.GGG.W.",
		"WW.....WW",
	}
	droneB := []string{
		".W.....W.",
		"WW.GGG.WW",
		"..GDDDG..",
		"..GDWDG..",
		"..GDDDG..",
		"WW.GGG.WW",
		".W.....W.",
	}
	return map[flock.Kind][]*ebiten.Image{
		flock.KindFlyer:   {generateSprite(birdUp, palette), generateSprite(birdDown, palette)},
		flock.KindHoverer: {generateSprite(droneA, palette), generateSprite(droneB, palette)},
	}
}

// generateSprite converts an ASCII grid into an Ebiten image
func generateSprite(design []string, palette map[rune]color.RGBA) *ebiten.Image {
	h := len(design)
	w := len(design[0])
	img := ebiten.NewImage(w, h)

	for y, row := range design {
		for x, char := range row {
			if col, ok := palette[char]; ok {
				img.Set(x, y, col)
			}
		}
	}
	return img
}
