package simulation

import (
	"math"
	"sync/atomic"

	perlin "github.com/aquilax/go-perlin"
)

// Background is a tileable Perlin cloud texture drawn behind the flock.
// It is generated off the tick goroutine; the simulation waits for it
// through Ready.
type Background struct {
	width, height int
	// world units covered by one texel
	unit float64

	noise  *perlin.Perlin
	shades []uint8
	ready  atomic.Bool
}

const (
	noiseAlpha  = 2.
	noiseBeta   = 2.
	noiseOctave = 3
	// texels per noise period
	noiseScale = 48.
)

// NewBackground prepares a width x height texture, one texel per unit world units.
func NewBackground(width, height int, unit float64, seed int64) *Background {
	return &Background{
		width:  max(width, 1),
		height: max(height, 1),
		unit:   unit,
		noise:  perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctave, seed),
	}
}

// Generate computes the texture, then marks it ready. Run it once,
// usually in its own goroutine.
func (b *Background) Generate() {
	if b.ready.Load() {
		return
	}
	shades := make([]uint8, b.width*b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			shades[y*b.width+x] = b.sample(x, y)
		}
	}
	b.shades = shades
	b.ready.Store(true)
}

// sample blends the noise of the four wrapped corners so the texture tiles.
func (b *Background) sample(x, y int) uint8 {
	w, h := float64(b.width), float64(b.height)
	fx, fy := float64(x)/w, float64(y)/h
	nx, ny := float64(x)/noiseScale, float64(y)/noiseScale
	ox, oy := w/noiseScale, h/noiseScale

	n := b.noise.Noise2D(nx, ny)*(1-fx)*(1-fy) +
		b.noise.Noise2D(nx-ox, ny)*fx*(1-fy) +
		b.noise.Noise2D(nx, ny-oy)*(1-fx)*fy +
		b.noise.Noise2D(nx-ox, ny-oy)*fx*fy

	v := (n + 1) / 2
	return uint8(math.Round(min(max(v, 0), 1) * 255))
}

// Ready implements flock.Readiness.
func (b *Background) Ready() bool {
	return b.ready.Load()
}

// Size returns the texture size in texels.
func (b *Background) Size() (int, int) {
	return b.width, b.height
}

// Unit is the world size of one texel.
func (b *Background) Unit() float64 {
	return b.unit
}

// Texel returns the shade at texel (x, y), wrapping around. Zero until ready.
func (b *Background) Texel(x, y int) uint8 {
	if !b.ready.Load() {
		return 0
	}
	x %= b.width
	if x < 0 {
		x += b.width
	}
	y %= b.height
	if y < 0 {
		y += b.height
	}
	return b.shades[y*b.width+x]
}

// At returns the shade under a world position.
func (b *Background) At(wx, wy float64) uint8 {
	if b.unit <= 0 {
		return b.Texel(int(math.Floor(wx)), int(math.Floor(wy)))
	}
	return b.Texel(int(math.Floor(wx/b.unit)), int(math.Floor(wy/b.unit)))
}
