package termview

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate    = beep.SampleRate(44100)
	chirpFreq     = 880
	chirpLength   = 40 * time.Millisecond
	chirpCooldown = 250 * time.Millisecond
)

// Chirper plays a short tone when drones arrive. It is silent until Init
// succeeds, so the front-end runs fine without an audio device.
type Chirper struct {
	mu          sync.Mutex
	initialized bool
	muted       bool
	lastPlayed  time.Time
}

// Init opens the speaker.
func (c *Chirper) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

// ToggleMute flips the mute flag and returns the new state.
func (c *Chirper) ToggleMute() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = !c.muted
	return c.muted
}

// Muted reports whether chirps are silenced.
func (c *Chirper) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// Chirp plays one tone for a wave of spawned drones. Waves closer than the
// cooldown share a single tone.
func (c *Chirper) Chirp(spawned int, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if spawned <= 0 || c.muted || now.Sub(c.lastPlayed) < chirpCooldown {
		return false
	}
	c.lastPlayed = now
	if !c.initialized {
		return true
	}
	sine, err := generators.SineTone(sampleRate, chirpFreq)
	if err != nil {
		return false
	}
	speaker.Play(beep.Take(sampleRate.N(chirpLength), sine))
	return true
}

// Close stops playback.
func (c *Chirper) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		speaker.Close()
		c.initialized = false
	}
}
