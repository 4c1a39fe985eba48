package flock

import (
	"fmt"
	"image/color"
)

// Kind selects the visual and idle behavior of an agent.
// Each kind gets its own pool in the Manager.
type Kind int

const (
	// KindFlyer is a friendly bird that follows the player.
	KindFlyer Kind = iota
	// KindHoverer is an enemy drone.
	KindHoverer
)

// Kinds lists every agent kind.
var Kinds = []Kind{KindFlyer, KindHoverer}

var (
	friendlyColor = color.RGBA{R: 5, G: 125, B: 80, A: 255}
	enemyColor    = color.RGBA{R: 200, G: 50, B: 50, A: 255}
)

func (k Kind) String() string {
	switch k {
	case KindFlyer:
		return "flyer"
	case KindHoverer:
		return "hoverer"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindFlyer || k == KindHoverer
}

// Color is the tint used to draw agents of this kind.
func (k Kind) Color() color.RGBA {
	if k == KindHoverer {
		return enemyColor
	}
	return friendlyColor
}

// Idle returns the wander strategy of this kind.
func (k Kind) Idle() IdleBehavior {
	if k == KindHoverer {
		return HoverIdle{}
	}
	return FlyerIdle{}
}
