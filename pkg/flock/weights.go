package flock

// WeightName names one of the flocking force coefficients.
type WeightName string

const (
	WeightAlignment  WeightName = "alignment"
	WeightCohesion   WeightName = "cohesion"
	WeightSeparation WeightName = "separation"
	WeightAttraction WeightName = "attraction"
)

// WeightNames lists every coefficient in display order.
var WeightNames = []WeightName{WeightAlignment, WeightCohesion, WeightSeparation, WeightAttraction}

// Weights are the force coefficients shared by the whole population during
// a tick. Cohesion and alignment divide their steering (bigger is gentler),
// separation and attraction multiply it.
type Weights struct {
	Alignment  float64 `json:"alignment"`
	Cohesion   float64 `json:"cohesion"`
	Separation float64 `json:"separation"`
	Attraction float64 `json:"attraction"`
}

// DefaultWeights returns the tuning the simulation starts with.
func DefaultWeights() Weights {
	return Weights{
		Alignment:  1,
		Cohesion:   1,
		Separation: 4,
		Attraction: 0.5,
	}
}

// NeutralWeights sets every coefficient to 1.
func NeutralWeights() Weights {
	return Weights{Alignment: 1, Cohesion: 1, Separation: 1, Attraction: 1}
}

func (w *Weights) field(name WeightName) *float64 {
	switch name {
	case WeightAlignment:
		return &w.Alignment
	case WeightCohesion:
		return &w.Cohesion
	case WeightSeparation:
		return &w.Separation
	case WeightAttraction:
		return &w.Attraction
	}
	return nil
}

// Set writes one coefficient. Values are not range checked.
// Unknown names are ignored and reported with false.
func (w *Weights) Set(name WeightName, value float64) bool {
	f := w.field(name)
	if f == nil {
		return false
	}
	*f = value
	return true
}

// Get reads one coefficient.
func (w *Weights) Get(name WeightName) (float64, bool) {
	f := w.field(name)
	if f == nil {
		return 0, false
	}
	return *f, true
}
