package sensors

import (
	"math"
	"math/rand"
)

// Scaler maps an evaluator's raw output to the sensor's output.
type Scaler func(float64) float64

// Linear maps [inMin, inMax] onto [outMin, outMax]. Inverted ranges flip
// the direction.
func Linear(inMin, inMax, outMin, outMax float64) Scaler {
	return func(v float64) float64 {
		return (v-inMin)/(inMax-inMin)*(outMax-outMin) + outMin
	}
}

// Abs returns |v|.
func Abs() Scaler { return math.Abs }

// Threshold returns lo below t and hi at or above it.
func Threshold(t, lo, hi float64) Scaler {
	return func(v float64) float64 {
		if v < t {
			return lo
		}
		return hi
	}
}

// Noise adds uniform noise in [lo, hi). A nil rng uses the math/rand source.
func Noise(lo, hi float64, rng *rand.Rand) Scaler {
	draw := rand.Float64
	if rng != nil {
		draw = rng.Float64
	}
	return func(v float64) float64 {
		return v + lo + draw()*(hi-lo)
	}
}

// Compose applies first then second.
func Compose(first, second Scaler) Scaler {
	return func(v float64) float64 { return second(first(v)) }
}
