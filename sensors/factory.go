package sensors

import (
	"math"

	"github.com/pthm-cable/beast/components"
	"github.com/pthm-cable/beast/geom"
)

// DefaultNearestRange is the range of the nearest-target sensors.
const DefaultNearestRange = 1000.0

// ProximitySensor creates a beam sensor reporting the distance to the
// nearest body of kind, scaled from [0, rng] to [1, 0]. A simple sensor
// only checks each body's location against the sector; otherwise the
// body's outline is tested against the beam.
func ProximitySensor(kind components.Kind, scope, rng, orientation float64, simple bool) *Beam {
	return ScaledProximitySensor(kind, scope, rng, orientation, simple, 1, 0)
}

// ScaledProximitySensor is ProximitySensor with the output range given.
func ScaledProximitySensor(kind components.Kind, scope, rng, orientation float64, simple bool, outMin, outMax float64) *Beam {
	var eval Evaluator
	if simple {
		eval = NewNearestInScope(scope, rng)
	} else {
		eval = NewBeamEval(scope, rng)
	}
	b := NewBeam(scope, rng, KindOf(kind), eval, Linear(0, rng, outMin, outMax))
	b.SetRelative(geom.Vector2D{}, orientation)
	return b
}

// NearestAngleSensor reports the bearing of the nearest body of kind in
// [-1, 1], or [1, -1] when reversed.
func NearestAngleSensor(kind components.Kind, rng float64, reverse bool) *Sensor {
	scale := Linear(-math.Pi, math.Pi, -1, 1)
	if reverse {
		scale = Linear(-math.Pi, math.Pi, 1, -1)
	}
	return New(KindOf(kind), NewNearestAngle(rng), scale)
}

// NearestXSensor reports the x offset to the nearest body of kind.
func NearestXSensor(kind components.Kind, rng float64) *Sensor {
	return New(KindOf(kind), NewNearestXDist(rng), Linear(-500, 500, -1, 1))
}

// NearestYSensor reports the y offset to the nearest body of kind.
func NearestYSensor(kind components.Kind, rng float64) *Sensor {
	return New(KindOf(kind), NewNearestYDist(rng), Linear(-500, 500, -1, 1))
}

// DensitySensor reports how crowded a sector is: 0 when empty, approaching
// 1 as more bodies of kind fall inside it.
func DensitySensor(kind components.Kind, scope, rng, orientation float64) *Beam {
	b := NewBeam(scope, rng, KindOf(kind), NewInBeam(NewCount(1), rng),
		Compose(func(v float64) float64 { return 1 / v }, Linear(0, 1, 1, 0)))
	b.SetRelative(geom.Vector2D{}, orientation)
	return b
}

// CollisionSensor outputs 1 while the owner touches at least threshold
// bodies of kind, else 0.
func CollisionSensor(kind components.Kind, threshold float64) *TouchSensor {
	return NewTouchSensor(KindOf(kind), NewCount(0), Threshold(threshold, 0, 1))
}
