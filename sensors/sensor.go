// Package sensors provides the perception units animats carry. Each sensor
// composes three strategies: a Matcher deciding which bodies it notices, an
// Evaluator accumulating what it noticed this tick, and a Scaler shaping
// the final output.
package sensors

import (
	"fmt"
	"math"

	"github.com/pthm-cable/beast/components"
	"github.com/pthm-cable/beast/geom"
	"github.com/pthm-cable/beast/world"
)

// Probe is the view of a sensor that evaluators work against.
type Probe interface {
	Location() geom.Vector2D
	Orientation() float64
	Owner() *world.Animat
	InScope(v geom.Vector2D) bool
}

// Sensor is a body positioned relative to its owner. With no area
// restriction it lets its owner detect any matching body in the world.
type Sensor struct {
	*world.Object

	owner          *world.Animat
	relLocation    geom.Vector2D
	relOrientation float64

	match Matcher
	eval  Evaluator
	scale Scaler
}

// New creates a sensor from its three strategies. A nil match accepts every
// body and a nil scale passes the evaluator's output through.
func New(match Matcher, eval Evaluator, scale Scaler) *Sensor {
	s := &Sensor{
		Object: world.NewObject(),
		match:  match,
		eval:   eval,
		scale:  scale,
	}
	s.SetKind(components.KindSensor)
	s.SetSelectable(false)
	s.SetMoveable(false)
	return s
}

// SetRelative places the sensor relative to its owner. Orientation must
// lie in [-π, π].
func (s *Sensor) SetRelative(loc geom.Vector2D, orientation float64) {
	if orientation < -math.Pi || orientation > math.Pi {
		panic(fmt.Sprintf("sensors: relative orientation %g outside [-π, π]", orientation))
	}
	s.relLocation = loc
	s.relOrientation = orientation
}

// RelativeOrientation returns the heading offset from the owner.
func (s *Sensor) RelativeOrientation() float64 { return s.relOrientation }

// SetOwner attaches the sensor to a.
func (s *Sensor) SetOwner(a *world.Animat) { s.owner = a }

// Owner returns the animat carrying the sensor, or nil.
func (s *Sensor) Owner() *world.Animat { return s.owner }

// SetMatcher replaces the match strategy.
func (s *Sensor) SetMatcher(m Matcher) { s.match = m }

// SetEvaluator replaces the evaluation strategy.
func (s *Sensor) SetEvaluator(e Evaluator) { s.eval = e }

// Evaluator returns the evaluation strategy.
func (s *Sensor) Evaluator() Evaluator { return s.eval }

// SetScaler replaces the scale strategy.
func (s *Sensor) SetScaler(f Scaler) { s.scale = f }

// Init moves the sensor to its owner.
func (s *Sensor) Init() {
	if s.owner != nil {
		loc, orient := s.pose()
		s.SetStartLocation(loc)
		s.SetStartOrientation(orient)
	}
	s.Object.Init()
}

// Update resets the evaluator and follows the owner.
func (s *Sensor) Update() {
	if s.eval != nil {
		s.eval.Reset()
	}
	if s.owner != nil {
		loc, orient := s.pose()
		s.SetLocation(loc)
		s.SetOrientation(orient)
	}
}

func (s *Sensor) pose() (geom.Vector2D, float64) {
	loc := s.owner.Location().Add(s.relLocation.Rotated(s.owner.Orientation()))
	orient := s.relOrientation + s.owner.Orientation()
	if orient < 0 {
		orient += geom.TwoPi
	}
	return loc, orient
}

// Interact evaluates other at its location when it matches.
func (s *Sensor) Interact(other world.Body) {
	if s.matches(other) {
		s.eval.Eval(s, other, other.Base().Location())
	}
}

func (s *Sensor) matches(other world.Body) bool {
	if s.eval == nil {
		return false
	}
	return s.match == nil || s.match(other)
}

// InScope is always true for an unrestricted sensor.
func (s *Sensor) InScope(geom.Vector2D) bool { return true }

// Output returns the scaled evaluation for this tick.
func (s *Sensor) Output() float64 {
	if s.eval == nil {
		return 0
	}
	v := s.eval.Output(s)
	if s.scale != nil {
		v = s.scale(v)
	}
	return v
}

// SelfMode selects what a SelfSensor reports about its owner.
type SelfMode int

const (
	SelfX SelfMode = iota
	SelfY
	SelfAngle
	SelfControl
)

// SelfSensor reports on its owner: normalised position, heading, or the
// value of one control channel.
type SelfSensor struct {
	*Sensor
	mode    SelfMode
	control string
}

// NewSelfSensor creates a sensor reporting mode. control names the channel
// read by SelfControl.
func NewSelfSensor(mode SelfMode, control string) *SelfSensor {
	return &SelfSensor{Sensor: New(nil, nil, nil), mode: mode, control: control}
}

// Interact ignores other bodies.
func (s *SelfSensor) Interact(world.Body) {}

// Output returns the owner's state for the configured mode.
func (s *SelfSensor) Output() float64 {
	a := s.owner
	if a == nil {
		return 0
	}
	switch s.mode {
	case SelfX:
		if w := a.World(); w != nil {
			return a.Location().X / w.Width()
		}
	case SelfY:
		if w := a.World(); w != nil {
			return a.Location().Y / w.Height()
		}
	case SelfAngle:
		return a.Orientation() / geom.TwoPi
	case SelfControl:
		return a.Control(s.control)
	}
	return 0
}

// AreaSensor detects bodies whose nearest point lies inside its own shape.
type AreaSensor struct {
	*Sensor
}

// NewAreaSensor creates an area sensor of the given radius. Call SetEdges
// for a polygonal area.
func NewAreaSensor(radius float64, match Matcher, eval Evaluator, scale Scaler) *AreaSensor {
	s := &AreaSensor{Sensor: New(match, eval, scale)}
	s.SetRadius(radius)
	return s
}

// Interact evaluates other when its nearest point falls inside the area.
func (s *AreaSensor) Interact(other world.Body) {
	if !s.matches(other) {
		return
	}
	p, _ := other.Base().NearestPoint(s.Location())
	if s.IsInside(p) {
		s.eval.Eval(s, other, p)
	}
}

// TouchSensor detects bodies touching its owner.
type TouchSensor struct {
	*Sensor
}

// NewTouchSensor creates a touch sensor.
func NewTouchSensor(match Matcher, eval Evaluator, scale Scaler) *TouchSensor {
	return &TouchSensor{Sensor: New(match, eval, scale)}
}

// Init takes on the owner's radius.
func (s *TouchSensor) Init() {
	if s.owner != nil {
		s.SetRadius(s.owner.Radius())
	}
	s.Sensor.Init()
}

// Interact evaluates other when the owner touches it.
func (s *TouchSensor) Interact(other world.Body) {
	if !s.matches(other) || s.owner == nil || !s.owner.IsTouching(other) {
		return
	}
	p, _ := other.Base().NearestPoint(s.Location())
	s.eval.Eval(s, other, p)
}

// Default beam geometry.
const (
	DefaultBeamScope = math.Pi / 4
	DefaultBeamRange = 250.0
)

// Beam is a sensor restricted to a sector: a laser at scope 0, a cone for
// scopes below 2π and omnidirectional at 2π. With wrap enabled it also sees
// through the arena's periodic edges.
type Beam struct {
	*Sensor

	scope     float64
	beamRange float64

	wrap                     bool
	left, right, bottom, top bool
}

// NewBeam creates a beam sensor. Scope must lie in [0, 2π].
func NewBeam(scope, beamRange float64, match Matcher, eval Evaluator, scale Scaler) *Beam {
	if scope < 0 || scope > geom.TwoPi {
		panic(fmt.Sprintf("sensors: beam scope %g outside [0, 2π]", scope))
	}
	return &Beam{
		Sensor:    New(match, eval, scale),
		scope:     scope,
		beamRange: beamRange,
	}
}

// Scope returns the beam width in radians.
func (b *Beam) Scope() float64 { return b.scope }

// Range returns the beam length.
func (b *Beam) Range() float64 { return b.beamRange }

// SetWrap enables detection through periodic boundaries.
func (b *Beam) SetWrap(wrap bool) { b.wrap = wrap }

// Update follows the owner and notes which arena edges the beam reaches.
func (b *Beam) Update() {
	b.Sensor.Update()
	if !b.wrap || b.owner == nil || b.owner.World() == nil {
		return
	}
	w := b.owner.World()
	loc := b.Location()
	b.left = loc.X-b.beamRange < 0
	b.bottom = loc.Y-b.beamRange < 0
	b.right = loc.X+b.beamRange > w.Width()
	b.top = loc.Y+b.beamRange > w.Height()
}

// Interact evaluates other from the beam's origin and, when wrapping, from
// the origin's images across every edge the beam reaches.
func (b *Beam) Interact(other world.Body) {
	if !b.matches(other) {
		return
	}
	loc := other.Base().Location()
	b.eval.Eval(b, other, loc)

	if !b.wrap || b.owner == nil || b.owner.World() == nil {
		return
	}
	w := b.owner.World()
	home := b.Location()
	ghost := func(d geom.Vector2D) {
		b.Object.SetLocation(home.Add(d))
		b.eval.Eval(b, other, loc)
	}
	if b.left {
		ghost(geom.Vec(w.Width(), 0))
	}
	if b.bottom {
		ghost(geom.Vec(0, w.Height()))
	}
	if b.right {
		ghost(geom.Vec(-w.Width(), 0))
	}
	if b.top {
		ghost(geom.Vec(0, -w.Height()))
	}
	b.Object.SetLocation(home)
}

// InScope reports whether v lies within the beam's angular sector.
func (b *Beam) InScope(v geom.Vector2D) bool {
	return inScope(v.Sub(b.Location()).Angle(), b.Orientation(), b.scope)
}

// Output returns the scaled evaluation for this tick.
func (b *Beam) Output() float64 {
	if b.eval == nil {
		return 0
	}
	v := b.eval.Output(b)
	if b.scale != nil {
		v = b.scale(v)
	}
	return v
}

// scopeEpsilon is the angular tolerance of a zero-width beam.
const scopeEpsilon = 1e-9

// inScope tests angle against the sector of width scope centred on
// orientation, handling sectors that straddle zero.
func inScope(angle, orientation, scope float64) bool {
	if scope >= geom.TwoPi {
		return true
	}
	if scope <= 0 {
		return math.Abs(math.Remainder(angle-orientation, geom.TwoPi)) <= scopeEpsilon
	}
	start := orientation - scope/2
	if start < 0 {
		start += geom.TwoPi
	}
	end := math.Mod(orientation+scope/2, geom.TwoPi)
	if start < end {
		return start <= angle && angle <= end
	}
	return angle >= start || angle <= end
}
