package world

import (
	"math"

	"github.com/pthm-cable/beast/components"
	"github.com/pthm-cable/beast/geom"
)

// Default animat physics.
const (
	DefaultAnimatRadius = 5.0
	DefaultMaxSpeed     = 100.0
	DefaultMinSpeed     = -50.0
	DefaultMaxTurn      = 2 * math.Pi
	DefaultDrag         = 50.0
	DefaultTimeStep     = 0.05
)

// Names of the two motor channels every animat starts with.
const (
	ControlLeft  = "left"
	ControlRight = "right"
)

// Sensor is a perception unit owned by an animat.
type Sensor interface {
	SetOwner(a *Animat)
	Init()
	Update()
	Interact(other Body)
	Output() float64
}

// Agent is a Body driven by an Animat.
type Agent interface {
	Body
	AsAnimat() *Animat
}

// Physics groups the tunable motion limits of an animat.
type Physics struct {
	Radius      float64
	MaxSpeed    float64
	MinSpeed    float64
	MaxTurn     float64
	Drag        float64
	TimeStep    float64
	TrailLength int
	Solid       bool
}

// DefaultPhysics returns the stock animat limits.
func DefaultPhysics() Physics {
	return Physics{
		Radius:      DefaultAnimatRadius,
		MaxSpeed:    DefaultMaxSpeed,
		MinSpeed:    DefaultMinSpeed,
		MaxTurn:     DefaultMaxTurn,
		Drag:        DefaultDrag,
		TimeStep:    DefaultTimeStep,
		TrailLength: DefaultTrailLength,
	}
}

// Animat is a mobile, sensing, controller-driven body. Two wheels, driven
// by the "left" and "right" channels, set its turn rate and thrust.
type Animat struct {
	*Object

	outer Agent

	velocity       geom.Vector2D
	startVelocity  geom.Vector2D
	randomVelocity bool

	maxSpeed float64
	minSpeed float64
	maxTurn  float64
	drag     float64
	timeStep float64

	interactionRange float64

	controls     map[string]ControlValue
	values       map[string]float64
	controlOrder []string
	controller   Controller

	sensors     map[string]Sensor
	sensorOrder []string

	trail *Trail

	distance float64
	power    float64

	collisionPoint  geom.Vector2D
	collisionNormal geom.Vector2D
}

// NewAnimat creates an animat with default physics and a random start pose.
func NewAnimat() *Animat {
	return NewAnimatWith(DefaultPhysics())
}

// NewAnimatWith creates an animat with the given physics.
func NewAnimatWith(p Physics) *Animat {
	a := &Animat{
		Object:           NewObject(),
		randomVelocity:   true,
		interactionRange: math.Inf(1),
		controls:         make(map[string]ControlValue),
		values:           make(map[string]float64),
		sensors:          make(map[string]Sensor),
	}
	a.kind = components.KindAnimat
	a.SetPhysics(p)
	a.SetControl(ControlLeft, 0)
	a.SetControl(ControlRight, 0)
	return a
}

// SetPhysics applies motion limits. A zero trail length keeps the default.
func (a *Animat) SetPhysics(p Physics) {
	a.radius = p.Radius
	a.maxSpeed = p.MaxSpeed
	a.minSpeed = p.MinSpeed
	a.maxTurn = p.MaxTurn
	a.drag = p.Drag
	a.timeStep = p.TimeStep
	a.solid = p.Solid
	n := p.TrailLength
	if n <= 0 {
		n = DefaultTrailLength
	}
	a.trail = NewTrail(n)
}

// AsAnimat returns a itself so embedding types satisfy Agent.
func (a *Animat) AsAnimat() *Animat { return a }

// self returns the outermost value the animat was added to the World as,
// so collision callbacks reach overriding methods.
func (a *Animat) self() Agent {
	if a.outer != nil {
		return a.outer
	}
	return a
}

// Bind records outer as the Agent wrapping this animat.
func (a *Animat) Bind(outer Agent) { a.outer = outer }

// Init places the animat and initialises its sensors.
func (a *Animat) Init() {
	a.Object.Init()
	if a.randomVelocity {
		a.startVelocity = geom.Polar(1, a.orientation)
	}
	a.velocity = a.startVelocity
	for _, name := range a.sensorOrder {
		a.sensors[name].Init()
	}
	a.refreshSensors()
}

// Reset returns the animat to its start state between assessments.
func (a *Animat) Reset() {
	a.Object.Reset()
	a.distance = 0
	a.power = 0
	if a.randomVelocity {
		a.startVelocity = geom.Polar(1, a.orientation)
	}
	a.velocity = a.startVelocity
	a.trail.Clear()
	a.refreshSensors()
}

// refreshSensors clears what the sensors saw and moves them to the animat,
// so the first control step of an assessment reads no stale outputs.
func (a *Animat) refreshSensors() {
	for _, name := range a.sensorOrder {
		a.sensors[name].Update()
	}
}

// Update runs one tick of control, motion and sensing.
func (a *Animat) Update() {
	if a.controller != nil {
		a.controller.Control(a)
	}
	dt := a.timeStep

	for _, name := range a.controlOrder {
		a.values[name] = a.controls[name].Resolve()
	}
	left, right := a.values[ControlLeft], a.values[ControlRight]

	a.OffsetOrientation(a.maxTurn * (left - right) * dt)

	thrust := (a.maxSpeed-a.minSpeed)*0.5*(left+right) + a.minSpeed
	a.velocity = a.velocity.Add(geom.Polar(thrust, a.orientation))

	if a.maxSpeed > 0 {
		a.velocity = a.velocity.Sub(a.velocity.Scale(a.drag / a.maxSpeed))
	}
	if a.velocity.LengthSquared() > a.maxSpeed*a.maxSpeed {
		a.velocity.SetLength(a.maxSpeed)
	}

	a.OffsetLocation(a.velocity.Scale(dt))
	a.wrap()

	a.refreshSensors()

	a.distance += a.velocity.Length() * dt
	for _, name := range a.controlOrder {
		a.power += ((a.maxSpeed-a.minSpeed)*math.Abs(a.values[name]) + a.minSpeed) * dt
	}

	a.trail.Append(a.location)
}

// wrap keeps the animat inside a toroidal arena. The trail is cleared on
// every wrap so it never spans the arena.
func (a *Animat) wrap() {
	if a.world == nil {
		return
	}
	w, h := a.world.Width(), a.world.Height()
	loc := a.location
	wrapped := false
	for loc.X < 0 {
		loc.X += w
		wrapped = true
	}
	for loc.X >= w {
		loc.X -= w
		wrapped = true
	}
	for loc.Y < 0 {
		loc.Y += h
		wrapped = true
	}
	for loc.Y >= h {
		loc.Y -= h
		wrapped = true
	}
	if wrapped {
		a.SetLocation(loc)
		a.trail.Clear()
	}
}

// Interact senses other and resolves any collision with it. Nothing happens
// beyond the interaction range.
func (a *Animat) Interact(other Body) {
	ob := other.Base()
	if a.location.Distance(ob.location) > a.interactionRange {
		return
	}

	a.SensorInteract(other)

	if !a.IsTouching(other) {
		return
	}

	if oa, ok := other.(Agent); ok {
		o := oa.AsAnimat()
		if a.solid && o.solid {
			avg := a.velocity.Add(o.velocity).Scale(0.5)
			a.velocity = avg
			o.velocity = avg

			toOther := o.location.Sub(a.location)
			dir := geom.Vec(1, 0)
			if !toOther.IsZero() {
				dir = toOther.Normalized()
			}
			half := 0.5 * (a.radius + o.radius - toOther.Length())
			a.OffsetLocation(dir.Scale(-half))
			o.OffsetLocation(dir.Scale(half))
		}
	} else if a.solid && ob.solid {
		a.OffsetLocation(a.collisionNormal.Scale(a.radius - a.location.Distance(a.collisionPoint)))
	}

	me := a.self()
	me.OnCollision(other)
	other.OnCollision(me)
	if a.world != nil {
		a.world.AddCollision(a.collisionPoint)
	}
}

// SensorInteract offers other to every sensor.
func (a *Animat) SensorInteract(other Body) {
	for _, name := range a.sensorOrder {
		a.sensors[name].Interact(other)
	}
}

// IsTouching reports whether a overlaps other and records the collision
// point and normal on other's boundary.
func (a *Animat) IsTouching(other Body) bool {
	ob := other.Base()
	minDist := a.radius + ob.radius
	if a.location.DistanceSquared(ob.location) > minDist*minDist {
		return false
	}
	a.collisionPoint, a.collisionNormal = ob.NearestPoint(a.location)
	return ob.IsCircular() || a.IsInside(a.collisionPoint)
}

// AddSensor attaches s under name, replacing any sensor with that name.
func (a *Animat) AddSensor(name string, s Sensor) {
	if _, ok := a.sensors[name]; !ok {
		a.sensorOrder = append(a.sensorOrder, name)
	}
	a.sensors[name] = s
	s.SetOwner(a)
}

// Sensor returns the sensor registered under name, or nil.
func (a *Animat) Sensor(name string) Sensor { return a.sensors[name] }

// SensorNames returns sensor names in the order they were added.
func (a *Animat) SensorNames() []string { return a.sensorOrder }

// NumSensors returns the number of attached sensors.
func (a *Animat) NumSensors() int { return len(a.sensorOrder) }

// SensorOutputs appends every sensor's output, in order, to dst.
func (a *Animat) SensorOutputs(dst []float64) []float64 {
	for _, name := range a.sensorOrder {
		dst = append(dst, a.sensors[name].Output())
	}
	return dst
}

// SetController sets the decision function run at the start of each tick.
func (a *Animat) SetController(c Controller) { a.controller = c }

// Controller returns the current controller, or nil.
func (a *Animat) Controller() Controller { return a.controller }

// SetControl sets a channel to a constant, creating it if needed.
func (a *Animat) SetControl(name string, v float64) {
	a.SetControlValue(name, Constant(v))
}

// SetControlValue sets a channel to a constant or computed value.
func (a *Animat) SetControlValue(name string, v ControlValue) {
	if _, ok := a.controls[name]; !ok {
		a.controlOrder = append(a.controlOrder, name)
	}
	a.controls[name] = v
	if !v.IsComputed() {
		a.values[name] = v.Resolve()
	}
}

// Control returns a channel's most recent value.
func (a *Animat) Control(name string) float64 { return a.values[name] }

// ControlNames returns channel names in creation order.
func (a *Animat) ControlNames() []string { return a.controlOrder }

// NumControls returns the number of channels.
func (a *Animat) NumControls() int { return len(a.controlOrder) }

// Velocity returns the current velocity.
func (a *Animat) Velocity() geom.Vector2D { return a.velocity }

// SetVelocity sets the current velocity.
func (a *Animat) SetVelocity(v geom.Vector2D) { a.velocity = v }

// SetStartVelocity fixes the velocity used by Init and Reset.
func (a *Animat) SetStartVelocity(v geom.Vector2D) {
	a.startVelocity = v
	a.randomVelocity = false
}

// MaxSpeed returns the speed limit.
func (a *Animat) MaxSpeed() float64 { return a.maxSpeed }

// SetMaxSpeed sets the speed limit.
func (a *Animat) SetMaxSpeed(s float64) { a.maxSpeed = s }

// MinSpeed returns the thrust at zero control.
func (a *Animat) MinSpeed() float64 { return a.minSpeed }

// SetMinSpeed sets the thrust at zero control.
func (a *Animat) SetMinSpeed(s float64) { a.minSpeed = s }

// MaxTurn returns the turn rate at full differential control.
func (a *Animat) MaxTurn() float64 { return a.maxTurn }

// SetMaxTurn sets the turn rate at full differential control.
func (a *Animat) SetMaxTurn(r float64) { a.maxTurn = r }

// TimeStep returns the integration step in seconds.
func (a *Animat) TimeStep() float64 { return a.timeStep }

// SetTimeStep sets the integration step.
func (a *Animat) SetTimeStep(dt float64) { a.timeStep = dt }

// InteractionRange returns the distance beyond which Interact is skipped.
func (a *Animat) InteractionRange() float64 { return a.interactionRange }

// SetInteractionRange sets the interaction cut-off distance.
func (a *Animat) SetInteractionRange(r float64) { a.interactionRange = r }

// Distance returns the distance travelled since the last reset.
func (a *Animat) Distance() float64 { return a.distance }

// Power returns the power used since the last reset.
func (a *Animat) Power() float64 { return a.power }

// Trail returns the recent-location trail.
func (a *Animat) Trail() *Trail { return a.trail }

// CollisionPoint returns the contact point found by the last IsTouching.
func (a *Animat) CollisionPoint() geom.Vector2D { return a.collisionPoint }

// CollisionNormal returns the contact normal found by the last IsTouching.
func (a *Animat) CollisionNormal() geom.Vector2D { return a.collisionNormal }
