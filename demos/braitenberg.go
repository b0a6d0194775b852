package demos

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/beast/config"
	"github.com/pthm-cable/beast/geom"
	"github.com/pthm-cable/beast/sensors"
	"github.com/pthm-cable/beast/simulation"
	"github.com/pthm-cable/beast/world"
)

// dotTrack is the winding line of dots the vehicles explore.
var dotTrack = [][2]float64{
	{150, 100}, {200, 100}, {250, 100}, {300, 100},
	{350, 100}, {350, 150}, {350, 200},
	{350, 250}, {350, 300}, {350, 350},
	{300, 350}, {250, 350}, {200, 350}, {200, 400},
	{200, 450}, {200, 500}, {200, 550}, {250, 550},
	{300, 550}, {350, 550}, {400, 550}, {450, 550},
	{500, 550}, {550, 550}, {600, 550}, {600, 500},
	{600, 450}, {600, 400}, {600, 350}, {550, 350},
	{500, 350}, {500, 300}, {500, 250}, {500, 200},
	{500, 150}, {500, 100}, {500, 50},
}

// NewDot creates a fixed dot at loc.
func NewDot(loc geom.Vector2D) *world.Object {
	d := world.NewObjectAt(loc, 0, 12.5)
	d.SetKind(KindDot)
	return d
}

// Wiring selects how a vehicle's sensors drive its wheels.
type Wiring int

const (
	// Uncrossed drives each wheel from the sensor on the same side, so
	// the vehicle turns away from dots (Braitenberg's vehicle 2a).
	Uncrossed Wiring = iota
	// Crossed drives each wheel from the opposite sensor, so the vehicle
	// turns towards dots (vehicle 2b).
	Crossed
)

// Vehicle is a Braitenberg vehicle with two proximity sensors.
type Vehicle struct {
	*world.Animat
	wiring Wiring
}

// NewVehicle creates a vehicle wired as w.
func NewVehicle(p world.Physics, w Wiring) *Vehicle {
	v := &Vehicle{Animat: world.NewAnimatWith(p), wiring: w}
	v.SetKind(KindVehicle)
	v.AddSensor("left", sensors.ScaledProximitySensor(KindDot, math.Pi/2, 125, math.Pi/2.5, true, 0.5, 0))
	v.AddSensor("right", sensors.ScaledProximitySensor(KindDot, math.Pi/2, 125, -math.Pi/2.5, true, 0.5, 0))
	v.SetMinSpeed(20)
	v.SetMaxSpeed(90)
	v.SetTimeStep(0.05)
	v.SetRadius(10)
	v.SetMaxTurn(2 * math.Pi)
	v.SetController(world.ControllerFunc(v.steer))
	return v
}

// Wiring returns how the vehicle is wired.
func (v *Vehicle) Wiring() Wiring { return v.wiring }

func (v *Vehicle) steer(a *world.Animat) {
	l, r := a.Sensor("left").Output(), a.Sensor("right").Output()
	if v.wiring == Crossed {
		l, r = r, l
	}
	a.SetControl(world.ControlLeft, l)
	a.SetControl(world.ControlRight, r)
}

// vehicleScene puts one vehicle of each wiring and the dot track into the
// world at every assessment.
type vehicleScene struct {
	simulation.Base
	physics world.Physics
}

func (s *vehicleScene) AddToWorld() error {
	w := s.World()
	w.Add(NewVehicle(s.physics, Uncrossed))
	w.Add(NewVehicle(s.physics, Crossed))
	for _, p := range dotTrack {
		w.Add(NewDot(geom.Vec(p[0], p[1])))
	}
	return nil
}

// BuildBraitenberg builds two Braitenberg vehicles driving around a track of
// dots. It runs a single unbounded assessment.
func BuildBraitenberg(cfg *config.Config, rng *rand.Rand) (*Setup, error) {
	s := newSim("Braitenberg", cfg, rng, 1, 1, 0)
	if err := s.Add("vehicles", &vehicleScene{physics: physics(cfg)}); err != nil {
		return nil, err
	}
	return &Setup{Sim: s}, nil
}
