package world

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/beast/components"
	"github.com/pthm-cable/beast/geom"
)

// DefaultObjectRadius is the radius given to new objects.
const DefaultObjectRadius = 10.0

// Body is anything that can live in a World.
type Body interface {
	Base() *Object
	Kind() components.Kind
	Init()
	Update()
	Reset()
	OnCollision(other Body)
}

// Object is the spatial body shared by every arena entity: a circle of
// Radius or, when edges are set, a polygon whose vertices are given
// relative to the location and rotated with the orientation.
type Object struct {
	id   uint32
	kind components.Kind

	location    geom.Vector2D
	orientation float64
	radius      float64

	edges    []geom.Vector2D
	absEdges []geom.Vector2D

	startLocation    geom.Vector2D
	startOrientation float64
	randomLocation   bool
	randomHeading    bool

	solid      bool
	dead       bool
	selectable bool
	selected   bool
	moveable   bool

	world      *World
	entity     ecs.Entity
	registered bool
}

// NewObject creates a circular object with a random start pose.
func NewObject() *Object {
	return &Object{
		kind:           components.KindObject,
		radius:         DefaultObjectRadius,
		randomLocation: true,
		randomHeading:  true,
		selectable:     true,
		moveable:       true,
	}
}

// NewObjectAt creates a circular object with a fixed start pose.
func NewObjectAt(loc geom.Vector2D, orientation, radius float64) *Object {
	o := NewObject()
	o.SetStartLocation(loc)
	o.SetStartOrientation(orientation)
	o.radius = radius
	return o
}

// Base returns the object itself so embedding types satisfy Body.
func (o *Object) Base() *Object { return o }

// Kind returns the object's kind.
func (o *Object) Kind() components.Kind { return o.kind }

// SetKind changes the object's kind.
func (o *Object) SetKind(k components.Kind) { o.kind = k }

// ID returns the id assigned by the World, or 0 before the object is added.
func (o *Object) ID() uint32 { return o.id }

// Init places the object at its start pose, drawing random values for
// whatever was left unset.
func (o *Object) Init() {
	if o.randomLocation {
		o.startLocation = o.randomPoint()
	}
	if o.randomHeading {
		o.startOrientation = o.randomAngle()
	}
	o.SetLocation(o.startLocation)
	o.SetOrientation(o.startOrientation)
	o.dead = false
}

// Reset returns the object to its start pose between assessments.
func (o *Object) Reset() {
	if o.randomLocation {
		o.startLocation = o.randomPoint()
	}
	if o.randomHeading {
		o.startOrientation = o.randomAngle()
	}
	o.SetLocation(o.startLocation)
	o.SetOrientation(o.startOrientation)
}

// Update does nothing for passive objects.
func (o *Object) Update() {}

// OnCollision does nothing for passive objects.
func (o *Object) OnCollision(Body) {}

func (o *Object) randomPoint() geom.Vector2D {
	if o.world == nil {
		return geom.Vector2D{}
	}
	return o.world.RandomLocation()
}

func (o *Object) randomAngle() float64 {
	return randFloat(o.world) * geom.TwoPi
}

// Location returns the current position.
func (o *Object) Location() geom.Vector2D { return o.location }

// SetLocation moves the object.
func (o *Object) SetLocation(l geom.Vector2D) {
	o.location = l
	o.calcAbsoluteEdges()
}

// OffsetLocation moves the object by d.
func (o *Object) OffsetLocation(d geom.Vector2D) {
	o.SetLocation(o.location.Add(d))
}

// Orientation returns the heading in [0, 2π).
func (o *Object) Orientation() float64 { return o.orientation }

// SetOrientation sets the heading, wrapping it into [0, 2π).
func (o *Object) SetOrientation(a float64) {
	o.orientation = geom.WrapAngle(a)
	o.calcAbsoluteEdges()
}

// OffsetOrientation turns the object by da radians.
func (o *Object) OffsetOrientation(da float64) {
	o.SetOrientation(o.orientation + da)
}

// SetStartLocation fixes the pose used by Init and Reset.
func (o *Object) SetStartLocation(l geom.Vector2D) {
	o.startLocation = l
	o.randomLocation = false
}

// SetStartOrientation fixes the heading used by Init and Reset.
func (o *Object) SetStartOrientation(a float64) {
	o.startOrientation = a
	o.randomHeading = false
}

// SetResetRandom makes Reset draw a fresh location and heading.
func (o *Object) SetResetRandom(r bool) {
	o.randomLocation = r
	o.randomHeading = r
}

// Radius returns the bounding radius.
func (o *Object) Radius() float64 { return o.radius }

// RadiusSquared returns Radius².
func (o *Object) RadiusSquared() float64 { return o.radius * o.radius }

// SetRadius sets the bounding radius.
func (o *Object) SetRadius(r float64) { o.radius = r }

// IsCircular reports whether the object has no polygon edges.
func (o *Object) IsCircular() bool { return len(o.edges) == 0 }

// SetEdges turns the object into a closed polygon. Vertices are relative to
// the location at orientation 0.
func (o *Object) SetEdges(edges []geom.Vector2D) {
	o.edges = append(o.edges[:0], edges...)
	o.calcAbsoluteEdges()
}

// AbsoluteEdges returns the polygon vertices in world coordinates.
func (o *Object) AbsoluteEdges() []geom.Vector2D { return o.absEdges }

func (o *Object) calcAbsoluteEdges() {
	if len(o.edges) == 0 {
		o.absEdges = o.absEdges[:0]
		return
	}
	s, c := math.Sincos(o.orientation)
	o.absEdges = o.absEdges[:0]
	for _, e := range o.edges {
		o.absEdges = append(o.absEdges, geom.Vector2D{
			X: o.location.X + (c*e.X - s*e.Y),
			Y: o.location.Y + (c*e.Y + s*e.X),
		})
	}
}

// eachSide calls fn for every side of the polygon, closing the last vertex
// back to the first. It stops early when fn returns false.
func (o *Object) eachSide(fn func(v1, v2 geom.Vector2D) bool) {
	n := len(o.absEdges)
	for i := 0; i < n; i++ {
		if !fn(o.absEdges[i], o.absEdges[(i+1)%n]) {
			return
		}
	}
}

// IsInside reports whether p lies within the object.
func (o *Object) IsInside(p geom.Vector2D) bool {
	if o.IsCircular() {
		return p.DistanceSquared(o.location) <= o.RadiusSquared()
	}

	// Ray cast to a point known to be outside the polygon
	outside := p.Add(geom.Vec(o.radius+1, 0))
	inside := false
	o.eachSide(func(v1, v2 geom.Vector2D) bool {
		if (v1.Y >= p.Y && v2.Y < p.Y) || (v1.Y < p.Y && v2.Y >= p.Y) {
			if _, ok := geom.SegmentIntersect(v1, v2, p, outside); ok {
				inside = !inside
			}
		}
		return true
	})
	return inside
}

// NearestPoint returns the point on the object's boundary nearest to p and
// the outward normal there. For polygons the side crossed by the segment
// from p to the centre is used; if p is inside, p itself is returned with a
// zero normal.
func (o *Object) NearestPoint(p geom.Vector2D) (point, normal geom.Vector2D) {
	if o.IsCircular() {
		normal = p.Sub(o.location).Normalized()
		return o.location.Add(normal.Scale(o.radius)), normal
	}

	found := false
	var v1, v2, crossing geom.Vector2D
	o.eachSide(func(a, b geom.Vector2D) bool {
		if x, ok := geom.SegmentIntersect(a, b, p, o.location); ok {
			v1, v2, crossing, found = a, b, x, true
			return false
		}
		return true
	})
	if !found {
		return p, geom.Vector2D{}
	}
	return geom.NearestPointOnSegment(crossing, v1, v2), v2.Sub(v1).Perpendicular().Normalized()
}

// Intersects reports whether segment l1-l2 hits the object and, if so,
// the hit point nearest to l1.
func (o *Object) Intersects(l1, l2 geom.Vector2D) (geom.Vector2D, bool) {
	if o.IsCircular() {
		if o.location.DistanceSquared(l1) <= o.RadiusSquared() {
			return l1, true
		}
		seg := l2.Sub(l1)
		length := seg.Length()
		if length == 0 {
			return geom.Vector2D{}, false
		}
		dir := seg.Div(length)
		// Entry point on the infinite line, kept only if it lies on l1-l2.
		proj := o.location.Sub(l1).Dot(dir)
		d2 := o.location.DistanceSquared(l1.Add(dir.Scale(proj)))
		if d2 > o.RadiusSquared() {
			return geom.Vector2D{}, false
		}
		along := proj - math.Sqrt(o.RadiusSquared()-d2)
		if along < 0 || along > length {
			return geom.Vector2D{}, false
		}
		return l1.Add(dir.Scale(along)), true
	}

	var best geom.Vector2D
	found := false
	o.eachSide(func(a, b geom.Vector2D) bool {
		x, ok := geom.SegmentIntersect(a, b, l1, l2)
		if !ok {
			return true
		}
		if !found || x.DistanceSquared(l1) < best.DistanceSquared(l1) {
			best, found = x, true
		}
		return true
	})
	return best, found
}

// Solid reports whether the object takes part in collision response.
func (o *Object) Solid() bool { return o.solid }

// SetSolid sets the solid flag.
func (o *Object) SetSolid(s bool) { o.solid = s }

// Dead reports whether the object is due for removal.
func (o *Object) Dead() bool { return o.dead }

// SetDead flags the object for removal at the next tick.
func (o *Object) SetDead(d bool) { o.dead = d }

// Selectable reports whether selection traversal may stop on this object.
func (o *Object) Selectable() bool { return o.selectable }

// SetSelectable sets the selectable flag.
func (o *Object) SetSelectable(s bool) { o.selectable = s }

// Selected reports whether the object is the current selection.
func (o *Object) Selected() bool { return o.selected }

// Moveable reports whether a pointer may drag the object.
func (o *Object) Moveable() bool { return o.moveable }

// SetMoveable sets the moveable flag.
func (o *Object) SetMoveable(m bool) { o.moveable = m }

// World returns the world the object was added to, or nil.
func (o *Object) World() *World { return o.world }

// SetWorld attaches the object to w without registering it.
func (o *Object) SetWorld(w *World) { o.world = w }
