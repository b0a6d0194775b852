package world

import (
	"math"
	"testing"

	"github.com/pthm-cable/beast/geom"
)

func square(at geom.Vector2D) *Object {
	o := NewObjectAt(at, 0, 15)
	o.SetEdges([]geom.Vector2D{
		geom.Vec(-10, -10),
		geom.Vec(10, -10),
		geom.Vec(10, 10),
		geom.Vec(-10, 10),
	})
	o.Init()
	return o
}

func TestIsInside(t *testing.T) {
	circle := NewObjectAt(geom.Vec(0, 0), 0, 10)
	circle.Init()
	box := square(geom.Vec(100, 100))

	tests := []struct {
		name string
		o    *Object
		p    geom.Vector2D
		want bool
	}{
		{"circle centre", circle, geom.Vec(0, 0), true},
		{"circle boundary", circle, geom.Vec(10, 0), true},
		{"circle outside", circle, geom.Vec(7.5, 7.5), false},
		{"square centre", box, geom.Vec(100, 100), true},
		{"square near corner", box, geom.Vec(109, 91), true},
		{"square outside", box, geom.Vec(111, 100), false},
		{"square diagonal outside", box, geom.Vec(112, 112), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.o.IsInside(tt.p); got != tt.want {
				t.Errorf("IsInside(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPolygonRotatesWithOrientation(t *testing.T) {
	box := square(geom.Vec(0, 0))
	box.SetOrientation(math.Pi / 4)

	edges := box.AbsoluteEdges()
	want := geom.Vec(0, -10*math.Sqrt2)
	if edges[0].Distance(want) > 1e-9 {
		t.Errorf("first vertex wrong: got %v, want %v", edges[0], want)
	}
	if !box.IsInside(geom.Vec(0, 13)) {
		t.Error("rotated square should reach past its unrotated edge")
	}
}

func TestNearestPoint(t *testing.T) {
	circle := NewObjectAt(geom.Vec(0, 0), 0, 10)
	circle.Init()
	p, n := circle.NearestPoint(geom.Vec(0, 30))
	if p.Distance(geom.Vec(0, 10)) > 1e-9 || n.Distance(geom.Vec(0, 1)) > 1e-9 {
		t.Errorf("circle nearest wrong: point %v normal %v", p, n)
	}

	box := square(geom.Vec(0, 0))
	p, n = box.NearestPoint(geom.Vec(30, 0))
	if p.Distance(geom.Vec(10, 0)) > 1e-9 {
		t.Errorf("square nearest wrong: got %v, want (10, 0)", p)
	}
	if math.Abs(math.Abs(n.X)-1) > 1e-9 || math.Abs(n.Y) > 1e-9 {
		t.Errorf("square normal wrong: got %v", n)
	}
}

func TestIntersects(t *testing.T) {
	circle := NewObjectAt(geom.Vec(50, 0), 0, 10)
	circle.Init()
	box := square(geom.Vec(50, 0))

	tests := []struct {
		name   string
		o      *Object
		l1, l2 geom.Vector2D
		hit    bool
		at     geom.Vector2D
	}{
		{"circle head on", circle, geom.Vec(0, 0), geom.Vec(100, 0), true, geom.Vec(40, 0)},
		{"circle miss", circle, geom.Vec(0, 20), geom.Vec(100, 20), false, geom.Vector2D{}},
		{"circle short", circle, geom.Vec(0, 0), geom.Vec(30, 0), false, geom.Vector2D{}},
		{"circle ends inside", circle, geom.Vec(0, 0), geom.Vec(48, 0), true, geom.Vec(40, 0)},
		{"circle ends inside off axis", circle, geom.Vec(0, 6), geom.Vec(50, 6), true, geom.Vec(42, 6)},
		{"circle starts inside", circle, geom.Vec(45, 0), geom.Vec(100, 0), true, geom.Vec(45, 0)},
		{"circle behind", circle, geom.Vec(70, 0), geom.Vec(100, 0), false, geom.Vector2D{}},
		{"square head on", box, geom.Vec(0, 0), geom.Vec(100, 0), true, geom.Vec(40, 0)},
		{"square miss", box, geom.Vec(0, 20), geom.Vec(100, 20), false, geom.Vector2D{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at, hit := tt.o.Intersects(tt.l1, tt.l2)
			if hit != tt.hit {
				t.Fatalf("hit wrong: got %v, want %v", hit, tt.hit)
			}
			if hit && at.Distance(tt.at) > 1e-9 {
				t.Errorf("hit point wrong: got %v, want %v", at, tt.at)
			}
		})
	}
}
