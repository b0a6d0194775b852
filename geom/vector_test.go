package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestAngleRange(t *testing.T) {
	tests := []struct {
		name string
		v    Vector2D
		want float64
	}{
		{"east", Vec(1, 0), 0},
		{"north", Vec(0, 1), math.Pi / 2},
		{"west", Vec(-1, 0), math.Pi},
		{"south", Vec(0, -1), 3 * math.Pi / 2},
		{"south east", Vec(1, -1), 7 * math.Pi / 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Angle()
			if !approx(got, tt.want) {
				t.Errorf("Angle wrong: got %f, want %f", got, tt.want)
			}
			if got < 0 || got >= TwoPi {
				t.Errorf("Angle out of [0, 2π): %f", got)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	v := Vec(3, 4)
	v.Normalize()
	if !approx(v.Length(), 1) {
		t.Errorf("normalized length wrong: got %f, want 1", v.Length())
	}

	zero := Vec(0, 0)
	zero.Normalize()
	if !zero.IsZero() {
		t.Errorf("Normalize on zero vector changed it: %v", zero)
	}

	if n := Vec(0, 0).Normalized(); n != Vec(0, 1) {
		t.Errorf("Normalized zero vector wrong: got %v, want (0, 1)", n)
	}
}

func TestSetLength(t *testing.T) {
	v := Vec(2, 0)
	v.SetLength(5)
	if !approx(v.X, 5) || !approx(v.Y, 0) {
		t.Errorf("SetLength wrong: got %v", v)
	}
}

func TestRotateAndPerpendicular(t *testing.T) {
	v := Vec(1, 0).Rotated(math.Pi / 2)
	if !approx(v.X, 0) || !approx(v.Y, 1) {
		t.Errorf("Rotated wrong: got %v, want (0, 1)", v)
	}

	p := Vec(2, 3).Perpendicular()
	if p != Vec(-3, 2) {
		t.Errorf("Perpendicular wrong: got %v, want (-3, 2)", p)
	}
	if d := p.Dot(Vec(2, 3)); d != 0 {
		t.Errorf("perpendicular not orthogonal: dot = %f", d)
	}
}

func TestPolar(t *testing.T) {
	base := Vec(10, 10)
	v := PolarFrom(2, math.Pi, base)
	if !approx(v.X, 8) || !approx(v.Y, 10) {
		t.Errorf("PolarFrom wrong: got %v, want (8, 10)", v)
	}
}

func TestGradient(t *testing.T) {
	if g := Vec(0, 5).Gradient(); !math.IsInf(g, 1) {
		t.Errorf("vertical gradient should be +Inf, got %f", g)
	}
	if g := Vec(2, 4).Gradient(); g != 2 {
		t.Errorf("gradient wrong: got %f, want 2", g)
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
		{0, 0},
	}
	for _, tt := range tests {
		if got := WrapAngle(tt.in); !approx(got, tt.want) {
			t.Errorf("WrapAngle(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestNearestPointOnSegment(t *testing.T) {
	l1, l2 := Vec(0, 0), Vec(10, 0)
	tests := []struct {
		name string
		p    Vector2D
		want Vector2D
	}{
		{"middle", Vec(4, 3), Vec(4, 0)},
		{"before start", Vec(-5, 2), l1},
		{"past end", Vec(15, -1), l2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NearestPointOnSegment(tt.p, l1, l2)
			if !approx(got.X, tt.want.X) || !approx(got.Y, tt.want.Y) {
				t.Errorf("nearest point wrong: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSegmentIntersect(t *testing.T) {
	tests := []struct {
		name           string
		a1, a2, b1, b2 Vector2D
		wantOK         bool
		want           Vector2D
	}{
		{"crossing", Vec(0, 0), Vec(10, 10), Vec(0, 10), Vec(10, 0), true, Vec(5, 5)},
		{"parallel", Vec(0, 0), Vec(10, 0), Vec(0, 1), Vec(10, 1), false, Vector2D{}},
		{"disjoint", Vec(0, 0), Vec(1, 1), Vec(5, 0), Vec(6, -1), false, Vector2D{}},
		{"first vertical", Vec(5, -5), Vec(5, 5), Vec(0, 0), Vec(10, 0), true, Vec(5, 0)},
		{"second vertical", Vec(0, 2), Vec(10, 2), Vec(3, 0), Vec(3, 10), true, Vec(3, 2)},
		{"both vertical", Vec(1, 0), Vec(1, 5), Vec(1, 2), Vec(1, 8), false, Vector2D{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SegmentIntersect(tt.a1, tt.a2, tt.b1, tt.b2)
			if ok != tt.wantOK {
				t.Fatalf("intersect ok wrong: got %v, want %v", ok, tt.wantOK)
			}
			if ok && (!approx(got.X, tt.want.X) || !approx(got.Y, tt.want.Y)) {
				t.Errorf("intersection wrong: got %v, want %v", got, tt.want)
			}
		})
	}
}
