package geom

import "math"

// NearestPointOnSegment returns the point on segment l1-l2 closest to p.
func NearestPointOnSegment(p, l1, l2 Vector2D) Vector2D {
	side := l2.Sub(l1)
	sideLen := side.Length()
	if sideLen == 0 {
		return l1
	}
	along := p.Sub(l1).Dot(side) / sideLen
	switch {
	case along > sideLen:
		return l2
	case along <= 0:
		return l1
	default:
		return l1.Add(side.Scale(along / sideLen))
	}
}

// SegmentIntersect returns the intersection of segments a1-a2 and b1-b2.
// Parallel segments never intersect; vertical segments take their own branch
// so no infinite gradient reaches the arithmetic.
func SegmentIntersect(a1, a2, b1, b2 Vector2D) (Vector2D, bool) {
	aGrad := a2.Sub(a1).Gradient()
	bGrad := b2.Sub(b1).Gradient()
	if aGrad == bGrad {
		return Vector2D{}, false
	}

	if math.IsInf(aGrad, 0) {
		bInt := b1.Y - bGrad*b1.X
		r := Vector2D{X: a1.X, Y: bGrad*a1.X + bInt}
		if within(r.Y, a1.Y, a2.Y) && within(r.Y, b1.Y, b2.Y) && within(r.X, b1.X, b2.X) {
			return r, true
		}
		return Vector2D{}, false
	}

	if math.IsInf(bGrad, 0) {
		aInt := a1.Y - aGrad*a1.X
		r := Vector2D{X: b1.X, Y: aGrad*b1.X + aInt}
		if within(r.Y, a1.Y, a2.Y) && within(r.Y, b1.Y, b2.Y) && within(r.X, a1.X, a2.X) {
			return r, true
		}
		return Vector2D{}, false
	}

	aInt := a1.Y - aGrad*a1.X
	bInt := b1.Y - bGrad*b1.X
	x := -(aInt - bInt) / (aGrad - bGrad)
	r := Vector2D{X: x, Y: aGrad*x + aInt}
	if within(r.X, a1.X, a2.X) && within(r.X, b1.X, b2.X) {
		return r, true
	}
	return Vector2D{}, false
}

// within reports whether v lies between a and b inclusive, in either order.
func within(v, a, b float64) bool {
	return (v <= a && v >= b) || (v <= b && v >= a)
}
