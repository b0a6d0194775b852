package world

import "github.com/pthm-cable/beast/geom"

// DefaultTrailLength is the number of past locations an animat remembers.
const DefaultTrailLength = 30

// Trail is a bounded record of recent locations, oldest first.
type Trail struct {
	points []geom.Vector2D
	length int
}

// NewTrail creates a trail holding at most length points.
func NewTrail(length int) *Trail {
	return &Trail{points: make([]geom.Vector2D, 0, length+1), length: length}
}

// Append records p, dropping the oldest point once the trail is full.
func (t *Trail) Append(p geom.Vector2D) {
	t.points = append(t.points, p)
	if over := len(t.points) - t.length; over > 0 {
		t.points = append(t.points[:0], t.points[over:]...)
	}
}

// Clear forgets every point.
func (t *Trail) Clear() { t.points = t.points[:0] }

// Points returns the recorded locations, oldest first.
func (t *Trail) Points() []geom.Vector2D { return t.points }

// Len returns the number of recorded points.
func (t *Trail) Len() int { return len(t.points) }
