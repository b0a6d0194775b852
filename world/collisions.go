package world

import "github.com/pthm-cable/beast/geom"

// DefaultMaxCollisions bounds the number of collision markers kept.
const DefaultMaxCollisions = 200

// Collision marks where two bodies touched.
type Collision struct {
	Location geom.Vector2D
	Tick     int
}

// collisionLog keeps the newest markers up to a fixed capacity.
type collisionLog struct {
	items []Collision
	max   int
}

func (c *collisionLog) add(col Collision) {
	c.items = append(c.items, col)
}

// truncate drops the oldest markers beyond capacity.
func (c *collisionLog) truncate() {
	if over := len(c.items) - c.max; over > 0 {
		c.items = append(c.items[:0], c.items[over:]...)
	}
}

func (c *collisionLog) clear() { c.items = c.items[:0] }
