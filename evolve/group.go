package evolve

import (
	"errors"

	"github.com/pthm-cable/beast/world"
)

// ErrNoWorld is returned when a group is asked to populate a world it was
// never given.
var ErrNoWorld = errors.New("evolve: world not set")

// Group is a fixed set of bodies that enter the world at every assessment
// and are reset when it ends.
type Group[T world.Body] struct {
	world   *world.World
	members []T
}

// NewGroup creates a group of n bodies made by spawn.
func NewGroup[T world.Body](n int, spawn func() T) *Group[T] {
	g := &Group[T]{members: make([]T, 0, n)}
	for i := 0; i < n; i++ {
		g.members = append(g.members, spawn())
	}
	return g
}

// SetWorld sets the world used by AddToWorld.
func (g *Group[T]) SetWorld(w *world.World) { g.world = w }

// World returns the group's world.
func (g *Group[T]) World() *world.World { return g.world }

// Members returns the bodies in the group.
func (g *Group[T]) Members() []T { return g.members }

// Len returns the number of bodies.
func (g *Group[T]) Len() int { return len(g.members) }

// ForEach calls fn on every body.
func (g *Group[T]) ForEach(fn func(T)) {
	for _, m := range g.members {
		fn(m)
	}
}

// AddToWorld adds every body to the world.
func (g *Group[T]) AddToWorld() error {
	if g.world == nil {
		return ErrNoWorld
	}
	for _, m := range g.members {
		g.world.Add(m)
	}
	return nil
}

func (g *Group[T]) BeginRun() error        { return nil }
func (g *Group[T]) EndRun() error          { return nil }
func (g *Group[T]) BeginGeneration() error { return nil }
func (g *Group[T]) EndGeneration() error   { return nil }
func (g *Group[T]) BeginAssessment() error { return nil }

// EndAssessment resets every body.
func (g *Group[T]) EndAssessment() error {
	for _, m := range g.members {
		m.Reset()
	}
	return nil
}
