// Package components defines the entity kinds and the ECS components that
// make up the World's entity table.
package components

// Identity links an ECS entity to its arena body.
type Identity struct {
	ID   uint32
	Kind Kind
}

// Flags holds the per-body booleans observers care about.
type Flags struct {
	Solid      bool
	Selectable bool
	Selected   bool
	Dead       bool
}

// Shape describes how a renderer should outline a body.
// Edges are absolute polygon vertices; nil means a circle of Radius.
type Shape struct {
	Radius float64
	Edges  [][2]float64
}
