package world

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/beast/components"
)

// Pose is a read-only view of one body as last synced into the entity table.
type Pose struct {
	ID       uint32
	Kind     components.Kind
	X, Y     float64
	Heading  float64
	VX, VY   float64
	Radius   float64
	Edges    [][2]float64
	Solid    bool
	Selected bool
	Dead     bool
}

// registry mirrors every body's pose into an ark entity table so renderers
// and recorders can read the arena without touching live bodies.
type registry struct {
	ecs *ecs.World

	mapper *ecs.Map6[
		components.Identity,
		components.Position,
		components.Rotation,
		components.Velocity,
		components.Flags,
		components.Shape,
	]
	filter *ecs.Filter6[
		components.Identity,
		components.Position,
		components.Rotation,
		components.Velocity,
		components.Flags,
		components.Shape,
	]

	posMap   *ecs.Map1[components.Position]
	rotMap   *ecs.Map1[components.Rotation]
	velMap   *ecs.Map1[components.Velocity]
	flagsMap *ecs.Map1[components.Flags]
	shapeMap *ecs.Map1[components.Shape]
}

func newRegistry() *registry {
	w := ecs.NewWorld()
	return &registry{
		ecs: w,
		mapper: ecs.NewMap6[
			components.Identity,
			components.Position,
			components.Rotation,
			components.Velocity,
			components.Flags,
			components.Shape,
		](w),
		filter: ecs.NewFilter6[
			components.Identity,
			components.Position,
			components.Rotation,
			components.Velocity,
			components.Flags,
			components.Shape,
		](w),
		posMap:   ecs.NewMap1[components.Position](w),
		rotMap:   ecs.NewMap1[components.Rotation](w),
		velMap:   ecs.NewMap1[components.Velocity](w),
		flagsMap: ecs.NewMap1[components.Flags](w),
		shapeMap: ecs.NewMap1[components.Shape](w),
	}
}

// insert creates the entity for b and stores it on the body.
func (r *registry) insert(b Body) {
	o := b.Base()
	id := components.Identity{ID: o.id, Kind: o.kind}
	pos := components.Position{}
	rot := components.Rotation{}
	vel := components.Velocity{}
	flags := components.Flags{}
	shape := components.Shape{}
	o.entity = r.mapper.NewEntity(&id, &pos, &rot, &vel, &flags, &shape)
	o.registered = true
	r.sync(b)
}

// remove deletes b's entity, if it has one.
func (r *registry) remove(b Body) {
	o := b.Base()
	if !o.registered {
		return
	}
	if r.ecs.Alive(o.entity) {
		r.mapper.Remove(o.entity)
	}
	o.registered = false
}

// sync copies b's current state into its entity.
func (r *registry) sync(b Body) {
	o := b.Base()
	if !o.registered || !r.ecs.Alive(o.entity) {
		return
	}
	e := o.entity

	pos := r.posMap.Get(e)
	pos.X, pos.Y = o.location.X, o.location.Y

	r.rotMap.Get(e).Heading = o.orientation

	vel := r.velMap.Get(e)
	if a, ok := b.(Agent); ok {
		v := a.AsAnimat().velocity
		vel.X, vel.Y = v.X, v.Y
	} else {
		vel.X, vel.Y = 0, 0
	}

	*r.flagsMap.Get(e) = components.Flags{
		Solid:      o.solid,
		Selectable: o.selectable,
		Selected:   o.selected,
		Dead:       o.dead,
	}

	shape := r.shapeMap.Get(e)
	shape.Radius = o.radius
	shape.Edges = shape.Edges[:0]
	for _, v := range o.absEdges {
		shape.Edges = append(shape.Edges, [2]float64{v.X, v.Y})
	}
}

// each calls fn with every registered pose.
func (r *registry) each(fn func(Pose)) {
	query := r.filter.Query()
	for query.Next() {
		id, pos, rot, vel, flags, shape := query.Get()
		fn(Pose{
			ID:       id.ID,
			Kind:     id.Kind,
			X:        pos.X,
			Y:        pos.Y,
			Heading:  rot.Heading,
			VX:       vel.X,
			VY:       vel.Y,
			Radius:   shape.Radius,
			Edges:    shape.Edges,
			Solid:    flags.Solid,
			Selected: flags.Selected,
			Dead:     flags.Dead,
		})
	}
}
