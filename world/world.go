// Package world holds the arena: passive objects, animats, and the tick loop
// that updates them and resolves their interactions.
package world

import (
	"math/rand"

	"github.com/pthm-cable/beast/components"
	"github.com/pthm-cable/beast/geom"
)

// Default arena size.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// Tick phases reported to a Timer.
const (
	PhaseInput        = "input"
	PhaseObjects      = "objects"
	PhaseAnimats      = "animats"
	PhaseCleanup      = "cleanup"
	PhaseInteractions = "interactions"
	PhaseFlush        = "flush"
)

// Timer receives phase boundaries for profiling a tick.
type Timer interface {
	StartTick()
	StartPhase(name string)
	EndTick()
}

// World owns every body in the arena and advances them one tick at a time.
// It is not safe for concurrent use.
type World struct {
	width  float64
	height float64
	rng    *rand.Rand

	objects []Body
	animats []Agent
	pending []Body

	updating bool
	tick     int

	collisions collisionLog

	nextID     uint32
	numAnimats int

	selected Agent

	reg   *registry
	timer Timer

	input   func(*World)
	display func(*World)
}

// New creates an empty world. A nil rng falls back to the package-level
// source in math/rand.
func New(width, height float64, rng *rand.Rand) *World {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &World{
		width:      width,
		height:     height,
		rng:        rng,
		collisions: collisionLog{max: DefaultMaxCollisions},
		nextID:     1,
		reg:        newRegistry(),
	}
}

func randFloat(w *World) float64 {
	if w != nil && w.rng != nil {
		return w.rng.Float64()
	}
	return rand.Float64()
}

// Rand returns a uniform value in [0, 1) from the world's source.
func (w *World) Rand() float64 { return randFloat(w) }

// RandomLocation returns a uniformly random point in the arena.
func (w *World) RandomLocation() geom.Vector2D {
	return geom.Vec(randFloat(w)*w.width, randFloat(w)*w.height)
}

// Centre returns the middle of the arena.
func (w *World) Centre() geom.Vector2D {
	return geom.Vec(w.width/2, w.height/2)
}

// Width returns the arena width.
func (w *World) Width() float64 { return w.width }

// Height returns the arena height.
func (w *World) Height() float64 { return w.height }

// Tick returns the number of completed updates.
func (w *World) Tick() int { return w.tick }

// SetTimer installs a profiler; nil disables profiling.
func (w *World) SetTimer(t Timer) { w.timer = t }

// SetMaxCollisions sets how many collision markers are kept.
func (w *World) SetMaxCollisions(n int) { w.collisions.max = n }

// SetInput installs a callback run at the start of every tick to apply
// pending pointer or selection input.
func (w *World) SetInput(fn func(*World)) { w.input = fn }

// SetDisplay installs the callback run by Display.
func (w *World) SetDisplay(fn func(*World)) { w.display = fn }

// Display hands the world to the display callback, if any.
func (w *World) Display() {
	if w.display != nil {
		w.display(w)
	}
}

// Add puts b into the arena. Bodies added during an update are queued and
// inserted when the update finishes.
func (w *World) Add(b Body) {
	if a, ok := b.(Agent); ok {
		a.AsAnimat().Bind(a)
	}
	b.Base().world = w
	if w.updating {
		w.pending = append(w.pending, b)
		return
	}
	w.insert(b)
}

func (w *World) insert(b Body) {
	o := b.Base()
	o.world = w
	o.id = w.nextID
	w.nextID++
	if a, ok := b.(Agent); ok {
		w.animats = append(w.animats, a)
		w.numAnimats++
	} else {
		w.objects = append(w.objects, b)
	}
	w.reg.insert(b)
}

// Remove takes every body whose kind is-a kind out of the arena. It does
// nothing while an update is running.
func (w *World) Remove(kind components.Kind) {
	if w.updating {
		return
	}
	w.objects = w.filterObjects(func(b Body) bool { return !b.Kind().IsA(kind) })
	w.animats = w.filterAnimats(func(a Agent) bool { return !a.Kind().IsA(kind) })
}

// Get returns every body whose kind is-a kind, objects first.
func (w *World) Get(kind components.Kind) []Body {
	var out []Body
	for _, o := range w.objects {
		if o.Kind().IsA(kind) {
			out = append(out, o)
		}
	}
	for _, a := range w.animats {
		if a.Kind().IsA(kind) {
			out = append(out, a)
		}
	}
	return out
}

// Objects returns the passive bodies.
func (w *World) Objects() []Body { return w.objects }

// Animats returns the animats.
func (w *World) Animats() []Agent { return w.animats }

// NumAnimats returns the number of animats in the arena.
func (w *World) NumAnimats() int { return w.numAnimats }

// Init initialises every body and syncs the entity table.
func (w *World) Init() {
	for _, o := range w.objects {
		o.Init()
	}
	for _, a := range w.animats {
		a.Init()
	}
	w.syncAll()
}

// Update advances the arena by one tick.
func (w *World) Update() {
	if w.timer != nil {
		w.timer.StartTick()
	}
	w.updating = true

	w.phase(PhaseInput)
	if w.input != nil {
		w.input(w)
	}

	w.phase(PhaseObjects)
	for _, o := range w.objects {
		o.Update()
	}

	w.phase(PhaseAnimats)
	for _, a := range w.animats {
		a.Update()
	}

	w.phase(PhaseCleanup)
	w.removeDead()

	w.phase(PhaseInteractions)
	for _, a := range w.animats {
		self := a.AsAnimat()
		for _, o := range w.objects {
			self.Interact(o)
		}
	}
	for _, a := range w.animats {
		self := a.AsAnimat()
		for _, b := range w.animats {
			if b != a {
				self.Interact(b)
			}
		}
	}
	w.collisions.truncate()

	w.updating = false
	w.tick++

	w.phase(PhaseFlush)
	for _, b := range w.pending {
		w.insert(b)
	}
	w.pending = w.pending[:0]
	w.syncAll()

	if w.timer != nil {
		w.timer.EndTick()
	}
}

func (w *World) phase(name string) {
	if w.timer != nil {
		w.timer.StartPhase(name)
	}
}

func (w *World) removeDead() {
	w.objects = w.filterObjects(func(b Body) bool { return !b.Base().dead })
	w.animats = w.filterAnimats(func(a Agent) bool { return !a.Base().dead })
}

// filterObjects keeps the objects for which keep returns true and
// unregisters the rest.
func (w *World) filterObjects(keep func(Body) bool) []Body {
	out := w.objects[:0]
	for _, o := range w.objects {
		if keep(o) {
			out = append(out, o)
			continue
		}
		w.reg.remove(o)
	}
	clear(w.objects[len(out):])
	return out
}

func (w *World) filterAnimats(keep func(Agent) bool) []Agent {
	out := w.animats[:0]
	for _, a := range w.animats {
		if keep(a) {
			out = append(out, a)
			continue
		}
		if w.selected == a {
			w.selected = nil
			a.Base().selected = false
		}
		w.reg.remove(a)
		w.numAnimats--
	}
	clear(w.animats[len(out):])
	return out
}

// CleanUp removes every body and forgets queued insertions and collisions.
func (w *World) CleanUp() {
	for _, o := range w.objects {
		w.reg.remove(o)
	}
	for _, a := range w.animats {
		w.reg.remove(a)
	}
	w.objects = nil
	w.animats = nil
	w.pending = nil
	w.numAnimats = 0
	w.selected = nil
	w.collisions.clear()
}

// AddCollision records a collision marker at loc.
func (w *World) AddCollision(loc geom.Vector2D) {
	w.collisions.add(Collision{Location: loc, Tick: w.tick})
}

// Collisions returns the retained collision markers, oldest first.
func (w *World) Collisions() []Collision { return w.collisions.items }

// Poses calls fn with the pose of every body as of the end of the last tick.
func (w *World) Poses(fn func(Pose)) { w.reg.each(fn) }

func (w *World) syncAll() {
	for _, o := range w.objects {
		w.reg.sync(o)
	}
	for _, a := range w.animats {
		w.reg.sync(a)
	}
}

// Selected returns the selected animat, or nil.
func (w *World) Selected() Agent { return w.selected }

// Select makes a the current selection. A nil or unselectable a clears it.
func (w *World) Select(a Agent) {
	if w.selected != nil {
		w.selected.Base().selected = false
		w.reg.sync(w.selected)
	}
	w.selected = nil
	if a == nil || !a.Base().selectable {
		return
	}
	w.selected = a
	a.Base().selected = true
	w.reg.sync(a)
}

// SelectNext selects the next selectable animat after the current one,
// wrapping around. It returns nil when no animat is selectable.
func (w *World) SelectNext() Agent { return w.selectStep(1) }

// SelectPrevious is SelectNext in reverse order.
func (w *World) SelectPrevious() Agent { return w.selectStep(-1) }

func (w *World) selectStep(dir int) Agent {
	n := len(w.animats)
	start := w.indexOf(w.selected)
	if start < 0 && dir < 0 {
		start = n
	}
	for i := 1; i <= n; i++ {
		idx := ((start+dir*i)%n + n) % n
		if a := w.animats[idx]; a.Base().selectable {
			w.Select(a)
			return a
		}
	}
	w.Select(nil)
	return nil
}

func (w *World) indexOf(a Agent) int {
	if a == nil {
		return -1
	}
	for i, b := range w.animats {
		if b == a {
			return i
		}
	}
	return -1
}
