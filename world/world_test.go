package world

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/beast/components"
	"github.com/pthm-cable/beast/geom"
)

// still returns physics under which an animat never moves.
func still() Physics {
	p := DefaultPhysics()
	p.MaxSpeed = 0
	p.MinSpeed = 0
	p.Solid = true
	return p
}

type recorder struct {
	*Animat
	hits int
}

func (r *recorder) OnCollision(Body) { r.hits++ }

func TestVelocityNeverExceedsMaxSpeed(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	w := New(800, 600, rng)

	for i := 0; i < 20; i++ {
		a := NewAnimat()
		a.SetController(ControllerFunc(func(a *Animat) {
			a.SetControl(ControlLeft, rng.Float64()*4-2)
			a.SetControl(ControlRight, rng.Float64()*4-2)
		}))
		w.Add(a)
	}
	w.Init()

	for tick := 0; tick < 500; tick++ {
		w.Update()
		for _, ag := range w.Animats() {
			a := ag.AsAnimat()
			if v := a.Velocity().Length(); v > a.MaxSpeed()+1e-9 {
				t.Fatalf("tick %d: speed %f exceeds max %f", tick, v, a.MaxSpeed())
			}
		}
	}
}

func TestAnimatWrapsAndClearsTrail(t *testing.T) {
	w := New(800, 600, rand.New(rand.NewSource(1)))
	p := DefaultPhysics()
	p.MinSpeed = 100
	a := NewAnimatWith(p)
	a.SetStartLocation(geom.Vec(799, 300))
	a.SetStartOrientation(0)
	w.Add(a)
	w.Init()

	for i := 0; i < 3; i++ {
		a.Trail().Append(a.Location())
	}
	w.Update()

	loc := a.Location()
	if loc.X < 0 || loc.X >= 800 {
		t.Fatalf("x not wrapped: got %f", loc.X)
	}
	if math.Abs(loc.X-1.525) > 1e-6 {
		t.Errorf("x wrong: got %f, want 1.525", loc.X)
	}
	if a.Trail().Len() != 1 {
		t.Errorf("trail not cleared on wrap: got %d points, want 1", a.Trail().Len())
	}
}

func TestSolidAnimatsSeparate(t *testing.T) {
	w := New(800, 600, rand.New(rand.NewSource(1)))

	a := &recorder{Animat: NewAnimatWith(still())}
	a.SetStartLocation(geom.Vec(100, 100))
	b := &recorder{Animat: NewAnimatWith(still())}
	b.SetStartLocation(geom.Vec(105, 100))
	w.Add(a)
	w.Add(b)
	w.Init()

	w.Update()

	d := a.Location().Distance(b.Location())
	if math.Abs(d-10) > 1e-9 {
		t.Errorf("separation wrong: got %f, want 10", d)
	}
	if math.Abs(a.Location().X-97.5) > 1e-9 || math.Abs(b.Location().X-107.5) > 1e-9 {
		t.Errorf("offsets wrong: got %v and %v", a.Location(), b.Location())
	}
	if a.hits == 0 || b.hits == 0 {
		t.Errorf("OnCollision not fired on both sides: %d, %d", a.hits, b.hits)
	}
	if len(w.Collisions()) == 0 {
		t.Error("no collision marker recorded")
	}
}

func TestCoincidentAnimatsSeparate(t *testing.T) {
	w := New(800, 600, nil)
	a := NewAnimatWith(still())
	a.SetStartLocation(geom.Vec(200, 200))
	b := NewAnimatWith(still())
	b.SetStartLocation(geom.Vec(200, 200))
	w.Add(a)
	w.Add(b)
	w.Init()

	w.Update()

	got := a.Location().Distance(b.Location())
	if math.IsNaN(got) || math.Abs(got-10) > 1e-9 {
		t.Errorf("coincident separation wrong: got %f, want 10", got)
	}
}

func TestAnimatPushedOutOfSolidObject(t *testing.T) {
	w := New(800, 600, nil)
	rock := NewObjectAt(geom.Vec(300, 300), 0, 20)
	rock.SetSolid(true)
	a := NewAnimatWith(still())
	a.SetStartLocation(geom.Vec(322, 300))
	w.Add(rock)
	w.Add(a)
	w.Init()

	w.Update()

	if d := a.Location().Distance(rock.Location()); math.Abs(d-25) > 1e-9 {
		t.Errorf("animat not pushed to the surface: distance %f, want 25", d)
	}
}

func TestNonSolidBodiesOverlap(t *testing.T) {
	w := New(800, 600, nil)
	p := still()
	p.Solid = false
	a := &recorder{Animat: NewAnimatWith(p)}
	a.SetStartLocation(geom.Vec(100, 100))
	b := &recorder{Animat: NewAnimatWith(p)}
	b.SetStartLocation(geom.Vec(103, 100))
	w.Add(a)
	w.Add(b)
	w.Init()

	w.Update()

	if a.Location() != geom.Vec(100, 100) {
		t.Errorf("non-solid animat moved: %v", a.Location())
	}
	if a.hits == 0 {
		t.Error("OnCollision should fire without solidity")
	}
}

type probe struct {
	*Object
	seen int
}

func (p *probe) Update() { p.seen = len(p.world.Objects()) }

func TestAddDuringUpdateIsDeferred(t *testing.T) {
	w := New(800, 600, nil)
	p := &probe{Object: NewObject()}
	w.Add(p)
	w.SetInput(func(w *World) {
		if w.Tick() == 0 {
			w.Add(NewObject())
		}
	})
	w.Init()

	w.Update()
	if p.seen != 1 {
		t.Errorf("queued object visible during update: saw %d objects", p.seen)
	}
	if len(w.Objects()) != 2 {
		t.Errorf("queued object not flushed: got %d objects, want 2", len(w.Objects()))
	}
}

func TestDeadBodiesRemoved(t *testing.T) {
	w := New(800, 600, nil)
	o := NewObject()
	a := NewAnimat()
	w.Add(o)
	w.Add(a)
	w.Init()

	o.SetDead(true)
	a.SetDead(true)
	w.Update()

	if len(w.Objects()) != 0 || len(w.Animats()) != 0 {
		t.Errorf("dead bodies kept: %d objects, %d animats", len(w.Objects()), len(w.Animats()))
	}
	if w.NumAnimats() != 0 {
		t.Errorf("animat count wrong: got %d, want 0", w.NumAnimats())
	}
	count := 0
	w.Poses(func(Pose) { count++ })
	if count != 0 {
		t.Errorf("dead bodies still in entity table: %d", count)
	}
}

func TestRemoveMatchingKind(t *testing.T) {
	cheese := components.RegisterKind("test-cheese", components.KindObject)
	w := New(800, 600, nil)

	for i := 0; i < 3; i++ {
		c := NewObject()
		c.SetKind(cheese)
		w.Add(c)
	}
	w.Add(NewObject())
	w.Add(NewAnimat())

	if got := len(w.Get(cheese)); got != 3 {
		t.Fatalf("Get(cheese) wrong: got %d, want 3", got)
	}

	w.Remove(cheese)
	if len(w.Objects()) != 1 || len(w.Animats()) != 1 {
		t.Errorf("Remove(cheese) wrong: %d objects, %d animats", len(w.Objects()), len(w.Animats()))
	}

	w.Remove(components.KindObject)
	if len(w.Objects()) != 0 || len(w.Animats()) != 0 {
		t.Errorf("Remove(object) should remove every body: %d objects, %d animats",
			len(w.Objects()), len(w.Animats()))
	}
}

func TestSelectionTraversal(t *testing.T) {
	w := New(800, 600, nil)
	var as []*Animat
	for i := 0; i < 4; i++ {
		a := NewAnimat()
		as = append(as, a)
		w.Add(a)
	}
	as[1].SetSelectable(false)

	want := []*Animat{as[0], as[2], as[3], as[0]}
	for i, wa := range want {
		if got := w.SelectNext(); got != Agent(wa) {
			t.Fatalf("step %d: selected %v, want animat %d", i, got, wa.ID())
		}
	}
	if !as[0].Selected() || as[3].Selected() {
		t.Error("selected flags not updated")
	}

	if got := w.SelectPrevious(); got != Agent(as[3]) {
		t.Errorf("SelectPrevious wrong: got %v", got)
	}
}

func TestSelectionWithNothingSelectable(t *testing.T) {
	w := New(800, 600, nil)
	if w.SelectNext() != nil {
		t.Error("empty world selected something")
	}
	for i := 0; i < 3; i++ {
		a := NewAnimat()
		a.SetSelectable(false)
		w.Add(a)
	}
	if w.SelectNext() != nil || w.SelectPrevious() != nil {
		t.Error("selected an unselectable animat")
	}
}

func TestCollisionMarkersKeepNewest(t *testing.T) {
	w := New(800, 600, nil)
	w.SetMaxCollisions(3)
	for i := 0; i < 5; i++ {
		w.AddCollision(geom.Vec(float64(i), 0))
	}
	w.Update()

	got := w.Collisions()
	if len(got) != 3 {
		t.Fatalf("markers wrong: got %d, want 3", len(got))
	}
	if got[0].Location.X != 2 || got[2].Location.X != 4 {
		t.Errorf("oldest markers not dropped: %v", got)
	}
}

func TestPosesReflectBodies(t *testing.T) {
	w := New(800, 600, nil)
	o := NewObjectAt(geom.Vec(10, 20), 1, 7)
	w.Add(o)
	w.Init()

	var poses []Pose
	w.Poses(func(p Pose) { poses = append(poses, p) })
	if len(poses) != 1 {
		t.Fatalf("pose count wrong: got %d, want 1", len(poses))
	}
	p := poses[0]
	if p.ID != o.ID() || p.X != 10 || p.Y != 20 || p.Radius != 7 || p.Kind != components.KindObject {
		t.Errorf("pose wrong: %+v", p)
	}
}

type countingTimer struct {
	ticks  int
	phases map[string]int
}

func (c *countingTimer) StartTick()             { c.ticks++ }
func (c *countingTimer) StartPhase(name string) { c.phases[name]++ }
func (c *countingTimer) EndTick()               {}

func TestTimerSeesEveryPhase(t *testing.T) {
	w := New(800, 600, nil)
	ct := &countingTimer{phases: make(map[string]int)}
	w.SetTimer(ct)
	w.Update()
	w.Update()

	if ct.ticks != 2 {
		t.Errorf("ticks wrong: got %d, want 2", ct.ticks)
	}
	for _, ph := range []string{PhaseInput, PhaseObjects, PhaseAnimats, PhaseCleanup, PhaseInteractions, PhaseFlush} {
		if ct.phases[ph] != 2 {
			t.Errorf("phase %s wrong: got %d, want 2", ph, ct.phases[ph])
		}
	}
}

func BenchmarkWorldUpdate(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	w := New(800, 600, rng)
	for i := 0; i < 30; i++ {
		w.Add(NewObject())
		a := NewAnimat()
		a.SetControl(ControlLeft, 0.6)
		a.SetControl(ControlRight, 0.4)
		w.Add(a)
	}
	w.Init()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Update()
	}
}
