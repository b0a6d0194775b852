package sensors

import (
	"math"
	"slices"

	"github.com/pthm-cable/beast/geom"
	"github.com/pthm-cable/beast/world"
)

// Evaluator accumulates what a sensor noticed during one tick. Reset is
// called once per tick before any Eval.
type Evaluator interface {
	Reset()
	Eval(p Probe, other world.Body, loc geom.Vector2D)
	Output(p Probe) float64
}

// Nearest tracks the closest point seen within range. Its output is that
// distance, or the range when nothing was seen.
type Nearest struct {
	rng     float64
	nearest float64
	best    world.Body
	bestVec geom.Vector2D
}

// NewNearest creates a nearest-point evaluator limited to rng.
func NewNearest(rng float64) *Nearest {
	return &Nearest{rng: rng, nearest: rng}
}

func (n *Nearest) Reset() {
	n.best = nil
	n.nearest = n.rng
}

func (n *Nearest) Eval(p Probe, other world.Body, loc geom.Vector2D) {
	if d := p.Location().Distance(loc); d < n.nearest {
		n.nearest = d
		n.best = other
		n.bestVec = loc
	}
}

func (n *Nearest) Output(Probe) float64 { return n.nearest }

// Range returns the detection limit.
func (n *Nearest) Range() float64 { return n.rng }

// Best returns the nearest body and point seen this tick.
func (n *Nearest) Best() (world.Body, geom.Vector2D, bool) {
	return n.best, n.bestVec, n.best != nil
}

// NearestInScope is Nearest restricted to points inside the probe's scope.
type NearestInScope struct {
	*Nearest
	scope float64
}

// NewNearestInScope creates a scoped nearest-point evaluator.
func NewNearestInScope(scope, rng float64) *NearestInScope {
	return &NearestInScope{Nearest: NewNearest(rng), scope: scope}
}

func (n *NearestInScope) Eval(p Probe, other world.Body, loc geom.Vector2D) {
	if n.scope >= geom.TwoPi || p.InScope(loc) {
		n.Nearest.Eval(p, other, loc)
	}
}

// BeamEval finds the nearest point of a body lying inside a beam: the body's
// nearest point when it is in scope, otherwise wherever the beam's edges
// cut the body's outline.
type BeamEval struct {
	*Nearest
	scope float64
}

// NewBeamEval creates a beam evaluator.
func NewBeamEval(scope, rng float64) *BeamEval {
	return &BeamEval{Nearest: NewNearest(rng), scope: scope}
}

func (b *BeamEval) Eval(p Probe, other world.Body, _ geom.Vector2D) {
	o := other.Base()
	origin := p.Location()

	near, _ := o.NearestPoint(origin)
	if p.InScope(near) {
		b.Nearest.Eval(p, other, near)
		return
	}

	start := p.Orientation() - b.scope/2
	if start < 0 {
		start += geom.TwoPi
	}
	if x, ok := o.Intersects(origin, geom.PolarFrom(b.rng, start, origin)); ok {
		b.Nearest.Eval(p, other, x)
	}
	// Both edges may cut the body; a laser has only one.
	if b.scope > 0 {
		end := p.Orientation() + b.scope/2
		if x, ok := o.Intersects(origin, geom.PolarFrom(b.rng, end, origin)); ok {
			b.Nearest.Eval(p, other, x)
		}
	}
}

// NearestXDist outputs the x offset from the probe to the nearest point.
type NearestXDist struct{ *Nearest }

// NewNearestXDist creates an x-offset evaluator.
func NewNearestXDist(rng float64) *NearestXDist { return &NearestXDist{NewNearest(rng)} }

func (n *NearestXDist) Output(p Probe) float64 {
	if n.best == nil {
		return 0
	}
	return n.bestVec.X - p.Location().X
}

// NearestYDist outputs the y offset from the probe to the nearest point.
type NearestYDist struct{ *Nearest }

// NewNearestYDist creates a y-offset evaluator.
func NewNearestYDist(rng float64) *NearestYDist { return &NearestYDist{NewNearest(rng)} }

func (n *NearestYDist) Output(p Probe) float64 {
	if n.best == nil {
		return 0
	}
	return n.bestVec.Y - p.Location().Y
}

// NearestAbsX outputs the absolute x of the nearest point.
type NearestAbsX struct{ *Nearest }

// NewNearestAbsX creates an absolute-x evaluator.
func NewNearestAbsX(rng float64) *NearestAbsX { return &NearestAbsX{NewNearest(rng)} }

func (n *NearestAbsX) Output(Probe) float64 {
	if n.best == nil {
		return 0
	}
	return n.bestVec.X
}

// NearestAbsY outputs the absolute y of the nearest point.
type NearestAbsY struct{ *Nearest }

// NewNearestAbsY creates an absolute-y evaluator.
func NewNearestAbsY(rng float64) *NearestAbsY { return &NearestAbsY{NewNearest(rng)} }

func (n *NearestAbsY) Output(Probe) float64 {
	if n.best == nil {
		return 0
	}
	return n.bestVec.Y
}

// NearestAngle outputs the bearing of the nearest point relative to the
// probe's heading, in (-π, π]. It is 0 when nothing was seen.
type NearestAngle struct{ *Nearest }

// NewNearestAngle creates a bearing evaluator.
func NewNearestAngle(rng float64) *NearestAngle { return &NearestAngle{NewNearest(rng)} }

func (n *NearestAngle) Output(p Probe) float64 {
	if n.best == nil {
		return 0
	}
	angle := n.bestVec.Sub(p.Location()).Angle() - p.Orientation()
	if angle > math.Pi {
		angle -= geom.TwoPi
	}
	if angle <= -math.Pi {
		angle += geom.TwoPi
	}
	return angle
}

// Count outputs how many bodies were seen this tick, plus a starting value.
type Count struct {
	start float64
	n     int
}

// NewCount creates a counter that starts each tick at start.
func NewCount(start float64) *Count { return &Count{start: start} }

func (c *Count) Reset() { c.n = 0 }

func (c *Count) Eval(Probe, world.Body, geom.Vector2D) { c.n++ }

func (c *Count) Output(Probe) float64 { return float64(c.n) + c.start }

// InBeam forwards to inner only the points within range and inside the
// probe's scope.
type InBeam struct {
	Evaluator
	rng float64
}

// NewInBeam wraps inner with a range and scope filter.
func NewInBeam(inner Evaluator, rng float64) *InBeam {
	return &InBeam{Evaluator: inner, rng: rng}
}

func (b *InBeam) Eval(p Probe, other world.Body, loc geom.Vector2D) {
	if p.Location().Distance(loc) < b.rng && p.InScope(loc) {
		b.Evaluator.Eval(p, other, loc)
	}
}

// DefaultProximityCount is how many of the nearest bodies Proximity sums.
const DefaultProximityCount = 3

// Proximity sums 1/(1+|log10 d|) over the nearest few distances below range.
type Proximity struct {
	rng       float64
	max       int
	distances []float64
}

// NewProximity creates a proximity evaluator over the nearest max bodies.
func NewProximity(rng float64, max int) *Proximity {
	if max <= 0 {
		max = DefaultProximityCount
	}
	return &Proximity{rng: rng, max: max}
}

func (p *Proximity) Reset() { p.distances = p.distances[:0] }

func (p *Proximity) Eval(probe Probe, _ world.Body, loc geom.Vector2D) {
	if d := probe.Location().Distance(loc); d < p.rng {
		p.distances = append(p.distances, d)
	}
}

func (p *Proximity) Output(Probe) float64 {
	ds := p.distances
	if len(ds) > p.max {
		ds = slices.Clone(ds)
		slices.Sort(ds)
		ds = ds[:p.max]
	}
	sum := 0.0
	for _, d := range ds {
		sum += 1 / (1 + math.Abs(math.Log10(d)))
	}
	return sum
}
