package main

import (
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/beast/camera"
	"github.com/pthm-cable/beast/components"
	"github.com/pthm-cable/beast/simulation"
	"github.com/pthm-cable/beast/telemetry"
	"github.com/pthm-cable/beast/world"
)

const (
	maxSpeed   = 64
	zoomFactor = 1.25
	hudRows    = 2
)

// headingGlyphs are arrows for eight compass sectors, starting east and
// turning clockwise on screen (y grows downwards).
var headingGlyphs = []rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

var kindColors = []tcell.Color{
	tcell.ColorYellow,
	tcell.ColorGreen,
	tcell.ColorAqua,
	tcell.ColorFuchsia,
	tcell.ColorRed,
	tcell.ColorBlue,
	tcell.ColorOrange,
	tcell.ColorWhite,
}

// Viewer steps a simulation and draws its arena.
type Viewer struct {
	screen tcell.Screen
	sim    *simulation.Simulation
	cam    *camera.Camera
	perf   *telemetry.PerfCollector

	speed  int
	paused bool
	follow bool
	done   bool
}

// NewViewer creates a viewer advancing sim by speed time steps per frame.
func NewViewer(screen tcell.Screen, sim *simulation.Simulation, speed int) *Viewer {
	w, h := screen.Size()
	arena := sim.World()
	return &Viewer{
		screen: screen,
		sim:    sim,
		cam:    camera.New(w, max(h-hudRows, 1), arena.Width(), arena.Height()),
		perf:   telemetry.NewPerfCollector(60),
		speed:  min(max(speed, 1), maxSpeed),
	}
}

// Run drives the simulation from the frame ticker until the user quits or
// the simulation completes. Terminal events arrive on a channel fed by a
// polling goroutine.
func (v *Viewer) Run(frame time.Duration) error {
	v.sim.World().SetTimer(v.perf)
	v.sim.Init()
	v.sim.BeginSimulation()

	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-quit:
				return
			}
		}
	}()
	defer close(quit)

	for {
		select {
		case ev := <-eventChan:
			if !v.handleInput(ev) {
				return v.sim.Err()
			}

		case <-ticker.C:
			if !v.paused {
				v.step(v.speed)
			}
			if err := v.sim.Err(); err != nil {
				return err
			}
			v.perf.RecordFrame()
			v.draw()
		}
	}
}

// step advances up to n time steps, stopping once the simulation completes.
func (v *Viewer) step(n int) {
	for i := 0; i < n && !v.done; i++ {
		v.done = v.sim.Update()
	}
	if v.done {
		v.paused = true
	}
}

func (v *Viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			v.cam.Pan(0, -2)
		case tcell.KeyDown:
			v.cam.Pan(0, 2)
		case tcell.KeyLeft:
			v.cam.Pan(-4, 0)
		case tcell.KeyRight:
			v.cam.Pan(4, 0)
		case tcell.KeyTab:
			v.sim.World().SelectNext()
		case tcell.KeyBacktab:
			v.sim.World().SelectPrevious()
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.paused = !v.paused || v.done
			case '.':
				if v.paused {
					v.step(1)
				}
			case '+', '=':
				v.cam.ZoomBy(zoomFactor)
			case '-':
				v.cam.ZoomBy(1 / zoomFactor)
			case '>':
				v.speed = min(v.speed*2, maxSpeed)
			case '<':
				v.speed = max(v.speed/2, 1)
			case 'f':
				v.follow = !v.follow
			case 'r':
				v.follow = false
				v.cam.Reset()
			case 'n':
				v.sim.World().SelectNext()
			case 'p':
				v.sim.World().SelectPrevious()
			}
		}

	case *tcell.EventResize:
		w, h := v.screen.Size()
		v.cam.Resize(w, max(h-hudRows, 1))
		v.screen.Sync()
	}

	return true
}

func (v *Viewer) draw() {
	v.screen.Clear()
	arena := v.sim.World()

	sel := arena.Selected()
	if v.follow && sel != nil {
		loc := sel.Base().Location()
		v.cam.Follow(loc.X, loc.Y)
	}
	if sel != nil {
		v.drawTrail(sel.AsAnimat().Trail())
	}

	arena.Poses(func(p world.Pose) {
		if p.Dead || !v.cam.IsVisible(p.X, p.Y, p.Radius) {
			return
		}
		style := tcell.StyleDefault.Foreground(kindColors[int(p.Kind)%len(kindColors)])
		if p.Selected {
			style = style.Reverse(true)
		}
		if len(p.Edges) > 1 {
			v.drawPolygon(p.Edges, style)
			return
		}
		v.drawBody(p, style)
	})

	v.drawHUD()
	v.screen.Show()
}

// drawBody fills the cells a body covers and marks its center with a
// heading arrow for animats or the first letter of its kind for objects.
func (v *Viewer) drawBody(p world.Pose, style tcell.Style) {
	glyph := []rune(p.Kind.String())[0]
	if p.Kind.IsA(components.KindAnimat) {
		sector := int(math.Round(p.Heading/(math.Pi/4))) % len(headingGlyphs)
		glyph = headingGlyphs[(sector+len(headingGlyphs))%len(headingGlyphs)]
	}

	u := v.cam.UnitsPerCol()
	if p.Radius > u {
		cx, cy := v.cam.WorldToCell(p.X, p.Y)
		rc := int(p.Radius / u)
		rr := int(p.Radius / (u * v.cam.Aspect))
		for dy := -rr; dy <= rr; dy++ {
			for dx := -rc; dx <= rc; dx++ {
				wx, wy := v.cam.CellToWorld(cx+dx, cy+dy)
				if math.Hypot(wx-p.X, wy-p.Y) <= p.Radius {
					v.setCell(cx+dx, cy+dy, '·', style)
				}
			}
		}
	}
	col, row := v.cam.WorldToCell(p.X, p.Y)
	v.setCell(col, row, glyph, style)
}

// drawPolygon draws each edge of a closed polygon.
func (v *Viewer) drawPolygon(edges [][2]float64, style tcell.Style) {
	for i, a := range edges {
		b := edges[(i+1)%len(edges)]
		v.drawLine(a[0], a[1], b[0], b[1], '#', style)
	}
}

// drawLine samples a segment at half-cell spacing.
func (v *Viewer) drawLine(x1, y1, x2, y2 float64, glyph rune, style tcell.Style) {
	steps := int(math.Hypot(x2-x1, y2-y1)/(v.cam.UnitsPerCol()/2)) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		col, row := v.cam.WorldToCell(x1+t*(x2-x1), y1+t*(y2-y1))
		v.setCell(col, row, glyph, style)
	}
}

func (v *Viewer) drawTrail(trail *world.Trail) {
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for _, p := range trail.Points() {
		col, row := v.cam.WorldToCell(p.X, p.Y)
		v.setCell(col, row, '∙', style)
	}
}

func (v *Viewer) drawHUD() {
	_, h := v.screen.Size()
	perf := v.perf.Stats()

	state := "running"
	switch {
	case v.done:
		state = "complete"
	case v.paused:
		state = "paused"
	}
	v.drawText(0, h-2, tcell.StyleDefault.Bold(true),
		fmt.Sprintf("%s  [%s x%d]  %.0f fps  %.0f ticks/s",
			v.sim.Status(), state, v.speed, perf.FPS, perf.TicksPerSecond))

	help := "q quit  space pause  . step  < > speed  arrows pan  + - zoom  tab select  f follow  r reset"
	if sel := v.sim.World().Selected(); sel != nil {
		a := sel.AsAnimat()
		help = fmt.Sprintf("%s #%d  distance %.0f  power %.1f  |  %s",
			a.Kind(), a.ID(), a.Distance(), a.Power(), help)
	}
	v.drawText(0, h-1, tcell.StyleDefault.Dim(true), help)
}

func (v *Viewer) drawText(col, row int, style tcell.Style, text string) {
	for _, r := range text {
		v.screen.SetContent(col, row, r, nil, style)
		col++
	}
}

// setCell draws a rune inside the arena viewport only.
func (v *Viewer) setCell(col, row int, r rune, style tcell.Style) {
	if v.cam.InView(col, row) {
		v.screen.SetContent(col, row, r, nil, style)
	}
}
