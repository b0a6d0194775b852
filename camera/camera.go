// Package camera maps the arena onto a grid of terminal cells.
package camera

import "math"

// DefaultAspect is the height of a terminal cell over its width.
const DefaultAspect = 2.0

// Camera controls the viewport into the arena.
// Supports pan and zoom with toroidal world wrapping.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float64

	// Zoom level (1.0 = whole arena fits, 2.0 = 2x magnification)
	Zoom float64

	// Viewport size in cells
	Cols, Rows int

	// World dimensions (for toroidal wrapping)
	WorldW, WorldH float64

	// Aspect is the cell height over its width, so circles stay round
	Aspect float64

	// Zoom constraints
	MinZoom, MaxZoom float64
}

// New creates a camera centered on the world with the whole arena in view.
func New(cols, rows int, worldW, worldH float64) *Camera {
	return &Camera{
		X:       worldW / 2,
		Y:       worldH / 2,
		Zoom:    1.0,
		Cols:    cols,
		Rows:    rows,
		WorldW:  worldW,
		WorldH:  worldH,
		Aspect:  DefaultAspect,
		MinZoom: 1.0,
		MaxZoom: 16.0,
	}
}

// UnitsPerCol returns the world distance covered by one column. At zoom 1
// the arena fits the limiting dimension of the viewport.
func (c *Camera) UnitsPerCol() float64 {
	if c.Cols <= 0 || c.Rows <= 0 {
		return math.Inf(1)
	}
	fit := math.Max(c.WorldW/float64(c.Cols), c.WorldH/(float64(c.Rows)*c.Aspect))
	return fit / c.Zoom
}

// WorldToCell converts world coordinates to the cell that shows them.
// For toroidal worlds, this finds the shortest path to the viewport.
func (c *Camera) WorldToCell(wx, wy float64) (col, row int) {
	dx := toroidalDelta(wx, c.X, c.WorldW)
	dy := toroidalDelta(wy, c.Y, c.WorldH)

	u := c.UnitsPerCol()
	col = c.Cols/2 + int(math.Floor(dx/u))
	row = c.Rows/2 + int(math.Floor(dy/(u*c.Aspect)))
	return col, row
}

// CellToWorld returns the world coordinates of a cell's center.
func (c *Camera) CellToWorld(col, row int) (wx, wy float64) {
	u := c.UnitsPerCol()
	dx := (float64(col-c.Cols/2) + 0.5) * u
	dy := (float64(row-c.Rows/2) + 0.5) * u * c.Aspect

	wx = mod(c.X+dx, c.WorldW)
	wy = mod(c.Y+dy, c.WorldH)
	return wx, wy
}

// InView reports whether a cell lies inside the viewport.
func (c *Camera) InView(col, row int) bool {
	return col >= 0 && col < c.Cols && row >= 0 && row < c.Rows
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float64) bool {
	dx := toroidalDelta(wx, c.X, c.WorldW)
	dy := toroidalDelta(wy, c.Y, c.WorldH)

	u := c.UnitsPerCol()
	halfW := float64(c.Cols)*u/2 + radius
	halfH := float64(c.Rows)*u*c.Aspect/2 + radius
	return math.Abs(dx) <= halfW && math.Abs(dy) <= halfH
}

// Resize updates the viewport size.
func (c *Camera) Resize(cols, rows int) {
	c.Cols = cols
	c.Rows = rows
}

// Pan moves the camera by the given number of cells.
// Automatically wraps around world boundaries.
func (c *Camera) Pan(dcols, drows int) {
	u := c.UnitsPerCol()
	c.X = mod(c.X+float64(dcols)*u, c.WorldW)
	c.Y = mod(c.Y+float64(drows)*u*c.Aspect, c.WorldH)
}

// Follow centers the camera on a world position.
func (c *Camera) Follow(wx, wy float64) {
	c.X = mod(wx, c.WorldW)
	c.Y = mod(wy, c.WorldH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = min(max(zoom, c.MinZoom), c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = 1.0
}

// toroidalDelta computes the shortest signed distance from 'from' to 'to'
// in a toroidal space of the given size.
func toroidalDelta(to, from, size float64) float64 {
	d := to - from
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

// mod computes the positive modulo (Go's % can return negative).
func mod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}
