package camera

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cam := New(80, 24, 800, 600)

	// Should be centered on world
	if cam.X != 400 || cam.Y != 300 {
		t.Errorf("expected camera at (400, 300), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}

func TestWholeArenaFitsAtZoomOne(t *testing.T) {
	cam := New(80, 24, 800, 600)

	// 600 world units over 24 rows of aspect 2 is the limiting dimension.
	if u := cam.UnitsPerCol(); math.Abs(u-12.5) > 1e-9 {
		t.Fatalf("units per column = %f, want 12.5", u)
	}
	for _, p := range [][2]float64{{0, 0}, {799, 599}, {400, 300}} {
		col, row := cam.WorldToCell(p[0], p[1])
		if !cam.InView(col, row) {
			t.Errorf("(%v, %v) maps to cell (%d, %d) outside the view", p[0], p[1], col, row)
		}
	}
}

func TestWorldToCellCentered(t *testing.T) {
	cam := New(80, 24, 800, 600)

	// Camera center should map to the middle cell
	col, row := cam.WorldToCell(400, 300)
	if col != 40 || row != 12 {
		t.Errorf("expected middle cell (40, 12), got (%d, %d)", col, row)
	}
}

func TestCellToWorldRoundtrip(t *testing.T) {
	cam := New(80, 24, 800, 600)
	cam.SetZoom(3)

	testCases := []struct{ col, row int }{
		{40, 12}, // center
		{0, 0},   // top-left
		{79, 23}, // bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.CellToWorld(tc.col, tc.row)
		col, row := cam.WorldToCell(wx, wy)
		if col != tc.col || row != tc.row {
			t.Errorf("roundtrip failed: (%d,%d) -> (%f,%f) -> (%d,%d)",
				tc.col, tc.row, wx, wy, col, row)
		}
	}
}

func TestToroidalWrap(t *testing.T) {
	cam := New(80, 24, 800, 600)
	cam.SetZoom(4)
	cam.X = 20 // Near left edge

	// A body at the world's right edge is closer across the wrap.
	col, _ := cam.WorldToCell(790, 300)
	if col >= 40 {
		t.Errorf("expected body on left of screen, got column %d", col)
	}
}

func TestPanWraps(t *testing.T) {
	cam := New(80, 24, 800, 600)
	cam.X = 10

	// Pan left should wrap to right side of world
	cam.Pan(-4, 0)

	if cam.X < 700 {
		t.Errorf("expected X to wrap around, got %f", cam.X)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(80, 24, 800, 600)

	cam.SetZoom(0.1) // Below min
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom clamped to 1.0, got %f", cam.Zoom)
	}

	cam.SetZoom(100.0) // Above max
	if cam.Zoom != 16.0 {
		t.Errorf("expected zoom clamped to 16.0, got %f", cam.Zoom)
	}
}

func TestFollow(t *testing.T) {
	cam := New(80, 24, 800, 600)
	cam.Follow(-50, 650)

	if cam.X != 750 || cam.Y != 50 {
		t.Errorf("expected camera at (750, 50), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(80, 24, 800, 600)
	cam.SetZoom(2)

	// Visible range in world coords: 400±250 by 300±150

	if !cam.IsVisible(400, 300, 10) {
		t.Error("center should be visible")
	}

	if cam.IsVisible(400, 10, 10) {
		t.Error("far point should not be visible")
	}

	if !cam.IsVisible(400, 100, 60) {
		t.Error("edge point with large radius should be visible")
	}
}

func TestReset(t *testing.T) {
	cam := New(80, 24, 800, 600)
	cam.X = 100
	cam.Y = 100
	cam.Zoom = 2.5

	cam.Reset()

	if cam.X != 400 || cam.Y != 300 {
		t.Errorf("expected position (400, 300), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}
