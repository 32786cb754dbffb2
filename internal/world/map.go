// Package world provides the city grid and its tiles.
// Tiles are addressed by (x, y); the backing slice index is y*Width + x.
package world

import (
	"fmt"
	"math"

	"github.com/talgya/foodcity/internal/catalog"
)

// Category is the fixed ground type of a tile, set at generation.
type Category string

const (
	CategoryLand Category = "land"
	CategoryRoof Category = "roof"
)

// Tile is a single grid cell.
type Tile struct {
	X        int                `json:"x"`
	Y        int                `json:"y"`
	Category Category           `json:"category"`
	Building catalog.BuildingID `json:"b"`
	Crop     catalog.CropID     `json:"crop,omitempty"`

	// Growth progress toward the next harvest, in [0, 1].
	Progress float64 `json:"progress"`

	// Days the tile stays inactive (flooded). Zero means active.
	DisabledDays int `json:"disabledDays"`
}

// Empty reports whether the tile holds no building.
func (t Tile) Empty() bool {
	return t.Building == "" || t.Building == catalog.BuildingEmpty
}

// Clear resets the tile to empty ground, keeping position and category.
func (t *Tile) Clear() {
	t.Building = catalog.BuildingEmpty
	t.Crop = ""
	t.Progress = 0
}

// Grid is the fixed-size city map.
type Grid struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Tiles  []Tile `json:"tiles"`
}

// NewGrid creates an all-land, all-empty grid.
func NewGrid(width, height int) *Grid {
	g := &Grid{
		Width:  width,
		Height: height,
		Tiles:  make([]Tile, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.Tiles[y*width+x] = Tile{
				X:        x,
				Y:        y,
				Category: CategoryLand,
				Building: catalog.BuildingEmpty,
			}
		}
	}
	return g
}

// InBounds returns true if (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Index returns the slice index of (x, y).
func (g *Grid) Index(x, y int) (int, bool) {
	if !g.InBounds(x, y) {
		return 0, false
	}
	return y*g.Width + x, true
}

// At returns the tile at (x, y), or nil if out of bounds.
func (g *Grid) At(x, y int) *Tile {
	idx, ok := g.Index(x, y)
	if !ok {
		return nil
	}
	return &g.Tiles[idx]
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	out := &Grid{Width: g.Width, Height: g.Height, Tiles: make([]Tile, len(g.Tiles))}
	copy(out.Tiles, g.Tiles)
	return out
}

// Census counts tiles per building id. Empty tiles are not counted.
func (g *Grid) Census() map[catalog.BuildingID]int {
	counts := make(map[catalog.BuildingID]int)
	for _, t := range g.Tiles {
		if t.Empty() {
			continue
		}
		counts[t.Building]++
	}
	return counts
}

// Validate checks the grid's shape: slice length and tile positions.
func (g *Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("grid size %dx%d", g.Width, g.Height)
	}
	if len(g.Tiles) != g.Width*g.Height {
		return fmt.Errorf("grid has %d tiles, want %d", len(g.Tiles), g.Width*g.Height)
	}
	for i, t := range g.Tiles {
		if t.X != i%g.Width || t.Y != i/g.Width {
			return fmt.Errorf("tile %d at (%d,%d), want (%d,%d)", i, t.X, t.Y, i%g.Width, i/g.Width)
		}
	}
	return nil
}

// Normalize enforces tile invariants in place: an empty tile carries no crop
// and no progress, progress stays in [0, 1], the disabled counter is never
// negative, and unknown categories fall back to land.
func (g *Grid) Normalize() {
	for i := range g.Tiles {
		t := &g.Tiles[i]
		if t.Building == "" {
			t.Building = catalog.BuildingEmpty
		}
		if t.Category != CategoryRoof {
			t.Category = CategoryLand
		}
		if t.Empty() {
			t.Crop = ""
			t.Progress = 0
		}
		if math.IsNaN(t.Progress) || t.Progress < 0 {
			t.Progress = 0
		}
		if t.Progress > 1 {
			t.Progress = 1
		}
		if t.DisabledDays < 0 {
			t.DisabledDays = 0
		}
	}
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, built=%d)", g.Width, g.Height, len(g.Tiles)-g.emptyCount())
}

func (g *Grid) emptyCount() int {
	n := 0
	for _, t := range g.Tiles {
		if t.Empty() {
			n++
		}
	}
	return n
}
