// Grid generation using simplex noise.
// Rooftop tiles come out clustered into blocks instead of scattered salt-and-pepper.
package world

import (
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/foodcity/internal/catalog"
)

// GenConfig holds grid generation parameters.
type GenConfig struct {
	Width        int
	Height       int
	Seed         int64   // Random seed (0 = random)
	RoofFraction float64 // Share of tiles that are rooftops (0.0–1.0)
	Starter      bool    // Place the starter buildings
}

// DefaultGenConfig returns the standard 20×12 city.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:        20,
		Height:       12,
		Seed:         0,
		RoofFraction: 0.3,
		Starter:      true,
	}
}

// starterPlacement is one building placed on a fresh grid.
type starterPlacement struct {
	X, Y     int
	Building catalog.BuildingID
	Crop     catalog.CropID
}

var starterLayout = []starterPlacement{
	{X: 3, Y: 2, Building: catalog.BuildingCommunityGarden, Crop: "pakcoy"},
	{X: 4, Y: 2, Building: catalog.BuildingCommunityGarden, Crop: "kangkung"},
	{X: 15, Y: 1, Building: catalog.BuildingMarket},
	{X: 5, Y: 3, Building: catalog.BuildingRainTank},
}

// Generate creates a grid with noise-clustered roof tiles and, optionally,
// the starter buildings. Same seed, same grid.
func Generate(cfg GenConfig, cat *catalog.Catalog) *Grid {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	g := NewGrid(cfg.Width, cfg.Height)
	markRoofs(g, seed, cfg.RoofFraction)

	if cfg.Starter {
		placeStarters(g, cat)
	}
	return g
}

// markRoofs flags the highest-noise tiles as roofs so that exactly
// round(fraction × tiles) tiles become roofs.
func markRoofs(g *Grid, seed int64, fraction float64) {
	if fraction <= 0 || len(g.Tiles) == 0 {
		return
	}
	if fraction > 1 {
		fraction = 1
	}

	noise := opensimplex.NewNormalized(seed)
	type sample struct {
		idx int
		val float64
	}
	samples := make([]sample, len(g.Tiles))
	for i, t := range g.Tiles {
		// Two octaves: city blocks plus some per-building jitter.
		v := noise.Eval2(float64(t.X)*0.18, float64(t.Y)*0.18)*0.75 +
			noise.Eval2(float64(t.X)*0.9+100, float64(t.Y)*0.9+100)*0.25
		samples[i] = sample{idx: i, val: v}
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].val > samples[j].val })

	roofs := int(fraction*float64(len(g.Tiles)) + 0.5)
	for i := 0; i < roofs; i++ {
		g.Tiles[samples[i].idx].Category = CategoryRoof
	}
}

// placeStarters puts the starter layout on the grid, skipping anything that
// does not fit. Land buildings force their tile to land.
func placeStarters(g *Grid, cat *catalog.Catalog) {
	for _, p := range starterLayout {
		t := g.At(p.X, p.Y)
		if t == nil {
			continue
		}
		def, ok := cat.Building(p.Building)
		if !ok {
			continue
		}
		if def.RoofOnly() {
			t.Category = CategoryRoof
		} else if def.Placement == catalog.PlacementLand {
			t.Category = CategoryLand
		}
		t.Building = p.Building
		if def.CanPlant {
			if _, ok := cat.Crop(p.Crop); ok {
				t.Crop = p.Crop
			} else {
				t.Crop = cat.DefaultCrop
			}
		}
	}
}

// CategoryCounts returns how many tiles of each category the grid holds.
func CategoryCounts(g *Grid) map[Category]int {
	counts := make(map[Category]int)
	for _, t := range g.Tiles {
		counts[t.Category]++
	}
	return counts
}
