package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/foodcity/internal/catalog"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 7
	a := Generate(cfg, catalog.Default())
	b := Generate(cfg, catalog.Default())
	assert.Equal(t, a, b)
}

func TestGenerateRoofShare(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 42
	cfg.Starter = false
	g := Generate(cfg, catalog.Default())

	require.NoError(t, g.Validate())
	counts := CategoryCounts(g)
	assert.Equal(t, 72, counts[CategoryRoof]) // 30% of 240
	assert.Equal(t, 168, counts[CategoryLand])
}

func TestGenerateStarterLayout(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 3
	g := Generate(cfg, catalog.Default())

	cg := g.At(3, 2)
	require.NotNil(t, cg)
	assert.Equal(t, catalog.BuildingCommunityGarden, cg.Building)
	assert.Equal(t, catalog.CropID("pakcoy"), cg.Crop)
	assert.Equal(t, CategoryLand, cg.Category)

	assert.Equal(t, catalog.CropID("kangkung"), g.At(4, 2).Crop)
	assert.Equal(t, catalog.BuildingMarket, g.At(15, 1).Building)
	assert.Equal(t, catalog.BuildingRainTank, g.At(5, 3).Building)

	census := g.Census()
	assert.Equal(t, 2, census[catalog.BuildingCommunityGarden])
	assert.Equal(t, 4, len(g.Tiles)-g.emptyCount())
}

func TestStarterSkipsOutOfBounds(t *testing.T) {
	cfg := GenConfig{Width: 4, Height: 4, Seed: 1, Starter: true}
	g := Generate(cfg, catalog.Default())
	assert.Equal(t, 1, len(g.Census())) // only the CG at (3,2) fits
}

func TestIndexing(t *testing.T) {
	g := NewGrid(5, 3)
	idx, ok := g.Index(2, 1)
	require.True(t, ok)
	assert.Equal(t, 7, idx)

	_, ok = g.Index(5, 0)
	assert.False(t, ok)
	assert.Nil(t, g.At(-1, 0))

	tile := g.At(4, 2)
	require.NotNil(t, tile)
	assert.Equal(t, 4, tile.X)
	assert.Equal(t, 2, tile.Y)
}

func TestCloneIsDeep(t *testing.T) {
	g := NewGrid(2, 2)
	c := g.Clone()
	c.At(0, 0).Building = catalog.BuildingMarket
	assert.Equal(t, catalog.BuildingEmpty, g.At(0, 0).Building)
}

func TestNormalize(t *testing.T) {
	g := NewGrid(3, 1)
	g.Tiles[0].Crop = "selada"
	g.Tiles[0].Progress = 0.4
	g.Tiles[1].Building = catalog.BuildingCommunityGarden
	g.Tiles[1].Progress = 1.7
	g.Tiles[1].DisabledDays = -2
	g.Tiles[2].Category = "lava"
	g.Tiles[2].Building = ""

	g.Normalize()

	assert.Empty(t, g.Tiles[0].Crop)
	assert.Zero(t, g.Tiles[0].Progress)
	assert.Equal(t, 1.0, g.Tiles[1].Progress)
	assert.Zero(t, g.Tiles[1].DisabledDays)
	assert.Equal(t, CategoryLand, g.Tiles[2].Category)
	assert.Equal(t, catalog.BuildingEmpty, g.Tiles[2].Building)
}

func TestValidate(t *testing.T) {
	g := NewGrid(3, 2)
	require.NoError(t, g.Validate())

	g.Tiles = g.Tiles[:5]
	assert.Error(t, g.Validate())

	g = NewGrid(3, 2)
	g.Tiles[4].X = 0
	assert.Error(t, g.Validate())
}
