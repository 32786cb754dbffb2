package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/foodcity/internal/catalog"
	"github.com/talgya/foodcity/internal/city"
	"github.com/talgya/foodcity/internal/world"
)

const rich = 1e12

func testGrid() *world.Grid {
	g := world.NewGrid(4, 4)
	g.At(3, 3).Category = world.CategoryRoof
	return g
}

func TestBuildPlantsDefaultCrop(t *testing.T) {
	g := testGrid()
	cat := catalog.Default()

	out, err := Build(g, cat, city.Modifiers{}, rich, 1, 1, catalog.BuildingCommunityGarden, "")
	require.NoError(t, err)

	def, _ := cat.Building(catalog.BuildingCommunityGarden)
	assert.Equal(t, def.Cost, out.Cost)
	assert.Equal(t, -def.Cost, out.BudgetDelta())
	assert.Equal(t, cat.DefaultCrop, g.At(1, 1).Crop)
	assert.Zero(t, g.At(1, 1).Progress)
}

func TestBuildNonPlantableHasNoCrop(t *testing.T) {
	g := testGrid()
	_, err := Build(g, catalog.Default(), city.Modifiers{}, rich, 0, 0, catalog.BuildingMarket, "kangkung")
	require.NoError(t, err)
	assert.Empty(t, g.At(0, 0).Crop)
}

func TestBuildRejections(t *testing.T) {
	cat := catalog.Default()
	cases := []struct {
		name   string
		x, y   int
		id     catalog.BuildingID
		crop   catalog.CropID
		budget float64
		want   error
	}{
		{"out of bounds", 9, 9, catalog.BuildingMarket, "", rich, ErrOutOfBounds},
		{"unknown type", 0, 0, "CASTLE", "", rich, ErrUnknownBuilding},
		{"empty type", 0, 0, catalog.BuildingEmpty, "", rich, ErrUnknownBuilding},
		{"occupied", 2, 2, catalog.BuildingMarket, "", rich, ErrOccupied},
		{"roof only on land", 0, 0, catalog.BuildingRoofGarden, "", rich, ErrRoofOnly},
		{"unknown crop", 0, 0, catalog.BuildingCommunityGarden, "durian", rich, ErrUnknownCrop},
		{"too poor", 0, 0, catalog.BuildingMarket, "", 10, ErrInsufficientFunds},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := testGrid()
			g.At(2, 2).Building = catalog.BuildingSolar
			before := g.Clone()

			_, err := Build(g, cat, city.Modifiers{}, tc.budget, tc.x, tc.y, tc.id, tc.crop)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, before, g, "rejected build must not mutate the grid")
		})
	}
}

func TestBuildRoofWithIncentive(t *testing.T) {
	g := testGrid()
	cat := catalog.Default()
	rg, _ := cat.Building(catalog.BuildingRoofGarden)
	mods := city.Modifiers{RoofCostFactor: 0.75}

	// Budget covers the discounted price only.
	out, err := Build(g, cat, mods, rg.Cost*0.8, 3, 3, catalog.BuildingRoofGarden, "selada")
	require.NoError(t, err)
	assert.InDelta(t, rg.Cost*0.75, out.Cost, 1e-6)
	assert.Equal(t, catalog.CropID("selada"), g.At(3, 3).Crop)
}

func TestPlant(t *testing.T) {
	g := testGrid()
	cat := catalog.Default()
	g.At(1, 0).Building = catalog.BuildingCommunityGarden
	g.At(1, 0).Crop = "pakcoy"
	g.At(1, 0).Progress = 0.6
	g.At(2, 0).Building = catalog.BuildingMarket

	out, err := Plant(g, cat, 1, 0, "tomat")
	require.NoError(t, err)
	assert.Equal(t, catalog.CropID("tomat"), out.Tile.Crop)
	assert.Zero(t, g.At(1, 0).Progress)

	_, err = Plant(g, cat, 0, 0, "tomat")
	assert.ErrorIs(t, err, ErrEmptyTile)
	_, err = Plant(g, cat, 2, 0, "tomat")
	assert.ErrorIs(t, err, ErrNotPlantable)
	_, err = Plant(g, cat, 1, 0, "durian")
	assert.ErrorIs(t, err, ErrUnknownCrop)
	_, err = Plant(g, cat, -1, 0, "tomat")
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestDemolishRefund(t *testing.T) {
	cat := catalog.Default()
	market, _ := cat.Building(catalog.BuildingMarket)

	g := testGrid()
	g.At(0, 0).Building = catalog.BuildingMarket
	out, err := Demolish(g, cat, city.Modifiers{}, 0, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, out.Refund)
	assert.True(t, g.At(0, 0).Empty())

	g.At(0, 0).Building = catalog.BuildingMarket
	out, err = Demolish(g, cat, city.Modifiers{}, 0, 0, 0.4)
	require.NoError(t, err)
	assert.InDelta(t, market.Cost*0.4, out.Refund, 1e-6)
	assert.InDelta(t, market.Cost*0.4, out.BudgetDelta(), 1e-6)

	_, err = Demolish(g, cat, city.Modifiers{}, 0, 0, 0.4)
	assert.ErrorIs(t, err, ErrEmptyTile)
}

func TestDemolishRefundFollowsRooftopIncentive(t *testing.T) {
	cat := catalog.Default()
	g := testGrid()
	mods := city.Compute(g, cat, city.Policy{RooftopIncentive: true})
	roof, _ := cat.Building(catalog.BuildingRoofGarden)

	built, err := Build(g, cat, mods, rich, 3, 3, catalog.BuildingRoofGarden, "")
	require.NoError(t, err)
	assert.Less(t, built.Cost, roof.Cost)

	out, err := Demolish(g, cat, mods, 3, 3, 1)
	require.NoError(t, err)
	assert.InDelta(t, built.Cost, out.Refund, 1e-6)
	assert.InDelta(t, 0, built.BudgetDelta()+out.BudgetDelta(), 1e-6)
}

func TestDemolishClearsCropAndUnknown(t *testing.T) {
	g := testGrid()
	t0 := g.At(1, 1)
	t0.Building = "OLD_SILO"
	t0.Crop = "jamur"
	t0.Progress = 0.3
	t0.DisabledDays = 1

	out, err := Demolish(g, catalog.Default(), city.Modifiers{}, 1, 1, 1)
	require.NoError(t, err)
	assert.Zero(t, out.Refund)
	assert.Equal(t, world.Tile{X: 1, Y: 1, Category: world.CategoryLand, Building: catalog.BuildingEmpty}, *g.At(1, 1))
}

func TestInspect(t *testing.T) {
	g := testGrid()
	cat := catalog.Default()
	g.At(0, 1).Building = catalog.BuildingCommunityGarden
	g.At(0, 1).Crop = "selada"
	g.At(0, 1).Progress = 0.5

	info, err := Inspect(g, cat, 0, 1)
	require.NoError(t, err)
	assert.True(t, info.Known)
	assert.Equal(t, "Selada", info.CropName)
	assert.Equal(t, 15, info.DaysToHarvest)

	_, err = Inspect(g, cat, 7, 7)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("plant")
	require.NoError(t, err)
	assert.Equal(t, ModePlant, m)

	_, err = ParseMode("fly")
	assert.Error(t, err)
}
