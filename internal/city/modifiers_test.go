package city

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/foodcity/internal/catalog"
	"github.com/talgya/foodcity/internal/world"
)

func place(g *world.Grid, id catalog.BuildingID, n int) {
	for i := range g.Tiles {
		if n == 0 {
			return
		}
		if g.Tiles[i].Empty() {
			g.Tiles[i].Building = id
			n--
		}
	}
}

func TestComputeEmptyGrid(t *testing.T) {
	m := Compute(world.NewGrid(5, 5), catalog.Default(), Policy{})

	assert.Zero(t, m.MarketCapacity)
	assert.Zero(t, m.ColdChainQuality)
	assert.Zero(t, m.GreenTiles)
	assert.Zero(t, m.WorkerCount)
	assert.InDelta(t, 0.1, m.IrrigationEfficiency, 1e-9)
	assert.Equal(t, 1.0, m.RoofCostFactor)
}

func TestComputeCensus(t *testing.T) {
	g := world.NewGrid(10, 10)
	place(g, catalog.BuildingMarket, 2)
	place(g, catalog.BuildingEducation, 3)
	place(g, catalog.BuildingColdHub, 4)
	place(g, catalog.BuildingSolar, 2)
	place(g, catalog.BuildingRainTank, 2)
	place(g, catalog.BuildingCommunityGarden, 5)
	place(g, catalog.BuildingVerticalFarm, 1)

	m := Compute(g, catalog.Default(), Policy{})

	assert.InDelta(t, 2*1200.0+3*100.0, m.MarketCapacity, 1e-9)
	assert.InDelta(t, 0.2, m.ColdChainQuality, 1e-9)
	assert.InDelta(t, 120.0, m.SolarOffsetKWh, 1e-9)
	assert.InDelta(t, 6.0, m.RainwaterOffsetM3, 1e-9)
	assert.InDelta(t, 0.2, m.IrrigationEfficiency, 1e-9)
	assert.InDelta(t, 0.15, m.LocalPreferenceBoost, 1e-9)
	assert.Equal(t, 6, m.GreenTiles)
	// 2 markets*2 + 3 edu*1 + 4 cold*2 + 5 CG*1 + 1 VF*3
	assert.Equal(t, 4+3+8+5+3, m.WorkerCount)
}

func TestComputeCapsHold(t *testing.T) {
	g := world.NewGrid(10, 10)
	place(g, catalog.BuildingColdHub, 30)
	place(g, catalog.BuildingRainTank, 30)
	place(g, catalog.BuildingEducation, 30)

	m := Compute(g, catalog.Default(), Policy{})

	assert.Equal(t, 0.6, m.ColdChainQuality)
	assert.Equal(t, 0.5, m.IrrigationEfficiency)
	assert.Equal(t, 0.4, m.LocalPreferenceBoost)
}

func TestGreenTilesCountUnplanted(t *testing.T) {
	g := world.NewGrid(3, 1)
	g.Tiles[0].Building = catalog.BuildingRoofGarden
	g.Tiles[1].Building = catalog.BuildingCommunityGarden
	g.Tiles[1].Crop = "selada"

	m := Compute(g, catalog.Default(), Policy{})
	assert.Equal(t, 2, m.GreenTiles)
}

func TestUnknownBuildingIgnored(t *testing.T) {
	g := world.NewGrid(2, 1)
	g.Tiles[0].Building = "CASTLE"

	m := Compute(g, catalog.Default(), Policy{})
	assert.Zero(t, m.WorkerCount)
	assert.Empty(t, m.Census)
}

func TestPolicies(t *testing.T) {
	g := world.NewGrid(10, 1)
	place(g, catalog.BuildingComposter, 3)

	off := Compute(g, catalog.Default(), Policy{})
	on := Compute(g, catalog.Default(), Policy{SourceSeparation: true, RooftopIncentive: true})

	assert.InDelta(t, 0.1, off.IrrigationEfficiency, 1e-9)
	assert.InDelta(t, 0.16, on.IrrigationEfficiency, 1e-9)

	rg, _ := catalog.Default().Building(catalog.BuildingRoofGarden)
	market, _ := catalog.Default().Building(catalog.BuildingMarket)
	assert.Equal(t, rg.Cost, off.ConstructionCost(rg))
	assert.InDelta(t, rg.Cost*0.75, on.ConstructionCost(rg), 1e-6)
	assert.Equal(t, market.Cost, on.ConstructionCost(market))
}
