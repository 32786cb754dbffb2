// Package city derives city-wide multipliers from the grid's building census.
// Modifiers are a pure function of the grid, the catalog and the policy
// toggles; nothing is cached between calls.
package city

import (
	"github.com/talgya/foodcity/internal/catalog"
	"github.com/talgya/foodcity/internal/tuning"
	"github.com/talgya/foodcity/internal/world"
)

// Policy holds the player's city policy toggles.
type Policy struct {
	RooftopIncentive bool `json:"rooftop_incentive" mapstructure:"rooftop_incentive"`
	SourceSeparation bool `json:"source_separation" mapstructure:"source_separation"`
}

// Modifiers is the derived record the daily step consumes.
type Modifiers struct {
	MarketCapacity       float64 `json:"market_capacity_kg_per_day"`
	ColdChainQuality     float64 `json:"cold_chain_quality"`
	SolarOffsetKWh       float64 `json:"solar_kwh_per_day"`
	RainwaterOffsetM3    float64 `json:"rainwater_m3_per_day"`
	IrrigationEfficiency float64 `json:"irrigation_efficiency"`
	LocalPreferenceBoost float64 `json:"local_preference_boost"`
	GreenTiles           int     `json:"green_tiles"`
	WorkerCount          int     `json:"worker_count"`
	RoofCostFactor       float64 `json:"roof_cost_factor"`

	Census map[catalog.BuildingID]int `json:"census"`
}

// Compute derives the modifiers for the current grid.
// Building ids missing from the catalog count toward nothing.
func Compute(g *world.Grid, cat *catalog.Catalog, policy Policy) Modifiers {
	census := make(map[catalog.BuildingID]int)
	green, workers := 0, 0
	for _, t := range g.Tiles {
		if t.Empty() {
			continue
		}
		def, ok := cat.Building(t.Building)
		if !ok {
			continue
		}
		census[t.Building]++
		workers += def.Workers
		if def.CanPlant {
			green++
		}
	}

	markets := float64(census[catalog.BuildingMarket])
	edu := float64(census[catalog.BuildingEducation])
	cold := float64(census[catalog.BuildingColdHub])
	solar := float64(census[catalog.BuildingSolar])
	rain := float64(census[catalog.BuildingRainTank])
	compost := float64(census[catalog.BuildingComposter])

	irrigation := tuning.IrrigationBase + tuning.IrrigationPerTank*rain
	if policy.SourceSeparation {
		irrigation += tuning.IrrigationPerComposter * compost
	}

	roofFactor := 1.0
	if policy.RooftopIncentive {
		roofFactor = 1 - tuning.RooftopIncentiveDiscount
	}

	return Modifiers{
		MarketCapacity:       markets*tuning.MarketCapacityKg + edu*tuning.EducationCapacityKg,
		ColdChainQuality:     min(tuning.ColdChainCap, tuning.ColdChainPerHub*cold),
		SolarOffsetKWh:       solar * tuning.SolarKWhPerDay,
		RainwaterOffsetM3:    rain * tuning.RainwaterM3PerDay,
		IrrigationEfficiency: min(tuning.IrrigationCap, irrigation),
		LocalPreferenceBoost: min(tuning.LocalPreferenceCap, tuning.LocalPreferencePerEdu*edu),
		GreenTiles:           green,
		WorkerCount:          workers,
		RoofCostFactor:       roofFactor,
		Census:               census,
	}
}

// ConstructionCost is the price of placing b under the current policy.
func (m Modifiers) ConstructionCost(b catalog.Building) float64 {
	if b.RoofOnly() && m.RoofCostFactor > 0 {
		return b.Cost * m.RoofCostFactor
	}
	return b.Cost
}
