// Package engine runs the city one day at a time.
//
// The arithmetic lives in pure functions (AdvanceOneDay, GrowDay, Step) that
// take their randomness as a parameter. Simulation owns the live State and
// serialises every mutation; Engine drives Simulation from a ticker.
package engine

import (
	"fmt"
	"math/rand/v2"

	"github.com/talgya/foodcity/internal/catalog"
	"github.com/talgya/foodcity/internal/city"
	"github.com/talgya/foodcity/internal/economy"
	"github.com/talgya/foodcity/internal/history"
	"github.com/talgya/foodcity/internal/tuning"
	"github.com/talgya/foodcity/internal/weather"
	"github.com/talgya/foodcity/internal/world"
)

// RatioMode picks which self-sufficiency figure drives happiness, the
// tutorial gate and the persisted KPI.
type RatioMode string

const (
	RatioDaily   RatioMode = "daily"
	RatioRolling RatioMode = "rolling"
)

// Params are the step's tunable inputs.
type Params struct {
	Economy          economy.Params
	Weather          weather.Config
	Policy           city.Policy
	RatioMode        RatioMode
	RatioWindow      int
	HistoryRetention int
	RefundFraction   float64
}

// DefaultParams returns the standard city with a 60-day rolling ratio and
// no demolition refund.
func DefaultParams() Params {
	return Params{
		Economy:          economy.DefaultParams(),
		Weather:          weather.DefaultConfig(),
		RatioMode:        RatioRolling,
		RatioWindow:      tuning.RatioWindowDays,
		HistoryRetention: tuning.HistoryRetentionDays,
	}
}

// DayOutput is what AdvanceOneDay produces.
type DayOutput struct {
	Grid       *world.Grid
	WaterM3    float64
	EnergyKWh  float64
	Production map[catalog.CropID]float64
	Harvests   int
	Events     []weather.Event
	Spawned    *weather.Event
}

// AdvanceOneDay rolls the weather and then grows every tile for one day.
// The input grid and event list are not modified.
func AdvanceOneDay(g *world.Grid, events []weather.Event, mods city.Modifiers, cat *catalog.Catalog, wcfg weather.Config, rng *rand.Rand) DayOutput {
	next, spawned := weather.Advance(events, wcfg, rng)
	grid := g.Clone()
	water, energy, production, harvests := GrowDay(grid, weather.EffectsOf(next), mods, cat)
	return DayOutput{
		Grid:       grid,
		WaterM3:    water,
		EnergyKWh:  energy,
		Production: production,
		Harvests:   harvests,
		Events:     next,
		Spawned:    spawned,
	}
}

// GrowDay applies one day of growth and harvest to g in place and returns
// the day's water (m³), energy (kWh) and production (kg per crop).
// Tiles referencing ids missing from the catalog are left alone.
func GrowDay(g *world.Grid, fx weather.Effects, mods city.Modifiers, cat *catalog.Catalog) (waterM3, energyKWh float64, production map[catalog.CropID]float64, harvests int) {
	production = make(map[catalog.CropID]float64)

	growthFactor, waterFactor := 1.0, 1.0
	if fx.Heatwave {
		growthFactor = tuning.HeatwaveGrowth
		waterFactor = tuning.HeatwaveWater
	}

	for i := range g.Tiles {
		t := &g.Tiles[i]

		if t.DisabledDays > 0 {
			t.DisabledDays--
			continue
		}
		if t.Empty() {
			continue
		}
		def, ok := cat.Building(t.Building)
		if !ok {
			continue
		}
		if fx.Flood && def.FloodProne && t.Category == world.CategoryLand {
			t.DisabledDays = 1
			continue
		}
		if !def.CanPlant || t.Crop == "" {
			continue
		}
		crop, ok := cat.Crop(t.Crop)
		if !ok {
			continue
		}
		mult, ok := cat.Method(def.Method)
		if !ok {
			continue
		}

		growth := 1 / float64(crop.CycleDays) * mult.Yield * growthFactor
		t.Progress = tuning.Clamp(t.Progress+growth, 0, 1)

		liters := crop.WaterLiters * mult.Water * waterFactor * (1 - mods.IrrigationEfficiency)
		waterM3 += liters / tuning.LitersPerCubicMeter

		energy := mult.Energy
		if fx.Heatwave && def.Method == catalog.MethodVertical {
			energy *= tuning.HeatwaveVerticalEnergy
		}
		energyKWh += energy

		if t.Progress >= 1-tuning.HarvestTolerance {
			kg := crop.BaseYield * mult.Yield * growthFactor * (1 - LossRate(crop, fx, mods.ColdChainQuality))
			production[crop.ID] += kg
			t.Progress = 0
			harvests++
		}
	}
	return waterM3, energyKWh, production, harvests
}

// LossRate is the postharvest loss fraction for crop, always inside
// [MinLossRate, MaxLossRate].
func LossRate(crop catalog.Crop, fx weather.Effects, coldChain float64) float64 {
	loss := crop.BaseLoss
	if fx.Heatwave {
		loss *= tuning.HeatwaveLoss
	}
	loss *= 1 - coldChain
	return tuning.Clamp(loss, tuning.MinLossRate, tuning.MaxLossRate)
}

// Happiness nudges the previous score by the day's green tiles, shortfall
// and weather, clamped into [0, 100].
func Happiness(prev, ratio float64, greenTiles int, fx weather.Effects) float64 {
	h := prev
	h += tuning.HappinessPerGreenTile * float64(greenTiles)
	h -= tuning.HappinessShortfallWeight * max(0, 1-ratio)
	if fx.Flood {
		h -= tuning.HappinessFloodPenalty
	}
	if fx.Heatwave {
		h -= tuning.HappinessHeatwavePenalty
	}
	return tuning.Clamp(h, tuning.HappinessMin, tuning.HappinessMax)
}

// DayReport is everything one step computed, for logging and display.
type DayReport struct {
	Day          int                        `json:"day"`
	Production   map[catalog.CropID]float64 `json:"production"`
	Produced     float64                    `json:"produced"`
	Harvests     int                        `json:"harvests"`
	Dispatched   float64                    `json:"dispatched"`
	Demand       float64                    `json:"demand"`
	DailyRatio   float64                    `json:"psi_daily"`
	RollingRatio float64                    `json:"psi_rolling"`
	Ratio        float64                    `json:"psi"`
	Utilities    economy.UtilityBill        `json:"utilities"`
	Ledger       economy.Ledger             `json:"ledger"`
	Budget       float64                    `json:"budget"`
	Happiness    float64                    `json:"happiness"`
	Effects      weather.Effects            `json:"effects"`
	Events       []weather.Event            `json:"events"`
	Spawned      *weather.Event             `json:"spawned,omitempty"`
	Modifiers    city.Modifiers             `json:"modifiers"`

	// WentNegative is set on the day the budget first drops below zero.
	WentNegative bool `json:"went_negative,omitempty"`
}

// Step advances s by one day and returns the new state. s is not modified.
func Step(s *State, cat *catalog.Catalog, p Params, rng *rand.Rand) (*State, DayReport) {
	next := s.Clone()

	mods := city.Compute(next.Grid, cat, p.Policy)
	out := AdvanceOneDay(next.Grid, next.Events, mods, cat, p.Weather, rng)
	fx := weather.EffectsOf(out.Events)

	bill := economy.Utilities(p.Economy, out.WaterM3, out.EnergyKWh, mods.RainwaterOffsetM3, mods.SolarOffsetKWh)
	demand := economy.Demand(p.Economy, mods.LocalPreferenceBoost)
	dist := economy.Dispatch(out.Production, next.Inventory, mods.MarketCapacity, demand)
	ledger := economy.Settle(p.Economy, economy.AveragePrice(p.Economy, cat, out.Production), dist.Dispatched, mods.WorkerCount, bill)

	produced := economy.SumMass(out.Production)
	next.History.Append(history.Record{
		Day:        s.Day,
		Ratio:      dist.Ratio,
		Production: produced,
		Dispatched: dist.Dispatched,
		Demand:     demand,
	})
	window := p.RatioWindow
	if window <= 0 {
		window = tuning.RatioWindowDays
	}
	rolling := next.History.RollingRatio(window)
	ratio := dist.Ratio
	if p.RatioMode != RatioDaily {
		ratio = rolling
	}

	next.Grid = out.Grid
	next.Events = out.Events
	next.WaterM3 = out.WaterM3
	next.EnergyKWh = out.EnergyKWh
	next.Inventory = dist.Inventory
	next.Budget = s.Budget + ledger.Net
	next.Emissions = s.Emissions + bill.Emissions
	next.Ratio = ratio
	next.Happiness = Happiness(s.Happiness, ratio, mods.GreenTiles, fx)
	next.Day = s.Day + 1

	return next, DayReport{
		Day:          s.Day,
		Production:   out.Production,
		Produced:     produced,
		Harvests:     out.Harvests,
		Dispatched:   dist.Dispatched,
		Demand:       demand,
		DailyRatio:   dist.Ratio,
		RollingRatio: rolling,
		Ratio:        ratio,
		Utilities:    bill,
		Ledger:       ledger,
		Budget:       next.Budget,
		Happiness:    next.Happiness,
		Effects:      fx,
		Events:       out.Events,
		Spawned:      out.Spawned,
		Modifiers:    mods,
		WentNegative: s.Budget >= 0 && next.Budget < 0,
	}
}

// String returns a one-line summary of the report.
func (r DayReport) String() string {
	return fmt.Sprintf("day %d: produced=%.1fkg dispatched=%.1fkg psi=%.3f budget=%.0f happiness=%.1f",
		r.Day, r.Produced, r.Dispatched, r.Ratio, r.Budget, r.Happiness)
}
