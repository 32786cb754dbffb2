// Package tuning holds the fixed simulation constants.
// Numbers are illustrative, not balanced; every rate the daily step uses lives here
// so the engine carries no magic numbers of its own.
package tuning

import "golang.org/x/exp/constraints"

// Weather multipliers applied while a heatwave is active.
const (
	HeatwaveGrowth         = 0.95 // Growth and harvest yield factor
	HeatwaveWater          = 1.15 // Water draw factor
	HeatwaveVerticalEnergy = 1.2  // Energy factor, vertical farms only
	HeatwaveLoss           = 1.1  // Postharvest loss factor
)

// Postharvest loss is always clamped into this band.
const (
	MinLossRate = 0.02
	MaxLossRate = 0.20
)

// HarvestTolerance absorbs float drift when summing 1/cycle increments, so a
// 30-day crop is ready on day 30 and not day 31.
const HarvestTolerance = 1e-9

// LitersPerCubicMeter converts per-tile liters into the city's m³ total.
const LitersPerCubicMeter = 1000.0

// MaxSelfSufficiency caps the ratio; values above 1 mean surplus capacity.
const MaxSelfSufficiency = 2.0

// City modifier rates, per building of the named type.
const (
	MarketCapacityKg    = 1200.0 // kg/day per market
	EducationCapacityKg = 100.0  // kg/day per education centre

	ColdChainPerHub = 0.05
	ColdChainCap    = 0.6

	SolarKWhPerDay    = 60.0
	RainwaterM3PerDay = 3.0

	IrrigationBase         = 0.1
	IrrigationPerTank      = 0.05
	IrrigationPerComposter = 0.02 // Source-separation policy only
	IrrigationCap          = 0.5

	LocalPreferencePerEdu = 0.05
	LocalPreferenceCap    = 0.4

	RooftopIncentiveDiscount = 0.25 // Construction discount on roof buildings
)

// Happiness weights.
const (
	HappinessPerGreenTile    = 0.05
	HappinessShortfallWeight = 10.0
	HappinessFloodPenalty    = 2.0
	HappinessHeatwavePenalty = 1.0
	HappinessMin             = 0.0
	HappinessMax             = 100.0
	HappinessStart           = 65.0
)

// Retention windows, in days.
const (
	HistoryRetentionDays = 120
	RatioWindowDays      = 60
	ProductionAvgDays    = 7
)

// Number is any integer or float.
type Number interface {
	constraints.Integer | constraints.Float
}

// Clamp bounds v into [lo, hi].
func Clamp[T Number](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
