package economy

import "github.com/talgya/foodcity/internal/catalog"

// Params are the city's economic constants.
type Params struct {
	StartBudget          float64 `json:"start_budget" mapstructure:"start_budget"`
	Population           float64 `json:"population" mapstructure:"population" validate:"gte=0"`
	DemandPerCapitaKg    float64 `json:"demand_per_capita_kg" mapstructure:"demand_per_capita_kg" validate:"gte=0"`
	BaseLocalPreference  float64 `json:"base_local_preference" mapstructure:"base_local_preference" validate:"gte=0,lte=1"`
	WaterPricePerM3      float64 `json:"water_price_per_m3" mapstructure:"water_price_per_m3" validate:"gte=0"`
	EnergyPricePerKWh    float64 `json:"energy_price_per_kwh" mapstructure:"energy_price_per_kwh" validate:"gte=0"`
	EmissionFactorPerKWh float64 `json:"emission_factor_kg_per_kwh" mapstructure:"emission_factor_kg_per_kwh" validate:"gte=0"`
	WagePerWorker        float64 `json:"wage_per_worker" mapstructure:"wage_per_worker" validate:"gte=0"`
	DailyOverhead        float64 `json:"daily_overhead" mapstructure:"daily_overhead" validate:"gte=0"`
	FallbackPricePerKg   float64 `json:"fallback_price" mapstructure:"fallback_price" validate:"gte=0"`
}

// DefaultParams returns the standard city: 10 000 residents eating
// half a kilo of local produce a day.
func DefaultParams() Params {
	return Params{
		StartBudget:          800_000_000,
		Population:           10_000,
		DemandPerCapitaKg:    0.5,
		BaseLocalPreference:  0.5,
		WaterPricePerM3:      3_000,
		EnergyPricePerKWh:    1_400,
		EmissionFactorPerKWh: 0.0008,
		WagePerWorker:        100_000,
		DailyOverhead:        1_200_000,
		FallbackPricePerKg:   17_000,
	}
}

// UtilityBill is the day's water and energy accounting after offsets.
type UtilityBill struct {
	WaterM3      float64 `json:"water_m3"`
	EnergyKWh    float64 `json:"energy_kwh"`
	NetWaterM3   float64 `json:"net_water_m3"`
	NetEnergyKWh float64 `json:"net_energy_kwh"`
	WaterCost    float64 `json:"water_cost"`
	EnergyCost   float64 `json:"energy_cost"`
	Emissions    float64 `json:"emissions"`
}

// Utilities nets raw consumption against solar and rainwater offsets and
// prices what is left.
func Utilities(p Params, waterM3, energyKWh, rainwaterM3, solarKWh float64) UtilityBill {
	netWater := max(0, waterM3-rainwaterM3)
	netEnergy := max(0, energyKWh-solarKWh)
	return UtilityBill{
		WaterM3:      waterM3,
		EnergyKWh:    energyKWh,
		NetWaterM3:   netWater,
		NetEnergyKWh: netEnergy,
		WaterCost:    netWater * p.WaterPricePerM3,
		EnergyCost:   netEnergy * p.EnergyPricePerKWh,
		Emissions:    netEnergy * p.EmissionFactorPerKWh,
	}
}

// AveragePrice is the production-weighted price per kg, or the fallback
// price when nothing was produced. Crops missing from the catalog sell at
// the fallback price.
func AveragePrice(p Params, cat *catalog.Catalog, produced map[catalog.CropID]float64) float64 {
	mass, value := 0.0, 0.0
	for id, kg := range produced {
		if !(kg > 0) {
			continue
		}
		price := p.FallbackPricePerKg
		if crop, ok := cat.Crop(id); ok {
			price = crop.Price
		}
		mass += kg
		value += kg * price
	}
	if mass <= 0 {
		return p.FallbackPricePerKg
	}
	return value / mass
}

// Ledger is the day's cash flow.
type Ledger struct {
	AveragePrice float64 `json:"average_price"`
	Revenue      float64 `json:"revenue"`
	Wages        float64 `json:"wages"`
	Overhead     float64 `json:"overhead"`
	Utilities    float64 `json:"utilities"`
	Opex         float64 `json:"opex"`
	Net          float64 `json:"net"`
}

// Settle prices the dispatched mass and charges the day's operating costs.
// The budget is not floored; callers add Net as is.
func Settle(p Params, avgPrice, dispatched float64, workers int, bill UtilityBill) Ledger {
	l := Ledger{
		AveragePrice: avgPrice,
		Revenue:      dispatched * avgPrice,
		Wages:        p.WagePerWorker * float64(workers),
		Overhead:     p.DailyOverhead,
		Utilities:    bill.WaterCost + bill.EnergyCost,
	}
	l.Opex = l.Utilities + l.Wages + l.Overhead
	l.Net = l.Revenue - l.Opex
	return l
}
