package economy

import (
	"github.com/talgya/foodcity/internal/catalog"
	"github.com/talgya/foodcity/internal/tuning"
)

// Distribution is the outcome of one day's market.
type Distribution struct {
	Inventory  Inventory                  `json:"inventory"`
	Dispatched float64                    `json:"dispatched"`
	Demand     float64                    `json:"demand"`
	Ratio      float64                    `json:"ratio"`
	ByCrop     map[catalog.CropID]float64 `json:"by_crop,omitempty"`
}

// Demand is the city's daily local-food target in kg.
func Demand(p Params, localPreferenceBoost float64) float64 {
	return p.Population * p.DemandPerCapitaKg * (p.BaseLocalPreference + localPreferenceBoost)
}

// Ratio is dispatched over demand, clamped into [0, 2]. Zero demand gives 0.
func Ratio(dispatched, demand float64) float64 {
	if !(demand > 0) {
		return 0
	}
	return tuning.Clamp(dispatched/demand, 0, tuning.MaxSelfSufficiency)
}

// Dispatch merges today's production into the carried inventory and ships
// up to min(total, capacity), drawing crops in lexicographic id order.
// The input inventory is left untouched.
func Dispatch(produced map[catalog.CropID]float64, inventory Inventory, capacity, demand float64) Distribution {
	inv := inventory.Clone()
	inv.Sanitize()
	inv.Merge(produced)

	budget := min(inv.Total(), max(0, capacity))
	dist := Distribution{
		Inventory: inv,
		Demand:    demand,
		ByCrop:    make(map[catalog.CropID]float64),
	}

	remaining := budget
	for _, crop := range inv.Keys() {
		if remaining <= 0 {
			break
		}
		take := min(inv[crop], remaining)
		inv[crop] -= take
		remaining -= take
		dist.ByCrop[crop] = take
		if inv[crop] <= 0 {
			inv[crop] = 0
		}
	}

	dist.Dispatched = budget - remaining
	dist.Ratio = Ratio(dist.Dispatched, demand)
	return dist
}
