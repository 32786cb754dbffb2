// Package economy resolves the daily food market and the city's books:
// inventory, dispatch against market capacity, utility bills, revenue and
// operating costs.
package economy

import (
	"math"
	"sort"

	"github.com/talgya/foodcity/internal/catalog"
)

// Inventory is stored-but-undelivered mass per crop, in kg.
type Inventory map[catalog.CropID]float64

// Clone returns an independent copy. A nil inventory clones to an empty one.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for k, v := range inv {
		out[k] = v
	}
	return out
}

// Merge adds produced mass into the inventory in place.
// Non-positive amounts are ignored.
func (inv Inventory) Merge(produced map[catalog.CropID]float64) {
	for crop, kg := range produced {
		if kg > 0 {
			inv[crop] += kg
		}
	}
}

// Total is the mass across all crops.
func (inv Inventory) Total() float64 {
	total := 0.0
	for _, kg := range inv {
		if kg > 0 {
			total += kg
		}
	}
	return total
}

// Keys returns crop ids in lexicographic order.
func (inv Inventory) Keys() []catalog.CropID {
	keys := make([]catalog.CropID, 0, len(inv))
	for k := range inv {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Sanitize drops negative and NaN entries. Drained crops keep their zero.
func (inv Inventory) Sanitize() {
	for k, v := range inv {
		if math.IsNaN(v) || v < 0 {
			delete(inv, k)
		}
	}
}

// SumMass adds up a production map.
func SumMass(produced map[catalog.CropID]float64) float64 {
	total := 0.0
	for _, kg := range produced {
		total += kg
	}
	return total
}
