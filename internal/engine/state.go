package engine

import (
	"github.com/talgya/foodcity/internal/economy"
	"github.com/talgya/foodcity/internal/history"
	"github.com/talgya/foodcity/internal/tuning"
	"github.com/talgya/foodcity/internal/weather"
	"github.com/talgya/foodcity/internal/world"
)

// Resources is the city-wide resource and KPI block.
type Resources struct {
	Day       int               `json:"day"`        // Next day to simulate, starts at 1
	Budget    float64           `json:"budget"`     // IDR, may go negative
	WaterM3   float64           `json:"water_m3"`   // Latest daily draw before offsets
	EnergyKWh float64           `json:"energy_kwh"` // Latest daily draw before offsets
	Inventory economy.Inventory `json:"inventory"`  // Carried, undelivered kg per crop
	Ratio     float64           `json:"psi"`        // Self-sufficiency as selected by RatioMode
	Happiness float64           `json:"happiness"`  // [0, 100]
	Emissions float64           `json:"emissions"`  // Cumulative tCO2e, never decreases
}

// State is the whole world the daily step reads and replaces.
// A State is owned by exactly one goroutine at a time; Clone before sharing.
type State struct {
	Grid   *world.Grid     `json:"grid"`
	Events []weather.Event `json:"events"`
	Resources
	History *history.Log `json:"history"`
}

// NewState wraps a freshly generated grid with starting resources.
func NewState(g *world.Grid, p Params) *State {
	return &State{
		Grid:   g,
		Events: nil,
		Resources: Resources{
			Day:       1,
			Budget:    p.Economy.StartBudget,
			Inventory: economy.Inventory{},
			Happiness: tuning.HappinessStart,
		},
		History: history.NewLog(p.HistoryRetention),
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Grid = s.Grid.Clone()
	out.Events = append([]weather.Event(nil), s.Events...)
	out.Inventory = s.Inventory.Clone()
	out.History = s.History.Clone()
	if out.History == nil {
		out.History = history.NewLog(0)
	}
	return &out
}
