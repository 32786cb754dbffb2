// Simulation owns the live city state and serialises every change to it.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/talgya/foodcity/internal/action"
	"github.com/talgya/foodcity/internal/catalog"
	"github.com/talgya/foodcity/internal/city"
	"github.com/talgya/foodcity/internal/tuning"
	"github.com/talgya/foodcity/internal/tutorial"
	"github.com/talgya/foodcity/internal/weather"
)

// MaxMessages bounds the recent message log.
const MaxMessages = 50

// Message is a notable occurrence shown to the player.
type Message struct {
	Day      int    `json:"day"`
	Text     string `json:"text"`
	Category string `json:"category"` // "weather", "build", "demolish", "plant", "budget", "rejected", "system"
}

// Observer is told about every committed change. report is nil for player
// actions and resets. snap is a private copy the observer may keep.
type Observer func(snap *State, report *DayReport)

// Simulation holds the complete city state and wires the daily step,
// player actions and observers together.
type Simulation struct {
	commit    sync.Mutex // Orders state changes together with their notifications
	mu        sync.Mutex
	cat       *catalog.Catalog
	params    Params
	rng       *rand.Rand
	state     *State
	messages  []Message
	last      *DayReport
	observers []Observer
}

// NewSimulation takes ownership of st.
func NewSimulation(st *State, cat *catalog.Catalog, p Params, rng *rand.Rand) *Simulation {
	if st.Inventory == nil {
		st.Inventory = make(map[catalog.CropID]float64)
	}
	return &Simulation{cat: cat, params: p, rng: rng, state: st}
}

// Subscribe registers an observer. Not safe to call while the simulation runs.
func (s *Simulation) Subscribe(fn Observer) {
	s.observers = append(s.observers, fn)
}

// Catalog returns the static tables.
func (s *Simulation) Catalog() *catalog.Catalog { return s.cat }

// Params returns the step parameters.
func (s *Simulation) Params() Params { return s.params }

// AdvanceDay runs one day. Calls never overlap.
func (s *Simulation) AdvanceDay() DayReport {
	s.commit.Lock()
	defer s.commit.Unlock()

	s.mu.Lock()
	next, report := Step(s.state, s.cat, s.params, s.rng)
	s.state = next
	s.last = &report

	if report.Spawned != nil {
		s.addMessage(report.Day, weather.Describe(*report.Spawned), "weather")
		slog.Info("weather event", "day", report.Day, "kind", report.Spawned.Kind, "days_left", report.Spawned.DaysLeft)
	}
	if report.WentNegative {
		s.addMessage(report.Day, "Budget is now negative", "budget")
	}
	snap := next.Clone()
	s.mu.Unlock()

	slog.Info("daily report",
		"day", report.Day,
		"psi", fmt.Sprintf("%.3f", report.Ratio),
		"psi_daily", fmt.Sprintf("%.3f", report.DailyRatio),
		"produced_kg", fmt.Sprintf("%.1f", report.Produced),
		"dispatched_kg", fmt.Sprintf("%.1f", report.Dispatched),
		"budget", fmt.Sprintf("%.0f", report.Budget),
		"happiness", fmt.Sprintf("%.1f", report.Happiness),
		"events", len(report.Events),
	)

	s.notify(snap, &report)
	return report
}

// Snapshot returns a deep copy of the current state.
func (s *Simulation) Snapshot() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// LastReport returns the most recent day report.
func (s *Simulation) LastReport() (DayReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return DayReport{}, false
	}
	return *s.last, true
}

// Modifiers recomputes the city modifiers for the current grid.
func (s *Simulation) Modifiers() city.Modifiers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return city.Compute(s.state.Grid, s.cat, s.params.Policy)
}

// Build places a building, charging the budget.
func (s *Simulation) Build(x, y int, id catalog.BuildingID, crop catalog.CropID) (action.Outcome, error) {
	return s.apply(func(st *State) (action.Outcome, error) {
		mods := city.Compute(st.Grid, s.cat, s.params.Policy)
		return action.Build(st.Grid, s.cat, mods, st.Budget, x, y, id, crop)
	})
}

// Plant replaces the crop on a tile.
func (s *Simulation) Plant(x, y int, crop catalog.CropID) (action.Outcome, error) {
	return s.apply(func(st *State) (action.Outcome, error) {
		return action.Plant(st.Grid, s.cat, x, y, crop)
	})
}

// Demolish clears a tile, refunding the configured fraction.
func (s *Simulation) Demolish(x, y int) (action.Outcome, error) {
	return s.apply(func(st *State) (action.Outcome, error) {
		mods := city.Compute(st.Grid, s.cat, s.params.Policy)
		return action.Demolish(st.Grid, s.cat, mods, x, y, s.params.RefundFraction)
	})
}

// Inspect describes a tile.
func (s *Simulation) Inspect(x, y int) (action.TileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return action.Inspect(s.state.Grid, s.cat, x, y)
}

func (s *Simulation) apply(fn func(st *State) (action.Outcome, error)) (action.Outcome, error) {
	s.commit.Lock()
	defer s.commit.Unlock()

	s.mu.Lock()
	day := s.state.Day
	out, err := fn(s.state)
	if err != nil {
		s.addMessage(day, err.Error(), "rejected")
		s.mu.Unlock()
		slog.Debug("action rejected", "day", day, "error", err)
		return out, err
	}
	wasSolvent := s.state.Budget >= 0
	s.state.Budget += out.BudgetDelta()
	s.addMessage(day, out.Message, string(out.Mode))
	if wasSolvent && s.state.Budget < 0 {
		s.addMessage(day, "Budget is now negative", "budget")
	}
	snap := s.state.Clone()
	s.mu.Unlock()

	slog.Debug("action applied", "mode", out.Mode, "x", out.Tile.X, "y", out.Tile.Y, "budget_delta", out.BudgetDelta())
	s.notify(snap, nil)
	return out, nil
}

// Tutorial evaluates the onboarding checklist.
func (s *Simulation) Tutorial() tutorial.Checklist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tutorial.Evaluate(s.state.Grid, s.cat, s.state.Ratio, s.state.Events)
}

// Summary is the read-only panel data.
type Summary struct {
	Day             int             `json:"day"`
	Budget          float64         `json:"budget"`
	Ratio           float64         `json:"psi"`
	Happiness       float64         `json:"happiness"`
	Emissions       float64         `json:"emissions"`
	WaterM3         float64         `json:"water_m3"`
	EnergyKWh       float64         `json:"energy_kwh"`
	InventoryKg     float64         `json:"inventory_kg"`
	AvgProduction7d float64         `json:"avg_production_7d"`
	Modifiers       city.Modifiers  `json:"modifiers"`
	Effects         weather.Effects `json:"effects"`
	RatioMode       RatioMode       `json:"psi_mode"`
}

// Summary gathers the KPIs and modifiers.
func (s *Simulation) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	return Summary{
		Day:             st.Day,
		Budget:          st.Budget,
		Ratio:           st.Ratio,
		Happiness:       st.Happiness,
		Emissions:       st.Emissions,
		WaterM3:         st.WaterM3,
		EnergyKWh:       st.EnergyKWh,
		InventoryKg:     st.Inventory.Total(),
		AvgProduction7d: st.History.AverageProduction(tuning.ProductionAvgDays),
		Modifiers:       city.Compute(st.Grid, s.cat, s.params.Policy),
		Effects:         weather.EffectsOf(st.Events),
		RatioMode:       s.params.RatioMode,
	}
}

// Messages returns the recent message log, oldest first.
func (s *Simulation) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Reset replaces the whole state, e.g. after clearing the save.
func (s *Simulation) Reset(st *State) {
	s.commit.Lock()
	defer s.commit.Unlock()

	s.mu.Lock()
	s.state = st
	s.last = nil
	s.messages = nil
	s.addMessage(st.Day, "New city started", "system")
	snap := st.Clone()
	s.mu.Unlock()

	slog.Info("simulation reset", "day", st.Day, "grid", st.Grid.String())
	s.notify(snap, nil)
}

// addMessage appends to the ring. Caller holds mu.
func (s *Simulation) addMessage(day int, text, category string) {
	s.messages = append(s.messages, Message{Day: day, Text: text, Category: category})
	if len(s.messages) > MaxMessages {
		s.messages = s.messages[len(s.messages)-MaxMessages:]
	}
}

func (s *Simulation) notify(snap *State, report *DayReport) {
	for _, fn := range s.observers {
		fn(snap, report)
	}
}
