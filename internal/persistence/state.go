package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/talgya/foodcity/internal/economy"
	"github.com/talgya/foodcity/internal/engine"
	"github.com/talgya/foodcity/internal/history"
	"github.com/talgya/foodcity/internal/weather"
	"github.com/talgya/foodcity/internal/world"
)

// Storage keys. Each is read and written independently.
const (
	KeyGrid      = "kpm_grid"
	KeyDay       = "kpm_day"
	KeyBudget    = "kpm_budget"
	KeyWater     = "kpm_water"
	KeyEnergy    = "kpm_energy"
	KeyStorage   = "kpm_storage"
	KeyRatio     = "kpm_psi"
	KeyHappiness = "kpm_happiness"
	KeyEmissions = "kpm_emissions"
	KeyHistory   = "kpm_history"
	KeyEvents    = "kpm_events"
	KeyWorldID   = "kpm_world_id"
)

// StateKeys lists every key Encode writes.
var StateKeys = []string{
	KeyGrid, KeyDay, KeyBudget, KeyWater, KeyEnergy, KeyStorage,
	KeyRatio, KeyHappiness, KeyEmissions, KeyHistory, KeyEvents,
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Encode turns a state into its key-value form.
func Encode(st *engine.State) (map[string]string, error) {
	grid, err := json.Marshal(st.Grid)
	if err != nil {
		return nil, fmt.Errorf("encode grid: %w", err)
	}
	inv := st.Inventory
	if inv == nil {
		inv = economy.Inventory{}
	}
	storage, err := json.Marshal(inv)
	if err != nil {
		return nil, fmt.Errorf("encode storage: %w", err)
	}
	records := []history.Record{}
	if st.History != nil && st.History.Records != nil {
		records = st.History.Records
	}
	hist, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	events := st.Events
	if events == nil {
		events = []weather.Event{}
	}
	ev, err := json.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("encode events: %w", err)
	}

	return map[string]string{
		KeyGrid:      string(grid),
		KeyDay:       strconv.Itoa(st.Day),
		KeyBudget:    formatFloat(st.Budget),
		KeyWater:     formatFloat(st.WaterM3),
		KeyEnergy:    formatFloat(st.EnergyKWh),
		KeyStorage:   string(storage),
		KeyRatio:     formatFloat(st.Ratio),
		KeyHappiness: formatFloat(st.Happiness),
		KeyEmissions: formatFloat(st.Emissions),
		KeyHistory:   string(hist),
		KeyEvents:    string(ev),
	}, nil
}

// SaveState writes every key of st in one transaction.
func SaveState(db *DB, st *engine.State) error {
	values, err := Encode(st)
	if err != nil {
		return err
	}
	if err := db.SaveMetaBatch(values); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// LoadReport lists the keys that fell back to their defaults.
type LoadReport struct {
	Missing []string `json:"missing,omitempty"`
	Corrupt []string `json:"corrupt,omitempty"`
}

// Fresh reports whether nothing at all was restored.
func (r LoadReport) Fresh() bool {
	return len(r.Missing) == len(StateKeys)
}

// LoadState reads every key independently. Missing or unparsable keys take
// their value from fallback; the load itself never fails.
func LoadState(db *DB, fallback *engine.State, retention int) (*engine.State, LoadReport) {
	st := fallback.Clone()
	var rep LoadReport

	read := func(key string, parse func(string) error) {
		raw, err := db.GetMeta(key)
		if errors.Is(err, ErrNotFound) {
			rep.Missing = append(rep.Missing, key)
			return
		}
		if err == nil {
			err = parse(raw)
		}
		if err != nil {
			rep.Corrupt = append(rep.Corrupt, key)
			slog.Warn("saved value unusable, using default", "key", key, "error", err)
		}
	}

	read(KeyGrid, func(raw string) error {
		var g world.Grid
		if err := json.Unmarshal([]byte(raw), &g); err != nil {
			return err
		}
		if err := g.Validate(); err != nil {
			return err
		}
		g.Normalize()
		st.Grid = &g
		return nil
	})
	read(KeyDay, func(raw string) error {
		day, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		if day < 1 {
			return fmt.Errorf("day %d", day)
		}
		st.Day = day
		return nil
	})
	read(KeyBudget, floatInto(&st.Budget, math.Inf(-1), math.Inf(1)))
	read(KeyWater, floatInto(&st.WaterM3, 0, math.Inf(1)))
	read(KeyEnergy, floatInto(&st.EnergyKWh, 0, math.Inf(1)))
	read(KeyRatio, floatInto(&st.Ratio, 0, 2))
	read(KeyHappiness, floatInto(&st.Happiness, 0, 100))
	read(KeyEmissions, floatInto(&st.Emissions, 0, math.Inf(1)))
	read(KeyStorage, func(raw string) error {
		inv := economy.Inventory{}
		if err := json.Unmarshal([]byte(raw), &inv); err != nil {
			return err
		}
		inv.Sanitize()
		st.Inventory = inv
		return nil
	})
	read(KeyHistory, func(raw string) error {
		var records []history.Record
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			return err
		}
		hl := history.NewLog(retention)
		for _, r := range records {
			hl.Append(r)
		}
		st.History = hl
		return nil
	})
	read(KeyEvents, func(raw string) error {
		var events []weather.Event
		if err := json.Unmarshal([]byte(raw), &events); err != nil {
			return err
		}
		kept := events[:0]
		for _, ev := range events {
			if ev.DaysLeft > 0 && (ev.Kind == weather.Heatwave || ev.Kind == weather.Flood) {
				kept = append(kept, ev)
			}
		}
		st.Events = kept
		return nil
	})

	if len(rep.Missing) > 0 && !rep.Fresh() {
		slog.Warn("saved city incomplete, defaults used", "missing", rep.Missing)
	}
	return st, rep
}

// floatInto parses a finite float inside [lo, hi] into dst.
func floatInto(dst *float64, lo, hi float64) func(string) error {
	return func(raw string) error {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
			return fmt.Errorf("value %s out of range", raw)
		}
		*dst = v
		return nil
	}
}

// WorldID returns the saved city's id, minting and storing one if absent.
func WorldID(db *DB) (string, error) {
	id, err := db.GetMeta(KeyWorldID)
	if err == nil {
		if _, perr := uuid.Parse(id); perr == nil {
			return id, nil
		}
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	id = uuid.NewString()
	if err := db.SaveMeta(KeyWorldID, id); err != nil {
		return "", fmt.Errorf("save world id: %w", err)
	}
	slog.Info("new world id", "world_id", id)
	return id, nil
}
