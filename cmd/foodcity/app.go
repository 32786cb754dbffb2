package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/talgya/foodcity/internal/catalog"
	"github.com/talgya/foodcity/internal/config"
	"github.com/talgya/foodcity/internal/engine"
	"github.com/talgya/foodcity/internal/entropy"
	"github.com/talgya/foodcity/internal/persistence"
	"github.com/talgya/foodcity/internal/world"
)

// Entropy sub-streams. Each new city takes the next grid stream; weather
// takes the stream of the day it resumes from.
const (
	streamWeather = 1
	streamGrid    = 1 << 8
)

// weatherSource returns the weather generator for a city resuming at day, so
// separate runs over one seed continue the weather instead of replaying it.
func weatherSource(src *entropy.Source, day int) *entropy.Source {
	return src.Derive(streamWeather | uint64(max(day, 0))<<32)
}

// app is one opened save: database, tables and the live simulation.
type app struct {
	cfg    *config.Config
	params engine.Params
	db     *persistence.DB
	cat    *catalog.Catalog
	src    *entropy.Source
	sim    *engine.Simulation

	mu      sync.Mutex
	worldID string
	cities  uint64
}

// openApp opens the save, restoring the city or generating a new one.
func openApp(cfg *config.Config) (*app, error) {
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	cat, err := cfg.LoadCatalog()
	if err != nil {
		db.Close()
		return nil, err
	}
	id, err := persistence.WorldID(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	src := entropy.New(cfg.Simulation.Seed)
	a := &app{
		cfg:     cfg,
		params:  cfg.EngineParams(),
		db:      db,
		cat:     cat,
		src:     src,
		worldID: id,
	}
	slog.Info("database opened", "path", cfg.Database.Path, "world_id", id, "seed", src.Seed)

	st, rep := persistence.LoadState(db, a.generate(), cfg.Simulation.HistoryRetention)
	if rep.Fresh() {
		if err := persistence.SaveState(db, st); err != nil {
			db.Close()
			return nil, err
		}
		slog.Info("new city generated", "grid", st.Grid.String())
	} else {
		slog.Info("city restored", "day", st.Day, "budget", st.Budget, "psi", st.Ratio)
	}

	a.sim = engine.NewSimulation(st, cat, a.params, weatherSource(src, st.Day).Rand)
	return a, nil
}

// generate builds a fresh city from the next grid stream.
func (a *app) generate() *engine.State {
	a.cities++
	gen := a.cfg.GenConfig()
	gen.Seed = int64(a.src.Derive(streamGrid+a.cities).Seed & math.MaxInt64)
	g := world.Generate(gen, a.cat)
	return engine.NewState(g, a.params)
}

// newCity clears the save and stores a freshly generated city under a new
// world id.
func (a *app) newCity() (*engine.State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.db.Clear(); err != nil {
		return nil, err
	}
	id, err := persistence.WorldID(a.db)
	if err != nil {
		return nil, err
	}
	st := a.generate()
	if err := persistence.SaveState(a.db, st); err != nil {
		return nil, err
	}
	a.worldID = id
	return st, nil
}

// WorldID returns the current city's id.
func (a *app) WorldID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.worldID
}

// save writes the live state synchronously.
func (a *app) save() error {
	return persistence.SaveState(a.db, a.sim.Snapshot())
}

func (a *app) Close() error {
	return a.db.Close()
}
