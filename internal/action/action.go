// Package action validates and applies player input to the grid.
// A rejected action never mutates anything; the caller shows the error to the
// player and carries on.
package action

import (
	"errors"
	"fmt"

	"github.com/talgya/foodcity/internal/catalog"
	"github.com/talgya/foodcity/internal/city"
	"github.com/talgya/foodcity/internal/world"
)

// Mode is the player's current input mode.
type Mode string

const (
	ModeBuild    Mode = "build"
	ModePlant    Mode = "plant"
	ModeDemolish Mode = "demolish"
	ModeInspect  Mode = "inspect"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeBuild, ModePlant, ModeDemolish, ModeInspect:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Rejection reasons.
var (
	ErrOutOfBounds       = errors.New("tile out of bounds")
	ErrOccupied          = errors.New("tile already occupied")
	ErrInsufficientFunds = errors.New("insufficient budget")
	ErrRoofOnly          = errors.New("building requires a roof tile")
	ErrUnknownBuilding   = errors.New("unknown building type")
	ErrUnknownCrop       = errors.New("unknown crop")
	ErrNotPlantable      = errors.New("building does not support planting")
	ErrEmptyTile         = errors.New("tile is empty")
)

// Outcome describes an applied action.
type Outcome struct {
	Mode    Mode       `json:"mode"`
	Tile    world.Tile `json:"tile"`
	Cost    float64    `json:"cost,omitempty"`
	Refund  float64    `json:"refund,omitempty"`
	Message string     `json:"message"`
}

// BudgetDelta is the change the caller must apply to the city budget.
func (o Outcome) BudgetDelta() float64 {
	return o.Refund - o.Cost
}

// Build places building id on (x, y). Plantable types are planted with crop,
// or the catalog's default crop when crop is empty.
func Build(g *world.Grid, cat *catalog.Catalog, mods city.Modifiers, budget float64, x, y int, id catalog.BuildingID, crop catalog.CropID) (Outcome, error) {
	t := g.At(x, y)
	if t == nil {
		return Outcome{}, fmt.Errorf("build at (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	def, ok := cat.Building(id)
	if !ok || id == catalog.BuildingEmpty {
		return Outcome{}, fmt.Errorf("build %q: %w", id, ErrUnknownBuilding)
	}
	if !t.Empty() {
		return Outcome{}, fmt.Errorf("build at (%d,%d): %w", x, y, ErrOccupied)
	}
	if def.RoofOnly() && t.Category != world.CategoryRoof {
		return Outcome{}, fmt.Errorf("build %s at (%d,%d): %w", id, x, y, ErrRoofOnly)
	}
	if def.CanPlant {
		if crop == "" {
			crop = cat.DefaultCrop
		}
		if _, ok := cat.Crop(crop); !ok {
			return Outcome{}, fmt.Errorf("build %s with %q: %w", id, crop, ErrUnknownCrop)
		}
	}
	cost := mods.ConstructionCost(def)
	if cost > budget {
		return Outcome{}, fmt.Errorf("build %s costs %.0f, budget %.0f: %w", id, cost, budget, ErrInsufficientFunds)
	}

	t.Clear()
	t.Building = id
	t.DisabledDays = 0
	if def.CanPlant {
		t.Crop = crop
	}
	return Outcome{
		Mode:    ModeBuild,
		Tile:    *t,
		Cost:    cost,
		Message: fmt.Sprintf("Built %s at (%d,%d)", def.Label, x, y),
	}, nil
}

// Plant replaces the crop on a plantable tile and restarts its growth.
func Plant(g *world.Grid, cat *catalog.Catalog, x, y int, crop catalog.CropID) (Outcome, error) {
	t := g.At(x, y)
	if t == nil {
		return Outcome{}, fmt.Errorf("plant at (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	if t.Empty() {
		return Outcome{}, fmt.Errorf("plant at (%d,%d): %w", x, y, ErrEmptyTile)
	}
	if !cat.CanPlant(t.Building) {
		return Outcome{}, fmt.Errorf("plant on %s: %w", t.Building, ErrNotPlantable)
	}
	c, ok := cat.Crop(crop)
	if !ok {
		return Outcome{}, fmt.Errorf("plant %q: %w", crop, ErrUnknownCrop)
	}

	t.Crop = crop
	t.Progress = 0
	return Outcome{
		Mode:    ModePlant,
		Tile:    *t,
		Message: fmt.Sprintf("Planted %s at (%d,%d)", c.Name, x, y),
	}, nil
}

// Demolish clears (x, y) and refunds refundFraction of what the building
// costs under mods, so a refund never exceeds the price paid. Unknown
// building ids are cleared without a refund.
func Demolish(g *world.Grid, cat *catalog.Catalog, mods city.Modifiers, x, y int, refundFraction float64) (Outcome, error) {
	t := g.At(x, y)
	if t == nil {
		return Outcome{}, fmt.Errorf("demolish at (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	if t.Empty() {
		return Outcome{}, fmt.Errorf("demolish at (%d,%d): %w", x, y, ErrEmptyTile)
	}

	label := string(t.Building)
	refund := 0.0
	if def, ok := cat.Building(t.Building); ok {
		label = def.Label
		refund = mods.ConstructionCost(def) * min(max(refundFraction, 0), 1)
	}

	t.Clear()
	t.DisabledDays = 0
	return Outcome{
		Mode:    ModeDemolish,
		Tile:    *t,
		Refund:  refund,
		Message: fmt.Sprintf("Demolished %s at (%d,%d)", label, x, y),
	}, nil
}

// TileInfo is the read-only inspect view of a tile.
type TileInfo struct {
	Tile          world.Tile `json:"tile"`
	Label         string     `json:"label"`
	CropName      string     `json:"crop_name,omitempty"`
	DaysToHarvest int        `json:"days_to_harvest,omitempty"`
	Disabled      bool       `json:"disabled"`
	Known         bool       `json:"known"`
}

// Inspect describes (x, y) without changing it.
func Inspect(g *world.Grid, cat *catalog.Catalog, x, y int) (TileInfo, error) {
	t := g.At(x, y)
	if t == nil {
		return TileInfo{}, fmt.Errorf("inspect (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	info := TileInfo{Tile: *t, Label: string(t.Building), Disabled: t.DisabledDays > 0}
	def, ok := cat.Building(t.Building)
	if !ok {
		return info, nil
	}
	info.Known = true
	info.Label = def.Label
	if !def.CanPlant {
		return info, nil
	}
	crop, ok := cat.Crop(t.Crop)
	if !ok {
		return info, nil
	}
	info.CropName = crop.Name
	if mult, ok := cat.Method(def.Method); ok && mult.Yield > 0 {
		perDay := mult.Yield / float64(crop.CycleDays)
		remaining := (1 - t.Progress) / perDay
		info.DaysToHarvest = int(remaining)
		if float64(info.DaysToHarvest) < remaining-1e-9 {
			info.DaysToHarvest++
		}
	}
	return info, nil
}
