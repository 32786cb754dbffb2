// Package tutorial derives the onboarding checklist. Evaluate only reads its
// inputs; completing a step never changes the simulation.
package tutorial

import (
	"github.com/talgya/foodcity/internal/catalog"
	"github.com/talgya/foodcity/internal/weather"
	"github.com/talgya/foodcity/internal/world"
)

// RatioGoal is the self-sufficiency the psi25 step asks for.
const RatioGoal = 0.25

// StepID names a checklist step.
type StepID string

const (
	BuildGarden  StepID = "build_cg"
	BuildRain    StepID = "build_rain"
	PlantFast    StepID = "plant_fast"
	BuildMarket  StepID = "market"
	ReachRatio   StepID = "psi25"
	BuildCold    StepID = "cold"
	SurviveEvent StepID = "survive_event"
)

// Step is one checklist line.
type Step struct {
	ID    StepID `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// Checklist is the ordered onboarding list.
type Checklist struct {
	Steps    []Step `json:"steps"`
	Complete int    `json:"complete"`
}

// AllDone reports whether every step is complete.
func (c Checklist) AllDone() bool {
	return c.Complete == len(c.Steps)
}

// Evaluate checks every step against the grid, the selected ratio and the
// active weather.
func Evaluate(g *world.Grid, cat *catalog.Catalog, ratio float64, events []weather.Event) Checklist {
	census := g.Census()

	fastPlanted := false
	for _, t := range g.Tiles {
		if !t.Empty() && cat.CanPlant(t.Building) && cat.IsFast(t.Crop) {
			fastPlanted = true
			break
		}
	}

	steps := []Step{
		{ID: BuildGarden, Title: "Build a community garden", Done: census[catalog.BuildingCommunityGarden] > 0},
		{ID: BuildRain, Title: "Add a rain tank", Done: census[catalog.BuildingRainTank] > 0},
		{ID: PlantFast, Title: "Plant a fast crop (kangkung or pakcoy)", Done: fastPlanted},
		{ID: BuildMarket, Title: "Open a local market", Done: census[catalog.BuildingMarket] > 0},
		{ID: ReachRatio, Title: "Reach 25% self-sufficiency", Done: ratio >= RatioGoal},
		{ID: BuildCold, Title: "Build a cold hub", Done: census[catalog.BuildingColdHub] > 0},
		{ID: SurviveEvent, Title: "Weather a heatwave or flood", Done: len(events) > 0},
	}

	done := 0
	for _, s := range steps {
		if s.Done {
			done++
		}
	}
	return Checklist{Steps: steps, Complete: done}
}
