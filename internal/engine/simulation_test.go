package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/foodcity/internal/action"
	"github.com/talgya/foodcity/internal/catalog"
	"github.com/talgya/foodcity/internal/tutorial"
	"github.com/talgya/foodcity/internal/world"
)

func newTestSim(t *testing.T, p Params) *Simulation {
	t.Helper()
	cfg := world.DefaultGenConfig()
	cfg.Seed = 21
	st := NewState(world.Generate(cfg, catalog.Default()), p)
	return NewSimulation(st, catalog.Default(), p, rng(21))
}

func firstTile(g *world.Grid, cat world.Category) (int, int) {
	for _, t := range g.Tiles {
		if t.Empty() && t.Category == cat {
			return t.X, t.Y
		}
	}
	return -1, -1
}

func TestSimulationBuildChargesBudget(t *testing.T) {
	sim := newTestSim(t, calm())
	before := sim.Snapshot()
	x, y := firstTile(before.Grid, world.CategoryLand)

	out, err := sim.Build(x, y, catalog.BuildingColdHub, "")
	require.NoError(t, err)

	after := sim.Snapshot()
	assert.InDelta(t, before.Budget-out.Cost, after.Budget, 1e-6)
	assert.Equal(t, catalog.BuildingColdHub, after.Grid.At(x, y).Building)

	msgs := sim.Messages()
	require.NotEmpty(t, msgs)
	assert.Equal(t, "build", msgs[len(msgs)-1].Category)
}

func TestSimulationRejectedBuildLeavesState(t *testing.T) {
	sim := newTestSim(t, calm())
	before := sim.Snapshot()

	_, err := sim.Build(15, 1, catalog.BuildingSolar, "")
	assert.ErrorIs(t, err, action.ErrOccupied)

	x, y := firstTile(before.Grid, world.CategoryLand)
	_, err = sim.Build(x, y, catalog.BuildingVerticalFarm, "")
	assert.ErrorIs(t, err, action.ErrRoofOnly)

	assert.Equal(t, before, sim.Snapshot())
	msgs := sim.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "rejected", msgs[0].Category)
}

func TestSimulationInsufficientFunds(t *testing.T) {
	p := calm()
	p.Economy.StartBudget = 1_000
	sim := newTestSim(t, p)
	x, y := firstTile(sim.Snapshot().Grid, world.CategoryLand)

	_, err := sim.Build(x, y, catalog.BuildingMarket, "")
	assert.ErrorIs(t, err, action.ErrInsufficientFunds)
}

func TestSimulationDemolishRefund(t *testing.T) {
	p := calm()
	p.RefundFraction = 0.4
	sim := newTestSim(t, p)
	before := sim.Snapshot()

	out, err := sim.Demolish(15, 1)
	require.NoError(t, err)
	market, _ := catalog.Default().Building(catalog.BuildingMarket)
	assert.InDelta(t, market.Cost*0.4, out.Refund, 1e-6)
	assert.InDelta(t, before.Budget+market.Cost*0.4, sim.Snapshot().Budget, 1e-6)
	assert.True(t, sim.Snapshot().Grid.At(15, 1).Empty())
}

func TestSimulationRoofRebuildCycleIsNotProfitable(t *testing.T) {
	p := calm()
	p.RefundFraction = 1
	p.Policy.RooftopIncentive = true
	sim := newTestSim(t, p)
	before := sim.Snapshot()
	x, y := firstTile(before.Grid, world.CategoryRoof)
	require.GreaterOrEqual(t, x, 0)

	built, err := sim.Build(x, y, catalog.BuildingRoofGarden, "")
	require.NoError(t, err)
	razed, err := sim.Demolish(x, y)
	require.NoError(t, err)

	assert.InDelta(t, built.Cost, razed.Refund, 1e-6)
	assert.InDelta(t, before.Budget, sim.Snapshot().Budget, 1e-6)
}

func TestSimulationObservers(t *testing.T) {
	sim := newTestSim(t, calm())

	var (
		mu      sync.Mutex
		days    []int
		actions int
	)
	sim.Subscribe(func(snap *State, rep *DayReport) {
		mu.Lock()
		defer mu.Unlock()
		if rep == nil {
			actions++
			return
		}
		days = append(days, rep.Day)
		assert.Equal(t, rep.Day+1, snap.Day)
	})

	sim.AdvanceDay()
	sim.AdvanceDay()
	_, err := sim.Plant(3, 2, "kangkung")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2}, days)
	assert.Equal(t, 1, actions)
}

func TestSimulationSnapshotIsolated(t *testing.T) {
	sim := newTestSim(t, calm())
	snap := sim.Snapshot()
	snap.Budget = -1
	snap.Grid.At(3, 2).Building = catalog.BuildingEmpty

	fresh := sim.Snapshot()
	assert.NotEqual(t, -1.0, fresh.Budget)
	assert.Equal(t, catalog.BuildingCommunityGarden, fresh.Grid.At(3, 2).Building)
}

func TestSimulationSummaryAndTutorial(t *testing.T) {
	sim := newTestSim(t, calm())
	for i := 0; i < 10; i++ {
		sim.AdvanceDay()
	}

	sum := sim.Summary()
	assert.Equal(t, 11, sum.Day)
	assert.Equal(t, RatioRolling, sum.RatioMode)
	assert.InDelta(t, 1200.0, sum.Modifiers.MarketCapacity, 1e-9)
	assert.GreaterOrEqual(t, sum.AvgProduction7d, 0.0)

	rep, ok := sim.LastReport()
	require.True(t, ok)
	assert.Equal(t, 10, rep.Day)

	list := sim.Tutorial()
	assert.True(t, list.Steps[0].Done)
	assert.Equal(t, tutorial.BuildGarden, list.Steps[0].ID)
}

func TestSimulationReset(t *testing.T) {
	sim := newTestSim(t, calm())
	sim.AdvanceDay()

	fresh := NewState(world.NewGrid(4, 4), calm())
	sim.Reset(fresh)

	snap := sim.Snapshot()
	assert.Equal(t, 1, snap.Day)
	assert.Equal(t, 4, snap.Grid.Width)
	_, ok := sim.LastReport()
	assert.False(t, ok)
	msgs := sim.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "system", msgs[0].Category)
}

func TestMessageRingBounded(t *testing.T) {
	sim := newTestSim(t, calm())
	for i := 0; i < MaxMessages+10; i++ {
		_, _ = sim.Demolish(0, 0) // empty tile, rejected and logged
	}
	assert.Len(t, sim.Messages(), MaxMessages)
}

func TestConcurrentAdvanceAndRead(t *testing.T) {
	sim := newTestSim(t, DefaultParams())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			sim.AdvanceDay()
		}
	}()
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			_ = sim.Summary()
			_ = sim.Snapshot()
			if sim.Snapshot().Day > 50 {
				return
			}
		}
	}()
	wg.Wait()
	assert.Equal(t, 51, sim.Snapshot().Day)
}
