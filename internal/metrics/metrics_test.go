package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/foodcity/internal/catalog"
	"github.com/talgya/foodcity/internal/economy"
	"github.com/talgya/foodcity/internal/engine"
	"github.com/talgya/foodcity/internal/weather"
	"github.com/talgya/foodcity/internal/world"
)

func snapshot() *engine.State {
	st := engine.NewState(world.NewGrid(2, 2), engine.DefaultParams())
	st.Day = 4
	st.Ratio = 0.3
	st.Inventory = economy.Inventory{"selada": 10, "tomat": 5}
	return st
}

func TestObserveDay(t *testing.T) {
	r := NewRecorder()
	rep := &engine.DayReport{
		Day:          3,
		Production:   map[catalog.CropID]float64{"selada": 12.5, "tomat": 0},
		Harvests:     2,
		Dispatched:   9,
		DailyRatio:   0.5,
		RollingRatio: 0.25,
		Spawned:      &weather.Event{Kind: weather.Flood, DaysLeft: 3},
	}

	r.Observe(snapshot(), rep)
	r.Observe(snapshot(), rep)

	assert.Equal(t, 4.0, testutil.ToFloat64(r.day))
	assert.Equal(t, 15.0, testutil.ToFloat64(r.inventory))
	assert.Equal(t, 0.3, testutil.ToFloat64(r.ratio.WithLabelValues("current")))
	assert.Equal(t, 0.25, testutil.ToFloat64(r.ratio.WithLabelValues("rolling")))
	assert.Equal(t, 25.0, testutil.ToFloat64(r.produced.WithLabelValues("selada")))
	assert.Equal(t, 18.0, testutil.ToFloat64(r.dispatched))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.harvests))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.weather.WithLabelValues("FLOOD")))
	assert.Zero(t, testutil.ToFloat64(r.actions))

	// Zero production never creates a series.
	assert.Equal(t, 1, testutil.CollectAndCount(r.produced))
}

func TestObserveAction(t *testing.T) {
	r := NewRecorder()
	r.Observe(snapshot(), nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.actions))
	assert.Zero(t, testutil.ToFloat64(r.dispatched))
	assert.Equal(t, 0, testutil.CollectAndCount(r.weather))
}

func TestRegistryGathers(t *testing.T) {
	r := NewRecorder()
	r.Observe(snapshot(), &engine.DayReport{})

	families, err := r.Registry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "foodcity_sim_budget_idr")
	assert.Contains(t, names, "foodcity_sim_self_sufficiency_ratio")
}
