// Package metrics exports the city's daily KPIs to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/talgya/foodcity/internal/engine"
)

const (
	namespace = "foodcity"
	subsystem = "sim"
)

// Recorder holds the city gauges and counters. It subscribes to a
// Simulation as an engine.Observer.
type Recorder struct {
	registry *prometheus.Registry

	day       prometheus.Gauge
	budget    prometheus.Gauge
	ratio     *prometheus.GaugeVec
	happiness prometheus.Gauge
	emissions prometheus.Gauge
	water     prometheus.Gauge
	energy    prometheus.Gauge
	inventory prometheus.Gauge

	produced   *prometheus.CounterVec
	dispatched prometheus.Counter
	harvests   prometheus.Counter
	weather    *prometheus.CounterVec
	actions    prometheus.Counter
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	})
}

// NewRecorder creates a recorder with its own registry and registers every
// metric on it.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry:  prometheus.NewRegistry(),
		day:       gauge("day", "Next day to simulate"),
		budget:    gauge("budget_idr", "City budget in IDR"),
		happiness: gauge("happiness", "Citizen happiness, 0 to 100"),
		emissions: gauge("emissions_tco2e", "Cumulative emissions in tCO2e"),
		water:     gauge("water_m3", "Latest daily water draw before offsets"),
		energy:    gauge("energy_kwh", "Latest daily energy draw before offsets"),
		inventory: gauge("inventory_kg", "Stored undelivered food"),

		ratio: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "self_sufficiency_ratio",
				Help:      "Self-sufficiency ratio by window",
			},
			[]string{"window"},
		),
		produced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "produced_kg_total",
				Help:      "Harvested food after losses, by crop",
			},
			[]string{"crop"},
		),
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dispatched_kg_total",
			Help:      "Food sold through the market",
		}),
		harvests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "harvests_total",
			Help:      "Tiles harvested",
		}),
		weather: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "weather_events_total",
				Help:      "Weather events spawned, by kind",
			},
			[]string{"kind"},
		),
		actions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "interventions_total",
			Help:      "Accepted player actions and resets",
		}),
	}

	r.registry.MustRegister(
		r.day, r.budget, r.ratio, r.happiness, r.emissions,
		r.water, r.energy, r.inventory,
		r.produced, r.dispatched, r.harvests, r.weather, r.actions,
	)
	return r
}

// Registry returns the registry the metrics live on.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe records a snapshot. Day counters only move when report is non-nil;
// a nil report marks a player action or reset.
func (r *Recorder) Observe(snap *engine.State, report *engine.DayReport) {
	if snap != nil {
		r.day.Set(float64(snap.Day))
		r.budget.Set(snap.Budget)
		r.ratio.WithLabelValues("current").Set(snap.Ratio)
		r.happiness.Set(snap.Happiness)
		r.emissions.Set(snap.Emissions)
		r.water.Set(snap.WaterM3)
		r.energy.Set(snap.EnergyKWh)
		r.inventory.Set(snap.Inventory.Total())
	}

	if report == nil {
		r.actions.Inc()
		return
	}
	r.ratio.WithLabelValues("daily").Set(report.DailyRatio)
	r.ratio.WithLabelValues("rolling").Set(report.RollingRatio)
	for crop, kg := range report.Production {
		if kg > 0 {
			r.produced.WithLabelValues(string(crop)).Add(kg)
		}
	}
	r.dispatched.Add(report.Dispatched)
	r.harvests.Add(float64(report.Harvests))
	if report.Spawned != nil {
		r.weather.WithLabelValues(string(report.Spawned.Kind)).Inc()
	}
}
