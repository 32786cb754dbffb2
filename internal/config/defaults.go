package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/talgya/foodcity/internal/economy"
	"github.com/talgya/foodcity/internal/engine"
	"github.com/talgya/foodcity/internal/tuning"
	"github.com/talgya/foodcity/internal/weather"
)

// Default returns the standard configuration.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickInterval:     time.Second,
			Speed:            1,
			RatioMode:        engine.RatioRolling,
			RatioWindowDays:  tuning.RatioWindowDays,
			HistoryRetention: tuning.HistoryRetentionDays,
			DedupeWeather:    true,
		},
		Grid: GridConfig{
			Width:        20,
			Height:       12,
			RoofFraction: 0.3,
		},
		Economy: economy.DefaultParams(),
		Weather: weather.DefaultConfig(),
		Database: DatabaseConfig{
			Path: "data/foodcity.db",
		},
		API: APIConfig{
			Port:          8080,
			RatePerSecond: 20,
			Burst:         40,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// registerDefaults seeds viper with every key so that explicit zeros in a
// file or the environment win over defaults, and AutomaticEnv can see them.
func registerDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("simulation.seed", d.Simulation.Seed)
	v.SetDefault("simulation.tick_interval", d.Simulation.TickInterval)
	v.SetDefault("simulation.speed", d.Simulation.Speed)
	v.SetDefault("simulation.ratio_mode", string(d.Simulation.RatioMode))
	v.SetDefault("simulation.ratio_window_days", d.Simulation.RatioWindowDays)
	v.SetDefault("simulation.history_retention_days", d.Simulation.HistoryRetention)
	v.SetDefault("simulation.refund_fraction", d.Simulation.RefundFraction)
	v.SetDefault("simulation.dedupe_weather", d.Simulation.DedupeWeather)

	v.SetDefault("grid.width", d.Grid.Width)
	v.SetDefault("grid.height", d.Grid.Height)
	v.SetDefault("grid.roof_fraction", d.Grid.RoofFraction)

	v.SetDefault("economy.start_budget", d.Economy.StartBudget)
	v.SetDefault("economy.population", d.Economy.Population)
	v.SetDefault("economy.demand_per_capita_kg", d.Economy.DemandPerCapitaKg)
	v.SetDefault("economy.base_local_preference", d.Economy.BaseLocalPreference)
	v.SetDefault("economy.water_price_per_m3", d.Economy.WaterPricePerM3)
	v.SetDefault("economy.energy_price_per_kwh", d.Economy.EnergyPricePerKWh)
	v.SetDefault("economy.emission_factor_kg_per_kwh", d.Economy.EmissionFactorPerKWh)
	v.SetDefault("economy.wage_per_worker", d.Economy.WagePerWorker)
	v.SetDefault("economy.daily_overhead", d.Economy.DailyOverhead)
	v.SetDefault("economy.fallback_price", d.Economy.FallbackPricePerKg)

	v.SetDefault("weather.daily_chance", d.Weather.DailyChance)
	v.SetDefault("weather.heatwave_min_days", d.Weather.HeatwaveMinDays)
	v.SetDefault("weather.heatwave_max_days", d.Weather.HeatwaveMaxDays)
	v.SetDefault("weather.flood_min_days", d.Weather.FloodMinDays)
	v.SetDefault("weather.flood_max_days", d.Weather.FloodMaxDays)

	v.SetDefault("policy.rooftop_incentive", d.Policy.RooftopIncentive)
	v.SetDefault("policy.source_separation", d.Policy.SourceSeparation)

	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("api.port", d.API.Port)
	v.SetDefault("api.rate_per_second", d.API.RatePerSecond)
	v.SetDefault("api.burst", d.API.Burst)
	v.SetDefault("api.admin_key", d.API.AdminKey)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("catalog.path", d.Catalog.Path)
}

// SetDefaults fills fields whose zero value is never meaningful.
func SetDefaults(cfg *Config) {
	d := Default()

	if cfg.Simulation.TickInterval == 0 {
		cfg.Simulation.TickInterval = d.Simulation.TickInterval
	}
	if cfg.Simulation.RatioMode == "" {
		cfg.Simulation.RatioMode = d.Simulation.RatioMode
	}
	if cfg.Simulation.RatioWindowDays == 0 {
		cfg.Simulation.RatioWindowDays = d.Simulation.RatioWindowDays
	}
	if cfg.Simulation.HistoryRetention == 0 {
		cfg.Simulation.HistoryRetention = d.Simulation.HistoryRetention
	}
	if cfg.Grid.Width == 0 {
		cfg.Grid.Width = d.Grid.Width
	}
	if cfg.Grid.Height == 0 {
		cfg.Grid.Height = d.Grid.Height
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = d.Database.Path
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = d.API.Port
	}
	if cfg.API.RatePerSecond == 0 {
		cfg.API.RatePerSecond = d.API.RatePerSecond
	}
	if cfg.API.Burst == 0 {
		cfg.API.Burst = d.API.Burst
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = d.Logging.Format
	}
}
