// Package config loads the city's settings from a YAML file, the
// environment and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/talgya/foodcity/internal/catalog"
	"github.com/talgya/foodcity/internal/city"
	"github.com/talgya/foodcity/internal/economy"
	"github.com/talgya/foodcity/internal/engine"
	"github.com/talgya/foodcity/internal/weather"
	"github.com/talgya/foodcity/internal/world"
)

// EnvPrefix is prepended to every environment override, e.g.
// KPM_SIMULATION_SEED or KPM_ECONOMY_POPULATION.
const EnvPrefix = "KPM"

// Config is the main configuration struct combining all sub-configs.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Grid       GridConfig       `mapstructure:"grid"`
	Economy    economy.Params   `mapstructure:"economy"`
	Weather    weather.Config   `mapstructure:"weather"`
	Policy     city.Policy      `mapstructure:"policy"`
	Database   DatabaseConfig   `mapstructure:"database"`
	API        APIConfig        `mapstructure:"api"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
}

// SimulationConfig drives the daily step and the ticker.
type SimulationConfig struct {
	Seed             uint64           `mapstructure:"seed"` // 0 draws a random seed
	TickInterval     time.Duration    `mapstructure:"tick_interval" validate:"gt=0"`
	Speed            int              `mapstructure:"speed" validate:"oneof=0 1 2 4"`
	RatioMode        engine.RatioMode `mapstructure:"ratio_mode" validate:"oneof=daily rolling"`
	RatioWindowDays  int              `mapstructure:"ratio_window_days" validate:"gte=1"`
	HistoryRetention int              `mapstructure:"history_retention_days" validate:"gtefield=RatioWindowDays"`
	RefundFraction   float64          `mapstructure:"refund_fraction" validate:"gte=0,lte=1"`
	DedupeWeather    bool             `mapstructure:"dedupe_weather"`
}

// GridConfig sizes a freshly generated city.
type GridConfig struct {
	Width        int     `mapstructure:"width" validate:"gte=1,lte=200"`
	Height       int     `mapstructure:"height" validate:"gte=1,lte=200"`
	RoofFraction float64 `mapstructure:"roof_fraction" validate:"gte=0,lte=1"`
}

// DatabaseConfig locates the save file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// APIConfig holds the HTTP surface settings.
type APIConfig struct {
	Port          int      `mapstructure:"port" validate:"min=1,max=65535"`
	RatePerSecond float64  `mapstructure:"rate_per_second" validate:"gt=0"`
	Burst         int      `mapstructure:"burst" validate:"gte=1"`
	CORSOrigins   []string `mapstructure:"cors_origins"`
	AdminKey      string   `mapstructure:"admin_key"` // Bearer token for POST endpoints
}

// CatalogConfig optionally replaces the built-in tables.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// LoadConfig loads configuration from multiple sources with priority:
// environment, then config file, then defaults.
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/foodcity")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	SetDefaults(&cfg)
	cfg.Weather.Dedupe = cfg.Simulation.DedupeWeather

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// EngineParams converts the settings into step parameters.
func (c *Config) EngineParams() engine.Params {
	w := c.Weather
	w.Dedupe = c.Simulation.DedupeWeather
	return engine.Params{
		Economy:          c.Economy,
		Weather:          w,
		Policy:           c.Policy,
		RatioMode:        c.Simulation.RatioMode,
		RatioWindow:      c.Simulation.RatioWindowDays,
		HistoryRetention: c.Simulation.HistoryRetention,
		RefundFraction:   c.Simulation.RefundFraction,
	}
}

// GenConfig converts the grid settings into generator input.
func (c *Config) GenConfig() world.GenConfig {
	g := world.DefaultGenConfig()
	g.Width = c.Grid.Width
	g.Height = c.Grid.Height
	g.RoofFraction = c.Grid.RoofFraction
	g.Seed = int64(c.Simulation.Seed & math.MaxInt64)
	return g
}

// LoadCatalog returns the configured tables, or the built-in ones.
func (c *Config) LoadCatalog() (*catalog.Catalog, error) {
	if c.Catalog.Path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(c.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", c.Catalog.Path, err)
	}
	return cat, nil
}
