// Package weather spawns and retires the transient city weather events.
// Events are drawn from an injected random source so a seeded run replays
// the same weather.
package weather

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
)

// Kind tags a weather event type.
type Kind string

const (
	Heatwave Kind = "HEATWAVE"
	Flood    Kind = "FLOOD"
)

// Event is one active weather event.
type Event struct {
	Kind     Kind `json:"type"`
	DaysLeft int  `json:"daysLeft"`
}

func (e Event) String() string {
	return fmt.Sprintf("%s(%dd)", e.Kind, e.DaysLeft)
}

// Config holds the generator parameters.
type Config struct {
	DailyChance     float64 `mapstructure:"daily_chance" validate:"gte=0,lte=1"`
	HeatwaveMinDays int     `mapstructure:"heatwave_min_days" validate:"gte=1"`
	HeatwaveMaxDays int     `mapstructure:"heatwave_max_days" validate:"gtefield=HeatwaveMinDays"`
	FloodMinDays    int     `mapstructure:"flood_min_days" validate:"gte=1"`
	FloodMaxDays    int     `mapstructure:"flood_max_days" validate:"gtefield=FloodMinDays"`

	// Dedupe extends an already-active event of the same kind instead of
	// appending a second one.
	Dedupe bool `mapstructure:"-"`
}

// DefaultConfig returns the standard 6% daily chance with
// 3–5 day heatwaves and 2–3 day floods.
func DefaultConfig() Config {
	return Config{
		DailyChance:     0.06,
		HeatwaveMinDays: 3,
		HeatwaveMaxDays: 5,
		FloodMinDays:    2,
		FloodMaxDays:    3,
		Dedupe:          true,
	}
}

// Effects is what the daily step needs to know about the active events.
type Effects struct {
	Heatwave bool `json:"heatwave"`
	Flood    bool `json:"flood"`
}

// Any reports whether any event is in effect.
func (e Effects) Any() bool { return e.Heatwave || e.Flood }

// EffectsOf folds an event list into booleans. Stacked events of one kind
// have no extra effect.
func EffectsOf(events []Event) Effects {
	var fx Effects
	for _, ev := range events {
		if ev.DaysLeft <= 0 {
			continue
		}
		switch ev.Kind {
		case Heatwave:
			fx.Heatwave = true
		case Flood:
			fx.Flood = true
		}
	}
	return fx
}

// Advance ages every event by one day, drops the expired ones, and rolls for
// a new event. The input slice is not modified. spawned is nil when nothing
// new started today, including when dedupe only extended an active event.
func Advance(events []Event, cfg Config, rng *rand.Rand) (next []Event, spawned *Event) {
	next = make([]Event, 0, len(events)+1)
	for _, ev := range events {
		ev.DaysLeft--
		if ev.DaysLeft > 0 {
			next = append(next, ev)
		}
	}

	if rng.Float64() >= cfg.DailyChance {
		return next, nil
	}

	var ev Event
	if rng.Float64() < 0.5 {
		ev = Event{Kind: Heatwave, DaysLeft: between(rng, cfg.HeatwaveMinDays, cfg.HeatwaveMaxDays)}
	} else {
		ev = Event{Kind: Flood, DaysLeft: between(rng, cfg.FloodMinDays, cfg.FloodMaxDays)}
	}

	if cfg.Dedupe {
		for i := range next {
			if next[i].Kind == ev.Kind {
				next[i].DaysLeft = max(next[i].DaysLeft, ev.DaysLeft)
				slog.Debug("weather event extended", "kind", ev.Kind, "days_left", next[i].DaysLeft)
				return next, nil
			}
		}
	}

	next = append(next, ev)
	return next, &next[len(next)-1]
}

// between draws uniformly from [lo, hi].
func between(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}

// Describe returns a short player-facing line for an event.
func Describe(ev Event) string {
	switch ev.Kind {
	case Heatwave:
		return fmt.Sprintf("Heatwave for %d days: growth slows, water and vertical-farm energy rise", ev.DaysLeft)
	case Flood:
		return fmt.Sprintf("Flood for %d days: land community gardens are shut", ev.DaysLeft)
	default:
		return fmt.Sprintf("%s for %d days", ev.Kind, ev.DaysLeft)
	}
}
