package weather

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestAdvanceAgesAndExpires(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DailyChance = 0

	in := []Event{{Kind: Heatwave, DaysLeft: 1}, {Kind: Flood, DaysLeft: 3}}
	next, spawned := Advance(in, cfg, seeded(1))

	assert.Nil(t, spawned)
	require.Len(t, next, 1)
	assert.Equal(t, Event{Kind: Flood, DaysLeft: 2}, next[0])
	assert.Equal(t, 1, in[0].DaysLeft, "input must not be modified")
}

func TestAdvanceSpawnDurations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DailyChance = 1
	cfg.Dedupe = false
	rng := seeded(9)

	seen := map[Kind]bool{}
	for i := 0; i < 500; i++ {
		_, ev := Advance(nil, cfg, rng)
		require.NotNil(t, ev)
		seen[ev.Kind] = true
		switch ev.Kind {
		case Heatwave:
			assert.GreaterOrEqual(t, ev.DaysLeft, 3)
			assert.LessOrEqual(t, ev.DaysLeft, 5)
		case Flood:
			assert.GreaterOrEqual(t, ev.DaysLeft, 2)
			assert.LessOrEqual(t, ev.DaysLeft, 3)
		default:
			t.Fatalf("unexpected kind %q", ev.Kind)
		}
	}
	assert.True(t, seen[Heatwave])
	assert.True(t, seen[Flood])
}

func TestAdvanceNeverSpawnsAtZeroChance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DailyChance = 0
	rng := seeded(3)

	var events []Event
	for i := 0; i < 200; i++ {
		var ev *Event
		events, ev = Advance(events, cfg, rng)
		assert.Nil(t, ev)
	}
	assert.Empty(t, events)
}

func TestDedupeKeepsOnePerKind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DailyChance = 1
	rng := seeded(11)

	var events []Event
	for i := 0; i < 50; i++ {
		events, _ = Advance(events, cfg, rng)
		counts := map[Kind]int{}
		for _, ev := range events {
			counts[ev.Kind]++
			assert.Positive(t, ev.DaysLeft)
		}
		assert.LessOrEqual(t, counts[Heatwave], 1)
		assert.LessOrEqual(t, counts[Flood], 1)
	}
}

func TestWithoutDedupeEventsStack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DailyChance = 1
	cfg.Dedupe = false
	rng := seeded(11)

	var events []Event
	most := 0
	for i := 0; i < 30; i++ {
		events, _ = Advance(events, cfg, rng)
		counts := map[Kind]int{}
		for _, ev := range events {
			counts[ev.Kind]++
			most = max(most, counts[ev.Kind])
		}
	}
	assert.GreaterOrEqual(t, most, 2, "same-kind events never overlapped")
}

func TestDedupeExtensionIsNotASpawn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DailyChance = 1
	rng := seeded(5)

	var events []Event
	extended := 0
	for i := 0; i < 60; i++ {
		survivors := map[Kind]bool{}
		for _, ev := range events {
			if ev.DaysLeft > 1 {
				survivors[ev.Kind] = true
			}
		}

		var spawned *Event
		events, spawned = Advance(events, cfg, rng)
		if spawned == nil {
			extended++
			continue
		}
		assert.False(t, survivors[spawned.Kind], "day %d: %s reported as new while still active", i, spawned.Kind)
	}
	assert.Positive(t, extended)
}

func TestAdvanceIsReproducible(t *testing.T) {
	cfg := DefaultConfig()
	run := func() []Event {
		rng := seeded(77)
		var events, log []Event
		for i := 0; i < 365; i++ {
			var ev *Event
			events, ev = Advance(events, cfg, rng)
			if ev != nil {
				log = append(log, *ev)
			}
		}
		return log
	}
	assert.Equal(t, run(), run())
}

func TestEffectsOf(t *testing.T) {
	assert.Equal(t, Effects{}, EffectsOf(nil))
	assert.False(t, EffectsOf(nil).Any())

	fx := EffectsOf([]Event{{Kind: Heatwave, DaysLeft: 2}, {Kind: Heatwave, DaysLeft: 4}})
	assert.Equal(t, Effects{Heatwave: true}, fx)

	fx = EffectsOf([]Event{{Kind: Flood, DaysLeft: 1}, {Kind: Heatwave, DaysLeft: 0}})
	assert.Equal(t, Effects{Flood: true}, fx)
	assert.True(t, fx.Any())
}

func TestDescribe(t *testing.T) {
	assert.Contains(t, Describe(Event{Kind: Flood, DaysLeft: 2}), "Flood for 2 days")
	assert.Contains(t, Describe(Event{Kind: Heatwave, DaysLeft: 4}), "Heatwave for 4 days")
}
