package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Speeds the player can pick. 0 pauses.
var Speeds = []int{0, 1, 2, 4}

// ErrInvalidSpeed is returned for a speed outside Speeds.
var ErrInvalidSpeed = errors.New("invalid speed")

// Engine drives the simulation forward, one day per tick.
type Engine struct {
	Interval time.Duration // Tick interval at speed 1

	// OnDay runs once per tick on the engine goroutine. A slow OnDay delays
	// the next tick; ticks never overlap.
	OnDay func()

	mu      sync.Mutex
	speed   int
	running bool
	wake    chan struct{}
}

// NewEngine creates an engine at speed 1.
func NewEngine(interval time.Duration) *Engine {
	if interval <= 0 {
		interval = time.Second
	}
	return &Engine{
		Interval: interval,
		speed:    1,
		wake:     make(chan struct{}, 1),
	}
}

// Speed returns the current multiplier.
func (e *Engine) Speed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// SetSpeed changes the multiplier; the running loop picks it up at once.
func (e *Engine) SetSpeed(speed int) error {
	valid := false
	for _, s := range Speeds {
		if s == speed {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("speed %d: %w", speed, ErrInvalidSpeed)
	}

	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
	slog.Info("simulation speed changed", "speed", speed)
	return nil
}

// period returns the wait until the next tick, or 0 when paused.
func (e *Engine) period() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.speed <= 0 {
		return 0
	}
	return e.Interval / time.Duration(e.speed)
}

// Run starts the simulation loop. Blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	slog.Info("simulation engine started", "speed", e.Speed(), "interval", e.Interval)

	for {
		wait := e.period()
		if wait == 0 {
			// Paused: sleep until the speed changes.
			select {
			case <-ctx.Done():
				slog.Info("simulation engine stopped")
				return
			case <-e.wake:
				continue
			}
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("simulation engine stopped")
			return
		case <-e.wake:
			timer.Stop()
			continue
		case <-timer.C:
		}

		if e.OnDay != nil {
			e.OnDay()
		}
	}
}
