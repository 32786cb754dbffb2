package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineTicksUntilCancelled(t *testing.T) {
	e := NewEngine(5 * time.Millisecond)
	var days atomic.Int32
	e.OnDay = func() { days.Add(1) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return days.Load() >= 3 }, time.Second, time.Millisecond)
	assert.True(t, e.Running())
	cancel()
	<-done
	assert.False(t, e.Running())
}

func TestEngineTicksNeverOverlap(t *testing.T) {
	e := NewEngine(time.Millisecond)
	var inFlight, maxInFlight, days atomic.Int32
	e.OnDay = func() {
		n := inFlight.Add(1)
		if n > maxInFlight.Load() {
			maxInFlight.Store(n)
		}
		time.Sleep(3 * time.Millisecond)
		inFlight.Add(-1)
		days.Add(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go e.Run(ctx)
	require.Eventually(t, func() bool { return days.Load() >= 5 }, 2*time.Second, time.Millisecond)
	cancel()

	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestEnginePauseAndResume(t *testing.T) {
	e := NewEngine(2 * time.Millisecond)
	require.NoError(t, e.SetSpeed(0))

	var days atomic.Int32
	e.OnDay = func() { days.Add(1) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, days.Load())

	require.NoError(t, e.SetSpeed(4))
	require.Eventually(t, func() bool { return days.Load() > 0 }, time.Second, time.Millisecond)
}

func TestSetSpeedValidation(t *testing.T) {
	e := NewEngine(time.Second)
	for _, s := range []int{0, 1, 2, 4} {
		assert.NoError(t, e.SetSpeed(s))
		assert.Equal(t, s, e.Speed())
	}
	assert.ErrorIs(t, e.SetSpeed(3), ErrInvalidSpeed)
	assert.ErrorIs(t, e.SetSpeed(-1), ErrInvalidSpeed)
	assert.Equal(t, 4, e.Speed())
}

func TestPeriodScalesWithSpeed(t *testing.T) {
	e := NewEngine(800 * time.Millisecond)
	assert.Equal(t, 800*time.Millisecond, e.period())
	require.NoError(t, e.SetSpeed(4))
	assert.Equal(t, 200*time.Millisecond, e.period())
	require.NoError(t, e.SetSpeed(0))
	assert.Zero(t, e.period())
}
