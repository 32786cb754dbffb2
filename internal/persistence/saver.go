package persistence

import (
	"context"
	"log/slog"

	"github.com/talgya/foodcity/internal/engine"
)

// Saver writes snapshots in the background. Only the newest pending
// snapshot is kept; an older one still waiting is dropped.
type Saver struct {
	db      *DB
	pending chan *engine.State
	done    chan struct{}
}

// NewSaver creates a saver for db. Start it with Run.
func NewSaver(db *DB) *Saver {
	return &Saver{
		db:      db,
		pending: make(chan *engine.State, 1),
		done:    make(chan struct{}),
	}
}

// Observe matches engine.Observer, so the saver can subscribe directly.
func (s *Saver) Observe(snap *engine.State, _ *engine.DayReport) {
	s.Enqueue(snap)
}

// Enqueue schedules snap for saving without blocking.
func (s *Saver) Enqueue(snap *engine.State) {
	for {
		select {
		case s.pending <- snap:
			return
		default:
		}
		// Slot taken: drop the stale snapshot and retry.
		select {
		case <-s.pending:
		default:
		}
	}
}

// Run saves snapshots until ctx is cancelled, then writes whatever is still
// pending and returns.
func (s *Saver) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case st := <-s.pending:
			s.save(st)
		case <-ctx.Done():
			select {
			case st := <-s.pending:
				s.save(st)
			default:
			}
			return
		}
	}
}

// Done is closed once Run has returned.
func (s *Saver) Done() <-chan struct{} { return s.done }

func (s *Saver) save(st *engine.State) {
	if err := SaveState(s.db, st); err != nil {
		slog.Error("failed to save city", "day", st.Day, "error", err)
		return
	}
	slog.Debug("city saved", "day", st.Day)
}
