package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crewsched/backend/internal/models"
)

// Window tracks the currently visible calendar range and team filter and
// keeps the event list for that view.
//
// Every range or filter change takes a new generation number before its
// fetch starts; a fetch's result is applied only if its generation is still
// the newest when it resolves. A slower, older response can therefore never
// overwrite a newer one — supersession is decided by sequence, not by
// arrival order. In-flight fetches are not cancelled.
type Window struct {
	store  EventStore
	logger *zap.Logger

	mu         sync.Mutex
	start, end time.Time
	hasRange   bool
	teamFilter *uuid.UUID // nil = all teams
	gen        uint64
	inflight   int
	events     []models.EventWithProject

	// OnChange, when set, is invoked (outside the lock) with the new event
	// list each time a fetch result is applied.
	OnChange func([]models.EventWithProject)
}

// NewWindow creates a schedule window over the given event store.
func NewWindow(store EventStore, logger *zap.Logger) *Window {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Window{store: store, logger: logger}
}

// SetRange sets the visible range and fetches events for it. Returns the
// fetched events and whether the result was applied (false when a newer
// request superseded this one while it was in flight).
func (w *Window) SetRange(ctx context.Context, start, end time.Time) ([]models.EventWithProject, bool, error) {
	w.mu.Lock()
	w.start, w.end, w.hasRange = start, end, true
	team := w.teamFilter
	gen := w.nextGenLocked()
	w.mu.Unlock()

	return w.fetch(ctx, gen, start, end, team)
}

// SetTeamFilter sets the team filter (nil = all) and re-fetches the current
// range. With no range active the filter is stored and no fetch happens.
func (w *Window) SetTeamFilter(ctx context.Context, teamID *uuid.UUID) ([]models.EventWithProject, bool, error) {
	w.mu.Lock()
	w.teamFilter = teamID
	if !w.hasRange {
		w.mu.Unlock()
		return nil, false, nil
	}
	start, end := w.start, w.end
	gen := w.nextGenLocked()
	w.mu.Unlock()

	return w.fetch(ctx, gen, start, end, teamID)
}

// Refresh re-fetches the current range/filter pair. No-op without a range.
func (w *Window) Refresh(ctx context.Context) ([]models.EventWithProject, bool, error) {
	w.mu.Lock()
	if !w.hasRange {
		w.mu.Unlock()
		return nil, false, nil
	}
	start, end, team := w.start, w.end, w.teamFilter
	gen := w.nextGenLocked()
	w.mu.Unlock()

	return w.fetch(ctx, gen, start, end, team)
}

func (w *Window) nextGenLocked() uint64 {
	w.gen++
	w.inflight++
	return w.gen
}

func (w *Window) fetch(ctx context.Context, gen uint64, start, end time.Time, team *uuid.UUID) ([]models.EventWithProject, bool, error) {
	events, err := w.store.ListRange(ctx, start, end, team)

	w.mu.Lock()
	w.inflight--
	if err != nil {
		w.mu.Unlock()
		return nil, false, err
	}
	if gen != w.gen {
		// superseded by a later request while in flight
		w.mu.Unlock()
		w.logger.Debug("window fetch superseded", zap.Uint64("gen", gen))
		return events, false, nil
	}
	w.events = events
	onChange := w.OnChange
	w.mu.Unlock()

	if onChange != nil {
		onChange(events)
	}
	return events, true, nil
}

// Events returns the currently displayed event list.
func (w *Window) Events() []models.EventWithProject {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.EventWithProject, len(w.events))
	copy(out, w.events)
	return out
}

// Loading reports whether any fetch is in flight.
func (w *Window) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inflight > 0
}

// Range returns the active range and whether one is set.
func (w *Window) Range() (start, end time.Time, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.start, w.end, w.hasRange
}

// TeamFilter returns the active team filter (nil = all).
func (w *Window) TeamFilter() *uuid.UUID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.teamFilter
}

// ApplyLocalMove moves an event in the cached list to the dropped position
// and returns its previous times, so a failed reschedule can be undone
// without a fetch. Returns false if the event is not in the current window.
func (w *Window) ApplyLocalMove(eventID uuid.UUID, start, end time.Time) (prevStart, prevEnd time.Time, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.events {
		if w.events[i].ID == eventID {
			prevStart, prevEnd = w.events[i].StartTime, w.events[i].EndTime
			w.events[i].StartTime, w.events[i].EndTime = start, end
			return prevStart, prevEnd, true
		}
	}
	return time.Time{}, time.Time{}, false
}

// RevertLocalMove puts an event back at its pre-drag position.
func (w *Window) RevertLocalMove(eventID uuid.UUID, prevStart, prevEnd time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.events {
		if w.events[i].ID == eventID {
			w.events[i].StartTime, w.events[i].EndTime = prevStart, prevEnd
			return
		}
	}
}
