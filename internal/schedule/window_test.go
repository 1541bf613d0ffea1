package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/crewsched/backend/internal/models"
)

// gatedEventStore serves scripted ListRange results and lets a test hold a
// fetch open to exercise request interleavings.
type gatedEventStore struct {
	*fakeEventStore
	mu      sync.Mutex
	calls   int
	results [][]models.EventWithProject
	gates   map[int]chan struct{} // fetch blocks until the gate closes
	started map[int]chan struct{} // closed when the fetch begins
}

func newGatedEventStore(results ...[]models.EventWithProject) *gatedEventStore {
	return &gatedEventStore{
		fakeEventStore: newFakeEventStore(),
		results:        results,
		gates:          make(map[int]chan struct{}),
		started:        make(map[int]chan struct{}),
	}
}

func (s *gatedEventStore) gate(call int) (started, release chan struct{}) {
	started = make(chan struct{})
	release = make(chan struct{})
	s.mu.Lock()
	s.started[call] = started
	s.gates[call] = release
	s.mu.Unlock()
	return started, release
}

func (s *gatedEventStore) ListRange(_ context.Context, _, _ time.Time, _ *uuid.UUID) ([]models.EventWithProject, error) {
	s.mu.Lock()
	i := s.calls
	s.calls++
	started := s.started[i]
	gate := s.gates[i]
	s.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		<-gate
	}
	if i < len(s.results) {
		return s.results[i], nil
	}
	return nil, nil
}

func eventAt(start time.Time, d time.Duration) models.EventWithProject {
	return models.EventWithProject{Event: models.Event{
		ID:        uuid.New(),
		StartTime: start,
		EndTime:   start.Add(d),
		Status:    models.EventStatusScheduled,
	}}
}

func weekRange(offsetDays int) (time.Time, time.Time) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offsetDays)
	return start, start.AddDate(0, 0, 7)
}

func TestSetRange_FetchesAndApplies(t *testing.T) {
	start, end := weekRange(0)
	want := []models.EventWithProject{eventAt(start.Add(9*time.Hour), 2*time.Hour)}
	st := newGatedEventStore(want)
	w := NewWindow(st, nil)

	got, applied, err := w.SetRange(context.Background(), start, end)
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, want, got)
	require.Equal(t, want, w.Events())
	require.False(t, w.Loading())
}

func TestSetRange_SlowerOlderFetchIsDiscarded(t *testing.T) {
	start1, end1 := weekRange(0)
	start2, end2 := weekRange(7)
	first := []models.EventWithProject{eventAt(start1.Add(time.Hour), time.Hour)}
	second := []models.EventWithProject{eventAt(start2.Add(time.Hour), time.Hour)}
	st := newGatedEventStore(first, second)
	firstStarted, releaseFirst := st.gate(0)
	w := NewWindow(st, nil)

	type result struct {
		applied bool
		err     error
	}
	done := make(chan result, 1)
	go func() {
		_, applied, err := w.SetRange(context.Background(), start1, end1)
		done <- result{applied, err}
	}()
	<-firstStarted

	// the newer request resolves while the first is still in flight
	_, applied, err := w.SetRange(context.Background(), start2, end2)
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, second, w.Events())

	close(releaseFirst)
	res := <-done
	require.NoError(t, res.err)
	require.False(t, res.applied)

	// the older result did not overwrite the newer one
	require.Equal(t, second, w.Events())
	require.False(t, w.Loading())
}

func TestLoading_TrueWhileFetchInFlight(t *testing.T) {
	start, end := weekRange(0)
	st := newGatedEventStore(nil)
	started, release := st.gate(0)
	w := NewWindow(st, nil)

	done := make(chan struct{})
	go func() {
		_, _, _ = w.SetRange(context.Background(), start, end)
		close(done)
	}()
	<-started
	require.True(t, w.Loading())

	close(release)
	<-done
	require.False(t, w.Loading())
}

func TestRefresh_WithoutRangeIsNoop(t *testing.T) {
	st := newGatedEventStore()
	w := NewWindow(st, nil)

	got, applied, err := w.Refresh(context.Background())
	require.NoError(t, err)
	require.False(t, applied)
	require.Nil(t, got)
	require.Equal(t, 0, st.calls)
}

func TestSetTeamFilter_RefetchesCurrentRange(t *testing.T) {
	start, end := weekRange(0)
	all := []models.EventWithProject{eventAt(start, time.Hour), eventAt(start.Add(2*time.Hour), time.Hour)}
	filtered := all[:1]
	st := newGatedEventStore(all, filtered)
	w := NewWindow(st, nil)

	_, _, err := w.SetRange(context.Background(), start, end)
	require.NoError(t, err)

	teamID := uuid.New()
	got, applied, err := w.SetTeamFilter(context.Background(), &teamID)
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, filtered, got)
	require.Equal(t, &teamID, w.TeamFilter())
}

func TestApplyLocalMoveAndRevert(t *testing.T) {
	start, end := weekRange(0)
	ev := eventAt(start.Add(9*time.Hour), 2*time.Hour)
	st := newGatedEventStore([]models.EventWithProject{ev})
	w := NewWindow(st, nil)
	_, _, err := w.SetRange(context.Background(), start, end)
	require.NoError(t, err)

	newStart := ev.StartTime.Add(24 * time.Hour)
	newEnd := ev.EndTime.Add(24 * time.Hour)
	prevStart, prevEnd, ok := w.ApplyLocalMove(ev.ID, newStart, newEnd)
	require.True(t, ok)
	require.Equal(t, ev.StartTime, prevStart)
	require.Equal(t, ev.EndTime, prevEnd)
	require.Equal(t, newStart, w.Events()[0].StartTime)

	w.RevertLocalMove(ev.ID, prevStart, prevEnd)
	require.Equal(t, ev.StartTime, w.Events()[0].StartTime)
	require.Equal(t, ev.EndTime, w.Events()[0].EndTime)

	_, _, ok = w.ApplyLocalMove(uuid.New(), newStart, newEnd)
	require.False(t, ok)
}
