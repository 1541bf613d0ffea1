package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/internal/store"
)

type lifecycleFixture struct {
	events      *fakeEventStore
	assignments *fakeAssignmentStore
	directory   *fakeDirectory
	roster      *fakeRoster
	window      *Window
	notifier    *fakeNotifier
	broadcast   *fakeBroadcaster
	controller  *Controller
}

func newLifecycleFixture(crew ...models.OrgMember) *lifecycleFixture {
	f := &lifecycleFixture{
		events:      newFakeEventStore(),
		assignments: newFakeAssignmentStore(),
		directory:   &fakeDirectory{members: crew},
		roster:      &fakeRoster{rosters: map[uuid.UUID][]models.TeamMember{}},
		notifier:    &fakeNotifier{},
		broadcast:   &fakeBroadcaster{},
	}
	f.window = NewWindow(f.events, nil)
	resolver := NewResolver(f.roster, f.directory)
	f.controller = NewController(f.events, NewReconciler(f.assignments), resolver, f.window, f.notifier, f.broadcast, nil)
	return f
}

func validForm(projectID uuid.UUID, start time.Time) EventForm {
	return EventForm{
		ProjectID: &projectID,
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	}
}

func TestSave_ValidationFailureTouchesNoStores(t *testing.T) {
	f := newLifecycleFixture()
	start := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)

	cases := []EventForm{
		{StartTime: start, EndTime: start.Add(time.Hour)}, // no project
		{ProjectID: ptr(uuid.New()), EndTime: start},      // no start
		{ProjectID: ptr(uuid.New()), StartTime: start},    // no end
		{ProjectID: ptr(uuid.New()), StartTime: start, EndTime: start},                 // not before
		{ProjectID: ptr(uuid.New()), StartTime: start.Add(time.Hour), EndTime: start},  // inverted
	}
	for _, form := range cases {
		_, _, err := f.controller.Save(context.Background(), form)
		require.Error(t, err)
		require.True(t, store.IsValidation(err))
	}
	require.Equal(t, 0, f.events.insertCalls)
	require.Equal(t, 0, f.events.updateCalls)
	require.Equal(t, 0, f.assignments.deleteCalls)
}

func TestSave_RequireTeam(t *testing.T) {
	f := newLifecycleFixture()
	f.controller.RequireTeam = true

	form := validForm(uuid.New(), time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC))
	_, _, err := f.controller.Save(context.Background(), form)
	require.True(t, store.IsValidation(err))

	teamID := uuid.New()
	form.TeamID = &teamID
	saved, _, err := f.controller.Save(context.Background(), form)
	require.NoError(t, err)
	require.NotNil(t, saved)
}

func TestSave_CreateReturnsIdentityAndReconciles(t *testing.T) {
	ann := crewMember("Ann")
	bob := crewMember("Bob")
	f := newLifecycleFixture(ann, bob)

	form := validForm(uuid.New(), time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC))
	outsider := uuid.New()
	form.AssigneeIDs = []uuid.UUID{ann.UserID, outsider}

	saved, rows, err := f.controller.Save(context.Background(), form)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, saved.ID)
	require.Equal(t, models.EventStatusScheduled, saved.Status)

	// the ineligible pick was dropped before the write
	require.Len(t, rows, 1)
	require.Equal(t, ann.UserID, rows[0].UserID)
	require.Equal(t, saved.ID, rows[0].EventID)

	require.Equal(t, []string{"saved"}, f.broadcast.all())
}

func TestSave_UpdateReplacesAssignments(t *testing.T) {
	ann := crewMember("Ann")
	bob := crewMember("Bob")
	f := newLifecycleFixture(ann, bob)
	ctx := context.Background()

	form := validForm(uuid.New(), time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC))
	form.AssigneeIDs = []uuid.UUID{ann.UserID}
	saved, _, err := f.controller.Save(ctx, form)
	require.NoError(t, err)

	form.ID = &saved.ID
	form.AssigneeIDs = []uuid.UUID{bob.UserID}
	_, rows, err := f.controller.Save(ctx, form)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, bob.UserID, rows[0].UserID)

	got, err := f.assignments.ListByEvent(ctx, saved.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, bob.UserID, got[0].UserID)
}

func TestDelete_RemovesAndAnnounces(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()
	ev := f.events.seed(models.Event{
		StartTime: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC),
	})

	require.NoError(t, f.controller.Delete(ctx, ev.ID))
	_, err := f.events.GetByID(ctx, ev.ID)
	require.True(t, store.IsNotFound(err))
	require.Equal(t, []string{"deleted"}, f.broadcast.all())

	err = f.controller.Delete(ctx, uuid.New())
	require.True(t, store.IsNotFound(err))
}

func TestReschedule_FailureRevertsCachedTimes(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()
	origStart := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	ev := f.events.seed(models.Event{StartTime: origStart, EndTime: origStart.Add(2 * time.Hour)})

	_, _, err := f.window.SetRange(ctx, origStart.AddDate(0, 0, -1), origStart.AddDate(0, 0, 6))
	require.NoError(t, err)
	listCallsBefore := f.events.listCalls

	f.events.updateTimesErr = errors.New("boom")
	_, err = f.controller.Reschedule(ctx, ev.ID, origStart.Add(24*time.Hour), origStart.Add(26*time.Hour))
	require.Error(t, err)

	// cached times back where they were, and no refresh after the failure
	cached := f.window.Events()
	require.Len(t, cached, 1)
	require.Equal(t, origStart, cached[0].StartTime)
	require.Equal(t, listCallsBefore, f.events.listCalls)
	require.Empty(t, f.broadcast.all())
}

func TestReschedule_Success(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()
	origStart := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	ev := f.events.seed(models.Event{StartTime: origStart, EndTime: origStart.Add(2 * time.Hour)})

	newStart := origStart.Add(24 * time.Hour)
	got, err := f.controller.Reschedule(ctx, ev.ID, newStart, newStart.Add(2*time.Hour))
	require.NoError(t, err)
	require.Equal(t, newStart, got.StartTime)
	require.Equal(t, []string{"rescheduled"}, f.broadcast.all())

	_, err = f.controller.Reschedule(ctx, ev.ID, newStart, newStart)
	require.True(t, store.IsValidation(err))
}

func TestConfirmAndNotify_Success(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()
	start := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	ev := f.events.seed(models.Event{StartTime: start, EndTime: start.Add(time.Hour), Status: models.EventStatusScheduled})

	got, err := f.controller.ConfirmAndNotify(ctx, ev.ID, "tok-123")
	require.NoError(t, err)
	require.Equal(t, models.EventStatusConfirmed, got.Status)
	require.Equal(t, []uuid.UUID{ev.ID}, f.notifier.calls)
	require.Equal(t, []string{"tok-123"}, f.notifier.bearers)
	require.Equal(t, []string{"confirmed"}, f.broadcast.all())
}

func TestConfirmAndNotify_NotifyFailureKeepsConfirmed(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()
	start := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	ev := f.events.seed(models.Event{StartTime: start, EndTime: start.Add(time.Hour), Status: models.EventStatusScheduled})
	f.notifier.err = errors.New("gateway timeout")

	got, err := f.controller.ConfirmAndNotify(ctx, ev.ID, "tok-123")
	require.Error(t, err)
	require.NotNil(t, got)
	require.Equal(t, models.EventStatusConfirmed, got.Status)

	// the committed status change stays committed
	stored, gerr := f.events.GetByID(ctx, ev.ID)
	require.NoError(t, gerr)
	require.Equal(t, models.EventStatusConfirmed, stored.Status)
	require.Empty(t, f.broadcast.all())
}

func TestConfirmAndNotify_MissingEvent(t *testing.T) {
	f := newLifecycleFixture()
	got, err := f.controller.ConfirmAndNotify(context.Background(), uuid.New(), "tok")
	require.Nil(t, got)
	require.True(t, store.IsNotFound(err))
	require.Empty(t, f.notifier.calls)
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }
