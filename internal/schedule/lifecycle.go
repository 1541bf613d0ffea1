package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/internal/store"
)

// NotifyTrigger invokes the external schedule-SMS function for an event,
// forwarding the caller's bearer credential.
type NotifyTrigger interface {
	Trigger(ctx context.Context, eventID uuid.UUID, bearer string) error
}

// Broadcaster announces schedule changes to connected calendar clients.
type Broadcaster interface {
	ScheduleChanged(action string, eventID uuid.UUID)
}

// EventForm is the editable state of one event plus its assignee selection.
type EventForm struct {
	ID             *uuid.UUID  `json:"id,omitempty"`
	OrganizationID *uuid.UUID  `json:"organization_id,omitempty"`
	ProjectID      *uuid.UUID  `json:"project_id"`
	TeamID         *uuid.UUID  `json:"team_id,omitempty"`
	StartTime      time.Time   `json:"start_time"`
	EndTime        time.Time   `json:"end_time"`
	Timezone       string      `json:"timezone,omitempty"`
	Status         string      `json:"status,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	CreatedBy      *uuid.UUID  `json:"created_by,omitempty"`
	AssigneeIDs    []uuid.UUID `json:"assignee_ids"`
}

// Controller owns the event lifecycle: save, delete, reschedule, and
// confirm-and-notify.
type Controller struct {
	events     EventStore
	reconciler *Reconciler
	resolver   *Resolver
	window     *Window
	notifier   NotifyTrigger
	broadcast  Broadcaster
	logger     *zap.Logger

	// RequireTeam makes team_id a required save field (team-aware variant).
	RequireTeam bool
}

// NewController creates an event lifecycle controller. broadcast may be nil.
func NewController(events EventStore, reconciler *Reconciler, resolver *Resolver, window *Window, notifier NotifyTrigger, broadcast Broadcaster, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		events:     events,
		reconciler: reconciler,
		resolver:   resolver,
		window:     window,
		notifier:   notifier,
		broadcast:  broadcast,
		logger:     logger,
	}
}

func (c *Controller) validate(form *EventForm) error {
	if form.ProjectID == nil {
		return &store.ValidationError{Field: "project_id", Msg: "is required"}
	}
	if form.StartTime.IsZero() {
		return &store.ValidationError{Field: "start_time", Msg: "is required"}
	}
	if form.EndTime.IsZero() {
		return &store.ValidationError{Field: "end_time", Msg: "is required"}
	}
	if c.RequireTeam && form.TeamID == nil {
		return &store.ValidationError{Field: "team_id", Msg: "is required"}
	}
	if !form.StartTime.Before(form.EndTime) {
		return &store.ValidationError{Field: "start_time", Msg: "must be before end_time"}
	}
	return nil
}

// Save creates or updates an event, then reconciles its assignments and
// refreshes the window. Validation failures return before any store call.
// Any step failing aborts the save; the caller keeps the form for correction.
func (c *Controller) Save(ctx context.Context, form EventForm) (*models.Event, []models.EventAssignment, error) {
	if err := c.validate(&form); err != nil {
		return nil, nil, err
	}

	ev := &models.Event{
		OrganizationID: form.OrganizationID,
		ProjectID:      form.ProjectID,
		TeamID:         form.TeamID,
		StartTime:      form.StartTime.UTC(),
		EndTime:        form.EndTime.UTC(),
		Timezone:       form.Timezone,
		Status:         form.Status,
		Notes:          form.Notes,
		CreatedBy:      form.CreatedBy,
	}
	if ev.Status == "" {
		ev.Status = models.EventStatusScheduled
	}

	// Any assignee that fell out of the eligible set (e.g. after a team
	// switch) is dropped before the write.
	eligible, err := c.resolver.EligibleCrew(ctx, form.TeamID)
	if err != nil {
		return nil, nil, err
	}
	selection := IntersectSelection(form.AssigneeIDs, eligible)

	var saved *models.Event
	if form.ID == nil {
		saved, err = c.events.Insert(ctx, ev)
	} else {
		saved, err = c.events.Update(ctx, *form.ID, ev)
	}
	if err != nil {
		return nil, nil, err
	}

	assignments, err := c.reconciler.Replace(ctx, saved.ID, selection)
	if err != nil {
		return nil, nil, err
	}

	if _, _, err := c.window.Refresh(ctx); err != nil {
		c.logger.Warn("window refresh after save failed", zap.Error(err))
	}
	c.announce("saved", saved.ID)
	return saved, assignments, nil
}

// Delete removes an event and refreshes the window. On failure the event
// stays in the list and the error propagates.
func (c *Controller) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.events.Delete(ctx, id); err != nil {
		return err
	}
	if _, _, err := c.window.Refresh(ctx); err != nil {
		c.logger.Warn("window refresh after delete failed", zap.Error(err))
	}
	c.announce("deleted", id)
	return nil
}

// Reschedule updates only start/end on an existing event (drag-to-reschedule).
// The move is applied to the cached window first; on store failure it is
// reverted and no refresh happens, so the display matches backend state.
func (c *Controller) Reschedule(ctx context.Context, id uuid.UUID, start, end time.Time) (*models.Event, error) {
	if !start.Before(end) {
		return nil, &store.ValidationError{Field: "start_time", Msg: "must be before end_time"}
	}
	start, end = start.UTC(), end.UTC()

	prevStart, prevEnd, moved := c.window.ApplyLocalMove(id, start, end)

	ev, err := c.events.UpdateTimes(ctx, id, start, end)
	if err != nil {
		if moved {
			c.window.RevertLocalMove(id, prevStart, prevEnd)
		}
		return nil, err
	}

	if _, _, err := c.window.Refresh(ctx); err != nil {
		c.logger.Warn("window refresh after reschedule failed", zap.Error(err))
	}
	c.announce("rescheduled", id)
	return ev, nil
}

// ConfirmAndNotify marks an event confirmed, then triggers the external SMS
// function with the caller's bearer credential. A failed notification is
// reported but the committed status change is deliberately not rolled back:
// the event stays confirmed even when the client was not notified.
func (c *Controller) ConfirmAndNotify(ctx context.Context, id uuid.UUID, bearer string) (*models.Event, error) {
	ev, err := c.events.UpdateStatus(ctx, id, models.EventStatusConfirmed)
	if err != nil {
		return nil, err
	}

	if err := c.notifier.Trigger(ctx, id, bearer); err != nil {
		c.logger.Warn("notification trigger failed after confirm",
			zap.String("event_id", id.String()), zap.Error(err))
		return ev, err
	}

	if _, _, err := c.window.Refresh(ctx); err != nil {
		c.logger.Warn("window refresh after confirm failed", zap.Error(err))
	}
	c.announce("confirmed", id)
	return ev, nil
}

func (c *Controller) announce(action string, id uuid.UUID) {
	if c.broadcast != nil {
		c.broadcast.ScheduleChanged(action, id)
	}
}
