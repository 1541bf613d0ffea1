package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/internal/store"
)

// fakeEventStore is an in-memory EventStore with per-method error injection.
type fakeEventStore struct {
	mu     sync.Mutex
	events map[uuid.UUID]*models.Event

	listErr        error
	insertErr      error
	updateErr      error
	updateTimesErr error
	updateStatErr  error

	listCalls   int
	insertCalls int
	updateCalls int
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: make(map[uuid.UUID]*models.Event)}
}

func (s *fakeEventStore) seed(ev models.Event) models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	cp := ev
	s.events[ev.ID] = &cp
	return ev
}

func (s *fakeEventStore) ListRange(_ context.Context, start, end time.Time, teamID *uuid.UUID) ([]models.EventWithProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.EventWithProject
	for _, ev := range s.events {
		if !ev.StartTime.Before(end) || !ev.EndTime.After(start) {
			continue
		}
		if teamID != nil && (ev.TeamID == nil || *ev.TeamID != *teamID) {
			continue
		}
		out = append(out, models.EventWithProject{Event: *ev})
	}
	return out, nil
}

func (s *fakeEventStore) ListByProject(_ context.Context, projectID uuid.UUID) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for _, ev := range s.events {
		if ev.ProjectID != nil && *ev.ProjectID == projectID {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (s *fakeEventStore) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (s *fakeEventStore) Insert(_ context.Context, ev *models.Event) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	cp := *ev
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	s.events[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *fakeEventStore) Update(_ context.Context, id uuid.UUID, ev *models.Event) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	old, ok := s.events[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *ev
	cp.ID = id
	cp.CreatedAt = old.CreatedAt
	cp.UpdatedAt = time.Now()
	s.events[id] = &cp
	out := cp
	return &out, nil
}

func (s *fakeEventStore) UpdateTimes(_ context.Context, id uuid.UUID, start, end time.Time) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateTimesErr != nil {
		return nil, s.updateTimesErr
	}
	ev, ok := s.events[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	ev.StartTime, ev.EndTime = start, end
	cp := *ev
	return &cp, nil
}

func (s *fakeEventStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateStatErr != nil {
		return nil, s.updateStatErr
	}
	ev, ok := s.events[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	ev.Status = status
	cp := *ev
	return &cp, nil
}

func (s *fakeEventStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

// fakeAssignmentStore is an in-memory AssignmentStore with error injection.
type fakeAssignmentStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID][]models.EventAssignment

	deleteErr error
	insertErr error

	deleteCalls int
	insertCalls int
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{rows: make(map[uuid.UUID][]models.EventAssignment)}
}

func (s *fakeAssignmentStore) ListByEvent(_ context.Context, eventID uuid.UUID) ([]models.EventAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.EventAssignment(nil), s.rows[eventID]...), nil
}

func (s *fakeAssignmentStore) DeleteByEvent(_ context.Context, eventID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.rows, eventID)
	return nil
}

func (s *fakeAssignmentStore) InsertBatch(_ context.Context, eventID uuid.UUID, userIDs []uuid.UUID) ([]models.EventAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	var out []models.EventAssignment
	for _, uid := range userIDs {
		row := models.EventAssignment{ID: uuid.New(), EventID: eventID, UserID: uid, CreatedAt: time.Now()}
		s.rows[eventID] = append(s.rows[eventID], row)
		out = append(out, row)
	}
	return out, nil
}

// fakeRoster maps team id to roster entries.
type fakeRoster struct {
	rosters map[uuid.UUID][]models.TeamMember
	err     error
}

func (f *fakeRoster) ListMembers(_ context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rosters[teamID], nil
}

// fakeDirectory holds the org member directory.
type fakeDirectory struct {
	members   []models.OrgMember
	listCalls int
}

func (f *fakeDirectory) List(_ context.Context, role string) ([]models.OrgMember, error) {
	f.listCalls++
	var out []models.OrgMember
	for _, m := range f.members {
		if role == "" || m.Role == role {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeDirectory) ListByUserIDs(_ context.Context, userIDs []uuid.UUID) ([]models.OrgMember, error) {
	want := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		want[id] = struct{}{}
	}
	var out []models.OrgMember
	for _, m := range f.members {
		if _, ok := want[m.UserID]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeNotifier records trigger calls.
type fakeNotifier struct {
	err     error
	calls   []uuid.UUID
	bearers []string
}

func (f *fakeNotifier) Trigger(_ context.Context, eventID uuid.UUID, bearer string) error {
	f.calls = append(f.calls, eventID)
	f.bearers = append(f.bearers, bearer)
	return f.err
}

// fakeBroadcaster records schedule change announcements.
type fakeBroadcaster struct {
	mu      sync.Mutex
	actions []string
}

func (f *fakeBroadcaster) ScheduleChanged(action string, _ uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
}

func (f *fakeBroadcaster) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.actions...)
}

func crewMember(name string) models.OrgMember {
	return models.OrgMember{ID: uuid.New(), UserID: uuid.New(), Role: models.MemberRoleCrew, DisplayName: name}
}
