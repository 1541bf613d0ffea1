package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/internal/store"
)

// EventStore is the persistence contract the window manager and lifecycle
// controller operate against.
type EventStore interface {
	ListRange(ctx context.Context, start, end time.Time, teamID *uuid.UUID) ([]models.EventWithProject, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Insert(ctx context.Context, ev *models.Event) (*models.Event, error)
	Update(ctx context.Context, id uuid.UUID, ev *models.Event) (*models.Event, error)
	UpdateTimes(ctx context.Context, id uuid.UUID, start, end time.Time) (*models.Event, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AssignmentStore is the persistence contract for the assignment reconciler.
type AssignmentStore interface {
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventAssignment, error)
	DeleteByEvent(ctx context.Context, eventID uuid.UUID) error
	InsertBatch(ctx context.Context, eventID uuid.UUID, userIDs []uuid.UUID) ([]models.EventAssignment, error)
}

// RosterStore lists a team's roster (implemented by the teams repository).
type RosterStore interface {
	ListMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error)
}

// MemberDirectory looks up org members (implemented by the members repository).
type MemberDirectory interface {
	List(ctx context.Context, role string) ([]models.OrgMember, error)
	ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]models.OrgMember, error)
}

// EventRepository handles event persistence.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates an event repository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `id, organization_id, project_id, team_id, start_time, end_time,
	COALESCE(timezone,''), COALESCE(status,''), COALESCE(notes,''), created_by, created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var ev models.Event
	err := row.Scan(&ev.ID, &ev.OrganizationID, &ev.ProjectID, &ev.TeamID, &ev.StartTime, &ev.EndTime,
		&ev.Timezone, &ev.Status, &ev.Notes, &ev.CreatedBy, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	return &ev, nil
}

// ListRange returns events overlapping [start, end), joined with their
// project, optionally restricted to a team. The whole filtered set is
// returned, ordered by start time.
func (r *EventRepository) ListRange(ctx context.Context, start, end time.Time, teamID *uuid.UUID) ([]models.EventWithProject, error) {
	q := `SELECT e.id, e.organization_id, e.project_id, e.team_id, e.start_time, e.end_time,
			COALESCE(e.timezone,''), COALESCE(e.status,''), COALESCE(e.notes,''), e.created_by, e.created_at, e.updated_at,
			p.id, p.client_id, p.title, COALESCE(p.status,'')
		FROM events e
		LEFT JOIN projects p ON p.id = e.project_id
		WHERE e.start_time < $2 AND e.end_time > $1`
	args := []interface{}{start, end}
	if teamID != nil {
		q += ` AND e.team_id = $3`
		args = append(args, *teamID)
	}
	q += ` ORDER BY e.start_time`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	defer rows.Close()
	var list []models.EventWithProject
	for rows.Next() {
		var ev models.EventWithProject
		var pID, pClientID *uuid.UUID
		var pTitle, pStatus *string
		if err := rows.Scan(&ev.ID, &ev.OrganizationID, &ev.ProjectID, &ev.TeamID, &ev.StartTime, &ev.EndTime,
			&ev.Timezone, &ev.Status, &ev.Notes, &ev.CreatedBy, &ev.CreatedAt, &ev.UpdatedAt,
			&pID, &pClientID, &pTitle, &pStatus); err != nil {
			return nil, store.WrapQuery(err)
		}
		if pID != nil {
			ev.Project = &models.Project{ID: *pID, ClientID: pClientID}
			if pTitle != nil {
				ev.Project.Title = *pTitle
			}
			if pStatus != nil {
				ev.Project.Status = *pStatus
			}
		}
		list = append(list, ev)
	}
	return list, store.WrapQuery(rows.Err())
}

// ListByProject returns events for a project, earliest first.
func (r *EventRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE project_id = $1 ORDER BY start_time`
	rows, err := r.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *ev)
	}
	return list, store.WrapQuery(rows.Err())
}

// GetByID returns an event by ID.
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// Insert creates an event.
func (r *EventRepository) Insert(ctx context.Context, ev *models.Event) (*models.Event, error) {
	const q = `INSERT INTO events (organization_id, project_id, team_id, start_time, end_time, timezone, status, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6,''), NULLIF($7,''), NULLIF($8,''), $9)
		RETURNING ` + eventColumns
	return scanEvent(r.pool.QueryRow(ctx, q, ev.OrganizationID, ev.ProjectID, ev.TeamID,
		ev.StartTime, ev.EndTime, ev.Timezone, ev.Status, ev.Notes, ev.CreatedBy))
}

// Update overwrites an event's editable fields. Last write wins; no
// concurrency token is checked.
func (r *EventRepository) Update(ctx context.Context, id uuid.UUID, ev *models.Event) (*models.Event, error) {
	const q = `UPDATE events SET project_id = $1, team_id = $2, start_time = $3, end_time = $4,
		timezone = NULLIF($5,''), status = NULLIF($6,''), notes = NULLIF($7,''), updated_at = NOW()
		WHERE id = $8
		RETURNING ` + eventColumns
	return scanEvent(r.pool.QueryRow(ctx, q, ev.ProjectID, ev.TeamID, ev.StartTime, ev.EndTime,
		ev.Timezone, ev.Status, ev.Notes, id))
}

// UpdateTimes updates only start/end, used by drag-to-reschedule.
func (r *EventRepository) UpdateTimes(ctx context.Context, id uuid.UUID, start, end time.Time) (*models.Event, error) {
	const q = `UPDATE events SET start_time = $1, end_time = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + eventColumns
	return scanEvent(r.pool.QueryRow(ctx, q, start, end, id))
}

// UpdateStatus updates only the status, used by confirm-and-notify.
func (r *EventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Event, error) {
	const q = `UPDATE events SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + eventColumns
	return scanEvent(r.pool.QueryRow(ctx, q, status, id))
}

// Delete removes an event; assignments cascade.
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return store.WrapQuery(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// AssignmentRepository handles event assignment persistence.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates an assignment repository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// ListByEvent returns all assignment rows for an event.
func (r *AssignmentRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventAssignment, error) {
	const q = `SELECT id, organization_id, event_id, user_id, created_at
		FROM event_assignments WHERE event_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	defer rows.Close()
	var list []models.EventAssignment
	for rows.Next() {
		var a models.EventAssignment
		if err := rows.Scan(&a.ID, &a.OrganizationID, &a.EventID, &a.UserID, &a.CreatedAt); err != nil {
			return nil, store.WrapQuery(err)
		}
		list = append(list, a)
	}
	return list, store.WrapQuery(rows.Err())
}

// DeleteByEvent removes all assignment rows for an event.
func (r *AssignmentRepository) DeleteByEvent(ctx context.Context, eventID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM event_assignments WHERE event_id = $1`, eventID)
	return store.WrapQuery(err)
}

// InsertBatch inserts one assignment row per user id.
func (r *AssignmentRepository) InsertBatch(ctx context.Context, eventID uuid.UUID, userIDs []uuid.UUID) ([]models.EventAssignment, error) {
	var list []models.EventAssignment
	for _, userID := range userIDs {
		const q = `INSERT INTO event_assignments (event_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (event_id, user_id) DO NOTHING
			RETURNING id, organization_id, event_id, user_id, created_at`
		var a models.EventAssignment
		err := r.pool.QueryRow(ctx, q, eventID, userID).
			Scan(&a.ID, &a.OrganizationID, &a.EventID, &a.UserID, &a.CreatedAt)
		if err == pgx.ErrNoRows {
			continue // conflicting row already present
		}
		if err != nil {
			return nil, store.WrapQuery(err)
		}
		list = append(list, a)
	}
	return list, nil
}
