package teams

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/internal/store"
)

// Repository handles team and roster persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a teams repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const teamColumns = `id, organization_id, name, COALESCE(description,''), COALESCE(color,''), created_at`

func scanTeam(row pgx.Row) (*models.Team, error) {
	var t models.Team
	err := row.Scan(&t.ID, &t.OrganizationID, &t.Name, &t.Description, &t.Color, &t.CreatedAt)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	return &t, nil
}

// List returns all teams, oldest first.
func (r *Repository) List(ctx context.Context) ([]models.Team, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY created_at`)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	defer rows.Close()
	var list []models.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, store.WrapQuery(rows.Err())
}

// GetByID returns a team by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	return scanTeam(r.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id))
}

// Insert creates a team.
func (r *Repository) Insert(ctx context.Context, t *models.Team) (*models.Team, error) {
	const q = `INSERT INTO teams (organization_id, name, description, color)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''))
		RETURNING ` + teamColumns
	return scanTeam(r.pool.QueryRow(ctx, q, t.OrganizationID, t.Name, t.Description, t.Color))
}

// Update overwrites a team's editable fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, t *models.Team) (*models.Team, error) {
	const q = `UPDATE teams SET name = $1, description = NULLIF($2,''), color = NULLIF($3,'')
		WHERE id = $4
		RETURNING ` + teamColumns
	return scanTeam(r.pool.QueryRow(ctx, q, t.Name, t.Description, t.Color, id))
}

// Delete removes a team; roster rows cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return store.WrapQuery(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListMembers returns the roster for a team.
func (r *Repository) ListMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	const q = `SELECT id, team_id, user_id, COALESCE(role,''), created_at
		FROM team_members WHERE team_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, teamID)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	defer rows.Close()
	var list []models.TeamMember
	for rows.Next() {
		var tm models.TeamMember
		if err := rows.Scan(&tm.ID, &tm.TeamID, &tm.UserID, &tm.Role, &tm.CreatedAt); err != nil {
			return nil, store.WrapQuery(err)
		}
		list = append(list, tm)
	}
	return list, store.WrapQuery(rows.Err())
}

// AddMembers inserts roster rows for the given users. Existing (team, user)
// pairs are left untouched.
func (r *Repository) AddMembers(ctx context.Context, teamID uuid.UUID, userIDs []uuid.UUID) ([]models.TeamMember, error) {
	for _, userID := range userIDs {
		const q = `INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)
			ON CONFLICT (team_id, user_id) DO NOTHING`
		if _, err := r.pool.Exec(ctx, q, teamID, userID); err != nil {
			return nil, store.WrapQuery(err)
		}
	}
	return r.ListMembers(ctx, teamID)
}

// RemoveMember deletes one roster row by its own id.
func (r *Repository) RemoveMember(ctx context.Context, teamMemberID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM team_members WHERE id = $1`, teamMemberID)
	if err != nil {
		return store.WrapQuery(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ReplaceMembers swaps the whole roster: delete everything for the team, then
// add the desired users.
func (r *Repository) ReplaceMembers(ctx context.Context, teamID uuid.UUID, userIDs []uuid.UUID) ([]models.TeamMember, error) {
	if _, err := r.pool.Exec(ctx, `DELETE FROM team_members WHERE team_id = $1`, teamID); err != nil {
		return nil, store.WrapQuery(err)
	}
	if len(userIDs) == 0 {
		return nil, nil
	}
	return r.AddMembers(ctx, teamID, userIDs)
}
