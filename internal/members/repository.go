package members

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/internal/store"
)

// Repository handles org member persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a members repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const memberColumns = `id, organization_id, user_id, COALESCE(role,''), COALESCE(display_name,'')`

func scanMember(row pgx.Row) (*models.OrgMember, error) {
	var m models.OrgMember
	err := row.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.DisplayName)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	return &m, nil
}

func collect(rows pgx.Rows) ([]models.OrgMember, error) {
	defer rows.Close()
	var list []models.OrgMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *m)
	}
	return list, store.WrapQuery(rows.Err())
}

// List returns all org members ordered by display name. A non-empty role
// restricts to an exact match (e.g. crew_member).
func (r *Repository) List(ctx context.Context, role string) ([]models.OrgMember, error) {
	q := `SELECT ` + memberColumns + ` FROM org_members`
	var args []interface{}
	if role != "" {
		q += ` WHERE role = $1`
		args = append(args, role)
	}
	q += ` ORDER BY display_name`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	return collect(rows)
}

// ListByUserIDs returns the members whose user id is in the given set,
// ordered by display name.
func (r *Repository) ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]models.OrgMember, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	const q = `SELECT ` + memberColumns + ` FROM org_members WHERE user_id = ANY($1) ORDER BY display_name`
	rows, err := r.pool.Query(ctx, q, userIDs)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	return collect(rows)
}

// GetByID returns a member by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.OrgMember, error) {
	return scanMember(r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM org_members WHERE id = $1`, id))
}

// Insert creates a member.
func (r *Repository) Insert(ctx context.Context, m *models.OrgMember) (*models.OrgMember, error) {
	const q = `INSERT INTO org_members (organization_id, user_id, role, display_name)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''))
		RETURNING ` + memberColumns
	return scanMember(r.pool.QueryRow(ctx, q, m.OrganizationID, m.UserID, m.Role, m.DisplayName))
}

// Update overwrites a member's role and display name.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, m *models.OrgMember) (*models.OrgMember, error) {
	const q = `UPDATE org_members SET role = NULLIF($1,''), display_name = NULLIF($2,'')
		WHERE id = $3
		RETURNING ` + memberColumns
	return scanMember(r.pool.QueryRow(ctx, q, m.Role, m.DisplayName, id))
}

// Delete removes a member by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM org_members WHERE id = $1`, id)
	if err != nil {
		return store.WrapQuery(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
