package projects

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/internal/store"
)

// Repository handles project persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a projects repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const projectColumns = `id, organization_id, client_id, title, COALESCE(description,''), COALESCE(address,''), COALESCE(status,''), COALESCE(priority,''), created_at, updated_at`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.OrganizationID, &p.ClientID, &p.Title, &p.Description, &p.Address, &p.Status, &p.Priority, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	return &p, nil
}

func (r *Repository) collect(rows pgx.Rows) ([]models.Project, error) {
	defer rows.Close()
	var list []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, store.WrapQuery(rows.Err())
}

// List returns projects, newest first, optionally filtered by exact status.
// An empty or "all" status returns everything.
func (r *Repository) List(ctx context.Context, status string) ([]models.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects`
	var args []interface{}
	if status != "" && status != "all" {
		q += ` WHERE status = $1`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	return r.collect(rows)
}

// ListByClient returns projects for a client, newest first.
func (r *Repository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Project, error) {
	const q = `SELECT ` + projectColumns + ` FROM projects WHERE client_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, clientID)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	return r.collect(rows)
}

// GetByID returns a project by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	const q = `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(r.pool.QueryRow(ctx, q, id))
}

// Insert creates a project.
func (r *Repository) Insert(ctx context.Context, p *models.Project) (*models.Project, error) {
	const q = `INSERT INTO projects (organization_id, client_id, title, description, address, status, priority)
		VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''), COALESCE(NULLIF($6,''), 'planned'), COALESCE(NULLIF($7,''), 'medium'))
		RETURNING ` + projectColumns
	return scanProject(r.pool.QueryRow(ctx, q, p.OrganizationID, p.ClientID, p.Title, p.Description, p.Address, p.Status, p.Priority))
}

// Update overwrites a project's editable fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p *models.Project) (*models.Project, error) {
	const q = `UPDATE projects SET client_id = $1, title = $2, description = NULLIF($3,''),
		address = NULLIF($4,''), status = NULLIF($5,''), priority = NULLIF($6,''), updated_at = NOW()
		WHERE id = $7
		RETURNING ` + projectColumns
	return scanProject(r.pool.QueryRow(ctx, q, p.ClientID, p.Title, p.Description, p.Address, p.Status, p.Priority, id))
}

// Delete removes a project by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return store.WrapQuery(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
