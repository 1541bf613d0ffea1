package clients

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/internal/store"
)

// Repository handles client persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a clients repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const clientColumns = `id, organization_id, name, COALESCE(phone,''), COALESCE(email,''), COALESCE(address,''), COALESCE(notes,''), created_at, updated_at`

func scanClient(row pgx.Row) (*models.Client, error) {
	var cl models.Client
	err := row.Scan(&cl.ID, &cl.OrganizationID, &cl.Name, &cl.Phone, &cl.Email, &cl.Address, &cl.Notes, &cl.CreatedAt, &cl.UpdatedAt)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	return &cl, nil
}

// List returns clients, newest first. A non-empty search matches name, email
// or phone (contains, case-insensitive).
func (r *Repository) List(ctx context.Context, search string) ([]models.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients`
	var args []interface{}
	if search != "" {
		q += ` WHERE name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	defer rows.Close()
	var list []models.Client
	for rows.Next() {
		cl, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *cl)
	}
	return list, store.WrapQuery(rows.Err())
}

// GetByID returns a client by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	return scanClient(r.pool.QueryRow(ctx, q, id))
}

// Insert creates a client.
func (r *Repository) Insert(ctx context.Context, cl *models.Client) (*models.Client, error) {
	const q = `INSERT INTO clients (organization_id, name, phone, email, address, notes)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), NULLIF($6,''))
		RETURNING ` + clientColumns
	return scanClient(r.pool.QueryRow(ctx, q, cl.OrganizationID, cl.Name, cl.Phone, cl.Email, cl.Address, cl.Notes))
}

// Update overwrites a client's editable fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, cl *models.Client) (*models.Client, error) {
	const q = `UPDATE clients SET name = $1, phone = NULLIF($2,''), email = NULLIF($3,''),
		address = NULLIF($4,''), notes = NULLIF($5,''), updated_at = NOW()
		WHERE id = $6
		RETURNING ` + clientColumns
	return scanClient(r.pool.QueryRow(ctx, q, cl.Name, cl.Phone, cl.Email, cl.Address, cl.Notes, id))
}

// Delete removes a client by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return store.WrapQuery(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
