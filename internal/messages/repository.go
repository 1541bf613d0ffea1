package messages

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/internal/store"
)

// Repository handles the append-only sms_messages log.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a messages repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all messages, newest first.
func (r *Repository) List(ctx context.Context) ([]models.SmsMessage, error) {
	const q = `SELECT id, organization_id, event_id, client_id, COALESCE(to_phone,''), COALESCE(body,''),
		COALESCE(status,''), COALESCE(provider_message_id,''), sent_at, created_at
		FROM sms_messages ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	defer rows.Close()
	var list []models.SmsMessage
	for rows.Next() {
		var m models.SmsMessage
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.EventID, &m.ClientID, &m.ToPhone, &m.Body,
			&m.Status, &m.ProviderMessageID, &m.SentAt, &m.CreatedAt); err != nil {
			return nil, store.WrapQuery(err)
		}
		list = append(list, m)
	}
	return list, store.WrapQuery(rows.Err())
}

// Append records one delivery attempt. Only the dispatch worker writes here.
func (r *Repository) Append(ctx context.Context, m *models.SmsMessage) (*models.SmsMessage, error) {
	const q = `INSERT INTO sms_messages (organization_id, event_id, client_id, to_phone, body, status, provider_message_id, sent_at)
		VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''), NULLIF($6,''), NULLIF($7,''), $8)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, m.OrganizationID, m.EventID, m.ClientID, m.ToPhone, m.Body, m.Status, m.ProviderMessageID, m.SentAt).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, store.WrapQuery(err)
	}
	return m, nil
}
