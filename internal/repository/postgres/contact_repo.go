package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/domain"
)

type ContactRepo struct {
	pool *pgxpool.Pool
}

func NewContactRepo(pool *pgxpool.Pool) *ContactRepo {
	return &ContactRepo{pool: pool}
}

func (r *ContactRepo) Add(ctx context.Context, userID, contactID uuid.UUID) error {
	query := `
		INSERT INTO contacts (user_id, contact_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, contact_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, userID, contactID, time.Now())
	return err
}

func (r *ContactRepo) Remove(ctx context.Context, userID, contactID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM contacts WHERE user_id = $1 AND contact_id = $2`,
		userID, contactID,
	)
	return err
}

func (r *ContactRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error) {
	query := `
		SELECT c.user_id, c.contact_id, c.created_at,
			u.username, u.display_name, u.avatar_url, u.status_text, u.is_online, u.last_seen
		FROM contacts c
		JOIN users u ON c.contact_id = u.id
		WHERE c.user_id = $1
		ORDER BY u.display_name`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(
			&c.UserID, &c.ContactID, &c.CreatedAt,
			&c.Username, &c.DisplayName, &c.AvatarURL,
			&c.StatusText, &c.IsOnline, &c.LastSeen,
		); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *ContactRepo) ListIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT contact_id FROM contacts WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ContactRepo) Exists(ctx context.Context, userID, contactID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM contacts WHERE user_id = $1 AND contact_id = $2)`,
		userID, contactID,
	).Scan(&exists)
	return exists, err
}
