package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/domain"
)

const messageColumns = `m.id, m.sender_id, m.receiver_id, m.content, m.type, m.status,
	m.reply_to, m.is_deleted, m.delivered_at, m.read_at, m.edited_at, m.deleted_at,
	m.created_at, m.updated_at, u.username, u.display_name`

// pairFilter matches the unordered participant pair {$1, $2}, the single
// definition of conversation membership every read path goes through.
const pairFilter = `((m.sender_id = $1 AND m.receiver_id = $2) OR (m.sender_id = $2 AND m.receiver_id = $1))`

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, content, type, status, reply_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.SenderID, msg.ReceiverID, msg.Content, msg.Type,
		msg.Status, msg.ReplyToID, msg.CreatedAt, msg.UpdatedAt,
	)
	return err
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.id = $1`
	var msg domain.Message
	err := scanMessageRow(r.pool.QueryRow(ctx, query, id), &msg)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *MessageRepo) ListConversation(ctx context.Context, userA, userB uuid.UUID, offset, limit int) ([]domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE ` + pairFilter + ` AND m.is_deleted = FALSE
		ORDER BY m.created_at DESC, m.id DESC
		OFFSET $3 LIMIT $4`
	return r.queryMessages(ctx, query, userA, userB, offset, limit)
}

func (r *MessageRepo) CountConversation(ctx context.Context, userA, userB uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM messages m
		WHERE ` + pairFilter + ` AND m.is_deleted = FALSE`
	var count int
	err := r.pool.QueryRow(ctx, query, userA, userB).Scan(&count)
	return count, err
}

func (r *MessageRepo) LatestConversations(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ConversationSummary, error) {
	// One row per peer: the newest non-deleted message of the pair with a
	// deterministic created_at DESC, id DESC tie-break, joined with the
	// unread count of messages still awaiting a read receipt.
	query := `
		WITH pair AS (
			SELECT m.*, CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS peer_id
			FROM messages m
			WHERE (m.sender_id = $1 OR m.receiver_id = $1) AND m.is_deleted = FALSE
		),
		latest AS (
			SELECT DISTINCT ON (peer_id) *
			FROM pair
			ORDER BY peer_id, created_at DESC, id DESC
		),
		unread AS (
			SELECT sender_id AS peer_id, COUNT(*) AS unread_count
			FROM messages
			WHERE receiver_id = $1 AND status <> 'read' AND is_deleted = FALSE
			GROUP BY sender_id
		)
		SELECT l.peer_id, l.id, l.sender_id, l.receiver_id, l.content, l.type, l.status,
			l.reply_to, l.is_deleted, l.delivered_at, l.read_at, l.edited_at, l.deleted_at,
			l.created_at, l.updated_at, COALESCE(un.unread_count, 0)
		FROM latest l
		LEFT JOIN unread un ON un.peer_id = l.peer_id
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.ConversationSummary
	for rows.Next() {
		var s domain.ConversationSummary
		m := &s.LastMessage
		if err := rows.Scan(
			&s.PeerID, &m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Type, &m.Status,
			&m.ReplyToID, &m.IsDeleted, &m.DeliveredAt, &m.ReadAt, &m.EditedAt, &m.DeletedAt,
			&m.CreatedAt, &m.UpdatedAt, &s.UnreadCount,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// MarkDelivered advances every sent message of the pair to delivered in one
// conditional update, so concurrent signals cannot regress or double-stamp.
func (r *MessageRepo) MarkDelivered(ctx context.Context, senderID, receiverID uuid.UUID, at time.Time) (int64, error) {
	query := `
		UPDATE messages
		SET status = 'delivered', delivered_at = $3, updated_at = $3
		WHERE sender_id = $1 AND receiver_id = $2 AND status = 'sent' AND is_deleted = FALSE`
	tag, err := r.pool.Exec(ctx, query, senderID, receiverID, at)
	return tag.RowsAffected(), err
}

func (r *MessageRepo) MarkRead(ctx context.Context, senderID, receiverID uuid.UUID, at time.Time) (int64, error) {
	query := `
		UPDATE messages
		SET status = 'read', read_at = $3, delivered_at = COALESCE(delivered_at, $3), updated_at = $3
		WHERE sender_id = $1 AND receiver_id = $2 AND status IN ('sent', 'delivered') AND is_deleted = FALSE`
	tag, err := r.pool.Exec(ctx, query, senderID, receiverID, at)
	return tag.RowsAffected(), err
}

func (r *MessageRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM messages
		WHERE receiver_id = $1 AND status <> 'read' AND is_deleted = FALSE`
	var count int
	err := r.pool.QueryRow(ctx, query, userID).Scan(&count)
	return count, err
}

func (r *MessageRepo) Update(ctx context.Context, msg *domain.Message, at time.Time) error {
	query := `
		UPDATE messages SET content = $1, type = $2, edited_at = $3, updated_at = $3
		WHERE id = $4`
	_, err := r.pool.Exec(ctx, query, msg.Content, msg.Type, at, msg.ID)
	return err
}

func (r *MessageRepo) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE messages SET is_deleted = TRUE, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND is_deleted = FALSE`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}

func (r *MessageRepo) Search(ctx context.Context, userA, userB uuid.UUID, query string, offset, limit int) ([]domain.Message, error) {
	sql := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE ` + pairFilter + ` AND m.is_deleted = FALSE AND m.content ILIKE '%' || $3 || '%' ESCAPE '\'
		ORDER BY m.created_at DESC, m.id DESC
		OFFSET $4 LIMIT $5`
	return r.queryMessages(ctx, sql, userA, userB, escapeLike(query), offset, limit)
}

func (r *MessageRepo) CountSearch(ctx context.Context, userA, userB uuid.UUID, query string) (int, error) {
	sql := `
		SELECT COUNT(*) FROM messages m
		WHERE ` + pairFilter + ` AND m.is_deleted = FALSE AND m.content ILIKE '%' || $3 || '%' ESCAPE '\'`
	var count int
	err := r.pool.QueryRow(ctx, sql, userA, userB, escapeLike(query)).Scan(&count)
	return count, err
}

// escapeLike neutralizes LIKE metacharacters so the query is matched as a
// literal substring, not a pattern.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func (r *MessageRepo) queryMessages(ctx context.Context, query string, args ...any) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := scanMessageRow(rows, &msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func scanMessageRow(row pgx.Row, msg *domain.Message) error {
	return row.Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Type, &msg.Status,
		&msg.ReplyToID, &msg.IsDeleted, &msg.DeliveredAt, &msg.ReadAt, &msg.EditedAt,
		&msg.DeletedAt, &msg.CreatedAt, &msg.UpdatedAt,
		&msg.SenderUsername, &msg.SenderDisplayName,
	)
}
