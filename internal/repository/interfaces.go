package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	SetPresence(ctx context.Context, id uuid.UUID, online bool, at time.Time) error
	UpdateStatusText(ctx context.Context, id uuid.UUID, statusText string) error
	TouchLastSeen(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

type ContactRepository interface {
	Add(ctx context.Context, userID, contactID uuid.UUID) error
	Remove(ctx context.Context, userID, contactID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error)
	ListIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Exists(ctx context.Context, userID, contactID uuid.UUID) (bool, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	// GetByID returns soft-deleted rows too; callers decide visibility.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	// ListConversation returns non-deleted messages of the unordered pair
	// {userA, userB}, newest-first, offset/limit windowed.
	ListConversation(ctx context.Context, userA, userB uuid.UUID, offset, limit int) ([]domain.Message, error)
	CountConversation(ctx context.Context, userA, userB uuid.UUID) (int, error)
	LatestConversations(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ConversationSummary, error)
	MarkDelivered(ctx context.Context, senderID, receiverID uuid.UUID, at time.Time) (int64, error)
	MarkRead(ctx context.Context, senderID, receiverID uuid.UUID, at time.Time) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	Update(ctx context.Context, msg *domain.Message, at time.Time) error
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
	Search(ctx context.Context, userA, userB uuid.UUID, query string, offset, limit int) ([]domain.Message, error)
	CountSearch(ctx context.Context, userA, userB uuid.UUID, query string) (int, error)
}
