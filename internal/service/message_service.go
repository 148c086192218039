package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/domain"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/repository"
)

var (
	ErrMessageNotFound   = errors.New("message not found")
	ErrNotMessageOwner   = errors.New("only the message sender can perform this action")
	ErrNotParticipant    = errors.New("you are not a participant of this conversation")
	ErrCannotMessageSelf = errors.New("cannot send a message to yourself")
	ErrContentRequired   = errors.New("message content is required")
	ErrContentTooLong    = errors.New("message content exceeds 1000 characters")
	ErrInvalidType       = errors.New("message type must be text or emoji")
	ErrEditWindowExpired = errors.New("messages can only be edited within 24 hours")
	ErrQueryTooShort     = errors.New("search query must be at least 2 characters")
)

const minSearchQueryLength = 2

// Notifier broadcasts real-time events to connected clients. Services call
// it only after the store mutation commits, so sockets never observe state
// that was not persisted.
type Notifier interface {
	NotifyNewMessage(msg *domain.Message)
	NotifyMessagesRead(senderID, readerID uuid.UUID, readAt time.Time)
}

type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    Notifier
}

func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

type SendMessageInput struct {
	ReceiverID uuid.UUID  `json:"receiver_id"`
	Content    string     `json:"content"`
	Type       string     `json:"message_type,omitempty"`
	ReplyToID  *uuid.UUID `json:"reply_to,omitempty"`
}

type EditMessageInput struct {
	Content string `json:"content"`
}

type ConversationResponse struct {
	Messages    []domain.Message  `json:"messages"`
	Pagination  domain.Pagination `json:"pagination"`
	Participant *domain.User      `json:"participant,omitempty"`
}

func (s *MessageService) Send(ctx context.Context, senderID uuid.UUID, input SendMessageInput) (*domain.Message, error) {
	if senderID == input.ReceiverID {
		return nil, ErrCannotMessageSelf
	}

	content, err := validateContent(input.Content)
	if err != nil {
		return nil, err
	}

	receiver, err := s.userRepo.GetByID(ctx, input.ReceiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	msgType := input.Type
	switch msgType {
	case "":
		msgType = domain.DetectMessageType(content)
	case domain.MessageTypeText, domain.MessageTypeEmoji:
	default:
		return nil, ErrInvalidType
	}

	if input.ReplyToID != nil {
		original, err := s.messageRepo.GetByID(ctx, *input.ReplyToID)
		if err != nil {
			return nil, err
		}
		if original == nil {
			return nil, ErrMessageNotFound
		}
	}

	now := time.Now()
	msg := &domain.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: input.ReceiverID,
		Content:    content,
		Type:       msgType,
		Status:     domain.StatusSent,
		ReplyToID:  input.ReplyToID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	full, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(full)
	}

	return full, nil
}

// GetConversation returns one page of the pair's messages, oldest first.
// Fetching a conversation also acknowledges it: the peer's pending messages
// are marked read.
func (s *MessageService) GetConversation(ctx context.Context, userID, peerID uuid.UUID, page, limit int) (*ConversationResponse, error) {
	peer, err := s.userRepo.GetByID(ctx, peerID)
	if err != nil {
		return nil, err
	}
	if peer == nil {
		return nil, ErrUserNotFound
	}

	page, limit = normalizePage(page, limit)

	total, err := s.messageRepo.CountConversation(ctx, userID, peerID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListConversation(ctx, userID, peerID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	// Reverse to chronological order (query returns DESC).
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	if _, err := s.MarkRead(ctx, userID, peerID); err != nil {
		return nil, err
	}

	return &ConversationResponse{
		Messages:    messages,
		Pagination:  paginate(page, limit, total),
		Participant: peer,
	}, nil
}

// MarkDelivered advances the peer's sent messages to delivered. Idempotent;
// already delivered or read messages are untouched.
func (s *MessageService) MarkDelivered(ctx context.Context, readerID, senderID uuid.UUID) (int64, error) {
	return s.messageRepo.MarkDelivered(ctx, senderID, readerID, time.Now())
}

// MarkRead advances the sender's pending messages to read and emits a read
// receipt when anything actually changed.
func (s *MessageService) MarkRead(ctx context.Context, readerID, senderID uuid.UUID) (int64, error) {
	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return 0, err
	}
	if sender == nil {
		return 0, ErrUserNotFound
	}

	now := time.Now()
	modified, err := s.messageRepo.MarkRead(ctx, senderID, readerID, now)
	if err != nil {
		return 0, err
	}

	if modified > 0 && s.notifier != nil {
		s.notifier.NotifyMessagesRead(senderID, readerID, now)
	}

	return modified, nil
}

func (s *MessageService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.messageRepo.CountUnread(ctx, userID)
}

func (s *MessageService) Get(ctx context.Context, userID, messageID uuid.UUID) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	if msg.SenderID != userID && msg.ReceiverID != userID {
		return nil, ErrNotParticipant
	}
	return msg, nil
}

func (s *MessageService) Edit(ctx context.Context, userID, messageID uuid.UUID, input EditMessageInput) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.IsDeleted {
		return nil, ErrMessageNotFound
	}
	if msg.SenderID != userID {
		return nil, ErrNotMessageOwner
	}
	if time.Since(msg.CreatedAt) > domain.EditWindow {
		return nil, ErrEditWindowExpired
	}

	content, err := validateContent(input.Content)
	if err != nil {
		return nil, err
	}

	msg.Content = content
	msg.Type = domain.DetectMessageType(content)
	if err := s.messageRepo.Update(ctx, msg, time.Now()); err != nil {
		return nil, fmt.Errorf("updating message: %w", err)
	}

	return s.messageRepo.GetByID(ctx, msg.ID)
}

// Delete soft-deletes: the row stays for audit but leaves every read path.
func (s *MessageService) Delete(ctx context.Context, userID, messageID uuid.UUID) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}
	if msg.SenderID != userID {
		return ErrNotMessageOwner
	}

	return s.messageRepo.SoftDelete(ctx, messageID, time.Now())
}

func (s *MessageService) Search(ctx context.Context, userID, peerID uuid.UUID, query string, page, limit int) (*ConversationResponse, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchQueryLength {
		return nil, ErrQueryTooShort
	}

	peer, err := s.userRepo.GetByID(ctx, peerID)
	if err != nil {
		return nil, err
	}
	if peer == nil {
		return nil, ErrUserNotFound
	}

	page, limit = normalizePage(page, limit)

	total, err := s.messageRepo.CountSearch(ctx, userID, peerID, query)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.Search(ctx, userID, peerID, query, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	return &ConversationResponse{
		Messages:   messages,
		Pagination: paginate(page, limit, total),
	}, nil
}

// Forward copies a message the requester participates in to a new receiver.
// The copy gets a fresh id and sent status; the original is untouched.
func (s *MessageService) Forward(ctx context.Context, userID, messageID, receiverID uuid.UUID) (*domain.Message, error) {
	original, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if original == nil || original.IsDeleted {
		return nil, ErrMessageNotFound
	}
	if original.SenderID != userID && original.ReceiverID != userID {
		return nil, ErrNotParticipant
	}

	return s.Send(ctx, userID, SendMessageInput{
		ReceiverID: receiverID,
		Content:    original.Content,
		Type:       original.Type,
	})
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrContentRequired
	}
	if len([]rune(content)) > domain.MaxContentLength {
		return "", ErrContentTooLong
	}
	return content, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return page, limit
}

func paginate(page, limit, total int) domain.Pagination {
	totalPages := (total + limit - 1) / limit
	return domain.Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalResults: total,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}
