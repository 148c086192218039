package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeJoinConversation = "join-conversation"
	EventTypeSendMessage      = "send-message"
	EventTypeTyping           = "typing"
	EventTypeMarkAsRead       = "mark-as-read"
	EventTypeUpdateStatus     = "update-status"
	EventTypePing             = "ping"
)

// Event types - Server → Client
const (
	EventTypeNewMessage          = "new-message"
	EventTypeMessageNotification = "message-notification"
	EventTypeTypingIndicator     = "typing-indicator"
	EventTypeMessageRead         = "message-read"
	EventTypeUserOnline          = "user-online"
	EventTypeUserOffline         = "user-offline"
	EventTypeStatusUpdate        = "status-update"
	EventTypeConversationJoined  = "conversation-joined"
	EventTypePong                = "pong"
	EventTypeError               = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type JoinConversationPayload struct {
	PeerID uuid.UUID `json:"peer_id"`
}

type SendMessagePayload struct {
	ReceiverID uuid.UUID  `json:"receiver_id"`
	Content    string     `json:"content"`
	Type       string     `json:"message_type,omitempty"`
	ReplyToID  *uuid.UUID `json:"reply_to,omitempty"`
}

type TypingPayload struct {
	PeerID   uuid.UUID `json:"peer_id"`
	IsTyping bool      `json:"is_typing"`
}

type MarkAsReadPayload struct {
	MessageID *uuid.UUID `json:"message_id,omitempty"`
	SenderID  uuid.UUID  `json:"sender_id"`
}

type UpdateStatusPayload struct {
	StatusText string `json:"status_text"`
}

// --- Server → Client payloads ---

type MessagePayload struct {
	domain.Message
}

type TypingIndicatorPayload struct {
	UserID   uuid.UUID `json:"user_id"`
	IsTyping bool      `json:"is_typing"`
}

type MessageReadPayload struct {
	ReaderID uuid.UUID `json:"reader_id"`
	SenderID uuid.UUID `json:"sender_id"`
	ReadAt   time.Time `json:"read_at"`
}

type PresencePayload struct {
	UserID   uuid.UUID  `json:"user_id"`
	IsOnline bool       `json:"is_online"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

type StatusUpdatePayload struct {
	UserID     uuid.UUID `json:"user_id"`
	StatusText string    `json:"status_text"`
}

type ConversationJoinedPayload struct {
	ConversationKey string `json:"conversation_key"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
