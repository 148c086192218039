package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Message status lifecycle. Transitions only move forward:
// sent -> delivered -> read.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

const (
	MessageTypeText  = "text"
	MessageTypeEmoji = "emoji"
)

const (
	MaxContentLength = 1000
	EditWindow       = 24 * time.Hour
)

type Message struct {
	ID          uuid.UUID  `json:"id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	ReceiverID  uuid.UUID  `json:"receiver_id"`
	Content     string     `json:"content"`
	Type        string     `json:"message_type"`
	Status      string     `json:"status"`
	ReplyToID   *uuid.UUID `json:"reply_to,omitempty"`
	IsDeleted   bool       `json:"is_deleted"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`
	DeletedAt   *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	// Joined fields
	SenderUsername    string `json:"sender_username,omitempty"`
	SenderDisplayName string `json:"sender_display_name,omitempty"`
}

// ConversationSummary is one row of the conversation list: the latest
// non-deleted message exchanged with a peer plus the unread count from
// that peer. Derived on demand, never persisted.
type ConversationSummary struct {
	PeerID      uuid.UUID `json:"peer_id"`
	LastMessage Message   `json:"last_message"`
	UnreadCount int       `json:"unread_count"`
	// Joined fields
	PeerUsername    string     `json:"peer_username,omitempty"`
	PeerDisplayName string     `json:"peer_display_name,omitempty"`
	PeerAvatarURL   *string    `json:"peer_avatar_url,omitempty"`
	PeerIsOnline    bool       `json:"peer_is_online"`
	PeerLastSeen    *time.Time `json:"peer_last_seen,omitempty"`
}

type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	TotalPages   int  `json:"total_pages"`
	TotalResults int  `json:"total_results"`
	HasNextPage  bool `json:"has_next_page"`
	HasPrevPage  bool `json:"has_prev_page"`
}

// ConversationKey returns the canonical identifier for the unordered pair
// of users, so both participants converge on the same channel regardless
// of who initiated. Order is the lexicographic order of the UUID strings.
func ConversationKey(a, b uuid.UUID) string {
	s1, s2 := a.String(), b.String()
	if s1 > s2 {
		s1, s2 = s2, s1
	}
	return s1 + ":" + s2
}

// DetectMessageType classifies trimmed content as emoji when it is made up
// entirely of emoji code points and is at most 10 runes long.
func DetectMessageType(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > 10 {
		return MessageTypeText
	}
	for _, r := range trimmed {
		if !isEmojiRune(r) {
			return MessageTypeText
		}
	}
	return MessageTypeEmoji
}

func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // pictographs, emoticons, transport, supplemental
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x2300 && r <= 0x23FF: // misc technical (watch, hourglass)
		return true
	case r >= 0x2B00 && r <= 0x2BFF: // stars, squares
		return true
	case r == 0xFE0F || r == 0x200D || r == 0x20E3: // variation selector, ZWJ, keycap
		return true
	}
	return false
}
