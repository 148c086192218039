package ws

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub, so
// mutations arriving over HTTP fan out exactly like socket-originated ones.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// NotifyNewMessage broadcasts a persisted message to everyone viewing the
// conversation. A receiver who is connected but browsing elsewhere gets a
// separate notification on their personal channel instead.
func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	key := domain.ConversationKey(msg.SenderID, msg.ReceiverID)

	evt, err := NewEvent(EventTypeNewMessage, MessagePayload{Message: *msg})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.broadcastToKey(key, evt, nil)

	if joined, ok := n.hub.registry.JoinedKey(msg.ReceiverID); ok && joined != key {
		notif, err := NewEvent(EventTypeMessageNotification, MessagePayload{Message: *msg})
		if err != nil {
			return
		}
		n.hub.sendToUser(msg.ReceiverID, notif)
	}
}

// NotifyMessagesRead emits the read receipt to the conversation, and
// directly to the original sender if they are connected but not viewing it.
func (n *HubNotifier) NotifyMessagesRead(senderID, readerID uuid.UUID, readAt time.Time) {
	key := domain.ConversationKey(senderID, readerID)

	evt, err := NewEvent(EventTypeMessageRead, MessageReadPayload{
		ReaderID: readerID,
		SenderID: senderID,
		ReadAt:   readAt,
	})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.broadcastToKey(key, evt, nil)

	if joined, ok := n.hub.registry.JoinedKey(senderID); ok && joined != key {
		n.hub.sendToUser(senderID, evt)
	}
}
