package ws

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/domain"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/service"
)

const lastSeenInterval = 30 * time.Second

// Hub is the realtime gateway: it owns the session registry, routes client
// events into the services and fans results out to the right peers.
type Hub struct {
	registry *Registry
	messages *service.MessageService
	users    *service.UserService
}

func NewHub(registry *Registry, messages *service.MessageService, users *service.UserService) *Hub {
	return &Hub{
		registry: registry,
		messages: messages,
		users:    users,
	}
}

// Run drives the periodic presence tick until ctx is cancelled, bounding
// last-seen staleness between explicit activity events.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(lastSeenInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ids := h.registry.TouchAll()
			if len(ids) == 0 {
				continue
			}
			if err := h.users.TouchLastSeen(ctx, ids); err != nil {
				log.Printf("ws hub: last-seen tick: %v", err)
			}

		case <-ctx.Done():
			h.registry.Clear()
			return
		}
	}
}

// HandleConnect registers the authenticated connection, replacing any prior
// one for the same user, and announces the user online to their contacts.
func (h *Hub) HandleConnect(c *Client) {
	if replaced := h.registry.Register(c.userID, c); replaced != nil {
		replaced.shutdown()
	}
	log.Printf("ws hub: user %s connected", c.userID)

	ctx := context.Background()
	if err := h.users.SetPresence(ctx, c.userID, true); err != nil {
		log.Printf("ws hub: set online %s: %v", c.userID, err)
	}
	h.broadcastPresence(ctx, c.userID, true, nil)
}

// HandleDisconnect tears the session down. Presence only flips offline if
// this client still owned the registry entry (it may have been replaced).
func (h *Hub) HandleDisconnect(c *Client) {
	c.shutdown()

	if !h.registry.Unregister(c.userID, c) {
		return
	}
	log.Printf("ws hub: user %s disconnected", c.userID)

	ctx := context.Background()
	now := time.Now()
	if err := h.users.SetPresence(ctx, c.userID, false); err != nil {
		log.Printf("ws hub: set offline %s: %v", c.userID, err)
	}
	h.broadcastPresence(ctx, c.userID, false, &now)
}

func (h *Hub) HandleJoin(c *Client, p JoinConversationPayload) {
	key := domain.ConversationKey(c.userID, p.PeerID)
	h.registry.SetJoined(c.userID, key)

	// Joining means the viewer can now see the peer's messages: advance
	// them to delivered before acknowledging the join.
	if _, err := h.messages.MarkDelivered(context.Background(), c.userID, p.PeerID); err != nil {
		log.Printf("ws hub: mark delivered %s: %v", key, err)
		c.sendError("INTERNAL", "could not update delivery state")
		return
	}

	evt, err := NewEvent(EventTypeConversationJoined, ConversationJoinedPayload{ConversationKey: key})
	if err != nil {
		return
	}
	c.sendEvent(evt)
}

func (h *Hub) HandleSendMessage(c *Client, p SendMessagePayload) {
	// Persistence failure emits a scoped error; the broadcast only happens
	// through the notifier after the store write commits.
	_, err := h.messages.Send(context.Background(), c.userID, service.SendMessageInput{
		ReceiverID: p.ReceiverID,
		Content:    p.Content,
		Type:       p.Type,
		ReplyToID:  p.ReplyToID,
	})
	if err != nil {
		code, msg := wsErrorCode(err)
		c.sendError(code, msg)
	}
}

func (h *Hub) HandleTyping(c *Client, p TypingPayload) {
	key := domain.ConversationKey(c.userID, p.PeerID)

	evt, err := NewEvent(EventTypeTypingIndicator, TypingIndicatorPayload{
		UserID:   c.userID,
		IsTyping: p.IsTyping,
	})
	if err != nil {
		return
	}
	h.broadcastToKey(key, evt, &c.userID)
}

func (h *Hub) HandleMarkAsRead(c *Client, p MarkAsReadPayload) {
	if _, err := h.messages.MarkRead(context.Background(), c.userID, p.SenderID); err != nil {
		code, msg := wsErrorCode(err)
		c.sendError(code, msg)
	}
}

func (h *Hub) HandleUpdateStatus(c *Client, p UpdateStatusPayload) {
	ctx := context.Background()
	statusText, err := h.users.UpdateStatusText(ctx, c.userID, p.StatusText)
	if err != nil {
		code, msg := wsErrorCode(err)
		c.sendError(code, msg)
		return
	}

	evt, err := NewEvent(EventTypeStatusUpdate, StatusUpdatePayload{
		UserID:     c.userID,
		StatusText: statusText,
	})
	if err != nil {
		return
	}
	c.sendEvent(evt)
	h.broadcastToContacts(ctx, c.userID, evt)
}

func (h *Hub) sendToUser(userID uuid.UUID, evt *Event) {
	if client, ok := h.registry.Lookup(userID); ok {
		client.sendEvent(evt)
	}
}

func (h *Hub) broadcastToKey(conversationKey string, evt *Event, excludeUserID *uuid.UUID) {
	for _, client := range h.registry.MembersOf(conversationKey) {
		if excludeUserID != nil && client.userID == *excludeUserID {
			continue
		}
		client.sendEvent(evt)
	}
}

func (h *Hub) broadcastToContacts(ctx context.Context, userID uuid.UUID, evt *Event) {
	ids, err := h.users.ContactIDs(ctx, userID)
	if err != nil {
		log.Printf("ws hub: contacts of %s: %v", userID, err)
		return
	}
	for _, id := range ids {
		h.sendToUser(id, evt)
	}
}

func (h *Hub) broadcastPresence(ctx context.Context, userID uuid.UUID, online bool, lastSeen *time.Time) {
	eventType := EventTypeUserOnline
	if !online {
		eventType = EventTypeUserOffline
	}
	evt, err := NewEvent(eventType, PresencePayload{
		UserID:   userID,
		IsOnline: online,
		LastSeen: lastSeen,
	})
	if err != nil {
		return
	}
	h.broadcastToContacts(ctx, userID, evt)
}

func wsErrorCode(err error) (string, string) {
	switch {
	case errors.Is(err, service.ErrContentRequired),
		errors.Is(err, service.ErrContentTooLong),
		errors.Is(err, service.ErrInvalidType),
		errors.Is(err, service.ErrCannotMessageSelf),
		errors.Is(err, service.ErrStatusTooLong),
		errors.Is(err, service.ErrQueryTooShort):
		return "VALIDATION_ERROR", err.Error()
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrMessageNotFound):
		return "NOT_FOUND", err.Error()
	case errors.Is(err, service.ErrNotMessageOwner),
		errors.Is(err, service.ErrNotParticipant):
		return "FORBIDDEN", err.Error()
	case errors.Is(err, service.ErrEditWindowExpired):
		return "INVALID_STATE", err.Error()
	default:
		return "INTERNAL", "something went wrong"
	}
}
