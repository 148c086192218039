package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
	}
}

// ReadPump reads events from the WebSocket and routes them to the Hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.HandleDisconnect(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: client %s disconnected", c.userID)
			} else {
				log.Printf("ws: read error from %s: %v", c.userID, err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes events from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.userID, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event. Business errors answer with
// a scoped error event; the connection stays active.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeJoinConversation:
		var p JoinConversationPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.PeerID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid join-conversation payload")
			return
		}
		c.hub.HandleJoin(c, p)

	case EventTypeSendMessage:
		var p SendMessagePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ReceiverID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid send-message payload")
			return
		}
		c.hub.HandleSendMessage(c, p)

	case EventTypeTyping:
		// Best effort: malformed typing events are dropped silently.
		var p TypingPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.PeerID == uuid.Nil {
			return
		}
		c.hub.HandleTyping(c, p)

	case EventTypeMarkAsRead:
		var p MarkAsReadPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.SenderID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid mark-as-read payload")
			return
		}
		c.hub.HandleMarkAsRead(c, p)

	case EventTypeUpdateStatus:
		var p UpdateStatusPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid update-status payload")
			return
		}
		c.hub.HandleUpdateStatus(c, p)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

// shutdown stops the write pump. Safe to call from both the disconnect
// path and the registry replacement path.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Client) sendEvent(evt *Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	c.sendEvent(evt)
}
