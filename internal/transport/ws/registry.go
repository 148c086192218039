package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type session struct {
	client    *Client
	joinedKey string
	lastSeen  time.Time
}

// Registry tracks which users are connected and which conversation each
// connection is viewing. One live handle per user: registering again
// replaces the previous connection (last-writer-wins). Created at process
// start, injected into the hub, never touched by the store or HTTP path.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*session)}
}

// Register binds the user to this client and returns the replaced client,
// if any, so the caller can close it.
func (r *Registry) Register(userID uuid.UUID, c *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	var replaced *Client
	if prev, ok := r.sessions[userID]; ok {
		replaced = prev.client
	}
	r.sessions[userID] = &session{client: c, lastSeen: time.Now()}
	return replaced
}

// Unregister removes the user's session only if this client still owns it,
// so a replaced connection's teardown cannot evict its successor.
func (r *Registry) Unregister(userID uuid.UUID, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[userID]
	if !ok || sess.client != c {
		return false
	}
	delete(r.sessions, userID)
	return true
}

// SetJoined moves the user's connection to a conversation, leaving any
// previously joined one.
func (r *Registry) SetJoined(userID uuid.UUID, conversationKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[userID]; ok {
		sess.joinedKey = conversationKey
		sess.lastSeen = time.Now()
	}
}

func (r *Registry) JoinedKey(userID uuid.UUID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[userID]
	if !ok {
		return "", false
	}
	return sess.joinedKey, true
}

func (r *Registry) Lookup(userID uuid.UUID) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[userID]
	if !ok {
		return nil, false
	}
	return sess.client, true
}

func (r *Registry) IsOnline(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[userID]
	return ok
}

// MembersOf returns the clients currently joined to a conversation.
func (r *Registry) MembersOf(conversationKey string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var members []*Client
	for _, sess := range r.sessions {
		if sess.joinedKey == conversationKey {
			members = append(members, sess.client)
		}
	}
	return members
}

// TouchAll refreshes every session's last-seen stamp and returns the
// registered user ids, for the gateway's periodic presence tick.
func (r *Registry) TouchAll() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	ids := make([]uuid.UUID, 0, len(r.sessions))
	for id, sess := range r.sessions {
		sess.lastSeen = now
		ids = append(ids, id)
	}
	return ids
}

// Clear drops all sessions at shutdown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[uuid.UUID]*session)
}
