package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/domain"
)

// In-memory repository fakes mirroring the postgres implementations'
// semantics: pair membership, deletion visibility, newest-first ordering
// and conditional status transitions.

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *memUserRepo) add(username string) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	now := time.Now()
	r.users[id] = &domain.User{
		ID:          id,
		Email:       username + "@example.com",
		Username:    username,
		DisplayName: username,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return id
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) SetPresence(ctx context.Context, id uuid.UUID, online bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.IsOnline = online
		ts := at
		u.LastSeen = &ts
	}
	return nil
}

func (r *memUserRepo) UpdateStatusText(ctx context.Context, id uuid.UUID, statusText string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.StatusText = statusText
	}
	return nil
}

func (r *memUserRepo) TouchLastSeen(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			ts := at
			u.LastSeen = &ts
		}
	}
	return nil
}

type storedMessage struct {
	domain.Message
	seq int
}

type memMessageRepo struct {
	mu       sync.Mutex
	messages []*storedMessage
	nextSeq  int
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{}
}

// backdate shifts a stored message's creation time, for edit-window and
// ordering tests.
func (r *memMessageRepo) backdate(id uuid.UUID, createdAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			m.CreatedAt = createdAt
		}
	}
}

func (r *memMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSeq++
	r.messages = append(r.messages, &storedMessage{Message: *msg, seq: r.nextSeq})
	return nil
}

func (r *memMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			cp := m.Message
			return &cp, nil
		}
	}
	return nil, nil
}

func isPair(m *storedMessage, a, b uuid.UUID) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// newestFirst sorts by created_at descending with insertion order as a
// deterministic tie-break, matching the DB's created_at DESC, id DESC.
func newestFirst(msgs []*storedMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
		}
		return msgs[i].seq > msgs[j].seq
	})
}

func (r *memMessageRepo) pairMessages(a, b uuid.UUID) []*storedMessage {
	var out []*storedMessage
	for _, m := range r.messages {
		if isPair(m, a, b) && !m.IsDeleted {
			out = append(out, m)
		}
	}
	newestFirst(out)
	return out
}

func (r *memMessageRepo) ListConversation(ctx context.Context, userA, userB uuid.UUID, offset, limit int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.pairMessages(userA, userB)
	if offset >= len(msgs) {
		return nil, nil
	}
	end := offset + limit
	if end > len(msgs) {
		end = len(msgs)
	}
	out := make([]domain.Message, 0, end-offset)
	for _, m := range msgs[offset:end] {
		out = append(out, m.Message)
	}
	return out, nil
}

func (r *memMessageRepo) CountConversation(ctx context.Context, userA, userB uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pairMessages(userA, userB)), nil
}

func (r *memMessageRepo) LatestConversations(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ConversationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	latest := make(map[uuid.UUID]*storedMessage)
	unread := make(map[uuid.UUID]int)
	for _, m := range r.messages {
		if m.IsDeleted {
			continue
		}
		var peer uuid.UUID
		switch {
		case m.SenderID == userID:
			peer = m.ReceiverID
		case m.ReceiverID == userID:
			peer = m.SenderID
		default:
			continue
		}
		cur, ok := latest[peer]
		if !ok || m.CreatedAt.After(cur.CreatedAt) || (m.CreatedAt.Equal(cur.CreatedAt) && m.seq > cur.seq) {
			latest[peer] = m
		}
		if m.ReceiverID == userID && m.Status != domain.StatusRead {
			unread[m.SenderID]++
		}
	}

	var rows []*storedMessage
	peerOf := make(map[*storedMessage]uuid.UUID)
	for peer, m := range latest {
		rows = append(rows, m)
		peerOf[m] = peer
	}
	newestFirst(rows)
	if len(rows) > limit {
		rows = rows[:limit]
	}

	var out []domain.ConversationSummary
	for _, m := range rows {
		peer := peerOf[m]
		out = append(out, domain.ConversationSummary{
			PeerID:      peer,
			LastMessage: m.Message,
			UnreadCount: unread[peer],
		})
	}
	return out, nil
}

func (r *memMessageRepo) MarkDelivered(ctx context.Context, senderID, receiverID uuid.UUID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID && m.Status == domain.StatusSent && !m.IsDeleted {
			m.Status = domain.StatusDelivered
			ts := at
			m.DeliveredAt = &ts
			m.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func (r *memMessageRepo) MarkRead(ctx context.Context, senderID, receiverID uuid.UUID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.IsDeleted &&
			(m.Status == domain.StatusSent || m.Status == domain.StatusDelivered) {
			m.Status = domain.StatusRead
			ts := at
			m.ReadAt = &ts
			if m.DeliveredAt == nil {
				m.DeliveredAt = &ts
			}
			m.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func (r *memMessageRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, m := range r.messages {
		if m.ReceiverID == userID && m.Status != domain.StatusRead && !m.IsDeleted {
			count++
		}
	}
	return count, nil
}

func (r *memMessageRepo) Update(ctx context.Context, msg *domain.Message, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == msg.ID {
			m.Content = msg.Content
			m.Type = msg.Type
			ts := at
			m.EditedAt = &ts
			m.UpdatedAt = at
		}
	}
	return nil
}

func (r *memMessageRepo) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id && !m.IsDeleted {
			m.IsDeleted = true
			ts := at
			m.DeletedAt = &ts
			m.UpdatedAt = at
		}
	}
	return nil
}

func (r *memMessageRepo) Search(ctx context.Context, userA, userB uuid.UUID, query string, offset, limit int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(query)
	var matches []*storedMessage
	for _, m := range r.pairMessages(userA, userB) {
		if strings.Contains(strings.ToLower(m.Content), needle) {
			matches = append(matches, m)
		}
	}
	if offset >= len(matches) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	out := make([]domain.Message, 0, end-offset)
	for _, m := range matches[offset:end] {
		out = append(out, m.Message)
	}
	return out, nil
}

func (r *memMessageRepo) CountSearch(ctx context.Context, userA, userB uuid.UUID, query string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(query)
	count := 0
	for _, m := range r.pairMessages(userA, userB) {
		if strings.Contains(strings.ToLower(m.Content), needle) {
			count++
		}
	}
	return count, nil
}

type memContactRepo struct {
	mu    sync.Mutex
	pairs map[uuid.UUID]map[uuid.UUID]bool
}

func newMemContactRepo() *memContactRepo {
	return &memContactRepo{pairs: make(map[uuid.UUID]map[uuid.UUID]bool)}
}

func (r *memContactRepo) Add(ctx context.Context, userID, contactID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pairs[userID] == nil {
		r.pairs[userID] = make(map[uuid.UUID]bool)
	}
	r.pairs[userID][contactID] = true
	return nil
}

func (r *memContactRepo) Remove(ctx context.Context, userID, contactID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pairs[userID], contactID)
	return nil
}

func (r *memContactRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Contact
	for id := range r.pairs[userID] {
		out = append(out, domain.Contact{UserID: userID, ContactID: id})
	}
	return out, nil
}

func (r *memContactRepo) ListIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for id := range r.pairs[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *memContactRepo) Exists(ctx context.Context, userID, contactID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pairs[userID][contactID], nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []domain.Message
	reads    []uuid.UUID // sender ids of read receipts
}

func (n *recordingNotifier) NotifyNewMessage(msg *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, *msg)
}

func (n *recordingNotifier) NotifyMessagesRead(senderID, readerID uuid.UUID, readAt time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reads = append(n.reads, senderID)
}
