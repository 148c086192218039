package ws

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/domain"
)

func newTestClient(userID uuid.UUID) *Client {
	return &Client{
		userID: userID,
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	alice := uuid.New()
	c := newTestClient(alice)

	assert.False(t, r.IsOnline(alice))

	replaced := r.Register(alice, c)
	assert.Nil(t, replaced)
	assert.True(t, r.IsOnline(alice))

	got, ok := r.Lookup(alice)
	assert.True(t, ok)
	assert.Same(t, c, got)
}

func TestRegistryLastWriterWins(t *testing.T) {
	r := NewRegistry()
	alice := uuid.New()
	first := newTestClient(alice)
	second := newTestClient(alice)

	r.Register(alice, first)
	replaced := r.Register(alice, second)
	assert.Same(t, first, replaced)

	got, _ := r.Lookup(alice)
	assert.Same(t, second, got)

	// The replaced connection's teardown must not evict its successor.
	assert.False(t, r.Unregister(alice, first))
	assert.True(t, r.IsOnline(alice))

	assert.True(t, r.Unregister(alice, second))
	assert.False(t, r.IsOnline(alice))
}

func TestRegistryJoinedConversation(t *testing.T) {
	r := NewRegistry()
	alice := uuid.New()
	bob := uuid.New()
	aliceClient := newTestClient(alice)
	bobClient := newTestClient(bob)
	r.Register(alice, aliceClient)
	r.Register(bob, bobClient)

	key := domain.ConversationKey(alice, bob)
	r.SetJoined(alice, key)
	r.SetJoined(bob, key)

	joined, ok := r.JoinedKey(alice)
	assert.True(t, ok)
	assert.Equal(t, key, joined)
	assert.Len(t, r.MembersOf(key), 2)

	// Joining a different conversation leaves the previous one.
	carol := uuid.New()
	otherKey := domain.ConversationKey(alice, carol)
	r.SetJoined(alice, otherKey)

	members := r.MembersOf(key)
	assert.Len(t, members, 1)
	assert.Same(t, bobClient, members[0])
}

func TestRegistryTouchAllAndClear(t *testing.T) {
	r := NewRegistry()
	alice := uuid.New()
	bob := uuid.New()
	r.Register(alice, newTestClient(alice))
	r.Register(bob, newTestClient(bob))

	ids := r.TouchAll()
	assert.ElementsMatch(t, []uuid.UUID{alice, bob}, ids)

	r.Clear()
	assert.Empty(t, r.TouchAll())
	assert.False(t, r.IsOnline(alice))
}
