package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStatusText(t *testing.T) {
	userRepo := newMemUserRepo()
	svc := NewUserService(userRepo, newMemContactRepo())
	ctx := context.Background()
	alice := userRepo.add("alice")

	got, err := svc.UpdateStatusText(ctx, alice, "  Busy coding  ")
	require.NoError(t, err)
	assert.Equal(t, "Busy coding", got)

	user, err := svc.Get(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Busy coding", user.StatusText)

	_, err = svc.UpdateStatusText(ctx, alice, strings.Repeat("x", 140))
	assert.ErrorIs(t, err, ErrStatusTooLong)

	// 139 runes is the boundary and still allowed.
	_, err = svc.UpdateStatusText(ctx, alice, strings.Repeat("x", 139))
	assert.NoError(t, err)
}

func TestContacts(t *testing.T) {
	userRepo := newMemUserRepo()
	svc := NewUserService(userRepo, newMemContactRepo())
	ctx := context.Background()
	alice := userRepo.add("alice")
	bob := userRepo.add("bob")

	assert.ErrorIs(t, svc.AddContact(ctx, alice, alice), ErrCannotContactSelf)
	assert.ErrorIs(t, svc.AddContact(ctx, alice, uuid.New()), ErrUserNotFound)

	require.NoError(t, svc.AddContact(ctx, alice, bob))

	ids, err := svc.ContactIDs(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob}, ids)

	// The relation is directional; bob has not added alice.
	ids, err = svc.ContactIDs(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, svc.RemoveContact(ctx, alice, bob))
	ids, err = svc.ContactIDs(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
