package fare

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rts-transit/rapidride/internal/model"
)

func storedFixture(id string) model.StoredTicket {
	return model.StoredTicket{
		TicketID:   id,
		UserID:     "001132",
		TicketType: model.TicketSingleUse,
		IssuedAt:   "20250815_0930-0600",
		Issuer:     "RTS RapidRide",
		Signature:  "c2ln",
		Status:     model.StatusActive,
	}
}

func TestMemoryStore_InsertGet(t *testing.T) {
	m := NewMemoryTicketStore()
	ctx := context.Background()

	require.NoError(t, m.Insert(ctx, storedFixture("t1")))

	got, err := m.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.TicketID)
	assert.Equal(t, model.StatusActive, got.Status)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt defaulted on insert")

	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestMemoryStore_DuplicateInsert(t *testing.T) {
	m := NewMemoryTicketStore()
	ctx := context.Background()

	require.NoError(t, m.Insert(ctx, storedFixture("t1")))
	assert.ErrorIs(t, m.Insert(ctx, storedFixture("t1")), ErrTicketExists)
}

func TestMemoryStore_TryMarkUsed(t *testing.T) {
	m := NewMemoryTicketStore()
	ctx := context.Background()
	require.NoError(t, m.Insert(ctx, storedFixture("t1")))

	won, err := m.TryMarkUsed(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, won)

	got, err := m.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusUsed, got.Status)
	require.NotNil(t, got.UsedAt)

	// Second attempt loses; missing ids lose without error.
	won, err = m.TryMarkUsed(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, won)

	won, err = m.TryMarkUsed(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, won)
}

func TestMemoryStore_Revoke(t *testing.T) {
	m := NewMemoryTicketStore()
	ctx := context.Background()
	require.NoError(t, m.Insert(ctx, storedFixture("t1")))

	require.NoError(t, m.Revoke(ctx, "t1"))
	got, err := m.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRevoked, got.Status)

	// Revoking an already used ticket still pins it revoked.
	require.NoError(t, m.Insert(ctx, storedFixture("t2")))
	_, err = m.TryMarkUsed(ctx, "t2")
	require.NoError(t, err)
	require.NoError(t, m.Revoke(ctx, "t2"))
	got, err = m.Get(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRevoked, got.Status)

	assert.ErrorIs(t, m.Revoke(ctx, "missing"), ErrTicketNotFound)
}
