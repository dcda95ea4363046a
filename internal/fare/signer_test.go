package fare

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rts-transit/rapidride/internal/model"
)

var testSeed = bytes.Repeat([]byte{0x42}, ed25519.SeedSize)

const testIssuer = "RTS RapidRide"

func newTestSigner(t *testing.T, store TicketStore) *Signer {
	t.Helper()
	s, err := NewSigner(testSeed, testIssuer, denver, store)
	require.NoError(t, err)
	s.Now = func() time.Time {
		return time.Date(2025, time.August, 15, 9, 30, 0, 0, denver)
	}
	return s
}

func TestNewSigner_RejectsBadSeed(t *testing.T) {
	_, err := NewSigner([]byte("short"), testIssuer, nil, NewMemoryTicketStore())
	assert.Error(t, err)
}

func TestIssue_SingleUse(t *testing.T) {
	store := NewMemoryTicketStore()
	s := newTestSigner(t, store)

	env, err := s.Issue(context.Background(), "001132", model.TicketSingleUse, "")
	require.NoError(t, err)

	rec := env.Ticket
	_, err = uuid.Parse(rec.TicketID)
	assert.NoError(t, err, "ticket id must be a UUID")
	assert.Equal(t, "001132", rec.UserID)
	assert.Equal(t, model.TicketSingleUse, rec.TicketType)
	assert.Empty(t, rec.ValidFor)
	assert.Equal(t, "20250815_0930-0600", rec.IssuedAt)
	assert.Equal(t, testIssuer, rec.Issuer)

	// The signature covers the canonical record bytes.
	encoded, err := EncodeTicket(rec)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(s.Public(), encoded, env.Signature))

	// Issuance persisted the row as active.
	stored, err := store.Get(context.Background(), rec.TicketID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, stored.Status)
	assert.Equal(t, rec, stored.Record())
	assert.Equal(t, base64.StdEncoding.EncodeToString(env.Signature), stored.Signature)
}

func TestIssue_MonthlyPassKeepsValidFor(t *testing.T) {
	s := newTestSigner(t, NewMemoryTicketStore())

	env, err := s.Issue(context.Background(), "001132", model.TicketMonthlyPass, "2025-09")
	require.NoError(t, err)
	assert.Equal(t, "2025-09", env.Ticket.ValidFor)
}

func TestIssue_PerRideDiscardsValidFor(t *testing.T) {
	s := newTestSigner(t, NewMemoryTicketStore())

	env, err := s.Issue(context.Background(), "001132", model.TicketTenPackUnit, "2025-09")
	require.NoError(t, err)
	assert.Empty(t, env.Ticket.ValidFor)
}

func TestIssue_UnknownType(t *testing.T) {
	s := newTestSigner(t, NewMemoryTicketStore())

	_, err := s.Issue(context.Background(), "001132", "day_pass", "")
	assert.ErrorIs(t, err, ErrUnknownTicketType)
}

func TestIssue_MonthlyPassRequiresValidFor(t *testing.T) {
	s := newTestSigner(t, NewMemoryTicketStore())

	for _, vf := range []string{"", "next month", "2025-8", "2025-08-01"} {
		_, err := s.Issue(context.Background(), "001132", model.TicketMonthlyPass, vf)
		assert.ErrorIs(t, err, ErrInvalidValidFor, "valid_for %q", vf)
	}
}

func TestIssue_DeterministicSignature(t *testing.T) {
	s := newTestSigner(t, NewMemoryTicketStore())

	env, err := s.Issue(context.Background(), "001132", model.TicketSingleUse, "")
	require.NoError(t, err)

	// Re-signing the exact same record bytes yields the same signature.
	encoded, err := EncodeTicket(env.Ticket)
	require.NoError(t, err)
	again := ed25519.Sign(ed25519.NewKeyFromSeed(testSeed), encoded)
	assert.Equal(t, env.Signature, again)
}

// failingStore simulates a broken database.
type failingStore struct{ err error }

func (f *failingStore) Insert(context.Context, model.StoredTicket) error { return f.err }
func (f *failingStore) Get(context.Context, string) (model.StoredTicket, error) {
	return model.StoredTicket{}, f.err
}
func (f *failingStore) TryMarkUsed(context.Context, string) (bool, error) { return false, f.err }

func TestIssue_PersistFailure(t *testing.T) {
	dbErr := errors.New("connection refused")
	s := newTestSigner(t, &failingStore{err: dbErr})

	env, err := s.Issue(context.Background(), "001132", model.TicketSingleUse, "")
	require.Error(t, err)

	var pe *PersistenceError
	assert.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, dbErr)
	assert.Empty(t, env.Ticket.TicketID, "no envelope on failed persistence")
}
