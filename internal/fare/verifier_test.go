package fare

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rts-transit/rapidride/internal/model"
)

// newTestEngine wires a signer and verifier around one in-memory store
// with pinned clocks: tickets are issued and validated on 2025-08-15.
func newTestEngine(t *testing.T) (*Signer, *Verifier, *MemoryTicketStore) {
	t.Helper()
	store := NewMemoryTicketStore()
	s := newTestSigner(t, store)

	v, err := NewVerifier(s.Public(), testIssuer, NewValidityPolicy(denver), store)
	require.NoError(t, err)
	v.Now = func() time.Time {
		return time.Date(2025, time.August, 15, 10, 0, 0, 0, denver)
	}
	return s, v, store
}

func issuePayload(t *testing.T, s *Signer, ticketType model.TicketType, validFor string) (string, model.SignedEnvelope) {
	t.Helper()
	env, err := s.Issue(context.Background(), "001132", ticketType, validFor)
	require.NoError(t, err)
	payload, err := EncodeEnvelope(env)
	require.NoError(t, err)
	return payload, env
}

func TestValidate_ActiveSingleUse(t *testing.T) {
	s, v, _ := newTestEngine(t)
	payload, env := issuePayload(t, s, model.TicketSingleUse, "")

	res, err := v.Validate(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Reason)
	assert.Equal(t, env.Ticket.TicketID, res.TicketID)
	assert.Equal(t, "001132", res.UserID)
	assert.Equal(t, model.TicketSingleUse, res.TicketType)
}

func TestValidate_MalformedPayload(t *testing.T) {
	_, v, _ := newTestEngine(t)

	for _, payload := range []string{"", "garbage!!", "aGVsbG8="} {
		res, err := v.Validate(context.Background(), payload)
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.Equal(t, ReasonMalformedPayload, res.Reason, "payload %q", payload)
	}
}

func TestValidate_IssuerMismatch(t *testing.T) {
	s, v, _ := newTestEngine(t)
	_, env := issuePayload(t, s, model.TicketSingleUse, "")

	env.Ticket.Issuer = "Some Other Agency"
	payload, err := EncodeEnvelope(env)
	require.NoError(t, err)

	res, err := v.Validate(context.Background(), payload)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonIssuerMismatch, res.Reason)
}

func TestValidate_TamperedFieldFailsSignature(t *testing.T) {
	s, v, _ := newTestEngine(t)

	tamper := map[string]func(*model.TicketRecord){
		"user id":     func(r *model.TicketRecord) { r.UserID = "999999" },
		"ticket type": func(r *model.TicketRecord) { r.TicketType = model.TicketMonthlyPass },
		"issued at":   func(r *model.TicketRecord) { r.IssuedAt = "20250815_0000-0600" },
	}
	for name, mutate := range tamper {
		t.Run(name, func(t *testing.T) {
			_, env := issuePayload(t, s, model.TicketSingleUse, "")
			mutate(&env.Ticket)
			payload, err := EncodeEnvelope(env)
			require.NoError(t, err)

			res, err := v.Validate(context.Background(), payload)
			require.NoError(t, err)
			assert.False(t, res.Valid)
			assert.Equal(t, ReasonBadSignature, res.Reason)
		})
	}
}

func TestValidate_MonthlyPassTemporal(t *testing.T) {
	s, v, _ := newTestEngine(t)

	current, _ := issuePayload(t, s, model.TicketMonthlyPass, "2025-08")
	expired, _ := issuePayload(t, s, model.TicketMonthlyPass, "2025-07")

	res, err := v.Validate(context.Background(), current)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = v.Validate(context.Background(), expired)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonNotCurrentlyValid, res.Reason)
}

func TestValidate_UnknownTicket(t *testing.T) {
	s, _, _ := newTestEngine(t)

	// A verifier over a different store has never seen this ticket, even
	// though the signature checks out.
	otherStore := NewMemoryTicketStore()
	v2, err := NewVerifier(s.Public(), testIssuer, NewValidityPolicy(denver), otherStore)
	require.NoError(t, err)
	v2.Now = func() time.Time {
		return time.Date(2025, time.August, 15, 10, 0, 0, 0, denver)
	}

	payload, _ := issuePayload(t, s, model.TicketSingleUse, "")
	res, err := v2.Validate(context.Background(), payload)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonUnknownTicket, res.Reason)
}

func TestValidate_Revoked(t *testing.T) {
	s, v, store := newTestEngine(t)
	payload, env := issuePayload(t, s, model.TicketSingleUse, "")

	require.NoError(t, store.Revoke(context.Background(), env.Ticket.TicketID))

	res, err := v.Validate(context.Background(), payload)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonRevoked, res.Reason)
}

func TestValidate_StoreFailure(t *testing.T) {
	s, _, _ := newTestEngine(t)
	payload, _ := issuePayload(t, s, model.TicketSingleUse, "")

	broken := &failingStore{err: context.DeadlineExceeded}
	v2, err := NewVerifier(s.Public(), testIssuer, NewValidityPolicy(denver), broken)
	require.NoError(t, err)
	v2.Now = func() time.Time {
		return time.Date(2025, time.August, 15, 10, 0, 0, 0, denver)
	}

	_, err = v2.Validate(context.Background(), payload)
	var pe *PersistenceError
	assert.ErrorAs(t, err, &pe)
}

func TestConsume_Lifecycle(t *testing.T) {
	s, v, _ := newTestEngine(t)
	payload, env := issuePayload(t, s, model.TicketSingleUse, "")
	id := env.Ticket.TicketID

	res, err := v.Consume(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConsumed, res.Outcome)
	assert.Equal(t, id, res.TicketID)

	// Second consume and any later validation see the spent state.
	res, err = v.Consume(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyUsed, res.Outcome)

	vres, err := v.Validate(context.Background(), payload)
	require.NoError(t, err)
	assert.False(t, vres.Valid)
	assert.Equal(t, ReasonAlreadyUsed, vres.Reason)
}

func TestConsume_UnknownTicket(t *testing.T) {
	_, v, _ := newTestEngine(t)

	res, err := v.Consume(context.Background(), "0b6f1f4e-0000-4000-8000-000000000000")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknownTicket, res.Outcome)
}

func TestConsume_PassIsNotConsumable(t *testing.T) {
	s, v, store := newTestEngine(t)
	_, env := issuePayload(t, s, model.TicketMonthlyPass, "2025-08")
	id := env.Ticket.TicketID

	res, err := v.Consume(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotConsumable, res.Outcome)

	// State untouched: the pass still validates.
	stored, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, stored.Status)
}

func TestConsume_ConcurrentDoubleSpend(t *testing.T) {
	s, v, _ := newTestEngine(t)
	_, env := issuePayload(t, s, model.TicketSingleUse, "")
	id := env.Ticket.TicketID

	const attempts = 32
	outcomes := make(chan ConsumeOutcome, attempts)

	var start sync.WaitGroup
	start.Add(1)
	var done sync.WaitGroup
	for i := 0; i < attempts; i++ {
		done.Add(1)
		go func() {
			defer done.Done()
			start.Wait()
			res, err := v.Consume(context.Background(), id)
			assert.NoError(t, err)
			outcomes <- res.Outcome
		}()
	}
	start.Done()
	done.Wait()
	close(outcomes)

	consumed, alreadyUsed := 0, 0
	for o := range outcomes {
		switch o {
		case OutcomeConsumed:
			consumed++
		case OutcomeAlreadyUsed:
			alreadyUsed++
		default:
			t.Fatalf("unexpected outcome %q", o)
		}
	}
	assert.Equal(t, 1, consumed, "exactly one winner")
	assert.Equal(t, attempts-1, alreadyUsed)
}
