package fare

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/rts-transit/rapidride/internal/model"
)

// Reason is the stable machine-readable code attached to every failed
// validation.  Fare-gate UIs key their operator messages off these
// values, so they must never change for an existing failure mode.
type Reason string

const (
	ReasonMalformedPayload  Reason = "malformed_payload"
	ReasonIssuerMismatch    Reason = "issuer_mismatch"
	ReasonBadSignature      Reason = "bad_signature"
	ReasonNotCurrentlyValid Reason = "not_currently_valid"
	ReasonUnknownTicket     Reason = "unknown_ticket"
	ReasonAlreadyUsed       Reason = "already_used"
	ReasonRevoked           Reason = "revoked"
)

// ValidationResult is the outcome of the validation pipeline.  On
// success the ticket identity fields are echoed back for display; on
// failure Reason carries the first failed check.
type ValidationResult struct {
	Valid      bool             `json:"valid"`
	Reason     Reason           `json:"reason,omitempty"`
	TicketID   string           `json:"ticket_id,omitempty"`
	UserID     string           `json:"user_id,omitempty"`
	TicketType model.TicketType `json:"ticket_type,omitempty"`
}

// ConsumeOutcome is the result code of a consume attempt.
type ConsumeOutcome string

const (
	OutcomeConsumed      ConsumeOutcome = "consumed"
	OutcomeAlreadyUsed   ConsumeOutcome = "already_used"
	OutcomeUnknownTicket ConsumeOutcome = "unknown_ticket"
	OutcomeNotConsumable ConsumeOutcome = "not_consumable"
)

// ConsumeResult reports what a consume call did (or refused to do).
type ConsumeResult struct {
	Outcome  ConsumeOutcome `json:"status"`
	TicketID string         `json:"ticket_id"`
}

// Verifier checks QR payloads against the trusted issuer's public key
// and runs the ordered validation pipeline.  Validation is read-only;
// the separate Consume operation is the only path that mutates state.
type Verifier struct {
	pub           ed25519.PublicKey
	trustedIssuer string
	policy        *ValidityPolicy
	store         TicketStore

	// Now supplies the validation clock for the temporal check.  Tests
	// override it to pin the evaluation instant.
	Now func() time.Time
}

// NewVerifier builds a Verifier from raw 32-byte Ed25519 public key
// bytes.
func NewVerifier(pub []byte, trustedIssuer string, policy *ValidityPolicy, store TicketStore) (*Verifier, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("verification key must be %d bytes, got %d", ed25519.PublicKeySize, len(pub))
	}
	if policy == nil {
		policy = NewValidityPolicy(nil)
	}
	return &Verifier{
		pub:           ed25519.PublicKey(pub),
		trustedIssuer: trustedIssuer,
		policy:        policy,
		store:         store,
		Now:           time.Now,
	}, nil
}

func invalid(reason Reason) ValidationResult {
	return ValidationResult{Valid: false, Reason: reason}
}

// Validate runs the pipeline over a transport payload: decode, issuer,
// signature, temporal validity, existence, stored status.  It
// short-circuits on the first failure and never mutates anything.  The
// returned error is non-nil only for storage collaborator failures
// (*PersistenceError); every ticket-level rejection comes back as an
// invalid result with its reason.
func (v *Verifier) Validate(ctx context.Context, payload string) (ValidationResult, error) {
	env, err := DecodeEnvelope(payload)
	if err != nil {
		return invalid(ReasonMalformedPayload), nil
	}
	ticket := env.Ticket

	if ticket.Issuer != v.trustedIssuer {
		return invalid(ReasonIssuerMismatch), nil
	}

	// Re-derive the signed bytes from the decoded record.  The
	// transport encoding is never trusted here: a payload carrying
	// different bytes for a semantically identical record must fail.
	encoded, err := EncodeTicket(ticket)
	if err != nil {
		return ValidationResult{}, err
	}
	if !ed25519.Verify(v.pub, encoded, env.Signature) {
		return invalid(ReasonBadSignature), nil
	}

	if !v.policy.IsValidNow(ticket, v.Now()) {
		return invalid(ReasonNotCurrentlyValid), nil
	}

	stored, err := v.store.Get(ctx, ticket.TicketID)
	if errors.Is(err, ErrTicketNotFound) {
		return invalid(ReasonUnknownTicket), nil
	}
	if err != nil {
		return ValidationResult{}, &PersistenceError{Op: "get ticket", Err: err}
	}
	if stored.Status != model.StatusActive {
		return invalid(reasonForStatus(stored.Status)), nil
	}

	return ValidationResult{
		Valid:      true,
		TicketID:   ticket.TicketID,
		UserID:     ticket.UserID,
		TicketType: ticket.TicketType,
	}, nil
}

// Consume spends a per-ride ticket.  The active→used transition is
// delegated to the store's atomic conditional update, so concurrent
// calls on the same id yield exactly one OutcomeConsumed; every loser
// observes OutcomeAlreadyUsed.  Passes are never consumed and report
// OutcomeNotConsumable with state untouched.
func (v *Verifier) Consume(ctx context.Context, ticketID string) (ConsumeResult, error) {
	result := ConsumeResult{TicketID: ticketID}

	stored, err := v.store.Get(ctx, ticketID)
	if errors.Is(err, ErrTicketNotFound) {
		result.Outcome = OutcomeUnknownTicket
		return result, nil
	}
	if err != nil {
		return ConsumeResult{}, &PersistenceError{Op: "get ticket", Err: err}
	}

	// Fast-path report for tickets already spent or revoked.  This is
	// informational only; the CAS below remains the actual guard.
	if stored.Status != model.StatusActive {
		result.Outcome = OutcomeAlreadyUsed
		return result, nil
	}
	if !stored.TicketType.Consumable() {
		result.Outcome = OutcomeNotConsumable
		return result, nil
	}

	won, err := v.store.TryMarkUsed(ctx, ticketID)
	if err != nil {
		return ConsumeResult{}, &PersistenceError{Op: "mark ticket used", Err: err}
	}
	if !won {
		result.Outcome = OutcomeAlreadyUsed
		return result, nil
	}
	result.Outcome = OutcomeConsumed
	return result, nil
}

// reasonForStatus maps a non-active stored status to its rejection
// reason.  Anything unrecognized is treated as revoked (fail closed).
func reasonForStatus(s model.TicketStatus) Reason {
	switch s {
	case model.StatusUsed:
		return ReasonAlreadyUsed
	case model.StatusRevoked:
		return ReasonRevoked
	}
	return ReasonRevoked
}
