package fare

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rts-transit/rapidride/internal/model"
)

// ErrUnknownTicketType is returned when issuance is requested for an
// unrecognized fare class.  The request is rejected before any signing
// or persistence work.
var ErrUnknownTicketType = errors.New("unknown ticket type")

// ErrInvalidValidFor is returned when a monthly pass is requested with
// a valid_for token that does not parse as "YYYY-MM".  Rejecting this
// at issuance keeps malformed class/validity combinations out of the
// signed record entirely.
var ErrInvalidValidFor = errors.New("invalid valid_for for ticket type")

// Signer issues fare tickets: it generates fresh identifiers, stamps
// the issuance time, signs the canonical record bytes with the issuer's
// Ed25519 private key and persists the stored row.  The key is provided
// once at construction and is never logged or exposed.
type Signer struct {
	key    ed25519.PrivateKey
	issuer string
	loc    *time.Location
	store  TicketStore

	// Now supplies the issuance clock.  Tests override it to pin the
	// issued_at stamp.
	Now func() time.Time
}

// NewSigner builds a Signer from a raw 32-byte Ed25519 seed.  The
// location is the operating timezone stamped into issued_at; nil falls
// back to UTC.
func NewSigner(seed []byte, issuer string, loc *time.Location, store TicketStore) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signing key must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Signer{
		key:    ed25519.NewKeyFromSeed(seed),
		issuer: issuer,
		loc:    loc,
		store:  store,
		Now:    time.Now,
	}, nil
}

// Public returns the verification key matching the signing key.
func (s *Signer) Public() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

// Issuer returns the identity string stamped into issued tickets.
func (s *Signer) Issuer() string { return s.issuer }

// Issue creates, signs and persists a new ticket for a rider and
// returns the signed envelope ready for transport encoding.
//
// Issuance and persistence are one logical unit: when the store insert
// fails, no envelope is returned and the error wraps the storage
// failure as a *PersistenceError.  validFor is only meaningful for
// monthly passes; for per-ride classes it is discarded so the signed
// record can never carry a stray validity token.
func (s *Signer) Issue(ctx context.Context, userID string, ticketType model.TicketType, validFor string) (model.SignedEnvelope, error) {
	if !ticketType.Known() {
		return model.SignedEnvelope{}, fmt.Errorf("%w: %q", ErrUnknownTicketType, ticketType)
	}
	if ticketType == model.TicketMonthlyPass {
		if _, err := time.Parse(validForLayout, validFor); err != nil {
			return model.SignedEnvelope{}, fmt.Errorf("%w: %q", ErrInvalidValidFor, validFor)
		}
	} else {
		validFor = ""
	}

	record := model.TicketRecord{
		TicketID:   uuid.NewString(),
		UserID:     userID,
		TicketType: ticketType,
		ValidFor:   validFor,
		IssuedAt:   s.Now().In(s.loc).Format(model.IssuedAtLayout),
		Issuer:     s.issuer,
	}

	encoded, err := EncodeTicket(record)
	if err != nil {
		return model.SignedEnvelope{}, err
	}
	// Ed25519 is deterministic: the same record bytes always produce
	// the same signature.
	signature := ed25519.Sign(s.key, encoded)

	stored := model.StoredTicket{
		TicketID:   record.TicketID,
		UserID:     record.UserID,
		TicketType: record.TicketType,
		ValidFor:   record.ValidFor,
		IssuedAt:   record.IssuedAt,
		Issuer:     record.Issuer,
		Signature:  base64.StdEncoding.EncodeToString(signature),
		Status:     model.StatusActive,
	}
	if err := s.store.Insert(ctx, stored); err != nil {
		return model.SignedEnvelope{}, &PersistenceError{Op: "insert ticket", Err: err}
	}

	return model.SignedEnvelope{Ticket: record, Signature: signature}, nil
}
