package model

import "time"

// TicketType enumerates the fare classes RapidRide sells.  The string
// values are part of the signed ticket encoding and must never change
// for already-issued tickets.
type TicketType string

const (
	// TicketSingleUse is a one-ride fare, consumed at the gate.
	TicketSingleUse TicketType = "single_use"
	// TicketTenPackUnit is one pre-paid unit of a ten-ride pack.  Each
	// unit behaves like a single-use fare at the gate.
	TicketTenPackUnit TicketType = "ten_pack_unit"
	// TicketMonthlyPass is an unlimited-ride pass for one calendar month.
	TicketMonthlyPass TicketType = "monthly_pass"
)

// Known reports whether t is a recognized fare class.
func (t TicketType) Known() bool {
	switch t {
	case TicketSingleUse, TicketTenPackUnit, TicketMonthlyPass:
		return true
	}
	return false
}

// Consumable reports whether tickets of this class are spent by a gate
// consume operation.  Per-ride classes are consumed exactly once; passes
// are checked against the clock instead and are never consumed.
func (t TicketType) Consumable() bool {
	return t == TicketSingleUse || t == TicketTenPackUnit
}

// IssuedAtLayout is the timestamp format stamped into tickets at
// issuance, e.g. "20250831_0915-0600".  It is rendered in the issuer's
// operating timezone and is part of the signed bytes.
const IssuedAtLayout = "20060102_1504-0700"

// TicketRecord is the signed unit of a fare ticket.  Every field is
// immutable once the record has been signed; the canonical encoding of
// these six fields is exactly what the Ed25519 signature covers, so any
// change to field names, json tags or formats breaks verification of
// previously issued tickets.
//
// Fields:
//  TicketID   – UUIDv4, generated at issuance.
//  UserID     – rider the ticket was issued to.
//  TicketType – fare class (see TicketType).
//  ValidFor   – "YYYY-MM" for monthly passes; empty (omitted) otherwise.
//  IssuedAt   – issuance timestamp in IssuedAtLayout.
//  Issuer     – identity string of the issuing authority.
type TicketRecord struct {
	TicketID   string     `json:"ticket_id"`
	UserID     string     `json:"user_id"`
	TicketType TicketType `json:"ticket_type"`
	ValidFor   string     `json:"valid_for,omitempty"`
	IssuedAt   string     `json:"issued_at"`
	Issuer     string     `json:"issuer"`
}

// SignedEnvelope bundles a ticket record with its Ed25519 signature.
// This is what travels inside the QR payload.  The Signature field is
// serialized as standard base64 by encoding/json.
type SignedEnvelope struct {
	Ticket    TicketRecord `json:"ticket"`
	Signature []byte       `json:"signature"`
}

// TicketStatus is the mutable usage state of an issued ticket, owned by
// the ticket store.  The verifier never trusts stored rows for the
// cryptographic facts; it consults them only for this status.
type TicketStatus string

const (
	StatusActive  TicketStatus = "active"
	StatusUsed    TicketStatus = "used"
	StatusRevoked TicketStatus = "revoked"
)

// StoredTicket mirrors the `tickets` table.  It is created atomically
// with issuance and retained forever for audit; the only permitted
// mutations are the one-shot active→used transition performed by the
// consume operation and administrative revocation.
//
// Fields:
//  TicketID   – tickets.ticket_id (primary key, UUIDv4 string).
//  UserID     – tickets.user_id.
//  TicketType – tickets.ticket_type.
//  ValidFor   – tickets.valid_for (empty when not applicable).
//  IssuedAt   – tickets.issued_at (IssuedAtLayout string, audit copy).
//  Issuer     – tickets.issuer (audit copy).
//  Signature  – tickets.signature (base64, audit copy).
//  Status     – tickets.status (active | used | revoked).
//  CreatedAt  – tickets.created_at.
//  UsedAt     – tickets.used_at (nil until consumed).
type StoredTicket struct {
	TicketID   string
	UserID     string
	TicketType TicketType
	ValidFor   string
	IssuedAt   string
	Issuer     string
	Signature  string
	Status     TicketStatus
	CreatedAt  time.Time
	UsedAt     *time.Time
}

// Record reconstructs the signed-field snapshot held by a stored row.
// Useful for audit tooling; verification always uses the envelope's own
// record, never this copy.
func (s StoredTicket) Record() TicketRecord {
	return TicketRecord{
		TicketID:   s.TicketID,
		UserID:     s.UserID,
		TicketType: s.TicketType,
		ValidFor:   s.ValidFor,
		IssuedAt:   s.IssuedAt,
		Issuer:     s.Issuer,
	}
}
