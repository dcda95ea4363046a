// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketIssuedEvent is published after a fare ticket has been signed
// and persisted. It carries the public ticket fields so downstream
// consumers can log, notify or feed analytics without querying the
// primary database. It never includes the signature or the payload.
type TicketIssuedEvent struct {
	TicketID   string `json:"ticket_id"`
	UserID     string `json:"user_id"`
	TicketType string `json:"ticket_type"`
	ValidFor   string `json:"valid_for,omitempty"`
	IssuedAt   string `json:"issued_at"`
	Issuer     string `json:"issuer"`
}

// TicketConsumedEvent is published when a per-ride ticket is spent at a
// gate. ConsumedAt is an RFC3339 UTC timestamp taken at publish time.
type TicketConsumedEvent struct {
	TicketID   string `json:"ticket_id"`
	ConsumedAt string `json:"consumed_at"`
}
