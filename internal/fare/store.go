// Package fare implements the RapidRide ticket engine: canonical
// serialization of fare tickets, Ed25519 issuance and signing, the
// ordered offline validation pipeline and single-use consumption.
// Persistence is reached only through the narrow TicketStore contract
// so that the engine is independent of the storage backend.
package fare

import (
	"context"
	"errors"
	"fmt"

	"github.com/rts-transit/rapidride/internal/model"
)

// ErrTicketNotFound is returned by TicketStore.Get when no ticket with
// the requested id has ever been issued.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrTicketExists is returned by TicketStore.Insert on a ticket_id
// collision.  Ids are fresh random UUIDs, so this indicates a broken
// generator or a replayed insert, not a normal request outcome.
var ErrTicketExists = errors.New("ticket already exists")

// TicketStore is the durable record of issued tickets and their usage
// state.  The engine trusts it only for status; the cryptographic facts
// always come from the signed envelope.
type TicketStore interface {
	// Insert creates the stored row for a freshly issued ticket.  It
	// fails with ErrTicketExists when the id is already present.
	Insert(ctx context.Context, t model.StoredTicket) error

	// Get returns the stored state for a ticket id, or
	// ErrTicketNotFound.
	Get(ctx context.Context, ticketID string) (model.StoredTicket, error)

	// TryMarkUsed performs the active→used transition as a single
	// atomic conditional update and reports whether this call made the
	// transition.  False means the ticket was already not active.  This
	// is the sole double-spend guard; implementations must not use a
	// separate read-then-write.
	TryMarkUsed(ctx context.Context, ticketID string) (bool, error)
}

// PersistenceError wraps a storage collaborator failure.  The engine
// never retries these; callers decide whether the request is worth
// retrying.
type PersistenceError struct {
	Op  string // operation that failed, e.g. "insert ticket"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("fare store: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
