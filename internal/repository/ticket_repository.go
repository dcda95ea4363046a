package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rts-transit/rapidride/internal/fare"
	"github.com/rts-transit/rapidride/internal/model"
)

// TicketRepo is the durable MySQL implementation of fare.TicketStore.
// Rows in the `tickets` table mirror the signed record (for audit) plus
// the mutable status column.  Rows are never deleted; a consumed or
// revoked ticket stays behind for double-spend detection and audit.
// All timestamp columns are stored in UTC.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// Insert creates the stored row for a freshly issued ticket in status
// 'active'.  A duplicate ticket_id maps to fare.ErrTicketExists; ids
// are random UUIDs, so hitting this means something is badly wrong
// upstream, not a user error.
func (r *TicketRepo) Insert(ctx context.Context, t model.StoredTicket) error {
	const q = `INSERT INTO tickets
		(ticket_id, user_id, ticket_type, valid_for, issued_at, issuer, signature, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		t.TicketID, t.UserID, string(t.TicketType), t.ValidFor,
		t.IssuedAt, t.Issuer, t.Signature, string(model.StatusActive))
	if err != nil {
		// MySQL error 1062: duplicate entry for the primary key.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return fare.ErrTicketExists
		}
		return err
	}
	return nil
}

// Get returns the stored state for a ticket id, or fare.ErrTicketNotFound.
func (r *TicketRepo) Get(ctx context.Context, ticketID string) (model.StoredTicket, error) {
	const q = `SELECT ticket_id, user_id, ticket_type, valid_for, issued_at, issuer,
			signature, status, created_at, used_at
		FROM tickets WHERE ticket_id = ? LIMIT 1`
	var (
		t          model.StoredTicket
		ticketType string
		status     string
		usedAt     sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, ticketID).Scan(
		&t.TicketID, &t.UserID, &ticketType, &t.ValidFor, &t.IssuedAt, &t.Issuer,
		&t.Signature, &status, &t.CreatedAt, &usedAt,
	)
	if err == sql.ErrNoRows {
		return model.StoredTicket{}, fare.ErrTicketNotFound
	}
	if err != nil {
		return model.StoredTicket{}, err
	}
	t.TicketType = model.TicketType(ticketType)
	t.Status = model.TicketStatus(status)
	if usedAt.Valid {
		ts := usedAt.Time.UTC()
		t.UsedAt = &ts
	}
	return t, nil
}

// TryMarkUsed performs the active→used transition as one conditional
// UPDATE guarded by the current status.  The database applies the
// status check and the write atomically, so of any number of
// concurrent calls for the same ticket exactly one sees RowsAffected=1.
// This statement is the double-spend guard; do not split it into a
// read followed by a write.
func (r *TicketRepo) TryMarkUsed(ctx context.Context, ticketID string) (bool, error) {
	const q = `UPDATE tickets SET status = ?, used_at = ?
		WHERE ticket_id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q,
		string(model.StatusUsed), time.Now().UTC(), ticketID, string(model.StatusActive))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Revoke marks a ticket revoked.  This is an administrative operation
// outside the narrow store contract the engine depends on; it is
// unconditional so that even an already-used ticket can be flagged.
// Returns ErrNotFound when no such ticket was ever issued.
func (r *TicketRepo) Revoke(ctx context.Context, ticketID string) error {
	const q = `UPDATE tickets SET status = ? WHERE ticket_id = ?`
	res, err := r.db.ExecContext(ctx, q, string(model.StatusRevoked), ticketID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is 0 both for a missing row and for a row
		// already in 'revoked'; distinguish with a lookup.
		var exists int
		err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM tickets WHERE ticket_id = ? LIMIT 1`, ticketID).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ListByUser returns all tickets issued to a rider, newest first.  It
// backs the rider's "my tickets" view and admin audit lookups.
func (r *TicketRepo) ListByUser(ctx context.Context, userID string) ([]model.StoredTicket, error) {
	const q = `SELECT ticket_id, user_id, ticket_type, valid_for, issued_at, issuer,
			signature, status, created_at, used_at
		FROM tickets WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]model.StoredTicket, 0)
	for rows.Next() {
		var (
			t          model.StoredTicket
			ticketType string
			status     string
			usedAt     sql.NullTime
		)
		if err := rows.Scan(
			&t.TicketID, &t.UserID, &ticketType, &t.ValidFor, &t.IssuedAt, &t.Issuer,
			&t.Signature, &status, &t.CreatedAt, &usedAt,
		); err != nil {
			return nil, err
		}
		t.TicketType = model.TicketType(ticketType)
		t.Status = model.TicketStatus(status)
		if usedAt.Valid {
			ts := usedAt.Time.UTC()
			t.UsedAt = &ts
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}
