package repository

import (
	"context"
	"database/sql"

	"github.com/rts-transit/rapidride/internal/model"
)

// AlertRepo persists service alerts ('alerts' table). Alerts are
// posted by administrators and shown to every rider until deleted.
type AlertRepo struct{ DB *sql.DB }

func NewAlertRepo(db *sql.DB) *AlertRepo { return &AlertRepo{DB: db} }

// Create inserts an alert and returns its ID.
func (r *AlertRepo) Create(ctx context.Context, message string, issuedBy uint64) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO alerts (message, issued_by) VALUES (?,?)",
		message, issuedBy)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns all alerts, newest first.
func (r *AlertRepo) List(ctx context.Context) ([]model.Alert, error) {
	const q = `SELECT id, message, issued_by, issued_at FROM alerts ORDER BY issued_at DESC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	alerts := make([]model.Alert, 0)
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(&a.ID, &a.Message, &a.IssuedBy, &a.IssuedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return alerts, nil
}

// Delete removes an alert by id; ErrNotFound when it does not exist.
func (r *AlertRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM alerts WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
