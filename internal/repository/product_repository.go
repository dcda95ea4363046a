package repository

import (
	"context"
	"database/sql"

	"github.com/rts-transit/rapidride/internal/model"
)

// ProductRepo reads and writes the fare catalog ('products' table).
// Each product maps a fare class to a price and an external checkout
// link; the service never processes payments itself.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

// ListActive returns all currently offered products ordered by price.
func (r *ProductRepo) ListActive(ctx context.Context) ([]model.Product, error) {
	const q = `SELECT id, name, description, price_cents, payment_link, active
		FROM products WHERE active = 1 ORDER BY price_cents ASC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := make([]model.Product, 0)
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.PaymentLink, &p.Active); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// GetByName returns the product for a fare class name, or ErrNotFound.
// Used to hand riders the checkout link for a requested fare class.
func (r *ProductRepo) GetByName(ctx context.Context, name string) (model.Product, error) {
	const q = `SELECT id, name, description, price_cents, payment_link, active
		FROM products WHERE name = ? LIMIT 1`
	var p model.Product
	err := r.DB.QueryRowContext(ctx, q, name).Scan(
		&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.PaymentLink, &p.Active)
	if err == sql.ErrNoRows {
		return model.Product{}, ErrNotFound
	}
	return p, err
}
