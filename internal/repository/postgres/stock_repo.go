package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cartuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/cart"
	stockuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/stock"
)

func getStock(ctx context.Context, q queryer, stockID string) (*cartuc.Stock, error) {
	const sql = `
SELECT
  s.id::text, s.product_id::text, s.condition, s.serial_number, s.color,
  s.quantity, s.selling_price::text, s.cost_price::text,
  p.id::text, p.name, p.category
FROM stocks s
JOIN products p ON p.id = s.product_id
WHERE s.id = $1::uuid;
`
	var (
		out          cartuc.Stock
		prod         cartuc.Product
		selling, cost string
	)
	err := q.QueryRow(ctx, sql, stockID).Scan(
		&out.ID, &out.ProductID, &out.Condition, &out.SerialNumber, &out.Color,
		&out.Quantity, &selling, &cost,
		&prod.ID, &prod.Name, &prod.Category,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cartuc.ErrStockMissing
		}
		return nil, err
	}

	if out.SellingPrice, err = parseDec(selling); err != nil {
		return nil, err
	}
	if out.CostPrice, err = parseDec(cost); err != nil {
		return nil, err
	}
	out.Product = &prod
	return &out, nil
}

// lockStockQuantity serializes concurrent checkouts/returns on one stock row.
func lockStockQuantity(ctx context.Context, tx pgx.Tx, stockID string) (int, error) {
	const q = `
SELECT quantity
FROM stocks
WHERE id = $1::uuid
FOR UPDATE;
`
	var qty int
	if err := tx.QueryRow(ctx, q, stockID).Scan(&qty); err != nil {
		return 0, err
	}
	return qty, nil
}

func decrementStock(ctx context.Context, tx pgx.Tx, stockID string, qty int) error {
	const q = `
UPDATE stocks
SET quantity = quantity - $2,
    updated_at = now()
WHERE id = $1::uuid;
`
	_, err := tx.Exec(ctx, q, stockID, qty)
	return err
}

func incrementStock(ctx context.Context, tx pgx.Tx, stockID string, qty int) error {
	const q = `
UPDATE stocks
SET quantity = quantity + $2,
    updated_at = now()
WHERE id = $1::uuid;
`
	_, err := tx.Exec(ctx, q, stockID, qty)
	return err
}

type StockStoreAdapter struct {
	db *pgxpool.Pool
}

func NewStockStoreAdapter(db *pgxpool.Pool) *StockStoreAdapter {
	return &StockStoreAdapter{db: db}
}

func (a *StockStoreAdapter) ListAvailable(ctx context.Context, limit, offset int) ([]stockuc.Stock, error) {
	const q = `
SELECT
  s.id::text, s.product_id::text, s.condition, s.serial_number, s.color,
  s.quantity, s.selling_price::text, s.cost_price::text, p.name
FROM stocks s
JOIN products p ON p.id = s.product_id
WHERE s.quantity > 0
ORDER BY p.name, s.created_at
LIMIT $1 OFFSET $2;
`
	rows, err := a.db.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]stockuc.Stock, 0, limit)
	for rows.Next() {
		var (
			s             stockuc.Stock
			selling, cost string
		)
		if err := rows.Scan(
			&s.ID, &s.ProductID, &s.Condition, &s.SerialNumber, &s.Color,
			&s.Quantity, &selling, &cost, &s.ProductName,
		); err != nil {
			return nil, err
		}
		if s.SellingPrice, err = parseDec(selling); err != nil {
			return nil, err
		}
		if s.CostPrice, err = parseDec(cost); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
