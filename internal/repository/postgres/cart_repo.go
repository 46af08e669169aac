package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	cartuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/cart"
)

func scanCartRow(row pgx.Row) (*cartuc.Cart, error) {
	var (
		out   cartuc.Cart
		total string
	)
	if err := row.Scan(&out.ID, &out.UserID, &out.Status, &total, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if out.TotalAmount, err = parseDec(total); err != nil {
		return nil, err
	}
	return &out, nil
}

func getCartHeader(ctx context.Context, q queryer, cartID string) (*cartuc.Cart, error) {
	const sql = `
SELECT id::text, user_id::text, status, total_amount::text, created_at, updated_at
FROM carts
WHERE id = $1::uuid;
`
	out, err := scanCartRow(q.QueryRow(ctx, sql, cartID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cartuc.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

type rowsQueryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadCartItems(ctx context.Context, q rowsQueryer, cartID string) ([]cartuc.Item, error) {
	const sql = `
SELECT
  ci.id::text, ci.cart_id::text, ci.stock_id::text, ci.quantity,
  ci.price::text, ci.discount::text,
  s.id::text, s.product_id::text, s.condition, s.serial_number, s.color,
  s.quantity, s.selling_price::text, s.cost_price::text,
  p.id::text, p.name, p.category
FROM cart_items ci
JOIN stocks s ON s.id = ci.stock_id
JOIN products p ON p.id = s.product_id
WHERE ci.cart_id = $1::uuid
ORDER BY ci.created_at;
`
	rows, err := q.Query(ctx, sql, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]cartuc.Item, 0, 8)
	for rows.Next() {
		var (
			it                             cartuc.Item
			st                             cartuc.Stock
			prod                           cartuc.Product
			price, discount, selling, cost string
		)
		if err := rows.Scan(
			&it.ID, &it.CartID, &it.StockID, &it.Quantity,
			&price, &discount,
			&st.ID, &st.ProductID, &st.Condition, &st.SerialNumber, &st.Color,
			&st.Quantity, &selling, &cost,
			&prod.ID, &prod.Name, &prod.Category,
		); err != nil {
			return nil, err
		}
		if it.Price, err = parseDec(price); err != nil {
			return nil, err
		}
		if it.Discount, err = parseDec(discount); err != nil {
			return nil, err
		}
		if st.SellingPrice, err = parseDec(selling); err != nil {
			return nil, err
		}
		if st.CostPrice, err = parseDec(cost); err != nil {
			return nil, err
		}
		st.Product = &prod
		it.Stock = &st
		out = append(out, it)
	}
	return out, rows.Err()
}

// lockCart takes the row lock that serializes item mutations and total
// recomputes on one cart.
func lockCart(ctx context.Context, tx pgx.Tx, cartID string) (string, error) {
	const q = `
SELECT status
FROM carts
WHERE id = $1::uuid
FOR UPDATE;
`
	var status string
	if err := tx.QueryRow(ctx, q, cartID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", cartuc.ErrNotFound
		}
		return "", err
	}
	return status, nil
}

// recomputeCartTotal derives total_amount from the items inside the same
// transaction that mutated them.
func recomputeCartTotal(ctx context.Context, tx pgx.Tx, cartID string) error {
	const q = `
UPDATE carts
SET total_amount = COALESCE((
      SELECT SUM(quantity * price)
      FROM cart_items
      WHERE cart_id = $1::uuid
    ), 0),
    updated_at = now()
WHERE id = $1::uuid;
`
	_, err := tx.Exec(ctx, q, cartID)
	return err
}

// lockUser serializes active-cart creation per user so the ceiling check
// cannot race.
func lockUser(ctx context.Context, tx pgx.Tx, userID string) error {
	const q = `
SELECT 1
FROM users
WHERE id = $1::uuid
FOR UPDATE;
`
	var one int
	return tx.QueryRow(ctx, q, userID).Scan(&one)
}

func countActiveCarts(ctx context.Context, q queryer, userID string) (int, error) {
	const sql = `
SELECT COUNT(*)
FROM carts
WHERE user_id = $1::uuid AND status = $2;
`
	var n int
	if err := q.QueryRow(ctx, sql, userID, cartuc.StatusActive).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func insertCart(ctx context.Context, q queryer, userID string) (*cartuc.Cart, error) {
	const sql = `
INSERT INTO carts (user_id, status, total_amount)
VALUES ($1::uuid, $2, 0)
RETURNING id::text, user_id::text, status, total_amount::text, created_at, updated_at;
`
	return scanCartRow(q.QueryRow(ctx, sql, userID, cartuc.StatusActive))
}
