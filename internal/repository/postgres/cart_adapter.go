package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cartuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/cart"
)

type CartStoreAdapter struct {
	db *pgxpool.Pool
}

func NewCartStoreAdapter(db *pgxpool.Pool) *CartStoreAdapter {
	return &CartStoreAdapter{db: db}
}

func (a *CartStoreAdapter) ListByUser(ctx context.Context, userID string) ([]cartuc.Cart, error) {
	const q = `
SELECT id::text, user_id::text, status, total_amount::text, created_at, updated_at
FROM carts
WHERE user_id = $1::uuid
ORDER BY created_at DESC;
`
	rows, err := a.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]cartuc.Cart, 0, cartuc.MaxActiveCarts)
	for rows.Next() {
		var (
			c     cartuc.Cart
			total string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Status, &total, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if c.TotalAmount, err = parseDec(total); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := loadCartItems(ctx, a.db, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (a *CartStoreAdapter) Get(ctx context.Context, id string) (*cartuc.Cart, error) {
	c, err := getCartHeader(ctx, a.db, id)
	if err != nil {
		return nil, err
	}
	if c.Items, err = loadCartItems(ctx, a.db, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

func (a *CartStoreAdapter) GetForUser(ctx context.Context, id, userID string) (*cartuc.Cart, error) {
	c, err := a.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, cartuc.ErrNotFound
	}
	return c, nil
}

func (a *CartStoreAdapter) Create(ctx context.Context, userID string) (*cartuc.Cart, error) {
	tx, err := a.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockUser(ctx, tx, userID); err != nil {
		return nil, err
	}

	n, err := countActiveCarts(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if n >= cartuc.MaxActiveCarts {
		return nil, fmt.Errorf("%w: active=%d", cartuc.ErrCartLimit, n)
	}

	out, err := insertCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	out.Items = []cartuc.Item{}
	return out, nil
}

func (a *CartStoreAdapter) FindOrCreateActive(ctx context.Context, userID string) (*cartuc.Cart, error) {
	tx, err := a.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockUser(ctx, tx, userID); err != nil {
		return nil, err
	}

	const q = `
SELECT id::text, user_id::text, status, total_amount::text, created_at, updated_at
FROM carts
WHERE user_id = $1::uuid AND status = $2
ORDER BY created_at ASC
LIMIT 1;
`
	out, err := scanCartRow(tx.QueryRow(ctx, q, userID, cartuc.StatusActive))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		n, err := countActiveCarts(ctx, tx, userID)
		if err != nil {
			return nil, err
		}
		if n >= cartuc.MaxActiveCarts {
			return nil, fmt.Errorf("%w: active=%d", cartuc.ErrCartLimit, n)
		}
		if out, err = insertCart(ctx, tx, userID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the items first, then the cart row, in one transaction.
func (a *CartStoreAdapter) Delete(ctx context.Context, id string) error {
	tx, err := a.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := lockCart(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1::uuid`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1::uuid`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (a *CartStoreAdapter) GetStock(ctx context.Context, stockID string) (*cartuc.Stock, error) {
	return getStock(ctx, a.db, stockID)
}

func (a *CartStoreAdapter) GetItem(ctx context.Context, itemID string) (*cartuc.Item, error) {
	const q = `
SELECT
  ci.id::text, ci.cart_id::text, ci.stock_id::text, ci.quantity,
  ci.price::text, ci.discount::text
FROM cart_items ci
WHERE ci.id = $1::uuid;
`
	var (
		it              cartuc.Item
		price, discount string
	)
	err := a.db.QueryRow(ctx, q, itemID).Scan(
		&it.ID, &it.CartID, &it.StockID, &it.Quantity, &price, &discount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cartuc.ErrItemNotFound
		}
		return nil, err
	}
	if it.Price, err = parseDec(price); err != nil {
		return nil, err
	}
	if it.Discount, err = parseDec(discount); err != nil {
		return nil, err
	}
	if it.Stock, err = getStock(ctx, a.db, it.StockID); err != nil {
		return nil, err
	}
	return &it, nil
}

func (a *CartStoreAdapter) UpsertItem(ctx context.Context, in cartuc.UpsertItemInput) (*cartuc.Cart, error) {
	tx, err := a.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := lockCart(ctx, tx, in.CartID); err != nil {
		return nil, err
	}

	available, err := lockStockQuantity(ctx, tx, in.StockID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cartuc.ErrStockMissing
		}
		return nil, err
	}
	if available < in.Quantity {
		return nil, fmt.Errorf("%w: stock=%s available=%d requested=%d",
			cartuc.ErrInsufficientStock, in.StockID, available, in.Quantity)
	}

	const q = `
INSERT INTO cart_items (cart_id, stock_id, quantity, price, discount)
VALUES ($1::uuid, $2::uuid, $3, $4::numeric, $5::numeric)
ON CONFLICT (cart_id, stock_id) DO UPDATE
SET quantity = EXCLUDED.quantity,
    price = EXCLUDED.price,
    discount = EXCLUDED.discount,
    updated_at = now();
`
	if _, err := tx.Exec(ctx, q, in.CartID, in.StockID, in.Quantity,
		in.Price.String(), in.Discount.String()); err != nil {
		return nil, err
	}

	if err := recomputeCartTotal(ctx, tx, in.CartID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a.Get(ctx, in.CartID)
}

func (a *CartStoreAdapter) UpdateItem(ctx context.Context, itemID string, v cartuc.UpdateItemValues) (*cartuc.Cart, error) {
	tx, err := a.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cartID, stockID, err := itemRefs(ctx, tx, itemID)
	if err != nil {
		return nil, err
	}

	if _, err := lockCart(ctx, tx, cartID); err != nil {
		return nil, err
	}

	if v.Quantity != nil {
		available, err := lockStockQuantity(ctx, tx, stockID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, cartuc.ErrStockMissing
			}
			return nil, err
		}
		if available < *v.Quantity {
			return nil, fmt.Errorf("%w: stock=%s available=%d requested=%d",
				cartuc.ErrInsufficientStock, stockID, available, *v.Quantity)
		}
	}

	var price, discount *string
	if v.Price != nil {
		s := v.Price.String()
		price = &s
	}
	if v.Discount != nil {
		s := v.Discount.String()
		discount = &s
	}

	const q = `
UPDATE cart_items
SET quantity = COALESCE($2, quantity),
    price = COALESCE($3::numeric, price),
    discount = COALESCE($4::numeric, discount),
    updated_at = now()
WHERE id = $1::uuid;
`
	if _, err := tx.Exec(ctx, q, itemID, v.Quantity, price, discount); err != nil {
		return nil, err
	}

	if err := recomputeCartTotal(ctx, tx, cartID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a.Get(ctx, cartID)
}

func (a *CartStoreAdapter) RemoveItem(ctx context.Context, itemID string) (*cartuc.Cart, error) {
	tx, err := a.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cartID, _, err := itemRefs(ctx, tx, itemID)
	if err != nil {
		return nil, err
	}

	if _, err := lockCart(ctx, tx, cartID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = $1::uuid`, itemID); err != nil {
		return nil, err
	}
	if err := recomputeCartTotal(ctx, tx, cartID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a.Get(ctx, cartID)
}

func itemRefs(ctx context.Context, q queryer, itemID string) (cartID, stockID string, err error) {
	const sql = `
SELECT cart_id::text, stock_id::text
FROM cart_items
WHERE id = $1::uuid;
`
	if err := q.QueryRow(ctx, sql, itemID).Scan(&cartID, &stockID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", cartuc.ErrItemNotFound
		}
		return "", "", err
	}
	return cartID, stockID, nil
}
