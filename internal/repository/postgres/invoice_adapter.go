package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	invoiceuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/invoice"
)

type InvoiceStoreAdapter struct {
	db *pgxpool.Pool
}

func NewInvoiceStoreAdapter(db *pgxpool.Pool) *InvoiceStoreAdapter {
	return &InvoiceStoreAdapter{db: db}
}

func scanInvoiceRow(row pgx.Row) (*invoiceuc.Invoice, error) {
	var (
		out   invoiceuc.Invoice
		total string
	)
	if err := row.Scan(&out.ID, &out.UserID, &out.FirstName, &out.LastName,
		&out.ContactNumber, &out.PaymentMethod, &total, &out.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if out.TotalAmount, err = parseDec(total); err != nil {
		return nil, err
	}
	return &out, nil
}

const invoiceCols = `id::text, user_id::text, first_name, last_name, contact_number, payment_method, total_amount::text, created_at`

func (a *InvoiceStoreAdapter) List(ctx context.Context, in invoiceuc.ListInput) ([]invoiceuc.Invoice, error) {
	q := `
SELECT ` + invoiceCols + `
FROM invoices
WHERE ($1::timestamptz IS NULL OR created_at >= $1)
  AND ($2::timestamptz IS NULL OR created_at < $2 + interval '1 day')
ORDER BY created_at DESC
LIMIT $3 OFFSET $4;
`
	rows, err := a.db.Query(ctx, q, in.DateFrom, in.DateTo, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInvoices(rows)
}

func (a *InvoiceStoreAdapter) ListDaily(ctx context.Context) ([]invoiceuc.Invoice, error) {
	q := `
SELECT ` + invoiceCols + `
FROM invoices
WHERE created_at::date = CURRENT_DATE
ORDER BY created_at DESC;
`
	rows, err := a.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out, err := collectInvoices(rows)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Items, err = loadInvoiceItems(ctx, a.db, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func collectInvoices(rows pgx.Rows) ([]invoiceuc.Invoice, error) {
	out := make([]invoiceuc.Invoice, 0, 20)
	for rows.Next() {
		inv, err := scanInvoiceRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (a *InvoiceStoreAdapter) GetByID(ctx context.Context, id string) (*invoiceuc.Invoice, error) {
	q := `
SELECT ` + invoiceCols + `
FROM invoices
WHERE id = $1::uuid;
`
	out, err := scanInvoiceRow(a.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invoiceuc.ErrNotFound
		}
		return nil, err
	}
	if out.Items, err = loadInvoiceItems(ctx, a.db, id); err != nil {
		return nil, err
	}
	return out, nil
}

func loadInvoiceItems(ctx context.Context, q rowsQueryer, invoiceID string) ([]invoiceuc.Item, error) {
	const sql = `
SELECT
  id::text, invoice_id::text, product_id::text, stock_id::text,
  sold_price::text, cost_price::text, discount::text, quantity, serial_number
FROM invoice_items
WHERE invoice_id = $1::uuid
ORDER BY created_at;
`
	rows, err := q.Query(ctx, sql, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]invoiceuc.Item, 0, 8)
	for rows.Next() {
		var (
			it                    invoiceuc.Item
			sold, cost, discount string
		)
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.ProductID, &it.StockID,
			&sold, &cost, &discount, &it.Quantity, &it.SerialNumber); err != nil {
			return nil, err
		}
		if it.SoldPrice, err = parseDec(sold); err != nil {
			return nil, err
		}
		if it.CostPrice, err = parseDec(cost); err != nil {
			return nil, err
		}
		if it.Discount, err = parseDec(discount); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ProcessReturn applies all return lines atomically; the invoice row is locked
// first so concurrent returns on the same invoice serialize.
func (a *InvoiceStoreAdapter) ProcessReturn(ctx context.Context, in invoiceuc.ReturnInput) (*invoiceuc.Invoice, error) {
	tx, err := a.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const lockQ = `
SELECT id::text
FROM invoices
WHERE id = $1::uuid
FOR UPDATE;
`
	var invoiceID string
	if err := tx.QueryRow(ctx, lockQ, in.InvoiceID).Scan(&invoiceID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invoiceuc.ErrNotFound
		}
		return nil, err
	}

	for _, line := range in.Items {
		if err := applyReturnLine(ctx, tx, invoiceID, line); err != nil {
			return nil, err
		}
	}

	items, err := loadInvoiceItems(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	newTotal := invoiceuc.Total(items)

	const totalQ = `
UPDATE invoices
SET total_amount = $2::numeric,
    updated_at = now()
WHERE id = $1::uuid;
`
	if _, err := tx.Exec(ctx, totalQ, invoiceID, newTotal.String()); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a.GetByID(ctx, invoiceID)
}

func applyReturnLine(ctx context.Context, tx pgx.Tx, invoiceID string, line invoiceuc.ReturnLine) error {
	const itemQ = `
SELECT id::text, product_id::text, stock_id::text, quantity
FROM invoice_items
WHERE id = $1::uuid AND invoice_id = $2::uuid
FOR UPDATE;
`
	var (
		itemID, productID, stockID string
		purchased                  int
	)
	if err := tx.QueryRow(ctx, itemQ, line.ItemID, invoiceID).Scan(
		&itemID, &productID, &stockID, &purchased); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: item=%s", invoiceuc.ErrItemNotFound, line.ItemID)
		}
		return err
	}

	remaining, removed, err := invoiceuc.ApplyReturn(purchased, line.Quantity)
	if err != nil {
		return err
	}

	if line.ReturnType == invoiceuc.ReturnTypeStock {
		if _, err := lockStockQuantity(ctx, tx, stockID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: stock=%s", invoiceuc.ErrStockMissing, stockID)
			}
			return err
		}
		if err := incrementStock(ctx, tx, stockID, line.Quantity); err != nil {
			return err
		}
	}

	if removed {
		if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE id = $1::uuid`, itemID); err != nil {
			return err
		}
	} else {
		if _, err := tx.Exec(ctx,
			`UPDATE invoice_items SET quantity = $2 WHERE id = $1::uuid`,
			itemID, remaining); err != nil {
			return err
		}
	}

	const auditQ = `
INSERT INTO returned_items (invoice_id, product_id, stock_id, quantity, return_type, returned_at)
VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, now());
`
	_, err = tx.Exec(ctx, auditQ, invoiceID, productID, stockID, line.Quantity, line.ReturnType)
	return err
}

func (a *InvoiceStoreAdapter) ListReturned(ctx context.Context, in invoiceuc.ReturnedListInput) ([]invoiceuc.ReturnedItem, int, error) {
	const countQ = `
SELECT COUNT(*)
FROM returned_items
WHERE ($1::timestamptz IS NULL OR returned_at >= $1)
  AND ($2::timestamptz IS NULL OR returned_at < $2 + interval '1 day');
`
	var total int
	if err := a.db.QueryRow(ctx, countQ, in.DateFrom, in.DateTo).Scan(&total); err != nil {
		return nil, 0, err
	}

	const q = `
SELECT id::text, invoice_id::text, product_id::text, stock_id::text, quantity, return_type, returned_at
FROM returned_items
WHERE ($1::timestamptz IS NULL OR returned_at >= $1)
  AND ($2::timestamptz IS NULL OR returned_at < $2 + interval '1 day')
ORDER BY returned_at DESC
LIMIT $3 OFFSET $4;
`
	rows, err := a.db.Query(ctx, q, in.DateFrom, in.DateTo, in.Limit, in.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]invoiceuc.ReturnedItem, 0, in.Limit)
	for rows.Next() {
		var r invoiceuc.ReturnedItem
		if err := rows.Scan(&r.ID, &r.InvoiceID, &r.ProductID, &r.StockID,
			&r.Quantity, &r.ReturnType, &r.ReturnedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}
