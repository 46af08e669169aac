package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cartuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/cart"
	checkoutuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/checkout"
)

type CheckoutStoreAdapter struct {
	db *pgxpool.Pool
}

func NewCheckoutStoreAdapter(db *pgxpool.Pool) *CheckoutStoreAdapter {
	return &CheckoutStoreAdapter{db: db}
}

// Checkout converts the active cart into an invoice. Everything up to the
// commit is one transaction: a failed line leaves no invoice, no items and no
// stock decrements behind.
func (a *CheckoutStoreAdapter) Checkout(ctx context.Context, userID string, in checkoutuc.Input) (*checkoutuc.Result, error) {
	tx, err := a.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// scoped to the caller: one cashier can never check out another's cart
	const lockQ = `
SELECT id::text, user_id::text, status, total_amount::text, created_at, updated_at
FROM carts
WHERE id = $1::uuid AND user_id = $2::uuid AND status = $3
FOR UPDATE;
`
	cart, err := scanCartRow(tx.QueryRow(ctx, lockQ, in.CartID, userID, cartuc.StatusActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, checkoutuc.ErrCartNotFound
		}
		return nil, err
	}

	// Defense in depth: the caller echoes the total it showed the customer,
	// but the cart's own derived total is authoritative.
	if !cart.TotalAmount.Equal(in.TotalAmount) {
		return nil, fmt.Errorf("%w: cart=%s submitted=%s",
			checkoutuc.ErrTotalMismatch, cart.TotalAmount, in.TotalAmount)
	}

	if cart.Items, err = loadCartItems(ctx, tx, cart.ID); err != nil {
		return nil, err
	}

	const invoiceQ = `
INSERT INTO invoices (user_id, first_name, last_name, contact_number, payment_method, total_amount)
VALUES ($1::uuid, $2, $3, $4, $5, $6::numeric)
RETURNING id::text;
`
	inv := checkoutuc.Invoice{
		UserID:        cart.UserID,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		ContactNumber: in.ContactNumber,
		PaymentMethod: in.PaymentMethod,
		TotalAmount:   in.TotalAmount,
	}
	if err := tx.QueryRow(ctx, invoiceQ, cart.UserID, in.FirstName, in.LastName,
		in.ContactNumber, in.PaymentMethod, in.TotalAmount.String()).Scan(&inv.ID); err != nil {
		return nil, err
	}

	for _, ci := range cart.Items {
		available, err := lockStockQuantity(ctx, tx, ci.StockID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: stock=%s", checkoutuc.ErrInsufficientStock, ci.StockID)
			}
			return nil, err
		}

		line, err := checkoutuc.Snapshot(checkoutuc.Line{
			StockID:        ci.StockID,
			ProductID:      ci.Stock.ProductID,
			Quantity:       ci.Quantity,
			Discount:       ci.Discount,
			SellingPrice:   ci.Stock.SellingPrice,
			CostPrice:      ci.Stock.CostPrice,
			SerialNumber:   ci.Stock.SerialNumber,
			StockAvailable: available,
		})
		if err != nil {
			return nil, err
		}

		const itemQ = `
INSERT INTO invoice_items
  (invoice_id, product_id, stock_id, sold_price, cost_price, discount, quantity, serial_number)
VALUES ($1::uuid, $2::uuid, $3::uuid, $4::numeric, $5::numeric, $6::numeric, $7, $8)
RETURNING id::text;
`
		if err := tx.QueryRow(ctx, itemQ, inv.ID, line.ProductID, line.StockID,
			line.SoldPrice.String(), line.CostPrice.String(), line.Discount.String(),
			line.Quantity, line.SerialNumber).Scan(&line.ID); err != nil {
			return nil, err
		}
		line.InvoiceID = inv.ID

		if err := decrementStock(ctx, tx, line.StockID, line.Quantity); err != nil {
			return nil, err
		}

		inv.Items = append(inv.Items, line)
	}

	// completed, then gone: the invoice is the durable record of this sale
	if _, err := tx.Exec(ctx,
		`UPDATE carts SET status = $2, updated_at = now() WHERE id = $1::uuid`,
		cart.ID, cartuc.StatusCompleted); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1::uuid`, cart.ID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1::uuid`, cart.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	cart.Status = cartuc.StatusCompleted
	return &checkoutuc.Result{Cart: *cart, Invoice: inv}, nil
}
