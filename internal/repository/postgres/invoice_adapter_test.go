package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/AshanHimantha/myapplecare-backend/internal/repository/postgres/testutil"
	cartuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/cart"
	checkoutuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/checkout"
	invoiceuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/invoice"
)

// sells two units of one stock and one of another, returns the invoice id and
// both stock ids
func seedInvoice(t *testing.T, pool *pgxpool.Pool) (invoiceID, stockA, stockB string) {
	t.Helper()

	userID := testutil.MustInsertUser(t, pool, "Cashier", "cashier")
	productID := testutil.MustInsertProduct(t, pool, "iPhone 13")
	stockA = testutil.MustInsertStock(t, pool, productID, 10, "1000.00", "800.00")
	stockB = testutil.MustInsertStock(t, pool, productID, 10, "500.00", "400.00")

	cartUC := cartuc.New(NewCartStoreAdapter(pool))
	_, err := cartUC.AddItem(context.Background(), userID, cartuc.AddItemInput{
		StockID: stockA, Quantity: 2,
	})
	require.NoError(t, err)
	cart, err := cartUC.AddItem(context.Background(), userID, cartuc.AddItemInput{
		StockID: stockB, Quantity: 1,
	})
	require.NoError(t, err)

	out, err := NewCheckoutStoreAdapter(pool).Checkout(context.Background(), userID, checkoutuc.Input{
		CartID:        cart.ID,
		FirstName:     "Test",
		LastName:      "Customer",
		ContactNumber: "0771234567",
		PaymentMethod: checkoutuc.PaymentCash,
		TotalAmount:   cart.TotalAmount,
	})
	require.NoError(t, err)
	return out.Invoice.ID, stockA, stockB
}

// This test validates a partial restock return:
// - the item quantity shrinks
// - the stock is incremented again
// - the invoice total is recomputed from the remaining items
func TestReturn_PartialRestock(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)

	invoiceID, stockA, _ := seedInvoice(t, pool)

	uc := invoiceuc.New(NewInvoiceStoreAdapter(pool))
	inv, err := uc.GetByID(context.Background(), invoiceID)
	require.NoError(t, err)
	require.Len(t, inv.Items, 2)

	var itemA invoiceuc.Item
	for _, it := range inv.Items {
		if it.StockID == stockA {
			itemA = it
		}
	}
	require.Equal(t, 2, itemA.Quantity)

	out, err := uc.ProcessReturn(context.Background(), invoiceuc.ReturnInput{
		InvoiceID: invoiceID,
		Items: []invoiceuc.ReturnLine{
			{ItemID: itemA.ID, Quantity: 1, ReturnType: invoiceuc.ReturnTypeStock},
		},
	})
	require.NoError(t, err)

	// 1*1000 + 1*500 remain
	require.True(t, out.TotalAmount.Equal(mustDec(t, "1500.00")))
	require.Equal(t, 9, testutil.StockQuantity(t, pool, stockA))

	var audited int
	err = pool.QueryRow(context.Background(),
		`SELECT count(*) FROM returned_items WHERE invoice_id = $1::uuid`, invoiceID).Scan(&audited)
	require.NoError(t, err)
	require.Equal(t, 1, audited)
}

// Returning the whole quantity removes the line from the invoice.
func TestReturn_FullQuantityRemovesItem(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)

	invoiceID, _, stockB := seedInvoice(t, pool)

	uc := invoiceuc.New(NewInvoiceStoreAdapter(pool))
	inv, err := uc.GetByID(context.Background(), invoiceID)
	require.NoError(t, err)

	var itemB invoiceuc.Item
	for _, it := range inv.Items {
		if it.StockID == stockB {
			itemB = it
		}
	}

	out, err := uc.ProcessReturn(context.Background(), invoiceuc.ReturnInput{
		InvoiceID: invoiceID,
		Items: []invoiceuc.ReturnLine{
			{ItemID: itemB.ID, Quantity: 1, ReturnType: invoiceuc.ReturnTypeStock},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	require.True(t, out.TotalAmount.Equal(mustDec(t, "2000.00")))
}

// A damaged return is audited but never goes back into sellable stock.
func TestReturn_DamagedKeepsStock(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)

	invoiceID, stockA, _ := seedInvoice(t, pool)

	uc := invoiceuc.New(NewInvoiceStoreAdapter(pool))
	inv, err := uc.GetByID(context.Background(), invoiceID)
	require.NoError(t, err)

	var itemA invoiceuc.Item
	for _, it := range inv.Items {
		if it.StockID == stockA {
			itemA = it
		}
	}

	_, err = uc.ProcessReturn(context.Background(), invoiceuc.ReturnInput{
		InvoiceID: invoiceID,
		Items: []invoiceuc.ReturnLine{
			{ItemID: itemA.ID, Quantity: 1, ReturnType: invoiceuc.ReturnTypeDamaged},
		},
	})
	require.NoError(t, err)

	// 8 sold at checkout time, damaged units stay out
	require.Equal(t, 8, testutil.StockQuantity(t, pool, stockA))
}

// This test validates batch atomicity: one bad line rolls back the good one.
func TestReturn_BadLineRollsBackBatch(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)

	invoiceID, stockA, stockB := seedInvoice(t, pool)

	uc := invoiceuc.New(NewInvoiceStoreAdapter(pool))
	inv, err := uc.GetByID(context.Background(), invoiceID)
	require.NoError(t, err)

	var itemA, itemB invoiceuc.Item
	for _, it := range inv.Items {
		switch it.StockID {
		case stockA:
			itemA = it
		case stockB:
			itemB = it
		}
	}

	_, err = uc.ProcessReturn(context.Background(), invoiceuc.ReturnInput{
		InvoiceID: invoiceID,
		Items: []invoiceuc.ReturnLine{
			{ItemID: itemA.ID, Quantity: 1, ReturnType: invoiceuc.ReturnTypeStock},
			{ItemID: itemB.ID, Quantity: 5, ReturnType: invoiceuc.ReturnTypeStock},
		},
	})
	require.ErrorIs(t, err, invoiceuc.ErrQuantityExceeded)

	// the first line was rolled back with the batch
	require.Equal(t, 8, testutil.StockQuantity(t, pool, stockA))

	after, err := uc.GetByID(context.Background(), invoiceID)
	require.NoError(t, err)
	require.True(t, after.TotalAmount.Equal(inv.TotalAmount))
	require.Len(t, after.Items, 2)
}
