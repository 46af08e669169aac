package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AshanHimantha/myapplecare-backend/internal/repository/postgres/testutil"
	cartuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/cart"
	checkoutuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/checkout"
)

// This test validates the happy path:
// - invoice and items created with snapshot prices
// - stock decremented
// - cart and items gone afterwards
func TestCheckout_OK(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)

	userID := testutil.MustInsertUser(t, pool, "Cashier", "cashier")
	productID := testutil.MustInsertProduct(t, pool, "iPhone 13")
	stockID := testutil.MustInsertStock(t, pool, productID, 10, "1000.00", "800.00")

	cartUC := cartuc.New(NewCartStoreAdapter(pool))
	cart, err := cartUC.AddItem(context.Background(), userID, cartuc.AddItemInput{
		StockID: stockID, Quantity: 2,
	})
	require.NoError(t, err)

	store := NewCheckoutStoreAdapter(pool)
	out, err := store.Checkout(context.Background(), userID, checkoutuc.Input{
		CartID:        cart.ID,
		FirstName:     "Test",
		LastName:      "Customer",
		ContactNumber: "0771234567",
		PaymentMethod: checkoutuc.PaymentCash,
		TotalAmount:   cart.TotalAmount,
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.Invoice.ID)
	require.Len(t, out.Invoice.Items, 1)
	require.Equal(t, 2, out.Invoice.Items[0].Quantity)

	require.Equal(t, 8, testutil.StockQuantity(t, pool, stockID))

	// cart is gone, the invoice is the record of the sale
	_, err = cartUC.Get(context.Background(), cart.ID, userID)
	require.ErrorIs(t, err, cartuc.ErrNotFound)
}

// This test validates atomicity: when stock ran out between carting and
// checkout, nothing is left behind, not even the invoice header.
func TestCheckout_InsufficientStock_RollsBack(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)

	userID := testutil.MustInsertUser(t, pool, "Cashier", "cashier")
	productID := testutil.MustInsertProduct(t, pool, "iPhone 13")
	stockID := testutil.MustInsertStock(t, pool, productID, 5, "1000.00", "800.00")

	cartUC := cartuc.New(NewCartStoreAdapter(pool))
	cart, err := cartUC.AddItem(context.Background(), userID, cartuc.AddItemInput{
		StockID: stockID, Quantity: 5,
	})
	require.NoError(t, err)

	// another sale drains the stock behind this cart's back
	_, err = pool.Exec(context.Background(),
		`UPDATE stocks SET quantity = 3 WHERE id = $1::uuid`, stockID)
	require.NoError(t, err)

	store := NewCheckoutStoreAdapter(pool)
	_, err = store.Checkout(context.Background(), userID, checkoutuc.Input{
		CartID:        cart.ID,
		FirstName:     "Test",
		LastName:      "Customer",
		ContactNumber: "0771234567",
		PaymentMethod: checkoutuc.PaymentCash,
		TotalAmount:   cart.TotalAmount,
	})
	require.ErrorIs(t, err, checkoutuc.ErrInsufficientStock)

	// rollback left no invoice and the stock untouched
	var invoices int
	err = pool.QueryRow(context.Background(), `SELECT count(*) FROM invoices`).Scan(&invoices)
	require.NoError(t, err)
	require.Zero(t, invoices)
	require.Equal(t, 3, testutil.StockQuantity(t, pool, stockID))

	// the cart survives for the cashier to fix up
	_, err = cartUC.Get(context.Background(), cart.ID, userID)
	require.NoError(t, err)
}

// A cart can only be checked out by the user it belongs to.
func TestCheckout_OtherUsersCart(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)

	ownerID := testutil.MustInsertUser(t, pool, "Owner", "cashier")
	otherID := testutil.MustInsertUser(t, pool, "Other", "cashier")
	productID := testutil.MustInsertProduct(t, pool, "iPhone 13")
	stockID := testutil.MustInsertStock(t, pool, productID, 10, "1000.00", "800.00")

	cartUC := cartuc.New(NewCartStoreAdapter(pool))
	cart, err := cartUC.AddItem(context.Background(), ownerID, cartuc.AddItemInput{
		StockID: stockID, Quantity: 1,
	})
	require.NoError(t, err)

	store := NewCheckoutStoreAdapter(pool)
	_, err = store.Checkout(context.Background(), otherID, checkoutuc.Input{
		CartID:        cart.ID,
		FirstName:     "Test",
		LastName:      "Customer",
		ContactNumber: "0771234567",
		PaymentMethod: checkoutuc.PaymentCash,
		TotalAmount:   cart.TotalAmount,
	})
	require.ErrorIs(t, err, checkoutuc.ErrCartNotFound)

	// the owner's cart and the stock are untouched
	_, err = cartUC.Get(context.Background(), cart.ID, ownerID)
	require.NoError(t, err)
	require.Equal(t, 10, testutil.StockQuantity(t, pool, stockID))
}

// The cart's derived total is authoritative; a stale client total is refused.
func TestCheckout_TotalMismatch(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)

	userID := testutil.MustInsertUser(t, pool, "Cashier", "cashier")
	productID := testutil.MustInsertProduct(t, pool, "iPhone 13")
	stockID := testutil.MustInsertStock(t, pool, productID, 10, "1000.00", "800.00")

	cartUC := cartuc.New(NewCartStoreAdapter(pool))
	cart, err := cartUC.AddItem(context.Background(), userID, cartuc.AddItemInput{
		StockID: stockID, Quantity: 1,
	})
	require.NoError(t, err)

	store := NewCheckoutStoreAdapter(pool)
	_, err = store.Checkout(context.Background(), userID, checkoutuc.Input{
		CartID:        cart.ID,
		FirstName:     "Test",
		LastName:      "Customer",
		ContactNumber: "0771234567",
		PaymentMethod: checkoutuc.PaymentCard,
		TotalAmount:   cart.TotalAmount.Add(mustDec(t, "1.00")),
	})
	require.ErrorIs(t, err, checkoutuc.ErrTotalMismatch)
}
