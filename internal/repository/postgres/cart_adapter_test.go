package postgres

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/AshanHimantha/myapplecare-backend/internal/repository/postgres/testutil"
	cartuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/cart"
)

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// This test validates:
// - AddItem creates an active cart on demand
// - the stored line carries the discounted unit price
// - the cart total is recomputed inside the transaction
func TestCart_AddItem_RecomputesTotal(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)

	userID := testutil.MustInsertUser(t, pool, "Cashier", "cashier")
	productID := testutil.MustInsertProduct(t, pool, "iPhone 13")
	stockID := testutil.MustInsertStock(t, pool, productID, 10, "1000.00", "800.00")

	uc := cartuc.New(NewCartStoreAdapter(pool))

	discount := mustDec(t, "50.00")
	out, err := uc.AddItem(context.Background(), userID, cartuc.AddItemInput{
		StockID:  stockID,
		Quantity: 2,
		Discount: &discount,
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	require.True(t, out.Items[0].Price.Equal(mustDec(t, "950.00")))
	require.True(t, out.TotalAmount.Equal(mustDec(t, "1900.00")))
}

// Adding the same stock again replaces the line instead of duplicating it.
func TestCart_AddItem_UpsertsExistingLine(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)

	userID := testutil.MustInsertUser(t, pool, "Cashier", "cashier")
	productID := testutil.MustInsertProduct(t, pool, "iPhone 13")
	stockID := testutil.MustInsertStock(t, pool, productID, 10, "1000.00", "800.00")

	uc := cartuc.New(NewCartStoreAdapter(pool))

	first, err := uc.AddItem(context.Background(), userID, cartuc.AddItemInput{
		StockID: stockID, Quantity: 1,
	})
	require.NoError(t, err)

	out, err := uc.AddItem(context.Background(), userID, cartuc.AddItemInput{
		CartID: first.ID, StockID: stockID, Quantity: 3,
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	require.Equal(t, 3, out.Items[0].Quantity)
	require.True(t, out.TotalAmount.Equal(mustDec(t, "3000.00")))
}

// This test validates the active cart ceiling: the sixth create is refused.
func TestCart_Create_Limit(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)

	userID := testutil.MustInsertUser(t, pool, "Cashier", "cashier")
	uc := cartuc.New(NewCartStoreAdapter(pool))

	for i := 0; i < cartuc.MaxActiveCarts; i++ {
		_, err := uc.Create(context.Background(), userID)
		require.NoError(t, err)
	}

	_, err := uc.Create(context.Background(), userID)
	require.ErrorIs(t, err, cartuc.ErrCartLimit)
}

// Removing the last item leaves an empty cart with a zero total.
func TestCart_RemoveItem_ZeroesTotal(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)

	userID := testutil.MustInsertUser(t, pool, "Cashier", "cashier")
	productID := testutil.MustInsertProduct(t, pool, "iPhone 13")
	stockID := testutil.MustInsertStock(t, pool, productID, 10, "1000.00", "800.00")

	uc := cartuc.New(NewCartStoreAdapter(pool))

	cart, err := uc.AddItem(context.Background(), userID, cartuc.AddItemInput{
		StockID: stockID, Quantity: 2,
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	out, err := uc.RemoveItem(context.Background(), cart.Items[0].ID)
	require.NoError(t, err)
	require.Empty(t, out.Items)
	require.True(t, out.TotalAmount.Equal(decimal.Zero))
}

// Deleting another user's cart must be refused before anything is touched.
func TestCart_Delete_OtherUser(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)

	ownerID := testutil.MustInsertUser(t, pool, "Owner", "cashier")
	otherID := testutil.MustInsertUser(t, pool, "Other", "cashier")

	uc := cartuc.New(NewCartStoreAdapter(pool))

	cart, err := uc.Create(context.Background(), ownerID)
	require.NoError(t, err)

	err = uc.Delete(context.Background(), cart.ID, otherID)
	require.ErrorIs(t, err, cartuc.ErrNotOwner)

	// still there for the owner
	_, err = uc.Get(context.Background(), cart.ID, ownerID)
	require.NoError(t, err)
}
