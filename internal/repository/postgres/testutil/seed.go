package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func MustInsertUser(t *testing.T, db *pgxpool.Pool, name, role string) string {
	t.Helper()

	email := fmt.Sprintf("%s.%d@example.com", role, time.Now().UnixNano())

	var id string
	err := db.QueryRow(context.Background(), `
		INSERT INTO users (name, email, role)
		VALUES ($1, $2, $3)
		RETURNING id::text
	`, name, email, role).Scan(&id)

	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func MustInsertProduct(t *testing.T, db *pgxpool.Pool, name string) string {
	t.Helper()

	var id string
	err := db.QueryRow(context.Background(), `
		INSERT INTO products (name, category)
		VALUES ($1, 'phone')
		RETURNING id::text
	`, name).Scan(&id)

	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func MustInsertStock(t *testing.T, db *pgxpool.Pool, productID string, quantity int, sellingPrice, costPrice string) string {
	t.Helper()

	var id string
	err := db.QueryRow(context.Background(), `
		INSERT INTO stocks (product_id, condition, quantity, selling_price, cost_price)
		VALUES ($1::uuid, 'new', $2, $3::numeric, $4::numeric)
		RETURNING id::text
	`, productID, quantity, sellingPrice, costPrice).Scan(&id)

	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func MustInsertPart(t *testing.T, db *pgxpool.Pool, name, unitPrice, sellingPrice string) string {
	t.Helper()

	var id string
	err := db.QueryRow(context.Background(), `
		INSERT INTO parts (part_name, quantity, unit_price, selling_price)
		VALUES ($1, 10, $2::numeric, $3::numeric)
		RETURNING id::text
	`, name, unitPrice, sellingPrice).Scan(&id)

	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func MustInsertRepair(t *testing.T, db *pgxpool.Pool, name, cost string, sellingPrice *string) string {
	t.Helper()

	var id string
	err := db.QueryRow(context.Background(), `
		INSERT INTO repairs (repair_name, cost, selling_price)
		VALUES ($1, $2::numeric, $3::numeric)
		RETURNING id::text
	`, name, cost, sellingPrice).Scan(&id)

	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func MustInsertTicket(t *testing.T, db *pgxpool.Pool, userID, contactNumber string) string {
	t.Helper()

	var id string
	err := db.QueryRow(context.Background(), `
		INSERT INTO tickets
		  (user_id, first_name, last_name, contact_number, priority,
		   device_category, device_model, issue)
		VALUES ($1::uuid, 'Test', 'Customer', $2, 'medium', 'iphone', 'iPhone 13', 'screen cracked')
		RETURNING id::text
	`, userID, contactNumber).Scan(&id)

	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func StockQuantity(t *testing.T, db *pgxpool.Pool, stockID string) int {
	t.Helper()

	var q int
	err := db.QueryRow(context.Background(), `
		SELECT quantity FROM stocks WHERE id = $1::uuid
	`, stockID).Scan(&q)

	require.NoError(t, err)
	return q
}
