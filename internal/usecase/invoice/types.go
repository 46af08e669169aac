package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

type Invoice struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	ContactNumber string          `json:"contact_number"`
	PaymentMethod string          `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []Item          `json:"items,omitempty"`
}

type Item struct {
	ID           string          `json:"id"`
	InvoiceID    string          `json:"invoice_id"`
	ProductID    string          `json:"product_id"`
	StockID      string          `json:"stock_id"`
	SoldPrice    decimal.Decimal `json:"sold_price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	Discount     decimal.Decimal `json:"discount"`
	Quantity     int             `json:"quantity"`
	SerialNumber *string         `json:"serial_number,omitempty"`
}

type ReturnedItem struct {
	ID         string    `json:"id"`
	InvoiceID  string    `json:"invoice_id"`
	ProductID  string    `json:"product_id"`
	StockID    string    `json:"stock_id"`
	Quantity   int       `json:"quantity"`
	ReturnType string    `json:"return_type"`
	ReturnedAt time.Time `json:"returned_at"`
}

type ReturnLine struct {
	ItemID     string `json:"item_id"`
	Quantity   int    `json:"quantity"`
	ReturnType string `json:"return_type"`
}

type ReturnInput struct {
	InvoiceID string       `json:"invoice_id"`
	Items     []ReturnLine `json:"items"`
}

type ListInput struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

type ReturnedListInput struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}
