package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Items       []Item          `json:"items"`
}

type Item struct {
	ID       string          `json:"id"`
	CartID   string          `json:"cart_id"`
	StockID  string          `json:"stock_id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Discount decimal.Decimal `json:"discount"`
	Stock    *Stock          `json:"stock,omitempty"`
}

type Stock struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Condition    string          `json:"condition"`
	SerialNumber *string         `json:"serial_number,omitempty"`
	Color        *string         `json:"color,omitempty"`
	Quantity     int             `json:"quantity"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	Product      *Product        `json:"product,omitempty"`
}

type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category *string `json:"category,omitempty"`
}

type AddItemInput struct {
	CartID   string           `json:"cart_id"`
	StockID  string           `json:"stock_id"`
	Quantity int              `json:"quantity"`
	Discount *decimal.Decimal `json:"discount"`
}

type UpdateItemInput struct {
	Quantity *int             `json:"quantity"`
	Discount *decimal.Decimal `json:"discount"`
}

// UpsertItemInput carries the resolved values the store writes atomically:
// the item row keyed by (cart_id, stock_id) plus the cart total recompute.
type UpsertItemInput struct {
	CartID   string
	StockID  string
	Quantity int
	Price    decimal.Decimal
	Discount decimal.Decimal
}

type UpdateItemValues struct {
	Quantity *int
	Price    *decimal.Decimal
	Discount *decimal.Decimal
}
