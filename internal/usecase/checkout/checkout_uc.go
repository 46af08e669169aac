package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/cart"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrCartNotFound      = errors.New("no active cart found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrTotalMismatch     = errors.New("total amount does not match cart total")
)

const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

type Input struct {
	CartID        string          `json:"cart_id"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	ContactNumber string          `json:"contact_number"`
	PaymentMethod string          `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

type Invoice struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	ContactNumber string          `json:"contact_number"`
	PaymentMethod string          `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []InvoiceItem   `json:"items"`
}

type InvoiceItem struct {
	ID           string          `json:"id,omitempty"`
	InvoiceID    string          `json:"invoice_id,omitempty"`
	ProductID    string          `json:"product_id"`
	StockID      string          `json:"stock_id"`
	SoldPrice    decimal.Decimal `json:"sold_price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	Discount     decimal.Decimal `json:"discount"`
	Quantity     int             `json:"quantity"`
	SerialNumber *string         `json:"serial_number,omitempty"`
}

// Result carries the invoice together with a snapshot of the cart taken
// before the cart row was deleted.
type Result struct {
	Cart    cartuc.Cart `json:"cart"`
	Invoice Invoice     `json:"invoice"`
}

// Line is one cart line joined with its stock row, read under a row lock on
// the stock inside the checkout transaction.
type Line struct {
	StockID        string
	ProductID      string
	Quantity       int
	Discount       decimal.Decimal
	SellingPrice   decimal.Decimal
	CostPrice      decimal.Decimal
	SerialNumber   *string
	StockAvailable int
}

type Store interface {
	// Checkout runs the whole conversion in one DB transaction: invoice plus
	// items created, every stock row locked, re-checked and decremented, cart
	// and items deleted. Either all of it commits or none of it does.
	// The cart must be an active cart of userID; otherwise ErrCartNotFound.
	Checkout(ctx context.Context, userID string, in Input) (*Result, error)
}

// Notifier sends the purchase confirmation. Called after the transaction has
// committed; implementations log failures and never return them.
type Notifier interface {
	PurchaseConfirmation(ctx context.Context, phone, invoiceID string)
}

type Usecase struct {
	store    Store
	notifier Notifier
}

func New(store Store, notifier Notifier) *Usecase {
	return &Usecase{store: store, notifier: notifier}
}

func (u *Usecase) Checkout(ctx context.Context, userID string, in Input) (*Result, error) {
	if userID == "" || in.FirstName == "" || in.LastName == "" || in.ContactNumber == "" {
		return nil, ErrInvalidInput
	}
	if _, err := uuid.Parse(in.CartID); err != nil {
		return nil, ErrInvalidInput
	}
	if in.PaymentMethod != PaymentCash && in.PaymentMethod != PaymentCard {
		return nil, ErrInvalidInput
	}
	if in.TotalAmount.IsNegative() {
		return nil, ErrInvalidInput
	}

	out, err := u.store.Checkout(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	// Fire and forget: the sale is committed, the SMS must not block or fail it.
	go u.notifier.PurchaseConfirmation(context.Background(), in.ContactNumber, out.Invoice.ID)

	return out, nil
}

// Snapshot converts one locked cart line into the invoice item to persist,
// re-checking availability inside the transaction. Prices are copied from the
// stock row as it stands now and never recomputed afterwards.
func Snapshot(l Line) (InvoiceItem, error) {
	if l.StockAvailable < l.Quantity {
		return InvoiceItem{}, fmt.Errorf("%w: stock=%s available=%d requested=%d",
			ErrInsufficientStock, l.StockID, l.StockAvailable, l.Quantity)
	}
	return InvoiceItem{
		ProductID:    l.ProductID,
		StockID:      l.StockID,
		SoldPrice:    l.SellingPrice,
		CostPrice:    l.CostPrice,
		Discount:     l.Discount,
		Quantity:     l.Quantity,
		SerialNumber: l.SerialNumber,
	}, nil
}
