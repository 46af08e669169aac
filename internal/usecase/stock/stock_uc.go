package stock

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidInput = errors.New("invalid input")

type Stock struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Condition    string          `json:"condition"`
	SerialNumber *string         `json:"serial_number,omitempty"`
	Color        *string         `json:"color,omitempty"`
	Quantity     int             `json:"quantity"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	ProductName  string          `json:"product_name"`
}

type Store interface {
	ListAvailable(ctx context.Context, limit, offset int) ([]Stock, error)
}

type Usecase struct {
	store Store
}

func New(store Store) *Usecase {
	return &Usecase{store: store}
}

func (u *Usecase) ListAvailable(ctx context.Context, limit, offset int) ([]Stock, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return u.store.ListAvailable(ctx, limit, offset)
}
