package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("invoice not found")
	ErrItemNotFound     = errors.New("item not found in invoice")
	ErrQuantityExceeded = errors.New("return quantity cannot exceed purchased quantity")
	ErrStockMissing     = errors.New("stock record not found")
)

const (
	ReturnTypeStock   = "stock"
	ReturnTypeDamaged = "damaged"
)

type Store interface {
	List(ctx context.Context, in ListInput) ([]Invoice, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	ListDaily(ctx context.Context) ([]Invoice, error)

	// ProcessReturn applies every return line in one DB transaction with row
	// locks on the touched stock rows, then recomputes the invoice total from
	// the remaining items. Any line failure rolls back the whole batch.
	ProcessReturn(ctx context.Context, in ReturnInput) (*Invoice, error)

	ListReturned(ctx context.Context, in ReturnedListInput) ([]ReturnedItem, int, error)
}

type Usecase struct {
	store Store
}

func New(store Store) *Usecase {
	return &Usecase{store: store}
}

func (u *Usecase) List(ctx context.Context, in ListInput) ([]Invoice, error) {
	if in.Limit <= 0 || in.Limit > 100 {
		in.Limit = 20
	}
	if in.Offset < 0 {
		in.Offset = 0
	}
	return u.store.List(ctx, in)
}

func (u *Usecase) GetByID(ctx context.Context, id string) (*Invoice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidInput
	}
	return u.store.GetByID(ctx, id)
}

func (u *Usecase) ListDaily(ctx context.Context) ([]Invoice, error) {
	return u.store.ListDaily(ctx)
}

func (u *Usecase) ProcessReturn(ctx context.Context, in ReturnInput) (*Invoice, error) {
	if _, err := uuid.Parse(in.InvoiceID); err != nil {
		return nil, ErrInvalidInput
	}
	if len(in.Items) == 0 {
		return nil, ErrInvalidInput
	}
	for _, line := range in.Items {
		if _, err := uuid.Parse(line.ItemID); err != nil {
			return nil, ErrInvalidInput
		}
		if line.Quantity < 1 {
			return nil, ErrInvalidInput
		}
		if line.ReturnType != ReturnTypeStock && line.ReturnType != ReturnTypeDamaged {
			return nil, ErrInvalidInput
		}
	}
	return u.store.ProcessReturn(ctx, in)
}

func (u *Usecase) ListReturned(ctx context.Context, in ReturnedListInput) ([]ReturnedItem, int, error) {
	if in.Limit <= 0 || in.Limit > 100 {
		in.Limit = 10
	}
	if in.Offset < 0 {
		in.Offset = 0
	}
	return u.store.ListReturned(ctx, in)
}

// ApplyReturn decides what happens to an invoice item when some quantity is
// returned: shrink it, or remove it when the whole quantity comes back.
func ApplyReturn(purchased, returned int) (remaining int, removed bool, err error) {
	if returned > purchased {
		return 0, false, fmt.Errorf("%w: purchased=%d requested=%d",
			ErrQuantityExceeded, purchased, returned)
	}
	remaining = purchased - returned
	return remaining, remaining == 0, nil
}

// Total recomputes the invoice total from its remaining items. Each line is
// quantity times the snapshot sold price less the snapshot discount.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		unit := it.SoldPrice.Sub(it.Discount)
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
