package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("cart not found")
	ErrItemNotFound      = errors.New("cart item not found")
	ErrStockMissing      = errors.New("stock not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDiscountExceeded  = errors.New("discount exceeds allowed maximum")
	ErrCartLimit         = errors.New("maximum number of active carts reached")
	ErrNotOwner          = errors.New("cart does not belong to user")
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"

	// MaxActiveCarts caps how many open carts a single user may hold.
	MaxActiveCarts = 5
)

type Store interface {
	ListByUser(ctx context.Context, userID string) ([]Cart, error)
	Get(ctx context.Context, id string) (*Cart, error)
	GetForUser(ctx context.Context, id, userID string) (*Cart, error)

	// Create enforces the MaxActiveCarts ceiling under a row lock on the user
	// and returns ErrCartLimit when it is hit.
	Create(ctx context.Context, userID string) (*Cart, error)

	// FindOrCreateActive returns the user's oldest active cart, creating one
	// (subject to the same ceiling) when none exists.
	FindOrCreateActive(ctx context.Context, userID string) (*Cart, error)

	Delete(ctx context.Context, id string) error

	GetStock(ctx context.Context, stockID string) (*Stock, error)
	GetItem(ctx context.Context, itemID string) (*Item, error)

	// The three item mutations run in one DB transaction each: they take row
	// locks on the cart and the stock, re-check stock inside the transaction
	// and recompute the cart total before committing.
	UpsertItem(ctx context.Context, in UpsertItemInput) (*Cart, error)
	UpdateItem(ctx context.Context, itemID string, v UpdateItemValues) (*Cart, error)
	RemoveItem(ctx context.Context, itemID string) (*Cart, error)
}

type Usecase struct {
	store Store
}

func New(store Store) *Usecase {
	return &Usecase{store: store}
}

func (u *Usecase) List(ctx context.Context, userID string) ([]Cart, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return u.store.ListByUser(ctx, userID)
}

func (u *Usecase) Get(ctx context.Context, id, userID string) (*Cart, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidInput
	}
	return u.store.GetForUser(ctx, id, userID)
}

func (u *Usecase) Create(ctx context.Context, userID string) (*Cart, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return u.store.Create(ctx, userID)
}

func (u *Usecase) Delete(ctx context.Context, id, userID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidInput
	}

	c, err := u.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return ErrNotOwner
	}
	return u.store.Delete(ctx, c.ID)
}

func (u *Usecase) AddItem(ctx context.Context, userID string, in AddItemInput) (*Cart, error) {
	if userID == "" || in.Quantity < 1 {
		return nil, ErrInvalidInput
	}
	if _, err := uuid.Parse(in.StockID); err != nil {
		return nil, ErrInvalidInput
	}

	stock, err := u.store.GetStock(ctx, in.StockID)
	if err != nil {
		return nil, err
	}
	if stock.Quantity < in.Quantity {
		return nil, fmt.Errorf("%w: stock=%s available=%d requested=%d",
			ErrInsufficientStock, stock.ID, stock.Quantity, in.Quantity)
	}

	discount := decimal.Zero
	if in.Discount != nil {
		discount = *in.Discount
	}
	if err := checkDiscount(discount, stock); err != nil {
		return nil, err
	}

	var target *Cart
	if in.CartID != "" {
		if _, err := uuid.Parse(in.CartID); err != nil {
			return nil, ErrInvalidInput
		}
		target, err = u.store.GetForUser(ctx, in.CartID, userID)
	} else {
		target, err = u.store.FindOrCreateActive(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	return u.store.UpsertItem(ctx, UpsertItemInput{
		CartID:   target.ID,
		StockID:  stock.ID,
		Quantity: in.Quantity,
		Price:    UnitPrice(stock.SellingPrice, discount),
		Discount: discount,
	})
}

func (u *Usecase) UpdateItem(ctx context.Context, itemID string, in UpdateItemInput) (*Cart, error) {
	if _, err := uuid.Parse(itemID); err != nil {
		return nil, ErrInvalidInput
	}
	if in.Quantity == nil && in.Discount == nil {
		return nil, ErrInvalidInput
	}
	if in.Quantity != nil && *in.Quantity < 1 {
		return nil, ErrInvalidInput
	}

	item, err := u.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	stock := item.Stock

	if in.Quantity != nil && stock.Quantity < *in.Quantity {
		return nil, fmt.Errorf("%w: stock=%s available=%d requested=%d",
			ErrInsufficientStock, stock.ID, stock.Quantity, *in.Quantity)
	}

	v := UpdateItemValues{Quantity: in.Quantity}
	if in.Discount != nil {
		if err := checkDiscount(*in.Discount, stock); err != nil {
			return nil, err
		}
		price := UnitPrice(stock.SellingPrice, *in.Discount)
		v.Price = &price
		v.Discount = in.Discount
	}

	return u.store.UpdateItem(ctx, itemID, v)
}

func (u *Usecase) RemoveItem(ctx context.Context, itemID string) (*Cart, error) {
	if _, err := uuid.Parse(itemID); err != nil {
		return nil, ErrInvalidInput
	}
	if _, err := u.store.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	return u.store.RemoveItem(ctx, itemID)
}

func checkDiscount(discount decimal.Decimal, stock *Stock) error {
	if discount.IsNegative() {
		return ErrInvalidInput
	}
	max := MaxDiscount(stock.SellingPrice, stock.CostPrice)
	if discount.GreaterThan(max) {
		return fmt.Errorf("%w: maximum discount allowed is %s", ErrDiscountExceeded, max)
	}
	return nil
}

// MaxDiscount is the margin between selling and cost price; a discount may
// never eat into the cost of the unit.
func MaxDiscount(sellingPrice, costPrice decimal.Decimal) decimal.Decimal {
	return sellingPrice.Sub(costPrice)
}

// UnitPrice is the effective per-unit price after discount.
func UnitPrice(sellingPrice, discount decimal.Decimal) decimal.Decimal {
	return sellingPrice.Sub(discount)
}

// Total is the authoritative cart total: the sum of quantity times effective
// unit price over all items. Client-supplied totals are never trusted.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
