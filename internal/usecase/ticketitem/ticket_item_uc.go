package ticketitem

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("ticket item not found")
	ErrTicketMissing = errors.New("ticket not found")
	ErrPartMissing   = errors.New("part not found")
	ErrRepairMissing = errors.New("repair not found")
	ErrDuplicate     = errors.New("ticket already has this part or repair")
)

const (
	TypePart   = "part"
	TypeRepair = "repair"
)

type TicketItem struct {
	ID        string          `json:"id"`
	TicketID  string          `json:"ticket_id"`
	Type      string          `json:"type"`
	PartID    *string         `json:"part_id,omitempty"`
	RepairID  *string         `json:"repair_id,omitempty"`
	Quantity  int             `json:"quantity"`
	Serial    *string         `json:"serial,omitempty"`
	SoldPrice decimal.Decimal `json:"sold_price"`
	Cost      decimal.Decimal `json:"cost"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Part      *Part           `json:"part,omitempty"`
	Repair    *Repair         `json:"repair,omitempty"`
}

type Part struct {
	ID             string          `json:"id"`
	PartName       string          `json:"part_name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	DeviceCategory *string         `json:"device_category,omitempty"`
	Grade          *string         `json:"grade,omitempty"`
}

type Repair struct {
	ID             string           `json:"id"`
	RepairName     string           `json:"repair_name"`
	Cost           decimal.Decimal  `json:"cost"`
	SellingPrice   *decimal.Decimal `json:"selling_price,omitempty"`
	DeviceCategory *string          `json:"device_category,omitempty"`
}

type AddInput struct {
	TicketID string  `json:"ticket_id"`
	Type     string  `json:"type"`
	PartID   *string `json:"part_id"`
	RepairID *string `json:"repair_id"`
	Quantity *int    `json:"quantity"`
	Serial   *string `json:"serial"`
}

type UpdateInput struct {
	Quantity *int    `json:"quantity"`
	Serial   *string `json:"serial"`
}

// CreateRow is the fully resolved row the store persists: prices are already
// snapshot from the part or repair catalog entry.
type CreateRow struct {
	TicketID  string
	Type      string
	PartID    *string
	RepairID  *string
	Quantity  int
	Serial    *string
	SoldPrice decimal.Decimal
	Cost      decimal.Decimal
}

type UpdateValues struct {
	Quantity  *int
	Serial    *string
	SoldPrice *decimal.Decimal
	Cost      *decimal.Decimal
}

type Store interface {
	TicketExists(ctx context.Context, ticketID string) (bool, error)
	GetPart(ctx context.Context, id string) (*Part, error)
	GetRepair(ctx context.Context, id string) (*Repair, error)

	// Create relies on the storage-layer unique constraints on
	// (ticket_id, part_id) and (ticket_id, repair_id) and returns ErrDuplicate
	// when one is violated; an existence pre-check alone would race.
	Create(ctx context.Context, row CreateRow) (*TicketItem, error)

	GetByID(ctx context.Context, id string) (*TicketItem, error)
	Update(ctx context.Context, id string, v UpdateValues) (*TicketItem, error)
	Delete(ctx context.Context, id string) error
	ListByTicket(ctx context.Context, ticketID string) ([]TicketItem, error)
}

type Usecase struct {
	store Store
}

func New(store Store) *Usecase {
	return &Usecase{store: store}
}

func (u *Usecase) Add(ctx context.Context, in AddInput) (*TicketItem, error) {
	if _, err := uuid.Parse(in.TicketID); err != nil {
		return nil, ErrInvalidInput
	}

	// part XOR repair, discriminated by type
	switch in.Type {
	case TypePart:
		if in.PartID == nil || in.RepairID != nil {
			return nil, ErrInvalidInput
		}
		if _, err := uuid.Parse(*in.PartID); err != nil {
			return nil, ErrInvalidInput
		}
	case TypeRepair:
		if in.RepairID == nil || in.PartID != nil {
			return nil, ErrInvalidInput
		}
		if _, err := uuid.Parse(*in.RepairID); err != nil {
			return nil, ErrInvalidInput
		}
	default:
		return nil, ErrInvalidInput
	}

	ok, err := u.store.TicketExists(ctx, in.TicketID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTicketMissing
	}

	row := CreateRow{
		TicketID: in.TicketID,
		Type:     in.Type,
		PartID:   in.PartID,
		RepairID: in.RepairID,
		Quantity: 1,
		Serial:   in.Serial,
	}

	switch in.Type {
	case TypePart:
		if in.Quantity != nil {
			if *in.Quantity < 1 {
				return nil, ErrInvalidInput
			}
			row.Quantity = *in.Quantity
		}
		part, err := u.store.GetPart(ctx, *in.PartID)
		if err != nil {
			return nil, err
		}
		row.SoldPrice, row.Cost = SnapshotPart(part)
	case TypeRepair:
		repair, err := u.store.GetRepair(ctx, *in.RepairID)
		if err != nil {
			return nil, err
		}
		row.SoldPrice, row.Cost = SnapshotRepair(repair)
	}

	return u.store.Create(ctx, row)
}

func (u *Usecase) Update(ctx context.Context, id string, in UpdateInput) (*TicketItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidInput
	}
	if in.Quantity == nil && in.Serial == nil {
		return nil, ErrInvalidInput
	}
	if in.Quantity != nil && *in.Quantity < 1 {
		return nil, ErrInvalidInput
	}

	item, err := u.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v := UpdateValues{Quantity: in.Quantity, Serial: in.Serial}

	// A quantity change on a part line re-snapshots the current part prices;
	// plain reads never do.
	if in.Quantity != nil && item.Type == TypePart && item.PartID != nil {
		part, err := u.store.GetPart(ctx, *item.PartID)
		if err != nil {
			return nil, err
		}
		sold, cost := SnapshotPart(part)
		v.SoldPrice = &sold
		v.Cost = &cost
	}

	return u.store.Update(ctx, id, v)
}

func (u *Usecase) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidInput
	}
	return u.store.Delete(ctx, id)
}

func (u *Usecase) ListByTicket(ctx context.Context, ticketID string) ([]TicketItem, error) {
	if _, err := uuid.Parse(ticketID); err != nil {
		return nil, ErrInvalidInput
	}
	return u.store.ListByTicket(ctx, ticketID)
}

// SnapshotPart captures the part's current prices onto the line: the customer
// pays the selling price, the business carries the unit price as cost.
func SnapshotPart(p *Part) (soldPrice, cost decimal.Decimal) {
	return p.SellingPrice, p.UnitPrice
}

// SnapshotRepair captures a repair charge: the selling price when set,
// otherwise the listed cost. Repairs carry no cost of their own.
func SnapshotRepair(r *Repair) (soldPrice, cost decimal.Decimal) {
	if r.SellingPrice != nil {
		return *r.SellingPrice, decimal.Zero
	}
	return r.Cost, decimal.Zero
}
