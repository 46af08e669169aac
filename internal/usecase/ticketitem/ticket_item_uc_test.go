package ticketitem

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testTicketID = "6f1b0a6e-0000-4000-8000-000000000001"
	testPartID   = "6f1b0a6e-0000-4000-8000-000000000002"
	testRepairID = "6f1b0a6e-0000-4000-8000-000000000003"
	testItemID   = "6f1b0a6e-0000-4000-8000-000000000004"
)

type fakeStore struct {
	ticketExists bool
	part         *Part
	repair       *Repair
	item         *TicketItem

	created   *CreateRow
	updated   *UpdateValues
	createErr error
}

func (f *fakeStore) TicketExists(_ context.Context, _ string) (bool, error) {
	return f.ticketExists, nil
}

func (f *fakeStore) GetPart(_ context.Context, _ string) (*Part, error) {
	if f.part == nil {
		return nil, ErrPartMissing
	}
	return f.part, nil
}

func (f *fakeStore) GetRepair(_ context.Context, _ string) (*Repair, error) {
	if f.repair == nil {
		return nil, ErrRepairMissing
	}
	return f.repair, nil
}

func (f *fakeStore) Create(_ context.Context, row CreateRow) (*TicketItem, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &row
	return &TicketItem{ID: testItemID, TicketID: row.TicketID, Type: row.Type,
		Quantity: row.Quantity, SoldPrice: row.SoldPrice, Cost: row.Cost}, nil
}

func (f *fakeStore) GetByID(_ context.Context, _ string) (*TicketItem, error) {
	if f.item == nil {
		return nil, ErrNotFound
	}
	return f.item, nil
}

func (f *fakeStore) Update(_ context.Context, _ string, v UpdateValues) (*TicketItem, error) {
	f.updated = &v
	return f.item, nil
}

func (f *fakeStore) Delete(_ context.Context, _ string) error { return nil }

func (f *fakeStore) ListByTicket(_ context.Context, _ string) ([]TicketItem, error) {
	return nil, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func strptr(s string) *string { return &s }

func testPart() *Part {
	return &Part{
		ID:           testPartID,
		PartName:     "screen assembly",
		UnitPrice:    dec("150.00"),
		SellingPrice: dec("250.00"),
	}
}

func TestTicketItem_Add_PartSnapshotsPrices(t *testing.T) {
	store := &fakeStore{ticketExists: true, part: testPart()}
	uc := New(store)

	qty := 2
	out, err := uc.Add(context.Background(), AddInput{
		TicketID: testTicketID,
		Type:     TypePart,
		PartID:   strptr(testPartID),
		Quantity: &qty,
	})
	require.NoError(t, err)
	require.Equal(t, 2, out.Quantity)
	require.True(t, store.created.SoldPrice.Equal(dec("250.00")))
	require.True(t, store.created.Cost.Equal(dec("150.00")))
}

func TestTicketItem_Add_RepairUsesSellingPrice(t *testing.T) {
	selling := dec("300.00")
	store := &fakeStore{ticketExists: true, repair: &Repair{
		ID:           testRepairID,
		RepairName:   "battery swap",
		Cost:         dec("200.00"),
		SellingPrice: &selling,
	}}
	uc := New(store)

	out, err := uc.Add(context.Background(), AddInput{
		TicketID: testTicketID,
		Type:     TypeRepair,
		RepairID: strptr(testRepairID),
	})
	require.NoError(t, err)
	require.Equal(t, 1, out.Quantity)
	require.True(t, store.created.SoldPrice.Equal(selling))
	require.True(t, store.created.Cost.Equal(decimal.Zero))
}

func TestTicketItem_Add_RepairFallsBackToCost(t *testing.T) {
	store := &fakeStore{ticketExists: true, repair: &Repair{
		ID:         testRepairID,
		RepairName: "battery swap",
		Cost:       dec("200.00"),
	}}
	uc := New(store)

	_, err := uc.Add(context.Background(), AddInput{
		TicketID: testTicketID,
		Type:     TypeRepair,
		RepairID: strptr(testRepairID),
	})
	require.NoError(t, err)
	require.True(t, store.created.SoldPrice.Equal(dec("200.00")))
}

func TestTicketItem_Add_PartAndRepairRejected(t *testing.T) {
	uc := New(&fakeStore{ticketExists: true})

	_, err := uc.Add(context.Background(), AddInput{
		TicketID: testTicketID,
		Type:     TypePart,
		PartID:   strptr(testPartID),
		RepairID: strptr(testRepairID),
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestTicketItem_Add_TypeMismatch(t *testing.T) {
	uc := New(&fakeStore{ticketExists: true})

	// repair id under the part type
	_, err := uc.Add(context.Background(), AddInput{
		TicketID: testTicketID,
		Type:     TypePart,
		RepairID: strptr(testRepairID),
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestTicketItem_Add_TicketMissing(t *testing.T) {
	uc := New(&fakeStore{ticketExists: false, part: testPart()})

	_, err := uc.Add(context.Background(), AddInput{
		TicketID: testTicketID,
		Type:     TypePart,
		PartID:   strptr(testPartID),
	})
	require.ErrorIs(t, err, ErrTicketMissing)
}

func TestTicketItem_Add_Duplicate(t *testing.T) {
	uc := New(&fakeStore{ticketExists: true, part: testPart(), createErr: ErrDuplicate})

	_, err := uc.Add(context.Background(), AddInput{
		TicketID: testTicketID,
		Type:     TypePart,
		PartID:   strptr(testPartID),
	})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestTicketItem_Update_QuantityResnapshotsPartPrices(t *testing.T) {
	store := &fakeStore{
		part: testPart(),
		item: &TicketItem{
			ID:        testItemID,
			Type:      TypePart,
			PartID:    strptr(testPartID),
			Quantity:  1,
			SoldPrice: dec("100.00"),
		},
	}
	uc := New(store)

	qty := 3
	_, err := uc.Update(context.Background(), testItemID, UpdateInput{Quantity: &qty})
	require.NoError(t, err)
	require.NotNil(t, store.updated.SoldPrice)
	require.True(t, store.updated.SoldPrice.Equal(dec("250.00")))
	require.True(t, store.updated.Cost.Equal(dec("150.00")))
}

func TestTicketItem_Update_SerialOnlyKeepsPrices(t *testing.T) {
	store := &fakeStore{
		item: &TicketItem{ID: testItemID, Type: TypeRepair, RepairID: strptr(testRepairID)},
	}
	uc := New(store)

	_, err := uc.Update(context.Background(), testItemID, UpdateInput{Serial: strptr("SN-9")})
	require.NoError(t, err)
	require.Nil(t, store.updated.SoldPrice)
	require.Nil(t, store.updated.Cost)
}

func TestSnapshotPart(t *testing.T) {
	sold, cost := SnapshotPart(testPart())
	require.True(t, sold.Equal(dec("250.00")))
	require.True(t, cost.Equal(dec("150.00")))
}
