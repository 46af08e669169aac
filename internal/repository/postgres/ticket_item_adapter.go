package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	ticketitemuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/ticketitem"
)

type TicketItemStoreAdapter struct {
	db *pgxpool.Pool
}

func NewTicketItemStoreAdapter(db *pgxpool.Pool) *TicketItemStoreAdapter {
	return &TicketItemStoreAdapter{db: db}
}

func (a *TicketItemStoreAdapter) TicketExists(ctx context.Context, ticketID string) (bool, error) {
	const q = `SELECT 1 FROM tickets WHERE id = $1::uuid;`
	var one int
	if err := a.db.QueryRow(ctx, q, ticketID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (a *TicketItemStoreAdapter) GetPart(ctx context.Context, id string) (*ticketitemuc.Part, error) {
	const q = `
SELECT id::text, part_name, unit_price::text, selling_price::text, device_category, grade
FROM parts
WHERE id = $1::uuid;
`
	var (
		out           ticketitemuc.Part
		unit, selling string
	)
	err := a.db.QueryRow(ctx, q, id).Scan(
		&out.ID, &out.PartName, &unit, &selling, &out.DeviceCategory, &out.Grade)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ticketitemuc.ErrPartMissing
		}
		return nil, err
	}
	if out.UnitPrice, err = parseDec(unit); err != nil {
		return nil, err
	}
	if out.SellingPrice, err = parseDec(selling); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *TicketItemStoreAdapter) GetRepair(ctx context.Context, id string) (*ticketitemuc.Repair, error) {
	const q = `
SELECT id::text, repair_name, cost::text, selling_price::text, device_category
FROM repairs
WHERE id = $1::uuid;
`
	var (
		out     ticketitemuc.Repair
		cost    string
		selling *string
	)
	err := a.db.QueryRow(ctx, q, id).Scan(
		&out.ID, &out.RepairName, &cost, &selling, &out.DeviceCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ticketitemuc.ErrRepairMissing
		}
		return nil, err
	}
	if out.Cost, err = parseDec(cost); err != nil {
		return nil, err
	}
	if out.SellingPrice, err = parseDecPtr(selling); err != nil {
		return nil, err
	}
	return &out, nil
}

const ticketItemCols = `id::text, ticket_id::text, type, part_id::text, repair_id::text,
  quantity, serial, sold_price::text, cost::text, created_at, updated_at`

func scanTicketItemRow(row pgx.Row) (*ticketitemuc.TicketItem, error) {
	var (
		out        ticketitemuc.TicketItem
		sold, cost string
	)
	if err := row.Scan(&out.ID, &out.TicketID, &out.Type, &out.PartID, &out.RepairID,
		&out.Quantity, &out.Serial, &sold, &cost, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if out.SoldPrice, err = parseDec(sold); err != nil {
		return nil, err
	}
	if out.Cost, err = parseDec(cost); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create leans on the partial unique indexes over (ticket_id, part_id) and
// (ticket_id, repair_id); a pre-check alone would race with concurrent adds.
func (a *TicketItemStoreAdapter) Create(ctx context.Context, row ticketitemuc.CreateRow) (*ticketitemuc.TicketItem, error) {
	q := `
INSERT INTO ticket_items (ticket_id, type, part_id, repair_id, quantity, serial, sold_price, cost)
VALUES ($1::uuid, $2, $3::uuid, $4::uuid, $5, $6, $7::numeric, $8::numeric)
RETURNING ` + ticketItemCols + `;
`
	out, err := scanTicketItemRow(a.db.QueryRow(ctx, q, row.TicketID, row.Type,
		row.PartID, row.RepairID, row.Quantity, row.Serial,
		row.SoldPrice.String(), row.Cost.String()))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ticketitemuc.ErrDuplicate
		}
		return nil, err
	}
	return a.attachCatalog(ctx, out)
}

func (a *TicketItemStoreAdapter) GetByID(ctx context.Context, id string) (*ticketitemuc.TicketItem, error) {
	q := `
SELECT ` + ticketItemCols + `
FROM ticket_items
WHERE id = $1::uuid;
`
	out, err := scanTicketItemRow(a.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ticketitemuc.ErrNotFound
		}
		return nil, err
	}
	return a.attachCatalog(ctx, out)
}

func (a *TicketItemStoreAdapter) Update(ctx context.Context, id string, v ticketitemuc.UpdateValues) (*ticketitemuc.TicketItem, error) {
	var sold, cost *string
	if v.SoldPrice != nil {
		s := v.SoldPrice.String()
		sold = &s
	}
	if v.Cost != nil {
		s := v.Cost.String()
		cost = &s
	}

	q := `
UPDATE ticket_items
SET quantity = COALESCE($2, quantity),
    serial = COALESCE($3, serial),
    sold_price = COALESCE($4::numeric, sold_price),
    cost = COALESCE($5::numeric, cost),
    updated_at = now()
WHERE id = $1::uuid
RETURNING ` + ticketItemCols + `;
`
	out, err := scanTicketItemRow(a.db.QueryRow(ctx, q, id, v.Quantity, v.Serial, sold, cost))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ticketitemuc.ErrNotFound
		}
		return nil, err
	}
	return a.attachCatalog(ctx, out)
}

func (a *TicketItemStoreAdapter) Delete(ctx context.Context, id string) error {
	ct, err := a.db.Exec(ctx, `DELETE FROM ticket_items WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ticketitemuc.ErrNotFound
	}
	return nil
}

func (a *TicketItemStoreAdapter) ListByTicket(ctx context.Context, ticketID string) ([]ticketitemuc.TicketItem, error) {
	q := `
SELECT ` + ticketItemCols + `
FROM ticket_items
WHERE ticket_id = $1::uuid
ORDER BY created_at;
`
	rows, err := a.db.Query(ctx, q, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ticketitemuc.TicketItem, 0, 8)
	for rows.Next() {
		it, err := scanTicketItemRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		withCatalog, err := a.attachCatalog(ctx, &out[i])
		if err != nil {
			return nil, err
		}
		out[i] = *withCatalog
	}
	return out, nil
}

func (a *TicketItemStoreAdapter) attachCatalog(ctx context.Context, it *ticketitemuc.TicketItem) (*ticketitemuc.TicketItem, error) {
	switch {
	case it.PartID != nil:
		part, err := a.GetPart(ctx, *it.PartID)
		if err != nil {
			return nil, err
		}
		it.Part = part
	case it.RepairID != nil:
		repair, err := a.GetRepair(ctx, *it.RepairID)
		if err != nil {
			return nil, err
		}
		it.Repair = repair
	}
	return it, nil
}
