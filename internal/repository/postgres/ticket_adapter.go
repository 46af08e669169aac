package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	ticketuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/ticket"
)

type TicketStoreAdapter struct {
	db *pgxpool.Pool
}

func NewTicketStoreAdapter(db *pgxpool.Pool) *TicketStoreAdapter {
	return &TicketStoreAdapter{db: db}
}

const ticketCols = `id::text, user_id::text, first_name, last_name, contact_number, priority,
  device_category, device_model, imei, issue, status, service_charge::text, payment_type,
  created_at, updated_at`

func scanTicketRow(row pgx.Row) (*ticketuc.Ticket, error) {
	var (
		out    ticketuc.Ticket
		charge string
	)
	if err := row.Scan(&out.ID, &out.UserID, &out.FirstName, &out.LastName,
		&out.ContactNumber, &out.Priority, &out.DeviceCategory, &out.DeviceModel,
		&out.IMEI, &out.Issue, &out.Status, &charge, &out.PaymentType,
		&out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if out.ServiceCharge, err = parseDec(charge); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *TicketStoreAdapter) Create(ctx context.Context, userID string, in ticketuc.CreateInput) (*ticketuc.Ticket, error) {
	charge := "0"
	if in.ServiceCharge != nil {
		charge = in.ServiceCharge.String()
	}

	q := `
INSERT INTO tickets
  (user_id, first_name, last_name, contact_number, priority, device_category,
   device_model, imei, issue, status, service_charge)
VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::numeric)
RETURNING ` + ticketCols + `;
`
	out, err := scanTicketRow(a.db.QueryRow(ctx, q, userID, in.FirstName, in.LastName,
		in.ContactNumber, in.Priority, in.DeviceCategory, in.DeviceModel, in.IMEI,
		in.Issue, ticketuc.StatusOpen, charge))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *TicketStoreAdapter) GetByID(ctx context.Context, id string) (*ticketuc.Ticket, error) {
	q := `
SELECT ` + ticketCols + `
FROM tickets
WHERE id = $1::uuid;
`
	out, err := scanTicketRow(a.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ticketuc.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (a *TicketStoreAdapter) List(ctx context.Context, in ticketuc.ListInput) ([]ticketuc.Ticket, error) {
	q := `
SELECT ` + ticketCols + `
FROM tickets
WHERE ($1 = '' OR status = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3;
`
	rows, err := a.db.Query(ctx, q, in.Status, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ticketuc.Ticket, 0, in.Limit)
	for rows.Next() {
		t, err := scanTicketRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// UpdateStatus reads the previous status under a row lock so the transition
// check and the completed-once notification guard cannot race.
func (a *TicketStoreAdapter) UpdateStatus(ctx context.Context, id, status string) (*ticketuc.Ticket, string, error) {
	tx, err := a.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const lockQ = `
SELECT status
FROM tickets
WHERE id = $1::uuid
FOR UPDATE;
`
	var prev string
	if err := tx.QueryRow(ctx, lockQ, id).Scan(&prev); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ticketuc.ErrNotFound
		}
		return nil, "", err
	}

	if prev != status && !ticketuc.IsValidTransition(prev, status) {
		return nil, "", ticketuc.ErrInvalidTransition
	}

	q := `
UPDATE tickets
SET status = $2,
    updated_at = now()
WHERE id = $1::uuid
RETURNING ` + ticketCols + `;
`
	out, err := scanTicketRow(tx.QueryRow(ctx, q, id, status))
	if err != nil {
		return nil, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", err
	}
	return out, prev, nil
}
