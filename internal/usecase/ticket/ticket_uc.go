package ticket

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("ticket not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

type Ticket struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	ContactNumber  string          `json:"contact_number"`
	Priority       string          `json:"priority"`
	DeviceCategory string          `json:"device_category"`
	DeviceModel    string          `json:"device_model"`
	IMEI           *string         `json:"imei,omitempty"`
	Issue          string          `json:"issue"`
	Status         string          `json:"status"`
	ServiceCharge  decimal.Decimal `json:"service_charge"`
	PaymentType    *string         `json:"payment_type,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type CreateInput struct {
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	ContactNumber  string           `json:"contact_number"`
	Priority       string           `json:"priority"`
	DeviceCategory string           `json:"device_category"`
	DeviceModel    string           `json:"device_model"`
	IMEI           *string          `json:"imei"`
	Issue          string           `json:"issue"`
	ServiceCharge  *decimal.Decimal `json:"service_charge"`
}

type ListInput struct {
	Status string
	Limit  int
	Offset int
}

type UpdateStatusInput struct {
	Status string `json:"status"`
}

type Store interface {
	Create(ctx context.Context, userID string, in CreateInput) (*Ticket, error)
	GetByID(ctx context.Context, id string) (*Ticket, error)
	List(ctx context.Context, in ListInput) ([]Ticket, error)

	// UpdateStatus locks the ticket row, validates the transition against the
	// status read under the lock and returns that previous status alongside
	// the updated ticket.
	UpdateStatus(ctx context.Context, id, status string) (*Ticket, string, error)
}

// Notifier sends the completion SMS; called once, after the status change has
// been persisted.
type Notifier interface {
	TicketCompleted(ctx context.Context, phone, ticketID string)
}

type Usecase struct {
	store    Store
	notifier Notifier
}

func New(store Store, notifier Notifier) *Usecase {
	return &Usecase{store: store, notifier: notifier}
}

func (u *Usecase) Create(ctx context.Context, userID string, in CreateInput) (*Ticket, error) {
	if userID == "" || in.FirstName == "" || in.LastName == "" || in.ContactNumber == "" ||
		in.DeviceModel == "" || in.Issue == "" {
		return nil, ErrInvalidInput
	}

	in.Priority = strings.ToLower(in.Priority)
	switch in.Priority {
	case "low", "medium", "high":
	default:
		return nil, ErrInvalidInput
	}

	in.DeviceCategory = strings.ToLower(in.DeviceCategory)
	if in.DeviceCategory == "" {
		return nil, ErrInvalidInput
	}

	if in.ServiceCharge != nil && in.ServiceCharge.IsNegative() {
		return nil, ErrInvalidInput
	}

	return u.store.Create(ctx, userID, in)
}

func (u *Usecase) GetByID(ctx context.Context, id string) (*Ticket, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidInput
	}
	return u.store.GetByID(ctx, id)
}

func (u *Usecase) List(ctx context.Context, in ListInput) ([]Ticket, error) {
	if in.Limit <= 0 || in.Limit > 100 {
		in.Limit = 20
	}
	if in.Offset < 0 {
		in.Offset = 0
	}
	if in.Status != "" && !IsValidStatus(in.Status) {
		return nil, ErrInvalidStatus
	}
	return u.store.List(ctx, in)
}

func (u *Usecase) UpdateStatus(ctx context.Context, id string, in UpdateStatusInput) (*Ticket, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidInput
	}
	if !IsValidStatus(in.Status) {
		return nil, ErrInvalidStatus
	}

	out, prev, err := u.store.UpdateStatus(ctx, id, in.Status)
	if err != nil {
		return nil, err
	}

	// The guard on the previous status makes the completion SMS fire exactly
	// once per ticket lifecycle.
	if out.Status == StatusCompleted && prev != StatusCompleted {
		go u.notifier.TicketCompleted(context.Background(), out.ContactNumber, out.ID)
	}

	return out, nil
}

func IsValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsValidTransition enforces open -> in_progress -> completed, allowing the
// direct open -> completed jump. Completed is terminal.
func IsValidTransition(from, to string) bool {
	switch from {
	case StatusOpen:
		return to == StatusInProgress || to == StatusCompleted
	case StatusInProgress:
		return to == StatusCompleted
	default:
		return false
	}
}
