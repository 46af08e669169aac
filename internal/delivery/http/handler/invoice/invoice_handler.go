package invoice

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	invoiceuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/invoice"
)

type Handler struct {
	uc *invoiceuc.Usecase
}

func New(uc *invoiceuc.Usecase) *Handler {
	return &Handler{uc: uc}
}

func (h *Handler) List(c *fiber.Ctx) error {
	in := invoiceuc.ListInput{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}

	var err error
	if in.DateFrom, err = parseDateQuery(c, "date_from"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid date_from")
	}
	if in.DateTo, err = parseDateQuery(c, "date_to"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid date_to")
	}

	out, err := h.uc.List(c.Context(), in)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *Handler) Daily(c *fiber.Ctx) error {
	out, err := h.uc.ListDaily(c.Context())
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *Handler) ProcessReturn(c *fiber.Ctx) error {
	var in invoiceuc.ReturnInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	out, err := h.uc.ProcessReturn(c.Context(), in)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"message": "return processed successfully", "data": out})
}

func (h *Handler) ListReturned(c *fiber.Ctx) error {
	in := invoiceuc.ReturnedListInput{
		Limit:  c.QueryInt("limit", 10),
		Offset: c.QueryInt("offset", 0),
	}

	var err error
	if in.DateFrom, err = parseDateQuery(c, "date_from"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid date_from")
	}
	if in.DateTo, err = parseDateQuery(c, "date_to"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid date_to")
	}

	items, total, err := h.uc.ListReturned(c.Context(), in)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": fiber.Map{
			"per_page": in.Limit,
			"offset":   in.Offset,
			"total":    total,
		},
	})
}

func parseDateQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, invoiceuc.ErrInvalidInput),
		errors.Is(err, invoiceuc.ErrItemNotFound),
		errors.Is(err, invoiceuc.ErrQuantityExceeded),
		errors.Is(err, invoiceuc.ErrStockMissing):
		// business failures reject the whole batch with a 400
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, invoiceuc.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
