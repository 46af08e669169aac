package ticketitem

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	ticketitemuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/ticketitem"
)

type Handler struct {
	uc *ticketitemuc.Usecase
}

func New(uc *ticketitemuc.Usecase) *Handler {
	return &Handler{uc: uc}
}

func (h *Handler) Add(c *fiber.Ctx) error {
	var in ticketitemuc.AddInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	out, err := h.uc.Add(c.Context(), in)
	if err != nil {
		return mapErr(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": out})
}

func (h *Handler) Update(c *fiber.Ctx) error {
	var in ticketitemuc.UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	out, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"message": "ticket item deleted"})
}

func (h *Handler) ListByTicket(c *fiber.Ctx) error {
	out, err := h.uc.ListByTicket(c.Context(), c.Params("id"))
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"data": out})
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, ticketitemuc.ErrInvalidInput),
		errors.Is(err, ticketitemuc.ErrDuplicate):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ticketitemuc.ErrNotFound),
		errors.Is(err, ticketitemuc.ErrTicketMissing),
		errors.Is(err, ticketitemuc.ErrPartMissing),
		errors.Is(err, ticketitemuc.ErrRepairMissing):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
