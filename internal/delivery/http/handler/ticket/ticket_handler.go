package ticket

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/AshanHimantha/myapplecare-backend/internal/delivery/middleware"
	ticketuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/ticket"
)

type Handler struct {
	uc *ticketuc.Usecase
}

func New(uc *ticketuc.Usecase) *Handler {
	return &Handler{uc: uc}
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var in ticketuc.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	out, err := h.uc.Create(c.Context(), middleware.UserID(c), in)
	if err != nil {
		return mapErr(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": out})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *Handler) List(c *fiber.Ctx) error {
	in := ticketuc.ListInput{
		Status: c.Query("status"),
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}

	out, err := h.uc.List(c.Context(), in)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	var in ticketuc.UpdateStatusInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	out, err := h.uc.UpdateStatus(c.Context(), c.Params("id"), in)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"data": out})
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, ticketuc.ErrInvalidInput),
		errors.Is(err, ticketuc.ErrInvalidStatus),
		errors.Is(err, ticketuc.ErrInvalidTransition):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ticketuc.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
