package cart

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/AshanHimantha/myapplecare-backend/internal/delivery/middleware"
	cartuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/cart"
	checkoutuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/checkout"
)

type Handler struct {
	uc       *cartuc.Usecase
	checkout *checkoutuc.Usecase
}

func New(uc *cartuc.Usecase, checkout *checkoutuc.Usecase) *Handler {
	return &Handler{uc: uc, checkout: checkout}
}

func (h *Handler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), middleware.UserID(c))
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"data": out, "total_carts": len(out)})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *Handler) Create(c *fiber.Ctx) error {
	out, err := h.uc.Create(c.Context(), middleware.UserID(c))
	if err != nil {
		return mapErr(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": out})
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id"), middleware.UserID(c)); err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"message": "cart deleted"})
}

func (h *Handler) AddItem(c *fiber.Ctx) error {
	var in cartuc.AddItemInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	out, err := h.uc.AddItem(c.Context(), middleware.UserID(c), in)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *Handler) UpdateItem(c *fiber.Ctx) error {
	var in cartuc.UpdateItemInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	out, err := h.uc.UpdateItem(c.Context(), c.Params("id"), in)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *Handler) RemoveItem(c *fiber.Ctx) error {
	out, err := h.uc.RemoveItem(c.Context(), c.Params("id"))
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *Handler) Checkout(c *fiber.Ctx) error {
	var in checkoutuc.Input
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	out, err := h.checkout.Checkout(c.Context(), middleware.UserID(c), in)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(fiber.Map{"message": "checkout successful", "data": out})
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, cartuc.ErrInvalidInput), errors.Is(err, checkoutuc.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, cartuc.ErrInsufficientStock), errors.Is(err, checkoutuc.ErrInsufficientStock):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, cartuc.ErrDiscountExceeded),
		errors.Is(err, cartuc.ErrCartLimit),
		errors.Is(err, checkoutuc.ErrTotalMismatch):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, cartuc.ErrNotOwner):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, cartuc.ErrNotFound),
		errors.Is(err, cartuc.ErrItemNotFound),
		errors.Is(err, cartuc.ErrStockMissing),
		errors.Is(err, checkoutuc.ErrCartNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
