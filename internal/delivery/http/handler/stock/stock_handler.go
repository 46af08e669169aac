package stock

import (
	"github.com/gofiber/fiber/v2"

	stockuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/stock"
)

type Handler struct {
	uc *stockuc.Usecase
}

func New(uc *stockuc.Usecase) *Handler {
	return &Handler{uc: uc}
}

func (h *Handler) ListAvailable(c *fiber.Ctx) error {
	out, err := h.uc.ListAvailable(c.Context(), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
	return c.JSON(fiber.Map{"data": out})
}
