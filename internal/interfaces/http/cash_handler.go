package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-restaurante-api/internal/application/cash"
	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

// CashHandler caja diaria: apertura, ingresos, ajuste, cierre y rango.
type CashHandler struct {
	base
	uc *cash.UseCase
}

// NewCashHandler construye el handler.
func NewCashHandler(uc *cash.UseCase, log *logger.Logger) *CashHandler {
	return &CashHandler{base: base{log: log.Component("cash_http")}, uc: uc}
}

// Get devuelve la sesión del día o {"data": null} si no existe.
func (h *CashHandler) Get(c *fiber.Ctx) error {
	var q dto.CashSessionQuery
	if err := bindQuery(c, &q); err != nil {
		return h.fail(c, err)
	}
	out, err := h.uc.Get(c.UserContext(), actor(c), q)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"data": out})
}

// Range GET /api/cash-session/range?from=&to=&registerId=
func (h *CashHandler) Range(c *fiber.Ctx) error {
	var q dto.CashRangeQuery
	if err := bindQuery(c, &q); err != nil {
		return h.fail(c, err)
	}
	out, err := h.uc.Range(c.UserContext(), actor(c), q)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Open godoc
// @Summary      Abrir caja del día
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenCashSessionRequest  true  "dateYMD, registerId, openingFloat"
// @Success      201   {object}  dto.CashSessionResponse
// @Success      200   {object}  dto.CashSessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash-session/open [post]
func (h *CashHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenCashSessionRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, created, err := h.uc.Open(c.UserContext(), actor(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	if created {
		return c.Status(fiber.StatusCreated).JSON(out)
	}
	return c.JSON(out)
}

func (h *CashHandler) Add(c *fiber.Ctx) error {
	var in dto.AddCashRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.uc.Add(c.UserContext(), actor(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Adjust PATCH /api/cash-session/adjust (Owner/Admin)
func (h *CashHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustCashRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.uc.Adjust(c.UserContext(), actor(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

func (h *CashHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseCashRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.uc.Close(c.UserContext(), actor(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}
