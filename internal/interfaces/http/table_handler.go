package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/application/table"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

// TableHandler maneja las mesas del tenant.
type TableHandler struct {
	base
	uc *table.UseCase
}

// NewTableHandler construye el handler.
func NewTableHandler(uc *table.UseCase, log *logger.Logger) *TableHandler {
	return &TableHandler{base: base{log: log.Component("table_http")}, uc: uc}
}

// Create godoc
// @Summary      Crear mesa
// @Tags         tables
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTableRequest  true  "número y asientos"
// @Success      201   {object}  dto.TableResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tables [post]
func (h *TableHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTableRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetTenantID(c), GetClientID(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/tables
func (h *TableHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), GetTenantID(c), GetClientID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

// Update PUT /api/tables/:id
func (h *TableHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateTableRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetTenantID(c), GetClientID(c), c.Params("id"), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/tables/:id
func (h *TableHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetTenantID(c), GetClientID(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Release POST /api/tables/:id/release
func (h *TableHandler) Release(c *fiber.Ctx) error {
	out, err := h.uc.Release(c.UserContext(), GetTenantID(c), GetClientID(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}
