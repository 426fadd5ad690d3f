package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dish"
	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

// DishHandler maneja el menú.
type DishHandler struct {
	base
	uc *dish.UseCase
}

// NewDishHandler construye el handler.
func NewDishHandler(uc *dish.UseCase, log *logger.Logger) *DishHandler {
	return &DishHandler{base: base{log: log.Component("dish_http")}, uc: uc}
}

// Create godoc
// @Summary      Crear plato
// @Tags         dishes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDishRequest  true  "nombre, categoría, modo de venta, receta"
// @Success      201   {object}  dto.DishResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/dishes [post]
func (h *DishHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDishRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetTenantID(c), GetClientID(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/dishes?includeArchived=true
func (h *DishHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), GetTenantID(c), GetClientID(c), c.QueryBool("includeArchived"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

func (h *DishHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetTenantID(c), GetClientID(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

func (h *DishHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDishRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetTenantID(c), GetClientID(c), c.Params("id"), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Delete archiva el plato; las órdenes viejas conservan su snapshot.
func (h *DishHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Archive(c.UserContext(), GetTenantID(c), GetClientID(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
