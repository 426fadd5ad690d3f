package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/application/order"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

// OrderHandler rutas de órdenes, factura e inventario por orden.
type OrderHandler struct {
	base
	uc *order.UseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *order.UseCase, log *logger.Logger) *OrderHandler {
	return &OrderHandler{base: base{log: log.Component("order_http")}, uc: uc}
}

// Create godoc
// @Summary      Crear orden
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "items, mesa, canal, descuento, propina, fiscal"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get GET /api/orders/:id
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar órdenes (más recientes primero)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "En Progreso | Listo | Completado | Cancelado"
// @Param        limit   query  int     false  "máximo 100"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return h.fail(c, errBadQuery)
	}
	page.DefaultPage()
	if err := validateStruct(&page); err != nil {
		return h.fail(c, err)
	}
	list, err := h.uc.List(c.UserContext(), actor(c), c.Query("status"), page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"data": list,
		"page": dto.NewPageResponse(page, len(list)),
	})
}

// Update godoc
// @Summary      Actualizar orden (PUT y PATCH son parciales)
// @Description  Recalcula montos, maneja la mesa, emite el NCF cuando se solicita y al completar
//
//	libera la mesa, descuenta inventario y genera la factura.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "id de la orden"
// @Param        body  body  dto.UpdateOrderRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.UpdateOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateOrderRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), actor(c), c.Params("id"), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/orders/:id. Idempotente.
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	deleted, err := h.uc.Delete(c.UserContext(), actor(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "deleted": deleted})
}

// InvoiceURL GET /api/orders/:id/invoice
func (h *OrderHandler) InvoiceURL(c *fiber.Ctx) error {
	out, err := h.uc.InvoiceURL(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// InvoicePDF GET /api/orders/:id/invoice/pdf
func (h *OrderHandler) InvoicePDF(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.uc.InvoicePDF(c.UserContext(), actor(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="invoice_`+id+`.pdf"`)
	return c.Send(pdf)
}

// DeductInventory POST /api/orders/:id/inventory/deduct
func (h *OrderHandler) DeductInventory(c *fiber.Ctx) error {
	out, err := h.uc.DeductInventory(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}
