package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/application/inventory"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

// InventoryHandler maneja insumos, movimientos, merma y reposición (protegido).
type InventoryHandler struct {
	base
	items         *inventory.ItemUseCase
	movements     *inventory.RegisterMovementUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(items *inventory.ItemUseCase, movements *inventory.RegisterMovementUseCase, replenishment *inventory.ReplenishmentUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		base:          base{log: log.Component("inventory_http")},
		items:         items,
		movements:     movements,
		replenishment: replenishment,
	}
}

// CreateItem godoc
// @Summary      Crear insumo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInventoryItemRequest  true  "nombre, unidad, stock, mínimo, costo"
// @Success      201   {object}  dto.InventoryItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/items [post]
func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	var in dto.CreateInventoryItemRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.items.Create(c.UserContext(), GetTenantID(c), GetClientID(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *InventoryHandler) ListItems(c *fiber.Ctx) error {
	list, err := h.items.List(c.UserContext(), GetTenantID(c), GetClientID(c), c.QueryBool("includeArchived"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	out, err := h.items.Get(c.UserContext(), GetTenantID(c), GetClientID(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

func (h *InventoryHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateInventoryItemRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.items.Update(c.UserContext(), GetTenantID(c), GetClientID(c), c.Params("id"), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

func (h *InventoryHandler) ArchiveItem(c *fiber.Ctx) error {
	if err := h.items.Archive(c.UserContext(), GetTenantID(c), GetClientID(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RegisterMovement godoc
// @Summary      Registrar compra o ajuste de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "itemId, type (purchase|adjustment), qty, unitCost"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.movements.RegisterMovementFromRequest(c.UserContext(), GetTenantID(c), GetClientID(c), GetUserID(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements GET /api/inventory/movements?itemId=&type=&from=&to=&limit=&offset=
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	f := repository.MovementFilter{
		ItemID: c.Query("itemId"),
		Type:   c.Query("type"),
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	var err error
	if f.From, err = queryTime(c, "from"); err != nil {
		return h.fail(c, err)
	}
	if f.To, err = queryTime(c, "to"); err != nil {
		return h.fail(c, err)
	}
	list, err := h.items.ListMovements(c.UserContext(), GetTenantID(c), GetClientID(c), f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

// RegisterWaste POST /api/inventory/waste
func (h *InventoryHandler) RegisterWaste(c *fiber.Ctx) error {
	var in dto.WasteRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.movements.RegisterWasteFromRequest(c.UserContext(), GetTenantID(c), GetClientID(c), GetUserID(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// WasteSummary GET /api/inventory/waste/summary?dateYMD= | ?from=&to=
func (h *InventoryHandler) WasteSummary(c *fiber.Ctx) error {
	out, err := h.items.WasteSummary(c.UserContext(), GetTenantID(c), GetClientID(c), c.Query("dateYMD"), c.Query("from"), c.Query("to"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Insumos bajo mínimo con cantidad sugerida
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), GetTenantID(c), GetClientID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"total": len(list),
		"items": list,
	})
}

// queryTime acepta RFC3339 o YYYY-MM-DD.
func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, domain.Validation("INVALID_DATE", key+" inválido: "+v)
}
