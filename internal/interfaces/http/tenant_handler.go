package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/application/tenant"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

// TenantHandler alta de restaurantes y configuración del tenant autenticado.
type TenantHandler struct {
	base
	uc *tenant.UseCase
}

// NewTenantHandler construye el handler.
func NewTenantHandler(uc *tenant.UseCase, log *logger.Logger) *TenantHandler {
	return &TenantHandler{base: base{log: log.Component("tenant_http")}, uc: uc}
}

// Onboard godoc
// @Summary      Registrar restaurante con su usuario Owner
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OnboardTenantRequest  true  "nombre, plan, negocio, owner"
// @Success      201   {object}  dto.OnboardTenantResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tenants [post]
func (h *TenantHandler) Onboard(c *fiber.Ctx) error {
	var in dto.OnboardTenantRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.uc.Onboard(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get GET /api/tenant
func (h *TenantHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetTenantID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// UpdateFeatures godoc
// @Summary      Activar o desactivar impuesto, descuento, propina y canales de delivery
// @Tags         tenants
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateFeaturesRequest  true  "features"
// @Success      200   {object}  dto.TenantResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/tenant/features [put]
func (h *TenantHandler) UpdateFeatures(c *fiber.Ctx) error {
	var in dto.UpdateFeaturesRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.uc.UpdateFeatures(c.UserContext(), GetTenantID(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// UpdateFiscal PUT /api/tenant/fiscal
func (h *TenantHandler) UpdateFiscal(c *fiber.Ctx) error {
	var in dto.UpdateFiscalRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.uc.UpdateFiscal(c.UserContext(), GetTenantID(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// UpsertSequence godoc
// @Summary      Configurar rango autorizado de NCF
// @Tags         tenants
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        type  path  string                     true  "B01 | B02 | B14 | B15"
// @Param        body  body  dto.UpsertSequenceRequest  true  "start, current, max, active"
// @Success      200   {object}  dto.FiscalSequenceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tenant/fiscal/sequences/{type} [put]
func (h *TenantHandler) UpsertSequence(c *fiber.Ctx) error {
	var in dto.UpsertSequenceRequest
	if err := bindBody(c, &in); err != nil {
		return h.bindError(c, err)
	}
	out, err := h.uc.UpsertSequence(c.UserContext(), GetTenantID(c), c.Params("type"), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}
