package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dgii"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

// DgiiHandler consultas al padrón de contribuyentes.
type DgiiHandler struct {
	base
	uc *dgii.UseCase
}

// NewDgiiHandler construye el handler.
func NewDgiiHandler(uc *dgii.UseCase, log *logger.Logger) *DgiiHandler {
	return &DgiiHandler{base: base{log: log.Component("dgii_http")}, uc: uc}
}

// Lookup GET /api/dgii/rnc/:rnc
func (h *DgiiHandler) Lookup(c *fiber.Ctx) error {
	out, err := h.uc.Lookup(c.UserContext(), c.Params("rnc"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Autocomplete GET /api/dgii/autocomplete?q=&limit=
func (h *DgiiHandler) Autocomplete(c *fiber.Ctx) error {
	list, err := h.uc.Autocomplete(c.UserContext(), c.Query("q"), c.QueryInt("limit", 0))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}
