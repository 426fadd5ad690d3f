package http

import (
	"bufio"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/application/order"
	"github.com/jhoicas/pos-restaurante-api/internal/infrastructure/realtime"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

const defaultHeartbeat = 25 * time.Second

// RealtimeHandler stream SSE de la sala del tenant.
type RealtimeHandler struct {
	hub       *realtime.Hub
	heartbeat time.Duration
	log       *logger.Logger
}

// NewRealtimeHandler construye el handler. heartbeat <= 0 usa 25s.
func NewRealtimeHandler(hub *realtime.Hub, heartbeat time.Duration, log *logger.Logger) *RealtimeHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &RealtimeHandler{hub: hub, heartbeat: heartbeat, log: log.Component("sse")}
}

// Stream godoc
// @Summary      Eventos en vivo del restaurante (SSE)
// @Description  Emite tenant:orderUpdated y tenant:tablesUpdated. Acepta ?token= para EventSource.
// @Tags         realtime
// @Security     Bearer
// @Produce      text/event-stream
// @Router       /api/realtime/stream [get]
func (h *RealtimeHandler) Stream(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	sub, err := h.hub.Subscribe(order.TenantRoom(tenantID))
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "TOO_MANY_CLIENTS", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	log := h.log
	hub := h.hub
	heartbeat := h.heartbeat
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer hub.Unsubscribe(sub)
		log.Debug().Str("tenant_id", tenantID).Int("clients", hub.Clients()).Msg("cliente conectado")

		fmt.Fprintf(w, "event: ready\ndata: {\"room\":%q}\n\n", order.TenantRoom(tenantID))
		if err := w.Flush(); err != nil {
			return
		}
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		for {
			select {
			case m, ok := <-sub.C:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", m.Event, m.Data)
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			// el cliente se desconectó
			if err := w.Flush(); err != nil {
				log.Debug().Str("tenant_id", tenantID).Msg("cliente desconectado")
				return
			}
		}
	})
	return nil
}
