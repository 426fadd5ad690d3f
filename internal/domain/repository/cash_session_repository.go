package repository

import (
	"context"

	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
)

// CashSessionRepository define el puerto de persistencia para sesiones de caja.
type CashSessionRepository interface {
	// Get incluye los movimientos de la sesión.
	Get(ctx context.Context, tenantID, clientID, dateYMD, registerID string) (*entity.CashSession, error)
	GetForUpdate(ctx context.Context, tenantID, clientID, dateYMD, registerID string) (*entity.CashSession, error)
	Create(ctx context.Context, s *entity.CashSession) error
	Update(ctx context.Context, s *entity.CashSession) error
	AddMovement(ctx context.Context, m *entity.CashMovement) error
	// ListRange sesiones con dateYMD en [from, to]; registerID vacío = todas las cajas.
	ListRange(ctx context.Context, tenantID, clientID, from, to, registerID string) ([]*entity.CashSession, error)
}
