package repository

import (
	"context"

	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
)

// TableRepository define el puerto de persistencia para mesas.
// Ocupar y liberar son escrituras condicionales sobre el ocupante esperado.
type TableRepository interface {
	Create(ctx context.Context, t *entity.Table) error
	GetByID(ctx context.Context, tenantID, clientID, id string) (*entity.Table, error)
	List(ctx context.Context, tenantID, clientID string) ([]*entity.Table, error)
	CountByTenant(ctx context.Context, tenantID string) (int, error)
	Update(ctx context.Context, t *entity.Table) error
	// Delete solo borra mesas libres. false = no existe o está ocupada.
	Delete(ctx context.Context, tenantID, clientID, id string) (bool, error)
	// Occupy marca la mesa si está libre o ya es de esta orden.
	Occupy(ctx context.Context, tenantID, clientID, tableID, orderID string) (bool, error)
	// Release libera la mesa solo si la ocupa esta orden.
	Release(ctx context.Context, tenantID, clientID, tableID, orderID string) (bool, error)
	// ForceRelease liberación administrativa sin importar el ocupante.
	ForceRelease(ctx context.Context, tenantID, clientID, tableID string) (bool, error)
}
