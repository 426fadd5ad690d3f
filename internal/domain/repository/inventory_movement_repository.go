package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MovementFilter filtros del libro de inventario.
type MovementFilter struct {
	ItemID string
	Type   string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// InventoryItemRepository define el puerto de persistencia para insumos.
type InventoryItemRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila del insumo (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.InventoryItem, error)
	List(ctx context.Context, tenantID, clientID string, includeArchived bool) ([]*entity.InventoryItem, error)
	ListLowStock(ctx context.Context, tenantID, clientID string) ([]*entity.InventoryItem, error)
	Update(ctx context.Context, item *entity.InventoryItem) error
	UpdateStock(ctx context.Context, tenantID, id string, stock, cost decimal.Decimal) error
}

// InventoryMovementRepository libro de movimientos (solo inserción).
type InventoryMovementRepository interface {
	Create(ctx context.Context, m *entity.InventoryMovement) error
	List(ctx context.Context, tenantID, clientID string, f MovementFilter) ([]*entity.InventoryMovement, error)
	// SumByType suma cantidades (valor absoluto) y costos de un tipo en el rango [from, to).
	SumByType(ctx context.Context, tenantID, clientID, movType string, from, to time.Time) (qty, cost decimal.Decimal, err error)
}
