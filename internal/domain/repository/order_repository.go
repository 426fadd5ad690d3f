package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
)

// OrderFilter filtros del listado de órdenes.
type OrderFilter struct {
	Status string
	Limit  int
	Offset int
}

// OrderRepository define el puerto de persistencia para Order.
// Todas las lecturas y escrituras van acotadas por tenant (y client cuando aplica).
type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	// GetByID clientID vacío = cualquier sucursal del tenant.
	GetByID(ctx context.Context, tenantID, clientID, id string) (*entity.Order, error)
	// GetForUpdate bloquea la fila de la orden (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Order, error)
	// List más recientes primero.
	List(ctx context.Context, tenantID, clientID string, f OrderFilter) ([]*entity.Order, error)
	// Update sobrescribe los campos editables. No toca ncf_number ni el flag de inventario.
	Update(ctx context.Context, o *entity.Order) error
	// StampFiscal fija el NCF solo si la orden aún no tiene uno. false = otra petición lo fijó antes.
	StampFiscal(ctx context.Context, tenantID, orderID string, f entity.FiscalSnapshot) (bool, error)
	// ClearFiscal vacía el snapshot fiscal. ncf_number se conserva como registro del número usado.
	ClearFiscal(ctx context.Context, tenantID, orderID string) error
	// MarkInventoryDeducted solo si todavía no estaba descontada.
	MarkInventoryDeducted(ctx context.Context, tenantID, orderID string, at time.Time) (bool, error)
	SetInvoice(ctx context.Context, tenantID, orderID, path, url string, printedAt time.Time) error
	Delete(ctx context.Context, tenantID, clientID, id string) (bool, error)
}
