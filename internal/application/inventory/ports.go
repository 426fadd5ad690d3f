package inventory

import (
	"context"

	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
)

// TxRunner abre una transacción y entrega los repositorios de inventario y órdenes atados a ella.
// Un error de fn hace rollback de todo: movimientos, stock y el flag de la orden.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		itemRepo repository.InventoryItemRepository,
		orderRepo repository.OrderRepository,
	) error) error
}
