package order

import (
	"context"
	"time"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/application/fiscal"
	"github.com/jhoicas/pos-restaurante-api/internal/application/invoice"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
)

// TxRunner persiste la orden y sus efectos sobre mesas en una sola transacción.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		orders repository.OrderRepository,
		tables repository.TableRepository,
	) error) error
}

// FiscalAllocator contadores fiscales atómicos del tenant.
type FiscalAllocator interface {
	AllocateNCF(ctx context.Context, tenantID, docType string) (fiscal.NCF, error)
	AllocateInternal(ctx context.Context, tenantID string) (fiscal.InternalNumber, error)
	Expiration(ctx context.Context, tenantID, docType string) (*time.Time, error)
}

// InventoryReconciler descuenta el inventario de una orden completada, una sola vez.
type InventoryReconciler interface {
	DeductForOrder(ctx context.Context, tenantID, orderID, userID string) (*dto.DeductionResponse, error)
}

// InvoiceGenerator genera, guarda y firma el PDF de la factura.
type InvoiceGenerator interface {
	Generate(ctx context.Context, tenantID, orderID string) (*invoice.Artifact, error)
	Render(ctx context.Context, tenantID, orderID string) ([]byte, error)
	PresignURL(ctx context.Context, path string) (string, error)
}

// Notifier eventos en tiempo real por sala. Nunca falla la petición.
type Notifier interface {
	Emit(ctx context.Context, room, event string, payload any)
}

// Actor quien ejecuta la operación, tal como viene del token.
type Actor struct {
	TenantID string
	ClientID string
	UserID   string
	Role     string
}
