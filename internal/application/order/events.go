package order

import "context"

// Eventos emitidos a la sala del tenant.
const (
	EventOrderUpdated  = "tenant:orderUpdated"
	EventTablesUpdated = "tenant:tablesUpdated"
)

// OrderUpdatedEvent payload de tenant:orderUpdated.
type OrderUpdatedEvent struct {
	TenantID    string `json:"tenantId"`
	OrderID     string `json:"orderId"`
	OrderStatus string `json:"orderStatus"`
	Deleted     bool   `json:"deleted,omitempty"`
}

// TablesUpdatedEvent payload de tenant:tablesUpdated.
type TablesUpdatedEvent struct {
	TenantID    string  `json:"tenantId"`
	OrderID     string  `json:"orderId"`
	TableID     *string `json:"tableId"`
	OrderStatus string  `json:"orderStatus"`
}

// TenantRoom sala de eventos del tenant.
func TenantRoom(tenantID string) string { return "tenant:" + tenantID }

// notify emite ambos eventos después del commit. Sin notifier no hace nada.
func (uc *UseCase) notify(ctx context.Context, tenantID, orderID, status string, tableID *string, deleted bool) {
	if uc.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	room := TenantRoom(tenantID)
	uc.notifier.Emit(ctx, room, EventOrderUpdated, OrderUpdatedEvent{
		TenantID: tenantID, OrderID: orderID, OrderStatus: status, Deleted: deleted,
	})
	uc.notifier.Emit(ctx, room, EventTablesUpdated, TablesUpdatedEvent{
		TenantID: tenantID, OrderID: orderID, TableID: tableID, OrderStatus: status,
	})
}
