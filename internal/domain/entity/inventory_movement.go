package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypePurchase   = "purchase"   // compra / entrada
	MovementTypeAdjustment = "adjustment" // ajuste manual
	MovementTypeWaste      = "waste"      // merma
	MovementTypeSale       = "sale"       // consumo por venta
	MovementTypeConversion = "conversion"
)

// InventoryItem insumo con stock.
type InventoryItem struct {
	ID           string
	TenantID     string
	ClientID     string
	Name         string
	Unit         string
	Cost         decimal.Decimal // costo promedio ponderado
	StockCurrent decimal.Decimal
	StockMin     decimal.Decimal
	Archived     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLow indica si el stock está en o bajo el mínimo.
func (i *InventoryItem) IsLow() bool {
	return i.StockMin.GreaterThan(decimal.Zero) && i.StockCurrent.LessThanOrEqual(i.StockMin)
}

// InventoryMovement fila inmutable del libro de inventario.
type InventoryMovement struct {
	ID          string
	TenantID    string
	ClientID    string
	ItemID      string
	OrderID     *string
	Type        string
	Qty         decimal.Decimal // positivo entra, negativo sale
	UnitCost    decimal.Decimal
	CostAmount  decimal.Decimal
	StockBefore decimal.Decimal
	StockAfter  decimal.Decimal
	Note        string
	CreatedBy   string
	CreatedAt   time.Time
}
