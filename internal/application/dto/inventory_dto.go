package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInventoryItemRequest body para POST /api/inventory/items.
type CreateInventoryItemRequest struct {
	Name         string          `json:"name" validate:"required,max=200"`
	Unit         string          `json:"unit" validate:"omitempty,max=30"`
	Cost         decimal.Decimal `json:"cost"`
	StockCurrent decimal.Decimal `json:"stockCurrent"`
	StockMin     decimal.Decimal `json:"stockMin"`
}

// UpdateInventoryItemRequest body para PUT /api/inventory/items/:id. Campos ausentes no cambian.
type UpdateInventoryItemRequest struct {
	Name     *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Unit     *string          `json:"unit" validate:"omitempty,max=30"`
	StockMin *decimal.Decimal `json:"stockMin"`
	Archived *bool            `json:"isArchived"`
}

// InventoryItemResponse insumo en respuestas.
type InventoryItemResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Cost         decimal.Decimal `json:"cost"`
	StockCurrent decimal.Decimal `json:"stockCurrent"`
	StockMin     decimal.Decimal `json:"stockMin"`
	Low          bool            `json:"isLow"`
	Archived     bool            `json:"isArchived"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// RegisterMovementRequest body para POST /api/inventory/movements (purchase | adjustment).
// purchase: qty > 0 y unitCost obligatorio. adjustment: qty con signo.
type RegisterMovementRequest struct {
	ItemID   string           `json:"itemId" validate:"required,uuid"`
	Type     string           `json:"type" validate:"required,oneof=purchase adjustment"`
	Qty      decimal.Decimal  `json:"qty"`
	UnitCost *decimal.Decimal `json:"unitCost,omitempty"`
	Note     string           `json:"note" validate:"max=500"`
}

// WasteRequest body para POST /api/inventory/waste.
type WasteRequest struct {
	ItemID     string           `json:"itemId" validate:"required,uuid"`
	Qty        decimal.Decimal  `json:"qty"`
	UnitCost   *decimal.Decimal `json:"unitCost,omitempty"`
	CostAmount *decimal.Decimal `json:"costAmount,omitempty"`
	Note       string           `json:"note" validate:"max=500"`
}

// MovementResponse fila del libro de inventario.
type MovementResponse struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"itemId"`
	OrderID     *string         `json:"orderId,omitempty"`
	Type        string          `json:"type"`
	Qty         decimal.Decimal `json:"qty"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	CostAmount  decimal.Decimal `json:"costAmount"`
	StockBefore decimal.Decimal `json:"beforeStock"`
	StockAfter  decimal.Decimal `json:"afterStock"`
	Note        string          `json:"note,omitempty"`
	CreatedBy   string          `json:"createdBy,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// WasteSummaryResponse total de merma del periodo.
type WasteSummaryResponse struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	MermaQty  decimal.Decimal `json:"mermaQty"`
	MermaCost decimal.Decimal `json:"mermaCost"`
}

// LowStockSuggestionDTO insumo bajo su mínimo con la cantidad sugerida a reponer.
type LowStockSuggestionDTO struct {
	ItemID             string          `json:"itemId"`
	Name               string          `json:"name"`
	Unit               string          `json:"unit"`
	CurrentStock       decimal.Decimal `json:"stockCurrent"`
	StockMin           decimal.Decimal `json:"stockMin"`
	IdealStock         decimal.Decimal `json:"idealStock"`         // StockMin * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggestedOrderQty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unitCost"`           // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimatedOrderCost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`           // 1 = más urgente
}

// DeductionResponse resultado del descuento de inventario de una orden.
type DeductionResponse struct {
	OrderID         string   `json:"orderId"`
	AlreadyDeducted bool     `json:"alreadyDeducted"`
	Deducted        bool     `json:"deducted"`
	Movements       int      `json:"movements"`
	Unmatched       []string `json:"unmatched,omitempty"`
}
