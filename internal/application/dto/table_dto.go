package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTableRequest body para POST /api/tables.
type CreateTableRequest struct {
	TableNo int `json:"tableNo" validate:"required,min=1"`
	Seats   int `json:"seats" validate:"omitempty,min=1,max=100"`
}

// UpdateTableRequest body para PUT /api/tables/:id. Campos ausentes no cambian.
// Status Ocupada exige OrderID.
type UpdateTableRequest struct {
	TableNo *int    `json:"tableNo" validate:"omitempty,min=1"`
	Seats   *int    `json:"seats" validate:"omitempty,min=1,max=100"`
	Status  *string `json:"status" validate:"omitempty,oneof=Disponible Ocupada"`
	OrderID *string `json:"orderId"`
}

// TableOrderSummary resumen de la orden que ocupa la mesa.
type TableOrderSummary struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customerName,omitempty"`
	OrderStatus  string          `json:"orderStatus"`
	TotalWithTax decimal.Decimal `json:"totalWithTax"`
}

// TableResponse mesa con su orden actual.
type TableResponse struct {
	ID           string             `json:"id"`
	TableNo      int                `json:"tableNo"`
	Seats        int                `json:"seats"`
	Status       string             `json:"status"`
	CurrentOrder *TableOrderSummary `json:"currentOrder"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}
