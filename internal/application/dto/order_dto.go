package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemInput línea tal como la envía el POS.
type OrderItemInput struct {
	DishID     string          `json:"dishId"`
	Name       string          `json:"name" validate:"required,max=200"`
	QtyType    string          `json:"qtyType" validate:"omitempty,oneof=unit weight"`
	WeightUnit string          `json:"weightUnit" validate:"omitempty,oneof=lb kg"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

// CustomerInput datos del cliente. Campos ausentes conservan el valor actual.
type CustomerInput struct {
	Name   *string `json:"name" validate:"omitempty,max=120"`
	Phone  *string `json:"phone" validate:"omitempty,max=40"`
	Guests *int    `json:"guests" validate:"omitempty,min=0,max=500"`
}

// BillsInput montos editables desde el POS. Todo lo demás se recalcula.
type BillsInput struct {
	Discount   *decimal.Decimal `json:"discount"`
	TaxEnabled *bool            `json:"taxEnabled"`
	Tax        *decimal.Decimal `json:"tax"`
	TipEnabled *bool            `json:"tipEnabled"`
	TipAmount  *decimal.Decimal `json:"tipAmount"`
	Tip        *decimal.Decimal `json:"tip"`
}

// FiscalInput solicitud de comprobante fiscal.
type FiscalInput struct {
	Requested *bool  `json:"requested"`
	NCFType   string `json:"ncfType" validate:"omitempty,len=3"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	Customer      CustomerInput    `json:"customerDetails"`
	OrderStatus   string           `json:"orderStatus"`
	Items         []OrderItemInput `json:"items" validate:"dive"`
	Table         string           `json:"table"`
	PaymentMethod string           `json:"paymentMethod" validate:"omitempty,max=40"`
	Discount      decimal.Decimal  `json:"discount"`
	OrderSource   string           `json:"orderSource"`
	Bills         BillsInput       `json:"bills"`
}

// UpdateOrderRequest body para PUT/PATCH /api/orders/:id.
// Items nil = sin cambios; Items apuntando a [] = vaciar la orden.
// Table apuntando a "" desasigna la mesa.
type UpdateOrderRequest struct {
	Customer      *CustomerInput    `json:"customerDetails"`
	OrderStatus   *string           `json:"orderStatus"`
	Items         *[]OrderItemInput `json:"items" validate:"omitempty,dive"`
	Table         *string           `json:"table"`
	PaymentMethod *string           `json:"paymentMethod" validate:"omitempty,max=40"`
	OrderSource   *string           `json:"orderSource"`
	Bills         *BillsInput       `json:"bills"`
	Fiscal        *FiscalInput      `json:"fiscal"`
}

// OrderItemResponse línea con precio calculado.
type OrderItemResponse struct {
	DishID     string          `json:"dishId,omitempty"`
	Name       string          `json:"name"`
	QtyType    string          `json:"qtyType"`
	WeightUnit string          `json:"weightUnit,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Price      decimal.Decimal `json:"price"`
}

// BillsResponse snapshot de montos. Total y TipAmount se mantienen por compatibilidad con el POS.
type BillsResponse struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Total          decimal.Decimal `json:"total"`
	Discount       decimal.Decimal `json:"discount"`
	Tax            decimal.Decimal `json:"tax"`
	TaxEnabled     bool            `json:"taxEnabled"`
	TotalBeforeTip decimal.Decimal `json:"totalBeforeTip"`
	Tip            decimal.Decimal `json:"tip"`
	TipAmount      decimal.Decimal `json:"tipAmount"`
	TotalWithTax   decimal.Decimal `json:"totalWithTax"`
}

// FiscalResponse comprobante fiscal de la orden.
type FiscalResponse struct {
	Requested      bool       `json:"requested"`
	NCFType        string     `json:"ncfType,omitempty"`
	NCFNumber      string     `json:"ncfNumber,omitempty"`
	IssuedAt       *time.Time `json:"issuedAt,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	InternalSeq    int64      `json:"internalSeq,omitempty"`
	InternalNumber string     `json:"internalNumber,omitempty"`
	EmissionPoint  string     `json:"emissionPoint,omitempty"`
	BranchName     string     `json:"branchName,omitempty"`
	PrintedAt      *time.Time `json:"printedAt,omitempty"`
}

// CustomerResponse datos del cliente.
type CustomerResponse struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Guests int    `json:"guests"`
}

// OrderResponse orden en respuestas.
type OrderResponse struct {
	ID                string              `json:"id"`
	Customer          CustomerResponse    `json:"customerDetails"`
	Items             []OrderItemResponse `json:"items"`
	OrderStatus       string              `json:"orderStatus"`
	OrderSource       string              `json:"orderSource"`
	PaymentMethod     string              `json:"paymentMethod"`
	TableID           *string             `json:"table,omitempty"`
	UserID            string              `json:"user,omitempty"`
	Bills             BillsResponse       `json:"bills"`
	CommissionRate    *decimal.Decimal    `json:"commissionRate,omitempty"`
	CommissionAmount  decimal.Decimal     `json:"commissionAmount"`
	NetTotal          decimal.Decimal     `json:"netTotal"`
	Fiscal            FiscalResponse      `json:"fiscal"`
	NCFNumber         string              `json:"ncfNumber,omitempty"`
	InventoryDeducted bool                `json:"inventoryDeducted"`
	InvoiceURL        string              `json:"invoiceUrl,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// UpdateOrderResponse resultado de una actualización. AutoDeleted indica que la orden se borró
// porque se vaciaron sus items.
type UpdateOrderResponse struct {
	AutoDeleted bool           `json:"autoDeleted,omitempty"`
	Order       *OrderResponse `json:"data,omitempty"`
}

// InvoiceURLResponse enlace temporal a la factura.
type InvoiceURLResponse struct {
	OrderID    string `json:"orderId"`
	InvoiceURL string `json:"invoiceUrl"`
}
