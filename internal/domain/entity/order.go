package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la orden.
const (
	OrderStatusInProgress = "En Progreso"
	OrderStatusReady      = "Listo"
	OrderStatusCompleted  = "Completado"
	OrderStatusCancelled  = "Cancelado"
)

// Canales de venta.
const (
	SourceDineIn    = "DINE_IN"
	SourceTakeout   = "TAKEOUT"
	SourcePedidosYa = "PEDIDOSYA"
	SourceUberEats  = "UBEREATS"
)

// Tipos de cantidad por línea.
const (
	QtyTypeUnit   = "unit"
	QtyTypeWeight = "weight"
)

// Order entidad central del POS.
type Order struct {
	ID                  string
	TenantID            string
	ClientID            string
	UserID              string
	Customer            CustomerDetails
	Items               []OrderItem
	Status              string
	Source              string
	PaymentMethod       string
	TableID             *string
	Bills               Bills
	Commission          Commission
	Fiscal              FiscalSnapshot
	InventoryDeducted   bool
	InventoryDeductedAt *time.Time
	InvoicePath         string
	InvoiceURL          string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsTerminal indica si la orden ya no admite cambios de estado.
func (o *Order) IsTerminal() bool {
	return IsTerminalStatus(o.Status)
}

// IsTerminalStatus Completado y Cancelado son terminales.
func IsTerminalStatus(status string) bool {
	return status == OrderStatusCompleted || status == OrderStatusCancelled
}

// IsEditableStatus estados en los que vaciar los items anula la orden. Listo no entra: queda con items [].
func IsEditableStatus(status string) bool {
	return status == OrderStatusInProgress || status == OrderStatusCancelled
}

// CustomerDetails datos del cliente de la orden.
type CustomerDetails struct {
	Name   string `json:"name,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Guests int    `json:"guests,omitempty"`
}

// OrderItem línea normalizada y con precio calculado.
type OrderItem struct {
	DishID     string          `json:"dishId,omitempty"`
	Name       string          `json:"name"`
	QtyType    string          `json:"qtyType"`
	WeightUnit string          `json:"weightUnit,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Price      decimal.Decimal `json:"price"`
}

// Bills snapshot de montos.
type Bills struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	Tax            decimal.Decimal `json:"tax"`
	TaxEnabled     bool            `json:"taxEnabled"`
	TotalBeforeTip decimal.Decimal `json:"totalBeforeTip"`
	Tip            decimal.Decimal `json:"tip"`
	TotalWithTax   decimal.Decimal `json:"totalWithTax"`
}

// Commission snapshot de la comisión del canal. Rate nil = nunca registrada (órdenes antiguas).
type Commission struct {
	Rate   *decimal.Decimal `json:"commissionRate,omitempty"`
	Amount decimal.Decimal  `json:"commissionAmount"`
	Net    decimal.Decimal  `json:"netTotal"`
}

// FiscalSnapshot datos del comprobante fiscal emitido (o solicitado) para la orden.
type FiscalSnapshot struct {
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

// Issued indica si ya hay NCF asignado.
func (f FiscalSnapshot) Issued() bool { return f.NCFNumber != "" }
