package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Planes comerciales del tenant.
const (
	PlanBasic      = "basic"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Estados del tenant.
const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

// PlanLimits topes por plan. Nil = ilimitado.
type PlanLimits struct {
	MaxTables *int
	MaxDishes *int
	MaxUsers  *int
}

// LimitsForPlan devuelve los topes del plan; un plan desconocido se trata como basic.
func LimitsForPlan(plan string) PlanLimits {
	intPtr := func(n int) *int { return &n }
	switch plan {
	case PlanEnterprise:
		return PlanLimits{MaxUsers: intPtr(26)}
	case PlanPro:
		return PlanLimits{MaxTables: intPtr(25), MaxDishes: intPtr(28), MaxUsers: intPtr(10)}
	default:
		return PlanLimits{MaxTables: intPtr(8), MaxDishes: intPtr(15), MaxUsers: intPtr(3)}
	}
}

// Tenant negocio independiente que comparte el despliegue.
type Tenant struct {
	ID                string
	Name              string
	Plan              string
	Status            string
	Business          BusinessInfo
	Features          TenantFeatures
	FiscalEnabled     bool
	FiscalAllowReq    bool   // los usuarios pueden pedir comprobante fiscal desde la orden
	FiscalDefaultType string // B02 por defecto
	EmissionPoint     string
	BranchName        string
	NextInvoiceNumber int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsActive indica si el tenant puede operar.
func (t *Tenant) IsActive() bool {
	return t != nil && t.Status == TenantStatusActive
}

// BusinessInfo datos impresos en la factura.
type BusinessInfo struct {
	Name    string `json:"name,omitempty"`
	RNC     string `json:"rnc,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// TenantFeatures flags del tenant tal como se guardan (JSONB). Los punteros distinguen "ausente" de "false".
type TenantFeatures struct {
	Tax          TaxFeature          `json:"tax"`
	Discount     ToggleFeature       `json:"discount"`
	Tip          ToggleFeature       `json:"tip"`
	OrderSources OrderSourceFeatures `json:"orderSources"`
}

// TaxFeature configuración de ITBIS.
type TaxFeature struct {
	Enabled     *bool            `json:"enabled,omitempty"`
	AllowToggle *bool            `json:"allowToggle,omitempty"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
}

// ToggleFeature flag simple.
type ToggleFeature struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// OrderSourceFeatures canales de venta configurables.
type OrderSourceFeatures struct {
	PedidosYa ChannelFeature  `json:"pedidosYa"`
	UberEats  ChannelFeature  `json:"uberEats"`
	Delivery  DeliveryFeature `json:"delivery"`
}

// ChannelFeature plataforma de delivery con comisión.
type ChannelFeature struct {
	Enabled        *bool            `json:"enabled,omitempty"`
	CommissionRate *decimal.Decimal `json:"commissionRate,omitempty"`
}

// DeliveryFeature delivery propio.
type DeliveryFeature struct {
	Enabled    *bool            `json:"enabled,omitempty"`
	DefaultFee *decimal.Decimal `json:"defaultFee,omitempty"`
}

// FiscalSequence rango de NCF por tipo de comprobante.
// Current es el próximo valor a entregar; Max = 0 significa sin configurar.
type FiscalSequence struct {
	TenantID  string
	DocType   string
	Start     int64
	Current   int64
	Max       int64
	Active    bool
	ExpiresAt *time.Time
	UpdatedAt time.Time
}

// Remaining números disponibles en el rango.
func (s *FiscalSequence) Remaining() int64 {
	if s == nil || s.Max <= 0 || s.Current > s.Max {
		return 0
	}
	return s.Max - s.Current + 1
}
