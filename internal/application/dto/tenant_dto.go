package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
)

// BusinessInput datos del negocio impresos en la factura.
type BusinessInput struct {
	Name    string `json:"name" validate:"omitempty,max=200"`
	RNC     string `json:"rnc" validate:"omitempty,numeric,min=9,max=11"`
	Address string `json:"address" validate:"omitempty,max=300"`
	Phone   string `json:"phone" validate:"omitempty,max=40"`
}

// OnboardTenantRequest alta de un negocio con su usuario dueño.
type OnboardTenantRequest struct {
	Name          string        `json:"name" validate:"required,max=200"`
	Plan          string        `json:"plan" validate:"omitempty,oneof=basic pro enterprise"`
	Business      BusinessInput `json:"business"`
	OwnerName     string        `json:"ownerName" validate:"omitempty,max=200"`
	OwnerEmail    string        `json:"ownerEmail" validate:"required,email"`
	OwnerPassword string        `json:"ownerPassword" validate:"required,min=8"`
}

// OnboardTenantResponse tenant creado y sesión del dueño.
type OnboardTenantResponse struct {
	Tenant TenantResponse `json:"tenant"`
	Token  string         `json:"token"`
	User   UserResponse   `json:"user"`
}

// UpdateFeaturesRequest flags del tenant. Reemplaza el bloque completo.
type UpdateFeaturesRequest struct {
	Features entity.TenantFeatures `json:"features"`
}

// UpdateFiscalRequest configuración fiscal y datos del negocio. Campos ausentes no cambian.
type UpdateFiscalRequest struct {
	Enabled       *bool          `json:"enabled"`
	AllowRequest  *bool          `json:"allowRequest"`
	DefaultType   *string        `json:"defaultType" validate:"omitempty,len=3"`
	EmissionPoint *string        `json:"emissionPoint" validate:"omitempty,max=10"`
	BranchName    *string        `json:"branchName" validate:"omitempty,max=80"`
	Business      *BusinessInput `json:"business"`
}

// UpsertSequenceRequest rango autorizado de NCF para un tipo.
type UpsertSequenceRequest struct {
	Start     *int64     `json:"start" validate:"omitempty,min=1"`
	Current   *int64     `json:"current" validate:"omitempty,min=1"`
	Max       *int64     `json:"max" validate:"omitempty,min=0"`
	Active    *bool      `json:"active"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// FiscalSequenceResponse rango de NCF con lo que queda disponible.
type FiscalSequenceResponse struct {
	DocType   string     `json:"docType"`
	Start     int64      `json:"start"`
	Current   int64      `json:"current"`
	Max       int64      `json:"max"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Remaining int64      `json:"remaining"`
}

// FiscalSettingsResponse bloque fiscal del tenant.
type FiscalSettingsResponse struct {
	Enabled           bool                     `json:"enabled"`
	AllowRequest      bool                     `json:"allowRequest"`
	DefaultType       string                   `json:"defaultType"`
	EmissionPoint     string                   `json:"emissionPoint"`
	BranchName        string                   `json:"branchName"`
	NextInvoiceNumber int64                    `json:"nextInvoiceNumber"`
	Sequences         []FiscalSequenceResponse `json:"sequences"`
}

// PlanLimitsResponse topes del plan; null = ilimitado.
type PlanLimitsResponse struct {
	MaxTables *int `json:"maxTables"`
	MaxDishes *int `json:"maxDishes"`
	MaxUsers  *int `json:"maxUsers"`
}

// ResolvedSettingsResponse configuración efectiva con defaults aplicados.
type ResolvedSettingsResponse struct {
	TaxEnabled        bool            `json:"taxEnabled"`
	TaxAllowToggle    bool            `json:"taxAllowToggle"`
	TaxRate           decimal.Decimal `json:"taxRate"`
	DiscountEnabled   bool            `json:"discountEnabled"`
	TipEnabled        bool            `json:"tipEnabled"`
	PedidosYaEnabled  bool            `json:"pedidosYaEnabled"`
	PedidosYaRate     decimal.Decimal `json:"pedidosYaRate"`
	UberEatsEnabled   bool            `json:"uberEatsEnabled"`
	UberEatsRate      decimal.Decimal `json:"uberEatsRate"`
	DefaultPayment    string          `json:"defaultPaymentMethod"`
	FiscalRequestable bool            `json:"fiscalRequestable"`
}

// TenantResponse negocio con flags, configuración fiscal y límites.
type TenantResponse struct {
	ID        string                   `json:"tenantId"`
	Name      string                   `json:"name"`
	Plan      string                   `json:"plan"`
	Status    string                   `json:"status"`
	Business  entity.BusinessInfo      `json:"business"`
	Features  entity.TenantFeatures    `json:"features"`
	Settings  ResolvedSettingsResponse `json:"settings"`
	Fiscal    FiscalSettingsResponse   `json:"fiscal"`
	Limits    PlanLimitsResponse       `json:"limits"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// RncResponse contribuyente del registro de la DGII.
type RncResponse struct {
	RNC              string `json:"rnc"`
	Name             string `json:"name"`
	Category         string `json:"category,omitempty"`
	Regime           string `json:"regime,omitempty"`
	Status           string `json:"status,omitempty"`
	EconomicActivity string `json:"economicActivity,omitempty"`
	Province         string `json:"province,omitempty"`
	Municipality     string `json:"municipality,omitempty"`
}
