package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashSessionQuery identifica la sesión: día (YYYY-MM-DD, hoy si falta) y caja.
type CashSessionQuery struct {
	DateYMD    string `query:"dateYMD" json:"dateYMD"`
	RegisterID string `query:"registerId" json:"registerId"`
}

// OpenCashSessionRequest body para POST /api/cash-session/open.
type OpenCashSessionRequest struct {
	CashSessionQuery
	OpeningFloat decimal.Decimal `json:"openingFloat"`
}

// AddCashRequest body para POST /api/cash-session/add.
type AddCashRequest struct {
	CashSessionQuery
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note" validate:"omitempty,max=200"`
}

// AdjustCashRequest body para PATCH /api/cash-session/adjust.
type AdjustCashRequest struct {
	CashSessionQuery
	OpeningFloat decimal.Decimal `json:"openingFloat"`
	Note         string          `json:"note" validate:"omitempty,max=200"`
}

// CloseCashRequest body para POST /api/cash-session/close.
type CloseCashRequest struct {
	CashSessionQuery
	DeclaredAmount decimal.Decimal `json:"declaredAmount"`
	Note           string          `json:"note" validate:"omitempty,max=200"`
}

// CashRangeQuery query de GET /api/cash-session/range.
type CashRangeQuery struct {
	From       string `query:"from"`
	To         string `query:"to"`
	RegisterID string `query:"registerId"`
}

// CashMovementResponse fila del libro de caja.
type CashMovementResponse struct {
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	By        string          `json:"by"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CashSessionResponse sesión de caja con sus movimientos.
type CashSessionResponse struct {
	ID              string                 `json:"id"`
	DateYMD         string                 `json:"dateYMD"`
	RegisterID      string                 `json:"registerId"`
	Status          string                 `json:"status"`
	OpeningFloat    decimal.Decimal        `json:"openingFloatInitial"`
	AddedFloatTotal decimal.Decimal        `json:"addedFloatTotal"`
	MenudoTotal     decimal.Decimal        `json:"menudoTotal"`
	DeclaredAmount  *decimal.Decimal       `json:"declaredAmount,omitempty"`
	OpenedBy        string                 `json:"openedBy"`
	OpenedAt        time.Time              `json:"openedAt"`
	ClosedBy        string                 `json:"closedBy,omitempty"`
	ClosedAt        *time.Time             `json:"closedAt,omitempty"`
	Movements       []CashMovementResponse `json:"movements"`
}

// CashRangeResponse totales de fondo de caja en un rango de días.
type CashRangeResponse struct {
	From         string                 `json:"from"`
	To           string                 `json:"to"`
	RegisterID   string                 `json:"registerId"`
	OpeningTotal decimal.Decimal        `json:"openingTotal"`
	AddedTotal   decimal.Decimal        `json:"addedTotal"`
	MenudoTotal  decimal.Decimal        `json:"menudoTotal"`
	Sessions     []*CashSessionResponse `json:"sessions"`
}
