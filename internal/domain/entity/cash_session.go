package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la sesión de caja.
const (
	CashSessionOpen   = "OPEN"
	CashSessionClosed = "CLOSED"
)

// Tipos de movimiento de caja.
const (
	CashMovementOpen   = "OPEN"
	CashMovementAdd    = "ADD"
	CashMovementAdjust = "ADJUST"
	CashMovementClose  = "CLOSE"
)

// DefaultRegisterID caja por defecto cuando el cliente no indica una.
const DefaultRegisterID = "default"

// CashSession sesión de caja por día y caja registradora.
type CashSession struct {
	ID              string
	TenantID        string
	ClientID        string
	DateYMD         string
	RegisterID      string
	Status          string
	OpeningFloat    decimal.Decimal
	AddedFloatTotal decimal.Decimal
	DeclaredAmount  *decimal.Decimal
	OpenedBy        string
	OpenedAt        time.Time
	ClosedBy        string
	ClosedAt        *time.Time
	UpdatedAt       time.Time
	Movements       []CashMovement
}

// MenudoTotal fondo de caja total (apertura + agregados).
func (s *CashSession) MenudoTotal() decimal.Decimal {
	return s.OpeningFloat.Add(s.AddedFloatTotal)
}

// CashMovement fila inmutable del libro de caja.
type CashMovement struct {
	ID        string
	SessionID string
	Type      string
	Amount    decimal.Decimal
	Note      string
	CreatedBy string
	CreatedAt time.Time
}
