package entity

import "time"

// Estados de mesa.
const (
	TableStatusAvailable = "Disponible"
	TableStatusOccupied  = "Ocupada"
)

// Table mesa física o virtual. CurrentOrderID es una referencia débil; la orden manda.
type Table struct {
	ID             string
	TenantID       string
	ClientID       string
	TableNo        int
	Seats          int
	Status         string
	CurrentOrderID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsOccupied indica si la mesa tiene una orden asignada.
func (t *Table) IsOccupied() bool {
	return t.Status == TableStatusOccupied || (t.CurrentOrderID != nil && *t.CurrentOrderID != "")
}
