package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dish plato del menú.
type Dish struct {
	ID         string
	TenantID   string
	ClientID   string
	Name       string
	Category   string
	Price      decimal.Decimal
	SellMode   string // unit | weight
	WeightUnit string // lb | kg
	PricePerLb decimal.Decimal
	Recipe     []RecipeLine
	Archived   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RecipeLine insumo consumido por unidad vendida.
type RecipeLine struct {
	InventoryItemID string          `json:"inventoryItemId"`
	Qty             decimal.Decimal `json:"qty"`
	Unit            string          `json:"unit,omitempty"`
}

// HasRecipe indica si el plato tiene receta utilizable.
func (d *Dish) HasRecipe() bool {
	if d == nil {
		return false
	}
	for _, r := range d.Recipe {
		if r.InventoryItemID != "" && r.Qty.GreaterThan(decimal.Zero) {
			return true
		}
	}
	return false
}
