package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecipeLineInput insumo por unidad vendida.
type RecipeLineInput struct {
	InventoryItemID string          `json:"inventoryItemId" validate:"required,uuid"`
	Qty             decimal.Decimal `json:"qty"`
	Unit            string          `json:"unit" validate:"omitempty,max=16"`
}

// CreateDishRequest body para POST /api/dishes.
type CreateDishRequest struct {
	Name       string            `json:"name" validate:"required,max=200"`
	Category   string            `json:"category" validate:"required,max=80"`
	Price      decimal.Decimal   `json:"price"`
	SellMode   string            `json:"sellMode" validate:"omitempty,oneof=unit weight"`
	WeightUnit string            `json:"weightUnit" validate:"omitempty,oneof=lb kg"`
	PricePerLb decimal.Decimal   `json:"pricePerLb"`
	Recipe     []RecipeLineInput `json:"recipe" validate:"omitempty,dive"`
}

// UpdateDishRequest body para PUT /api/dishes/:id. Recipe apuntando a [] borra la receta.
type UpdateDishRequest struct {
	Name       *string            `json:"name" validate:"omitempty,min=1,max=200"`
	Category   *string            `json:"category" validate:"omitempty,min=1,max=80"`
	Price      *decimal.Decimal   `json:"price"`
	SellMode   *string            `json:"sellMode" validate:"omitempty,oneof=unit weight"`
	WeightUnit *string            `json:"weightUnit" validate:"omitempty,oneof=lb kg"`
	PricePerLb *decimal.Decimal   `json:"pricePerLb"`
	Recipe     *[]RecipeLineInput `json:"recipe" validate:"omitempty,dive"`
}

// RecipeLineResponse línea de receta.
type RecipeLineResponse struct {
	InventoryItemID string          `json:"inventoryItemId"`
	Qty             decimal.Decimal `json:"qty"`
	Unit            string          `json:"unit,omitempty"`
}

// DishResponse plato del menú.
type DishResponse struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Category   string               `json:"category"`
	Price      decimal.Decimal      `json:"price"`
	SellMode   string               `json:"sellMode"`
	WeightUnit string               `json:"weightUnit,omitempty"`
	PricePerLb decimal.Decimal      `json:"pricePerLb"`
	Recipe     []RecipeLineResponse `json:"recipe"`
	Archived   bool                 `json:"archived"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}
