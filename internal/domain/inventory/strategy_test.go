package inventory

import (
	"testing"

	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "cafe con leche", NormalizeName("  Café  Con LECHE "))
	assert.Equal(t, "pina colada", NormalizeName("Piña Colada"))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestChooseStrategy(t *testing.T) {
	item := entity.OrderItem{Name: "Mofongo"}
	withRecipe := &entity.Dish{Recipe: []entity.RecipeLine{{InventoryItemID: "plátano", Qty: decimal.NewFromInt(2)}}}
	emptyRecipe := &entity.Dish{Recipe: []entity.RecipeLine{{InventoryItemID: "x", Qty: decimal.Zero}}}

	assert.Equal(t, StrategyRecipe, ChooseStrategy(item, withRecipe))
	assert.Equal(t, StrategyNameMatch, ChooseStrategy(item, emptyRecipe), "receta sin cantidades no cuenta")
	assert.Equal(t, StrategyNameMatch, ChooseStrategy(item, nil))
	assert.Equal(t, StrategyNone, ChooseStrategy(entity.OrderItem{Name: " "}, nil))
}

func TestRecipeDeductions_AcumulaInsumos(t *testing.T) {
	dish := &entity.Dish{Recipe: []entity.RecipeLine{
		{InventoryItemID: "queso", Qty: decimal.RequireFromString("0.25")},
		{InventoryItemID: "pan", Qty: decimal.NewFromInt(1)},
		{InventoryItemID: "queso", Qty: decimal.RequireFromString("0.5")},
	}}
	got := RecipeDeductions(dish, decimal.NewFromInt(2))
	require.Len(t, got, 2)
	assert.Equal(t, "queso", got[0].ItemID)
	assert.True(t, got[0].Qty.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, got[1].Qty.Equal(decimal.NewFromInt(2)))
}

func TestMatchByName(t *testing.T) {
	items := []*entity.InventoryItem{
		{ID: "1", Name: "Cerveza Presidente", Archived: true},
		{ID: "2", Name: "Jugo de Limón"},
	}
	got := MatchByName("jugo de limon", items)
	require.NotNil(t, got)
	assert.Equal(t, "2", got.ID)
	assert.Nil(t, MatchByName("cerveza presidente", items), "los archivados no cuentan")
}

func TestCostCalculator(t *testing.T) {
	c := CostCalculator(decimal.NewFromInt(10), decimal.NewFromInt(5), decimal.NewFromInt(10), decimal.NewFromInt(7))
	assert.True(t, c.Equal(decimal.NewFromInt(6)))

	c = CostCalculator(decimal.Zero, decimal.NewFromInt(5), decimal.NewFromInt(3), decimal.NewFromInt(9))
	assert.True(t, c.Equal(decimal.NewFromInt(9)), "sin stock previo manda el costo de compra")
}
