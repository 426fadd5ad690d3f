package inventory

import (
	"context"
	"testing"

	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedItem(s *memStore, id, name, stock string) {
	s.items[id] = &entity.InventoryItem{
		ID: id, TenantID: "t1", ClientID: "default", Name: name, Unit: "lb",
		Cost: dec("10"), StockCurrent: dec(stock),
	}
}

func seedOrder(s *memStore, id string, items ...entity.OrderItem) {
	s.orders[id] = &entity.Order{ID: id, TenantID: "t1", ClientID: "default", Status: entity.OrderStatusCompleted, Items: items}
}

func newReconciler(s *memStore) *Reconciler {
	return NewReconciler(fakeTx{s}, memDishRepo{s}, logger.Nop())
}

func TestDeductForOrder_Receta(t *testing.T) {
	s := newMemStore()
	seedItem(s, "arroz", "Arroz", "10")
	seedItem(s, "pollo", "Pollo", "5")
	s.dishes["d1"] = &entity.Dish{ID: "d1", Name: "Locrio", Recipe: []entity.RecipeLine{
		{InventoryItemID: "arroz", Qty: dec("0.5")},
		{InventoryItemID: "pollo", Qty: dec("0.25")},
	}}
	seedOrder(s, "o1", entity.OrderItem{DishID: "d1", Name: "Locrio", Quantity: dec("2"), UnitPrice: dec("350")})

	res, err := newReconciler(s).DeductForOrder(context.Background(), "t1", "o1", "u1")
	require.NoError(t, err)
	assert.True(t, res.Deducted)
	assert.Equal(t, 2, res.Movements)
	assert.True(t, s.items["arroz"].StockCurrent.Equal(dec("9")))
	assert.True(t, s.items["pollo"].StockCurrent.Equal(dec("4.5")))
	assert.True(t, s.orders["o1"].InventoryDeducted)
	require.Len(t, s.movements, 2)
	for _, m := range s.movements {
		assert.Equal(t, entity.MovementTypeSale, m.Type)
		assert.True(t, m.Qty.IsNegative())
		require.NotNil(t, m.OrderID)
		assert.Equal(t, "o1", *m.OrderID)
	}
}

func TestDeductForOrder_StockNegativoRechazaTodo(t *testing.T) {
	s := newMemStore()
	seedItem(s, "arroz", "Arroz", "10")
	seedItem(s, "pollo", "Pollo", "0.1")
	s.dishes["d1"] = &entity.Dish{ID: "d1", Recipe: []entity.RecipeLine{
		{InventoryItemID: "arroz", Qty: dec("1")},
		{InventoryItemID: "pollo", Qty: dec("1")},
	}}
	seedOrder(s, "o1", entity.OrderItem{DishID: "d1", Name: "Locrio", Quantity: dec("1")})

	_, err := newReconciler(s).DeductForOrder(context.Background(), "t1", "o1", "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, "INSUFFICIENT_STOCK", domain.Code(err))
	assert.True(t, s.items["arroz"].StockCurrent.Equal(dec("10")), "nada se descuenta")
	assert.Empty(t, s.movements)
	assert.False(t, s.orders["o1"].InventoryDeducted)
}

func TestDeductForOrder_PorNombre(t *testing.T) {
	s := newMemStore()
	seedItem(s, "cafe", "Café con Leche", "20")
	seedOrder(s, "o1", entity.OrderItem{Name: "  cafe  CON leche ", Quantity: dec("3")})

	res, err := newReconciler(s).DeductForOrder(context.Background(), "t1", "o1", "u1")
	require.NoError(t, err)
	assert.True(t, res.Deducted)
	assert.True(t, s.items["cafe"].StockCurrent.Equal(dec("17")))
}

func TestDeductForOrder_Idempotente(t *testing.T) {
	s := newMemStore()
	seedItem(s, "cafe", "Cafe", "20")
	seedOrder(s, "o1", entity.OrderItem{Name: "Cafe", Quantity: dec("1")})
	rec := newReconciler(s)

	_, err := rec.DeductForOrder(context.Background(), "t1", "o1", "u1")
	require.NoError(t, err)
	res, err := rec.DeductForOrder(context.Background(), "t1", "o1", "u1")
	require.NoError(t, err)
	assert.True(t, res.AlreadyDeducted)
	assert.False(t, res.Deducted)
	assert.True(t, s.items["cafe"].StockCurrent.Equal(dec("19")))
	assert.Len(t, s.movements, 1)
}

func TestDeductForOrder_SinCoincidenciasNoMarca(t *testing.T) {
	s := newMemStore()
	seedItem(s, "cafe", "Cafe", "20")
	seedOrder(s, "o1", entity.OrderItem{Name: "Mofongo", Quantity: dec("1")})

	res, err := newReconciler(s).DeductForOrder(context.Background(), "t1", "o1", "u1")
	require.NoError(t, err)
	assert.False(t, res.Deducted)
	assert.Equal(t, []string{"Mofongo"}, res.Unmatched)
	assert.False(t, s.orders["o1"].InventoryDeducted)
}

func TestDeductForOrder_OrdenInexistente(t *testing.T) {
	_, err := newReconciler(newMemStore()).DeductForOrder(context.Background(), "t1", "nope", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterMovement_CompraRecalculaCosto(t *testing.T) {
	s := newMemStore()
	seedItem(s, "arroz", "Arroz", "10") // costo 10
	uc := NewRegisterMovementUseCase(fakeTx{s})
	cost := dec("20")

	mov, err := uc.RegisterMovement(context.Background(), MovementInputDTO{
		TenantID: "t1", ClientID: "default", ItemID: "arroz", Type: entity.MovementTypePurchase, Qty: dec("10"), UnitCost: &cost,
	})
	require.NoError(t, err)
	assert.True(t, s.items["arroz"].StockCurrent.Equal(dec("20")))
	assert.True(t, s.items["arroz"].Cost.Equal(dec("15")))
	assert.True(t, mov.StockBefore.Equal(dec("10")))
	assert.True(t, mov.StockAfter.Equal(dec("20")))
	assert.True(t, mov.CostAmount.Equal(dec("200")))
}

func TestRegisterMovement_Merma(t *testing.T) {
	s := newMemStore()
	seedItem(s, "arroz", "Arroz", "5")
	uc := NewRegisterMovementUseCase(fakeTx{s})

	mov, err := uc.RegisterMovement(context.Background(), MovementInputDTO{
		TenantID: "t1", ClientID: "default", ItemID: "arroz", Type: entity.MovementTypeWaste, Qty: dec("2"),
	})
	require.NoError(t, err)
	assert.True(t, mov.Qty.Equal(dec("-2")))
	assert.True(t, mov.CostAmount.Equal(dec("20")))
	assert.True(t, s.items["arroz"].StockCurrent.Equal(dec("3")))

	_, err = uc.RegisterMovement(context.Background(), MovementInputDTO{
		TenantID: "t1", ClientID: "default", ItemID: "arroz", Type: entity.MovementTypeWaste, Qty: dec("0"),
	})
	assert.Equal(t, "QTY_MUST_BE_GT_0", domain.Code(err))

	_, err = uc.RegisterMovement(context.Background(), MovementInputDTO{
		TenantID: "t1", ClientID: "default", ItemID: "arroz", Type: entity.MovementTypeWaste, Qty: dec("4"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestRegisterMovement_OtroClienteNoEncontrado(t *testing.T) {
	s := newMemStore()
	seedItem(s, "arroz", "Arroz", "5")
	uc := NewRegisterMovementUseCase(fakeTx{s})

	_, err := uc.RegisterMovement(context.Background(), MovementInputDTO{
		TenantID: "t1", ClientID: "sucursal-2", ItemID: "arroz", Type: entity.MovementTypeAdjustment, Qty: dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWasteSummary(t *testing.T) {
	s := newMemStore()
	seedItem(s, "arroz", "Arroz", "10")
	mov := NewRegisterMovementUseCase(fakeTx{s})
	_, err := mov.RegisterMovement(context.Background(), MovementInputDTO{
		TenantID: "t1", ClientID: "default", ItemID: "arroz", Type: entity.MovementTypeWaste, Qty: dec("1.5"),
	})
	require.NoError(t, err)

	uc := NewItemUseCase(memItemRepo{s}, memMovRepo{s}, nil)
	sum, err := uc.WasteSummary(context.Background(), "t1", "default", "", "", "")
	require.NoError(t, err)
	assert.True(t, sum.MermaQty.Equal(dec("1.5")))
	assert.True(t, sum.MermaCost.Equal(dec("15")))

	_, err = uc.WasteSummary(context.Background(), "t1", "default", "", "2026-01-10", "2026-01-01")
	assert.Equal(t, "INVALID_DATE_RANGE", domain.Code(err))
	_, err = uc.WasteSummary(context.Background(), "t1", "default", "", "2026-01-10", "")
	assert.Equal(t, "MISSING_DATE_RANGE", domain.Code(err))
}

func TestReplenishmentList(t *testing.T) {
	s := newMemStore()
	seedItem(s, "a", "A", "1")
	s.items["a"].StockMin = dec("10")
	seedItem(s, "b", "B", "8")
	s.items["b"].StockMin = dec("10")
	seedItem(s, "c", "C", "50")
	s.items["c"].StockMin = dec("10")

	list, err := NewReplenishmentUseCase(memItemRepo{s}).GenerateReplenishmentList(context.Background(), "t1", "default")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ItemID)
	assert.Equal(t, 1, list[0].Priority)
	assert.True(t, list[0].SuggestedOrderQty.Equal(dec("14")))
}
