package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/billing"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReplenishmentUseCase lista de insumos bajo mínimo con la cantidad sugerida a comprar.
type ReplenishmentUseCase struct {
	itemRepo repository.InventoryItemRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(itemRepo repository.InventoryItemRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{itemRepo: itemRepo}
}

// GenerateReplenishmentList devuelve los insumos con stock en o bajo el mínimo, ordenados
// por déficit relativo (el más vacío primero).
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, tenantID, clientID string) ([]dto.LowStockSuggestionDTO, error) {
	rawItems, err := uc.itemRepo.ListLowStock(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	if len(rawItems) == 0 {
		return []dto.LowStockSuggestionDTO{}, nil
	}

	factor := decimal.NewFromFloat(1.5)
	suggestions := make([]dto.LowStockSuggestionDTO, 0, len(rawItems))
	for _, item := range rawItems {
		idealStock := item.StockMin.Mul(factor)
		suggestedQty := idealStock.Sub(item.StockCurrent)
		if suggestedQty.LessThanOrEqual(decimal.Zero) {
			suggestedQty = decimal.Zero
		}
		suggestions = append(suggestions, dto.LowStockSuggestionDTO{
			ItemID:             item.ID,
			Name:               item.Name,
			Unit:               item.Unit,
			CurrentStock:       item.StockCurrent,
			StockMin:           item.StockMin,
			IdealStock:         idealStock,
			SuggestedOrderQty:  suggestedQty,
			UnitCost:           item.Cost,
			EstimatedOrderCost: billing.Round2(suggestedQty.Mul(item.Cost)),
		})
	}

	// cobertura = stock / mínimo; menor cobertura primero, luego mayor costo estimado
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		ca := a.CurrentStock.Div(a.StockMin)
		cb := b.CurrentStock.Div(b.StockMin)
		if !ca.Equal(cb) {
			return ca.LessThan(cb)
		}
		return a.EstimatedOrderCost.GreaterThan(b.EstimatedOrderCost)
	})

	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
