package inventory

import (
	"context"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RegisterMovement(ctx, MovementInputDTO).
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, tenantID, clientID, userID string, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	mov, err := uc.RegisterMovement(ctx, MovementInputDTO{
		TenantID: tenantID,
		ClientID: clientID,
		UserID:   userID,
		ItemID:   in.ItemID,
		Type:     in.Type,
		Qty:      in.Qty,
		UnitCost: in.UnitCost,
		Note:     in.Note,
	})
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(mov), nil
}

// RegisterWasteFromRequest registra una merma.
func (uc *RegisterMovementUseCase) RegisterWasteFromRequest(ctx context.Context, tenantID, clientID, userID string, in dto.WasteRequest) (*dto.MovementResponse, error) {
	mov, err := uc.RegisterMovement(ctx, MovementInputDTO{
		TenantID:   tenantID,
		ClientID:   clientID,
		UserID:     userID,
		ItemID:     in.ItemID,
		Type:       entity.MovementTypeWaste,
		Qty:        in.Qty,
		UnitCost:   in.UnitCost,
		CostAmount: in.CostAmount,
		Note:       in.Note,
	})
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(mov), nil
}

// ToMovementResponse mapea un movimiento a su DTO.
func ToMovementResponse(m *entity.InventoryMovement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	return &dto.MovementResponse{
		ID:          m.ID,
		ItemID:      m.ItemID,
		OrderID:     m.OrderID,
		Type:        m.Type,
		Qty:         m.Qty,
		UnitCost:    m.UnitCost,
		CostAmount:  m.CostAmount,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Note:        m.Note,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}
