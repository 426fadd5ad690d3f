package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/billing"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/inventory"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// RegisterMovementUseCase registra movimientos de inventario de forma transaccional
// (purchase, adjustment, waste) con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type RegisterMovementUseCase struct {
	txRunner TxRunner
	now      func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner TxRunner) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{txRunner: txRunner, now: time.Now}
}

// MovementInputDTO entrada para registrar un movimiento de inventario.
// purchase: Qty > 0 y UnitCost obligatorio. adjustment: Qty con signo, distinto de cero.
// waste: Qty > 0; CostAmount opcional (por defecto Qty * UnitCost).
type MovementInputDTO struct {
	TenantID   string
	ClientID   string
	UserID     string
	ItemID     string
	Type       string
	Qty        decimal.Decimal
	UnitCost   *decimal.Decimal
	CostAmount *decimal.Decimal
	Note       string
}

// RegisterMovement inicia una transacción, bloquea el insumo, aplica la lógica según el tipo
// y deja el movimiento con el stock antes/después.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) (*entity.InventoryMovement, error) {
	switch input.Type {
	case entity.MovementTypePurchase:
		if !input.Qty.IsPositive() {
			return nil, domain.Validation("QTY_MUST_BE_GT_0", "La cantidad debe ser mayor que 0")
		}
		if input.UnitCost == nil || input.UnitCost.IsNegative() {
			return nil, domain.Validation("INVALID_UNIT_COST", "unitCost es obligatorio en compras")
		}
	case entity.MovementTypeAdjustment:
		if input.Qty.IsZero() {
			return nil, domain.Validation("QTY_REQUIRED", "El ajuste no puede ser cero")
		}
	case entity.MovementTypeWaste:
		if !input.Qty.IsPositive() {
			return nil, domain.Validation("QTY_MUST_BE_GT_0", "La cantidad debe ser mayor que 0")
		}
	default:
		return nil, domain.Validation("INVALID_MOVEMENT_TYPE", "Tipo de movimiento inválido")
	}
	if strings.TrimSpace(input.ItemID) == "" {
		return nil, domain.Validation("INVALID_ITEM_ID", "itemId es obligatorio")
	}

	var mov *entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		itemRepo repository.InventoryItemRepository,
		_ repository.OrderRepository,
	) error {
		// Bloquea la fila del insumo (SELECT FOR UPDATE) para evitar condiciones de carrera
		item, err := itemRepo.GetForUpdate(ctx, input.TenantID, input.ItemID)
		if err != nil {
			return err
		}
		if item == nil || item.ClientID != input.ClientID {
			return domain.NotFound("ITEM_NOT_FOUND", "Insumo no encontrado")
		}
		switch input.Type {
		case entity.MovementTypePurchase:
			mov, err = uc.doPurchase(ctx, movRepo, itemRepo, item, input)
		case entity.MovementTypeAdjustment:
			mov, err = uc.doAdjustment(ctx, movRepo, itemRepo, item, input)
		case entity.MovementTypeWaste:
			mov, err = uc.doWaste(ctx, movRepo, itemRepo, item, input)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// doPurchase: CostCalculator, actualiza costo promedio, suma stock, guarda movimiento.
func (uc *RegisterMovementUseCase) doPurchase(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	itemRepo repository.InventoryItemRepository,
	item *entity.InventoryItem,
	input MovementInputDTO,
) (*entity.InventoryMovement, error) {
	unitCost := *input.UnitCost
	after := item.StockCurrent.Add(input.Qty)
	newCost := inventory.CostCalculator(item.StockCurrent, item.Cost, input.Qty, unitCost)
	if err := itemRepo.UpdateStock(ctx, input.TenantID, item.ID, after, newCost); err != nil {
		return nil, err
	}
	return uc.record(ctx, movRepo, item, input, input.Qty, unitCost, billing.Round2(input.Qty.Mul(unitCost)), after)
}

// doAdjustment: positivo entra (al costo indicado si viene), negativo sale al costo promedio.
func (uc *RegisterMovementUseCase) doAdjustment(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	itemRepo repository.InventoryItemRepository,
	item *entity.InventoryItem,
	input MovementInputDTO,
) (*entity.InventoryMovement, error) {
	after := item.StockCurrent.Add(input.Qty)
	if after.IsNegative() {
		return nil, domain.NewError(domain.ErrInsufficientStock, "INSUFFICIENT_STOCK", "Stock insuficiente para "+item.Name)
	}
	cost := item.Cost
	unitCost := item.Cost
	if input.Qty.IsPositive() && input.UnitCost != nil && !input.UnitCost.IsNegative() {
		unitCost = *input.UnitCost
		cost = inventory.CostCalculator(item.StockCurrent, item.Cost, input.Qty, unitCost)
	}
	if err := itemRepo.UpdateStock(ctx, input.TenantID, item.ID, after, cost); err != nil {
		return nil, err
	}
	return uc.record(ctx, movRepo, item, input, input.Qty, unitCost, billing.Round2(input.Qty.Abs().Mul(unitCost)), after)
}

// doWaste: merma, resta stock al costo promedio salvo que se indique otro.
func (uc *RegisterMovementUseCase) doWaste(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	itemRepo repository.InventoryItemRepository,
	item *entity.InventoryItem,
	input MovementInputDTO,
) (*entity.InventoryMovement, error) {
	if item.StockCurrent.LessThan(input.Qty) {
		return nil, domain.NewError(domain.ErrInsufficientStock, "INSUFFICIENT_STOCK", "Stock insuficiente para "+item.Name)
	}
	after := item.StockCurrent.Sub(input.Qty)
	unitCost := item.Cost
	if input.UnitCost != nil && !input.UnitCost.IsNegative() {
		unitCost = *input.UnitCost
	}
	costAmount := billing.Round2(input.Qty.Mul(unitCost))
	if input.CostAmount != nil && !input.CostAmount.IsNegative() {
		costAmount = billing.Round2(*input.CostAmount)
	}
	if err := itemRepo.UpdateStock(ctx, input.TenantID, item.ID, after, item.Cost); err != nil {
		return nil, err
	}
	return uc.record(ctx, movRepo, item, input, input.Qty.Neg(), unitCost, costAmount, after)
}

func (uc *RegisterMovementUseCase) record(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	item *entity.InventoryItem,
	input MovementInputDTO,
	qty, unitCost, costAmount, after decimal.Decimal,
) (*entity.InventoryMovement, error) {
	mov := &entity.InventoryMovement{
		ID:          uuid.New().String(),
		TenantID:    input.TenantID,
		ClientID:    input.ClientID,
		ItemID:      item.ID,
		Type:        input.Type,
		Qty:         qty,
		UnitCost:    unitCost,
		CostAmount:  costAmount,
		StockBefore: item.StockCurrent,
		StockAfter:  after,
		Note:        strings.TrimSpace(input.Note),
		CreatedBy:   input.UserID,
		CreatedAt:   uc.now(),
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}
