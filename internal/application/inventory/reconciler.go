package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/billing"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/inventory"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

// Reconciler descuenta del inventario lo vendido en una orden, una sola vez por orden.
type Reconciler struct {
	txRunner TxRunner
	dishRepo repository.DishRepository
	log      *logger.Logger
	now      func() time.Time
}

// NewReconciler construye el reconciliador.
func NewReconciler(txRunner TxRunner, dishRepo repository.DishRepository, log *logger.Logger) *Reconciler {
	return &Reconciler{txRunner: txRunner, dishRepo: dishRepo, log: log.Component("inventory_reconciler"), now: time.Now}
}

// DeductForOrder en una transacción: bloquea la orden, verifica el flag, bloquea cada insumo
// (SELECT FOR UPDATE), rechaza todo si algún stock quedaría negativo, registra un movimiento
// sale por insumo y marca la orden solo si hubo al menos un descuento.
func (r *Reconciler) DeductForOrder(ctx context.Context, tenantID, orderID, userID string) (*dto.DeductionResponse, error) {
	res := &dto.DeductionResponse{OrderID: orderID}
	err := r.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		itemRepo repository.InventoryItemRepository,
		orderRepo repository.OrderRepository,
	) error {
		*res = dto.DeductionResponse{OrderID: orderID}

		o, err := orderRepo.GetForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.NotFound("ORDER_NOT_FOUND", "Orden no encontrada")
		}
		if o.InventoryDeducted {
			res.AlreadyDeducted = true
			return nil
		}

		plan, unmatched, err := r.plan(ctx, o, itemRepo)
		if err != nil {
			return err
		}
		res.Unmatched = unmatched
		if len(plan) == 0 {
			return nil
		}

		// orden fijo de bloqueo entre transacciones concurrentes
		sort.Slice(plan, func(i, j int) bool { return plan[i].ItemID < plan[j].ItemID })

		type lockedLine struct {
			item *entity.InventoryItem
			qty  inventory.Deduction
		}
		locked := make([]lockedLine, 0, len(plan))
		for _, d := range plan {
			it, err := itemRepo.GetForUpdate(ctx, tenantID, d.ItemID)
			if err != nil {
				return err
			}
			if it == nil {
				res.Unmatched = append(res.Unmatched, d.ItemID)
				continue
			}
			if it.StockCurrent.LessThan(d.Qty) {
				return domain.NewError(domain.ErrInsufficientStock, "INSUFFICIENT_STOCK", "Stock insuficiente para "+it.Name)
			}
			locked = append(locked, lockedLine{item: it, qty: d})
		}
		if len(locked) == 0 {
			return nil
		}

		now := r.now()
		orderRef := o.ID
		for _, l := range locked {
			before := l.item.StockCurrent
			after := before.Sub(l.qty.Qty)
			if err := itemRepo.UpdateStock(ctx, tenantID, l.item.ID, after, l.item.Cost); err != nil {
				return err
			}
			mov := &entity.InventoryMovement{
				ID:          uuid.New().String(),
				TenantID:    tenantID,
				ClientID:    o.ClientID,
				ItemID:      l.item.ID,
				OrderID:     &orderRef,
				Type:        entity.MovementTypeSale,
				Qty:         l.qty.Qty.Neg(),
				UnitCost:    l.item.Cost,
				CostAmount:  billing.Round2(l.qty.Qty.Mul(l.item.Cost)),
				StockBefore: before,
				StockAfter:  after,
				Note:        "Venta orden " + o.ID,
				CreatedBy:   userID,
				CreatedAt:   now,
			}
			if err := movRepo.Create(ctx, mov); err != nil {
				return err
			}
		}

		ok, err := orderRepo.MarkInventoryDeducted(ctx, tenantID, o.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Conflict("INVENTORY_ALREADY_DEDUCTED", "El inventario de la orden ya fue descontado")
		}
		res.Deducted = true
		res.Movements = len(locked)
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Info().
		Str("tenant_id", tenantID).
		Str("order_id", orderID).
		Bool("deducted", res.Deducted).
		Bool("already_deducted", res.AlreadyDeducted).
		Int("movements", res.Movements).
		Int("unmatched", len(res.Unmatched)).
		Msg("descuento de inventario")
	return res, nil
}

// plan arma las cantidades por insumo según la estrategia de cada línea.
func (r *Reconciler) plan(ctx context.Context, o *entity.Order, itemRepo repository.InventoryItemRepository) ([]inventory.Deduction, []string, error) {
	ids := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		if it.DishID != "" {
			ids = append(ids, it.DishID)
		}
	}
	dishes, err := r.dishRepo.GetByIDs(ctx, o.TenantID, ids)
	if err != nil {
		return nil, nil, err
	}

	var (
		candidates []*entity.InventoryItem
		loaded     bool
		plan       []inventory.Deduction
		unmatched  []string
		idx        = map[string]int{}
	)
	add := func(d inventory.Deduction) {
		if i, ok := idx[d.ItemID]; ok {
			plan[i].Qty = plan[i].Qty.Add(d.Qty)
			return
		}
		idx[d.ItemID] = len(plan)
		plan = append(plan, d)
	}

	for _, line := range o.Items {
		dish := dishes[line.DishID]
		switch inventory.ChooseStrategy(line, dish) {
		case inventory.StrategyRecipe:
			for _, d := range inventory.RecipeDeductions(dish, line.Quantity) {
				add(d)
			}
		case inventory.StrategyNameMatch:
			if !loaded {
				if candidates, err = itemRepo.List(ctx, o.TenantID, o.ClientID, false); err != nil {
					return nil, nil, err
				}
				loaded = true
			}
			match := inventory.MatchByName(line.Name, candidates)
			if match == nil {
				unmatched = append(unmatched, line.Name)
				continue
			}
			add(inventory.Deduction{ItemID: match.ID, Qty: line.Quantity})
		default:
			unmatched = append(unmatched, line.Name)
		}
	}
	return plan, unmatched, nil
}
