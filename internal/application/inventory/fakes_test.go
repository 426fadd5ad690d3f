package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type memStore struct {
	mu        sync.Mutex
	items     map[string]*entity.InventoryItem
	orders    map[string]*entity.Order
	dishes    map[string]*entity.Dish
	movements []*entity.InventoryMovement
}

func newMemStore() *memStore {
	return &memStore{
		items:  map[string]*entity.InventoryItem{},
		orders: map[string]*entity.Order{},
		dishes: map[string]*entity.Dish{},
	}
}

// fakeTx serializa las "transacciones" y descarta los cambios si fn falla.
type fakeTx struct{ s *memStore }

func (f fakeTx) Run(_ context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	itemRepo repository.InventoryItemRepository,
	orderRepo repository.OrderRepository,
) error) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	items := map[string]entity.InventoryItem{}
	for k, v := range f.s.items {
		items[k] = *v
	}
	orders := map[string]entity.Order{}
	for k, v := range f.s.orders {
		orders[k] = *v
	}
	nMov := len(f.s.movements)
	if err := fn(memMovRepo{f.s}, memItemRepo{f.s}, memOrderRepo{f.s}); err != nil {
		for k, v := range items {
			cp := v
			f.s.items[k] = &cp
		}
		for k, v := range orders {
			cp := v
			f.s.orders[k] = &cp
		}
		f.s.movements = f.s.movements[:nMov]
		return err
	}
	return nil
}

type memItemRepo struct{ s *memStore }

func (r memItemRepo) Create(_ context.Context, it *entity.InventoryItem) error {
	cp := *it
	r.s.items[it.ID] = &cp
	return nil
}

func (r memItemRepo) GetByID(_ context.Context, tenantID, id string) (*entity.InventoryItem, error) {
	it, ok := r.s.items[id]
	if !ok || it.TenantID != tenantID {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r memItemRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.InventoryItem, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r memItemRepo) List(_ context.Context, tenantID, clientID string, includeArchived bool) ([]*entity.InventoryItem, error) {
	var out []*entity.InventoryItem
	for _, it := range r.s.items {
		if it.TenantID == tenantID && it.ClientID == clientID && (includeArchived || !it.Archived) {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memItemRepo) ListLowStock(ctx context.Context, tenantID, clientID string) ([]*entity.InventoryItem, error) {
	all, _ := r.List(ctx, tenantID, clientID, false)
	var out []*entity.InventoryItem
	for _, it := range all {
		if it.IsLow() {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r memItemRepo) Update(_ context.Context, it *entity.InventoryItem) error {
	cp := *it
	r.s.items[it.ID] = &cp
	return nil
}

func (r memItemRepo) UpdateStock(_ context.Context, _ string, id string, stock, cost decimal.Decimal) error {
	r.s.items[id].StockCurrent = stock
	r.s.items[id].Cost = cost
	return nil
}

type memMovRepo struct{ s *memStore }

func (r memMovRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r memMovRepo) List(_ context.Context, tenantID, clientID string, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.s.movements {
		if m.TenantID == tenantID && m.ClientID == clientID && (f.Type == "" || m.Type == f.Type) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memMovRepo) SumByType(_ context.Context, tenantID, clientID, movType string, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	qty, cost := decimal.Zero, decimal.Zero
	for _, m := range r.s.movements {
		if m.TenantID == tenantID && m.ClientID == clientID && m.Type == movType &&
			!m.CreatedAt.Before(from) && m.CreatedAt.Before(to) {
			qty = qty.Add(m.Qty.Abs())
			cost = cost.Add(m.CostAmount)
		}
	}
	return qty, cost, nil
}

type memOrderRepo struct{ s *memStore }

func (r memOrderRepo) Create(_ context.Context, o *entity.Order) error {
	cp := *o
	r.s.orders[o.ID] = &cp
	return nil
}

func (r memOrderRepo) GetByID(_ context.Context, tenantID, clientID, id string) (*entity.Order, error) {
	o, ok := r.s.orders[id]
	if !ok || o.TenantID != tenantID || (clientID != "" && o.ClientID != clientID) {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r memOrderRepo) GetForUpdate(_ context.Context, tenantID, id string) (*entity.Order, error) {
	o, ok := r.s.orders[id]
	if !ok || o.TenantID != tenantID {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r memOrderRepo) List(context.Context, string, string, repository.OrderFilter) ([]*entity.Order, error) {
	return nil, nil
}

func (r memOrderRepo) Update(_ context.Context, o *entity.Order) error {
	cp := *o
	r.s.orders[o.ID] = &cp
	return nil
}

func (r memOrderRepo) ClearFiscal(context.Context, string, string) error { return nil }

func (r memOrderRepo) StampFiscal(context.Context, string, string, entity.FiscalSnapshot) (bool, error) {
	return false, nil
}

func (r memOrderRepo) MarkInventoryDeducted(_ context.Context, _ string, orderID string, at time.Time) (bool, error) {
	o := r.s.orders[orderID]
	if o == nil || o.InventoryDeducted {
		return false, nil
	}
	o.InventoryDeducted = true
	o.InventoryDeductedAt = &at
	return true, nil
}

func (r memOrderRepo) SetInvoice(context.Context, string, string, string, string, time.Time) error {
	return nil
}

func (r memOrderRepo) Delete(context.Context, string, string, string) (bool, error) {
	return false, nil
}

type memDishRepo struct{ s *memStore }

func (r memDishRepo) Create(_ context.Context, d *entity.Dish) error {
	r.s.dishes[d.ID] = d
	return nil
}

func (r memDishRepo) GetByID(_ context.Context, _ string, id string) (*entity.Dish, error) {
	return r.s.dishes[id], nil
}

func (r memDishRepo) GetByIDs(_ context.Context, _ string, ids []string) (map[string]*entity.Dish, error) {
	out := map[string]*entity.Dish{}
	for _, id := range ids {
		if d, ok := r.s.dishes[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func (r memDishRepo) List(context.Context, string, string, bool) ([]*entity.Dish, error) {
	return nil, nil
}

func (r memDishRepo) CountActive(context.Context, string) (int, error) { return len(r.s.dishes), nil }

func (r memDishRepo) Update(_ context.Context, d *entity.Dish) error {
	r.s.dishes[d.ID] = d
	return nil
}

func (r memDishRepo) Archive(context.Context, string, string, string) (bool, error) { return false, nil }
