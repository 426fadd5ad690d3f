package order

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/application/fiscal"
	"github.com/jhoicas/pos-restaurante-api/internal/application/invoice"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	ncf "github.com/jhoicas/pos-restaurante-api/internal/domain/fiscal"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
)

type store struct {
	mu      sync.Mutex
	tenants map[string]*entity.Tenant
	orders  map[string]*entity.Order
	tables  map[string]*entity.Table
	// stampLost simula que otra petición fijó el NCF primero.
	stampLost *entity.FiscalSnapshot
	failTx    error
}

func newStore() *store {
	return &store{
		tenants: map[string]*entity.Tenant{},
		orders:  map[string]*entity.Order{},
		tables:  map[string]*entity.Table{},
	}
}

// fakeTx aplica los cambios sobre copias y solo los publica si fn no falla.
type fakeTx struct{ s *store }

func (f fakeTx) RunOrder(_ context.Context, fn func(repository.OrderRepository, repository.TableRepository) error) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	orders := map[string]*entity.Order{}
	for k, v := range f.s.orders {
		cp := *v
		orders[k] = &cp
	}
	tables := map[string]*entity.Table{}
	for k, v := range f.s.tables {
		cp := *v
		tables[k] = &cp
	}
	tx := &store{orders: orders, tables: tables, stampLost: f.s.stampLost}
	if err := fn(memOrders{tx}, memTables{tx}); err != nil {
		return err
	}
	if f.s.failTx != nil {
		return f.s.failTx
	}
	f.s.orders, f.s.tables = orders, tables
	return nil
}

type memTenants struct{ s *store }

func (r memTenants) Create(_ context.Context, t *entity.Tenant) error {
	r.s.tenants[t.ID] = t
	return nil
}

func (r memTenants) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	t, ok := r.s.tenants[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r memTenants) UpdateFeatures(context.Context, string, entity.TenantFeatures) error { return nil }
func (r memTenants) UpdateFiscal(context.Context, *entity.Tenant) error                  { return nil }

type memOrders struct{ s *store }

func (r memOrders) Create(_ context.Context, o *entity.Order) error {
	cp := *o
	r.s.orders[o.ID] = &cp
	return nil
}

func (r memOrders) GetByID(_ context.Context, tenantID, clientID, id string) (*entity.Order, error) {
	o, ok := r.s.orders[id]
	if !ok || o.TenantID != tenantID || (clientID != "" && o.ClientID != clientID) {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r memOrders) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Order, error) {
	return r.GetByID(ctx, tenantID, "", id)
}

func (r memOrders) List(_ context.Context, tenantID, clientID string, f repository.OrderFilter) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.s.orders {
		if o.TenantID == tenantID && o.ClientID == clientID && (f.Status == "" || o.Status == f.Status) {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Update conserva el NCF guardado igual que la sentencia real.
func (r memOrders) Update(_ context.Context, o *entity.Order) error {
	prev, ok := r.s.orders[o.ID]
	if !ok {
		return errors.New("update de orden inexistente")
	}
	cp := *o
	if prev.Fiscal.Issued() && prev.Fiscal.NCFNumber != o.Fiscal.NCFNumber {
		cp.Fiscal = prev.Fiscal
	}
	cp.InventoryDeducted = prev.InventoryDeducted
	r.s.orders[o.ID] = &cp
	return nil
}

func (r memOrders) StampFiscal(_ context.Context, _ string, orderID string, f entity.FiscalSnapshot) (bool, error) {
	o := r.s.orders[orderID]
	if r.s.stampLost != nil && !o.Fiscal.Issued() {
		o.Fiscal = *r.s.stampLost
	}
	if o.Fiscal.Issued() {
		return false, nil
	}
	o.Fiscal = f
	return true, nil
}

func (r memOrders) ClearFiscal(_ context.Context, _ string, orderID string) error {
	if o, ok := r.s.orders[orderID]; ok {
		o.Fiscal = entity.FiscalSnapshot{}
	}
	return nil
}

func (r memOrders) MarkInventoryDeducted(context.Context, string, string, time.Time) (bool, error) {
	return true, nil
}

func (r memOrders) SetInvoice(_ context.Context, _ string, orderID, path, url string, printedAt time.Time) error {
	if o, ok := r.s.orders[orderID]; ok {
		o.InvoicePath, o.InvoiceURL = path, url
		o.Fiscal.PrintedAt = &printedAt
	}
	return nil
}

func (r memOrders) Delete(_ context.Context, tenantID, _ string, id string) (bool, error) {
	o, ok := r.s.orders[id]
	if !ok || o.TenantID != tenantID {
		return false, nil
	}
	delete(r.s.orders, id)
	return true, nil
}

type memTables struct{ s *store }

func (r memTables) Create(_ context.Context, t *entity.Table) error {
	cp := *t
	r.s.tables[t.ID] = &cp
	return nil
}

func (r memTables) GetByID(_ context.Context, tenantID, clientID, id string) (*entity.Table, error) {
	t, ok := r.s.tables[id]
	if !ok || t.TenantID != tenantID || t.ClientID != clientID {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r memTables) List(context.Context, string, string) ([]*entity.Table, error) { return nil, nil }
func (r memTables) CountByTenant(context.Context, string) (int, error)            { return len(r.s.tables), nil }
func (r memTables) Update(context.Context, *entity.Table) error                   { return nil }
func (r memTables) Delete(context.Context, string, string, string) (bool, error)  { return false, nil }

func (r memTables) Occupy(_ context.Context, _, _ string, tableID, orderID string) (bool, error) {
	t, ok := r.s.tables[tableID]
	if !ok {
		return false, nil
	}
	if t.CurrentOrderID != nil && *t.CurrentOrderID != orderID {
		return false, nil
	}
	id := orderID
	t.Status, t.CurrentOrderID = entity.TableStatusOccupied, &id
	return true, nil
}

func (r memTables) Release(_ context.Context, _, _ string, tableID, orderID string) (bool, error) {
	t, ok := r.s.tables[tableID]
	if !ok || t.CurrentOrderID == nil || *t.CurrentOrderID != orderID {
		return false, nil
	}
	t.Status, t.CurrentOrderID = entity.TableStatusAvailable, nil
	return true, nil
}

func (r memTables) ForceRelease(_ context.Context, _, _ string, tableID string) (bool, error) {
	t, ok := r.s.tables[tableID]
	if !ok {
		return false, nil
	}
	t.Status, t.CurrentOrderID = entity.TableStatusAvailable, nil
	return true, nil
}

// fakeAllocator contadores en memoria por tipo.
type fakeAllocator struct {
	mu        sync.Mutex
	counters  map[string]int64
	internal  int64
	failNCF   error
	failInt   error
	ncfCalls  int
	expiresAt *time.Time
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{counters: map[string]int64{}}
}

func (a *fakeAllocator) AllocateNCF(_ context.Context, _ string, docType string) (fiscal.NCF, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ncfCalls++
	if a.failNCF != nil {
		return fiscal.NCF{}, a.failNCF
	}
	a.counters[docType]++
	seq := a.counters[docType]
	n, err := ncf.FormatNCF(docType, seq)
	if err != nil {
		return fiscal.NCF{}, err
	}
	return fiscal.NCF{Type: docType, Number: n, Seq: seq, ExpiresAt: a.expiresAt}, nil
}

func (a *fakeAllocator) AllocateInternal(context.Context, string) (fiscal.InternalNumber, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failInt != nil {
		return fiscal.InternalNumber{}, a.failInt
	}
	a.internal++
	return fiscal.InternalNumber{Seq: a.internal, Number: ncf.FormatInternalNumber(a.internal)}, nil
}

func (a *fakeAllocator) Expiration(context.Context, string, string) (*time.Time, error) {
	return a.expiresAt, nil
}

type fakeReconciler struct {
	calls []string
	err   error
}

func (r *fakeReconciler) DeductForOrder(_ context.Context, _ string, orderID, _ string) (*dto.DeductionResponse, error) {
	r.calls = append(r.calls, orderID)
	if r.err != nil {
		return nil, r.err
	}
	return &dto.DeductionResponse{OrderID: orderID, Deducted: true, Movements: 1}, nil
}

type fakeInvoices struct {
	generated []string
	err       error
}

func (f *fakeInvoices) Generate(_ context.Context, tenantID, orderID string) (*invoice.Artifact, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.generated = append(f.generated, orderID)
	key := invoice.ObjectKey(tenantID, orderID)
	return &invoice.Artifact{Path: key, URL: "https://s3.test/" + key + "?sig=1"}, nil
}

func (f *fakeInvoices) Render(context.Context, string, string) ([]byte, error) {
	return []byte("%PDF-1.3"), nil
}

func (f *fakeInvoices) PresignURL(_ context.Context, path string) (string, error) {
	return "https://s3.test/" + path + "?sig=2", nil
}

type emitted struct {
	room    string
	event   string
	payload any
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []emitted
}

func (n *fakeNotifier) Emit(_ context.Context, room, event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, emitted{room: room, event: event, payload: payload})
}
