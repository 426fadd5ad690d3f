package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/billing"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

const (
	tableA = "11111111-1111-1111-1111-111111111111"
	tableB = "22222222-2222-2222-2222-222222222222"
)

var fixedNow = time.Date(2026, 5, 10, 20, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
func ptr[T any](v T) *T            { return &v }

type fixture struct {
	s     *store
	alloc *fakeAllocator
	rec   *fakeReconciler
	inv   *fakeInvoices
	notif *fakeNotifier
	uc    *UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newStore()
	s.tenants["t1"] = &entity.Tenant{
		ID: "t1", Name: "La Casita", Plan: entity.PlanPro, Status: entity.TenantStatusActive,
		FiscalEnabled: true, FiscalAllowReq: true,
		Features: entity.TenantFeatures{OrderSources: entity.OrderSourceFeatures{
			PedidosYa: entity.ChannelFeature{Enabled: ptr(true), CommissionRate: ptr(dec("0.2"))},
		}},
	}
	for i, id := range []string{tableA, tableB} {
		s.tables[id] = &entity.Table{ID: id, TenantID: "t1", ClientID: "default", TableNo: i + 1, Status: entity.TableStatusAvailable}
	}
	f := &fixture{s: s, alloc: newFakeAllocator(), rec: &fakeReconciler{}, inv: &fakeInvoices{}, notif: &fakeNotifier{}}
	f.uc = NewUseCase(fakeTx{s}, memOrders{s}, memTenants{s}, memTables{s}, f.alloc, f.rec, f.inv, f.notif,
		billing.Defaults{TaxRate: dec("0.18")}, logger.Nop())
	f.uc.now = func() time.Time { return fixedNow }
	return f
}

var cashier = Actor{TenantID: "t1", ClientID: "default", UserID: "u1", Role: entity.RoleCajera}
var admin = Actor{TenantID: "t1", ClientID: "default", UserID: "u2", Role: entity.RoleAdmin}

func twoPlates() []dto.OrderItemInput {
	return []dto.OrderItemInput{{Name: "Bandera", Quantity: dec("2"), UnitPrice: dec("100")}}
}

func (f *fixture) create(t *testing.T, in dto.CreateOrderRequest) *dto.OrderResponse {
	t.Helper()
	if in.Items == nil {
		in.Items = twoPlates()
	}
	res, err := f.uc.Create(context.Background(), cashier, in)
	require.NoError(t, err)
	return res
}

func TestCreate_CalculaMontosYOcupaMesa(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, dto.CreateOrderRequest{Table: tableA})

	assert.Equal(t, entity.OrderStatusInProgress, res.OrderStatus)
	assert.Equal(t, entity.SourceDineIn, res.OrderSource)
	assert.Equal(t, "Efectivo", res.PaymentMethod)
	assert.True(t, res.Bills.Subtotal.Equal(dec("200")))
	assert.True(t, res.Bills.Tax.Equal(dec("36")))
	assert.True(t, res.Bills.TotalWithTax.Equal(dec("236")))
	assert.True(t, res.NetTotal.Equal(dec("236")))

	tbl := f.s.tables[tableA]
	assert.Equal(t, entity.TableStatusOccupied, tbl.Status)
	require.NotNil(t, tbl.CurrentOrderID)
	assert.Equal(t, res.ID, *tbl.CurrentOrderID)

	require.Len(t, f.notif.events, 2)
	assert.Equal(t, "tenant:t1", f.notif.events[0].room)
	assert.Equal(t, EventOrderUpdated, f.notif.events[0].event)
	assert.Equal(t, EventTablesUpdated, f.notif.events[1].event)
}

func TestCreate_CanalDeliveryConComision(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, dto.CreateOrderRequest{OrderSource: "pedidosya", Bills: dto.BillsInput{Tip: ptr(dec("20"))}})

	assert.Equal(t, entity.SourcePedidosYa, res.OrderSource)
	require.NotNil(t, res.CommissionRate)
	assert.True(t, res.CommissionRate.Equal(dec("0.2")))
	// comisión sobre 236 (sin propina); neto sobre 256
	assert.True(t, res.CommissionAmount.Equal(dec("47.2")))
	assert.True(t, res.NetTotal.Equal(dec("208.8")))
}

func TestCreate_CanalDeshabilitado(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), cashier, dto.CreateOrderRequest{OrderSource: "UBEREATS", Items: twoPlates()})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "SOURCE_DISABLED_UBEREATS", domain.Code(err))
	assert.Empty(t, f.s.orders)
}

func TestCreate_MesaInvalida(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Create(context.Background(), cashier, dto.CreateOrderRequest{Table: "mesa-1", Items: twoPlates()})
	assert.Equal(t, "INVALID_TABLE_ID", domain.Code(err))

	other := "33333333-3333-3333-3333-333333333333"
	f.s.tables[other] = &entity.Table{ID: other, TenantID: "t2", ClientID: "default"}
	_, err = f.uc.Create(context.Background(), cashier, dto.CreateOrderRequest{Table: other, Items: twoPlates()})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "TABLE_DOES_NOT_BELONG_TO_TENANT", domain.Code(err))
}

func TestCreate_MesaOcupada(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, dto.CreateOrderRequest{Table: tableA})

	_, err := f.uc.Create(context.Background(), cashier, dto.CreateOrderRequest{Table: tableA, Items: twoPlates()})
	assert.Equal(t, "TABLE_OCCUPIED", domain.Code(err))
	assert.Len(t, f.s.orders, 1)
	assert.Equal(t, first.ID, *f.s.tables[tableA].CurrentOrderID)
}

func TestCreate_ItemInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), cashier, dto.CreateOrderRequest{
		Items: []dto.OrderItemInput{{Name: "Bandera", Quantity: dec("0"), UnitPrice: dec("100")}},
	})
	assert.Equal(t, "INVALID_ITEM", domain.Code(err))
}

func TestCreate_TenantSuspendido(t *testing.T) {
	f := newFixture(t)
	f.s.tenants["t1"].Status = entity.TenantStatusSuspended
	_, err := f.uc.Create(context.Background(), cashier, dto.CreateOrderRequest{Items: twoPlates()})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "TENANT_SUSPENDED", domain.Code(err))
}

func TestCreate_CajeraNoPuedeApagarImpuesto(t *testing.T) {
	f := newFixture(t)
	f.s.tenants["t1"].Features.Tax.AllowToggle = ptr(false)

	res := f.create(t, dto.CreateOrderRequest{Bills: dto.BillsInput{TaxEnabled: ptr(false)}})
	assert.True(t, res.Bills.TaxEnabled)
	assert.True(t, res.Bills.Tax.Equal(dec("36")))

	res, err := f.uc.Create(context.Background(), admin, dto.CreateOrderRequest{Items: twoPlates(), Bills: dto.BillsInput{TaxEnabled: ptr(false)}})
	require.NoError(t, err)
	assert.False(t, res.Bills.TaxEnabled)
	assert.True(t, res.Bills.TotalWithTax.Equal(dec("200")))
}

func TestCreate_DescuentoSuperior(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, dto.CreateOrderRequest{Discount: dec("20")})
	assert.True(t, res.Bills.Discount.Equal(dec("20")))
	assert.True(t, res.Bills.Tax.Equal(dec("32.4")))
	assert.True(t, res.Bills.TotalWithTax.Equal(dec("212.4")))
}

func TestUpdate_ItemsOmitidosConservan(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{})

	res, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{
		Customer: &dto.CustomerInput{Name: ptr(" Ana ")},
	})
	require.NoError(t, err)
	assert.False(t, res.AutoDeleted)
	assert.Len(t, res.Order.Items, 1)
	assert.Equal(t, "Ana", res.Order.Customer.Name)
	assert.True(t, res.Order.Bills.TotalWithTax.Equal(dec("236")))
}

func TestUpdate_ItemsVaciosAutoBorra(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{Table: tableA})
	f.notif.events = nil

	res, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{Items: &[]dto.OrderItemInput{}})
	require.NoError(t, err)
	assert.True(t, res.AutoDeleted)
	assert.Nil(t, res.Order)
	assert.Empty(t, f.s.orders)
	assert.Equal(t, entity.TableStatusAvailable, f.s.tables[tableA].Status)

	require.Len(t, f.notif.events, 2)
	ev, ok := f.notif.events[0].payload.(OrderUpdatedEvent)
	require.True(t, ok)
	assert.True(t, ev.Deleted)
}

func TestUpdate_ItemsVaciosEnCompletada(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{OrderStatus: "Completado"})

	_, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{Items: &[]dto.OrderItemInput{}})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "ORDER_COMPLETED", domain.Code(err))
	assert.Len(t, f.s.orders, 1)
}

func TestUpdate_ItemsVaciosEnListoConserva(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{Table: tableA})
	_, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{OrderStatus: ptr("Listo")})
	require.NoError(t, err)

	res, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{Items: &[]dto.OrderItemInput{}})
	require.NoError(t, err)
	assert.False(t, res.AutoDeleted)
	require.NotNil(t, res.Order)
	assert.Equal(t, entity.OrderStatusReady, res.Order.OrderStatus)
	assert.Empty(t, res.Order.Items)
	assert.True(t, res.Order.Bills.TotalWithTax.IsZero())

	require.Contains(t, f.s.orders, o.ID)
	assert.Empty(t, f.s.orders[o.ID].Items)
	assert.Equal(t, entity.TableStatusOccupied, f.s.tables[tableA].Status)
}

func TestUpdate_TransicionInvalida(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{OrderStatus: "Cancelled"})

	_, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{OrderStatus: ptr("In Progress")})
	assert.Equal(t, "INVALID_TRANSITION", domain.Code(err))

	// mismo estado terminal: se permite editar datos del cliente
	_, err = f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{
		OrderStatus: ptr("Cancelado"), Customer: &dto.CustomerInput{Phone: ptr("809-555-0000")},
	})
	assert.NoError(t, err)
}

func TestUpdate_OrdenDeOtroCliente(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{})
	other := cashier
	other.ClientID = "sucursal-2"
	_, err := f.uc.Update(context.Background(), other, o.ID, dto.UpdateOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_CambioDeMesa(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{Table: tableA})

	res, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{Table: ptr(tableB)})
	require.NoError(t, err)
	require.NotNil(t, res.Order.TableID)
	assert.Equal(t, tableB, *res.Order.TableID)
	assert.Equal(t, entity.TableStatusAvailable, f.s.tables[tableA].Status)
	assert.Nil(t, f.s.tables[tableA].CurrentOrderID)
	assert.Equal(t, o.ID, *f.s.tables[tableB].CurrentOrderID)

	res, err = f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{Table: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, res.Order.TableID)
	assert.Equal(t, entity.TableStatusAvailable, f.s.tables[tableB].Status)
}

func TestUpdate_CambioAMesaOcupadaNoPersiste(t *testing.T) {
	f := newFixture(t)
	o1 := f.create(t, dto.CreateOrderRequest{Table: tableA})
	o2 := f.create(t, dto.CreateOrderRequest{Table: tableB})

	_, err := f.uc.Update(context.Background(), cashier, o2.ID, dto.UpdateOrderRequest{Table: ptr(tableA)})
	assert.Equal(t, "TABLE_OCCUPIED", domain.Code(err))
	assert.Equal(t, o1.ID, *f.s.tables[tableA].CurrentOrderID)
	assert.Equal(t, o2.ID, *f.s.tables[tableB].CurrentOrderID)
	assert.Equal(t, tableB, *f.s.orders[o2.ID].TableID)
}

func TestUpdate_CompletarLiberaMesaDescuentaYFactura(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{Table: tableA})

	res, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{OrderStatus: ptr("Completed")})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, res.Order.OrderStatus)
	assert.Equal(t, entity.TableStatusAvailable, f.s.tables[tableA].Status)
	assert.Equal(t, []string{o.ID}, f.rec.calls)
	assert.True(t, res.Order.InventoryDeducted)
	assert.Equal(t, []string{o.ID}, f.inv.generated)
	assert.Contains(t, res.Order.InvoiceURL, "tenant_t1/orders/invoice_"+o.ID+".pdf")
	assert.Equal(t, "tenant_t1/orders/invoice_"+o.ID+".pdf", f.s.orders[o.ID].InvoicePath)

	// repetir el estado no vuelve a descontar
	_, err = f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{OrderStatus: ptr("Completado")})
	require.NoError(t, err)
	assert.Len(t, f.rec.calls, 1)
}

func TestUpdate_CancelarLiberaMesa(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{Table: tableA})
	require.Equal(t, entity.TableStatusOccupied, f.s.tables[tableA].Status)

	res, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{OrderStatus: ptr("Cancelado")})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, res.Order.OrderStatus)

	tbl := f.s.tables[tableA]
	assert.Equal(t, entity.TableStatusAvailable, tbl.Status)
	assert.Nil(t, tbl.CurrentOrderID)
	assert.Empty(t, f.rec.calls)
	assert.Empty(t, f.inv.generated)
}

func TestUpdate_FallaDeInventarioNoBloquea(t *testing.T) {
	f := newFixture(t)
	f.rec.err = domain.NewError(domain.ErrInsufficientStock, "INSUFFICIENT_STOCK", "Stock insuficiente")
	f.inv.err = errors.New("s3 caído")
	o := f.create(t, dto.CreateOrderRequest{})

	res, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{OrderStatus: ptr("Completado")})
	require.NoError(t, err)
	assert.False(t, res.Order.InventoryDeducted)
	assert.Empty(t, res.Order.InvoiceURL)
	assert.Equal(t, entity.OrderStatusCompleted, f.s.orders[o.ID].Status)
}

func TestUpdate_NCFSeEmiteUnaVez(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{})
	req := dto.UpdateOrderRequest{Fiscal: &dto.FiscalInput{Requested: ptr(true), NCFType: "b01"}}

	res, err := f.uc.Update(context.Background(), cashier, o.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "B0100000001", res.Order.NCFNumber)
	assert.Equal(t, "B01", res.Order.Fiscal.NCFType)
	assert.Equal(t, "00000001", res.Order.Fiscal.InternalNumber)
	assert.Equal(t, "001", res.Order.Fiscal.EmissionPoint)
	assert.Equal(t, "Principal", res.Order.Fiscal.BranchName)
	require.NotNil(t, res.Order.Fiscal.IssuedAt)
	assert.Equal(t, fixedNow, *res.Order.Fiscal.IssuedAt)

	res, err = f.uc.Update(context.Background(), cashier, o.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "B0100000001", res.Order.NCFNumber)
	assert.Equal(t, 1, f.alloc.ncfCalls)

	// retirar la solicitud no borra un NCF emitido
	res, err = f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{Fiscal: &dto.FiscalInput{Requested: ptr(false)}})
	require.NoError(t, err)
	assert.Equal(t, "B0100000001", res.Order.NCFNumber)
	assert.Equal(t, "B0100000001", f.s.orders[o.ID].Fiscal.NCFNumber)
}

func TestUpdate_NCFEnOrdenCompletadaGeneraFactura(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{OrderStatus: "Completado"})

	res, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{Fiscal: &dto.FiscalInput{Requested: ptr(true)}})
	require.NoError(t, err)
	assert.Equal(t, "B0200000001", res.Order.NCFNumber)
	assert.Empty(t, f.rec.calls)
	assert.Equal(t, []string{o.ID}, f.inv.generated)
	assert.NotNil(t, res.Order.Fiscal.PrintedAt)
}

func TestUpdate_FiscalDeshabilitadoLimpia(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{})
	f.s.orders[o.ID].Fiscal = entity.FiscalSnapshot{Requested: true, NCFType: "B01"}
	f.s.tenants["t1"].FiscalEnabled = false

	res, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{Fiscal: &dto.FiscalInput{Requested: ptr(true)}})
	require.NoError(t, err)
	assert.False(t, res.Order.Fiscal.Requested)
	assert.Empty(t, res.Order.Fiscal.NCFType)
	assert.Zero(t, f.alloc.ncfCalls)
}

func TestUpdate_FiscalDeshabilitadoLimpiaNCFEmitido(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{})
	req := dto.UpdateOrderRequest{Fiscal: &dto.FiscalInput{Requested: ptr(true)}}

	res, err := f.uc.Update(context.Background(), cashier, o.ID, req)
	require.NoError(t, err)
	require.Equal(t, "B0200000001", res.Order.NCFNumber)

	f.s.tenants["t1"].FiscalEnabled = false
	res, err = f.uc.Update(context.Background(), cashier, o.ID, req)
	require.NoError(t, err)
	assert.False(t, res.Order.Fiscal.Requested)
	assert.Empty(t, res.Order.NCFNumber)
	assert.Empty(t, res.Order.Fiscal.NCFType)
	assert.Zero(t, res.Order.Fiscal.InternalSeq)
	assert.Equal(t, 1, f.alloc.ncfCalls)

	stored := f.s.orders[o.ID].Fiscal
	assert.False(t, stored.Requested)
	assert.Empty(t, stored.NCFNumber)

	got, err := f.uc.Get(context.Background(), cashier, o.ID)
	require.NoError(t, err)
	assert.False(t, got.Fiscal.Requested)
}

func TestUpdate_SolicitudFiscalNoPermitida(t *testing.T) {
	f := newFixture(t)
	f.s.tenants["t1"].FiscalAllowReq = false
	o := f.create(t, dto.CreateOrderRequest{})
	req := dto.UpdateOrderRequest{Fiscal: &dto.FiscalInput{Requested: ptr(true)}}

	_, err := f.uc.Update(context.Background(), cashier, o.ID, req)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "FISCAL_REQUEST_NOT_ALLOWED", domain.Code(err))

	res, err := f.uc.Update(context.Background(), admin, o.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "B0200000001", res.Order.NCFNumber)
}

func TestUpdate_TipoNCFInvalido(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{})
	_, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{
		Fiscal: &dto.FiscalInput{Requested: ptr(true), NCFType: "X9"},
	})
	assert.Equal(t, "INVALID_NCF_TYPE", domain.Code(err))
	assert.Zero(t, f.alloc.ncfCalls)
}

func TestUpdate_FallaDeAsignacionNoPersiste(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{})
	f.alloc.failNCF = domain.Conflict("NCF_UNAVAILABLE", "Sin NCF disponibles")

	_, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{
		OrderStatus: ptr("Listo"),
		Fiscal:      &dto.FiscalInput{Requested: ptr(true)},
	})
	assert.Equal(t, "NCF_UNAVAILABLE", domain.Code(err))
	stored := f.s.orders[o.ID]
	assert.Equal(t, entity.OrderStatusInProgress, stored.Status)
	assert.False(t, stored.Fiscal.Requested)
}

func TestUpdate_FallaDelNumeroInternoNoPersiste(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{})
	f.alloc.failInt = domain.NotFound("TENANT_NOT_FOUND", "Tenant no encontrado")

	_, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{Fiscal: &dto.FiscalInput{Requested: ptr(true)}})
	require.Error(t, err)
	assert.Equal(t, 1, f.alloc.ncfCalls)
	assert.Empty(t, f.s.orders[o.ID].Fiscal.NCFNumber)
}

func TestUpdate_FallaDeTransaccionNoEmite(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{Table: tableA})
	f.notif.events = nil
	f.s.failTx = errors.New("conexión perdida")

	_, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{
		OrderStatus: ptr("Completado"),
		Fiscal:      &dto.FiscalInput{Requested: ptr(true)},
	})
	require.Error(t, err)
	assert.Empty(t, f.notif.events)
	assert.Empty(t, f.rec.calls)
	assert.Empty(t, f.s.orders[o.ID].Fiscal.NCFNumber)
	assert.Equal(t, entity.TableStatusOccupied, f.s.tables[tableA].Status)
}

func TestUpdate_CarreraDeNCFConservaElExistente(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{})
	f.s.stampLost = &entity.FiscalSnapshot{Requested: true, NCFType: "B02", NCFNumber: "B0200000099", InternalNumber: "00000050"}

	res, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{Fiscal: &dto.FiscalInput{Requested: ptr(true)}})
	require.NoError(t, err)
	assert.Equal(t, "B0200000099", res.Order.NCFNumber)
	assert.Equal(t, "B0200000099", f.s.orders[o.ID].Fiscal.NCFNumber)
	assert.Equal(t, "00000050", f.s.orders[o.ID].Fiscal.InternalNumber)
}

func TestUpdate_CambioDeCanal(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{})

	_, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{OrderSource: ptr("UBEREATS")})
	assert.Equal(t, "SOURCE_DISABLED_UBEREATS", domain.Code(err))

	res, err := f.uc.Update(context.Background(), cashier, o.ID, dto.UpdateOrderRequest{OrderSource: ptr("PedidosYa")})
	require.NoError(t, err)
	assert.Equal(t, entity.SourcePedidosYa, res.Order.OrderSource)
	assert.True(t, res.Order.CommissionAmount.Equal(dec("47.2")))
}

func TestDelete_Idempotente(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{Table: tableA})

	deleted, err := f.uc.Delete(context.Background(), cashier, o.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, entity.TableStatusAvailable, f.s.tables[tableA].Status)

	deleted, err = f.uc.Delete(context.Background(), cashier, o.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestIdNoUUID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Get(ctx, cashier, "no-es-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "ORDER_NOT_FOUND", domain.Code(err))

	_, err = f.uc.Update(ctx, cashier, "no-es-uuid", dto.UpdateOrderRequest{})
	assert.Equal(t, "ORDER_NOT_FOUND", domain.Code(err))

	deleted, err := f.uc.Delete(ctx, cashier, "no-es-uuid")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDelete_CompletadaRechazada(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{OrderStatus: "Completado"})
	_, err := f.uc.Delete(context.Background(), cashier, o.ID)
	assert.Equal(t, "ORDER_COMPLETED", domain.Code(err))
}

func TestList_FiltraPorEstado(t *testing.T) {
	f := newFixture(t)
	f.create(t, dto.CreateOrderRequest{})
	f.create(t, dto.CreateOrderRequest{OrderStatus: "Ready"})

	all, err := f.uc.List(context.Background(), cashier, "", dto.PageRequest{Limit: 20})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	ready, err := f.uc.List(context.Background(), cashier, "Ready", dto.PageRequest{Limit: 20})
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, entity.OrderStatusReady, ready[0].OrderStatus)
}

func TestDeductInventory_RequiereCompletada(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, dto.CreateOrderRequest{})
	_, err := f.uc.DeductInventory(context.Background(), cashier, o.ID)
	assert.Equal(t, "ORDER_NOT_COMPLETED", domain.Code(err))

	done := f.create(t, dto.CreateOrderRequest{OrderStatus: "Completado"})
	res, err := f.uc.DeductInventory(context.Background(), cashier, done.ID)
	require.NoError(t, err)
	assert.True(t, res.Deducted)
}

func TestInvoiceURL(t *testing.T) {
	f := newFixture(t)
	open := f.create(t, dto.CreateOrderRequest{})
	_, err := f.uc.InvoiceURL(context.Background(), cashier, open.ID)
	assert.Equal(t, "INVOICE_NOT_FOUND", domain.Code(err))

	done := f.create(t, dto.CreateOrderRequest{OrderStatus: "Completado"})
	res, err := f.uc.InvoiceURL(context.Background(), cashier, done.ID)
	require.NoError(t, err)
	assert.Contains(t, res.InvoiceURL, "sig=1")

	res, err = f.uc.InvoiceURL(context.Background(), cashier, done.ID)
	require.NoError(t, err)
	assert.Contains(t, res.InvoiceURL, "sig=2")
	assert.Len(t, f.inv.generated, 1)
}
