package order

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/billing"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

// UseCase ciclo de vida de la orden: montos, comprobante fiscal, mesas, inventario y eventos.
type UseCase struct {
	txRunner   TxRunner
	orderRepo  repository.OrderRepository
	tenantRepo repository.TenantRepository
	tableRepo  repository.TableRepository
	allocator  FiscalAllocator
	reconciler InventoryReconciler
	invoices   InvoiceGenerator
	notifier   Notifier
	defaults   billing.Defaults
	log        *logger.Logger
	now        func() time.Time
}

// NewUseCase construye el caso de uso. invoices y notifier pueden ser nil.
func NewUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	tenantRepo repository.TenantRepository,
	tableRepo repository.TableRepository,
	allocator FiscalAllocator,
	reconciler InventoryReconciler,
	invoices InvoiceGenerator,
	notifier Notifier,
	defaults billing.Defaults,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:   txRunner,
		orderRepo:  orderRepo,
		tenantRepo: tenantRepo,
		tableRepo:  tableRepo,
		allocator:  allocator,
		reconciler: reconciler,
		invoices:   invoices,
		notifier:   notifier,
		defaults:   defaults,
		log:        log.Component("order"),
		now:        time.Now,
	}
}

// Create valida canal, mesa e items, calcula montos y persiste la orden ocupando la mesa.
func (uc *UseCase) Create(ctx context.Context, actor Actor, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	tenant, err := uc.loadTenant(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	s := billing.ResolveSettings(tenant, uc.defaults)

	source := billing.NormalizeSource(in.OrderSource)
	rate, err := s.ChannelRate(source)
	if err != nil {
		return nil, err
	}

	var tableID *string
	if t := strings.TrimSpace(in.Table); t != "" {
		if err := uc.checkTable(ctx, actor, t); err != nil {
			return nil, err
		}
		tableID = &t
	}

	items, err := billing.NormalizeItems(toLineInputs(in.Items))
	if err != nil {
		return nil, err
	}

	bills := &in.Bills
	if bills.Discount == nil && !in.Discount.IsZero() {
		d := in.Discount
		bills.Discount = &d
	}
	canToggle := s.TaxAllowToggle || entity.IsManager(actor.Role)
	b, commission, err := price(s, items,
		resolveDiscount(s, bills, nil),
		resolveTip(bills, nil),
		resolveTaxEnabled(s, bills, nil, canToggle),
		rate,
	)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	o := &entity.Order{
		ID:       uuid.New().String(),
		TenantID: actor.TenantID,
		ClientID: actor.ClientID,
		UserID:   actor.UserID,
		Customer: entity.CustomerDetails{
			Name:   strings.TrimSpace(deref(in.Customer.Name)),
			Phone:  strings.TrimSpace(deref(in.Customer.Phone)),
			Guests: derefInt(in.Customer.Guests),
		},
		Items:         items,
		Status:        billing.NormalizeStatus(in.OrderStatus),
		Source:        source,
		PaymentMethod: firstNonEmpty(in.PaymentMethod, s.PaymentMethod),
		TableID:       tableID,
		Bills:         b,
		Commission:    commission,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = uc.txRunner.RunOrder(ctx, func(orders repository.OrderRepository, tables repository.TableRepository) error {
		if err := orders.Create(ctx, o); err != nil {
			return err
		}
		if o.TableID == nil || o.IsTerminal() {
			return nil
		}
		return occupy(ctx, tables, actor, *o.TableID, o.ID)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("tenant_id", o.TenantID).Str("order_id", o.ID).Str("source", o.Source).
		Str("total", o.Bills.TotalWithTax.StringFixed(2)).Msg("orden creada")
	uc.notify(ctx, o.TenantID, o.ID, o.Status, o.TableID, false)
	return ToOrderResponse(o), nil
}

// Get orden del alcance tenant+client.
func (uc *UseCase) Get(ctx context.Context, actor Actor, id string) (*dto.OrderResponse, error) {
	o, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(o), nil
}

// List órdenes más recientes primero; status opcional (acepta alias en inglés).
func (uc *UseCase) List(ctx context.Context, actor Actor, status string, page dto.PageRequest) ([]*dto.OrderResponse, error) {
	f := repository.OrderFilter{Limit: page.Limit, Offset: page.Offset}
	if strings.TrimSpace(status) != "" {
		f.Status = billing.NormalizeStatus(status)
	}
	list, err := uc.orderRepo.List(ctx, actor.TenantID, actor.ClientID, f)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, ToOrderResponse(o))
	}
	return out, nil
}

// Delete borra la orden y libera su mesa. Idempotente: una orden inexistente no es error.
func (uc *UseCase) Delete(ctx context.Context, actor Actor, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	o, err := uc.orderRepo.GetByID(ctx, actor.TenantID, actor.ClientID, id)
	if err != nil {
		return false, err
	}
	if o == nil {
		return false, nil
	}
	if o.Status == entity.OrderStatusCompleted {
		return false, domain.Conflict("ORDER_COMPLETED", "Una orden completada no se puede eliminar")
	}
	if err := uc.remove(ctx, actor, o); err != nil {
		return false, err
	}
	return true, nil
}

// remove libera la mesa (si esta orden la ocupa), borra la orden y avisa.
func (uc *UseCase) remove(ctx context.Context, actor Actor, o *entity.Order) error {
	err := uc.txRunner.RunOrder(ctx, func(orders repository.OrderRepository, tables repository.TableRepository) error {
		if o.TableID != nil {
			if _, err := tables.Release(ctx, actor.TenantID, actor.ClientID, *o.TableID, o.ID); err != nil {
				return err
			}
		}
		_, err := orders.Delete(ctx, actor.TenantID, actor.ClientID, o.ID)
		return err
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("order_id", o.ID).Msg("orden eliminada")
	uc.notify(ctx, actor.TenantID, o.ID, o.Status, o.TableID, true)
	return nil
}

// DeductInventory reintento manual del descuento de inventario de una orden completada.
func (uc *UseCase) DeductInventory(ctx context.Context, actor Actor, id string) (*dto.DeductionResponse, error) {
	o, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if o.Status != entity.OrderStatusCompleted {
		return nil, domain.Conflict("ORDER_NOT_COMPLETED", "Solo se descuenta inventario de órdenes completadas")
	}
	return uc.reconciler.DeductForOrder(ctx, actor.TenantID, o.ID, actor.UserID)
}

// InvoiceURL enlace temporal a la factura. Si la orden completada aún no la tiene se genera.
func (uc *UseCase) InvoiceURL(ctx context.Context, actor Actor, id string) (*dto.InvoiceURLResponse, error) {
	if uc.invoices == nil {
		return nil, domain.Conflict("INVOICE_DISABLED", "Almacenamiento de facturas no configurado")
	}
	o, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if o.InvoicePath == "" {
		if o.Status != entity.OrderStatusCompleted {
			return nil, domain.NotFound("INVOICE_NOT_FOUND", "La orden no tiene factura")
		}
		if err := uc.generateInvoice(ctx, o); err != nil {
			return nil, err
		}
		return &dto.InvoiceURLResponse{OrderID: o.ID, InvoiceURL: o.InvoiceURL}, nil
	}
	url, err := uc.invoices.PresignURL(ctx, o.InvoicePath)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceURLResponse{OrderID: o.ID, InvoiceURL: url}, nil
}

// InvoicePDF PDF de la factura generado al vuelo.
func (uc *UseCase) InvoicePDF(ctx context.Context, actor Actor, id string) ([]byte, error) {
	if uc.invoices == nil {
		return nil, domain.Conflict("INVOICE_DISABLED", "Generación de facturas no configurada")
	}
	o, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return uc.invoices.Render(ctx, actor.TenantID, o.ID)
}

func (uc *UseCase) loadTenant(ctx context.Context, tenantID string) (*entity.Tenant, error) {
	t, err := uc.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound("TENANT_NOT_FOUND", "Tenant no encontrado")
	}
	if !t.IsActive() {
		return nil, domain.NewError(domain.ErrForbidden, "TENANT_SUSPENDED", "El negocio está suspendido")
	}
	return t, nil
}

func (uc *UseCase) load(ctx context.Context, actor Actor, id string) (*entity.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NotFound("ORDER_NOT_FOUND", "Orden no encontrada")
	}
	o, err := uc.orderRepo.GetByID(ctx, actor.TenantID, actor.ClientID, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("ORDER_NOT_FOUND", "Orden no encontrada")
	}
	return o, nil
}

// checkTable la mesa debe existir en el tenant+client del actor.
func (uc *UseCase) checkTable(ctx context.Context, actor Actor, tableID string) error {
	if _, err := uuid.Parse(tableID); err != nil {
		return domain.Validation("INVALID_TABLE_ID", "Id de mesa inválido")
	}
	t, err := uc.tableRepo.GetByID(ctx, actor.TenantID, actor.ClientID, tableID)
	if err != nil {
		return err
	}
	if t == nil {
		return domain.NewError(domain.ErrForbidden, "TABLE_DOES_NOT_BELONG_TO_TENANT", "La mesa no pertenece al negocio")
	}
	return nil
}

func occupy(ctx context.Context, tables repository.TableRepository, actor Actor, tableID, orderID string) error {
	ok, err := tables.Occupy(ctx, actor.TenantID, actor.ClientID, tableID, orderID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Conflict("TABLE_OCCUPIED", "La mesa está ocupada por otra orden")
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
