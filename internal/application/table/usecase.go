package table

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/application/order"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

const defaultSeats = 4

// UseCase administración de mesas. La ocupación la decide la orden; aquí solo hay altas, cambios,
// bajas y la liberación administrativa.
type UseCase struct {
	tableRepo  repository.TableRepository
	tenantRepo repository.TenantRepository
	orderRepo  repository.OrderRepository
	txRunner   order.TxRunner
	notifier   order.Notifier
	log        *logger.Logger
}

// NewUseCase construye el caso de uso. notifier puede ser nil.
func NewUseCase(
	tableRepo repository.TableRepository,
	tenantRepo repository.TenantRepository,
	orderRepo repository.OrderRepository,
	txRunner order.TxRunner,
	notifier order.Notifier,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		tableRepo:  tableRepo,
		tenantRepo: tenantRepo,
		orderRepo:  orderRepo,
		txRunner:   txRunner,
		notifier:   notifier,
		log:        log.Component("table"),
	}
}

// Create alta de mesa respetando el tope del plan.
func (uc *UseCase) Create(ctx context.Context, tenantID, clientID string, in dto.CreateTableRequest) (*dto.TableResponse, error) {
	if in.TableNo <= 0 {
		return nil, domain.Validation("TABLE_NO_REQUIRED", "tableNo es obligatorio")
	}
	tenant, err := uc.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.NotFound("TENANT_NOT_FOUND", "Tenant no encontrado")
	}
	if limit := entity.LimitsForPlan(tenant.Plan).MaxTables; limit != nil {
		n, err := uc.tableRepo.CountByTenant(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		if n >= *limit {
			return nil, domain.NewError(domain.ErrPlanLimit, "TABLE_LIMIT_REACHED",
				fmt.Sprintf("El plan %s permite %d mesas", tenant.Plan, *limit))
		}
	}
	seats := in.Seats
	if seats <= 0 {
		seats = defaultSeats
	}
	now := time.Now()
	t := &entity.Table{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		ClientID:  clientID,
		TableNo:   in.TableNo,
		Seats:     seats,
		Status:    entity.TableStatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.tableRepo.Create(ctx, t); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Conflict("TABLE_ALREADY_EXISTS", fmt.Sprintf("La mesa %d ya existe", in.TableNo))
		}
		return nil, err
	}
	uc.log.Info().Str("tenant_id", tenantID).Int("table_no", t.TableNo).Msg("mesa creada")
	uc.emit(ctx, t, "")
	return ToTableResponse(t, nil), nil
}

// List mesas con el resumen de la orden que las ocupa.
func (uc *UseCase) List(ctx context.Context, tenantID, clientID string) ([]*dto.TableResponse, error) {
	list, err := uc.tableRepo.List(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.TableResponse, 0, len(list))
	for _, t := range list {
		var current *entity.Order
		if t.CurrentOrderID != nil && *t.CurrentOrderID != "" {
			current, err = uc.orderRepo.GetByID(ctx, tenantID, clientID, *t.CurrentOrderID)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, ToTableResponse(t, current))
	}
	return out, nil
}

// Update cambia número, asientos o estado. Marcar Ocupada exige la orden que la ocupa.
func (uc *UseCase) Update(ctx context.Context, tenantID, clientID, id string, in dto.UpdateTableRequest) (*dto.TableResponse, error) {
	t, err := uc.load(ctx, tenantID, clientID, id)
	if err != nil {
		return nil, err
	}
	if in.TableNo != nil {
		if *in.TableNo <= 0 {
			return nil, domain.Validation("TABLE_NO_REQUIRED", "tableNo inválido")
		}
		t.TableNo = *in.TableNo
	}
	if in.Seats != nil {
		if *in.Seats <= 0 {
			return nil, domain.Validation("INVALID_SEATS", "seats debe ser mayor que 0")
		}
		t.Seats = *in.Seats
	}

	var current *entity.Order
	if in.Status != nil {
		switch *in.Status {
		case entity.TableStatusAvailable:
			if t.IsOccupied() {
				return nil, domain.Conflict("TABLE_OCCUPIED", "Use la liberación de mesa para soltar una mesa ocupada")
			}
		case entity.TableStatusOccupied:
			if in.OrderID == nil || *in.OrderID == "" {
				return nil, domain.Validation("ORDER_REQUIRED", "Una mesa ocupada necesita la orden que la ocupa")
			}
			current, err = uc.orderRepo.GetByID(ctx, tenantID, clientID, *in.OrderID)
			if err != nil {
				return nil, err
			}
			if current == nil {
				return nil, domain.NotFound("ORDER_NOT_FOUND", "Orden no encontrada")
			}
			if current.IsTerminal() {
				return nil, domain.Conflict("ORDER_CLOSED", "La orden ya está "+current.Status)
			}
		default:
			return nil, domain.Validation("INVALID_STATUS", "Estado de mesa inválido")
		}
	}

	// número, asientos y ocupación se confirman juntos o no se confirma nada
	t.UpdatedAt = time.Now()
	err = uc.txRunner.RunOrder(ctx, func(_ repository.OrderRepository, tables repository.TableRepository) error {
		if err := tables.Update(ctx, t); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.Conflict("TABLE_ALREADY_EXISTS", fmt.Sprintf("La mesa %d ya existe", t.TableNo))
			}
			return err
		}
		if current == nil {
			return nil
		}
		ok, err := tables.Occupy(ctx, tenantID, clientID, t.ID, current.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Conflict("TABLE_OCCUPIED", "La mesa está ocupada por otra orden")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if current != nil {
		orderID := current.ID
		t.Status, t.CurrentOrderID = entity.TableStatusOccupied, &orderID
	}
	uc.emit(ctx, t, deref(t.CurrentOrderID))
	return ToTableResponse(t, current), nil
}

// Delete borra una mesa libre.
func (uc *UseCase) Delete(ctx context.Context, tenantID, clientID, id string) error {
	t, err := uc.load(ctx, tenantID, clientID, id)
	if err != nil {
		return err
	}
	if t.IsOccupied() {
		return domain.Conflict("TABLE_OCCUPIED", "No se puede borrar una mesa ocupada")
	}
	ok, err := uc.tableRepo.Delete(ctx, tenantID, clientID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Conflict("TABLE_OCCUPIED", "La mesa se ocupó mientras se borraba")
	}
	uc.log.Info().Str("tenant_id", tenantID).Int("table_no", t.TableNo).Msg("mesa eliminada")
	uc.emit(ctx, t, "")
	return nil
}

// Release liberación administrativa, sin importar qué orden la ocupe.
func (uc *UseCase) Release(ctx context.Context, tenantID, clientID, id string) (*dto.TableResponse, error) {
	t, err := uc.load(ctx, tenantID, clientID, id)
	if err != nil {
		return nil, err
	}
	previous := deref(t.CurrentOrderID)
	if _, err := uc.tableRepo.ForceRelease(ctx, tenantID, clientID, id); err != nil {
		return nil, err
	}
	t.Status, t.CurrentOrderID = entity.TableStatusAvailable, nil
	uc.log.Warn().Str("tenant_id", tenantID).Int("table_no", t.TableNo).Str("order_id", previous).
		Msg("mesa liberada manualmente")
	uc.emit(ctx, t, previous)
	return ToTableResponse(t, nil), nil
}

func (uc *UseCase) load(ctx context.Context, tenantID, clientID, id string) (*entity.Table, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NotFound("TABLE_NOT_FOUND", "Mesa no encontrada")
	}
	t, err := uc.tableRepo.GetByID(ctx, tenantID, clientID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound("TABLE_NOT_FOUND", "Mesa no encontrada")
	}
	return t, nil
}

func (uc *UseCase) emit(ctx context.Context, t *entity.Table, orderID string) {
	if uc.notifier == nil {
		return
	}
	tableID := t.ID
	uc.notifier.Emit(context.WithoutCancel(ctx), order.TenantRoom(t.TenantID), order.EventTablesUpdated, order.TablesUpdatedEvent{
		TenantID: t.TenantID, OrderID: orderID, TableID: &tableID,
	})
}

// ToTableResponse mapea la mesa y, si se conoce, la orden que la ocupa.
func ToTableResponse(t *entity.Table, current *entity.Order) *dto.TableResponse {
	res := &dto.TableResponse{
		ID:        t.ID,
		TableNo:   t.TableNo,
		Seats:     t.Seats,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if current != nil {
		res.CurrentOrder = &dto.TableOrderSummary{
			ID:           current.ID,
			CustomerName: current.Customer.Name,
			OrderStatus:  current.Status,
			TotalWithTax: current.Bills.TotalWithTax,
		}
	}
	return res
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
