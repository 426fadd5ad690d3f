package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
)

const ymdLayout = "2006-01-02"

// ItemUseCase catálogo de insumos, libro de movimientos y resumen de merma.
type ItemUseCase struct {
	itemRepo repository.InventoryItemRepository
	movRepo  repository.InventoryMovementRepository
	loc      *time.Location
}

// NewItemUseCase construye el caso de uso. Los rangos por día se interpretan en loc.
func NewItemUseCase(itemRepo repository.InventoryItemRepository, movRepo repository.InventoryMovementRepository, loc *time.Location) *ItemUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &ItemUseCase{itemRepo: itemRepo, movRepo: movRepo, loc: loc}
}

// Create alta de insumo.
func (uc *ItemUseCase) Create(ctx context.Context, tenantID, clientID string, in dto.CreateInventoryItemRequest) (*dto.InventoryItemResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Validation("NAME_REQUIRED", "name es obligatorio")
	}
	if in.Cost.IsNegative() || in.StockCurrent.IsNegative() || in.StockMin.IsNegative() {
		return nil, domain.Validation("INVALID_QUANTITY", "Valores negativos no permitidos")
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = "unidad"
	}
	now := time.Now()
	item := &entity.InventoryItem{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		ClientID:     clientID,
		Name:         name,
		Unit:         unit,
		Cost:         in.Cost,
		StockCurrent: in.StockCurrent,
		StockMin:     in.StockMin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return ToItemResponse(item), nil
}

// Get insumo del alcance.
func (uc *ItemUseCase) Get(ctx context.Context, tenantID, clientID, id string) (*dto.InventoryItemResponse, error) {
	item, err := uc.load(ctx, tenantID, clientID, id)
	if err != nil {
		return nil, err
	}
	return ToItemResponse(item), nil
}

// List insumos; includeArchived agrega los archivados.
func (uc *ItemUseCase) List(ctx context.Context, tenantID, clientID string, includeArchived bool) ([]*dto.InventoryItemResponse, error) {
	list, err := uc.itemRepo.List(ctx, tenantID, clientID, includeArchived)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InventoryItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, ToItemResponse(it))
	}
	return out, nil
}

// Update cambia datos descriptivos o archiva. El stock solo cambia con movimientos.
func (uc *ItemUseCase) Update(ctx context.Context, tenantID, clientID, id string, in dto.UpdateInventoryItemRequest) (*dto.InventoryItemResponse, error) {
	item, err := uc.load(ctx, tenantID, clientID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Validation("NAME_REQUIRED", "name es obligatorio")
		}
		item.Name = name
	}
	if in.Unit != nil && strings.TrimSpace(*in.Unit) != "" {
		item.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.StockMin != nil {
		if in.StockMin.IsNegative() {
			return nil, domain.Validation("INVALID_QUANTITY", "stockMin no puede ser negativo")
		}
		item.StockMin = *in.StockMin
	}
	if in.Archived != nil {
		item.Archived = *in.Archived
	}
	if err := uc.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	item.UpdatedAt = time.Now()
	return ToItemResponse(item), nil
}

// Archive baja lógica.
func (uc *ItemUseCase) Archive(ctx context.Context, tenantID, clientID, id string) error {
	archived := true
	_, err := uc.Update(ctx, tenantID, clientID, id, dto.UpdateInventoryItemRequest{Archived: &archived})
	return err
}

// ListMovements libro de inventario filtrado.
func (uc *ItemUseCase) ListMovements(ctx context.Context, tenantID, clientID string, f repository.MovementFilter) ([]*dto.MovementResponse, error) {
	list, err := uc.movRepo.List(ctx, tenantID, clientID, f)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out, nil
}

// WasteSummary merma de un día (dateYMD) o de un rango inclusivo [from, to]. Sin fechas = hoy.
func (uc *ItemUseCase) WasteSummary(ctx context.Context, tenantID, clientID, dateYMD, from, to string) (*dto.WasteSummaryResponse, error) {
	if dateYMD != "" {
		from, to = dateYMD, dateYMD
	}
	if from == "" && to == "" {
		from = time.Now().In(uc.loc).Format(ymdLayout)
		to = from
	}
	if from == "" || to == "" {
		return nil, domain.Validation("MISSING_DATE_RANGE", "from y to son obligatorios")
	}
	start, err := time.ParseInLocation(ymdLayout, from, uc.loc)
	if err != nil {
		return nil, domain.Validation("INVALID_DATE_RANGE", "Fecha inválida: "+from)
	}
	end, err := time.ParseInLocation(ymdLayout, to, uc.loc)
	if err != nil {
		return nil, domain.Validation("INVALID_DATE_RANGE", "Fecha inválida: "+to)
	}
	if end.Before(start) {
		return nil, domain.Validation("INVALID_DATE_RANGE", "to no puede ser anterior a from")
	}
	qty, cost, err := uc.movRepo.SumByType(ctx, tenantID, clientID, entity.MovementTypeWaste, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return &dto.WasteSummaryResponse{From: from, To: to, MermaQty: qty, MermaCost: cost}, nil
}

func (uc *ItemUseCase) load(ctx context.Context, tenantID, clientID, id string) (*entity.InventoryItem, error) {
	item, err := uc.itemRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.ClientID != clientID {
		return nil, domain.NotFound("ITEM_NOT_FOUND", "Insumo no encontrado")
	}
	return item, nil
}

// ToItemResponse mapea un insumo a su DTO.
func ToItemResponse(it *entity.InventoryItem) *dto.InventoryItemResponse {
	return &dto.InventoryItemResponse{
		ID:           it.ID,
		Name:         it.Name,
		Unit:         it.Unit,
		Cost:         it.Cost,
		StockCurrent: it.StockCurrent,
		StockMin:     it.StockMin,
		Low:          it.IsLow(),
		Archived:     it.Archived,
		CreatedAt:    it.CreatedAt,
		UpdatedAt:    it.UpdatedAt,
	}
}
