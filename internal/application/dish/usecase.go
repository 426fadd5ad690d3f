package dish

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

const (
	sellModeUnit   = "unit"
	sellModeWeight = "weight"
)

// UseCase menú del restaurante con receta por plato.
type UseCase struct {
	dishRepo   repository.DishRepository
	tenantRepo repository.TenantRepository
	log        *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(dishRepo repository.DishRepository, tenantRepo repository.TenantRepository, log *logger.Logger) *UseCase {
	return &UseCase{dishRepo: dishRepo, tenantRepo: tenantRepo, log: log.Component("dish")}
}

// Create alta de plato; los archivados no cuentan para el tope del plan.
func (uc *UseCase) Create(ctx context.Context, tenantID, clientID string, in dto.CreateDishRequest) (*dto.DishResponse, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	if name == "" || category == "" {
		return nil, domain.Validation("MISSING_FIELDS", "name, price y category son obligatorios")
	}
	d := &entity.Dish{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		ClientID:   clientID,
		Name:       name,
		Category:   category,
		Price:      in.Price,
		SellMode:   in.SellMode,
		WeightUnit: in.WeightUnit,
		PricePerLb: in.PricePerLb,
	}
	if err := normalizeSale(d); err != nil {
		return nil, err
	}
	recipe, err := toRecipe(in.Recipe)
	if err != nil {
		return nil, err
	}
	d.Recipe = recipe

	tenant, err := uc.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.NotFound("TENANT_NOT_FOUND", "Tenant no encontrado")
	}
	if limit := entity.LimitsForPlan(tenant.Plan).MaxDishes; limit != nil {
		n, err := uc.dishRepo.CountActive(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		if n >= *limit {
			return nil, domain.NewError(domain.ErrPlanLimit, "DISH_LIMIT_REACHED",
				fmt.Sprintf("El plan %s permite %d platos", tenant.Plan, *limit))
		}
	}

	now := time.Now()
	d.CreatedAt, d.UpdatedAt = now, now
	if err := uc.dishRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", tenantID).Str("dish_id", d.ID).Str("name", d.Name).Msg("plato creado")
	return ToDishResponse(d), nil
}

// Get plato del alcance, archivado o no.
func (uc *UseCase) Get(ctx context.Context, tenantID, clientID, id string) (*dto.DishResponse, error) {
	d, err := uc.load(ctx, tenantID, clientID, id)
	if err != nil {
		return nil, err
	}
	return ToDishResponse(d), nil
}

// List menú; includeArchived agrega los archivados.
func (uc *UseCase) List(ctx context.Context, tenantID, clientID string, includeArchived bool) ([]*dto.DishResponse, error) {
	list, err := uc.dishRepo.List(ctx, tenantID, clientID, includeArchived)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.DishResponse, 0, len(list))
	for _, d := range list {
		out = append(out, ToDishResponse(d))
	}
	return out, nil
}

// Update cambio parcial. Las órdenes ya creadas conservan su precio.
func (uc *UseCase) Update(ctx context.Context, tenantID, clientID, id string, in dto.UpdateDishRequest) (*dto.DishResponse, error) {
	d, err := uc.load(ctx, tenantID, clientID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if d.Name = strings.TrimSpace(*in.Name); d.Name == "" {
			return nil, domain.Validation("MISSING_FIELDS", "name es obligatorio")
		}
	}
	if in.Category != nil {
		if d.Category = strings.TrimSpace(*in.Category); d.Category == "" {
			return nil, domain.Validation("MISSING_FIELDS", "category es obligatorio")
		}
	}
	if in.Price != nil {
		d.Price = *in.Price
	}
	if in.SellMode != nil {
		d.SellMode = *in.SellMode
	}
	if in.WeightUnit != nil {
		d.WeightUnit = *in.WeightUnit
	}
	if in.PricePerLb != nil {
		d.PricePerLb = *in.PricePerLb
	}
	if err := normalizeSale(d); err != nil {
		return nil, err
	}
	if in.Recipe != nil {
		if d.Recipe, err = toRecipe(*in.Recipe); err != nil {
			return nil, err
		}
	}
	d.UpdatedAt = time.Now()
	if err := uc.dishRepo.Update(ctx, d); err != nil {
		return nil, err
	}
	return ToDishResponse(d), nil
}

// Archive baja lógica; el historial de órdenes sigue apuntando al plato.
func (uc *UseCase) Archive(ctx context.Context, tenantID, clientID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.NotFound("DISH_NOT_FOUND", "Plato no encontrado")
	}
	ok, err := uc.dishRepo.Archive(ctx, tenantID, clientID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("DISH_NOT_FOUND", "Plato no encontrado")
	}
	uc.log.Info().Str("tenant_id", tenantID).Str("dish_id", id).Msg("plato archivado")
	return nil
}

func (uc *UseCase) load(ctx context.Context, tenantID, clientID, id string) (*entity.Dish, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NotFound("DISH_NOT_FOUND", "Plato no encontrado")
	}
	d, err := uc.dishRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if d == nil || d.ClientID != clientID {
		return nil, domain.NotFound("DISH_NOT_FOUND", "Plato no encontrado")
	}
	return d, nil
}

// normalizeSale aplica defaults de modo de venta y valida precios.
func normalizeSale(d *entity.Dish) error {
	if d.SellMode == "" {
		d.SellMode = sellModeUnit
	}
	switch d.SellMode {
	case sellModeUnit:
		d.WeightUnit = ""
		if !d.Price.IsPositive() {
			return domain.Validation("INVALID_PRICE", "price debe ser mayor que 0")
		}
	case sellModeWeight:
		if d.WeightUnit == "" {
			d.WeightUnit = "lb"
		}
		if !d.PricePerLb.IsPositive() {
			return domain.Validation("INVALID_PRICE", "pricePerLb debe ser mayor que 0")
		}
		if d.Price.IsNegative() {
			return domain.Validation("INVALID_PRICE", "price no puede ser negativo")
		}
	default:
		return domain.Validation("INVALID_SELL_MODE", "sellMode debe ser unit o weight")
	}
	return nil
}

func toRecipe(in []dto.RecipeLineInput) ([]entity.RecipeLine, error) {
	out := make([]entity.RecipeLine, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, r := range in {
		if _, err := uuid.Parse(r.InventoryItemID); err != nil {
			return nil, domain.Validation("INVALID_RECIPE", "inventoryItemId inválido")
		}
		if !r.Qty.GreaterThan(decimal.Zero) {
			return nil, domain.Validation("INVALID_RECIPE", "qty debe ser mayor que 0")
		}
		if seen[r.InventoryItemID] {
			return nil, domain.Validation("INVALID_RECIPE", "Insumo repetido en la receta")
		}
		seen[r.InventoryItemID] = true
		out = append(out, entity.RecipeLine{
			InventoryItemID: r.InventoryItemID,
			Qty:             r.Qty,
			Unit:            strings.TrimSpace(r.Unit),
		})
	}
	return out, nil
}

// ToDishResponse mapea un plato a su DTO.
func ToDishResponse(d *entity.Dish) *dto.DishResponse {
	recipe := make([]dto.RecipeLineResponse, 0, len(d.Recipe))
	for _, r := range d.Recipe {
		recipe = append(recipe, dto.RecipeLineResponse{InventoryItemID: r.InventoryItemID, Qty: r.Qty, Unit: r.Unit})
	}
	return &dto.DishResponse{
		ID:         d.ID,
		Name:       d.Name,
		Category:   d.Category,
		Price:      d.Price,
		SellMode:   d.SellMode,
		WeightUnit: d.WeightUnit,
		PricePerLb: d.PricePerLb,
		Recipe:     recipe,
		Archived:   d.Archived,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}
