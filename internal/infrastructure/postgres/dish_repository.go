package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
)

var _ repository.DishRepository = (*DishRepo)(nil)

// DishRepo implementación de DishRepository sobre PostgreSQL.
type DishRepo struct {
	q Querier
}

// NewDishRepository construye el adaptador de platos.
func NewDishRepository(q Querier) *DishRepo {
	return &DishRepo{q: q}
}

const dishColumns = `id, tenant_id, client_id, name, category, price, sell_mode, weight_unit, price_per_lb, recipe, archived, created_at, updated_at`

// Create persiste un plato.
func (r *DishRepo) Create(ctx context.Context, d *entity.Dish) error {
	recipe, err := recipeJSON(d.Recipe)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx,
		`INSERT INTO dishes (`+dishColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		d.ID, d.TenantID, d.ClientID, d.Name, d.Category, d.Price, d.SellMode, d.WeightUnit, d.PricePerLb,
		recipe, d.Archived, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dish: %w", err)
	}
	return nil
}

// GetByID obtiene un plato del tenant. (nil, nil) si no existe.
func (r *DishRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Dish, error) {
	d, err := scanDish(r.q.QueryRow(ctx, `SELECT `+dishColumns+` FROM dishes WHERE id = $1 AND tenant_id = $2`, id, tenantID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dish: %w", err)
	}
	return d, nil
}

// GetByIDs platos indexados por id; los inexistentes simplemente no aparecen.
func (r *DishRepo) GetByIDs(ctx context.Context, tenantID string, ids []string) (map[string]*entity.Dish, error) {
	out := make(map[string]*entity.Dish, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+dishColumns+` FROM dishes WHERE tenant_id = $1 AND id::text = ANY($2)`,
		tenantID, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("get dishes by ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dish: %w", err)
		}
		out[d.ID] = d
	}
	return out, rows.Err()
}

// List platos del alcance por categoría y nombre.
func (r *DishRepo) List(ctx context.Context, tenantID, clientID string, includeArchived bool) ([]*entity.Dish, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+dishColumns+` FROM dishes
		WHERE tenant_id = $1 AND client_id = $2 AND ($3 OR NOT archived)
		ORDER BY category, name`,
		tenantID, clientID, includeArchived,
	)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Dish
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dish: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// CountActive platos no archivados del tenant (límite del plan).
func (r *DishRepo) CountActive(ctx context.Context, tenantID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM dishes WHERE tenant_id = $1 AND NOT archived`, tenantID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count dishes: %w", err)
	}
	return n, nil
}

// Update reemplaza los datos editables del plato.
func (r *DishRepo) Update(ctx context.Context, d *entity.Dish) error {
	recipe, err := recipeJSON(d.Recipe)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx,
		`UPDATE dishes SET name = $4, category = $5, price = $6, sell_mode = $7, weight_unit = $8,
			price_per_lb = $9, recipe = $10, updated_at = $11
		WHERE id = $1 AND tenant_id = $2 AND client_id = $3`,
		d.ID, d.TenantID, d.ClientID, d.Name, d.Category, d.Price, d.SellMode, d.WeightUnit, d.PricePerLb, recipe, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update dish: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Archive baja lógica del plato.
func (r *DishRepo) Archive(ctx context.Context, tenantID, clientID, id string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE dishes SET archived = true, updated_at = now() WHERE id = $1 AND tenant_id = $2 AND client_id = $3 AND NOT archived`,
		id, tenantID, clientID,
	)
	if err != nil {
		return false, fmt.Errorf("archive dish: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func recipeJSON(lines []entity.RecipeLine) ([]byte, error) {
	if lines == nil {
		lines = []entity.RecipeLine{}
	}
	return toJSON(lines)
}

func scanDish(row pgx.Row) (*entity.Dish, error) {
	var (
		d      entity.Dish
		recipe []byte
	)
	err := row.Scan(&d.ID, &d.TenantID, &d.ClientID, &d.Name, &d.Category, &d.Price, &d.SellMode, &d.WeightUnit,
		&d.PricePerLb, &recipe, &d.Archived, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := fromJSON(recipe, &d.Recipe); err != nil {
		return nil, err
	}
	return &d, nil
}
