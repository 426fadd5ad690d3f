package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo implementación de InventoryItemRepository (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador de insumos. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

const inventoryItemColumns = `id, tenant_id, client_id, name, unit, cost, stock_current, stock_min, archived, created_at, updated_at`

// Create persiste un insumo.
func (r *InventoryItemRepo) Create(ctx context.Context, it *entity.InventoryItem) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO inventory_items (`+inventoryItemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		it.ID, it.TenantID, it.ClientID, it.Name, it.Unit, it.Cost, it.StockCurrent, it.StockMin, it.Archived, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inventory item: %w", err)
	}
	return nil
}

// GetByID obtiene un insumo del tenant. (nil, nil) si no existe.
func (r *InventoryItemRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.InventoryItem, error) {
	it, err := scanInventoryItem(r.q.QueryRow(ctx,
		`SELECT `+inventoryItemColumns+` FROM inventory_items WHERE id = $1 AND tenant_id = $2`, id, tenantID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return it, nil
}

// GetForUpdate obtiene el insumo y bloquea la fila para update (SELECT FOR UPDATE).
func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.InventoryItem, error) {
	it, err := scanInventoryItem(r.q.QueryRow(ctx,
		`SELECT `+inventoryItemColumns+` FROM inventory_items WHERE id = $1 AND tenant_id = $2 FOR UPDATE`, id, tenantID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item for update: %w", err)
	}
	return it, nil
}

// List insumos del alcance por nombre.
func (r *InventoryItemRepo) List(ctx context.Context, tenantID, clientID string, includeArchived bool) ([]*entity.InventoryItem, error) {
	return r.list(ctx,
		`SELECT `+inventoryItemColumns+` FROM inventory_items
		WHERE tenant_id = $1 AND client_id = $2 AND ($3 OR NOT archived) ORDER BY name`,
		tenantID, clientID, includeArchived)
}

// ListLowStock insumos activos con stock en o bajo el mínimo.
func (r *InventoryItemRepo) ListLowStock(ctx context.Context, tenantID, clientID string) ([]*entity.InventoryItem, error) {
	return r.list(ctx,
		`SELECT `+inventoryItemColumns+` FROM inventory_items
		WHERE tenant_id = $1 AND client_id = $2 AND NOT archived AND stock_min > 0 AND stock_current <= stock_min
		ORDER BY stock_current - stock_min, name`,
		tenantID, clientID)
}

func (r *InventoryItemRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		it, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// Update cambia datos descriptivos. Stock y costo solo cambian con movimientos (UpdateStock).
func (r *InventoryItemRepo) Update(ctx context.Context, it *entity.InventoryItem) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE inventory_items SET name = $3, unit = $4, stock_min = $5, archived = $6, updated_at = now()
		WHERE id = $1 AND tenant_id = $2`,
		it.ID, it.TenantID, it.Name, it.Unit, it.StockMin, it.Archived,
	)
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock fija stock y costo promedio.
func (r *InventoryItemRepo) UpdateStock(ctx context.Context, tenantID, id string, stock, cost decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE inventory_items SET stock_current = $3, cost = $4, updated_at = now() WHERE id = $1 AND tenant_id = $2`,
		id, tenantID, stock, cost,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanInventoryItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(&it.ID, &it.TenantID, &it.ClientID, &it.Name, &it.Unit, &it.Cost, &it.StockCurrent, &it.StockMin,
		&it.Archived, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
