package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

const movementColumns = `id, tenant_id, client_id, item_id, order_id, type, qty, unit_cost, cost_amount,
	stock_before, stock_after, note, created_by, created_at`

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	query := `INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TenantID, m.ClientID, m.ItemID, m.OrderID, m.Type, m.Qty, m.UnitCost, m.CostAmount,
		m.StockBefore, m.StockAfter, m.Note, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// List libro de movimientos del alcance, más recientes primero.
func (r *InventoryMovementRepo) List(ctx context.Context, tenantID, clientID string, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	where := []string{"tenant_id = $1", "client_id = $2"}
	args := []any{tenantID, clientID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ItemID != "" {
		add("item_id = $%d", f.ItemID)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at < $%d", *f.To)
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM inventory_movements WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		movementColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(&m.ID, &m.TenantID, &m.ClientID, &m.ItemID, &m.OrderID, &m.Type, &m.Qty, &m.UnitCost,
			&m.CostAmount, &m.StockBefore, &m.StockAfter, &m.Note, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// SumByType total de cantidades (valor absoluto) y costos de un tipo en [from, to).
func (r *InventoryMovementRepo) SumByType(ctx context.Context, tenantID, clientID, movType string, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var qty, cost decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(ABS(qty)), 0), COALESCE(SUM(cost_amount), 0)
		FROM inventory_movements
		WHERE tenant_id = $1 AND client_id = $2 AND type = $3 AND created_at >= $4 AND created_at < $5`,
		tenantID, clientID, movType, from, to,
	).Scan(&qty, &cost)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("sum inventory movements: %w", err)
	}
	return qty, cost, nil
}
