package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
)

var _ repository.TableRepository = (*TableRepo)(nil)

// TableRepo implementación de TableRepository sobre PostgreSQL (usable con pool o tx).
type TableRepo struct {
	q Querier
}

// NewTableRepository construye el adaptador de mesas.
func NewTableRepository(q Querier) *TableRepo {
	return &TableRepo{q: q}
}

const tableColumns = `id, tenant_id, client_id, table_no, seats, status, current_order_id, created_at, updated_at`

// Create persiste una mesa. Número repetido en el mismo alcance -> ErrDuplicate.
func (r *TableRepo) Create(ctx context.Context, t *entity.Table) error {
	query := `INSERT INTO restaurant_tables (` + tableColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TenantID, t.ClientID, t.TableNo, t.Seats, t.Status, t.CurrentOrderID, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert table: %w", err)
	}
	return nil
}

// GetByID obtiene la mesa dentro del alcance. (nil, nil) si no existe.
func (r *TableRepo) GetByID(ctx context.Context, tenantID, clientID, id string) (*entity.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM restaurant_tables WHERE id = $1 AND tenant_id = $2 AND client_id = $3`
	t, err := scanTable(r.q.QueryRow(ctx, query, id, tenantID, clientID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get table: %w", err)
	}
	return t, nil
}

// List mesas del alcance ordenadas por número.
func (r *TableRepo) List(ctx context.Context, tenantID, clientID string) ([]*entity.Table, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+tableColumns+` FROM restaurant_tables WHERE tenant_id = $1 AND client_id = $2 ORDER BY table_no`,
		tenantID, clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()
	var list []*entity.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// CountByTenant total de mesas del tenant (límite del plan).
func (r *TableRepo) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM restaurant_tables WHERE tenant_id = $1`, tenantID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tables: %w", err)
	}
	return n, nil
}

// Update cambia número y asientos. El estado solo se toca vía Occupy/Release.
func (r *TableRepo) Update(ctx context.Context, t *entity.Table) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE restaurant_tables SET table_no = $4, seats = $5, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND client_id = $3`,
		t.ID, t.TenantID, t.ClientID, t.TableNo, t.Seats,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra la mesa solo si está libre.
func (r *TableRepo) Delete(ctx context.Context, tenantID, clientID, id string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM restaurant_tables WHERE id = $1 AND tenant_id = $2 AND client_id = $3 AND current_order_id IS NULL`,
		id, tenantID, clientID,
	)
	if err != nil {
		return false, fmt.Errorf("delete table: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Occupy asigna la orden a la mesa si está libre o ya es suya.
func (r *TableRepo) Occupy(ctx context.Context, tenantID, clientID, tableID, orderID string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE restaurant_tables SET status = $5, current_order_id = $4, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND client_id = $3
			AND (current_order_id IS NULL OR current_order_id = $4)`,
		tableID, tenantID, clientID, orderID, entity.TableStatusOccupied,
	)
	if err != nil {
		return false, fmt.Errorf("occupy table: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Release libera la mesa solo si la ocupa esta orden.
func (r *TableRepo) Release(ctx context.Context, tenantID, clientID, tableID, orderID string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE restaurant_tables SET status = $5, current_order_id = NULL, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND client_id = $3 AND current_order_id = $4`,
		tableID, tenantID, clientID, orderID, entity.TableStatusAvailable,
	)
	if err != nil {
		return false, fmt.Errorf("release table: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ForceRelease liberación administrativa.
func (r *TableRepo) ForceRelease(ctx context.Context, tenantID, clientID, tableID string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE restaurant_tables SET status = $4, current_order_id = NULL, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND client_id = $3`,
		tableID, tenantID, clientID, entity.TableStatusAvailable,
	)
	if err != nil {
		return false, fmt.Errorf("force release table: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanTable(row pgx.Row) (*entity.Table, error) {
	var t entity.Table
	err := row.Scan(&t.ID, &t.TenantID, &t.ClientID, &t.TableNo, &t.Seats, &t.Status, &t.CurrentOrderID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
