package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo implementación de TenantRepository sobre PostgreSQL.
type TenantRepo struct {
	q Querier
}

// NewTenantRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTenantRepository(q Querier) *TenantRepo {
	return &TenantRepo{q: q}
}

const tenantColumns = `id, name, plan, status, business, features, fiscal_enabled, fiscal_allow_request,
	fiscal_default_type, emission_point, branch_name, next_invoice_number, created_at, updated_at`

// Create persiste un tenant nuevo.
func (r *TenantRepo) Create(ctx context.Context, t *entity.Tenant) error {
	business, err := toJSON(t.Business)
	if err != nil {
		return err
	}
	features, err := toJSON(t.Features)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO tenants (` + tenantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.q.Exec(ctx, query,
		t.ID, t.Name, t.Plan, t.Status, business, features, t.FiscalEnabled, t.FiscalAllowReq,
		t.FiscalDefaultType, t.EmissionPoint, t.BranchName, t.NextInvoiceNumber, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

// GetByID obtiene un tenant. (nil, nil) si no existe.
func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	var (
		t                  entity.Tenant
		business, features []byte
	)
	err := r.q.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id).Scan(
		&t.ID, &t.Name, &t.Plan, &t.Status, &business, &features, &t.FiscalEnabled, &t.FiscalAllowReq,
		&t.FiscalDefaultType, &t.EmissionPoint, &t.BranchName, &t.NextInvoiceNumber, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	if err := fromJSON(business, &t.Business); err != nil {
		return nil, err
	}
	if err := fromJSON(features, &t.Features); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateFeatures reemplaza los flags del tenant.
func (r *TenantRepo) UpdateFeatures(ctx context.Context, id string, f entity.TenantFeatures) error {
	features, err := toJSON(f)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `UPDATE tenants SET features = $2, updated_at = now() WHERE id = $1`, id, features)
	if err != nil {
		return fmt.Errorf("update tenant features: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateFiscal actualiza la configuración fiscal y los datos del negocio. No toca next_invoice_number.
func (r *TenantRepo) UpdateFiscal(ctx context.Context, t *entity.Tenant) error {
	business, err := toJSON(t.Business)
	if err != nil {
		return err
	}
	query := `
		UPDATE tenants SET fiscal_enabled = $2, fiscal_allow_request = $3, fiscal_default_type = $4,
			emission_point = $5, branch_name = $6, business = $7, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		t.ID, t.FiscalEnabled, t.FiscalAllowReq, t.FiscalDefaultType, t.EmissionPoint, t.BranchName, business,
	)
	if err != nil {
		return fmt.Errorf("update tenant fiscal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
