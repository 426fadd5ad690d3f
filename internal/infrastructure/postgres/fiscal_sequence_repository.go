package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
)

var _ repository.FiscalSequenceRepository = (*FiscalSequenceRepo)(nil)

// FiscalSequenceRepo contadores fiscales sobre PostgreSQL.
// Debe usarse con el pool: cada asignación es su propia sentencia autocommit.
type FiscalSequenceRepo struct {
	q Querier
}

// NewFiscalSequenceRepository construye el adaptador.
func NewFiscalSequenceRepository(q Querier) *FiscalSequenceRepo {
	return &FiscalSequenceRepo{q: q}
}

// AllocateNCF incremento condicional en una sola sentencia. El bloqueo de fila del UPDATE
// serializa a los concurrentes; el que llega después re-evalúa current_seq <= max_seq.
func (r *FiscalSequenceRepo) AllocateNCF(ctx context.Context, tenantID, docType string) (*entity.FiscalSequence, error) {
	query := `
		UPDATE tenant_fiscal_sequences s
		SET current_seq = s.current_seq + 1, updated_at = now()
		FROM tenants t
		WHERE s.tenant_id = $1 AND s.doc_type = $2
			AND t.id = s.tenant_id AND t.fiscal_enabled
			AND s.active AND s.max_seq > 0 AND s.current_seq <= s.max_seq
		RETURNING s.tenant_id, s.doc_type, s.start_seq, s.current_seq, s.max_seq, s.active, s.expires_at, s.updated_at`
	var s entity.FiscalSequence
	err := r.q.QueryRow(ctx, query, tenantID, docType).Scan(
		&s.TenantID, &s.DocType, &s.Start, &s.Current, &s.Max, &s.Active, &s.ExpiresAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("allocate ncf: %w", err)
	}
	return &s, nil
}

// AllocateInternal incrementa el número interno de factura del tenant.
func (r *FiscalSequenceRepo) AllocateInternal(ctx context.Context, tenantID string) (int64, error) {
	var next int64
	err := r.q.QueryRow(ctx,
		`UPDATE tenants SET next_invoice_number = next_invoice_number + 1 WHERE id = $1 RETURNING next_invoice_number`,
		tenantID,
	).Scan(&next)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("allocate internal invoice number: %w", err)
	}
	return next, nil
}

const fiscalSequenceColumns = `tenant_id, doc_type, start_seq, current_seq, max_seq, active, expires_at, updated_at`

// Get obtiene la secuencia de un tipo. (nil, nil) si no está configurada.
func (r *FiscalSequenceRepo) Get(ctx context.Context, tenantID, docType string) (*entity.FiscalSequence, error) {
	var s entity.FiscalSequence
	err := r.q.QueryRow(ctx,
		`SELECT `+fiscalSequenceColumns+` FROM tenant_fiscal_sequences WHERE tenant_id = $1 AND doc_type = $2`,
		tenantID, docType,
	).Scan(&s.TenantID, &s.DocType, &s.Start, &s.Current, &s.Max, &s.Active, &s.ExpiresAt, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal sequence: %w", err)
	}
	return &s, nil
}

// ListByTenant secuencias del tenant ordenadas por tipo.
func (r *FiscalSequenceRepo) ListByTenant(ctx context.Context, tenantID string) ([]*entity.FiscalSequence, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+fiscalSequenceColumns+` FROM tenant_fiscal_sequences WHERE tenant_id = $1 ORDER BY doc_type`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list fiscal sequences: %w", err)
	}
	defer rows.Close()
	var list []*entity.FiscalSequence
	for rows.Next() {
		var s entity.FiscalSequence
		if err := rows.Scan(&s.TenantID, &s.DocType, &s.Start, &s.Current, &s.Max, &s.Active, &s.ExpiresAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan fiscal sequence: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Upsert configura el rango. Reconfigurar nunca retrocede current_seq: solo puede avanzar.
func (r *FiscalSequenceRepo) Upsert(ctx context.Context, s *entity.FiscalSequence) error {
	query := `
		INSERT INTO tenant_fiscal_sequences (tenant_id, doc_type, start_seq, current_seq, max_seq, active, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (tenant_id, doc_type) DO UPDATE SET
			start_seq = EXCLUDED.start_seq,
			current_seq = GREATEST(tenant_fiscal_sequences.current_seq, EXCLUDED.current_seq),
			max_seq = EXCLUDED.max_seq,
			active = EXCLUDED.active,
			expires_at = EXCLUDED.expires_at,
			updated_at = now()`
	_, err := r.q.Exec(ctx, query, s.TenantID, s.DocType, s.Start, s.Current, s.Max, s.Active, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("upsert fiscal sequence: %w", err)
	}
	return nil
}
