package repository

import (
	"context"

	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
)

// TenantRepository define el puerto de persistencia para Tenant.
type TenantRepository interface {
	Create(ctx context.Context, t *entity.Tenant) error
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	UpdateFeatures(ctx context.Context, id string, f entity.TenantFeatures) error
	// UpdateFiscal actualiza interruptores fiscales, punto de emisión, sucursal y datos del negocio.
	UpdateFiscal(ctx context.Context, t *entity.Tenant) error
}

// FiscalSequenceRepository contadores fiscales por tenant.
// Las asignaciones son una sola sentencia atómica; nunca leer y luego escribir.
type FiscalSequenceRepository interface {
	// AllocateNCF incrementa Current si el tenant factura, el tipo está activo y Current <= Max.
	// Devuelve el estado posterior al incremento, o nil si el predicado no se cumplió.
	AllocateNCF(ctx context.Context, tenantID, docType string) (*entity.FiscalSequence, error)
	// AllocateInternal incrementa next_invoice_number y devuelve el valor posterior (0 si el tenant no existe).
	AllocateInternal(ctx context.Context, tenantID string) (int64, error)
	Get(ctx context.Context, tenantID, docType string) (*entity.FiscalSequence, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*entity.FiscalSequence, error)
	Upsert(ctx context.Context, s *entity.FiscalSequence) error
}
