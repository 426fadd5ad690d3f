package fiscal

import (
	"context"
	"time"

	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/fiscal"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

// NCF número fiscal asignado.
type NCF struct {
	Type      string
	Number    string
	Seq       int64
	ExpiresAt *time.Time
}

// InternalNumber número interno de factura asignado.
type InternalNumber struct {
	Seq    int64
	Number string
}

// Allocator entrega números fiscales usando los contadores atómicos del repositorio.
// Nunca lee y luego escribe: cada asignación es una sola sentencia.
type Allocator struct {
	seqRepo repository.FiscalSequenceRepository
	log     *logger.Logger
}

// NewAllocator construye el asignador.
func NewAllocator(seqRepo repository.FiscalSequenceRepository, log *logger.Logger) *Allocator {
	return &Allocator{seqRepo: seqRepo, log: log.Component("fiscal_allocator")}
}

// AllocateNCF asigna el siguiente NCF del tipo. NCF_UNAVAILABLE si el tenant no factura,
// el tipo está inactivo o el rango se agotó.
func (a *Allocator) AllocateNCF(ctx context.Context, tenantID, docType string) (NCF, error) {
	t, err := fiscal.NormalizeDocType(docType)
	if err != nil {
		return NCF{}, err
	}
	seq, err := a.seqRepo.AllocateNCF(ctx, tenantID, t)
	if err != nil {
		return NCF{}, err
	}
	if seq == nil {
		return NCF{}, fiscal.NCFUnavailable(t)
	}
	assigned := seq.Current - 1
	number, err := fiscal.FormatNCF(t, assigned)
	if err != nil {
		a.log.Error().Err(err).
			Bool("fiscal_gap", true).
			Str("tenant_id", tenantID).
			Str("ncf_type", t).
			Int64("seq", assigned).
			Msg("secuencia consumida fuera de rango")
		return NCF{}, err
	}
	return NCF{Type: t, Number: number, Seq: assigned, ExpiresAt: seq.ExpiresAt}, nil
}

// AllocateInternal asigna el siguiente número interno de factura del tenant.
func (a *Allocator) AllocateInternal(ctx context.Context, tenantID string) (InternalNumber, error) {
	next, err := a.seqRepo.AllocateInternal(ctx, tenantID)
	if err != nil {
		return InternalNumber{}, err
	}
	if next == 0 {
		return InternalNumber{}, domain.NotFound("TENANT_NOT_FOUND", "Tenant no encontrado")
	}
	seq := fiscal.AssignedFromNext(next)
	return InternalNumber{Seq: seq, Number: fiscal.FormatInternalNumber(seq)}, nil
}

// Expiration vencimiento configurado para el tipo; nil si no hay rango o no vence.
func (a *Allocator) Expiration(ctx context.Context, tenantID, docType string) (*time.Time, error) {
	t, err := fiscal.NormalizeDocType(docType)
	if err != nil {
		return nil, err
	}
	seq, err := a.seqRepo.Get(ctx, tenantID, t)
	if err != nil || seq == nil {
		return nil, err
	}
	return seq.ExpiresAt, nil
}
