package order

import (
	"context"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/billing"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	ncf "github.com/jhoicas/pos-restaurante-api/internal/domain/fiscal"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
)

// resolveFiscal decide el snapshot fiscal de next. Devuelve true cuando hay que asignar un NCF nuevo.
//
//   - tenant sin facturación: el snapshot queda vacío y sin solicitud, aunque tenga NCF emitido.
//   - requested=false: se retira la solicitud si todavía no hay NCF.
//   - requested=true con NCF: solo se completan metadatos faltantes.
//   - requested=true sin NCF: se valida el tipo y se pide asignación.
func (uc *UseCase) resolveFiscal(ctx context.Context, actor Actor, s billing.Settings, in *dto.FiscalInput, current, next *entity.Order) (bool, error) {
	issued := current.Fiscal.Issued()
	if !s.FiscalEnabled {
		next.Fiscal = entity.FiscalSnapshot{}
		return false, nil
	}
	if in == nil || in.Requested == nil {
		return false, nil
	}
	if !*in.Requested {
		if !issued {
			next.Fiscal = entity.FiscalSnapshot{}
		}
		return false, nil
	}
	if !s.FiscalAllowRequest && !entity.IsManager(actor.Role) {
		return false, domain.NewError(domain.ErrForbidden, "FISCAL_REQUEST_NOT_ALLOWED", "Solo un administrador puede solicitar comprobante fiscal")
	}

	if issued {
		f := &next.Fiscal
		f.Requested = true
		f.NCFType = firstNonEmpty(f.NCFType, in.NCFType, s.FiscalDocType)
		f.EmissionPoint = firstNonEmpty(f.EmissionPoint, s.EmissionPoint)
		f.BranchName = firstNonEmpty(f.BranchName, s.BranchName)
		if f.ExpirationDate == nil {
			exp, err := uc.allocator.Expiration(ctx, current.TenantID, f.NCFType)
			if err != nil {
				uc.log.Warn().Err(err).Str("order_id", current.ID).Msg("no se pudo leer el vencimiento del NCF")
			}
			f.ExpirationDate = exp
		}
		return false, nil
	}

	t, err := ncf.NormalizeDocType(firstNonEmpty(in.NCFType, current.Fiscal.NCFType, s.FiscalDocType))
	if err != nil {
		return false, err
	}
	next.Fiscal.Requested = true
	next.Fiscal.NCFType = t
	return true, nil
}

// allocate pide NCF y número interno. Son contadores independientes: si el segundo falla el NCF
// queda como hueco registrado.
func (uc *UseCase) allocate(ctx context.Context, s billing.Settings, next *entity.Order) error {
	n, err := uc.allocator.AllocateNCF(ctx, next.TenantID, next.Fiscal.NCFType)
	if err != nil {
		return err
	}
	internal, err := uc.allocator.AllocateInternal(ctx, next.TenantID)
	if err != nil {
		uc.logGap(next.TenantID, entity.FiscalSnapshot{NCFType: n.Type, NCFNumber: n.Number}, err)
		return err
	}
	issuedAt := uc.now()
	next.Fiscal = entity.FiscalSnapshot{
		Requested:      true,
		NCFType:        n.Type,
		NCFNumber:      n.Number,
		IssuedAt:       &issuedAt,
		ExpirationDate: n.ExpiresAt,
		InternalSeq:    internal.Seq,
		InternalNumber: internal.Number,
		EmissionPoint:  s.EmissionPoint,
		BranchName:     s.BranchName,
		PrintedAt:      next.Fiscal.PrintedAt,
	}
	return nil
}

// stamp fija el NCF con escritura condicional. Si otra petición ganó, el número asignado aquí se
// registra como hueco y la orden conserva el existente. Devuelve true en ese caso.
func (uc *UseCase) stamp(ctx context.Context, orders repository.OrderRepository, next *entity.Order) (bool, error) {
	ok, err := orders.StampFiscal(ctx, next.TenantID, next.ID, next.Fiscal)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	uc.logGap(next.TenantID, next.Fiscal, domain.Conflict("NCF_ALREADY_STAMPED", "La orden ya tenía NCF"))
	existing, err := orders.GetForUpdate(ctx, next.TenantID, next.ID)
	if err != nil {
		return true, err
	}
	if existing == nil {
		return true, domain.NotFound("ORDER_NOT_FOUND", "Orden no encontrada")
	}
	next.Fiscal = existing.Fiscal
	return true, nil
}

func (uc *UseCase) logGap(tenantID string, f entity.FiscalSnapshot, cause error) {
	uc.log.Error().Err(cause).
		Bool("fiscal_gap", true).
		Str("tenant_id", tenantID).
		Str("ncf_type", f.NCFType).
		Str("ncf_number", f.NCFNumber).
		Int64("internal_seq", f.InternalSeq).
		Msg("número fiscal asignado y no persistido")
}
