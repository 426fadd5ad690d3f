package order

import (
	"context"
	"strings"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/billing"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
)

// Update aplica un cambio parcial sobre la orden.
//
// Orden de los pasos: tenant y orden actual, auto-borrado, transición, items y montos, canal,
// comprobante fiscal (se asigna después de validar todo y antes de la transacción), persistencia
// de la orden y sus mesas en una transacción y, ya confirmada, los efectos de completar y los eventos.
func (uc *UseCase) Update(ctx context.Context, actor Actor, id string, in dto.UpdateOrderRequest) (*dto.UpdateOrderResponse, error) {
	tenant, err := uc.loadTenant(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	s := billing.ResolveSettings(tenant, uc.defaults)

	current, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	// items: [] explícito anula la orden En Progreso o Cancelada; en Listo se guarda vacía
	if in.Items != nil && len(*in.Items) == 0 && entity.IsEditableStatus(current.Status) {
		if err := uc.remove(ctx, actor, current); err != nil {
			return nil, err
		}
		return &dto.UpdateOrderResponse{AutoDeleted: true}, nil
	}
	if in.Items != nil && len(*in.Items) == 0 && current.Status == entity.OrderStatusCompleted {
		return nil, domain.Conflict("ORDER_COMPLETED", "Una orden completada no se puede vaciar")
	}

	next := *current
	if in.OrderStatus != nil {
		next.Status = billing.NormalizeStatus(*in.OrderStatus)
	}
	if current.IsTerminal() && next.Status != current.Status {
		return nil, domain.Conflict("INVALID_TRANSITION",
			"La orden está "+current.Status+" y no puede pasar a "+next.Status)
	}

	if in.Items != nil {
		if next.Items, err = billing.NormalizeItems(toLineInputs(*in.Items)); err != nil {
			return nil, err
		}
	}
	if in.Customer != nil {
		if in.Customer.Name != nil {
			next.Customer.Name = strings.TrimSpace(*in.Customer.Name)
		}
		if in.Customer.Phone != nil {
			next.Customer.Phone = strings.TrimSpace(*in.Customer.Phone)
		}
		if in.Customer.Guests != nil {
			next.Customer.Guests = *in.Customer.Guests
		}
	}
	if in.PaymentMethod != nil && strings.TrimSpace(*in.PaymentMethod) != "" {
		next.PaymentMethod = strings.TrimSpace(*in.PaymentMethod)
	}
	if in.Table != nil {
		t := strings.TrimSpace(*in.Table)
		switch {
		case t == "":
			next.TableID = nil
		case current.TableID == nil || *current.TableID != t:
			if err := uc.checkTable(ctx, actor, t); err != nil {
				return nil, err
			}
			next.TableID = &t
		}
	}

	source, rate, err := resolveChannel(s, in.OrderSource, current)
	if err != nil {
		return nil, err
	}
	next.Source = source

	canToggle := s.TaxAllowToggle || entity.IsManager(actor.Role)
	next.Bills, next.Commission, err = price(s, next.Items,
		resolveDiscount(s, in.Bills, &current.Bills),
		resolveTip(in.Bills, &current.Bills),
		resolveTaxEnabled(s, in.Bills, &current.Bills, canToggle),
		rate,
	)
	if err != nil {
		return nil, err
	}

	issue, err := uc.resolveFiscal(ctx, actor, s, in.Fiscal, current, &next)
	if err != nil {
		return nil, err
	}
	// a partir de aquí los números asignados solo se pierden como hueco registrado
	if issue {
		if err := uc.allocate(ctx, s, &next); err != nil {
			return nil, err
		}
	}

	clearFiscal := !s.FiscalEnabled && current.Fiscal.Issued()
	allocated := next.Fiscal
	gapLogged := false
	next.UpdatedAt = uc.now()
	err = uc.txRunner.RunOrder(ctx, func(orders repository.OrderRepository, tables repository.TableRepository) error {
		if issue {
			lost, err := uc.stamp(ctx, orders, &next)
			gapLogged = lost
			if err != nil {
				return err
			}
		}
		if err := orders.Update(ctx, &next); err != nil {
			return err
		}
		if clearFiscal {
			if err := orders.ClearFiscal(ctx, next.TenantID, next.ID); err != nil {
				return err
			}
		}
		return applyTables(ctx, tables, actor, current, &next)
	})
	if err != nil {
		if issue && !gapLogged {
			uc.logGap(next.TenantID, allocated, err)
		}
		return nil, err
	}

	if clearFiscal {
		uc.log.Order(next.TenantID, next.ID).Warn().Str("ncf_number", current.Fiscal.NCFNumber).
			Msg("facturación fiscal apagada: snapshot fiscal limpiado, ncf_number queda como registro")
	}

	completed := next.Status == entity.OrderStatusCompleted
	if completed && (current.Status != entity.OrderStatusCompleted || issue) {
		uc.complete(ctx, actor, &next, current.Status != entity.OrderStatusCompleted)
	}

	uc.log.Info().Str("tenant_id", next.TenantID).Str("order_id", next.ID).
		Str("from", current.Status).Str("to", next.Status).Bool("ncf_issued", issue).
		Msg("orden actualizada")
	uc.notify(ctx, next.TenantID, next.ID, next.Status, next.TableID, false)
	return &dto.UpdateOrderResponse{Order: ToOrderResponse(&next)}, nil
}

// applyTables libera la mesa anterior si esta orden la ocupaba y ocupa la nueva mientras la orden
// siga abierta. Completar o cancelar siempre libera.
func applyTables(ctx context.Context, tables repository.TableRepository, actor Actor, current, next *entity.Order) error {
	prev := current.TableID
	if next.IsTerminal() {
		if prev != nil {
			if _, err := tables.Release(ctx, actor.TenantID, actor.ClientID, *prev, current.ID); err != nil {
				return err
			}
		}
		if next.TableID != nil && (prev == nil || *prev != *next.TableID) {
			if _, err := tables.Release(ctx, actor.TenantID, actor.ClientID, *next.TableID, current.ID); err != nil {
				return err
			}
		}
		return nil
	}
	if sameTable(prev, next.TableID) {
		return nil
	}
	if prev != nil {
		if _, err := tables.Release(ctx, actor.TenantID, actor.ClientID, *prev, current.ID); err != nil {
			return err
		}
	}
	if next.TableID != nil {
		return occupy(ctx, tables, actor, *next.TableID, current.ID)
	}
	return nil
}

func sameTable(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// complete efectos de completar la orden, todos de mejor esfuerzo: descuento de inventario
// (solo en la transición) y factura PDF.
func (uc *UseCase) complete(ctx context.Context, actor Actor, o *entity.Order, transition bool) {
	log := uc.log.Order(o.TenantID, o.ID)
	if transition && uc.reconciler != nil {
		res, err := uc.reconciler.DeductForOrder(ctx, o.TenantID, o.ID, actor.UserID)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("code", domain.Code(err)).Msg("descuento de inventario falló; reintentar manualmente")
		case res != nil:
			o.InventoryDeducted = res.Deducted || res.AlreadyDeducted
		}
	}
	if uc.invoices == nil {
		return
	}
	if err := uc.generateInvoice(ctx, o); err != nil {
		log.Warn().Err(err).Msg("no se pudo generar la factura")
	}
}

// generateInvoice sube el PDF y guarda su ruta, URL y fecha de impresión en la orden.
func (uc *UseCase) generateInvoice(ctx context.Context, o *entity.Order) error {
	art, err := uc.invoices.Generate(ctx, o.TenantID, o.ID)
	if err != nil {
		return err
	}
	printedAt := uc.now()
	if err := uc.orderRepo.SetInvoice(ctx, o.TenantID, o.ID, art.Path, art.URL, printedAt); err != nil {
		return err
	}
	o.InvoicePath = art.Path
	o.InvoiceURL = art.URL
	o.Fiscal.PrintedAt = &printedAt
	return nil
}
