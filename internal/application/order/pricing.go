package order

import (
	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/billing"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

func toLineInputs(items []dto.OrderItemInput) []billing.LineInput {
	out := make([]billing.LineInput, 0, len(items))
	for _, it := range items {
		out = append(out, billing.LineInput{
			DishID:     it.DishID,
			Name:       it.Name,
			QtyType:    it.QtyType,
			WeightUnit: it.WeightUnit,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
		})
	}
	return out
}

// resolveTaxEnabled: taxEnabled entrante, luego el guardado, luego tax entrante > 0,
// luego tax guardado > 0, y por último true. Con el impuesto apagado en el tenant siempre false.
func resolveTaxEnabled(s billing.Settings, in *dto.BillsInput, existing *entity.Bills, canToggle bool) bool {
	if !s.TaxEnabled {
		return false
	}
	if in != nil && canToggle && in.TaxEnabled != nil {
		return *in.TaxEnabled
	}
	if existing != nil {
		return existing.TaxEnabled
	}
	if in != nil && canToggle && in.Tax != nil {
		return in.Tax.IsPositive()
	}
	return true
}

// resolveTip: tipEnabled=false anula; si no tipAmount, tip o el valor guardado.
func resolveTip(in *dto.BillsInput, existing *entity.Bills) decimal.Decimal {
	if in != nil {
		if in.TipEnabled != nil && !*in.TipEnabled {
			return decimal.Zero
		}
		if in.TipAmount != nil {
			return *in.TipAmount
		}
		if in.Tip != nil {
			return *in.Tip
		}
	}
	if existing != nil {
		return existing.Tip
	}
	return decimal.Zero
}

// resolveDiscount descuento entrante o el guardado; 0 si el tenant no permite descuentos.
func resolveDiscount(s billing.Settings, in *dto.BillsInput, existing *entity.Bills) decimal.Decimal {
	if !s.DiscountEnabled {
		return decimal.Zero
	}
	if in != nil && in.Discount != nil {
		return *in.Discount
	}
	if existing != nil {
		return existing.Discount
	}
	return decimal.Zero
}

// price aplica el motor de montos y la comisión del canal.
func price(s billing.Settings, items []entity.OrderItem, discount, tip decimal.Decimal, taxEnabled bool, rate decimal.Decimal) (entity.Bills, entity.Commission, error) {
	bills, err := billing.Compute(billing.BillInput{
		Items:      items,
		Discount:   discount,
		TaxEnabled: taxEnabled,
		TaxRate:    s.TaxRate,
		Tip:        tip,
		TipEnabled: s.TipEnabled,
	})
	if err != nil {
		return entity.Bills{}, entity.Commission{}, err
	}
	return bills, billing.Commission(bills.TotalBeforeTip, bills.TotalWithTax, rate), nil
}

// resolveChannel canal y tasa finales. Un cambio de canal se valida contra el tenant; las órdenes
// de delivery antiguas sin tasa registrada la toman del tenant si el canal sigue activo.
func resolveChannel(s billing.Settings, incoming *string, current *entity.Order) (string, decimal.Decimal, error) {
	currentSource := billing.NormalizeSource(current.Source)
	rate := decimal.Zero
	if current.Commission.Rate != nil {
		rate = *current.Commission.Rate
	}
	if incoming != nil {
		next := billing.NormalizeSource(*incoming)
		if next != currentSource {
			r, err := s.ChannelRate(next)
			if err != nil {
				return "", decimal.Zero, err
			}
			return next, r, nil
		}
		return currentSource, rate, nil
	}
	isDelivery := currentSource == entity.SourcePedidosYa || currentSource == entity.SourceUberEats
	if isDelivery && (current.Commission.Rate == nil || current.Commission.Rate.IsZero()) {
		if r, err := s.ChannelRate(currentSource); err == nil {
			rate = r
		}
	}
	return currentSource, rate, nil
}
