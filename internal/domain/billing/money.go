package billing

import (
	"strings"

	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round2 redondea a 2 decimales, mitad lejos de cero (1.005 -> 1.01, -1.005 -> -1.01).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineInput línea tal como llega del cliente, antes de normalizar.
type LineInput struct {
	DishID     string
	Name       string
	QtyType    string
	WeightUnit string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
}

// NormalizeItems valida y calcula el precio de cada línea. No corrige valores inválidos: los rechaza.
func NormalizeItems(lines []LineInput) ([]entity.OrderItem, error) {
	items := make([]entity.OrderItem, 0, len(lines))
	for _, in := range lines {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, domain.Validation("INVALID_ITEM", "Item sin name")
		}
		if !in.Quantity.IsPositive() {
			return nil, domain.Validation("INVALID_ITEM", "Cantidad inválida para "+name)
		}
		if in.UnitPrice.IsNegative() {
			return nil, domain.Validation("INVALID_ITEM", "Precio inválido para "+name)
		}
		qtyType := strings.TrimSpace(in.QtyType)
		if qtyType == "" {
			qtyType = entity.QtyTypeUnit
		}
		if qtyType != entity.QtyTypeUnit && qtyType != entity.QtyTypeWeight {
			return nil, domain.Validation("INVALID_ITEM", "qtyType inválido para "+name)
		}
		weightUnit := strings.TrimSpace(in.WeightUnit)
		if weightUnit == "" {
			weightUnit = "lb"
		}
		items = append(items, entity.OrderItem{
			DishID:     strings.TrimSpace(in.DishID),
			Name:       name,
			QtyType:    qtyType,
			WeightUnit: weightUnit,
			Quantity:   in.Quantity,
			UnitPrice:  in.UnitPrice,
			Price:      Round2(in.UnitPrice.Mul(in.Quantity)),
		})
	}
	return items, nil
}

// BillInput entradas ya resueltas del cálculo.
type BillInput struct {
	Items      []entity.OrderItem
	Discount   decimal.Decimal
	TaxEnabled bool
	TaxRate    decimal.Decimal
	Tip        decimal.Decimal
	TipEnabled bool
}

// Compute calcula el snapshot de montos. Redondea en cada paso intermedio.
//
//	subtotal       = round2(Σ unitPrice*quantity)
//	discount       = clamp(round2(discount), 0, subtotal)
//	taxable        = round2(subtotal - discount)
//	tax            = round2(taxable * rate) si aplica
//	totalBeforeTip = round2(taxable + tax)
//	totalWithTax   = round2(totalBeforeTip + tip)
func Compute(in BillInput) (entity.Bills, error) {
	if in.TaxRate.IsNegative() {
		return entity.Bills{}, domain.Validation("INVALID_TAX_RATE", "Tasa de impuesto inválida")
	}

	subtotal := decimal.Zero
	for _, it := range in.Items {
		if !it.Quantity.IsPositive() || it.UnitPrice.IsNegative() {
			return entity.Bills{}, domain.Validation("INVALID_ITEM", "Línea inválida: "+it.Name)
		}
		subtotal = subtotal.Add(it.UnitPrice.Mul(it.Quantity))
	}
	subtotal = Round2(subtotal)

	discount := clamp(Round2(in.Discount), decimal.Zero, subtotal)
	taxable := Round2(subtotal.Sub(discount))

	tax := decimal.Zero
	if in.TaxEnabled {
		tax = Round2(taxable.Mul(in.TaxRate))
	}
	totalBeforeTip := Round2(taxable.Add(tax))

	tip := decimal.Zero
	if in.TipEnabled {
		tip = decimal.Max(Round2(in.Tip), decimal.Zero)
	}

	return entity.Bills{
		Subtotal:       subtotal,
		Discount:       discount,
		Tax:            tax,
		TaxEnabled:     in.TaxEnabled,
		TotalBeforeTip: totalBeforeTip,
		Tip:            tip,
		TotalWithTax:   Round2(totalBeforeTip.Add(tip)),
	}, nil
}

// Commission comisión del canal sobre el total con impuesto y sin propina.
func Commission(totalBeforeTip, totalWithTax, rate decimal.Decimal) entity.Commission {
	total := Round2(totalWithTax)
	r := rate
	if !r.IsPositive() {
		zero := decimal.Zero
		return entity.Commission{Rate: &zero, Amount: decimal.Zero, Net: total}
	}
	amount := Round2(Round2(totalBeforeTip).Mul(r))
	return entity.Commission{Rate: &r, Amount: amount, Net: Round2(total.Sub(amount))}
}

// Percent expresa una tasa como porcentaje (0.18 -> 18).
func Percent(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(hundred)
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
