package billing

import (
	"strings"

	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Defaults valores de entorno usados cuando el tenant no define el suyo.
type Defaults struct {
	TaxRate       decimal.Decimal
	PedidosYaRate decimal.Decimal
	UberEatsRate  decimal.Decimal
	PaymentMethod string
	EmissionPoint string
	BranchName    string
	FiscalDocType string
}

// Channel canal de delivery resuelto.
type Channel struct {
	Enabled bool
	Rate    decimal.Decimal
}

// Settings configuración del tenant resuelta una sola vez por request.
//
// Reglas de default:
//   - tax, discount y tip: habilitados salvo que el tenant los apague explícitamente.
//   - tasa de impuesto: la del tenant si existe, si no la del entorno.
//   - PedidosYa / UberEats: deshabilitados salvo enabled=true; tasa del tenant o la del entorno.
//   - fiscal: solo si el interruptor maestro del tenant está encendido.
type Settings struct {
	TaxEnabled         bool
	TaxAllowToggle     bool
	TaxRate            decimal.Decimal
	DiscountEnabled    bool
	TipEnabled         bool
	PedidosYa          Channel
	UberEats           Channel
	FiscalEnabled      bool
	FiscalAllowRequest bool
	FiscalDocType      string
	EmissionPoint      string
	BranchName         string
	PaymentMethod      string
}

// ResolveSettings aplana los flags del tenant con sus defaults.
func ResolveSettings(t *entity.Tenant, d Defaults) Settings {
	f := t.Features
	s := Settings{
		TaxEnabled:         boolOr(f.Tax.Enabled, true),
		TaxAllowToggle:     boolOr(f.Tax.AllowToggle, true),
		TaxRate:            decOr(f.Tax.Rate, d.TaxRate),
		DiscountEnabled:    boolOr(f.Discount.Enabled, true),
		TipEnabled:         boolOr(f.Tip.Enabled, true),
		PedidosYa:          Channel{Enabled: boolOr(f.OrderSources.PedidosYa.Enabled, false), Rate: decOr(f.OrderSources.PedidosYa.CommissionRate, d.PedidosYaRate)},
		UberEats:           Channel{Enabled: boolOr(f.OrderSources.UberEats.Enabled, false), Rate: decOr(f.OrderSources.UberEats.CommissionRate, d.UberEatsRate)},
		FiscalEnabled:      t.FiscalEnabled,
		FiscalAllowRequest: t.FiscalAllowReq,
		FiscalDocType:      firstNonEmpty(t.FiscalDefaultType, d.FiscalDocType, "B02"),
		EmissionPoint:      firstNonEmpty(t.EmissionPoint, d.EmissionPoint, "001"),
		BranchName:         firstNonEmpty(t.BranchName, d.BranchName, "Principal"),
		PaymentMethod:      firstNonEmpty(d.PaymentMethod, "Efectivo"),
	}
	return s
}

// ChannelRate devuelve la tasa de comisión del canal o SOURCE_DISABLED_<SRC> si el tenant no lo tiene activo.
func (s Settings) ChannelRate(source string) (decimal.Decimal, error) {
	switch source {
	case entity.SourcePedidosYa:
		if !s.PedidosYa.Enabled {
			return decimal.Zero, sourceDisabled(source)
		}
		return s.PedidosYa.Rate, nil
	case entity.SourceUberEats:
		if !s.UberEats.Enabled {
			return decimal.Zero, sourceDisabled(source)
		}
		return s.UberEats.Rate, nil
	default:
		return decimal.Zero, nil
	}
}

func sourceDisabled(source string) error {
	return domain.Validation("SOURCE_DISABLED_"+source, "Canal "+source+" deshabilitado para este negocio")
}

// NormalizeSource canal en mayúsculas; vacío o desconocido -> DINE_IN.
func NormalizeSource(v string) string {
	s := strings.ToUpper(strings.TrimSpace(v))
	switch s {
	case entity.SourceDineIn, entity.SourceTakeout, entity.SourcePedidosYa, entity.SourceUberEats:
		return s
	default:
		return entity.SourceDineIn
	}
}

var statusAliases = map[string]string{
	"In Progress": entity.OrderStatusInProgress,
	"Ready":       entity.OrderStatusReady,
	"Completed":   entity.OrderStatusCompleted,
	"Cancelled":   entity.OrderStatusCancelled,
	"Canceled":    entity.OrderStatusCancelled,

	entity.OrderStatusInProgress: entity.OrderStatusInProgress,
	entity.OrderStatusReady:      entity.OrderStatusReady,
	entity.OrderStatusCompleted:  entity.OrderStatusCompleted,
	entity.OrderStatusCancelled:  entity.OrderStatusCancelled,
}

// NormalizeStatus acepta alias en inglés; cualquier otro valor -> En Progreso.
func NormalizeStatus(v string) string {
	if s, ok := statusAliases[strings.TrimSpace(v)]; ok {
		return s
	}
	return entity.OrderStatusInProgress
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func decOr(d *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if d == nil {
		return def
	}
	return *d
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
