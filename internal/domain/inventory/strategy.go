package inventory

import (
	"strings"
	"unicode"

	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Strategy forma de descontar una línea vendida.
type Strategy int

const (
	// StrategyNone la línea no descuenta nada.
	StrategyNone Strategy = iota
	// StrategyRecipe descuenta cada insumo de la receta del plato.
	StrategyRecipe
	// StrategyNameMatch descuenta el insumo cuyo nombre coincide con el de la línea.
	StrategyNameMatch
)

func (s Strategy) String() string {
	switch s {
	case StrategyRecipe:
		return "recipe"
	case StrategyNameMatch:
		return "name_match"
	default:
		return "none"
	}
}

// ChooseStrategy receta si el plato la tiene; si no, coincidencia por nombre cuando la línea trae nombre.
func ChooseStrategy(item entity.OrderItem, dish *entity.Dish) Strategy {
	if dish.HasRecipe() {
		return StrategyRecipe
	}
	if NormalizeName(item.Name) != "" {
		return StrategyNameMatch
	}
	return StrategyNone
}

// Deduction cantidad a descontar de un insumo.
type Deduction struct {
	ItemID string
	Qty    decimal.Decimal
}

// RecipeDeductions receta × cantidad vendida, acumulando insumos repetidos en el orden de aparición.
func RecipeDeductions(dish *entity.Dish, qty decimal.Decimal) []Deduction {
	idx := map[string]int{}
	var out []Deduction
	for _, r := range dish.Recipe {
		if r.InventoryItemID == "" || !r.Qty.IsPositive() {
			continue
		}
		amount := r.Qty.Mul(qty)
		if i, ok := idx[r.InventoryItemID]; ok {
			out[i].Qty = out[i].Qty.Add(amount)
			continue
		}
		idx[r.InventoryItemID] = len(out)
		out = append(out, Deduction{ItemID: r.InventoryItemID, Qty: amount})
	}
	return out
}

// MatchByName busca el insumo con el mismo nombre normalizado. Nil si no hay.
func MatchByName(name string, items []*entity.InventoryItem) *entity.InventoryItem {
	key := NormalizeName(name)
	if key == "" {
		return nil
	}
	for _, it := range items {
		if it != nil && !it.Archived && NormalizeName(it.Name) == key {
			return it
		}
	}
	return nil
}

// NormalizeName minúsculas, sin tildes y con espacios colapsados ("  Café  Con Leche" -> "cafe con leche").
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}
