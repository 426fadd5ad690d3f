// Package pdf dibuja la factura de la orden con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  NEGOCIO: Nombre + RNC + dirección │ Título + NCF + vence     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORDEN: id / fecha / cliente / número interno                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Descripción | Cant. | ITBIS | Precio | Valor         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Subtotal / Descuento / ITBIS / Propina / Total     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PIE: QR del NCF + leyenda                                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-restaurante-api/internal/application/invoice"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/billing"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/fiscal"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ invoice.Renderer = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa invoice.Renderer usando Maroto v2.
type MarotoPDFGenerator struct {
	loc *time.Location
}

// NewMarotoPDFGenerator construye el generador. Las fechas se imprimen en loc.
func NewMarotoPDFGenerator(loc *time.Location) *MarotoPDFGenerator {
	if loc == nil {
		loc = time.Local
	}
	return &MarotoPDFGenerator{loc: loc}
}

// RenderInvoice genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) RenderInvoice(_ context.Context, doc invoice.Document) ([]byte, error) {
	if doc.Tenant == nil || doc.Order == nil {
		return nil, fmt.Errorf("pdf: documento incompleto")
	}
	biz := businessOf(doc.Tenant)
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fiscal.DocTypeTitle(doc.Order.Fiscal.NCFType), true).
		WithAuthor(biz.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(biz, doc.Order, g.loc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(orderRow(doc.Order, g.loc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	showTax := doc.Order.Bills.TaxEnabled && doc.Order.Bills.Tax.IsPositive()
	m.AddRows(tableHeaderRow(showTax))
	m.AddRows(detailRows(doc.Order, showTax)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRows(doc.Order, doc.TaxRate)...)
	m.AddRows(footerRows(biz, doc.Order)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// businessOf datos impresos del negocio con sus valores por defecto.
func businessOf(t *entity.Tenant) entity.BusinessInfo {
	b := t.Business
	b.Name = nonEmpty(strings.TrimSpace(b.Name), nonEmpty(t.Name, "Restaurante"))
	b.RNC = nonEmpty(strings.TrimSpace(b.RNC), "N/A")
	b.Address = nonEmpty(strings.TrimSpace(b.Address), "Dirección no disponible")
	return b
}

func headerRow(biz entity.BusinessInfo, o *entity.Order, loc *time.Location) core.Row {
	left := col.New(7).Add(
		text.New(biz.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
		text.New("RNC: "+biz.RNC, props.Text{Size: 9, Top: 8, Color: colorGray}),
		text.New(biz.Address, props.Text{Size: 8, Top: 13, Color: colorGray}),
	)
	if biz.Phone != "" {
		left.Add(text.New("Tel: "+biz.Phone, props.Text{Size: 8, Top: 17, Color: colorGray}))
	}

	f := o.Fiscal
	right := col.New(5).Add(
		text.New(strings.ToUpper(fiscal.DocTypeTitle(f.NCFType)), props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
		}),
	)
	if f.Issued() {
		right.Add(text.New("NCF: "+f.NCFNumber, props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7}))
		if f.ExpirationDate != nil {
			right.Add(text.New("Vence (NCF): "+f.ExpirationDate.In(loc).Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}))
		}
	} else {
		right.Add(text.New("Gracias por su compra", props.Text{Size: 9, Align: align.Right, Top: 7}))
	}
	return row.New(22).Add(left, right)
}

func orderRow(o *entity.Order, loc *time.Location) core.Row {
	created := o.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	client := nonEmpty(strings.TrimSpace(o.Customer.Name), "Consumidor Final")
	info := fmt.Sprintf("Orden: %s   |   Fecha/Hora: %s", o.ID, created.In(loc).Format("02/01/2006 03:04:05 PM"))
	c := col.New(12).Add(
		text.New("DATOS DE LA ORDEN", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New(info, props.Text{Size: 8, Top: 6, Color: colorGray}),
		text.New("Cliente: "+client, props.Text{Size: 9, Top: 11}),
	)
	if o.Fiscal.InternalNumber != "" {
		c.Add(text.New(fmt.Sprintf("Factura interna: %s   |   Punto de emisión: %s   |   Sucursal: %s",
			o.Fiscal.InternalNumber, nonEmpty(o.Fiscal.EmissionPoint, "001"), nonEmpty(o.Fiscal.BranchName, "Principal"),
		), props.Text{Size: 8, Top: 16, Color: colorGray}))
	}
	return row.New(21).Add(c)
}

func tableHeaderRow(showTax bool) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	if !showTax {
		return row.New(8).Add(
			h("Descripción", 6, align.Left),
			h("Cant.", 2, align.Center),
			h("Precio", 2, align.Right),
			h("Valor", 2, align.Right),
		)
	}
	return row.New(8).Add(
		h("Descripción", 5, align.Left),
		h("Cant.", 1, align.Center),
		h("ITBIS", 2, align.Right),
		h("Precio", 2, align.Right),
		h("Valor", 2, align.Right),
	)
}

// detailRows una fila por línea. El ITBIS de la línea es proporcional a su valor.
func detailRows(o *entity.Order, showTax bool) []core.Row {
	effective := decimal.Zero
	if showTax && o.Bills.Subtotal.IsPositive() {
		effective = o.Bills.Tax.Div(o.Bills.Subtotal)
	}
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	out := make([]core.Row, 0, len(o.Items))
	for _, it := range o.Items {
		qty := it.Quantity.String()
		if it.QtyType == entity.QtyTypeWeight {
			qty += " " + it.WeightUnit
		}
		if !showTax {
			out = append(out, row.New(6).Add(
				cell(it.Name, 6, align.Left),
				cell(qty, 2, align.Center),
				cell(FormatMoney(it.UnitPrice), 2, align.Right),
				cell(FormatMoney(it.Price), 2, align.Right),
			))
			continue
		}
		out = append(out, row.New(6).Add(
			cell(it.Name, 5, align.Left),
			cell(qty, 1, align.Center),
			cell(FormatMoney(billing.Round2(it.Price.Mul(effective))), 2, align.Right),
			cell(FormatMoney(it.UnitPrice), 2, align.Right),
			cell(FormatMoney(it.Price), 2, align.Right),
		))
	}
	return out
}

// SummaryLine renglón del resumen de montos.
type SummaryLine struct {
	Label string
	Value decimal.Decimal
	Bold  bool
}

// Summary renglones del resumen. Descuento, ITBIS y propina solo si son mayores que cero.
func Summary(o *entity.Order, taxRate decimal.Decimal) []SummaryLine {
	b := o.Bills
	lines := []SummaryLine{{Label: "Subtotal:", Value: b.Subtotal}}
	if b.Discount.IsPositive() {
		lines = append(lines, SummaryLine{Label: "Descuento:", Value: b.Discount})
	}
	if b.Tax.IsPositive() {
		lines = append(lines, SummaryLine{Label: fmt.Sprintf("ITBIS (%s%%):", billing.Percent(taxRate).String()), Value: b.Tax})
	}
	if b.Tip.IsPositive() {
		lines = append(lines, SummaryLine{Label: "Propina:", Value: b.Tip})
	}
	return append(lines, SummaryLine{Label: "Total a pagar:", Value: b.TotalWithTax, Bold: true})
}

func summaryRows(o *entity.Order, taxRate decimal.Decimal) []core.Row {
	lines := Summary(o, taxRate)
	out := make([]core.Row, 0, len(lines)+1)
	for _, l := range lines {
		style := fontstyle.Normal
		if l.Bold {
			style = fontstyle.Bold
		}
		out = append(out, row.New(6).Add(
			col.New(6),
			col.New(3).Add(text.New(l.Label, props.Text{Style: style, Size: 9, Align: align.Right, Right: 2})),
			col.New(3).Add(text.New(FormatMoney(l.Value), props.Text{Style: style, Size: 9, Align: align.Right, Right: 1})),
		))
	}
	out = append(out, row.New(7).Add(col.New(12).Add(
		text.New("Método de pago: "+nonEmpty(o.PaymentMethod, "N/A"), props.Text{Size: 9, Top: 2}),
	)))
	return out
}

// footerRows QR con los datos del NCF cuando la orden lo tiene.
func footerRows(biz entity.BusinessInfo, o *entity.Order) []core.Row {
	rows := []core.Row{line.NewRow(3), line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3})}
	if o.Fiscal.Issued() {
		rows = append(rows, row.New(40).Add(
			col.New(3).Add(code.NewQr(QRPayload(biz, o), props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(
				text.New("Comprobante fiscal "+o.Fiscal.NCFNumber, props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 6, Left: 3, Color: colorPrimary,
				}),
				text.New("Conserve este documento como soporte fiscal.", props.Text{
					Size: 8, Top: 14, Left: 3, Color: colorGray,
				}),
			),
		))
	}
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New("Gracias por su compra", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Center, Top: 2}),
	)))
	return rows
}

// QRPayload texto del código QR: RNC emisor, NCF, total y fecha de emisión.
func QRPayload(biz entity.BusinessInfo, o *entity.Order) string {
	issued := ""
	if o.Fiscal.IssuedAt != nil {
		issued = o.Fiscal.IssuedAt.UTC().Format("2006-01-02")
	}
	return fmt.Sprintf("RNC=%s;NCF=%s;TOTAL=%s;FECHA=%s", biz.RNC, o.Fiscal.NCFNumber, o.Bills.TotalWithTax.StringFixed(2), issued)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// FormatMoney formato dominicano con separador de miles: 1234.5 -> "RD$1,234.50".
func FormatMoney(d decimal.Decimal) string {
	s := billing.Round2(d).StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return sign + "RD$" + string(buf) + "." + frac
}
