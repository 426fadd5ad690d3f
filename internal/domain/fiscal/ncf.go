package fiscal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jhoicas/pos-restaurante-api/internal/domain"
)

// Tipos de comprobante más usados.
const (
	DocTypeCreditoFiscal   = "B01"
	DocTypeConsumidorFinal = "B02"
	DocTypeRegimenEspecial = "B14"
	DocTypeGubernamental   = "B15"
)

// MaxSequence mayor secuencia representable con 8 dígitos.
const MaxSequence int64 = 99_999_999

const internalDigits = 8

var docTypeRe = regexp.MustCompile(`^[A-Z][0-9]{2}$`)

// NormalizeDocType valida y normaliza el tipo de comprobante (b02 -> B02).
func NormalizeDocType(docType string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(docType))
	if !docTypeRe.MatchString(t) {
		return "", domain.Validation("INVALID_NCF_TYPE", fmt.Sprintf("Tipo de comprobante inválido: %q", docType))
	}
	return t, nil
}

// FormatNCF arma el NCF: tipo + secuencia con 8 dígitos (B02 + 5 -> B0200000005).
func FormatNCF(docType string, seq int64) (string, error) {
	t, err := NormalizeDocType(docType)
	if err != nil {
		return "", err
	}
	if seq <= 0 || seq > MaxSequence {
		return "", domain.Validation("NCF_OUT_OF_RANGE", "NCF excede 8 dígitos")
	}
	return fmt.Sprintf("%s%0*d", t, internalDigits, seq), nil
}

// FormatInternalNumber número interno de factura con 8 dígitos.
func FormatInternalNumber(seq int64) string {
	if seq < 0 {
		seq = 0
	}
	return fmt.Sprintf("%0*d", internalDigits, seq)
}

// AssignedFromNext valor asignado dado el contador ya incrementado. Si da <= 0 se usa el propio valor.
func AssignedFromNext(next int64) int64 {
	if assigned := next - 1; assigned > 0 {
		return assigned
	}
	return next
}

// NCFUnavailable error cuando el rango está agotado, inactivo o el tenant no factura.
func NCFUnavailable(docType string) error {
	return domain.Conflict("NCF_UNAVAILABLE", fmt.Sprintf("NCF no disponible para %s (inactivo o rango agotado).", docType))
}

// DocTypeTitle título impreso en la factura según el tipo de comprobante.
func DocTypeTitle(docType string) string {
	switch strings.ToUpper(strings.TrimSpace(docType)) {
	case DocTypeCreditoFiscal:
		return "Factura de Crédito Fiscal"
	case DocTypeRegimenEspecial:
		return "Factura de Régimen Especial"
	case DocTypeGubernamental:
		return "Factura Gubernamental"
	default:
		return "Factura para Consumidor Final"
	}
}
