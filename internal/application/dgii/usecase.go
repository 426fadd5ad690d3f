package dgii

import (
	"context"
	"strings"
	"unicode"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
)

const (
	defaultLimit = 10
	maxLimit     = 20
)

// UseCase consultas al registro local de contribuyentes.
type UseCase struct {
	repo repository.RncRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.RncRepository) *UseCase {
	return &UseCase{repo: repo}
}

// Lookup búsqueda exacta; acepta el RNC con guiones o espacios.
func (uc *UseCase) Lookup(ctx context.Context, raw string) (*dto.RncResponse, error) {
	rnc := Digits(raw)
	if rnc == "" {
		return nil, domain.Validation("INVALID_RNC", "RNC inválido")
	}
	rec, err := uc.repo.GetByRNC(ctx, rnc)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.NotFound("RNC_NOT_FOUND", "RNC no encontrado")
	}
	return ToRncResponse(rec), nil
}

// Autocomplete por prefijo de RNC o por nombre. q vacío devuelve lista vacía.
func (uc *UseCase) Autocomplete(ctx context.Context, q string, limit int) ([]*dto.RncResponse, error) {
	q = strings.TrimSpace(q)
	out := []*dto.RncResponse{}
	if q == "" {
		return out, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if d := Digits(q); d != "" {
		q = d
	}
	list, err := uc.repo.Search(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	for _, rec := range list {
		out = append(out, ToRncResponse(rec))
	}
	return out, nil
}

// Digits deja solo los dígitos.
func Digits(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, v)
}

// ToRncResponse mapea el registro a su DTO.
func ToRncResponse(r *entity.RncRecord) *dto.RncResponse {
	return &dto.RncResponse{
		RNC:              r.RNC,
		Name:             r.Name,
		Category:         r.Category,
		Regime:           r.Regime,
		Status:           r.Status,
		EconomicActivity: r.EconomicActivity,
		Province:         r.Province,
		Municipality:     r.Municipality,
	}
}
