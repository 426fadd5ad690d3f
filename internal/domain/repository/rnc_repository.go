package repository

import (
	"context"

	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
)

// RncRepository registro de contribuyentes de la DGII.
type RncRepository interface {
	GetByRNC(ctx context.Context, rnc string) (*entity.RncRecord, error)
	// Search por prefijo de RNC si q son dígitos; si no, por nombre.
	Search(ctx context.Context, q string, limit int) ([]*entity.RncRecord, error)
	UpsertBatch(ctx context.Context, records []entity.RncRecord) (int64, error)
}
