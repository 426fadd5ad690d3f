package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
)

var _ repository.RncRepository = (*RncRepo)(nil)

// RncRepo registro de contribuyentes sobre PostgreSQL.
type RncRepo struct {
	q Querier
}

// NewRncRepository construye el adaptador.
func NewRncRepository(q Querier) *RncRepo {
	return &RncRepo{q: q}
}

const rncColumns = `rnc, nombre, categoria, regimen, estatus, actividad_economica, provincia, municipio, updated_at`

// GetByRNC búsqueda exacta. (nil, nil) si no existe.
func (r *RncRepo) GetByRNC(ctx context.Context, rnc string) (*entity.RncRecord, error) {
	rec, err := scanRnc(r.q.QueryRow(ctx, `SELECT `+rncColumns+` FROM rnc_registry WHERE rnc = $1`, rnc))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rnc: %w", err)
	}
	return rec, nil
}

// Search autocompletado: prefijo de RNC si q son dígitos, prefijo de nombre en otro caso.
func (r *RncRepo) Search(ctx context.Context, q string, limit int) ([]*entity.RncRecord, error) {
	q = strings.TrimSpace(q)
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	var query string
	if isDigits(q) {
		query = `SELECT ` + rncColumns + ` FROM rnc_registry WHERE rnc LIKE $1 || '%' ORDER BY rnc LIMIT $2`
	} else {
		q = strings.ToLower(q)
		query = `SELECT ` + rncColumns + ` FROM rnc_registry WHERE lower(nombre) LIKE $1 || '%' ORDER BY nombre LIMIT $2`
	}
	rows, err := r.q.Query(ctx, query, escapeLike(q), limit)
	if err != nil {
		return nil, fmt.Errorf("search rnc: %w", err)
	}
	defer rows.Close()
	var list []*entity.RncRecord
	for rows.Next() {
		rec, err := scanRnc(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rnc: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// UpsertBatch inserta o actualiza un lote en un solo round-trip (pgx.Batch).
func (r *RncRepo) UpsertBatch(ctx context.Context, records []entity.RncRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	b := &pgx.Batch{}
	for _, rec := range records {
		b.Queue(`
			INSERT INTO rnc_registry (rnc, nombre, categoria, regimen, estatus, actividad_economica, provincia, municipio, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
			ON CONFLICT (rnc) DO UPDATE SET
				nombre = EXCLUDED.nombre,
				categoria = EXCLUDED.categoria,
				regimen = EXCLUDED.regimen,
				estatus = EXCLUDED.estatus,
				actividad_economica = EXCLUDED.actividad_economica,
				provincia = EXCLUDED.provincia,
				municipio = EXCLUDED.municipio,
				updated_at = now()`,
			rec.RNC, rec.Name, rec.Category, rec.Regime, rec.Status, rec.EconomicActivity, rec.Province, rec.Municipality,
		)
	}
	br := r.sendBatch(ctx, b)
	if br == nil {
		return 0, fmt.Errorf("upsert rnc batch: querier does not support batches")
	}
	defer br.Close()
	var n int64
	for range records {
		tag, err := br.Exec()
		if err != nil {
			return n, fmt.Errorf("upsert rnc batch: %w", err)
		}
		n += tag.RowsAffected()
	}
	return n, nil
}

type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func (r *RncRepo) sendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	if s, ok := r.q.(batchSender); ok {
		return s.SendBatch(ctx, b)
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanRnc(row pgx.Row) (*entity.RncRecord, error) {
	var rec entity.RncRecord
	err := row.Scan(&rec.RNC, &rec.Name, &rec.Category, &rec.Regime, &rec.Status, &rec.EconomicActivity,
		&rec.Province, &rec.Municipality, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
