package dgii

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

// DefaultBatchSize filas por round-trip al registrar.
const DefaultBatchSize = 2000

// columnas del archivo cuando no trae encabezado.
var fixedColumns = columnMap{rnc: 0, name: 1, category: 2, regime: 3, status: 4, activity: 5, province: 6, municipality: 7}

type columnMap struct {
	rnc, name, category, regime, status, activity, province, municipality int
}

// ImportStats resultado de una importación.
type ImportStats struct {
	Delimiter string
	HasHeader bool
	Read      int
	Skipped   int
	Upserted  int64
}

// Importer carga el archivo de contribuyentes que publica la DGII (Windows-1252).
type Importer struct {
	repo      repository.RncRepository
	batchSize int
	log       *logger.Logger
}

// NewImporter construye el importador. batchSize <= 0 usa DefaultBatchSize.
func NewImporter(repo repository.RncRepository, batchSize int, log *logger.Logger) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Importer{repo: repo, batchSize: batchSize, log: log.Component("rnc_import")}
}

// Import lee r, detecta delimitador y encabezado, y registra por lotes.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*ImportStats, error) {
	sc := bufio.NewScanner(transform.NewReader(r, charmap.Windows1252.NewDecoder()))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	stats := &ImportStats{}
	var cols columnMap
	first := true
	batch := make([]entity.RncRecord, 0, im.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := im.repo.UpsertBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("upsert lote: %w", err)
		}
		stats.Upserted += n
		im.log.Info().Int("read", stats.Read).Int64("upserted", stats.Upserted).Msg("lote registrado")
		batch = batch[:0]
		return nil
	}

	for sc.Scan() {
		// BOM UTF-8 tal como queda tras decodificar en Windows-1252.
		line := strings.TrimPrefix(strings.TrimPrefix(sc.Text(), "\u00ef\u00bb\u00bf"), "\ufeff")
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if first {
			first = false
			stats.Delimiter = DetectDelimiter(line)
			if header, ok := headerColumns(strings.Split(line, stats.Delimiter)); ok {
				cols, stats.HasHeader = header, true
				continue
			}
			cols = fixedColumns
		}
		stats.Read++
		rec, ok := parseRecord(strings.Split(line, stats.Delimiter), cols)
		if !ok {
			stats.Skipped++
			continue
		}
		batch = append(batch, rec)
		if len(batch) >= im.batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("leer archivo: %w", err)
	}
	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

// DetectDelimiter el candidato que produce más columnas (|, tab, ;, ,).
func DetectDelimiter(line string) string {
	best, score := "|", -1
	for _, d := range []string{"|", "\t", ";", ","} {
		if n := strings.Count(line, d) + 1; n > score {
			best, score = d, n
		}
	}
	return best
}

// headerColumns reconoce el encabezado cuando trae al menos RNC y nombre.
func headerColumns(fields []string) (columnMap, bool) {
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = strings.ToLower(clean(f))
	}
	idx := func(names ...string) int {
		for _, n := range names {
			for i, h := range headers {
				if h == n || strings.Contains(h, n) {
					return i
				}
			}
		}
		return -1
	}
	m := columnMap{
		rnc:          idx("rnc", "cedula", "cédula", "documento"),
		name:         idx("nombre", "razon", "razón social"),
		category:     idx("categoria", "categoría"),
		regime:       idx("regimen", "régimen"),
		status:       idx("estatus", "estado"),
		activity:     idx("actividad"),
		province:     idx("provincia"),
		municipality: idx("municipio"),
	}
	if m.rnc == -1 || m.name == -1 {
		return columnMap{}, false
	}
	return m, true
}

func parseRecord(fields []string, m columnMap) (entity.RncRecord, bool) {
	col := func(i int) string {
		if i < 0 || i >= len(fields) {
			return ""
		}
		return clean(fields[i])
	}
	rnc := Digits(col(m.rnc))
	if rnc == "" {
		return entity.RncRecord{}, false
	}
	return entity.RncRecord{
		RNC:              rnc,
		Name:             col(m.name),
		Category:         col(m.category),
		Regime:           col(m.regime),
		Status:           col(m.status),
		EconomicActivity: col(m.activity),
		Province:         col(m.province),
		Municipality:     col(m.municipality),
	}, true
}

// clean colapsa espacios internos.
func clean(v string) string {
	return strings.Join(strings.Fields(v), " ")
}
