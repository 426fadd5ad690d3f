package dgii

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

type memRnc struct {
	rows      map[string]entity.RncRecord
	batches   int
	lastQuery string
	lastLimit int
	failAfter int
}

func newMemRnc() *memRnc { return &memRnc{rows: map[string]entity.RncRecord{}} }

func (m *memRnc) GetByRNC(_ context.Context, rnc string) (*entity.RncRecord, error) {
	r, ok := m.rows[rnc]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memRnc) Search(_ context.Context, q string, limit int) ([]*entity.RncRecord, error) {
	m.lastQuery, m.lastLimit = q, limit
	var out []*entity.RncRecord
	for _, r := range m.rows {
		if strings.HasPrefix(r.RNC, q) || strings.HasPrefix(strings.ToLower(r.Name), strings.ToLower(q)) {
			cp := r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRnc) UpsertBatch(_ context.Context, records []entity.RncRecord) (int64, error) {
	m.batches++
	if m.failAfter > 0 && m.batches > m.failAfter {
		return 0, errors.New("conexión perdida")
	}
	for _, r := range records {
		m.rows[r.RNC] = r
	}
	return int64(len(records)), nil
}

func TestLookup(t *testing.T) {
	repo := newMemRnc()
	repo.rows["131234567"] = entity.RncRecord{RNC: "131234567", Name: "LA CASITA SRL", Status: "ACTIVO"}
	uc := NewUseCase(repo)

	res, err := uc.Lookup(context.Background(), "1-31-23456-7")
	require.NoError(t, err)
	assert.Equal(t, "LA CASITA SRL", res.Name)

	_, err = uc.Lookup(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "INVALID_RNC", domain.Code(err))

	_, err = uc.Lookup(context.Background(), "999999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "RNC_NOT_FOUND", domain.Code(err))
}

func TestAutocomplete(t *testing.T) {
	repo := newMemRnc()
	repo.rows["131234567"] = entity.RncRecord{RNC: "131234567", Name: "LA CASITA SRL"}
	repo.rows["101000001"] = entity.RncRecord{RNC: "101000001", Name: "FARMACIA CAROL"}
	uc := NewUseCase(repo)
	ctx := context.Background()

	list, err := uc.Autocomplete(ctx, "  ", 5)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	list, err = uc.Autocomplete(ctx, "131-2", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "1312", repo.lastQuery)
	assert.Equal(t, 10, repo.lastLimit)

	list, err = uc.Autocomplete(ctx, "farm", 100)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "FARMACIA CAROL", list[0].Name)
	assert.Equal(t, 20, repo.lastLimit)
}

func TestImport_ConEncabezadoYWindows1252(t *testing.T) {
	// "CAÑO" en Windows-1252: Ñ = 0xD1.
	data := "RNC|NOMBRE|CATEGORIA|REGIMEN|ESTATUS|ACTIVIDAD ECONOMICA|PROVINCIA|MUNICIPIO\r\n" +
		"131-234567|LA   CASITA SRL|EMPRESA|NORMAL|ACTIVO|RESTAURANTES|SANTO DOMINGO|DN\r\n" +
		"\r\n" +
		"SIN-RNC|NADIE||||||\r\n" +
		"101000001|EL CA\xd1O|EMPRESA|NORMAL|ACTIVO|BAR|SANTIAGO|SANTIAGO\r\n"
	repo := newMemRnc()
	im := NewImporter(repo, 0, logger.Nop())

	stats, err := im.Import(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "|", stats.Delimiter)
	assert.True(t, stats.HasHeader)
	assert.Equal(t, 3, stats.Read)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, int64(2), stats.Upserted)

	assert.Equal(t, "LA CASITA SRL", repo.rows["131234567"].Name)
	assert.Equal(t, "RESTAURANTES", repo.rows["131234567"].EconomicActivity)
	assert.Equal(t, "EL CAÑO", repo.rows["101000001"].Name)
	assert.Equal(t, "SANTIAGO", repo.rows["101000001"].Municipality)
}

func TestImport_SinEncabezadoPorLotes(t *testing.T) {
	var b strings.Builder
	b.WriteString("\xef\xbb\xbf")
	for i := 0; i < 5; i++ {
		b.WriteString("40200000")
		b.WriteByte(byte('0' + i))
		b.WriteString("\tPERSONA\tPF\tNORMAL\tACTIVO\t\tLA VEGA\tLA VEGA\n")
	}
	repo := newMemRnc()
	stats, err := NewImporter(repo, 2, logger.Nop()).Import(context.Background(), strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, "\t", stats.Delimiter)
	assert.False(t, stats.HasHeader)
	assert.Equal(t, int64(5), stats.Upserted)
	assert.Equal(t, 3, repo.batches)
	assert.Equal(t, "LA VEGA", repo.rows["402000000"].Province)
}

func TestImport_FallaDelLote(t *testing.T) {
	data := "1|A\n2|B\n3|C\n"
	repo := newMemRnc()
	repo.failAfter = 1
	stats, err := NewImporter(repo, 2, logger.Nop()).Import(context.Background(), strings.NewReader(data))
	require.Error(t, err)
	assert.Equal(t, int64(2), stats.Upserted)
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ";", DetectDelimiter("a;b;c,d"))
	assert.Equal(t, "|", DetectDelimiter("sin separador"))
}
