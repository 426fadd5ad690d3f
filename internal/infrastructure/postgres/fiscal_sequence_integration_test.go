//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/pos-restaurante-api/internal/application/fiscal"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

func startDB(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "no se pudo iniciar PostgreSQL")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(dsn, logger.Nop()))
	return dsn
}

func TestAllocateNCF_ConcurrenteSinDuplicados(t *testing.T) {
	dsn := startDB(t)
	ctx := context.Background()
	pool, err := postgres.NewPoolFromDSN(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	tenantID := uuid.NewString()
	now := time.Now().UTC()
	require.NoError(t, postgres.NewTenantRepository(pool).Create(ctx, &entity.Tenant{
		ID:                tenantID,
		Name:              "La Casita",
		Plan:              entity.PlanPro,
		Status:            entity.TenantStatusActive,
		FiscalEnabled:     true,
		FiscalDefaultType: "B02",
		EmissionPoint:     "001",
		BranchName:        "Principal",
		NextInvoiceNumber: 1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}))

	seqRepo := postgres.NewFiscalSequenceRepository(pool)
	require.NoError(t, seqRepo.Upsert(ctx, &entity.FiscalSequence{
		TenantID: tenantID, DocType: "B02", Start: 1, Current: 1, Max: 10, Active: true,
	}))

	alloc := fiscal.NewAllocator(seqRepo, logger.Nop())
	const workers = 25

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = map[string]int{}
		failed  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ncf, err := alloc.AllocateNCF(ctx, tenantID, "B02")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrConflict)
				failed++
				return
			}
			numbers[ncf.Number]++
		}()
	}
	wg.Wait()

	assert.Len(t, numbers, 10, "exactamente min(N, k) números asignados")
	assert.Equal(t, workers-10, failed)
	for n, count := range numbers {
		assert.Equal(t, 1, count, "NCF duplicado: %s", n)
	}
	assert.Contains(t, numbers, "B0200000001")
	assert.Contains(t, numbers, "B0200000010")

	seq, err := seqRepo.Get(ctx, tenantID, "B02")
	require.NoError(t, err)
	assert.Equal(t, int64(11), seq.Current)

	// el interno también es atómico
	var wg2 sync.WaitGroup
	internal := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg2.Add(1)
		go func() {
			defer wg2.Done()
			n, err := alloc.AllocateInternal(ctx, tenantID)
			if assert.NoError(t, err) {
				internal <- n.Seq
			}
		}()
	}
	wg2.Wait()
	close(internal)
	seen := map[int64]bool{}
	for n := range internal {
		assert.False(t, seen[n], "número interno repetido: %d", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
}
