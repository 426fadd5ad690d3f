package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/pos-restaurante-api/internal/application/cash"
	"github.com/jhoicas/pos-restaurante-api/internal/application/inventory"
	"github.com/jhoicas/pos-restaurante-api/internal/application/order"
	"github.com/jhoicas/pos-restaurante-api/internal/application/tenant"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner = (*TxRunner)(nil)
	_ order.TxRunner     = (*TxRunner)(nil)
	_ cash.TxRunner      = (*TxRunner)(nil)
	_ tenant.TxRunner    = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// inTx inicia una transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Run transacción del motor de inventario: movimientos, insumos y la orden a descontar.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	itemRepo repository.InventoryItemRepository,
	orderRepo repository.OrderRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewInventoryMovementRepository(tx), NewInventoryItemRepository(tx), NewOrderRepository(tx))
	})
}

// RunOrder persiste la orden y sus efectos sobre mesas en la misma transacción.
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	orders repository.OrderRepository,
	tables repository.TableRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewOrderRepository(tx), NewTableRepository(tx))
	})
}

// RunCash operaciones de caja con bloqueo de la sesión.
func (r *TxRunner) RunCash(ctx context.Context, fn func(sessions repository.CashSessionRepository) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewCashSessionRepository(tx))
	})
}

// RunOnboarding alta de tenant, su dueño y sus secuencias fiscales.
func (r *TxRunner) RunOnboarding(ctx context.Context, fn func(
	tenants repository.TenantRepository,
	users repository.UserRepository,
	sequences repository.FiscalSequenceRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewTenantRepository(tx), NewUserRepository(tx), NewFiscalSequenceRepository(tx))
	})
}
