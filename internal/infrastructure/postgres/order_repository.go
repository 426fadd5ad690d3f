package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de órdenes. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, tenant_id, client_id, user_id, customer, items, status, source, payment_method, table_id,
	subtotal, discount, tax, tax_enabled, total_before_tip, tip, total_with_tax,
	commission_rate, commission_amount, net_total, fiscal, inventory_deducted, inventory_deducted_at,
	invoice_path, invoice_url, created_at, updated_at`

// Create inserta la orden. El NCF nunca se fija aquí: solo vía StampFiscal.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	customer, items, fiscal, err := orderJSON(o)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`
	_, err = r.q.Exec(ctx, query,
		o.ID, o.TenantID, o.ClientID, nullIfEmpty(o.UserID), customer, items, o.Status, o.Source, o.PaymentMethod, o.TableID,
		o.Bills.Subtotal, o.Bills.Discount, o.Bills.Tax, o.Bills.TaxEnabled, o.Bills.TotalBeforeTip, o.Bills.Tip, o.Bills.TotalWithTax,
		o.Commission.Rate, o.Commission.Amount, o.Commission.Net, fiscal, o.InventoryDeducted, o.InventoryDeductedAt,
		nullIfEmpty(o.InvoicePath), nullIfEmpty(o.InvoiceURL), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID obtiene la orden dentro del alcance tenant+client; clientID vacío busca en todo el tenant.
// (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, tenantID, clientID, id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND tenant_id = $2 AND ($3 = '' OR client_id = $3)`
	o, err := scanOrder(r.q.QueryRow(ctx, query, id, tenantID, clientID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetForUpdate obtiene la orden y bloquea la fila (SELECT FOR UPDATE).
func (r *OrderRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND tenant_id = $2 FOR UPDATE`
	o, err := scanOrder(r.q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order for update: %w", err)
	}
	return o, nil
}

// List órdenes del alcance, más recientes primero.
func (r *OrderRepo) List(ctx context.Context, tenantID, clientID string, f repository.OrderFilter) ([]*entity.Order, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	query := `
		SELECT ` + orderColumns + ` FROM orders
		WHERE tenant_id = $1 AND client_id = $2 AND ($3 = '' OR status = $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, tenantID, clientID, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// Update sobrescribe los campos editables. El snapshot fiscal solo se reemplaza si la
// orden no tiene NCF o si el snapshot entrante conserva el mismo número.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	customer, items, fiscal, err := orderJSON(o)
	if err != nil {
		return err
	}
	query := `
		UPDATE orders SET
			customer = $4, items = $5, status = $6, source = $7, payment_method = $8, table_id = $9,
			subtotal = $10, discount = $11, tax = $12, tax_enabled = $13, total_before_tip = $14, tip = $15,
			total_with_tax = $16, commission_rate = $17, commission_amount = $18, net_total = $19,
			fiscal = CASE WHEN ncf_number IS NULL OR ($20::jsonb ->> 'ncfNumber') = ncf_number THEN $20::jsonb ELSE fiscal END,
			updated_at = $21
		WHERE id = $1 AND tenant_id = $2 AND client_id = $3`
	tag, err := r.q.Exec(ctx, query,
		o.ID, o.TenantID, o.ClientID,
		customer, items, o.Status, o.Source, o.PaymentMethod, o.TableID,
		o.Bills.Subtotal, o.Bills.Discount, o.Bills.Tax, o.Bills.TaxEnabled, o.Bills.TotalBeforeTip, o.Bills.Tip,
		o.Bills.TotalWithTax, o.Commission.Rate, o.Commission.Amount, o.Commission.Net,
		fiscal, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// StampFiscal fija el NCF solo si la orden todavía no tiene uno.
func (r *OrderRepo) StampFiscal(ctx context.Context, tenantID, orderID string, f entity.FiscalSnapshot) (bool, error) {
	fiscal, err := toJSON(f)
	if err != nil {
		return false, err
	}
	tag, err := r.q.Exec(ctx,
		`UPDATE orders SET ncf_number = $3, fiscal = $4, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND ncf_number IS NULL`,
		orderID, tenantID, f.NCFNumber, fiscal,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, domain.Conflict("NCF_DUPLICATE", "NCF ya asignado a otra orden")
		}
		return false, fmt.Errorf("stamp fiscal: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkInventoryDeducted marca el descuento de inventario si aún no estaba marcado.
func (r *OrderRepo) MarkInventoryDeducted(ctx context.Context, tenantID, orderID string, at time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE orders SET inventory_deducted = true, inventory_deducted_at = $3
		WHERE id = $1 AND tenant_id = $2 AND inventory_deducted = false`,
		orderID, tenantID, at,
	)
	if err != nil {
		return false, fmt.Errorf("mark inventory deducted: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ClearFiscal deja el snapshot fiscal sin solicitud. No toca ncf_number.
func (r *OrderRepo) ClearFiscal(ctx context.Context, tenantID, orderID string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE orders SET fiscal = '{"requested":false}'::jsonb, updated_at = now()
		WHERE id = $1 AND tenant_id = $2`,
		orderID, tenantID,
	)
	if err != nil {
		return fmt.Errorf("clear fiscal: %w", err)
	}
	return nil
}

// SetInvoice guarda el artefacto de la factura y la fecha de impresión en el snapshot fiscal.
func (r *OrderRepo) SetInvoice(ctx context.Context, tenantID, orderID, path, url string, printedAt time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE orders SET invoice_path = $3, invoice_url = $4,
			fiscal = jsonb_set(fiscal, '{printedAt}', to_jsonb($5::timestamptz), true)
		WHERE id = $1 AND tenant_id = $2`,
		orderID, tenantID, path, url, printedAt,
	)
	if err != nil {
		return fmt.Errorf("set invoice: %w", err)
	}
	return nil
}

// Delete elimina la orden. false si no existía.
func (r *OrderRepo) Delete(ctx context.Context, tenantID, clientID, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1 AND tenant_id = $2 AND client_id = $3`, id, tenantID, clientID)
	if err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func orderJSON(o *entity.Order) (customer, items, fiscal []byte, err error) {
	if customer, err = toJSON(o.Customer); err != nil {
		return
	}
	lines := o.Items
	if lines == nil {
		lines = []entity.OrderItem{}
	}
	if items, err = toJSON(lines); err != nil {
		return
	}
	fiscal, err = toJSON(o.Fiscal)
	return
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var (
		o                       entity.Order
		userID, invPath, invURL *string
		customer, items, fiscal []byte
	)
	err := row.Scan(
		&o.ID, &o.TenantID, &o.ClientID, &userID, &customer, &items, &o.Status, &o.Source, &o.PaymentMethod, &o.TableID,
		&o.Bills.Subtotal, &o.Bills.Discount, &o.Bills.Tax, &o.Bills.TaxEnabled, &o.Bills.TotalBeforeTip, &o.Bills.Tip, &o.Bills.TotalWithTax,
		&o.Commission.Rate, &o.Commission.Amount, &o.Commission.Net, &fiscal, &o.InventoryDeducted, &o.InventoryDeductedAt,
		&invPath, &invURL, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.UserID = derefString(userID)
	o.InvoicePath = derefString(invPath)
	o.InvoiceURL = derefString(invURL)
	if err := fromJSON(customer, &o.Customer); err != nil {
		return nil, err
	}
	if err := fromJSON(items, &o.Items); err != nil {
		return nil, err
	}
	if err := fromJSON(fiscal, &o.Fiscal); err != nil {
		return nil, err
	}
	return &o, nil
}
