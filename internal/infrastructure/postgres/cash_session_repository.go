package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
)

var _ repository.CashSessionRepository = (*CashSessionRepo)(nil)

// CashSessionRepo sesiones de caja y su libro de movimientos.
type CashSessionRepo struct {
	q Querier
}

// NewCashSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashSessionRepository(q Querier) *CashSessionRepo {
	return &CashSessionRepo{q: q}
}

const cashSessionColumns = `id, tenant_id, client_id, date_ymd, register_id, status, opening_float, added_float_total,
	declared_amount, opened_by, opened_at, closed_by, closed_at, updated_at`

const cashSessionByKey = ` FROM cash_sessions WHERE tenant_id = $1 AND client_id = $2 AND date_ymd = $3 AND register_id = $4`

// Get sesión del día y caja, con sus movimientos. (nil, nil) si no existe.
func (r *CashSessionRepo) Get(ctx context.Context, tenantID, clientID, dateYMD, registerID string) (*entity.CashSession, error) {
	s, err := scanCashSession(r.q.QueryRow(ctx, `SELECT `+cashSessionColumns+cashSessionByKey, tenantID, clientID, dateYMD, registerID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash session: %w", err)
	}
	if s.Movements, err = r.movements(ctx, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

// GetForUpdate igual que Get pero bloquea la fila de la sesión.
func (r *CashSessionRepo) GetForUpdate(ctx context.Context, tenantID, clientID, dateYMD, registerID string) (*entity.CashSession, error) {
	s, err := scanCashSession(r.q.QueryRow(ctx, `SELECT `+cashSessionColumns+cashSessionByKey+` FOR UPDATE`, tenantID, clientID, dateYMD, registerID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash session for update: %w", err)
	}
	if s.Movements, err = r.movements(ctx, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserta la sesión. Otra sesión para el mismo día y caja -> OPENING_ALREADY_SET.
func (r *CashSessionRepo) Create(ctx context.Context, s *entity.CashSession) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO cash_sessions (`+cashSessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		s.ID, s.TenantID, s.ClientID, s.DateYMD, s.RegisterID, s.Status, s.OpeningFloat, s.AddedFloatTotal,
		s.DeclaredAmount, s.OpenedBy, s.OpenedAt, s.ClosedBy, s.ClosedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("OPENING_ALREADY_SET", "La apertura de caja ya fue registrada")
		}
		return fmt.Errorf("insert cash session: %w", err)
	}
	return nil
}

// Update persiste estado y totales.
func (r *CashSessionRepo) Update(ctx context.Context, s *entity.CashSession) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE cash_sessions SET status = $2, opening_float = $3, added_float_total = $4, declared_amount = $5,
			closed_by = $6, closed_at = $7, updated_at = $8
		WHERE id = $1`,
		s.ID, s.Status, s.OpeningFloat, s.AddedFloatTotal, s.DeclaredAmount, s.ClosedBy, s.ClosedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update cash session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddMovement agrega una fila al libro de caja.
func (r *CashSessionRepo) AddMovement(ctx context.Context, m *entity.CashMovement) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO cash_movements (id, session_id, type, amount, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.SessionID, m.Type, m.Amount, m.Note, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cash movement: %w", err)
	}
	return nil
}

// ListRange sesiones con fecha en [from, to]. date_ymd es YYYY-MM-DD: el orden lexicográfico es el cronológico.
func (r *CashSessionRepo) ListRange(ctx context.Context, tenantID, clientID, from, to, registerID string) ([]*entity.CashSession, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+cashSessionColumns+` FROM cash_sessions
		WHERE tenant_id = $1 AND client_id = $2 AND date_ymd >= $3 AND date_ymd <= $4 AND ($5 = '' OR register_id = $5)
		ORDER BY date_ymd, register_id`,
		tenantID, clientID, from, to, registerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list cash sessions: %w", err)
	}
	var list []*entity.CashSession
	for rows.Next() {
		s, err := scanCashSession(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan cash session: %w", err)
		}
		list = append(list, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range list {
		if s.Movements, err = r.movements(ctx, s.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *CashSessionRepo) movements(ctx context.Context, sessionID string) ([]entity.CashMovement, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, session_id, type, amount, note, created_by, created_at
		FROM cash_movements WHERE session_id = $1 ORDER BY created_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list cash movements: %w", err)
	}
	defer rows.Close()
	list := []entity.CashMovement{}
	for rows.Next() {
		var m entity.CashMovement
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Type, &m.Amount, &m.Note, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cash movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanCashSession(row pgx.Row) (*entity.CashSession, error) {
	var s entity.CashSession
	err := row.Scan(&s.ID, &s.TenantID, &s.ClientID, &s.DateYMD, &s.RegisterID, &s.Status, &s.OpeningFloat,
		&s.AddedFloatTotal, &s.DeclaredAmount, &s.OpenedBy, &s.OpenedAt, &s.ClosedBy, &s.ClosedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
