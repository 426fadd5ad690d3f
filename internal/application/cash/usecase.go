package cash

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/application/order"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

const ymdLayout = "2006-01-02"

// TxRunner bloquea la sesión mientras se modifica.
type TxRunner interface {
	RunCash(ctx context.Context, fn func(sessions repository.CashSessionRepository) error) error
}

// UseCase fondo de caja ("menudo") por día y caja registradora.
type UseCase struct {
	sessions repository.CashSessionRepository
	tx       TxRunner
	loc      *time.Location
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso. "Hoy" se calcula en loc.
func NewUseCase(sessions repository.CashSessionRepository, tx TxRunner, loc *time.Location, log *logger.Logger) *UseCase {
	if loc == nil {
		loc = time.Local
	}
	return &UseCase{sessions: sessions, tx: tx, loc: loc, log: log.Component("cash"), now: time.Now}
}

// Get sesión del día y caja; nil si aún no se abrió.
func (uc *UseCase) Get(ctx context.Context, actor order.Actor, q dto.CashSessionQuery) (*dto.CashSessionResponse, error) {
	date, register, err := uc.key(q)
	if err != nil {
		return nil, err
	}
	s, err := uc.sessions.Get(ctx, actor.TenantID, actor.ClientID, date, register)
	if err != nil || s == nil {
		return nil, err
	}
	return ToSessionResponse(s), nil
}

// Open registra el fondo inicial. created indica si la sesión es nueva.
// Una sesión con apertura en 0 se reabre; con apertura ya fijada se usa Adjust.
func (uc *UseCase) Open(ctx context.Context, actor order.Actor, in dto.OpenCashSessionRequest) (res *dto.CashSessionResponse, created bool, err error) {
	date, register, err := uc.key(in.CashSessionQuery)
	if err != nil {
		return nil, false, err
	}
	if in.OpeningFloat.IsNegative() {
		return nil, false, domain.Validation("INVALID_OPENING_FLOAT", "openingFloat no puede ser negativo")
	}
	now := uc.now()
	var out *entity.CashSession
	err = uc.tx.RunCash(ctx, func(sessions repository.CashSessionRepository) error {
		s, err := sessions.GetForUpdate(ctx, actor.TenantID, actor.ClientID, date, register)
		if err != nil {
			return err
		}
		if s != nil && s.OpeningFloat.IsPositive() {
			if actor.Role == entity.RoleCajera {
				return domain.Conflict("OPENING_ALREADY_SET", "La apertura de caja ya fue registrada")
			}
			return domain.Conflict("USE_ADJUST_ENDPOINT", "La apertura ya existe; use el ajuste")
		}
		if s != nil && s.Status == entity.CashSessionClosed {
			return domain.Conflict("SESSION_CLOSED", "La caja de ese día ya fue cerrada")
		}
		if s == nil {
			s = &entity.CashSession{
				ID:              uuid.New().String(),
				TenantID:        actor.TenantID,
				ClientID:        actor.ClientID,
				DateYMD:         date,
				RegisterID:      register,
				Status:          entity.CashSessionOpen,
				OpeningFloat:    in.OpeningFloat,
				AddedFloatTotal: decimal.Zero,
				OpenedBy:        actor.UserID,
				OpenedAt:        now,
				UpdatedAt:       now,
			}
			if err := sessions.Create(ctx, s); err != nil {
				return err
			}
			created = true
		} else {
			s.OpeningFloat, s.UpdatedAt = in.OpeningFloat, now
			if err := sessions.Update(ctx, s); err != nil {
				return err
			}
		}
		m, err := record(ctx, sessions, s, entity.CashMovementOpen, in.OpeningFloat, "", actor.UserID, now)
		if err != nil {
			return err
		}
		s.Movements = append(s.Movements, *m)
		out = s
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("date", date).Str("register_id", register).
		Str("opening_float", in.OpeningFloat.StringFixed(2)).Msg("caja abierta")
	return ToSessionResponse(out), created, nil
}

// Add agrega menudo a una sesión abierta.
func (uc *UseCase) Add(ctx context.Context, actor order.Actor, in dto.AddCashRequest) (*dto.CashSessionResponse, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.Validation("INVALID_ADD_AMOUNT", "amount debe ser mayor que 0")
	}
	return uc.mutate(ctx, actor, in.CashSessionQuery, func(s *entity.CashSession) (string, decimal.Decimal, string, error) {
		if s.Status == entity.CashSessionClosed {
			return "", decimal.Zero, "", domain.Conflict("SESSION_CLOSED", "La caja ya está cerrada")
		}
		s.AddedFloatTotal = s.AddedFloatTotal.Add(in.Amount)
		return entity.CashMovementAdd, in.Amount, strings.TrimSpace(in.Note), nil
	})
}

// Adjust corrige la apertura. Solo Owner y Admin.
func (uc *UseCase) Adjust(ctx context.Context, actor order.Actor, in dto.AdjustCashRequest) (*dto.CashSessionResponse, error) {
	if !entity.IsManager(actor.Role) {
		return nil, domain.NewError(domain.ErrForbidden, "FORBIDDEN", "Solo Owner o Admin pueden ajustar la apertura")
	}
	if in.OpeningFloat.IsNegative() {
		return nil, domain.Validation("INVALID_OPENING_FLOAT", "openingFloat no puede ser negativo")
	}
	return uc.mutate(ctx, actor, in.CashSessionQuery, func(s *entity.CashSession) (string, decimal.Decimal, string, error) {
		note := strings.TrimSpace(in.Note)
		if note == "" {
			note = "Ajuste de apertura: " + s.OpeningFloat.StringFixed(2) + " -> " + in.OpeningFloat.StringFixed(2)
		}
		s.OpeningFloat = in.OpeningFloat
		return entity.CashMovementAdjust, in.OpeningFloat, note, nil
	})
}

// Close cierra la sesión con el monto contado.
func (uc *UseCase) Close(ctx context.Context, actor order.Actor, in dto.CloseCashRequest) (*dto.CashSessionResponse, error) {
	if in.DeclaredAmount.IsNegative() {
		return nil, domain.Validation("INVALID_DECLARED_AMOUNT", "declaredAmount no puede ser negativo")
	}
	return uc.mutate(ctx, actor, in.CashSessionQuery, func(s *entity.CashSession) (string, decimal.Decimal, string, error) {
		if s.Status == entity.CashSessionClosed {
			return "", decimal.Zero, "", domain.Conflict("SESSION_CLOSED", "La caja ya está cerrada")
		}
		now := uc.now()
		declared := in.DeclaredAmount
		s.Status, s.DeclaredAmount = entity.CashSessionClosed, &declared
		s.ClosedBy, s.ClosedAt = actor.UserID, &now
		return entity.CashMovementClose, declared, strings.TrimSpace(in.Note), nil
	})
}

// Range totales de apertura y agregados entre dos días inclusive. registerId vacío = todas las cajas.
func (uc *UseCase) Range(ctx context.Context, actor order.Actor, q dto.CashRangeQuery) (*dto.CashRangeResponse, error) {
	if q.From == "" || q.To == "" {
		return nil, domain.Validation("MISSING_DATE_RANGE", "from y to son obligatorios")
	}
	from, err := time.ParseInLocation(ymdLayout, q.From, uc.loc)
	if err != nil {
		return nil, domain.Validation("INVALID_DATE_RANGE", "Fecha inválida: "+q.From)
	}
	to, err := time.ParseInLocation(ymdLayout, q.To, uc.loc)
	if err != nil {
		return nil, domain.Validation("INVALID_DATE_RANGE", "Fecha inválida: "+q.To)
	}
	if from.After(to) {
		return nil, domain.Validation("INVALID_DATE_RANGE", "from no puede ser posterior a to")
	}
	list, err := uc.sessions.ListRange(ctx, actor.TenantID, actor.ClientID, q.From, q.To, q.RegisterID)
	if err != nil {
		return nil, err
	}
	res := &dto.CashRangeResponse{
		From:         q.From,
		To:           q.To,
		RegisterID:   q.RegisterID,
		OpeningTotal: decimal.Zero,
		AddedTotal:   decimal.Zero,
		Sessions:     make([]*dto.CashSessionResponse, 0, len(list)),
	}
	for _, s := range list {
		res.OpeningTotal = res.OpeningTotal.Add(s.OpeningFloat)
		res.AddedTotal = res.AddedTotal.Add(s.AddedFloatTotal)
		res.Sessions = append(res.Sessions, ToSessionResponse(s))
	}
	res.MenudoTotal = res.OpeningTotal.Add(res.AddedTotal)
	return res, nil
}

// mutate bloquea la sesión, aplica fn y registra el movimiento que fn describe.
func (uc *UseCase) mutate(
	ctx context.Context,
	actor order.Actor,
	q dto.CashSessionQuery,
	fn func(s *entity.CashSession) (movType string, amount decimal.Decimal, note string, err error),
) (*dto.CashSessionResponse, error) {
	date, register, err := uc.key(q)
	if err != nil {
		return nil, err
	}
	var out *entity.CashSession
	var movType string
	err = uc.tx.RunCash(ctx, func(sessions repository.CashSessionRepository) error {
		s, err := sessions.GetForUpdate(ctx, actor.TenantID, actor.ClientID, date, register)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.NotFound("SESSION_NOT_FOUND", "No hay caja abierta para ese día")
		}
		var amount decimal.Decimal
		var note string
		if movType, amount, note, err = fn(s); err != nil {
			return err
		}
		now := uc.now()
		s.UpdatedAt = now
		if err := sessions.Update(ctx, s); err != nil {
			return err
		}
		m, err := record(ctx, sessions, s, movType, amount, note, actor.UserID, now)
		if err != nil {
			return err
		}
		s.Movements = append(s.Movements, *m)
		out = s
		return nil
	})
	if err != nil {
		var de *domain.Error
		if !errors.As(err, &de) {
			uc.log.Error().Err(err).Str("tenant_id", actor.TenantID).Str("date", date).Msg("operación de caja falló")
		}
		return nil, err
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("date", date).Str("register_id", register).
		Str("movement", movType).Msg("movimiento de caja")
	return ToSessionResponse(out), nil
}

func record(
	ctx context.Context,
	sessions repository.CashSessionRepository,
	s *entity.CashSession,
	movType string,
	amount decimal.Decimal,
	note, by string,
	at time.Time,
) (*entity.CashMovement, error) {
	m := &entity.CashMovement{
		ID:        uuid.New().String(),
		SessionID: s.ID,
		Type:      movType,
		Amount:    amount,
		Note:      note,
		CreatedBy: by,
		CreatedAt: at,
	}
	if err := sessions.AddMovement(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// key normaliza día y caja: hoy y "default" si faltan.
func (uc *UseCase) key(q dto.CashSessionQuery) (string, string, error) {
	date := strings.TrimSpace(q.DateYMD)
	if date == "" {
		date = uc.now().In(uc.loc).Format(ymdLayout)
	} else if _, err := time.ParseInLocation(ymdLayout, date, uc.loc); err != nil {
		return "", "", domain.Validation("INVALID_DATE", "dateYMD debe tener formato YYYY-MM-DD")
	}
	register := strings.TrimSpace(q.RegisterID)
	if register == "" {
		register = entity.DefaultRegisterID
	}
	return date, register, nil
}

// ToSessionResponse mapea la sesión con su libro de movimientos.
func ToSessionResponse(s *entity.CashSession) *dto.CashSessionResponse {
	res := &dto.CashSessionResponse{
		ID:              s.ID,
		DateYMD:         s.DateYMD,
		RegisterID:      s.RegisterID,
		Status:          s.Status,
		OpeningFloat:    s.OpeningFloat,
		AddedFloatTotal: s.AddedFloatTotal,
		MenudoTotal:     s.MenudoTotal(),
		DeclaredAmount:  s.DeclaredAmount,
		OpenedBy:        s.OpenedBy,
		OpenedAt:        s.OpenedAt,
		ClosedBy:        s.ClosedBy,
		ClosedAt:        s.ClosedAt,
		Movements:       make([]dto.CashMovementResponse, 0, len(s.Movements)),
	}
	for _, m := range s.Movements {
		res.Movements = append(res.Movements, dto.CashMovementResponse{
			Type: m.Type, Amount: m.Amount, Note: m.Note, By: m.CreatedBy, CreatedAt: m.CreatedAt,
		})
	}
	return res
}
