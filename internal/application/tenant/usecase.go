package tenant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-restaurante-api/internal/application/auth"
	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/billing"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/fiscal"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

// TxRunner alta atómica del tenant con su dueño y secuencias.
type TxRunner interface {
	RunOnboarding(ctx context.Context, fn func(
		tenants repository.TenantRepository,
		users repository.UserRepository,
		sequences repository.FiscalSequenceRepository,
	) error) error
}

// TokenIssuer firma la sesión del dueño recién creado.
type TokenIssuer interface {
	Token(u *entity.User) (string, error)
}

// docTypes secuencias creadas (inactivas) en el alta.
var docTypes = []string{fiscal.DocTypeCreditoFiscal, fiscal.DocTypeConsumidorFinal}

// UseCase alta y configuración del negocio.
type UseCase struct {
	tenantRepo repository.TenantRepository
	seqRepo    repository.FiscalSequenceRepository
	tx         TxRunner
	tokens     TokenIssuer
	defaults   billing.Defaults
	log        *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	tenantRepo repository.TenantRepository,
	seqRepo repository.FiscalSequenceRepository,
	tx TxRunner,
	tokens TokenIssuer,
	defaults billing.Defaults,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		tenantRepo: tenantRepo,
		seqRepo:    seqRepo,
		tx:         tx,
		tokens:     tokens,
		defaults:   defaults,
		log:        log.Component("tenant"),
	}
}

// Onboard crea el tenant, su usuario Owner y las secuencias B01/B02 sin configurar.
func (uc *UseCase) Onboard(ctx context.Context, in dto.OnboardTenantRequest) (*dto.OnboardTenantResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Validation("NAME_REQUIRED", "name es obligatorio")
	}
	plan := in.Plan
	if plan == "" {
		plan = entity.PlanBasic
	}
	hash, err := auth.HashPassword(in.OwnerPassword)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	t := &entity.Tenant{
		ID:                uuid.New().String(),
		Name:              name,
		Plan:              plan,
		Status:            entity.TenantStatusActive,
		Business:          toBusiness(in.Business),
		FiscalDefaultType: fiscal.DocTypeConsumidorFinal,
		NextInvoiceNumber: 1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if t.Business.Name == "" {
		t.Business.Name = name
	}
	email := strings.ToLower(strings.TrimSpace(in.OwnerEmail))
	ownerName := strings.TrimSpace(in.OwnerName)
	if ownerName == "" {
		ownerName = email
	}
	owner := &entity.User{
		ID:           uuid.New().String(),
		TenantID:     t.ID,
		ClientID:     entity.DefaultRegisterID,
		Email:        email,
		PasswordHash: hash,
		Name:         ownerName,
		Role:         entity.RoleOwner,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	var seqs []*entity.FiscalSequence
	err = uc.tx.RunOnboarding(ctx, func(tenants repository.TenantRepository, users repository.UserRepository, sequences repository.FiscalSequenceRepository) error {
		if err := tenants.Create(ctx, t); err != nil {
			return err
		}
		if err := users.Create(ctx, owner); err != nil {
			return err
		}
		for _, docType := range docTypes {
			s := &entity.FiscalSequence{TenantID: t.ID, DocType: docType, Start: 1, Current: 1, UpdatedAt: now}
			if err := sequences.Upsert(ctx, s); err != nil {
				return err
			}
			seqs = append(seqs, s)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, domain.NewError(domain.ErrConflict, "EMAIL_ALREADY_EXISTS", domain.ErrEmailAlreadyExists.Error())
		}
		return nil, err
	}
	token, err := uc.tokens.Token(owner)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", t.ID).Str("plan", t.Plan).Str("owner_id", owner.ID).Msg("tenant creado")
	return &dto.OnboardTenantResponse{
		Tenant: *uc.response(t, seqs),
		Token:  token,
		User:   *auth.ToUserResponse(owner),
	}, nil
}

// Get negocio con configuración resuelta, secuencias y límites del plan.
func (uc *UseCase) Get(ctx context.Context, tenantID string) (*dto.TenantResponse, error) {
	t, err := uc.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	seqs, err := uc.seqRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return uc.response(t, seqs), nil
}

// UpdateFeatures reemplaza los flags del tenant.
func (uc *UseCase) UpdateFeatures(ctx context.Context, tenantID string, in dto.UpdateFeaturesRequest) (*dto.TenantResponse, error) {
	f := in.Features
	for _, rate := range []*decimal.Decimal{f.Tax.Rate, f.OrderSources.PedidosYa.CommissionRate, f.OrderSources.UberEats.CommissionRate} {
		if rate != nil && (rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1))) {
			return nil, domain.Validation("INVALID_RATE", "Las tasas van de 0 a 1")
		}
	}
	if fee := f.OrderSources.Delivery.DefaultFee; fee != nil && fee.IsNegative() {
		return nil, domain.Validation("INVALID_RATE", "defaultFee no puede ser negativo")
	}
	if _, err := uc.load(ctx, tenantID); err != nil {
		return nil, err
	}
	if err := uc.tenantRepo.UpdateFeatures(ctx, tenantID, f); err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", tenantID).Msg("features actualizados")
	return uc.Get(ctx, tenantID)
}

// UpdateFiscal interruptores fiscales, punto de emisión, sucursal y datos del negocio.
func (uc *UseCase) UpdateFiscal(ctx context.Context, tenantID string, in dto.UpdateFiscalRequest) (*dto.TenantResponse, error) {
	t, err := uc.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if in.Enabled != nil {
		t.FiscalEnabled = *in.Enabled
	}
	if in.AllowRequest != nil {
		t.FiscalAllowReq = *in.AllowRequest
	}
	if in.DefaultType != nil {
		docType, err := fiscal.NormalizeDocType(*in.DefaultType)
		if err != nil {
			return nil, err
		}
		t.FiscalDefaultType = docType
	}
	if in.EmissionPoint != nil {
		t.EmissionPoint = strings.TrimSpace(*in.EmissionPoint)
	}
	if in.BranchName != nil {
		t.BranchName = strings.TrimSpace(*in.BranchName)
	}
	if in.Business != nil {
		t.Business = toBusiness(*in.Business)
	}
	t.UpdatedAt = time.Now()
	if err := uc.tenantRepo.UpdateFiscal(ctx, t); err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", tenantID).Bool("fiscal_enabled", t.FiscalEnabled).
		Str("default_type", t.FiscalDefaultType).Msg("configuración fiscal actualizada")
	return uc.Get(ctx, tenantID)
}

// UpsertSequence configura el rango autorizado de un tipo. Current nunca retrocede.
func (uc *UseCase) UpsertSequence(ctx context.Context, tenantID, docType string, in dto.UpsertSequenceRequest) (*dto.FiscalSequenceResponse, error) {
	docType, err := fiscal.NormalizeDocType(docType)
	if err != nil {
		return nil, err
	}
	if _, err := uc.load(ctx, tenantID); err != nil {
		return nil, err
	}
	s, err := uc.seqRepo.Get(ctx, tenantID, docType)
	if err != nil {
		return nil, err
	}
	previous := int64(0)
	if s == nil {
		s = &entity.FiscalSequence{TenantID: tenantID, DocType: docType, Start: 1, Current: 1}
	} else {
		previous = s.Current
	}
	if in.Start != nil {
		s.Start = *in.Start
		if in.Current == nil && s.Current < s.Start {
			s.Current = s.Start
		}
	}
	if in.Current != nil {
		s.Current = *in.Current
	}
	if in.Max != nil {
		s.Max = *in.Max
	}
	if in.Active != nil {
		s.Active = *in.Active
	}
	if in.ExpiresAt != nil {
		exp := *in.ExpiresAt
		s.ExpiresAt = &exp
	}
	switch {
	case s.Start < 1 || s.Current < s.Start:
		return nil, domain.Validation("INVALID_SEQUENCE", "current debe ser >= start >= 1")
	case s.Max > fiscal.MaxSequence:
		return nil, domain.Validation("INVALID_SEQUENCE", "max excede 8 dígitos")
	case s.Max > 0 && (s.Max < s.Start || s.Current > s.Max+1):
		return nil, domain.Validation("INVALID_SEQUENCE", "El rango start..max no contiene current")
	case s.Current < previous:
		return nil, domain.Conflict("SEQUENCE_REWIND", "current no puede retroceder; ya se emitieron esos NCF")
	case s.Active && s.Max == 0:
		return nil, domain.Validation("INVALID_SEQUENCE", "Una secuencia activa necesita max")
	}
	s.UpdatedAt = time.Now()
	if err := uc.seqRepo.Upsert(ctx, s); err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", tenantID).Str("doc_type", docType).Int64("current", s.Current).
		Int64("max", s.Max).Bool("active", s.Active).Msg("secuencia fiscal configurada")
	res := toSequenceResponse(s)
	return &res, nil
}

func (uc *UseCase) load(ctx context.Context, tenantID string) (*entity.Tenant, error) {
	t, err := uc.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound("TENANT_NOT_FOUND", "Tenant no encontrado")
	}
	return t, nil
}

func (uc *UseCase) response(t *entity.Tenant, seqs []*entity.FiscalSequence) *dto.TenantResponse {
	s := billing.ResolveSettings(t, uc.defaults)
	limits := entity.LimitsForPlan(t.Plan)
	res := &dto.TenantResponse{
		ID:       t.ID,
		Name:     t.Name,
		Plan:     t.Plan,
		Status:   t.Status,
		Business: t.Business,
		Features: t.Features,
		Settings: dto.ResolvedSettingsResponse{
			TaxEnabled:        s.TaxEnabled,
			TaxAllowToggle:    s.TaxAllowToggle,
			TaxRate:           s.TaxRate,
			DiscountEnabled:   s.DiscountEnabled,
			TipEnabled:        s.TipEnabled,
			PedidosYaEnabled:  s.PedidosYa.Enabled,
			PedidosYaRate:     s.PedidosYa.Rate,
			UberEatsEnabled:   s.UberEats.Enabled,
			UberEatsRate:      s.UberEats.Rate,
			DefaultPayment:    s.PaymentMethod,
			FiscalRequestable: s.FiscalEnabled && s.FiscalAllowRequest,
		},
		Fiscal: dto.FiscalSettingsResponse{
			Enabled:           t.FiscalEnabled,
			AllowRequest:      t.FiscalAllowReq,
			DefaultType:       s.FiscalDocType,
			EmissionPoint:     s.EmissionPoint,
			BranchName:        s.BranchName,
			NextInvoiceNumber: t.NextInvoiceNumber,
			Sequences:         make([]dto.FiscalSequenceResponse, 0, len(seqs)),
		},
		Limits:    dto.PlanLimitsResponse{MaxTables: limits.MaxTables, MaxDishes: limits.MaxDishes, MaxUsers: limits.MaxUsers},
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	for _, seq := range seqs {
		res.Fiscal.Sequences = append(res.Fiscal.Sequences, toSequenceResponse(seq))
	}
	return res
}

func toSequenceResponse(s *entity.FiscalSequence) dto.FiscalSequenceResponse {
	return dto.FiscalSequenceResponse{
		DocType:   s.DocType,
		Start:     s.Start,
		Current:   s.Current,
		Max:       s.Max,
		Active:    s.Active,
		ExpiresAt: s.ExpiresAt,
		Remaining: s.Remaining(),
	}
}

func toBusiness(in dto.BusinessInput) entity.BusinessInfo {
	return entity.BusinessInfo{
		Name:    strings.TrimSpace(in.Name),
		RNC:     strings.TrimSpace(in.RNC),
		Address: strings.TrimSpace(in.Address),
		Phone:   strings.TrimSpace(in.Phone),
	}
}
