package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/application/order"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/jhoicas/pos-restaurante-api/pkg/jwt"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

const statusActive = "active"

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: login y alta de usuarios del tenant.
type AuthUseCase struct {
	userRepo   repository.UserRepository
	tenantRepo repository.TenantRepository
	jwtCfg     JWTConfig
	log        *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, tenantRepo repository.TenantRepository, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, tenantRepo: tenantRepo, jwtCfg: jwtCfg, log: log.Component("auth")}
}

// HashPassword bcrypt con el costo por defecto.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CreateUser crea un usuario en el tenant del actor respetando el tope del plan.
// Solo un Owner puede crear otro Owner.
func (uc *AuthUseCase) CreateUser(ctx context.Context, actor order.Actor, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !entity.IsManager(actor.Role) {
		return nil, domain.NewError(domain.ErrForbidden, "FORBIDDEN", "Solo Owner o Admin pueden crear usuarios")
	}
	if in.Role == entity.RoleOwner && actor.Role != entity.RoleOwner {
		return nil, domain.NewError(domain.ErrForbidden, "FORBIDDEN", "Solo un Owner puede crear otro Owner")
	}
	tenant, err := uc.tenantRepo.GetByID(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.NotFound("TENANT_NOT_FOUND", "Tenant no encontrado")
	}
	if limit := entity.LimitsForPlan(tenant.Plan).MaxUsers; limit != nil {
		users, err := uc.userRepo.ListByTenant(ctx, actor.TenantID)
		if err != nil {
			return nil, err
		}
		if len(users) >= *limit {
			return nil, domain.NewError(domain.ErrPlanLimit, "USER_LIMIT_REACHED",
				fmt.Sprintf("El plan %s permite %d usuarios", tenant.Plan, *limit))
		}
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		clientID = actor.ClientID
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		TenantID:     actor.TenantID,
		ClientID:     clientID,
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         in.Role,
		Status:       statusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, domain.NewError(domain.ErrConflict, "EMAIL_ALREADY_EXISTS", domain.ErrEmailAlreadyExists.Error())
		}
		return nil, err
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("user_id", user.ID).Str("role", user.Role).Msg("usuario creado")
	return ToUserResponse(user), nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewError(domain.ErrUnauthorized, "INVALID_CREDENTIALS", "Credenciales inválidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		uc.log.Warn().Str("user_id", user.ID).Msg("login con password incorrecto")
		return nil, domain.NewError(domain.ErrUnauthorized, "INVALID_CREDENTIALS", "Credenciales inválidas")
	}
	if user.Status != statusActive {
		return nil, domain.NewError(domain.ErrForbidden, "USER_INACTIVE", "Usuario inactivo")
	}
	token, err := uc.Token(user)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *ToUserResponse(user)}, nil
}

// Token firma un JWT con el alcance del usuario.
func (uc *AuthUseCase) Token(u *entity.User) (string, error) {
	return jwt.Generate(uc.jwtCfg.Secret, jwt.Identity{
		UserID:   u.ID,
		TenantID: u.TenantID,
		ClientID: u.ClientID,
		Role:     u.Role,
	}, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
}

// ToUserResponse mapea un usuario a su DTO.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		TenantID:  u.TenantID,
		ClientID:  u.ClientID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
