package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/application/order"
	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/jhoicas/pos-restaurante-api/pkg/jwt"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

type memUsers struct {
	repository.UserRepository
	rows []*entity.User
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	for _, r := range m.rows {
		if r.Email == strings.ToLower(u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *u
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, r := range m.rows {
		if r.Email == strings.ToLower(strings.TrimSpace(email)) {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memUsers) ListByTenant(_ context.Context, tenantID string) ([]*entity.User, error) {
	var out []*entity.User
	for _, r := range m.rows {
		if r.TenantID == tenantID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memTenants struct {
	repository.TenantRepository
	t *entity.Tenant
}

func (m memTenants) GetByID(context.Context, string) (*entity.Tenant, error) { return m.t, nil }

var (
	owner = order.Actor{TenantID: "t1", ClientID: "default", UserID: "u-owner", Role: entity.RoleOwner}
	admin = order.Actor{TenantID: "t1", ClientID: "default", UserID: "u-admin", Role: entity.RoleAdmin}
)

const secret = "secreto-de-prueba"

func newUseCase(plan string) (*AuthUseCase, *memUsers) {
	users := &memUsers{}
	tenant := &entity.Tenant{ID: "t1", Plan: plan, Status: entity.TenantStatusActive}
	cfg := JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "pos-test"}
	return NewAuthUseCase(users, memTenants{t: tenant}, cfg, logger.Nop()), users
}

func newUser(email, role string) dto.CreateUserRequest {
	return dto.CreateUserRequest{Email: email, Password: "clave-segura", Role: role}
}

func TestCreateUser_YLogin(t *testing.T) {
	uc, users := newUseCase(entity.PlanPro)
	ctx := context.Background()

	res, err := uc.CreateUser(ctx, owner, newUser(" Caja@Local.DO ", entity.RoleCajera))
	require.NoError(t, err)
	assert.Equal(t, "caja@local.do", res.Email)
	assert.Equal(t, "caja@local.do", res.Name)
	assert.Equal(t, "default", res.ClientID)
	assert.NotEqual(t, "clave-segura", users.rows[0].PasswordHash)

	login, err := uc.Login(ctx, dto.LoginRequest{Email: "caja@local.do", Password: "clave-segura"})
	require.NoError(t, err)
	id, err := jwt.Parse(secret, login.Token)
	require.NoError(t, err)
	assert.Equal(t, jwt.Identity{UserID: res.ID, TenantID: "t1", ClientID: "default", Role: entity.RoleCajera}, id)
}

func TestCreateUser_Restricciones(t *testing.T) {
	uc, _ := newUseCase(entity.PlanPro)
	ctx := context.Background()

	_, err := uc.CreateUser(ctx, admin, newUser("dueno@local.do", entity.RoleOwner))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	waiter := order.Actor{TenantID: "t1", ClientID: "default", Role: entity.RoleWaiter}
	_, err = uc.CreateUser(ctx, waiter, newUser("x@local.do", entity.RoleWaiter))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.CreateUser(ctx, admin, newUser("mesero@local.do", entity.RoleWaiter))
	require.NoError(t, err)
	_, err = uc.CreateUser(ctx, admin, newUser("MESERO@local.do", entity.RoleWaiter))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "EMAIL_ALREADY_EXISTS", domain.Code(err))
}

func TestCreateUser_LimiteDelPlan(t *testing.T) {
	uc, _ := newUseCase(entity.PlanBasic)
	ctx := context.Background()
	for _, email := range []string{"a@x.do", "b@x.do", "c@x.do"} {
		_, err := uc.CreateUser(ctx, owner, newUser(email, entity.RoleWaiter))
		require.NoError(t, err)
	}
	_, err := uc.CreateUser(ctx, owner, newUser("d@x.do", entity.RoleWaiter))
	assert.ErrorIs(t, err, domain.ErrPlanLimit)
	assert.Equal(t, "USER_LIMIT_REACHED", domain.Code(err))
}

func TestLogin_Errores(t *testing.T) {
	uc, users := newUseCase(entity.PlanPro)
	ctx := context.Background()
	_, err := uc.CreateUser(ctx, owner, newUser("admin@local.do", entity.RoleAdmin))
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@local.do", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "admin@local.do", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, "INVALID_CREDENTIALS", domain.Code(err))

	users.rows[0].Status = "inactive"
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "admin@local.do", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
