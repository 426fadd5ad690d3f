package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	apphttp "github.com/jhoicas/pos-restaurante-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/pos-restaurante-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testTenantID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "pos-restaurante-test"
	testExpMin    = 60
)

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - RequireRole para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

func tokenFor(t *testing.T, id pkgjwt.Identity, expMin int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, id, testIssuer, expMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return tok
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	return "Bearer " + tokenFor(t, pkgjwt.Identity{UserID: testUserID, TenantID: testTenantID, Role: role}, testExpMin)
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	app := buildTestApp(entity.RoleOwner, entity.RoleAdmin)
	resp := doRequest(t, app, tokenForRole(t, entity.RoleAdmin))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode,
		"Admin debe poder acceder a ruta de gerencia")

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, entity.RoleAdmin, body["role"])
}

func TestRequireRole_CajeraAccedeRutaDeCaja(t *testing.T) {
	app := buildTestApp(entity.RoleOwner, entity.RoleAdmin, entity.RoleCajera)
	resp := doRequest(t, app, tokenForRole(t, entity.RoleCajera))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_CamareroBloqueadoEnRutaDeGerencia(t *testing.T) {
	app := buildTestApp(entity.RoleOwner, entity.RoleAdmin)
	resp := doRequest(t, app, tokenForRole(t, entity.RoleWaiter))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode,
		"Camarero no debe poder acceder a ruta de gerencia")

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

// Token sin claim de rol → HTTP 401 MISSING_ROLE.
func TestRequireRole_TokenSinRol_Retorna401(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, tokenForRole(t, ""))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_ROLE")
}

func TestRequireRole_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestRequireRole_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_FormatoNoBearer(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, "Basic abc")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware: extracción de claims del token
// ──────────────────────────────────────────────────────────────────────────────

func meApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   apphttp.GetUserID(c),
			"tenant_id": apphttp.GetTenantID(c),
			"client_id": apphttp.GetClientID(c),
			"role":      apphttp.GetRole(c),
		})
	})
	return app
}

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenForRole(t, entity.RoleOwner))
	resp, err := meApp().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testTenantID, body["tenant_id"])
	assert.Equal(t, "default", body["client_id"], "sin client_id en el token se usa default")
	assert.Equal(t, entity.RoleOwner, body["role"])
}

func TestAuthMiddleware_TokenEnQuery(t *testing.T) {
	tok := tokenFor(t, pkgjwt.Identity{UserID: testUserID, TenantID: testTenantID, ClientID: "sucursal-2", Role: entity.RoleWaiter}, testExpMin)
	req := httptest.NewRequest(http.MethodGet, "/me?token="+tok, nil)
	resp, err := meApp().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "sucursal-2", body["client_id"])
}

func TestAuthMiddleware_TokenSinTenant(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, pkgjwt.Identity{UserID: testUserID, Role: entity.RoleAdmin}, testExpMin))
	resp, err := meApp().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireActiveTenant
// ──────────────────────────────────────────────────────────────────────────────

type stubTenants struct {
	t   *entity.Tenant
	err error
}

func (s stubTenants) GetByID(_ context.Context, _ string) (*entity.Tenant, error) { return s.t, s.err }

func TestRequireActiveTenant(t *testing.T) {
	cases := []struct {
		name   string
		repo   stubTenants
		status int
		code   string
	}{
		{"activo", stubTenants{t: &entity.Tenant{ID: testTenantID, Status: entity.TenantStatusActive}}, http.StatusOK, ""},
		{"suspendido", stubTenants{t: &entity.Tenant{ID: testTenantID, Status: entity.TenantStatusSuspended}}, http.StatusForbidden, "TENANT_SUSPENDED"},
		{"inexistente", stubTenants{}, http.StatusUnauthorized, "TENANT_NOT_FOUND"},
		{"falla de base de datos", stubTenants{err: errors.New("sin conexión")}, http.StatusServiceUnavailable, "TENANT_CHECK_FAILED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/x", apphttp.AuthMiddleware(testJWTSecret), apphttp.RequireActiveTenant(tc.repo), func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Authorization", tokenForRole(t, entity.RoleCajera))
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.code != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Contains(t, string(body), tc.code)
			}
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests JWT pkg
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateAndParse(t *testing.T) {
	tok := tokenFor(t, pkgjwt.Identity{UserID: testUserID, TenantID: testTenantID, ClientID: "c1", Role: entity.RoleCajera}, testExpMin)

	id, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUserID, id.UserID)
	assert.Equal(t, testTenantID, id.TenantID)
	assert.Equal(t, "c1", id.ClientID)
	assert.Equal(t, entity.RoleCajera, id.Role)
}

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	tok := tokenFor(t, pkgjwt.Identity{UserID: testUserID, TenantID: testTenantID, Role: entity.RoleAdmin}, -1)

	_, err := pkgjwt.Parse(testJWTSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok := tokenFor(t, pkgjwt.Identity{UserID: testUserID, TenantID: testTenantID, Role: entity.RoleAdmin}, testExpMin)

	_, err := pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}
