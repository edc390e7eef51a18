package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	apphttp "github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/interfaces/http"
	pkgjwt "github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/jwt"
)

const (
	testJWTSecret = "irigtrack-test-secret"
	testIssuer    = "irigtrack-test"
)

// bearer cabecera Authorization firmada con el secreto de pruebas.
func bearer(t *testing.T, userID, role string) string {
	return bearerWith(t, testJWTSecret, userID, role, 60)
}

func bearerWith(t *testing.T, secret, userID, role string, expMin int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(secret, userID, role, testIssuer, expMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// raw envía una petición con la cabecera Authorization tal cual.
func (e *env) raw(t *testing.T, method, path, authorization, body string) (int, string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(out)
}

func TestAuthMiddleware_DejaElActorEnLocals(t *testing.T) {
	app := fiber.New()
	app.Get("/whoami", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(apphttp.GetActor(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", bearer(t, "apr-7", entity.RoleApprover))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got entity.Actor
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, entity.Actor{ID: "apr-7", Role: entity.RoleApprover}, got)
}

func TestAuthMiddleware_CredencialesRechazadas(t *testing.T) {
	e := newEnv(t)
	cases := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"sin cabecera", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"esquema distinto de Bearer", "Token abc", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token mal formado", "Bearer no.es.jwt", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"otro secreto", bearerWith(t, "otro-secreto", "adm-1", entity.RoleAdmin, 60), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"expirado", bearerWith(t, testJWTSecret, "adm-1", entity.RoleAdmin, -1), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"rol fuera de los cuatro", bearer(t, "adm-1", "superadmin"), http.StatusForbidden, "UNKNOWN_ROLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := e.raw(t, http.MethodGet, "/api/locations", tc.header, "")
			assert.Equal(t, tc.status, status)
			assert.Contains(t, body, tc.code)
		})
	}
}

func TestRouter_FiltroPorRol(t *testing.T) {
	e := newEnv(t)
	cases := []struct {
		name   string
		method string
		path   string
		userID string
		role   string
		body   string
		status int
		code   string
	}{
		{"admin lista usuarios", http.MethodGet, "/api/users", "adm-1", entity.RoleAdmin, "", http.StatusOK, ""},
		{"suministros no administra usuarios", http.MethodGet, "/api/users", "sup-1", entity.RoleSupply, "", http.StatusForbidden, "FORBIDDEN"},
		{"token sin rol en ruta de admin", http.MethodGet, "/api/users", "adm-1", "", "", http.StatusUnauthorized, "MISSING_ROLE"},
		{"suministros ve reposición", http.MethodGet, "/api/inventory/replenishment-list", "sup-1", entity.RoleSupply, "", http.StatusOK, ""},
		{"solicitante no ve reposición", http.MethodGet, "/api/inventory/replenishment-list", "req-1", entity.RoleRequester, "", http.StatusForbidden, "FORBIDDEN"},
		{"solicitante no crea ubicaciones", http.MethodPost, "/api/locations", "req-1", entity.RoleRequester, `{"name":"Sala"}`, http.StatusForbidden, "FORBIDDEN"},
		{"solicitante no libera en masa", http.MethodPost, "/api/custody/bulk-clear", "req-1", entity.RoleRequester,
			`{"custodian":{"kind":"USER","id":"req-1"},"entries":[{"receipt_id":"r-1","action":"RETURN"}]}`, http.StatusForbidden, "FORBIDDEN"},
		{"solicitante no purga", http.MethodDelete, "/api/items/item-1/purge", "req-1", entity.RoleRequester, "", http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := e.raw(t, tc.method, tc.path, bearer(t, tc.userID, tc.role), tc.body)
			assert.Equal(t, tc.status, status, body)
			if tc.code != "" {
				assert.Contains(t, body, tc.code)
			}
		})
	}
}
