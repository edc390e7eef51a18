package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/auth"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/custody"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/inventory"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/notify"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/requisition"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/usecase"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/infrastructure/memory"
	apphttp "github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/interfaces/http"
)

var testNow = time.Date(2025, 2, 10, 10, 0, 0, 0, time.UTC)

type stubArtifacts struct{ docs map[string][]byte }

func (s *stubArtifacts) GenerateRequisitionReceipt(_ context.Context, doc ports.ReceiptDocument) (string, error) {
	ref := doc.Requisition.Number + ".pdf"
	s.docs[ref] = []byte("%PDF-1.4 " + doc.Requisition.Number)
	return ref, nil
}

func (s *stubArtifacts) Fetch(_ context.Context, ref string) ([]byte, error) {
	b, ok := s.docs[ref]
	if !ok {
		return nil, errors.New("no existe")
	}
	return b, nil
}

type failingLabels struct{}

func (failingLabels) GenerateItemLabel(context.Context, entity.Item) ([]byte, error) {
	return nil, errors.New("sin fuentes")
}

type env struct {
	app   *fiber.App
	store *memory.Store
}

// newEnv arma la API completa sobre el store en memoria.
func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	clock := ports.ClockFunc(func() time.Time { return testNow })
	dir := store.Directory()
	events := notify.NewDispatcher(nil, nil)
	ledger := inventory.NewLedgerUseCase(store, clock, events)
	repos := store.Repos()

	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer})
	deps := apphttp.RouterDeps{
		AuthUC:        authUC,
		UserUC:        usecase.NewUserUseCase(store.Users()),
		LocationUC:    usecase.NewLocationUseCase(store.Locations(), store.Users()),
		ItemUC:        usecase.NewItemUseCase(store, repos.Items, failingLabels{}, clock),
		Ledger:        ledger,
		Replenishment: inventory.NewReplenishmentUseCase(repos.Items, repos.Usage, repos.Movements, clock, 5),
		Requisitions:  requisition.NewUseCase(store, ledger, repos.Requisitions, dir, &stubArtifacts{docs: map[string][]byte{}}, events, clock, nil),
		Custody:       custody.NewUseCase(store, repos.Items, repos.Receipts, dir, events, clock, nil),
		JWTSecret:     testJWTSecret,
	}
	app := fiber.New()
	apphttp.Router(app, deps)

	ctx := context.Background()
	for _, u := range []entity.User{
		{ID: "adm-1", Email: "admin@nia.gov", Name: "Admin", Role: entity.RoleAdmin, Status: entity.UserStatusActive},
		{ID: "sup-1", Email: "sup@nia.gov", Name: "Suministros", Role: entity.RoleSupply, Status: entity.UserStatusActive},
		{ID: "req-1", Email: "req@nia.gov", Name: "Solicitante", Role: entity.RoleRequester, Status: entity.UserStatusActive},
	} {
		u := u
		require.NoError(t, store.Users().Create(ctx, &u))
	}
	require.NoError(t, repos.Items.Create(ctx, &entity.Item{
		ID: "item-1", UUID: "tok-1", Name: "Resma carta", Quantity: 3,
		UnitValue: decimal.NewFromInt(10), Status: entity.ItemStatusActive,
		CreatedAt: testNow, UpdatedAt: testNow,
	}))
	return &env{app: app, store: store}
}

func (e *env) do(t *testing.T, method, path, userID, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", bearer(t, userID, role))
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func TestAuth_RegistroYLogin(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, http.MethodPost, "/api/auth/register", "", "", map[string]string{
		"email": "nuevo@nia.gov", "password": "secreto123", "name": "Nuevo",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"role":"requester"`)

	resp, _ = e.do(t, http.MethodPost, "/api/auth/register", "", "", map[string]string{
		"email": "NUEVO@nia.gov", "password": "secreto123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/api/auth/login", "", "", map[string]string{
		"email": "nuevo@nia.gov", "password": "secreto123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login map[string]any
	require.NoError(t, json.Unmarshal(body, &login))
	assert.NotEmpty(t, login["token"])

	resp, _ = e.do(t, http.MethodPost, "/api/auth/login", "", "", map[string]string{
		"email": "nuevo@nia.gov", "password": "incorrecta",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUsers_SoloAdmin(t *testing.T) {
	e := newEnv(t)
	resp, _ := e.do(t, http.MethodGet, "/api/users", "sup-1", entity.RoleSupply, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := e.do(t, http.MethodGet, "/api/users", "adm-1", entity.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "sup@nia.gov")
	assert.NotContains(t, string(body), "password")

	resp, _ = e.do(t, http.MethodGet, "/api/users/nadie", "adm-1", entity.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = e.do(t, http.MethodPut, "/api/users/req-1", "adm-1", entity.RoleAdmin, map[string]string{"role": "jefe"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "VALIDATION")
}

func TestStock_DeduccionInsuficienteInformaFaltante(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, http.MethodPost, "/api/items/item-1/stock/deduct", "sup-1", entity.RoleSupply, map[string]any{"amount": 5})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var out apphttp.StockErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "INSUFFICIENT_STOCK", out.Code)
	assert.Equal(t, 5, out.Needed)
	assert.Equal(t, 3, out.Available)

	resp, body = e.do(t, http.MethodPost, "/api/items/item-1/stock/deduct", "sup-1", entity.RoleSupply, map[string]any{"amount": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"quantity":1`)

	resp, _ = e.do(t, http.MethodPost, "/api/items/item-1/stock/deduct", "req-1", entity.RoleRequester, map[string]any{"amount": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = e.do(t, http.MethodGet, "/api/items/item-1/usage", "sup-1", entity.RoleSupply, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"period":"Q1 2025"`)
	assert.Contains(t, string(body), `"usage":2`)
}

func TestItems_LookupPublicoYEtiqueta(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, http.MethodGet, "/api/public/items/tok-1", "", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Resma carta")

	resp, _ = e.do(t, http.MethodGet, "/api/public/items/desconocido", "", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = e.do(t, http.MethodGet, "/api/items/item-1/label", "sup-1", entity.RoleSupply, nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(body), "DEPENDENCY")

	resp, _ = e.do(t, http.MethodDelete, "/api/items/item-1/purge", "sup-1", entity.RoleSupply, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = e.do(t, http.MethodDelete, "/api/items/item-1/purge", "adm-1", entity.RoleAdmin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "STATE_CONFLICT")
}

func TestRequisition_FlujoHastaComprobante(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, http.MethodPost, "/api/requisitions", "req-1", entity.RoleRequester, map[string]any{
		"lines": []map[string]any{{"item_id": "item-1", "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var req entity.Requisition
	require.NoError(t, json.Unmarshal(body, &req))
	base := "/api/requisitions/" + req.ID

	resp, _ = e.do(t, http.MethodGet, base+"/receipt", "req-1", entity.RoleRequester, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "sin aprobar no hay comprobante")

	resp, body = e.do(t, http.MethodPost, base+"/office-approve", "sup-1", entity.RoleSupply, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	resp, body = e.do(t, http.MethodPost, base+"/assign-approver", "sup-1", entity.RoleSupply, map[string]string{"approver_id": "adm-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	resp, body = e.do(t, http.MethodPost, base+"/approve", "adm-1", entity.RoleAdmin, map[string]string{"notes": "ok"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = e.do(t, http.MethodPost, base+"/approve", "adm-1", entity.RoleAdmin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var te apphttp.TransitionErrorResponse
	require.NoError(t, json.Unmarshal(body, &te))
	assert.Equal(t, "requisition", te.Entity)
	assert.NotEmpty(t, te.Current)

	resp, body = e.do(t, http.MethodGet, base+"/receipt", "req-1", entity.RoleRequester, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, _ = e.do(t, http.MethodGet, base, "otro", entity.RoleRequester, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCustody_EmisionVistaYDevolucion(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, http.MethodPost, "/api/custody/issue", "sup-1", entity.RoleSupply, map[string]any{
		"item_id":   "item-1",
		"custodian": map[string]string{"kind": entity.CustodianUser, "id": "req-1"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var out custody.Outcome
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotNil(t, out.Receipt)

	resp, body = e.do(t, http.MethodGet, "/api/custody/view?kind=USER&id=req-1", "req-1", entity.RoleRequester, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), out.Receipt.ID)

	resp, _ = e.do(t, http.MethodPost, "/api/custody/receipts/"+out.Receipt.ID+"/return", "req-1", entity.RoleRequester, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/api/custody/receipts/"+out.Receipt.ID+"/return", "sup-1", entity.RoleSupply, map[string]string{"note": "fin"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = e.do(t, http.MethodPost, "/api/custody/receipts/"+out.Receipt.ID+"/return", "sup-1", entity.RoleSupply, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "ALREADY_PROCESSED")

	resp, body = e.do(t, http.MethodGet, "/api/custody/reissuable", "sup-1", entity.RoleSupply, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "item-1")

	resp, _ = e.do(t, http.MethodPost, "/api/custody/issue", "sup-1", entity.RoleSupply, []byte("{"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
