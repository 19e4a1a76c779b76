package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/saas-backoffice/internal/application/auth"
	"github.com/jhoicas/saas-backoffice/internal/application/dto"
	"github.com/jhoicas/saas-backoffice/internal/application/order"
	"github.com/jhoicas/saas-backoffice/internal/application/usecase"
	"github.com/jhoicas/saas-backoffice/internal/domain/entitlement"
	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/internal/infrastructure/memory"
	"github.com/jhoicas/saas-backoffice/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/saas-backoffice/internal/interfaces/http"
	"github.com/jhoicas/saas-backoffice/pkg/logger"
)

// newAPI arma la API completa sobre el store en memoria con el catálogo por defecto.
func newAPI(t *testing.T, limiter *apphttp.CompanyRateLimiter) (*fiber.App, *memory.Store) {
	t.Helper()
	s := memory.New()
	s.AddModules(memory.DefaultCatalog()...)

	companies := memory.NewCompanyRepository(s)
	users := memory.NewUserRepository(s)
	roles := memory.NewUserRoleRepository(s)
	modules := memory.NewModuleRepository(s)
	orders := memory.NewOrderRepository(s)
	subs := memory.NewSubscriptionRepository(s)

	moduleSvc := usecase.NewModuleService(modules, subs, nil)
	deps := apphttp.RouterDeps{
		CompanyUC:   usecase.NewCompanyUseCase(companies),
		UserUC:      usecase.NewUserUseCase(users, roles),
		ModuleSvc:   moduleSvc,
		PurchaseUC:  order.NewPurchaseUseCase(s, modules, roles, orders, subs, order.Config{Policy: entitlement.DefaultInclusionPolicy()}, logger.Nop()),
		ReceiptUC:   order.NewReceiptUseCase(orders, companies, modules, subs, pdf.NewMarotoPDFGenerator()),
		AnalyticsUC: usecase.NewAnalyticsUseCase(memory.NewAnalyticsRepository(s), nil),
		AuthUC: auth.NewAuthUseCase(users, roles, companies, moduleSvc, entitlement.DefaultRoleOverrides(),
			auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}, logger.Nop()),
		PurchaseLimit: limiter,
		JWTSecret:     testJWTSecret,
		Logger:        logger.Nop(),
	}
	app := fiber.New()
	apphttp.Router(app, deps)
	return app, s
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// signup crea empresa y admin y devuelve el token de login.
func signup(t *testing.T, app *fiber.App) (string, dto.LoginResponse) {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/companies", "", dto.CreateCompanyRequest{Name: "Acme", TaxID: "900123"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var company dto.CompanyResponse
	decode(t, resp, &company)

	resp = call(t, app, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Email: "ana@acme.co", Password: "s3creta-larga", CompanyID: company.ID, Role: entity.RoleAdmin,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ana@acme.co", Password: "s3creta-larga"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login dto.LoginResponse
	decode(t, resp, &login)
	return login.Token, login
}

// ── Flujo completo ────────────────────────────────────────────────────────────

func TestAPI_CompraHabilitaModulos(t *testing.T) {
	app, _ := newAPI(t, nil)
	token, login := signup(t, app)
	assert.Empty(t, login.Modules, "sin compras no hay módulos")

	resp := call(t, app, http.MethodGet, "/api/users", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "users exige basic vigente")
	resp.Body.Close()

	social := memory.CatalogModuleID(entity.ModuleSocialNetwork)
	resp = call(t, app, http.MethodPost, "/api/orders", token, dto.CreateOrderRequest{ModuleIDs: []string{social}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.OrderResponse
	decode(t, resp, &created)
	assert.True(t, decimal.RequireFromString("35").Equal(created.TotalAmount))
	assert.Len(t, created.Details, 2)
	assert.NotEmpty(t, created.SubscriptionID)

	resp = call(t, app, http.MethodGet, "/api/modules/active", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var active dto.ActiveModulesResponse
	decode(t, resp, &active)
	assert.Equal(t, []string{"basic", "social_network"}, active.Modules)

	resp = call(t, app, http.MethodGet, "/api/users", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/orders/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/subscriptions", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var subs []dto.SubscriptionResponse
	decode(t, resp, &subs)
	require.Len(t, subs, 1)
	assert.Len(t, subs[0].Credits, 2)

	// El token nuevo trae los módulos comprados.
	resp = call(t, app, http.MethodPost, "/api/auth/token", token, dto.TokenRequest{CompanyID: login.CompanyID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reissued dto.LoginResponse
	decode(t, resp, &reissued)
	assert.Equal(t, []string{"basic", "social_network"}, reissued.Modules)
}

func TestAPI_ComprobantePDF(t *testing.T) {
	app, _ := newAPI(t, nil)
	token, _ := signup(t, app)

	resp := call(t, app, http.MethodPost, "/api/orders", token, dto.CreateOrderRequest{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.OrderResponse
	decode(t, resp, &created)

	resp = call(t, app, http.MethodGet, "/api/orders/"+created.ID+"/receipt", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

// ── Errores ───────────────────────────────────────────────────────────────────

func TestAPI_CompraConIDInvalido400(t *testing.T) {
	app, s := newAPI(t, nil)
	token, _ := signup(t, app)

	resp := call(t, app, http.MethodPost, "/api/orders", token, dto.CreateOrderRequest{ModuleIDs: []string{"no-es-uuid"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	assert.Zero(t, s.Counts().Orders)
}

func TestAPI_TokenParaEmpresaAjena403(t *testing.T) {
	app, _ := newAPI(t, nil)
	token, _ := signup(t, app)

	resp := call(t, app, http.MethodPost, "/api/companies", "", dto.CreateCompanyRequest{Name: "Otra", TaxID: "800"})
	var other dto.CompanyResponse
	decode(t, resp, &other)

	resp = call(t, app, http.MethodPost, "/api/auth/token", token, dto.TokenRequest{CompanyID: other.ID})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "PERMISSION_DENIED")
}

func TestAPI_EditarOtraEmpresa403(t *testing.T) {
	app, _ := newAPI(t, nil)
	token, _ := signup(t, app)

	resp := call(t, app, http.MethodPost, "/api/companies", "", dto.CreateCompanyRequest{Name: "Otra", TaxID: "800"})
	var other dto.CompanyResponse
	decode(t, resp, &other)

	name := "Hackeada"
	resp = call(t, app, http.MethodPut, "/api/companies/"+other.ID, token, dto.UpdateCompanyRequest{Name: &name})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_AsOfInvalido400(t *testing.T) {
	app, _ := newAPI(t, nil)
	token, _ := signup(t, app)

	resp := call(t, app, http.MethodGet, "/api/modules/active?as_of=ayer", token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_LimiteDeComprasPorEmpresa(t *testing.T) {
	app, s := newAPI(t, apphttp.NewCompanyRateLimiter(1, 1))
	token, _ := signup(t, app)

	resp := call(t, app, http.MethodPost, "/api/orders", token, dto.CreateOrderRequest{})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/orders", token, dto.CreateOrderRequest{})
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, 1, s.Counts().Orders)
}

func TestAPI_CatalogoPublico(t *testing.T) {
	app, _ := newAPI(t, nil)

	resp := call(t, app, http.MethodGet, "/api/modules", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var catalog []dto.ModuleResponse
	decode(t, resp, &catalog)
	assert.Len(t, catalog, 5)
}

// ── Analítica ─────────────────────────────────────────────────────────────────

func TestAPI_ReporteDeGastoRequiereAnalytics(t *testing.T) {
	app, _ := newAPI(t, nil)
	token, _ := signup(t, app)

	resp := call(t, app, http.MethodPost, "/api/orders", token, dto.CreateOrderRequest{})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/analytics/spending", token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "sin analytics vigente")

	analytics := memory.CatalogModuleID(entity.ModuleAnalytics)
	resp = call(t, app, http.MethodPost, "/api/orders", token, dto.CreateOrderRequest{ModuleIDs: []string{analytics}})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/analytics/spending", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report dto.SpendingReportDTO
	decode(t, resp, &report)

	// basic 10 x2 + analytics 20
	assert.True(t, decimal.RequireFromString("40").Equal(report.Total))
	require.Len(t, report.Modules, 2)
	assert.Equal(t, "analytics", report.Modules[0].ModuleType)
	assert.Equal(t, "basic", report.Modules[1].ModuleType)
	assert.Equal(t, 2, report.Modules[1].OrderCount)
	assert.True(t, decimal.RequireFromString("50").Equal(report.Modules[0].RevenuePct))
}
