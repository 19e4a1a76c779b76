package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/saas-backoffice/internal/application/dto"
	"github.com/jhoicas/saas-backoffice/internal/application/usecase"
	"github.com/jhoicas/saas-backoffice/internal/domain"
	"github.com/jhoicas/saas-backoffice/internal/domain/entitlement"
	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
	"github.com/jhoicas/saas-backoffice/internal/infrastructure/memory"
)

var now = time.Date(2026, 7, 31, 23, 59, 59, 0, time.UTC)

func strPtr(s string) *string { return &s }

// ── Empresas ──────────────────────────────────────────────────────────────────

func TestCompany_CreateYDuplicado(t *testing.T) {
	uc := usecase.NewCompanyUseCase(memory.NewCompanyRepository(memory.New()))
	ctx := context.Background()

	c, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: " Acme ", TaxID: "900"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, entity.CompanyStatusActive, c.Status)

	_, err = uc.Create(ctx, dto.CreateCompanyRequest{Name: "Otra", TaxID: "900"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCompany_Update(t *testing.T) {
	uc := usecase.NewCompanyUseCase(memory.NewCompanyRepository(memory.New()))
	ctx := context.Background()
	c, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: "Acme", TaxID: "900"})
	require.NoError(t, err)

	got, err := uc.Update(ctx, c.ID, dto.UpdateCompanyRequest{Phone: strPtr("555"), Status: strPtr("suspended")})
	require.NoError(t, err)
	assert.Equal(t, "555", got.Phone)
	assert.Equal(t, entity.CompanyStatusSuspended, got.Status)

	_, err = uc.Update(ctx, c.ID, dto.UpdateCompanyRequest{Status: strPtr("borrada")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(ctx, uuid.NewString(), dto.UpdateCompanyRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompany_List(t *testing.T) {
	uc := usecase.NewCompanyUseCase(memory.NewCompanyRepository(memory.New()))
	ctx := context.Background()
	for _, name := range []string{"C", "A", "B"} {
		_, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: name, TaxID: "nit-" + name})
		require.NoError(t, err)
	}

	list, err := uc.List(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "B", list.Items[0].Name)
	assert.Equal(t, "C", list.Items[1].Name)
}

// ── Usuarios y roles ──────────────────────────────────────────────────────────

func TestUser_AssignRoleYListar(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	users := memory.NewUserRepository(s)
	uc := usecase.NewUserUseCase(users, memory.NewUserRoleRepository(s))

	u := &entity.User{ID: uuid.NewString(), Email: "ana@acme.co", Status: entity.UserStatusActive}
	require.NoError(t, users.Create(ctx, u))
	companyID := uuid.NewString()

	_, err := uc.GetByID(ctx, companyID, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "sin rol en la empresa")

	got, err := uc.AssignRole(ctx, companyID, dto.AssignRoleRequest{UserID: u.ID, Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, []string{entity.RoleAdmin}, got.Roles)

	list, err := uc.ListByCompany(ctx, companyID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 20, list.Page.Limit)
}

func TestUser_AssignRoleGodProhibido(t *testing.T) {
	s := memory.New()
	uc := usecase.NewUserUseCase(memory.NewUserRepository(s), memory.NewUserRoleRepository(s))
	_, err := uc.AssignRole(context.Background(), uuid.NewString(), dto.AssignRoleRequest{UserID: uuid.NewString(), Role: entity.RoleGod})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ── Resolver de módulos ───────────────────────────────────────────────────────

type resolverFixture struct {
	svc       *usecase.ModuleService
	companyID string
	userID    string
	end       time.Time
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	s.AddModules(memory.DefaultCatalog()...)
	f := &resolverFixture{companyID: uuid.NewString(), userID: uuid.NewString()}
	require.NoError(t, memory.NewCompanyRepository(s).Create(ctx, &entity.Company{ID: f.companyID, Name: "Acme", TaxID: "1"}))
	require.NoError(t, memory.NewUserRoleRepository(s).Assign(ctx, &entity.UserRole{UserID: f.userID, CompanyID: f.companyID, Role: entity.RoleMember}))

	sub := &entity.Subscription{ID: uuid.NewString(), CompanyID: f.companyID, Status: entity.SubscriptionActive, StartDate: now.Add(-time.Hour), EndDate: now}
	credits := []*entity.SubscriptionCredit{{
		ID: uuid.NewString(), SubscriptionID: sub.ID, ModuleID: memory.CatalogModuleID(entity.ModuleCRM),
		IsActive: true, StartDate: sub.StartDate, EndDate: sub.EndDate,
	}}
	_, err := memory.NewSubscriptionRepository(s).GrantCredits(ctx, sub, credits)
	require.NoError(t, err)
	f.end = sub.EndDate

	f.svc = usecase.NewModuleService(memory.NewModuleRepository(s), memory.NewSubscriptionRepository(s), func() time.Time { return now })
	return f
}

func TestModuleService_UsaRelojDelResolver(t *testing.T) {
	f := newResolverFixture(t)

	resp, err := f.svc.ActiveModules(context.Background(), f.companyID, f.userID, nil)
	require.NoError(t, err)
	assert.Equal(t, now, resp.AsOf)
	assert.Equal(t, []string{"crm"}, resp.Modules, "el crédito que vence justo ahora sigue vigente")

	later := now.Add(time.Microsecond)
	resp, err = f.svc.ActiveModules(context.Background(), f.companyID, f.userID, &later)
	require.NoError(t, err)
	assert.NotNil(t, resp.Modules)
	assert.Empty(t, resp.Modules)
}

func TestModuleService_AsOfSeTruncaAMicrosegundos(t *testing.T) {
	f := newResolverFixture(t)

	justAfter := f.end.Add(time.Nanosecond)
	types, err := f.svc.ActiveModuleTypes(context.Background(), f.companyID, f.userID, &justAfter)
	require.NoError(t, err)
	assert.Equal(t, []entity.ModuleType{entity.ModuleCRM}, types, "igual que en PostgreSQL: fin + 1ns sigue dentro")

	resp, err := f.svc.ActiveModules(context.Background(), f.companyID, f.userID, &justAfter)
	require.NoError(t, err)
	assert.Equal(t, f.end, resp.AsOf)
}

func TestModuleService_HasActiveModule(t *testing.T) {
	f := newResolverFixture(t)

	ok, err := f.svc.HasActiveModule(context.Background(), f.companyID, f.userID, entity.ModuleCRM)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.HasActiveModule(context.Background(), f.companyID, f.userID, entity.ModuleErp)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestModuleService_ListSubscriptions(t *testing.T) {
	f := newResolverFixture(t)

	subs, err := f.svc.ListSubscriptions(context.Background(), f.companyID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Len(t, subs[0].Credits, 1)
	assert.Nil(t, subs[0].OrderID, "concesión manual")
}

func TestModuleService_ListCatalog(t *testing.T) {
	f := newResolverFixture(t)

	catalog, err := f.svc.ListCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 5)
	assert.Equal(t, "analytics", catalog[0].Type)
}

type brokenSubs struct {
	repository.SubscriptionRepository
}

func (brokenSubs) FindActiveModuleTypes(context.Context, string, string, time.Time) ([]entity.ModuleType, error) {
	return nil, errors.New("connection refused")
}

func TestModuleService_FalloDelStoreNoEsListaVacia(t *testing.T) {
	svc := usecase.NewModuleService(memory.NewModuleRepository(memory.New()), brokenSubs{}, nil)

	types, err := svc.ActiveModuleTypes(context.Background(), uuid.NewString(), uuid.NewString(), nil)
	assert.Nil(t, types)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.True(t, domain.IsRetryable(err))
}

func TestModuleService_Now(t *testing.T) {
	svc := usecase.NewModuleService(nil, nil, func() time.Time { return now.Add(1500 * time.Nanosecond) })
	assert.Equal(t, now.Add(time.Microsecond), svc.Now(), "truncado a la precisión persistida")
	assert.Equal(t, entitlement.ClockPrecision, time.Microsecond)
}

// ── Analítica ─────────────────────────────────────────────────────────────────

func placeOrder(t *testing.T, s *memory.Store, companyID string, at time.Time, types ...entity.ModuleType) {
	t.Helper()
	o := &entity.Order{ID: uuid.NewString(), CompanyID: companyID, UserID: uuid.NewString(), SaleDate: at, Status: entity.OrderStatusApproved}
	for _, mt := range types {
		m, err := memory.NewModuleRepository(s).GetByType(context.Background(), mt)
		require.NoError(t, err)
		o.Details = append(o.Details, &entity.OrderDetail{ID: uuid.NewString(), OrderID: o.ID, ModuleID: m.ID, Price: m.Price})
		o.TotalAmount = o.TotalAmount.Add(m.Price)
	}
	require.NoError(t, memory.NewOrderRepository(s).Create(context.Background(), o))
}

func TestAnalytics_GastoPorModulo(t *testing.T) {
	s := memory.New()
	s.AddModules(memory.DefaultCatalog()...)
	companyID := uuid.NewString()
	placeOrder(t, s, companyID, now.AddDate(0, 0, -10), entity.ModuleBasic, entity.ModuleErp)
	placeOrder(t, s, companyID, now.AddDate(0, 0, -1), entity.ModuleBasic)
	placeOrder(t, s, companyID, now.AddDate(0, -2, 0), entity.ModuleCRM) // fuera del período
	placeOrder(t, s, uuid.NewString(), now, entity.ModuleAnalytics)      // otra empresa

	uc := usecase.NewAnalyticsUseCase(memory.NewAnalyticsRepository(s), func() time.Time { return now })
	report, err := uc.GetSpendingReport(context.Background(), companyID, dto.SpendingReportRequest{})
	require.NoError(t, err)

	assert.Equal(t, "2026-07-01", report.Period.StartDate)
	assert.Equal(t, "2026-07-31", report.Period.EndDate)
	assert.Equal(t, "70", report.Total.String())
	require.Len(t, report.Modules, 2)
	assert.Equal(t, "erp", report.Modules[0].ModuleType)
	assert.Equal(t, 1, report.Modules[0].OrderCount)
	assert.Equal(t, "basic", report.Modules[1].ModuleType)
	assert.Equal(t, 2, report.Modules[1].OrderCount)
	assert.Equal(t, "20", report.Modules[1].Revenue.String())
	assert.Equal(t, "28.57", report.Modules[1].RevenuePct.String())
}

func TestAnalytics_PeriodoExplicitoInclusivo(t *testing.T) {
	s := memory.New()
	s.AddModules(memory.DefaultCatalog()...)
	companyID := uuid.NewString()
	placeOrder(t, s, companyID, time.Date(2026, 5, 31, 23, 59, 59, 0, time.UTC), entity.ModuleCRM)

	uc := usecase.NewAnalyticsUseCase(memory.NewAnalyticsRepository(s), func() time.Time { return now })
	report, err := uc.GetSpendingReport(context.Background(), companyID, dto.SpendingReportRequest{StartDate: "2026-05-01", EndDate: "2026-05-31"})
	require.NoError(t, err)
	require.Len(t, report.Modules, 1)
	assert.Equal(t, "100", report.Modules[0].RevenuePct.String())
}

func TestAnalytics_PeriodoInvalido(t *testing.T) {
	uc := usecase.NewAnalyticsUseCase(memory.NewAnalyticsRepository(memory.New()), nil)

	_, err := uc.GetSpendingReport(context.Background(), uuid.NewString(), dto.SpendingReportRequest{StartDate: "2026-06-10", EndDate: "2026-06-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.GetSpendingReport(context.Background(), uuid.NewString(), dto.SpendingReportRequest{EndDate: "31/12/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnalytics_SinComprasTotalCero(t *testing.T) {
	uc := usecase.NewAnalyticsUseCase(memory.NewAnalyticsRepository(memory.New()), func() time.Time { return now })
	report, err := uc.GetSpendingReport(context.Background(), uuid.NewString(), dto.SpendingReportRequest{})
	require.NoError(t, err)
	assert.True(t, report.Total.IsZero())
	assert.NotNil(t, report.Modules)
	assert.Empty(t, report.Modules)
}
