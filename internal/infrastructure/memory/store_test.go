package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/saas-backoffice/internal/domain"
	"github.com/jhoicas/saas-backoffice/internal/domain/entitlement"
	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
	"github.com/jhoicas/saas-backoffice/internal/infrastructure/memory"
)

var t0 = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type ledger struct {
	store     *memory.Store
	subs      *memory.SubscriptionRepo
	orders    *memory.OrderRepo
	companyID string
	userID    string
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	s.AddModules(memory.DefaultCatalog()...)
	l := &ledger{
		store:     s,
		subs:      memory.NewSubscriptionRepository(s),
		orders:    memory.NewOrderRepository(s),
		companyID: uuid.NewString(),
		userID:    uuid.NewString(),
	}
	require.NoError(t, memory.NewCompanyRepository(s).Create(ctx, &entity.Company{ID: l.companyID, Name: "Acme", TaxID: "1"}))
	require.NoError(t, memory.NewUserRoleRepository(s).Assign(ctx, &entity.UserRole{UserID: l.userID, CompanyID: l.companyID, Role: entity.RoleMember}))
	return l
}

// grant crea orden + suscripción para los tipos dados con la ventana [start, start+1 mes].
func (l *ledger) grant(t *testing.T, start time.Time, types ...entity.ModuleType) (*entity.Subscription, []*entity.SubscriptionCredit) {
	t.Helper()
	o := &entity.Order{ID: uuid.NewString(), UserID: l.userID, CompanyID: l.companyID, SaleDate: start, Status: entity.OrderStatusApproved}
	for _, mt := range types {
		o.Details = append(o.Details, &entity.OrderDetail{
			ID: uuid.NewString(), OrderID: o.ID, ModuleID: memory.CatalogModuleID(mt), Price: decimal.NewFromInt(1),
		})
	}
	sub, credits := entitlement.NewGrant(o, entitlement.NewWindow(start, 1), uuid.NewString)
	err := l.store.RunPurchase(context.Background(), func(orders repository.OrderRepository, subs repository.SubscriptionRepository) error {
		if err := orders.Create(context.Background(), o); err != nil {
			return err
		}
		_, err := subs.GrantCredits(context.Background(), sub, credits)
		return err
	})
	require.NoError(t, err)
	return sub, credits
}

// ── GrantCredits ──────────────────────────────────────────────────────────────

func TestGrantCredits_TodoONada(t *testing.T) {
	l := newLedger(t)
	sub := &entity.Subscription{ID: uuid.NewString(), CompanyID: l.companyID, Status: entity.SubscriptionActive, StartDate: t0, EndDate: t0.AddDate(0, 1, 0)}
	credits := []*entity.SubscriptionCredit{
		{ID: uuid.NewString(), SubscriptionID: sub.ID, ModuleID: memory.CatalogModuleID(entity.ModuleBasic), IsActive: true, StartDate: t0, EndDate: sub.EndDate},
		{ID: uuid.NewString(), SubscriptionID: sub.ID, ModuleID: uuid.NewString(), IsActive: true, StartDate: t0, EndDate: sub.EndDate},
	}

	_, err := l.subs.GrantCredits(context.Background(), sub, credits)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el segundo crédito apunta a un módulo inexistente")
	assert.Equal(t, memory.Counts{}, l.store.Counts())
}

func TestGrantCredits_SinCreditosSeRechaza(t *testing.T) {
	l := newLedger(t)
	sub := &entity.Subscription{ID: uuid.NewString(), CompanyID: l.companyID, Status: entity.SubscriptionActive, StartDate: t0, EndDate: t0.AddDate(0, 1, 0)}

	_, err := l.subs.GrantCredits(context.Background(), sub, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, l.store.Counts().Subscriptions)
}

func TestGrantCredits_ConcesionManualSinOrden(t *testing.T) {
	l := newLedger(t)
	sub := &entity.Subscription{ID: uuid.NewString(), CompanyID: l.companyID, Status: entity.SubscriptionActive, StartDate: t0, EndDate: t0.AddDate(0, 1, 0)}
	credits := []*entity.SubscriptionCredit{
		{ID: uuid.NewString(), SubscriptionID: sub.ID, ModuleID: memory.CatalogModuleID(entity.ModuleCRM), IsActive: true, StartDate: t0, EndDate: sub.EndDate},
	}

	got, err := l.subs.GrantCredits(context.Background(), sub, credits)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)
	assert.Equal(t, memory.Counts{Subscriptions: 1, Credits: 1}, l.store.Counts())
}

func TestRunPurchase_ErrorDescartaTodo(t *testing.T) {
	l := newLedger(t)
	o := &entity.Order{ID: uuid.NewString(), UserID: l.userID, CompanyID: l.companyID, SaleDate: t0, Status: entity.OrderStatusApproved}

	err := l.store.RunPurchase(context.Background(), func(orders repository.OrderRepository, _ repository.SubscriptionRepository) error {
		require.NoError(t, orders.Create(context.Background(), o))
		return errors.New("fallo después de crear la orden")
	})
	assert.Error(t, err)

	got, err := l.orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRunPurchase_CancelacionAntesDelCommit(t *testing.T) {
	l := newLedger(t)
	ctx, cancel := context.WithCancel(context.Background())
	o := &entity.Order{ID: uuid.NewString(), UserID: l.userID, CompanyID: l.companyID, SaleDate: t0, Status: entity.OrderStatusApproved}

	err := l.store.RunPurchase(ctx, func(orders repository.OrderRepository, _ repository.SubscriptionRepository) error {
		require.NoError(t, orders.Create(ctx, o))
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, memory.Counts{}, l.store.Counts())
}

// ── FindActiveModuleTypes ─────────────────────────────────────────────────────

func TestFindActive_ExtremosInclusivos(t *testing.T) {
	l := newLedger(t)
	sub, _ := l.grant(t, t0, entity.ModuleErp)
	ctx := context.Background()

	at := func(asOf time.Time) []entity.ModuleType {
		types, err := l.subs.FindActiveModuleTypes(ctx, l.companyID, l.userID, asOf)
		require.NoError(t, err)
		return types
	}

	assert.Equal(t, []entity.ModuleType{entity.ModuleErp}, at(t0), "inicio inclusive")
	assert.Equal(t, []entity.ModuleType{entity.ModuleErp}, at(sub.EndDate), "fin inclusive")
	assert.Empty(t, at(sub.EndDate.Add(time.Nanosecond)), "un nanosegundo después ya no")
	assert.Empty(t, at(t0.Add(-time.Nanosecond)))
}

func TestFindActive_UnionSinDuplicados(t *testing.T) {
	l := newLedger(t)
	l.grant(t, t0, entity.ModuleBasic, entity.ModuleErp)
	l.grant(t, t0.Add(time.Hour), entity.ModuleBasic, entity.ModuleCRM)

	types, err := l.subs.FindActiveModuleTypes(context.Background(), l.companyID, l.userID, t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []entity.ModuleType{entity.ModuleBasic, entity.ModuleCRM, entity.ModuleErp}, types)
}

func TestFindActive_Idempotente(t *testing.T) {
	l := newLedger(t)
	l.grant(t, t0, entity.ModuleAnalytics)
	asOf := t0.Add(24 * time.Hour)

	first, err := l.subs.FindActiveModuleTypes(context.Background(), l.companyID, l.userID, asOf)
	require.NoError(t, err)
	second, err := l.subs.FindActiveModuleTypes(context.Background(), l.companyID, l.userID, asOf)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFindActive_SinRolEsVacioSinError(t *testing.T) {
	l := newLedger(t)
	l.grant(t, t0, entity.ModuleErp)

	types, err := l.subs.FindActiveModuleTypes(context.Background(), l.companyID, uuid.NewString(), t0)
	require.NoError(t, err)
	assert.NotNil(t, types)
	assert.Empty(t, types)
}

func TestFindActive_RolEnOtraEmpresaNoCuenta(t *testing.T) {
	l := newLedger(t)
	l.grant(t, t0, entity.ModuleErp)
	other := uuid.NewString()
	require.NoError(t, memory.NewUserRoleRepository(l.store).Assign(context.Background(),
		&entity.UserRole{UserID: other, CompanyID: uuid.NewString(), Role: entity.RoleAdmin}))

	types, err := l.subs.FindActiveModuleTypes(context.Background(), l.companyID, other, t0)
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestFindActive_StoreCanceladoNoEsVacio(t *testing.T) {
	l := newLedger(t)
	l.grant(t, t0, entity.ModuleErp)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.subs.FindActiveModuleTypes(ctx, l.companyID, l.userID, t0)
	assert.ErrorIs(t, err, context.Canceled)
}

// ── Concurrencia ──────────────────────────────────────────────────────────────

func TestCompras_Concurrentes(t *testing.T) {
	l := newLedger(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.grant(t, t0, entity.ModuleBasic, entity.ModuleSocialNetwork)
		}()
	}
	wg.Wait()

	assert.Equal(t, memory.Counts{Orders: 20, OrderDetails: 40, Subscriptions: 20, Credits: 40}, l.store.Counts())
	types, err := l.subs.FindActiveModuleTypes(context.Background(), l.companyID, l.userID, t0)
	require.NoError(t, err)
	assert.Equal(t, []entity.ModuleType{entity.ModuleBasic, entity.ModuleSocialNetwork}, types)
}

// ── Catálogo ──────────────────────────────────────────────────────────────────

func TestResolveModules_DescartaDesconocidosYOrdena(t *testing.T) {
	s := memory.New()
	s.AddModules(memory.DefaultCatalog()...)
	repo := memory.NewModuleRepository(s)

	got, err := repo.ResolveModules(context.Background(), []string{
		memory.CatalogModuleID(entity.ModuleSocialNetwork),
		uuid.NewString(),
		memory.CatalogModuleID(entity.ModuleBasic),
		memory.CatalogModuleID(entity.ModuleBasic),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, entity.ModuleBasic, got[0].Type)
	assert.Equal(t, entity.ModuleSocialNetwork, got[1].Type)
}

func TestGetByType_Ausente(t *testing.T) {
	repo := memory.NewModuleRepository(memory.New())
	m, err := repo.GetByType(context.Background(), entity.ModuleBasic)
	require.NoError(t, err)
	assert.Nil(t, m)
}
