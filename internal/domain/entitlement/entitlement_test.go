package entitlement_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/saas-backoffice/internal/domain"
	"github.com/jhoicas/saas-backoffice/internal/domain/entitlement"
	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
)

// ── Ventanas de vigencia ──────────────────────────────────────────────────────

func TestAddMonths_MesNormal(t *testing.T) {
	start := time.Date(2026, 3, 15, 10, 30, 0, 123, time.UTC)
	assert.Equal(t, time.Date(2026, 4, 15, 10, 30, 0, 123, time.UTC), entitlement.AddMonths(start, 1))
}

func TestAddMonths_AjustaAlUltimoDia(t *testing.T) {
	assert.Equal(t,
		time.Date(2026, 2, 28, 8, 0, 0, 0, time.UTC),
		entitlement.AddMonths(time.Date(2026, 1, 31, 8, 0, 0, 0, time.UTC), 1))
	assert.Equal(t,
		time.Date(2028, 2, 29, 8, 0, 0, 0, time.UTC),
		entitlement.AddMonths(time.Date(2028, 1, 31, 8, 0, 0, 0, time.UTC), 1),
		"año bisiesto")
}

func TestAddMonths_CruzaAnio(t *testing.T) {
	assert.Equal(t,
		time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC),
		entitlement.AddMonths(time.Date(2026, 12, 10, 0, 0, 0, 0, time.UTC), 1))
	assert.Equal(t,
		time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC),
		entitlement.AddMonths(time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC), 3))
}

func TestWindow_ExtremosInclusivos(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	w := entitlement.NewWindow(start, 1)

	assert.True(t, w.Valid())
	assert.True(t, w.Contains(start), "el inicio es inclusive")
	assert.True(t, w.Contains(w.End), "el fin es inclusive")
	assert.False(t, w.Contains(w.End.Add(time.Nanosecond)), "un nanosegundo después ya no")
	assert.False(t, w.Contains(start.Add(-time.Nanosecond)))
}

func TestWindow_Invalida(t *testing.T) {
	now := time.Now()
	assert.False(t, entitlement.Window{Start: now, End: now}.Valid())
}

// ── Política de módulos siempre incluidos ─────────────────────────────────────

func TestInclusionPolicy_FaltaBasic(t *testing.T) {
	p := entitlement.DefaultInclusionPolicy()
	resolved := []*entity.Module{{ID: "m1", Type: entity.ModuleSocialNetwork}}
	assert.Equal(t, []entity.ModuleType{entity.ModuleBasic}, p.Missing(resolved))
}

func TestInclusionPolicy_BasicYaPresente(t *testing.T) {
	p := entitlement.DefaultInclusionPolicy()
	resolved := []*entity.Module{{ID: "b", Type: entity.ModuleBasic}, {ID: "e", Type: entity.ModuleErp}}
	assert.Empty(t, p.Missing(resolved))
}

func TestInclusionPolicy_DesdeConfiguracion(t *testing.T) {
	p := entitlement.NewInclusionPolicy([]string{"basic", "crm", "basic"}, true)
	assert.True(t, p.Strict)
	assert.Equal(t, []entity.ModuleType{entity.ModuleBasic, entity.ModuleCRM}, p.Types, "sin duplicados")
	assert.Equal(t, []entity.ModuleType{entity.ModuleBasic, entity.ModuleCRM}, p.Missing(nil))
}

// ── Precios ───────────────────────────────────────────────────────────────────

func TestSortModulesYTotal(t *testing.T) {
	modules := []*entity.Module{
		{ID: "2", Type: entity.ModuleSocialNetwork, Price: decimal.RequireFromString("30.50")},
		{ID: "1", Type: entity.ModuleBasic, Price: decimal.RequireFromString("10.00")},
		{ID: "3", Type: entity.ModuleErp, Price: decimal.RequireFromString("0.01")},
	}
	entitlement.SortModules(modules)

	assert.Equal(t, entity.ModuleBasic, modules[0].Type)
	assert.Equal(t, entity.ModuleErp, modules[1].Type)
	assert.Equal(t, entity.ModuleSocialNetwork, modules[2].Type)
	assert.True(t, decimal.RequireFromString("40.51").Equal(entitlement.Total(modules)))
}

func TestTotal_Vacio(t *testing.T) {
	assert.True(t, entitlement.Total(nil).IsZero())
}

func TestDedupeIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, entitlement.DedupeIDs([]string{"a", "", "b", "a"}))
}

// ── Overrides de rol (God -> erp) ─────────────────────────────────────────────

func TestCapabilities_GodAgregaErp(t *testing.T) {
	o := entitlement.DefaultRoleOverrides()
	got := o.Capabilities([]entity.ModuleType{entity.ModuleBasic}, []string{entity.RoleGod})
	assert.Equal(t, []string{"basic", "erp"}, got)
}

func TestCapabilities_GodSinDuplicarErp(t *testing.T) {
	o := entitlement.DefaultRoleOverrides()
	got := o.Capabilities([]entity.ModuleType{entity.ModuleErp, entity.ModuleBasic}, []string{entity.RoleGod})
	assert.Equal(t, []string{"basic", "erp"}, got)
}

func TestCapabilities_SinRolEspecial(t *testing.T) {
	o := entitlement.DefaultRoleOverrides()
	got := o.Capabilities([]entity.ModuleType{entity.ModuleBasic}, []string{entity.RoleAdmin})
	assert.Equal(t, []string{"basic"}, got)
}

func TestCapabilities_SinEntitlementsNiRoles(t *testing.T) {
	got := entitlement.DefaultRoleOverrides().Capabilities(nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNewRoleOverrides(t *testing.T) {
	o := entitlement.NewRoleOverrides(map[string][]string{"Auditor": {"analytics", "crm"}})
	got := o.Capabilities(nil, []string{"Auditor"})
	assert.Equal(t, []string{"analytics", "crm"}, got)
}

// ── Otorgamiento ──────────────────────────────────────────────────────────────

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestNewGrant_UnCreditoPorLinea(t *testing.T) {
	start := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	w := entitlement.NewWindow(start, 1)
	o := &entity.Order{ID: "o-1", CompanyID: "c-1", Details: []*entity.OrderDetail{
		{ID: "d-1", ModuleID: "m-basic"},
		{ID: "d-2", ModuleID: "m-crm"},
	}}

	sub, credits := entitlement.NewGrant(o, w, seqIDs())

	require.NotNil(t, sub.OrderID)
	assert.Equal(t, "o-1", *sub.OrderID)
	assert.Equal(t, entity.SubscriptionActive, sub.Status)
	assert.Equal(t, w.End, sub.EndDate)
	require.Len(t, credits, 2)
	for i, c := range credits {
		assert.Equal(t, sub.ID, c.SubscriptionID)
		assert.True(t, c.IsActive)
		assert.Equal(t, w.Start, c.StartDate)
		assert.Equal(t, w.End, c.EndDate)
		assert.Equal(t, o.Details[i].ID, *c.OrderDetailID)
	}
	assert.NoError(t, entitlement.ValidateGrant(sub, credits))
}

func TestValidateGrant_Rechazos(t *testing.T) {
	start := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	sub := &entity.Subscription{ID: "s", CompanyID: "c", StartDate: start, EndDate: end}
	credit := func(id, module string) *entity.SubscriptionCredit {
		return &entity.SubscriptionCredit{ID: id, SubscriptionID: "s", ModuleID: module, StartDate: start, EndDate: end}
	}

	cases := map[string]struct {
		sub     *entity.Subscription
		credits []*entity.SubscriptionCredit
	}{
		"sin créditos":       {sub, nil},
		"módulo repetido":    {sub, []*entity.SubscriptionCredit{credit("a", "m"), credit("b", "m")}},
		"otra suscripción":   {sub, []*entity.SubscriptionCredit{{ID: "a", SubscriptionID: "x", ModuleID: "m", StartDate: start, EndDate: end}}},
		"ventana invertida":  {&entity.Subscription{ID: "s", CompanyID: "c", StartDate: end, EndDate: start}, []*entity.SubscriptionCredit{credit("a", "m")}},
		"crédito sin módulo": {sub, []*entity.SubscriptionCredit{credit("a", "")}},
		"crédito de un instante": {sub, []*entity.SubscriptionCredit{
			{ID: "a", SubscriptionID: "s", ModuleID: "m", StartDate: start, EndDate: start},
		}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, entitlement.ValidateGrant(tc.sub, tc.credits), domain.ErrInvalidInput)
		})
	}
}
