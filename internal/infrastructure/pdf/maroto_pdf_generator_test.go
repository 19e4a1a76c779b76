package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/saas-backoffice/internal/application/order"
	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$0,01", formatMoney(decimal.RequireFromString("0.01")))
	assert.Equal(t, "$350,00", formatMoney(decimal.RequireFromString("350")))
	assert.Equal(t, "$1.234.567,50", formatMoney(decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "-$1.000,00", formatMoney(decimal.RequireFromString("-1000")))
}

func TestGenerateReceiptPDF(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	o := &entity.Order{
		ID: "3f1c2a9e-3b7d-4c55-9a0e-5d2b8f41c7a3", CompanyID: "c1", SaleDate: now,
		Status: entity.OrderStatusApproved, TotalAmount: decimal.RequireFromString("35.00"),
	}
	lines := []order.ReceiptLine{
		{OrderDetail: entity.OrderDetail{ID: "d1", ModuleID: "m1", Price: decimal.RequireFromString("10.00")}, ModuleName: "Básico", ModuleType: entity.ModuleBasic},
		{OrderDetail: entity.OrderDetail{ID: "d2", ModuleID: "m2", Price: decimal.RequireFromString("25.00")}, ModuleName: "Redes sociales", ModuleType: entity.ModuleSocialNetwork},
	}
	sub := &entity.Subscription{ID: "s1", Status: entity.SubscriptionActive, StartDate: now, EndDate: now.AddDate(0, 1, 0)}

	out, err := NewMarotoPDFGenerator().GenerateReceiptPDF(context.Background(), o, &entity.Company{Name: "Acme", TaxID: "900"}, lines, sub)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	out, err = NewMarotoPDFGenerator().GenerateReceiptPDF(context.Background(), o, &entity.Company{Name: "Acme"}, lines, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
