package dto

import "github.com/shopspring/decimal"

// SpendingReportRequest parámetros de GET /api/analytics/spending.
type SpendingReportRequest struct {
	StartDate string `query:"start_date"` // YYYY-MM-DD; default: primer día del mes
	EndDate   string `query:"end_date"`   // YYYY-MM-DD; default: hoy
}

// PeriodDTO período del reporte.
type PeriodDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ModuleSpendDTO gasto de la empresa en un módulo.
type ModuleSpendDTO struct {
	ModuleID   string          `json:"module_id"`
	ModuleType string          `json:"module_type"`
	ModuleName string          `json:"module_name"`
	OrderCount int             `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
	RevenuePct decimal.Decimal `json:"revenue_pct"` // participación sobre el total del período
}

// SpendingReportDTO gasto en módulos de la empresa en un período.
type SpendingReportDTO struct {
	Period  PeriodDTO        `json:"period"`
	Total   decimal.Decimal  `json:"total"`
	Modules []ModuleSpendDTO `json:"modules"`
}
