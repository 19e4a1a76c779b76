package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/saas-backoffice/internal/application/dto"
	"github.com/jhoicas/saas-backoffice/internal/domain"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// AnalyticsUseCase reporte de gasto en módulos por empresa.
type AnalyticsUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewAnalyticsUseCase construye el caso de uso. now nil = time.Now.
func NewAnalyticsUseCase(analyticsRepo repository.AnalyticsRepository, now func() time.Time) *AnalyticsUseCase {
	if now == nil {
		now = time.Now
	}
	return &AnalyticsUseCase{analyticsRepo: analyticsRepo, now: now}
}

// GetSpendingReport agrupa lo comprado por la empresa en el período y calcula la participación de cada módulo.
func (uc *AnalyticsUseCase) GetSpendingReport(ctx context.Context, companyID string, req dto.SpendingReportRequest) (*dto.SpendingReportDTO, error) {
	start, end, err := parsePeriod(uc.now().UTC(), req.StartDate, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	rows, err := uc.analyticsRepo.GetSpendByModule(ctx, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: analytics: %w", domain.ErrPersistence, err)
	}

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Revenue)
	}
	modules := make([]dto.ModuleSpendDTO, 0, len(rows))
	for _, r := range rows {
		pct := decimal.Zero
		if total.IsPositive() {
			pct = r.Revenue.Div(total).Mul(hundred).Round(2)
		}
		modules = append(modules, dto.ModuleSpendDTO{
			ModuleID:   r.ModuleID,
			ModuleType: r.ModuleType.String(),
			ModuleName: r.ModuleName,
			OrderCount: r.OrderCount,
			Revenue:    r.Revenue.Round(2),
			RevenuePct: pct,
		})
	}

	return &dto.SpendingReportDTO{
		Period: dto.PeriodDTO{
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
		},
		Total:   total.Round(2),
		Modules: modules,
	}, nil
}

// parsePeriod convierte los strings de fecha (UTC) en time.Time; aplica valores por defecto si están vacíos.
func parsePeriod(now time.Time, startStr, endStr string) (start, end time.Time, err error) {
	if endStr == "" {
		end = now
	} else {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end_date inválido: %w", err)
		}
		end = end.Add(24*time.Hour - time.Microsecond) // inclusive hasta el final del día
	}

	if startStr == "" {
		// Primer día del mes de end
		start = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start_date inválido: %w", err)
		}
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date no puede ser posterior a end_date")
	}
	return start, end, nil
}
