package order

import (
	"context"
	"fmt"

	"github.com/jhoicas/saas-backoffice/internal/domain"
	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
)

// ReceiptUseCase genera el comprobante PDF de una compra.
type ReceiptUseCase struct {
	orderRepo   repository.OrderRepository
	companyRepo repository.CompanyRepository
	moduleRepo  repository.ModuleRepository
	subRepo     repository.SubscriptionRepository
	generator   ReceiptPDFGenerator
}

// NewReceiptUseCase construye el caso de uso inyectando todas sus dependencias.
func NewReceiptUseCase(
	orderRepo repository.OrderRepository,
	companyRepo repository.CompanyRepository,
	moduleRepo repository.ModuleRepository,
	subRepo repository.SubscriptionRepository,
	generator ReceiptPDFGenerator,
) *ReceiptUseCase {
	return &ReceiptUseCase{
		orderRepo:   orderRepo,
		companyRepo: companyRepo,
		moduleRepo:  moduleRepo,
		subRepo:     subRepo,
		generator:   generator,
	}
}

// DownloadReceiptPDF devuelve los bytes del PDF y el nombre de archivo sugerido.
//
// Retorna:
//   - domain.ErrNotFound  si la orden no existe o pertenece a otra empresa.
//   - domain.ErrPersistence si el store falla.
func (uc *ReceiptUseCase) DownloadReceiptPDF(ctx context.Context, companyID, orderID string) ([]byte, string, error) {
	if !isUUID(orderID) {
		return nil, "", domain.ErrNotFound
	}

	// ── 1. Orden ─────────────────────────────────────────────────────────────
	o, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, "", persistence("obtener orden", err)
	}
	if o == nil || o.CompanyID != companyID {
		return nil, "", domain.ErrNotFound
	}

	// ── 2. Empresa ───────────────────────────────────────────────────────────
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", persistence("obtener empresa", err)
	}
	if company == nil {
		return nil, "", domain.ErrNotFound
	}

	// ── 3. Líneas con nombre de módulo ───────────────────────────────────────
	lines := make([]ReceiptLine, 0, len(o.Details))
	for _, d := range o.Details {
		line := ReceiptLine{OrderDetail: *d, ModuleName: "Módulo " + d.ModuleID}
		if m, mErr := uc.moduleRepo.GetByID(ctx, d.ModuleID); mErr == nil && m != nil {
			line.ModuleName = m.Name
			line.ModuleType = m.Type
		}
		lines = append(lines, line)
	}

	// ── 4. Suscripción generada por la orden (si existe) ─────────────────────
	var sub *entity.Subscription
	subs, err := uc.subRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, "", persistence("obtener suscripciones", err)
	}
	for _, s := range subs {
		if s.OrderID != nil && *s.OrderID == o.ID {
			sub = s
			break
		}
	}

	// ── 5. PDF ───────────────────────────────────────────────────────────────
	pdfBytes, err := uc.generator.GenerateReceiptPDF(ctx, o, company, lines, sub)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("comprobante_%s.pdf", o.ID[:8]), nil
}
