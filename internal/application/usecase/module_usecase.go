package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/saas-backoffice/internal/application/dto"
	"github.com/jhoicas/saas-backoffice/internal/domain"
	"github.com/jhoicas/saas-backoffice/internal/domain/entitlement"
	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
)

// ModuleService resuelve qué módulos tiene vigentes un usuario en una empresa.
// Es el único punto de la aplicación que conoce la lógica de activación de módulos:
// refleja exactamente el ledger, sin overrides de rol y sin caché.
type ModuleService struct {
	moduleRepo repository.ModuleRepository
	subRepo    repository.SubscriptionRepository
	now        func() time.Time
}

// NewModuleService construye el servicio. now es el reloj canónico del resolver; nil = time.Now.
func NewModuleService(moduleRepo repository.ModuleRepository, subRepo repository.SubscriptionRepository, now func() time.Time) *ModuleService {
	if now == nil {
		now = time.Now
	}
	return &ModuleService{moduleRepo: moduleRepo, subRepo: subRepo, now: now}
}

// Now instante actual del resolver, con la precisión de los timestamps persistidos.
func (s *ModuleService) Now() time.Time {
	return s.now().UTC().Truncate(entitlement.ClockPrecision)
}

// ActiveModuleTypes tipos vigentes en asOf (nil = ahora), truncado a entitlement.ClockPrecision. Vacío si el usuario no tiene rol en la empresa.
// Un fallo del store se devuelve como domain.ErrPersistence, nunca como lista vacía.
func (s *ModuleService) ActiveModuleTypes(ctx context.Context, companyID, userID string, asOf *time.Time) ([]entity.ModuleType, error) {
	if companyID == "" || userID == "" {
		return nil, fmt.Errorf("%w: companyID y userID son obligatorios", domain.ErrInvalidInput)
	}
	at := s.Now()
	if asOf != nil {
		at = asOf.UTC().Truncate(entitlement.ClockPrecision)
	}
	types, err := s.subRepo.FindActiveModuleTypes(ctx, companyID, userID, at)
	if err != nil {
		return nil, fmt.Errorf("%w: resolver módulos activos: %w", domain.ErrPersistence, err)
	}
	return types, nil
}

// ActiveModules igual que ActiveModuleTypes pero listo para responder por HTTP.
func (s *ModuleService) ActiveModules(ctx context.Context, companyID, userID string, asOf *time.Time) (*dto.ActiveModulesResponse, error) {
	at := s.Now()
	if asOf != nil {
		at = asOf.UTC().Truncate(entitlement.ClockPrecision)
	}
	types, err := s.ActiveModuleTypes(ctx, companyID, userID, &at)
	if err != nil {
		return nil, err
	}
	modules := make([]string, 0, len(types))
	for _, t := range types {
		modules = append(modules, t.String())
	}
	return &dto.ActiveModulesResponse{CompanyID: companyID, UserID: userID, AsOf: at, Modules: modules}, nil
}

// HasActiveModule informa si el usuario tiene el módulo vigente ahora en la empresa.
// Devuelve false (sin error) si no lo tiene; error solo ante fallos de infraestructura.
func (s *ModuleService) HasActiveModule(ctx context.Context, companyID, userID string, module entity.ModuleType) (bool, error) {
	types, err := s.ActiveModuleTypes(ctx, companyID, userID, nil)
	if err != nil {
		return false, err
	}
	for _, t := range types {
		if t == module {
			return true, nil
		}
	}
	return false, nil
}

// ListCatalog lista el catálogo ordenado por tipo.
func (s *ModuleService) ListCatalog(ctx context.Context) ([]dto.ModuleResponse, error) {
	modules, err := s.moduleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listar catálogo: %w", domain.ErrPersistence, err)
	}
	out := make([]dto.ModuleResponse, 0, len(modules))
	for _, m := range modules {
		out = append(out, dto.ModuleResponse{ID: m.ID, Type: m.Type.String(), Name: m.Name, Price: m.Price})
	}
	return out, nil
}

// ListSubscriptions suscripciones de la empresa con sus créditos.
func (s *ModuleService) ListSubscriptions(ctx context.Context, companyID string) ([]dto.SubscriptionResponse, error) {
	subs, err := s.subRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("%w: listar suscripciones: %w", domain.ErrPersistence, err)
	}
	out := make([]dto.SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		credits, err := s.subRepo.ListCredits(ctx, sub.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: listar créditos: %w", domain.ErrPersistence, err)
		}
		resp := dto.SubscriptionResponse{
			ID:        sub.ID,
			CompanyID: sub.CompanyID,
			OrderID:   sub.OrderID,
			Status:    string(sub.Status),
			StartDate: sub.StartDate,
			EndDate:   sub.EndDate,
			Credits:   make([]dto.CreditResponse, 0, len(credits)),
		}
		for _, c := range credits {
			resp.Credits = append(resp.Credits, dto.CreditResponse{
				ID:            c.ID,
				ModuleID:      c.ModuleID,
				OrderDetailID: c.OrderDetailID,
				IsActive:      c.IsActive,
				StartDate:     c.StartDate,
				EndDate:       c.EndDate,
			})
		}
		out = append(out, resp)
	}
	return out, nil
}
