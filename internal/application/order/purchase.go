package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/saas-backoffice/internal/application/dto"
	"github.com/jhoicas/saas-backoffice/internal/domain"
	"github.com/jhoicas/saas-backoffice/internal/domain/entitlement"
	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
	"github.com/jhoicas/saas-backoffice/pkg/logger"
)

// Config parámetros del pipeline de compra.
type Config struct {
	Policy entitlement.InclusionPolicy
	// Months duración de la suscripción en meses calendario (por defecto 1).
	Months int
	// Now reloj del pipeline; nil = time.Now.
	Now func() time.Time
}

// PurchaseUseCase convierte una intención de compra en una orden valorizada más una suscripción
// activa con un crédito por módulo, todo en una sola transacción.
type PurchaseUseCase struct {
	txRunner   PurchaseTxRunner
	moduleRepo repository.ModuleRepository
	roleRepo   repository.UserRoleRepository
	orderRepo  repository.OrderRepository
	subRepo    repository.SubscriptionRepository
	cfg        Config
	log        *logger.Logger
}

// NewPurchaseUseCase construye el caso de uso.
func NewPurchaseUseCase(
	txRunner PurchaseTxRunner,
	moduleRepo repository.ModuleRepository,
	roleRepo repository.UserRoleRepository,
	orderRepo repository.OrderRepository,
	subRepo repository.SubscriptionRepository,
	cfg Config,
	log *logger.Logger,
) *PurchaseUseCase {
	if cfg.Months <= 0 {
		cfg.Months = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PurchaseUseCase{
		txRunner:   txRunner,
		moduleRepo: moduleRepo,
		roleRepo:   roleRepo,
		orderRepo:  orderRepo,
		subRepo:    subRepo,
		cfg:        cfg,
		log:        log.Component("order"),
	}
}

// Purchase ejecuta el pipeline de compra.
//
// Errores:
//   - domain.ErrInvalidInput      user/company id con formato inválido; o module_id inválido de un miembro.
//   - domain.ErrPermissionDenied  el usuario no tiene rol en la empresa (se verifica antes que los module_id).
//   - domain.ErrModulesUnresolved ningún módulo resuelto (o falta uno obligatorio con política estricta).
//   - domain.ErrPersistence       el store falló o abortó; no queda ninguna fila escrita.
func (uc *PurchaseUseCase) Purchase(ctx context.Context, userID, companyID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if !isUUID(userID) || !isUUID(companyID) {
		return nil, domain.ErrInvalidInput
	}

	// ── 1. Pertenencia a la empresa ──────────────────────────────────────────
	member, err := uc.roleRepo.IsMember(ctx, userID, companyID)
	if err != nil {
		return nil, persistence("verificar pertenencia", err)
	}
	if !member {
		uc.log.Warn().Str("user_id", userID).Str("company_id", companyID).Msg("compra rechazada: usuario sin rol en la empresa")
		return nil, domain.ErrPermissionDenied
	}
	for _, id := range in.ModuleIDs {
		if !isUUID(id) {
			return nil, fmt.Errorf("%w: module_id %q no es un UUID", domain.ErrInvalidInput, id)
		}
	}

	// ── 2. Resolver módulos solicitados ──────────────────────────────────────
	requested := entitlement.DedupeIDs(in.ModuleIDs)
	modules, err := uc.moduleRepo.ResolveModules(ctx, requested)
	if err != nil {
		return nil, persistence("resolver módulos", err)
	}
	if dropped := len(requested) - len(modules); dropped > 0 {
		uc.log.Info().Int("dropped", dropped).Str("company_id", companyID).Msg("ids de módulo sin coincidencia en el catálogo")
	}

	// ── 3. Módulos siempre incluidos ─────────────────────────────────────────
	for _, t := range uc.cfg.Policy.Missing(modules) {
		m, err := uc.moduleRepo.GetByType(ctx, t)
		if err != nil {
			return nil, persistence("buscar módulo obligatorio", err)
		}
		if m == nil {
			if uc.cfg.Policy.Strict {
				return nil, fmt.Errorf("%w: el módulo obligatorio %s no existe en el catálogo", domain.ErrModulesUnresolved, t)
			}
			uc.log.Warn().Str("module_type", t.String()).Msg("módulo obligatorio ausente del catálogo; la compra continúa sin él")
			continue
		}
		modules = append(modules, m)
	}

	// ── 4. Nada que comprar ──────────────────────────────────────────────────
	if len(modules) == 0 {
		return nil, domain.ErrModulesUnresolved
	}

	// ── 5. Precio y detalles ─────────────────────────────────────────────────
	entitlement.SortModules(modules)
	now := uc.cfg.Now().UTC().Truncate(entitlement.ClockPrecision)
	order := &entity.Order{
		ID:          uuid.New().String(),
		UserID:      userID,
		CompanyID:   companyID,
		TotalAmount: entitlement.Total(modules),
		SaleDate:    now,
		Status:      entity.OrderStatusApproved,
	}
	types := make(map[string]entity.ModuleType, len(modules))
	for _, m := range modules {
		order.Details = append(order.Details, &entity.OrderDetail{
			ID:       uuid.New().String(),
			OrderID:  order.ID,
			ModuleID: m.ID,
			Price:    m.Price,
		})
		types[m.ID] = m.Type
	}

	// ── 6-7. Orden + suscripción + créditos en una sola transacción ──────────
	window := entitlement.NewWindow(now, uc.cfg.Months)
	sub, credits := entitlement.NewGrant(order, window, func() string { return uuid.New().String() })

	err = uc.txRunner.RunPurchase(ctx, func(orders repository.OrderRepository, subs repository.SubscriptionRepository) error {
		if err := orders.Create(ctx, order); err != nil {
			return fmt.Errorf("crear orden: %w", err)
		}
		if _, err := subs.GrantCredits(ctx, sub, credits); err != nil {
			return fmt.Errorf("otorgar créditos: %w", err)
		}
		return nil
	})
	if err != nil {
		uc.log.Error().Err(err).Str("order_id", order.ID).Str("company_id", companyID).Msg("compra abortada, rollback")
		return nil, persistence("registrar compra", err)
	}

	uc.log.Info().
		Str("order_id", order.ID).
		Str("subscription_id", sub.ID).
		Str("company_id", companyID).
		Int("modules", len(order.Details)).
		Str("total", order.TotalAmount.String()).
		Msg("compra registrada")

	resp := ToOrderResponse(order, types)
	resp.SubscriptionID = sub.ID
	end := sub.EndDate
	resp.ValidUntil = &end
	return resp, nil
}

// GetOrder obtiene una orden de la empresa. Una orden de otra empresa se reporta como inexistente.
func (uc *PurchaseUseCase) GetOrder(ctx context.Context, companyID, orderID string) (*dto.OrderResponse, error) {
	if !isUUID(orderID) {
		return nil, domain.ErrNotFound
	}
	o, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, persistence("obtener orden", err)
	}
	if o == nil || o.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	resp := ToOrderResponse(o, uc.moduleTypes(ctx, o))
	uc.attachSubscription(ctx, resp)
	return resp, nil
}

// ListOrders lista las órdenes de la empresa, más recientes primero.
func (uc *PurchaseUseCase) ListOrders(ctx context.Context, companyID string, page dto.PageRequest) (*dto.OrderListResponse, error) {
	page.DefaultPage()
	list, err := uc.orderRepo.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, persistence("listar órdenes", err)
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *ToOrderResponse(o, uc.moduleTypes(ctx, o)))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// moduleTypes mejor esfuerzo: un módulo que no se encuentra queda sin tipo en la respuesta.
func (uc *PurchaseUseCase) moduleTypes(ctx context.Context, o *entity.Order) map[string]entity.ModuleType {
	ids := make([]string, 0, len(o.Details))
	for _, d := range o.Details {
		ids = append(ids, d.ModuleID)
	}
	out := make(map[string]entity.ModuleType, len(ids))
	modules, err := uc.moduleRepo.ResolveModules(ctx, ids)
	if err != nil {
		uc.log.Warn().Err(err).Str("order_id", o.ID).Msg("no se pudieron resolver los tipos de módulo de la orden")
		return out
	}
	for _, m := range modules {
		out[m.ID] = m.Type
	}
	return out
}

func (uc *PurchaseUseCase) attachSubscription(ctx context.Context, resp *dto.OrderResponse) {
	subs, err := uc.subRepo.ListByCompany(ctx, resp.CompanyID)
	if err != nil {
		uc.log.Warn().Err(err).Str("order_id", resp.ID).Msg("no se pudo cargar la suscripción de la orden")
		return
	}
	for _, s := range subs {
		if s.OrderID != nil && *s.OrderID == resp.ID {
			resp.SubscriptionID = s.ID
			end := s.EndDate
			resp.ValidUntil = &end
			return
		}
	}
}

// ToOrderResponse mapea la entidad a DTO. types es opcional (module_id -> tipo).
func ToOrderResponse(o *entity.Order, types map[string]entity.ModuleType) *dto.OrderResponse {
	details := make([]dto.OrderDetailResponse, 0, len(o.Details))
	for _, d := range o.Details {
		details = append(details, dto.OrderDetailResponse{
			ID:         d.ID,
			ModuleID:   d.ModuleID,
			ModuleType: string(types[d.ModuleID]),
			Price:      d.Price,
		})
	}
	return &dto.OrderResponse{
		ID:          o.ID,
		CompanyID:   o.CompanyID,
		UserID:      o.UserID,
		SaleDate:    o.SaleDate,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount,
		Details:     details,
	}
}

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
