package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/saas-backoffice/internal/application/auth"
	"github.com/jhoicas/saas-backoffice/internal/application/order"
	"github.com/jhoicas/saas-backoffice/internal/application/usecase"
	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC     *usecase.CompanyUseCase
	UserUC        *usecase.UserUseCase
	ModuleSvc     *usecase.ModuleService
	PurchaseUC    *order.PurchaseUseCase
	ReceiptUC     *order.ReceiptUseCase
	AnalyticsUC   *usecase.AnalyticsUseCase
	AuthUC        *auth.AuthUseCase
	PurchaseLimit *CompanyRateLimiter
	JWTSecret     string
	Logger        *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.PurchaseLimit == nil {
		deps.PurchaseLimit = NewCompanyRateLimiter(0, 0)
	}
	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.JWTSecret)

	// Auth (público salvo la reemisión)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/token", requireAuth, authHandler.Token)

	// Companies (alta y consulta públicas; la edición exige admin sobre la propia empresa)
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", requireAuth, RequireRole(entity.RoleGod, entity.RoleAdmin), companyHandler.Update)

	// Catálogo (público)
	moduleHandler := NewModuleHandler(deps.ModuleSvc)
	api.Get("/modules", moduleHandler.Catalog)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", requireAuth)

	protected.Get("/modules/active", moduleHandler.Active)
	protected.Get("/subscriptions", moduleHandler.Subscriptions)

	// Users (requiere el módulo basic vigente)
	users := protected.Group("/users", RequireModule(entity.ModuleBasic, deps.ModuleSvc, deps.Logger))
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Post("/roles", RequireRole(entity.RoleGod, entity.RoleAdmin), userHandler.AssignRole)

	// Orders
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.PurchaseUC, deps.ReceiptUC)
	orders.Post("/", deps.PurchaseLimit.Middleware(), orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/receipt", orderHandler.Receipt)

	// Analytics (requiere el módulo analytics vigente)
	analytics := protected.Group("/analytics", RequireModule(entity.ModuleAnalytics, deps.ModuleSvc, deps.Logger))
	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsUC)
	analytics.Get("/spending", analyticsHandler.GetSpending)
}
