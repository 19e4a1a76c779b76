package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/saas-backoffice/docs"
	"github.com/jhoicas/saas-backoffice/internal/application/auth"
	"github.com/jhoicas/saas-backoffice/internal/application/order"
	"github.com/jhoicas/saas-backoffice/internal/application/usecase"
	"github.com/jhoicas/saas-backoffice/internal/domain/entitlement"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
	"github.com/jhoicas/saas-backoffice/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/saas-backoffice/internal/infrastructure/pdf"
	"github.com/jhoicas/saas-backoffice/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/saas-backoffice/internal/interfaces/http"
	"github.com/jhoicas/saas-backoffice/pkg/config"
	"github.com/jhoicas/saas-backoffice/pkg/logger"
)

// repos puertos de persistencia del driver elegido.
type repos struct {
	companies     repository.CompanyRepository
	users         repository.UserRepository
	roles         repository.UserRoleRepository
	modules       repository.ModuleRepository
	orders        repository.OrderRepository
	subscriptions repository.SubscriptionRepository
	analytics     repository.AnalyticsRepository
	txRunner      order.PurchaseTxRunner
	close         func()
}

func openPostgres(ctx context.Context, cfg config.DBConfig) (*repos, error) {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &repos{
		companies:     postgres.NewCompanyRepository(pool),
		users:         postgres.NewUserRepository(pool),
		roles:         postgres.NewUserRoleRepository(pool),
		modules:       postgres.NewModuleRepository(pool),
		orders:        postgres.NewOrderRepository(pool),
		subscriptions: postgres.NewSubscriptionRepository(pool),
		analytics:     postgres.NewAnalyticsRepository(pool),
		txRunner:      postgres.NewTxRunner(pool),
		close:         pool.Close,
	}, nil
}

func openMemory() *repos {
	store := memory.New()
	store.AddModules(memory.DefaultCatalog()...)
	return &repos{
		companies:     memory.NewCompanyRepository(store),
		users:         memory.NewUserRepository(store),
		roles:         memory.NewUserRoleRepository(store),
		modules:       memory.NewModuleRepository(store),
		orders:        memory.NewOrderRepository(store),
		subscriptions: memory.NewSubscriptionRepository(store),
		analytics:     memory.NewAnalyticsRepository(store),
		txRunner:      store,
		close:         func() {},
	}
}

// @title                       SaaS Backoffice API
// @version                     1.0
// @description                 Empresas, usuarios, compra de módulos y resolución de módulos vigentes.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	var r *repos
	switch cfg.DB.Driver {
	case config.DriverMemory:
		r = openMemory()
		log.Warn().Msg("driver en memoria: los datos se pierden al reiniciar")
	default:
		r, err = openPostgres(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
	}
	defer r.close()

	moduleSvc := usecase.NewModuleService(r.modules, r.subscriptions, nil)
	purchaseUC := order.NewPurchaseUseCase(
		r.txRunner, r.modules, r.roles, r.orders, r.subscriptions,
		order.Config{
			Policy: entitlement.NewInclusionPolicy(cfg.Entitlement.AlwaysIncluded, cfg.Entitlement.StrictAlwaysIncluded),
			Months: cfg.Entitlement.SubscriptionMonths,
			Now:    moduleSvc.Now,
		},
		log,
	)

	// PDF: comprobante de compra
	receiptUC := order.NewReceiptUseCase(r.orders, r.companies, r.modules, r.subscriptions, infrapdf.NewMarotoPDFGenerator())

	authUC := auth.NewAuthUseCase(
		r.users, r.roles, r.companies, moduleSvc,
		entitlement.NewRoleOverrides(cfg.Entitlement.RoleOverrides),
		auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "SaaS Backoffice API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	purchaseLimit := httpRouter.NewCompanyRateLimiter(cfg.RateLimit.PurchasesPerMinute, cfg.RateLimit.Burst)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go purchaseLimit.RunSweeper(sweepCtx, time.Minute)

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:     usecase.NewCompanyUseCase(r.companies),
		UserUC:        usecase.NewUserUseCase(r.users, r.roles),
		ModuleSvc:     moduleSvc,
		PurchaseUC:    purchaseUC,
		ReceiptUC:     receiptUC,
		AnalyticsUC:   usecase.NewAnalyticsUseCase(r.analytics, moduleSvc.Now),
		AuthUC:        authUC,
		PurchaseLimit: purchaseLimit,
		JWTSecret:     cfg.JWT.Secret,
		Logger:        log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
