package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/hugohenrick/arte-ideas/docs"
	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/internal/adapter/api/controller"
	"github.com/hugohenrick/arte-ideas/internal/adapter/api/route"
	"github.com/hugohenrick/arte-ideas/internal/adapter/repository"
	"github.com/hugohenrick/arte-ideas/internal/adapter/repository/memory"
	"github.com/hugohenrick/arte-ideas/internal/domain"
	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/hugohenrick/arte-ideas/internal/infrastructure/config"
	"github.com/hugohenrick/arte-ideas/internal/infrastructure/database"
	"github.com/hugohenrick/arte-ideas/internal/service/clients"
	"github.com/hugohenrick/arte-ideas/internal/service/orders"
	"github.com/hugohenrick/arte-ideas/internal/service/products"
	"github.com/hugohenrick/arte-ideas/internal/service/tenants"
	"github.com/hugohenrick/arte-ideas/pkg/auth"
	"github.com/hugohenrick/arte-ideas/pkg/idempotency"
	"github.com/hugohenrick/arte-ideas/pkg/logger"
	"github.com/hugohenrick/arte-ideas/pkg/middleware"
	"github.com/hugohenrick/arte-ideas/pkg/tenant"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// App holds the server and the resources it must release
type App struct {
	cfg    *config.Config
	log    logger.Logger
	router *gin.Engine
	server *http.Server
	pool   *pgxpool.Pool
	idem   idempotency.Store
}

// NewApp wires every module from the configuration
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	app := &App{cfg: cfg, log: log}

	uow, err := app.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	policy, err := access.NewPolicy()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to compile the access policy: %w", err)
	}
	guard := access.NewGuard(access.NewResolver(uow.Reader().Tenants), policy)

	taxRate, err := cfg.Tax.RateDecimal()
	if err != nil {
		app.Close()
		return nil, err
	}
	numberFormat, err := order.NewNumberFormat(cfg.Order.NumberFormat)
	if err != nil {
		app.Close()
		return nil, err
	}

	orderService, err := orders.NewService(orders.Deps{
		UnitOfWork:  uow,
		Guard:       guard,
		Idempotency: app.idem,
		Logger:      log,
	}, orders.Options{
		TaxRate:             taxRate,
		NumberFormat:        numberFormat,
		UpcomingHorizonDays: cfg.Upcoming.HorizonDays,
		MonthlyMonths:       cfg.Reports.MonthlyMonths,
		IdempotencyTTL:      cfg.Idempotency.TTL,
		RequestTimeout:      cfg.Server.RequestTimeout,
	})
	if err != nil {
		app.Close()
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		app.Close()
		return nil, err
	}

	var db controller.Pinger
	if app.pool != nil {
		db = app.pool
	}
	ctrl := route.Controllers{
		Health:  controller.NewHealthController(cfg.App.Version, db),
		Orders:  controller.NewOrderController(orderService, log),
		Reports: controller.NewReportController(orderService, log),
		Clients: controller.NewClientController(clients.NewService(uow, guard, log), log),
		Product: controller.NewProductController(products.NewService(uow, guard, log, nil), log),
		Tenants: controller.NewTenantController(tenants.NewService(uow, guard, log), log),
	}

	app.router = app.newRouter(jwtService, ctrl)
	app.server = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return app, nil
}

// openStorage selects the PostgreSQL or in-memory unit of work
func (a *App) openStorage(ctx context.Context) (domain.UnitOfWork, error) {
	if a.cfg.Database.Driver == "memory" {
		a.log.Warn("using the in-memory database; data is lost on exit")
		a.idem = idempotency.NewMemoryStore()
		return memory.NewUnitOfWork(memory.NewDB()), nil
	}

	if a.cfg.Database.AutoMigrate {
		if err := database.MigrateUp(a.cfg.Database, a.log); err != nil {
			return nil, err
		}
	}
	pool, err := database.NewPostgresPool(ctx, a.cfg.Database)
	if err != nil {
		return nil, err
	}
	a.pool = pool
	a.idem = repository.NewIdempotencyStore(pool)
	return repository.NewUnitOfWork(pool), nil
}

func (a *App) newRouter(jwtService *auth.JWTService, ctrl route.Controllers) *gin.Engine {
	if !a.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(a.log), middleware.Recovery(a.log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORS.AllowOrigins,
		AllowMethods:     a.cfg.CORS.AllowMethods,
		AllowHeaders:     a.cfg.CORS.AllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: a.cfg.CORS.AllowCredentials,
		MaxAge:           a.cfg.CORS.MaxAge,
	}))

	if a.cfg.IsDevelopment() {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	var limiter *middleware.RateLimiter
	if a.cfg.Server.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(a.cfg.Server.RateLimit.Rate, a.cfg.Server.RateLimit.Burst)
	}

	api := router.Group(a.cfg.Server.BasePath)
	api.Use(auth.JWTAuthMiddleware(jwtService), tenant.SelectorMiddleware(), middleware.RateLimit(limiter, a.log))
	route.Register(api, ctrl)
	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (a *App) Run(ctx context.Context) error {
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go idempotency.RunJanitor(janitorCtx, a.idem, a.cfg.Idempotency.CleanupInterval, a.log)

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", "addr", a.server.Addr, "env", a.cfg.App.Env)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Router exposes the gin engine
func (a *App) Router() *gin.Engine {
	return a.router
}

// Close releases the database pool
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
