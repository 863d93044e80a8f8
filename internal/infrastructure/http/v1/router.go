// Package v1 provides HTTP API version 1.
package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"refurbhq/internal/domain/attendance"
	"refurbhq/internal/domain/audit"
	"refurbhq/internal/domain/auth"
	"refurbhq/internal/domain/catalogs/component"
	"refurbhq/internal/domain/catalogs/customer"
	"refurbhq/internal/domain/catalogs/product"
	"refurbhq/internal/domain/catalogs/vendor"
	"refurbhq/internal/domain/inventory"
	"refurbhq/internal/domain/ledger"
	"refurbhq/internal/domain/pricing"
	"refurbhq/internal/domain/purchase"
	"refurbhq/internal/domain/refurbish"
	"refurbhq/internal/domain/sales"
	"refurbhq/internal/domain/voucher"
	"refurbhq/internal/infrastructure/http/v1/handlers"
	"refurbhq/internal/infrastructure/http/v1/middleware"
	"refurbhq/internal/infrastructure/storage/postgres"
	"refurbhq/internal/infrastructure/storage/postgres/attendance_repo"
	"refurbhq/internal/infrastructure/storage/postgres/catalog_repo"
	"refurbhq/internal/infrastructure/storage/postgres/document_repo"
	"refurbhq/internal/infrastructure/storage/postgres/pricing_repo"
	"refurbhq/internal/infrastructure/storage/postgres/register_repo"
	"refurbhq/internal/infrastructure/storage/postgres/voucher_repo"
	"refurbhq/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager runs all repository work
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Auditor records accounting mutations
	Auditor audit.Recorder
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	auditor := cfg.Auditor
	if auditor == nil {
		auditor = audit.Nop{}
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		if err := registerBusinessRoutes(protected, cfg, auditor); err != nil {
			return nil, err
		}
	}

	return router, nil
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	publicAuth := rg.Group("/auth")

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerBusinessRoutes wires repositories, services and handlers for
// every business resource.
func registerBusinessRoutes(rg *gin.RouterGroup, cfg RouterConfig, auditor audit.Recorder) error {
	txm := cfg.TxManager
	baseHandler := handlers.NewBaseHandler()

	// --- CATALOGS ---
	componentRepo := catalog_repo.NewComponentRepo(txm)
	componentSvc := component.NewService(componentRepo)
	handlers.NewComponentHandler(baseHandler, componentSvc).RegisterRoutes(rg)

	customerSvc := customer.NewService(catalog_repo.NewCustomerRepo(txm))
	handlers.NewCustomerHandler(baseHandler, customerSvc).RegisterRoutes(rg)

	vendorSvc := vendor.NewService(catalog_repo.NewVendorRepo(txm))
	handlers.NewVendorHandler(baseHandler, vendorSvc).RegisterRoutes(rg)

	productSvc := product.NewService(catalog_repo.NewProductRepo(txm))
	handlers.NewProductHandler(baseHandler, productSvc).RegisterRoutes(rg)

	// --- VOUCHERS ---
	voucherSvc := voucher.NewService(voucher_repo.NewSeriesRepo(txm))
	handlers.NewVoucherHandler(baseHandler, voucherSvc).RegisterRoutes(rg)

	// --- LEDGER ---
	ledgerSvc := ledger.NewService(register_repo.NewLedgerRepo(txm), txm)
	handlers.NewLedgerHandler(baseHandler, ledgerSvc).RegisterRoutes(rg)

	// --- REFURBISHING ---
	refurbishSvc := refurbish.NewService(document_repo.NewRefurbishRepo(txm), componentRepo, txm, auditor)
	handlers.NewRefurbishHandler(baseHandler, refurbishSvc).RegisterRoutes(rg)

	// --- INVENTORY ---
	inventorySvc := inventory.NewService(register_repo.NewInventoryRepo(txm), txm)
	handlers.NewInventoryHandler(baseHandler, inventorySvc).RegisterRoutes(rg)

	// --- SALES ---
	salesSvc := sales.NewService(document_repo.NewSalesRepo(txm), voucherSvc, ledgerSvc, txm, auditor)
	handlers.NewSalesHandler(baseHandler, salesSvc).RegisterRoutes(rg)

	// --- PURCHASING ---
	purchaseSvc := purchase.NewService(document_repo.NewPurchaseRepo(txm), componentRepo, voucherSvc, txm, auditor)
	handlers.NewPurchaseHandler(baseHandler, purchaseSvc).RegisterRoutes(rg)

	// --- PRICING ---
	evaluator, err := pricing.NewEvaluator()
	if err != nil {
		return fmt.Errorf("create pricing evaluator: %w", err)
	}
	pricingSvc := pricing.NewService(pricing_repo.NewRuleRepo(txm), evaluator)
	handlers.NewPricingHandler(baseHandler, pricingSvc).RegisterRoutes(rg)

	// --- ATTENDANCE ---
	attendanceSvc := attendance.NewService(attendance_repo.NewAttendanceRepo(txm), txm)
	handlers.NewAttendanceHandler(baseHandler, attendanceSvc).RegisterRoutes(rg)

	return nil
}
