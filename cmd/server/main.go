package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/audit"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/barcode"
	"magaza-backend/internal/config"
	"magaza-backend/internal/customers"
	"magaza-backend/internal/dashboard"
	"magaza-backend/internal/database"
	"magaza-backend/internal/inventory"
	"magaza-backend/internal/ledger"
	"magaza-backend/internal/logger"
	"magaza-backend/internal/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", "console")
		log.Fatal().Err(err).Msg("Konfigürasyon yüklenemedi")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	db, err := database.Init(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Veritabanı açılamadı")
	}

	// tutarlar JSON'da sayı olarak döner
	decimal.MarshalJSONWithoutQuotes = true

	gen := barcode.NewGenerator(barcode.NewGormLookup(db))

	authSvc := auth.NewService(db, auth.LockoutPolicy{
		MaxAttempts:  cfg.LoginMaxAttempts,
		LockDuration: cfg.LoginLockDuration,
	})
	customerSvc := customers.NewService(db)
	ledgerSvc := ledger.NewService(db)
	productSvc := inventory.NewProductService(db, gen)
	categorySvc := inventory.NewCategoryService(db, gen)
	stockSvc := inventory.NewStockService(db)
	salesSvc := sales.NewService(db)
	dashboardSvc := dashboard.NewService(db)

	app := fiber.New(fiber.Config{
		AppName:      "magaza-backend",
		ErrorHandler: apperr.NewErrorHandler(cfg.IsProduction()),
		BodyLimit:    10 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigins(),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: "Content-Disposition",
	}))

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Public auth
	api.Post("/auth/setup", auth.SetupHandler(cfg, authSvc))
	api.Post("/auth/login", auth.LoginRateLimiter(cfg), auth.LoginHandler(cfg, authSvc))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(authSvc))

	// Admin: path'ler ortak olduğu için middleware route bazında eklenir
	adminOnly := auth.RequireAdmin()

	protected.Get("/users", adminOnly, auth.ListUsersHandler(authSvc))
	protected.Post("/users", adminOnly, auth.CreateUserHandler(authSvc))
	protected.Put("/users/:id", adminOnly, auth.UpdateUserHandler(authSvc))
	protected.Delete("/users/:id", adminOnly, auth.DeleteUserHandler(authSvc))
	protected.Post("/users/:id/unlock", adminOnly, auth.UnlockUserHandler(authSvc))

	protected.Post("/categories", adminOnly, inventory.CreateCategoryHandler(categorySvc))
	protected.Put("/categories/:id", adminOnly, inventory.UpdateCategoryHandler(categorySvc))
	protected.Delete("/categories/:id", adminOnly, inventory.DeleteCategoryHandler(categorySvc))

	protected.Post("/customers/:id/reconcile", adminOnly, ledger.ReconcileBalanceHandler(ledgerSvc))
	protected.Get("/audit-logs", adminOnly, audit.ListAuditLogsHandler(db))

	// Kategoriler
	protected.Get("/categories", inventory.ListCategoriesHandler(categorySvc))

	// Ürünler (sabit path'ler :id'den önce)
	protected.Get("/products", inventory.ListProductsHandler(productSvc))
	protected.Get("/products/low-stock", inventory.LowStockHandler(productSvc))
	protected.Get("/products/export", inventory.ExportProductsHandler(productSvc))
	protected.Get("/products/barcode/:barcode", inventory.GetProductByBarcodeHandler(productSvc))
	protected.Post("/products/suggest-barcode", inventory.SuggestBarcodeHandler(productSvc))
	protected.Get("/products/:id", inventory.GetProductHandler(productSvc))
	protected.Post("/products", inventory.CreateProductHandler(productSvc))
	protected.Put("/products/:id", inventory.UpdateProductHandler(productSvc))
	protected.Delete("/products/:id", inventory.DeleteProductHandler(productSvc))

	// Barkod
	protected.Get("/barcode/validate/:barcode", inventory.ValidateBarcodeHandler())
	protected.Get("/barcode/decode/:barcode", inventory.DecodeBarcodeHandler(gen))

	// Stok hareketleri
	protected.Post("/stock-movements", inventory.CreateStockMovementHandler(stockSvc))
	protected.Post("/stock-movements/import", inventory.ImportStockHandler(stockSvc))
	protected.Get("/stock-movements", inventory.ListStockMovementsHandler(stockSvc))

	// Müşteriler
	protected.Get("/customers", customers.ListCustomersHandler(customerSvc))
	protected.Get("/customers/export", customers.ExportCustomersHandler(customerSvc))
	protected.Get("/customers/:id", customers.GetCustomerHandler(customerSvc))
	protected.Get("/customers/:id/balance-summary", ledger.BalanceSummaryHandler(ledgerSvc))
	protected.Post("/customers", customers.CreateCustomerHandler(customerSvc))
	protected.Put("/customers/:id", customers.UpdateCustomerHandler(customerSvc))
	protected.Delete("/customers/:id", customers.DeleteCustomerHandler(customerSvc))

	// Cari hareketler
	protected.Post("/balance", ledger.CreateBalanceTransactionHandler(ledgerSvc))
	protected.Get("/balance", ledger.ListBalanceTransactionsHandler(ledgerSvc))
	protected.Get("/balance/export", ledger.ExportBalanceTransactionsHandler(ledgerSvc))
	protected.Get("/balance/:id", ledger.GetBalanceTransactionHandler(ledgerSvc))
	protected.Put("/balance/:id", ledger.UpdateBalanceTransactionHandler(ledgerSvc))
	protected.Delete("/balance/:id", ledger.DeleteBalanceTransactionHandler(ledgerSvc))

	// Satışlar & faturalar
	protected.Post("/sales", sales.CreateSaleHandler(salesSvc))
	protected.Get("/sales", sales.ListSalesHandler(salesSvc))
	protected.Get("/sales/:id", sales.GetSaleHandler(salesSvc))
	protected.Delete("/sales/:id", sales.DeleteSaleHandler(salesSvc))
	protected.Post("/sales/:id/invoice", sales.IssueInvoiceHandler(salesSvc))
	protected.Get("/invoices", sales.ListInvoicesHandler(salesSvc))

	// Dashboard
	protected.Get("/dashboard/summary", dashboard.SummaryHandler(dashboardSvc))
	protected.Get("/dashboard/sales-chart", dashboard.SalesChartHandler(dashboardSvc))

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("Server çalışıyor")
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			log.Fatal().Err(err).Msg("Server başlatılamadı")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server kapatılıyor")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server düzgün kapatılamadı")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
