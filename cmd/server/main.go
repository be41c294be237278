package main

import (
	"errors"
	"os"
	"strings"

	"franchise-backend/internal/apperr"
	"franchise-backend/internal/audit"
	"franchise-backend/internal/auth"
	"franchise-backend/internal/config"
	"franchise-backend/internal/dashboard"
	"franchise-backend/internal/database"
	"franchise-backend/internal/expense"
	"franchise-backend/internal/franchise"
	"franchise-backend/internal/inventory"
	"franchise-backend/internal/logger"
	"franchise-backend/internal/models"
	"franchise-backend/internal/reports"
	"franchise-backend/internal/sales"
	"franchise-backend/internal/stockrequest"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	database.Init(cfg)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.L.Fatalf("upload directory could not be created: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				return c.Status(appErr.Kind.HTTPStatus()).JSON(fiber.Map{
					"error": appErr.Message,
					"kind":  appErr.Kind,
				})
			}
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(fiber.Map{
					"error": fiberErr.Message,
				})
			}
			logger.L.Errorw("unexpected error", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public
	api.Post("/auth/login", auth.LoginHandler(cfg))
	api.Post("/auth/register-franchisor", auth.RegisterFranchisorHandler(cfg))
	api.Get("/franchises/brands", franchise.ListBrandsHandler())
	api.Post("/franchises/applications", franchise.SubmitApplicationHandler())

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())
	protected.Post("/auth/register-staff", auth.RegisterStaffHandler())

	// Application review (franchisor)
	applications := protected.Group("/franchises/applications")
	applications.Use(auth.RequireRole(models.RoleFranchisor))
	applications.Get("/", franchise.ListApplicationsHandler())
	applications.Get("/:id", franchise.GetApplicationHandler())
	applications.Put("/:id/approve", franchise.ApproveApplicationHandler())
	applications.Put("/:id/reject", franchise.RejectApplicationHandler())

	// Branches
	protected.Get("/branches", auth.RequireRole(models.RoleFranchisor), franchise.ListBranchesHandler())
	protected.Get("/branch/profile", franchise.BranchProfileHandler())
	protected.Put("/branches/:id", franchise.UpdateBranchHandler())

	// Catalogs
	protected.Get("/stock-items", inventory.ListStockItemsHandler())
	protected.Post("/stock-items", auth.RequireRole(models.RoleFranchisor), inventory.CreateStockItemHandler())
	protected.Get("/products", sales.ListProductsHandler())
	protected.Post("/products", auth.RequireRole(models.RoleFranchisor), sales.CreateProductHandler())

	// Inventory
	protected.Get("/inventory", inventory.ListInventoryHandler())
	protected.Post("/inventory", inventory.CreateInventoryHandler())
	protected.Post("/inventory/stock-in", inventory.StockInHandler())
	protected.Get("/inventory/transactions", inventory.ListTransactionsHandler())

	// Stock requests
	protected.Post("/requests", stockrequest.CreateRequestHandler())
	protected.Get("/requests", stockrequest.ListRequestsHandler())
	protected.Put("/requests/:id/approve", stockrequest.ApproveRequestHandler())
	protected.Put("/requests/:id/reject", stockrequest.RejectRequestHandler())

	// Sales
	protected.Post("/sales", sales.PostSaleHandler())
	protected.Get("/sales", sales.ListSalesHandler())

	// Expenses
	protected.Get("/expenses", expense.ListExpensesHandler())
	protected.Post("/expenses", expense.CreateExpenseHandler())

	// Dashboards & reports
	protected.Get("/dashboard/metrics", auth.RequireRole(models.RoleFranchisor), dashboard.MetricsHandler())
	protected.Get("/dashboard/branch-metrics", dashboard.BranchMetricsHandler())
	protected.Get("/dashboard/recent-sales", auth.RequireRole(models.RoleFranchisor), dashboard.RecentSalesHandler())
	protected.Get("/reports/summary", reports.SummaryHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	logger.L.Infow("server starting", "port", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logger.L.Fatalf("server stopped: %v", err)
	}
}
