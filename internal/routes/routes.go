package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/example/kopipos/internal/config"
	"github.com/example/kopipos/internal/handlers"
	"github.com/example/kopipos/internal/middleware"
	"github.com/example/kopipos/internal/models"
	"github.com/example/kopipos/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cache *services.Cache, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	productHandler := handlers.NewProductHandler(db, cache)
	customerHandler := handlers.NewCustomerHandler(db)
	shiftHandler := handlers.NewShiftHandler(db)
	inventoryHandler := handlers.NewInventoryHandler(db, cache)
	orderHandler := handlers.NewOrderHandler(db, cache)
	settingHandler := handlers.NewSettingHandler(db, cache)

	app.Get("/health", healthCheck)

	api := app.Group("/api")
	api.Get("/health", healthCheck)
	api.Get("/health/db", dbHealthCheck(db))

	// Auth routes, rate limited against credential stuffing.
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	protected := api.Group("", middleware.AuthMiddleware(cfg))
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	// Staff accounts
	users := protected.Group("/users")
	users.Get("/", adminOnly, userHandler.ListUsers)
	users.Post("/", adminOnly, userHandler.CreateUser)
	users.Get("/profile/me", authHandler.Me)
	users.Put("/profile/me", userHandler.UpdateProfile)
	users.Patch("/profile/change-password", userHandler.ChangePassword)
	users.Put("/:id", adminOnly, userHandler.UpdateUser)
	users.Delete("/:id", adminOnly, userHandler.DeleteUser)
	users.Patch("/:id/reset-password", adminOnly, userHandler.ResetPassword)

	// Menu
	products := protected.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/categories", productHandler.ListCategories)
	products.Post("/", adminOnly, productHandler.CreateProduct)
	products.Put("/variants/:variantId", adminOnly, productHandler.UpdateVariant)
	products.Delete("/variants/:variantId", adminOnly, productHandler.DeleteVariant)
	products.Patch("/variants/:variantId/stock", adminOnly, productHandler.PatchStock)
	products.Get("/:id", productHandler.GetProduct)
	products.Put("/:id", adminOnly, productHandler.UpdateProduct)
	products.Delete("/:id", adminOnly, productHandler.DeleteProduct)
	products.Post("/:id/variants", adminOnly, productHandler.AddVariant)

	// Customers
	customers := protected.Group("/customers")
	customers.Get("/", customerHandler.ListCustomers)
	customers.Post("/", customerHandler.CreateCustomer)
	customers.Get("/:id", customerHandler.GetCustomer)
	customers.Put("/:id", customerHandler.UpdateCustomer)
	customers.Delete("/:id", adminOnly, customerHandler.DeleteCustomer)
	customers.Post("/:id/points", customerHandler.AdjustPoints)
	customers.Post("/:id/deposit", customerHandler.AdjustDeposit)

	// Shifts
	shifts := protected.Group("/shifts")
	shifts.Get("/current", shiftHandler.CurrentShift)
	shifts.Post("/open", shiftHandler.OpenShift)
	shifts.Post("/close", shiftHandler.CloseShift)

	// Inventory ledger
	inventory := protected.Group("/inventory")
	inventory.Get("/movements", inventoryHandler.ListMovements)
	inventory.Post("/receive", inventoryHandler.ReceiveStock)
	inventory.Post("/adjust", inventoryHandler.AdjustStock)
	inventory.Get("/low-stock", inventoryHandler.LowStock)

	// Orders: the checkout/refund transactional core
	orders := protected.Group("/orders")
	orders.Get("/", orderHandler.ListOrders)
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Patch("/:id", orderHandler.UpdateOrder)
	orders.Post("/:id/refund", orderHandler.RefundOrder)

	// Settings + backup
	settings := protected.Group("/settings")
	settings.Get("/", settingHandler.ListSettings)
	settings.Get("/key/:key", settingHandler.GetSetting)
	settings.Put("/", adminOnly, settingHandler.UpsertSettings)
	settings.Get("/backup", adminOnly, settingHandler.ExportBackup)
	settings.Post("/restore", adminOnly, settingHandler.RestoreBackup)
}

func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true, "service": "backend", "time": time.Now().UTC()})
}

func dbHealthCheck(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		start := time.Now()
		if err := sqlDB.PingContext(c.Context()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": err.Error()})
		}
		return c.JSON(fiber.Map{"ok": true, "db": "up", "latency_ms": time.Since(start).Milliseconds()})
	}
}
