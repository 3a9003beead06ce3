package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/openlot/dealership-backend/internal/handlers"
	"github.com/openlot/dealership-backend/internal/middleware"
	"github.com/openlot/dealership-backend/internal/models"
	"github.com/openlot/dealership-backend/internal/services"
)

// Deps bundles the services the routes are wired to.
type Deps struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Vehicles *services.VehicleService
	Sales    *services.SaleService
	Tokens   *services.TokenService
	DB       *gorm.DB // nil on the memory store
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.Auth)
	vehicleHandler := handlers.NewVehicleHandler(deps.Vehicles, deps.Users)
	saleHandler := handlers.NewSaleHandler(deps.Sales, deps.Users)
	userHandler := handlers.NewUserHandler(deps.Users)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "Dealership Backend API",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":   "/health",
				"auth":     "/api/auth",
				"vehicles": "/api/vehicles",
				"sales":    "/api/sales",
			},
		})
	})

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/verify-otp", authHandler.VerifyOTP)

	requireAuth := middleware.RequireAuth(deps.Tokens)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	customerOnly := middleware.RequireRole(models.RoleCustomer)

	// Vehicle routes: catalog is public, mutation is admin-only
	vehicles := api.Group("/vehicles")
	vehicles.Get("/", vehicleHandler.List)
	vehicles.Get("/:id", vehicleHandler.Get)
	vehicles.Post("/", requireAuth, adminOnly, vehicleHandler.Create)
	vehicles.Put("/:id", requireAuth, adminOnly, vehicleHandler.Update)

	// Sale routes
	sales := api.Group("/sales")
	sales.Post("/request", requireAuth, customerOnly, saleHandler.RequestPurchase)
	sales.Post("/process", requireAuth, adminOnly, saleHandler.ProcessSale)
	sales.Get("/history", requireAuth, customerOnly, saleHandler.History)

	// User routes (admin)
	api.Get("/users", requireAuth, adminOnly, userHandler.ListCustomers)
}
