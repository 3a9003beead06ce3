package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/openlot/dealership-backend/database"
	"github.com/openlot/dealership-backend/internal/config"
	"github.com/openlot/dealership-backend/internal/models"
	"github.com/openlot/dealership-backend/internal/routes"
	"github.com/openlot/dealership-backend/internal/services"
	"github.com/openlot/dealership-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("⚠️  No .env file found - checking environment variables")
		}
	}

	cfg := config.Load()

	// Initialize storage
	var store storage.Store
	var db *gorm.DB

	if cfg.UseMemoryStore {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect(cfg)
		db = database.DB

		log.Println("🔄 Running database migrations...")
		err := db.AutoMigrate(
			&models.User{},
			&models.Vehicle{},
			&models.Sale{},
			&models.OTPCode{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(db)
	}

	// Initialize services
	userService := services.NewUserService(store)
	otpService := services.NewOTPService(store, cfg)
	tokenService := services.NewTokenService(cfg)

	var notifier services.Notifier = services.LogNotifier{}
	if cfg.TwilioConfigured() {
		twilioNotifier, err := services.NewTwilioNotifier(cfg)
		if err != nil {
			log.Fatal("Failed to initialize Twilio notifier:", err)
		}
		notifier = twilioNotifier
		log.Println("✅ Twilio SMS delivery enabled")
	} else {
		log.Println("⚠️  Twilio not configured - OTP codes go to the log")
	}

	authService := services.NewAuthService(userService, otpService, tokenService, notifier)
	vehicleService := services.NewVehicleService(store, otpService, notifier)
	saleService := services.NewSaleService(store, otpService, notifier)

	// Seed admin account and starter inventory
	if err := database.Seed(store, userService, cfg); err != nil {
		log.Fatal("Failed to seed database:", err)
	}

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Dealership Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-OTP",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, routes.Deps{
		Auth:     authService,
		Users:    userService,
		Vehicles: vehicleService,
		Sales:    saleService,
		Tokens:   tokenService,
		DB:       db,
	})

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚀 Dealership Backend starting on port %s", cfg.Port)
	log.Printf("📊 Storage: %s", storageType(cfg))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.Port))
}

func storageType(cfg *config.Config) string {
	if cfg.UseMemoryStore {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}
