package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openlot/dealership-backend/internal/middleware"
	"github.com/openlot/dealership-backend/internal/models"
	"github.com/openlot/dealership-backend/internal/services"
)

// VehicleHandler handles catalog requests
type VehicleHandler struct {
	vehicles *services.VehicleService
	users    *services.UserService
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicles *services.VehicleService, users *services.UserService) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, users: users}
}

// List handles GET /api/vehicles with optional filters
func (h *VehicleHandler) List(c *fiber.Ctx) error {
	search := &models.VehicleSearch{
		Make:          c.Query("make"),
		Model:         c.Query("model"),
		OnlyAvailable: c.QueryBool("only_available", true),
	}
	if year := c.Query("year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid year"})
		}
		search.Year = y
	}
	if maxPrice := c.Query("max_price"); maxPrice != "" {
		p, err := decimal.NewFromString(maxPrice)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid max_price"})
		}
		search.MaxPrice = &p
	}

	vehicles, err := h.vehicles.List(search)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list vehicles",
		})
	}
	return c.JSON(vehicles)
}

// Get handles GET /api/vehicles/:id
func (h *VehicleHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle id"})
	}

	vehicle, err := h.vehicles.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vehicle not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load vehicle",
		})
	}
	return c.JSON(vehicle)
}

// Create handles POST /api/vehicles (admin)
func (h *VehicleHandler) Create(c *fiber.Ctx) error {
	var req struct {
		Make  string          `json:"make"`
		Model string          `json:"model"`
		Year  int             `json:"year"`
		Price decimal.Decimal `json:"price"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Make == "" || req.Model == "" || req.Year < 1900 || req.Year > 2100 || req.Price.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Make, model, a year in 1900-2100, and a non-negative price are required",
		})
	}

	vehicle, err := h.vehicles.Create(req.Make, req.Model, req.Year, req.Price)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create vehicle",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(vehicle)
}

// Update handles PUT /api/vehicles/:id (admin, OTP-gated via X-OTP).
// A missing code yields 428 with the code dispatched out of band.
func (h *VehicleHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle id"})
	}

	var req struct {
		Make        string          `json:"make"`
		Model       string          `json:"model"`
		Year        int             `json:"year"`
		Price       decimal.Decimal `json:"price"`
		IsAvailable bool            `json:"is_available"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	admin, err := currentUser(c, h.users)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	outcome, err := h.vehicles.Update(admin, id, services.VehicleUpdate{
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		Price:       req.Price,
		IsAvailable: req.IsAvailable,
	}, c.Get("X-OTP"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vehicle not found"})
		case errors.Is(err, services.ErrInvalidOTP):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or expired OTP"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update vehicle",
		})
	}

	if outcome.OTPRequired {
		return c.Status(fiber.StatusPreconditionRequired).JSON(fiber.Map{
			"message":      "OTP required. Code has been sent.",
			"requires_otp": true,
		})
	}
	return c.JSON(outcome.Vehicle)
}

// currentUser resolves the authenticated user from the token claims.
func currentUser(c *fiber.Ctx, users *services.UserService) (*models.User, error) {
	claims := middleware.TokenClaims(c)
	if claims == nil {
		return nil, services.ErrInvalidToken
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, services.ErrInvalidToken
	}
	return users.FindByID(id)
}
