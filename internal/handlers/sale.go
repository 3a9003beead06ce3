package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/openlot/dealership-backend/internal/services"
)

// SaleHandler handles the purchase-approval workflow
type SaleHandler struct {
	sales *services.SaleService
	users *services.UserService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(sales *services.SaleService, users *services.UserService) *SaleHandler {
	return &SaleHandler{sales: sales, users: users}
}

// RequestPurchase handles POST /api/sales/request (customer, OTP-gated).
// Without an X-OTP header a code is dispatched and 428 returned; no sale
// exists until the retry with a valid code.
func (h *SaleHandler) RequestPurchase(c *fiber.Ctx) error {
	var req struct {
		VehicleID uuid.UUID `json:"vehicle_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.VehicleID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "vehicle_id is required"})
	}

	user, err := currentUser(c, h.users)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	outcome, err := h.sales.RequestPurchase(user, req.VehicleID, c.Get("X-OTP"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vehicle not found"})
		case errors.Is(err, services.ErrVehicleUnavailable):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Vehicle is not available"})
		case errors.Is(err, services.ErrInvalidOTP):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or expired OTP"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to file purchase request",
		})
	}

	if outcome.OTPRequired {
		return c.Status(fiber.StatusPreconditionRequired).JSON(fiber.Map{
			"message":      "OTP required. Code has been sent.",
			"requires_otp": true,
		})
	}

	return c.JSON(fiber.Map{
		"message": "Purchase request submitted successfully",
		"sale_id": outcome.Sale.ID,
	})
}

// ProcessSale handles POST /api/sales/process (admin)
func (h *SaleHandler) ProcessSale(c *fiber.Ctx) error {
	var req struct {
		SaleID  uuid.UUID `json:"sale_id"`
		Approve bool      `json:"approve"`
	}
	if err := c.BodyParser(&req); err != nil || req.SaleID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sale_id is required"})
	}

	sale, err := h.sales.ProcessSale(req.SaleID, req.Approve)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Sale request not found"})
		case errors.Is(err, services.ErrAlreadyProcessed):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Sale is already processed"})
		case errors.Is(err, services.ErrVehicleUnavailable):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Vehicle is no longer available",
				"sale_id": req.SaleID,
				"status":  sale.Status,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process sale",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Sale request " + sale.Status,
		"sale_id": sale.ID,
		"status":  sale.Status,
	})
}

// History handles GET /api/sales/history (customer)
func (h *SaleHandler) History(c *fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	records, err := h.sales.History(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load purchase history",
		})
	}
	return c.JSON(records)
}
