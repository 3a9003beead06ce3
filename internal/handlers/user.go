package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openlot/dealership-backend/internal/services"
)

// UserHandler handles account listing (admin)
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ListCustomers handles GET /api/users
func (h *UserHandler) ListCustomers(c *fiber.Ctx) error {
	customers, err := h.users.ListCustomers()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list customers",
		})
	}
	return c.JSON(customers)
}
