package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/openlot/dealership-backend/internal/models"
)

// Sentinel errors returned by both store implementations.
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrOTPConsumed        = errors.New("otp already consumed")
	ErrSaleProcessed      = errors.New("sale already processed")
	ErrVehicleUnavailable = errors.New("vehicle no longer available")
)

// Store defines the interface for storage operations
type Store interface {
	// User operations
	CreateUser(user *models.User) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uuid.UUID) (*models.User, error)
	GetUsersByRole(role models.Role) ([]*models.User, error)

	// Vehicle operations
	CreateVehicle(vehicle *models.Vehicle) (*models.Vehicle, error)
	GetVehicle(id uuid.UUID) (*models.Vehicle, error)
	SearchVehicles(search *models.VehicleSearch) ([]*models.Vehicle, error)
	UpdateVehicle(vehicle *models.Vehicle) error
	CountVehicles() (int64, error)

	// OTP operations. Codes are insert-only; ConsumeOTP flips IsUsed
	// only if it is currently false, so exactly one concurrent caller
	// wins (the loser gets ErrOTPConsumed).
	CreateOTP(otp *models.OTPCode) (*models.OTPCode, error)
	GetLatestValidOTP(userID uuid.UUID, now time.Time) (*models.OTPCode, error)
	ConsumeOTP(id uuid.UUID) error

	// Sale operations. RejectSale and CompleteSale transition a sale out
	// of Pending exactly once; CompleteSale also flips the vehicle's
	// availability in the same atomic unit, and instead rejects the sale
	// with ErrVehicleUnavailable when the vehicle was already taken.
	CreateSale(sale *models.Sale) (*models.Sale, error)
	GetSale(id uuid.UUID) (*models.Sale, error)
	GetSalesByUser(userID uuid.UUID) ([]*models.Sale, error)
	RejectSale(id uuid.UUID) error
	CompleteSale(id uuid.UUID) error
}
