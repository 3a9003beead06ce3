package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openlot/dealership-backend/internal/models"
	"github.com/openlot/dealership-backend/internal/storage"
)

// VehicleService owns the catalog. Updates are OTP-gated the same way
// purchase requests are.
type VehicleService struct {
	store    storage.Store
	otps     *OTPService
	notifier Notifier
}

func NewVehicleService(store storage.Store, otps *OTPService, notifier Notifier) *VehicleService {
	return &VehicleService{store: store, otps: otps, notifier: notifier}
}

func (s *VehicleService) List(search *models.VehicleSearch) ([]*models.Vehicle, error) {
	return s.store.SearchVehicles(search)
}

func (s *VehicleService) Get(id uuid.UUID) (*models.Vehicle, error) {
	vehicle, err := s.store.GetVehicle(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return vehicle, nil
}

func (s *VehicleService) Create(make, model string, year int, price decimal.Decimal) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{
		Make:        make,
		Model:       model,
		Year:        year,
		Price:       price,
		IsAvailable: true,
	}
	return s.store.CreateVehicle(vehicle)
}

// VehicleUpdate carries the full replacement state for a vehicle.
type VehicleUpdate struct {
	Make        string
	Model       string
	Year        int
	Price       decimal.Decimal
	IsAvailable bool
}

// UpdateOutcome mirrors PurchaseOutcome for the OTP-gated update.
type UpdateOutcome struct {
	OTPRequired bool
	Vehicle     *models.Vehicle
}

// Update applies an admin edit. Without a code it issues and delivers one
// and leaves the vehicle untouched; with a valid code all fields are
// replaced, including availability.
func (s *VehicleService) Update(admin *models.User, id uuid.UUID, update VehicleUpdate, otpCode string) (*UpdateOutcome, error) {
	vehicle, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if otpCode == "" {
		code, err := s.otps.Issue(admin.ID)
		if err != nil {
			return nil, err
		}
		if err := s.notifier.Deliver(admin, "Update Vehicle", code); err != nil {
			return nil, err
		}
		return &UpdateOutcome{OTPRequired: true}, nil
	}

	ok, err := s.otps.Validate(admin.ID, otpCode)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidOTP
	}

	vehicle.Make = update.Make
	vehicle.Model = update.Model
	vehicle.Year = update.Year
	vehicle.Price = update.Price
	vehicle.IsAvailable = update.IsAvailable

	if err := s.store.UpdateVehicle(vehicle); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &UpdateOutcome{Vehicle: vehicle}, nil
}
