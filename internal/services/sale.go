package services

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openlot/dealership-backend/internal/models"
	"github.com/openlot/dealership-backend/internal/storage"
)

// SaleService runs the purchase-approval workflow:
// Pending -> {Completed, Rejected}, with completion coupled to vehicle
// availability.
type SaleService struct {
	store    storage.Store
	otps     *OTPService
	notifier Notifier
	now      func() time.Time
}

func NewSaleService(store storage.Store, otps *OTPService, notifier Notifier) *SaleService {
	return &SaleService{store: store, otps: otps, notifier: notifier, now: time.Now}
}

// PurchaseOutcome distinguishes "code sent, retry with it" from a filed
// sale request. When OTPRequired is set no sale row exists yet.
type PurchaseOutcome struct {
	OTPRequired bool
	Sale        *models.Sale
}

// RequestPurchase files a purchase request for an available vehicle. The
// first call (without a code) issues and delivers one; the retry with the
// code creates the sale in Pending with the price snapshotted.
func (s *SaleService) RequestPurchase(user *models.User, vehicleID uuid.UUID, otpCode string) (*PurchaseOutcome, error) {
	vehicle, err := s.store.GetVehicle(vehicleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !vehicle.IsAvailable {
		return nil, ErrVehicleUnavailable
	}

	if otpCode == "" {
		code, err := s.otps.Issue(user.ID)
		if err != nil {
			return nil, err
		}
		if err := s.notifier.Deliver(user, "Purchase Request", code); err != nil {
			return nil, err
		}
		return &PurchaseOutcome{OTPRequired: true}, nil
	}

	ok, err := s.otps.Validate(user.ID, otpCode)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidOTP
	}

	sale := &models.Sale{
		UserID:          user.ID,
		VehicleID:       vehicle.ID,
		PriceAtPurchase: vehicle.Price,
		Status:          models.SaleStatusPending,
		PurchasedAt:     s.now(),
	}
	if _, err := s.store.CreateSale(sale); err != nil {
		return nil, err
	}
	return &PurchaseOutcome{Sale: sale}, nil
}

// ProcessSale settles a pending sale. Approval re-checks vehicle
// availability and, when the vehicle was taken in the meantime, rejects
// the sale instead and reports ErrVehicleUnavailable. The returned sale
// reflects the state after the transition.
func (s *SaleService) ProcessSale(saleID uuid.UUID, approve bool) (*models.Sale, error) {
	var transition error
	if approve {
		transition = s.store.CompleteSale(saleID)
	} else {
		transition = s.store.RejectSale(saleID)
	}

	switch {
	case transition == nil:
	case errors.Is(transition, storage.ErrVehicleUnavailable):
		sale, err := s.store.GetSale(saleID)
		if err != nil {
			return nil, err
		}
		return sale, ErrVehicleUnavailable
	case errors.Is(transition, storage.ErrNotFound):
		return nil, ErrNotFound
	case errors.Is(transition, storage.ErrSaleProcessed):
		return nil, ErrAlreadyProcessed
	default:
		return nil, transition
	}

	return s.store.GetSale(saleID)
}

// SaleRecord is a history entry with the vehicle described inline.
type SaleRecord struct {
	ID              uuid.UUID       `json:"id"`
	VehicleID       uuid.UUID       `json:"vehicle_id"`
	VehicleSummary  string          `json:"vehicle_summary"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	PurchasedAt     time.Time       `json:"purchased_at"`
	Status          string          `json:"status"`
}

// History returns the user's purchase requests, newest first.
func (s *SaleService) History(userID uuid.UUID) ([]*SaleRecord, error) {
	sales, err := s.store.GetSalesByUser(userID)
	if err != nil {
		return nil, err
	}

	records := make([]*SaleRecord, 0, len(sales))
	for _, sale := range sales {
		summary := ""
		if vehicle, err := s.store.GetVehicle(sale.VehicleID); err == nil {
			summary = vehicle.Summary()
		}
		records = append(records, &SaleRecord{
			ID:              sale.ID,
			VehicleID:       sale.VehicleID,
			VehicleSummary:  summary,
			PriceAtPurchase: sale.PriceAtPurchase,
			PurchasedAt:     sale.PurchasedAt,
			Status:          sale.Status,
		})
	}

	// Newest first; the database store already orders this way but the
	// memory store iterates a map.
	sort.Slice(records, func(i, j int) bool {
		return records[i].PurchasedAt.After(records[j].PurchasedAt)
	})
	return records, nil
}
