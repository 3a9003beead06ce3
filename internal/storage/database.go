package storage

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openlot/dealership-backend/internal/models"
)

// DatabaseStore implements Store on top of gorm/PostgreSQL.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given gorm connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// User operations

func (s *DatabaseStore) CreateUser(user *models.User) (*models.User, error) {
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

func (s *DatabaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStore) GetUsersByRole(role models.Role) ([]*models.User, error) {
	var users []*models.User
	if err := s.db.Where("role = ?", role).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Vehicle operations

func (s *DatabaseStore) CreateVehicle(vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := s.db.Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *DatabaseStore) GetVehicle(id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := s.db.First(&vehicle, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

func (s *DatabaseStore) SearchVehicles(search *models.VehicleSearch) ([]*models.Vehicle, error) {
	query := s.db.Model(&models.Vehicle{})

	if search.OnlyAvailable {
		query = query.Where("is_available = ?", true)
	}
	if search.Make != "" {
		query = query.Where("make ILIKE ?", "%"+search.Make+"%")
	}
	if search.Model != "" {
		query = query.Where("model ILIKE ?", "%"+search.Model+"%")
	}
	if search.Year != 0 {
		query = query.Where("year = ?", search.Year)
	}
	if search.MaxPrice != nil {
		query = query.Where("price <= ?", search.MaxPrice)
	}

	var vehicles []*models.Vehicle
	if err := query.Order("created_at").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (s *DatabaseStore) UpdateVehicle(vehicle *models.Vehicle) error {
	res := s.db.Model(&models.Vehicle{}).Where("id = ?", vehicle.ID).Updates(map[string]interface{}{
		"make":         vehicle.Make,
		"model":        vehicle.Model,
		"year":         vehicle.Year,
		"price":        vehicle.Price,
		"is_available": vehicle.IsAvailable,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) CountVehicles() (int64, error) {
	var count int64
	if err := s.db.Model(&models.Vehicle{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// OTP operations

func (s *DatabaseStore) CreateOTP(otp *models.OTPCode) (*models.OTPCode, error) {
	if err := s.db.Create(otp).Error; err != nil {
		return nil, err
	}
	return otp, nil
}

func (s *DatabaseStore) GetLatestValidOTP(userID uuid.UUID, now time.Time) (*models.OTPCode, error) {
	var otp models.OTPCode
	err := s.db.
		Where("user_id = ? AND is_used = ? AND expires_at > ?", userID, false, now).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &otp, nil
}

// ConsumeOTP is a compare-and-set: the row is marked used only if it is
// currently unused, so concurrent validators of the same code cannot
// both succeed.
func (s *DatabaseStore) ConsumeOTP(id uuid.UUID) error {
	res := s.db.Model(&models.OTPCode{}).
		Where("id = ? AND is_used = ?", id, false).
		Update("is_used", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.Model(&models.OTPCode{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrOTPConsumed
	}
	return nil
}

// Sale operations

func (s *DatabaseStore) CreateSale(sale *models.Sale) (*models.Sale, error) {
	if err := s.db.Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *DatabaseStore) GetSale(id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.First(&sale, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

func (s *DatabaseStore) GetSalesByUser(userID uuid.UUID) ([]*models.Sale, error) {
	var sales []*models.Sale
	err := s.db.Where("user_id = ?", userID).Order("purchased_at DESC").Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *DatabaseStore) RejectSale(id uuid.UUID) error {
	res := s.db.Model(&models.Sale{}).
		Where("id = ? AND status = ?", id, models.SaleStatusPending).
		Update("status", models.SaleStatusRejected)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.Model(&models.Sale{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrSaleProcessed
	}
	return nil
}

// CompleteSale transitions the sale to Completed and flips the vehicle to
// unavailable in one transaction. If the vehicle was taken between request
// and approval the sale is rejected instead and ErrVehicleUnavailable is
// returned after the rejection has committed.
func (s *DatabaseStore) CompleteSale(id uuid.UUID) error {
	var outcome error

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sale, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if sale.Status != models.SaleStatusPending {
			return ErrSaleProcessed
		}

		res := tx.Model(&models.Vehicle{}).
			Where("id = ? AND is_available = ?", sale.VehicleID, true).
			Update("is_available", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// The rejection must commit, so it is not returned as the
			// transaction error.
			outcome = ErrVehicleUnavailable
			return tx.Model(&models.Sale{}).
				Where("id = ?", sale.ID).
				Update("status", models.SaleStatusRejected).Error
		}

		return tx.Model(&models.Sale{}).
			Where("id = ?", sale.ID).
			Update("status", models.SaleStatusCompleted).Error
	})
	if err != nil {
		return err
	}
	return outcome
}
