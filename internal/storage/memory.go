package storage

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openlot/dealership-backend/internal/models"
)

// MemoryStore holds all data in memory. Used for tests and local
// development without a database.
type MemoryStore struct {
	users    map[uuid.UUID]*models.User
	vehicles map[uuid.UUID]*models.Vehicle
	otps     map[uuid.UUID]*models.OTPCode
	sales    map[uuid.UUID]*models.Sale

	// Mutexes for thread safety. CompleteSale takes saleMu then
	// vehicleMu; nothing takes them in the opposite order.
	userMu    sync.RWMutex
	vehicleMu sync.RWMutex
	otpMu     sync.RWMutex
	saleMu    sync.RWMutex
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uuid.UUID]*models.User),
		vehicles: make(map[uuid.UUID]*models.Vehicle),
		otps:     make(map[uuid.UUID]*models.OTPCode),
		sales:    make(map[uuid.UUID]*models.Sale),
	}
}

// User operations

func (m *MemoryStore) CreateUser(user *models.User) (*models.User, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, ErrDuplicateEmail
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	stored := *user
	m.users[user.ID] = &stored
	return user, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByID(id uuid.UUID) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	u, exists := m.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) GetUsersByRole(role models.Role) ([]*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	var users []*models.User
	for _, u := range m.users {
		if u.Role == role {
			cp := *u
			users = append(users, &cp)
		}
	}
	return users, nil
}

// Vehicle operations

func (m *MemoryStore) CreateVehicle(vehicle *models.Vehicle) (*models.Vehicle, error) {
	m.vehicleMu.Lock()
	defer m.vehicleMu.Unlock()

	if vehicle.ID == uuid.Nil {
		vehicle.ID = uuid.New()
	}
	if vehicle.CreatedAt.IsZero() {
		vehicle.CreatedAt = time.Now().UTC()
	}

	stored := *vehicle
	m.vehicles[vehicle.ID] = &stored
	return vehicle, nil
}

func (m *MemoryStore) GetVehicle(id uuid.UUID) (*models.Vehicle, error) {
	m.vehicleMu.RLock()
	defer m.vehicleMu.RUnlock()

	v, exists := m.vehicles[id]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *MemoryStore) SearchVehicles(search *models.VehicleSearch) ([]*models.Vehicle, error) {
	m.vehicleMu.RLock()
	defer m.vehicleMu.RUnlock()

	var results []*models.Vehicle
	for _, v := range m.vehicles {
		if search.OnlyAvailable && !v.IsAvailable {
			continue
		}
		if search.Make != "" && !strings.Contains(strings.ToLower(v.Make), strings.ToLower(search.Make)) {
			continue
		}
		if search.Model != "" && !strings.Contains(strings.ToLower(v.Model), strings.ToLower(search.Model)) {
			continue
		}
		if search.Year != 0 && v.Year != search.Year {
			continue
		}
		if search.MaxPrice != nil && v.Price.GreaterThan(*search.MaxPrice) {
			continue
		}
		cp := *v
		results = append(results, &cp)
	}
	return results, nil
}

func (m *MemoryStore) UpdateVehicle(vehicle *models.Vehicle) error {
	m.vehicleMu.Lock()
	defer m.vehicleMu.Unlock()

	if _, exists := m.vehicles[vehicle.ID]; !exists {
		return ErrNotFound
	}
	stored := *vehicle
	m.vehicles[vehicle.ID] = &stored
	return nil
}

func (m *MemoryStore) CountVehicles() (int64, error) {
	m.vehicleMu.RLock()
	defer m.vehicleMu.RUnlock()
	return int64(len(m.vehicles)), nil
}

// OTP operations

func (m *MemoryStore) CreateOTP(otp *models.OTPCode) (*models.OTPCode, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	if otp.ID == uuid.Nil {
		otp.ID = uuid.New()
	}
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now().UTC()
	}

	stored := *otp
	m.otps[otp.ID] = &stored
	return otp, nil
}

func (m *MemoryStore) GetLatestValidOTP(userID uuid.UUID, now time.Time) (*models.OTPCode, error) {
	m.otpMu.RLock()
	defer m.otpMu.RUnlock()

	var latest *models.OTPCode
	for _, o := range m.otps {
		if o.UserID != userID || !o.Valid(now) {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *MemoryStore) ConsumeOTP(id uuid.UUID) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	o, exists := m.otps[id]
	if !exists {
		return ErrNotFound
	}
	if o.IsUsed {
		return ErrOTPConsumed
	}
	o.IsUsed = true
	return nil
}

// Sale operations

func (m *MemoryStore) CreateSale(sale *models.Sale) (*models.Sale, error) {
	m.saleMu.Lock()
	defer m.saleMu.Unlock()

	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	if sale.Status == "" {
		sale.Status = models.SaleStatusPending
	}
	if sale.PurchasedAt.IsZero() {
		sale.PurchasedAt = time.Now().UTC()
	}

	stored := *sale
	m.sales[sale.ID] = &stored
	return sale, nil
}

func (m *MemoryStore) GetSale(id uuid.UUID) (*models.Sale, error) {
	m.saleMu.RLock()
	defer m.saleMu.RUnlock()

	s, exists := m.sales[id]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) GetSalesByUser(userID uuid.UUID) ([]*models.Sale, error) {
	m.saleMu.RLock()
	defer m.saleMu.RUnlock()

	var sales []*models.Sale
	for _, s := range m.sales {
		if s.UserID == userID {
			cp := *s
			sales = append(sales, &cp)
		}
	}
	return sales, nil
}

func (m *MemoryStore) RejectSale(id uuid.UUID) error {
	m.saleMu.Lock()
	defer m.saleMu.Unlock()

	s, exists := m.sales[id]
	if !exists {
		return ErrNotFound
	}
	if s.Status != models.SaleStatusPending {
		return ErrSaleProcessed
	}
	s.Status = models.SaleStatusRejected
	return nil
}

func (m *MemoryStore) CompleteSale(id uuid.UUID) error {
	m.saleMu.Lock()
	defer m.saleMu.Unlock()

	s, exists := m.sales[id]
	if !exists {
		return ErrNotFound
	}
	if s.Status != models.SaleStatusPending {
		return ErrSaleProcessed
	}

	m.vehicleMu.Lock()
	defer m.vehicleMu.Unlock()

	v, exists := m.vehicles[s.VehicleID]
	if !exists {
		return ErrNotFound
	}
	if !v.IsAvailable {
		// Inventory changed since the request was filed; the sale is
		// rejected and the vehicle is left untouched.
		s.Status = models.SaleStatusRejected
		return ErrVehicleUnavailable
	}

	s.Status = models.SaleStatusCompleted
	v.IsAvailable = false
	return nil
}
