package services

import (
	"sync"
	"time"

	"github.com/openlot/dealership-backend/internal/config"
	"github.com/openlot/dealership-backend/internal/models"
	"github.com/openlot/dealership-backend/internal/storage"

	"github.com/shopspring/decimal"
)

// fakeClock is a settable clock shared by the services under test.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingNotifier captures delivered codes instead of sending them.
type recordingNotifier struct {
	mu    sync.Mutex
	codes []string
}

func (n *recordingNotifier) Deliver(user *models.User, purpose, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.codes = append(n.codes, code)
	return nil
}

func (n *recordingNotifier) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.codes) == 0 {
		return ""
	}
	return n.codes[len(n.codes)-1]
}

func testConfig() *config.Config {
	return &config.Config{
		JWTKey:        "test-signing-key",
		JWTIssuer:     "dealership-backend-test",
		TokenLifetime: 3 * time.Hour,
		OTPLifetime:   5 * time.Minute,
	}
}

// testEnv wires all services over a fresh memory store with a fake clock.
type testEnv struct {
	store    *storage.MemoryStore
	clock    *fakeClock
	notifier *recordingNotifier
	users    *UserService
	otps     *OTPService
	tokens   *TokenService
	auth     *AuthService
	vehicles *VehicleService
	sales    *SaleService
}

func newTestEnv() *testEnv {
	cfg := testConfig()
	store := storage.NewMemoryStore()
	clock := newFakeClock()
	notifier := &recordingNotifier{}

	users := NewUserService(store)
	otps := NewOTPService(store, cfg)
	otps.now = clock.Now
	tokens := NewTokenService(cfg)
	tokens.now = clock.Now
	sales := NewSaleService(store, otps, notifier)
	sales.now = clock.Now

	return &testEnv{
		store:    store,
		clock:    clock,
		notifier: notifier,
		users:    users,
		otps:     otps,
		tokens:   tokens,
		auth:     NewAuthService(users, otps, tokens, notifier),
		vehicles: NewVehicleService(store, otps, notifier),
		sales:    sales,
	}
}

func (e *testEnv) addCustomer(email string) *models.User {
	user, err := e.users.Register(email, "secret123", "", models.RoleCustomer)
	if err != nil {
		panic(err)
	}
	return user
}

func (e *testEnv) addVehicle(make, model string, year int, price int64) *models.Vehicle {
	vehicle, err := e.vehicles.Create(make, model, year, decimal.NewFromInt(price))
	if err != nil {
		panic(err)
	}
	return vehicle
}
