package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlot/dealership-backend/database"
	"github.com/openlot/dealership-backend/internal/config"
	"github.com/openlot/dealership-backend/internal/models"
	"github.com/openlot/dealership-backend/internal/services"
	"github.com/openlot/dealership-backend/internal/storage"
)

type recorder struct {
	mu    sync.Mutex
	codes []string
}

func (r *recorder) Deliver(user *models.User, purpose, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, code)
	return nil
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.codes) == 0 {
		return ""
	}
	return r.codes[len(r.codes)-1]
}

func newTestApp(t *testing.T) (*fiber.App, *recorder) {
	t.Helper()

	cfg := &config.Config{
		JWTKey:        "test-signing-key",
		JWTIssuer:     "dealership-backend-test",
		TokenLifetime: 3 * time.Hour,
		OTPLifetime:   5 * time.Minute,
		AdminEmail:    "admin@dealership.com",
		AdminPassword: "Admin123!",
	}

	store := storage.NewMemoryStore()
	rec := &recorder{}

	users := services.NewUserService(store)
	otps := services.NewOTPService(store, cfg)
	tokens := services.NewTokenService(cfg)
	auth := services.NewAuthService(users, otps, tokens, rec)
	vehicles := services.NewVehicleService(store, otps, rec)
	sales := services.NewSaleService(store, otps, rec)

	require.NoError(t, database.Seed(store, users, cfg))

	app := fiber.New()
	SetupRoutes(app, Deps{
		Auth:     auth,
		Users:    users,
		Vehicles: vehicles,
		Sales:    sales,
		Tokens:   tokens,
	})
	return app, rec
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 {
		// Some endpoints return arrays; callers decode those themselves.
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded
}

func loginWithOTP(t *testing.T, app *fiber.App, rec *recorder, email, password string) string {
	t.Helper()

	status, body := doJSON(t, app, "POST", "/api/auth/login",
		map[string]any{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["requires_otp"])

	status, body = doJSON(t, app, "POST", "/api/auth/login",
		map[string]any{"email": email, "password": password},
		map[string]string{"X-OTP": rec.last()})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestRegisterVerifyFlow(t *testing.T) {
	app, rec := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/api/auth/register",
		map[string]any{"email": "alice@example.com", "password": "secret123"}, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["requires_otp"])
	assert.Empty(t, body["token"])

	status, body = doJSON(t, app, "POST", "/api/auth/verify-otp",
		map[string]any{"email": "alice@example.com", "code": rec.last(), "action": "Register"}, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	// Duplicate registration is refused.
	status, _ = doJSON(t, app, "POST", "/api/auth/register",
		map[string]any{"email": "alice@example.com", "password": "secret123"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := doJSON(t, app, "POST", "/api/auth/login",
		map[string]any{"email": "admin@dealership.com", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, "POST", "/api/auth/login",
		map[string]any{"email": "nobody@example.com", "password": "whatever"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCatalogIsPublicAndSeeded(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/api/vehicles", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var vehicles []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&vehicles))
	assert.Len(t, vehicles, 10)
}

func TestRoleGuards(t *testing.T) {
	app, rec := newTestApp(t)

	// Unauthenticated access is refused outright.
	status, _ := doJSON(t, app, "GET", "/api/users", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	doJSON(t, app, "POST", "/api/auth/register",
		map[string]any{"email": "alice@example.com", "password": "secret123"}, nil)
	customerToken := loginWithOTP(t, app, rec, "alice@example.com", "secret123")

	// A customer cannot reach admin routes, an admin cannot reach
	// customer routes.
	status, _ = doJSON(t, app, "GET", "/api/users", nil, bearer(customerToken))
	assert.Equal(t, http.StatusForbidden, status)

	adminToken := loginWithOTP(t, app, rec, "admin@dealership.com", "Admin123!")
	status, _ = doJSON(t, app, "GET", "/api/sales/history", nil, bearer(adminToken))
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = doJSON(t, app, "GET", "/api/users", nil, bearer(adminToken))
	assert.Equal(t, http.StatusOK, status)
}

func firstVehicleID(t *testing.T, app *fiber.App) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/vehicles", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var vehicles []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&vehicles))
	require.NotEmpty(t, vehicles)
	return vehicles[0]["id"].(string)
}

func TestPurchaseApprovalFlow(t *testing.T) {
	app, rec := newTestApp(t)

	doJSON(t, app, "POST", "/api/auth/register",
		map[string]any{"email": "alice@example.com", "password": "secret123"}, nil)
	customerToken := loginWithOTP(t, app, rec, "alice@example.com", "secret123")
	adminToken := loginWithOTP(t, app, rec, "admin@dealership.com", "Admin123!")

	vehicleID := firstVehicleID(t, app)

	// First attempt: verification required, no sale filed.
	status, body := doJSON(t, app, "POST", "/api/sales/request",
		map[string]any{"vehicle_id": vehicleID}, bearer(customerToken))
	require.Equal(t, http.StatusPreconditionRequired, status)
	assert.Equal(t, true, body["requires_otp"])
	assert.Nil(t, body["sale_id"])

	// Retry with the delivered code files the sale.
	headers := bearer(customerToken)
	headers["X-OTP"] = rec.last()
	status, body = doJSON(t, app, "POST", "/api/sales/request",
		map[string]any{"vehicle_id": vehicleID}, headers)
	require.Equal(t, http.StatusOK, status)
	saleID, _ := body["sale_id"].(string)
	require.NotEmpty(t, saleID)

	// Admin approves; the vehicle leaves the lot.
	status, body = doJSON(t, app, "POST", "/api/sales/process",
		map[string]any{"sale_id": saleID, "approve": true}, bearer(adminToken))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.SaleStatusCompleted, body["status"])

	status, body = doJSON(t, app, "GET", "/api/vehicles/"+vehicleID, nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["is_available"])

	// Re-processing is refused.
	status, _ = doJSON(t, app, "POST", "/api/sales/process",
		map[string]any{"sale_id": saleID, "approve": false}, bearer(adminToken))
	assert.Equal(t, http.StatusBadRequest, status)

	// A second request against the sold vehicle fails up front.
	status, _ = doJSON(t, app, "POST", "/api/sales/request",
		map[string]any{"vehicle_id": vehicleID}, bearer(customerToken))
	assert.Equal(t, http.StatusBadRequest, status)

	// History shows the completed sale.
	req := httptest.NewRequest("GET", "/api/sales/history", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Len(t, history, 1)
	assert.Equal(t, models.SaleStatusCompleted, history[0]["status"])
}

func TestVehicleUpdateOTPGate(t *testing.T) {
	app, rec := newTestApp(t)

	adminToken := loginWithOTP(t, app, rec, "admin@dealership.com", "Admin123!")
	vehicleID := firstVehicleID(t, app)

	update := map[string]any{
		"make": "Toyota", "model": "Camry", "year": 2022,
		"price": "19999", "is_available": true,
	}

	status, body := doJSON(t, app, "PUT", "/api/vehicles/"+vehicleID, update, bearer(adminToken))
	require.Equal(t, http.StatusPreconditionRequired, status)
	assert.Equal(t, true, body["requires_otp"])

	headers := bearer(adminToken)
	headers["X-OTP"] = rec.last()
	status, body = doJSON(t, app, "PUT", "/api/vehicles/"+vehicleID, update, headers)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "19999", fmt.Sprint(body["price"]))
}
