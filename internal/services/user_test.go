package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlot/dealership-backend/internal/models"
)

func TestUser_RegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv()

	user, err := env.users.Register("Alice@Example.com", "secret123", "+15550100", models.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email, "email is normalized")
	assert.NotEqual(t, "secret123", user.PasswordHash, "password is never stored in plaintext")

	got, err := env.users.Authenticate("alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestUser_DuplicateEmail(t *testing.T) {
	env := newTestEnv()
	env.addCustomer("alice@example.com")

	_, err := env.users.Register("alice@example.com", "another-pass", "", models.RoleCustomer)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestUser_InvalidCredentialsIndistinguishable(t *testing.T) {
	env := newTestEnv()
	env.addCustomer("alice@example.com")

	_, wrongPass := env.users.Authenticate("alice@example.com", "wrong")
	_, unknownEmail := env.users.Authenticate("nobody@example.com", "secret123")

	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), unknownEmail.Error(),
		"unknown email and wrong password must be indistinguishable")
}

func TestUser_ListCustomers(t *testing.T) {
	env := newTestEnv()
	env.addCustomer("alice@example.com")
	env.addCustomer("bob@example.com")
	_, err := env.users.Register("admin@dealership.com", "Admin123!", "", models.RoleAdmin)
	require.NoError(t, err)

	customers, err := env.users.ListCustomers()
	require.NoError(t, err)
	assert.Len(t, customers, 2)
	for _, c := range customers {
		assert.Equal(t, models.RoleCustomer, c.Role)
	}
}
