package services

import (
	"fmt"
	"strings"

	"github.com/openlot/dealership-backend/internal/models"
)

// AuthService orchestrates registration, login, and standalone OTP
// verification. Every path that hands out a token requires a freshly
// validated, unconsumed code.
type AuthService struct {
	users    *UserService
	otps     *OTPService
	tokens   *TokenService
	notifier Notifier
}

func NewAuthService(users *UserService, otps *OTPService, tokens *TokenService, notifier Notifier) *AuthService {
	return &AuthService{users: users, otps: otps, tokens: tokens, notifier: notifier}
}

// AuthResult is the uniform response of the auth endpoints: a token when
// one was issued, plus a flag telling the client verification is still
// pending.
type AuthResult struct {
	Token       string `json:"token,omitempty"`
	Message     string `json:"message"`
	RequiresOTP bool   `json:"requires_otp"`
}

// Register creates the account and sends a verification code. No token
// is issued until the code is verified.
func (s *AuthService) Register(email, password, phone, roleStr string) (*AuthResult, error) {
	role, err := models.ParseRole(roleStr)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Register(email, password, phone, role)
	if err != nil {
		return nil, err
	}

	code, err := s.otps.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.notifier.Deliver(user, "Registration", code); err != nil {
		return nil, fmt.Errorf("failed to deliver OTP: %w", err)
	}

	return &AuthResult{
		Message:     "User created. Please verify OTP to complete registration.",
		RequiresOTP: true,
	}, nil
}

// Login verifies the password, then either validates a supplied code and
// issues a token, or sends a fresh code and reports verification pending.
func (s *AuthService) Login(email, password, otpCode string) (*AuthResult, error) {
	user, err := s.users.Authenticate(email, password)
	if err != nil {
		return nil, err
	}

	if otpCode != "" {
		ok, err := s.otps.Validate(user.ID, otpCode)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvalidOTP
		}

		token, err := s.tokens.Issue(user)
		if err != nil {
			return nil, err
		}
		return &AuthResult{Token: token, Message: "Login successful"}, nil
	}

	code, err := s.otps.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.notifier.Deliver(user, "Login", code); err != nil {
		return nil, fmt.Errorf("failed to deliver OTP: %w", err)
	}

	return &AuthResult{
		Message:     "OTP sent. Please verify to login.",
		RequiresOTP: true,
	}, nil
}

// VerifyOTP validates a code for the declared action. Login and Register
// yield a token; any other action gets a bare acknowledgment — the
// protected operations run their own OTP checks independently.
func (s *AuthService) VerifyOTP(email, code, action string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, err
	}

	ok, err := s.otps.Validate(user.ID, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidOTP
	}

	switch strings.ToLower(action) {
	case "login", "register":
		token, err := s.tokens.Issue(user)
		if err != nil {
			return nil, err
		}
		return &AuthResult{Token: token, Message: "Authentication successful"}, nil
	}

	return &AuthResult{Message: "OTP verified successfully"}, nil
}
