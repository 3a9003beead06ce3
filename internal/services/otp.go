package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openlot/dealership-backend/internal/config"
	"github.com/openlot/dealership-backend/internal/models"
	"github.com/openlot/dealership-backend/internal/storage"
	"github.com/openlot/dealership-backend/internal/utils"
)

// OTPService issues and validates one-time codes. Codes are stored hashed
// and are single-use; validation fails closed whenever no valid candidate
// exists, whatever the reason.
type OTPService struct {
	store    storage.Store
	lifetime time.Duration
	now      func() time.Time
}

func NewOTPService(store storage.Store, cfg *config.Config) *OTPService {
	return &OTPService{
		store:    store,
		lifetime: cfg.OTPLifetime,
		now:      time.Now,
	}
}

// Issue generates a fresh code for the user, persists its hash, and
// returns the plaintext for delivery. Prior outstanding codes stay valid
// until consumed or expired; validation always picks the newest.
func (s *OTPService) Issue(userID uuid.UUID) (string, error) {
	code, err := utils.GenerateOTPCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	now := s.now()
	otp := &models.OTPCode{
		UserID:    userID,
		CodeHash:  utils.HashOTPCode(code),
		ExpiresAt: now.Add(s.lifetime),
		IsUsed:    false,
		CreatedAt: now,
	}
	if _, err := s.store.CreateOTP(otp); err != nil {
		return "", fmt.Errorf("failed to persist OTP: %w", err)
	}

	return code, nil
}

// Validate checks the supplied code against the user's newest valid code.
// A mismatch leaves the stored code untouched, so the user may retry
// within the expiry window. A match consumes the code; the store's
// compare-and-set guarantees at most one concurrent caller succeeds.
func (s *OTPService) Validate(userID uuid.UUID, code string) (bool, error) {
	otp, err := s.store.GetLatestValidOTP(userID, s.now())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	supplied := []byte(utils.HashOTPCode(code))
	if subtle.ConstantTimeCompare(supplied, []byte(otp.CodeHash)) != 1 {
		return false, nil
	}

	if err := s.store.ConsumeOTP(otp.ID); err != nil {
		if errors.Is(err, storage.ErrOTPConsumed) || errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
