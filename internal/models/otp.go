package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTPCode is a persisted one-time code. Only the SHA-256 hash of the
// plaintext is stored, so a storage read alone cannot reveal the code.
// Rows are insert-only and flip IsUsed at most once; expired rows are
// kept for audit.
type OTPCode struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;index;not null"`
	CodeHash  string    `json:"-" gorm:"size:256;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	IsUsed    bool      `json:"is_used" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hook to auto-generate the ID
func (o *OTPCode) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Valid reports whether the code is still usable at the given instant.
func (o *OTPCode) Valid(now time.Time) bool {
	return !o.IsUsed && o.ExpiresAt.After(now)
}
