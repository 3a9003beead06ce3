package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleStatus constants
const (
	SaleStatusPending   = "Pending"
	SaleStatusCompleted = "Completed"
	SaleStatusRejected  = "Rejected"
)

// Sale represents a purchase request progressing through
// Pending -> {Completed, Rejected}. Terminal states are set exactly once
// by the approval operation and are immutable afterward.
type Sale struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;index;not null"`
	VehicleID uuid.UUID `json:"vehicle_id" gorm:"type:uuid;index;not null"`

	// Snapshotted from the vehicle at request time, immutable even if
	// the vehicle's price later changes.
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase" gorm:"type:numeric;not null"`

	Status      string    `json:"status" gorm:"not null;default:Pending"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// BeforeCreate hook to auto-generate the ID
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
