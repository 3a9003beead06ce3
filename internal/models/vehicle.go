package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Vehicle represents a car in the dealership inventory.
// IsAvailable is the single source of truth for purchasability; it is
// flipped to false only when a sale completes, never by a sale request.
type Vehicle struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Make        string          `json:"make" gorm:"size:100;not null"`
	Model       string          `json:"model" gorm:"size:100;not null"`
	Year        int             `json:"year" gorm:"not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric;not null"`
	IsAvailable bool            `json:"is_available" gorm:"default:true"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Summary returns a display string like "2022 Toyota Camry"
func (v *Vehicle) Summary() string {
	return fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
}

// BeforeCreate hook to auto-generate the ID
func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// VehicleSearch holds optional catalog filters
type VehicleSearch struct {
	Make          string
	Model         string
	Year          int
	MaxPrice      *decimal.Decimal
	OnlyAvailable bool
}
