package database

import (
	"errors"
	"log"

	"github.com/shopspring/decimal"

	"github.com/openlot/dealership-backend/internal/config"
	"github.com/openlot/dealership-backend/internal/models"
	"github.com/openlot/dealership-backend/internal/services"
	"github.com/openlot/dealership-backend/internal/storage"
)

// Seed creates the admin account and starter inventory on first run.
func Seed(store storage.Store, users *services.UserService, cfg *config.Config) error {
	if _, err := store.GetUserByEmail(cfg.AdminEmail); errors.Is(err, storage.ErrNotFound) {
		if _, err := users.Register(cfg.AdminEmail, cfg.AdminPassword, "", models.RoleAdmin); err != nil {
			return err
		}
		log.Printf("Seeded admin account %s", cfg.AdminEmail)
	} else if err != nil {
		return err
	}

	count, err := store.CountVehicles()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	starter := []struct {
		make, model string
		year        int
		price       int64
	}{
		{"Toyota", "Camry", 2022, 25000},
		{"Honda", "Civic", 2023, 27000},
		{"Ford", "Mustang", 2021, 35000},
		{"Chevrolet", "Malibu", 2020, 22000},
		{"Tesla", "Model 3", 2023, 45000},
		{"BMW", "3 Series", 2022, 42000},
		{"Audi", "A4", 2023, 44000},
		{"Mercedes-Benz", "C-Class", 2022, 46000},
		{"Nissan", "Altima", 2021, 24000},
		{"Hyundai", "Sonata", 2022, 26000},
	}
	for _, v := range starter {
		vehicle := &models.Vehicle{
			Make:        v.make,
			Model:       v.model,
			Year:        v.year,
			Price:       decimal.NewFromInt(v.price),
			IsAvailable: true,
		}
		if _, err := store.CreateVehicle(vehicle); err != nil {
			return err
		}
	}
	log.Printf("Seeded %d starter vehicles", len(starter))
	return nil
}
