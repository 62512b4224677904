package database

import (
	"errors"
	"fmt"

	"github.com/yeremiapane/kebab-storefront/models"
	"github.com/yeremiapane/kebab-storefront/utils"
	"gorm.io/gorm"
)

// ErrCounterNotInitialised means the sequence row has never been created.
var ErrCounterNotInitialised = errors.New("order counter is not initialised, run the migrate command")

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Counter{},
		&models.Order{},
		&models.OrderItem{},
		&models.MenuItem{},
		&models.Category{},
		&models.HeroSlide{},
		&models.User{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Info("AutoMigrate completed")
	return nil
}

// EnsureCounter creates the named counter at start when it does not exist.
// An existing counter is never reset.
func EnsureCounter(db *gorm.DB, name string, start uint) (*models.Counter, error) {
	counter := models.Counter{Name: name}
	err := db.Where(models.Counter{Name: name}).
		Attrs(models.Counter{LastID: start}).
		FirstOrCreate(&counter).Error
	if err != nil {
		return nil, fmt.Errorf("ensure counter %s: %w", name, err)
	}
	return &counter, nil
}

// RequireCounter fails when the counter row is missing so the server never
// invents order numbers.
func RequireCounter(db *gorm.DB, name string) error {
	var count int64
	if err := db.Model(&models.Counter{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return fmt.Errorf("check counter %s: %w", name, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", ErrCounterNotInitialised, name)
	}
	return nil
}
