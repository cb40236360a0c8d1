package config

import (
	"fmt"

	"github.com/JJublanc/tidimondo-sub001/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the PostgreSQL connection.
func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Stay{},
		&models.Participant{},
		&models.Ingredient{},
		&models.Utensil{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.RecipeUtensil{},
		&models.MealAssignment{},
		&models.BlogPost{},
		&models.ContactMessage{},
		&models.RateLimitCounter{},
		&models.Alert{},
		&models.UserDevice{},
	)
}
