package database

import (
	"gorm.io/gorm"

	"github.com/mchernyshov/tradepost/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Article{},
		&models.Comment{},
		&models.Like{},
		&models.Notification{},
	)
}
