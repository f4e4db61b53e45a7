package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/schedmate-api/internal/models"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Class{},
		&models.Enrollment{},
		&models.Task{},
		&models.ProgressRecord{},
		&models.ActivityLog{},
		&models.UploadRecord{},
	}
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
