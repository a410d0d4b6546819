// File: internal/app/migrate.go
package app

import (
	"smart_advisor_backend/internal/notification"
	"smart_advisor_backend/internal/profile"
	"smart_advisor_backend/internal/user"

	"gorm.io/gorm"
)

// AutoMigrate brings the schema up to date for every persisted model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&profile.UserProfile{},
		&notification.Notification{},
	)
}
