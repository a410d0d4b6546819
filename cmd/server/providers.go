// File: cmd/server/providers.go
package main

import (
	"log"

	"smart_advisor_backend/internal/calendar"
	"smart_advisor_backend/internal/credentials"
	"smart_advisor_backend/internal/dashboard"
	"smart_advisor_backend/internal/events"
	"smart_advisor_backend/internal/notification"
	"smart_advisor_backend/internal/platform/database"
	"smart_advisor_backend/internal/profile"
	"smart_advisor_backend/internal/weather"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// provideBlobRepository exposes the profile repository as the credential
// store's persistence surface.
func provideBlobRepository(repo profile.Repository) credentials.BlobRepository {
	return repo
}

// provideDashboardService wires the concrete adapters into the aggregator's
// narrow interfaces.
func provideDashboardService(
	profileService profile.Service,
	store *credentials.Store,
	weatherClient *weather.Client,
	eventsClient *events.Client,
	calendarClient *calendar.Client,
	notifier notification.Service,
	appLogger *zap.Logger,
) dashboard.Service {
	return dashboard.NewService(profileService, store, weatherClient, eventsClient, calendarClient, notifier, appLogger)
}

func provideCleanup(appLogger *zap.Logger, db *gorm.DB) func() {
	return func() {
		appLogger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := appLogger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
