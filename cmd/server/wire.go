// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"smart_advisor_backend/internal/app"
	"smart_advisor_backend/internal/calendar"
	"smart_advisor_backend/internal/config"
	"smart_advisor_backend/internal/credentials"
	"smart_advisor_backend/internal/dashboard"
	"smart_advisor_backend/internal/events"
	"smart_advisor_backend/internal/firebase"
	"smart_advisor_backend/internal/googleauth"
	"smart_advisor_backend/internal/jobs"
	"smart_advisor_backend/internal/notification"
	"smart_advisor_backend/internal/platform/database"
	"smart_advisor_backend/internal/platform/logger"
	"smart_advisor_backend/internal/profile"
	"smart_advisor_backend/internal/shared"
	"smart_advisor_backend/internal/user"
	"smart_advisor_backend/internal/weather"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewGORM,
		provideCleanup,

		// Firebase Service
		firebase.NewFirebaseService,

		// Core User Services
		user.NewGORMRepository,
		user.NewService,
		wire.Bind(new(shared.Service), new(*user.ServiceImplementation)),
		user.NewHandler,

		// Profile
		profile.NewGORMRepository,
		profile.NewService,
		wire.Bind(new(profile.Service), new(*profile.ServiceImplementation)),
		profile.NewHandler,

		// Credentials
		provideBlobRepository,
		credentials.NewStore,

		// External-data adapters
		weather.NewClient,
		events.NewClient,
		calendar.NewClient,

		// Notifications
		notification.NewGORMRepository,
		notification.NewService,
		wire.Bind(new(notification.Service), new(*notification.ServiceImplementation)),
		notification.NewHandler,

		// Google OAuth flow
		googleauth.NewService,
		googleauth.NewHandler,

		// Dashboard aggregation
		provideDashboardService,
		dashboard.NewHandler,

		// Jobs
		jobs.NewCredentialSweepJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
