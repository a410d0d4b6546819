// File: internal/dashboard/service.go
package dashboard

import (
	"context"
	"fmt"

	"smart_advisor_backend/internal/calendar"
	"smart_advisor_backend/internal/credentials"
	"smart_advisor_backend/internal/events"
	"smart_advisor_backend/internal/notification"
	"smart_advisor_backend/internal/profile"
	"smart_advisor_backend/internal/weather"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// connectPath is surfaced as the authorization link whenever calendar data
// cannot be shown without the user reconnecting.
const connectPath = "/api/v1/google/connect"

// WeatherFetcher is the weather adapter surface the aggregator consumes.
type WeatherFetcher interface {
	Fetch(ctx context.Context, location string) *weather.Result
}

// EventSearcher is the events adapter surface the aggregator consumes.
type EventSearcher interface {
	Search(ctx context.Context, q events.Query) *events.Result
}

// CalendarFetcher is the calendar adapter surface the aggregator consumes.
type CalendarFetcher interface {
	FetchUpcoming(ctx context.Context, rec *credentials.Record) *calendar.Result
	Refresh(ctx context.Context, rec *credentials.Record) (*credentials.Record, error)
}

// CredentialStore is the credential persistence surface the aggregator
// consumes.
type CredentialStore interface {
	Load(ctx context.Context, userID uuid.UUID) (*credentials.Record, error)
	Save(ctx context.Context, userID uuid.UUID, rec *credentials.Record) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// ProfileReader loads (creating if absent) the user's profile.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*profile.UserProfile, error)
}

// Service assembles the per-request dashboard view-model.
type Service interface {
	BuildDashboard(ctx context.Context, userID uuid.UUID) *ViewModel
}

// ServiceImplementation implements the dashboard Service interface. It owns
// the authoritative refresh-and-persist policy for stored credentials: the
// calendar client only reports refreshes, this aggregator writes them.
type ServiceImplementation struct {
	profiles ProfileReader
	store    CredentialStore
	weather  WeatherFetcher
	events   EventSearcher
	calendar CalendarFetcher
	notifier notification.Service
	logger   *zap.Logger
}

// NewService creates a new dashboard service.
func NewService(
	profiles ProfileReader,
	store CredentialStore,
	weatherClient WeatherFetcher,
	eventsClient EventSearcher,
	calendarClient CalendarFetcher,
	notifier notification.Service,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		profiles: profiles,
		store:    store,
		weather:  weatherClient,
		events:   eventsClient,
		calendar: calendarClient,
		notifier: notifier,
		logger:   logger.Named("DashboardService"),
	}
}

var _ Service = (*ServiceImplementation)(nil)

// BuildDashboard produces the aggregated view-model. Each of the three slots
// degrades independently; this method never fails as a whole, every slot
// always ends up with a definite success or error value.
func (s *ServiceImplementation) BuildDashboard(ctx context.Context, userID uuid.UUID) *ViewModel {
	vm := &ViewModel{}

	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load profile for dashboard",
			zap.Error(err), zap.String("userID", userID.String()))
		vm.Weather = &weather.Result{Err: &weather.Error{Kind: weather.ErrKindNoLocation, Message: "Could not load your profile."}}
		vm.Events = &events.Result{Err: &events.Error{Kind: events.ErrKindNoLocation, Message: "Could not load your profile."}}
		vm.Calendar = &CalendarSlot{
			Err:         &calendar.Error{Kind: calendar.ErrKindNoCredentials, Message: "Could not load your profile.", NeedsReauth: true},
			NeedsReauth: true,
		}
		vm.GoogleAuthURL = connectPath
		return vm
	}
	vm.Location = p.Location

	s.fillLocationSlots(ctx, vm, p)
	s.fillCalendarSlot(ctx, vm, userID)
	return vm
}

// fillLocationSlots computes the weather and events slots. Without a stored
// location neither adapter is called; both slots report the missing location
// and no outbound request is made.
func (s *ServiceImplementation) fillLocationSlots(ctx context.Context, vm *ViewModel, p *profile.UserProfile) {
	if p.Location == nil || *p.Location == "" {
		s.logger.Info("User has no location set, skipping weather and events.",
			zap.String("userID", p.UserID.String()))
		vm.Weather = &weather.Result{Err: &weather.Error{Kind: weather.ErrKindNoLocation, Message: "No location set. Update your profile to see local weather."}}
		vm.Events = &events.Result{Err: &events.Error{Kind: events.ErrKindNoLocation, Message: "No location set. Update your profile to see nearby events."}}
		return
	}

	location := *p.Location
	vm.Weather = s.weather.Fetch(ctx, location)
	if vm.Weather.Err != nil {
		s.logger.Warn("Weather slot degraded",
			zap.String("userID", p.UserID.String()), zap.String("message", vm.Weather.Err.Message))
	}

	vm.Events = s.events.Search(ctx, events.Query{Address: location})
	if vm.Events.Err != nil {
		s.logger.Warn("Events slot degraded",
			zap.String("userID", p.UserID.String()), zap.String("message", vm.Events.Err.Message))
	}
}

// fillCalendarSlot loads credentials, applies the inline refresh policy, and
// fetches calendar data when a usable record remains. Refresh failures clear
// the stored record so the next request starts from a clean slate.
func (s *ServiceImplementation) fillCalendarSlot(ctx context.Context, vm *ViewModel, userID uuid.UUID) {
	rec, err := s.store.Load(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load credentials for dashboard",
			zap.Error(err), zap.String("userID", userID.String()))
		rec = nil
	}

	if rec != nil && !rec.Valid() {
		if rec.Expired() && rec.Refreshable() {
			s.logger.Info("Attempting inline Google token refresh", zap.String("userID", userID.String()))
			refreshed, refreshErr := s.calendar.Refresh(ctx, rec)
			if refreshErr != nil {
				s.logger.Error("Inline Google token refresh failed, clearing stored credentials",
					zap.Error(refreshErr), zap.String("userID", userID.String()))
				if clearErr := s.store.Clear(ctx, userID); clearErr != nil {
					s.logger.Error("Failed to clear credentials after refresh failure",
						zap.Error(clearErr), zap.String("userID", userID.String()))
				}
				vm.Notices = append(vm.Notices, Notice{Level: NoticeError, Message: "Your Google session has expired and could not be refreshed. Please connect again."})
				s.notifier.Notify(ctx, userID, notification.GoogleReauthRequired, "Your Google session has expired and could not be refreshed. Please connect again.")
				rec = nil
			} else {
				if saveErr := s.store.Save(ctx, userID, refreshed); saveErr != nil {
					s.logger.Error("Failed to persist refreshed credentials",
						zap.Error(saveErr), zap.String("userID", userID.String()))
				}
				vm.Notices = append(vm.Notices, Notice{Level: NoticeInfo, Message: "Google session refreshed."})
				s.notifier.Notify(ctx, userID, notification.GoogleSessionRefreshed, "Google session refreshed.")
				rec = refreshed
			}
		} else {
			vm.Notices = append(vm.Notices, Notice{Level: NoticeWarning, Message: "Your Google connection needs to be re-established."})
			rec = nil
		}
	}

	if rec == nil || !rec.Valid() {
		vm.Calendar = &CalendarSlot{NeedsReauth: true}
		vm.GoogleAuthURL = connectPath
		return
	}

	result := s.calendar.FetchUpcoming(ctx, rec)
	if result.Refreshed != nil {
		s.logger.Info("Calendar fetch refreshed credentials, persisting.",
			zap.String("userID", userID.String()))
		if saveErr := s.store.Save(ctx, userID, result.Refreshed); saveErr != nil {
			s.logger.Error("Failed to persist credentials refreshed during calendar fetch",
				zap.Error(saveErr), zap.String("userID", userID.String()))
		}
	}

	slot := &CalendarSlot{Events: result.Events, Err: result.Err}
	if result.Err != nil {
		slot.NeedsReauth = result.Err.NeedsReauth
		if result.Err.NeedsReauth {
			vm.GoogleAuthURL = connectPath
		} else {
			vm.Notices = append(vm.Notices, Notice{Level: NoticeWarning, Message: fmt.Sprintf("Google Calendar: %s", result.Err.Message)})
		}
	}
	vm.Calendar = slot
}
