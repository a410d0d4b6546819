// File: internal/dashboard/service_test.go
package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"smart_advisor_backend/internal/calendar"
	"smart_advisor_backend/internal/common"
	"smart_advisor_backend/internal/credentials"
	"smart_advisor_backend/internal/events"
	"smart_advisor_backend/internal/notification"
	"smart_advisor_backend/internal/profile"
	"smart_advisor_backend/internal/weather"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
)

// --- Mocks ---

type MockProfileReader struct {
	mock.Mock
}

func (m *MockProfileReader) GetProfile(ctx context.Context, userID uuid.UUID) (*profile.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.UserProfile), args.Error(1)
}

type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Load(ctx context.Context, userID uuid.UUID) (*credentials.Record, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentials.Record), args.Error(1)
}

func (m *MockCredentialStore) Save(ctx context.Context, userID uuid.UUID, rec *credentials.Record) error {
	args := m.Called(ctx, userID, rec)
	return args.Error(0)
}

func (m *MockCredentialStore) Clear(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockWeatherFetcher struct {
	mock.Mock
}

func (m *MockWeatherFetcher) Fetch(ctx context.Context, location string) *weather.Result {
	args := m.Called(ctx, location)
	return args.Get(0).(*weather.Result)
}

type MockEventSearcher struct {
	mock.Mock
}

func (m *MockEventSearcher) Search(ctx context.Context, q events.Query) *events.Result {
	args := m.Called(ctx, q)
	return args.Get(0).(*events.Result)
}

type MockCalendarFetcher struct {
	mock.Mock
}

func (m *MockCalendarFetcher) FetchUpcoming(ctx context.Context, rec *credentials.Record) *calendar.Result {
	args := m.Called(ctx, rec)
	return args.Get(0).(*calendar.Result)
}

func (m *MockCalendarFetcher) Refresh(ctx context.Context, rec *credentials.Record) (*credentials.Record, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentials.Record), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) CreateNotification(ctx context.Context, userID uuid.UUID, nType notification.Type, message string) (*notification.Notification, error) {
	args := m.Called(ctx, userID, nType, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

func (m *MockNotificationService) Notify(ctx context.Context, userID uuid.UUID, nType notification.Type, message string) {
	m.Called(ctx, userID, nType, message)
}

func (m *MockNotificationService) GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]notification.Notification, *common.Pagination, error) {
	args := m.Called(ctx, userID, page, pageSize)
	var list []notification.Notification
	if args.Get(0) != nil {
		list = args.Get(0).([]notification.Notification)
	}
	var pagination *common.Pagination
	if args.Get(1) != nil {
		pagination = args.Get(1).(*common.Pagination)
	}
	return list, pagination, args.Error(2)
}

func (m *MockNotificationService) MarkNotificationAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}

func (m *MockNotificationService) MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// --- Test Suite Setup ---

type DashboardServiceTestSuite struct {
	service      Service
	mockProfiles *MockProfileReader
	mockStore    *MockCredentialStore
	mockWeather  *MockWeatherFetcher
	mockEvents   *MockEventSearcher
	mockCalendar *MockCalendarFetcher
	mockNotifier *MockNotificationService
	userID       uuid.UUID
}

func setupDashboardServiceTestSuite(t *testing.T) *DashboardServiceTestSuite {
	t.Helper()
	ts := &DashboardServiceTestSuite{
		mockProfiles: new(MockProfileReader),
		mockStore:    new(MockCredentialStore),
		mockWeather:  new(MockWeatherFetcher),
		mockEvents:   new(MockEventSearcher),
		mockCalendar: new(MockCalendarFetcher),
		mockNotifier: new(MockNotificationService),
		userID:       uuid.New(),
	}
	ts.service = NewService(
		ts.mockProfiles,
		ts.mockStore,
		ts.mockWeather,
		ts.mockEvents,
		ts.mockCalendar,
		ts.mockNotifier,
		zap.NewNop(),
	)
	return ts
}

func (ts *DashboardServiceTestSuite) profileWithLocation(location string) *profile.UserProfile {
	return &profile.UserProfile{UserID: ts.userID, Location: &location}
}

func weatherSuccess() *weather.Result {
	data := &weather.CurrentConditions{Name: "London"}
	data.Main.Temp = 14.5
	return &weather.Result{Data: data}
}

func eventsSuccess() *events.Result {
	return &events.Result{Events: []events.Event{{"name": map[string]any{"text": "Gig"}}}}
}

// --- Test Cases ---

func TestBuildDashboard_LocationSetNoCredentials(t *testing.T) {
	ts := setupDashboardServiceTestSuite(t)
	ctx := context.Background()

	ts.mockProfiles.On("GetProfile", ctx, ts.userID).Return(ts.profileWithLocation("London,UK"), nil)
	ts.mockWeather.On("Fetch", ctx, "London,UK").Return(weatherSuccess())
	ts.mockEvents.On("Search", ctx, events.Query{Address: "London,UK"}).Return(eventsSuccess())
	ts.mockStore.On("Load", ctx, ts.userID).Return(nil, nil)

	vm := ts.service.BuildDashboard(ctx, ts.userID)

	require.NotNil(t, vm.Weather)
	assert.Nil(t, vm.Weather.Err)
	assert.Equal(t, "London", vm.Weather.Data.Name)

	require.NotNil(t, vm.Events)
	assert.Nil(t, vm.Events.Err)
	assert.Len(t, vm.Events.Events, 1)

	require.NotNil(t, vm.Calendar)
	assert.True(t, vm.Calendar.NeedsReauth)
	assert.Equal(t, connectPath, vm.GoogleAuthURL, "a reconnect link must be present")

	ts.mockCalendar.AssertNotCalled(t, "FetchUpcoming", mock.Anything, mock.Anything)
	ts.mockStore.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildDashboard_NoLocationMakesNoOutboundCalls(t *testing.T) {
	ts := setupDashboardServiceTestSuite(t)
	ctx := context.Background()

	ts.mockProfiles.On("GetProfile", ctx, ts.userID).Return(&profile.UserProfile{UserID: ts.userID}, nil)
	ts.mockStore.On("Load", ctx, ts.userID).Return(nil, nil)

	vm := ts.service.BuildDashboard(ctx, ts.userID)

	require.NotNil(t, vm.Weather.Err)
	assert.Equal(t, weather.ErrKindNoLocation, vm.Weather.Err.Kind)
	require.NotNil(t, vm.Events.Err)
	assert.Equal(t, events.ErrKindNoLocation, vm.Events.Err.Kind)

	ts.mockWeather.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	ts.mockEvents.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestBuildDashboard_SlotsDegradeIndependently(t *testing.T) {
	ts := setupDashboardServiceTestSuite(t)
	ctx := context.Background()

	ts.mockProfiles.On("GetProfile", ctx, ts.userID).Return(ts.profileWithLocation("India"), nil)
	ts.mockWeather.On("Fetch", ctx, "India").Return(weatherSuccess())
	ts.mockEvents.On("Search", ctx, events.Query{Address: "India"}).Return(&events.Result{
		Err: &events.Error{Kind: events.ErrKindLocationTooBroad, Message: "too broad"},
	})
	ts.mockStore.On("Load", ctx, ts.userID).Return(nil, nil)

	vm := ts.service.BuildDashboard(ctx, ts.userID)

	assert.Nil(t, vm.Weather.Err, "weather must not be affected by the events failure")
	require.NotNil(t, vm.Events.Err)
	assert.Equal(t, events.ErrKindLocationTooBroad, vm.Events.Err.Kind)
}

func TestBuildDashboard_ValidCredentialsFetchCalendar(t *testing.T) {
	ts := setupDashboardServiceTestSuite(t)
	ctx := context.Background()

	rec := &credentials.Record{AccessToken: "t", Expiry: time.Now().UTC().Add(time.Hour)}
	ts.mockProfiles.On("GetProfile", ctx, ts.userID).Return(ts.profileWithLocation("London,UK"), nil)
	ts.mockWeather.On("Fetch", ctx, "London,UK").Return(weatherSuccess())
	ts.mockEvents.On("Search", ctx, mock.Anything).Return(eventsSuccess())
	ts.mockStore.On("Load", ctx, ts.userID).Return(rec, nil)
	ts.mockCalendar.On("FetchUpcoming", ctx, rec).Return(&calendar.Result{
		Events: []*gcal.Event{{Summary: "Standup"}},
	})

	vm := ts.service.BuildDashboard(ctx, ts.userID)

	require.NotNil(t, vm.Calendar)
	assert.False(t, vm.Calendar.NeedsReauth)
	require.Len(t, vm.Calendar.Events, 1)
	assert.Equal(t, "Standup", vm.Calendar.Events[0].Summary)
	assert.Empty(t, vm.GoogleAuthURL)

	ts.mockCalendar.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
	ts.mockStore.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildDashboard_ExpiredCredentialRefreshedAndPersistedOnce(t *testing.T) {
	ts := setupDashboardServiceTestSuite(t)
	ctx := context.Background()

	stale := &credentials.Record{AccessToken: "stale", RefreshToken: "r", Expiry: time.Now().UTC().Add(-time.Hour)}
	fresh := &credentials.Record{AccessToken: "fresh", RefreshToken: "r", Expiry: time.Now().UTC().Add(time.Hour)}

	ts.mockProfiles.On("GetProfile", ctx, ts.userID).Return(&profile.UserProfile{UserID: ts.userID}, nil)
	ts.mockStore.On("Load", ctx, ts.userID).Return(stale, nil)
	ts.mockCalendar.On("Refresh", ctx, stale).Return(fresh, nil).Once()
	ts.mockStore.On("Save", ctx, ts.userID, fresh).Return(nil).Once()
	ts.mockNotifier.On("Notify", ctx, ts.userID, notification.GoogleSessionRefreshed, mock.AnythingOfType("string")).Return()
	ts.mockCalendar.On("FetchUpcoming", ctx, fresh).Return(&calendar.Result{Events: []*gcal.Event{}})

	vm := ts.service.BuildDashboard(ctx, ts.userID)

	assert.False(t, vm.Calendar.NeedsReauth)
	require.NotEmpty(t, vm.Notices)
	assert.Equal(t, "Google session refreshed.", vm.Notices[0].Message)

	ts.mockStore.AssertNumberOfCalls(t, "Save", 1)
	ts.mockCalendar.AssertNumberOfCalls(t, "Refresh", 1)
	ts.mockNotifier.AssertExpectations(t)
}

func TestBuildDashboard_RefreshFailureClearsAndRequiresReauth(t *testing.T) {
	ts := setupDashboardServiceTestSuite(t)
	ctx := context.Background()

	stale := &credentials.Record{AccessToken: "stale", RefreshToken: "r", Expiry: time.Now().UTC().Add(-time.Hour)}

	ts.mockProfiles.On("GetProfile", ctx, ts.userID).Return(&profile.UserProfile{UserID: ts.userID}, nil)
	ts.mockStore.On("Load", ctx, ts.userID).Return(stale, nil)
	ts.mockCalendar.On("Refresh", ctx, stale).Return(nil, errors.New("invalid_grant")).Once()
	ts.mockStore.On("Clear", ctx, ts.userID).Return(nil).Once()
	ts.mockNotifier.On("Notify", ctx, ts.userID, notification.GoogleReauthRequired, mock.AnythingOfType("string")).Return()

	vm := ts.service.BuildDashboard(ctx, ts.userID)

	assert.True(t, vm.Calendar.NeedsReauth)
	assert.Equal(t, connectPath, vm.GoogleAuthURL)
	require.NotEmpty(t, vm.Notices)
	assert.Equal(t, NoticeError, vm.Notices[0].Level)

	ts.mockStore.AssertNumberOfCalls(t, "Clear", 1)
	ts.mockCalendar.AssertNotCalled(t, "FetchUpcoming", mock.Anything, mock.Anything)
	ts.mockNotifier.AssertExpectations(t)
}

func TestBuildDashboard_InvalidWithoutRefreshTokenKeepsStoredRecord(t *testing.T) {
	ts := setupDashboardServiceTestSuite(t)
	ctx := context.Background()

	stale := &credentials.Record{AccessToken: "stale", Expiry: time.Now().UTC().Add(-time.Hour)}

	ts.mockProfiles.On("GetProfile", ctx, ts.userID).Return(&profile.UserProfile{UserID: ts.userID}, nil)
	ts.mockStore.On("Load", ctx, ts.userID).Return(stale, nil)

	vm := ts.service.BuildDashboard(ctx, ts.userID)

	assert.True(t, vm.Calendar.NeedsReauth)
	require.NotEmpty(t, vm.Notices)
	assert.Equal(t, NoticeWarning, vm.Notices[0].Level)

	ts.mockStore.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
	ts.mockCalendar.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
	ts.mockCalendar.AssertNotCalled(t, "FetchUpcoming", mock.Anything, mock.Anything)
}

func TestBuildDashboard_FetchReportedRefreshIsPersisted(t *testing.T) {
	ts := setupDashboardServiceTestSuite(t)
	ctx := context.Background()

	rec := &credentials.Record{AccessToken: "t", Expiry: time.Now().UTC().Add(time.Hour)}
	refreshed := &credentials.Record{AccessToken: "t2", Expiry: time.Now().UTC().Add(2 * time.Hour)}

	ts.mockProfiles.On("GetProfile", ctx, ts.userID).Return(&profile.UserProfile{UserID: ts.userID}, nil)
	ts.mockStore.On("Load", ctx, ts.userID).Return(rec, nil)
	ts.mockCalendar.On("FetchUpcoming", ctx, rec).Return(&calendar.Result{
		Events:    []*gcal.Event{},
		Refreshed: refreshed,
	})
	ts.mockStore.On("Save", ctx, ts.userID, refreshed).Return(nil).Once()

	ts.service.BuildDashboard(ctx, ts.userID)

	ts.mockStore.AssertNumberOfCalls(t, "Save", 1)
}

func TestBuildDashboard_NonFatalCalendarErrorBecomesNotice(t *testing.T) {
	ts := setupDashboardServiceTestSuite(t)
	ctx := context.Background()

	rec := &credentials.Record{AccessToken: "t", Expiry: time.Now().UTC().Add(time.Hour)}

	ts.mockProfiles.On("GetProfile", ctx, ts.userID).Return(&profile.UserProfile{UserID: ts.userID}, nil)
	ts.mockStore.On("Load", ctx, ts.userID).Return(rec, nil)
	ts.mockCalendar.On("FetchUpcoming", ctx, rec).Return(&calendar.Result{
		Err: &calendar.Error{Kind: calendar.ErrKindAPIError, Message: "Backend Error"},
	})

	vm := ts.service.BuildDashboard(ctx, ts.userID)

	assert.False(t, vm.Calendar.NeedsReauth)
	assert.Empty(t, vm.GoogleAuthURL)
	require.NotEmpty(t, vm.Notices)
	assert.Contains(t, vm.Notices[0].Message, "Backend Error")
}

func TestBuildDashboard_ProfileFailureStillRenders(t *testing.T) {
	ts := setupDashboardServiceTestSuite(t)
	ctx := context.Background()

	ts.mockProfiles.On("GetProfile", ctx, ts.userID).Return(nil, errors.New("db down"))

	vm := ts.service.BuildDashboard(ctx, ts.userID)

	require.NotNil(t, vm)
	assert.NotNil(t, vm.Weather.Err)
	assert.NotNil(t, vm.Events.Err)
	assert.True(t, vm.Calendar.NeedsReauth)
}
