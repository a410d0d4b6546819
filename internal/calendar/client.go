// File: internal/calendar/client.go
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"smart_advisor_backend/internal/config"
	"smart_advisor_backend/internal/credentials"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const maxUpcomingEvents = 10

// ErrorKind enumerates the closed set of failure modes this client reports.
type ErrorKind string

const (
	ErrKindNoCredentials ErrorKind = "no_credentials"
	ErrKindInvalid       ErrorKind = "invalid_credentials"
	ErrKindRefreshFailed ErrorKind = "refresh_failed"
	ErrKindAccessDenied  ErrorKind = "access_denied"
	ErrKindAPIError      ErrorKind = "api_error"
	ErrKindUnexpected    ErrorKind = "unexpected"
)

// Error is a typed failure. NeedsReauth distinguishes outcomes the user can
// fix by reconnecting their account from transient provider problems.
type Error struct {
	Kind        ErrorKind `json:"kind"`
	Message     string    `json:"message"`
	NeedsReauth bool      `json:"needs_reauth"`
}

// Result carries the upcoming events or a typed error. Refreshed is non-nil
// only when this fetch performed a token refresh; the caller owns persisting
// it, this client never writes to the credential store.
type Result struct {
	Events    []*gcal.Event       `json:"events,omitempty"`
	Refreshed *credentials.Record `json:"-"`
	Err       *Error              `json:"error,omitempty"`
}

// Client fetches upcoming entries from the user's primary Google Calendar.
type Client struct {
	cfg    *config.Config
	logger *zap.Logger

	// Test seams. Empty values mean the real Google endpoints.
	apiEndpoint string
	tokenURL    string
	httpClient  *http.Client
}

// NewClient creates a calendar client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger.Named("CalendarClient"),
	}
}

// FetchUpcoming returns the user's next events. A nil or unusable record
// short-circuits to a needs-reauth error without any network traffic. An
// expired record with a refresh token is refreshed exactly once; on success
// the refreshed record rides back on the result for the caller to persist.
func (c *Client) FetchUpcoming(ctx context.Context, rec *credentials.Record) *Result {
	if rec == nil {
		c.logger.Warn("FetchUpcoming called with no credentials.")
		return &Result{Err: &Error{Kind: ErrKindNoCredentials, Message: "Google credentials not provided.", NeedsReauth: true}}
	}

	var refreshed *credentials.Record
	if !rec.Valid() {
		if rec.Expired() && rec.Refreshable() {
			c.logger.Info("Google token expired, attempting refresh.")
			newRec, err := c.Refresh(ctx, rec)
			if err != nil {
				c.logger.Error("Failed to refresh Google token", zap.Error(err))
				return &Result{Err: &Error{
					Kind:        ErrKindRefreshFailed,
					Message:     fmt.Sprintf("Could not refresh Google token. Please re-authenticate. (%v)", err),
					NeedsReauth: true,
				}}
			}
			c.logger.Info("Google token refreshed successfully.")
			rec = newRec
			refreshed = newRec
		} else {
			c.logger.Warn("Google credentials invalid and not refreshable.")
			return &Result{Err: &Error{Kind: ErrKindInvalid, Message: "Google credentials invalid. Please re-authenticate.", NeedsReauth: true}}
		}
	}

	events, err := c.listUpcoming(ctx, rec)
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			c.logger.Error("Google Calendar API error",
				zap.Int("status", apiErr.Code), zap.String("message", apiErr.Message))
			if apiErr.Code == http.StatusUnauthorized {
				return &Result{Err: &Error{Kind: ErrKindAccessDenied, Message: "Google Calendar access denied (401). Please re-authenticate.", NeedsReauth: true}}
			}
			return &Result{Err: &Error{
				Kind:    ErrKindAPIError,
				Message: fmt.Sprintf("An error occurred with the Google Calendar API: %s", apiErr.Message),
			}}
		}
		c.logger.Error("Unexpected error fetching Google Calendar events", zap.Error(err))
		return &Result{Err: &Error{Kind: ErrKindUnexpected, Message: fmt.Sprintf("An unexpected error occurred with Google Calendar: %v", err)}}
	}

	c.logger.Info("Successfully fetched Google Calendar events", zap.Int("count", len(events)))
	return &Result{Events: events, Refreshed: refreshed}
}

// Refresh exchanges the refresh token for a new access token and returns the
// refreshed record without persisting it. The record's own client settings
// win over server config so refreshed blobs keep working even after a
// server-side credential rotation.
func (c *Client) Refresh(ctx context.Context, rec *credentials.Record) (*credentials.Record, error) {
	clientID := rec.ClientID
	if clientID == "" {
		clientID = c.cfg.GoogleClientID
	}
	clientSecret := rec.ClientSecret
	if clientSecret == "" {
		clientSecret = c.cfg.GoogleClientSecret
	}
	tokenURL := c.tokenURL
	if tokenURL == "" {
		tokenURL = rec.TokenURI
	}
	if tokenURL == "" {
		tokenURL = google.Endpoint.TokenURL
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}

	// Seeding the source with only the refresh token forces a single refresh
	// round trip.
	tok, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: rec.RefreshToken}).Token()
	if err != nil {
		return nil, err
	}

	newRec := &credentials.Record{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenURI:     rec.TokenURI,
		ClientID:     rec.ClientID,
		ClientSecret: rec.ClientSecret,
		Scopes:       rec.Scopes,
		Expiry:       tok.Expiry.UTC(),
	}
	if newRec.RefreshToken == "" {
		newRec.RefreshToken = rec.RefreshToken
	}
	return newRec, nil
}

func (c *Client) listUpcoming(ctx context.Context, rec *credentials.Record) ([]*gcal.Event, error) {
	// A static token source keeps the API client from refreshing on its own;
	// refresh policy lives in FetchUpcoming.
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(rec.Token()))
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if c.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(c.apiEndpoint))
	}

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	nowUTC := time.Now().UTC().Format(time.RFC3339)
	c.logger.Debug("Fetching Google Calendar events", zap.String("timeMin", nowUTC))
	res, err := svc.Events.List("primary").
		TimeMin(nowUTC).
		MaxResults(maxUpcomingEvents).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}
