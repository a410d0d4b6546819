// File: internal/events/client.go
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"smart_advisor_backend/internal/config"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://www.eventbriteapi.com/v3/events/search/"
	defaultRadius  = "25km"
)

// ErrorKind enumerates the closed set of failure modes this client reports.
type ErrorKind string

const (
	ErrKindNotConfigured    ErrorKind = "not_configured"
	ErrKindNoLocation       ErrorKind = "no_location"
	ErrKindTimeout          ErrorKind = "timeout"
	ErrKindLocationTooBroad ErrorKind = "location_too_broad"
	ErrKindLocationInvalid  ErrorKind = "location_invalid"
	ErrKindAPIError         ErrorKind = "api_error"
	ErrKindHTTPStatus       ErrorKind = "http_status"
	ErrKindNetwork          ErrorKind = "network"
	ErrKindBadResponse      ErrorKind = "bad_response"
)

// Error is a typed, user-presentable failure.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Event is a single entry from the provider's search response, passed through
// untransformed.
type Event map[string]any

// Result carries either the event list or a typed error, never both. An empty
// search is a success with a non-nil empty slice.
type Result struct {
	Events []Event `json:"events,omitempty"`
	Err    *Error  `json:"error,omitempty"`
}

// Query locates the search. Either Address or the Latitude/Longitude pair
// must be set; when coordinates are used the search radius is fixed.
type Query struct {
	Address   string
	Latitude  float64
	Longitude float64
}

func (q Query) hasCoordinates() bool {
	return q.Latitude != 0 && q.Longitude != 0
}

func (q Query) describe() string {
	if q.Address != "" {
		return q.Address
	}
	return fmt.Sprintf("lat/lon: %g,%g", q.Latitude, q.Longitude)
}

// apiErrorBody is the provider's structured error envelope.
type apiErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Client searches for nearby events through the Eventbrite API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an events client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		apiKey:     cfg.EventbriteAPIKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: cfg.EventsRequestTimeout},
		logger:     logger.Named("EventsClient"),
	}
}

// Search returns events near the queried location. All failures are absorbed
// into the result.
func (c *Client) Search(ctx context.Context, q Query) *Result {
	if c.apiKey == "" {
		c.logger.Error("Eventbrite API key is not configured.")
		return &Result{Err: &Error{Kind: ErrKindNotConfigured, Message: "Events service is not configured (API key missing)."}}
	}
	if q.Address == "" && !q.hasCoordinates() {
		c.logger.Warn("Search called with no location information.")
		return &Result{Err: &Error{Kind: ErrKindNoLocation, Message: "Location (address or lat/lon) must be provided for event search."}}
	}

	params := url.Values{}
	params.Set("sort_by", "date")
	params.Set("expand", "venue,organizer,ticket_availability,format")
	if q.Address != "" {
		params.Set("location.address", q.Address)
	} else {
		params.Set("location.latitude", strconv.FormatFloat(q.Latitude, 'f', -1, 64))
		params.Set("location.longitude", strconv.FormatFloat(q.Longitude, 'f', -1, 64))
		params.Set("location.within", defaultRadius)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		c.logger.Error("Failed to build events request", zap.Error(err))
		return &Result{Err: &Error{Kind: ErrKindNetwork, Message: "Could not connect to events service."}}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Requesting events", zap.String("location", q.describe()))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Error("Timeout fetching events", zap.String("location", q.describe()))
			return &Result{Err: &Error{Kind: ErrKindTimeout, Message: "Events service request timed out."}}
		}
		c.logger.Error("Events request failed", zap.String("location", q.describe()), zap.Error(err))
		return &Result{Err: &Error{Kind: ErrKindNetwork, Message: "Could not connect to events service."}}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("Failed to read events response", zap.String("location", q.describe()), zap.Error(err))
		return &Result{Err: &Error{Kind: ErrKindNetwork, Message: "Could not connect to events service."}}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Events service returned HTTP error",
			zap.Int("status", resp.StatusCode),
			zap.String("location", q.describe()),
			zap.String("body", truncate(string(body), 500)))
		return &Result{Err: c.classifyHTTPError(resp.StatusCode, body)}
	}

	var payload struct {
		Events []Event `json:"events"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Error("Failed to decode events response", zap.String("location", q.describe()), zap.Error(err))
		return &Result{Err: &Error{Kind: ErrKindBadResponse, Message: "Invalid response format from events service."}}
	}
	if payload.Events == nil {
		payload.Events = []Event{}
	}

	c.logger.Info("Successfully fetched events",
		zap.Int("count", len(payload.Events)), zap.String("location", q.describe()))
	return &Result{Events: payload.Events}
}

// classifyHTTPError reinterprets the provider's error body. The provider
// reports an overly broad address search as a generic NOT_FOUND, so that case
// gets a hint instead of a raw relay.
func (c *Client) classifyHTTPError(status int, body []byte) *Error {
	var apiErr apiErrorBody
	if err := json.Unmarshal(body, &apiErr); err != nil || (apiErr.Error == "" && apiErr.ErrorDescription == "") {
		if status == http.StatusNotFound {
			return &Error{Kind: ErrKindHTTPStatus, Message: "Events service could not find information for the specified location (404). Please try being more specific."}
		}
		return &Error{Kind: ErrKindHTTPStatus, Message: fmt.Sprintf("Events service error (HTTP %d).", status)}
	}

	desc := apiErr.ErrorDescription
	if desc == "" {
		desc = apiErr.Error
	}

	if apiErr.Error == "NOT_FOUND" && strings.Contains(strings.ToLower(desc), "path you requested does not exist") {
		return &Error{Kind: ErrKindLocationTooBroad, Message: "Events service could not find events for the specified location. Please try a more specific city or area. (Hint: country names might be too broad for an address search.)"}
	}
	if strings.Contains(apiErr.Error, "LOCATION_INVALID") {
		return &Error{Kind: ErrKindLocationInvalid, Message: "Invalid location format for event search. Please try a specific city name."}
	}
	return &Error{Kind: ErrKindAPIError, Message: fmt.Sprintf("Events API error: %s", desc)}
}

func isTimeout(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
