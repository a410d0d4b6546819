// File: internal/weather/client.go
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"smart_advisor_backend/internal/config"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// ErrorKind enumerates the closed set of failure modes this client reports.
type ErrorKind string

const (
	ErrKindNotConfigured ErrorKind = "not_configured"
	ErrKindNoLocation    ErrorKind = "no_location"
	ErrKindTimeout       ErrorKind = "timeout"
	ErrKindInvalidKey    ErrorKind = "invalid_api_key"
	ErrKindNotFound      ErrorKind = "location_not_found"
	ErrKindHTTPStatus    ErrorKind = "http_status"
	ErrKindNetwork       ErrorKind = "network"
	ErrKindBadResponse   ErrorKind = "bad_response"
)

// Error is a typed, user-presentable failure. It never escapes as a panic or
// a raw Go error; the dashboard renders Message inline.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// CurrentConditions is the provider payload, passed through untransformed.
type CurrentConditions struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Result carries either the provider payload or a typed error, never both.
type Result struct {
	Data *CurrentConditions `json:"data,omitempty"`
	Err  *Error             `json:"error,omitempty"`
}

// Client fetches current weather from OpenWeatherMap.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a weather client. The request timeout bounds the single
// outbound GET; no retries are performed.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		apiKey:     cfg.OpenWeatherMapAPIKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: cfg.WeatherRequestTimeout},
		logger:     logger.Named("WeatherClient"),
	}
}

// Fetch returns current weather for a free-text location. All failures are
// absorbed into the result; the returned value always has exactly one of
// Data or Err set.
func (c *Client) Fetch(ctx context.Context, location string) *Result {
	if c.apiKey == "" {
		c.logger.Error("OpenWeatherMap API key is not configured.")
		return &Result{Err: &Error{Kind: ErrKindNotConfigured, Message: "Weather service is not configured."}}
	}
	if location == "" {
		c.logger.Warn("Fetch called with no location.")
		return &Result{Err: &Error{Kind: ErrKindNoLocation, Message: "Location not provided."}}
	}

	params := url.Values{}
	params.Set("q", location)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		c.logger.Error("Failed to build weather request", zap.Error(err))
		return &Result{Err: &Error{Kind: ErrKindNetwork, Message: "Could not connect to weather service."}}
	}

	c.logger.Debug("Requesting weather", zap.String("location", location))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Error("Timeout fetching weather", zap.String("location", location))
			return &Result{Err: &Error{Kind: ErrKindTimeout, Message: "Weather service request timed out."}}
		}
		c.logger.Error("Weather request failed", zap.String("location", location), zap.Error(err))
		return &Result{Err: &Error{Kind: ErrKindNetwork, Message: "Could not connect to weather service."}}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Weather service returned HTTP error",
			zap.Int("status", resp.StatusCode), zap.String("location", location))
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return &Result{Err: &Error{Kind: ErrKindInvalidKey, Message: "Invalid API key for weather service."}}
		case http.StatusNotFound:
			return &Result{Err: &Error{Kind: ErrKindNotFound, Message: fmt.Sprintf("City not found: %s.", location)}}
		default:
			return &Result{Err: &Error{Kind: ErrKindHTTPStatus, Message: fmt.Sprintf("Weather service error (HTTP %d).", resp.StatusCode)}}
		}
	}

	var conditions CurrentConditions
	if err := json.NewDecoder(resp.Body).Decode(&conditions); err != nil {
		c.logger.Error("Failed to decode weather response", zap.String("location", location), zap.Error(err))
		return &Result{Err: &Error{Kind: ErrKindBadResponse, Message: "Invalid response from weather service."}}
	}

	c.logger.Info("Successfully fetched weather", zap.String("location", location))
	return &Result{Data: &conditions}
}

func isTimeout(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
