// File: internal/googleauth/service.go
package googleauth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smart_advisor_backend/internal/config"
	"smart_advisor_backend/internal/credentials"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultRevokeURL = "https://oauth2.googleapis.com/revoke"

// RevokeOutcome describes how far a revocation got.
type RevokeOutcome string

const (
	// RevokeOutcomeRevoked means the provider accepted the revocation and the
	// local record was cleared.
	RevokeOutcomeRevoked RevokeOutcome = "revoked"
	// RevokeOutcomeClearedOnly means the local record was cleared but the
	// provider-side revocation failed or never ran (malformed local blob).
	RevokeOutcomeClearedOnly RevokeOutcome = "cleared_only"
	// RevokeOutcomeNothing means no connection was stored.
	RevokeOutcomeNothing RevokeOutcome = "nothing"
)

// Service runs the Google OAuth authorization-code flow and the credential
// revocation path. It owns the only code that ever exchanges or revokes
// tokens; everything else goes through the credential store.
type Service struct {
	cfg    *config.Config
	store  *credentials.Store
	logger *zap.Logger

	// Test seams. Zero values mean the real Google endpoints.
	endpoint   oauth2.Endpoint
	revokeURL  string
	httpClient *http.Client
}

// NewService creates the OAuth flow service.
func NewService(cfg *config.Config, store *credentials.Store, logger *zap.Logger) *Service {
	return &Service{
		cfg:    cfg,
		store:  store,
		logger: logger.Named("GoogleAuthService"),
	}
}

func (s *Service) oauthConfig() *oauth2.Config {
	endpoint := s.endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	return &oauth2.Config{
		ClientID:     s.cfg.GoogleClientID,
		ClientSecret: s.cfg.GoogleClientSecret,
		RedirectURL:  s.cfg.GoogleRedirectURI,
		Scopes:       s.cfg.GoogleCalendarScopes,
		Endpoint:     endpoint,
	}
}

// AuthorizationURL builds the provider consent URL for the given state.
// Offline access plus forced approval guarantees a refresh token on first
// grant; include_granted_scopes keeps previously granted scopes attached.
func (s *Service) AuthorizationURL(state string) (string, error) {
	if !s.cfg.HasGoogleOAuthConfig() {
		s.logger.Error("Google OAuth settings (client ID, client secret, redirect URI) are not fully configured.")
		return "", fmt.Errorf("google calendar integration is not configured")
	}
	return s.oauthConfig().AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	), nil
}

// Exchange trades the authorization code for tokens and returns them as a
// credential record. The record is not persisted here.
func (s *Service) Exchange(ctx context.Context, code string) (*credentials.Record, error) {
	if !s.cfg.HasGoogleOAuthConfig() {
		return nil, fmt.Errorf("google calendar integration is not configured")
	}

	conf := s.oauthConfig()
	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("Failed to exchange Google OAuth code", zap.Error(err))
		return nil, classifyExchangeError(err)
	}
	if tok.AccessToken == "" {
		s.logger.Error("Google OAuth exchange completed but returned no access token.")
		return nil, fmt.Errorf("could not obtain Google credentials after authentication")
	}

	return &credentials.Record{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenURI:     conf.Endpoint.TokenURL,
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		Scopes:       conf.Scopes,
		Expiry:       tok.Expiry.UTC(),
	}, nil
}

// Connect finishes the flow for a user: exchange the code and persist the
// resulting record.
func (s *Service) Connect(ctx context.Context, userID uuid.UUID, code string) error {
	rec, err := s.Exchange(ctx, code)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, userID, rec); err != nil {
		return fmt.Errorf("could not store Google credentials: %w", err)
	}
	s.logger.Info("Google Calendar connected", zap.String("userID", userID.String()))
	return nil
}

// Revoke tears down the user's Google connection. The provider-side
// revocation is best effort; the local record is cleared unconditionally
// whenever anything was stored.
func (s *Service) Revoke(ctx context.Context, userID uuid.UUID) (RevokeOutcome, error) {
	rec, err := s.store.Load(ctx, userID)
	if err != nil {
		return RevokeOutcomeNothing, err
	}

	if rec == nil || rec.AccessToken == "" {
		if s.store.HasBlob(ctx, userID) {
			if err := s.store.Clear(ctx, userID); err != nil {
				return RevokeOutcomeClearedOnly, err
			}
			s.logger.Info("Malformed local Google credentials cleared", zap.String("userID", userID.String()))
			return RevokeOutcomeClearedOnly, nil
		}
		return RevokeOutcomeNothing, nil
	}

	outcome := RevokeOutcomeRevoked
	if !s.revokeUpstream(ctx, rec.AccessToken) {
		outcome = RevokeOutcomeClearedOnly
	}
	if err := s.store.Clear(ctx, userID); err != nil {
		return outcome, err
	}
	s.logger.Info("Local Google credentials removed", zap.String("userID", userID.String()))
	return outcome, nil
}

// revokeUpstream posts the token to the provider's revocation endpoint and
// reports whether the provider accepted it.
func (s *Service) revokeUpstream(ctx context.Context, token string) bool {
	revokeURL := s.revokeURL
	if revokeURL == "" {
		revokeURL = defaultRevokeURL
	}
	client := s.httpClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	form := url.Values{}
	form.Set("token", token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		s.logger.Error("Failed to build revocation request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		s.logger.Error("Error during Google token revocation", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		s.logger.Info("Google token successfully revoked upstream.")
		return true
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
	s.logger.Warn("Failed to revoke token upstream",
		zap.Int("status", resp.StatusCode), zap.String("body", string(body)))
	return false
}

// classifyExchangeError turns raw exchange failures into messages the user
// or operator can act on.
func classifyExchangeError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "redirect_uri_mismatch"):
		return fmt.Errorf("OAuth redirect URI mismatch; check the registered redirect URI in the Google Cloud console")
	case strings.Contains(strings.ToLower(msg), "insecure"):
		return fmt.Errorf("OAuth connection failed due to insecure transport")
	default:
		return fmt.Errorf("failed to finalize Google Calendar connection: %w", err)
	}
}
