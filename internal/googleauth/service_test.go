// File: internal/googleauth/service_test.go
package googleauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"smart_advisor_backend/internal/config"
	"smart_advisor_backend/internal/credentials"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// memBlobRepository is an in-memory credentials.BlobRepository.
type memBlobRepository struct {
	blobs map[uuid.UUID]*string
}

func newMemBlobRepository() *memBlobRepository {
	return &memBlobRepository{blobs: make(map[uuid.UUID]*string)}
}

func (m *memBlobRepository) GetCredentialsJSON(_ context.Context, userID uuid.UUID) (*string, error) {
	return m.blobs[userID], nil
}

func (m *memBlobRepository) SetCredentialsJSON(_ context.Context, userID uuid.UUID, blob *string) error {
	m.blobs[userID] = blob
	return nil
}

func oauthTestConfig() *config.Config {
	return &config.Config{
		GoogleClientID:       "client-id",
		GoogleClientSecret:   "client-secret",
		GoogleRedirectURI:    "https://app.example.com/api/v1/google/callback",
		GoogleCalendarScopes: []string{"https://www.googleapis.com/auth/calendar.readonly"},
	}
}

func newTestService(cfg *config.Config, repo credentials.BlobRepository) *Service {
	return NewService(cfg, credentials.NewStore(repo, zap.NewNop()), zap.NewNop())
}

func TestAuthorizationURL_ParametersAndState(t *testing.T) {
	s := newTestService(oauthTestConfig(), newMemBlobRepository())

	authURL, err := s.AuthorizationURL("state-123")
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "force", q.Get("approval_prompt"))
	assert.Equal(t, "true", q.Get("include_granted_scopes"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/api/v1/google/callback", q.Get("redirect_uri"))
}

func TestAuthorizationURL_MissingConfigIsHardFailure(t *testing.T) {
	cfg := oauthTestConfig()
	cfg.GoogleClientSecret = ""
	s := newTestService(cfg, newMemBlobRepository())

	_, err := s.AuthorizationURL("state")
	assert.Error(t, err)
}

func TestConnect_ExchangeSuccessPersistsRecord(t *testing.T) {
	var tokenCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"new-access","refresh_token":"new-refresh","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	repo := newMemBlobRepository()
	s := newTestService(oauthTestConfig(), repo)
	s.endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	s.httpClient = srv.Client()

	userID := uuid.New()
	require.NoError(t, s.Connect(context.Background(), userID, "the-code"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))

	blob := repo.blobs[userID]
	require.NotNil(t, blob)
	rec, err := credentials.FromPersisted(*blob)
	require.NoError(t, err)
	assert.Equal(t, "new-access", rec.AccessToken)
	assert.Equal(t, "new-refresh", rec.RefreshToken)
	assert.Equal(t, srv.URL+"/token", rec.TokenURI)
	assert.Equal(t, "client-id", rec.ClientID)
	assert.True(t, rec.Expiry.After(time.Now().UTC()))
}

func TestExchange_FailureClassification(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		wantHint string
	}{
		{"redirect mismatch", `{"error":"redirect_uri_mismatch"}`, "redirect URI mismatch"},
		{"generic failure", `{"error":"invalid_grant"}`, "finalize"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			s := newTestService(oauthTestConfig(), newMemBlobRepository())
			s.endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
			s.httpClient = srv.Client()

			_, err := s.Exchange(context.Background(), "bad-code")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantHint)
		})
	}
}

func TestClassifyExchangeError_InsecureTransport(t *testing.T) {
	err := classifyExchangeError(errors.New("oauth2: insecure transport not allowed"))
	assert.Contains(t, err.Error(), "insecure transport")
}

func TestRevoke_UpstreamAccepts(t *testing.T) {
	var revokeCalls int32
	var revokedToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&revokeCalls, 1)
		require.NoError(t, r.ParseForm())
		revokedToken = r.Form.Get("token")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := newMemBlobRepository()
	s := newTestService(oauthTestConfig(), repo)
	s.revokeURL = srv.URL
	s.httpClient = srv.Client()

	userID := uuid.New()
	store := credentials.NewStore(repo, zap.NewNop())
	require.NoError(t, store.Save(context.Background(), userID, &credentials.Record{
		AccessToken: "live-token",
		Expiry:      time.Now().UTC().Add(time.Hour),
	}))

	outcome, err := s.Revoke(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, RevokeOutcomeRevoked, outcome)
	assert.Equal(t, int32(1), atomic.LoadInt32(&revokeCalls))
	assert.Equal(t, "live-token", revokedToken)
	assert.Nil(t, repo.blobs[userID], "local record must be cleared")
}

func TestRevoke_UpstreamFailsLocalStillCleared(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	repo := newMemBlobRepository()
	s := newTestService(oauthTestConfig(), repo)
	s.revokeURL = srv.URL
	s.httpClient = srv.Client()

	userID := uuid.New()
	store := credentials.NewStore(repo, zap.NewNop())
	require.NoError(t, store.Save(context.Background(), userID, &credentials.Record{AccessToken: "t"}))

	outcome, err := s.Revoke(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, RevokeOutcomeClearedOnly, outcome)
	assert.Nil(t, repo.blobs[userID])
}

func TestRevoke_MalformedBlobClearedWithoutUpstreamCall(t *testing.T) {
	var revokeCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&revokeCalls, 1)
	}))
	defer srv.Close()

	repo := newMemBlobRepository()
	userID := uuid.New()
	broken := "{not json"
	repo.blobs[userID] = &broken

	s := newTestService(oauthTestConfig(), repo)
	s.revokeURL = srv.URL
	s.httpClient = srv.Client()

	outcome, err := s.Revoke(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, RevokeOutcomeClearedOnly, outcome)
	assert.Zero(t, atomic.LoadInt32(&revokeCalls))
	assert.Nil(t, repo.blobs[userID])
}

func TestRevoke_NothingStored(t *testing.T) {
	s := newTestService(oauthTestConfig(), newMemBlobRepository())

	outcome, err := s.Revoke(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, RevokeOutcomeNothing, outcome)
}
