// File: internal/events/client_test.go
package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 2 * time.Second},
		logger:     zap.NewNop(),
	}
}

func TestEventsClient_NotConfigured(t *testing.T) {
	res := newTestClient("", "http://unused.invalid").Search(context.Background(), Query{Address: "London"})
	require.NotNil(t, res.Err)
	assert.Equal(t, ErrKindNotConfigured, res.Err.Kind)
}

func TestEventsClient_NoLocation(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	res := newTestClient("key", srv.URL).Search(context.Background(), Query{})
	require.NotNil(t, res.Err)
	assert.Equal(t, ErrKindNoLocation, res.Err.Kind)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestEventsClient_Success_AddressQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "London", q.Get("location.address"))
		assert.Equal(t, "date", q.Get("sort_by"))
		assert.Equal(t, "venue,organizer,ticket_availability,format", q.Get("expand"))
		assert.Empty(t, q.Get("location.within"))
		w.Write([]byte(`{"events":[{"name":{"text":"Gig"}},{"name":{"text":"Fair"}}]}`))
	}))
	defer srv.Close()

	res := newTestClient("key", srv.URL).Search(context.Background(), Query{Address: "London"})
	require.Nil(t, res.Err)
	assert.Len(t, res.Events, 2)
}

func TestEventsClient_Success_CoordinateQueryAppliesRadius(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "51.5", q.Get("location.latitude"))
		assert.Equal(t, "-0.12", q.Get("location.longitude"))
		assert.Equal(t, "25km", q.Get("location.within"))
		w.Write([]byte(`{"events":[]}`))
	}))
	defer srv.Close()

	res := newTestClient("key", srv.URL).Search(context.Background(), Query{Latitude: 51.5, Longitude: -0.12})
	require.Nil(t, res.Err)
	assert.NotNil(t, res.Events)
	assert.Empty(t, res.Events)
}

func TestEventsClient_LocationTooBroadHint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"NOT_FOUND","error_description":"The path you requested does not exist."}`))
	}))
	defer srv.Close()

	res := newTestClient("key", srv.URL).Search(context.Background(), Query{Address: "India"})
	require.NotNil(t, res.Err)
	assert.Equal(t, ErrKindLocationTooBroad, res.Err.Kind)
	assert.Contains(t, res.Err.Message, "more specific")
	assert.NotContains(t, res.Err.Message, "404")
}

func TestEventsClient_LocationInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"LOCATION_INVALID","error_description":"Invalid location"}`))
	}))
	defer srv.Close()

	res := newTestClient("key", srv.URL).Search(context.Background(), Query{Address: "??"})
	require.NotNil(t, res.Err)
	assert.Equal(t, ErrKindLocationInvalid, res.Err.Kind)
}

func TestEventsClient_StructuredErrorRelaysDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"BAD_REQUEST","error_description":"Something was off with the request."}`))
	}))
	defer srv.Close()

	res := newTestClient("key", srv.URL).Search(context.Background(), Query{Address: "London"})
	require.NotNil(t, res.Err)
	assert.Equal(t, ErrKindAPIError, res.Err.Kind)
	assert.Contains(t, res.Err.Message, "Something was off with the request.")
}

func TestEventsClient_Unparseable404GetsSpecificityHint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("<html>gone</html>"))
	}))
	defer srv.Close()

	res := newTestClient("key", srv.URL).Search(context.Background(), Query{Address: "Nowhere"})
	require.NotNil(t, res.Err)
	assert.Equal(t, ErrKindHTTPStatus, res.Err.Kind)
	assert.Contains(t, res.Err.Message, "404")
	assert.Contains(t, res.Err.Message, "more specific")
}

func TestEventsClient_UnparseableErrorBodyGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream blew up"))
	}))
	defer srv.Close()

	res := newTestClient("key", srv.URL).Search(context.Background(), Query{Address: "London"})
	require.NotNil(t, res.Err)
	assert.Equal(t, ErrKindHTTPStatus, res.Err.Kind)
	assert.Contains(t, res.Err.Message, "502")
}

func TestEventsClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := newTestClient("key", srv.URL)
	c.httpClient.Timeout = 20 * time.Millisecond

	res := c.Search(context.Background(), Query{Address: "London"})
	require.NotNil(t, res.Err)
	assert.Equal(t, ErrKindTimeout, res.Err.Kind)
}

func TestEventsClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	res := newTestClient("key", srv.URL).Search(context.Background(), Query{Address: "London"})
	require.NotNil(t, res.Err)
	assert.Equal(t, ErrKindNetwork, res.Err.Kind)
}

func TestEventsClient_BadSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{broken"))
	}))
	defer srv.Close()

	res := newTestClient("key", srv.URL).Search(context.Background(), Query{Address: "London"})
	require.NotNil(t, res.Err)
	assert.Equal(t, ErrKindBadResponse, res.Err.Kind)
}
