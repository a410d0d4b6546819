// File: internal/credentials/store_test.go
package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memBlobRepository is an in-memory BlobRepository for store tests.
type memBlobRepository struct {
	blobs   map[uuid.UUID]*string
	failGet bool
	failSet bool
}

func newMemBlobRepository() *memBlobRepository {
	return &memBlobRepository{blobs: make(map[uuid.UUID]*string)}
}

func (m *memBlobRepository) GetCredentialsJSON(_ context.Context, userID uuid.UUID) (*string, error) {
	if m.failGet {
		return nil, errors.New("storage unavailable")
	}
	return m.blobs[userID], nil
}

func (m *memBlobRepository) SetCredentialsJSON(_ context.Context, userID uuid.UUID, blob *string) error {
	if m.failSet {
		return errors.New("storage unavailable")
	}
	m.blobs[userID] = blob
	return nil
}

func newTestStore(repo BlobRepository) *Store {
	return NewStore(repo, zap.NewNop())
}

func TestStore_SaveAndLoad(t *testing.T) {
	repo := newMemBlobRepository()
	store := newTestStore(repo)
	ctx := context.Background()
	userID := uuid.New()

	rec := &Record{
		AccessToken:  "token",
		RefreshToken: "refresh",
		Expiry:       time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, userID, rec))

	got, err := store.Load(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "token", got.AccessToken)
	assert.Equal(t, "refresh", got.RefreshToken)
}

func TestStore_Save_UnserializableRecordStoresNothing(t *testing.T) {
	repo := newMemBlobRepository()
	store := newTestStore(repo)
	ctx := context.Background()
	userID := uuid.New()

	// Seed a previous record; a failed save must not leave it behind.
	require.NoError(t, store.Save(ctx, userID, &Record{AccessToken: "old"}))

	err := store.Save(ctx, userID, &Record{})
	assert.Error(t, err)

	got, loadErr := store.Load(ctx, userID)
	require.NoError(t, loadErr)
	assert.Nil(t, got, "failed save should read back as absence")
}

func TestStore_Load_AbsentAndMalformedReadAsNil(t *testing.T) {
	repo := newMemBlobRepository()
	store := newTestStore(repo)
	ctx := context.Background()

	cases := map[string]*string{
		"absent":        nil,
		"empty":         strPtr(""),
		"not JSON":      strPtr("{broken"),
		"missing token": strPtr(`{"refresh_token":"r"}`),
		"bad expiry":    strPtr(`{"token":"t","expiry":"whenever"}`),
	}
	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			userID := uuid.New()
			if blob != nil {
				repo.blobs[userID] = blob
			}
			rec, err := store.Load(ctx, userID)
			assert.NoError(t, err)
			assert.Nil(t, rec)
		})
	}
}

func TestStore_Load_RepositoryErrorPropagates(t *testing.T) {
	repo := newMemBlobRepository()
	repo.failGet = true
	store := newTestStore(repo)

	rec, err := store.Load(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.Nil(t, rec)
}

func TestStore_Clear(t *testing.T) {
	repo := newMemBlobRepository()
	store := newTestStore(repo)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, store.Save(ctx, userID, &Record{AccessToken: "t"}))
	require.NoError(t, store.Clear(ctx, userID))

	rec, err := store.Load(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.False(t, store.HasBlob(ctx, userID))
}

func TestStore_HasValidCredentials(t *testing.T) {
	repo := newMemBlobRepository()
	store := newTestStore(repo)
	ctx := context.Background()

	fresh := uuid.New()
	require.NoError(t, store.Save(ctx, fresh, &Record{AccessToken: "t", Expiry: time.Now().UTC().Add(time.Hour)}))
	assert.True(t, store.HasValidCredentials(ctx, fresh))

	stale := uuid.New()
	require.NoError(t, store.Save(ctx, stale, &Record{AccessToken: "t", Expiry: time.Now().UTC().Add(-time.Hour)}))
	assert.False(t, store.HasValidCredentials(ctx, stale))

	assert.False(t, store.HasValidCredentials(ctx, uuid.New()), "absent record is never valid")
}

func strPtr(s string) *string { return &s }
