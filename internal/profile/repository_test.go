// File: internal/profile/repository_test.go
package profile

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&UserProfile{}))
	t.Cleanup(func() {
		db.Exec("DELETE FROM user_profiles")
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func TestGetOrCreate_CreatesOnFirstAccess(t *testing.T) {
	repo := NewGORMRepository(setupTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	p, err := repo.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, p.UserID)
	assert.Nil(t, p.Location)
	assert.Nil(t, p.GoogleCredentialsJSON)
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	repo := NewGORMRepository(setupTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	first, err := repo.GetOrCreate(ctx, userID)
	require.NoError(t, err)

	_, err = repo.UpdateLocation(ctx, userID, "Seattle,US")
	require.NoError(t, err)

	second, err := repo.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
	require.NotNil(t, second.Location)
	assert.Equal(t, "Seattle,US", *second.Location, "repeat access must not reset the row")

	var count int64
	require.NoError(t, repo.(*gormRepository).db.Model(&UserProfile{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateLocation(t *testing.T) {
	repo := NewGORMRepository(setupTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	p, err := repo.UpdateLocation(ctx, userID, "London,UK")
	require.NoError(t, err)
	require.NotNil(t, p.Location)
	assert.Equal(t, "London,UK", *p.Location)

	p, err = repo.UpdateLocation(ctx, userID, "Paris,FR")
	require.NoError(t, err)
	assert.Equal(t, "Paris,FR", *p.Location)
}

func TestCredentialsJSONRoundTrip(t *testing.T) {
	repo := NewGORMRepository(setupTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	got, err := repo.GetCredentialsJSON(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got)

	blob := `{"token":"abc"}`
	require.NoError(t, repo.SetCredentialsJSON(ctx, userID, &blob))

	got, err = repo.GetCredentialsJSON(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, blob, *got)

	// nil clears the blob.
	require.NoError(t, repo.SetCredentialsJSON(ctx, userID, nil))
	got, err = repo.GetCredentialsJSON(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindAllWithCredentials(t *testing.T) {
	repo := NewGORMRepository(setupTestDB(t))
	ctx := context.Background()

	withBlob := uuid.New()
	blob := `{"token":"abc"}`
	require.NoError(t, repo.SetCredentialsJSON(ctx, withBlob, &blob))

	// Present but empty blob should not be returned.
	withEmpty := uuid.New()
	empty := ""
	require.NoError(t, repo.SetCredentialsJSON(ctx, withEmpty, &empty))

	// Plain profile without credentials.
	_, err := repo.GetOrCreate(ctx, uuid.New())
	require.NoError(t, err)

	profiles, err := repo.FindAllWithCredentials(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, withBlob, profiles[0].UserID)
}
