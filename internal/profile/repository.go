// File: internal/profile/repository.go
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for profile data operations.
type Repository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*UserProfile, error)
	UpdateLocation(ctx context.Context, userID uuid.UUID, location string) (*UserProfile, error)
	GetCredentialsJSON(ctx context.Context, userID uuid.UUID) (*string, error)
	SetCredentialsJSON(ctx context.Context, userID uuid.UUID, blob *string) error
	FindAllWithCredentials(ctx context.Context) ([]UserProfile, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM profile repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// GetOrCreate returns the profile for a user, inserting an empty row on first
// access. The insert is an idempotent upsert so concurrent first requests
// cannot create duplicates.
func (r *gormRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*UserProfile, error) {
	var p UserProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load profile for user %s: %w", userID, err)
	}

	now := time.Now().UTC()
	p = UserProfile{UserID: userID, CreatedAt: now, UpdatedAt: now}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&p).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create profile for user %s: %w", userID, err)
	}

	// Re-read in case a concurrent request won the insert.
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to reload profile for user %s: %w", userID, err)
	}
	return &p, nil
}

func (r *gormRepository) UpdateLocation(ctx context.Context, userID uuid.UUID, location string) (*UserProfile, error) {
	p, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Location = &location
	p.UpdatedAt = time.Now().UTC()
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("failed to update location for user %s: %w", userID, err)
	}
	return p, nil
}

func (r *gormRepository) GetCredentialsJSON(ctx context.Context, userID uuid.UUID) (*string, error) {
	p, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.GoogleCredentialsJSON, nil
}

// SetCredentialsJSON writes (or clears, when blob is nil) the stored
// credential blob for a user.
func (r *gormRepository) SetCredentialsJSON(ctx context.Context, userID uuid.UUID, blob *string) error {
	p, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	p.GoogleCredentialsJSON = blob
	p.UpdatedAt = time.Now().UTC()
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("failed to store credentials for user %s: %w", userID, err)
	}
	return nil
}

// FindAllWithCredentials returns every profile holding a credential blob.
// Used by the credential sweep job.
func (r *gormRepository) FindAllWithCredentials(ctx context.Context) ([]UserProfile, error) {
	var profiles []UserProfile
	err := r.db.WithContext(ctx).
		Where("google_credentials_json IS NOT NULL AND google_credentials_json <> ''").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles with credentials: %w", err)
	}
	return profiles, nil
}
