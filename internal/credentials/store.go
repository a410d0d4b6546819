// File: internal/credentials/store.go
package credentials

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BlobRepository is the persistence surface the store writes through. The
// profile repository satisfies it; the store itself knows nothing about GORM.
type BlobRepository interface {
	GetCredentialsJSON(ctx context.Context, userID uuid.UUID) (*string, error)
	SetCredentialsJSON(ctx context.Context, userID uuid.UUID, blob *string) error
}

// Store persists credential records per user identity.
type Store struct {
	repo   BlobRepository
	logger *zap.Logger
}

// NewStore creates a new credential store.
func NewStore(repo BlobRepository, logger *zap.Logger) *Store {
	return &Store{
		repo:   repo,
		logger: logger.Named("CredentialStore"),
	}
}

// Save serializes and persists the record. When serialization fails nothing
// is stored (the blob is cleared so a later Load sees absence rather than a
// stale record) and the failure is reported to the caller.
func (s *Store) Save(ctx context.Context, userID uuid.UUID, rec *Record) error {
	blob, err := rec.ToPersisted()
	if err != nil {
		s.logger.Error("Refusing to store unserializable credential record",
			zap.Error(err), zap.String("userID", userID.String()))
		if clearErr := s.repo.SetCredentialsJSON(ctx, userID, nil); clearErr != nil {
			s.logger.Error("Failed to clear credential blob after serialization failure",
				zap.Error(clearErr), zap.String("userID", userID.String()))
		}
		return err
	}
	if err := s.repo.SetCredentialsJSON(ctx, userID, &blob); err != nil {
		s.logger.Error("Failed to persist credential record",
			zap.Error(err), zap.String("userID", userID.String()))
		return err
	}
	s.logger.Debug("Credential record stored", zap.String("userID", userID.String()))
	return nil
}

// Load returns the stored record, or nil when no usable record exists.
// Absent, malformed, and structurally invalid blobs all read as absence;
// they are logged with field names only, never token values.
func (s *Store) Load(ctx context.Context, userID uuid.UUID) (*Record, error) {
	blob, err := s.repo.GetCredentialsJSON(ctx, userID)
	if err != nil {
		return nil, err
	}
	if blob == nil || *blob == "" {
		s.logger.Debug("No credential blob stored", zap.String("userID", userID.String()))
		return nil, nil
	}

	rec, parseErr := FromPersisted(*blob)
	if parseErr != nil {
		s.logger.Error("Stored credential blob is malformed, treating as absent",
			zap.Error(parseErr), zap.String("userID", userID.String()))
		return nil, nil
	}

	s.logger.Debug("Credential record loaded",
		zap.String("userID", userID.String()),
		zap.Strings("fields", rec.FieldNames()))
	return rec, nil
}

// HasBlob reports whether any blob is stored at all, usable or not. Revoke
// needs this to tell "malformed leftover to clean up" from "nothing stored".
func (s *Store) HasBlob(ctx context.Context, userID uuid.UUID) bool {
	blob, err := s.repo.GetCredentialsJSON(ctx, userID)
	if err != nil {
		return false
	}
	return blob != nil && *blob != ""
}

// Clear removes the stored record for a user.
func (s *Store) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.SetCredentialsJSON(ctx, userID, nil); err != nil {
		s.logger.Error("Failed to clear credential record",
			zap.Error(err), zap.String("userID", userID.String()))
		return err
	}
	s.logger.Info("Credential record cleared", zap.String("userID", userID.String()))
	return nil
}

// HasValidCredentials reports whether the user currently holds a valid
// record. Recomputed per call; validity hangs off the clock so caching it
// would serve stale answers.
func (s *Store) HasValidCredentials(ctx context.Context, userID uuid.UUID) bool {
	rec, err := s.Load(ctx, userID)
	if err != nil {
		return false
	}
	return rec.Valid()
}
