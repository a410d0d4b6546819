// File: internal/jobs/credential_sweep.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"smart_advisor_backend/internal/config"
	"smart_advisor_backend/internal/credentials"
	"smart_advisor_backend/internal/notification"
	"smart_advisor_backend/internal/profile"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CredentialSweepJob periodically walks stored credential blobs and clears
// the ones that can never be used again: malformed blobs and expired records
// without a refresh token. Records with a refresh token are left alone; the
// dashboard refreshes those on demand.
type CredentialSweepJob struct {
	profileRepo   profile.Repository
	notifier      notification.Service
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewCredentialSweepJob creates a new CredentialSweepJob.
func NewCredentialSweepJob(
	profileRepo profile.Repository,
	notifier notification.Service,
	logger *zap.Logger,
	cfg *config.Config,
) *CredentialSweepJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &CredentialSweepJob{
		profileRepo:   profileRepo,
		notifier:      notifier,
		logger:        logger.Named("CredentialSweepJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *CredentialSweepJob) SetupAndStart() error {
	jobSpec := j.cfg.CredentialSweepJobSchedule
	if jobSpec == "" {
		j.logger.Warn("Credential sweep job schedule not defined (CREDENTIAL_SWEEP_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule credential sweep job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Credential sweep job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

// runJob is the actual work performed by the cron job.
func (j *CredentialSweepJob) runJob() {
	j.logger.Info("Starting credential sweep job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	swept, err := j.Sweep(ctx)
	if err != nil {
		j.logger.Error("Credential sweep job run failed", zap.Error(err))
	} else {
		j.logger.Info("Credential sweep job run completed", zap.Int("records_cleared", swept))
	}
}

// Sweep clears every stored credential blob that is beyond recovery and
// returns how many were cleared.
func (j *CredentialSweepJob) Sweep(ctx context.Context) (int, error) {
	profiles, err := j.profileRepo.FindAllWithCredentials(ctx)
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range profiles {
		p := &profiles[i]
		if p.GoogleCredentialsJSON == nil {
			continue
		}

		rec, parseErr := credentials.FromPersisted(*p.GoogleCredentialsJSON)
		unusable := parseErr != nil || (rec.Expired() && !rec.Refreshable())
		if !unusable {
			continue
		}

		if parseErr != nil {
			j.logger.Warn("Clearing malformed credential blob",
				zap.String("userID", p.UserID.String()), zap.Error(parseErr))
		} else {
			j.logger.Info("Clearing expired credential record without refresh token",
				zap.String("userID", p.UserID.String()))
		}

		if err := j.profileRepo.SetCredentialsJSON(ctx, p.UserID, nil); err != nil {
			j.logger.Error("Failed to clear credential blob during sweep",
				zap.Error(err), zap.String("userID", p.UserID.String()))
			continue
		}
		if parseErr == nil {
			j.notifier.Notify(ctx, p.UserID, notification.GoogleReauthRequired,
				"Your Google Calendar session has expired. Please reconnect your calendar.")
		}
		swept++
	}
	return swept, nil
}

// Stop gracefully stops the cron scheduler.
func (j *CredentialSweepJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping credential sweep job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Credential sweep job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Credential sweep job scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to the cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Info(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
