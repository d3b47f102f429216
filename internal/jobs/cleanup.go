package jobs

import (
	"time"

	"clinic-management-server/internal/models"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// TokenCleaner periodically removes refresh tokens that can never be
// used again: expired ones and revoked ones. Keeps the table from
// growing without bound under token rotation.
type TokenCleaner struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// NewTokenCleaner creates a new token cleanup service.
func NewTokenCleaner(db *gorm.DB, logger zerolog.Logger) *TokenCleaner {
	return &TokenCleaner{DB: db, Logger: logger}
}

// Start launches the cleanup job on its own scheduler and returns it so
// the caller can stop it on shutdown.
func (tc *TokenCleaner) Start(intervalMinutes int) *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.UTC)

	scheduler.Every(intervalMinutes).Minutes().Do(func() {
		if err := tc.PurgeStaleTokens(); err != nil {
			tc.Logger.Error().Err(err).Msg("refresh token purge failed")
		}
	})

	scheduler.StartAsync()
	tc.Logger.Info().Int("interval_minutes", intervalMinutes).Msg("refresh token purge job started")

	return scheduler
}

// PurgeStaleTokens deletes expired and revoked refresh tokens.
func (tc *TokenCleaner) PurgeStaleTokens() error {
	result := tc.DB.Where("expires_at < ? OR is_revoked = ?", time.Now(), true).
		Delete(&models.RefreshToken{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		tc.Logger.Info().Int64("purged", result.RowsAffected).Msg("stale refresh tokens removed")
	}
	return nil
}
