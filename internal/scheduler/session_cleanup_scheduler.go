package scheduler

import (
	"time"

	"github.com/printtts/shiplabel-backend/config"
	"github.com/printtts/shiplabel-backend/internal/app/repository"
	"github.com/printtts/shiplabel-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// SessionCleanupScheduler purges shipment records left behind by anonymous
// sessions that have gone stale.
type SessionCleanupScheduler struct {
	cron         *cron.Cron
	shipmentRepo repository.ShipmentRepository
	staleAfter   time.Duration
}

func NewSessionCleanupScheduler(shipmentRepo repository.ShipmentRepository, cfg config.SessionConfig) *SessionCleanupScheduler {
	return &SessionCleanupScheduler{
		cron:         cron.New(),
		shipmentRepo: shipmentRepo,
		staleAfter:   cfg.StaleAfter,
	}
}

// Start schedules the purge to run every day at 04:00.
func (s *SessionCleanupScheduler) Start() error {
	_, err := s.cron.AddFunc("0 4 * * *", func() {
		cutoff := time.Now().Add(-s.staleAfter)
		logger.Info("Starting stale session cleanup", map[string]interface{}{
			"cutoff": cutoff.Format(time.RFC3339),
		})

		deleted, err := s.shipmentRepo.DeleteStaleSessionRecords(cutoff)
		if err != nil {
			logger.Error("Failed to purge stale session records", err)
			return
		}

		logger.Info("Stale session cleanup finished", map[string]interface{}{
			"deleted": deleted,
		})
	})

	if err != nil {
		logger.Error("Failed to add cron job for session cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Session cleanup scheduler started (daily at 4:00 AM)", nil)

	return nil
}

func (s *SessionCleanupScheduler) Stop() {
	logger.Info("Stopping session cleanup scheduler...", nil)
	s.cron.Stop()
	logger.Info("Session cleanup scheduler stopped", nil)
}
