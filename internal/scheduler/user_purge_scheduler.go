package scheduler

import (
	"time"

	"github.com/oboteam/guarantor-backend/internal/app/repository"
	"github.com/oboteam/guarantor-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Soft-deleted users are kept for this long before permanent removal
const purgeRetention = 30 * 24 * time.Hour

// UserPurgeScheduler permanently removes long-soft-deleted user records
type UserPurgeScheduler struct {
	cron     *cron.Cron
	userRepo repository.UserRepository
}

func NewUserPurgeScheduler(userRepo repository.UserRepository) *UserPurgeScheduler {
	return &UserPurgeScheduler{
		cron:     cron.New(),
		userRepo: userRepo,
	}
}

// Start schedules the nightly purge (03:00)
func (s *UserPurgeScheduler) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		cutoff := time.Now().Add(-purgeRetention)
		count, err := s.userRepo.PurgeDeletedBefore(cutoff)
		if err != nil {
			logger.Error("Failed to purge deleted users", err)
			return
		}
		logger.Info("Purged deleted users", map[string]interface{}{
			"count":  count,
			"cutoff": cutoff,
		})
	})
	if err != nil {
		logger.Error("Failed to add cron job for user purge", err)
		return err
	}

	s.cron.Start()
	logger.Info("User purge scheduler started (daily at 3:00 AM)")

	return nil
}

// Stop stops the scheduler
func (s *UserPurgeScheduler) Stop() {
	s.cron.Stop()
	logger.Info("User purge scheduler stopped")
}
