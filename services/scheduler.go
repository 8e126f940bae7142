// services/scheduler.go
package services

import (
	"log"
	"time"

	"slapcircle-league-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartCleanupScheduler cancels games abandoned in setup. A game that never
// started within the TTL will not start; cancelling keeps it out of listings
// and frees its name for reuse.
func (s *GameService) StartCleanupScheduler(setupTTL time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every 10 minutes: cancel stale setups
	_, _ = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			var games []models.Game
			cutoff := time.Now().Add(-setupTTL)
			err := s.DB.Where("status = ? AND created_at <= ?", models.GameStatusSetup, cutoff).
				Find(&games).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, g := range games {
				g.Status = models.GameStatusCancelled
				if err := s.DB.Save(&g).Error; err != nil {
					log.Printf("[Scheduler] Failed to cancel stale game %s: %v", g.ID, err)
				} else {
					log.Printf("🧹 Cancelled stale game: %s", g.Name)
				}
			}
		}),
	)
}
