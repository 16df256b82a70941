package verifycode

import (
	"context"

	"github.com/robfig/cron/v3"
)

// SweepSchedule runs the expiry sweep every five minutes.
const SweepSchedule = "*/5 * * * *"

// StartSweeper schedules Sweep on a cron. Stop the returned cron on shutdown.
func StartSweeper(s *Service, schedule string) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		n, err := s.Sweep(context.Background())
		if err != nil {
			s.log.Error("verification code sweep failed", "error", err)
			return
		}
		if n > 0 {
			s.log.Info("expired verification codes", "count", n)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	s.log.Info("verification code sweeper started", "schedule", schedule)
	return c, nil
}
