package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultPurgeSchedule runs the session purge at the top of every hour.
const DefaultPurgeSchedule = "0 0 * * * *"

// SessionPurger removes expired login sessions. *auth.IdentityService satisfies it.
type SessionPurger interface {
	PurgeExpiredSessions() error
}

// Scheduler runs the identity server's periodic maintenance.
type Scheduler struct {
	cron     *cron.Cron
	purger   SessionPurger
	schedule string
	log      zerolog.Logger
}

func NewScheduler(purger SessionPurger, schedule string, log zerolog.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultPurgeSchedule
	}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		purger:   purger,
		schedule: schedule,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.PurgeSessions); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop waits for a running job to finish or for ctx to end, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PurgeSessions is the scheduled job. It is exported so it can be run on demand.
func (s *Scheduler) PurgeSessions() {
	start := time.Now()
	if err := s.purger.PurgeExpiredSessions(); err != nil {
		s.log.Error().Err(err).Msg("purge expired sessions failed")
		return
	}
	s.log.Debug().Dur("duration", time.Since(start)).Msg("purged expired sessions")
}
