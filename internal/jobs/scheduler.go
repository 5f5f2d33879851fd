package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"libris/api/internal/service"
)

// Scheduler runs housekeeping jobs. Session expiry is enforced lazily at
// lookup time; the nightly purge only keeps the table from growing with rows
// nobody will ever touch again.
type Scheduler struct {
	cron     *cron.Cron
	sessions *service.SessionService
	log      zerolog.Logger
}

func NewScheduler(sessions *service.SessionService, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		sessions: sessions,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 3 * * *", s.purgeExpiredSessions); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for running jobs, bounded so shutdown cannot hang on a job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) purgeExpiredSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("purge expired sessions failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int64("removed", removed).Msg("expired sessions purged")
	}
}
