package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ResetTokenSweeper is implemented by the user repository.
type ResetTokenSweeper interface {
	ClearExpiredResetTokens(ctx context.Context) (int64, error)
}

// Scheduler runs periodic maintenance. The only job today nulls out reset
// tokens whose expiry has passed; expired tokens are already unusable, the
// sweep just keeps the columns clean.
type Scheduler struct {
	cron  *cron.Cron
	users ResetTokenSweeper
	log   zerolog.Logger
}

func NewScheduler(users ResetTokenSweeper, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithSeconds()),
		users: users,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 3 * * *", s.sweepResetTokens); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish, bounded by a short timeout.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) sweepResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cleared, err := s.users.ClearExpiredResetTokens(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("reset token sweep failed")
		return
	}
	if cleared > 0 {
		s.log.Info().Int64("cleared", cleared).Msg("expired reset tokens swept")
	}
}
