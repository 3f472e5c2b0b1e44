package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"inkwell/api/internal/repository"
	"inkwell/api/internal/service"
)

// Scheduler runs the background maintenance this core needs: folding redis
// view counters into postgres and clearing expired reset tokens. Refresh
// tokens are deliberately not touched here; they are pruned inside the
// rotation path.
type Scheduler struct {
	cron     *cron.Cron
	users    repository.UserStore
	articles *service.ArticleService
	log      zerolog.Logger
}

func NewScheduler(users repository.UserStore, articles *service.ArticleService, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		users:    users,
		articles: articles,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 */5 * * * *", s.flushViews); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 3 * * *", s.clearExpiredResetTokens); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits up to five seconds for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) flushViews() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.articles.FlushViews(ctx); err != nil {
		s.log.Error().Err(err).Msg("view count flush failed")
	}
}

func (s *Scheduler) clearExpiredResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cleared, err := s.users.ClearExpiredResetTokens(ctx, time.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("reset token cleanup failed")
		return
	}
	if cleared > 0 {
		s.log.Info().Int64("cleared", cleared).Msg("expired reset tokens cleared")
	}
}
