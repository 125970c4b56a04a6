package main

import (
	"github.com/fitstakes/backend/internal/domain/cron"
	"github.com/fitstakes/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	cfg := xcontext.Configs(s.ctx)
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()
	s.loadLeaderboard()
	s.loadPublisher()
	s.loadDomains()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewAdvanceDrawingsCronJob(
		s.drawingRepo, s.drawingDomain, s.ticketDomain, cfg.Drawing.AdvanceInterval.Duration))
	cronJobManager.Register(cron.NewRefreshLeaderboardCronJob(
		s.leaderboard, cfg.Leaderboard.RefreshInterval.Duration))

	cronJobManager.Start(s.ctx)

	return nil
}
