package main

import (
	"net/http"

	"github.com/fitstakes/backend/internal/middleware"
	"github.com/fitstakes/backend/pkg/prometheus"
	"github.com/fitstakes/backend/pkg/router"
	"github.com/fitstakes/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	cfg := xcontext.Configs(s.ctx)
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()
	s.loadLeaderboard()
	s.loadPublisher()
	s.loadDomains()
	s.loadRouter()

	go func() {
		promSrv := &http.Server{
			Addr:    cfg.PrometheusServer.Address(),
			Handler: prometheus.NewHandler(),
		}

		xcontext.Logger(s.ctx).Infof("Starting prometheus on port: %s", cfg.PrometheusServer.Port)
		if err := promSrv.ListenAndServe(); err != nil {
			panic(err)
		}
	}()

	s.server = &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: s.router.Handler(),
	}

	xcontext.Logger(s.ctx).Infof("Starting api on port: %s", cfg.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}
	xcontext.Logger(s.ctx).Infof("Server api stop")

	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(
		xcontext.DB(s.ctx),
		xcontext.Configs(s.ctx),
		xcontext.Logger(s.ctx),
		xcontext.SnowFlake(s.ctx),
	)
	s.router.Before(middleware.WithStartTime())
	s.router.Before(middleware.Actor())
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())

	s.router.AddHandler("/healthz", healthz())

	// Account API
	router.POST(s.router, "/createAccount", s.accountDomain.Create)
	router.GET(s.router, "/getAccount", s.accountDomain.Get)
	router.POST(s.router, "/updateAccountProfile", s.accountDomain.UpdateProfile)
	router.POST(s.router, "/disableAccount", s.accountDomain.Disable)
	router.POST(s.router, "/enableAccount", s.accountDomain.Enable)

	// Tier API
	router.GET(s.router, "/getTiers", s.accountDomain.GetTiers)
	router.GET(s.router, "/classifyTier", s.accountDomain.ClassifyTier)

	// Ledger API
	router.POST(s.router, "/earnPoints", s.ledgerDomain.Earn)
	router.POST(s.router, "/spendPoints", s.ledgerDomain.Spend)
	router.POST(s.router, "/adjustPoints", s.ledgerDomain.Adjust)
	router.GET(s.router, "/getBalance", s.ledgerDomain.GetBalance)
	router.GET(s.router, "/getListTransaction", s.ledgerDomain.GetTransactions)
	router.GET(s.router, "/reconcileBalance", s.ledgerDomain.Reconcile)

	// Leaderboard API
	router.GET(s.router, "/getLeaderboard", s.leaderboardDomain.GetLeaderboard)
	router.GET(s.router, "/getPreviousLeaderboard", s.leaderboardDomain.GetPreviousLeaderboard)
	router.GET(s.router, "/getRank", s.leaderboardDomain.GetRank)

	// Drawing API
	router.POST(s.router, "/createDrawing", s.drawingDomain.Create)
	router.POST(s.router, "/updateDrawing", s.drawingDomain.Update)
	router.POST(s.router, "/scheduleDrawing", s.drawingDomain.Schedule)
	router.POST(s.router, "/cancelDrawing", s.drawingDomain.Cancel)
	router.POST(s.router, "/executeDrawing", s.drawingDomain.Execute)
	router.GET(s.router, "/getDrawing", s.drawingDomain.Get)
	router.GET(s.router, "/getListDrawing", s.drawingDomain.GetList)
	router.GET(s.router, "/getWinners", s.drawingDomain.GetWinners)
	router.GET(s.router, "/verifyDrawing", s.drawingDomain.Verify)

	// Ticket API
	router.POST(s.router, "/buyTickets", s.ticketDomain.Buy)
	router.GET(s.router, "/getMyTickets", s.ticketDomain.GetMyTickets)
	router.GET(s.router, "/getDrawingTickets", s.ticketDomain.GetDrawingTickets)

	// Audit API
	router.GET(s.router, "/getAccountAuditTrail", s.auditDomain.GetAccountTrail)
	router.GET(s.router, "/getDrawingAuditTrail", s.auditDomain.GetDrawingTrail)
}

func healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}
