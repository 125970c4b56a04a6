package main

import (
	"context"
	"net/http"

	"github.com/fitstakes/backend/config"
	"github.com/fitstakes/backend/internal/domain"
	"github.com/fitstakes/backend/internal/domain/statistic"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/migration"
	"github.com/fitstakes/backend/pkg/kafka"
	"github.com/fitstakes/backend/pkg/logger"
	"github.com/fitstakes/backend/pkg/pubsub"
	"github.com/fitstakes/backend/pkg/router"
	"github.com/fitstakes/backend/pkg/xcontext"
	"github.com/fitstakes/backend/pkg/xredis"

	"github.com/bwmarrin/snowflake"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type srv struct {
	ctx context.Context
	app *cli.App

	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
	aggregateRepo   repository.EarnAggregateRepository
	drawingRepo     repository.DrawingRepository
	ticketRepo      repository.TicketRepository
	auditRepo       repository.AuditRepository

	accountDomain     domain.AccountDomain
	ledgerDomain      domain.LedgerDomain
	leaderboardDomain domain.LeaderboardDomain
	ticketDomain      domain.TicketDomain
	drawingDomain     domain.DrawingDomain
	auditDomain       domain.AuditDomain

	redisClient xredis.Client
	leaderboard statistic.Leaderboard
	publisher   pubsub.Publisher
	subscriber  pubsub.Subscriber

	router *router.Router
	server *http.Server
}

// loadContext runs before every command. It builds the root context carrying
// the configs, the logger, and the snowflake node; the database is attached
// by each command because migrate must work before any service starts.
func (s *srv) loadContext(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.LevelOf(cfg.LogLevel)))

	node, err := snowflake.NewNode(cfg.SnowFlakeNode)
	if err != nil {
		return err
	}
	s.ctx = xcontext.WithSnowFlake(s.ctx, node)

	return nil
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx)

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.Database)
	default:
		dialector = mysql.Open(cfg.Database.ConnectionString())
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := migration.Migrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.accountRepo = repository.NewAccountRepository()
	s.transactionRepo = repository.NewTransactionRepository()
	s.aggregateRepo = repository.NewEarnAggregateRepository()
	s.drawingRepo = repository.NewDrawingRepository()
	s.ticketRepo = repository.NewTicketRepository()
	s.auditRepo = repository.NewAuditRepository()
}

func (s *srv) loadLeaderboard() {
	s.leaderboard = statistic.New(s.accountRepo, s.transactionRepo, s.redisClient)
}

func (s *srv) loadPublisher() {
	cfg := xcontext.Configs(s.ctx)
	s.publisher = kafka.NewPublisher(cfg.Kafka.ConsumerGroup, []string{cfg.Kafka.Addr})
}

func (s *srv) loadDomains() {
	s.accountDomain = domain.NewAccountDomain(s.accountRepo)
	s.ledgerDomain = domain.NewLedgerDomain(
		s.accountRepo, s.transactionRepo, s.aggregateRepo, s.auditRepo, s.leaderboard)
	s.leaderboardDomain = domain.NewLeaderboardDomain(s.accountRepo, s.leaderboard)
	s.ticketDomain = domain.NewTicketDomain(
		s.ticketRepo, s.drawingRepo, s.accountRepo, s.transactionRepo, s.auditRepo)
	s.drawingDomain = domain.NewDrawingDomain(
		s.drawingRepo, s.ticketRepo, s.auditRepo, s.publisher)
	s.auditDomain = domain.NewAuditDomain(s.auditRepo)
}
