package testutil

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fitstakes/backend/config"
	"github.com/fitstakes/backend/migration"
	"github.com/fitstakes/backend/pkg/logger"
	"github.com/fitstakes/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	// Every sqlite :memory: connection is its own database. Pin the pool to
	// one connection so concurrent test goroutines share the schema.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := config.Configs{
		Env: "testing",
		ApiServer: config.ServerConfigs{
			DefaultLimit: 20,
			MaxLimit:     50,
		},
		Database: config.DatabaseConfigs{
			Driver: "sqlite",
		},
		Ledger: config.LedgerConfigs{
			DailyEarnCap:           1000,
			MaxDailySteps:          20000,
			DailyGoalSteps:         10000,
			MaxDailyWorkoutBonuses: 3,
			MinWorkoutMinutes:      20,
			StreakLength:           7,
			MaxBalanceRetries:      5,
		},
		Leaderboard: config.LeaderboardConfigs{
			Timezone:        "UTC",
			RefreshInterval: config.Duration{Duration: 10 * time.Minute},
			StalenessBound:  config.Duration{Duration: 15 * time.Minute},
			BoardSize:       10,
		},
		Kafka: config.KafkaConfigs{
			ActivityTopic:    "activity",
			FulfillmentTopic: "fulfillment",
		},
		Ticket: config.TicketConfigs{
			MaxPerPurchase: 100,
		},
		Drawing: config.DrawingConfigs{
			AdvanceInterval: config.Duration{Duration: time.Minute},
		},
	}

	node, err := snowflake.NewNode(0)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.ERROR))
	ctx = xcontext.WithSnowFlake(ctx, node)
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithAccountID(accountID string) context.Context {
	return xcontext.WithRequestAccountID(MockContext(), accountID)
}
