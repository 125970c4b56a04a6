package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fitstakes/backend/internal/common"
	"github.com/fitstakes/backend/internal/model"
	"github.com/fitstakes/backend/pkg/kafka"
	"github.com/fitstakes/backend/pkg/pubsub"
	"github.com/fitstakes/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startIngest(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	cfg := xcontext.Configs(s.ctx)
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()
	s.loadLeaderboard()
	s.loadPublisher()
	s.loadDomains()

	s.subscriber = kafka.NewSubscriber(
		cfg.Kafka.ConsumerGroup,
		[]string{cfg.Kafka.Addr},
		[]string{cfg.Kafka.ActivityTopic},
		s.handleActivity,
	)

	xcontext.Logger(s.ctx).Infof("Starting the activity subscriber on topic: %s", cfg.Kafka.ActivityTopic)
	s.subscriber.Subscribe(s.ctx)

	// The consume loop runs in the subscriber's goroutine; hold the process
	// open for it.
	select {}
}

// handleActivity credits one normalized activity event. Delivery is
// at-least-once; Earn dedupes by the event's external id, so a redelivered
// event lands as a duplicate, not a double credit.
func (s *srv) handleActivity(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	counter := common.PromCounters[common.ActivityEventTotal]

	var activity model.Activity
	if err := json.Unmarshal(pack.Msg, &activity); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode an activity event: %v", err)
		counter.WithLabelValues("invalid").Inc()
		return
	}

	resp, err := s.ledgerDomain.Earn(ctx, &model.EarnPointsRequest{
		AccountID:       activity.AccountID,
		Type:            activity.Type,
		Steps:           activity.Steps,
		DurationMinutes: activity.DurationMinutes,
		Intensity:       activity.Intensity,
		OccurredAt:      activity.OccurredAt,
		ExternalID:      activity.ExternalID,
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Rejected an activity of %s: %v", activity.AccountID, err)
		counter.WithLabelValues("rejected").Inc()
		return
	}

	if resp.Duplicate {
		counter.WithLabelValues("duplicate").Inc()
		return
	}

	counter.WithLabelValues("credited").Inc()
}
