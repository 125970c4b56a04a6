// Package earnrule turns synced activities into point credits. Every rate
// lives here; the ledger only applies the daily cap on top.
package earnrule

import (
	"context"

	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/internal/model"
	"github.com/fitstakes/backend/pkg/enum"
	"github.com/fitstakes/backend/pkg/errorx"
	"github.com/fitstakes/backend/pkg/xcontext"
)

type ActivityType string

var (
	Steps         = enum.New(ActivityType("steps"))
	ActiveMinutes = enum.New(ActivityType("active_minutes"))
	Workout       = enum.New(ActivityType("workout"))
)

type Intensity string

var (
	Light    = enum.New(Intensity("light"))
	Moderate = enum.New(Intensity("moderate"))
	Vigorous = enum.New(Intensity("vigorous"))
)

const (
	PointsPerThousandSteps = 10
	WorkoutBonusPoints     = 50
	DailyGoalBonusPoints   = 100
	StreakBonusPoints      = 250
)

var intensityPoints = map[Intensity]int64{
	Light:    1,
	Moderate: 2,
	Vigorous: 3,
}

// Credit is what one activity is worth before the daily cap. Bonuses are
// kept apart from the base points so the ledger can report them and bump
// the matching usage counters.
type Credit struct {
	Points       int64
	WorkoutBonus int64
	GoalBonus    int64

	// CountedSteps is how much of the daily step allowance this activity
	// consumed. Steps beyond the allowance earn nothing.
	CountedSteps int

	Note string
}

func (c Credit) Total() int64 {
	return c.Points + c.WorkoutBonus + c.GoalBonus
}

// Rule values an activity against what the account already used of its
// daily allowances. Evaluate never mutates the aggregate.
type Rule interface {
	Evaluate(ctx context.Context, day *entity.EarnAggregate) (Credit, error)
}

// Rule Factory
func New(ctx context.Context, activity model.Activity) (Rule, error) {
	activityType, err := enum.ToEnum[ActivityType](activity.Type)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid activity type %s", activity.Type)
	}

	switch activityType {
	case Steps:
		return newStepsRule(ctx, activity)

	case ActiveMinutes:
		return newActiveMinutesRule(ctx, activity)

	case Workout:
		return newWorkoutRule(ctx, activity)

	default:
		return nil, errorx.New(errorx.BadRequest, "Invalid activity type %s", activity.Type)
	}
}

// StreakBonus decides whether today completes an unbroken run of active
// days. The previous slice holds the aggregates of the days right before
// today; a missing day never reaches this function as an empty aggregate,
// so a short slice already means the run is broken. The week slice guards
// the once-per-ISO-week limit.
func StreakBonus(ctx context.Context, previous, week []entity.EarnAggregate) int64 {
	cfg := xcontext.Configs(ctx).Ledger

	if len(previous) < cfg.StreakLength-1 {
		return 0
	}

	for _, day := range previous {
		if day.Activities == 0 {
			return 0
		}
	}

	for _, day := range week {
		if day.StreakBonusAwarded {
			return 0
		}
	}

	return StreakBonusPoints
}
