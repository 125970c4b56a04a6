package earnrule

import (
	"context"
	"fmt"

	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/internal/model"
	"github.com/fitstakes/backend/pkg/enum"
	"github.com/fitstakes/backend/pkg/errorx"
	"github.com/fitstakes/backend/pkg/xcontext"

	"github.com/pkg/math"
)

// Steps Rule
type stepsRule struct {
	steps int
}

func newStepsRule(ctx context.Context, activity model.Activity) (*stepsRule, error) {
	if activity.Steps <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Steps must be positive")
	}

	return &stepsRule{steps: int(activity.Steps)}, nil
}

// Points come from whole thousands of the running daily total, so split
// syncs are worth the same as one big sync.
func (r *stepsRule) Evaluate(ctx context.Context, day *entity.EarnAggregate) (Credit, error) {
	cfg := xcontext.Configs(ctx).Ledger

	counted := math.MinInt(r.steps, cfg.MaxDailySteps-day.StepsCounted)
	if counted <= 0 {
		return Credit{Note: "daily step allowance used up"}, nil
	}

	before := day.StepsCounted
	after := before + counted

	credit := Credit{
		Points:       int64(after/1000-before/1000) * PointsPerThousandSteps,
		CountedSteps: counted,
		Note:         fmt.Sprintf("%d steps", r.steps),
	}

	if !day.GoalBonusAwarded && before < cfg.DailyGoalSteps && after >= cfg.DailyGoalSteps {
		credit.GoalBonus = DailyGoalBonusPoints
	}

	return credit, nil
}

// ActiveMinutes Rule
type activeMinutesRule struct {
	minutes   int64
	intensity Intensity
}

func newActiveMinutesRule(ctx context.Context, activity model.Activity) (*activeMinutesRule, error) {
	if activity.DurationMinutes <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Duration must be positive")
	}

	intensity, err := enum.ToEnum[Intensity](activity.Intensity)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid intensity %s", activity.Intensity)
	}

	return &activeMinutesRule{minutes: activity.DurationMinutes, intensity: intensity}, nil
}

func (r *activeMinutesRule) Evaluate(ctx context.Context, day *entity.EarnAggregate) (Credit, error) {
	return Credit{
		Points: r.minutes * intensityPoints[r.intensity],
		Note:   fmt.Sprintf("%d %s minutes", r.minutes, r.intensity),
	}, nil
}

// Workout Rule
type workoutRule struct {
	minutes int64
}

func newWorkoutRule(ctx context.Context, activity model.Activity) (*workoutRule, error) {
	if activity.DurationMinutes <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Duration must be positive")
	}

	return &workoutRule{minutes: activity.DurationMinutes}, nil
}

func (r *workoutRule) Evaluate(ctx context.Context, day *entity.EarnAggregate) (Credit, error) {
	cfg := xcontext.Configs(ctx).Ledger

	if r.minutes < int64(cfg.MinWorkoutMinutes) {
		return Credit{Note: fmt.Sprintf("workout under %d minutes", cfg.MinWorkoutMinutes)}, nil
	}

	if day.WorkoutBonuses >= cfg.MaxDailyWorkoutBonuses {
		return Credit{Note: "daily workout bonus limit reached"}, nil
	}

	return Credit{
		WorkoutBonus: WorkoutBonusPoints,
		Note:         fmt.Sprintf("%d minute workout", r.minutes),
	}, nil
}
