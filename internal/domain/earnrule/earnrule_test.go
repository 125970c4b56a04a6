package earnrule

import (
	"testing"

	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/internal/model"
	"github.com/fitstakes/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_New_rejectsInvalidActivities(t *testing.T) {
	ctx := testutil.MockContext()

	_, err := New(ctx, model.Activity{Type: "sleep", Steps: 100})
	require.Error(t, err)

	_, err = New(ctx, model.Activity{Type: "steps", Steps: 0})
	require.Error(t, err)

	_, err = New(ctx, model.Activity{Type: "active_minutes", DurationMinutes: 30, Intensity: "extreme"})
	require.Error(t, err)

	_, err = New(ctx, model.Activity{Type: "workout", DurationMinutes: 0})
	require.Error(t, err)
}

func Test_stepsRule_Evaluate(t *testing.T) {
	ctx := testutil.MockContext()

	tests := []struct {
		name         string
		day          entity.EarnAggregate
		steps        int64
		wantPoints   int64
		wantGoal     int64
		wantCounted  int
	}{
		{
			name:        "first sync of the day",
			steps:       5000,
			wantPoints:  50,
			wantCounted: 5000,
		},
		{
			name:        "partial thousands floor",
			steps:       2500,
			wantPoints:  20,
			wantCounted: 2500,
		},
		{
			name:        "carry across syncs",
			day:         entity.EarnAggregate{StepsCounted: 2500},
			steps:       600,
			wantPoints:  10,
			wantCounted: 600,
		},
		{
			name:        "clipped by the daily allowance",
			day:         entity.EarnAggregate{StepsCounted: 19500},
			steps:       2000,
			wantPoints:  10,
			wantCounted: 500,
		},
		{
			name:  "allowance used up",
			day:   entity.EarnAggregate{StepsCounted: 20000},
			steps: 3000,
		},
		{
			name:        "crossing the daily goal",
			day:         entity.EarnAggregate{StepsCounted: 9500},
			steps:       600,
			wantPoints:  10,
			wantGoal:    DailyGoalBonusPoints,
			wantCounted: 600,
		},
		{
			name:        "goal bonus only once",
			day:         entity.EarnAggregate{StepsCounted: 10500, GoalBonusAwarded: true},
			steps:       1000,
			wantPoints:  10,
			wantCounted: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := New(ctx, model.Activity{Type: "steps", Steps: tt.steps})
			require.NoError(t, err)

			credit, err := rule.Evaluate(ctx, &tt.day)
			require.NoError(t, err)
			require.Equal(t, tt.wantPoints, credit.Points)
			require.Equal(t, tt.wantGoal, credit.GoalBonus)
			require.Equal(t, tt.wantCounted, credit.CountedSteps)
			require.Zero(t, credit.WorkoutBonus)
		})
	}
}

func Test_activeMinutesRule_Evaluate(t *testing.T) {
	ctx := testutil.MockContext()

	tests := []struct {
		intensity string
		minutes   int64
		want      int64
	}{
		{intensity: "light", minutes: 45, want: 45},
		{intensity: "moderate", minutes: 30, want: 60},
		{intensity: "vigorous", minutes: 10, want: 30},
	}

	for _, tt := range tests {
		t.Run(tt.intensity, func(t *testing.T) {
			rule, err := New(ctx, model.Activity{
				Type:            "active_minutes",
				DurationMinutes: tt.minutes,
				Intensity:       tt.intensity,
			})
			require.NoError(t, err)

			credit, err := rule.Evaluate(ctx, &entity.EarnAggregate{})
			require.NoError(t, err)
			require.Equal(t, tt.want, credit.Points)
			require.Equal(t, tt.want, credit.Total())
		})
	}
}

func Test_workoutRule_Evaluate(t *testing.T) {
	ctx := testutil.MockContext()

	rule, err := New(ctx, model.Activity{Type: "workout", DurationMinutes: 25})
	require.NoError(t, err)

	credit, err := rule.Evaluate(ctx, &entity.EarnAggregate{})
	require.NoError(t, err)
	require.Equal(t, int64(WorkoutBonusPoints), credit.WorkoutBonus)

	// Too short for the bonus.
	short, err := New(ctx, model.Activity{Type: "workout", DurationMinutes: 15})
	require.NoError(t, err)

	credit, err = short.Evaluate(ctx, &entity.EarnAggregate{})
	require.NoError(t, err)
	require.Zero(t, credit.Total())

	// Daily limit reached.
	credit, err = rule.Evaluate(ctx, &entity.EarnAggregate{WorkoutBonuses: 3})
	require.NoError(t, err)
	require.Zero(t, credit.Total())
}

func Test_StreakBonus(t *testing.T) {
	ctx := testutil.MockContext()

	active := func(n int) []entity.EarnAggregate {
		days := make([]entity.EarnAggregate, n)
		for i := range days {
			days[i].Activities = 1
		}
		return days
	}

	require.Equal(t, int64(StreakBonusPoints), StreakBonus(ctx, active(6), nil))

	// A break in the run.
	broken := active(6)
	broken[3].Activities = 0
	require.Zero(t, StreakBonus(ctx, broken, nil))

	// Not enough history.
	require.Zero(t, StreakBonus(ctx, active(5), nil))

	// Already awarded this week.
	week := []entity.EarnAggregate{{StreakBonusAwarded: true}}
	require.Zero(t, StreakBonus(ctx, active(6), week))
}
