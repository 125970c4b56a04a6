package repository

import (
	"context"

	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/pkg/xcontext"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EarnAggregateRepository interface {
	Get(ctx context.Context, accountID, dayValue string) (*entity.EarnAggregate, error)
	GetList(ctx context.Context, accountID string, dayValues []string) ([]entity.EarnAggregate, error)
	Upsert(ctx context.Context, aggregate *entity.EarnAggregate) error
}

type earnAggregateRepository struct{}

func NewEarnAggregateRepository() *earnAggregateRepository {
	return &earnAggregateRepository{}
}

func (r *earnAggregateRepository) Get(
	ctx context.Context, accountID, dayValue string,
) (*entity.EarnAggregate, error) {
	var result entity.EarnAggregate
	err := xcontext.DB(ctx).
		Where("account_id=? AND day_value=?", accountID, dayValue).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *earnAggregateRepository) GetList(
	ctx context.Context, accountID string, dayValues []string,
) ([]entity.EarnAggregate, error) {
	var result []entity.EarnAggregate
	err := xcontext.DB(ctx).
		Where("account_id=? AND day_value IN (?)", accountID, dayValues).
		Order("day_value ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Upsert adds the given deltas onto the day row, creating it when absent.
// Counters accumulate, the awarded flags stick once set.
func (r *earnAggregateRepository) Upsert(
	ctx context.Context, aggregate *entity.EarnAggregate,
) error {
	return xcontext.DB(ctx).Model(&entity.EarnAggregate{}).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "account_id"},
				{Name: "day_value"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"points":               gorm.Expr("points + ?", aggregate.Points),
				"steps_counted":        gorm.Expr("steps_counted + ?", aggregate.StepsCounted),
				"workout_bonuses":      gorm.Expr("workout_bonuses + ?", aggregate.WorkoutBonuses),
				"activities":           gorm.Expr("activities + ?", aggregate.Activities),
				"goal_bonus_awarded":   gorm.Expr("goal_bonus_awarded OR ?", aggregate.GoalBonusAwarded),
				"streak_bonus_awarded": gorm.Expr("streak_bonus_awarded OR ?", aggregate.StreakBonusAwarded),
			}),
		}).
		Create(aggregate).Error
}
