package entity

import "time"

// EarnAggregate tracks one account's earning usage for one calendar day in
// the reference timezone. It backs the daily cap, the per-day bonus limits,
// and the active-day streak.
type EarnAggregate struct {
	AccountID string  `gorm:"primaryKey"`
	Account   Account `gorm:"foreignKey:AccountID"`
	DayValue  string  `gorm:"primaryKey"`

	// Points is what actually got credited that day, after truncation.
	Points int64

	// StepsCounted is how much of the daily step allowance is used up.
	StepsCounted   int
	WorkoutBonuses int

	// Activities counts processed activities; a day with Activities > 0 is
	// an active day for streak purposes.
	Activities int

	GoalBonusAwarded   bool
	StreakBonusAwarded bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
