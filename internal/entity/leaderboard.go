package entity

import (
	"time"

	"github.com/fitstakes/backend/pkg/dateutil"
)

// LeaderboardPeriodType is one competition window. Period() is the stable
// value used in cache keys and transaction day math, Start and End bound
// the transactions that count.
type LeaderboardPeriodType interface {
	Period() string
	Start() time.Time
	End() time.Time
}

type LeaderboardPeriodDay struct {
	current time.Time
}

func NewLeaderboardPeriodDay(current time.Time) LeaderboardPeriodDay {
	return LeaderboardPeriodDay{current: current}
}

func (p LeaderboardPeriodDay) Period() string {
	return dateutil.DayValue(p.current)
}

func (p LeaderboardPeriodDay) Start() time.Time {
	return dateutil.BeginningOfDay(p.current)
}

func (p LeaderboardPeriodDay) End() time.Time {
	return p.Start().AddDate(0, 0, 1)
}

type LeaderboardPeriodWeek struct {
	current time.Time
}

func NewLeaderboardPeriodWeek(current time.Time) LeaderboardPeriodWeek {
	return LeaderboardPeriodWeek{current: current}
}

func (p LeaderboardPeriodWeek) Period() string {
	return dateutil.WeekValue(p.current)
}

func (p LeaderboardPeriodWeek) Start() time.Time {
	return dateutil.BeginningOfWeek(p.current)
}

func (p LeaderboardPeriodWeek) End() time.Time {
	return p.Start().AddDate(0, 0, 7)
}

type LeaderboardPeriodMonth struct {
	current time.Time
}

func NewLeaderboardPeriodMonth(current time.Time) LeaderboardPeriodMonth {
	return LeaderboardPeriodMonth{current: current}
}

func (p LeaderboardPeriodMonth) Period() string {
	return dateutil.MonthValue(p.current)
}

func (p LeaderboardPeriodMonth) Start() time.Time {
	return dateutil.BeginningOfMonth(p.current)
}

func (p LeaderboardPeriodMonth) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// LeaderboardPeriodAllTime is the unbounded window. Zero Start and End
// select every transaction.
type LeaderboardPeriodAllTime struct{}

func NewLeaderboardPeriodAllTime() LeaderboardPeriodAllTime {
	return LeaderboardPeriodAllTime{}
}

func (LeaderboardPeriodAllTime) Period() string {
	return "alltime"
}

func (LeaderboardPeriodAllTime) Start() time.Time {
	return time.Time{}
}

func (LeaderboardPeriodAllTime) End() time.Time {
	return time.Time{}
}
