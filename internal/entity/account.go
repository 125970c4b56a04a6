package entity

import (
	"database/sql"
	"time"

	"github.com/fitstakes/backend/pkg/enum"
)

type Sex string

var (
	SexMale   = enum.New(Sex("male"))
	SexFemale = enum.New(Sex("female"))
)

type FitnessLevel string

var (
	FitnessBeginner     = enum.New(FitnessLevel("beginner"))
	FitnessIntermediate = enum.New(FitnessLevel("intermediate"))
	FitnessAdvanced     = enum.New(FitnessLevel("advanced"))
)

// Account mirrors a member registered upstream. The tier code is never
// stored; it is derived from Sex, BirthDate, and FitnessLevel on every read.
type Account struct {
	Base

	DisplayName  string
	Sex          Sex
	BirthDate    time.Time
	FitnessLevel FitnessLevel

	// Balance only changes through the conditional update guarded by
	// Version. Every successful write bumps Version by one.
	Balance uint64
	Version int64

	// Disabled accounts keep their history; rows are never deleted.
	DisabledAt sql.NullTime
}
