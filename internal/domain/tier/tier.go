package tier

import (
	"fmt"
	"time"

	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/pkg/errorx"
	"golang.org/x/exp/slices"
)

// Open is the cross-demographic tier every eligible account competes in
// alongside its own tier.
const Open = "OPEN"

// MinAge is the eligibility floor. Profiles younger than this are rejected
// outright, they never classify into any tier.
const MinAge = 18

// An ageBand with max of zero is open ended.
type ageBand struct {
	code string
	min  int
	max  int
}

var ageBands = []ageBand{
	{code: "18-29", min: 18, max: 29},
	{code: "30-39", min: 30, max: 39},
	{code: "40-49", min: 40, max: 49},
	{code: "50-59", min: 50, max: 59},
	{code: "60+", min: 60},
}

var sexCodes = map[entity.Sex]string{
	entity.SexMale:   "M",
	entity.SexFemale: "F",
}

var fitnessCodes = map[entity.FitnessLevel]string{
	entity.FitnessBeginner:     "BEG",
	entity.FitnessIntermediate: "INT",
	entity.FitnessAdvanced:     "ADV",
}

// AgeAt returns full years lived at the given time.
func AgeAt(birthDate, at time.Time) int {
	age := at.Year() - birthDate.Year()
	if birthDate.AddDate(age, 0, 0).After(at) {
		age--
	}

	return age
}

// Classify derives the demographic tier code for a profile at the given
// time. Codes are never stored; a profile or birthday change simply makes
// the next classification answer differently.
func Classify(
	sex entity.Sex, birthDate time.Time, level entity.FitnessLevel, at time.Time,
) (string, error) {
	sexCode, ok := sexCodes[sex]
	if !ok {
		return "", errorx.New(errorx.BadRequest, "Invalid sex %s", sex)
	}

	fitnessCode, ok := fitnessCodes[level]
	if !ok {
		return "", errorx.New(errorx.BadRequest, "Invalid fitness level %s", level)
	}

	age := AgeAt(birthDate, at)
	if age < MinAge {
		return "", errorx.New(errorx.BadRequest, "Members under %d are not eligible", MinAge)
	}

	for _, band := range ageBands {
		if age >= band.min && (band.max == 0 || age <= band.max) {
			return fmt.Sprintf("%s-%s-%s", sexCode, band.code, fitnessCode), nil
		}
	}

	return "", errorx.New(errorx.Internal, "No age band for age %d", age)
}

// TiersOf returns every tier the profile competes in, the demographic one
// first, then OPEN.
func TiersOf(
	sex entity.Sex, birthDate time.Time, level entity.FitnessLevel, at time.Time,
) ([]string, error) {
	code, err := Classify(sex, birthDate, level, at)
	if err != nil {
		return nil, err
	}

	return []string{code, Open}, nil
}

// All returns every tier code in a fixed order, ending with OPEN.
func All() []string {
	all := []string{}
	for _, sex := range []entity.Sex{entity.SexMale, entity.SexFemale} {
		for _, band := range ageBands {
			for _, level := range []entity.FitnessLevel{
				entity.FitnessBeginner, entity.FitnessIntermediate, entity.FitnessAdvanced,
			} {
				all = append(all, fmt.Sprintf("%s-%s-%s", sexCodes[sex], band.code, fitnessCodes[level]))
			}
		}
	}

	return append(all, Open)
}

// IsValid reports whether code names a known tier.
func IsValid(code string) bool {
	return slices.Contains(All(), code)
}

// Filter translates a tier code into the account filter that selects its
// members at the given time. OPEN translates to the empty filter.
func Filter(code string, at time.Time) (repository.GetAccountListFilter, error) {
	if code == Open {
		return repository.GetAccountListFilter{}, nil
	}

	for _, band := range ageBands {
		for sex, sexCode := range sexCodes {
			for level, fitnessCode := range fitnessCodes {
				if code != fmt.Sprintf("%s-%s-%s", sexCode, band.code, fitnessCode) {
					continue
				}

				filter := repository.GetAccountListFilter{
					Sex:          sex,
					FitnessLevel: level,
					BornBefore:   at.AddDate(-band.min, 0, 0),
				}

				if band.max != 0 {
					filter.BornAfter = at.AddDate(-(band.max + 1), 0, 0)
				}

				return filter, nil
			}
		}
	}

	return repository.GetAccountListFilter{}, errorx.New(errorx.NotFound, "Not found tier %s", code)
}
