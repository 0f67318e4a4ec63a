// Package profile manages user biometrics and training parameters.
package profile

import (
	"fmt"

	"github.com/mtoivane/valmento/internal/errors"
)

// ErrInvalidParameters means the profile carries malformed or out-of-range biometrics.
var ErrInvalidParameters = errors.NewSentinel("invalid profile parameters")

// ErrNotFound means no profile exists for the user.
var ErrNotFound = errors.NewSentinel("profile not found")

// Sex is the biological sex used by the BMR formula.
type Sex string

// Sex constants.
const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Goal represents what the user wants out of their nutrition plan.
type Goal string

// Goal constants.
const (
	GoalCutting     Goal = "cutting"
	GoalBulking     Goal = "bulking"
	GoalMaintenance Goal = "maintenance"
)

// TrainingLevel represents the user's training experience.
type TrainingLevel string

// Training level constants.
const (
	LevelBeginner     TrainingLevel = "beginner"
	LevelIntermediate TrainingLevel = "intermediate"
	LevelAdvanced     TrainingLevel = "advanced"
)

// Restriction is a dietary restriction declared by the user.
type Restriction string

// Restriction constants.
const (
	RestrictionVegetarian  Restriction = "vegetarian"
	RestrictionVegan       Restriction = "vegan"
	RestrictionGlutenFree  Restriction = "gluten_free"
	RestrictionLactoseFree Restriction = "lactose_free"
	RestrictionNutAllergy  Restriction = "nut_allergy"
)

// restrictionConflicts maps each restriction to the food tags it excludes.
var restrictionConflicts = map[Restriction][]string{
	RestrictionVegetarian:  {"meat", "fish"},
	RestrictionVegan:       {"meat", "fish", "animal_product", "lactose"},
	RestrictionGlutenFree:  {"gluten"},
	RestrictionLactoseFree: {"lactose"},
	RestrictionNutAllergy:  {"nuts"},
}

// ConflictingTags returns the food tags excluded by the restriction.
func (r Restriction) ConflictingTags() []string {
	return restrictionConflicts[r]
}

// Profile holds one user's biometrics, goal, and training parameters.
type Profile struct {
	Age             int           `json:"age"`
	Sex             Sex           `json:"sex"`
	HeightCm        float64       `json:"height_cm"`
	WeightKg        float64       `json:"weight_kg"`
	Goal            Goal          `json:"goal"`
	TrainingLevel   TrainingLevel `json:"training_level"`
	WeeklyFrequency int           `json:"weekly_frequency"`
	SessionMinutes  int           `json:"session_minutes"`
	Restrictions    []Restriction `json:"restrictions"`
	PreferredFoods  []string      `json:"preferred_foods"`
}

// Validate checks the biometric and training parameter ranges.
func (p Profile) Validate() error {
	if p.Age <= 0 {
		return fmt.Errorf("%w: age must be positive, got %d", ErrInvalidParameters, p.Age)
	}
	if p.HeightCm <= 0 {
		return fmt.Errorf("%w: height must be positive, got %g", ErrInvalidParameters, p.HeightCm)
	}
	if p.WeightKg <= 0 {
		return fmt.Errorf("%w: weight must be positive, got %g", ErrInvalidParameters, p.WeightKg)
	}
	if p.Sex != SexMale && p.Sex != SexFemale {
		return fmt.Errorf("%w: unknown sex %q", ErrInvalidParameters, p.Sex)
	}
	if p.Goal != GoalCutting && p.Goal != GoalBulking && p.Goal != GoalMaintenance {
		return fmt.Errorf("%w: unknown goal %q", ErrInvalidParameters, p.Goal)
	}
	switch p.TrainingLevel {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
	default:
		return fmt.Errorf("%w: unknown training level %q", ErrInvalidParameters, p.TrainingLevel)
	}
	if p.WeeklyFrequency < 1 || p.WeeklyFrequency > 7 {
		return fmt.Errorf("%w: weekly frequency must be within [1,7], got %d", ErrInvalidParameters, p.WeeklyFrequency)
	}
	if p.SessionMinutes <= 0 {
		return fmt.Errorf("%w: session minutes must be positive, got %d", ErrInvalidParameters, p.SessionMinutes)
	}
	for _, r := range p.Restrictions {
		if _, ok := restrictionConflicts[r]; !ok {
			return fmt.Errorf("%w: unknown restriction %q", ErrInvalidParameters, r)
		}
	}
	return nil
}

// ExcludedTags returns the union of food tags excluded by the profile's restrictions.
func (p Profile) ExcludedTags() map[string]bool {
	excluded := make(map[string]bool)
	for _, r := range p.Restrictions {
		for _, tag := range r.ConflictingTags() {
			excluded[tag] = true
		}
	}
	return excluded
}

// Prefers reports whether the given food key is among the user's preferred foods.
func (p Profile) Prefers(foodKey string) bool {
	for _, key := range p.PreferredFoods {
		if key == foodKey {
			return true
		}
	}
	return false
}
