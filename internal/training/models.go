// Package training builds weekly workout plans from the exercise catalog.
package training

import (
	"time"

	"github.com/mtoivane/valmento/internal/errors"
)

// ErrInsufficientVariety means the catalog cannot fill the minimum exercise
// count for a required muscle group. The message names the groups.
var ErrInsufficientVariety = errors.NewSentinel("insufficient exercise variety")

// ErrPlanNotFound means the user has no stored workout plan.
var ErrPlanNotFound = errors.NewSentinel("workout plan not found")

// Focus is the muscle-group split of one training day.
type Focus string

// Split focus constants.
const (
	FocusFullBody Focus = "full_body"
	FocusUpper    Focus = "upper"
	FocusLower    Focus = "lower"
	FocusPush     Focus = "push"
	FocusPull     Focus = "pull"
	FocusLegs     Focus = "legs"
)

// Exercise is one reference catalog entry.
type Exercise struct {
	ID                    int      `json:"id"`
	Key                   string   `json:"key"`
	Name                  string   `json:"name"`
	MuscleGroup           string   `json:"muscle_group"`
	SecondaryMuscleGroups []string `json:"secondary_muscle_groups,omitempty"`
	Equipment             string   `json:"equipment"`
	DefaultSets           int      `json:"default_sets"`
	MinReps               int      `json:"min_reps"`
	MaxReps               int      `json:"max_reps"`
	SecondsPerSet         int      `json:"seconds_per_set"`
	DescriptionMarkdown   string   `json:"description_markdown,omitempty"`
}

// IsCompound reports whether the exercise recruits enough secondary muscle
// groups to count as a compound movement.
func (e Exercise) IsCompound() bool {
	return len(e.SecondaryMuscleGroups) >= minCompoundSecondaryGroups
}

// Entry is one exercise scheduled within a training day.
type Entry struct {
	Exercise         Exercise `json:"exercise"`
	Sets             int      `json:"sets"`
	Reps             int      `json:"reps"`
	EstimatedSeconds int      `json:"estimated_seconds"`
}

// WorkoutDay is one training day of the weekly plan.
type WorkoutDay struct {
	Focus   Focus   `json:"focus"`
	Entries []Entry `json:"entries"`
}

// EstimatedSeconds totals the day's estimated duration.
func (d WorkoutDay) EstimatedSeconds() int {
	var total int
	for _, entry := range d.Entries {
		total += entry.EstimatedSeconds
	}
	return total
}

// WeeklyPlan is one week's training days. Regeneration supersedes a plan with
// a new one under a fresh id.
type WeeklyPlan struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Days      []WorkoutDay `json:"days"`
}
