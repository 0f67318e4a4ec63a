package training

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mtoivane/valmento/internal/profile"
)

// Selection policy constants.
const (
	// restOverheadSeconds covers rest and transition time around each set.
	restOverheadSeconds = 90

	// minCompoundSecondaryGroups is how many secondary muscle groups make an
	// exercise count as compound.
	minCompoundSecondaryGroups = 2

	// maxSetsPerExercise bounds set bumping when a day falls short of its
	// minimum set volume.
	maxSetsPerExercise = 5
)

// exerciseCountBounds is the allowed exercises per day by training level.
var exerciseCountBounds = map[profile.TrainingLevel]struct{ min, max int }{
	profile.LevelBeginner:     {min: 3, max: 5},
	profile.LevelIntermediate: {min: 4, max: 6},
	profile.LevelAdvanced:     {min: 5, max: 8},
}

// minDailySets is the minimum total set volume per day by training level.
var minDailySets = map[profile.TrainingLevel]int{
	profile.LevelBeginner:     8,
	profile.LevelIntermediate: 10,
	profile.LevelAdvanced:     12,
}

// focusMuscleGroups lists the muscle groups each split focus trains.
var focusMuscleGroups = map[Focus][]string{
	FocusFullBody: {"quads", "hamstrings", "glutes", "chest", "back", "shoulders", "core"},
	FocusUpper:    {"chest", "back", "shoulders", "biceps", "triceps"},
	FocusLower:    {"quads", "hamstrings", "glutes", "calves", "core"},
	FocusPush:     {"chest", "shoulders", "triceps"},
	FocusPull:     {"back", "biceps", "core"},
	FocusLegs:     {"quads", "hamstrings", "glutes", "calves"},
}

// splitSchedule picks the week's day foci from frequency and training level.
// Beginners stay on full-body days longer; higher frequencies move through
// upper/lower into push/pull/legs.
func splitSchedule(frequency int, level profile.TrainingLevel) []Focus {
	switch frequency {
	case 1:
		return []Focus{FocusFullBody}
	case 2:
		return []Focus{FocusFullBody, FocusFullBody}
	case 3:
		if level == profile.LevelBeginner {
			return []Focus{FocusFullBody, FocusFullBody, FocusFullBody}
		}
		return []Focus{FocusPush, FocusPull, FocusLegs}
	case 4:
		return []Focus{FocusUpper, FocusLower, FocusUpper, FocusLower}
	case 5:
		return []Focus{FocusPush, FocusPull, FocusLegs, FocusUpper, FocusLower}
	case 6:
		return []Focus{FocusPush, FocusPull, FocusLegs, FocusPush, FocusPull, FocusLegs}
	default:
		return []Focus{FocusPush, FocusPull, FocusLegs, FocusFullBody, FocusPush, FocusPull, FocusLegs}
	}
}

// generator builds one weekly plan from the exercise pool.
type generator struct {
	profile profile.Profile
	pool    []Exercise
	rng     *rand.Rand
}

// newGenerator constructs a workout generator.
func newGenerator(p profile.Profile, pool []Exercise, rng *rand.Rand) (*generator, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: exercise catalog is empty", ErrInsufficientVariety)
	}
	return &generator{
		profile: p,
		pool:    pool,
		rng:     rng,
	}, nil
}

// Generate builds the weekly plan: one day per weekly training session,
// respecting the session time budget and per-level exercise count bounds.
func (g *generator) Generate() (WeeklyPlan, error) {
	schedule := splitSchedule(g.profile.WeeklyFrequency, g.profile.TrainingLevel)

	days := make([]WorkoutDay, 0, len(schedule))
	for _, focus := range schedule {
		day, err := g.buildDay(focus)
		if err != nil {
			return WeeklyPlan{}, err
		}
		days = append(days, day)
	}

	if err := g.checkWeeklyCoverage(schedule, days); err != nil {
		return WeeklyPlan{}, err
	}

	return WeeklyPlan{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Days:      days,
	}, nil
}

// buildDay fills one training day with exercises for the focus, compound
// movements first, stopping at the time budget and the per-level maximum.
func (g *generator) buildDay(focus Focus) (WorkoutDay, error) {
	bounds := exerciseCountBounds[g.profile.TrainingLevel]
	budgetSeconds := g.profile.SessionMinutes * 60

	candidates := g.rankCandidates(focus)

	day := WorkoutDay{Focus: focus}
	usedSeconds := 0
	coveredGroups := make(map[string]bool)
	for _, exercise := range candidates {
		if len(day.Entries) >= bounds.max {
			break
		}

		// Favor breadth: once a primary group is covered, further exercises
		// for it only fill leftover capacity.
		if coveredGroups[exercise.MuscleGroup] && len(day.Entries) < len(focusMuscleGroups[focus]) {
			continue
		}

		entry := g.entryFor(exercise)
		if usedSeconds+entry.EstimatedSeconds > budgetSeconds {
			continue
		}

		day.Entries = append(day.Entries, entry)
		usedSeconds += entry.EstimatedSeconds
		coveredGroups[exercise.MuscleGroup] = true
	}

	// Second pass relaxes the breadth rule so short focus lists can still
	// reach the per-level minimum.
	if len(day.Entries) < bounds.min {
		for _, exercise := range candidates {
			if len(day.Entries) >= bounds.min {
				break
			}
			if dayContains(day, exercise.Key) {
				continue
			}
			entry := g.entryFor(exercise)
			if usedSeconds+entry.EstimatedSeconds > budgetSeconds {
				continue
			}
			day.Entries = append(day.Entries, entry)
			usedSeconds += entry.EstimatedSeconds
		}
	}

	if len(day.Entries) < bounds.min {
		return WorkoutDay{}, fmt.Errorf(
			"%w: cannot fill %d exercises for %s day within %d minutes, groups: %s",
			ErrInsufficientVariety, bounds.min, focus, g.profile.SessionMinutes,
			strings.Join(focusMuscleGroups[focus], ", "))
	}

	g.ensureMinimumSets(&day, budgetSeconds)
	return day, nil
}

// rankCandidates orders the focus's exercises compound-first with a seeded
// shuffle inside each priority band.
func (g *generator) rankCandidates(focus Focus) []Exercise {
	groups := focusMuscleGroups[focus]

	var candidates []Exercise
	for _, exercise := range g.pool {
		if slices.Contains(groups, exercise.MuscleGroup) {
			candidates = append(candidates, exercise)
		}
	}

	g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].IsCompound() && !candidates[j].IsCompound()
	})
	return candidates
}

// entryFor schedules one exercise with its default volume.
func (g *generator) entryFor(exercise Exercise) Entry {
	sets := exercise.DefaultSets
	reps := (exercise.MinReps + exercise.MaxReps) / 2
	return Entry{
		Exercise:         exercise,
		Sets:             sets,
		Reps:             reps,
		EstimatedSeconds: estimatedSeconds(exercise, sets),
	}
}

// estimatedSeconds is the scheduling estimate for an exercise at a set count.
func estimatedSeconds(exercise Exercise, sets int) int {
	return sets * (exercise.SecondsPerSet + restOverheadSeconds)
}

// ensureMinimumSets bumps set counts until the day reaches its minimum set
// volume, as far as the time budget allows.
func (g *generator) ensureMinimumSets(day *WorkoutDay, budgetSeconds int) {
	minSets := minDailySets[g.profile.TrainingLevel]
	for {
		totalSets := 0
		for _, entry := range day.Entries {
			totalSets += entry.Sets
		}
		if totalSets >= minSets {
			return
		}

		bumped := false
		for i, entry := range day.Entries {
			if entry.Sets >= maxSetsPerExercise {
				continue
			}
			grown := estimatedSeconds(entry.Exercise, entry.Sets+1)
			if day.EstimatedSeconds()-entry.EstimatedSeconds+grown > budgetSeconds {
				continue
			}
			day.Entries[i].Sets++
			day.Entries[i].EstimatedSeconds = grown
			bumped = true
			break
		}
		if !bumped {
			return
		}
	}
}

// checkWeeklyCoverage verifies that every muscle group the schedule calls for
// is trained at least once across the week, primaries and secondaries both
// counting.
func (g *generator) checkWeeklyCoverage(schedule []Focus, days []WorkoutDay) error {
	required := make(map[string]bool)
	for _, focus := range schedule {
		for _, group := range focusMuscleGroups[focus] {
			required[group] = true
		}
	}

	covered := make(map[string]bool)
	for _, day := range days {
		for _, entry := range day.Entries {
			covered[entry.Exercise.MuscleGroup] = true
			for _, group := range entry.Exercise.SecondaryMuscleGroups {
				covered[group] = true
			}
		}
	}

	var missing []string
	for group := range required {
		if !covered[group] {
			missing = append(missing, group)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: no exercises cover muscle groups: %s",
			ErrInsufficientVariety, strings.Join(missing, ", "))
	}
	return nil
}

// dayContains reports whether the day already schedules the exercise.
func dayContains(day WorkoutDay, key string) bool {
	for _, entry := range day.Entries {
		if entry.Exercise.Key == key {
			return true
		}
	}
	return false
}
