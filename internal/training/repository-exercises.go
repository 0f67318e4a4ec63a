package training

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mtoivane/valmento/internal/sqlite"
)

// exerciseRepository reads the exercise reference catalog.
type exerciseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// newExerciseRepository creates a new SQLite-backed exercise repository.
func newExerciseRepository(db *sqlite.Database, logger *slog.Logger) *exerciseRepository {
	return &exerciseRepository{
		db:     db,
		logger: logger,
	}
}

// List returns the full exercise catalog.
func (r *exerciseRepository) List(ctx context.Context) ([]Exercise, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, key, name, muscle_group, secondary_muscle_groups, equipment,
		       default_sets, min_reps, max_reps, seconds_per_set, description_markdown
		FROM exercises
		ORDER BY muscle_group, key`)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	var exercises []Exercise
	for rows.Next() {
		var (
			exercise  Exercise
			secondary string
		)
		err = rows.Scan(
			&exercise.ID,
			&exercise.Key,
			&exercise.Name,
			&exercise.MuscleGroup,
			&secondary,
			&exercise.Equipment,
			&exercise.DefaultSets,
			&exercise.MinReps,
			&exercise.MaxReps,
			&exercise.SecondsPerSet,
			&exercise.DescriptionMarkdown,
		)
		if err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		if secondary != "" {
			exercise.SecondaryMuscleGroups = strings.Split(secondary, ",")
		}
		exercises = append(exercises, exercise)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}
	return exercises, nil
}
