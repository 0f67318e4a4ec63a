package training

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mtoivane/valmento/internal/contexthelpers"
	"github.com/mtoivane/valmento/internal/sqlite"
)

// planTimeFormat is fixed-width so lexicographic ordering on the stored
// timestamp matches chronological ordering.
const planTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// planRepository persists weekly workout plans. Regeneration inserts a new
// row; the latest row per user wins.
type planRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// newPlanRepository creates a new SQLite-backed workout plan repository.
func newPlanRepository(db *sqlite.Database, logger *slog.Logger) *planRepository {
	return &planRepository{
		db:     db,
		logger: logger,
	}
}

// Save stores a plan and its entries in one transaction.
func (r *planRepository) Save(ctx context.Context, plan WeeklyPlan) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workout_plans (id, user_id, created_at)
		VALUES (?, ?, ?)`,
		plan.ID, userID, plan.CreatedAt.UTC().Format(planTimeFormat))
	if err != nil {
		return fmt.Errorf("insert workout plan: %w", err)
	}

	for dayIndex, day := range plan.Days {
		for position, entry := range day.Entries {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO workout_plan_entries (plan_id, day_index, focus, position,
				                                  exercise_id, sets, reps, estimated_seconds)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				plan.ID, dayIndex, day.Focus, position,
				entry.Exercise.ID, entry.Sets, entry.Reps, entry.EstimatedSeconds)
			if err != nil {
				return fmt.Errorf("insert workout entry %d/%d: %w", dayIndex, position, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit workout plan: %w", err)
	}

	r.logger.LogAttrs(ctx, slog.LevelInfo, "saved workout plan",
		slog.String("plan_id", plan.ID), slog.Int("days", len(plan.Days)))

	return nil
}

// Latest returns the user's most recently created plan.
func (r *planRepository) Latest(ctx context.Context) (WeeklyPlan, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	var (
		plan      WeeklyPlan
		createdAt string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, created_at
		FROM workout_plans
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`, userID).Scan(&plan.ID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return WeeklyPlan{}, ErrPlanNotFound
	}
	if err != nil {
		return WeeklyPlan{}, fmt.Errorf("query latest workout plan: %w", err)
	}

	if plan.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return WeeklyPlan{}, fmt.Errorf("parse plan timestamp: %w", err)
	}

	if plan.Days, err = r.planDays(ctx, plan.ID); err != nil {
		return WeeklyPlan{}, err
	}
	return plan, nil
}

// planDays loads the ordered days and entries of a plan.
func (r *planRepository) planDays(ctx context.Context, planID string) ([]WorkoutDay, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT p.day_index, p.focus, p.sets, p.reps, p.estimated_seconds,
		       e.id, e.key, e.name, e.muscle_group, e.secondary_muscle_groups, e.equipment,
		       e.default_sets, e.min_reps, e.max_reps, e.seconds_per_set, e.description_markdown
		FROM workout_plan_entries p
		JOIN exercises e ON e.id = p.exercise_id
		WHERE p.plan_id = ?
		ORDER BY p.day_index, p.position`, planID)
	if err != nil {
		return nil, fmt.Errorf("query plan entries: %w", err)
	}
	defer rows.Close()

	var days []WorkoutDay
	for rows.Next() {
		var (
			dayIndex  int
			focus     Focus
			entry     Entry
			secondary string
		)
		err = rows.Scan(
			&dayIndex,
			&focus,
			&entry.Sets,
			&entry.Reps,
			&entry.EstimatedSeconds,
			&entry.Exercise.ID,
			&entry.Exercise.Key,
			&entry.Exercise.Name,
			&entry.Exercise.MuscleGroup,
			&secondary,
			&entry.Exercise.Equipment,
			&entry.Exercise.DefaultSets,
			&entry.Exercise.MinReps,
			&entry.Exercise.MaxReps,
			&entry.Exercise.SecondsPerSet,
			&entry.Exercise.DescriptionMarkdown,
		)
		if err != nil {
			return nil, fmt.Errorf("scan plan entry: %w", err)
		}
		if secondary != "" {
			entry.Exercise.SecondaryMuscleGroups = strings.Split(secondary, ",")
		}

		for dayIndex >= len(days) {
			days = append(days, WorkoutDay{Focus: focus})
		}
		days[dayIndex].Entries = append(days[dayIndex].Entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan entries: %w", err)
	}
	return days, nil
}
