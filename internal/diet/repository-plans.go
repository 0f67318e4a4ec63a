package diet

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

// planRepository persists diet plans. Regeneration inserts a new row; the
// latest row per user wins.
type planRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// newPlanRepository creates a new SQLite-backed diet plan repository.
func newPlanRepository(db *sqlite.Database, logger *slog.Logger) *planRepository {
	return &planRepository{
		db:     db,
		logger: logger,
	}
}

// Save stores a plan and its portions in one transaction.
func (r *planRepository) Save(ctx context.Context, plan Plan) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO diet_plans (id, user_id, created_at, target_calories, target_protein_g,
		                        target_carb_g, target_fat_g, deviation_kcal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID,
		userID,
		plan.CreatedAt.UTC().Format(planTimeFormat),
		plan.Target.Calories,
		plan.Target.ProteinG,
		plan.Target.CarbG,
		plan.Target.FatG,
		plan.DeviationKcal,
	)
	if err != nil {
		return fmt.Errorf("insert diet plan: %w", err)
	}

	for mealIndex, meal := range plan.Meals {
		for position, portion := range meal.Portions {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO diet_plan_portions (plan_id, meal_index, meal_name, position, food_id, grams)
				VALUES (?, ?, ?, ?, ?, ?)`,
				plan.ID, mealIndex, meal.Name, position, portion.Food.ID, portion.Grams)
			if err != nil {
				return fmt.Errorf("insert portion %d/%d: %w", mealIndex, position, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit diet plan: %w", err)
	}

	r.logger.LogAttrs(ctx, slog.LevelInfo, "saved diet plan",
		slog.String("plan_id", plan.ID), slog.Int("meals", len(plan.Meals)))

	return nil
}

// Latest returns the user's most recently created plan.
func (r *planRepository) Latest(ctx context.Context) (Plan, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	var (
		plan      Plan
		createdAt string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, created_at, target_calories, target_protein_g, target_carb_g,
		       target_fat_g, deviation_kcal
		FROM diet_plans
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`, userID).Scan(
		&plan.ID,
		&createdAt,
		&plan.Target.Calories,
		&plan.Target.ProteinG,
		&plan.Target.CarbG,
		&plan.Target.FatG,
		&plan.DeviationKcal,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Plan{}, ErrPlanNotFound
	}
	if err != nil {
		return Plan{}, fmt.Errorf("query latest diet plan: %w", err)
	}

	if plan.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Plan{}, fmt.Errorf("parse plan timestamp: %w", err)
	}

	if plan.Meals, err = r.planMeals(ctx, plan.ID); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// planMeals loads the ordered meals and portions of a plan.
func (r *planRepository) planMeals(ctx context.Context, planID string) ([]Meal, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT p.meal_index, p.meal_name, p.grams,
		       f.id, f.key, f.name, f.category, f.protein_g, f.carb_g, f.fat_g, f.tags, f.description_markdown
		FROM diet_plan_portions p
		JOIN foods f ON f.id = p.food_id
		WHERE p.plan_id = ?
		ORDER BY p.meal_index, p.position`, planID)
	if err != nil {
		return nil, fmt.Errorf("query plan portions: %w", err)
	}
	defer rows.Close()

	var meals []Meal
	for rows.Next() {
		var (
			mealIndex int
			mealName  string
			portion   Portion
			tags      string
		)
		err = rows.Scan(
			&mealIndex,
			&mealName,
			&portion.Grams,
			&portion.Food.ID,
			&portion.Food.Key,
			&portion.Food.Name,
			&portion.Food.Category,
			&portion.Food.Per100g.ProteinG,
			&portion.Food.Per100g.CarbG,
			&portion.Food.Per100g.FatG,
			&tags,
			&portion.Food.DescriptionMarkdown,
		)
		if err != nil {
			return nil, fmt.Errorf("scan plan portion: %w", err)
		}
		if tags != "" {
			portion.Food.Tags = strings.Split(tags, ",")
		}

		for mealIndex >= len(meals) {
			meals = append(meals, Meal{Name: mealName})
		}
		meals[mealIndex].Portions = append(meals[mealIndex].Portions, portion)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan portions: %w", err)
	}
	return meals, nil
}
