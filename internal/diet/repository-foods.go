package diet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mtoivane/valmento/internal/sqlite"
)

// foodRepository reads and extends the food reference catalog.
type foodRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// newFoodRepository creates a new SQLite-backed food repository.
func newFoodRepository(db *sqlite.Database, logger *slog.Logger) *foodRepository {
	return &foodRepository{
		db:     db,
		logger: logger,
	}
}

// List returns the full food catalog.
func (r *foodRepository) List(ctx context.Context) ([]Food, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, key, name, category, protein_g, carb_g, fat_g, tags, description_markdown
		FROM foods
		ORDER BY category, key`)
	if err != nil {
		return nil, fmt.Errorf("query foods: %w", err)
	}
	defer rows.Close()

	var foods []Food
	for rows.Next() {
		food, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		foods = append(foods, food)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foods: %w", err)
	}
	return foods, nil
}

// GetByKey returns one catalog entry.
func (r *foodRepository) GetByKey(ctx context.Context, key string) (Food, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, key, name, category, protein_g, carb_g, fat_g, tags, description_markdown
		FROM foods
		WHERE key = ?`, key)

	food, err := scanFood(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Food{}, fmt.Errorf("%w: %s", ErrFoodNotFound, key)
	}
	if err != nil {
		return Food{}, err
	}
	return food, nil
}

// Create inserts a new catalog entry and returns it with its assigned id.
func (r *foodRepository) Create(ctx context.Context, food Food) (Food, error) {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO foods (key, name, category, protein_g, carb_g, fat_g, tags, description_markdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		food.Key,
		food.Name,
		food.Category,
		food.Per100g.ProteinG,
		food.Per100g.CarbG,
		food.Per100g.FatG,
		strings.Join(food.Tags, ","),
		food.DescriptionMarkdown,
	)
	if err != nil {
		return Food{}, fmt.Errorf("insert food: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return Food{}, fmt.Errorf("food insert id: %w", err)
	}
	food.ID = int(id)

	r.logger.LogAttrs(ctx, slog.LevelInfo, "created catalog food",
		slog.String("key", food.Key), slog.Int("id", food.ID))

	return food, nil
}

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanFood reads one food row.
func scanFood(row rowScanner) (Food, error) {
	var (
		food Food
		tags string
	)
	err := row.Scan(
		&food.ID,
		&food.Key,
		&food.Name,
		&food.Category,
		&food.Per100g.ProteinG,
		&food.Per100g.CarbG,
		&food.Per100g.FatG,
		&tags,
		&food.DescriptionMarkdown,
	)
	if err != nil {
		return Food{}, fmt.Errorf("scan food: %w", err)
	}
	if tags != "" {
		food.Tags = strings.Split(tags, ",")
	}
	return food, nil
}
