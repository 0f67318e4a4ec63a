package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mtoivane/valmento/internal/contexthelpers"
	"github.com/mtoivane/valmento/internal/sqlite"
)

// sqliteRepository persists profiles in SQLite.
type sqliteRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// newSQLiteRepository creates a new SQLite-backed profile repository.
func newSQLiteRepository(db *sqlite.Database, logger *slog.Logger) *sqliteRepository {
	return &sqliteRepository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves the profile for the authenticated user.
func (r *sqliteRepository) Get(ctx context.Context) (Profile, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	var (
		p               Profile
		restrictionsStr string
		preferredStr    string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT age, sex, height_cm, weight_kg, goal, training_level,
		       weekly_frequency, session_minutes, restrictions, preferred_foods
		FROM profiles
		WHERE user_id = ?`, userID).Scan(
		&p.Age,
		&p.Sex,
		&p.HeightCm,
		&p.WeightKg,
		&p.Goal,
		&p.TrainingLevel,
		&p.WeeklyFrequency,
		&p.SessionMinutes,
		&restrictionsStr,
		&preferredStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("query profile: %w", err)
	}

	p.Restrictions = parseRestrictions(restrictionsStr)
	p.PreferredFoods = splitList(preferredStr)

	return p, nil
}

// Set creates or replaces the profile for the authenticated user.
func (r *sqliteRepository) Set(ctx context.Context, p Profile) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	restrictions := make([]string, len(p.Restrictions))
	for i, restriction := range p.Restrictions {
		restrictions[i] = string(restriction)
	}

	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO profiles (
			user_id, age, sex, height_cm, weight_kg, goal, training_level,
			weekly_frequency, session_minutes, restrictions, preferred_foods
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			age = excluded.age,
			sex = excluded.sex,
			height_cm = excluded.height_cm,
			weight_kg = excluded.weight_kg,
			goal = excluded.goal,
			training_level = excluded.training_level,
			weekly_frequency = excluded.weekly_frequency,
			session_minutes = excluded.session_minutes,
			restrictions = excluded.restrictions,
			preferred_foods = excluded.preferred_foods`,
		userID,
		p.Age,
		p.Sex,
		p.HeightCm,
		p.WeightKg,
		p.Goal,
		p.TrainingLevel,
		p.WeeklyFrequency,
		p.SessionMinutes,
		strings.Join(restrictions, ","),
		strings.Join(p.PreferredFoods, ","),
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// parseRestrictions parses a comma-separated restriction list.
func parseRestrictions(s string) []Restriction {
	parts := splitList(s)
	if parts == nil {
		return nil
	}
	restrictions := make([]Restriction, len(parts))
	for i, part := range parts {
		restrictions[i] = Restriction(part)
	}
	return restrictions
}

// splitList splits a comma-separated list, returning nil for an empty string.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
