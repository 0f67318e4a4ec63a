package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mtoivane/valmento/internal/sqlite"
)

// userRepository manages user account rows.
type userRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// newUserRepository creates a new SQLite-backed user repository.
func newUserRepository(db *sqlite.Database, logger *slog.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user and returns its id.
func (r *userRepository) Create(ctx context.Context, displayName string) (int, error) {
	result, err := r.db.ReadWrite.ExecContext(ctx,
		"INSERT INTO users (display_name) VALUES (?)", displayName)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user insert id: %w", err)
	}

	r.logger.LogAttrs(ctx, slog.LevelInfo, "created user", slog.Int64("user_id", id))

	return int(id), nil
}

// Exists reports whether a user row exists.
func (r *userRepository) Exists(ctx context.Context, userID int) (bool, error) {
	var exists bool
	err := r.db.ReadOnly.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)", userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query user existence: %w", err)
	}
	return exists, nil
}
