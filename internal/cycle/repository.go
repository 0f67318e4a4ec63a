package cycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mtoivane/valmento/internal/contexthelpers"
	"github.com/mtoivane/valmento/internal/sqlite"
)

const dateFormat = time.DateOnly

// sqliteRepository persists day statuses in SQLite.
type sqliteRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// newSQLiteRepository creates a new SQLite-backed day-status repository.
func newSQLiteRepository(db *sqlite.Database, logger *slog.Logger) *sqliteRepository {
	return &sqliteRepository{
		db:     db,
		logger: logger,
	}
}

// IsTrained reports whether the date has been marked as a training day.
func (r *sqliteRepository) IsTrained(ctx context.Context, date time.Time) (bool, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	var trained bool
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT trained
		FROM day_status
		WHERE user_id = ? AND status_date = ?`,
		userID, date.Format(dateFormat)).Scan(&trained)
	if errors.Is(err, sql.ErrNoRows) {
		// Any date with no recorded completion is a rest day.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query day status: %w", err)
	}
	return trained, nil
}

// MarkTrained records the one-way rest -> training transition for a date.
//
// The insert relies on the (user_id, status_date) primary key so that two
// concurrent calls cannot both succeed: the loser of the race observes zero
// affected rows and fails with ErrAlreadyMarked.
func (r *sqliteRepository) MarkTrained(ctx context.Context, date time.Time) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	result, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO day_status (user_id, status_date, trained)
		VALUES (?, ?, 1)
		ON CONFLICT (user_id, status_date) DO NOTHING`,
		userID, date.Format(dateFormat))
	if err != nil {
		return fmt.Errorf("insert day status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyMarked
	}
	return nil
}
