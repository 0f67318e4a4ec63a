package cycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mtoivane/valmento/internal/sqlite"
)

// Service handles the business logic for the training-cycle state machine.
type Service struct {
	repo   *sqliteRepository
	logger *slog.Logger
	// peakEventDate is the optional competition or photoshoot date that
	// activates the peak-week phase sequence for the preceding seven days.
	// Zero means no peak week is configured.
	peakEventDate time.Time
}

// NewService creates a new training-cycle service. peakEventDate may be zero
// when no pre-event peak week is configured.
func NewService(db *sqlite.Database, logger *slog.Logger, peakEventDate time.Time) *Service {
	return &Service{
		repo:          newSQLiteRepository(db, logger),
		logger:        logger,
		peakEventDate: peakEventDate,
	}
}

// normalizeDate normalizes a date to midnight UTC.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StatusFor returns the training state of a date for the authenticated user.
func (s *Service) StatusFor(ctx context.Context, date time.Time) (Status, error) {
	date = normalizeDate(date)

	trained, err := s.repo.IsTrained(ctx, date)
	if err != nil {
		return Status{}, fmt.Errorf("day status %s: %w", date.Format(dateFormat), err)
	}

	return Status{
		Date:    date,
		Trained: trained,
		Phase:   s.phaseFor(date),
	}, nil
}

// MarkTrainingDay performs the one-way rest -> training transition for a date.
// Marking an already-trained date fails with ErrAlreadyMarked and changes nothing.
func (s *Service) MarkTrainingDay(ctx context.Context, date time.Time) (Status, error) {
	date = normalizeDate(date)

	if err := s.repo.MarkTrained(ctx, date); err != nil {
		return Status{}, fmt.Errorf("mark training day %s: %w", date.Format(dateFormat), err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "marked training day",
		slog.String("date", date.Format(dateFormat)))

	return Status{
		Date:    date,
		Trained: true,
		Phase:   s.phaseFor(date),
	}, nil
}

// phaseFor resolves the cycle phase of a date. Dates within the seven-day
// window ending at the configured event date map to peak_week_phase_1..7.
func (s *Service) phaseFor(date time.Time) Phase {
	if s.peakEventDate.IsZero() {
		return PhaseNormal
	}

	event := normalizeDate(s.peakEventDate)
	daysUntilEvent := int(event.Sub(date).Hours() / 24)
	if daysUntilEvent < 0 || daysUntilEvent >= len(peakWeekPhases) {
		return PhaseNormal
	}
	return PeakPhase(len(peakWeekPhases) - daysUntilEvent)
}
