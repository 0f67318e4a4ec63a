package training

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/mtoivane/valmento/internal/contexthelpers"
	"github.com/mtoivane/valmento/internal/profile"
	"github.com/mtoivane/valmento/internal/sqlite"
	"github.com/mtoivane/valmento/internal/userlock"
)

// Service handles the business logic for weekly workout plans.
type Service struct {
	exercises *exerciseRepository
	plans     *planRepository
	profiles  *profile.Service
	locker    *userlock.Locker
	logger    *slog.Logger
}

// NewService creates a new training service.
func NewService(db *sqlite.Database, logger *slog.Logger, profiles *profile.Service, locker *userlock.Locker) *Service {
	return &Service{
		exercises: newExerciseRepository(db, logger),
		plans:     newPlanRepository(db, logger),
		profiles:  profiles,
		locker:    locker,
		logger:    logger,
	}
}

// Generate builds and stores a new weekly workout plan. Concurrent
// generations for the same user are serialized.
func (s *Service) Generate(ctx context.Context) (WeeklyPlan, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	if err := s.locker.Acquire(ctx, userID); err != nil {
		return WeeklyPlan{}, fmt.Errorf("generate workout: %w", err)
	}
	defer s.locker.Release(userID)

	p, err := s.profiles.Get(ctx)
	if err != nil {
		return WeeklyPlan{}, fmt.Errorf("generate workout: %w", err)
	}
	if err = p.Validate(); err != nil {
		return WeeklyPlan{}, fmt.Errorf("generate workout: %w", err)
	}
	pool, err := s.exercises.List(ctx)
	if err != nil {
		return WeeklyPlan{}, fmt.Errorf("generate workout: %w", err)
	}

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(userID)))
	gen, err := newGenerator(p, pool, rng)
	if err != nil {
		return WeeklyPlan{}, fmt.Errorf("generate workout: %w", err)
	}
	plan, err := gen.Generate()
	if err != nil {
		return WeeklyPlan{}, fmt.Errorf("generate workout: %w", err)
	}

	if err = s.plans.Save(ctx, plan); err != nil {
		return WeeklyPlan{}, fmt.Errorf("generate workout: %w", err)
	}
	return plan, nil
}

// Latest returns the user's current workout plan.
func (s *Service) Latest(ctx context.Context) (WeeklyPlan, error) {
	plan, err := s.plans.Latest(ctx)
	if err != nil {
		return WeeklyPlan{}, fmt.Errorf("latest workout plan: %w", err)
	}
	return plan, nil
}

// ListExercises returns the full exercise catalog.
func (s *Service) ListExercises(ctx context.Context) ([]Exercise, error) {
	exercises, err := s.exercises.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}
