package diet

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mtoivane/valmento/internal/contexthelpers"
	"github.com/mtoivane/valmento/internal/cycle"
	"github.com/mtoivane/valmento/internal/profile"
	"github.com/mtoivane/valmento/internal/sqlite"
	"github.com/mtoivane/valmento/internal/userlock"
)

// Service handles the business logic for nutrition targets and diet plans.
type Service struct {
	foods     *foodRepository
	plans     *planRepository
	profiles  *profile.Service
	cycles    *cycle.Service
	locker    *userlock.Locker
	generator *foodGenerator
	logger    *slog.Logger
}

// NewService creates a new diet service. Without an OpenAI API key, catalog
// generation falls back to category-typical placeholder macros.
func NewService(
	db *sqlite.Database,
	logger *slog.Logger,
	profiles *profile.Service,
	cycles *cycle.Service,
	locker *userlock.Locker,
	openaiAPIKey string,
) *Service {
	var generator *foodGenerator
	if openaiAPIKey != "" {
		generator = newFoodGenerator(openaiAPIKey)
	}
	return &Service{
		foods:     newFoodRepository(db, logger),
		plans:     newPlanRepository(db, logger),
		profiles:  profiles,
		cycles:    cycles,
		locker:    locker,
		generator: generator,
		logger:    logger,
	}
}

// Targets computes the nutrition target for the authenticated user on a date,
// including the date's day-type adjustment.
func (s *Service) Targets(ctx context.Context, date time.Time) (MacroTarget, error) {
	p, err := s.profiles.Get(ctx)
	if err != nil {
		return MacroTarget{}, fmt.Errorf("targets: %w", err)
	}
	status, err := s.cycles.StatusFor(ctx, date)
	if err != nil {
		return MacroTarget{}, fmt.Errorf("targets: %w", err)
	}
	return ComputeTargets(p, status)
}

// Generate builds and stores a new diet plan with the given meal count. The
// plan targets are day-type neutral; AdjustedMacros rescales them per date.
// Concurrent generations for the same user are serialized.
func (s *Service) Generate(ctx context.Context, mealCount int) (Plan, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	if err := s.locker.Acquire(ctx, userID); err != nil {
		return Plan{}, fmt.Errorf("generate diet: %w", err)
	}
	defer s.locker.Release(userID)

	p, err := s.profiles.Get(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("generate diet: %w", err)
	}
	target, err := ComputeBaseTargets(p)
	if err != nil {
		return Plan{}, fmt.Errorf("generate diet: %w", err)
	}
	foods, err := s.foods.List(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("generate diet: %w", err)
	}

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(userID)))
	alloc, err := newAllocator(p, target, foods, rng)
	if err != nil {
		return Plan{}, fmt.Errorf("generate diet: %w", err)
	}
	plan, err := alloc.Generate(mealCount)
	if err != nil {
		return Plan{}, fmt.Errorf("generate diet: %w", err)
	}

	if err = s.plans.Save(ctx, plan); err != nil {
		return Plan{}, fmt.Errorf("generate diet: %w", err)
	}

	if plan.DeviationKcal != 0 {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "diet plan deviates from calorie target",
			slog.String("plan_id", plan.ID),
			slog.Float64("deviation_kcal", plan.DeviationKcal))
	}

	return plan, nil
}

// Substitute replaces one portion of the latest plan and stores the result as
// a new plan superseding the old one. The old plan rows stay untouched.
func (s *Service) Substitute(ctx context.Context, mealIndex, foodIndex int, requestedKey string) (Plan, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	if err := s.locker.Acquire(ctx, userID); err != nil {
		return Plan{}, fmt.Errorf("substitute food: %w", err)
	}
	defer s.locker.Release(userID)

	plan, err := s.plans.Latest(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("substitute food: %w", err)
	}
	p, err := s.profiles.Get(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("substitute food: %w", err)
	}
	foods, err := s.foods.List(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("substitute food: %w", err)
	}

	// A requested key must name a catalog food, even when the resolver later
	// rejects it for macro or restriction reasons.
	if requestedKey != "" {
		if _, err = s.foods.GetByKey(ctx, requestedKey); err != nil {
			return Plan{}, fmt.Errorf("substitute food: %w", err)
		}
	}

	substituted, err := SubstituteFood(plan, mealIndex, foodIndex, requestedKey, foods, p)
	if err != nil {
		return Plan{}, fmt.Errorf("substitute food: %w", err)
	}

	substituted.ID = uuid.NewString()
	substituted.CreatedAt = time.Now().UTC()
	if err = s.plans.Save(ctx, substituted); err != nil {
		return Plan{}, fmt.Errorf("substitute food: %w", err)
	}
	return substituted, nil
}

// Latest returns the user's current diet plan.
func (s *Service) Latest(ctx context.Context) (Plan, error) {
	plan, err := s.plans.Latest(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("latest diet plan: %w", err)
	}
	return plan, nil
}

// AdjustedMacros rescales the latest plan's computed totals by the date's
// day-type multipliers. Protein and fat pass through unchanged.
func (s *Service) AdjustedMacros(ctx context.Context, date time.Time) (MacroTarget, error) {
	plan, err := s.plans.Latest(ctx)
	if err != nil {
		return MacroTarget{}, fmt.Errorf("adjusted macros: %w", err)
	}
	status, err := s.cycles.StatusFor(ctx, date)
	if err != nil {
		return MacroTarget{}, fmt.Errorf("adjusted macros: %w", err)
	}
	base := targetFromMacros(plan.Macros())
	return AdjustTarget(base, status.Multipliers()), nil
}

// ListFoods returns the full food catalog.
func (s *Service) ListFoods(ctx context.Context) ([]Food, error) {
	foods, err := s.foods.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return foods, nil
}

// GenerateFood creates a new catalog entry for the named food, filling in
// macros, tags, and a description with the AI generator when configured.
func (s *Service) GenerateFood(ctx context.Context, name string, category Category) (Food, error) {
	if _, ok := idealPer100g[category]; !ok {
		return Food{}, fmt.Errorf("%w: unknown food category %q", profile.ErrInvalidParameters, category)
	}

	var (
		food Food
		err  error
	)
	if s.generator != nil {
		if food, err = s.generator.Generate(ctx, name, category); err != nil {
			return Food{}, fmt.Errorf("generate food: %w", err)
		}
	} else {
		food = Food{
			Key:      slugify(name),
			Name:     name,
			Category: category,
			Per100g:  idealPer100g[category],
		}
	}
	food.Category = category

	created, err := s.foods.Create(ctx, food)
	if err != nil {
		return Food{}, fmt.Errorf("generate food: %w", err)
	}
	return created, nil
}

// slugify converts a display name into a snake_case catalog key.
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "_")
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			return r
		}
		return -1
	}, slug)
}
