package diet

import (
	"fmt"
	"sort"

	"github.com/mtoivane/valmento/internal/profile"
)

// SubstituteFood replaces one portion of a plan with a nutritionally similar
// eligible food of the same category. The replacement's grams are scaled so
// its calories approximate the original portion's, and the day's total is
// re-validated afterwards. The input plan is never modified; on success a
// modified copy is returned.
func SubstituteFood(plan Plan, mealIndex, foodIndex int, requestedKey string, foods []Food, p profile.Profile) (Plan, error) {
	if mealIndex < 0 || mealIndex >= len(plan.Meals) {
		return Plan{}, fmt.Errorf("%w: meal index %d out of range", ErrInvalidPlanLocation, mealIndex)
	}
	if foodIndex < 0 || foodIndex >= len(plan.Meals[mealIndex].Portions) {
		return Plan{}, fmt.Errorf("%w: food index %d out of range", ErrInvalidPlanLocation, foodIndex)
	}

	original := plan.Meals[mealIndex].Portions[foodIndex]

	candidates := substitutionCandidates(original, requestedKey, foods, p)
	if len(candidates) == 0 {
		return Plan{}, fmt.Errorf("%w: no eligible %s replacement for %s",
			ErrSubstitutionNotFound, original.Food.Category, original.Food.Key)
	}

	replacement := candidates[0]
	grams := caloriePreservingGrams(replacement, original.Calories())

	substituted := clonePlan(plan)
	substituted.Meals[mealIndex].Portions[foodIndex] = Portion{Food: replacement, Grams: grams}
	substituted.DeviationKcal = reconcileDay(substituted.Meals, substituted.Target)

	return substituted, nil
}

// substitutionCandidates lists eligible same-category replacements ranked by
// ascending nutrient distance to the original food. A requested key narrows
// the list to that single food.
func substitutionCandidates(original Portion, requestedKey string, foods []Food, p profile.Profile) []Food {
	excluded := p.ExcludedTags()

	var candidates []Food
	for _, food := range foods {
		if food.Key == original.Food.Key || food.Category != original.Food.Category {
			continue
		}
		if !food.Eligible(excluded) {
			continue
		}
		if requestedKey != "" && food.Key != requestedKey {
			continue
		}
		candidates = append(candidates, food)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return nutrientDistance(candidates[i].Per100g, original.Food.Per100g) <
			nutrientDistance(candidates[j].Per100g, original.Food.Per100g)
	})
	return candidates
}

// caloriePreservingGrams scales the replacement so its calories approximate
// the original portion's, rounded to the nearest gram step.
func caloriePreservingGrams(replacement Food, originalCalories float64) int {
	perGram := replacement.Per100g.Calories() / 100.0
	if perGram <= 0 {
		return gramStep
	}
	grams := roundToStep(originalCalories / perGram)
	if grams < gramStep {
		grams = gramStep
	}
	return grams
}

// clonePlan deep-copies the plan so the original stays untouched.
func clonePlan(plan Plan) Plan {
	cloned := plan
	cloned.Meals = make([]Meal, len(plan.Meals))
	for i, meal := range plan.Meals {
		cloned.Meals[i] = meal
		cloned.Meals[i].Portions = make([]Portion, len(meal.Portions))
		copy(cloned.Meals[i].Portions, meal.Portions)
	}
	return cloned
}
