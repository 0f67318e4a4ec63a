package diet

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mtoivane/valmento/internal/profile"
)

// Allocation policy constants.
const (
	// gramStep is the portion granularity. Every portion is a positive
	// multiple of this.
	gramStep = 10

	// mealToleranceFraction is the per-meal band within which a meal's
	// calories are considered on target.
	mealToleranceFraction = 0.10

	// Whole-day reconciliation accepts a deviation up to the larger of the
	// fixed floor and the fractional band.
	dayToleranceFraction  = 0.12
	dayToleranceFloorKcal = 100.0

	// tieBreakWindow is how many of the closest candidates a selection may
	// randomly choose between.
	tieBreakWindow = 3

	// reconcileAttempts is the initial correction plus one retry.
	reconcileAttempts = 2
)

// mealSlot is one named meal position with its share of the day's calories.
type mealSlot struct {
	name   string
	weight float64
}

// mealSlots distributes the day across meal counts. Weights per count sum to
// exactly one so the per-meal sub-targets add up to the day total.
var mealSlots = map[int][]mealSlot{
	3: {{"breakfast", 0.30}, {"lunch", 0.40}, {"dinner", 0.30}},
	4: {{"breakfast", 0.25}, {"lunch", 0.35}, {"snack", 0.10}, {"dinner", 0.30}},
	5: {
		{"breakfast", 0.25}, {"snack", 0.10}, {"lunch", 0.30},
		{"snack", 0.10}, {"dinner", 0.25},
	},
	6: {
		{"breakfast", 0.20}, {"snack", 0.10}, {"lunch", 0.30},
		{"snack", 0.10}, {"dinner", 0.20}, {"evening_snack", 0.10},
	},
}

// categoryShares splits a meal's calorie budget across the mandatory
// categories.
var categoryShares = map[Category]float64{
	CategoryProtein: 0.35,
	CategoryCarb:    0.40,
	CategoryFat:     0.15,
	CategoryFruit:   0.10,
}

// idealPer100g is the prototypical macro profile of each category, used to
// rank candidates within a category.
var idealPer100g = map[Category]Macros{
	CategoryProtein:   {ProteinG: 25, CarbG: 2, FatG: 3},
	CategoryCarb:      {ProteinG: 3, CarbG: 25, FatG: 1},
	CategoryFat:       {ProteinG: 2, CarbG: 5, FatG: 50},
	CategoryFruit:     {ProteinG: 1, CarbG: 15, FatG: 0.3},
	CategoryVegetable: {ProteinG: 2, CarbG: 5, FatG: 0.3},
}

// allocator builds one day's meal plan from the eligible food pool.
type allocator struct {
	profile    profile.Profile
	target     MacroTarget
	rng        *rand.Rand
	byCategory map[Category][]Food
}

// newAllocator filters the catalog by the profile's restrictions and checks
// that every mandatory category keeps at least one eligible item.
func newAllocator(p profile.Profile, target MacroTarget, foods []Food, rng *rand.Rand) (*allocator, error) {
	excluded := p.ExcludedTags()
	byCategory := make(map[Category][]Food)
	for _, food := range foods {
		if food.Eligible(excluded) {
			byCategory[food.Category] = append(byCategory[food.Category], food)
		}
	}

	var missing []string
	for _, category := range mandatoryCategories {
		if len(byCategory[category]) == 0 {
			missing = append(missing, string(category))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: no eligible foods in categories: %s",
			ErrInsufficientFoodVariety, strings.Join(missing, ", "))
	}

	return &allocator{
		profile:    p,
		target:     target,
		rng:        rng,
		byCategory: byCategory,
	}, nil
}

// Generate builds a day's plan with the given meal count.
func (a *allocator) Generate(mealCount int) (Plan, error) {
	slots, ok := mealSlots[mealCount]
	if !ok {
		return Plan{}, fmt.Errorf("%w: unsupported meal count %d",
			profile.ErrInvalidParameters, mealCount)
	}

	meals := make([]Meal, 0, len(slots))
	for _, slot := range slots {
		meals = append(meals, a.buildMeal(slot.name, a.target.Calories*slot.weight))
	}

	deviation := reconcileDay(meals, a.target)

	return Plan{
		ID:            uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Target:        a.target,
		Meals:         meals,
		DeviationKcal: deviation,
	}, nil
}

// buildMeal portions one item per mandatory category against the meal's
// calorie budget, then tops up towards the budget if the mandatory portions
// fall short of the tolerance band.
func (a *allocator) buildMeal(name string, calorieBudget float64) Meal {
	meal := Meal{Name: name}
	for _, category := range mandatoryCategories {
		food := a.pickFood(category)
		grams := gramsForCalories(food, calorieBudget*categoryShares[category])
		if grams < gramStep {
			// Mandatory categories stay represented even on tiny budgets.
			grams = gramStep
		}
		meal.Portions = append(meal.Portions, Portion{Food: food, Grams: grams})
	}

	a.topUpMeal(&meal, calorieBudget)
	return meal
}

// topUpMeal grows the meal's carbohydrate portion when flooring left the meal
// below the tolerance band. Flooring never overshoots, so only the low side
// needs correction.
func (a *allocator) topUpMeal(meal *Meal, calorieBudget float64) {
	shortfall := calorieBudget*(1-mealToleranceFraction) - meal.Calories()
	if shortfall <= 0 {
		return
	}
	for i, portion := range meal.Portions {
		if portion.Food.Category != CategoryCarb {
			continue
		}
		extraGrams := gramsForCalories(portion.Food, calorieBudget-meal.Calories())
		meal.Portions[i].Grams += extraGrams
		return
	}
}

// pickFood selects one eligible item of the category. Preferred foods win
// outright; within the pool, items closest to the category's prototypical
// macro profile are favored with a small random tie-break window.
func (a *allocator) pickFood(category Category) Food {
	pool := a.byCategory[category]

	var preferred []Food
	for _, food := range pool {
		if a.profile.Prefers(food.Key) {
			preferred = append(preferred, food)
		}
	}
	if len(preferred) > 0 {
		pool = preferred
	}

	ranked := make([]Food, len(pool))
	copy(ranked, pool)
	ideal := idealPer100g[category]
	sort.Slice(ranked, func(i, j int) bool {
		return nutrientDistance(ranked[i].Per100g, ideal) < nutrientDistance(ranked[j].Per100g, ideal)
	})

	window := min(tieBreakWindow, len(ranked))
	return ranked[a.rng.IntN(window)]
}

// nutrientDistance is the Euclidean distance between two per-100g macro
// profiles.
func nutrientDistance(a, b Macros) float64 {
	dp := a.ProteinG - b.ProteinG
	dc := a.CarbG - b.CarbG
	df := a.FatG - b.FatG
	return math.Sqrt(dp*dp + dc*dc + df*df)
}

// gramsForCalories converts a calorie amount into grams of the food, floored
// to the gram step so a portion never overshoots its share.
func gramsForCalories(food Food, calories float64) int {
	perGram := food.Per100g.Calories() / 100.0
	if perGram <= 0 || calories <= 0 {
		return 0
	}
	grams := int(calories / perGram)
	return grams - grams%gramStep
}

// dayTolerance is the permitted whole-day calorie deviation.
func dayTolerance(targetCalories float64) float64 {
	return math.Max(dayToleranceFloorKcal, dayToleranceFraction*targetCalories)
}

// sumCalories totals the derived calories across meals.
func sumCalories(meals []Meal) float64 {
	var total float64
	for _, meal := range meals {
		total += meal.Calories()
	}
	return total
}

// reconcileDay corrects the day total towards the target by rescaling the
// largest-contributing portion, retrying once. It returns the remaining
// deviation in calories, or zero when the day ends inside the tolerance band.
func reconcileDay(meals []Meal, target MacroTarget) float64 {
	tolerance := dayTolerance(target.Calories)

	for range reconcileAttempts {
		deviation := sumCalories(meals) - target.Calories
		if math.Abs(deviation) <= tolerance {
			return 0
		}
		if !adjustLargestPortion(meals, -deviation) {
			break
		}
	}

	deviation := sumCalories(meals) - target.Calories
	if math.Abs(deviation) <= tolerance {
		return 0
	}
	return deviation
}

// adjustLargestPortion shifts the grams of the highest-calorie portion by the
// requested calorie delta, keeping the gram-step granularity. It reports
// whether any grams actually changed.
func adjustLargestPortion(meals []Meal, deltaCalories float64) bool {
	mealIdx, portionIdx := -1, -1
	var largest float64
	for i, meal := range meals {
		for j, portion := range meal.Portions {
			if calories := portion.Calories(); calories > largest {
				largest = calories
				mealIdx, portionIdx = i, j
			}
		}
	}
	if mealIdx < 0 {
		return false
	}

	portion := meals[mealIdx].Portions[portionIdx]
	perGram := portion.Food.Per100g.Calories() / 100.0
	if perGram <= 0 {
		return false
	}

	grams := roundToStep(float64(portion.Grams) + deltaCalories/perGram)
	if grams < gramStep {
		grams = gramStep
	}
	if grams == portion.Grams {
		return false
	}

	meals[mealIdx].Portions[portionIdx].Grams = grams
	return true
}

// roundToStep rounds grams to the nearest gram step.
func roundToStep(grams float64) int {
	return int(math.Round(grams/gramStep)) * gramStep
}
