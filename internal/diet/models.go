// Package diet computes daily nutrition targets and builds meal plans of
// discrete food portions from the reference catalog.
package diet

import (
	"time"

	"github.com/mtoivane/valmento/internal/errors"
)

// ErrInsufficientFoodVariety means restriction filtering left a mandatory
// food category without any eligible item. The message names the categories.
var ErrInsufficientFoodVariety = errors.NewSentinel("insufficient food variety")

// ErrSubstitutionNotFound means no eligible same-category replacement exists.
var ErrSubstitutionNotFound = errors.NewSentinel("substitution not found")

// ErrInvalidPlanLocation means a substitution locator points outside the plan.
var ErrInvalidPlanLocation = errors.NewSentinel("invalid plan location")

// ErrPlanNotFound means the user has no stored diet plan.
var ErrPlanNotFound = errors.NewSentinel("diet plan not found")

// ErrFoodNotFound means no catalog entry exists for the key.
var ErrFoodNotFound = errors.NewSentinel("food not found")

// Calories per gram of each macronutrient.
const (
	caloriesPerGramProtein = 4.0
	caloriesPerGramCarb    = 4.0
	caloriesPerGramFat     = 9.0
)

// Category classifies a catalog food by its dominant macro role.
type Category string

// Food category constants.
const (
	CategoryProtein   Category = "protein"
	CategoryCarb      Category = "carb"
	CategoryFat       Category = "fat"
	CategoryFruit     Category = "fruit"
	CategoryVegetable Category = "vegetable"
)

// mandatoryCategories must each have at least one eligible item for a plan to
// be generated, and each is represented in every meal.
var mandatoryCategories = []Category{CategoryProtein, CategoryCarb, CategoryFat, CategoryFruit}

// Macros is an amount of the three macronutrients in grams.
type Macros struct {
	ProteinG float64 `json:"protein_g"`
	CarbG    float64 `json:"carb_g"`
	FatG     float64 `json:"fat_g"`
}

// Calories derives the energy content from the macro identity. Calorie values
// are never stored independently.
func (m Macros) Calories() float64 {
	return m.ProteinG*caloriesPerGramProtein + m.CarbG*caloriesPerGramCarb + m.FatG*caloriesPerGramFat
}

// Add returns the component-wise sum of two macro amounts.
func (m Macros) Add(other Macros) Macros {
	return Macros{
		ProteinG: m.ProteinG + other.ProteinG,
		CarbG:    m.CarbG + other.CarbG,
		FatG:     m.FatG + other.FatG,
	}
}

// Scale returns the macro amount multiplied by a factor.
func (m Macros) Scale(factor float64) Macros {
	return Macros{
		ProteinG: m.ProteinG * factor,
		CarbG:    m.CarbG * factor,
		FatG:     m.FatG * factor,
	}
}

// MacroTarget is a daily nutrition target. Calories always equals the macro
// identity of the gram fields.
type MacroTarget struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbG    float64 `json:"carb_g"`
	FatG     float64 `json:"fat_g"`
}

// targetFromMacros builds a target with the calorie field derived from the
// macro identity.
func targetFromMacros(m Macros) MacroTarget {
	return MacroTarget{
		Calories: m.Calories(),
		ProteinG: m.ProteinG,
		CarbG:    m.CarbG,
		FatG:     m.FatG,
	}
}

// Macros returns the gram fields of the target.
func (t MacroTarget) Macros() Macros {
	return Macros{ProteinG: t.ProteinG, CarbG: t.CarbG, FatG: t.FatG}
}

// Food is one reference catalog entry with macros per 100 g.
type Food struct {
	ID                  int      `json:"id"`
	Key                 string   `json:"key"`
	Name                string   `json:"name"`
	Category            Category `json:"category"`
	Per100g             Macros   `json:"per_100g"`
	Tags                []string `json:"tags,omitempty"`
	DescriptionMarkdown string   `json:"description_markdown,omitempty"`
}

// Eligible reports whether none of the food's tags is excluded.
func (f Food) Eligible(excludedTags map[string]bool) bool {
	for _, tag := range f.Tags {
		if excludedTags[tag] {
			return false
		}
	}
	return true
}

// Portion is one food at one quantity. Grams is always a positive multiple
// of ten.
type Portion struct {
	Food  Food `json:"food"`
	Grams int  `json:"grams"`
}

// Macros returns the portion's macro content scaled from the per-100g values.
func (p Portion) Macros() Macros {
	return p.Food.Per100g.Scale(float64(p.Grams) / 100.0)
}

// Calories returns the portion's derived energy content.
func (p Portion) Calories() float64 {
	return p.Macros().Calories()
}

// Meal is one named slot of a day's plan.
type Meal struct {
	Name     string    `json:"name"`
	Portions []Portion `json:"portions"`
}

// Macros returns the meal's summed macro content.
func (m Meal) Macros() Macros {
	var total Macros
	for _, portion := range m.Portions {
		total = total.Add(portion.Macros())
	}
	return total
}

// Calories returns the meal's derived energy content.
func (m Meal) Calories() float64 {
	return m.Macros().Calories()
}

// Plan is one day's full meal set. Regeneration supersedes a plan with a new
// one under a fresh id; plans are never mutated in place.
type Plan struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Target    MacroTarget `json:"target"`
	Meals     []Meal      `json:"meals"`
	// DeviationKcal is nonzero when the plan's calories stayed outside the
	// tolerance band after reconciliation. The plan is still usable; callers
	// surface the deviation as a warning.
	DeviationKcal float64 `json:"deviation_kcal,omitempty"`
}

// Macros returns the plan's summed macro content across all meals.
func (p Plan) Macros() Macros {
	var total Macros
	for _, meal := range p.Meals {
		total = total.Add(meal.Macros())
	}
	return total
}

// Calories returns the plan's derived energy content.
func (p Plan) Calories() float64 {
	return p.Macros().Calories()
}
