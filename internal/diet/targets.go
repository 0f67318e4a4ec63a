package diet

import (
	"fmt"
	"math"

	"github.com/mtoivane/valmento/internal/cycle"
	"github.com/mtoivane/valmento/internal/profile"
)

// Mifflin-St Jeor coefficients.
const (
	bmrWeightFactor = 10.0
	bmrHeightFactor = 6.25
	bmrAgeFactor    = 5.0
	bmrMaleOffset   = 5.0
	bmrFemaleOffset = -161.0
)

// Activity multiplier policy: a per-level base plus a small increment for
// each weekly training day, capped to a plausible upper bound.
const (
	activityPerTrainingDay = 0.05
	maxActivityMultiplier  = 1.9
)

var activityBase = map[profile.TrainingLevel]float64{
	profile.LevelBeginner:     1.2,
	profile.LevelIntermediate: 1.35,
	profile.LevelAdvanced:     1.5,
}

// Goal calorie adjustment applied on top of TDEE.
var goalCalorieFactor = map[profile.Goal]float64{
	profile.GoalCutting:     0.85,
	profile.GoalBulking:     1.15,
	profile.GoalMaintenance: 1.0,
}

// Per-kg macro factors. Cutting keeps protein high to spare muscle; bulking
// leaves more of the surplus to carbohydrate.
var (
	proteinPerKg = map[profile.Goal]float64{
		profile.GoalCutting:     2.2,
		profile.GoalMaintenance: 1.8,
		profile.GoalBulking:     1.6,
	}
	fatPerKg = map[profile.Goal]float64{
		profile.GoalCutting:     0.8,
		profile.GoalMaintenance: 0.9,
		profile.GoalBulking:     1.0,
	}
)

// BMR estimates resting energy expenditure with the Mifflin-St Jeor formula.
func BMR(p profile.Profile) float64 {
	offset := bmrMaleOffset
	if p.Sex == profile.SexFemale {
		offset = bmrFemaleOffset
	}
	return bmrWeightFactor*p.WeightKg + bmrHeightFactor*p.HeightCm - bmrAgeFactor*float64(p.Age) + offset
}

// activityMultiplier converts training level and weekly frequency into a
// TDEE multiplier.
func activityMultiplier(level profile.TrainingLevel, weeklyFrequency int) float64 {
	multiplier := activityBase[level] + activityPerTrainingDay*float64(weeklyFrequency)
	return math.Min(multiplier, maxActivityMultiplier)
}

// ComputeBaseTargets converts a profile into the day-type-neutral daily
// nutrition target. It is a pure function of the profile.
func ComputeBaseTargets(p profile.Profile) (MacroTarget, error) {
	if err := p.Validate(); err != nil {
		return MacroTarget{}, fmt.Errorf("compute targets: %w", err)
	}

	tdee := BMR(p) * activityMultiplier(p.TrainingLevel, p.WeeklyFrequency)
	targetCalories := tdee * goalCalorieFactor[p.Goal]

	proteinG := p.WeightKg * proteinPerKg[p.Goal]
	fatG := p.WeightKg * fatPerKg[p.Goal]

	// Carbohydrate absorbs the calories left after protein and fat, floored
	// at zero for very low calorie targets. The calorie field is re-derived
	// from the macro identity so the target is always internally consistent.
	carbG := (targetCalories - proteinG*caloriesPerGramProtein - fatG*caloriesPerGramFat) / caloriesPerGramCarb
	carbG = math.Max(carbG, 0)

	return targetFromMacros(Macros{ProteinG: proteinG, CarbG: carbG, FatG: fatG}), nil
}

// ComputeTargets converts a profile and a day's training status into that
// day's nutrition target. Idempotent for identical inputs.
func ComputeTargets(p profile.Profile, status cycle.Status) (MacroTarget, error) {
	base, err := ComputeBaseTargets(p)
	if err != nil {
		return MacroTarget{}, err
	}
	return AdjustTarget(base, status.Multipliers()), nil
}

// AdjustTarget applies a day type to a base target. Only carbohydrate is
// rescaled; protein and fat stay untouched and calories follow from the
// macro identity.
func AdjustTarget(base MacroTarget, m cycle.Multipliers) MacroTarget {
	return targetFromMacros(Macros{
		ProteinG: base.ProteinG,
		CarbG:    base.CarbG * m.Carbs,
		FatG:     base.FatG,
	})
}
