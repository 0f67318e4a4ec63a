package diet_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mtoivane/valmento/internal/cycle"
	"github.com/mtoivane/valmento/internal/diet"
	"github.com/mtoivane/valmento/internal/profile"
)

func bulkingProfile() profile.Profile {
	return profile.Profile{
		Age:             25,
		Sex:             profile.SexMale,
		HeightCm:        170,
		WeightKg:        55,
		Goal:            profile.GoalBulking,
		TrainingLevel:   profile.LevelIntermediate,
		WeeklyFrequency: 4,
		SessionMinutes:  60,
	}
}

func Test_ComputeBaseTargets_GoldenValues(t *testing.T) {
	// 55 kg, 170 cm, 25 y male: BMR 1492.5, activity 1.55, bulking +15%.
	target, err := diet.ComputeBaseTargets(bulkingProfile())
	if err != nil {
		t.Fatalf("Failed to compute targets: %v", err)
	}

	if got := diet.BMR(bulkingProfile()); math.Abs(got-1492.5) > 0.01 {
		t.Errorf("BMR = %.2f, want 1492.50", got)
	}

	wantCalories := 1492.5 * 1.55 * 1.15
	if relativeError(target.Calories, wantCalories) > 0.01 {
		t.Errorf("Calories = %.1f, want %.1f within 1%%", target.Calories, wantCalories)
	}
	if target.ProteinG != 55*1.6 {
		t.Errorf("ProteinG = %.1f, want %.1f", target.ProteinG, 55*1.6)
	}
	if target.FatG != 55*1.0 {
		t.Errorf("FatG = %.1f, want %.1f", target.FatG, 55*1.0)
	}

	// The calorie field always equals the macro identity.
	identity := target.ProteinG*4 + target.CarbG*4 + target.FatG*9
	if math.Abs(target.Calories-identity) > 1e-9 {
		t.Errorf("Calories %.4f does not match macro identity %.4f", target.Calories, identity)
	}
}

func Test_ComputeBaseTargets_FemaleMaintenance(t *testing.T) {
	p := profile.Profile{
		Age:             30,
		Sex:             profile.SexFemale,
		HeightCm:        165,
		WeightKg:        60,
		Goal:            profile.GoalMaintenance,
		TrainingLevel:   profile.LevelBeginner,
		WeeklyFrequency: 3,
		SessionMinutes:  45,
	}
	target, err := diet.ComputeBaseTargets(p)
	if err != nil {
		t.Fatalf("Failed to compute targets: %v", err)
	}

	// BMR 1320.25, activity 1.35, no goal adjustment.
	wantCalories := 1320.25 * 1.35
	if relativeError(target.Calories, wantCalories) > 0.01 {
		t.Errorf("Calories = %.1f, want %.1f within 1%%", target.Calories, wantCalories)
	}
	if target.ProteinG != 60*1.8 {
		t.Errorf("ProteinG = %.1f, want %.1f", target.ProteinG, 60*1.8)
	}
}

func Test_ComputeTargets_Idempotent(t *testing.T) {
	p := bulkingProfile()
	status := cycle.Status{Trained: true, Phase: cycle.PhaseNormal}

	first, err := diet.ComputeTargets(p, status)
	if err != nil {
		t.Fatalf("Failed to compute targets: %v", err)
	}
	second, err := diet.ComputeTargets(p, status)
	if err != nil {
		t.Fatalf("Failed to compute targets: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("ComputeTargets is not idempotent (-first +second):\n%s", diff)
	}
}

func Test_ComputeTargets_DayTypeMonotonicity(t *testing.T) {
	p := bulkingProfile()

	base, err := diet.ComputeBaseTargets(p)
	if err != nil {
		t.Fatalf("Failed to compute base targets: %v", err)
	}
	training, err := diet.ComputeTargets(p, cycle.Status{Trained: true, Phase: cycle.PhaseNormal})
	if err != nil {
		t.Fatalf("Failed to compute training targets: %v", err)
	}
	rest, err := diet.ComputeTargets(p, cycle.Status{Trained: false, Phase: cycle.PhaseNormal})
	if err != nil {
		t.Fatalf("Failed to compute rest targets: %v", err)
	}

	if training.Calories < base.Calories || training.CarbG < base.CarbG {
		t.Errorf("Training day should not lower targets: base %.1f kcal/%.1f g, got %.1f kcal/%.1f g",
			base.Calories, base.CarbG, training.Calories, training.CarbG)
	}
	if rest.Calories > base.Calories || rest.CarbG > base.CarbG {
		t.Errorf("Rest day should not raise targets: base %.1f kcal/%.1f g, got %.1f kcal/%.1f g",
			base.Calories, base.CarbG, rest.Calories, rest.CarbG)
	}

	// Protein and fat never move with day type.
	for _, adjusted := range []diet.MacroTarget{training, rest} {
		if adjusted.ProteinG != base.ProteinG || adjusted.FatG != base.FatG {
			t.Errorf("Protein/fat changed with day type: base %.1f/%.1f, got %.1f/%.1f",
				base.ProteinG, base.FatG, adjusted.ProteinG, adjusted.FatG)
		}
	}
}

func Test_AdjustTarget_CarbMultiplier(t *testing.T) {
	base := diet.MacroTarget{Calories: 2000, ProteinG: 150, CarbG: 200, FatG: 60}

	adjusted := diet.AdjustTarget(base, cycle.Multipliers{Calories: 1.05, Carbs: 1.15})
	if adjusted.CarbG != 200*1.15 {
		t.Errorf("CarbG = %.1f, want %.1f", adjusted.CarbG, 200*1.15)
	}
	identity := adjusted.ProteinG*4 + adjusted.CarbG*4 + adjusted.FatG*9
	if math.Abs(adjusted.Calories-identity) > 1e-9 {
		t.Errorf("Adjusted calories %.4f does not match macro identity %.4f", adjusted.Calories, identity)
	}
}

func Test_ComputeBaseTargets_InvalidProfile(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*profile.Profile)
	}{
		{"non-positive weight", func(p *profile.Profile) { p.WeightKg = 0 }},
		{"non-positive height", func(p *profile.Profile) { p.HeightCm = -170 }},
		{"non-positive age", func(p *profile.Profile) { p.Age = 0 }},
		{"frequency out of range", func(p *profile.Profile) { p.WeeklyFrequency = 8 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := bulkingProfile()
			tt.mutate(&p)
			if _, err := diet.ComputeBaseTargets(p); !errors.Is(err, profile.ErrInvalidParameters) {
				t.Errorf("Expected ErrInvalidParameters, got %v", err)
			}
		})
	}
}

func relativeError(got, want float64) float64 {
	return math.Abs(got-want) / want
}
