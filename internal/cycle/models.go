// Package cycle tracks per-date training status and the multipliers used to
// rescale daily nutrition targets.
package cycle

import (
	"fmt"
	"time"

	"github.com/mtoivane/valmento/internal/errors"
)

// ErrAlreadyMarked means the date was already marked as a training day.
// The rest -> training transition is one-way and rejects re-marking.
var ErrAlreadyMarked = errors.NewSentinel("training day already marked")

// Phase identifies the training-cycle phase of a date.
type Phase string

// PhaseNormal is any date outside a configured peak-week window.
const PhaseNormal Phase = "normal"

// PeakPhase returns the phase identifier for the k-th peak-week day (1-based).
func PeakPhase(k int) Phase {
	return Phase(fmt.Sprintf("peak_week_phase_%d", k))
}

// Status is the training state of one calendar date.
type Status struct {
	Date    time.Time `json:"date"`
	Trained bool      `json:"trained"`
	Phase   Phase     `json:"phase"`
}

// Multipliers rescale calorie and carbohydrate targets for a day type.
// Protein and fat are never rescaled by day type.
type Multipliers struct {
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
}

// Day-type multiplier table.
var (
	trainingMultipliers = Multipliers{Calories: 1.05, Carbs: 1.15}
	restMultipliers     = Multipliers{Calories: 0.95, Carbs: 0.80}
)

// Hydration is the daily water and sodium guidance for a date.
type Hydration struct {
	WaterL   float64 `json:"water_l"`
	SodiumMg float64 `json:"sodium_mg"`
}

// Hard safety floors applied after any phase arithmetic.
const (
	MinWaterL   = 2.0
	MinSodiumMg = 500.0
)

// peakPhaseParams holds the per-phase adjustments of the peak-week sequence.
type peakPhaseParams struct {
	multipliers Multipliers
	hydration   Hydration
}

// peakWeekPhases is the ordered pre-event sequence: three depletion days,
// two loading days, one moderation day, and the event day. Water tapers and
// sodium drops towards the event; the safety floors clamp the tail values.
var peakWeekPhases = [7]peakPhaseParams{
	{multipliers: Multipliers{Calories: 0.90, Carbs: 0.50}, hydration: Hydration{WaterL: 7.0, SodiumMg: 3000}},
	{multipliers: Multipliers{Calories: 0.90, Carbs: 0.50}, hydration: Hydration{WaterL: 6.0, SodiumMg: 3000}},
	{multipliers: Multipliers{Calories: 0.90, Carbs: 0.50}, hydration: Hydration{WaterL: 5.0, SodiumMg: 2500}},
	{multipliers: Multipliers{Calories: 1.10, Carbs: 1.80}, hydration: Hydration{WaterL: 4.0, SodiumMg: 2000}},
	{multipliers: Multipliers{Calories: 1.10, Carbs: 2.00}, hydration: Hydration{WaterL: 3.0, SodiumMg: 1500}},
	{multipliers: Multipliers{Calories: 1.00, Carbs: 1.00}, hydration: Hydration{WaterL: 1.5, SodiumMg: 800}},
	{multipliers: Multipliers{Calories: 1.00, Carbs: 1.20}, hydration: Hydration{WaterL: 0.5, SodiumMg: 300}},
}

// peakPhaseIndex returns the 0-based phase table index for a phase, or -1 for
// phases outside the peak-week sequence.
func peakPhaseIndex(phase Phase) int {
	for k := range peakWeekPhases {
		if PeakPhase(k+1) == phase {
			return k
		}
	}
	return -1
}

// Multipliers returns the calorie/carb multipliers for the date's state.
// Peak-week phases override the standard day-type table.
func (s Status) Multipliers() Multipliers {
	if idx := peakPhaseIndex(s.Phase); idx >= 0 {
		return peakWeekPhases[idx].multipliers
	}
	if s.Trained {
		return trainingMultipliers
	}
	return restMultipliers
}

// Hydration returns the water and sodium guidance for the date's state,
// clamped up to the safety floors.
func (s Status) Hydration() Hydration {
	h := Hydration{WaterL: 2.5, SodiumMg: 1500}
	if s.Trained {
		h.WaterL = 3.0
	}
	if idx := peakPhaseIndex(s.Phase); idx >= 0 {
		h = peakWeekPhases[idx].hydration
	}
	if h.WaterL < MinWaterL {
		h.WaterL = MinWaterL
	}
	if h.SodiumMg < MinSodiumMg {
		h.SodiumMg = MinSodiumMg
	}
	return h
}
