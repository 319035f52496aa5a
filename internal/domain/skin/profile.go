package skin

import "time"

// Goal labels match the onboarding flow verbatim; they key the preference
// nudges in the prescription engine.
const (
	GoalClearAcne   = "Clear Acne & Blemishes"
	GoalYoungerFirm = "Look Younger & Firm"
	GoalEvenTone    = "Even Tone & Glow"
	GoalCalmRepair  = "Calm & Repair"
	GoalHydration   = "Deep Hydration"
	GoalOilControl  = "Oil & Pore Control"
)

// SensitivityLevel grades how reactive the user reports their skin to be.
type SensitivityLevel string

const (
	SensitivityLow    SensitivityLevel = "low"
	SensitivityMedium SensitivityLevel = "medium"
	SensitivityHigh   SensitivityLevel = "high"
)

// RoutineComplexity captures how many steps the user is willing to run.
type RoutineComplexity string

const (
	ComplexityMinimal  RoutineComplexity = "minimal"
	ComplexityBalanced RoutineComplexity = "balanced"
	ComplexityFull     RoutineComplexity = "full"
)

// Preferences are mutated via the setup flow and consulted on every derived
// computation. Goals hold at most two priority labels, in order.
type Preferences struct {
	Goals            []string          `json:"goals"`
	Sensitivity      SensitivityLevel  `json:"sensitivity"`
	Complexity       RoutineComplexity `json:"complexity"`
	WearsSunscreen   bool              `json:"wearsSunscreen"`
	LifestyleFactors []string          `json:"lifestyleFactors"`
	BuyingPriority   string            `json:"buyingPriority"`
}

// MaxGoals bounds the ordered priority set.
const MaxGoals = 2

// NormalizeGoals trims, dedupes and caps the goal list.
func NormalizeGoals(goals []string) []string {
	seen := make(map[string]struct{}, len(goals))
	out := make([]string, 0, MaxGoals)
	for _, g := range goals {
		if g == "" {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
		if len(out) == MaxGoals {
			break
		}
	}
	return out
}

// UserProfile binds identity, the current canonical biometrics and the
// stated preferences. Biometrics are replaced wholesale on every rescan;
// there is no partial-field mutation.
type UserProfile struct {
	UserID      int64       `json:"userId"`
	Name        string      `json:"name"`
	Age         int         `json:"age"`
	Metrics     Metrics     `json:"metrics"`
	Preferences Preferences `json:"preferences"`
	ScannedAt   time.Time   `json:"scannedAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
