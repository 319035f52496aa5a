package prescribe

import (
	"sort"

	"github.com/evelynko/skinsight/internal/domain/skin"
)

// Ingredient is one prescribed active with its consumer-facing purpose line.
type Ingredient struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}

// Concern is a ranked skin concern with both its raw health score and the
// adjusted priority score that ordered it. Raw and adjusted stay separate:
// one field means "how healthy", the other "how urgent", and overloading a
// single value for both is exactly the trap this split avoids.
type Concern struct {
	Channel  skin.Channel `json:"channel"`
	Score    int          `json:"score"`
	Adjusted int          `json:"adjusted"`
}

// Prescription is derived on every read from current metrics and
// preferences; it is never cached across metric changes.
type Prescription struct {
	Concerns    []Concern    `json:"concerns"`
	Ingredients []Ingredient `json:"ingredients"`
	Avoid       []string     `json:"avoid"`
}

// Build ranks the 13 concern channels and derives the ingredient
// prescription. Deterministic: identical input yields byte-identical output.
func Build(m skin.Metrics, prefs skin.Preferences) Prescription {
	concerns := rankConcerns(m, prefs)

	top := concerns
	if len(top) > topConcerns {
		top = top[:topConcerns]
	}

	return Prescription{
		Concerns:    top,
		Ingredients: selectIngredients(top),
		Avoid:       buildAvoidList(m),
	}
}

func rankConcerns(m skin.Metrics, prefs skin.Preferences) []Concern {
	nudged := make(map[skin.Channel]bool, skin.MaxGoals)
	for _, goal := range skin.NormalizeGoals(prefs.Goals) {
		if c, ok := goalConcerns[goal]; ok {
			nudged[c] = true
		}
	}

	concerns := make([]Concern, 0, len(skin.ConcernChannels))
	for _, c := range skin.ConcernChannels {
		raw := m.Channel(c)
		adjusted := raw + gravityAdjustments[c]
		if nudged[c] && raw >= goalNudgeRawFloor {
			adjusted += goalNudge
		}
		concerns = append(concerns, Concern{Channel: c, Score: raw, Adjusted: adjusted})
	}

	// Ascending by adjusted score: lowest = most urgent. SliceStable keeps
	// the canonical channel order as the tie-break.
	sort.SliceStable(concerns, func(i, j int) bool {
		return concerns[i].Adjusted < concerns[j].Adjusted
	})
	return concerns
}

func selectIngredients(top []Concern) []Ingredient {
	seen := make(map[string]struct{}, maxIngredients)
	out := make([]Ingredient, 0, maxIngredients)
	for _, concern := range top {
		for _, ing := range concernIngredients[concern.Channel] {
			if _, ok := seen[ing.Name]; ok {
				continue
			}
			seen[ing.Name] = struct{}{}
			out = append(out, ing)
			if len(out) == maxIngredients {
				return out
			}
		}
	}
	return out
}

func buildAvoidList(m skin.Metrics) []string {
	var out []string
	for _, rule := range avoidRules {
		if m.Channel(rule.channel) < rule.threshold {
			out = append(out, rule.entries...)
		}
	}
	if len(out) == 0 {
		out = append(out, defaultAvoid...)
	}
	return out
}
