package routine

import (
	"strings"

	"github.com/evelynko/skinsight/internal/domain/prescribe"
	"github.com/evelynko/skinsight/internal/domain/skin"
)

// Recommendation fills one slot: the assigned ingredients, up to two
// alternatives, the formulation descriptor and the benefit line.
type Recommendation struct {
	Slot         Slot     `json:"slot"`
	Ingredients  []string `json:"ingredients"`
	Alternatives []string `json:"alternatives,omitempty"`
	Formulation  string   `json:"formulation"`
	Benefit      string   `json:"benefit"`
	Fallback     bool     `json:"fallback"`
}

// Plan maps every slot (in processing order) to its recommendation. It is
// ephemeral: recomputed from the current prescription and metrics, never
// stored.
type Plan struct {
	SkinType SkinType         `json:"skinType"`
	Slots    []Recommendation `json:"slots"`
}

const maxAlternatives = 2

// Allocate fills the nine fixed slots greedily, one pass, no backtracking.
// Each prescribed ingredient lands in at most one slot system-wide; when a
// slot finds nothing usable it takes its deterministic fallback.
func Allocate(p prescribe.Prescription, m skin.Metrics) Plan {
	st := ClassifySkin(m)
	used := make(map[string]bool, len(p.Ingredients))
	slots := make([]Recommendation, 0, len(slotOrder))

	for _, slot := range slotOrder {
		rec := Recommendation{
			Slot:        slot,
			Formulation: formulations[st][slot.Step],
		}

		primary, alternatives := matchIngredients(p.Ingredients, slot, used)
		if primary != "" {
			used[primary] = true
			rec.Ingredients = []string{primary}
			rec.Alternatives = alternatives
			rec.Benefit = benefitFor(primary, p)
		} else {
			fb := fallbackFor(slot.Step, slot.Time, st)
			rec.Ingredients = fb.ingredients
			rec.Benefit = fb.benefit
			rec.Fallback = true
		}
		slots = append(slots, rec)
	}

	return Plan{SkinType: st, Slots: slots}
}

// matchIngredients scans the prescription in order for unused ingredients
// admissible in this slot. The first becomes the assignment; up to two more
// surface as alternatives without being consumed.
func matchIngredients(prescribed []prescribe.Ingredient, slot Slot, used map[string]bool) (string, []string) {
	var primary string
	var alternatives []string
	for _, ing := range prescribed {
		if used[ing.Name] || !slotAdmits(slot, ing.Name) {
			continue
		}
		if primary == "" {
			primary = ing.Name
			continue
		}
		alternatives = append(alternatives, ing.Name)
		if len(alternatives) == maxAlternatives {
			break
		}
	}
	return primary, alternatives
}

func slotAdmits(slot Slot, name string) bool {
	lower := strings.ToLower(name)

	if slot.Time == AM && containsAny(lower, pmOnlyFragments) {
		return false
	}
	if slot.Time == PM && containsAny(lower, amOnlyFragments) {
		return false
	}

	for _, fragment := range slotVocabulary[slot.Step] {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

func containsAny(s string, fragments []string) bool {
	for _, fragment := range fragments {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}

func benefitFor(name string, p prescribe.Prescription) string {
	for _, ing := range p.Ingredients {
		if ing.Name == name && ing.Purpose != "" {
			return ing.Purpose
		}
	}
	return "Targets your top concerns"
}
