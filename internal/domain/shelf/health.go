package shelf

import (
	"strings"

	"github.com/evelynko/skinsight/internal/domain/prescribe"
	"github.com/evelynko/skinsight/internal/domain/skin"
)

// Category balance of the whole shelf, each axis normalized to 0-100.
type Balance struct {
	Exfoliant  int `json:"exfoliant"`
	Hydration  int `json:"hydration"`
	Protection int `json:"protection"`
	Treatment  int `json:"treatment"`
}

// Pairing is one detected conflict or synergy across the combined shelf.
type Pairing struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Note   string `json:"note"`
}

// Health is the aggregated shelf report.
type Health struct {
	Score           int       `json:"score"`
	Grade           string    `json:"grade"`
	Balance         Balance   `json:"balance"`
	Conflicts       []Pairing `json:"conflicts,omitempty"`
	Synergies       []Pairing `json:"synergies,omitempty"`
	MissingSteps    []string  `json:"missingSteps,omitempty"`
	RiskyProducts   []string  `json:"riskyProducts,omitempty"`
	CriticalInsight string    `json:"criticalInsight"`
	Audits          []Audit   `json:"audits,omitempty"`
}

// ingredientCategories classify shelf contents by substring.
var ingredientCategories = map[string][]string{
	"exfoliant":  {"glycolic", "lactic", "salicylic", "aha", "bha", "enzyme", "mandelic"},
	"hydration":  {"hyaluronic", "glycerin", "ceramide", "squalane", "panthenol", "urea"},
	"protection": {"spf", "zinc oxide", "titanium dioxide", "vitamin e", "ferulic"},
	"treatment":  {"retinol", "niacinamide", "peptide", "azelaic", "benzoyl", "vitamin c"},
}

// idealCategoryCounts normalize raw counts to a 0-100 balance score.
var idealCategoryCounts = map[string]int{
	"exfoliant":  2,
	"hydration":  3,
	"protection": 2,
	"treatment":  2,
}

var conflictPairs = []Pairing{
	{"retinol", "glycolic", "Retinoids layered with AHA over-exfoliate"},
	{"retinol", "benzoyl", "Benzoyl peroxide deactivates retinol"},
	{"vitamin c", "benzoyl", "Benzoyl peroxide oxidizes vitamin C"},
}

var synergyPairs = []Pairing{
	{"vitamin c", "spf", "Vitamin C boosts daytime UV defense"},
	{"retinol", "hyaluronic", "Hydration buffers retinoid irritation"},
	{"niacinamide", "zinc", "Calms and regulates sebum together"},
}

// essentialSteps must be present on any functional shelf.
var essentialSteps = []skin.ProductType{skin.TypeCleanser, skin.TypeMoisturizer, skin.TypeSPF}

const (
	riskyPenalty    = 15
	conflictPenalty = 20
	missingPenalty  = 10
)

// gradeFor maps a composite score onto the letter scale. Cutoffs are exact:
// 90 is the lowest S, 80 the lowest A, 70 the lowest B, 50 the lowest C.
func gradeFor(score int) string {
	switch {
	case score >= 90:
		return "S"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 50:
		return "C"
	default:
		return "D"
	}
}

// AnalyzeShelfHealth aggregates per-product audits into one balance,
// conflict and grade report for the whole shelf.
func AnalyzeShelfHealth(products []skin.Product, profile skin.UserProfile, rx prescribe.Prescription) Health {
	if len(products) == 0 {
		return Health{Score: 0, Grade: "D", CriticalInsight: "Shelf is empty."}
	}

	h := Health{}
	combined := make([]string, 0, len(products))
	typesPresent := map[skin.ProductType]bool{}
	categoryCounts := map[string]int{}

	for _, p := range products {
		audit := AuditProduct(p, profile, rx)
		h.Audits = append(h.Audits, audit)
		if isRisky(audit) {
			h.RiskyProducts = append(h.RiskyProducts, p.Name)
		}
		combined = append(combined, p.IngredientText())
		typesPresent[p.Type] = true

		for category, fragments := range ingredientCategories {
			for _, fragment := range fragments {
				if p.ContainsIngredient(fragment) {
					categoryCounts[category]++
					break
				}
			}
		}
	}
	shelfText := strings.Join(combined, " | ")

	h.Balance = Balance{
		Exfoliant:  balanceScore(categoryCounts["exfoliant"], idealCategoryCounts["exfoliant"]),
		Hydration:  balanceScore(categoryCounts["hydration"], idealCategoryCounts["hydration"]),
		Protection: balanceScore(categoryCounts["protection"], idealCategoryCounts["protection"]),
		Treatment:  balanceScore(categoryCounts["treatment"], idealCategoryCounts["treatment"]),
	}

	for _, pair := range conflictPairs {
		if strings.Contains(shelfText, pair.First) && strings.Contains(shelfText, pair.Second) {
			h.Conflicts = append(h.Conflicts, pair)
		}
	}
	for _, pair := range synergyPairs {
		if strings.Contains(shelfText, pair.First) && strings.Contains(shelfText, pair.Second) {
			h.Synergies = append(h.Synergies, pair)
		}
	}

	for _, step := range essentialSteps {
		if !typesPresent[step] {
			h.MissingSteps = append(h.MissingSteps, string(step))
		}
	}

	score := 100
	score -= riskyPenalty * len(h.RiskyProducts)
	score -= conflictPenalty * len(h.Conflicts)
	score -= missingPenalty * len(h.MissingSteps)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	h.Score = score
	h.Grade = gradeFor(score)
	h.CriticalInsight = criticalInsight(h, profile, categoryCounts)
	return h
}

func balanceScore(count, ideal int) int {
	if ideal <= 0 {
		return 0
	}
	score := count * 100 / ideal
	if score > 100 {
		score = 100
	}
	return score
}

// criticalInsight picks exactly one sentence by fixed priority: the special
// sensitivity and dryness cases outrank the generic conflict/missing copy.
func criticalInsight(h Health, profile skin.UserProfile, categoryCounts map[string]int) string {
	switch {
	case profile.Metrics.Redness < 60 && categoryCounts["exfoliant"] >= 3:
		return "Your skin is reactive and this shelf over-exfoliates; retire the strongest acid first."
	case profile.Metrics.Hydration < 55 && categoryCounts["hydration"] < 2:
		return "Your skin is dehydrated and the shelf is light on humectants; add a dedicated hydrator."
	case len(h.Conflicts) == 0 && len(h.MissingSteps) == 0 && len(h.RiskyProducts) == 0:
		return "Well-balanced shelf with no conflicts; keep the current lineup."
	case len(h.Conflicts) > 0:
		return "Active conflict detected: " + h.Conflicts[0].Note + "."
	case len(h.MissingSteps) > 0:
		return "Core step missing: add a " + strings.ToLower(h.MissingSteps[0]) + " to complete the routine."
	default:
		return "Solid foundation; swap the flagged products when they run out."
	}
}
