package routine

import "github.com/evelynko/skinsight/internal/domain/skin"

// TimeOfDay is half of a slot key.
type TimeOfDay string

const (
	AM TimeOfDay = "AM"
	PM TimeOfDay = "PM"
)

// StepType is the routine step a slot fills.
type StepType string

const (
	StepCleanser    StepType = "CLEANSER"
	StepToner       StepType = "TONER"
	StepSerum       StepType = "SERUM"
	StepTreatment   StepType = "TREATMENT"
	StepMoisturizer StepType = "MOISTURIZER"
	StepSPF         StepType = "SPF"
)

// Slot is a (step, time) pair.
type Slot struct {
	Step StepType  `json:"step"`
	Time TimeOfDay `json:"time"`
}

// slotOrder is the fixed greedy processing order. PM actives are allocated
// first, so when an ingredient could serve several slots the PM slot wins
// the scarce ingredient. Reordering this list changes allocations.
var slotOrder = []Slot{
	{StepSerum, PM},
	{StepCleanser, PM},
	{StepTreatment, PM},
	{StepSerum, AM},
	{StepCleanser, AM},
	{StepToner, AM},
	{StepSPF, AM},
	{StepToner, PM},
	{StepMoisturizer, PM},
}

// SkinType is the coarse classification steering formulation choices.
type SkinType string

const (
	SkinOily      SkinType = "oily"
	SkinDry       SkinType = "dry"
	SkinSensitive SkinType = "sensitive"
	SkinBalanced  SkinType = "balanced"
)

// slotVocabulary lists the ingredient-name fragments each step type accepts
// from the prescription. Matching is case-insensitive substring.
var slotVocabulary = map[StepType][]string{
	StepSerum:       {"vitamin c", "niacinamide", "hyaluronic", "peptide", "tranexamic", "caffeine", "azelaic", "green tea"},
	StepCleanser:    {"salicylic", "glycolic", "lactic", "tea tree", "benzoyl"},
	StepTreatment:   {"retinol", "retinoid", "benzoyl", "azelaic", "glycolic", "lactic", "salicylic"},
	StepToner:       {"glycolic", "lactic", "witch hazel", "centella", "green tea", "hyaluronic"},
	StepMoisturizer: {"ceramide", "hyaluronic", "peptide", "collagen", "centella", "squalane"},
	StepSPF:         nil, // SPF always comes from the fallback
}

// pmOnlyFragments name actives that photo-degrade or photosensitize; they
// may never land in an AM slot.
var pmOnlyFragments = []string{"retinol", "retinoid", "glycolic", "lactic", "aha"}

// amOnlyFragments belong to the morning routine.
var amOnlyFragments = []string{"vitamin c", "spf"}

// formulations crosses skin type with step type into a consumer-facing
// formulation descriptor.
var formulations = map[SkinType]map[StepType]string{
	SkinOily: {
		StepCleanser:    "Foaming Gel",
		StepToner:       "Clarifying Mist",
		StepSerum:       "Lightweight Fluid",
		StepTreatment:   "Targeted Gel",
		StepMoisturizer: "Oil-Free Gel-Cream",
		StepSPF:         "Matte Fluid SPF 50",
	},
	SkinDry: {
		StepCleanser:    "Creamy Non-Foaming",
		StepToner:       "Hydrating Essence",
		StepSerum:       "Rich Concentrate",
		StepTreatment:   "Buffered Cream",
		StepMoisturizer: "Barrier Balm",
		StepSPF:         "Moisturizing Cream SPF 50",
	},
	SkinSensitive: {
		StepCleanser:    "Low-pH Gentle Wash",
		StepToner:       "Soothing Mist",
		StepSerum:       "Minimal Formula",
		StepTreatment:   "Low-Strength Buffered",
		StepMoisturizer: "Fragrance-Free Cream",
		StepSPF:         "Mineral SPF 50",
	},
	SkinBalanced: {
		StepCleanser:    "Balanced Gel-Cream",
		StepToner:       "Light Hydrating Mist",
		StepSerum:       "Water-Light Serum",
		StepTreatment:   "Standard Strength",
		StepMoisturizer: "Daily Lotion",
		StepSPF:         "Broad-Spectrum SPF 50",
	},
}

// slotFallback is the deterministic default when no prescribed ingredient
// fits the slot.
type slotFallback struct {
	ingredients []string
	benefit     string
}

func fallbackFor(step StepType, tod TimeOfDay, st SkinType) slotFallback {
	switch step {
	case StepCleanser:
		if st == SkinOily {
			return slotFallback{[]string{"Salicylic Acid", "Tea Tree"}, "Oil Control"}
		}
		return slotFallback{[]string{"Glycerin", "Ceramides"}, "Gentle Cleansing"}
	case StepSerum:
		if tod == AM {
			return slotFallback{[]string{"Vitamin C"}, "Antioxidant Defense"}
		}
		return slotFallback{[]string{"Hyaluronic Acid"}, "Barrier Hydration"}
	case StepTreatment:
		return slotFallback{[]string{"Bakuchiol"}, "Gentle Renewal"}
	case StepToner:
		return slotFallback{[]string{"Panthenol"}, "Soothing Prep"}
	case StepSPF:
		return slotFallback{[]string{"Zinc Oxide SPF 50"}, "UV Protection"}
	case StepMoisturizer:
		if st == SkinDry {
			return slotFallback{[]string{"Shea Butter", "Ceramides"}, "Deep Moisture"}
		}
		return slotFallback{[]string{"Ceramides", "Glycerin"}, "Daily Moisture"}
	}
	return slotFallback{nil, ""}
}

// ClassifySkin derives the coarse skin type from canonical metrics. The
// checks run in listed order and the first match wins.
func ClassifySkin(m skin.Metrics) SkinType {
	switch {
	case m.Oiliness < 50:
		return SkinOily
	case m.Hydration < 55 || m.Oiliness > 80:
		return SkinDry
	case m.Redness < 60:
		return SkinSensitive
	default:
		return SkinBalanced
	}
}
