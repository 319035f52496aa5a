package prescribe

import "github.com/evelynko/skinsight/internal/domain/skin"

// concernIngredients maps each concern to its fixed ingredient pick, in the
// order they concatenate into a prescription. Data-driven on purpose: the
// tables are testable without touching the ranking control flow.
var concernIngredients = map[skin.Channel][]Ingredient{
	skin.ChannelAcneActive: {
		{Name: "Salicylic Acid", Purpose: "Unclogs pores and calms breakouts"},
		{Name: "Benzoyl Peroxide", Purpose: "Targets acne bacteria"},
	},
	skin.ChannelAcneScars: {
		{Name: "Niacinamide", Purpose: "Fades post-blemish marks"},
		{Name: "Retinol", Purpose: "Accelerates cell turnover"},
	},
	skin.ChannelPoreSize: {
		{Name: "Niacinamide", Purpose: "Refines visible pores"},
		{Name: "Salicylic Acid", Purpose: "Keeps pores clear"},
	},
	skin.ChannelBlackheads: {
		{Name: "Salicylic Acid", Purpose: "Dissolves sebum plugs"},
		{Name: "Retinol", Purpose: "Prevents re-clogging"},
	},
	skin.ChannelWrinkleFine: {
		{Name: "Retinol", Purpose: "Softens fine lines"},
		{Name: "Peptides", Purpose: "Supports collagen"},
	},
	skin.ChannelWrinkleDeep: {
		{Name: "Retinol", Purpose: "Remodels deeper creases"},
		{Name: "Peptides", Purpose: "Firms over time"},
	},
	skin.ChannelSagging: {
		{Name: "Peptides", Purpose: "Improves elasticity"},
		{Name: "Collagen", Purpose: "Plumps and firms"},
	},
	skin.ChannelPigment: {
		{Name: "Vitamin C", Purpose: "Brightens uneven tone"},
		{Name: "Tranexamic Acid", Purpose: "Fades stubborn spots"},
	},
	skin.ChannelRedness: {
		{Name: "Centella Asiatica", Purpose: "Soothes irritation"},
		{Name: "Azelaic Acid", Purpose: "Calms persistent redness"},
	},
	skin.ChannelTexture: {
		{Name: "Lactic Acid", Purpose: "Gently resurfaces"},
		{Name: "Glycolic Acid", Purpose: "Smooths rough patches"},
	},
	skin.ChannelHydration: {
		{Name: "Hyaluronic Acid", Purpose: "Draws in moisture"},
		{Name: "Ceramides", Purpose: "Repairs the barrier"},
	},
	skin.ChannelOiliness: {
		{Name: "Niacinamide", Purpose: "Regulates sebum"},
		{Name: "Green Tea Extract", Purpose: "Mattifies gently"},
	},
	skin.ChannelDarkCircles: {
		{Name: "Caffeine", Purpose: "Constricts under-eye vessels"},
		{Name: "Vitamin K", Purpose: "Reduces shadow tint"},
	},
}

// gravityAdjustments bias clinically urgent concerns toward the top of the
// queue. Lower adjusted score means higher priority, so the offsets are
// negative. Values are fixed clinical judgment calls, preserved verbatim.
var gravityAdjustments = map[skin.Channel]int{
	skin.ChannelAcneActive: -15,
	skin.ChannelRedness:    -10,
}

// goalConcerns maps a stated user goal onto the concern it nudges.
var goalConcerns = map[string]skin.Channel{
	skin.GoalClearAcne:   skin.ChannelAcneActive,
	skin.GoalYoungerFirm: skin.ChannelWrinkleFine,
	skin.GoalEvenTone:    skin.ChannelPigment,
	skin.GoalCalmRepair:  skin.ChannelRedness,
	skin.GoalHydration:   skin.ChannelHydration,
	skin.GoalOilControl:  skin.ChannelOiliness,
}

const (
	goalNudge = -5

	// Nudges are tie-breakers only: a concern already scoring below this
	// raw floor is urgent on its own and must not be re-ordered by stated
	// preference.
	goalNudgeRawFloor = 50
)

// avoidRule appends a fixed ingredient group when the gating channel falls
// below its threshold.
type avoidRule struct {
	channel   skin.Channel
	threshold int
	entries   []string
}

var avoidRules = []avoidRule{
	{skin.ChannelRedness, 60, []string{"Denatured Alcohol", "Fragrance", "Menthol"}},
	{skin.ChannelHydration, 55, []string{"Drying Alcohols", "High-pH Soap"}},
	{skin.ChannelAcneActive, 60, []string{"Coconut Oil", "Isopropyl Myristate"}},
}

// defaultAvoid guarantees the avoid list is never empty.
var defaultAvoid = []string{"Harsh Physical Scrubs"}

const (
	topConcerns    = 3
	maxIngredients = 4
)
