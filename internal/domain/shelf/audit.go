package shelf

import (
	"strings"

	"github.com/evelynko/skinsight/internal/domain/prescribe"
	"github.com/evelynko/skinsight/internal/domain/skin"
)

// Warning severity levels.
const (
	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
)

// Warning flags one problematic aspect of a product for this user.
type Warning struct {
	Severity   string `json:"severity"`
	Ingredient string `json:"ingredient"`
	Reason     string `json:"reason"`
}

// Audit is the per-product result: warnings plus the score adjusted for the
// user's current metrics. The adjustment is computed on read and never
// persisted back onto the product.
type Audit struct {
	ProductID     string    `json:"productId"`
	Warnings      []Warning `json:"warnings"`
	AdjustedScore int       `json:"adjustedScore"`
	Matches       []string  `json:"prescriptionMatches,omitempty"`
}

const (
	warningPenalty    = 15
	prescriptionBonus = 10
	auditScoreFloor   = 10
	auditScoreCeil    = 100
)

// auditRule fires when the gating channel is below its threshold and the
// product contains any of the flagged fragments.
type auditRule struct {
	channel   skin.Channel
	threshold int
	fragments []string
	severity  string
	reason    string
}

var auditRules = []auditRule{
	{skin.ChannelRedness, 60, []string{"retinol", "glycolic", "aha", "fragrance", "alcohol denat"}, SeverityHigh,
		"Too harsh for reactive skin right now"},
	{skin.ChannelHydration, 55, []string{"denatured alcohol", "alcohol denat", "sd alcohol"}, SeverityHigh,
		"Drying alcohols will worsen dehydration"},
	{skin.ChannelAcneActive, 60, []string{"coconut oil", "isopropyl myristate", "lanolin"}, SeverityMedium,
		"Comedogenic while breakouts are active"},
}

// AuditProduct scores one product against the user's profile. Each fired
// rule subtracts a fixed penalty; matching a currently prescribed ingredient
// adds one flat bonus. The result clamps to [10, 100].
func AuditProduct(p skin.Product, profile skin.UserProfile, rx prescribe.Prescription) Audit {
	audit := Audit{ProductID: p.ID.String()}
	score := p.BaseScore

	for _, rule := range auditRules {
		if profile.Metrics.Channel(rule.channel) >= rule.threshold {
			continue
		}
		for _, fragment := range rule.fragments {
			if p.ContainsIngredient(fragment) {
				audit.Warnings = append(audit.Warnings, Warning{
					Severity:   rule.severity,
					Ingredient: fragment,
					Reason:     rule.reason,
				})
				score -= warningPenalty
				break // one warning per rule, not per fragment
			}
		}
	}

	for _, ing := range rx.Ingredients {
		if p.ContainsIngredient(strings.ToLower(ing.Name)) {
			audit.Matches = append(audit.Matches, ing.Name)
		}
	}
	if len(audit.Matches) > 0 {
		score += prescriptionBonus
	}

	if score < auditScoreFloor {
		score = auditScoreFloor
	}
	if score > auditScoreCeil {
		score = auditScoreCeil
	}
	audit.AdjustedScore = score
	return audit
}

// isRisky marks a product that fired at least one HIGH warning; shelf-level
// scoring penalizes these.
func isRisky(a Audit) bool {
	for _, w := range a.Warnings {
		if w.Severity == SeverityHigh {
			return true
		}
	}
	return false
}
