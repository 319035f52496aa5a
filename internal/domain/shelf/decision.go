package shelf

import (
	"strings"

	"github.com/evelynko/skinsight/internal/domain/prescribe"
	"github.com/evelynko/skinsight/internal/domain/skin"
)

// Verdicts for a prospective purchase.
const (
	VerdictBuy     = "BUY"
	VerdictAvoid   = "AVOID"
	VerdictCaution = "CAUTION"
	VerdictSwap    = "SWAP"
	VerdictSkip    = "SKIP"
	VerdictCompare = "COMPARE"
)

// Decision is the outcome of weighing a candidate product against the
// user's profile and existing shelf.
type Decision struct {
	Verdict       string `json:"verdict"`
	Reason        string `json:"reason"`
	AdjustedScore int    `json:"adjustedScore"`
	RivalName     string `json:"rivalName,omitempty"`
	RivalScore    int    `json:"rivalScore,omitempty"`
}

const (
	avoidScoreCutoff      = 40
	significanceThreshold = 10
)

// BuyingDecision audits the candidate, checks it against shelf-wide
// conflicts, then compares it with the best existing product of the same
// type. The ±10 band decides between SWAP, SKIP and COMPARE.
func BuyingDecision(candidate skin.Product, shelf []skin.Product, profile skin.UserProfile, rx prescribe.Prescription) Decision {
	audit := AuditProduct(candidate, profile, rx)
	d := Decision{AdjustedScore: audit.AdjustedScore}

	if audit.AdjustedScore < avoidScoreCutoff {
		d.Verdict = VerdictAvoid
		d.Reason = "Scores too low for your current skin state"
		return d
	}

	if conflictsWithShelf(candidate, shelf) {
		d.Verdict = VerdictCaution
		d.Reason = "Clashes with actives already on your shelf"
		return d
	}

	rivalName, rivalScore, found := bestSameType(candidate, shelf, profile, rx)
	if !found {
		d.Verdict = VerdictBuy
		d.Reason = "Fills a gap in your routine"
		return d
	}

	d.RivalName = rivalName
	d.RivalScore = rivalScore
	switch {
	case audit.AdjustedScore >= rivalScore+significanceThreshold:
		d.Verdict = VerdictSwap
		d.Reason = "Meaningful upgrade over " + rivalName
	case audit.AdjustedScore <= rivalScore-significanceThreshold:
		d.Verdict = VerdictSkip
		d.Reason = rivalName + " already serves you better"
	default:
		d.Verdict = VerdictCompare
		d.Reason = "Too close to " + rivalName + " to justify on score alone"
	}
	return d
}

// conflictsWithShelf checks the fixed conflict pairs with one side in the
// candidate and the other anywhere on the shelf.
func conflictsWithShelf(candidate skin.Product, shelf []skin.Product) bool {
	candidateText := candidate.IngredientText()
	var shelfText strings.Builder
	for _, p := range shelf {
		shelfText.WriteString(p.IngredientText())
		shelfText.WriteString(" | ")
	}
	existing := shelfText.String()

	for _, pair := range conflictPairs {
		if strings.Contains(candidateText, pair.First) && strings.Contains(existing, pair.Second) {
			return true
		}
		if strings.Contains(candidateText, pair.Second) && strings.Contains(existing, pair.First) {
			return true
		}
	}
	return false
}

func bestSameType(candidate skin.Product, shelf []skin.Product, profile skin.UserProfile, rx prescribe.Prescription) (string, int, bool) {
	var (
		bestName  string
		bestScore int
		found     bool
	)
	for _, p := range shelf {
		if p.Type != candidate.Type || p.Type == skin.TypeUnknown {
			continue
		}
		score := AuditProduct(p, profile, rx).AdjustedScore
		if !found || score > bestScore {
			bestName = p.Name
			bestScore = score
			found = true
		}
	}
	return bestName, bestScore, found
}
