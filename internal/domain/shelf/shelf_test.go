package shelf

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/evelynko/skinsight/internal/domain/prescribe"
	"github.com/evelynko/skinsight/internal/domain/skin"
)

func profileWith(metrics skin.Metrics) skin.UserProfile {
	return skin.UserProfile{UserID: 1, Name: "Mina", Metrics: metrics}
}

func healthyMetrics() skin.Metrics {
	var m skin.Metrics
	for _, c := range skin.ConcernChannels {
		m.SetChannel(c, 80)
	}
	return m
}

func product(name string, pt skin.ProductType, baseScore int, ingredients ...string) skin.Product {
	return skin.Product{
		ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)),
		Name:        name,
		Type:        pt,
		BaseScore:   baseScore,
		Ingredients: ingredients,
	}
}

func TestAuditHarshProductForReactiveSkin(t *testing.T) {
	metrics := healthyMetrics()
	metrics.Redness = 55
	metrics.AcneActive = 80
	metrics.Hydration = 70
	metrics.Oiliness = 60

	p := product("Night Renewal", skin.TypeSerum, 75, "Water", "Retinol", "Glycerin")
	audit := AuditProduct(p, profileWith(metrics), prescribe.Prescription{})

	require.NotEmpty(t, audit.Warnings)
	require.Equal(t, SeverityHigh, audit.Warnings[0].Severity)
	require.Equal(t, 60, audit.AdjustedScore) // 75 - 15, inside [10, 100]
}

func TestAuditScoreClamps(t *testing.T) {
	metrics := healthyMetrics()
	metrics.Redness = 40
	metrics.Hydration = 40
	metrics.AcneActive = 40

	p := product("Kitchen Sink", skin.TypeSerum, 20,
		"Retinol", "Alcohol Denat.", "Coconut Oil", "Fragrance")
	audit := AuditProduct(p, profileWith(metrics), prescribe.Prescription{})
	require.Equal(t, 10, audit.AdjustedScore)

	rx := prescribe.Prescription{Ingredients: []prescribe.Ingredient{{Name: "Niacinamide"}}}
	good := product("Calm Serum", skin.TypeSerum, 95, "Niacinamide", "Water")
	audit = AuditProduct(good, profileWith(healthyMetrics()), rx)
	require.Equal(t, 100, audit.AdjustedScore)
	require.Equal(t, []string{"Niacinamide"}, audit.Matches)
}

func TestGradeBoundaries(t *testing.T) {
	cases := map[int]string{
		90: "S",
		89: "A",
		80: "A",
		79: "B",
		70: "B",
		69: "C",
		50: "C",
		49: "D",
	}
	for score, want := range cases {
		require.Equal(t, want, gradeFor(score), "score=%d", score)
	}
}

func TestAnalyzeShelfHealthEmpty(t *testing.T) {
	h := AnalyzeShelfHealth(nil, profileWith(healthyMetrics()), prescribe.Prescription{})
	require.Equal(t, 0, h.Score)
	require.Equal(t, "D", h.Grade)
	require.Equal(t, "Shelf is empty.", h.CriticalInsight)
}

func TestAnalyzeShelfHealthBalancedShelf(t *testing.T) {
	products := []skin.Product{
		product("Gel Wash", skin.TypeCleanser, 80, "Water", "Glycerin"),
		product("Daily Cream", skin.TypeMoisturizer, 82, "Ceramide NP", "Squalane"),
		product("Sun Shield", skin.TypeSPF, 85, "Zinc Oxide", "Vitamin E"),
	}
	h := AnalyzeShelfHealth(products, profileWith(healthyMetrics()), prescribe.Prescription{})
	require.Equal(t, 100, h.Score)
	require.Equal(t, "S", h.Grade)
	require.Empty(t, h.Conflicts)
	require.Empty(t, h.MissingSteps)
	require.Equal(t, "Well-balanced shelf with no conflicts; keep the current lineup.", h.CriticalInsight)
}

func TestAnalyzeShelfHealthConflictAndMissing(t *testing.T) {
	products := []skin.Product{
		product("Retinol Night", skin.TypeTreatment, 78, "Retinol", "Squalane"),
		product("Acid Toner", skin.TypeToner, 74, "Glycolic Acid"),
	}
	h := AnalyzeShelfHealth(products, profileWith(healthyMetrics()), prescribe.Prescription{})

	require.Len(t, h.Conflicts, 1)
	require.Equal(t, []string{"CLEANSER", "MOISTURIZER", "SPF"}, h.MissingSteps)
	// 100 - 20 (conflict) - 30 (three missing steps) = 50
	require.Equal(t, 50, h.Score)
	require.Equal(t, "C", h.Grade)
}

func TestCriticalInsightPriority(t *testing.T) {
	reactive := healthyMetrics()
	reactive.Redness = 50
	products := []skin.Product{
		product("Acid Toner", skin.TypeToner, 70, "Glycolic Acid"),
		product("Peel Pads", skin.TypeTreatment, 70, "Lactic Acid"),
		product("BHA Wash", skin.TypeCleanser, 70, "Salicylic Acid"),
	}
	h := AnalyzeShelfHealth(products, profileWith(reactive), prescribe.Prescription{})
	require.Contains(t, h.CriticalInsight, "over-exfoliates")
}

func TestBuyingDecisionVerdicts(t *testing.T) {
	profile := profileWith(healthyMetrics())
	rx := prescribe.Prescription{}

	// No same-type rival: BUY.
	candidate := product("First Serum", skin.TypeSerum, 80, "Niacinamide")
	d := BuyingDecision(candidate, nil, profile, rx)
	require.Equal(t, VerdictBuy, d.Verdict)

	// Low adjusted score: AVOID.
	reactive := healthyMetrics()
	reactive.Redness = 40
	reactive.Hydration = 40
	harsh := product("Harsh Peel", skin.TypeTreatment, 45, "Glycolic Acid", "Alcohol Denat.")
	d = BuyingDecision(harsh, nil, profileWith(reactive), rx)
	require.Equal(t, VerdictAvoid, d.Verdict)

	// Conflicts with the shelf: CAUTION.
	shelf := []skin.Product{product("Retinol Night", skin.TypeTreatment, 80, "Retinol")}
	acid := product("Acid Toner", skin.TypeToner, 80, "Glycolic Acid")
	d = BuyingDecision(acid, shelf, profile, rx)
	require.Equal(t, VerdictCaution, d.Verdict)

	// Significantly better same-type product: SWAP.
	shelf = []skin.Product{product("Old Serum", skin.TypeSerum, 60, "Water")}
	better := product("New Serum", skin.TypeSerum, 90, "Niacinamide")
	d = BuyingDecision(better, shelf, profile, rx)
	require.Equal(t, VerdictSwap, d.Verdict)
	require.Equal(t, "Old Serum", d.RivalName)

	// Significantly worse: SKIP.
	worse := product("Budget Serum", skin.TypeSerum, 45, "Water", "Niacinamide")
	shelf = []skin.Product{product("Great Serum", skin.TypeSerum, 90, "Niacinamide")}
	d = BuyingDecision(worse, shelf, profile, rx)
	require.Equal(t, VerdictSkip, d.Verdict)

	// Within the significance band: COMPARE.
	similar := product("Peer Serum", skin.TypeSerum, 85, "Niacinamide")
	d = BuyingDecision(similar, shelf, profile, rx)
	require.Equal(t, VerdictCompare, d.Verdict)
}
