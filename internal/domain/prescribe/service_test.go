package prescribe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evelynko/skinsight/internal/domain/skin"
)

func healthyBaseline() skin.Metrics {
	var m skin.Metrics
	for _, c := range skin.ConcernChannels {
		m.SetChannel(c, 85)
	}
	return m
}

func TestBuildDeterministic(t *testing.T) {
	m := healthyBaseline()
	m.AcneActive = 55
	m.Hydration = 48
	prefs := skin.Preferences{Goals: []string{skin.GoalClearAcne, skin.GoalHydration}}

	first := Build(m, prefs)
	second := Build(m, prefs)
	require.Equal(t, first, second)
	require.Len(t, first.Concerns, 3)
}

func TestAcneGravityWinsNearTies(t *testing.T) {
	// acneActive 40 is not the numeric minimum after redness drops, but the
	// -15 gravity offset ranks it first whenever a rival sits within 15
	// points above it.
	m := healthyBaseline()
	m.AcneActive = 40
	m.Redness = 75
	m.Hydration = 75
	m.Pigmentation = 38

	p := Build(m, skin.Preferences{})
	require.Equal(t, skin.ChannelAcneActive, p.Concerns[0].Channel)
}

func TestGoalNudgeIsTieBreakOnly(t *testing.T) {
	m := healthyBaseline()
	m.WrinkleFine = 70
	m.Pigmentation = 70

	// Without a goal, canonical channel order ranks wrinkleFine ahead of
	// pigmentation at equal scores.
	base := Build(m, skin.Preferences{})
	idxOf := func(p Prescription, c skin.Channel) int {
		for i, concern := range p.Concerns {
			if concern.Channel == c {
				return i
			}
		}
		return -1
	}
	require.Less(t, idxOf(base, skin.ChannelWrinkleFine), idxOf(base, skin.ChannelPigment))

	// The Even Tone goal flips the tie.
	toned := Build(m, skin.Preferences{Goals: []string{skin.GoalEvenTone}})
	require.Less(t, idxOf(toned, skin.ChannelPigment), idxOf(toned, skin.ChannelWrinkleFine))
}

func TestGoalNudgeSkipsLowRawScores(t *testing.T) {
	m := healthyBaseline()
	m.Pigmentation = 45 // below the nudge floor

	with := Build(m, skin.Preferences{Goals: []string{skin.GoalEvenTone}})
	without := Build(m, skin.Preferences{})
	require.Equal(t, without.Concerns, with.Concerns)
}

func TestIngredientsCappedAndDeduped(t *testing.T) {
	// blackheads, poreSize and acneActive all map to Salicylic Acid; the
	// prescription must carry it once.
	m := healthyBaseline()
	m.AcneActive = 30
	m.Blackheads = 32
	m.PoreSize = 34

	p := Build(m, skin.Preferences{})
	require.LessOrEqual(t, len(p.Ingredients), 4)
	seen := map[string]int{}
	for _, ing := range p.Ingredients {
		seen[ing.Name]++
	}
	for name, count := range seen {
		require.Equal(t, 1, count, "duplicate ingredient %s", name)
	}
	require.Contains(t, seen, "Salicylic Acid")
}

func TestAvoidListNeverEmpty(t *testing.T) {
	cases := []skin.Metrics{
		healthyBaseline(),
		{}, // all zero
		func() skin.Metrics {
			m := healthyBaseline()
			m.Redness = 55
			return m
		}(),
	}
	for _, m := range cases {
		p := Build(m, skin.Preferences{})
		require.NotEmpty(t, p.Avoid)
	}
}

func TestAvoidThresholdRules(t *testing.T) {
	m := healthyBaseline()
	m.Redness = 55
	p := Build(m, skin.Preferences{})
	require.Contains(t, p.Avoid, "Fragrance")

	m = healthyBaseline()
	p = Build(m, skin.Preferences{})
	require.Equal(t, []string{"Harsh Physical Scrubs"}, p.Avoid)
}
