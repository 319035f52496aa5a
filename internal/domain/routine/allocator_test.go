package routine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evelynko/skinsight/internal/domain/prescribe"
	"github.com/evelynko/skinsight/internal/domain/skin"
)

func balancedMetrics() skin.Metrics {
	var m skin.Metrics
	for _, c := range skin.ConcernChannels {
		m.SetChannel(c, 75)
	}
	return m
}

func prescriptionOf(names ...string) prescribe.Prescription {
	p := prescribe.Prescription{}
	for _, n := range names {
		p.Ingredients = append(p.Ingredients, prescribe.Ingredient{Name: n, Purpose: n + " purpose"})
	}
	return p
}

func TestAllocateFillsAllSlots(t *testing.T) {
	plan := Allocate(prescriptionOf("Retinol", "Niacinamide", "Salicylic Acid", "Hyaluronic Acid"), balancedMetrics())
	require.Len(t, plan.Slots, 9)
	for _, rec := range plan.Slots {
		require.NotEmpty(t, rec.Ingredients, "slot %v", rec.Slot)
		require.NotEmpty(t, rec.Formulation, "slot %v", rec.Slot)
		require.NotEmpty(t, rec.Benefit, "slot %v", rec.Slot)
	}
}

func TestAllocateNoIngredientReuse(t *testing.T) {
	plan := Allocate(prescriptionOf("Salicylic Acid", "Niacinamide", "Retinol", "Hyaluronic Acid"), balancedMetrics())
	assigned := map[string]Slot{}
	for _, rec := range plan.Slots {
		if rec.Fallback {
			continue
		}
		for _, name := range rec.Ingredients {
			prev, dup := assigned[name]
			require.False(t, dup, "%s assigned to both %v and %v", name, prev, rec.Slot)
			assigned[name] = rec.Slot
		}
	}
}

func TestPMSerumWinsScarceIngredient(t *testing.T) {
	// Niacinamide fits both serum slots; PM serum is processed first and
	// must win it.
	plan := Allocate(prescriptionOf("Niacinamide"), balancedMetrics())
	bySlot := map[Slot]Recommendation{}
	for _, rec := range plan.Slots {
		bySlot[rec.Slot] = rec
	}
	pmSerum := bySlot[Slot{StepSerum, PM}]
	require.False(t, pmSerum.Fallback)
	require.Equal(t, []string{"Niacinamide"}, pmSerum.Ingredients)

	amSerum := bySlot[Slot{StepSerum, AM}]
	require.True(t, amSerum.Fallback)
}

func TestRetinolNeverInAM(t *testing.T) {
	plan := Allocate(prescriptionOf("Retinol"), balancedMetrics())
	for _, rec := range plan.Slots {
		if rec.Slot.Time != AM || rec.Fallback {
			continue
		}
		require.NotContains(t, rec.Ingredients, "Retinol", "slot %v", rec.Slot)
	}
}

func TestVitaminCNeverInPM(t *testing.T) {
	plan := Allocate(prescriptionOf("Vitamin C"), balancedMetrics())
	bySlot := map[Slot]Recommendation{}
	for _, rec := range plan.Slots {
		bySlot[rec.Slot] = rec
	}
	require.True(t, bySlot[Slot{StepSerum, PM}].Fallback)

	amSerum := bySlot[Slot{StepSerum, AM}]
	require.False(t, amSerum.Fallback)
	require.Equal(t, []string{"Vitamin C"}, amSerum.Ingredients)
}

func TestCleanserFallbackBySkinType(t *testing.T) {
	oily := balancedMetrics()
	oily.Oiliness = 40
	plan := Allocate(prescribe.Prescription{}, oily)
	for _, rec := range plan.Slots {
		if rec.Slot.Step != StepCleanser {
			continue
		}
		require.True(t, rec.Fallback)
		require.Equal(t, []string{"Salicylic Acid", "Tea Tree"}, rec.Ingredients)
		require.Equal(t, "Oil Control", rec.Benefit)
	}

	plan = Allocate(prescribe.Prescription{}, balancedMetrics())
	for _, rec := range plan.Slots {
		if rec.Slot.Step != StepCleanser {
			continue
		}
		require.Equal(t, []string{"Glycerin", "Ceramides"}, rec.Ingredients)
		require.Equal(t, "Gentle Cleansing", rec.Benefit)
	}
}

func TestClassifySkinPrecedence(t *testing.T) {
	m := balancedMetrics()
	require.Equal(t, SkinBalanced, ClassifySkin(m))

	m.Oiliness = 45
	require.Equal(t, SkinOily, ClassifySkin(m))

	m = balancedMetrics()
	m.Hydration = 50
	require.Equal(t, SkinDry, ClassifySkin(m))

	m = balancedMetrics()
	m.Oiliness = 85
	require.Equal(t, SkinDry, ClassifySkin(m))

	m = balancedMetrics()
	m.Redness = 55
	require.Equal(t, SkinSensitive, ClassifySkin(m))

	// Oily beats sensitive when both fire.
	m = balancedMetrics()
	m.Oiliness = 45
	m.Redness = 55
	require.Equal(t, SkinOily, ClassifySkin(m))
}

func TestAlternativesSurfacedNotConsumed(t *testing.T) {
	// Three treatment-vocabulary actives: the PM treatment takes one and
	// surfaces the rest as alternatives, which stay available later.
	plan := Allocate(prescriptionOf("Salicylic Acid", "Glycolic Acid", "Lactic Acid"), balancedMetrics())
	bySlot := map[Slot]Recommendation{}
	for _, rec := range plan.Slots {
		bySlot[rec.Slot] = rec
	}

	pmCleanser := bySlot[Slot{StepCleanser, PM}]
	require.False(t, pmCleanser.Fallback)
	require.NotEmpty(t, pmCleanser.Alternatives)
}
