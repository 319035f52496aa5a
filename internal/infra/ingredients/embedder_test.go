package ingredients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbedDeterministic(t *testing.T) {
	e := NewDeterministicEmbedder(64)
	a, err := e.Embed(context.Background(), []string{"Niacinamide", "Water"})
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), []string{" water ", "NIACINAMIDE"})
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 64)
}

func TestEmbedDistinctListsDiffer(t *testing.T) {
	e := NewDeterministicEmbedder(64)
	a, err := e.Embed(context.Background(), []string{"Retinol"})
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), []string{"Glycolic Acid"})
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestEmbedEmptyList(t *testing.T) {
	e := NewDeterministicEmbedder(0)
	v, err := e.Embed(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, v, DefaultDimensions)
	for _, x := range v {
		require.Zero(t, x)
	}
}
