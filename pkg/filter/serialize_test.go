package filter_test

import (
	"testing"

	"github.com/herohde/tacticore/pkg/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeRoundTripsThroughParse(t *testing.T) {
	tests := []string{
		filter.DefaultQuality,
		filter.DefaultWinning,
		filter.DefaultDrawing,
		filter.DefaultAccelerate,
		"gate=OR;null=true;empty=true;break=3;depth>=10;nodes<=1000000",
	}

	for _, dsl := range tests {
		t.Run(dsl, func(t *testing.T) {
			n, err := filter.Parse(dsl)
			require.NoError(t, err)

			out := filter.Serialize(n)
			n2, err := filter.Parse(out)
			require.NoError(t, err)

			assert.Equal(t, filter.Serialize(n2), out, "Parse(Serialize(n)) must reach a fixed point")
			assert.Equal(t, n, n2, "round trip must reconstruct a structurally identical tree")
		})
	}
}

func TestSerializeStatesAllControlsExplicitly(t *testing.T) {
	n, err := filter.Parse("depth>=10")
	require.NoError(t, err)

	out := filter.Serialize(n)
	assert.Contains(t, out, "gate=AND")
	assert.Contains(t, out, "null=false")
	assert.Contains(t, out, "empty=false")
	assert.Contains(t, out, "break=0")
	assert.Contains(t, out, "depth>=10")
}
