package filter_test

import (
	"testing"

	"github.com/herohde/tacticore/pkg/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaultsGateToAND(t *testing.T) {
	n, err := filter.Parse("depth>=10")
	require.NoError(t, err)
	assert.Equal(t, filter.AND, n.Gate)
	assert.False(t, n.NullReturn)
	assert.False(t, n.EmptyReturn)
	assert.Equal(t, 0, n.PVBreak)
	require.Len(t, n.Predicates, 1)
}

func TestParseKVTokensAreCaseInsensitiveForGate(t *testing.T) {
	n, err := filter.Parse("gate=or;depth>=10;seldepth>=5")
	require.NoError(t, err)
	assert.Equal(t, filter.OR, n.Gate)
}

func TestParseNestedLeafBlocks(t *testing.T) {
	n, err := filter.Parse("gate=AND;depth>=10;leaf[gate=OR;eval>=300;leaf[break=2;eval<=-300]]")
	require.NoError(t, err)

	require.Len(t, n.Children, 1)
	child := n.Children[0]
	assert.Equal(t, filter.OR, child.Gate)
	require.Len(t, child.Children, 1)
	assert.Equal(t, 2, child.Children[0].PVBreak)
}

func TestParsePredicatesIgnoredKVToken(t *testing.T) {
	n, err := filter.Parse("predicates=whatever;depth>=10")
	require.NoError(t, err)
	require.Len(t, n.Predicates, 1)
}

func TestParseWhitespaceAndMultilineAreInsignificant(t *testing.T) {
	n, err := filter.Parse(`
		gate=AND;
		depth>=10 ;
		seldepth>=5
	`)
	require.NoError(t, err)
	assert.Equal(t, filter.AND, n.Gate)
	assert.Len(t, n.Predicates, 2)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		dsl  string
	}{
		{"unknown metric", "bogus>=10"},
		{"unrecognized operator", "depth~10"},
		{"non-boolean null", "null=maybe;depth>=10"},
		{"non-boolean empty", "empty=maybe;depth>=10"},
		{"non-integer break", "break=abc;depth>=10"},
		{"non-integer value", "depth>=abc"},
		{"invalid mate value", "eval>=#abc"},
		{"invalid chances value", "chances>=not-a-triple"},
		{"unterminated leaf", "leaf[depth>=10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := filter.Parse(tt.dsl)
			assert.Error(t, err)
		})
	}
}

func TestParseLongestOperatorMatchWins(t *testing.T) {
	n, err := filter.Parse("depth>=10")
	require.NoError(t, err)
	require.Len(t, n.Predicates, 1)
	assert.Equal(t, filter.OpGE, n.Predicates[0].Op)
}
