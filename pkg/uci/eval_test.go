package uci_test

import (
	"testing"

	"github.com/herohde/tacticore/pkg/uci"
	"github.com/stretchr/testify/assert"
)

func TestEvaluationOrdering(t *testing.T) {
	tests := []struct {
		name     string
		a, b     uci.Evaluation
		expected int // a.Compare(b)
	}{
		{"equal centipawns", uci.CP(20), uci.CP(20), 0},
		{"centipawns ordered", uci.CP(20), uci.CP(50), -1},
		{"a winning mate outranks a centipawn advantage", uci.CP(500), uci.Mate(10), -1},
		{"a losing mate underranks a centipawn advantage", uci.Mate(-10), uci.CP(500), -1},
		{"faster mate for the mover is stronger", uci.Mate(3), uci.Mate(1), -1},
		{"being mated sooner is worse than being mated later", uci.Mate(-1), uci.Mate(-5), -1},
		{"mating beats being mated", uci.Mate(-1), uci.Mate(1), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Compare(tt.b))
			assert.Equal(t, -tt.expected, tt.b.Compare(tt.a))
			assert.Equal(t, tt.expected < 0, tt.a.Less(tt.b))
			assert.Equal(t, tt.expected > 0, tt.a.Greater(tt.b))
		})
	}
}

func TestEvaluationString(t *testing.T) {
	assert.Equal(t, "20", uci.CP(20).String())
	assert.Equal(t, "-135", uci.CP(-135).String())
	assert.Equal(t, "#3", uci.Mate(3).String())
	assert.Equal(t, "#-1", uci.Mate(-1).String())
}

func TestEvaluationAccessors(t *testing.T) {
	cp := uci.CP(42)
	assert.False(t, cp.IsMate())
	assert.Equal(t, 42, cp.Centipawns())

	m := uci.Mate(-7)
	assert.True(t, m.IsMate())
	assert.Equal(t, -7, m.MateIn())
}
