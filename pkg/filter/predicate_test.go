package filter_test

import (
	"testing"

	"github.com/herohde/tacticore/pkg/filter"
	"github.com/herohde/tacticore/pkg/uci"
	"github.com/stretchr/testify/assert"
)

func outputFromLine(line string) uci.Output {
	return uci.ParseLine(line).Output
}

func TestPredicateIntMetrics(t *testing.T) {
	o := outputFromLine("info depth 22 seldepth 30 multipv 1 hashfull 500 tbhits 4 time 1500 nodes 9000000 nps 1200000 pv e2e4")

	tests := []struct {
		name     string
		p        filter.Predicate
		expected bool
	}{
		{"depth>=20 holds", mustPredicate(t, "depth>=20"), true},
		{"depth>=30 fails", mustPredicate(t, "depth>=30"), false},
		{"depth=22 holds", mustPredicate(t, "depth=22"), true},
		{"seldepth<35 holds", mustPredicate(t, "seldepth<35"), true},
		{"hashfull<=500 holds", mustPredicate(t, "hashfull<=500"), true},
		{"tbhits>3 holds", mustPredicate(t, "tbhits>3"), true},
		{"time<1000 fails", mustPredicate(t, "time<1000"), false},
		{"nodes>=1000000 holds", mustPredicate(t, "nodes>=1000000"), true},
		{"nps>2000000 fails", mustPredicate(t, "nps>2000000"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.p.Eval(o))
		})
	}
}

func TestPredicateMissingFieldNeverHolds(t *testing.T) {
	o := outputFromLine("info depth 10 pv e2e4")
	assert.False(t, mustPredicate(t, "nps>=1").Eval(o))
	assert.False(t, mustPredicate(t, "tbhits>=0").Eval(o))
}

func TestPredicateEvalExact(t *testing.T) {
	o := outputFromLine("info depth 10 score cp 300 pv e2e4")
	assert.True(t, mustPredicate(t, "eval>=300").Eval(o))
	assert.True(t, mustPredicate(t, "eval=300").Eval(o))
	assert.False(t, mustPredicate(t, "eval<300").Eval(o))
}

func TestPredicateEvalMate(t *testing.T) {
	o := outputFromLine("info depth 10 score mate 3 pv e2e4") // mate-in-3 for the side to move
	assert.True(t, mustPredicate(t, "eval>=#5").Eval(o), "mate-in-3 is faster (better) than mate-in-5")
	assert.True(t, mustPredicate(t, "eval<=#1").Eval(o), "mate-in-3 is slower (worse) than mate-in-1")
	assert.False(t, mustPredicate(t, "eval>=#1").Eval(o), "mate-in-3 does not meet the mate-in-1 bar")
	assert.False(t, mustPredicate(t, "eval<=#-1").Eval(o), "any winning mate outranks any losing mate")
}

// TestPredicateEvalBoundSemantics covers the rule that a lowerbound line only
// witnesses >/>=, an upperbound line only witnesses </<=, and neither ever satisfies =.
func TestPredicateEvalBoundSemantics(t *testing.T) {
	lower := outputFromLine("info depth 10 score cp 300 lowerbound pv e2e4")
	assert.True(t, mustPredicate(t, "eval>=200").Eval(lower))
	assert.True(t, mustPredicate(t, "eval>200").Eval(lower))
	assert.False(t, mustPredicate(t, "eval<=400").Eval(lower))
	assert.False(t, mustPredicate(t, "eval=300").Eval(lower))

	upper := outputFromLine("info depth 10 score cp 300 upperbound pv e2e4")
	assert.True(t, mustPredicate(t, "eval<=400").Eval(upper))
	assert.True(t, mustPredicate(t, "eval<400").Eval(upper))
	assert.False(t, mustPredicate(t, "eval>=200").Eval(upper))
	assert.False(t, mustPredicate(t, "eval=300").Eval(upper))
}

// TestPredicateChances covers the pinned decision that a "chances" predicate's raw
// value is itself a full W/D/L triple, and only its normalized W scalar is compared
// against the observed line's win chances.
func TestPredicateChances(t *testing.T) {
	o := outputFromLine("info depth 10 wdl 790 200 10 pv e2e4")
	assert.True(t, mustPredicate(t, "chances>=700/300/0").Eval(o))
	assert.False(t, mustPredicate(t, "chances>=800/200/0").Eval(o))
}

func TestPredicateString(t *testing.T) {
	assert.Equal(t, "depth>=20", mustPredicate(t, "depth>=20").String())
	assert.Equal(t, "eval<=#-1", mustPredicate(t, "eval<=#-1").String())
}

func mustPredicate(t *testing.T, dsl string) filter.Predicate {
	t.Helper()
	n, err := filter.Parse(dsl)
	if err != nil {
		t.Fatalf("parse %q: %v", dsl, err)
	}
	if len(n.Predicates) != 1 {
		t.Fatalf("expected exactly one predicate in %q, got %d", dsl, len(n.Predicates))
	}
	return n.Predicates[0]
}
