// Package filter implements the boolean filter DSL used to decide, while a search is
// still running, whether to stop it early and whether its result counts as a puzzle.
// A FilterNode tree is immutable once parsed and is shared by reference across
// worker goroutines; evaluating it never mutates the Analysis it reads.
package filter

import "github.com/herohde/tacticore/pkg/uci"

// Gate names the boolean combinator applied to a node's predicate/child results.
type Gate string

const (
	AND      Gate = "AND"
	OR       Gate = "OR"
	NOT_AND  Gate = "NOT_AND"
	NOT_OR   Gate = "NOT_OR"
	XOR      Gate = "XOR"
	X_NOT_OR Gate = "X_NOT_OR"
	SAME     Gate = "SAME"
	NOT_SAME Gate = "NOT_SAME"
)

// Apply combines a vector of booleans per the gate semantics. XOR is the associative,
// odd-parity generalization of exclusive-or to n values; X_NOT_OR is its complement
// (even parity, including the empty/all-false case). SAME holds when every element
// agrees; NOT_SAME is its complement.
func (g Gate) Apply(v []bool) bool {
	switch g {
	case AND:
		return all(v, true)
	case OR:
		return any(v, true)
	case NOT_AND:
		return !all(v, true)
	case NOT_OR:
		return !any(v, true)
	case XOR:
		return parity(v)
	case X_NOT_OR:
		return !parity(v)
	case SAME:
		return all(v, true) || all(v, false)
	case NOT_SAME:
		return !(all(v, true) || all(v, false))
	default:
		return false
	}
}

func all(v []bool, want bool) bool {
	for _, b := range v {
		if b != want {
			return false
		}
	}
	return true
}

func any(v []bool, want bool) bool {
	for _, b := range v {
		if b == want {
			return true
		}
	}
	return false
}

func parity(v []bool) bool {
	count := 0
	for _, b := range v {
		if b {
			count++
		}
	}
	return count%2 == 1
}

// FilterNode is one node of the DSL AST: a gate operator applied to an ordered list of
// leaf predicates and an ordered list of child nodes, plus the pv_break/null_return/
// empty_return controls from the DSL.
type FilterNode struct {
	Gate        Gate
	PVBreak     int // 0 == unbound; >0 selects that MultiPV line
	NullReturn  bool
	EmptyReturn bool
	Predicates  []Predicate
	Children    []*FilterNode
}

// pv returns the effective MultiPV line this node reads from, defaulting to 1 when
// PVBreak is unset but the node has predicates to evaluate.
func (n *FilterNode) pv() int {
	if n.PVBreak > 0 {
		return n.PVBreak
	}
	return 1
}

// Apply evaluates the node against a live Analysis, per the algorithm:
//  1. P = predicates, C = children.
//  2. |P|+|C| == 0 -> EmptyReturn.
//  3. |P| > 0: look up best_output(pv); absent or content-free -> NullReturn. Otherwise
//     evaluate every predicate against that Output.
//  4. Evaluate every child recursively.
//  5. Combine the predicate results followed by the child results via Gate.
func (n *FilterNode) Apply(a *uci.Analysis) bool {
	if len(n.Predicates) == 0 && len(n.Children) == 0 {
		return n.EmptyReturn
	}

	var v []bool

	if len(n.Predicates) > 0 {
		o, ok := a.BestOutput(n.pv())
		if !ok || !o.HasContent() {
			return n.NullReturn
		}
		for _, p := range n.Predicates {
			v = append(v, p.Eval(o))
		}
	}

	for _, c := range n.Children {
		v = append(v, c.Apply(a))
	}

	return n.Gate.Apply(v)
}
