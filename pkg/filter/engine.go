package filter

import (
	"fmt"

	"github.com/herohde/tacticore/pkg/uci"
)

// Built-in DSL strings for the --puzzle-quality/--puzzle-winning/--puzzle-drawing/
// --puzzle-accelerate flags, used unless the caller supplies an override string.
const (
	DefaultQuality    = "gate=AND;break=1;depth>=20"
	DefaultWinning    = "gate=AND;break=1;eval>=300;leaf[break=2;eval<=0]"
	DefaultDrawing    = "gate=AND;break=1;eval>=0;leaf[break=2;eval<=-300]"
	DefaultAccelerate = "gate=OR;break=1;eval>=#1;leaf[break=1;eval<=#-1]"
)

// Evaluator is anything that can decide early-stop/classification over a live
// Analysis; satisfied by *FilterEngine and by Func, so callers (e.g. the Dispatcher
// combining accelerate/quality/winning/drawing into one early-stop signal) aren't
// pinned to a single compiled DSL tree.
type Evaluator interface {
	Apply(a *uci.Analysis) bool
}

// Func adapts a plain function to Evaluator.
type Func func(a *uci.Analysis) bool

func (f Func) Apply(a *uci.Analysis) bool {
	return f(a)
}

// Any combines evaluators with logical OR, short-circuiting left to right.
func Any(evaluators ...Evaluator) Evaluator {
	return Func(func(a *uci.Analysis) bool {
		for _, e := range evaluators {
			if e.Apply(a) {
				return true
			}
		}
		return false
	})
}

// All combines evaluators with logical AND, short-circuiting left to right.
func All(evaluators ...Evaluator) Evaluator {
	return Func(func(a *uci.Analysis) bool {
		for _, e := range evaluators {
			if !e.Apply(a) {
				return false
			}
		}
		return true
	})
}

// FilterEngine evaluates a parsed FilterNode tree against a live Analysis. It is a
// stateless, reusable wrapper: the same FilterEngine, built once from an immutable
// FilterNode, is shared by reference across every worker goroutine.
type FilterEngine struct {
	root *FilterNode
	src  string // the DSL string this engine was parsed from, kept for diagnostics
}

// Compile parses a DSL string into a ready-to-evaluate FilterEngine.
func Compile(dsl string) (*FilterEngine, error) {
	n, err := Parse(dsl)
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}
	return &FilterEngine{root: n, src: dsl}, nil
}

// Apply evaluates the compiled filter against a, per FilterNode.Apply.
func (e *FilterEngine) Apply(a *uci.Analysis) bool {
	return e.root.Apply(a)
}

// String returns the original DSL source.
func (e *FilterEngine) String() string {
	return e.src
}
