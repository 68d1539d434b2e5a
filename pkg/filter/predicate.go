package filter

import (
	"fmt"

	"github.com/herohde/tacticore/pkg/uci"
)

// Op is a predicate comparison operator. Longest match wins during parsing, so ">="
// is recognized before ">".
type Op string

const (
	OpGE Op = ">="
	OpLE Op = "<="
	OpGT Op = ">"
	OpLT Op = "<"
	OpEQ Op = "="
)

// Metric names the Output field a predicate reads.
type Metric string

const (
	MetricDepth    Metric = "depth"
	MetricSelDepth Metric = "seldepth"
	MetricMultiPV  Metric = "multipv"
	MetricHashFull Metric = "hashfull"
	MetricNodes    Metric = "nodes"
	MetricNPS      Metric = "nps"
	MetricTBHits   Metric = "tbhits"
	MetricTime     Metric = "time"
	MetricEval     Metric = "eval"
	MetricChances  Metric = "chances"
)

// Predicate is a single leaf comparison: a metric, an operator, and the canonical
// string form of the comparison value, preserved verbatim for DSL round-tripping.
type Predicate struct {
	Metric Metric
	Op     Op
	Raw    string // canonical value string, e.g. "20", "#3", "790/200/10"

	eval    uci.Evaluation // valid iff Metric == MetricEval
	chances uci.Chances    // valid iff Metric == MetricChances
	num     int64          // valid for the remaining integer metrics
}

// Eval reports whether this predicate holds against o.
func (p Predicate) Eval(o uci.Output) bool {
	switch p.Metric {
	case MetricDepth:
		return intField(o.Depth, p.Op, p.num)
	case MetricSelDepth:
		return intField(o.SelDepth, p.Op, p.num)
	case MetricMultiPV:
		return intField(o.MultiPV, p.Op, p.num)
	case MetricHashFull:
		return intField(o.HashFull, p.Op, p.num)
	case MetricTime:
		return intField(o.TimeMs, p.Op, p.num)
	case MetricTBHits:
		return intField(o.TBHits, p.Op, p.num)
	case MetricNodes:
		v, ok := o.Nodes.V()
		return ok && compareInt64(v, p.Op, p.num)
	case MetricNPS:
		v, ok := o.NPS.V()
		return ok && compareInt64(v, p.Op, p.num)
	case MetricEval:
		return p.evalEval(o)
	case MetricChances:
		c, ok := o.Chances.V()
		return ok && compareInt64(int64(c.W), p.Op, p.num)
	default:
		return false
	}
}

func (p Predicate) evalEval(o uci.Output) bool {
	v, ok := o.Evaluation.V()
	if !ok {
		return false
	}

	// Bound semantics: a lowerbound evaluation only witnesses > and >=; an upperbound
	// evaluation only witnesses < and <=; equality never passes on a bounded line.
	switch o.Bound {
	case uci.BoundLower:
		if p.Op != OpGT && p.Op != OpGE {
			return false
		}
	case uci.BoundUpper:
		if p.Op != OpLT && p.Op != OpLE {
			return false
		}
	}

	cmp := v.Compare(p.eval)
	return compareSign(cmp, p.Op)
}

func intField(o interface{ V() (int, bool) }, op Op, want int64) bool {
	v, ok := o.V()
	return ok && compareInt64(int64(v), op, want)
}

func compareInt64(v int64, op Op, want int64) bool {
	switch op {
	case OpGE:
		return v >= want
	case OpLE:
		return v <= want
	case OpGT:
		return v > want
	case OpLT:
		return v < want
	case OpEQ:
		return v == want
	default:
		return false
	}
}

func compareSign(cmp int, op Op) bool {
	switch op {
	case OpGE:
		return cmp >= 0
	case OpLE:
		return cmp <= 0
	case OpGT:
		return cmp > 0
	case OpLT:
		return cmp < 0
	case OpEQ:
		return cmp == 0
	default:
		return false
	}
}

func (p Predicate) String() string {
	return fmt.Sprintf("%v%v%v", p.Metric, p.Op, p.Raw)
}
