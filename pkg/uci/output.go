package uci

import (
	"github.com/seekerror/stdlib/pkg/lang"
)

// Bound marks whether a reported Evaluation is exact or only a bound.
type Bound int

const (
	BoundNone Bound = iota
	BoundLower
	BoundUpper
)

// Output is a parsed snapshot of one UCI "info" line. Every field is independently
// present or absent.
type Output struct {
	Depth    lang.Optional[int]
	SelDepth lang.Optional[int]
	MultiPV  lang.Optional[int]
	HashFull lang.Optional[int] // 0..1000
	TimeMs   lang.Optional[int]
	TBHits   lang.Optional[int]
	Nodes    lang.Optional[int64]
	NPS      lang.Optional[int64]

	PVMoves []string // coded moves, e.g. "e2e4"

	Evaluation lang.Optional[Evaluation]
	Chances    lang.Optional[Chances]
	Bound      Bound
}

// HasContent reports whether any field is set.
func (o Output) HasContent() bool {
	if _, ok := o.Depth.V(); ok {
		return true
	}
	if _, ok := o.SelDepth.V(); ok {
		return true
	}
	if _, ok := o.MultiPV.V(); ok {
		return true
	}
	if _, ok := o.HashFull.V(); ok {
		return true
	}
	if _, ok := o.TimeMs.V(); ok {
		return true
	}
	if _, ok := o.TBHits.V(); ok {
		return true
	}
	if _, ok := o.Nodes.V(); ok {
		return true
	}
	if _, ok := o.NPS.V(); ok {
		return true
	}
	if len(o.PVMoves) > 0 {
		return true
	}
	if _, ok := o.Evaluation.V(); ok {
		return true
	}
	if _, ok := o.Chances.V(); ok {
		return true
	}
	return false
}

// pvIndex returns the 1-based MultiPV index this output belongs to, defaulting to 1.
func (o Output) pvIndex() int {
	if v, ok := o.MultiPV.V(); ok && v > 0 {
		return v
	}
	return 1
}
