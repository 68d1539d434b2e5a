package mining

import (
	"time"

	"github.com/herohde/tacticore/pkg/chess"
	"github.com/herohde/tacticore/pkg/uci"
)

// Record is exactly one position under test, plus optional lineage, engine identity,
// and the live Analysis accumulated while an engine searched it. A Record is created
// once by the Dispatcher, mutated only by the worker that owns it, classified exactly
// once by a FilterEngine, and emitted exactly once to the Sink; it is never reused.
type Record struct {
	Position  chess.Position
	Parent    *chess.Position // nil for a root seed
	Engine    string
	Timestamp time.Time
	Tags      []string
	Analysis  *uci.Analysis

	BestMove string // set once the owning worker observes bestmove
}

// NewRecord constructs a Record ready to be handed to a worker.
func NewRecord(pos chess.Position, parent *chess.Position, engine string, ts time.Time) *Record {
	return &Record{
		Position:  pos,
		Parent:    parent,
		Engine:    engine,
		Timestamp: ts,
		Analysis:  uci.NewAnalysis(),
	}
}

// AddTag appends a tag, preserving insertion order and skipping duplicates.
func (r *Record) AddTag(tag string) {
	for _, t := range r.Tags {
		if t == tag {
			return
		}
	}
	r.Tags = append(r.Tags, tag)
}
