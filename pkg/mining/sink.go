package mining

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// evalJSON is the wire form of an Evaluation: {"kind":"cp","value":N} or
// {"kind":"mate","value":N}.
type evalJSON struct {
	Kind  string `json:"kind"`
	Value int    `json:"value"`
}

// chancesJSON is the wire form of a Chances triple.
type chancesJSON struct {
	W int `json:"w"`
	D int `json:"d"`
	L int `json:"l"`
}

// line is one JSON object written to a Sink stream.
type line struct {
	Parent   *string      `json:"parent"`
	Position string       `json:"position"`
	BestMove string       `json:"bestmove"`
	Eval     evalJSON     `json:"eval"`
	Chances  *chancesJSON `json:"chances,omitempty"`
	PV       []string     `json:"pv,omitempty"`
	Nodes    *int64       `json:"nodes,omitempty"`
	NPS      *int64       `json:"nps,omitempty"`
	TimeMs   *int         `json:"time_ms,omitempty"`
	Depth    *int         `json:"depth,omitempty"`
	Engine   string       `json:"engine"`
	Tags     []string     `json:"tags"`
}

// stream is one append-only output file, written to under its own mutex so different
// streams may be written concurrently while writes within a stream are serialized.
type stream struct {
	mu sync.Mutex
	f  *os.File
	w  *json.Encoder
}

func openStream(path string) (*stream, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &stream{f: f, w: json.NewEncoder(f)}, nil
}

func (s *stream) append(l line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Encode(l)
}

func (s *stream) close() error {
	return s.f.Close()
}

// Sink appends classified Records to one of two streams: puzzles or nonpuzzles. The
// destination is either a directory (filenames stamped with the run's start time) or
// a file stem (".puzzles.json"/".nonpuzzles.json" appended).
type Sink struct {
	puzzles    *stream
	nonpuzzles *stream

	puzzleCount    atomic.Int64
	nonpuzzleCount atomic.Int64
}

// NewSink opens the puzzle/non-puzzle streams under dest. If dest is a directory,
// filenames embed ts; otherwise dest is treated as a file stem.
func NewSink(dest string, isDir bool, ts time.Time) (*Sink, error) {
	var puzzlesPath, nonpuzzlesPath string
	if isDir {
		stamp := ts.UTC().Format("20060102T150405Z")
		puzzlesPath = filepath.Join(dest, fmt.Sprintf("%s.puzzles.json", stamp))
		nonpuzzlesPath = filepath.Join(dest, fmt.Sprintf("%s.nonpuzzles.json", stamp))
	} else {
		puzzlesPath = dest + ".puzzles.json"
		nonpuzzlesPath = dest + ".nonpuzzles.json"
	}

	puzzles, err := openStream(puzzlesPath)
	if err != nil {
		return nil, fmt.Errorf("sink: %w", err)
	}
	nonpuzzles, err := openStream(nonpuzzlesPath)
	if err != nil {
		_ = puzzles.close()
		return nil, fmt.Errorf("sink: %w", err)
	}

	return &Sink{puzzles: puzzles, nonpuzzles: nonpuzzles}, nil
}

// Emit appends record to the puzzles stream (if isPuzzle) or the nonpuzzles stream. Safe
// for concurrent use by multiple wave goroutines.
func (s *Sink) Emit(record *Record, isPuzzle bool) error {
	l := toLine(record)
	if isPuzzle {
		if err := s.puzzles.append(l); err != nil {
			return err
		}
		s.puzzleCount.Inc()
		return nil
	}
	if err := s.nonpuzzles.append(l); err != nil {
		return err
	}
	s.nonpuzzleCount.Inc()
	return nil
}

// Counts returns the number of puzzle and non-puzzle records emitted so far.
func (s *Sink) Counts() (puzzles, nonpuzzles int64) {
	return s.puzzleCount.Load(), s.nonpuzzleCount.Load()
}

func toLine(r *Record) line {
	l := line{
		Position: r.Position.FEN(),
		BestMove: r.BestMove,
		Engine:   r.Engine,
		Tags:     r.Tags,
	}
	if r.Parent != nil {
		s := r.Parent.FEN()
		l.Parent = &s
	}

	pv := 1
	if o, ok := r.Analysis.BestOutput(pv); ok {
		if e, ok := o.Evaluation.V(); ok {
			if e.IsMate() {
				l.Eval = evalJSON{Kind: "mate", Value: e.MateIn()}
			} else {
				l.Eval = evalJSON{Kind: "cp", Value: e.Centipawns()}
			}
		}
		if c, ok := o.Chances.V(); ok {
			l.Chances = &chancesJSON{W: c.W, D: c.D, L: c.L}
		}
		if len(o.PVMoves) > 0 {
			l.PV = o.PVMoves
		}
		if v, ok := o.Nodes.V(); ok {
			l.Nodes = &v
		}
		if v, ok := o.NPS.V(); ok {
			l.NPS = &v
		}
		if v, ok := o.TimeMs.V(); ok {
			l.TimeMs = &v
		}
		if v, ok := o.Depth.V(); ok {
			l.Depth = &v
		}
	}

	return l
}

// Close closes both streams.
func (s *Sink) Close() error {
	err1 := s.puzzles.close()
	err2 := s.nonpuzzles.close()
	if err1 != nil {
		return err1
	}
	return err2
}
