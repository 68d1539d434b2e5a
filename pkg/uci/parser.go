package uci

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/seekerror/stdlib/pkg/lang"
)

// Line is the result of parsing one raw line of UCI engine output. At most one of
// Output (non-empty per Output.HasContent) or IsBestMove is set; a line that is neither (e.g. "readyok", "id
// name ...", an unrecognized token stream) parses to a zero Line and is silently
// ignored by callers.
type Line struct {
	Output     Output
	IsBestMove bool
	BestMove   string
	Ponder     string // empty if the engine didn't suggest one
}

var moveRe = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

// ParseLine tokenizes a single line of UCI engine output. Recognized "info" fields
// (depth, seldepth, multipv, score cp|mate [lowerbound|upperbound], nodes, nps,
// hashfull, tbhits, time, wdl, pv) are folded into an Output; unrecognized tokens are
// skipped rather than treated as an error, since engines routinely emit fields this
// parser doesn't track (currmove, currmovenumber, string, refutation, currline, ...).
func ParseLine(line string) Line {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Line{}
	}

	switch strings.ToLower(fields[0]) {
	case "info":
		return Line{Output: parseInfo(fields[1:])}
	case "bestmove":
		return parseBestMove(fields[1:])
	default:
		return Line{}
	}
}

func parseInfo(fields []string) Output {
	var o Output

	i := 0
	for i < len(fields) {
		tok := strings.ToLower(fields[i])
		switch tok {
		case "depth":
			if v, ok := popInt(fields, &i); ok {
				o.Depth = lang.Some(v)
				continue
			}
		case "seldepth":
			if v, ok := popInt(fields, &i); ok {
				o.SelDepth = lang.Some(v)
				continue
			}
		case "multipv":
			if v, ok := popInt(fields, &i); ok {
				o.MultiPV = lang.Some(v)
				continue
			}
		case "hashfull":
			if v, ok := popInt(fields, &i); ok {
				o.HashFull = lang.Some(v)
				continue
			}
		case "time":
			if v, ok := popInt(fields, &i); ok {
				o.TimeMs = lang.Some(v)
				continue
			}
		case "tbhits":
			if v, ok := popInt(fields, &i); ok {
				o.TBHits = lang.Some(v)
				continue
			}
		case "nodes":
			if v, ok := popInt64(fields, &i); ok {
				o.Nodes = lang.Some(v)
				continue
			}
		case "nps":
			if v, ok := popInt64(fields, &i); ok {
				o.NPS = lang.Some(v)
				continue
			}
		case "score":
			i++
			i = parseScore(fields, i, &o)
			continue
		case "wdl":
			if i+3 < len(fields) {
				if c, ok := parseTriple(fields[i+1], fields[i+2], fields[i+3]); ok {
					o.Chances = lang.Some(c)
					i += 4
					continue
				}
			}
		case "pv":
			i++
			var moves []string
			for i < len(fields) && moveRe.MatchString(strings.ToLower(fields[i])) {
				moves = append(moves, fields[i])
				i++
			}
			o.PVMoves = moves
			continue
		}
		i++
	}

	return o
}

// parseScore consumes "cp <int>" or "mate <int>", then an optional trailing
// "lowerbound"/"upperbound" marker, starting at index i (just past the "score" token).
func parseScore(fields []string, i int, o *Output) int {
	if i >= len(fields) {
		return i
	}

	switch strings.ToLower(fields[i]) {
	case "cp":
		if i+1 >= len(fields) {
			return i + 1
		}
		if v, err := strconv.Atoi(fields[i+1]); err == nil {
			o.Evaluation = lang.Some(CP(v))
			i += 2
		} else {
			return i + 1
		}
	case "mate":
		if i+1 >= len(fields) {
			return i + 1
		}
		if v, err := strconv.Atoi(fields[i+1]); err == nil {
			o.Evaluation = lang.Some(Mate(v))
			i += 2
		} else {
			return i + 1
		}
	default:
		return i
	}

	if i < len(fields) {
		switch strings.ToLower(fields[i]) {
		case "lowerbound":
			o.Bound = BoundLower
			i++
		case "upperbound":
			o.Bound = BoundUpper
			i++
		}
	}
	return i
}

func parseBestMove(fields []string) Line {
	if len(fields) == 0 {
		return Line{}
	}

	l := Line{IsBestMove: true, BestMove: fields[0]}
	if len(fields) >= 3 && strings.ToLower(fields[1]) == "ponder" {
		l.Ponder = fields[2]
	}
	return l
}

func popInt(fields []string, i *int) (int, bool) {
	if *i+1 >= len(fields) {
		*i = len(fields)
		return 0, false
	}
	v, err := strconv.Atoi(fields[*i+1])
	if err != nil {
		*i++
		return 0, false
	}
	*i += 2
	return v, true
}

func popInt64(fields []string, i *int) (int64, bool) {
	if *i+1 >= len(fields) {
		*i = len(fields)
		return 0, false
	}
	v, err := strconv.ParseInt(fields[*i+1], 10, 64)
	if err != nil {
		*i++
		return 0, false
	}
	*i += 2
	return v, true
}
