package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/herohde/tacticore/pkg/uci"
)

// Parse parses a DSL string into a FilterNode tree. Whitespace is insignificant;
// tokens are separated by ';'. Unrecognized tokens are a parse error: a filter that
// fails to parse must not silently become a no-op.
func Parse(s string) (*FilterNode, error) {
	return parseNode(normalize(s))
}

// normalize collapses a triple-quoted multi-line DSL string (as may arrive from
// configuration) onto a single line.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func parseNode(s string) (*FilterNode, error) {
	n := &FilterNode{Gate: AND}

	for _, tok := range splitTokens(s) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		switch {
		case strings.HasPrefix(tok, "leaf[") && strings.HasSuffix(tok, "]"):
			inner := tok[len("leaf[") : len(tok)-1]
			child, err := parseNode(inner)
			if err != nil {
				return nil, fmt.Errorf("leaf: %w", err)
			}
			n.Children = append(n.Children, child)

		case hasKV(tok, "gate"):
			n.Gate = Gate(strings.ToUpper(kvValue(tok)))

		case hasKV(tok, "null"):
			v, err := strconv.ParseBool(kvValue(tok))
			if err != nil {
				return nil, fmt.Errorf("null=: %w", err)
			}
			n.NullReturn = v

		case hasKV(tok, "empty"):
			v, err := strconv.ParseBool(kvValue(tok))
			if err != nil {
				return nil, fmt.Errorf("empty=: %w", err)
			}
			n.EmptyReturn = v

		case hasKV(tok, "break"):
			v, err := strconv.Atoi(kvValue(tok))
			if err != nil {
				return nil, fmt.Errorf("break=: %w", err)
			}
			n.PVBreak = v

		case hasKV(tok, "predicates"):
			// Informational only; ignored during parsing.

		default:
			p, err := parsePredicate(tok)
			if err != nil {
				return nil, fmt.Errorf("token %q: %w", tok, err)
			}
			n.Predicates = append(n.Predicates, p)
		}
	}

	return n, nil
}

// splitTokens splits s on ';' at bracket depth 0, so a nested "leaf[...;...]" block
// survives as one token.
func splitTokens(s string) []string {
	var ret []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ';':
			if depth == 0 {
				ret = append(ret, s[start:i])
				start = i + 1
			}
		}
	}
	if start < len(s) {
		ret = append(ret, s[start:])
	}
	return ret
}

func hasKV(tok, key string) bool {
	return strings.HasPrefix(tok, key+"=")
}

func kvValue(tok string) string {
	i := strings.Index(tok, "=")
	return strings.TrimSpace(tok[i+1:])
}

var ops = []Op{OpGE, OpLE, OpGT, OpLT, OpEQ} // longest match first

func parsePredicate(tok string) (Predicate, error) {
	for _, metric := range []Metric{
		MetricDepth, MetricSelDepth, MetricMultiPV, MetricHashFull,
		MetricNodes, MetricNPS, MetricTBHits, MetricTime, MetricEval, MetricChances,
	} {
		if !strings.HasPrefix(tok, string(metric)) {
			continue
		}

		rest := tok[len(metric):]
		for _, op := range ops {
			if strings.HasPrefix(rest, string(op)) {
				raw := strings.TrimSpace(rest[len(op):])
				p, err := newPredicate(metric, op, raw)
				if err != nil {
					return Predicate{}, err
				}
				return p, nil
			}
		}
		return Predicate{}, fmt.Errorf("no recognized operator in %q", tok)
	}
	return Predicate{}, fmt.Errorf("no recognized metric in %q", tok)
}

func newPredicate(metric Metric, op Op, raw string) (Predicate, error) {
	p := Predicate{Metric: metric, Op: op, Raw: raw}

	switch metric {
	case MetricEval:
		e, err := parseEvalValue(raw)
		if err != nil {
			return Predicate{}, err
		}
		p.eval = e

	case MetricChances:
		c, ok := uci.ParseChances(raw)
		if !ok {
			return Predicate{}, fmt.Errorf("invalid chances value %q", raw)
		}
		p.chances = c
		p.num = int64(c.W)

	default:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Predicate{}, fmt.Errorf("invalid integer value %q: %w", raw, err)
		}
		p.num = n
	}

	return p, nil
}

// parseEvalValue parses "#N"/"#-N" as mate-in-N, otherwise a plain centipawn integer.
func parseEvalValue(raw string) (uci.Evaluation, error) {
	if strings.HasPrefix(raw, "#") {
		n, err := strconv.Atoi(raw[1:])
		if err != nil {
			return uci.Evaluation{}, fmt.Errorf("invalid mate value %q: %w", raw, err)
		}
		return uci.Mate(n), nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return uci.Evaluation{}, fmt.Errorf("invalid centipawn value %q: %w", raw, err)
	}
	return uci.CP(n), nil
}
