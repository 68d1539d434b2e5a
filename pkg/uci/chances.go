package uci

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Chances is a win/draw/loss probability triple from the side-to-move's perspective,
// in thousandths, always summing to exactly 1000.
type Chances struct {
	W, D, L int
}

// NewChances constructs a Chances triple from raw thousandths, normalizing so the sum
// is exactly 1000 via largest-remainder rounding.
func NewChances(w, d, l int) Chances {
	return normalize([]float64{float64(w), float64(d), float64(l)})
}

func normalize(parts []float64) Chances {
	sum := parts[0] + parts[1] + parts[2]
	if sum == 0 {
		return Chances{0, 1000, 0}
	}

	scaled := make([]float64, 3)
	floor := make([]int, 3)
	remainder := make([]float64, 3)
	total := 0
	for i, p := range parts {
		scaled[i] = p * 1000 / sum
		floor[i] = int(scaled[i])
		remainder[i] = scaled[i] - float64(floor[i])
		total += floor[i]
	}

	missing := 1000 - total
	order := []int{0, 1, 2}
	sort.SliceStable(order, func(i, j int) bool {
		return remainder[order[i]] > remainder[order[j]]
	})
	for i := 0; i < missing; i++ {
		floor[order[i%3]]++
	}

	return Chances{W: floor[0], D: floor[1], L: floor[2]}
}

var (
	wdlRe    = regexp.MustCompile(`(?i)^wdl\s+(-?\d+)\s+(-?\d+)\s+(-?\d+)$`)
	slashRe  = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)\s*/\s*(\d+)$`)
	percentRe = regexp.MustCompile(`(?i)win\s+(\d+(?:\.\d+)?)%\s*draw\s+(\d+(?:\.\d+)?)%\s*loss\s+(\d+(?:\.\d+)?)%`)
)

// ParseChances accepts "wdl 790 200 10", "79/20/1", "1000 0 0" and
// "win 79% draw 20% loss 1%" forms, normalizing the result to sum to 1000.
func ParseChances(s string) (Chances, bool) {
	s = strings.TrimSpace(s)

	if m := wdlRe.FindStringSubmatch(s); m != nil {
		return parseTriple(m[1], m[2], m[3])
	}
	if m := slashRe.FindStringSubmatch(s); m != nil {
		return parseTriple(m[1], m[2], m[3])
	}
	if m := percentRe.FindStringSubmatch(s); m != nil {
		w, _ := strconv.ParseFloat(m[1], 64)
		d, _ := strconv.ParseFloat(m[2], 64)
		l, _ := strconv.ParseFloat(m[3], 64)
		return normalize([]float64{w, d, l}), true
	}

	// Bare triple, whitespace separated: "790 200 10".
	fields := strings.Fields(s)
	if len(fields) == 3 {
		return parseTriple(fields[0], fields[1], fields[2])
	}
	return Chances{}, false
}

func parseTriple(ws, ds, ls string) (Chances, bool) {
	w, err1 := strconv.Atoi(ws)
	d, err2 := strconv.Atoi(ds)
	l, err3 := strconv.Atoi(ls)
	if err1 != nil || err2 != nil || err3 != nil {
		return Chances{}, false
	}
	return normalize([]float64{float64(w), float64(d), float64(l)}), true
}

func (c Chances) String() string {
	return fmt.Sprintf("%v/%v/%v", c.W, c.D, c.L)
}
