package filter

import (
	"fmt"
	"strings"
)

// Serialize renders a FilterNode back to DSL surface syntax. The output always states
// gate/null/empty/break explicitly (even at their zero values) so that
// Parse(Serialize(n)) reconstructs a structurally identical tree regardless of which
// kv tokens the original input happened to omit.
func Serialize(n *FilterNode) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("gate=%v", n.Gate))
	parts = append(parts, fmt.Sprintf("null=%v", n.NullReturn))
	parts = append(parts, fmt.Sprintf("empty=%v", n.EmptyReturn))
	parts = append(parts, fmt.Sprintf("break=%v", n.PVBreak))

	for _, p := range n.Predicates {
		parts = append(parts, p.String())
	}
	for _, c := range n.Children {
		parts = append(parts, fmt.Sprintf("leaf[%v]", Serialize(c)))
	}

	return strings.Join(parts, ";")
}
