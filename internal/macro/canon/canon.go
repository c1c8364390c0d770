// Package canon implements the rule canonicaliser: it walks an expansion
// tree, deduplicates leaf text, and merges access-vector rules sharing a
// header by unioning their permission sets. See spec.md §4.7.
package canon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pranlawate/semacro/internal/macro/domain"
)

// avLine matches a single-brace access-vector rule —
// "<kind> <source> <target:class> { <perms> };" — spec.md §4.7 step 2.
var avLine = regexp.MustCompile(`^(allow|dontaudit|auditallow|neverallow)\s+(\S+)\s+(\S+:\S+)\s+\{([^}]+)\}\s*;$`)

// group accumulates one access-vector rule's permission set, preserving
// first-seen order both for the permissions within the group and for the
// group's position among the other canonical rules.
type group struct {
	key      string // "<kind> <source> <target:class>"
	perms    []string
	permSeen map[string]bool
}

// Canonicalise deduplicates the leaves of tree (first occurrence wins,
// order preserved) and unions permission sets across access-vector rules
// sharing a header, returning the flat rule list described in spec.md
// §3 "Canonical rule" and §4.7.
func Canonicalise(tree *domain.ExpansionNode) []string {
	leaves := dedupe(tree.Leaves())

	type entry struct {
		plain string // set when this position is a non-AV line
		group *group // set when this position is (the first occurrence of) an AV group
	}

	var (
		order  []*entry
		groups = make(map[string]*entry)
	)

	for _, leaf := range leaves {
		m := avLine.FindStringSubmatch(leaf)
		if m == nil {
			order = append(order, &entry{plain: leaf})
			continue
		}

		kind, source, targetClass, permText := m[1], m[2], m[3], m[4]
		key := fmt.Sprintf("%s %s %s", kind, source, targetClass)

		e, ok := groups[key]
		if !ok {
			e = &entry{group: &group{key: key, permSeen: make(map[string]bool)}}
			groups[key] = e
			order = append(order, e)
		}
		for _, p := range strings.Fields(permText) {
			g := e.group
			if !g.permSeen[p] {
				g.permSeen[p] = true
				g.perms = append(g.perms, p)
			}
		}
	}

	out := make([]string, 0, len(order))
	for _, e := range order {
		if e.group == nil {
			out = append(out, e.plain)
			continue
		}
		out = append(out, fmt.Sprintf("%s { %s };", e.group.key, strings.Join(e.group.perms, " ")))
	}
	return out
}

// dedupe keeps the first occurrence of each string, preserving order.
func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
